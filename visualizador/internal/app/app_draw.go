package app

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// draw renderiza a cena.
func (a *App) draw() {
	rl.BeginDrawing()
	rl.ClearBackground(a.skyColor())

	if a.Loading {
		a.drawLoadingScreen()
	} else {
		a.drawScene()
		a.drawHUD()

		if a.State == StatePaused {
			a.drawPauseMenu()
		}
	}

	rl.EndDrawing()
}

// skyColor escurece o céu junto com o ciclo de dia e noite.
func (a *App) skyColor() rl.Color {
	mult := a.renderer.Daylight()
	return rl.Color{
		R: uint8(120 * mult),
		G: uint8(170 * mult),
		B: uint8(230 * mult),
		A: 255,
	}
}

// drawScene renderiza a cena 3D.
func (a *App) drawScene() {
	rl.BeginMode3D(a.Cam.RLCamera)

	if a.Config.WireframeMode {
		rl.DrawGrid(64, 16)
	}

	vis := a.Cam.Visibility(a.Config.FOV, a.Config.FrustumMarginDeg,
		float32(a.Config.LoadRadius+2)*16)
	a.renderer.Draw(vis)

	// Destaque do bloco sob a mira
	if center, ok := a.targetCenter(); ok {
		pos := rl.Vector3{X: center.X(), Y: center.Y(), Z: center.Z()}
		rl.DrawCubeWires(pos, 1.01, 1.01, 1.01, rl.Yellow)
	}

	rl.EndMode3D()
}

// drawLoadingScreen desenha a barra de progresso da carga inicial.
func (a *App) drawLoadingScreen() {
	sw := int32(rl.GetScreenWidth())
	sh := int32(rl.GetScreenHeight())

	title := "VoxelHorizon"
	titleSize := int32(40)
	rl.DrawText(title, sw/2-rl.MeasureText(title, titleSize)/2, sh/2-80, titleSize, rl.White)

	barW := int32(400)
	barH := int32(20)
	x := sw/2 - barW/2
	y := sh / 2

	rl.DrawRectangleLines(x, y, barW, barH, rl.Gray)
	fill := int32(float32(barW-4) * a.LoadingProgress)
	rl.DrawRectangle(x+2, y+2, fill, barH-4, rl.SkyBlue)

	rl.DrawText(a.LoadingStatus, sw/2-rl.MeasureText(a.LoadingStatus, 16)/2, y+30, 16, rl.LightGray)
}

// drawHUD desenha a interface sobreposta.
func (a *App) drawHUD() {
	// Mira
	sw := int32(rl.GetScreenWidth())
	sh := int32(rl.GetScreenHeight())
	rl.DrawLine(sw/2-6, sh/2, sw/2+6, sh/2, rl.White)
	rl.DrawLine(sw/2, sh/2-6, sw/2, sh/2+6, rl.White)

	if !a.Config.ShowDebugInfo {
		return
	}

	width := int32(320)
	height := int32(210)
	x := sw - width - 10
	y := int32(10)

	rl.DrawRectangle(x, y, width, height, rl.NewColor(0, 0, 0, 180))
	rl.DrawRectangleLines(x, y, width, height, rl.NewColor(50, 50, 50, 255))

	fps := rl.GetFPS()
	fpsColor := rl.Green
	if fps < 30 {
		fpsColor = rl.Red
	} else if fps < 50 {
		fpsColor = rl.Yellow
	}
	rl.DrawText(fmt.Sprintf("FPS: %d", fps), x+10, y+10, 20, fpsColor)

	rl.DrawLine(x+10, y+35, x+width-10, y+35, rl.NewColor(100, 100, 100, 100))

	pos := a.Cam.Position
	chunk := a.Cam.ChunkCoord()
	rl.DrawText(fmt.Sprintf("Pos: (%.1f, %.1f, %.1f)", pos.X(), pos.Y(), pos.Z()), x+10, y+45, 16, rl.White)
	rl.DrawText(fmt.Sprintf("Chunk: (%d, %d)  Vel: %.0f", chunk.X, chunk.Z, a.Cam.MoveSpeed), x+10, y+65, 14, rl.LightGray)

	rl.DrawLine(x+10, y+85, x+width-10, y+85, rl.NewColor(100, 100, 100, 100))

	models, drawn, culled, gpuBytes := a.renderer.Stats()
	rl.DrawText(fmt.Sprintf("Chunks: %d  Modelos: %d", a.world.Count(), models), x+10, y+95, 14, rl.White)
	rl.DrawText(fmt.Sprintf("Desenhados: %d  Cortados: %d", drawn, culled), x+10, y+113, 14, rl.LightGray)
	rl.DrawText(fmt.Sprintf("GPU: %.1f MB", float64(gpuBytes)/(1024*1024)), x+10, y+131, 14, rl.LightGray)

	rl.DrawLine(x+10, y+151, x+width-10, y+151, rl.NewColor(100, 100, 100, 100))

	rl.DrawText(fmt.Sprintf("Fila gen: %d (+%d ativos)", a.genSched.PendingCount(), a.genSched.InFlightCount()), x+10, y+160, 14, rl.LightGray)
	rl.DrawText(fmt.Sprintf("Fila luz: %d  Fila mesh: %d", a.lightEng.PendingCount(), a.mesher.PendingBuilds()), x+10, y+178, 14, rl.LightGray)
}

// drawPauseMenu escurece a tela e mostra as instruções.
func (a *App) drawPauseMenu() {
	sw := int32(rl.GetScreenWidth())
	sh := int32(rl.GetScreenHeight())

	rl.DrawRectangle(0, 0, sw, sh, rl.NewColor(0, 0, 0, 160))

	title := "PAUSADO"
	rl.DrawText(title, sw/2-rl.MeasureText(title, 40)/2, sh/2-60, 40, rl.White)

	hint := "ESC para voltar | WASD voa | Botão direito olha | B/T/G coloca blocos"
	rl.DrawText(hint, sw/2-rl.MeasureText(hint, 16)/2, sh/2+10, 16, rl.LightGray)
}
