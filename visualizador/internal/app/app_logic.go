package app

import (
	"math"

	"VoxelHorizon/shared/util"
	"VoxelHorizon/visualizador/internal/telemetry"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// update roda um tick completo do pipeline na ordem: streaming,
// geração, luz, meshing, upload. O upload vive na thread principal
// porque toda chamada de GPU precisa acontecer aqui.
func (a *App) update() {
	a.frameCount++
	dt := rl.GetFrameTime()

	switch a.State {
	case StatePaused:
		a.updateInput()
		return

	case StateLoading:
		a.tickPipelines()
		// Orçamento de upload maior durante a carga inicial
		a.renderer.DrainResults(a.mesher.Results(), a.Config.UploadPerTick*4)
		a.updateLoadingProgress()

	case StateViewing:
		a.updateInput()
		a.Cam.HandleInput(dt)
		a.Cam.Update(dt)

		a.tickPipelines()
		a.renderer.DrainResults(a.mesher.Results(), a.Config.UploadPerTick)
		a.renderer.ProcessPurge()

		if a.autosave != nil && a.frameCount%30 == 0 {
			a.autosave.Tick(a.world)
		}
	}

	a.updateDaylight()
	a.publishTelemetry()
}

// tickPipelines drena cada estágio respeitando os tetos por ciclo.
func (a *App) tickPipelines() {
	center := a.Cam.ChunkCoord()

	a.loader.Tick(center)
	a.genSched.Tick()
	a.lightEng.Tick()

	a.scheduleRebuilds(center)
	a.mesher.Tick()
}

// scheduleRebuilds varre os chunks prontos e pede rebuild das seções
// sujas, priorizando o que está perto ou na frente da câmera.
func (a *App) scheduleRebuilds(center util.ChunkCoord) {
	vis := a.Cam.Visibility(a.Config.FOV, a.Config.FrustumMarginDeg,
		float32(a.Config.LoadRadius+2)*util.SectionSize)
	urgentDistSq := float64(a.Config.UrgentDistChunks * a.Config.UrgentDistChunks)

	half := float32(util.SectionSize) / 2
	radius := half * 1.7320508

	for _, c := range a.world.Snapshot() {
		if !c.IsReady() {
			continue
		}
		coord := c.Coord()
		chunkDistSq := coord.DistSq(center)

		for _, sec := range c.Sections() {
			if !sec.NeedsRebuild() || sec.IsBuilding() {
				continue
			}
			sc := sec.Coord()
			secCenter := mgl32.Vec3{
				float32(sc.X*util.SectionSize) + half,
				float32(sc.MinWorldY()) + half,
				float32(sc.Z*util.SectionSize) + half,
			}
			urgent := chunkDistSq <= urgentDistSq || vis.LikelyVisible(secCenter, radius)
			a.mesher.RequestRebuild(sec, urgent, chunkDistSq)
		}
	}
}

// updateLoadingProgress acompanha a carga inicial e libera o voo quando
// a vizinhança imediata está pronta.
func (a *App) updateLoadingProgress() {
	pending := a.loader.PendingLoads() + a.genSched.PendingCount() +
		a.genSched.InFlightCount() + a.lightEng.PendingCount()

	total := int(2*a.Config.LoadRadius+1) * int(2*a.Config.LoadRadius+1)
	done := a.world.Count() - pending
	if done < 0 {
		done = 0
	}
	a.LoadingProgress = util.Clamp(float32(done)/float32(total), 0, 1)
	a.LoadingStatus = "Gerando terreno..."

	// Considera pronto quando o pipeline esvaziou e há algo na tela
	models, _, _, _ := a.renderer.Stats()
	if pending == 0 && a.mesher.PendingBuilds() == 0 && models > 0 {
		a.Loading = false
		a.State = StateViewing
		a.LoadingStatus = ""
	}
}

// updateDaylight avança o ciclo de dia e noite. O multiplicador só
// afeta o desenho, nunca os dados de luz.
func (a *App) updateDaylight() {
	phase := math.Mod(rl.GetTime(), dayLengthSec) / dayLengthSec
	// Seno deslocado: meio-dia no pico, madrugada no vale
	raw := 0.5 + 0.5*math.Sin(2*math.Pi*phase)
	mult := 0.25 + 0.75*raw
	a.renderer.SetDaylight(float32(mult))
}

func (a *App) publishTelemetry() {
	models, drawn, culled, gpuBytes := a.renderer.Stats()
	pos := a.Cam.Position
	a.telemetry.Publish(telemetry.Snapshot{
		FPS:         rl.GetFPS(),
		CameraPos:   [3]float32{pos.X(), pos.Y(), pos.Z()},
		ChunkCount:  a.world.Count(),
		PendingGen:  a.genSched.PendingCount(),
		InFlightGen: a.genSched.InFlightCount(),
		PendingLux:  a.lightEng.PendingCount(),
		PendingMesh: a.mesher.PendingBuilds(),
		Models:      models,
		DrawnSec:    drawn,
		CulledSec:   culled,
		GPUBytes:    gpuBytes,
		Daylight:    a.renderer.Daylight(),
	})
}
