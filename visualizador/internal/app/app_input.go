package app

import (
	"log"
	"math"

	"VoxelHorizon/shared/world"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// Alcance máximo da mira, em blocos.
const reachDistance = 8.0

// updateInput trata teclas globais e edição de blocos.
func (a *App) updateInput() {
	// Pause
	if rl.IsKeyPressed(rl.KeyEscape) {
		if a.State == StatePaused {
			a.State = StateViewing
		} else if a.State == StateViewing {
			a.State = StatePaused
		}
		return
	}

	if a.State != StateViewing {
		return
	}

	// Toggles de debug
	if rl.IsKeyPressed(rl.KeyF3) {
		a.Config.ShowDebugInfo = !a.Config.ShowDebugInfo
	}
	if rl.IsKeyPressed(rl.KeyF4) {
		a.Config.WireframeMode = !a.Config.WireframeMode
	}

	a.updateTarget()

	// Edição: clique esquerdo remove, teclas colocam na célula em frente
	if a.targetBlock != nil && rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		t := *a.targetBlock
		a.world.SetBlock(t[0], t[1], t[2], world.Air)
		log.Printf("[Input] bloco removido em (%d, %d, %d)", t[0], t[1], t[2])
	}
	if a.placementPos != nil {
		p := *a.placementPos
		if rl.IsKeyPressed(rl.KeyB) {
			a.world.SetBlock(p[0], p[1], p[2], world.Stone)
		}
		if rl.IsKeyPressed(rl.KeyT) {
			a.world.SetBlock(p[0], p[1], p[2], world.Torch)
			log.Printf("[Input] tocha colocada em (%d, %d, %d)", p[0], p[1], p[2])
		}
		if rl.IsKeyPressed(rl.KeyG) {
			a.world.SetBlock(p[0], p[1], p[2], world.Glowstone)
		}
	}
}

// updateTarget faz um raycast voxel a voxel na direção da câmera e
// guarda o primeiro bloco sólido e a célula vazia imediatamente antes.
func (a *App) updateTarget() {
	a.targetBlock = nil
	a.placementPos = nil

	origin := a.Cam.Position
	dir := a.Cam.Forward()

	cell := [3]int32{
		int32(math.Floor(float64(origin.X()))),
		int32(math.Floor(float64(origin.Y()))),
		int32(math.Floor(float64(origin.Z()))),
	}
	prev := cell

	step := [3]int32{}
	tMax := [3]float32{}
	tDelta := [3]float32{}
	for i := 0; i < 3; i++ {
		d := dir[i]
		if d > 0 {
			step[i] = 1
			tMax[i] = (float32(cell[i]+1) - origin[i]) / d
			tDelta[i] = 1 / d
		} else if d < 0 {
			step[i] = -1
			tMax[i] = (origin[i] - float32(cell[i])) / -d
			tDelta[i] = -1 / d
		} else {
			step[i] = 0
			tMax[i] = float32(math.Inf(1))
			tDelta[i] = float32(math.Inf(1))
		}
	}

	var traveled float32
	for traveled < reachDistance {
		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}
		traveled = tMax[axis]
		tMax[axis] += tDelta[axis]
		prev = cell
		cell[axis] += step[axis]

		id := a.world.Block(cell[0], cell[1], cell[2])
		if id.IsSolid() {
			a.targetBlock = &[3]int32{cell[0], cell[1], cell[2]}
			if a.world.Block(prev[0], prev[1], prev[2]) == world.Air {
				a.placementPos = &[3]int32{prev[0], prev[1], prev[2]}
			}
			return
		}
	}
}

// targetCenter retorna o centro do bloco sob a mira, para o destaque.
func (a *App) targetCenter() (mgl32.Vec3, bool) {
	if a.targetBlock == nil {
		return mgl32.Vec3{}, false
	}
	t := *a.targetBlock
	return mgl32.Vec3{float32(t[0]) + 0.5, float32(t[1]) + 0.5, float32(t[2]) + 0.5}, true
}
