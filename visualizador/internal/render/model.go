package render

import (
	"VoxelHorizon/shared/util"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// SectionModel guarda os modelos de GPU de uma seção. Cada passe de
// renderização tem seu próprio modelo para controlar ordem e blending.
type SectionModel struct {
	Coord util.SectionCoord

	Solid       rl.Model
	Liquid      rl.Model
	Translucent rl.Model

	HasSolid       bool
	HasLiquid      bool
	HasTranslucent bool

	// Centro e raio da esfera envolvente, usados no culling
	Center [3]float32
	Radius float32

	// Estimativa de bytes enviados à GPU para diagnóstico
	GPUBytes int64
}

func (sm *SectionModel) unload() {
	if sm.HasSolid {
		rl.UnloadModel(sm.Solid)
		sm.HasSolid = false
	}
	if sm.HasLiquid {
		rl.UnloadModel(sm.Liquid)
		sm.HasLiquid = false
	}
	if sm.HasTranslucent {
		rl.UnloadModel(sm.Translucent)
		sm.HasTranslucent = false
	}
}
