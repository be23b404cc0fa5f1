package render

import (
	"testing"

	"VoxelHorizon/shared/util"
	"VoxelHorizon/shared/world"
)

func TestOwnsSectionTracksResidency(t *testing.T) {
	w := world.New(1)
	r := NewRenderer(w)

	sec := util.SectionCoord{X: 2, Y: 3, Z: 2}
	if r.ownsSection(sec) {
		t.Error("seção sem chunk residente não deveria ter dono")
	}

	w.GetOrCreateChunk(sec.Chunk())
	if !r.ownsSection(sec) {
		t.Error("seção de chunk residente deveria ter dono")
	}

	// Depois da eviction o resultado de mesh fica órfão e o upload é
	// descartado
	w.RemoveChunk(sec.Chunk())
	if r.ownsSection(sec) {
		t.Error("seção de chunk evictado não deveria ter dono")
	}
}
