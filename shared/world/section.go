package world

import (
	"sync/atomic"

	"VoxelHorizon/shared/util"
)

// sectionVolume é o número de voxels de uma seção (16³).
const sectionVolume = util.SectionSize * util.SectionSize * util.SectionSize

// Section é um cubo de 16³ voxels dentro de um chunk. É a unidade de
// granularidade de mesh e de iluminação. A seção pertence exclusivamente ao
// chunk pai; agendadores guardam apenas a coordenada, nunca a posse.
//
// Duas flags de sujeira independentes: geometria (forma de bloco mudou) e
// iluminação (valores de luz mudaram). Uma mudança só de luz não precisa
// refazer o face culling, apenas as cores dos vértices.
type Section struct {
	coord  util.SectionCoord
	parent *Chunk

	blocks     [sectionVolume]BlockID
	skyLight   [sectionVolume]uint8
	blockLight [sectionVolume]uint8

	nonAir int32

	needsGeometryRebuild atomic.Bool
	needsLightingUpdate  atomic.Bool

	// building impede duas construções de mesh simultâneas da mesma seção.
	building atomic.Bool
}

// blockIndex lineariza coordenadas locais (0-15) no array denso.
func blockIndex(lx, ly, lz int32) int32 {
	return (ly*util.SectionSize+lz)*util.SectionSize + lx
}

// Coord retorna a coordenada da seção no grid de seções.
func (s *Section) Coord() util.SectionCoord { return s.coord }

// Parent retorna o chunk dono da seção.
func (s *Section) Parent() *Chunk { return s.parent }

// Block retorna o bloco na posição local.
func (s *Section) Block(lx, ly, lz int32) BlockID {
	return s.blocks[blockIndex(lx, ly, lz)]
}

// SetBlock grava um bloco na posição local e atualiza o contador de
// não-ar e as flags de sujeira. Retorna o bloco anterior.
func (s *Section) SetBlock(lx, ly, lz int32, id BlockID) BlockID {
	idx := blockIndex(lx, ly, lz)
	old := s.blocks[idx]
	if old == id {
		return old
	}
	s.blocks[idx] = id

	if old == Air && id != Air {
		s.nonAir++
	} else if old != Air && id == Air {
		s.nonAir--
	}

	s.needsGeometryRebuild.Store(true)
	return old
}

// setBlockRaw grava sem tocar nas flags. Usado pela geração de terreno,
// que marca a seção inteira ao final.
func (s *Section) setBlockRaw(lx, ly, lz int32, id BlockID) {
	idx := blockIndex(lx, ly, lz)
	old := s.blocks[idx]
	if old == id {
		return
	}
	s.blocks[idx] = id
	if old == Air && id != Air {
		s.nonAir++
	} else if old != Air && id == Air {
		s.nonAir--
	}
}

// SkyLight retorna a luz do céu (0-15) na posição local.
func (s *Section) SkyLight(lx, ly, lz int32) uint8 {
	return s.skyLight[blockIndex(lx, ly, lz)]
}

// SetSkyLight grava a luz do céu. Retorna true se o valor mudou.
func (s *Section) SetSkyLight(lx, ly, lz int32, level uint8) bool {
	idx := blockIndex(lx, ly, lz)
	if s.skyLight[idx] == level {
		return false
	}
	s.skyLight[idx] = level
	return true
}

// BlockLight retorna a luz emitida (0-15) na posição local.
func (s *Section) BlockLight(lx, ly, lz int32) uint8 {
	return s.blockLight[blockIndex(lx, ly, lz)]
}

// SetBlockLight grava a luz emitida. Retorna true se o valor mudou.
func (s *Section) SetBlockLight(lx, ly, lz int32, level uint8) bool {
	idx := blockIndex(lx, ly, lz)
	if s.blockLight[idx] == level {
		return false
	}
	s.blockLight[idx] = level
	return true
}

// CombinedLight retorna max(luz do céu, luz emitida) na posição local.
func (s *Section) CombinedLight(lx, ly, lz int32) uint8 {
	idx := blockIndex(lx, ly, lz)
	if s.skyLight[idx] > s.blockLight[idx] {
		return s.skyLight[idx]
	}
	return s.blockLight[idx]
}

// IsEmpty reporta se a seção contém apenas ar.
func (s *Section) IsEmpty() bool { return s.nonAir == 0 }

// NonAirCount retorna o número de voxels não-ar.
func (s *Section) NonAirCount() int32 { return s.nonAir }

// NeedsGeometryRebuild reporta a flag de geometria suja.
func (s *Section) NeedsGeometryRebuild() bool { return s.needsGeometryRebuild.Load() }

// NeedsLightingUpdate reporta a flag de iluminação suja.
func (s *Section) NeedsLightingUpdate() bool { return s.needsLightingUpdate.Load() }

// NeedsRebuild reporta se a seção precisa de qualquer reconstrução.
func (s *Section) NeedsRebuild() bool {
	return s.needsGeometryRebuild.Load() || s.needsLightingUpdate.Load()
}

// NeedsOnlyLighting reporta se apenas as cores de luz precisam refazer.
func (s *Section) NeedsOnlyLighting() bool {
	return s.needsLightingUpdate.Load() && !s.needsGeometryRebuild.Load()
}

// MarkGeometryDirty pede uma reconstrução de geometria.
func (s *Section) MarkGeometryDirty() { s.needsGeometryRebuild.Store(true) }

// MarkLightingDirty pede uma atualização de cores de luz.
func (s *Section) MarkLightingDirty() { s.needsLightingUpdate.Store(true) }

// ClearDirty limpa as duas flags. Chamado pelo passo de upload após a troca
// atômica do modelo.
func (s *Section) ClearDirty() {
	s.needsGeometryRebuild.Store(false)
	s.needsLightingUpdate.Store(false)
}

// TryBeginBuild marca a seção como em construção. Retorna false se outra
// construção já está em andamento.
func (s *Section) TryBeginBuild() bool {
	return s.building.CompareAndSwap(false, true)
}

// EndBuild libera a guarda de construção.
func (s *Section) EndBuild() { s.building.Store(false) }

// IsBuilding reporta se há uma construção de mesh em andamento.
func (s *Section) IsBuilding() bool { return s.building.Load() }
