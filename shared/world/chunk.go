package world

import (
	"fmt"
	"sync/atomic"

	"VoxelHorizon/shared/util"
)

// Chunk é uma coluna vertical do mundo em coordenadas (x, z), composta por
// SectionsPerChunk seções cúbicas cobrindo toda a altura. O chunk é dono
// exclusivo das suas seções.
type Chunk struct {
	coord    util.ChunkCoord
	sections [util.SectionsPerChunk]*Section

	state atomic.Int32

	lightInitialized atomic.Bool

	// dirty marca o chunk para write-back na persistência.
	dirty atomic.Bool

	// simulated marca o chunk como dentro do raio de simulação.
	simulated atomic.Bool
}

// NewChunk cria um chunk vazio (estado Empty, sem terreno).
func NewChunk(coord util.ChunkCoord) *Chunk {
	c := &Chunk{coord: coord}
	for i := range c.sections {
		c.sections[i] = &Section{
			coord:  util.SectionCoord{X: coord.X, Y: int32(i), Z: coord.Z},
			parent: c,
		}
	}
	return c
}

// Coord retorna a coordenada da coluna.
func (c *Chunk) Coord() util.ChunkCoord { return c.coord }

// Section retorna a seção pelo índice vertical (0..SectionsPerChunk-1).
func (c *Chunk) Section(i int32) *Section {
	if i < 0 || i >= util.SectionsPerChunk {
		return nil
	}
	return c.sections[i]
}

// SectionForY retorna a seção que contém a coordenada Y de mundo.
func (c *Chunk) SectionForY(worldY int32) *Section {
	return c.Section(util.SectionIndexForY(worldY))
}

// Sections itera as seções na ordem vertical.
func (c *Chunk) Sections() [util.SectionsPerChunk]*Section { return c.sections }

// Block retorna o bloco em (localX, worldY, localZ). Fora do intervalo
// vertical retorna ar.
func (c *Chunk) Block(lx, worldY, lz int32) BlockID {
	sec := c.SectionForY(worldY)
	if sec == nil {
		return Air
	}
	return sec.Block(lx, util.FloorMod(worldY-util.WorldMinY, util.SectionSize), lz)
}

// SetBlock grava um bloco em (localX, worldY, localZ), marcando a seção
// como geometria suja e o chunk para persistência.
func (c *Chunk) SetBlock(lx, worldY, lz int32, id BlockID) BlockID {
	sec := c.SectionForY(worldY)
	if sec == nil {
		return Air
	}
	old := sec.SetBlock(lx, util.FloorMod(worldY-util.WorldMinY, util.SectionSize), lz, id)
	if old != id {
		c.dirty.Store(true)
	}
	return old
}

// SetBlockRaw grava sem tocar em flags de sujeira nem na marca de
// persistência. Usado pela geração de terreno, que marca tudo ao final.
func (c *Chunk) SetBlockRaw(lx, worldY, lz int32, id BlockID) {
	sec := c.SectionForY(worldY)
	if sec == nil {
		return
	}
	sec.setBlockRaw(lx, util.FloorMod(worldY-util.WorldMinY, util.SectionSize), lz, id)
}

// SkyLight retorna a luz do céu em (localX, worldY, localZ).
func (c *Chunk) SkyLight(lx, worldY, lz int32) uint8 {
	sec := c.SectionForY(worldY)
	if sec == nil {
		return 0
	}
	return sec.SkyLight(lx, util.FloorMod(worldY-util.WorldMinY, util.SectionSize), lz)
}

// SetSkyLight grava a luz do céu. Retorna true se o valor mudou.
func (c *Chunk) SetSkyLight(lx, worldY, lz int32, level uint8) bool {
	sec := c.SectionForY(worldY)
	if sec == nil {
		return false
	}
	return sec.SetSkyLight(lx, util.FloorMod(worldY-util.WorldMinY, util.SectionSize), lz, level)
}

// BlockLight retorna a luz emitida em (localX, worldY, localZ).
func (c *Chunk) BlockLight(lx, worldY, lz int32) uint8 {
	sec := c.SectionForY(worldY)
	if sec == nil {
		return 0
	}
	return sec.BlockLight(lx, util.FloorMod(worldY-util.WorldMinY, util.SectionSize), lz)
}

// SetBlockLight grava a luz emitida. Retorna true se o valor mudou.
func (c *Chunk) SetBlockLight(lx, worldY, lz int32, level uint8) bool {
	sec := c.SectionForY(worldY)
	if sec == nil {
		return false
	}
	return sec.SetBlockLight(lx, util.FloorMod(worldY-util.WorldMinY, util.SectionSize), lz, level)
}

// CombinedLight retorna max(céu, emitida) em (localX, worldY, localZ).
func (c *Chunk) CombinedLight(lx, worldY, lz int32) uint8 {
	sky := c.SkyLight(lx, worldY, lz)
	blk := c.BlockLight(lx, worldY, lz)
	if sky > blk {
		return sky
	}
	return blk
}

// State retorna o estado atual do ciclo de vida.
func (c *Chunk) State() ChunkState { return ChunkState(c.state.Load()) }

// TransitionTo avança a máquina de estados do chunk. Transições ilegais
// são rejeitadas com erro, preservando o estado atual.
func (c *Chunk) TransitionTo(to ChunkState) error {
	for {
		from := ChunkState(c.state.Load())
		if !canTransition(from, to) {
			return fmt.Errorf("chunk %s: transição ilegal %s -> %s", c.coord, from, to)
		}
		if c.state.CompareAndSwap(int32(from), int32(to)) {
			return nil
		}
	}
}

// IsGenerated reporta se o terreno do chunk já existe.
func (c *Chunk) IsGenerated() bool { return c.State() >= StateGenerated }

// IsReady reporta se terreno e iluminação estão completos.
func (c *Chunk) IsReady() bool { return c.State() == StateReady }

// LightInitialized reporta se o flood fill inicial de luz já rodou.
func (c *Chunk) LightInitialized() bool { return c.lightInitialized.Load() }

// SetLightInitialized marca o flood fill inicial como concluído.
func (c *Chunk) SetLightInitialized(v bool) { c.lightInitialized.Store(v) }

// Dirty reporta se o chunk tem edições não persistidas.
func (c *Chunk) Dirty() bool { return c.dirty.Load() }

// MarkDirty marca o chunk para write-back.
func (c *Chunk) MarkDirty() { c.dirty.Store(true) }

// ClearDirty limpa a marca de persistência (após salvar).
func (c *Chunk) ClearDirty() { c.dirty.Store(false) }

// Simulated reporta se o chunk está no raio de simulação.
func (c *Chunk) Simulated() bool { return c.simulated.Load() }

// SetSimulated marca/desmarca o chunk para simulação.
func (c *Chunk) SetSimulated(v bool) { c.simulated.Store(v) }

// MarkAllGeometryDirty marca todas as seções não-vazias para remesh.
// Usado após a geração e a iluminação inicial.
func (c *Chunk) MarkAllGeometryDirty() {
	for _, sec := range c.sections {
		if !sec.IsEmpty() {
			sec.MarkGeometryDirty()
		}
	}
}
