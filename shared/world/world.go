package world

import (
	"log"
	"sync"

	"VoxelHorizon/shared/util"
)

// LightHooks é o contrato do motor de iluminação visto pela pipeline de
// edição de blocos. Mantido como interface para não acoplar o armazenamento
// ao motor.
type LightHooks interface {
	OnBlockPlaced(c *Chunk, lx, worldY, lz int32, id BlockID)
	OnBlockRemoved(c *Chunk, lx, worldY, lz int32)
}

// World guarda os chunks carregados, indexados pela coordenada da coluna.
type World struct {
	mu     sync.RWMutex
	chunks map[util.ChunkCoord]*Chunk

	seed int64

	lighting LightHooks

	debugLog bool
}

// New cria um mundo vazio com a seed dada.
func New(seed int64) *World {
	return &World{
		chunks: make(map[util.ChunkCoord]*Chunk),
		seed:   seed,
	}
}

// Seed retorna a seed de geração do mundo.
func (w *World) Seed() int64 { return w.seed }

// SetLightHooks conecta o motor de iluminação à pipeline de edição.
func (w *World) SetLightHooks(h LightHooks) { w.lighting = h }

// SetDebugLog liga o log detalhado de edições.
func (w *World) SetDebugLog(v bool) { w.debugLog = v }

// Chunk retorna o chunk na coordenada, ou nil.
func (w *World) Chunk(coord util.ChunkCoord) *Chunk {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.chunks[coord]
}

// GetOrCreateChunk retorna o chunk existente ou cria um vazio (Empty).
func (w *World) GetOrCreateChunk(coord util.ChunkCoord) *Chunk {
	w.mu.Lock()
	defer w.mu.Unlock()
	if c, ok := w.chunks[coord]; ok {
		return c
	}
	c := NewChunk(coord)
	w.chunks[coord] = c
	return c
}

// RemoveChunk retira o chunk do mundo e o retorna (nil se não existia).
// O chamador é responsável por cancelar trabalho em andamento e liberar
// os recursos de GPU do chunk removido.
func (w *World) RemoveChunk(coord util.ChunkCoord) *Chunk {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, ok := w.chunks[coord]
	if !ok {
		return nil
	}
	delete(w.chunks, coord)
	return c
}

// Count retorna o número de chunks residentes.
func (w *World) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.chunks)
}

// Snapshot retorna uma cópia da lista de chunks residentes.
func (w *World) Snapshot() []*Chunk {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*Chunk, 0, len(w.chunks))
	for _, c := range w.chunks {
		out = append(out, c)
	}
	return out
}

// Coords retorna uma cópia do conjunto de coordenadas residentes.
func (w *World) Coords() []util.ChunkCoord {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]util.ChunkCoord, 0, len(w.chunks))
	for coord := range w.chunks {
		out = append(out, coord)
	}
	return out
}

// Block retorna o bloco em coordenadas de mundo. Chunks ausentes ou ainda
// não gerados contam como ar.
func (w *World) Block(worldX, worldY, worldZ int32) BlockID {
	if !util.ValidWorldY(worldY) {
		return Air
	}
	c := w.Chunk(util.WorldToChunk(worldX, worldZ))
	if c == nil || !c.IsGenerated() {
		return Air
	}
	return c.Block(util.WorldToLocal(worldX), worldY, util.WorldToLocal(worldZ))
}

// SetBlock grava um bloco em coordenadas de mundo e dispara a pipeline de
// edição: atualização localizada de luz, marcação da seção dona e das
// seções vizinhas quando a edição cai numa face de borda do chunk.
func (w *World) SetBlock(worldX, worldY, worldZ int32, id BlockID) {
	if !util.ValidWorldY(worldY) {
		return
	}
	coord := util.WorldToChunk(worldX, worldZ)
	c := w.Chunk(coord)
	if c == nil || !c.IsGenerated() {
		return
	}

	lx := util.WorldToLocal(worldX)
	lz := util.WorldToLocal(worldZ)

	old := c.SetBlock(lx, worldY, lz, id)
	if old == id {
		return
	}

	if w.debugLog {
		log.Printf("[Mundo] Bloco %s -> %s em (%d, %d, %d)", old, id, worldX, worldY, worldZ)
	}

	if w.lighting != nil {
		if id.IsAir() {
			w.lighting.OnBlockRemoved(c, lx, worldY, lz)
		} else {
			w.lighting.OnBlockPlaced(c, lx, worldY, lz, id)
		}
	}

	// Edições na borda mudam o face culling do chunk lateral.
	w.markEdgeNeighbors(coord, lx, worldY, lz)
}

// markEdgeNeighbors marca a seção lateral adjacente quando a edição está
// numa face de borda do chunk.
func (w *World) markEdgeNeighbors(coord util.ChunkCoord, lx, worldY, lz int32) {
	secY := util.SectionIndexForY(worldY)
	mark := func(dx, dz int32) {
		n := w.Chunk(coord.Add(dx, dz))
		if n == nil || !n.IsReady() {
			return
		}
		if sec := n.Section(secY); sec != nil {
			sec.MarkGeometryDirty()
		}
	}
	if lx == 0 {
		mark(-1, 0)
	}
	if lx == util.SectionSize-1 {
		mark(1, 0)
	}
	if lz == 0 {
		mark(0, -1)
	}
	if lz == util.SectionSize-1 {
		mark(0, 1)
	}
}

// SkyLightAt retorna a luz do céu em coordenadas de mundo (0 se ausente).
func (w *World) SkyLightAt(worldX, worldY, worldZ int32) uint8 {
	if !util.ValidWorldY(worldY) {
		return 0
	}
	c := w.Chunk(util.WorldToChunk(worldX, worldZ))
	if c == nil || !c.LightInitialized() {
		return 0
	}
	return c.SkyLight(util.WorldToLocal(worldX), worldY, util.WorldToLocal(worldZ))
}

// BlockLightAt retorna a luz emitida em coordenadas de mundo (0 se ausente).
func (w *World) BlockLightAt(worldX, worldY, worldZ int32) uint8 {
	if !util.ValidWorldY(worldY) {
		return 0
	}
	c := w.Chunk(util.WorldToChunk(worldX, worldZ))
	if c == nil || !c.LightInitialized() {
		return 0
	}
	return c.BlockLight(util.WorldToLocal(worldX), worldY, util.WorldToLocal(worldZ))
}

// LightAt retorna a luz combinada (max céu/emitida) em coordenadas de mundo.
func (w *World) LightAt(worldX, worldY, worldZ int32) uint8 {
	sky := w.SkyLightAt(worldX, worldY, worldZ)
	blk := w.BlockLightAt(worldX, worldY, worldZ)
	if sky > blk {
		return sky
	}
	return blk
}

// NeighborsGenerated reporta se os quatro chunks horizontais adjacentes já
// têm terreno. Pré-condição para um remesh completo sem costuras visíveis.
func (w *World) NeighborsGenerated(coord util.ChunkCoord) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, d := range [4][2]int32{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		n, ok := w.chunks[coord.Add(d[0], d[1])]
		if !ok || !n.IsGenerated() {
			return false
		}
	}
	return true
}

// MarkNeighborsForRebuild marca as seções dos quatro chunks laterais para
// remesh (costuras de borda após um chunk novo ficar pronto).
func (w *World) MarkNeighborsForRebuild(coord util.ChunkCoord) {
	for _, d := range [4][2]int32{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		n := w.Chunk(coord.Add(d[0], d[1]))
		if n != nil && n.IsReady() {
			n.MarkAllGeometryDirty()
		}
	}
}
