package light

import (
	"log"

	"VoxelHorizon/shared/util"
	"VoxelHorizon/shared/world"

	"github.com/alitto/pond/v2"
)

// channel seleciona qual das duas camadas de luz um flood fill escreve.
type channel uint8

const (
	channelSky channel = iota
	channelBlock
)

// node é uma célula na frente de propagação do flood fill.
type node struct {
	x, y, z int32
	level   uint8
}

// Engine é o motor de propagação de luz estática. Duas camadas
// independentes: luz do céu (visibilidade do céu, varredura descendente
// por coluna) e luz emitida (flood fill BFS a partir dos emissores).
// Os valores são estáticos: nenhuma mudança ambiental global os invalida.
type Engine struct {
	world *world.World

	queue *util.UniqueQueue[util.ChunkCoord, *world.Chunk]
	pool  pond.Pool

	opsBudget int
	perTick   int
	debugLog  bool
}

// NewEngine cria o motor de iluminação.
// workers limita recomputações simultâneas; perTick limita quantos chunks
// saem da fila por ciclo; opsBudget limita as operações de um flood fill.
func NewEngine(w *world.World, workers, perTick, opsBudget int) *Engine {
	return &Engine{
		world:     w,
		queue:     util.NewUniqueQueue[util.ChunkCoord, *world.Chunk](),
		pool:      pond.NewPool(workers),
		opsBudget: opsBudget,
		perTick:   perTick,
	}
}

// SetDebugLog liga o log detalhado do motor.
func (e *Engine) SetDebugLog(v bool) { e.debugLog = v }

// InitializeForChunk roda o flood fill de primeira carga: varredura de céu
// em todas as colunas e BFS de luz emitida a partir dos emissores do
// chunk. Propagação limitada ao próprio chunk (vizinhos podem nem existir
// ainda). Não pede remesh: isso é responsabilidade do chamador, depois
// que geração e iluminação terminam.
func (e *Engine) InitializeForChunk(c *world.Chunk) {
	for lx := int32(0); lx < util.SectionSize; lx++ {
		for lz := int32(0); lz < util.SectionSize; lz++ {
			e.recomputeSkyColumn(c, lx, lz, false)
		}
	}
	e.rebuildBlockLight(c, false)
	c.SetLightInitialized(true)
}

// InitializeAsync roda InitializeForChunk num worker do pool e chama done
// ao concluir. Chunks evictados enquanto esperavam viram no-op.
func (e *Engine) InitializeAsync(c *world.Chunk, done func(*world.Chunk)) {
	e.pool.Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[PANIC] Iluminação inicial do chunk %s: %v", c.Coord(), r)
			}
		}()
		if e.world.Chunk(c.Coord()) != c {
			return
		}
		e.InitializeForChunk(c)
		if done != nil {
			done(c)
		}
	})
}

// QueueForUpdate agenda a rederivação assíncrona da luz do chunk após uma
// edição. Enfileiramentos repetidos do mesmo chunk colapsam em um.
func (e *Engine) QueueForUpdate(c *world.Chunk) {
	e.queue.Enqueue(c.Coord(), c)
}

// Tick drena um lote limitado de chunks da fila para o pool de workers.
func (e *Engine) Tick() {
	for i := 0; i < e.perTick; i++ {
		_, c, ok := e.queue.Dequeue()
		if !ok {
			return
		}
		e.pool.Submit(func() { e.recompute(c) })
	}
}

// recompute rederiva as duas camadas do chunk inteiro, marcando
// needsLightingUpdate apenas nas seções cujos valores mudaram de fato.
func (e *Engine) recompute(c *world.Chunk) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] Iluminação do chunk %s: %v", c.Coord(), r)
		}
	}()

	// Chunk evictado enquanto esperava na fila: no-op.
	if e.world.Chunk(c.Coord()) != c {
		return
	}

	for lx := int32(0); lx < util.SectionSize; lx++ {
		for lz := int32(0); lz < util.SectionSize; lz++ {
			e.recomputeSkyColumn(c, lx, lz, true)
		}
	}
	e.rebuildBlockLight(c, true)
}

// OnBlockPlaced atualiza a luz em volta de um bloco recém-colocado:
// recomputa a coluna de céu (uma sombra nova desce a coluna inteira),
// semeia a emissão se o bloco emite e re-propaga a vizinhança se o bloco
// obstrui.
func (e *Engine) OnBlockPlaced(c *world.Chunk, lx, worldY, lz int32, id world.BlockID) {
	e.recomputeSkyColumn(c, lx, lz, true)

	coord := c.Coord()
	wx := coord.X*util.SectionSize + lx
	wz := coord.Z*util.SectionSize + lz

	if emission := id.Emission(); emission > 0 {
		if e.setLight(channelBlock, wx, worldY, wz, emission, nil, true) {
			e.flood(channelBlock, []node{{wx, worldY, wz, emission}}, nil, true)
		}
		return
	}

	if id.IsOpaque() {
		e.setLight(channelBlock, wx, worldY, wz, 0, nil, true)
		e.refloodFromNeighbors(channelBlock, wx, worldY, wz, true)
	}
}

// OnBlockRemoved atualiza a luz após uma remoção: recomputa a coluna de
// céu e re-propaga as duas camadas para dentro da célula desocupada a
// partir dos seis vizinhos (bolsões internos expostos recebem luz por
// flood fill de 6 vizinhos, não pela varredura descendente).
func (e *Engine) OnBlockRemoved(c *world.Chunk, lx, worldY, lz int32) {
	e.recomputeSkyColumn(c, lx, lz, true)

	coord := c.Coord()
	wx := coord.X*util.SectionSize + lx
	wz := coord.Z*util.SectionSize + lz

	e.refloodFromNeighbors(channelSky, wx, worldY, wz, true)
	e.refloodFromNeighbors(channelBlock, wx, worldY, wz, true)
}

// CancelChunkUpdates descarta atualizações pendentes do chunk (eviction).
func (e *Engine) CancelChunkUpdates(coord util.ChunkCoord) {
	e.queue.Remove(coord)
}

// PendingCount retorna o número de chunks aguardando rederivação.
func (e *Engine) PendingCount() int { return e.queue.Len() }

// Stop espera os workers terminarem.
func (e *Engine) Stop() {
	e.queue.Clear()
	e.pool.StopAndWait()
}

// recomputeSkyColumn refaz a varredura descendente de uma coluna: 15 no
// topo, inalterada pelo ar, decrementada por blocos atenuantes (água,
// folhas) e zerada ao cruzar um bloco opaco. Retorna true se algum valor
// mudou. Com mark, seções alteradas recebem needsLightingUpdate.
func (e *Engine) recomputeSkyColumn(c *world.Chunk, lx, lz int32, mark bool) bool {
	changed := false
	level := uint8(MaxLevel)

	for y := int32(util.WorldMaxY - 1); y >= util.WorldMinY; y-- {
		def := c.Block(lx, y, lz).Def()
		switch {
		case def.Opaque:
			level = 0
		case def.Attenuates:
			if level > 0 {
				level--
			}
		}
		if c.SetSkyLight(lx, y, lz, level) {
			changed = true
			if mark {
				if sec := c.SectionForY(y); sec != nil {
					sec.MarkLightingDirty()
				}
			}
		}
	}
	return changed
}

// rebuildBlockLight rederiva a luz emitida do chunk inteiro: zera a
// camada, semeia os emissores e propaga. Limitada ao chunk.
func (e *Engine) rebuildBlockLight(c *world.Chunk, mark bool) {
	var seeds []node
	coord := c.Coord()

	for lx := int32(0); lx < util.SectionSize; lx++ {
		for lz := int32(0); lz < util.SectionSize; lz++ {
			for y := int32(util.WorldMinY); y < util.WorldMaxY; y++ {
				id := c.Block(lx, y, lz)
				emission := id.Emission()
				if c.SetBlockLight(lx, y, lz, emission) && mark {
					if sec := c.SectionForY(y); sec != nil {
						sec.MarkLightingDirty()
					}
				}
				if emission > 1 {
					seeds = append(seeds, node{
						x:     coord.X*util.SectionSize + lx,
						y:     y,
						z:     coord.Z*util.SectionSize + lz,
						level: emission,
					})
				}
			}
		}
	}

	if len(seeds) > 0 {
		e.flood(channelBlock, seeds, c, mark)
	}
}

// refloodFromNeighbors semeia um flood fill a partir dos valores atuais
// dos seis vizinhos da posição, re-propagando luz para dentro da região
// editada.
func (e *Engine) refloodFromNeighbors(ch channel, wx, worldY, wz int32, mark bool) {
	var seeds []node
	for _, off := range util.DirOffsets {
		nx, ny, nz := wx+off[0], worldY+off[1], wz+off[2]
		if !util.ValidWorldY(ny) {
			continue
		}
		if level, ok := e.getLight(ch, nx, ny, nz, nil); ok && level > 1 {
			seeds = append(seeds, node{nx, ny, nz, level})
		}
	}
	if len(seeds) > 0 {
		e.flood(ch, seeds, nil, mark)
	}
}

// flood propaga níveis decrescentes pelos 6 vizinhos, visitando cada
// célula no máximo uma vez por passada, limitado pelo orçamento de
// operações. Só eleva valores (nunca rebaixa), o que torna passadas
// repetidas idempotentes. only limita a propagação a um único chunk.
func (e *Engine) flood(ch channel, seeds []node, only *world.Chunk, mark bool) {
	visited := make(map[[3]int32]bool, len(seeds)*8)
	queue := seeds
	ops := 0

	for len(queue) > 0 && ops < e.opsBudget {
		n := queue[0]
		queue = queue[1:]
		ops++

		if n.level <= 1 {
			continue
		}

		for _, off := range util.DirOffsets {
			nx, ny, nz := n.x+off[0], n.y+off[1], n.z+off[2]
			if !util.ValidWorldY(ny) {
				continue
			}
			key := [3]int32{nx, ny, nz}
			if visited[key] {
				continue
			}
			visited[key] = true

			id, ok := e.blockAt(nx, ny, nz, only)
			if !ok || id.IsOpaque() {
				continue
			}

			next := n.level - 1
			if cur, ok := e.getLight(ch, nx, ny, nz, only); !ok || cur >= next {
				continue
			}
			e.setLight(ch, nx, ny, nz, next, only, mark)
			queue = append(queue, node{nx, ny, nz, next})
		}
	}
}

// cellChunk resolve a posição de mundo para (chunk, local). only limita a
// resolução a um único chunk; fora dele, ou em chunks não gerados, a
// célula não é endereçável.
func (e *Engine) cellChunk(wx, wz int32, only *world.Chunk) (*world.Chunk, int32, int32) {
	coord := util.WorldToChunk(wx, wz)
	if only != nil {
		if coord != only.Coord() {
			return nil, 0, 0
		}
		return only, util.WorldToLocal(wx), util.WorldToLocal(wz)
	}
	c := e.world.Chunk(coord)
	if c == nil || !c.IsGenerated() {
		return nil, 0, 0
	}
	return c, util.WorldToLocal(wx), util.WorldToLocal(wz)
}

func (e *Engine) blockAt(wx, wy, wz int32, only *world.Chunk) (world.BlockID, bool) {
	c, lx, lz := e.cellChunk(wx, wz, only)
	if c == nil {
		return world.Air, false
	}
	return c.Block(lx, wy, lz), true
}

func (e *Engine) getLight(ch channel, wx, wy, wz int32, only *world.Chunk) (uint8, bool) {
	c, lx, lz := e.cellChunk(wx, wz, only)
	if c == nil {
		return 0, false
	}
	if ch == channelSky {
		return c.SkyLight(lx, wy, lz), true
	}
	return c.BlockLight(lx, wy, lz), true
}

func (e *Engine) setLight(ch channel, wx, wy, wz int32, level uint8, only *world.Chunk, mark bool) bool {
	c, lx, lz := e.cellChunk(wx, wz, only)
	if c == nil {
		return false
	}
	var changed bool
	if ch == channelSky {
		changed = c.SetSkyLight(lx, wy, lz, level)
	} else {
		changed = c.SetBlockLight(lx, wy, lz, level)
	}
	if changed && mark {
		if sec := c.SectionForY(wy); sec != nil {
			sec.MarkLightingDirty()
		}
	}
	return changed
}
