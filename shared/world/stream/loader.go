// Package stream decide, a partir do ponto de vista, quais chunks entram e
// saem do mundo, e empurra os recém-gerados pela pipeline de iluminação.
package stream

import (
	"log"

	"VoxelHorizon/shared/util"
	"VoxelHorizon/shared/world"
	"VoxelHorizon/shared/world/gen"
	"VoxelHorizon/shared/world/light"
)

// unloadMargin é a histerese entre o raio de carga e o de descarga, para
// não oscilar carregando/descarregando na fronteira.
const unloadMargin = 2

// MeshCanceller cancela o trabalho de mesh pendente de um chunk evictado.
type MeshCanceller interface {
	CancelChunk(coord util.ChunkCoord)
}

// ModelReleaser libera os buffers de GPU residentes de um chunk evictado.
type ModelReleaser interface {
	PurgeChunk(coord util.ChunkCoord)
}

// ChunkSaver persiste um chunk sujo no momento da eviction (write-back).
type ChunkSaver interface {
	Save(c *world.Chunk) error
}

// loadTask é o registro imutável de uma carga pendente.
type loadTask struct {
	coord  util.ChunkCoord
	distSq float64
	seq    uint64
}

func loadLess(a, b loadTask) bool {
	if a.distSq != b.distSq {
		return a.distSq < b.distSq
	}
	return a.seq < b.seq
}

// LoadManager mantém o conjunto de chunks residentes em volta do ponto de
// vista: carrega os que faltam dentro do raio (mais próximos primeiro),
// descarrega os que saíram do raio de descarga e avança os chunks gerados
// para a iluminação.
type LoadManager struct {
	world *world.World
	gen   *gen.Scheduler
	light *light.Engine

	mesh  MeshCanceller
	sink  ModelReleaser
	saver ChunkSaver

	loadRadius int32
	simRadius  int32

	loadQueue *util.PriorityQueue[loadTask]
	queued    map[util.ChunkCoord]bool

	loadPerTick   int
	unloadPerTick int
	lightPerTick  int

	seq      uint64
	debugLog bool
}

// NewLoadManager cria o gerenciador de carga.
func NewLoadManager(w *world.World, g *gen.Scheduler, l *light.Engine, loadRadius, simRadius int32, loadPerTick, unloadPerTick, lightPerTick int) *LoadManager {
	return &LoadManager{
		world:         w,
		gen:           g,
		light:         l,
		loadRadius:    loadRadius,
		simRadius:     simRadius,
		loadQueue:     util.NewPriorityQueue(0, loadLess),
		queued:        make(map[util.ChunkCoord]bool),
		loadPerTick:   loadPerTick,
		unloadPerTick: unloadPerTick,
		lightPerTick:  lightPerTick,
	}
}

// SetMeshCanceller conecta o agendador de mesh (cancelamento na eviction).
func (m *LoadManager) SetMeshCanceller(c MeshCanceller) { m.mesh = c }

// SetModelReleaser conecta o consumidor de render (liberação de GPU).
func (m *LoadManager) SetModelReleaser(r ModelReleaser) { m.sink = r }

// SetSaver conecta a persistência (write-back na eviction).
func (m *LoadManager) SetSaver(s ChunkSaver) { m.saver = s }

// SetDebugLog liga o log de carga/descarga.
func (m *LoadManager) SetDebugLog(v bool) { m.debugLog = v }

// Tick roda um ciclo completo de streaming em volta do chunk central:
// enfileira cargas, processa um lote de cargas, descarrega distantes e
// avança chunks gerados para a iluminação.
func (m *LoadManager) Tick(center util.ChunkCoord) {
	m.queueMissing(center)
	m.processLoadQueue()
	m.sweep(center)
	m.advanceGenerated()
}

// queueMissing adiciona à fila de carga os chunks dentro do raio circular
// que ainda não residem no mundo.
func (m *LoadManager) queueMissing(center util.ChunkCoord) {
	r := m.loadRadius
	for dx := -r; dx <= r; dx++ {
		for dz := -r; dz <= r; dz++ {
			if dx*dx+dz*dz > r*r {
				continue
			}
			coord := center.Add(dx, dz)
			if m.queued[coord] || m.world.Chunk(coord) != nil {
				continue
			}
			m.queued[coord] = true
			m.seq++
			m.loadQueue.Push(loadTask{coord: coord, distSq: float64(dx*dx + dz*dz), seq: m.seq})
		}
	}
}

// processLoadQueue materializa um lote limitado de chunks vazios e os
// agenda para geração.
func (m *LoadManager) processLoadQueue() {
	for i := 0; i < m.loadPerTick; i++ {
		task, ok := m.loadQueue.Pop()
		if !ok {
			return
		}
		delete(m.queued, task.coord)
		if m.world.Chunk(task.coord) != nil {
			continue
		}
		m.world.GetOrCreateChunk(task.coord)
		m.gen.Enqueue(task.coord, task.distSq)
	}
}

// sweep percorre os chunks residentes uma vez: recolhe os que saíram do
// raio de descarga, atualiza a marca de simulação e ressuscita chunks
// presos em Empty (falha de geração) ou Generated (overflow do canal de
// conclusão).
func (m *LoadManager) sweep(center util.ChunkCoord) {
	unloadR := m.loadRadius + unloadMargin
	unloaded := 0

	for _, c := range m.world.Snapshot() {
		coord := c.Coord()
		distSq := coord.DistSq(center)

		if distSq > float64(unloadR*unloadR) {
			if unloaded < m.unloadPerTick {
				m.unload(c)
				unloaded++
			}
			continue
		}

		c.SetSimulated(distSq <= float64(m.simRadius*m.simRadius))

		switch c.State() {
		case world.StateEmpty:
			// Devolvido a Empty pela aresta de falha: tenta de novo
			// enquanto estiver dentro do raio de carga. O dedup do
			// agendador absorve os que ainda estão na fila.
			if distSq <= float64(m.loadRadius*m.loadRadius) {
				m.gen.Enqueue(coord, distSq)
			}
		case world.StateGenerated:
			if err := c.TransitionTo(world.StateLightPending); err == nil {
				m.startLighting(c)
			}
		}
	}
}

// unload remove um chunk do mundo: cancela todo o trabalho pendente nas
// três pipelines, libera os buffers de GPU e persiste edições não salvas.
func (m *LoadManager) unload(c *world.Chunk) {
	coord := c.Coord()

	m.gen.Cancel(coord)
	m.light.CancelChunkUpdates(coord)
	if m.mesh != nil {
		m.mesh.CancelChunk(coord)
	}
	if m.sink != nil {
		m.sink.PurgeChunk(coord)
	}

	if m.saver != nil && c.Dirty() && c.IsGenerated() {
		if err := m.saver.Save(c); err != nil {
			log.Printf("[Mundo] Falha ao salvar chunk %s na descarga: %v", coord, err)
		}
	}

	m.world.RemoveChunk(coord)

	if m.debugLog {
		log.Printf("[Mundo] Chunk %s descarregado", coord)
	}
}

// advanceGenerated drena o canal de conclusão da geração e inicia a
// iluminação dos chunks que chegaram a LightPending.
func (m *LoadManager) advanceGenerated() {
	for _, c := range m.gen.DrainCompleted(m.lightPerTick) {
		m.startLighting(c)
	}
}

// startLighting agenda o flood fill inicial; ao terminar, o chunk vira
// Ready, todas as suas seções não-vazias são marcadas para mesh e os
// vizinhos laterais refazem as costuras de borda.
func (m *LoadManager) startLighting(c *world.Chunk) {
	m.light.InitializeAsync(c, func(done *world.Chunk) {
		if err := done.TransitionTo(world.StateReady); err != nil {
			return
		}
		done.MarkAllGeometryDirty()
		m.world.MarkNeighborsForRebuild(done.Coord())
	})
}

// PendingLoads retorna o número de cargas aguardando.
func (m *LoadManager) PendingLoads() int { return m.loadQueue.Len() }
