package meshing

import (
	"log"
	"sync"
	"sync/atomic"

	"VoxelHorizon/shared/util"
	"VoxelHorizon/shared/world"
	"VoxelHorizon/shared/world/light"
)

// deferPenalty é o fator aplicado à distância quando uma construção é
// adiada por vizinho não gerado: a tarefa volta para a fila mais atrás e
// sem urgência, em vez de falhar.
const deferPenalty = 1.5

// Task é o registro imutável de uma construção de mesh pendente. Carrega
// apenas a posição e a chave de prioridade, nunca a posse da seção.
type Task struct {
	Coord  util.SectionCoord
	Urgent bool
	DistSq float64
	seq    uint64
}

// taskLess ordena: urgente antes de distante, mais perto primeiro, empate
// por ordem de chegada (FIFO).
func taskLess(a, b Task) bool {
	if a.Urgent != b.Urgent {
		return a.Urgent
	}
	if a.DistSq != b.DistSq {
		return a.DistSq < b.DistSq
	}
	return a.seq < b.seq
}

// SectionMesher é o agendador de construção de meshes: transforma seções
// sujas em geometria com face culling, em workers de fundo. Uma seção tem
// no máximo uma construção em voo (guarda na própria seção) e no máximo
// uma tarefa na fila (dedup por posição).
type SectionMesher struct {
	world      *world.World
	brightness *light.Brightness
	uv         UVLookup

	queue *util.PriorityQueue[Task]

	pendingMu sync.Mutex
	pending   map[util.SectionCoord]bool

	// corners guarda a luz combinada dos cantos da seção na última
	// construção, para o atalho de "só mudou iluminação, e nem isso".
	cornersMu sync.Mutex
	corners   map[util.SectionCoord][4]uint8

	requests chan Task
	results  chan Result
	stop     chan struct{}
	wg       sync.WaitGroup

	seq      atomic.Uint64
	perTick  int
	debugLog bool
}

// NewSectionMesher cria o agendador e sobe os workers.
func NewSectionMesher(w *world.World, b *light.Brightness, uv UVLookup, workers, perTick, queueLimit int) *SectionMesher {
	if uv == nil {
		uv = FlatUVs{}
	}
	m := &SectionMesher{
		world:      w,
		brightness: b,
		uv:         uv,
		queue:      util.NewPriorityQueue(queueLimit, taskLess),
		pending:    make(map[util.SectionCoord]bool),
		corners:    make(map[util.SectionCoord][4]uint8),
		requests:   make(chan Task, 256),
		results:    make(chan Result, 512),
		stop:       make(chan struct{}),
		perTick:    perTick,
	}
	for i := 0; i < workers; i++ {
		m.wg.Add(1)
		go m.worker(i)
	}
	return m
}

// SetDebugLog liga o log de falhas de construção.
func (m *SectionMesher) SetDebugLog(v bool) { m.debugLog = v }

// RequestRebuild agenda a reconstrução de uma seção. A tarefa só entra se
// a seção realmente precisa e não está em construção; pedidos repetidos
// da mesma seção colapsam em um.
func (m *SectionMesher) RequestRebuild(sec *world.Section, urgent bool, distSq float64) {
	if sec == nil || !sec.NeedsRebuild() || sec.IsBuilding() {
		return
	}
	coord := sec.Coord()

	m.pendingMu.Lock()
	if m.pending[coord] {
		m.pendingMu.Unlock()
		return
	}
	m.pending[coord] = true
	m.pendingMu.Unlock()

	task := Task{Coord: coord, Urgent: urgent, DistSq: distSq, seq: m.seq.Add(1)}
	if evicted, ok, _ := m.queue.Push(task); ok {
		// A seção descartada (esta ou uma residente expulsa) sai do dedup,
		// senão nenhum pedido futuro para ela passa do colapso.
		m.clearPending(evicted.Coord)
	}
}

// Tick drena um lote limitado de tarefas da fila para os workers. Tarefas
// cujo chunk vizinho ainda não foi gerado são adiadas com prioridade
// reduzida (costura de borda exige os quatro vizinhos horizontais).
func (m *SectionMesher) Tick() {
	for i := 0; i < m.perTick; i++ {
		task, ok := m.queue.Pop()
		if !ok {
			return
		}
		m.clearPending(task.Coord)

		c := m.world.Chunk(task.Coord.Chunk())
		if c == nil || !c.IsReady() {
			continue
		}
		sec := c.Section(task.Coord.Y)
		if sec == nil || !sec.NeedsRebuild() || sec.IsBuilding() {
			continue
		}

		if !m.world.NeighborsGenerated(task.Coord.Chunk()) {
			m.requeueDeferred(task)
			continue
		}

		select {
		case m.requests <- task:
		default:
			// workers saturados; devolve e tenta no próximo ciclo
			m.requeue(task)
			return
		}
	}
}

// requeueDeferred devolve uma tarefa adiada por vizinho ausente, mais
// distante e sem urgência.
func (m *SectionMesher) requeueDeferred(task Task) {
	task.Urgent = false
	task.DistSq *= deferPenalty
	task.seq = m.seq.Add(1)
	m.requeue(task)
}

func (m *SectionMesher) requeue(task Task) {
	coord := task.Coord
	m.pendingMu.Lock()
	if m.pending[coord] {
		m.pendingMu.Unlock()
		return
	}
	m.pending[coord] = true
	m.pendingMu.Unlock()

	if evicted, ok, _ := m.queue.Push(task); ok {
		m.clearPending(evicted.Coord)
	}
}

func (m *SectionMesher) clearPending(coord util.SectionCoord) {
	m.pendingMu.Lock()
	delete(m.pending, coord)
	m.pendingMu.Unlock()
}

// worker consome tarefas e produz geometria. Pânicos durante a construção
// são engolidos com log: a flag de em-voo é limpa e a tarefa descartada
// (a próxima edição ou gatilho natural reconstrói).
func (m *SectionMesher) worker(id int) {
	defer m.wg.Done()
	for {
		select {
		case <-m.stop:
			return
		case task := <-m.requests:
			m.buildOne(task)
		}
	}
}

func (m *SectionMesher) buildOne(task Task) {
	c := m.world.Chunk(task.Coord.Chunk())
	if c == nil || !c.IsReady() {
		return
	}
	sec := c.Section(task.Coord.Y)
	if sec == nil || !sec.NeedsRebuild() {
		return
	}
	if !sec.TryBeginBuild() {
		return
	}

	defer func() {
		sec.EndBuild()
		if r := recover(); r != nil {
			log.Printf("[PANIC] Construção de mesh da seção %s: %v", task.Coord, r)
		}
	}()

	// Atalho: só a iluminação mudou e nem os cantos mudaram de valor.
	if sec.NeedsOnlyLighting() && !m.cornerLightChanged(sec) {
		sec.ClearDirty()
		return
	}

	result := m.buildGeometry(c, sec)
	m.storeCornerLight(sec)

	select {
	case m.results <- result:
	case <-m.stop:
	}
}

// cornerLightChanged compara a luz combinada dos quatro cantos superiores
// da seção com o instantâneo da última construção.
func (m *SectionMesher) cornerLightChanged(sec *world.Section) bool {
	current := m.sampleCornerLight(sec)
	m.cornersMu.Lock()
	last, ok := m.corners[sec.Coord()]
	m.cornersMu.Unlock()
	return !ok || last != current
}

func (m *SectionMesher) storeCornerLight(sec *world.Section) {
	current := m.sampleCornerLight(sec)
	m.cornersMu.Lock()
	m.corners[sec.Coord()] = current
	m.cornersMu.Unlock()
}

func (m *SectionMesher) sampleCornerLight(sec *world.Section) [4]uint8 {
	const e = util.SectionSize - 1
	return [4]uint8{
		sec.CombinedLight(0, e, 0),
		sec.CombinedLight(e, e, 0),
		sec.CombinedLight(e, e, e),
		sec.CombinedLight(0, e, e),
	}
}

// Results é a fila de consumidor único lida pelo passo de upload.
func (m *SectionMesher) Results() <-chan Result { return m.results }

// CancelChunk descarta tarefas e instantâneos de todas as seções do chunk
// (eviction).
func (m *SectionMesher) CancelChunk(coord util.ChunkCoord) {
	m.queue.RemoveIf(func(t Task) bool { return t.Coord.Chunk() == coord })

	m.pendingMu.Lock()
	for sc := range m.pending {
		if sc.Chunk() == coord {
			delete(m.pending, sc)
		}
	}
	m.pendingMu.Unlock()

	m.cornersMu.Lock()
	for sc := range m.corners {
		if sc.Chunk() == coord {
			delete(m.corners, sc)
		}
	}
	m.cornersMu.Unlock()
}

// PendingBuilds retorna o número de tarefas aguardando na fila.
func (m *SectionMesher) PendingBuilds() int { return m.queue.Len() }

// Stop encerra os workers e espera.
func (m *SectionMesher) Stop() {
	close(m.stop)
	m.wg.Wait()
	m.queue.Clear()
}
