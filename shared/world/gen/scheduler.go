package gen

import (
	"log"
	"sync"
	"sync/atomic"

	"VoxelHorizon/shared/util"
	"VoxelHorizon/shared/world"

	"github.com/alitto/pond/v2"
)

// ColumnLoader é o colaborador de persistência visto pelo agendador: uma
// coluna salva em disco curto-circuita a síntese de terreno.
type ColumnLoader interface {
	// Load tenta preencher o chunk a partir do disco. Retorna true se o
	// chunk foi carregado.
	Load(coord util.ChunkCoord, c *world.Chunk) (bool, error)
}

// genTask é o registro imutável de uma geração pendente. Carrega posição e
// chave de prioridade; nunca a posse do chunk.
type genTask struct {
	coord  util.ChunkCoord
	distSq float64
	seq    uint64
}

// genLess ordena por distância e desempata por ordem de chegada (FIFO).
func genLess(a, b genTask) bool {
	if a.distSq != b.distSq {
		return a.distSq < b.distSq
	}
	return a.seq < b.seq
}

// Scheduler transforma posições de chunk enfileiradas em chunks gerados,
// priorizando as mais próximas do ponto de vista. Workers rodam num pool
// limitado; a deduplicação por posição garante no máximo uma geração em
// voo por chunk.
type Scheduler struct {
	world  *world.World
	gen    *Generator
	loader ColumnLoader

	queue *util.PriorityQueue[genTask]

	mu       sync.Mutex
	pending  map[util.ChunkCoord]bool
	inFlight map[util.ChunkCoord]bool

	pool pond.Pool

	completed chan util.ChunkCoord

	seq      atomic.Uint64
	perTick  int
	debugLog bool
}

// NewScheduler cria o agendador de geração.
// workers limita as gerações simultâneas; perTick limita quantas tarefas
// são drenadas da fila por ciclo; queueLimit limita a fila (excesso é
// descartado pelo fim, política de backpressure com perda).
func NewScheduler(w *world.World, g *Generator, workers, perTick, queueLimit int) *Scheduler {
	return &Scheduler{
		world:     w,
		gen:       g,
		queue:     util.NewPriorityQueue(queueLimit, genLess),
		pending:   make(map[util.ChunkCoord]bool),
		inFlight:  make(map[util.ChunkCoord]bool),
		pool:      pond.NewPool(workers),
		completed: make(chan util.ChunkCoord, 1024),
		perTick:   perTick,
	}
}

// SetLoader conecta o colaborador de persistência.
func (s *Scheduler) SetLoader(l ColumnLoader) { s.loader = l }

// SetDebugLog liga o log de falhas de geração.
func (s *Scheduler) SetDebugLog(v bool) { s.debugLog = v }

// Enqueue agenda a geração do chunk na posição dada, com prioridade pela
// distância ao quadrado até o ponto de vista. Posições já na fila ou em
// voo são ignoradas.
func (s *Scheduler) Enqueue(coord util.ChunkCoord, distSq float64) {
	s.mu.Lock()
	if s.pending[coord] || s.inFlight[coord] {
		s.mu.Unlock()
		return
	}
	s.pending[coord] = true
	s.mu.Unlock()

	task := genTask{coord: coord, distSq: distSq, seq: s.seq.Add(1)}
	if evicted, ok, _ := s.queue.Push(task); ok {
		// A tarefa descartada (recém-chegada ou residente expulsa) sai
		// também do dedup, senão a posição fica perdida para sempre.
		s.mu.Lock()
		delete(s.pending, evicted.coord)
		s.mu.Unlock()
	}
}

// Tick drena um lote limitado de tarefas da fila para o pool de workers.
// Chamado uma vez por ciclo de agendamento.
func (s *Scheduler) Tick() {
	for i := 0; i < s.perTick; i++ {
		task, ok := s.queue.Pop()
		if !ok {
			return
		}

		s.mu.Lock()
		delete(s.pending, task.coord)
		if s.inFlight[task.coord] {
			s.mu.Unlock()
			continue
		}

		c := s.world.Chunk(task.coord)
		if c == nil || c.State() != world.StateEmpty {
			s.mu.Unlock()
			continue
		}
		if err := c.TransitionTo(world.StateGenerating); err != nil {
			s.mu.Unlock()
			continue
		}
		s.inFlight[task.coord] = true
		s.mu.Unlock()

		s.pool.Submit(func() { s.generate(task.coord, c) })
	}
}

// generate roda num worker do pool. A transição Generating → Generated é a
// última escrita do worker (publicação após escrita); falha devolve o
// chunk a Empty, elegível para nova tentativa.
func (s *Scheduler) generate(coord util.ChunkCoord, c *world.Chunk) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] Geração do chunk %s: %v", coord, r)
			_ = c.TransitionTo(world.StateEmpty)
		}
		s.mu.Lock()
		delete(s.inFlight, coord)
		s.mu.Unlock()
	}()

	// Chunk removido do mundo enquanto a tarefa esperava: no-op.
	if s.world.Chunk(coord) != c {
		_ = c.TransitionTo(world.StateEmpty)
		return
	}

	loaded := false
	if s.loader != nil {
		ok, err := s.loader.Load(coord, c)
		if err != nil && s.debugLog {
			log.Printf("[Geração] Falha ao carregar %s do disco: %v", coord, err)
		}
		loaded = ok
	}

	if !loaded {
		if err := s.gen.Generate(c); err != nil {
			if s.debugLog {
				log.Printf("[Geração] Falha em %s: %v", coord, err)
			}
			_ = c.TransitionTo(world.StateEmpty)
			return
		}
	}

	if err := c.TransitionTo(world.StateGenerated); err != nil {
		_ = c.TransitionTo(world.StateEmpty)
		return
	}

	select {
	case s.completed <- coord:
	default:
		// fila de conclusão cheia; o LoadManager reencontra o chunk
		// Generated no próximo ciclo
	}
}

// DrainCompleted avança até max chunks recém-gerados para LightPending e
// os retorna, prontos para entrar na fila de iluminação.
func (s *Scheduler) DrainCompleted(max int) []*world.Chunk {
	var out []*world.Chunk
	for len(out) < max {
		select {
		case coord := <-s.completed:
			c := s.world.Chunk(coord)
			if c == nil || c.State() != world.StateGenerated {
				continue
			}
			if err := c.TransitionTo(world.StateLightPending); err != nil {
				continue
			}
			out = append(out, c)
		default:
			return out
		}
	}
	return out
}

// Cancel descarta tarefas pendentes para a posição (ex.: chunk evictado).
// Gerações já em voo terminam como no-op ao descobrir o chunk removido.
func (s *Scheduler) Cancel(coord util.ChunkCoord) {
	s.mu.Lock()
	delete(s.pending, coord)
	s.mu.Unlock()
	s.queue.RemoveIf(func(t genTask) bool { return t.coord == coord })
}

// PendingCount retorna o número de gerações aguardando na fila.
func (s *Scheduler) PendingCount() int { return s.queue.Len() }

// InFlightCount retorna o número de gerações em execução.
func (s *Scheduler) InFlightCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inFlight)
}

// Stop drena o pool e espera os workers terminarem.
func (s *Scheduler) Stop() {
	s.queue.Clear()
	s.pool.StopAndWait()
}
