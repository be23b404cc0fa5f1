package util

import (
	"container/heap"
	"sync"
)

// UniqueQueue é uma fila FIFO thread-safe que garante elementos únicos por
// chave. Usada para enfileirar chunks para atualização de iluminação sem
// duplicar trabalho.
type UniqueQueue[K comparable, V any] struct {
	mu      sync.Mutex
	items   []uniqueEntry[K, V]
	present map[K]bool
}

type uniqueEntry[K comparable, V any] struct {
	Key   K
	Value V
}

// NewUniqueQueue cria uma nova UniqueQueue.
func NewUniqueQueue[K comparable, V any]() *UniqueQueue[K, V] {
	return &UniqueQueue[K, V]{
		items:   make([]uniqueEntry[K, V], 0, 64),
		present: make(map[K]bool),
	}
}

// Enqueue adiciona um item se a chave ainda não existir na fila.
// Se a chave já existir, o valor é atualizado.
// Retorna true se foi adicionado (novo), false se foi atualizado.
func (q *UniqueQueue[K, V]) Enqueue(key K, value V) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.present[key] {
		for i := range q.items {
			if q.items[i].Key == key {
				q.items[i].Value = value
				break
			}
		}
		return false
	}

	q.items = append(q.items, uniqueEntry[K, V]{Key: key, Value: value})
	q.present[key] = true
	return true
}

// Dequeue remove e retorna o primeiro item da fila.
// Retorna a chave, o valor e true se havia item; zero values e false se vazia.
func (q *UniqueQueue[K, V]) Dequeue() (K, V, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		var zeroK K
		var zeroV V
		return zeroK, zeroV, false
	}

	e := q.items[0]
	q.items = q.items[1:]
	delete(q.present, e.Key)
	return e.Key, e.Value, true
}

// Remove tira uma chave da fila sem processá-la. Retorna true se existia.
func (q *UniqueQueue[K, V]) Remove(key K) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.present[key] {
		return false
	}
	for i := range q.items {
		if q.items[i].Key == key {
			q.items = append(q.items[:i], q.items[i+1:]...)
			break
		}
	}
	delete(q.present, key)
	return true
}

// Len retorna o número de items na fila.
func (q *UniqueQueue[K, V]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Contains verifica se uma chave está na fila.
func (q *UniqueQueue[K, V]) Contains(key K) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.present[key]
}

// Clear limpa a fila.
func (q *UniqueQueue[K, V]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = q.items[:0]
	q.present = make(map[K]bool)
}

// PriorityQueue é uma fila de prioridade thread-safe com capacidade limitada.
// Quando cheia, o item de MENOR prioridade é descartado para dar lugar a um
// mais relevante (backpressure com perda, nunca bloqueia o produtor).
// A função less define a ordem: urgente antes de distante, mais perto
// primeiro, empate resolvido pelo timestamp de enfileiramento (FIFO).
type PriorityQueue[T any] struct {
	mu    sync.Mutex
	h     taskHeap[T]
	limit int
}

// NewPriorityQueue cria uma fila de prioridade com a capacidade dada.
// limit <= 0 significa sem limite.
func NewPriorityQueue[T any](limit int, less func(a, b T) bool) *PriorityQueue[T] {
	q := &PriorityQueue[T]{limit: limit}
	q.h.less = less
	heap.Init(&q.h)
	return q
}

// Push insere uma tarefa. Se a fila estiver cheia, a tarefa menos relevante
// (seja a recém-chegada, seja uma residente) é descartada. A tarefa
// descartada é devolvida para o chamador limpar seus registros de
// deduplicação; pushed indica se a recém-chegada entrou na fila.
func (q *PriorityQueue[T]) Push(item T) (dropped T, wasDropped, pushed bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.limit > 0 && len(q.h.items) >= q.limit {
		worst := q.h.worstIndex()
		if q.h.less(q.h.items[worst], item) {
			return item, true, false
		}
		dropped = q.h.items[worst]
		wasDropped = true
		heap.Remove(&q.h, worst)
	}
	heap.Push(&q.h, item)
	return dropped, wasDropped, true
}

// Pop remove a tarefa de maior prioridade. false se vazia.
func (q *PriorityQueue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.h.items) == 0 {
		var zero T
		return zero, false
	}
	return heap.Pop(&q.h).(T), true
}

// Len retorna o número de tarefas pendentes.
func (q *PriorityQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.h.items)
}

// Clear descarta todas as tarefas pendentes.
func (q *PriorityQueue[T]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.h.items = q.h.items[:0]
}

// RemoveIf descarta as tarefas para as quais pred retorna true.
func (q *PriorityQueue[T]) RemoveIf(pred func(T) bool) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	removed := 0
	kept := q.h.items[:0]
	for _, item := range q.h.items {
		if pred(item) {
			removed++
		} else {
			kept = append(kept, item)
		}
	}
	q.h.items = kept
	heap.Init(&q.h)
	return removed
}

type taskHeap[T any] struct {
	items []T
	less  func(a, b T) bool
}

func (h taskHeap[T]) Len() int           { return len(h.items) }
func (h taskHeap[T]) Less(i, j int) bool { return h.less(h.items[i], h.items[j]) }
func (h taskHeap[T]) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *taskHeap[T]) Push(x interface{}) {
	h.items = append(h.items, x.(T))
}

func (h *taskHeap[T]) Pop() interface{} {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}

// worstIndex localiza o elemento de menor prioridade. Só as folhas do heap
// precisam ser varridas, o pior elemento necessariamente está nelas.
func (h taskHeap[T]) worstIndex() int {
	worst := len(h.items) / 2
	for i := worst + 1; i < len(h.items); i++ {
		if h.less(h.items[worst], h.items[i]) {
			worst = i
		}
	}
	return worst
}
