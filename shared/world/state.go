package world

import "fmt"

// ChunkState é o estado do ciclo de vida de um chunk.
// A progressão é monotônica: Empty → Generating → Generated → LightPending
// → Ready. A única aresta de retorno permitida é a de falha, que devolve o
// chunk a Empty para nova tentativa.
type ChunkState int32

const (
	StateEmpty ChunkState = iota
	StateGenerating
	StateGenerated
	StateLightPending
	StateReady
)

// String retorna o nome do estado.
func (s ChunkState) String() string {
	switch s {
	case StateEmpty:
		return "Empty"
	case StateGenerating:
		return "Generating"
	case StateGenerated:
		return "Generated"
	case StateLightPending:
		return "LightPending"
	case StateReady:
		return "Ready"
	}
	return fmt.Sprintf("ChunkState(%d)", int32(s))
}

// canTransition valida a máquina de estados do chunk.
func canTransition(from, to ChunkState) bool {
	switch {
	case to == from+1 && from >= StateEmpty && from < StateReady:
		// avanço normal de um passo
		return true
	case to == StateEmpty && (from == StateGenerating || from == StateGenerated):
		// aresta de falha: geração abortada volta para o início
		return true
	}
	return false
}
