package save

import (
	"log"

	"VoxelHorizon/shared/world"

	"golang.org/x/time/rate"
)

// Autosave varre periodicamente os chunks sujos e os grava no banco, com
// um limitador de taxa para que o write-back nunca monopolize o frame.
type Autosave struct {
	store   *Store
	limiter *rate.Limiter
}

// NewAutosave cria o autosave. chunksPerSec limita a vazão de gravação;
// burst permite um pico curto (ex.: ao fechar o jogo).
func NewAutosave(store *Store, chunksPerSec float64, burst int) *Autosave {
	return &Autosave{
		store:   store,
		limiter: rate.NewLimiter(rate.Limit(chunksPerSec), burst),
	}
}

// Tick grava chunks sujos enquanto o limitador permitir. Chamado uma vez
// por ciclo do loop principal.
func (a *Autosave) Tick(w *world.World) {
	for _, c := range w.Snapshot() {
		if !c.Dirty() || !c.IsGenerated() {
			continue
		}
		if !a.limiter.Allow() {
			return
		}
		if err := a.store.Save(c); err != nil {
			log.Printf("[Save] Autosave do chunk %s falhou: %v", c.Coord(), err)
		}
	}
}

// Flush grava todos os chunks sujos, ignorando o limitador. Usado no
// encerramento.
func (a *Autosave) Flush(w *world.World) {
	saved := 0
	for _, c := range w.Snapshot() {
		if !c.Dirty() || !c.IsGenerated() {
			continue
		}
		if err := a.store.Save(c); err != nil {
			log.Printf("[Save] Flush do chunk %s falhou: %v", c.Coord(), err)
			continue
		}
		saved++
	}
	if saved > 0 {
		log.Printf("[Save] %d chunks gravados no encerramento", saved)
	}
}
