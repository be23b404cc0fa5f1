// Package light implementa as duas camadas de luz estática do mundo (céu e
// emitida), a propagação por flood fill e a conversão de nível de luz em
// brilho de renderização.
package light

import "math"

// MaxLevel é o nível máximo de luz.
const MaxLevel = 15

// Brightness converte níveis de luz estáticos (0-15) em brilho de tela.
// A tabela é fixa e monotônica, calculada uma vez na criação: nenhum
// parâmetro ambiental participa. O multiplicador de hora do dia é composto
// por WithTime, SOMENTE na hora de renderizar, e nunca é gravado de volta
// nos arrays de luz.
type Brightness struct {
	table [MaxLevel + 1]float32
}

// NewBrightness monta a tabela. min é o brilho do nível 0 (nunca escuridão
// total); gamma corrige a curva para monitores comuns.
func NewBrightness(min, gamma float32) *Brightness {
	b := &Brightness{}
	for level := 0; level <= MaxLevel; level++ {
		linear := min + float32(level)/MaxLevel*(1.0-min)
		b.table[level] = float32(math.Pow(float64(linear), float64(gamma)))
	}
	return b
}

// Level retorna o brilho estático do nível de luz dado.
func (b *Brightness) Level(level uint8) float32 {
	if level > MaxLevel {
		level = MaxLevel
	}
	return b.table[level]
}

// WithTime compõe o brilho estático com o multiplicador de hora do dia
// fornecido pelo consumidor. Função pura: não altera a tabela nem os
// valores de luz armazenados.
func (b *Brightness) WithTime(level uint8, timeMult float32) float32 {
	return b.Level(level) * timeMult
}
