// Package meshing transforma seções prontas em listas de vértices com face
// culling, em workers de fundo priorizados por urgência e distância. O
// resultado é publicado numa fila de consumidor único; o upload para GPU
// acontece exclusivamente na thread de render.
package meshing

import (
	"sync"

	"VoxelHorizon/shared/util"
	"VoxelHorizon/shared/world"
)

// GeometryData é a geometria crua de um passe de render de uma seção.
type GeometryData struct {
	Vertices []float32 // xyz por vértice
	Normals  []float32 // xyz por vértice
	Colors   []uint8   // rgba por vértice
	UVs      []float32 // uv por vértice
	Indices  []uint16  // dois triângulos por face
}

// VertexCount retorna o número de vértices.
func (g *GeometryData) VertexCount() int { return len(g.Vertices) / 3 }

// IsEmpty reporta se não há geometria.
func (g *GeometryData) IsEmpty() bool { return len(g.Indices) == 0 }

// Clone devolve uma cópia profunda.
func (g *GeometryData) Clone() GeometryData {
	out := GeometryData{
		Vertices: make([]float32, len(g.Vertices)),
		Normals:  make([]float32, len(g.Normals)),
		Colors:   make([]uint8, len(g.Colors)),
		UVs:      make([]float32, len(g.UVs)),
		Indices:  make([]uint16, len(g.Indices)),
	}
	copy(out.Vertices, g.Vertices)
	copy(out.Normals, g.Normals)
	copy(out.Colors, g.Colors)
	copy(out.UVs, g.UVs)
	copy(out.Indices, g.Indices)
	return out
}

// Result é a geometria pronta de uma seção, separada por passe de render.
type Result struct {
	Coord       util.SectionCoord
	Solid       GeometryData
	Liquid      GeometryData
	Translucent GeometryData
}

// UVLookup é o colaborador de atlas de textura: resolve o retângulo UV de
// uma face de um tipo de bloco. Opaco para o mesher.
type UVLookup interface {
	UVFor(id world.BlockID, face util.Direction) (u0, v0, u1, v1 float32)
}

// FlatUVs é o lookup padrão sem atlas: toda face usa o quad inteiro.
// A cor do vértice carrega a aparência do bloco.
type FlatUVs struct{}

// UVFor retorna o retângulo [0,1]².
func (FlatUVs) UVFor(world.BlockID, util.Direction) (float32, float32, float32, float32) {
	return 0, 0, 1, 1
}

// meshBufferPool recicla buffers de construção entre seções.
var meshBufferPool = sync.Pool{
	New: func() any { return newMeshBuffer() },
}

// MeshBuffer acumula faces durante a construção de uma seção.
type MeshBuffer struct {
	data GeometryData
}

func newMeshBuffer() *MeshBuffer {
	return &MeshBuffer{data: GeometryData{
		Vertices: make([]float32, 0, 4096),
		Normals:  make([]float32, 0, 4096),
		Colors:   make([]uint8, 0, 4096),
		UVs:      make([]float32, 0, 2048),
		Indices:  make([]uint16, 0, 2048),
	}}
}

// acquireBuffer pega um buffer limpo do pool.
func acquireBuffer() *MeshBuffer {
	b := meshBufferPool.Get().(*MeshBuffer)
	b.Reset()
	return b
}

// releaseBuffer devolve o buffer ao pool.
func releaseBuffer(b *MeshBuffer) {
	meshBufferPool.Put(b)
}

// Reset esvazia o buffer preservando a capacidade.
func (b *MeshBuffer) Reset() {
	b.data.Vertices = b.data.Vertices[:0]
	b.data.Normals = b.data.Normals[:0]
	b.data.Colors = b.data.Colors[:0]
	b.data.UVs = b.data.UVs[:0]
	b.data.Indices = b.data.Indices[:0]
}

// AddFace acrescenta um quad (4 vértices, 2 triângulos). corners na ordem
// de enrolamento anti-horário visto de fora; colors é a cor final por
// vértice (sombreamento estático × brilho de luz × cor do bloco).
func (b *MeshBuffer) AddFace(corners [4][3]float32, normal [3]float32, colors [4][4]uint8, u0, v0, u1, v1 float32) {
	base := uint16(len(b.data.Vertices) / 3)

	for i := 0; i < 4; i++ {
		b.data.Vertices = append(b.data.Vertices, corners[i][0], corners[i][1], corners[i][2])
		b.data.Normals = append(b.data.Normals, normal[0], normal[1], normal[2])
		b.data.Colors = append(b.data.Colors, colors[i][0], colors[i][1], colors[i][2], colors[i][3])
	}
	b.data.UVs = append(b.data.UVs,
		u0, v1,
		u1, v1,
		u1, v0,
		u0, v0,
	)
	b.data.Indices = append(b.data.Indices,
		base, base+1, base+2,
		base, base+2, base+3,
	)
}

// Snapshot devolve uma cópia independente do conteúdo atual.
func (b *MeshBuffer) Snapshot() GeometryData {
	return b.data.Clone()
}
