package util

import (
	"fmt"
)

// SectionSize é a aresta de uma seção cúbica (16x16x16 voxels).
const SectionSize = 16

// SectionsPerChunk é o número de seções empilhadas em uma coluna de chunk.
const SectionsPerChunk = 16

// WorldMinY é a coordenada Y mais baixa do mundo (camada de bedrock).
const WorldMinY = -64

// WorldMaxY é a primeira coordenada Y acima do mundo (exclusiva).
const WorldMaxY = WorldMinY + SectionsPerChunk*SectionSize

// SeaLevel é o nível do mar usado pela geração de terreno.
const SeaLevel = 62

// ChunkCoord identifica uma coluna de chunk no plano horizontal.
type ChunkCoord struct {
	X, Z int32
}

// NewChunkCoord cria uma coordenada de chunk.
func NewChunkCoord(x, z int32) ChunkCoord {
	return ChunkCoord{X: x, Z: z}
}

// Key empacota a coordenada em um int64 estável, usável como chave de mapa
// ou de persistência.
func (c ChunkCoord) Key() int64 {
	return int64(c.X)<<32 | int64(uint32(c.Z))
}

// ChunkCoordFromKey desfaz o empacotamento de Key.
func ChunkCoordFromKey(key int64) ChunkCoord {
	return ChunkCoord{X: int32(key >> 32), Z: int32(key)}
}

// Add soma offsets de chunk.
func (c ChunkCoord) Add(dx, dz int32) ChunkCoord {
	return ChunkCoord{X: c.X + dx, Z: c.Z + dz}
}

// DistSq retorna a distância horizontal ao quadrado, em chunks.
func (c ChunkCoord) DistSq(other ChunkCoord) float64 {
	dx := float64(c.X - other.X)
	dz := float64(c.Z - other.Z)
	return dx*dx + dz*dz
}

// String retorna a representação em string da coordenada.
func (c ChunkCoord) String() string {
	return fmt.Sprintf("[%d, %d]", c.X, c.Z)
}

// SectionCoord identifica uma seção cúbica no grid de seções do mundo.
// Y é o índice da seção dentro da coluna (0..SectionsPerChunk-1).
type SectionCoord struct {
	X, Y, Z int32
}

// Chunk retorna a coordenada da coluna de chunk dona desta seção.
func (s SectionCoord) Chunk() ChunkCoord {
	return ChunkCoord{X: s.X, Z: s.Z}
}

// MinWorldY retorna a coordenada Y de mundo do voxel mais baixo da seção.
func (s SectionCoord) MinWorldY() int32 {
	return WorldMinY + s.Y*SectionSize
}

// String retorna a representação em string da coordenada.
func (s SectionCoord) String() string {
	return fmt.Sprintf("[%d, %d, %d]", s.X, s.Y, s.Z)
}

// WorldToChunk converte uma coordenada de mundo (bloco) para chunk.
func WorldToChunk(worldX, worldZ int32) ChunkCoord {
	return ChunkCoord{X: FloorDiv(worldX, SectionSize), Z: FloorDiv(worldZ, SectionSize)}
}

// WorldToLocal converte uma coordenada de mundo para a local dentro do chunk (0-15).
func WorldToLocal(world int32) int32 {
	return FloorMod(world, SectionSize)
}

// SectionIndexForY retorna o índice da seção que contém a coordenada Y de
// mundo, ou -1 se estiver fora do intervalo vertical.
func SectionIndexForY(worldY int32) int32 {
	if worldY < WorldMinY || worldY >= WorldMaxY {
		return -1
	}
	return (worldY - WorldMinY) / SectionSize
}

// ValidWorldY verifica se a coordenada Y está dentro do mundo.
func ValidWorldY(worldY int32) bool {
	return worldY >= WorldMinY && worldY < WorldMaxY
}

// FloorDiv divide arredondando para baixo (funciona com negativos).
func FloorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// FloorMod retorna o módulo sempre não-negativo para b > 0.
func FloorMod(a, b int32) int32 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// Direction representa uma das seis direções de vizinhança de um voxel.
type Direction uint8

const (
	DirUp Direction = iota
	DirDown
	DirNorth
	DirSouth
	DirEast
	DirWest
)

// DirOffsets mapeia direções para offsets de coordenada de mundo (X, Y, Z).
var DirOffsets = [6][3]int32{
	DirUp:    {0, 1, 0},
	DirDown:  {0, -1, 0},
	DirNorth: {0, 0, -1},
	DirSouth: {0, 0, 1},
	DirEast:  {1, 0, 0},
	DirWest:  {-1, 0, 0},
}

// String retorna o nome da direção.
func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirNorth:
		return "north"
	case DirSouth:
		return "south"
	case DirEast:
		return "east"
	case DirWest:
		return "west"
	}
	return "?"
}
