package meshing

import (
	"VoxelHorizon/shared/util"
	"VoxelHorizon/shared/world"
)

// faceDef descreve a geometria de uma das seis faces do cubo unitário.
type faceDef struct {
	dir     util.Direction
	corners [4][3]float32 // offsets 0/1 dentro da célula, anti-horário visto de fora
	normal  [3]float32
	shade   float32 // sombreamento direcional estático
}

// Sombreamento direcional fixo por orientação: topo mais claro, fundo mais
// escuro, pares horizontais em dois níveis intermediários.
const (
	shadeUp   = 1.0
	shadeDown = 0.5
	shadeNS   = 0.8
	shadeEW   = 0.6
)

var faceDefs = [6]faceDef{
	{
		dir:     util.DirUp,
		corners: [4][3]float32{{0, 1, 1}, {1, 1, 1}, {1, 1, 0}, {0, 1, 0}},
		normal:  [3]float32{0, 1, 0},
		shade:   shadeUp,
	},
	{
		dir:     util.DirDown,
		corners: [4][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}},
		normal:  [3]float32{0, -1, 0},
		shade:   shadeDown,
	},
	{
		dir:     util.DirNorth,
		corners: [4][3]float32{{1, 0, 0}, {0, 0, 0}, {0, 1, 0}, {1, 1, 0}},
		normal:  [3]float32{0, 0, -1},
		shade:   shadeNS,
	},
	{
		dir:     util.DirSouth,
		corners: [4][3]float32{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}},
		normal:  [3]float32{0, 0, 1},
		shade:   shadeNS,
	},
	{
		dir:     util.DirEast,
		corners: [4][3]float32{{1, 0, 1}, {1, 0, 0}, {1, 1, 0}, {1, 1, 1}},
		normal:  [3]float32{1, 0, 0},
		shade:   shadeEW,
	},
	{
		dir:     util.DirWest,
		corners: [4][3]float32{{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}},
		normal:  [3]float32{-1, 0, 0},
		shade:   shadeEW,
	},
}

// shouldRenderFace decide se a face do bloco voltada para o vizinho é
// visível: ar expõe, tipo idêntico nunca expõe, vizinho não-sólido ou
// não-opaco (líquido, folhas) expõe.
func shouldRenderFace(cur, neighbor world.BlockID) bool {
	if neighbor == world.Air {
		return true
	}
	if neighbor == cur {
		return false
	}
	nd := neighbor.Def()
	if !nd.Solid || !nd.Opaque {
		return true
	}
	return false
}

// buildGeometry emite a geometria da seção com face culling, separada nos
// três passes de render. Roda fora da thread de publicação; as consultas
// cruzando a borda da seção resolvem pelo chunk vizinho e devolvem ar
// além dos limites verticais do mundo.
func (m *SectionMesher) buildGeometry(c *world.Chunk, sec *world.Section) Result {
	coord := sec.Coord()
	baseX := coord.X * util.SectionSize
	baseY := coord.MinWorldY()
	baseZ := coord.Z * util.SectionSize

	solid := acquireBuffer()
	liquid := acquireBuffer()
	translucent := acquireBuffer()
	defer releaseBuffer(solid)
	defer releaseBuffer(liquid)
	defer releaseBuffer(translucent)

	for ly := int32(0); ly < util.SectionSize; ly++ {
		for lz := int32(0); lz < util.SectionSize; lz++ {
			for lx := int32(0); lx < util.SectionSize; lx++ {
				id := sec.Block(lx, ly, lz)
				if id == world.Air {
					continue
				}

				wx := baseX + lx
				wy := baseY + ly
				wz := baseZ + lz

				for f := range faceDefs {
					def := &faceDefs[f]
					off := util.DirOffsets[def.dir]
					neighbor := m.blockAt(c, wx+off[0], wy+off[1], wz+off[2])
					if !shouldRenderFace(id, neighbor) {
						continue
					}
					m.emitFace(c, def, id, wx, wy, wz, m.bufferFor(id, solid, liquid, translucent))
				}
			}
		}
	}

	return Result{
		Coord:       coord,
		Solid:       solid.Snapshot(),
		Liquid:      liquid.Snapshot(),
		Translucent: translucent.Snapshot(),
	}
}

func (m *SectionMesher) bufferFor(id world.BlockID, solid, liquid, translucent *MeshBuffer) *MeshBuffer {
	switch id.Def().Pass {
	case world.PassLiquid:
		return liquid
	case world.PassTranslucent:
		return translucent
	default:
		return solid
	}
}

// emitFace calcula a cor final dos quatro vértices (sombreamento estático
// da orientação × brilho da luz interpolada no canto × cor do bloco) e
// acrescenta o quad. Nenhum valor de hora do dia entra aqui: o
// multiplicador ambiental é aplicado só na hora de desenhar.
func (m *SectionMesher) emitFace(c *world.Chunk, def *faceDef, id world.BlockID, wx, wy, wz int32, buf *MeshBuffer) {
	base := id.Def().Color
	off := util.DirOffsets[def.dir]

	var corners [4][3]float32
	var colors [4][4]uint8

	for i := 0; i < 4; i++ {
		corners[i] = [3]float32{
			float32(wx) + def.corners[i][0],
			float32(wy) + def.corners[i][1],
			float32(wz) + def.corners[i][2],
		}

		level := m.cornerLight(c, def, i, wx+off[0], wy+off[1], wz+off[2])
		bright := def.shade * m.brightness.Level(level)
		colors[i] = [4]uint8{
			uint8(float32(base[0]) * bright),
			uint8(float32(base[1]) * bright),
			uint8(float32(base[2]) * bright),
			base[3],
		}
	}

	u0, v0, u1, v1 := m.uv.UVFor(id, def.dir)
	buf.AddFace(corners, def.normal, colors, u0, v0, u1, v1)
}

// cornerLight interpola a luz combinada no canto i da face: média das
// quatro células do plano vizinho que tocam o canto.
func (m *SectionMesher) cornerLight(c *world.Chunk, def *faceDef, i int, nx, ny, nz int32) uint8 {
	// eixos tangentes da face (os dois eixos que não são o da normal)
	var da, db [3]int32
	switch def.dir {
	case util.DirUp, util.DirDown:
		da = [3]int32{1, 0, 0}
		db = [3]int32{0, 0, 1}
	case util.DirNorth, util.DirSouth:
		da = [3]int32{1, 0, 0}
		db = [3]int32{0, 1, 0}
	default:
		da = [3]int32{0, 0, 1}
		db = [3]int32{0, 1, 0}
	}

	sa := cornerSign(def.corners[i], da)
	sb := cornerSign(def.corners[i], db)

	sum := 0
	count := 0
	for _, cell := range [4][3]int32{
		{nx, ny, nz},
		{nx + sa*da[0], ny + sa*da[1], nz + sa*da[2]},
		{nx + sb*db[0], ny + sb*db[1], nz + sb*db[2]},
		{nx + sa*da[0] + sb*db[0], ny + sa*da[1] + sb*db[1], nz + sa*da[2] + sb*db[2]},
	} {
		if m.blockAt(c, cell[0], cell[1], cell[2]).IsOpaque() {
			continue
		}
		sum += int(m.lightAt(c, cell[0], cell[1], cell[2]))
		count++
	}
	if count == 0 {
		return 0
	}
	return uint8(sum / count)
}

// cornerSign devolve -1 ou +1 conforme o canto está no lado baixo ou alto
// do eixo tangente.
func cornerSign(corner [3]float32, axis [3]int32) int32 {
	for a := 0; a < 3; a++ {
		if axis[a] != 0 {
			if corner[a] > 0.5 {
				return 1
			}
			return -1
		}
	}
	return 0
}

// blockAt resolve um bloco em coordenadas de mundo, preferindo o chunk da
// seção em construção. Fora do intervalo vertical é ar.
func (m *SectionMesher) blockAt(c *world.Chunk, wx, wy, wz int32) world.BlockID {
	if !util.ValidWorldY(wy) {
		return world.Air
	}
	coord := util.WorldToChunk(wx, wz)
	if coord == c.Coord() {
		return c.Block(util.WorldToLocal(wx), wy, util.WorldToLocal(wz))
	}
	return m.world.Block(wx, wy, wz)
}

// lightAt resolve a luz combinada em coordenadas de mundo. Chunks ausentes
// ou sem iluminação contam como luz plena, para não escurecer costuras
// temporárias.
func (m *SectionMesher) lightAt(c *world.Chunk, wx, wy, wz int32) uint8 {
	if wy >= util.WorldMaxY {
		return 15
	}
	if wy < util.WorldMinY {
		return 0
	}
	coord := util.WorldToChunk(wx, wz)
	if coord == c.Coord() {
		return c.CombinedLight(util.WorldToLocal(wx), wy, util.WorldToLocal(wz))
	}
	n := m.world.Chunk(coord)
	if n == nil || !n.LightInitialized() {
		return 15
	}
	return n.CombinedLight(util.WorldToLocal(wx), wy, util.WorldToLocal(wz))
}
