// Package gen implementa a geração procedural de terreno: uma função pura e
// determinística de (seed, coluna do mundo) para uma coluna de blocos, mais
// o agendador assíncrono que alimenta os chunks.
package gen

import (
	"fmt"
	"math/rand"

	"VoxelHorizon/shared/util"
	"VoxelHorizon/shared/world"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Constantes de forma do terreno. Três bandas de ruído somadas com pesos
// fixos sobre o nível do mar, altura final limitada ao intervalo vertical
// útil do mundo.
const (
	continentScale  = 0.001
	continentWeight = 50.0
	hillScale       = 0.005
	hillWeight      = 20.0
	detailScale     = 0.02
	detailWeight    = 5.0

	minHeight = -58
	maxHeight = 180
)

// Constantes de composição da coluna.
const (
	dirtDepth     = 5
	beachMax      = util.SeaLevel + 1
	oceanFloorMax = util.SeaLevel - 2
	stoneAltitude = 90

	bedrockLayers = 4
)

// Probabilidades de minério, dependentes da profundidade. Valores empíricos
// herdados do sistema original, mantidos como constantes nomeadas.
const (
	coalChance   = 0.012
	coalMaxY     = 136
	ironChance   = 0.008
	ironDeepY    = 0
	ironDeep     = 0.012
	goldChance   = 0.004
	goldDeepY    = -16
	goldDeep     = 0.006
	diamondMaxY  = -16
	diamondRate  = 0.0015
	diamondDeepY = -40
	diamondDeep  = 0.003
)

// Constantes de cavernas. Duas projeções de ruído combinadas acima de um
// limiar escavam; cavernas fundas podem nascer inundadas.
const (
	caveScale        = 0.05
	caveThreshold    = 0.7
	caveFloorBuffer  = 6
	floodedCaveMaxY  = util.SeaLevel - 43
	floodedCaveWater = 0.3
)

// Constantes de árvores.
const (
	treeChance     = 0.02
	treeEdgeMargin = 3
	trunkBase      = 5
	trunkExtra     = 2
	leafRadius     = 5
)

// Multiplicadores da seed por coluna. Misturam a seed global com as
// coordenadas para um fluxo aleatório determinístico e independente do
// relógio.
const (
	seedMulX = 341873128712
	seedMulZ = 132897987541
)

// worldHeight é a altura total do mundo em blocos.
const worldHeight = util.WorldMaxY - util.WorldMinY

// Column é uma coluna densa de blocos, indexada de WorldMinY para cima.
type Column [worldHeight]world.BlockID

// Generator é a função de terreno. Imutável após a criação; seguro para
// uso concorrente por vários workers.
type Generator struct {
	seed int64

	continent opensimplex.Noise
	hills     opensimplex.Noise
	detail    opensimplex.Noise
	caveA     opensimplex.Noise
	caveB     opensimplex.Noise
}

// NewGenerator cria um gerador para a seed dada.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		seed:      seed,
		continent: opensimplex.New(seed),
		hills:     opensimplex.New(seed + 1),
		detail:    opensimplex.New(seed + 2),
		caveA:     opensimplex.New(seed + 3),
		caveB:     opensimplex.New(seed + 4),
	}
}

// Seed retorna a seed do gerador.
func (g *Generator) Seed() int64 { return g.seed }

// HeightAt retorna a altura do terreno na coluna (topo sólido), combinando
// as três bandas de ruído e limitando ao intervalo vertical do mundo.
func (g *Generator) HeightAt(worldX, worldZ int32) int32 {
	fx := float64(worldX)
	fz := float64(worldZ)

	h := float64(util.SeaLevel)
	h += g.continent.Eval2(fx*continentScale, fz*continentScale) * continentWeight
	h += g.hills.Eval2(fx*hillScale, fz*hillScale) * hillWeight
	h += g.detail.Eval2(fx*detailScale, fz*detailScale) * detailWeight

	height := int32(h)
	if height < minHeight {
		height = minHeight
	}
	if height > maxHeight {
		height = maxHeight
	}
	return height
}

// columnRand cria o fluxo aleatório determinístico da coluna.
func (g *Generator) columnRand(worldX, worldZ int32) *rand.Rand {
	return rand.New(rand.NewSource(g.seed + int64(worldX)*seedMulX + int64(worldZ)*seedMulZ))
}

// ColumnAt gera a coluna completa em (worldX, worldZ): camadas, minérios,
// água e cavernas. Retorna também a altura do terreno. Determinística:
// mesmas entradas, mesma saída, byte a byte. Árvores são decoração por
// chunk e não fazem parte da coluna.
func (g *Generator) ColumnAt(worldX, worldZ int32) (Column, int32) {
	var col Column
	height := g.HeightAt(worldX, worldZ)
	rng := g.columnRand(worldX, worldZ)

	g.fillColumn(&col, height, rng)
	g.carveCaves(&col, worldX, worldZ, rng)
	return col, height
}

// fillColumn preenche as camadas da coluna para a altura dada: bedrock no
// fundo, pedra com minérios, preenchimento sub-superficial, bloco de
// superfície e água até o nível do mar.
func (g *Generator) fillColumn(col *Column, height int32, rng *rand.Rand) {
	surface := g.surfaceBlock(height, rng)
	subsurface := g.subsurfaceBlock(height)

	for y := int32(util.WorldMinY); y < util.WorldMaxY; y++ {
		i := y - util.WorldMinY
		switch {
		case y == util.WorldMinY:
			col[i] = world.Bedrock
		case y < util.WorldMinY+1+bedrockLayers && rng.Float64() < float64(util.WorldMinY+1+bedrockLayers-y)/float64(bedrockLayers+1):
			col[i] = world.Bedrock
		case y < height-dirtDepth:
			col[i] = g.oreOrStone(y, rng)
		case y < height:
			col[i] = subsurface
		case y == height:
			col[i] = surface
		case y <= util.SeaLevel:
			col[i] = world.Water
		default:
			col[i] = world.Air
		}
	}
}

// surfaceBlock escolhe o bloco de superfície em função da altura.
func (g *Generator) surfaceBlock(height int32, rng *rand.Rand) world.BlockID {
	switch {
	case height < oceanFloorMax:
		// fundo do oceano alterna cascalho e areia
		if rng.Float64() < 0.5 {
			return world.Gravel
		}
		return world.Sand
	case height <= beachMax:
		return world.Sand
	case height > stoneAltitude:
		return world.Stone
	default:
		return world.Grass
	}
}

// subsurfaceBlock escolhe o preenchimento logo abaixo da superfície.
func (g *Generator) subsurfaceBlock(height int32) world.BlockID {
	if height <= beachMax {
		return world.Sand
	}
	return world.Dirt
}

// oreOrStone sorteia minério na região de pedra, com taxas dependentes da
// profundidade.
func (g *Generator) oreOrStone(y int32, rng *rand.Rand) world.BlockID {
	r := rng.Float64()

	if y <= coalMaxY && r < coalChance {
		return world.CoalOre
	}
	r -= coalChance

	iron := ironChance
	if y <= ironDeepY {
		iron = ironDeep
	}
	if r < iron {
		return world.IronOre
	}
	r -= iron

	gold := goldChance
	if y <= goldDeepY {
		gold = goldDeep
	}
	if r < gold {
		return world.GoldOre
	}
	r -= gold

	if y <= diamondMaxY {
		diamond := diamondRate
		if y <= diamondDeepY {
			diamond = diamondDeep
		}
		if r < diamond {
			return world.DiamondOre
		}
	}
	return world.Stone
}

// carveCaves escava a coluna abaixo do nível do mar. Bedrock e água nunca
// são escavados; cavernas muito fundas podem nascer inundadas.
func (g *Generator) carveCaves(col *Column, worldX, worldZ int32, rng *rand.Rand) {
	fx := float64(worldX) * caveScale
	fz := float64(worldZ) * caveScale

	for y := int32(util.WorldMinY + 1 + caveFloorBuffer); y < util.SeaLevel; y++ {
		i := y - util.WorldMinY
		switch col[i] {
		case world.Air, world.Water, world.Bedrock:
			continue
		}

		fy := float64(y) * caveScale
		a := g.caveA.Eval3(fx, fy, fz)
		b := g.caveB.Eval3(fx, fy, fz)
		if (a+b)/2+0.5 <= caveThreshold {
			continue
		}

		if y < floodedCaveMaxY && rng.Float64() < floodedCaveWater {
			col[i] = world.Water
		} else {
			col[i] = world.Air
		}
	}
}

// Generate preenche o chunk com terreno. Qualquer pânico durante a síntese
// é convertido em erro; o chamador devolve o chunk a Empty, de modo que
// nenhum array parcialmente escrito fica visível como Generated.
func (g *Generator) Generate(c *world.Chunk) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("geração do chunk %s: %v", c.Coord(), r)
		}
	}()

	coord := c.Coord()
	baseX := coord.X * util.SectionSize
	baseZ := coord.Z * util.SectionSize

	heights := [util.SectionSize][util.SectionSize]int32{}

	for lx := int32(0); lx < util.SectionSize; lx++ {
		for lz := int32(0); lz < util.SectionSize; lz++ {
			col, height := g.ColumnAt(baseX+lx, baseZ+lz)
			heights[lx][lz] = height
			for y := int32(util.WorldMinY); y < util.WorldMaxY; y++ {
				if id := col[y-util.WorldMinY]; id != world.Air {
					c.SetBlockRaw(lx, y, lz, id)
				}
			}
		}
	}

	g.plantTrees(c, &heights)
	return nil
}

// plantTrees semeia árvores sobre grama, com margem das bordas do chunk
// para que a copa nunca atravesse para o chunk vizinho.
func (g *Generator) plantTrees(c *world.Chunk, heights *[util.SectionSize][util.SectionSize]int32) {
	coord := c.Coord()
	rng := rand.New(rand.NewSource(g.seed ^ (int64(coord.X)*seedMulX + int64(coord.Z)*seedMulZ)))

	for lx := int32(treeEdgeMargin); lx < util.SectionSize-treeEdgeMargin; lx++ {
		for lz := int32(treeEdgeMargin); lz < util.SectionSize-treeEdgeMargin; lz++ {
			if rng.Float64() >= treeChance {
				continue
			}
			ground := heights[lx][lz]
			if c.Block(lx, ground, lz) != world.Grass {
				continue
			}
			g.growTree(c, lx, ground, lz, rng)
		}
	}
}

// growTree ergue um tronco e uma copa em losango sobre a posição dada.
func (g *Generator) growTree(c *world.Chunk, lx, ground, lz int32, rng *rand.Rand) {
	trunkH := int32(trunkBase + rng.Intn(trunkExtra))
	top := ground + trunkH

	for y := ground + 1; y <= top; y++ {
		c.SetBlockRaw(lx, y, lz, world.Log)
	}

	for dx := int32(-2); dx <= 2; dx++ {
		for dy := int32(-2); dy <= 2; dy++ {
			for dz := int32(-2); dz <= 2; dz++ {
				if util.Abs(dx)+util.Abs(dy)+util.Abs(dz) >= leafRadius {
					continue
				}
				x, y, z := lx+dx, top+dy, lz+dz
				if x < 0 || x >= util.SectionSize || z < 0 || z >= util.SectionSize {
					continue
				}
				if c.Block(x, y, z) == world.Air {
					c.SetBlockRaw(x, y, z, world.Leaves)
				}
			}
		}
	}
}
