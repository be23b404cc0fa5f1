package world

// BlockID identifica um tipo de bloco no registro.
type BlockID uint8

const (
	Air BlockID = iota
	Stone
	Dirt
	Grass
	Sand
	Gravel
	Bedrock
	Water
	Leaves
	Log
	CoalOre
	IronOre
	GoldOre
	DiamondOre
	Torch
	Glowstone
	blockCount
)

// RenderPass separa a geometria em passes de desenho.
type RenderPass uint8

const (
	PassSolid RenderPass = iota
	PassLiquid
	PassTranslucent
)

// BlockDef descreve as propriedades estáticas de um tipo de bloco.
type BlockDef struct {
	Name string

	// Solid indica se o bloco tem forma de cubo cheio (colisão de face).
	Solid bool

	// Opaque indica se o bloco corta totalmente a luz do céu.
	Opaque bool

	// Attenuates indica se o bloco reduz a luz do céu em 1 nível ao
	// atravessá-lo (água, folhas), sem bloqueá-la.
	Attenuates bool

	// Emission é o nível de luz emitido (0-15).
	Emission uint8

	Pass RenderPass

	// Color é a cor base do voxel (RGBA), multiplicada pelo brilho no mesher.
	Color [4]uint8
}

// blockDefs é o registro de tipos. Indexado por BlockID.
var blockDefs = [blockCount]BlockDef{
	Air:        {Name: "ar", Solid: false, Opaque: false},
	Stone:      {Name: "pedra", Solid: true, Opaque: true, Color: [4]uint8{128, 128, 128, 255}},
	Dirt:       {Name: "terra", Solid: true, Opaque: true, Color: [4]uint8{134, 96, 67, 255}},
	Grass:      {Name: "grama", Solid: true, Opaque: true, Color: [4]uint8{95, 159, 53, 255}},
	Sand:       {Name: "areia", Solid: true, Opaque: true, Color: [4]uint8{219, 211, 160, 255}},
	Gravel:     {Name: "cascalho", Solid: true, Opaque: true, Color: [4]uint8{136, 126, 126, 255}},
	Bedrock:    {Name: "bedrock", Solid: true, Opaque: true, Color: [4]uint8{51, 51, 51, 255}},
	Water:      {Name: "água", Solid: false, Opaque: false, Attenuates: true, Pass: PassLiquid, Color: [4]uint8{52, 95, 218, 168}},
	Leaves:     {Name: "folhas", Solid: true, Opaque: false, Attenuates: true, Pass: PassTranslucent, Color: [4]uint8{58, 125, 34, 230}},
	Log:        {Name: "tronco", Solid: true, Opaque: true, Color: [4]uint8{102, 81, 50, 255}},
	CoalOre:    {Name: "carvão", Solid: true, Opaque: true, Color: [4]uint8{84, 84, 84, 255}},
	IronOre:    {Name: "ferro", Solid: true, Opaque: true, Color: [4]uint8{175, 142, 119, 255}},
	GoldOre:    {Name: "ouro", Solid: true, Opaque: true, Color: [4]uint8{198, 170, 77, 255}},
	DiamondOre: {Name: "diamante", Solid: true, Opaque: true, Color: [4]uint8{102, 221, 213, 255}},
	Torch:      {Name: "tocha", Solid: false, Opaque: false, Emission: 14, Color: [4]uint8{255, 216, 128, 255}},
	Glowstone:  {Name: "glowstone", Solid: true, Opaque: true, Emission: 15, Color: [4]uint8{255, 234, 158, 255}},
}

// Def retorna a definição do bloco.
func (id BlockID) Def() *BlockDef {
	if id >= blockCount {
		return &blockDefs[Air]
	}
	return &blockDefs[id]
}

// IsAir reporta se o bloco é ar.
func (id BlockID) IsAir() bool { return id == Air }

// IsSolid reporta se o bloco tem forma de cubo cheio.
func (id BlockID) IsSolid() bool { return id.Def().Solid }

// IsOpaque reporta se o bloco corta totalmente a luz.
func (id BlockID) IsOpaque() bool { return id.Def().Opaque }

// Emission retorna o nível de luz emitido pelo bloco.
func (id BlockID) Emission() uint8 { return id.Def().Emission }

// String retorna o nome do bloco.
func (id BlockID) String() string { return id.Def().Name }
