package light

import (
	"testing"

	"VoxelHorizon/shared/util"
	"VoxelHorizon/shared/world"
)

// newTestEngine monta um mundo com um chunk Generated e um motor com
// orçamento folgado, suficiente para qualquer flood fill de um chunk.
func newTestEngine(t *testing.T) (*world.World, *world.Chunk, *Engine) {
	t.Helper()
	w := world.New(1)
	c := w.GetOrCreateChunk(util.ChunkCoord{})
	if err := c.TransitionTo(world.StateGenerating); err != nil {
		t.Fatal(err)
	}
	if err := c.TransitionTo(world.StateGenerated); err != nil {
		t.Fatal(err)
	}
	e := NewEngine(w, 1, 4, 1_000_000)
	t.Cleanup(e.Stop)
	return w, c, e
}

func TestSkyLightOpenColumn(t *testing.T) {
	_, c, e := newTestEngine(t)

	e.InitializeForChunk(c)

	if !c.LightInitialized() {
		t.Fatal("InitializeForChunk deveria marcar a luz como inicializada")
	}
	for _, y := range []int32{util.WorldMinY, 0, util.SeaLevel, util.WorldMaxY - 1} {
		if got := c.SkyLight(4, y, 4); got != MaxLevel {
			t.Errorf("coluna aberta em y=%d: céu = %d, want %d", y, got, MaxLevel)
		}
	}
}

func TestSkyLightBlockedByOpaque(t *testing.T) {
	_, c, e := newTestEngine(t)

	// Uma laje opaca em y=100
	c.SetBlockRaw(2, 100, 3, world.Stone)
	e.InitializeForChunk(c)

	if got := c.SkyLight(2, 101, 3); got != MaxLevel {
		t.Errorf("acima da laje: céu = %d, want %d", got, MaxLevel)
	}
	if got := c.SkyLight(2, 100, 3); got != 0 {
		t.Errorf("na laje: céu = %d, want 0", got)
	}
	for _, y := range []int32{99, 50, util.WorldMinY} {
		if got := c.SkyLight(2, y, 3); got != 0 {
			t.Errorf("sob a laje em y=%d: céu = %d, want 0", y, got)
		}
	}

	// Colunas vizinhas não são afetadas pela varredura
	if got := c.SkyLight(3, 50, 3); got != MaxLevel {
		t.Errorf("coluna vizinha: céu = %d, want %d", got, MaxLevel)
	}
}

func TestSkyLightAttenuatedByWater(t *testing.T) {
	_, c, e := newTestEngine(t)

	// Três blocos de água empilhados
	for y := int32(78); y <= 80; y++ {
		c.SetBlockRaw(5, y, 5, world.Water)
	}
	e.InitializeForChunk(c)

	tests := []struct {
		y    int32
		want uint8
	}{
		{81, 15},
		{80, 14},
		{79, 13},
		{78, 12},
		{77, 12},
		{40, 12},
	}
	for _, tt := range tests {
		if got := c.SkyLight(5, tt.y, 5); got != tt.want {
			t.Errorf("y=%d: céu = %d, want %d", tt.y, got, tt.want)
		}
	}
}

func TestBlockLightFloodFromEmitter(t *testing.T) {
	_, c, e := newTestEngine(t)

	c.SetBlockRaw(8, 50, 8, world.Torch)
	e.InitializeForChunk(c)

	tests := []struct {
		lx, y, lz int32
		want      uint8
	}{
		{8, 50, 8, 14},
		{9, 50, 8, 13},
		{8, 53, 8, 11},
		{11, 50, 8, 11},
		{10, 51, 9, 10},
	}
	for _, tt := range tests {
		if got := c.BlockLight(tt.lx, tt.y, tt.lz); got != tt.want {
			t.Errorf("(%d, %d, %d): luz = %d, want %d", tt.lx, tt.y, tt.lz, got, tt.want)
		}
	}
}

func TestBlockLightFlowsAroundWall(t *testing.T) {
	_, c, e := newTestEngine(t)

	c.SetBlockRaw(8, 50, 8, world.Torch)
	c.SetBlockRaw(9, 50, 8, world.Stone)
	e.InitializeForChunk(c)

	// Opaco não recebe nem transmite
	if got := c.BlockLight(9, 50, 8); got != 0 {
		t.Errorf("parede: luz = %d, want 0", got)
	}
	// O caminho mais curto agora contorna a parede (4 passos)
	if got := c.BlockLight(10, 50, 8); got != 10 {
		t.Errorf("atrás da parede: luz = %d, want 10", got)
	}
	if got := c.BlockLight(9, 51, 8); got != 12 {
		t.Errorf("sobre a parede: luz = %d, want 12", got)
	}
}

func TestInitializeIdempotent(t *testing.T) {
	_, c, e := newTestEngine(t)

	c.SetBlockRaw(8, 50, 8, world.Glowstone)
	c.SetBlockRaw(3, 90, 3, world.Stone)

	e.InitializeForChunk(c)
	first := [][4]int32{}
	for _, p := range [][3]int32{{8, 51, 8}, {3, 89, 3}, {12, 50, 8}, {0, 0, 0}} {
		first = append(first, [4]int32{p[0], p[1], p[2],
			int32(c.CombinedLight(p[0], p[1], p[2]))})
	}

	e.InitializeForChunk(c)
	for _, rec := range first {
		got := int32(c.CombinedLight(rec[0], rec[1], rec[2]))
		if got != rec[3] {
			t.Errorf("(%d, %d, %d): segunda passada mudou %d -> %d",
				rec[0], rec[1], rec[2], rec[3], got)
		}
	}
}

func TestOnBlockPlacedCastsShadow(t *testing.T) {
	_, c, e := newTestEngine(t)
	e.InitializeForChunk(c)

	c.SetBlock(6, 100, 6, world.Stone)
	e.OnBlockPlaced(c, 6, 100, 6, world.Stone)

	if got := c.SkyLight(6, 40, 6); got != 0 {
		t.Errorf("sombra nova: céu = %d, want 0", got)
	}
	// Seções alteradas ganham a flag de luz
	sec := c.SectionForY(40)
	if !sec.NeedsLightingUpdate() {
		t.Error("seção na sombra deveria estar marcada para atualização de luz")
	}
}

func TestOnBlockPlacedEmitter(t *testing.T) {
	_, c, e := newTestEngine(t)
	e.InitializeForChunk(c)

	c.SetBlock(8, 50, 8, world.Torch)
	e.OnBlockPlaced(c, 8, 50, 8, world.Torch)

	if got := c.BlockLight(8, 50, 8); got != 14 {
		t.Errorf("tocha: luz = %d, want 14", got)
	}
	if got := c.BlockLight(10, 50, 8); got != 12 {
		t.Errorf("a dois passos: luz = %d, want 12", got)
	}
}

func TestOnBlockRemovedRefloods(t *testing.T) {
	_, c, e := newTestEngine(t)

	c.SetBlockRaw(8, 50, 8, world.Torch)
	c.SetBlockRaw(9, 50, 8, world.Stone)
	e.InitializeForChunk(c)

	// Remover a parede deixa a luz entrar direto
	c.SetBlock(9, 50, 8, world.Air)
	e.OnBlockRemoved(c, 9, 50, 8)

	if got := c.BlockLight(9, 50, 8); got != 13 {
		t.Errorf("célula desocupada: luz = %d, want 13", got)
	}
	if got := c.BlockLight(10, 50, 8); got != 12 {
		t.Errorf("célula seguinte: luz = %d, want 12", got)
	}
}

func TestQueueForUpdateDedup(t *testing.T) {
	_, c, e := newTestEngine(t)

	e.QueueForUpdate(c)
	e.QueueForUpdate(c)
	if got := e.PendingCount(); got != 1 {
		t.Errorf("PendingCount = %d, want 1", got)
	}

	e.CancelChunkUpdates(c.Coord())
	if got := e.PendingCount(); got != 0 {
		t.Errorf("PendingCount após cancelar = %d, want 0", got)
	}
}

func TestBrightnessTable(t *testing.T) {
	b := NewBrightness(0.4, 1.0)

	if got := b.Level(0); got != 0.4 {
		t.Errorf("Level(0) = %f, want 0.4 (nunca escuridão total)", got)
	}
	if got := b.Level(MaxLevel); got != 1.0 {
		t.Errorf("Level(15) = %f, want 1.0", got)
	}

	// Monotônica
	for level := uint8(1); level <= MaxLevel; level++ {
		if b.Level(level) <= b.Level(level-1) {
			t.Fatalf("tabela não monotônica em %d", level)
		}
	}

	// Nível acima do máximo satura
	if b.Level(200) != b.Level(MaxLevel) {
		t.Error("Level acima de 15 deveria saturar")
	}
}

func TestBrightnessWithTimeIsPure(t *testing.T) {
	b := NewBrightness(0.4, 0.9)

	static := b.Level(10)
	night := b.WithTime(10, 0.3)

	if night != static*0.3 {
		t.Errorf("WithTime = %f, want %f", night, static*0.3)
	}
	// A tabela estática não muda
	if b.Level(10) != static {
		t.Error("WithTime alterou a tabela estática")
	}
}
