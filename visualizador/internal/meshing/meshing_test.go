package meshing

import (
	"testing"

	"VoxelHorizon/shared/util"
	"VoxelHorizon/shared/world"
	"VoxelHorizon/shared/world/light"
)

func TestShouldRenderFace(t *testing.T) {
	tests := []struct {
		name     string
		cur      world.BlockID
		neighbor world.BlockID
		want     bool
	}{
		{"pedra contra ar", world.Stone, world.Air, true},
		{"pedra contra pedra", world.Stone, world.Stone, false},
		{"pedra contra água", world.Stone, world.Water, true},
		{"pedra contra folhas", world.Stone, world.Leaves, true},
		{"água contra água", world.Water, world.Water, false},
		{"água contra ar", world.Water, world.Air, true},
		{"folhas contra folhas", world.Leaves, world.Leaves, false},
		{"pedra contra terra", world.Stone, world.Dirt, false},
		{"água contra pedra", world.Water, world.Stone, false},
		{"pedra contra tocha", world.Stone, world.Torch, true},
	}

	for _, tt := range tests {
		if got := shouldRenderFace(tt.cur, tt.neighbor); got != tt.want {
			t.Errorf("%s: shouldRenderFace = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestTaskLessOrdering(t *testing.T) {
	urgentFar := Task{Urgent: true, DistSq: 100, seq: 1}
	nearOld := Task{DistSq: 1, seq: 2}
	nearNew := Task{DistSq: 1, seq: 3}
	far := Task{DistSq: 64, seq: 4}

	if !taskLess(urgentFar, nearOld) {
		t.Error("urgente deveria vencer distância")
	}
	if !taskLess(nearOld, far) {
		t.Error("mais perto deveria vencer mais longe")
	}
	if !taskLess(nearOld, nearNew) {
		t.Error("empate de distância deveria ser FIFO")
	}
	if taskLess(nearNew, nearOld) {
		t.Error("FIFO não pode valer nos dois sentidos")
	}
}

func newMesherForTest(t *testing.T) (*world.World, *SectionMesher) {
	t.Helper()
	w := world.New(1)
	b := light.NewBrightness(0.4, 1.0)
	m := NewSectionMesher(w, b, FlatUVs{}, 1, 8, 0)
	t.Cleanup(m.Stop)
	return w, m
}

// readyChunk cria um chunk no estado Ready com luz inicializada a zero.
func readyChunk(t *testing.T, w *world.World, coord util.ChunkCoord) *world.Chunk {
	t.Helper()
	c := w.GetOrCreateChunk(coord)
	for _, s := range []world.ChunkState{
		world.StateGenerating, world.StateGenerated,
		world.StateLightPending, world.StateReady,
	} {
		if err := c.TransitionTo(s); err != nil {
			t.Fatal(err)
		}
	}
	c.SetLightInitialized(true)
	return c
}

func TestBuildGeometrySingleBlock(t *testing.T) {
	w, m := newMesherForTest(t)
	c := readyChunk(t, w, util.ChunkCoord{})

	// Um bloco isolado no meio da seção 8 (y de mundo 64..79)
	sec := c.Section(8)
	c.SetBlockRaw(8, sec.Coord().MinWorldY()+8, 8, world.Stone)

	res := m.buildGeometry(c, sec)

	// Cubo isolado: 6 faces, 4 vértices e 6 índices por face
	if got := res.Solid.VertexCount(); got != 24 {
		t.Errorf("vértices = %d, want 24", got)
	}
	if got := len(res.Solid.Indices); got != 36 {
		t.Errorf("índices = %d, want 36", got)
	}
	if !res.Liquid.IsEmpty() || !res.Translucent.IsEmpty() {
		t.Error("bloco sólido não deveria gerar geometria de líquido ou translúcido")
	}
}

func TestBuildGeometryBuriedBlockCulled(t *testing.T) {
	w, m := newMesherForTest(t)
	c := readyChunk(t, w, util.ChunkCoord{})

	sec := c.Section(8)
	base := sec.Coord().MinWorldY()

	// Bloco central cercado de pedra por todos os lados
	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			for dz := int32(-1); dz <= 1; dz++ {
				c.SetBlockRaw(8+dx, base+8+dy, 8+dz, world.Stone)
			}
		}
	}

	res := m.buildGeometry(c, sec)

	// Só as faces externas do aglomerado 3x3x3 aparecem: 6 lados x 9 faces
	if got := res.Solid.VertexCount(); got != 54*4 {
		t.Errorf("vértices = %d, want %d", got, 54*4)
	}
}

func TestBuildGeometrySeparatesPasses(t *testing.T) {
	w, m := newMesherForTest(t)
	c := readyChunk(t, w, util.ChunkCoord{})

	sec := c.Section(8)
	base := sec.Coord().MinWorldY()

	c.SetBlockRaw(2, base+2, 2, world.Stone)
	c.SetBlockRaw(6, base+2, 6, world.Water)
	c.SetBlockRaw(10, base+2, 10, world.Leaves)

	res := m.buildGeometry(c, sec)

	if res.Solid.IsEmpty() {
		t.Error("passe sólido vazio")
	}
	if res.Liquid.IsEmpty() {
		t.Error("passe líquido vazio")
	}
	if res.Translucent.IsEmpty() {
		t.Error("passe translúcido vazio")
	}
}

func TestRequestRebuildDedup(t *testing.T) {
	w, m := newMesherForTest(t)
	c := readyChunk(t, w, util.ChunkCoord{})

	sec := c.Section(0)
	sec.MarkGeometryDirty()

	m.RequestRebuild(sec, false, 4)
	m.RequestRebuild(sec, false, 4)
	m.RequestRebuild(sec, true, 4)

	if got := m.PendingBuilds(); got != 1 {
		t.Errorf("PendingBuilds = %d, want 1 (dedup por seção)", got)
	}
}

func TestRequestRebuildEvictedSectionCanReenqueue(t *testing.T) {
	w := world.New(1)
	b := light.NewBrightness(0.4, 1.0)
	m := NewSectionMesher(w, b, FlatUVs{}, 1, 8, 1)
	t.Cleanup(m.Stop)

	farChunk := readyChunk(t, w, util.ChunkCoord{X: 5})
	nearChunk := readyChunk(t, w, util.ChunkCoord{})
	farSec := farChunk.Section(0)
	nearSec := nearChunk.Section(0)
	farSec.MarkGeometryDirty()
	nearSec.MarkGeometryDirty()

	// Fila com capacidade 1: a seção próxima expulsa a distante
	m.RequestRebuild(farSec, false, 100)
	m.RequestRebuild(nearSec, false, 1)
	if got := m.PendingBuilds(); got != 1 {
		t.Fatalf("PendingBuilds = %d, want 1", got)
	}

	// A seção expulsa não pode ficar presa no dedup: com a fila vazia de
	// novo, um pedido para ela tem que entrar
	m.CancelChunk(nearChunk.Coord())
	if got := m.PendingBuilds(); got != 0 {
		t.Fatalf("PendingBuilds após cancelar = %d, want 0", got)
	}

	m.RequestRebuild(farSec, false, 100)
	if got := m.PendingBuilds(); got != 1 {
		t.Errorf("PendingBuilds após reenfileirar seção expulsa = %d, want 1", got)
	}
}

func TestRequestRebuildSkipsCleanSections(t *testing.T) {
	w, m := newMesherForTest(t)
	c := readyChunk(t, w, util.ChunkCoord{})

	sec := c.Section(0)
	sec.ClearDirty()

	m.RequestRebuild(sec, false, 4)
	if got := m.PendingBuilds(); got != 0 {
		t.Errorf("PendingBuilds = %d, want 0 (seção limpa)", got)
	}
}

func TestCancelChunkDropsPending(t *testing.T) {
	w, m := newMesherForTest(t)
	c := readyChunk(t, w, util.ChunkCoord{})
	other := readyChunk(t, w, util.ChunkCoord{X: 1})

	for _, sec := range []*world.Section{c.Section(0), c.Section(1), other.Section(0)} {
		sec.MarkGeometryDirty()
		m.RequestRebuild(sec, false, 4)
	}

	m.CancelChunk(c.Coord())
	if got := m.PendingBuilds(); got != 1 {
		t.Errorf("PendingBuilds após cancelar = %d, want 1", got)
	}
}

func TestMeshBufferAddFace(t *testing.T) {
	b := acquireBuffer()
	defer releaseBuffer(b)

	corners := [4][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	colors := [4][4]uint8{}
	b.AddFace(corners, [3]float32{0, 0, -1}, colors, 0, 0, 1, 1)
	b.AddFace(corners, [3]float32{0, 0, -1}, colors, 0, 0, 1, 1)

	data := b.Snapshot()
	if got := data.VertexCount(); got != 8 {
		t.Errorf("vértices = %d, want 8", got)
	}
	if got := len(data.Indices); got != 12 {
		t.Errorf("índices = %d, want 12", got)
	}
	// Os índices da segunda face apontam para os vértices dela
	if data.Indices[6] != 4 {
		t.Errorf("primeiro índice da segunda face = %d, want 4", data.Indices[6])
	}
}
