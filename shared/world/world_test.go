package world

import (
	"testing"

	"VoxelHorizon/shared/util"
)

func advanceTo(t *testing.T, c *Chunk, target ChunkState) {
	t.Helper()
	for c.State() < target {
		if err := c.TransitionTo(c.State() + 1); err != nil {
			t.Fatalf("TransitionTo(%s): %v", c.State()+1, err)
		}
	}
}

func TestChunkStateProgression(t *testing.T) {
	c := NewChunk(util.ChunkCoord{})

	if c.State() != StateEmpty {
		t.Fatalf("estado inicial = %s, want Empty", c.State())
	}

	states := []ChunkState{StateGenerating, StateGenerated, StateLightPending, StateReady}
	for _, s := range states {
		if err := c.TransitionTo(s); err != nil {
			t.Fatalf("TransitionTo(%s): %v", s, err)
		}
		if c.State() != s {
			t.Fatalf("State = %s, want %s", c.State(), s)
		}
	}
}

func TestChunkStateRejectsSkips(t *testing.T) {
	c := NewChunk(util.ChunkCoord{})

	if err := c.TransitionTo(StateGenerated); err == nil {
		t.Error("Empty -> Generated deveria falhar")
	}
	if err := c.TransitionTo(StateReady); err == nil {
		t.Error("Empty -> Ready deveria falhar")
	}

	advanceTo(t, c, StateReady)
	if err := c.TransitionTo(StateEmpty); err == nil {
		t.Error("Ready -> Empty deveria falhar, regressão só vale durante a geração")
	}
	if err := c.TransitionTo(StateGenerating); err == nil {
		t.Error("Ready -> Generating deveria falhar")
	}
}

func TestChunkStateFailureEdge(t *testing.T) {
	c := NewChunk(util.ChunkCoord{})

	advanceTo(t, c, StateGenerating)
	if err := c.TransitionTo(StateEmpty); err != nil {
		t.Errorf("Generating -> Empty (falha): %v", err)
	}

	advanceTo(t, c, StateGenerated)
	if err := c.TransitionTo(StateEmpty); err != nil {
		t.Errorf("Generated -> Empty (falha): %v", err)
	}

	advanceTo(t, c, StateLightPending)
	if err := c.TransitionTo(StateEmpty); err == nil {
		t.Error("LightPending -> Empty deveria falhar")
	}
}

func TestSectionBlockAndFlags(t *testing.T) {
	c := NewChunk(util.ChunkCoord{})
	sec := c.Section(0)

	if !sec.IsEmpty() {
		t.Fatal("seção nova deveria estar vazia")
	}
	sec.ClearDirty()

	old := sec.SetBlock(3, 5, 7, Stone)
	if old != Air {
		t.Errorf("SetBlock retornou %s, want Air", old)
	}
	if sec.Block(3, 5, 7) != Stone {
		t.Errorf("Block = %s, want Stone", sec.Block(3, 5, 7))
	}
	if sec.NonAirCount() != 1 {
		t.Errorf("NonAirCount = %d, want 1", sec.NonAirCount())
	}
	if !sec.NeedsGeometryRebuild() {
		t.Error("SetBlock deveria marcar a geometria como suja")
	}

	sec.ClearDirty()
	if sec.NeedsRebuild() {
		t.Error("ClearDirty deveria limpar as duas flags")
	}

	sec.MarkLightingDirty()
	if !sec.NeedsOnlyLighting() {
		t.Error("só a flag de luz ligada deveria reportar NeedsOnlyLighting")
	}
	sec.MarkGeometryDirty()
	if sec.NeedsOnlyLighting() {
		t.Error("com a geometria suja NeedsOnlyLighting deveria ser false")
	}

	sec.ClearDirty()
	sec.SetBlock(3, 5, 7, Air)
	if sec.NonAirCount() != 0 || !sec.IsEmpty() {
		t.Errorf("após remover: NonAirCount = %d, want 0", sec.NonAirCount())
	}
}

func TestSectionBuildGuard(t *testing.T) {
	c := NewChunk(util.ChunkCoord{})
	sec := c.Section(0)

	if !sec.TryBeginBuild() {
		t.Fatal("primeiro TryBeginBuild deveria vencer")
	}
	if sec.TryBeginBuild() {
		t.Error("TryBeginBuild concorrente deveria perder")
	}
	sec.EndBuild()
	if !sec.TryBeginBuild() {
		t.Error("TryBeginBuild após EndBuild deveria vencer")
	}
}

func TestChunkCombinedLight(t *testing.T) {
	c := NewChunk(util.ChunkCoord{})

	c.SetSkyLight(1, 0, 1, 12)
	c.SetBlockLight(1, 0, 1, 7)
	if got := c.CombinedLight(1, 0, 1); got != 12 {
		t.Errorf("CombinedLight = %d, want 12 (céu domina)", got)
	}

	c.SetBlockLight(1, 0, 1, 14)
	if got := c.CombinedLight(1, 0, 1); got != 14 {
		t.Errorf("CombinedLight = %d, want 14 (emissão domina)", got)
	}
}

type hookRecorder struct {
	placed  int
	removed int
}

func (h *hookRecorder) OnBlockPlaced(c *Chunk, lx, worldY, lz int32, id BlockID) { h.placed++ }
func (h *hookRecorder) OnBlockRemoved(c *Chunk, lx, worldY, lz int32)            { h.removed++ }

func TestWorldSetBlockEditPipeline(t *testing.T) {
	w := New(1)
	hooks := &hookRecorder{}
	w.SetLightHooks(hooks)

	c := w.GetOrCreateChunk(util.ChunkCoord{})
	advanceTo(t, c, StateReady)

	// Edição em chunk inexistente é ignorada
	w.SetBlock(100, 0, 100, Stone)
	if hooks.placed != 0 {
		t.Fatal("edição fora dos chunks residentes não deveria disparar hooks")
	}

	w.SetBlock(5, 0, 5, Stone)
	if hooks.placed != 1 {
		t.Errorf("placed = %d, want 1", hooks.placed)
	}
	if w.Block(5, 0, 5) != Stone {
		t.Errorf("Block = %s, want Stone", w.Block(5, 0, 5))
	}

	// Regravar o mesmo bloco é no-op
	w.SetBlock(5, 0, 5, Stone)
	if hooks.placed != 1 {
		t.Errorf("regravação idêntica disparou hook (placed = %d)", hooks.placed)
	}

	w.SetBlock(5, 0, 5, Air)
	if hooks.removed != 1 {
		t.Errorf("removed = %d, want 1", hooks.removed)
	}
}

func TestWorldEdgeEditMarksNeighbor(t *testing.T) {
	w := New(1)

	c := w.GetOrCreateChunk(util.ChunkCoord{})
	n := w.GetOrCreateChunk(util.ChunkCoord{X: -1})
	far := w.GetOrCreateChunk(util.ChunkCoord{X: 1})
	advanceTo(t, c, StateReady)
	advanceTo(t, n, StateReady)
	advanceTo(t, far, StateReady)

	secY := util.SectionIndexForY(0)
	n.Section(secY).ClearDirty()
	far.Section(secY).ClearDirty()

	// Edição na face oeste do chunk (lx == 0)
	w.SetBlock(0, 0, 5, Stone)

	if !n.Section(secY).NeedsGeometryRebuild() {
		t.Error("edição de borda deveria marcar a seção do vizinho oeste")
	}
	if far.Section(secY).NeedsGeometryRebuild() {
		t.Error("edição de borda não deveria marcar o vizinho do lado oposto")
	}
}

func TestWorldNeighborsGenerated(t *testing.T) {
	w := New(1)
	center := util.ChunkCoord{}
	w.GetOrCreateChunk(center)

	if w.NeighborsGenerated(center) {
		t.Fatal("sem vizinhos residentes deveria ser false")
	}

	for _, d := range [4][2]int32{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		n := w.GetOrCreateChunk(center.Add(d[0], d[1]))
		advanceTo(t, n, StateGenerated)
	}

	if !w.NeighborsGenerated(center) {
		t.Error("com os quatro vizinhos gerados deveria ser true")
	}
}

func TestBlockDefs(t *testing.T) {
	tests := []struct {
		id     BlockID
		solid  bool
		opaque bool
		emit   uint8
		pass   RenderPass
	}{
		{Air, false, false, 0, PassSolid},
		{Stone, true, true, 0, PassSolid},
		{Water, false, false, 0, PassLiquid},
		{Leaves, true, false, 0, PassTranslucent},
		{Torch, false, false, 14, PassSolid},
		{Glowstone, true, true, 15, PassSolid},
	}

	for _, tt := range tests {
		def := tt.id.Def()
		if def.Solid != tt.solid || def.Opaque != tt.opaque || def.Emission != tt.emit || def.Pass != tt.pass {
			t.Errorf("%s: def = {solid:%v opaque:%v emit:%d pass:%d}, want {%v %v %d %d}",
				tt.id, def.Solid, def.Opaque, def.Emission, def.Pass, tt.solid, tt.opaque, tt.emit, tt.pass)
		}
	}
}
