package save

import (
	"path/filepath"
	"testing"

	"VoxelHorizon/shared/util"
	"VoxelHorizon/shared/world"
)

// buildTestChunk monta um chunk Generated com terreno variado: camadas,
// um emissor, água e luz preenchida à mão.
func buildTestChunk(t *testing.T, coord util.ChunkCoord) *world.Chunk {
	t.Helper()
	c := world.NewChunk(coord)
	if err := c.TransitionTo(world.StateGenerating); err != nil {
		t.Fatal(err)
	}
	if err := c.TransitionTo(world.StateGenerated); err != nil {
		t.Fatal(err)
	}

	for lx := int32(0); lx < util.SectionSize; lx++ {
		for lz := int32(0); lz < util.SectionSize; lz++ {
			c.SetBlockRaw(lx, util.WorldMinY, lz, world.Bedrock)
			for y := int32(util.WorldMinY + 1); y < 60; y++ {
				c.SetBlockRaw(lx, y, lz, world.Stone)
			}
			c.SetBlockRaw(lx, 60, lz, world.Grass)
			c.SetSkyLight(lx, 61, lz, 15)
			c.SetSkyLight(lx, 60, lz, 12)
		}
	}
	c.SetBlockRaw(8, 61, 8, world.Torch)
	c.SetBlockRaw(3, 61, 3, world.Water)
	c.SetBlockLight(8, 61, 8, 14)
	c.SetBlockLight(9, 61, 8, 13)
	return c
}

func chunksEqual(t *testing.T, a, b *world.Chunk) {
	t.Helper()
	for lx := int32(0); lx < util.SectionSize; lx++ {
		for lz := int32(0); lz < util.SectionSize; lz++ {
			for y := int32(util.WorldMinY); y < util.WorldMaxY; y++ {
				if a.Block(lx, y, lz) != b.Block(lx, y, lz) {
					t.Fatalf("bloco (%d, %d, %d): %s != %s",
						lx, y, lz, a.Block(lx, y, lz), b.Block(lx, y, lz))
				}
				if a.SkyLight(lx, y, lz) != b.SkyLight(lx, y, lz) {
					t.Fatalf("céu (%d, %d, %d): %d != %d",
						lx, y, lz, a.SkyLight(lx, y, lz), b.SkyLight(lx, y, lz))
				}
				if a.BlockLight(lx, y, lz) != b.BlockLight(lx, y, lz) {
					t.Fatalf("emitida (%d, %d, %d): %d != %d",
						lx, y, lz, a.BlockLight(lx, y, lz), b.BlockLight(lx, y, lz))
				}
			}
		}
	}
}

func TestCodecRoundTrip(t *testing.T) {
	coord := util.ChunkCoord{X: 2, Z: -3}
	original := buildTestChunk(t, coord)

	data := EncodeChunk(original)
	if len(data) == 0 {
		t.Fatal("EncodeChunk retornou payload vazio")
	}

	restored := world.NewChunk(coord)
	if err := DecodeChunk(data, restored); err != nil {
		t.Fatalf("DecodeChunk: %v", err)
	}

	chunksEqual(t, original, restored)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	c := world.NewChunk(util.ChunkCoord{})
	if err := DecodeChunk([]byte{0xFF, 0x00, 0x13, 0x37}, c); err == nil {
		t.Error("payload inválido deveria falhar")
	}
	if err := DecodeChunk(nil, c); err == nil {
		t.Error("payload vazio deveria falhar")
	}
}

func TestDecodeRejectsTruncated(t *testing.T) {
	original := buildTestChunk(t, util.ChunkCoord{})
	data := EncodeChunk(original)

	c := world.NewChunk(util.ChunkCoord{})
	if err := DecodeChunk(data[:len(data)/2], c); err == nil {
		t.Error("payload truncado deveria falhar")
	}
}

func TestStoreSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mundo.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	coord := util.ChunkCoord{X: 1, Z: 2}
	original := buildTestChunk(t, coord)
	original.MarkDirty()

	if err := store.Save(original); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if original.Dirty() {
		t.Error("Save deveria limpar a flag de sujo")
	}

	restored := world.NewChunk(coord)
	ok, err := store.Load(coord, restored)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatal("Load não encontrou o chunk salvo")
	}
	chunksEqual(t, original, restored)

	// Posição nunca salva
	miss := world.NewChunk(util.ChunkCoord{X: 99, Z: 99})
	ok, err = store.Load(util.ChunkCoord{X: 99, Z: 99}, miss)
	if err != nil {
		t.Fatalf("Load (ausente): %v", err)
	}
	if ok {
		t.Error("Load de posição nunca salva deveria retornar false")
	}
}

func TestEnsureMetadataSeedPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mundo.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	id1, seed1, err := store.EnsureMetadata(42)
	if err != nil {
		t.Fatalf("EnsureMetadata: %v", err)
	}
	if id1 == "" {
		t.Fatal("worldID vazio")
	}
	if seed1 != 42 {
		t.Fatalf("seed inicial = %d, want 42", seed1)
	}
	store.Close()

	// Reabrir com outra seed: a do banco prevalece
	store, err = Open(path)
	if err != nil {
		t.Fatalf("Open (reabertura): %v", err)
	}
	defer store.Close()

	id2, seed2, err := store.EnsureMetadata(777)
	if err != nil {
		t.Fatalf("EnsureMetadata (reabertura): %v", err)
	}
	if id2 != id1 {
		t.Errorf("worldID mudou entre aberturas: %s != %s", id2, id1)
	}
	if seed2 != 42 {
		t.Errorf("seed = %d, want 42 (a seed salva prevalece)", seed2)
	}
}
