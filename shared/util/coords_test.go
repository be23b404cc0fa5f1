package util

import "testing"

func TestWorldToChunk(t *testing.T) {
	tests := []struct {
		wx, wz int32
		want   ChunkCoord
	}{
		{0, 0, ChunkCoord{0, 0}},
		{15, 15, ChunkCoord{0, 0}},
		{16, 0, ChunkCoord{1, 0}},
		{-1, -1, ChunkCoord{-1, -1}},
		{-16, -17, ChunkCoord{-1, -2}},
		{-33, 47, ChunkCoord{-3, 2}},
	}

	for _, tt := range tests {
		got := WorldToChunk(tt.wx, tt.wz)
		if got != tt.want {
			t.Errorf("WorldToChunk(%d, %d) = %v, want %v", tt.wx, tt.wz, got, tt.want)
		}
	}
}

func TestWorldToLocal(t *testing.T) {
	tests := []struct {
		world int32
		want  int32
	}{
		{0, 0},
		{15, 15},
		{16, 0},
		{-1, 15},
		{-16, 0},
		{-17, 15},
	}

	for _, tt := range tests {
		if got := WorldToLocal(tt.world); got != tt.want {
			t.Errorf("WorldToLocal(%d) = %d, want %d", tt.world, got, tt.want)
		}
	}
}

func TestSectionIndexForY(t *testing.T) {
	tests := []struct {
		worldY int32
		want   int32
	}{
		{WorldMinY, 0},
		{WorldMinY + 15, 0},
		{WorldMinY + 16, 1},
		{0, 4},
		{WorldMaxY - 1, SectionsPerChunk - 1},
		{WorldMaxY, -1},
		{WorldMinY - 1, -1},
	}

	for _, tt := range tests {
		if got := SectionIndexForY(tt.worldY); got != tt.want {
			t.Errorf("SectionIndexForY(%d) = %d, want %d", tt.worldY, got, tt.want)
		}
	}
}

func TestChunkCoordKeyRoundTrip(t *testing.T) {
	coords := []ChunkCoord{
		{0, 0},
		{1, -1},
		{-1, 1},
		{123456, -654321},
		{-2147483648, 2147483647},
	}

	for _, c := range coords {
		if got := ChunkCoordFromKey(c.Key()); got != c {
			t.Errorf("ChunkCoordFromKey(Key(%v)) = %v", c, got)
		}
	}

	// Chaves distintas para coordenadas distintas que se espelham
	if (ChunkCoord{X: 1, Z: 0}).Key() == (ChunkCoord{X: 0, Z: 1}).Key() {
		t.Error("Key deveria distinguir (1,0) de (0,1)")
	}
}

func TestSectionCoordMinWorldY(t *testing.T) {
	if got := (SectionCoord{X: 0, Y: 0, Z: 0}).MinWorldY(); got != WorldMinY {
		t.Errorf("MinWorldY da seção 0 = %d, want %d", got, WorldMinY)
	}
	if got := (SectionCoord{X: 5, Y: 4, Z: -3}).MinWorldY(); got != 0 {
		t.Errorf("MinWorldY da seção 4 = %d, want 0", got)
	}
}
