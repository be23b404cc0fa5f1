package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func testVisibility() Visibility {
	return Visibility{
		Position:  mgl32.Vec3{0, 0, 0},
		Forward:   mgl32.Vec3{0, 0, 1},
		FOVDeg:    60,
		MarginDeg: 30,
		MaxDist:   200,
	}
}

func TestLikelyVisible(t *testing.T) {
	v := testVisibility()

	tests := []struct {
		name   string
		center mgl32.Vec3
		radius float32
		want   bool
	}{
		{"bem na frente", mgl32.Vec3{0, 0, 50}, 14, true},
		{"atrás da câmera", mgl32.Vec3{0, 0, -50}, 14, false},
		{"atrás mas grande o bastante para encostar", mgl32.Vec3{0, 0, -10}, 14, true},
		{"ao lado", mgl32.Vec3{80, 0, 0}, 14, true},
	}

	for _, tt := range tests {
		if got := v.LikelyVisible(tt.center, tt.radius); got != tt.want {
			t.Errorf("%s: LikelyVisible = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestInFrustum(t *testing.T) {
	v := testVisibility()

	tests := []struct {
		name   string
		center mgl32.Vec3
		radius float32
		want   bool
	}{
		{"no eixo da câmera", mgl32.Vec3{0, 0, 100}, 14, true},
		{"dentro do cone", mgl32.Vec3{40, 0, 100}, 14, true},
		{"diretamente atrás", mgl32.Vec3{0, 0, -100}, 14, false},
		{"além do alcance", mgl32.Vec3{0, 0, 500}, 14, false},
		{"muito perto sempre visível", mgl32.Vec3{5, 5, -2}, 14, true},
		{"bem fora do cone", mgl32.Vec3{-150, 0, 20}, 5, false},
	}

	for _, tt := range tests {
		if got := v.InFrustum(tt.center, tt.radius); got != tt.want {
			t.Errorf("%s: InFrustum = %v, want %v", tt.name, got, tt.want)
		}
	}
}

// A margem alarga o cone: um alvo logo fora do FOV nominal ainda passa.
func TestInFrustumMargin(t *testing.T) {
	narrow := testVisibility()
	narrow.MarginDeg = 0

	wide := testVisibility()
	wide.MarginDeg = 45

	// ~53 graus fora do eixo: além do meio-FOV de 30, dentro de 30+45
	center := mgl32.Vec3{80, 0, 60}
	if narrow.InFrustum(center, 1) {
		t.Error("sem margem o alvo deveria estar fora do cone")
	}
	if !wide.InFrustum(center, 1) {
		t.Error("com margem de 45 graus o alvo deveria estar dentro")
	}
}
