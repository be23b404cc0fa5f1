package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Visibility é o teste de culling compartilhado entre a priorização de
// meshes (o que construir primeiro) e o desenho (o que pular). É
// deliberadamente conservador: na dúvida, considera visível.
type Visibility struct {
	Position  mgl32.Vec3
	Forward   mgl32.Vec3 // normalizado
	FOVDeg    float32
	MarginDeg float32 // folga além do FOV
	MaxDist   float32 // raio de desenho em unidades de mundo
}

// frustumTolerance relaxa o teste angular para nunca cortar geometria
// visível por erro de arredondamento.
const frustumTolerance = 0.1

// LikelyVisible é a estimativa rápida usada para urgência de mesh: produto
// escalar do deslocamento com o vetor frontal, com folga do raio da
// esfera envolvente. Nunca dá falso negativo para algo à frente.
func (v Visibility) LikelyVisible(center mgl32.Vec3, radius float32) bool {
	disp := center.Sub(v.Position)
	return disp.Dot(v.Forward) >= -radius
}

// InFrustum testa a esfera envolvente contra o cone de visão: distância
// máxima, depois ângulo contra FOV/2 + margem + ângulo aparente da
// esfera. Esferas coladas na câmera são sempre visíveis.
func (v Visibility) InFrustum(center mgl32.Vec3, radius float32) bool {
	disp := center.Sub(v.Position)
	dist := disp.Len()

	if v.MaxDist > 0 && dist-radius > v.MaxDist {
		return false
	}
	if dist <= radius*2 {
		return true
	}

	cos := disp.Mul(1 / dist).Dot(v.Forward)
	if cos > 1 {
		cos = 1
	}
	if cos < -1 {
		cos = -1
	}
	angle := float32(math.Acos(float64(cos)))

	ratio := radius / dist
	if ratio > 1 {
		ratio = 1
	}
	sphereMargin := float32(math.Asin(float64(ratio)))

	limit := mgl32.DegToRad(v.FOVDeg/2+v.MarginDeg) + sphereMargin + frustumTolerance
	return angle <= limit
}
