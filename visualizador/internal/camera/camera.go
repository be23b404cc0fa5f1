// Package camera implementa a câmera livre do visualizador e os testes de
// visibilidade compartilhados entre priorização de mesh e desenho.
package camera

import (
	"math"

	"VoxelHorizon/shared/util"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// Controller gerencia uma câmera livre em primeira pessoa: WASD no plano,
// espaço/shift na vertical, olhar com o botão direito do mouse e
// velocidade ajustada pela roda.
type Controller struct {
	// Estado interno do Raylib
	RLCamera rl.Camera3D

	Position mgl32.Vec3
	Yaw      float32 // radianos, rotação em torno de Y
	Pitch    float32 // radianos, elevação

	MoveSpeed   float32
	Sensitivity float32
	SpeedStep   float32

	// Alvos para interpolação suave
	targetPos    mgl32.Vec3
	SmoothFactor float32
}

// New cria o controlador na posição inicial dada.
func New(start mgl32.Vec3, moveSpeed, sensitivity, speedStep float32) *Controller {
	c := &Controller{
		Position:     start,
		targetPos:    start,
		Yaw:          0,
		Pitch:        -0.3,
		MoveSpeed:    moveSpeed,
		Sensitivity:  sensitivity,
		SpeedStep:    speedStep,
		SmoothFactor: 0.25,
	}
	c.RLCamera = rl.Camera3D{
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       60.0,
		Projection: rl.CameraPerspective,
	}
	c.apply()
	return c
}

// Forward retorna o vetor frontal normalizado.
func (c *Controller) Forward() mgl32.Vec3 {
	cosP := float32(math.Cos(float64(c.Pitch)))
	return mgl32.Vec3{
		float32(math.Sin(float64(c.Yaw))) * cosP,
		float32(math.Sin(float64(c.Pitch))),
		float32(math.Cos(float64(c.Yaw))) * cosP,
	}.Normalize()
}

// ChunkCoord retorna a coordenada do chunk sob a câmera.
func (c *Controller) ChunkCoord() util.ChunkCoord {
	return util.WorldToChunk(int32(math.Floor(float64(c.Position.X()))), int32(math.Floor(float64(c.Position.Z()))))
}

// HandleInput processa entrada do usuário. Retorna true se houve
// movimento ou rotação.
func (c *Controller) HandleInput(dt float32) bool {
	moved := false

	// Velocidade com a roda do mouse
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		c.MoveSpeed += wheel * c.SpeedStep
		if c.MoveSpeed < 2 {
			c.MoveSpeed = 2
		}
		if c.MoveSpeed > 200 {
			c.MoveSpeed = 200
		}
	}

	// Olhar com botão direito
	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		delta := rl.GetMouseDelta()
		if delta.X != 0 || delta.Y != 0 {
			moved = true
		}
		c.Yaw -= delta.X * c.Sensitivity * 0.01
		c.Pitch -= delta.Y * c.Sensitivity * 0.01

		// Clamp na elevação para não virar de ponta cabeça
		limit := float32(89.0 * rl.Deg2rad)
		c.Pitch = util.Clamp(c.Pitch, -limit, limit)
	}

	forward := c.Forward()
	flat := mgl32.Vec3{forward.X(), 0, forward.Z()}
	if flat.Len() > 0 {
		flat = flat.Normalize()
	}
	right := flat.Cross(mgl32.Vec3{0, 1, 0}).Normalize()

	move := mgl32.Vec3{}
	if rl.IsKeyDown(rl.KeyW) {
		move = move.Add(flat)
	}
	if rl.IsKeyDown(rl.KeyS) {
		move = move.Sub(flat)
	}
	if rl.IsKeyDown(rl.KeyD) {
		move = move.Sub(right)
	}
	if rl.IsKeyDown(rl.KeyA) {
		move = move.Add(right)
	}
	if rl.IsKeyDown(rl.KeySpace) {
		move = move.Add(mgl32.Vec3{0, 1, 0})
	}
	if rl.IsKeyDown(rl.KeyLeftShift) {
		move = move.Sub(mgl32.Vec3{0, 1, 0})
	}

	if move.Len() > 0 {
		c.targetPos = c.targetPos.Add(move.Normalize().Mul(c.MoveSpeed * dt))
		moved = true
	}

	return moved
}

// Update interpola a posição em direção ao alvo e atualiza a câmera do
// Raylib. Deve ser chamado a cada frame.
func (c *Controller) Update(dt float32) {
	factor := c.SmoothFactor * 60.0 * dt
	if factor > 1.0 {
		factor = 1.0
	}
	c.Position = c.Position.Add(c.targetPos.Sub(c.Position).Mul(factor))
	c.apply()
}

// apply recalcula posição e alvo da câmera do Raylib.
func (c *Controller) apply() {
	forward := c.Forward()
	target := c.Position.Add(forward)

	c.RLCamera.Position = rl.Vector3{X: c.Position.X(), Y: c.Position.Y(), Z: c.Position.Z()}
	c.RLCamera.Target = rl.Vector3{X: target.X(), Y: target.Y(), Z: target.Z()}
}

// Visibility monta o teste de culling do frame atual.
func (c *Controller) Visibility(fovDeg, marginDeg, maxDist float32) Visibility {
	return Visibility{
		Position:  c.Position,
		Forward:   c.Forward(),
		FOVDeg:    fovDeg,
		MarginDeg: marginDeg,
		MaxDist:   maxDist,
	}
}
