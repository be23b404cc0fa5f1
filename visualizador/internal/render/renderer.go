// Package render faz o upload de geometria para a GPU e desenha o mundo
// em três passes (sólido, translúcido e líquido). Todo o trabalho de GPU
// acontece na thread de renderização.
package render

/*
#include <stdlib.h>
*/
import "C"

import (
	"log"
	"sync"
	"unsafe"

	"VoxelHorizon/shared/util"
	"VoxelHorizon/shared/world"
	"VoxelHorizon/visualizador/internal/camera"
	"VoxelHorizon/visualizador/internal/meshing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// purgePerFrame limita quantas seções são descarregadas da GPU por frame
// para evitar stutter.
const purgePerFrame = 8

type Renderer struct {
	mu     sync.RWMutex
	Models map[util.SectionCoord]*SectionModel

	world *world.World

	// Fila de seções aguardando descarga da GPU
	purgeQueue []util.SectionCoord

	// Multiplicador de luz do dia aplicado no desenho, nunca nos dados
	daylight float32

	// Contadores do último frame
	drawnSections  int
	culledSections int
	gpuBytes       int64
}

func NewRenderer(w *world.World) *Renderer {
	return &Renderer{
		Models:   make(map[util.SectionCoord]*SectionModel),
		world:    w,
		daylight: 1.0,
	}
}

// SetDaylight define o multiplicador de luz do dia em [0,1].
func (r *Renderer) SetDaylight(mult float32) {
	r.daylight = util.Clamp(mult, 0, 1)
}

func (r *Renderer) Daylight() float32 { return r.daylight }

// DrainResults consome até budget resultados de meshing e sobe cada um
// para a GPU. Retorna quantos uploads foram feitos.
func (r *Renderer) DrainResults(results <-chan meshing.Result, budget int) int {
	uploaded := 0
	for uploaded < budget {
		select {
		case res := <-results:
			r.Upload(res)
			uploaded++
		default:
			return uploaded
		}
	}
	return uploaded
}

// Upload substitui o modelo de uma seção pelo resultado recém construído.
// O modelo antigo só é liberado depois que o novo está pronto, então a
// seção nunca some da tela durante um rebuild.
func (r *Renderer) Upload(res meshing.Result) {
	if !rl.IsWindowReady() {
		return
	}

	// Resultado que chegou depois do chunk ser evictado: sem dono, o
	// modelo nunca seria descarregado. Descarta sem subir nada.
	if !r.ownsSection(res.Coord) {
		return
	}

	sm := &SectionModel{Coord: res.Coord}
	origin := res.Coord
	half := float32(util.SectionSize) / 2
	sm.Center = [3]float32{
		float32(origin.X*util.SectionSize) + half,
		float32(origin.MinWorldY()) + half,
		float32(origin.Z*util.SectionSize) + half,
	}
	// Raio da esfera que envolve o cubo 16x16x16
	sm.Radius = half * 1.7320508

	if !res.Solid.IsEmpty() {
		sm.Solid = r.modelFromGeometry(res.Solid, &sm.GPUBytes)
		sm.HasSolid = true
	}
	if !res.Liquid.IsEmpty() {
		sm.Liquid = r.modelFromGeometry(res.Liquid, &sm.GPUBytes)
		sm.HasLiquid = true
	}
	if !res.Translucent.IsEmpty() {
		sm.Translucent = r.modelFromGeometry(res.Translucent, &sm.GPUBytes)
		sm.HasTranslucent = true
	}

	r.mu.Lock()
	old := r.Models[res.Coord]
	if sm.HasSolid || sm.HasLiquid || sm.HasTranslucent {
		r.Models[res.Coord] = sm
	} else {
		delete(r.Models, res.Coord)
	}
	r.mu.Unlock()

	if old != nil {
		old.unload()
	}

	// O frame atual já reflete este build. Edições que chegarem depois
	// marcam a seção de novo.
	if c := r.world.Chunk(origin.Chunk()); c != nil {
		if sec := c.Section(origin.Y); sec != nil {
			sec.ClearDirty()
		}
	}
}

// ownsSection reporta se a coluna da seção ainda reside no mundo. Um
// resultado de mesh órfão (drenado após a eviction) não tem quem o
// descarregue.
func (r *Renderer) ownsSection(coord util.SectionCoord) bool {
	return r.world.Chunk(coord.Chunk()) != nil
}

func (r *Renderer) modelFromGeometry(data meshing.GeometryData, bytes *int64) rl.Model {
	mesh := r.geometryToMesh(data)
	rl.UploadMesh(&mesh, false)
	r.freeMeshRAM(&mesh)
	*bytes += int64(len(data.Vertices)+len(data.Normals)+len(data.UVs))*4 +
		int64(len(data.Colors)) + int64(len(data.Indices))*2
	return rl.LoadModelFromMesh(mesh)
}

func (r *Renderer) geometryToMesh(data meshing.GeometryData) rl.Mesh {
	var mesh rl.Mesh
	mesh.VertexCount = int32(len(data.Vertices) / 3)
	mesh.TriangleCount = int32(len(data.Indices) / 3)

	if len(data.Vertices) > 0 {
		mesh.Vertices = (*float32)(r.copyToC(unsafe.Pointer(&data.Vertices[0]), len(data.Vertices)*4))
	}
	if len(data.Normals) > 0 {
		mesh.Normals = (*float32)(r.copyToC(unsafe.Pointer(&data.Normals[0]), len(data.Normals)*4))
	}
	if len(data.Colors) > 0 {
		mesh.Colors = (*uint8)(r.copyToC(unsafe.Pointer(&data.Colors[0]), len(data.Colors)))
	}
	if len(data.UVs) > 0 {
		mesh.Texcoords = (*float32)(r.copyToC(unsafe.Pointer(&data.UVs[0]), len(data.UVs)*4))
	}
	if len(data.Indices) > 0 {
		mesh.Indices = (*uint16)(r.copyToC(unsafe.Pointer(&data.Indices[0]), len(data.Indices)*2))
	}
	return mesh
}

func (r *Renderer) copyToC(data unsafe.Pointer, size int) unsafe.Pointer {
	if size <= 0 || data == nil {
		return nil
	}
	ptr := C.malloc(C.size_t(size))
	if ptr == nil {
		return nil
	}
	cSlice := unsafe.Slice((*byte)(ptr), size)
	goSlice := unsafe.Slice((*byte)(data), size)
	copy(cSlice, goSlice)
	return ptr
}

// freeMeshRAM libera os buffers em C depois do upload para a GPU.
func (r *Renderer) freeMeshRAM(mesh *rl.Mesh) {
	if mesh.Vertices != nil {
		C.free(unsafe.Pointer(mesh.Vertices))
		mesh.Vertices = nil
	}
	if mesh.Normals != nil {
		C.free(unsafe.Pointer(mesh.Normals))
		mesh.Normals = nil
	}
	if mesh.Colors != nil {
		C.free(unsafe.Pointer(mesh.Colors))
		mesh.Colors = nil
	}
	if mesh.Texcoords != nil {
		C.free(unsafe.Pointer(mesh.Texcoords))
		mesh.Texcoords = nil
	}
	if mesh.Indices != nil {
		C.free(unsafe.Pointer(mesh.Indices))
		mesh.Indices = nil
	}
}

// Draw desenha as seções visíveis em três passes. Sólidos primeiro,
// depois translúcidos e líquidos com blending.
func (r *Renderer) Draw(vis camera.Visibility) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tintVal := uint8(255 * r.daylight)
	tint := rl.Color{R: tintVal, G: tintVal, B: tintVal, A: 255}

	drawn, culled := 0, 0
	var gpu int64

	visible := make([]*SectionModel, 0, len(r.Models))
	for _, sm := range r.Models {
		gpu += sm.GPUBytes
		center := mgl32.Vec3{sm.Center[0], sm.Center[1], sm.Center[2]}
		if !vis.InFrustum(center, sm.Radius) {
			culled++
			continue
		}
		visible = append(visible, sm)
		drawn++
	}

	for _, sm := range visible {
		if sm.HasSolid {
			rl.DrawModel(sm.Solid, rl.Vector3{}, 1.0, tint)
		}
	}

	rl.BeginBlendMode(rl.BlendAlpha)
	for _, sm := range visible {
		if sm.HasTranslucent {
			rl.DrawModel(sm.Translucent, rl.Vector3{}, 1.0, tint)
		}
	}
	for _, sm := range visible {
		if sm.HasLiquid {
			rl.DrawModel(sm.Liquid, rl.Vector3{}, 1.0, tint)
		}
	}
	rl.EndBlendMode()

	r.drawnSections = drawn
	r.culledSections = culled
	r.gpuBytes = gpu
}

// PurgeChunk agenda a descarga das 16 seções de um chunk.
func (r *Renderer) PurgeChunk(coord util.ChunkCoord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for y := int32(0); y < util.SectionsPerChunk; y++ {
		sc := util.SectionCoord{X: coord.X, Y: y, Z: coord.Z}
		if _, ok := r.Models[sc]; ok {
			r.purgeQueue = append(r.purgeQueue, sc)
		}
	}
}

// ProcessPurge descarrega até purgePerFrame seções agendadas.
func (r *Renderer) ProcessPurge() {
	r.mu.Lock()
	defer r.mu.Unlock()
	limit := purgePerFrame
	if len(r.purgeQueue) < limit {
		limit = len(r.purgeQueue)
	}
	for i := 0; i < limit; i++ {
		coord := r.purgeQueue[0]
		r.purgeQueue = r.purgeQueue[1:]
		if sm, ok := r.Models[coord]; ok {
			sm.unload()
			delete(r.Models, coord)
		}
	}
}

// Unload libera todos os modelos. Chamar só no encerramento.
func (r *Renderer) Unload() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sm := range r.Models {
		sm.unload()
	}
	r.Models = make(map[util.SectionCoord]*SectionModel)
	log.Printf("[Renderer] modelos de GPU liberados")
}

// Stats do último frame, para o HUD e a telemetria.
func (r *Renderer) Stats() (models, drawn, culled int, gpuBytes int64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Models), r.drawnSections, r.culledSections, r.gpuBytes
}
