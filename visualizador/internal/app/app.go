// Package app amarra os sistemas do visualizador: mundo, geração,
// iluminação, streaming, meshing, renderização e persistência.
package app

import (
	"log"
	"runtime"
	"time"

	"VoxelHorizon/shared/config"
	"VoxelHorizon/shared/util"
	"VoxelHorizon/shared/world"
	"VoxelHorizon/shared/world/gen"
	"VoxelHorizon/shared/world/light"
	"VoxelHorizon/shared/world/save"
	"VoxelHorizon/shared/world/stream"
	"VoxelHorizon/visualizador/internal/camera"
	"VoxelHorizon/visualizador/internal/meshing"
	"VoxelHorizon/visualizador/internal/render"
	"VoxelHorizon/visualizador/internal/telemetry"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// AppState representa os estados possíveis da aplicação.
type AppState int

const (
	StateLoading AppState = iota // Carga inicial do mundo
	StateViewing                 // Voo livre pelo mundo
	StatePaused                  // Pausado
)

// Duração de um ciclo completo de dia e noite, em segundos.
const dayLengthSec = 600.0

// App é a aplicação principal do VoxelHorizon.
type App struct {
	Config *config.Config
	State  AppState

	Cam *camera.Controller

	world      *world.World
	genSched   *gen.Scheduler
	lightEng   *light.Engine
	loader     *stream.LoadManager
	mesher     *meshing.SectionMesher
	renderer   *render.Renderer
	brightness *light.Brightness
	store      *save.Store
	autosave   *save.Autosave
	telemetry  *telemetry.Server

	worldID string

	frameCount int

	// Bloco sob a mira e a célula vazia em frente a ele
	targetBlock  *[3]int32
	placementPos *[3]int32

	// Estado da tela de carga
	Loading         bool
	LoadingStatus   string
	LoadingProgress float32
}

// New cria uma nova instância da aplicação.
func New(cfg *config.Config) *App {
	return &App{
		Config:        cfg,
		State:         StateLoading,
		Loading:       true,
		LoadingStatus: "Preparando o mundo...",
	}
}

// Run inicia o loop principal da aplicação.
func (a *App) Run() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] Erro fatal recuperado: %v", r)
			panic(r)
		}
	}()

	rl.SetConfigFlags(rl.FlagMsaa4xHint | rl.FlagWindowResizable)
	rl.InitWindow(a.Config.WindowWidth, a.Config.WindowHeight, a.Config.WindowTitle)
	rl.SetTraceLogLevel(rl.LogWarning)

	if a.Config.Fullscreen {
		rl.ToggleFullscreen()
	}

	rl.SetTargetFPS(a.Config.TargetFPS)
	rl.SetExitKey(0)

	log.Println("[VoxelHorizon] Janela inicializada com sucesso")
	log.Printf("[VoxelHorizon] Resolução: %dx%d", a.Config.WindowWidth, a.Config.WindowHeight)

	a.initSystems()

	for !rl.WindowShouldClose() {
		a.update()
		a.draw()
	}

	a.shutdown()
	rl.CloseWindow()
}

// initSystems monta o pipeline completo na ordem de dependência.
func (a *App) initSystems() {
	cfg := a.Config

	// Persistência primeiro: a seed efetiva pode vir do banco
	store, err := save.Open(cfg.SavePath)
	if err != nil {
		log.Printf("[App] AVISO: persistência desativada: %v", err)
	} else {
		a.store = store
	}

	seed := cfg.WorldSeed
	if a.store != nil {
		worldID, effectiveSeed, err := a.store.EnsureMetadata(seed)
		if err != nil {
			log.Printf("[App] AVISO: metadados do mundo indisponíveis: %v", err)
		} else {
			a.worldID = worldID
			seed = effectiveSeed
			log.Printf("[App] Mundo %s (seed %d)", worldID, seed)
		}
	}

	a.world = world.New(seed)
	a.world.SetDebugLog(cfg.DebugChunks)

	workers := func(n int) int {
		if n > 0 {
			return n
		}
		w := runtime.NumCPU() / 2
		if w < 2 {
			w = 2
		}
		return w
	}

	generator := gen.NewGenerator(seed)
	a.genSched = gen.NewScheduler(a.world, generator, workers(cfg.GenWorkers), cfg.GenPerTick, cfg.GenQueueLimit)
	a.genSched.SetDebugLog(cfg.DebugChunks)
	if a.store != nil {
		a.genSched.SetLoader(a.store)
	}

	a.lightEng = light.NewEngine(a.world, workers(cfg.LightWorkers), cfg.LightPerTick, cfg.LightOpsPerSection)
	a.world.SetLightHooks(a.lightEng)

	a.loader = stream.NewLoadManager(a.world, a.genSched, a.lightEng,
		cfg.LoadRadius, cfg.SimulationRadius, cfg.LoadPerTick, cfg.UnloadPerTick, cfg.LightPerTick)
	a.loader.SetDebugLog(cfg.DebugChunks)

	a.brightness = light.NewBrightness(cfg.MinBrightness, cfg.Gamma)
	a.mesher = meshing.NewSectionMesher(a.world, a.brightness, meshing.FlatUVs{},
		workers(cfg.MeshWorkers), cfg.MeshPerTick, cfg.MeshQueueLimit)
	a.loader.SetMeshCanceller(a.mesher)

	a.renderer = render.NewRenderer(a.world)
	a.loader.SetModelReleaser(a.renderer)

	if a.store != nil {
		a.loader.SetSaver(a.store)
		a.autosave = save.NewAutosave(a.store, 4.0, 8)
	}

	a.telemetry = telemetry.NewServer(cfg.TelemetryAddr, time.Second)

	// Câmera começa acima do nível do mar olhando para o horizonte
	start := mgl32.Vec3{8, float32(util.SeaLevel) + 30, 8}
	a.Cam = camera.New(start, cfg.CameraSpeed, cfg.CameraSensitivity, cfg.ZoomSpeed)
	a.Cam.RLCamera.Fovy = cfg.FOV

	log.Printf("[App] Sistemas prontos: gen=%d light=%d mesh=%d workers",
		workers(cfg.GenWorkers), workers(cfg.LightWorkers), workers(cfg.MeshWorkers))
}

// shutdown encerra os pipelines e grava o que estiver pendente.
func (a *App) shutdown() {
	log.Println("[App] Finalizando aplicação...")

	a.mesher.Stop()
	a.lightEng.Stop()
	a.genSched.Stop()

	if a.store != nil {
		if a.autosave != nil {
			a.autosave.Flush(a.world)
		}
		if err := a.store.Close(); err != nil {
			log.Printf("[App] Erro ao fechar persistência: %v", err)
		}
	}

	a.telemetry.Close()
	a.renderer.Unload()

	if err := a.Config.Save(); err != nil {
		log.Printf("[VoxelHorizon] Erro ao salvar configurações: %v", err)
	}
}
