package main

import (
	"flag"
	"log"
	"os"
	"runtime"

	"VoxelHorizon/shared/config"
	"VoxelHorizon/visualizador/internal/app"
)

func main() {
	// Raylib/OpenGL exige rodar na thread principal do SO
	runtime.LockOSThread()

	// Flags de linha de comando
	seed := flag.Int64("seed", 0, "Seed do mundo (0 usa o config ou o save)")
	savePath := flag.String("save", "", "Caminho do banco de chunks (padrão: mundo.db)")
	radius := flag.Int("radius", 0, "Raio de carregamento em chunks")
	telemetry := flag.String("telemetry", "", "Endereço da telemetria WebSocket (ex: localhost:9090)")
	fullscreen := flag.Bool("fullscreen", false, "Iniciar em tela cheia")
	debug := flag.Bool("debug", false, "Mostrar informações de debug")
	width := flag.Int("width", 0, "Largura da janela")
	height := flag.Int("height", 0, "Altura da janela")
	flag.Parse()

	// Log em arquivo para diagnóstico pós-morte
	f, err := os.OpenFile("debug_vh.log", os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err == nil {
		log.SetOutput(f)
		log.Println("--- INICIANDO VOXEL HORIZON ---")
	}

	log.SetFlags(log.Ltime | log.Lshortfile)
	log.Println("╔══════════════════════════════════════╗")
	log.Println("║         VoxelHorizon v0.1.0          ║")
	log.Println("║   Mundo voxel infinito em streaming  ║")
	log.Println("╚══════════════════════════════════════╝")

	// Carregar configurações
	cfg := config.Load()

	// Flags de linha de comando sobrescrevem o config salvo
	if *seed != 0 {
		cfg.WorldSeed = *seed
	}
	if *savePath != "" {
		cfg.SavePath = *savePath
	}
	if *radius > 0 {
		cfg.LoadRadius = int32(*radius)
	}
	if *telemetry != "" {
		cfg.TelemetryAddr = *telemetry
	}
	if *fullscreen {
		cfg.Fullscreen = true
	}
	if *debug {
		cfg.ShowDebugInfo = true
		cfg.DebugChunks = true
	}
	if *width > 0 {
		cfg.WindowWidth = int32(*width)
	}
	if *height > 0 {
		cfg.WindowHeight = int32(*height)
	}

	application := app.New(cfg)
	application.Run()
}
