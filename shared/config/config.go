package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config armazena as configurações do VoxelHorizon.
type Config struct {
	// Janela
	WindowWidth  int32  `json:"window_width"`
	WindowHeight int32  `json:"window_height"`
	WindowTitle  string `json:"window_title"`
	Fullscreen   bool   `json:"fullscreen"`
	TargetFPS    int32  `json:"target_fps"`

	// Mundo
	WorldSeed        int64  `json:"world_seed"`
	SavePath         string `json:"save_path"`
	LoadRadius       int32  `json:"load_radius"`
	SimulationRadius int32  `json:"simulation_radius"`

	// Pipelines (workers e tetos de drenagem por ciclo)
	GenWorkers         int `json:"gen_workers"`
	LightWorkers       int `json:"light_workers"`
	MeshWorkers        int `json:"mesh_workers"`
	GenPerTick         int `json:"gen_per_tick"`
	LightPerTick       int `json:"light_per_tick"`
	LoadPerTick        int `json:"load_per_tick"`
	UnloadPerTick      int `json:"unload_per_tick"`
	UploadPerTick      int `json:"upload_per_tick"`
	MeshPerTick        int `json:"mesh_per_tick"`
	MeshQueueLimit     int `json:"mesh_queue_limit"`
	GenQueueLimit      int `json:"gen_queue_limit"`
	LightOpsPerSection int `json:"light_ops_per_section"`

	// Iluminação / brilho
	Gamma         float32 `json:"gamma"`
	MinBrightness float32 `json:"min_brightness"`

	// Visibilidade
	FOV              float32 `json:"fov"`
	FrustumMarginDeg float32 `json:"frustum_margin_deg"`
	UrgentDistChunks int32   `json:"urgent_dist_chunks"`

	// Câmera
	CameraSpeed       float32 `json:"camera_speed"`
	CameraSensitivity float32 `json:"camera_sensitivity"`
	ZoomSpeed         float32 `json:"zoom_speed"`

	// Telemetria
	TelemetryAddr string `json:"telemetry_addr"`

	// Debug
	ShowDebugInfo bool `json:"show_debug_info"`
	DebugChunks   bool `json:"debug_chunks"`
	WireframeMode bool `json:"wireframe_mode"`
}

// DefaultConfig retorna a configuração padrão.
func DefaultConfig() *Config {
	return &Config{
		WindowWidth:  1280,
		WindowHeight: 720,
		WindowTitle:  "VoxelHorizon",
		Fullscreen:   false,
		TargetFPS:    60,

		WorldSeed:        1337,
		SavePath:         "mundo.db",
		LoadRadius:       10,
		SimulationRadius: 4,

		GenWorkers:         4,
		LightWorkers:       2,
		MeshWorkers:        4,
		GenPerTick:         4,
		LightPerTick:       4,
		LoadPerTick:        2,
		UnloadPerTick:      4,
		UploadPerTick:      8,
		MeshPerTick:        512,
		MeshQueueLimit:     4096,
		GenQueueLimit:      2048,
		LightOpsPerSection: 1000,

		Gamma:         0.9,
		MinBrightness: 0.4,

		FOV:              60.0,
		FrustumMarginDeg: 30.0,
		UrgentDistChunks: 6,

		CameraSpeed:       10.0,
		CameraSensitivity: 0.3,
		ZoomSpeed:         5.0,

		TelemetryAddr: "",

		ShowDebugInfo: true,
		DebugChunks:   false,
		WireframeMode: false,
	}
}

// configPath retorna o caminho do arquivo de configuração.
func configPath() string {
	execDir, err := os.Executable()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(filepath.Dir(execDir), "config.json")
}

// Load carrega as configurações de um arquivo JSON.
// Se o arquivo não existir, retorna as configurações padrão.
func Load() *Config {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath())
	if err != nil {
		return cfg
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return DefaultConfig()
	}

	return cfg
}

// Save salva as configurações em um arquivo JSON.
func (c *Config) Save() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(configPath(), data, 0644)
}
