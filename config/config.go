package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"sceneforge/log"
)

type AppConfig struct {
	Proxy     string  `toml:"proxy"`
	WorkDir   string  `toml:"work_dir"`
	TasksDir  string  `toml:"tasks_dir"`
	MaxSource float64 `toml:"max_source_duration"` // seconds, sources longer than this are rejected
}

// SegmentConfig controls scene boundary detection and segmentation.
type SegmentConfig struct {
	DetectThreshold  float64 `toml:"detect_threshold"`
	MinSceneDuration float64 `toml:"min_scene_duration"`
	MaxUnitDuration  float64 `toml:"max_unit_duration"`
}

// ChunkConfig controls how over-long scenes are split into windows.
type ChunkConfig struct {
	ChunkLength float64 `toml:"chunk_length"`
	Overlap     float64 `toml:"overlap"`
	MinTail     float64 `toml:"min_tail"`
}

// CombineConfig controls the short-scene packer.
type CombineConfig struct {
	CapacityCap float64 `toml:"capacity_cap"`
}

// AnalysisConfig configures the vision/LLM collaborator.
type AnalysisConfig struct {
	BaseUrl string `toml:"base_url"`
	ApiKey  string `toml:"api_key"`
	Model   string `toml:"model"`
}

// TranscribeConfig configures the transcript collaborator.
type TranscribeConfig struct {
	BaseUrl string `toml:"base_url"`
	ApiKey  string `toml:"api_key"`
	Model   string `toml:"model"`
}

// GenerateConfig configures the remote clip generation collaborator.
type GenerateConfig struct {
	BaseUrl         string `toml:"base_url"`
	ApiKey          string `toml:"api_key"`
	Resolution      string `toml:"resolution"`
	Quality         string `toml:"quality"`
	PollIntervalSec int    `toml:"poll_interval_sec"`
	MaxWaitSec      int    `toml:"max_wait_sec"`
	MaxAttempts     int    `toml:"max_attempts"`
	PauseSec        int    `toml:"pause_sec"`
	// The API returns fixed-length clips regardless of the requested duration.
	FixedClipDuration float64 `toml:"fixed_clip_duration"`
	CostPerSecondUSD  float64 `toml:"cost_per_second_usd"`
	PromptMaxLen      int     `toml:"prompt_max_len"`
}

// StitchConfig controls final assembly extras.
type StitchConfig struct {
	IntroPath string `toml:"intro_path"`
	OutroPath string `toml:"outro_path"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type QueueConfig struct {
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Concurrency   int    `toml:"concurrency"`
}

type Config struct {
	App        AppConfig        `toml:"app"`
	Segment    SegmentConfig    `toml:"segment"`
	Chunk      ChunkConfig      `toml:"chunk"`
	Combine    CombineConfig    `toml:"combine"`
	Analysis   AnalysisConfig   `toml:"analysis"`
	Transcribe TranscribeConfig `toml:"transcribe"`
	Generate   GenerateConfig   `toml:"generate"`
	Stitch     StitchConfig     `toml:"stitch"`
	Server     ServerConfig     `toml:"server"`
	Queue      QueueConfig      `toml:"queue"`
}

var Conf Config

const configEnv = "SCENEFORGE_CONFIG"

// DefaultConfig returns the built-in defaults. The temporal constants mirror
// the generation API's hard 8s ceiling.
func DefaultConfig() Config {
	return Config{
		App: AppConfig{
			TasksDir:  "./tasks",
			MaxSource: 120,
		},
		Segment: SegmentConfig{
			DetectThreshold:  0.4,
			MinSceneDuration: 0.5,
			MaxUnitDuration:  8.0,
		},
		Chunk: ChunkConfig{
			ChunkLength: 7.0,
			Overlap:     1.0,
			MinTail:     2.0,
		},
		Combine: CombineConfig{
			CapacityCap: 7.5,
		},
		Analysis: AnalysisConfig{
			Model: "gpt-4o",
		},
		Transcribe: TranscribeConfig{
			Model: "whisper-1",
		},
		Generate: GenerateConfig{
			BaseUrl:           "https://fal.run/fal-ai/veo3",
			Resolution:        "720p",
			Quality:           "medium",
			PollIntervalSec:   5,
			MaxWaitSec:        300,
			MaxAttempts:       3,
			PauseSec:          2,
			FixedClipDuration: 8.0,
			CostPerSecondUSD:  0.10,
			PromptMaxLen:      1000,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8888,
		},
		Queue: QueueConfig{
			Concurrency: 3,
		},
	}
}

// ResolveConfigPath returns the config file location, honoring the
// SCENEFORGE_CONFIG env override.
func ResolveConfigPath() string {
	if p := os.Getenv(configEnv); p != "" {
		return p
	}
	return filepath.Join("config", "config.toml")
}

// LoadConfig loads the config file into Conf, creating a default file when
// none exists. Returns false only on unrecoverable errors.
func LoadConfig() bool {
	created, err := LoadOrCreateConfig()
	if err != nil {
		log.GetLogger().Error("failed to load config", zap.Error(err))
		return false
	}
	if created {
		log.GetLogger().Info("generated default config file", zap.String("path", ResolveConfigPath()))
	}
	applyEnvOverrides()
	return true
}

// LoadOrCreateConfig reads the config file, writing defaults first if it is
// missing. The bool result reports whether a new file was created.
func LoadOrCreateConfig() (bool, error) {
	path := ResolveConfigPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		Conf = DefaultConfig()
		if err := SaveConfig(); err != nil {
			return false, err
		}
		return true, nil
	}

	Conf = DefaultConfig()
	if _, err := toml.DecodeFile(path, &Conf); err != nil {
		return false, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	return false, nil
}

// SaveConfig writes Conf to the resolved config path, creating parent
// directories as needed.
func SaveConfig() error {
	path := ResolveConfigPath()
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(Conf)
}

// applyEnvOverrides lets API keys come from the environment so they stay out
// of the config file.
func applyEnvOverrides() {
	if v := os.Getenv("FAL_API_KEY"); v != "" {
		Conf.Generate.ApiKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		if Conf.Analysis.ApiKey == "" {
			Conf.Analysis.ApiKey = v
		}
		if Conf.Transcribe.ApiKey == "" {
			Conf.Transcribe.ApiKey = v
		}
	}
}

// CheckConfig validates the temporal constants the pipeline math depends on.
func CheckConfig() error {
	c := Conf
	if c.Segment.MinSceneDuration <= 0 {
		return fmt.Errorf("segment.min_scene_duration must be positive, got %v", c.Segment.MinSceneDuration)
	}
	if c.Segment.MaxUnitDuration <= c.Segment.MinSceneDuration {
		return fmt.Errorf("segment.max_unit_duration (%v) must exceed min_scene_duration (%v)",
			c.Segment.MaxUnitDuration, c.Segment.MinSceneDuration)
	}
	if c.Chunk.Overlap >= c.Chunk.ChunkLength {
		return fmt.Errorf("chunk.overlap (%v) must be less than chunk.chunk_length (%v)",
			c.Chunk.Overlap, c.Chunk.ChunkLength)
	}
	if c.Chunk.ChunkLength > c.Segment.MaxUnitDuration {
		return fmt.Errorf("chunk.chunk_length (%v) must not exceed segment.max_unit_duration (%v)",
			c.Chunk.ChunkLength, c.Segment.MaxUnitDuration)
	}
	if c.Combine.CapacityCap > c.Generate.FixedClipDuration {
		return fmt.Errorf("combine.capacity_cap (%v) must stay under generate.fixed_clip_duration (%v)",
			c.Combine.CapacityCap, c.Generate.FixedClipDuration)
	}
	if c.Generate.PollIntervalSec <= 0 || c.Generate.MaxWaitSec <= 0 {
		return fmt.Errorf("generate poll interval and max wait must be positive")
	}
	if c.Generate.MaxAttempts < 1 {
		return fmt.Errorf("generate.max_attempts must be at least 1")
	}
	return nil
}
