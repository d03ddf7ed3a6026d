package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// UploadPath is where submitted recordings are stored until their
	// job finishes (default "uploads")
	UploadPath string `yaml:"upload_path"`

	// LogLevel controls logging verbosity: debug, info, warn, error
	LogLevel string `yaml:"log_level"`

	// DefaultLanguage is the recognition language applied when a
	// submission carries no hint (default "en")
	DefaultLanguage string `yaml:"default_language"`

	// Transcriber selects the speech-to-text backend
	// Options: "whisper" (local whisper.cpp), "openai" (hosted API)
	Transcriber string `yaml:"transcriber"`

	// WhisperPath is the path to the whisper.cpp binary (default: "whisper-cli")
	WhisperPath string `yaml:"whisper_path"`

	// WhisperModel is the path to the whisper model file
	WhisperModel string `yaml:"whisper_model"`

	// FFmpegPath is the path to the ffmpeg binary used for audio
	// normalization (default: "ffmpeg")
	FFmpegPath string `yaml:"ffmpeg_path"`

	// OpenAIModel is the hosted transcription model name
	// (default: "whisper-1")
	OpenAIModel string `yaml:"openai_model"`

	// MaxUploadMB caps the size of a submitted recording (default 512)
	MaxUploadMB int64 `yaml:"max_upload_mb"`

	// ShutdownGraceSecs is how long shutdown waits for in-flight jobs
	// (default 30)
	ShutdownGraceSecs int `yaml:"shutdown_grace_secs"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		UploadPath:        "uploads",
		LogLevel:          "info",
		DefaultLanguage:   "en",
		Transcriber:       "whisper",
		WhisperPath:       "whisper-cli",
		WhisperModel:      "models/ggml-base.bin",
		FFmpegPath:        "ffmpeg",
		OpenAIModel:       "whisper-1",
		MaxUploadMB:       512,
		ShutdownGraceSecs: 30,
	}
}

// Load reads config from a YAML file, applying defaults for missing values
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file - use defaults
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// Apply defaults for empty values
	if cfg.UploadPath == "" {
		cfg.UploadPath = "uploads"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = "en"
	}
	if cfg.Transcriber == "" {
		cfg.Transcriber = "whisper"
	}
	if cfg.WhisperPath == "" {
		cfg.WhisperPath = "whisper-cli"
	}
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "whisper-1"
	}
	if cfg.MaxUploadMB < 1 {
		cfg.MaxUploadMB = 512
	}
	if cfg.ShutdownGraceSecs < 1 {
		cfg.ShutdownGraceSecs = 30
	}

	return cfg, nil
}
