package config

import (
	"os"
	"strconv"
)

// Config holds all Menagerie configuration.
type Config struct {
	Data    DataConfig
	Train   TrainConfig
	Infer   InferConfig
	Runtime RuntimeConfig
	Log     LogConfig
}

// DataConfig locates the training dataset.
type DataConfig struct {
	Root string // directory with one subdirectory per class label
}

// TrainConfig holds training loop settings.
type TrainConfig struct {
	ArtifactsDir    string // pre-built training/eval/optimizer graphs + checkpoint
	Epochs          int
	SamplesPerClass int
	SaveCheckpoint  bool // save updated checkpoint state after training
}

// InferConfig holds inference artifact settings.
type InferConfig struct {
	ArtifactsDir string // exported model + held-out test images
	OutputName   string // graph output to keep when exporting for inference
}

// RuntimeConfig holds ONNX Runtime settings.
type RuntimeConfig struct {
	LibraryPath string // shared library path; empty means the platform default
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string // "debug", "info", "warn", "error"
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Data: DataConfig{
			Root: getenv("MENAGERIE_DATA_ROOT", "data/images"),
		},
		Train: TrainConfig{
			ArtifactsDir:    getenv("MENAGERIE_TRAINING_ARTIFACTS", "training_artifacts"),
			Epochs:          getenvInt("MENAGERIE_EPOCHS", 5),
			SamplesPerClass: getenvInt("MENAGERIE_SAMPLES_PER_CLASS", 20),
			SaveCheckpoint:  getenvBool("MENAGERIE_SAVE_CHECKPOINT", false),
		},
		Infer: InferConfig{
			ArtifactsDir: getenv("MENAGERIE_INFERENCE_ARTIFACTS", "inference_artifacts"),
			OutputName:   getenv("MENAGERIE_OUTPUT_NAME", "output"),
		},
		Runtime: RuntimeConfig{
			LibraryPath: os.Getenv("MENAGERIE_ORT_LIB"),
		},
		Log: LogConfig{
			Level: getenv("MENAGERIE_LOG_LEVEL", "info"),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
