package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port         int           `yaml:"port"`
		ReadTimeout  time.Duration `yaml:"readTimeout"`
		WriteTimeout time.Duration `yaml:"writeTimeout"`
		IdleTimeout  time.Duration `yaml:"idleTimeout"`
	} `yaml:"server"`

	Model struct {
		Provider  string `yaml:"provider"` // gemini | openai
		APIKey    string `yaml:"apiKey"`
		Name      string `yaml:"name"`
		MaxTokens int    `yaml:"maxTokens"`
	} `yaml:"model"`

	Limits struct {
		MaxContentBytes int64 `yaml:"maxContentBytes"`
		MaxTextChars    int   `yaml:"maxTextChars"`
	} `yaml:"limits"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"cors"`

	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`

	Client struct {
		GatewayURL string        `yaml:"gatewayURL"`
		HistoryKey string        `yaml:"historyKey"`
		Storage    StorageConfig `yaml:"storage"`
	} `yaml:"client"`
}

// StorageConfig picks the backend holding the client's history blob.
type StorageConfig struct {
	Driver string `yaml:"driver"` // file | sqlite | mysql | postgres | minio | memory
	Path   string `yaml:"path"`
	DSN    string `yaml:"dsn"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.Server.Port = 8080
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Server.WriteTimeout = 120 * time.Second
	cfg.Server.IdleTimeout = 60 * time.Second
	cfg.Model.Provider = "gemini"
	cfg.Model.MaxTokens = 2048
	cfg.Limits.MaxContentBytes = 20 << 20
	cfg.Limits.MaxTextChars = 15000
	cfg.CORS.AllowedOrigins = []string{"*"}
	cfg.Log.Level = "info"
	cfg.Client.GatewayURL = "http://localhost:8080"
	cfg.Client.HistoryKey = "ai_detector_history"
	cfg.Client.Storage.Driver = "file"
	cfg.Client.Storage.Path = ".ai-detector"
	return &cfg
}

// Load baca file config.yaml di atas default, lalu terapkan environment override.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	// Precedence: an explicit provider keeps its own key; otherwise gemini, then openai.
	gemini := firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY")
	openaiKey := os.Getenv("OPENAI_API_KEY")
	switch strings.ToLower(c.Model.Provider) {
	case "openai":
		if openaiKey != "" {
			c.Model.APIKey = openaiKey
		}
	case "gemini", "":
		if gemini != "" {
			c.Model.Provider = "gemini"
			c.Model.APIKey = gemini
		} else if openaiKey != "" && c.Model.APIKey == "" {
			c.Model.Provider = "openai"
			c.Model.APIKey = openaiKey
		}
	}
	if v := os.Getenv("MODEL_NAME"); v != "" {
		c.Model.Name = v
	}
	if v, err := strconv.Atoi(os.Getenv("PORT")); err == nil && v > 0 {
		c.Server.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("DETECTOR_GATEWAY_URL"); v != "" {
		c.Client.GatewayURL = v
	}
	if v := os.Getenv("DETECTOR_STORAGE_DRIVER"); v != "" {
		c.Client.Storage.Driver = v
	}
	if v := os.Getenv("DETECTOR_STORAGE_DSN"); v != "" {
		c.Client.Storage.DSN = v
	}
	if v := os.Getenv("DETECTOR_STORAGE_PATH"); v != "" {
		c.Client.Storage.Path = v
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
