package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/gridwatch/internal/grid"
	"github.com/i474232898/gridwatch/internal/grid/providers"
)

const configFileEnv = "CONFIG_FILE"

var validate = validator.New()

type AppConfig struct {
	EIAAPIKey  string `yaml:"eia_api_key"`
	EIABaseURL string `yaml:"eia_base_url" validate:"required,url"`
	Respondent string `yaml:"eia_respondent" validate:"required"`
	PageLength int    `yaml:"eia_page_length" validate:"gte=1,lte=5000"`

	// HTTPTimeout bounds each upstream request.
	HTTPTimeout time.Duration `yaml:"http_timeout" validate:"gt=0"`

	// FetchInterval controls how often the scheduler ingests.
	FetchInterval time.Duration `yaml:"fetch_interval" validate:"gt=0"`
	FetchOnStart  bool          `yaml:"fetch_on_start"`

	DatabasePath string `yaml:"database_path" validate:"required"`

	// Origins allowed for cross-origin browser access.
	AllowOrigins []string `yaml:"cors_allow_origins" validate:"min=1,dive,required"`

	Port     string `yaml:"port" validate:"required,numeric"`
	LogLevel string `yaml:"log_level"`
}

func defaults() *AppConfig {
	return &AppConfig{
		EIABaseURL:    providers.DefaultEIABaseURL,
		Respondent:    "CISO",
		PageLength:    24,
		HTTPTimeout:   30 * time.Second,
		FetchInterval: time.Hour,
		FetchOnStart:  true,
		DatabasePath:  "database.db",
		AllowOrigins:  []string{"http://localhost:3000"},
		Port:          "8000",
		LogLevel:      "info",
	}
}

// Load reads configuration from an optional YAML file (CONFIG_FILE) and the
// environment, environment winning. A missing EIA_API_KEY is an error.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := defaults()

	if path := os.Getenv(configFileEnv); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.EIAAPIKey) == "" {
		return nil, fmt.Errorf("%w: set EIA_API_KEY", grid.ErrMissingAPIKey)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func loadFile(path string, cfg *AppConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: decode yaml: %w", err)
	}
	return nil
}

func applyEnv(cfg *AppConfig) error {
	cfg.EIAAPIKey = getenvDefault("EIA_API_KEY", cfg.EIAAPIKey)
	cfg.EIABaseURL = getenvDefault("EIA_BASE_URL", cfg.EIABaseURL)
	cfg.Respondent = getenvDefault("EIA_RESPONDENT", cfg.Respondent)
	cfg.DatabasePath = getenvDefault("DATABASE_PATH", cfg.DatabasePath)
	cfg.Port = getenvDefault("PORT", cfg.Port)
	cfg.LogLevel = getenvDefault("LOG_LEVEL", cfg.LogLevel)

	var err error
	if cfg.PageLength, err = getenvInt("EIA_PAGE_LENGTH", cfg.PageLength); err != nil {
		return err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", cfg.HTTPTimeout); err != nil {
		return err
	}
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", cfg.FetchInterval); err != nil {
		return err
	}

	if v := os.Getenv("FETCH_ON_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid FETCH_ON_START: %w", err)
		}
		cfg.FetchOnStart = b
	}

	if v := os.Getenv("CORS_ALLOW_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.AllowOrigins = origins
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
