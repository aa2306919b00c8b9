package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr           string          `yaml:"addr"`
	JWTSecret      string          `yaml:"jwt_secret"`
	APITimeout     time.Duration   `yaml:"timeout"`
	DatabasePath   string          `yaml:"database_path"`
	TokenDuration  time.Duration   `yaml:"token_duration"`
	AllowedOrigins []string        `yaml:"allowed_origins"`
	Explorer       ExplorerConfig  `yaml:"explorer"`
	Platform       PlatformConfig  `yaml:"platform"`
	Extractor      ExtractorConfig `yaml:"extractor"`
}

// ExplorerConfig holds the block-explorer credentials used to verify job
// payment transactions.
type ExplorerConfig struct {
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

type PlatformConfig struct {
	AdminWallet string `yaml:"admin_wallet"`
	FeeEth      string `yaml:"fee_eth"`
}

// ExtractorConfig configures the optional LLM-backed skill extractor. When
// BaseURL is empty the service runs on the built-in vocabulary alone.
type ExtractorConfig struct {
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// LoadConfig builds the config from environment defaults, optionally
// overridden by a YAML file. The JWT secret has no default: the server must
// not start with token signing left to an implicit value.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:          getEnv("GIGLINK_ADDR", ":8080"),
		JWTSecret:     os.Getenv("GIGLINK_JWT_SECRET"),
		APITimeout:    15 * time.Second,
		DatabasePath:  getEnv("GIGLINK_DATABASE_PATH", "giglink.db"),
		TokenDuration: 1 * time.Hour,
		Explorer: ExplorerConfig{
			APIKey:  os.Getenv("GIGLINK_EXPLORER_API_KEY"),
			Timeout: 10 * time.Second,
		},
		Platform: PlatformConfig{
			AdminWallet: os.Getenv("GIGLINK_ADMIN_WALLET"),
			FeeEth:      getEnv("GIGLINK_PLATFORM_FEE_ETH", "0.001"),
		},
		Extractor: ExtractorConfig{
			BaseURL: os.Getenv("GIGLINK_OLLAMA_URL"),
			Model:   getEnv("GIGLINK_OLLAMA_MODEL", "llama3.2:1b"),
			Timeout: 20 * time.Second,
		},
	}
	if origins := os.Getenv("GIGLINK_ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = strings.Split(origins, ",")
	}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is required: set GIGLINK_JWT_SECRET or jwt_secret in the config file")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
