package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for AskWeb
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Scraper  ScraperConfig  `mapstructure:"scraper"`
	Search   SearchConfig   `mapstructure:"search"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Database DatabaseConfig `mapstructure:"database"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// LLMConfig holds LLM endpoint configuration
type LLMConfig struct {
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	ModelsURL   string        `mapstructure:"models_url"`
	APIKey      string        `mapstructure:"api_key"`
	VerifySSL   bool          `mapstructure:"verify_ssl"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float32       `mapstructure:"temperature"`
	TopP        float32       `mapstructure:"top_p"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// ScraperConfig holds the headless-browser scraping service configuration
type ScraperConfig struct {
	URL             string        `mapstructure:"url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	FallbackTimeout time.Duration `mapstructure:"fallback_timeout"`
}

// SearchConfig holds live-data backend configuration.
// Provider selects which backend answers live-data queries:
// "playwright" scrapes category-specific sites, "serpapi" calls the search API.
type SearchConfig struct {
	Provider string        `mapstructure:"provider"`
	Endpoint string        `mapstructure:"endpoint"`
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ChatConfig holds response assembly configuration
type ChatConfig struct {
	ResponseTimeout   time.Duration `mapstructure:"response_timeout"`
	MinResponseLength int           `mapstructure:"min_response_length"`
}

// DatabaseConfig holds chat log database configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file if specified
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("ASKWEB")
	v.AutomaticEnv()

	// Legacy environment names the existing deployment already exports
	bindLegacyEnv(v)

	// Read config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func bindLegacyEnv(v *viper.Viper) {
	v.BindEnv("llm.model", "VLLM_MODEL")
	v.BindEnv("llm.base_url", "VLLM_BASE_URL")
	v.BindEnv("llm.models_url", "VLLM_MODELS_URL")
	v.BindEnv("llm.api_key", "VLLM_API_KEY")
	v.BindEnv("llm.verify_ssl", "VLLM_VERIFY_SSL")
	v.BindEnv("scraper.url", "PLAYWRIGHT_SERVICE_URL")
	v.BindEnv("search.api_key", "SERPAPI_KEY")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5001)

	v.SetDefault("llm.model", "Qwen/Qwen3-30B-A3B-FP8")
	v.SetDefault("llm.base_url", "https://vllm.rangeresources.com/v1/")
	v.SetDefault("llm.models_url", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.verify_ssl", false)
	v.SetDefault("llm.max_tokens", 2048)
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.top_p", 0.8)
	v.SetDefault("llm.timeout", 60*time.Second)

	v.SetDefault("scraper.url", "http://playwright-service:3000")
	v.SetDefault("scraper.timeout", 30*time.Second)
	v.SetDefault("scraper.fallback_timeout", 10*time.Second)

	v.SetDefault("search.provider", "playwright")
	v.SetDefault("search.endpoint", "https://serpapi.com/search")
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.timeout", 15*time.Second)

	v.SetDefault("chat.response_timeout", 120*time.Second)
	v.SetDefault("chat.min_response_length", 20)

	v.SetDefault("database.path", "./data/askweb.db")
}

// Address returns the server address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ResolveModelsURL returns the models-listing endpoint, deriving it from
// the base URL when not set explicitly.
func (c *LLMConfig) ResolveModelsURL() string {
	if c.ModelsURL != "" {
		return c.ModelsURL
	}
	base := c.BaseURL
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base + "/models"
}
