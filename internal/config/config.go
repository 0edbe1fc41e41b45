package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"funnelboard/domain/funnel"
	"funnelboard/internal/errors"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig `validate:"required"`
	Data      DataConfig
	Render    RenderConfig `validate:"required"`
	Profiling ProfilingConfig
}

// DatabaseConfig holds database connection settings. An empty URL disables
// the Postgres funnel source.
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// Enabled reports whether a database connection was configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port         string `validate:"required"`
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DataConfig holds the optional funnel sources beyond the database
type DataConfig struct {
	ExcelFile       string
	RemoteURL       string
	RemoteFunnels   []string
	RemoteTimeout   time.Duration
	LoadConcurrency int
}

// RenderConfig holds pyramid drawing settings
type RenderConfig struct {
	Unit     string
	Padding  float64
	Palette  []string
	CacheTTL time.Duration
}

// Layout converts the render settings into a layout config
func (r RenderConfig) Layout() funnel.LayoutConfig {
	cfg := funnel.DefaultLayoutConfig()
	cfg.PaddingX = r.Padding
	cfg.PaddingY = r.Padding
	if len(r.Palette) > 0 {
		cfg.Palette = r.Palette
	}
	return cfg
}

// Text converts the render settings into a text config
func (r RenderConfig) Text() funnel.RenderConfig {
	cfg := funnel.DefaultRenderConfig()
	if r.Unit != "" {
		cfg.Unit = r.Unit
	}
	return cfg
}

// ProfilingConfig holds the optional pprof listener
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// paletteFile is the YAML shape of FUNNEL_PALETTE_FILE
type paletteFile struct {
	Colors []string `yaml:"colors"`
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database:  *loadDatabaseConfig(),
		Server:    *loadServerConfig(),
		Data:      *loadDataConfig(),
		Profiling: *loadProfilingConfig(),
	}

	renderConfig, err := loadRenderConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load render configuration")
	}
	config.Render = *renderConfig

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URL:     os.Getenv("DATABASE_URL"),
		SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:         getEnvOrDefault("PORT", "8080"),
		ReadTimeout:  getEnvDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getEnvDurationOrDefault("SERVER_WRITE_TIMEOUT", 30*time.Second),
	}
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		ExcelFile:       getEnvOrDefault("FUNNEL_XLSX", ""),
		RemoteURL:       getEnvOrDefault("REMOTE_DASHBOARD_URL", ""),
		RemoteFunnels:   getEnvListOrDefault("REMOTE_FUNNELS", []string{funnel.AccountCreationFunnel}),
		RemoteTimeout:   getEnvDurationOrDefault("REMOTE_TIMEOUT", 5*time.Second),
		LoadConcurrency: getEnvIntOrDefault("FUNNEL_LOAD_CONCURRENCY", 4),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func loadRenderConfig() (*RenderConfig, error) {
	cfg := &RenderConfig{
		Unit:     getEnvOrDefault("FUNNEL_UNIT", "users"),
		Padding:  getEnvFloatOrDefault("FUNNEL_PADDING", funnel.DefaultPadding),
		CacheTTL: getEnvDurationOrDefault("RENDER_CACHE_TTL", 5*time.Minute),
	}

	if path := os.Getenv("FUNNEL_PALETTE_FILE"); path != "" {
		palette, err := LoadPalette(path)
		if err != nil {
			return nil, err
		}
		cfg.Palette = palette
	}

	return cfg, nil
}

// LoadPalette reads a YAML file of the form `colors: ["#667eea", ...]`
func LoadPalette(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read palette file %s", path)
	}
	return ParsePalette(data)
}

// ParsePalette decodes and validates palette YAML
func ParsePalette(data []byte) ([]string, error) {
	var file paletteFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.ConfigInvalid("palette file is not valid YAML: " + err.Error())
	}
	if len(file.Colors) == 0 {
		return nil, errors.ConfigInvalid("palette file has no colors")
	}
	if err := funnel.ValidatePalette(file.Colors); err != nil {
		return nil, errors.ConfigInvalid(err.Error())
	}
	return file.Colors, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Render.Padding < 0 {
		return errors.ConfigInvalid("FUNNEL_PADDING must not be negative")
	}
	if config.Render.CacheTTL < 0 {
		return errors.ConfigInvalid("RENDER_CACHE_TTL must not be negative")
	}
	if config.Data.LoadConcurrency < 1 {
		return errors.ConfigInvalid("FUNNEL_LOAD_CONCURRENCY must be at least 1")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
