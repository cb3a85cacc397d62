package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. DPWEB_SERVER_ADDRESS.
const EnvPrefix = "DPWEB"

// Config represents the runtime configuration of the dpweb backend. It is
// loaded once at startup and never reloaded.
type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Microservices  MicroservicesConfig  `mapstructure:"microservices"`
	Projects       ProjectsConfig       `mapstructure:"projects"`
	Monitoring     MonitoringConfig     `mapstructure:"monitoring"`
	Maintenance    MaintenanceConfig    `mapstructure:"maintenance"`
	TelegramBridge TelegramBridgeConfig `mapstructure:"telegram_bridge"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Address  string     `mapstructure:"address"`
	LogLevel string     `mapstructure:"log_level"`
	CORS     CORSConfig `mapstructure:"cors"`
}

// CORSConfig lists the origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver     string       `mapstructure:"driver"`
	Path       string       `mapstructure:"path"`
	DSN        string       `mapstructure:"dsn"`
	LogQueries bool         `mapstructure:"log_queries"`
	Postgres   DBAuthConfig `mapstructure:"postgres"`
	MySQL      DBAuthConfig `mapstructure:"mysql"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	// Options are extra DSN parameters, e.g. sslmode or tls.
	Options map[string]string `mapstructure:"options"`
}

// MicroservicesConfig holds the shared secrets of trusted services. An empty
// key disables the service.
type MicroservicesConfig struct {
	Telegram SharedKeyConfig `mapstructure:"telegram"`
}

// SharedKeyConfig is a single shared secret.
type SharedKeyConfig struct {
	SharedKey string `mapstructure:"shared_key"`
}

// ProjectsConfig tunes the projects endpoints.
type ProjectsConfig struct {
	ListErrorPolicy string `mapstructure:"list_error_policy"`
}

// MonitoringConfig enables health checks and metrics.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Health     HealthConfig     `mapstructure:"health_check"`
}

// PrometheusConfig toggles metrics endpoints.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// HealthConfig toggles health endpoints.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// MaintenanceConfig controls background jobs.
type MaintenanceConfig struct {
	TokenSweep TokenSweepConfig `mapstructure:"token_sweep"`
}

// TokenSweepConfig schedules the removal of expired tokens.
type TokenSweepConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// TelegramBridgeConfig configures the Telegram bot bridge.
type TelegramBridgeConfig struct {
	BotToken  string        `mapstructure:"bot_token"`
	APIURL    string        `mapstructure:"api_url"`
	SharedKey string        `mapstructure:"shared_key"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Debug     bool          `mapstructure:"debug"`
}

// LoadOptions selects where configuration is read from.
type LoadOptions struct {
	// File is an explicit config file. When set, Paths are ignored and the
	// file must exist.
	File string
	// Paths are searched for config.yaml in addition to ./config.
	Paths []string
	// Flags maps config keys to command line flags that override them when set.
	Flags map[string]*pflag.Flag
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	return Load(LoadOptions{Paths: paths})
}

// Load reads configuration from defaults, an optional YAML file, DPWEB_*
// environment variables and bound flags, in increasing precedence.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigType("yaml")

	if file := strings.TrimSpace(opts.File); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./config")
		for _, path := range opts.Paths {
			v.AddConfigPath(path)
		}
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, flag := range opts.Flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("config: bind flag %s: %w", flag.Name, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects settings that would only fail later at runtime.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Projects.ListErrorPolicy)) {
	case "", "empty", "fail", "failure":
	default:
		return fmt.Errorf("config: projects.list_error_policy must be \"empty\" or \"fail\", got %q", c.Projects.ListErrorPolicy)
	}
	if strings.TrimSpace(c.Server.Address) == "" {
		return errors.New("config: server.address must not be empty")
	}
	if c.Maintenance.TokenSweep.Enabled && strings.TrimSpace(c.Maintenance.TokenSweep.Schedule) == "" {
		return errors.New("config: maintenance.token_sweep.schedule is required when the sweep is enabled")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0:3000")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.cors.allowed_origins", []string{"*"})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "dp.sqlite")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.log_queries", false)
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.mysql.port", 3306)

	v.SetDefault("microservices.telegram.shared_key", "")

	v.SetDefault("projects.list_error_policy", "empty")

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")
	v.SetDefault("monitoring.health_check.enabled", true)

	v.SetDefault("maintenance.token_sweep.enabled", false)
	v.SetDefault("maintenance.token_sweep.schedule", "@hourly")

	v.SetDefault("telegram_bridge.bot_token", "")
	v.SetDefault("telegram_bridge.api_url", "http://127.0.0.1:3000")
	v.SetDefault("telegram_bridge.shared_key", "")
	v.SetDefault("telegram_bridge.timeout", "10s")
	v.SetDefault("telegram_bridge.debug", false)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
