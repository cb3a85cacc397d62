package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	iauth "github.com/dpweb/dpweb/internal/auth"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:3000", cfg.Server.Address)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, []string{"*"}, cfg.Server.CORS.AllowedOrigins)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "dp.sqlite", cfg.Database.Path)
	require.Equal(t, "empty", cfg.Projects.ListErrorPolicy)
	require.True(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "/metrics", cfg.Monitoring.Prometheus.Endpoint)
	require.False(t, cfg.Maintenance.TokenSweep.Enabled)
	require.Equal(t, "@hourly", cfg.Maintenance.TokenSweep.Schedule)
	require.Equal(t, 10*time.Second, cfg.TelegramBridge.Timeout)
	require.Empty(t, cfg.Microservices.Secrets())
}

func TestLoadConfigFromFile(t *testing.T) {
	cfg, err := LoadConfig("testdata")
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:4000", cfg.Server.Address)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.Server.CORS.AllowedOrigins)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "db.example.com", cfg.Database.Postgres.Host)
	require.Equal(t, 6432, cfg.Database.Postgres.Port)
	require.Equal(t, "fail", cfg.Projects.ListErrorPolicy)
	require.False(t, cfg.Monitoring.Prometheus.Enabled)
	require.True(t, cfg.Maintenance.TokenSweep.Enabled)
	require.Equal(t, "*/15 * * * *", cfg.Maintenance.TokenSweep.Schedule)
	require.Equal(t, "123:abc", cfg.TelegramBridge.BotToken)
	require.Equal(t, 5*time.Second, cfg.TelegramBridge.Timeout)

	require.Equal(t, map[iauth.Microservice]string{iauth.TelegramMicroservice: "telegram-shared"}, cfg.Microservices.Secrets())

	dbCfg := cfg.Database.DatabaseConfig()
	require.Equal(t, "postgres", dbCfg.Driver)
	require.Equal(t, "db.example.com", dbCfg.Host)
	require.Equal(t, 6432, dbCfg.Port)
	require.Equal(t, "dp", dbCfg.Name)
	require.Equal(t, "dp", dbCfg.User)
	require.Equal(t, "secret", dbCfg.Password)
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	t.Setenv("DPWEB_SERVER_ADDRESS", "127.0.0.1:9999")
	t.Setenv("DPWEB_MICROSERVICES_TELEGRAM_SHARED_KEY", "from-env")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9999", cfg.Server.Address)
	require.Equal(t, "from-env", cfg.Microservices.Telegram.SharedKey)
}

func TestLoadExplicitFileAndFlags(t *testing.T) {
	file := filepath.Join(t.TempDir(), "dp.yaml")
	require.NoError(t, os.WriteFile(file, []byte("database:\n  path: from-file.sqlite\n"), 0o600))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("database", "", "")
	require.NoError(t, flags.Parse([]string{"--database", "from-flag.sqlite"}))

	cfg, err := Load(LoadOptions{File: file})
	require.NoError(t, err)
	require.Equal(t, "from-file.sqlite", cfg.Database.Path)

	cfg, err = Load(LoadOptions{File: file, Flags: map[string]*pflag.Flag{"database.path": flags.Lookup("database")}})
	require.NoError(t, err)
	require.Equal(t, "from-flag.sqlite", cfg.Database.Path)

	_, err = Load(LoadOptions{File: filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
}

func TestValidateRejectsUnknownListPolicy(t *testing.T) {
	cfg := Config{Server: ServerConfig{Address: ":3000"}, Projects: ProjectsConfig{ListErrorPolicy: "sometimes"}}
	require.Error(t, cfg.Validate())

	cfg.Projects.ListErrorPolicy = "fail"
	require.NoError(t, cfg.Validate())

	cfg.Maintenance.TokenSweep = TokenSweepConfig{Enabled: true}
	require.Error(t, cfg.Validate())
}

func TestDatabaseConfigAdapter(t *testing.T) {
	cfg := DatabaseConfig{Driver: " SQLite3 ", Path: " data/dp.sqlite "}
	require.Equal(t, "sqlite", cfg.DatabaseConfig().Driver)
	require.Equal(t, "data/dp.sqlite", cfg.DatabaseConfig().Path)

	cfg = DatabaseConfig{Driver: "mariadb", LogQueries: true, MySQL: DBAuthConfig{
		Host: "db", Port: 3306, Database: "dp", Options: map[string]string{"tls": "true"},
	}}
	dbCfg := cfg.DatabaseConfig()
	require.Equal(t, "mysql", dbCfg.Driver)
	require.Equal(t, "db", dbCfg.Host)
	require.Equal(t, "dp", dbCfg.Name)
	require.True(t, dbCfg.LogQueries)
	require.Equal(t, map[string]string{"tls": "true"}, dbCfg.Options)

	require.Equal(t, "oracle", DatabaseConfig{Driver: "oracle"}.DatabaseConfig().Driver)
}
