package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var postgresDefaults = map[string]string{
	"sslmode":          "disable",
	"application_name": DefaultName,
	"TimeZone":         "UTC",
}

func openPostgres(cfg Config) (*gorm.DB, error) {
	dsn, err := buildPostgresDSN(cfg)
	if err != nil {
		return nil, err
	}
	return gorm.Open(postgres.Open(dsn), gormConfig(cfg))
}

func buildPostgresDSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}

	ep, err := resolveEndpoint("postgres", cfg, "localhost", 5432)
	if err != nil {
		return "", err
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s dbname=%s", ep.host, ep.port, ep.user, ep.name)
	if cfg.Password != "" {
		dsn += " password=" + cfg.Password
	}
	return dsn + " " + mergeOptions(postgresDefaults, cfg.Options, " "), nil
}
