package database

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Timestamps are stored as epoch milliseconds, so the session zone only
// affects driver-level time values.
var mysqlDefaults = map[string]string{
	"charset":   "utf8mb4",
	"parseTime": "True",
	"loc":       "UTC",
}

func openMySQL(cfg Config) (*gorm.DB, error) {
	dsn, err := buildMySQLDSN(cfg)
	if err != nil {
		return nil, err
	}
	return gorm.Open(mysql.Open(dsn), gormConfig(cfg))
}

func buildMySQLDSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}

	ep, err := resolveEndpoint("mysql", cfg, "127.0.0.1", 3306)
	if err != nil {
		return "", err
	}

	credentials := ep.user
	if cfg.Password != "" {
		credentials += ":" + cfg.Password
	}
	return fmt.Sprintf("%s@tcp(%s:%d)/%s?%s", credentials, ep.host, ep.port, ep.name,
		mergeOptions(mysqlDefaults, cfg.Options, "&")), nil
}
