package app

import (
	"strings"

	"github.com/dpweb/dpweb/internal/database"
)

// DatabaseConfig adapts the database settings to database.Config.
func (c DatabaseConfig) DatabaseConfig() database.Config {
	dbCfg := database.Config{
		Driver:     strings.ToLower(strings.TrimSpace(c.Driver)),
		Path:       strings.TrimSpace(c.Path),
		DSN:        strings.TrimSpace(c.DSN),
		LogQueries: c.LogQueries,
	}

	var auth DBAuthConfig
	switch dbCfg.Driver {
	case "", "sqlite", "sqlite3":
		dbCfg.Driver = "sqlite"
		return dbCfg
	case "postgres", "postgresql":
		dbCfg.Driver = "postgres"
		auth = c.Postgres
	case "mysql", "mariadb":
		dbCfg.Driver = "mysql"
		auth = c.MySQL
	default:
		// Leave driver as-is to surface unsupported driver error during open.
		return dbCfg
	}

	dbCfg.Host = strings.TrimSpace(auth.Host)
	dbCfg.Port = auth.Port
	dbCfg.Name = strings.TrimSpace(auth.Database)
	dbCfg.User = strings.TrimSpace(auth.Username)
	dbCfg.Password = auth.Password
	dbCfg.Options = auth.Options
	return dbCfg
}
