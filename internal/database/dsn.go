package database

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DefaultName is the database used by the server drivers when none is configured.
const DefaultName = "dpweb"

// serverEndpoint resolves the connection target of a networked driver.
type serverEndpoint struct {
	host, user, name string
	port             int
}

func resolveEndpoint(driver string, cfg Config, defaultHost string, defaultPort int) (serverEndpoint, error) {
	ep := serverEndpoint{
		host: cfg.Host,
		port: cfg.Port,
		user: cfg.User,
		name: cfg.Name,
	}
	if ep.user == "" {
		return ep, errors.New(driver + " configuration requires a user")
	}
	if ep.host == "" {
		ep.host = defaultHost
	}
	if ep.port == 0 {
		ep.port = defaultPort
	}
	if ep.name == "" {
		ep.name = DefaultName
	}
	return ep, nil
}

// mergeOptions overlays configured options on the driver defaults and renders
// them in key order joined by sep.
func mergeOptions(defaults, configured map[string]string, sep string) string {
	merged := make(map[string]string, len(defaults)+len(configured))
	for key, value := range defaults {
		merged[key] = value
	}
	for key, value := range configured {
		merged[key] = value
	}

	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", key, merged[key]))
	}
	return strings.Join(parts, sep)
}
