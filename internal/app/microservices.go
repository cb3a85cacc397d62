package app

import (
	"strings"

	iauth "github.com/dpweb/dpweb/internal/auth"
)

// Secrets returns the configured shared secrets keyed by service name.
func (c MicroservicesConfig) Secrets() map[iauth.Microservice]string {
	secrets := make(map[iauth.Microservice]string, 1)
	if key := strings.TrimSpace(c.Telegram.SharedKey); key != "" {
		secrets[iauth.TelegramMicroservice] = key
	}
	return secrets
}
