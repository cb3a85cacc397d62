package auth

import (
	"strings"

	"github.com/dpweb/dpweb/pkg/crypto"
)

// Microservice identifies a trusted service.
type Microservice string

// TelegramMicroservice is the Telegram bridge. Its name is the header scheme.
const TelegramMicroservice Microservice = "Internal-TelegramMicroservice"

// MicroserviceAuthenticator checks "Authorization: <service> <shared-secret>"
// against statically configured secrets. Services with an empty secret are
// disabled.
type MicroserviceAuthenticator struct {
	secrets map[Microservice]string
}

// NewMicroserviceAuthenticator copies the configured secrets.
func NewMicroserviceAuthenticator(secrets map[Microservice]string) *MicroserviceAuthenticator {
	cpy := make(map[Microservice]string, len(secrets))
	for name, secret := range secrets {
		if secret != "" {
			cpy[name] = secret
		}
	}
	return &MicroserviceAuthenticator{secrets: cpy}
}

// Enabled reports whether a secret is configured for the service.
func (m *MicroserviceAuthenticator) Enabled(service Microservice) bool {
	_, ok := m.secrets[service]
	return ok
}

// Authenticate returns the service named by the header when its secret matches.
func (m *MicroserviceAuthenticator) Authenticate(header string) (Microservice, error) {
	name, secret, ok := strings.Cut(header, " ")
	if !ok {
		return "", ErrCredentialsMissing
	}

	expected, known := m.secrets[Microservice(name)]
	if !known || !crypto.Equal(expected, secret) {
		return "", ErrCredentialsMissing
	}
	return Microservice(name), nil
}
