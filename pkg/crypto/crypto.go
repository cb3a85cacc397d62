package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"math/big"
)

// Alphanumeric is the alphabet of generated secrets.
const Alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// SecretLength is the length of bearer and invite secrets.
const SecretLength = 48

// GenerateToken returns a random string of the requested length, each character
// drawn uniformly from Alphanumeric.
func GenerateToken(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("token length must be positive")
	}

	max := big.NewInt(int64(len(Alphanumeric)))
	buffer := make([]byte, length)
	for i := range buffer {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buffer[i] = Alphanumeric[n.Int64()]
	}
	return string(buffer), nil
}

// GenerateSecret returns a SecretLength character alphanumeric secret.
func GenerateSecret() (string, error) {
	return GenerateToken(SecretLength)
}

// Equal compares two secrets in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
