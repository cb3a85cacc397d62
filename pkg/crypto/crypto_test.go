package crypto

import (
	"strings"
	"testing"
)

func TestGenerateTokenAlphabetAndLength(t *testing.T) {
	token, err := GenerateSecret()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if len(token) != SecretLength {
		t.Fatalf("expected %d characters, got %d", SecretLength, len(token))
	}
	for _, r := range token {
		if !strings.ContainsRune(Alphanumeric, r) {
			t.Fatalf("unexpected character %q in %q", r, token)
		}
	}
}

func TestGenerateTokenIsRandom(t *testing.T) {
	seen := make(map[string]struct{}, 64)
	for i := 0; i < 64; i++ {
		token, err := GenerateToken(16)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if _, dup := seen[token]; dup {
			t.Fatalf("duplicate token %q", token)
		}
		seen[token] = struct{}{}
	}
}

func TestGenerateTokenCoversAlphabet(t *testing.T) {
	token, err := GenerateToken(20000)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, r := range Alphanumeric {
		if !strings.ContainsRune(token, r) {
			t.Fatalf("symbol %q never generated", r)
		}
	}
}

func TestGenerateTokenRejectsInvalidLength(t *testing.T) {
	if _, err := GenerateToken(0); err == nil {
		t.Fatal("expected error for zero length")
	}
}

func TestEqual(t *testing.T) {
	if !Equal("abc", "abc") {
		t.Fatal("expected equal secrets to match")
	}
	if Equal("abc", "abd") || Equal("abc", "ab") || Equal("", "a") {
		t.Fatal("expected different secrets not to match")
	}
}
