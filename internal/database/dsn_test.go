package database

import (
	"strings"
	"testing"
)

func TestBuildPostgresDSNDefaults(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{User: "dpweb"})
	if err != nil {
		t.Fatalf("build dsn: %v", err)
	}

	expected := "host=localhost port=5432 user=dpweb dbname=dpweb TimeZone=UTC application_name=dpweb sslmode=disable"
	if dsn != expected {
		t.Fatalf("expected %q, got %q", expected, dsn)
	}
}

func TestBuildPostgresDSNWithOptions(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{
		User:     "user",
		Name:     "db",
		Host:     "db.example.com",
		Port:     6543,
		Password: "pass",
		Options: map[string]string{
			"sslmode":     "require",
			"search_path": "public",
		},
	})
	if err != nil {
		t.Fatalf("build dsn: %v", err)
	}

	if !containsAll(
		dsn,
		"host=db.example.com",
		"port=6543",
		"user=user",
		"dbname=db",
		"password=pass",
		"sslmode=require",
		"search_path=public",
	) {
		t.Fatalf("dsn missing expected components: %q", dsn)
	}
}

func TestBuildPostgresDSNRequiresUser(t *testing.T) {
	if _, err := buildPostgresDSN(Config{Name: "db"}); err == nil {
		t.Fatalf("expected error for missing credentials")
	}
}

func TestBuildMySQLDSNDefaults(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{User: "dpweb"})
	if err != nil {
		t.Fatalf("build dsn: %v", err)
	}

	expected := "dpweb@tcp(127.0.0.1:3306)/dpweb?charset=utf8mb4&loc=UTC&parseTime=True"
	if dsn != expected {
		t.Fatalf("expected %q, got %q", expected, dsn)
	}
}

func TestBuildMySQLDSNWithOptions(t *testing.T) {
	dsn, err := buildMySQLDSN(Config{
		User:     "user",
		Password: "secret",
		Name:     "db",
		Host:     "db.example.com",
		Port:     3307,
		Options: map[string]string{
			"tls": "skip-verify",
		},
	})
	if err != nil {
		t.Fatalf("build dsn: %v", err)
	}

	if !containsAll(
		dsn,
		"user:secret@tcp(db.example.com:3307)/db?",
		"charset=utf8mb4",
		"loc=UTC",
		"parseTime=True",
		"tls=skip-verify",
	) {
		t.Fatalf("dsn missing expected components: %q", dsn)
	}
}

func TestBuildMySQLDSNRequiresUser(t *testing.T) {
	if _, err := buildMySQLDSN(Config{Host: "localhost", Name: "db"}); err == nil {
		t.Fatalf("expected error for missing credentials")
	}
}

func TestDSNOverrideWins(t *testing.T) {
	for name, build := range map[string]func(Config) (string, error){
		"postgres": buildPostgresDSN,
		"mysql":    buildMySQLDSN,
	} {
		dsn, err := build(Config{DSN: "raw", User: "ignored"})
		if err != nil || dsn != "raw" {
			t.Fatalf("%s: expected DSN override, got %q (%v)", name, dsn, err)
		}
	}
}

func TestSQLiteDSN(t *testing.T) {
	dsn, err := sqliteDSN(Config{})
	if err != nil || dsn != "file::memory:?cache=shared&_foreign_keys=1" {
		t.Fatalf("unexpected memory dsn %q (%v)", dsn, err)
	}

	dsn, err = sqliteDSN(Config{Path: "dp.sqlite"})
	if err != nil || !strings.HasPrefix(dsn, "file:dp.sqlite?") || !strings.Contains(dsn, "_foreign_keys=1") {
		t.Fatalf("unexpected file dsn %q (%v)", dsn, err)
	}

	dsn, err = sqliteDSN(Config{Path: "ignored", DSN: "file:custom"})
	if err != nil || dsn != "file:custom" {
		t.Fatalf("expected DSN override, got %q (%v)", dsn, err)
	}

	if got := MemoryDSN("abc"); got != "file:abc?mode=memory&cache=shared&_foreign_keys=1" {
		t.Fatalf("unexpected memory dsn %q", got)
	}
}

func containsAll(value string, parts ...string) bool {
	for _, part := range parts {
		if !strings.Contains(value, part) {
			return false
		}
	}
	return true
}
