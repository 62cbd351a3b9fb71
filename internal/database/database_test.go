package database

import (
	"io/fs"
	"strings"
	"testing"
)

func TestConfigURL(t *testing.T) {
	cfg := Config{
		Host:     "db",
		Port:     "5433",
		User:     "rent",
		Password: "p@ss word",
		DBName:   "rentals",
		SSLMode:  "require",
	}

	got := cfg.DSN()
	want := "postgres://rent:p%40ss%20word@db:5433/rentals?sslmode=require"
	if got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}

	if !strings.HasPrefix(cfg.URL("pgx5"), "pgx5://") {
		t.Errorf("URL(pgx5) = %q, want pgx5 scheme", cfg.URL("pgx5"))
	}
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected file in migrations: %s", name)
		}
	}
	if len(ups) == 0 {
		t.Fatal("no migrations embedded")
	}
	for v := range ups {
		if !downs[v] {
			t.Errorf("migration %s has no down file", v)
		}
	}
}
