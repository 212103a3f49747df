package repositories

import (
	"context"
	"database/sql"
	"locate-route-service/internal/adapters/cache"
	"locate-route-service/internal/domain"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func TestInitSchemaAndSeedFromJSON(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	defer db.Close()

	if err := InitSchema(db); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}
	// Idempotent.
	if err := InitSchema(db); err != nil {
		t.Fatalf("second InitSchema: %v", err)
	}

	path := filepath.Join(t.TempDir(), "places.json")
	seed := `[
		{"name": "York", "lat": 53.96, "lon": -1.08},
		{"name": "  Harrogate   Station ", "lat": 53.9929, "lon": -1.5375}
	]`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	c := cache.NewSqliteGeocodeCache(db)
	n, err := SeedFromJSON(context.Background(), c, path)
	if err != nil {
		t.Fatalf("SeedFromJSON: %v", err)
	}
	if n != 2 {
		t.Fatalf("seeded = %d, want 2", n)
	}

	got, ok, err := c.Get(context.Background(), "harrogate station")
	if err != nil || !ok {
		t.Fatalf("Get = (%v, %v), want hit", ok, err)
	}
	if want := (domain.Coordinates{Lat: 53.9929, Lon: -1.5375}); got != want {
		t.Fatalf("Get = %v, want %v", got, want)
	}
}

func TestSeedFromJSONRejectsOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "places.json")
	if err := os.WriteFile(path, []byte(`[{"name":"Nowhere","lat":123,"lon":0}]`), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	defer db.Close()

	if _, err := SeedFromJSON(context.Background(), cache.NewSqliteGeocodeCache(db), path); err == nil {
		t.Fatal("expected error for out of range latitude")
	}
}
