package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"locate-route-service/internal/adapters/geocode"
	"locate-route-service/internal/domain"
	"locate-route-service/internal/ports"
	"os"
	"strings"
)

// Initialize the geocode cache schema. The statements are valid for both
// SQLite and Postgres.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address TEXT PRIMARY KEY,
        lat DOUBLE PRECISION NOT NULL,
        lon DOUBLE PRECISION NOT NULL
    );
	`

	statements := []string{
		createGeocodeCacheQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// A known place preloaded into the geocode cache.
type PlaceSeed struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Populate the geocode cache with known places from a JSON file.
// Returns the number of places written.
func SeedFromJSON(ctx context.Context, cache ports.GeocodeCache, jsonPath string) (int, error) {
	if cache == nil {
		return 0, errors.New("seed places: cache is nil")
	}

	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed places: read %q: %w", jsonPath, err)
	}

	var data []PlaceSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return 0, fmt.Errorf("seed places: parse json: %w", err)
	}

	rows := make([]PlaceSeed, 0, len(data))
	for i, item := range data {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return 0, fmt.Errorf("seed places: item at index %d: name cannot be empty", i+1)
		}

		c := domain.Coordinates{Lat: item.Lat, Lon: item.Lon}
		if !c.Valid() {
			return 0, fmt.Errorf("seed places: item %q: coordinate %v out of range", name, c)
		}
		rows = append(rows, PlaceSeed{Name: name, Lat: item.Lat, Lon: item.Lon})
	}

	for _, p := range rows {
		key := geocode.CacheKey(p.Name)
		if err := cache.Put(ctx, key, domain.Coordinates{Lat: p.Lat, Lon: p.Lon}); err != nil {
			return 0, fmt.Errorf("seed places: insert %q: %w", p.Name, err)
		}
	}

	return len(rows), nil
}
