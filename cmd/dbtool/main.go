package main

import (
	"context"
	"database/sql"
	"locate-route-service/internal/adapters/cache"
	"locate-route-service/internal/adapters/repositories"
	"locate-route-service/internal/config"
	"locate-route-service/internal/platform/db"
	"locate-route-service/internal/ports"
	"log"
	"strings"

	"github.com/joho/godotenv"
)

// dbtool creates the geocode cache schema and loads the seed places into
// the SQL backend selected by CACHE (sqlite or postgres).
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	backend := config.Get("CACHE", "sqlite")
	seedPath := config.Get("SEED_PATH", "data/seeds/places.json")

	var (
		sqlDB *sql.DB
		c     ports.GeocodeCache
		err   error
	)
	switch backend {
	case "postgres":
		databaseURL := config.Get("DATABASE_URL", "")
		if strings.TrimSpace(databaseURL) == "" {
			log.Fatal("DATABASE_URL is required")
		}
		sqlDB, err = db.Open(databaseURL)
		if err != nil {
			log.Fatal(err)
		}
		c = cache.NewSQLGeocodeCache(sqlDB)
	case "sqlite":
		sqlDB, err = db.OpenSQLite(config.Get("DB_PATH", "data/app.db"))
		if err != nil {
			log.Fatal(err)
		}
		c = cache.NewSqliteGeocodeCache(sqlDB)
	default:
		log.Fatalf("CACHE %q has no SQL schema (want sqlite or postgres)", backend)
	}
	defer sqlDB.Close()

	if err := initAndSeed(context.Background(), sqlDB, c, seedPath); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(ctx context.Context, sqlDB *sql.DB, c ports.GeocodeCache, seedPath string) error {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(sqlDB); err != nil {
		return err
	}
	log.Println("Schema ready.")

	log.Println("Seeding geocode cache...")
	n, err := repositories.SeedFromJSON(ctx, c, seedPath)
	if err != nil {
		return err
	}
	log.Printf("Seeding complete. places=%d", n)

	return nil
}
