package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"locate-route-service/internal/adapters/cache"
	"locate-route-service/internal/adapters/geocode"
	"locate-route-service/internal/adapters/geolocation"
	"locate-route-service/internal/adapters/maprender"
	"locate-route-service/internal/adapters/repositories"
	"locate-route-service/internal/adapters/routing"
	"locate-route-service/internal/adapters/status"
	"locate-route-service/internal/api"
	"locate-route-service/internal/config"
	"locate-route-service/internal/platform/db"
	"locate-route-service/internal/ports"
	"locate-route-service/internal/services"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// main is the application composition root.
// It wires concrete adapters (GPS source, geocoder, router, caches, status
// sinks) behind ports, starts location acquisition and serves the HTTP API.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	geoCache, closeCache, err := openGeocodeCache(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeCache()

	geocoder, err := buildGeocoder(cfg, geoCache)
	if err != nil {
		log.Fatal(err)
	}

	router, err := buildRouter(cfg)
	if err != nil {
		log.Fatal(err)
	}

	source, closeSource := buildSource(cfg)
	defer closeSource()

	hub := status.NewHub()
	sinks := status.Fanout{status.NewBoard(), hub}
	if cfg.TopicStatus != "" && cfg.MQTTBroker != "" {
		client, err := connectMQTT(cfg, cfg.MQTTClientID+"-status")
		if err != nil {
			log.Printf("status mqtt disabled: %v", err)
		} else {
			defer client.Disconnect(250)
			sinks = append(sinks, status.NewMQTTPublisher(client, cfg.TopicStatus))
		}
	}

	embed := maprender.NewEmbedMap()
	orch := services.NewOrchestrator(services.OrchestratorConfig{
		Source:          source,
		Geocoder:        geocoder,
		Router:          router,
		Renderer:        embed,
		RouteLayer:      embed,
		Status:          sinks,
		LocationTimeout: cfg.LocationTimeout,
		MaxRetries:      cfg.LocationMaxRetries,
	})

	// Write timeout covers cold-cache geocode plus routing latency.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(orch, embed, hub),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Server listening addr=:%s source=%s geocoder=%s router=%s cache=%s",
			cfg.Port, cfg.LocationSource, cfg.Geocoder, cfg.Router, cfg.Cache)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Println("Shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	orch.Start(gctx)

	if err := g.Wait(); err != nil {
		log.Printf("server exited: %v", err)
	}
	orch.Wait()
}

func buildSource(cfg config.Config) (ports.PositionSource, func()) {
	switch cfg.LocationSource {
	case "mqtt":
		src := geolocation.NewMQTTSource(geolocation.MQTTOptions{
			Broker:   cfg.MQTTBroker,
			ClientID: cfg.MQTTClientID,
			Topic:    cfg.TopicGPS,
			Username: cfg.MQTTUsername,
			Password: cfg.MQTTPassword,
		})
		return src, src.Close
	case "nmea":
		return geolocation.NewNMEASource(cfg.GPSSerialPort, cfg.GPSBaudRate), func() {}
	default:
		return geolocation.Unsupported{}, func() {}
	}
}

func buildGeocoder(cfg config.Config, c ports.GeocodeCache) (ports.Geocoder, error) {
	var g ports.Geocoder
	switch cfg.Geocoder {
	case "ors":
		ors, err := geocode.NewORSGeocoder(cfg.ORSAPIKey, "", "")
		if err != nil {
			return nil, fmt.Errorf("build geocoder: %w", err)
		}
		g = ors
	default:
		nom := geocode.NewNominatimGeocoder(cfg.NominatimURL, cfg.UserAgent)
		// The public instance allows one request per second.
		nom.SetRetry(3, time.Second)
		g = nom
	}

	if c == nil {
		return g, nil
	}
	cached, err := geocode.NewCachingGeocoder(g, c)
	if err != nil {
		return nil, fmt.Errorf("build geocoder: %w", err)
	}
	return cached, nil
}

func buildRouter(cfg config.Config) (ports.Router, error) {
	if cfg.Router == "ors" {
		r, err := routing.NewORSRouter(cfg.ORSAPIKey, "", "")
		if err != nil {
			return nil, fmt.Errorf("build router: %w", err)
		}
		return r, nil
	}
	return routing.NewOSRMRouter(cfg.OSRMURL, "driving"), nil
}

// openGeocodeCache opens the configured cache backend, creating the schema
// and loading seed places where the backend supports it.
func openGeocodeCache(ctx context.Context, cfg config.Config) (ports.GeocodeCache, func(), error) {
	switch cfg.Cache {
	case "sqlite":
		sqlDB, err := db.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		c := cache.NewSqliteGeocodeCache(sqlDB)
		if err := initAndSeed(ctx, sqlDB, c, cfg.SeedPath); err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		return c, func() { sqlDB.Close() }, nil

	case "postgres":
		sqlDB, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		c := cache.NewSQLGeocodeCache(sqlDB)
		if err := initAndSeed(ctx, sqlDB, c, cfg.SeedPath); err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		return c, func() { sqlDB.Close() }, nil

	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("open geocode cache: ping redis %s: %w", cfg.RedisAddr, err)
		}
		c := cache.NewRedisGeocodeCache(client, cfg.CacheTTL)
		seed(ctx, c, cfg.SeedPath)
		return c, func() { client.Close() }, nil

	default:
		return nil, func() {}, nil
	}
}

func initAndSeed(ctx context.Context, sqlDB *sql.DB, c ports.GeocodeCache, seedPath string) error {
	if err := repositories.InitSchema(sqlDB); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	seed(ctx, c, seedPath)
	return nil
}

// seed preloads known places; a missing seed file is not fatal.
func seed(ctx context.Context, c ports.GeocodeCache, seedPath string) {
	n, err := repositories.SeedFromJSON(ctx, c, seedPath)
	if err != nil {
		log.Printf("seed skipped path=%s err=%v", seedPath, err)
		return
	}
	log.Printf("seeded places=%d path=%s", n, seedPath)
}

func connectMQTT(cfg config.Config, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(clientID).
		SetAutoReconnect(true)
	if cfg.MQTTUsername != "" {
		opts.SetUsername(cfg.MQTTUsername)
		opts.SetPassword(cfg.MQTTPassword)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return nil, fmt.Errorf("connect %s: timed out", cfg.MQTTBroker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.MQTTBroker, err)
	}
	return client, nil
}
