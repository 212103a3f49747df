package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the service configuration, read from the environment and an
// optional YAML file named by CONFIG_FILE.
type Config struct {
	Port string `mapstructure:"port"`

	LocationSource     string        `mapstructure:"location_source"` // nmea | mqtt | none
	LocationTimeout    time.Duration `mapstructure:"location_timeout"`
	LocationMaxRetries int           `mapstructure:"location_max_retries"`

	GPSSerialPort string `mapstructure:"gps_serial_port"`
	GPSBaudRate   uint   `mapstructure:"gps_baud_rate"`

	MQTTBroker   string `mapstructure:"mqtt_broker"`
	MQTTClientID string `mapstructure:"mqtt_client_id"`
	MQTTUsername string `mapstructure:"mqtt_username"`
	MQTTPassword string `mapstructure:"mqtt_password"`
	TopicGPS     string `mapstructure:"topic_gps"`
	TopicStatus  string `mapstructure:"topic_status"`

	Geocoder     string `mapstructure:"geocoder"` // nominatim | ors
	Router       string `mapstructure:"router"`   // osrm | ors
	ORSAPIKey    string `mapstructure:"ors_api_key"`
	NominatimURL string `mapstructure:"nominatim_url"`
	OSRMURL      string `mapstructure:"osrm_url"`
	UserAgent    string `mapstructure:"user_agent"`

	Cache       string        `mapstructure:"cache"` // sqlite | postgres | redis | none
	DBPath      string        `mapstructure:"db_path"`
	DatabaseURL string        `mapstructure:"database_url"`
	RedisAddr   string        `mapstructure:"redis_addr"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	SeedPath    string        `mapstructure:"seed_path"`
}

// Load reads configuration from env (and CONFIG_FILE when set) over the defaults.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("port", "8080")
	v.SetDefault("location_source", "nmea")
	v.SetDefault("location_timeout", 7*time.Second)
	v.SetDefault("location_max_retries", 3)
	v.SetDefault("gps_serial_port", "/dev/serial0")
	v.SetDefault("gps_baud_rate", 9600)
	v.SetDefault("mqtt_broker", "")
	v.SetDefault("mqtt_client_id", "locate-route-service")
	v.SetDefault("mqtt_username", "")
	v.SetDefault("mqtt_password", "")
	v.SetDefault("topic_gps", "inertial/gps")
	v.SetDefault("topic_status", "")
	v.SetDefault("geocoder", "nominatim")
	v.SetDefault("router", "osrm")
	v.SetDefault("ors_api_key", "")
	v.SetDefault("nominatim_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("osrm_url", "https://router.project-osrm.org")
	v.SetDefault("user_agent", "locate-route-service/1.0")
	v.SetDefault("cache", "sqlite")
	v.SetDefault("db_path", "data/app.db")
	v.SetDefault("database_url", "")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("cache_ttl", 30*24*time.Hour)
	v.SetDefault("seed_path", "data/seeds/places.json")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("load config: read %q: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("load config: unmarshal: %w", err)
	}

	if err := c.validate(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return c, nil
}

func (c Config) validate() error {
	switch c.LocationSource {
	case "nmea", "mqtt", "none":
	default:
		return fmt.Errorf("LOCATION_SOURCE %q: want nmea, mqtt or none", c.LocationSource)
	}
	switch c.Geocoder {
	case "nominatim", "ors":
	default:
		return fmt.Errorf("GEOCODER %q: want nominatim or ors", c.Geocoder)
	}
	switch c.Router {
	case "osrm", "ors":
	default:
		return fmt.Errorf("ROUTER %q: want osrm or ors", c.Router)
	}
	switch c.Cache {
	case "sqlite", "postgres", "redis", "none":
	default:
		return fmt.Errorf("CACHE %q: want sqlite, postgres, redis or none", c.Cache)
	}

	if (c.Geocoder == "ors" || c.Router == "ors") && strings.TrimSpace(c.ORSAPIKey) == "" {
		return fmt.Errorf("ORS_API_KEY is required when GEOCODER or ROUTER is ors")
	}
	if c.Cache == "postgres" && strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required when CACHE is postgres")
	}
	if c.LocationSource == "mqtt" && c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required when LOCATION_SOURCE is mqtt")
	}
	if c.LocationMaxRetries < 0 {
		return fmt.Errorf("LOCATION_MAX_RETRIES must not be negative")
	}
	return nil
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
