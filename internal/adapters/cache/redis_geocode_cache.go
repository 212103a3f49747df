package cache

import (
	"context"
	"errors"
	"fmt"
	"locate-route-service/internal/domain"
	"locate-route-service/internal/platform/obs"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "geocode:"

// RedisGeocodeCache stores query -> "lat,lon" strings with an expiry.
type RedisGeocodeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// A zero ttl keeps entries forever.
func NewRedisGeocodeCache(client *redis.Client, ttl time.Duration) *RedisGeocodeCache {
	return &RedisGeocodeCache{client: client, ttl: ttl}
}

func (r *RedisGeocodeCache) Get(ctx context.Context, query string) (_ domain.Coordinates, _ bool, err error) {
	defer obs.Time(ctx, "geocode.redis.Get")(&err)

	if r.client == nil {
		return domain.Coordinates{}, false, errors.New("geocode cache: redis client is nil")
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Coordinates{}, false, nil
	}

	v, err := r.client.Get(ctx, redisKeyPrefix+query).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Coordinates{}, false, nil
	}
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("get geocode cache: redis get %q: %w", query, err)
	}

	c, err := parseLatLon(v)
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("get geocode cache: key %q: %w", query, err)
	}

	return c, true, nil
}

func (r *RedisGeocodeCache) Put(ctx context.Context, query string, c domain.Coordinates) error {
	if r.client == nil {
		return errors.New("geocode cache: redis client is nil")
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return fmt.Errorf("insert geocode cache: empty address key")
	}

	v := strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lon, 'f', -1, 64)
	if err := r.client.Set(ctx, redisKeyPrefix+query, v, r.ttl).Err(); err != nil {
		return fmt.Errorf("insert geocode cache: redis set %q: %w", query, err)
	}

	return nil
}

func parseLatLon(v string) (domain.Coordinates, error) {
	parts := strings.Split(v, ",")
	if len(parts) != 2 {
		return domain.Coordinates{}, fmt.Errorf("invalid coordinate: %s", v)
	}

	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return domain.Coordinates{}, fmt.Errorf("invalid lat/lon: %s", v)
	}

	return domain.Coordinates{Lat: lat, Lon: lon}, nil
}
