package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"parts-and-service/internal/models"
)

const (
	// tracking:{code} -> JSON TrackingView
	keyTracking = "tracking:%s"
)

// TTLTracking bounds how stale a public tracking view may be.
var TTLTracking = 5 * time.Minute

// New returns a redis client for the given address.
func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

// TrackingCache is a read-through cache for public tracking lookups keyed
// by tracking code.
type TrackingCache struct {
	rdb *redis.Client
}

func NewTrackingCache(rdb *redis.Client) *TrackingCache {
	return &TrackingCache{rdb: rdb}
}

// Get returns the cached view for a code, or (nil, nil) on a cache miss.
func (c *TrackingCache) Get(ctx context.Context, code string) (*models.TrackingView, error) {
	data, err := c.rdb.Get(ctx, fmt.Sprintf(keyTracking, code)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var view models.TrackingView
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *TrackingCache) Set(ctx context.Context, code string, view *models.TrackingView) error {
	data, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, fmt.Sprintf(keyTracking, code), data, TTLTracking).Err()
}

// Invalidate drops the cached views for the given codes. Called on every
// status or location write so readers never see a stale terminal state.
func (c *TrackingCache) Invalidate(ctx context.Context, codes ...string) error {
	keys := make([]string, 0, len(codes))
	for _, code := range codes {
		if code != "" {
			keys = append(keys, fmt.Sprintf(keyTracking, code))
		}
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}
