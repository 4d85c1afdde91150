package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/sekine/internal/prayer"
	"github.com/Nixie-Tech-LLC/sekine/internal/qiblah"
)

// CachedProvider memoizes another provider's daily timings in Redis.
type CachedProvider struct {
	next prayer.Provider
	kv   KV
	ttl  time.Duration
}

var _ prayer.Provider = (*CachedProvider)(nil)

func NewCachedProvider(next prayer.Provider, kv KV, ttl time.Duration) *CachedProvider {
	return &CachedProvider{next: next, kv: kv, ttl: ttl}
}

func timingsKey(at qiblah.Coordinate, day time.Time) string {
	return fmt.Sprintf("timings:%.4f:%.4f:%s", at.Latitude, at.Longitude, day.Format("2006-01-02"))
}

func (c *CachedProvider) Timings(ctx context.Context, at qiblah.Coordinate, day time.Time) ([]prayer.Entry, error) {
	key := timingsKey(at, day)

	raw, err := c.kv.Get(ctx, key)
	switch {
	case err == nil:
		var entries []prayer.Entry
		if jerr := json.Unmarshal([]byte(raw), &entries); jerr == nil {
			return entries, nil
		}
		log.Warn().Str("key", key).Msg("discarding unreadable cached timings")
	case !errors.Is(err, ErrMiss):
		log.Warn().Err(err).Str("key", key).Msg("timings cache read failed")
	}

	entries, err := c.next.Timings(ctx, at, day)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(entries); err == nil {
		if err := c.kv.Set(ctx, key, string(b), c.ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("timings cache write failed")
		}
	}
	return entries, nil
}
