package busytime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/coachbook/coachbook_backend/internal/service/schedule"
	"github.com/coachbook/coachbook_backend/pkg/reqctx"
	"github.com/coachbook/coachbook_backend/pkg/slotengine"
)

const cacheKeyPrefix = "coachbook:busy:"

func CacheKey(coachID uuid.UUID) string {
	return cacheKeyPrefix + coachID.String()
}

// ---------------------------------------------------------------------------
// Dependencies
// ---------------------------------------------------------------------------

// Cache stores encoded busy lists. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type FreeBusyClient interface {
	FreeBusy(ctx context.Context, accessToken string, calendarIDs []string, from, to time.Time) ([]slotengine.BusyInterval, error)
}

type Config struct {
	Horizon time.Duration
	TTL     time.Duration
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Provider interface {
	// BusyIntervals returns the coach's busy intervals from now to the end of
	// the horizon. A nil integration yields an empty list.
	BusyIntervals(ctx context.Context, coachID uuid.UUID, in *schedule.Integration, now time.Time) ([]slotengine.BusyInterval, error)
	Invalidate(ctx context.Context, coachID uuid.UUID) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type provider struct {
	client FreeBusyClient
	cache  Cache
	cfg    Config
	logger *slog.Logger
}

// New builds a Provider. cache may be nil, in which case every call goes to
// the calendar.
func New(client FreeBusyClient, cache Cache, cfg Config, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &provider{client: client, cache: cache, cfg: cfg, logger: logger}
}

func (p *provider) BusyIntervals(ctx context.Context, coachID uuid.UUID, in *schedule.Integration, now time.Time) ([]slotengine.BusyInterval, error) {
	if in == nil || in.CalendarID == "" {
		return []slotengine.BusyInterval{}, nil
	}
	log := reqctx.Logger(ctx, p.logger).With("coach_id", coachID.String())
	key := CacheKey(coachID)

	if p.cache != nil && p.cfg.TTL > 0 {
		raw, ok, err := p.cache.Get(ctx, key)
		switch {
		case err != nil:
			log.Warn("busytime: cache read failed", "err", err)
		case ok:
			var cached []slotengine.BusyInterval
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
			log.Warn("busytime: dropping undecodable cache entry", "key", key)
		}
	}

	busy, err := p.client.FreeBusy(ctx, in.AccessToken, []string{in.CalendarID}, now, now.Add(p.cfg.Horizon))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCalendarUnavailable, err)
	}

	if p.cache != nil && p.cfg.TTL > 0 {
		raw, err := json.Marshal(busy)
		if err == nil {
			err = p.cache.Set(ctx, key, raw, p.cfg.TTL)
		}
		if err != nil {
			log.Warn("busytime: cache write failed", "err", err)
		}
	}

	return busy, nil
}

func (p *provider) Invalidate(ctx context.Context, coachID uuid.UUID) error {
	if p.cache == nil {
		return nil
	}
	if err := p.cache.Delete(ctx, CacheKey(coachID)); err != nil {
		return fmt.Errorf("invalidate busy cache: %w", err)
	}
	return nil
}
