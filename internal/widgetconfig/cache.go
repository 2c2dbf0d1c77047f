package widgetconfig

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

const (
	cacheKeyPrefix  = "widget_config:"
	DefaultCacheTTL = 5 * time.Minute
)

// CachedStore fronts a Store with Redis. Cache errors degrade to the
// underlying store.
type CachedStore struct {
	next   Store
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
	logger *logging.Logger
}

func NewCachedStore(next Store, client *redis.Client, ttl time.Duration, logger *logging.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CachedStore{
		next:   next,
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("seher.internal.widgetconfig"),
		logger: logger,
	}
}

func (s *CachedStore) Get(ctx context.Context, projectID string) (*Config, error) {
	ctx, span := s.tracer.Start(ctx, "widgetconfig.cache.get")
	span.SetAttributes(attribute.String("project_id", projectID))
	defer span.End()

	raw, err := s.redis.Get(ctx, cacheKey(projectID)).Bytes()
	switch {
	case err == nil:
		var cfg Config
		if jsonErr := json.Unmarshal(raw, &cfg); jsonErr == nil {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return &cfg, nil
		}
	case !errors.Is(err, redis.Nil):
		span.RecordError(err)
		s.logger.Warn("widget config cache read failed", "project_id", projectID, "error", err)
	}
	span.SetAttributes(attribute.Bool("cache_hit", false))

	cfg, err := s.next.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	s.put(ctx, cfg)
	return cfg, nil
}

func (s *CachedStore) Upsert(ctx context.Context, projectID string, update Update) (*Config, error) {
	ctx, span := s.tracer.Start(ctx, "widgetconfig.cache.upsert")
	span.SetAttributes(attribute.String("project_id", projectID))
	defer span.End()

	cfg, err := s.next.Upsert(ctx, projectID, update)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.put(ctx, cfg)
	return cfg, nil
}

func (s *CachedStore) put(ctx context.Context, cfg *Config) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, cacheKey(cfg.ProjectID), data, s.ttl).Err(); err != nil {
		s.logger.Warn("widget config cache write failed", "project_id", cfg.ProjectID, "error", err)
	}
}

func cacheKey(projectID string) string {
	return cacheKeyPrefix + projectID
}
