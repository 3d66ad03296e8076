package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"blog-cms/metrics"
	"blog-cms/models"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const categoryListKey = "blog:categories:ordered"

type cachedCategoryRepository struct {
	next  CategoryRepository
	redis *redis.Client
	ttl   time.Duration
	group singleflight.Group
}

// NewCachedCategoryRepository caches the ordered category list in Redis. A nil
// client returns next unchanged. Redis failures fall through to next.
func NewCachedCategoryRepository(next CategoryRepository, client *redis.Client, ttl time.Duration) CategoryRepository {
	if client == nil {
		return next
	}
	return &cachedCategoryRepository{next: next, redis: client, ttl: ttl}
}

func (r *cachedCategoryRepository) ListOrdered(ctx context.Context) ([]models.Category, error) {
	raw, err := r.redis.Get(ctx, categoryListKey).Bytes()
	switch {
	case err == nil:
		var categories []models.Category
		if jsonErr := json.Unmarshal(raw, &categories); jsonErr == nil {
			metrics.CategoryCacheTotal.WithLabelValues("hit").Inc()
			return categories, nil
		}
		slog.WarnContext(ctx, "discarding undecodable category cache entry")
	case !errors.Is(err, redis.Nil):
		slog.WarnContext(ctx, "category cache read failed", "error", err)
	}
	metrics.CategoryCacheTotal.WithLabelValues("miss").Inc()

	// Concurrent misses share one database read. The read must not die with
	// whichever caller happened to start it, so it drops that caller's cancel.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := r.group.Do(categoryListKey, func() (interface{}, error) {
		categories, err := r.next.ListOrdered(loadCtx)
		if err != nil {
			return nil, err
		}
		if payload, err := json.Marshal(categories); err == nil {
			if err := r.redis.Set(loadCtx, categoryListKey, payload, r.ttl).Err(); err != nil {
				slog.WarnContext(loadCtx, "category cache write failed", "error", err)
			}
		}
		return categories, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Category), nil
}

func (r *cachedCategoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	return r.next.GetByID(ctx, id)
}

func (r *cachedCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if err := r.next.Create(ctx, category); err != nil {
		return err
	}
	if err := r.redis.Del(ctx, categoryListKey).Err(); err != nil {
		slog.WarnContext(ctx, "category cache invalidation failed", "error", err)
	}
	return nil
}
