package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/cosmetica/internal/domain"
)

const (
	productKeyPrefix = "product:"
	notFoundMarker   = "notfound"
	notFoundTTL      = time.Minute
)

// ProductCache caches single product lookups in front of a ProductRepo.
// Product writes drop the product's key; category writes drop every product
// key since cached products embed their category.
type ProductCache struct {
	domain.ProductRepo
	rdb *redis.Client
	ttl time.Duration
}

func NewProductCache(repo domain.ProductRepo, rdb *redis.Client, ttl time.Duration) *ProductCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ProductCache{ProductRepo: repo, rdb: rdb, ttl: ttl}
}

func productKey(id uuid.UUID) string { return productKeyPrefix + id.String() }

func (c *ProductCache) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	key := productKey(id)
	data, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if string(data) == notFoundMarker {
			return nil, domain.ErrNotFound
		}
		var p domain.Product
		if err := json.Unmarshal(data, &p); err == nil {
			return &p, nil
		}
		log.Warn().Err(err).Str("key", key).Msg("cached product unreadable, using db")
	case errors.Is(err, redis.Nil):
	default:
		log.Warn().Err(err).Msg("redis get, using db")
	}

	p, err := c.ProductRepo.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		if err := c.rdb.Set(ctx, key, notFoundMarker, notFoundTTL).Err(); err != nil {
			log.Warn().Err(err).Msg("cache notfound")
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(p); err == nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			log.Warn().Err(err).Msg("cache product")
		}
	}
	return p, nil
}

func (c *ProductCache) Create(ctx context.Context, p *domain.Product) error {
	if err := c.ProductRepo.Create(ctx, p); err != nil {
		return err
	}
	// a negative entry may exist for a caller-chosen id
	c.invalidate(ctx, p.ID)
	return nil
}

func (c *ProductCache) Save(ctx context.Context, p *domain.Product) error {
	err := c.ProductRepo.Save(ctx, p)
	c.invalidate(ctx, p.ID)
	return err
}

func (c *ProductCache) Delete(ctx context.Context, id uuid.UUID) error {
	err := c.ProductRepo.Delete(ctx, id)
	c.invalidate(ctx, id)
	return err
}

func (c *ProductCache) invalidate(ctx context.Context, id uuid.UUID) {
	if err := c.rdb.Del(ctx, productKey(id)).Err(); err != nil {
		log.Warn().Err(err).Str("product_id", id.String()).Msg("invalidate product cache")
	}
}

// Purge drops every cached product.
func (c *ProductCache) Purge(ctx context.Context) {
	iter := c.rdb.Scan(ctx, 0, productKeyPrefix+"*", 200).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Warn().Err(err).Msg("scan product cache")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Msg("purge product cache")
	}
}

// CategoryWrites purges the product cache after every category write.
type CategoryWrites struct {
	domain.CategoryRepo
	Products *ProductCache
}

func (c *CategoryWrites) Save(ctx context.Context, cat *domain.Category) error {
	err := c.CategoryRepo.Save(ctx, cat)
	c.Products.Purge(ctx)
	return err
}

func (c *CategoryWrites) Delete(ctx context.Context, id uuid.UUID) error {
	err := c.CategoryRepo.Delete(ctx, id)
	c.Products.Purge(ctx)
	return err
}
