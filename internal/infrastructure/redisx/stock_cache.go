package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/adega-api/internal/application/inventory"
	"github.com/jhoicas/adega-api/internal/domain/entity"
)

var _ inventory.StockCache = (*StockCache)(nil)

// StockCache snapshot de stock por (producto, tienda) con TTL corto. Es una
// caché best effort: cualquier fallo de Redis degrada a leer la base, nunca
// a un error para el caller.
type StockCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStockCache construye la caché con el TTL configurado.
func NewStockCache(client *redis.Client, ttl time.Duration) *StockCache {
	return &StockCache{client: client, ttl: ttl}
}

type cachedLevel struct {
	ProductID  string    `json:"product_id"`
	Store      int       `json:"store"`
	Packages   int64     `json:"packages"`
	UnitsLoose int64     `json:"units_loose"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func cacheKey(productID string, store entity.Store) string {
	return fmt.Sprintf("adega:stock:%s:%d", productID, int(store))
}

// Get devuelve el snapshot si existe y sigue vigente.
func (c *StockCache) Get(ctx context.Context, productID string, store entity.Store) (*entity.StockLevel, bool) {
	raw, err := c.client.Get(ctx, cacheKey(productID, store)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("product_id", productID).Msg("Fallo leyendo la caché de stock")
		}
		return nil, false
	}
	var cached cachedLevel
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false
	}
	return &entity.StockLevel{
		ProductID:  cached.ProductID,
		Store:      entity.Store(cached.Store),
		Packages:   cached.Packages,
		UnitsLoose: cached.UnitsLoose,
		UpdatedAt:  cached.UpdatedAt,
	}, true
}

// Set guarda el snapshot con TTL. Best effort: el fallo solo se loguea.
func (c *StockCache) Set(ctx context.Context, level *entity.StockLevel) {
	raw, err := json.Marshal(cachedLevel{
		ProductID:  level.ProductID,
		Store:      int(level.Store),
		Packages:   level.Packages,
		UnitsLoose: level.UnitsLoose,
		UpdatedAt:  level.UpdatedAt,
	})
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(level.ProductID, level.Store), raw, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("product_id", level.ProductID).Msg("Fallo escribiendo la caché de stock")
	}
}

// Invalidate borra los snapshots del producto en todas las tiendas. Se llama
// después del commit de cada escritura de stock.
func (c *StockCache) Invalidate(ctx context.Context, productID string) {
	keys := []string{
		cacheKey(productID, entity.StorePrimary),
		cacheKey(productID, entity.StoreSecondary),
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Str("product_id", productID).Msg("Fallo invalidando la caché de stock")
	}
}
