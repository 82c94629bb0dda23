package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/adega-api/internal/domain/entity"
	"github.com/jhoicas/adega-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
// El libro de stock tiene una fila por (producto, tienda) con dos cantidades
// independientes: paquetes cerrados y unidades sueltas.
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock actual de un producto en una tienda. Sin fila previa
// devuelve una fila en cero, nunca error.
func (r *StockRepo) Get(productID string, store entity.Store) (*entity.StockLevel, error) {
	query := `
		SELECT product_id, store, packages, units_loose, updated_at
		FROM stock_levels WHERE product_id = $1 AND store = $2`
	var s entity.StockLevel
	err := r.q.QueryRow(context.Background(), query, productID, int(store)).Scan(
		&s.ProductID, &s.Store, &s.Packages, &s.UnitsLoose, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockLevel{ProductID: productID, Store: store}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// GetForUpdate obtiene el stock y bloquea la fila (SELECT FOR UPDATE) para
// serializar escritores concurrentes sobre la misma clave.
func (r *StockRepo) GetForUpdate(productID string, store entity.Store) (*entity.StockLevel, error) {
	query := `
		SELECT product_id, store, packages, units_loose, updated_at
		FROM stock_levels WHERE product_id = $1 AND store = $2
		FOR UPDATE`
	var s entity.StockLevel
	err := r.q.QueryRow(context.Background(), query, productID, int(store)).Scan(
		&s.ProductID, &s.Store, &s.Packages, &s.UnitsLoose, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockLevel{ProductID: productID, Store: store}, nil
		}
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return &s, nil
}

// Upsert inserta o actualiza las cantidades (por producto y tienda).
func (r *StockRepo) Upsert(level *entity.StockLevel) error {
	query := `
		INSERT INTO stock_levels (product_id, store, packages, units_loose, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (product_id, store)
		DO UPDATE SET packages = EXCLUDED.packages, units_loose = EXCLUDED.units_loose, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query,
		level.ProductID, int(level.Store), level.Packages, level.UnitsLoose,
	)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

// ListByProduct niveles del producto en todas las tiendas con fila registrada.
func (r *StockRepo) ListByProduct(productID string) ([]*entity.StockLevel, error) {
	query := `
		SELECT product_id, store, packages, units_loose, updated_at
		FROM stock_levels WHERE product_id = $1
		ORDER BY store`
	rows, err := r.q.Query(context.Background(), query, productID)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()

	var out []*entity.StockLevel
	for rows.Next() {
		var s entity.StockLevel
		if err := rows.Scan(&s.ProductID, &s.Store, &s.Packages, &s.UnitsLoose, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
