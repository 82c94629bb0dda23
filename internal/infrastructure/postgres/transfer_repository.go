package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/adega-api/internal/domain/entity"
	"github.com/jhoicas/adega-api/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo log de traslados entre tiendas sobre PostgreSQL (pool o tx).
// Registros inmutables; las consultas de pertenencia a tienda se derivan de
// este log con EXISTS, nunca de un flag en el producto.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

// Create persiste un traslado.
func (r *TransferRepo) Create(t *entity.StoreTransfer) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	query := `
		INSERT INTO store_transfers (id, product_id, from_store, to_store, packages, units_loose, user_id, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	notes := (*string)(nil)
	if t.Notes != "" {
		notes = &t.Notes
	}
	_, err := r.q.Exec(context.Background(), query,
		t.ID, t.ProductID, int(t.FromStore), int(t.ToStore),
		t.Packages, t.UnitsLoose, t.UserID, notes, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create transfer: %w", err)
	}
	return nil
}

const transferColumns = `id, product_id, from_store, to_store, packages, units_loose, user_id, notes, created_at`

// ListByProduct traslados de un producto, más reciente primero.
func (r *TransferRepo) ListByProduct(productID string, limit, offset int) ([]*entity.StoreTransfer, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM store_transfers WHERE product_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()
	return scanTransfers(rows)
}

// ListRecent traslados recientes de todas las tiendas.
func (r *TransferRepo) ListRecent(limit int) ([]*entity.StoreTransfer, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM store_transfers
		ORDER BY created_at DESC, id DESC
		LIMIT $1`
	rows, err := r.q.Query(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent transfers: %w", err)
	}
	defer rows.Close()
	return scanTransfers(rows)
}

// HasInbound indica si existe al menos un traslado con destino en la tienda.
func (r *TransferRepo) HasInbound(productID string, store entity.Store) (bool, error) {
	var exists bool
	err := r.q.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM store_transfers WHERE product_id = $1 AND to_store = $2)`,
		productID, int(store),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("has inbound transfer: %w", err)
	}
	return exists, nil
}

func scanTransfers(rows pgx.Rows) ([]*entity.StoreTransfer, error) {
	var out []*entity.StoreTransfer
	for rows.Next() {
		var t entity.StoreTransfer
		var notes *string
		if err := rows.Scan(
			&t.ID, &t.ProductID, &t.FromStore, &t.ToStore,
			&t.Packages, &t.UnitsLoose, &t.UserID, &notes, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		if notes != nil {
			t.Notes = *notes
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}
