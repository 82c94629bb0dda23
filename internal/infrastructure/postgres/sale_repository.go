package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/adega-api/internal/domain"
	"github.com/jhoicas/adega-api/internal/domain/entity"
	"github.com/jhoicas/adega-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo persistencia de ventas sobre PostgreSQL (pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta cabecera y líneas con el mismo Querier: si llega atado a
// una transacción, todo sale en ella.
func (r *SaleRepo) Create(sale *entity.Sale, items []*entity.SaleItem) error {
	_, err := r.q.Exec(context.Background(), `
		INSERT INTO sales (id, customer_id, user_id, total_amount, discount_amount, payment_method, credit_due_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sale.ID, sale.CustomerID, sale.UserID,
		sale.TotalAmount, sale.DiscountAmount, sale.PaymentMethod,
		sale.CreditDueDate, sale.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create sale: %w", err)
	}

	for _, item := range items {
		_, err := r.q.Exec(context.Background(), `
			INSERT INTO sale_items (id, sale_id, product_id, quantity, unit_price, sale_type, package_units)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			item.ID, item.SaleID, item.ProductID,
			item.Quantity, item.UnitPrice, item.SaleType, item.PackageUnits,
		)
		if err != nil {
			return fmt.Errorf("create sale item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la venta con sus líneas.
func (r *SaleRepo) GetByID(id string) (*entity.Sale, []*entity.SaleItem, error) {
	var sale entity.Sale
	err := r.q.QueryRow(context.Background(), `
		SELECT id, customer_id, user_id, total_amount, discount_amount, payment_method, credit_due_date, created_at
		FROM sales WHERE id = $1`, id,
	).Scan(
		&sale.ID, &sale.CustomerID, &sale.UserID,
		&sale.TotalAmount, &sale.DiscountAmount, &sale.PaymentMethod,
		&sale.CreditDueDate, &sale.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get sale: %w", err)
	}

	rows, err := r.q.Query(context.Background(), `
		SELECT id, sale_id, product_id, quantity, unit_price, sale_type, package_units
		FROM sale_items WHERE sale_id = $1
		ORDER BY id`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("get sale items: %w", err)
	}
	defer rows.Close()

	var items []*entity.SaleItem
	for rows.Next() {
		var item entity.SaleItem
		if err := rows.Scan(
			&item.ID, &item.SaleID, &item.ProductID,
			&item.Quantity, &item.UnitPrice, &item.SaleType, &item.PackageUnits,
		); err != nil {
			return nil, nil, fmt.Errorf("scan sale item: %w", err)
		}
		items = append(items, &item)
	}
	return &sale, items, rows.Err()
}

// CountByProduct cantidad de líneas de venta históricas del producto.
func (r *SaleRepo) CountByProduct(productID string) (int64, error) {
	var n int64
	err := r.q.QueryRow(context.Background(),
		`SELECT count(*) FROM sale_items WHERE product_id = $1`, productID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count sales: %w", err)
	}
	return n, nil
}
