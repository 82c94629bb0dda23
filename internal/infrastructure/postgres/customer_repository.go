package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/adega-api/internal/application/sales"
	"github.com/jhoicas/adega-api/internal/domain"
	"github.com/jhoicas/adega-api/internal/domain/entity"
	"github.com/jhoicas/adega-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)
var _ sales.CustomerInsights = (*CustomerRepo)(nil)

// CustomerRepo lectura de clientes y recálculo de insights (pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// GetByID obtiene un cliente por ID.
func (r *CustomerRepo) GetByID(id string) (*entity.Customer, error) {
	query := `
		SELECT id, name, phone, purchase_count, total_spent, last_purchase_at, created_at
		FROM customers WHERE id = $1`
	var c entity.Customer
	var phone *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&c.ID, &c.Name, &phone, &c.PurchaseCount, &c.TotalSpent, &c.LastPurchaseAt, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	if phone != nil {
		c.Phone = *phone
	}
	return &c, nil
}

// Recalculate recomputa los insights del cliente desde sus ventas reales en
// un solo UPDATE. Se dispara tras cada venta confirmada; es idempotente, así
// que una ejecución repetida no distorsiona nada.
func (r *CustomerRepo) Recalculate(ctx context.Context, customerID string) error {
	query := `
		UPDATE customers c SET
			purchase_count  = agg.purchases,
			total_spent     = agg.spent,
			last_purchase_at = agg.last_at
		FROM (
			SELECT
				count(*)                                   AS purchases,
				coalesce(sum(total_amount - discount_amount), 0) AS spent,
				max(created_at)                            AS last_at
			FROM sales WHERE customer_id = $1
		) agg
		WHERE c.id = $1`
	tag, err := r.q.Exec(ctx, query, customerID)
	if err != nil {
		return fmt.Errorf("recalculate customer insights: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
