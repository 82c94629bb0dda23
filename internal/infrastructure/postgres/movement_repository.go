package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/adega-api/internal/domain"
	"github.com/jhoicas/adega-api/internal/domain/entity"
	"github.com/jhoicas/adega-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación sobre PostgreSQL (usable con pool o tx).
// Los movimientos son inmutables: solo INSERT y SELECT, nunca UPDATE/DELETE.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste un movimiento de stock.
func (r *MovementRepo) Create(m *entity.Movement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_movements (
			id, product_id, store, type,
			package_change, units_loose_change, quantity_change,
			previous_quantity, new_quantity,
			reason, metadata, user_id, customer_id, sale_id,
			credit_amount, credit_due_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	reason := (*string)(nil)
	if m.Reason != "" {
		reason = &m.Reason
	}
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.ProductID, int(m.Store), m.Type,
		m.PackageChange, m.UnitsLooseChange, m.QuantityChange,
		m.PreviousQuantity, m.NewQuantity,
		reason, m.Metadata, m.UserID, m.CustomerID, m.SaleID,
		m.CreditAmount, m.CreditDueDate, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

const movementColumns = `
	id, product_id, store, type,
	package_change, units_loose_change, quantity_change,
	previous_quantity, new_quantity,
	reason, metadata, user_id, customer_id, sale_id,
	credit_amount, credit_due_date, created_at`

// GetByID obtiene un movimiento por ID.
func (r *MovementRepo) GetByID(id string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// List consulta el historial con filtros opcionales, más reciente primero.
func (r *MovementRepo) List(f repository.MovementFilter) ([]*entity.Movement, error) {
	var conditions []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.ProductID != "" {
		conditions = append(conditions, "product_id = "+arg(f.ProductID))
	}
	if f.Store != nil {
		conditions = append(conditions, "store = "+arg(int(*f.Store)))
	}
	if f.Type != "" {
		conditions = append(conditions, "type = "+arg(f.Type))
	}
	if f.UserID != "" {
		conditions = append(conditions, "user_id = "+arg(f.UserID))
	}
	if f.From != nil {
		conditions = append(conditions, "created_at >= "+arg(*f.From))
	}
	if f.To != nil {
		conditions = append(conditions, "created_at < "+arg(*f.To))
	}

	query := `SELECT ` + movementColumns + ` FROM inventory_movements`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	query += " LIMIT " + arg(f.Limit)
	if f.Offset > 0 {
		query += " OFFSET " + arg(f.Offset)
	}

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var out []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// CountByProduct cantidad de movimientos históricos del producto.
func (r *MovementRepo) CountByProduct(productID string) (int64, error) {
	var n int64
	err := r.q.QueryRow(context.Background(),
		`SELECT count(*) FROM inventory_movements WHERE product_id = $1`, productID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count movements: %w", err)
	}
	return n, nil
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	var reason *string
	err := row.Scan(
		&m.ID, &m.ProductID, &m.Store, &m.Type,
		&m.PackageChange, &m.UnitsLooseChange, &m.QuantityChange,
		&m.PreviousQuantity, &m.NewQuantity,
		&reason, &m.Metadata, &m.UserID, &m.CustomerID, &m.SaleID,
		&m.CreditAmount, &m.CreditDueDate, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if reason != nil {
		m.Reason = *reason
	}
	return &m, nil
}
