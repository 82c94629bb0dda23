package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/adega-api/internal/domain"
	"github.com/jhoicas/adega-api/internal/domain/entity"
	"github.com/jhoicas/adega-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación de ProductRepository sobre PostgreSQL (pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `
	id, name, category, barcode, package_barcode,
	price, cost_price, margin_percent,
	package_size, package_price, package_margin,
	created_at, updated_at, deleted_at, deleted_by`

// Create inserta un producto. Código de barras duplicado devuelve Duplicate.
func (r *ProductRepo) Create(p *entity.Product) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(context.Background(), query,
		p.ID, p.Name, p.Category, nullIfEmpty(p.Barcode), nullIfEmpty(p.PackageBarcode),
		p.Price, p.CostPrice, p.MarginPercent,
		p.PackageSize, p.PackagePrice, p.PackageMargin,
		p.CreatedAt, p.UpdatedAt, p.DeletedAt, p.DeletedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// Update sobrescribe los campos editables del producto.
func (r *ProductRepo) Update(p *entity.Product) error {
	query := `
		UPDATE products SET
			name = $2, category = $3, barcode = $4, package_barcode = $5,
			price = $6, cost_price = $7, margin_percent = $8,
			package_size = $9, package_price = $10, package_margin = $11,
			updated_at = $12
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		p.ID, p.Name, p.Category, nullIfEmpty(p.Barcode), nullIfEmpty(p.PackageBarcode),
		p.Price, p.CostPrice, p.MarginPercent,
		p.PackageSize, p.PackagePrice, p.PackageMargin,
		p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene un producto por ID, incluidos los eliminados: el historial
// sigue referenciándolos.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetByBarcode busca entre los activos por código de unidad o de paquete.
func (r *ProductRepo) GetByBarcode(code string) (*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE deleted_at IS NULL AND (barcode = $1 OR package_barcode = $1)`
	p, err := scanProduct(r.q.QueryRow(context.Background(), query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get product by barcode: %w", err)
	}
	return p, nil
}

// ListActiveByStore productos activos visibles en la tienda. La tienda
// secundaria solo muestra productos con al menos un traslado entrante
// registrado: la pertenencia se deriva del log, no de un flag.
func (r *ProductRepo) ListActiveByStore(store entity.Store, limit, offset int) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		WHERE p.deleted_at IS NULL`
	if store == entity.StoreSecondary {
		query += `
		AND EXISTS (
			SELECT 1 FROM store_transfers t
			WHERE t.product_id = p.id AND t.to_store = ` + fmt.Sprintf("%d", int(entity.StoreSecondary)) + `
		)`
	}
	query += `
		ORDER BY p.name
		LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

// ListDeleted productos con soft delete, más reciente primero.
func (r *ProductRepo) ListDeleted(limit, offset int) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE deleted_at IS NOT NULL
		ORDER BY deleted_at DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list deleted products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

// SoftDelete marca el producto como eliminado. La condición deleted_at IS
// NULL va en el mismo UPDATE: dos borrados concurrentes no pueden ganar los
// dos, el segundo ve 0 filas afectadas y recibe Conflict.
func (r *ProductRepo) SoftDelete(id, userID string) error {
	query := `
		UPDATE products SET deleted_at = now(), deleted_by = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`
	tag, err := r.q.Exec(context.Background(), query, id, userID)
	if err != nil {
		return fmt.Errorf("soft delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missingOrConflict(id)
	}
	return nil
}

// Restore limpia la marca de borrado con la técnica inversa.
func (r *ProductRepo) Restore(id string) error {
	query := `
		UPDATE products SET deleted_at = NULL, deleted_by = NULL, updated_at = now()
		WHERE id = $1 AND deleted_at IS NOT NULL`
	tag, err := r.q.Exec(context.Background(), query, id)
	if err != nil {
		return fmt.Errorf("restore product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missingOrConflict(id)
	}
	return nil
}

// missingOrConflict distingue "no existe" de "existe pero el estado no era
// el esperado" tras un UPDATE condicional sin filas afectadas.
func (r *ProductRepo) missingOrConflict(id string) error {
	var exists bool
	err := r.q.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check product: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	var barcode, packageBarcode *string
	err := row.Scan(
		&p.ID, &p.Name, &p.Category, &barcode, &packageBarcode,
		&p.Price, &p.CostPrice, &p.MarginPercent,
		&p.PackageSize, &p.PackagePrice, &p.PackageMargin,
		&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt, &p.DeletedBy,
	)
	if err != nil {
		return nil, err
	}
	if barcode != nil {
		p.Barcode = *barcode
	}
	if packageBarcode != nil {
		p.PackageBarcode = *packageBarcode
	}
	return &p, nil
}

func scanProducts(rows pgx.Rows) ([]*entity.Product, error) {
	var out []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
