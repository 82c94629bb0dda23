package inventory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jhoicas/adega-api/internal/domain/entity"
	"github.com/jhoicas/adega-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de stock.
// El catálogo viaja también: el estado del producto se re-verifica con la
// transacción abierta, no solo en la validación previa.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		transferRepo repository.TransferRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// StockCache instantánea de stock con TTL corto para lecturas con staleness
// acotada. Nunca se consulta dentro de una transacción; los caminos de
// escritura invalidan después del commit (best effort).
type StockCache interface {
	Get(ctx context.Context, productID string, store entity.Store) (*entity.StockLevel, bool)
	Set(ctx context.Context, level *entity.StockLevel)
	Invalidate(ctx context.Context, productID string)
}

// QueuedOperation operación serializada pendiente de replay.
type QueuedOperation struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	Attempts   int             `json:"attempts"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// ReplayQueue cola durable de operaciones que no alcanzaron la capa de
// persistencia. El replay es FIFO estricto: nunca reordena ni paraleliza
// operaciones, así el orden por clave (producto, tienda) se conserva.
// Cada entrada se reintenta con backoff acotado; agotados los intentos se
// reporta como fallo permanente, no se reintenta indefinidamente.
type ReplayQueue interface {
	Append(ctx context.Context, op QueuedOperation) error
	Replay(ctx context.Context, apply func(ctx context.Context, op QueuedOperation) error) error
	Close() error
}
