package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jhoicas/adega-api/internal/domain"
)

// Tipos de operación que viajan por la cola de replay.
const (
	OpRegisterMovement = "register_movement"
	OpSetStockAbsolute = "set_stock_absolute"
)

// IsPermanentError clasifica fallos al aplicar una operación: un error de
// dominio dará el mismo resultado en cada reintento, así que no se reencola;
// el resto se trata como fallo de infraestructura transitorio.
func IsPermanentError(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, domain.ErrInsufficientStock) ||
		errors.Is(err, domain.ErrUnauthorized)
}

// NewReplayApplier devuelve la función que el worker de replay usa para
// aplicar operaciones encoladas contra el motor de stock real. Los payloads
// son las mismas entradas de los casos de uso, serializadas al encolar.
func NewReplayApplier(uc *RegisterMovementUseCase) func(ctx context.Context, op QueuedOperation) error {
	return func(ctx context.Context, op QueuedOperation) error {
		switch op.Kind {
		case OpRegisterMovement:
			var in MovementInput
			if err := json.Unmarshal(op.Payload, &in); err != nil {
				return fmt.Errorf("unmarshal movement payload: %w", err)
			}
			_, err := uc.RegisterMovement(ctx, in)
			return err
		case OpSetStockAbsolute:
			var in SetStockInput
			if err := json.Unmarshal(op.Payload, &in); err != nil {
				return fmt.Errorf("unmarshal set-stock payload: %w", err)
			}
			_, err := uc.SetStockAbsolute(ctx, in)
			return err
		default:
			return fmt.Errorf("operación de replay desconocida: %q", op.Kind)
		}
	}
}
