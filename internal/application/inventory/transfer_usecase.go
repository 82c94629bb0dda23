package inventory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/adega-api/internal/domain"
	"github.com/jhoicas/adega-api/internal/domain/entity"
	"github.com/jhoicas/adega-api/internal/domain/repository"
)

// TransferUseCase mueve stock entre tiendas de forma atómica: el débito del
// origen, el crédito del destino, el registro de la transferencia y el par de
// movimientos salen en la misma transacción o no sale nada.
type TransferUseCase struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	transferRepo repository.TransferRepository // lecturas fuera de tx
	auditRepo    repository.AuditRepository
	cache        StockCache // puede ser nil
}

// NewTransferUseCase construye el caso de uso. cache puede ser nil.
func NewTransferUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	transferRepo repository.TransferRepository,
	auditRepo repository.AuditRepository,
	cache StockCache,
) *TransferUseCase {
	return &TransferUseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		transferRepo: transferRepo,
		auditRepo:    auditRepo,
		cache:        cache,
	}
}

// TransferInput entrada de una transferencia entre tiendas.
type TransferInput struct {
	ProductID  string
	FromStore  entity.Store
	ToStore    entity.Store
	Packages   int64
	UnitsLoose int64
	UserID     string
	Notes      string
}

// TransferResult transferencia registrada junto con su par de movimientos.
type TransferResult struct {
	Transfer *entity.StoreTransfer
	Out      *entity.Movement
	In       *entity.Movement
}

// Transfer valida, verifica disponibilidad en el origen con la fila bloqueada
// y ejecuta ambos lados. La suma total del producto entre tiendas no cambia.
func (uc *TransferUseCase) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	if in.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	if in.ProductID == "" {
		return nil, &domain.ValidationError{Field: "product_id", Reason: "obligatorio"}
	}
	if !in.FromStore.Valid() || !in.ToStore.Valid() {
		return nil, &domain.ValidationError{Field: "store", Reason: "tienda desconocida"}
	}
	if in.FromStore == in.ToStore {
		return nil, &domain.ValidationError{Field: "to_store", Reason: "el origen y el destino no pueden coincidir"}
	}
	if in.Packages < 0 || in.UnitsLoose < 0 {
		return nil, &domain.ValidationError{Field: "quantity", Reason: "las cantidades no pueden ser negativas"}
	}
	if in.Packages == 0 && in.UnitsLoose == 0 {
		return nil, &domain.ValidationError{Field: "quantity", Reason: "se transfiere al menos un paquete o una unidad suelta"}
	}

	product, err := uc.productRepo.GetByID(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.Deleted() {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	result := &TransferResult{}
	err = uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		transferRepo repository.TransferRepository,
		productRepo repository.ProductRepository,
	) error {
		// El producto se re-verifica con la tx abierta: un borrado
		// concurrente aborta el traslado.
		fresh, err := productRepo.GetByID(in.ProductID)
		if err != nil {
			return err
		}
		if fresh == nil || fresh.Deleted() {
			return domain.ErrNotFound
		}

		// Primero se valida el origen con la fila bloqueada; si falta stock
		// de cualquiera de los dos tipos no se escribe nada.
		source, err := stockRepo.GetForUpdate(in.ProductID, in.FromStore)
		if err != nil {
			return err
		}
		if err := checkAvailable(source, in.Packages, in.UnitsLoose); err != nil {
			return err
		}

		transfer := &entity.StoreTransfer{
			ID:         uuid.New().String(),
			ProductID:  in.ProductID,
			FromStore:  in.FromStore,
			ToStore:    in.ToStore,
			Packages:   in.Packages,
			UnitsLoose: in.UnitsLoose,
			UserID:     in.UserID,
			Notes:      in.Notes,
			CreatedAt:  now,
		}
		if err := transferRepo.Create(transfer); err != nil {
			return err
		}

		outBefore, outAfter, err := applyDelta(stockRepo, in.ProductID, in.FromStore, -in.Packages, -in.UnitsLoose, now)
		if err != nil {
			return err
		}
		meta := map[string]any{
			"transfer_id":   transfer.ID,
			"counter_store": int(in.ToStore),
		}
		outIn := MovementInput{
			ProductID: in.ProductID,
			Store:     in.FromStore,
			Type:      entity.MovementTypeTransferOut,
			Reason:    in.Notes,
			UserID:    in.UserID,
			Metadata:  meta,
		}
		result.Out = buildMovement(fresh, outIn, -in.Packages, -in.UnitsLoose, outBefore, outAfter, now)
		if err := movRepo.Create(result.Out); err != nil {
			return err
		}

		inBefore, inAfter, err := applyDelta(stockRepo, in.ProductID, in.ToStore, in.Packages, in.UnitsLoose, now)
		if err != nil {
			return err
		}
		inMeta := map[string]any{
			"transfer_id":   transfer.ID,
			"counter_store": int(in.FromStore),
		}
		inIn := MovementInput{
			ProductID: in.ProductID,
			Store:     in.ToStore,
			Type:      entity.MovementTypeTransferIn,
			Reason:    in.Notes,
			UserID:    in.UserID,
			Metadata:  inMeta,
		}
		result.In = buildMovement(fresh, inIn, in.Packages, in.UnitsLoose, inBefore, inAfter, now)
		if err := movRepo.Create(result.In); err != nil {
			return err
		}

		result.Transfer = transfer
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.invalidate(ctx, in.ProductID)
	uc.audit(result.Transfer)
	return result, nil
}

// ListByProduct historial de transferencias de un producto, más reciente primero.
func (uc *TransferUseCase) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StoreTransfer, error) {
	if productID == "" {
		return nil, &domain.ValidationError{Field: "product_id", Reason: "obligatorio"}
	}
	if limit <= 0 {
		limit = 100
	}
	return uc.transferRepo.ListByProduct(productID, limit, offset)
}

// ListRecent transferencias recientes de todas las tiendas.
func (uc *TransferUseCase) ListRecent(ctx context.Context, limit int) ([]*entity.StoreTransfer, error) {
	if limit <= 0 {
		limit = 50
	}
	return uc.transferRepo.ListRecent(limit)
}

func (uc *TransferUseCase) invalidate(ctx context.Context, productID string) {
	if uc.cache != nil {
		uc.cache.Invalidate(ctx, productID)
	}
}

// audit registra el evento fuera de la transacción; un fallo aquí no revierte
// la transferencia, solo se loguea.
func (uc *TransferUseCase) audit(t *entity.StoreTransfer) {
	if uc.auditRepo == nil {
		return
	}
	details, _ := json.Marshal(map[string]any{
		"product_id":  t.ProductID,
		"from_store":  int(t.FromStore),
		"to_store":    int(t.ToStore),
		"packages":    t.Packages,
		"units_loose": t.UnitsLoose,
	})
	event := &entity.AuditEvent{
		ID:          uuid.New().String(),
		Action:      entity.AuditActionTransfer,
		SubjectType: "store_transfer",
		SubjectID:   t.ID,
		UserID:      t.UserID,
		Details:     details,
		CreatedAt:   time.Now(),
	}
	if err := uc.auditRepo.Append(event); err != nil {
		log.Error().Err(err).Str("transfer_id", t.ID).Msg("No se pudo registrar la auditoría de transferencia")
	}
}
