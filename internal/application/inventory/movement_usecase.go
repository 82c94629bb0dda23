package inventory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/adega-api/internal/domain"
	"github.com/jhoicas/adega-api/internal/domain/entity"
	"github.com/jhoicas/adega-api/internal/domain/repository"
)

// RegisterMovementUseCase registra movimientos de stock de forma transaccional
// con bloqueo de fila (SELECT FOR UPDATE) y Commit/Rollback. Valida por tipo
// de movimiento antes de escribir nada.
type RegisterMovementUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	movRepo     repository.MovementRepository // lecturas fuera de tx
	cache       StockCache                    // puede ser nil
}

// NewRegisterMovementUseCase construye el caso de uso. cache puede ser nil.
func NewRegisterMovementUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	movRepo repository.MovementRepository,
	cache StockCache,
) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		movRepo:     movRepo,
		cache:       cache,
	}
}

// MovementInput unión etiquetada sobre el tipo de movimiento: cada tipo exige
// exactamente sus campos y se valida de forma exhaustiva antes de escribir.
// Packages/UnitsLoose son magnitudes (>= 0) salvo para inventory_adjustment,
// donde llevan el signo del ajuste; la dirección de los demás tipos la impone
// el tipo mismo.
type MovementInput struct {
	ProductID     string
	Store         entity.Store
	Type          string
	Packages      int64
	UnitsLoose    int64
	Reason        string
	Metadata      map[string]any
	UserID        string
	CustomerID    string           // obligatorio en credit_sale
	SaleID        string           // obligatorio en return; opcional en sale
	CreditAmount  *decimal.Decimal // obligatorio en credit_sale, > 0
	CreditDueDate *time.Time       // obligatorio en credit_sale
}

// signedDeltas valida tipo y magnitudes y devuelve los deltas con signo.
func signedDeltas(in MovementInput) (pkg, units int64, err error) {
	switch in.Type {
	case entity.MovementTypeSale, entity.MovementTypeTransferOut,
		entity.MovementTypePersonalConsumption, entity.MovementTypeCreditSale:
		if in.Packages < 0 || in.UnitsLoose < 0 {
			return 0, 0, &domain.ValidationError{Field: "quantity", Reason: "las salidas llevan magnitudes positivas; el signo lo impone el tipo"}
		}
		pkg, units = -in.Packages, -in.UnitsLoose
	case entity.MovementTypeInitialStock, entity.MovementTypeReturn, entity.MovementTypeTransferIn:
		if in.Packages < 0 || in.UnitsLoose < 0 {
			return 0, 0, &domain.ValidationError{Field: "quantity", Reason: "las entradas llevan magnitudes positivas"}
		}
		pkg, units = in.Packages, in.UnitsLoose
	case entity.MovementTypeAdjustment:
		pkg, units = in.Packages, in.UnitsLoose
	default:
		return 0, 0, &domain.ValidationError{Field: "type", Reason: "tipo de movimiento desconocido"}
	}
	if pkg == 0 && units == 0 {
		return 0, 0, &domain.ValidationError{Field: "quantity", Reason: "la cantidad es obligatoria y no puede ser cero"}
	}
	return pkg, units, nil
}

// validateByType aplica los requisitos propios de cada tipo.
func validateByType(in MovementInput) error {
	switch in.Type {
	case entity.MovementTypeCreditSale:
		if in.CustomerID == "" {
			return &domain.ValidationError{Field: "customer_id", Reason: "una venta fiada exige cliente"}
		}
		if in.CreditAmount == nil || !in.CreditAmount.IsPositive() {
			return &domain.ValidationError{Field: "credit_amount", Reason: "el monto del crédito debe ser positivo"}
		}
		if in.CreditDueDate == nil {
			return &domain.ValidationError{Field: "credit_due_date", Reason: "una venta fiada exige fecha de vencimiento"}
		}
	case entity.MovementTypeReturn:
		if in.SaleID == "" {
			return &domain.ValidationError{Field: "sale_id", Reason: "una devolución referencia la venta original"}
		}
	}
	return nil
}

// RegisterMovement valida la entrada, bloquea la fila del libro de stock,
// aplica el delta y persiste el movimiento con las cantidades resultantes.
// Todo dentro de una transacción; falla con NotFound si el producto no existe
// o está eliminado, y con InsufficientStock si el stock quedaría negativo.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, in MovementInput) (*entity.Movement, error) {
	if in.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	if in.ProductID == "" {
		return nil, &domain.ValidationError{Field: "product_id", Reason: "obligatorio"}
	}
	if !in.Store.Valid() {
		return nil, &domain.ValidationError{Field: "store", Reason: "tienda desconocida"}
	}
	pkgDelta, unitDelta, err := signedDeltas(in)
	if err != nil {
		return nil, err
	}
	if err := validateByType(in); err != nil {
		return nil, err
	}

	product, err := uc.productRepo.GetByID(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.Deleted() {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	var mov *entity.Movement
	err = uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		_ repository.TransferRepository,
		productRepo repository.ProductRepository,
	) error {
		// Re-verificación con la tx abierta: un borrado confirmado entre la
		// validación y este punto corta con NotFound en vez de dejar un
		// movimiento sobre un producto eliminado.
		fresh, err := productRepo.GetByID(in.ProductID)
		if err != nil {
			return err
		}
		if fresh == nil || fresh.Deleted() {
			return domain.ErrNotFound
		}
		before, after, err := applyDelta(stockRepo, in.ProductID, in.Store, pkgDelta, unitDelta, now)
		if err != nil {
			return err
		}
		mov = buildMovement(fresh, in, pkgDelta, unitDelta, before, after, now)
		return movRepo.Create(mov)
	})
	if err != nil {
		return nil, err
	}
	uc.invalidate(ctx, in.ProductID)
	return mov, nil
}

// SetStockInput entrada para fijar el stock de una tienda a valores absolutos.
type SetStockInput struct {
	ProductID     string
	Store         entity.Store
	NewPackages   int64
	NewUnitsLoose int64
	Reason        string
	UserID        string
}

// SetStockAbsolute calcula el delta contra la fila bloqueada y registra un
// único movimiento inventory_adjustment. Si los valores coinciden con los
// actuales no se registra nada y se devuelve (nil, nil).
func (uc *RegisterMovementUseCase) SetStockAbsolute(ctx context.Context, in SetStockInput) (*entity.Movement, error) {
	if in.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	if in.ProductID == "" {
		return nil, &domain.ValidationError{Field: "product_id", Reason: "obligatorio"}
	}
	if !in.Store.Valid() {
		return nil, &domain.ValidationError{Field: "store", Reason: "tienda desconocida"}
	}
	if in.NewPackages < 0 || in.NewUnitsLoose < 0 {
		return nil, &domain.ValidationError{Field: "quantity", Reason: "el stock no puede ser negativo"}
	}

	product, err := uc.productRepo.GetByID(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.Deleted() {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	var mov *entity.Movement
	err = uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		_ repository.TransferRepository,
		productRepo repository.ProductRepository,
	) error {
		fresh, err := productRepo.GetByID(in.ProductID)
		if err != nil {
			return err
		}
		if fresh == nil || fresh.Deleted() {
			return domain.ErrNotFound
		}
		current, err := stockRepo.GetForUpdate(in.ProductID, in.Store)
		if err != nil {
			return err
		}
		pkgDelta := in.NewPackages - current.Packages
		unitDelta := in.NewUnitsLoose - current.UnitsLoose
		if pkgDelta == 0 && unitDelta == 0 {
			return nil
		}
		before, after, err := applyDelta(stockRepo, in.ProductID, in.Store, pkgDelta, unitDelta, now)
		if err != nil {
			return err
		}
		adjIn := MovementInput{
			ProductID: in.ProductID,
			Store:     in.Store,
			Type:      entity.MovementTypeAdjustment,
			Reason:    in.Reason,
			UserID:    in.UserID,
			Metadata: map[string]any{
				"operation":       "stock_absolute",
				"new_packages":    in.NewPackages,
				"new_units_loose": in.NewUnitsLoose,
			},
		}
		mov = buildMovement(fresh, adjIn, pkgDelta, unitDelta, before, after, now)
		return movRepo.Create(mov)
	})
	if err != nil {
		return nil, err
	}
	if mov != nil {
		uc.invalidate(ctx, in.ProductID)
	}
	return mov, nil
}

// ListMovements consulta el historial sin tomar bloqueos.
func (uc *RegisterMovementUseCase) ListMovements(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	if f.Limit <= 0 {
		f.Limit = 100
	}
	return uc.movRepo.List(f)
}

// CheckSaleItemInTx bloquea la fila de stock y verifica disponibilidad sin
// escribir. Lo usa el checkout para validar todos los ítems antes de mutar
// el primero (misma transacción del caller).
func (uc *RegisterMovementUseCase) CheckSaleItemInTx(
	stockRepo repository.StockRepository,
	productID string,
	store entity.Store,
	packages, unitsLoose int64,
) error {
	current, err := stockRepo.GetForUpdate(productID, store)
	if err != nil {
		return err
	}
	return checkAvailable(current, packages, unitsLoose)
}

// DebitSaleItemInTx ejecuta el débito de una línea de venta usando los
// repositorios del caller (misma transacción): aplica el delta negativo y
// crea el movimiento sale o credit_sale ligado a la venta.
func (uc *RegisterMovementUseCase) DebitSaleItemInTx(
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	product *entity.Product,
	store entity.Store,
	packages, unitsLoose int64,
	userID, saleID, customerID string,
	creditAmount *decimal.Decimal,
	creditDueDate *time.Time,
	metadata map[string]any,
	now time.Time,
) (*entity.Movement, error) {
	before, after, err := applyDelta(stockRepo, product.ID, store, -packages, -unitsLoose, now)
	if err != nil {
		return nil, err
	}
	movType := entity.MovementTypeSale
	if creditAmount != nil {
		movType = entity.MovementTypeCreditSale
	}
	in := MovementInput{
		ProductID:     product.ID,
		Store:         store,
		Type:          movType,
		UserID:        userID,
		CustomerID:    customerID,
		SaleID:        saleID,
		CreditAmount:  creditAmount,
		CreditDueDate: creditDueDate,
		Metadata:      metadata,
	}
	mov := buildMovement(product, in, -packages, -unitsLoose, before, after, now)
	if err := movRepo.Create(mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// InvalidateStock expone la invalidación de caché para casos de uso que
// ejecutan débitos dentro de su propia transacción (checkout).
func (uc *RegisterMovementUseCase) InvalidateStock(ctx context.Context, productID string) {
	uc.invalidate(ctx, productID)
}

func (uc *RegisterMovementUseCase) invalidate(ctx context.Context, productID string) {
	if uc.cache != nil {
		uc.cache.Invalidate(ctx, productID)
	}
}

// buildMovement arma la entidad con la cadena antes/después en unidades.
func buildMovement(
	product *entity.Product,
	in MovementInput,
	pkgDelta, unitDelta int64,
	before, after *entity.StockLevel,
	now time.Time,
) *entity.Movement {
	prev := before.TotalUnits(product.PackageSize)
	next := after.TotalUnits(product.PackageSize)
	mov := &entity.Movement{
		ID:               uuid.New().String(),
		ProductID:        product.ID,
		Store:            in.Store,
		Type:             in.Type,
		PackageChange:    pkgDelta,
		UnitsLooseChange: unitDelta,
		QuantityChange:   next - prev,
		PreviousQuantity: prev,
		NewQuantity:      next,
		Reason:           in.Reason,
		Metadata:         marshalMetadata(in.Metadata),
		UserID:           in.UserID,
		CreditAmount:     in.CreditAmount,
		CreditDueDate:    in.CreditDueDate,
		CreatedAt:        now,
	}
	if in.CustomerID != "" {
		mov.CustomerID = &in.CustomerID
	}
	if in.SaleID != "" {
		mov.SaleID = &in.SaleID
	}
	return mov
}

func marshalMetadata(m map[string]any) json.RawMessage {
	if len(m) == 0 {
		return nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return raw
}
