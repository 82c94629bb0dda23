package sales

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/adega-api/internal/domain"
	"github.com/jhoicas/adega-api/internal/domain/entity"
	"github.com/jhoicas/adega-api/internal/domain/repository"
)

// CheckoutUseCase registra una venta completa en una sola transacción:
// cabecera, líneas, débitos de stock y movimientos. Se validan y bloquean
// todas las filas antes de mutar la primera, así un fallo en cualquier línea
// aborta sin dejar estado parcial.
type CheckoutUseCase struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	debitor      StockDebitor
	auditRepo    repository.AuditRepository
	insights     CustomerInsights // puede ser nil
}

// NewCheckoutUseCase construye el caso de uso. insights puede ser nil.
func NewCheckoutUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	debitor StockDebitor,
	auditRepo repository.AuditRepository,
	insights CustomerInsights,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		debitor:      debitor,
		auditRepo:    auditRepo,
		insights:     insights,
	}
}

// SaleItemInput línea de venta: Quantity cuenta paquetes o unidades sueltas
// según SaleType.
type SaleItemInput struct {
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal
	SaleType  string
}

// SaleInput entrada del checkout. Las ventas se despachan desde la tienda
// principal; el depósito se abastece solo por traslados.
type SaleInput struct {
	Items          []SaleItemInput
	CustomerID     string
	UserID         string
	PaymentMethod  string
	DiscountAmount decimal.Decimal
	CreditDueDate  *time.Time // obligatorio con pago fiado
}

// SaleResult venta confirmada con sus líneas y movimientos.
type SaleResult struct {
	Sale      *entity.Sale
	Items     []*entity.SaleItem
	Movements []*entity.Movement
}

// itemDebit línea resuelta contra el catálogo, con su débito por tipo.
type itemDebit struct {
	product    *entity.Product
	item       *entity.SaleItem
	packages   int64
	unitsLoose int64
}

// RecordSale valida todas las líneas, bloquea las filas de stock en orden
// determinista de producto y ejecuta la venta completa. Cualquier fallo de
// disponibilidad aborta antes de la primera escritura.
func (uc *CheckoutUseCase) RecordSale(ctx context.Context, in SaleInput) (*SaleResult, error) {
	if in.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	if len(in.Items) == 0 {
		return nil, &domain.ValidationError{Field: "items", Reason: "una venta exige al menos una línea"}
	}
	if in.DiscountAmount.IsNegative() {
		return nil, &domain.ValidationError{Field: "discount_amount", Reason: "el descuento no puede ser negativo"}
	}

	fiado := in.PaymentMethod == entity.PaymentMethodCredit
	if fiado {
		if in.CustomerID == "" {
			return nil, &domain.ValidationError{Field: "customer_id", Reason: "una venta fiada exige cliente"}
		}
		if in.CreditDueDate == nil {
			return nil, &domain.ValidationError{Field: "credit_due_date", Reason: "una venta fiada exige fecha de vencimiento"}
		}
	}
	if in.CustomerID != "" {
		if _, err := uc.customerRepo.GetByID(in.CustomerID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	saleID := uuid.New().String()
	debits, total, err := uc.resolveItems(in, saleID)
	if err != nil {
		return nil, err
	}
	if in.DiscountAmount.GreaterThan(total) {
		return nil, &domain.ValidationError{Field: "discount_amount", Reason: "el descuento no puede superar el total"}
	}

	sale := &entity.Sale{
		ID:             saleID,
		UserID:         in.UserID,
		TotalAmount:    total,
		DiscountAmount: in.DiscountAmount,
		PaymentMethod:  in.PaymentMethod,
		CreditDueDate:  in.CreditDueDate,
		CreatedAt:      now,
	}
	if in.CustomerID != "" {
		sale.CustomerID = &in.CustomerID
	}

	var credits []decimal.Decimal
	if fiado {
		credits = prorateCredit(debits, total, in.DiscountAmount)
	}

	result := &SaleResult{Sale: sale}
	err = uc.txRunner.RunSale(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		saleRepo repository.SaleRepository,
		productRepo repository.ProductRepository,
	) error {
		// El catálogo se re-verifica con la tx abierta: un borrado
		// confirmado después de resolveItems aborta la venta completa.
		if err := uc.recheckProducts(productRepo, debits); err != nil {
			return err
		}

		// Primera pasada: bloquear cada producto en orden y verificar la
		// disponibilidad agregada de la venta completa. Nada se escribe
		// hasta que todas las líneas pasan.
		if err := uc.lockAndCheck(stockRepo, debits); err != nil {
			return err
		}

		items := make([]*entity.SaleItem, len(debits))
		for i, d := range debits {
			items[i] = d.item
		}
		if err := saleRepo.Create(sale, items); err != nil {
			return err
		}
		result.Items = items

		// Segunda pasada: débitos y movimientos, ya sin posibilidad de
		// fallo por stock.
		for i, d := range debits {
			var creditAmount *decimal.Decimal
			if fiado {
				share := credits[i]
				creditAmount = &share
			}
			mov, err := uc.debitor.DebitSaleItemInTx(
				movRepo, stockRepo,
				d.product, entity.StorePrimary,
				d.packages, d.unitsLoose,
				in.UserID, saleID, in.CustomerID,
				creditAmount, in.CreditDueDate,
				map[string]any{
					"unit_price": d.item.UnitPrice.String(),
					"sale_type":  d.item.SaleType,
				},
				now,
			)
			if err != nil {
				return err
			}
			result.Movements = append(result.Movements, mov)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, d := range debits {
		uc.debitor.InvalidateStock(ctx, d.product.ID)
	}
	uc.audit(sale)
	uc.recalculateInsights(ctx, in.CustomerID)
	return result, nil
}

// resolveItems valida cada línea contra el catálogo y arma las entidades.
func (uc *CheckoutUseCase) resolveItems(in SaleInput, saleID string) ([]*itemDebit, decimal.Decimal, error) {
	total := decimal.Zero
	debits := make([]*itemDebit, 0, len(in.Items))
	for _, item := range in.Items {
		if item.ProductID == "" {
			return nil, decimal.Zero, &domain.ValidationError{Field: "product_id", Reason: "obligatorio"}
		}
		if item.Quantity <= 0 {
			return nil, decimal.Zero, &domain.ValidationError{Field: "quantity", Reason: "cada línea vende al menos una unidad o paquete"}
		}
		if item.UnitPrice.IsNegative() {
			return nil, decimal.Zero, &domain.ValidationError{Field: "unit_price", Reason: "el precio no puede ser negativo"}
		}
		if item.SaleType != entity.SaleTypeUnit && item.SaleType != entity.SaleTypePackage {
			return nil, decimal.Zero, &domain.ValidationError{Field: "sale_type", Reason: "tipo de línea desconocido"}
		}

		product, err := uc.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if product == nil || product.Deleted() {
			return nil, decimal.Zero, domain.ErrNotFound
		}

		d := &itemDebit{
			product: product,
			item: &entity.SaleItem{
				ID:           uuid.New().String(),
				SaleID:       saleID,
				ProductID:    product.ID,
				Quantity:     item.Quantity,
				UnitPrice:    item.UnitPrice,
				SaleType:     item.SaleType,
				PackageUnits: product.PackageSize,
			},
		}
		if item.SaleType == entity.SaleTypePackage {
			d.packages = item.Quantity
		} else {
			d.unitsLoose = item.Quantity
		}
		total = total.Add(d.item.Subtotal())
		debits = append(debits, d)
	}
	return debits, total, nil
}

// recheckProducts relee cada producto dentro de la transacción y rechaza la
// venta si alguno fue eliminado después de resolver las líneas.
func (uc *CheckoutUseCase) recheckProducts(productRepo repository.ProductRepository, debits []*itemDebit) error {
	seen := make(map[string]bool, len(debits))
	for _, d := range debits {
		if seen[d.product.ID] {
			continue
		}
		seen[d.product.ID] = true
		fresh, err := productRepo.GetByID(d.product.ID)
		if err != nil {
			return err
		}
		if fresh == nil || fresh.Deleted() {
			return domain.ErrNotFound
		}
	}
	return nil
}

// prorateCredit reparte el descuento entre las líneas en proporción a su
// subtotal: la suma del crédito por ítem es exactamente el total neto de la
// venta. El resto del redondeo a dos decimales cae en la última línea.
func prorateCredit(debits []*itemDebit, total, discount decimal.Decimal) []decimal.Decimal {
	credits := make([]decimal.Decimal, len(debits))
	if total.IsZero() {
		return credits
	}
	net := total.Sub(discount)
	var assigned decimal.Decimal
	for i, d := range debits {
		if i == len(debits)-1 {
			credits[i] = net.Sub(assigned)
			break
		}
		credits[i] = d.item.Subtotal().Mul(net).Div(total).Round(2)
		assigned = assigned.Add(credits[i])
	}
	return credits
}

// lockAndCheck bloquea cada fila una sola vez, en orden de producto, y
// verifica el requerimiento agregado (varias líneas del mismo producto se
// suman antes de comparar contra lo disponible).
func (uc *CheckoutUseCase) lockAndCheck(stockRepo repository.StockRepository, debits []*itemDebit) error {
	required := make(map[string]*itemDebit)
	ids := make([]string, 0, len(debits))
	for _, d := range debits {
		agg, ok := required[d.product.ID]
		if !ok {
			agg = &itemDebit{product: d.product}
			required[d.product.ID] = agg
			ids = append(ids, d.product.ID)
		}
		agg.packages += d.packages
		agg.unitsLoose += d.unitsLoose
	}
	sort.Strings(ids)
	for _, id := range ids {
		agg := required[id]
		if err := uc.debitor.CheckSaleItemInTx(stockRepo, id, entity.StorePrimary, agg.packages, agg.unitsLoose); err != nil {
			return err
		}
	}
	return nil
}

// audit emite el evento fuera de la transacción; un fallo solo se loguea.
func (uc *CheckoutUseCase) audit(sale *entity.Sale) {
	if uc.auditRepo == nil {
		return
	}
	details, _ := json.Marshal(map[string]any{
		"total_amount":    sale.TotalAmount.String(),
		"discount_amount": sale.DiscountAmount.String(),
		"payment_method":  sale.PaymentMethod,
	})
	event := &entity.AuditEvent{
		ID:          uuid.New().String(),
		Action:      entity.AuditActionSale,
		SubjectType: "sale",
		SubjectID:   sale.ID,
		UserID:      sale.UserID,
		Details:     details,
		CreatedAt:   time.Now(),
	}
	if err := uc.auditRepo.Append(event); err != nil {
		log.Error().Err(err).Str("sale_id", sale.ID).Msg("No se pudo registrar la auditoría de venta")
	}
}

func (uc *CheckoutUseCase) recalculateInsights(ctx context.Context, customerID string) {
	if uc.insights == nil || customerID == "" {
		return
	}
	if err := uc.insights.Recalculate(ctx, customerID); err != nil {
		log.Warn().Err(err).Str("customer_id", customerID).Msg("No se pudieron recalcular los insights del cliente")
	}
}
