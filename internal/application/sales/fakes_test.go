package sales_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/adega-api/internal/application/inventory"
	"github.com/jhoicas/adega-api/internal/application/sales"
	"github.com/jhoicas/adega-api/internal/domain"
	"github.com/jhoicas/adega-api/internal/domain/entity"
	"github.com/jhoicas/adega-api/internal/domain/repository"
)

// Fakes en memoria para el checkout. El débito de stock lo ejecuta el caso de
// uso real de movimientos sobre estos repos, así el test cubre la integración
// checkout → motor de stock completa.

type stockKey struct {
	productID string
	store     entity.Store
}

type fakeStockRepo struct {
	levels map[stockKey]*entity.StockLevel
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{levels: make(map[stockKey]*entity.StockLevel)}
}

func (r *fakeStockRepo) seed(productID string, store entity.Store, packages, unitsLoose int64) {
	r.levels[stockKey{productID, store}] = &entity.StockLevel{
		ProductID:  productID,
		Store:      store,
		Packages:   packages,
		UnitsLoose: unitsLoose,
		UpdatedAt:  time.Now(),
	}
}

func (r *fakeStockRepo) Get(productID string, store entity.Store) (*entity.StockLevel, error) {
	if level, ok := r.levels[stockKey{productID, store}]; ok {
		copied := *level
		return &copied, nil
	}
	return &entity.StockLevel{ProductID: productID, Store: store}, nil
}

func (r *fakeStockRepo) GetForUpdate(productID string, store entity.Store) (*entity.StockLevel, error) {
	return r.Get(productID, store)
}

func (r *fakeStockRepo) Upsert(level *entity.StockLevel) error {
	copied := *level
	r.levels[stockKey{level.ProductID, level.Store}] = &copied
	return nil
}

func (r *fakeStockRepo) ListByProduct(productID string) ([]*entity.StockLevel, error) {
	var out []*entity.StockLevel
	for key, level := range r.levels {
		if key.productID == productID {
			copied := *level
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeMovementRepo struct {
	movements []*entity.Movement
}

func (r *fakeMovementRepo) Create(m *entity.Movement) error {
	r.movements = append(r.movements, m)
	return nil
}

func (r *fakeMovementRepo) GetByID(id string) (*entity.Movement, error) {
	for _, m := range r.movements {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeMovementRepo) List(f repository.MovementFilter) ([]*entity.Movement, error) {
	return r.movements, nil
}

func (r *fakeMovementRepo) CountByProduct(productID string) (int64, error) {
	var n int64
	for _, m := range r.movements {
		if m.ProductID == productID {
			n++
		}
	}
	return n, nil
}

type fakeSaleRepo struct {
	sales map[string]*entity.Sale
	items map[string][]*entity.SaleItem
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{
		sales: make(map[string]*entity.Sale),
		items: make(map[string][]*entity.SaleItem),
	}
}

func (r *fakeSaleRepo) Create(sale *entity.Sale, items []*entity.SaleItem) error {
	r.sales[sale.ID] = sale
	r.items[sale.ID] = items
	return nil
}

func (r *fakeSaleRepo) GetByID(id string) (*entity.Sale, []*entity.SaleItem, error) {
	sale, ok := r.sales[id]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	return sale, r.items[id], nil
}

func (r *fakeSaleRepo) CountByProduct(productID string) (int64, error) {
	var n int64
	for _, items := range r.items {
		for _, item := range items {
			if item.ProductID == productID {
				n++
			}
		}
	}
	return n, nil
}

type fakeProductRepo struct {
	products map[string]*entity.Product
}

func newFakeProductRepo(products ...*entity.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[string]*entity.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) Create(p *entity.Product) error { r.products[p.ID] = p; return nil }
func (r *fakeProductRepo) Update(p *entity.Product) error { r.products[p.ID] = p; return nil }

func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	if p, ok := r.products[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeProductRepo) GetByBarcode(code string) (*entity.Product, error) {
	for _, p := range r.products {
		if !p.Deleted() && (p.Barcode == code || p.PackageBarcode == code) {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeProductRepo) ListActiveByStore(store entity.Store, limit, offset int) ([]*entity.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) ListDeleted(limit, offset int) ([]*entity.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) SoftDelete(id, userID string) error {
	p, ok := r.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now()
	p.DeletedAt = &now
	p.DeletedBy = &userID
	return nil
}

func (r *fakeProductRepo) Restore(id string) error { return nil }

type fakeCustomerRepo struct {
	customers map[string]*entity.Customer
}

func newFakeCustomerRepo(customers ...*entity.Customer) *fakeCustomerRepo {
	r := &fakeCustomerRepo{customers: make(map[string]*entity.Customer)}
	for _, c := range customers {
		r.customers[c.ID] = c
	}
	return r
}

func (r *fakeCustomerRepo) GetByID(id string) (*entity.Customer, error) {
	if c, ok := r.customers[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

type fakeAuditRepo struct {
	events []*entity.AuditEvent
}

func (r *fakeAuditRepo) Append(e *entity.AuditEvent) error {
	r.events = append(r.events, e)
	return nil
}

type fakeInsights struct {
	recalculated []string
}

func (f *fakeInsights) Recalculate(ctx context.Context, customerID string) error {
	f.recalculated = append(f.recalculated, customerID)
	return nil
}

// fakeSaleTxRunner ejecuta fn con los repos en memoria y restaura los
// snapshots si fn falla, imitando el rollback real. beforeFn corre antes
// de fn y simula una escritura concurrente confirmada entre la resolución
// de líneas y la apertura de la transacción.
type fakeSaleTxRunner struct {
	movRepo     *fakeMovementRepo
	stockRepo   *fakeStockRepo
	saleRepo    *fakeSaleRepo
	productRepo *fakeProductRepo
	beforeFn    func()
}

func newFakeSaleTxRunner(products ...*entity.Product) *fakeSaleTxRunner {
	return &fakeSaleTxRunner{
		movRepo:     &fakeMovementRepo{},
		stockRepo:   newFakeStockRepo(),
		saleRepo:    newFakeSaleRepo(),
		productRepo: newFakeProductRepo(products...),
	}
}

func (r *fakeSaleTxRunner) RunSale(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
) error) error {
	snapLevels := make(map[stockKey]*entity.StockLevel, len(r.stockRepo.levels))
	for k, v := range r.stockRepo.levels {
		copied := *v
		snapLevels[k] = &copied
	}
	snapMovs := len(r.movRepo.movements)
	snapSales := make(map[string]*entity.Sale, len(r.saleRepo.sales))
	for k, v := range r.saleRepo.sales {
		snapSales[k] = v
	}

	if r.beforeFn != nil {
		r.beforeFn()
	}
	if err := fn(r.movRepo, r.stockRepo, r.saleRepo, r.productRepo); err != nil {
		r.stockRepo.levels = snapLevels
		r.movRepo.movements = r.movRepo.movements[:snapMovs]
		r.saleRepo.sales = snapSales
		return err
	}
	return nil
}

// checkoutFixture arma el checkout completo con el motor de stock real.
type checkoutFixture struct {
	uc       *sales.CheckoutUseCase
	runner   *fakeSaleTxRunner
	audit    *fakeAuditRepo
	insights *fakeInsights
}

func newCheckoutFixture(products []*entity.Product, customers ...*entity.Customer) *checkoutFixture {
	runner := newFakeSaleTxRunner(products...)
	audit := &fakeAuditRepo{}
	insights := &fakeInsights{}
	debitor := inventory.NewRegisterMovementUseCase(nil, runner.productRepo, runner.movRepo, nil)
	uc := sales.NewCheckoutUseCase(runner, runner.productRepo, newFakeCustomerRepo(customers...), debitor, audit, insights)
	return &checkoutFixture{uc: uc, runner: runner, audit: audit, insights: insights}
}

func vino(id string, price int64) *entity.Product {
	now := time.Now()
	return &entity.Product{
		ID:          id,
		Name:        "Vino Tinto Reserva",
		Category:    "tinto",
		Price:       decimal.NewFromInt(price),
		CostPrice:   decimal.NewFromInt(price / 2),
		PackageSize: 6,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

var _ sales.TxRunner = (*fakeSaleTxRunner)(nil)
var _ sales.StockDebitor = (*inventory.RegisterMovementUseCase)(nil)
var _ sales.CustomerInsights = (*fakeInsights)(nil)
var _ repository.SaleRepository = (*fakeSaleRepo)(nil)
var _ repository.CustomerRepository = (*fakeCustomerRepo)(nil)
