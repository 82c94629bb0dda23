package inventory_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/adega-api/internal/application/inventory"
	"github.com/jhoicas/adega-api/internal/domain"
	"github.com/jhoicas/adega-api/internal/domain/entity"
	"github.com/jhoicas/adega-api/internal/domain/repository"
)

// Fakes en memoria para los casos de uso de stock. Implementan los contratos
// de repositorio sobre mapas y slices; el fakeTxRunner ejecuta fn directo
// (los tests de atomicidad real viven en la capa de infraestructura).

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
	createErr error
}

func (r *fakeMovementRepo) Create(m *entity.Movement) error {
	if r.createErr != nil {
		return r.createErr
	}
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
	var out []*entity.Movement
	for _, m := range r.movements {
		if f.ProductID != "" && m.ProductID != f.ProductID {
			continue
		}
		if f.Store != nil && m.Store != *f.Store {
			continue
		}
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		out = append(out, m)
	}
	return out, nil
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

type fakeTransferRepo struct {
	transfers []*entity.StoreTransfer
}

func (r *fakeTransferRepo) Create(t *entity.StoreTransfer) error {
	r.transfers = append(r.transfers, t)
	return nil
}

func (r *fakeTransferRepo) ListByProduct(productID string, limit, offset int) ([]*entity.StoreTransfer, error) {
	var out []*entity.StoreTransfer
	for _, t := range r.transfers {
		if t.ProductID == productID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTransferRepo) ListRecent(limit int) ([]*entity.StoreTransfer, error) {
	return r.transfers, nil
}

func (r *fakeTransferRepo) HasInbound(productID string, store entity.Store) (bool, error) {
	for _, t := range r.transfers {
		if t.ProductID == productID && t.ToStore == store {
			return true, nil
		}
	}
	return false, nil
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

func (r *fakeProductRepo) Create(p *entity.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) Update(p *entity.Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	r.products[p.ID] = p
	return nil
}

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
	var out []*entity.Product
	for _, p := range r.products {
		if !p.Deleted() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) ListDeleted(limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.products {
		if p.Deleted() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) SoftDelete(id, userID string) error {
	p, ok := r.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	if p.Deleted() {
		return domain.ErrConflict
	}
	now := time.Now()
	p.DeletedAt = &now
	p.DeletedBy = &userID
	return nil
}

func (r *fakeProductRepo) Restore(id string) error {
	p, ok := r.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	if !p.Deleted() {
		return domain.ErrConflict
	}
	p.DeletedAt = nil
	p.DeletedBy = nil
	return nil
}

type fakeAuditRepo struct {
	events []*entity.AuditEvent
}

func (r *fakeAuditRepo) Append(e *entity.AuditEvent) error {
	r.events = append(r.events, e)
	return nil
}

// fakeTxRunner ejecuta fn con los repositorios en memoria. Si fn falla,
// descarta los niveles escritos restaurando el snapshot previo, imitando
// el rollback del runner real. beforeFn, si está presente, corre antes de
// fn y simula una escritura concurrente confirmada entre la validación
// previa y la apertura de la transacción.
type fakeTxRunner struct {
	movRepo      *fakeMovementRepo
	stockRepo    *fakeStockRepo
	transferRepo *fakeTransferRepo
	productRepo  *fakeProductRepo
	beforeFn     func()
}

func newFakeTxRunner(products ...*entity.Product) *fakeTxRunner {
	return &fakeTxRunner{
		movRepo:      &fakeMovementRepo{},
		stockRepo:    newFakeStockRepo(),
		transferRepo: &fakeTransferRepo{},
		productRepo:  newFakeProductRepo(products...),
	}
}

func (r *fakeTxRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	transferRepo repository.TransferRepository,
	productRepo repository.ProductRepository,
) error) error {
	snapLevels := make(map[stockKey]*entity.StockLevel, len(r.stockRepo.levels))
	for k, v := range r.stockRepo.levels {
		copied := *v
		snapLevels[k] = &copied
	}
	snapMovs := len(r.movRepo.movements)
	snapTransfers := len(r.transferRepo.transfers)

	if r.beforeFn != nil {
		r.beforeFn()
	}
	if err := fn(r.movRepo, r.stockRepo, r.transferRepo, r.productRepo); err != nil {
		r.stockRepo.levels = snapLevels
		r.movRepo.movements = r.movRepo.movements[:snapMovs]
		r.transferRepo.transfers = r.transferRepo.transfers[:snapTransfers]
		return err
	}
	return nil
}

type fakeCache struct {
	levels       map[stockKey]*entity.StockLevel
	invalidated  []string
	hits, misses int
}

func newFakeCache() *fakeCache {
	return &fakeCache{levels: make(map[stockKey]*entity.StockLevel)}
}

func (c *fakeCache) Get(ctx context.Context, productID string, store entity.Store) (*entity.StockLevel, bool) {
	if level, ok := c.levels[stockKey{productID, store}]; ok {
		c.hits++
		return level, true
	}
	c.misses++
	return nil, false
}

func (c *fakeCache) Set(ctx context.Context, level *entity.StockLevel) {
	copied := *level
	c.levels[stockKey{level.ProductID, level.Store}] = &copied
}

func (c *fakeCache) Invalidate(ctx context.Context, productID string) {
	c.invalidated = append(c.invalidated, productID)
	for key := range c.levels {
		if key.productID == productID {
			delete(c.levels, key)
		}
	}
}

// vino producto de prueba estándar: paquete de 6, precios típicos de la adega.
func vino(id string) *entity.Product {
	now := time.Now()
	return &entity.Product{
		ID:          id,
		Name:        "Vino Tinto Reserva",
		Category:    "tinto",
		Barcode:     "7891000100103",
		Price:       decimal.NewFromInt(50),
		CostPrice:   decimal.NewFromInt(30),
		PackageSize: 6,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

var _ inventory.TxRunner = (*fakeTxRunner)(nil)
var _ inventory.StockCache = (*fakeCache)(nil)
var _ repository.ProductRepository = (*fakeProductRepo)(nil)
var _ repository.StockRepository = (*fakeStockRepo)(nil)
var _ repository.MovementRepository = (*fakeMovementRepo)(nil)
var _ repository.TransferRepository = (*fakeTransferRepo)(nil)
var _ repository.AuditRepository = (*fakeAuditRepo)(nil)
