package http

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/adega-api/internal/application/dto"
	"github.com/jhoicas/adega-api/internal/application/inventory"
	"github.com/jhoicas/adega-api/internal/domain/entity"
	"github.com/jhoicas/adega-api/internal/domain/repository"
)

// InventoryHandler maneja movimientos de stock y consultas del libro (protegido).
// Con cola de replay configurada, un fallo de infraestructura al registrar un
// movimiento lo encola y responde 202: la operación se aplicará en orden.
type InventoryHandler struct {
	movementUC *inventory.RegisterMovementUseCase
	queryUC    *inventory.StockQueryUseCase
	queue      inventory.ReplayQueue // puede ser nil
}

// NewInventoryHandler construye el handler. queue puede ser nil.
func NewInventoryHandler(
	movementUC *inventory.RegisterMovementUseCase,
	queryUC *inventory.StockQueryUseCase,
	queue inventory.ReplayQueue,
) *InventoryHandler {
	return &InventoryHandler{movementUC: movementUC, queryUC: queryUC, queue: queue}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "product_id, store, type, packages, units_loose"
// @Success      201   {object}  dto.MovementResponse
// @Success      202   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var req dto.RegisterMovementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	in := inventory.MovementInput{
		ProductID:     req.ProductID,
		Store:         entity.Store(req.Store),
		Type:          req.Type,
		Packages:      req.Packages,
		UnitsLoose:    req.UnitsLoose,
		Reason:        req.Reason,
		Metadata:      req.Metadata,
		UserID:        userID,
		CustomerID:    req.CustomerID,
		SaleID:        req.SaleID,
		CreditAmount:  req.CreditAmount,
		CreditDueDate: req.CreditDueDate,
	}
	mov, err := h.movementUC.RegisterMovement(c.Context(), in)
	if err != nil {
		if h.queue != nil && !inventory.IsPermanentError(err) {
			return h.enqueue(c, inventory.OpRegisterMovement, in, err)
		}
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(movementToDTO(mov))
}

// SetStockAbsolute godoc
// @Summary      Fijar stock absoluto de una tienda
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SetStockAbsoluteRequest  true  "product_id, store, new_packages, new_units_loose, reason"
// @Success      201   {object}  dto.MovementResponse
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/stock-absolute [post]
func (h *InventoryHandler) SetStockAbsolute(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var req dto.SetStockAbsoluteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	in := inventory.SetStockInput{
		ProductID:     req.ProductID,
		Store:         entity.Store(req.Store),
		NewPackages:   req.NewPackages,
		NewUnitsLoose: req.NewUnitsLoose,
		Reason:        req.Reason,
		UserID:        userID,
	}
	mov, err := h.movementUC.SetStockAbsolute(c.Context(), in)
	if err != nil {
		if h.queue != nil && !inventory.IsPermanentError(err) {
			return h.enqueue(c, inventory.OpSetStockAbsolute, in, err)
		}
		return respondError(c, err)
	}
	if mov == nil {
		return c.JSON(fiber.Map{"message": "sin cambios"})
	}
	return c.Status(fiber.StatusCreated).JSON(movementToDTO(mov))
}

// ListMovements godoc
// @Summary      Historial de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Param        store       query  int     false  "Filtrar por tienda (1 o 2)"
// @Param        type        query  string  false  "Filtrar por tipo de movimiento"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()

	filter := repository.MovementFilter{
		ProductID: c.Query("product_id"),
		Type:      c.Query("type"),
		UserID:    c.Query("user_id"),
		Limit:     page.Limit,
		Offset:    page.Offset,
	}
	if s := c.QueryInt("store"); s != 0 {
		store := entity.Store(s)
		filter.Store = &store
	}

	movements, err := h.movementUC.ListMovements(c.Context(), filter)
	if err != nil {
		return respondError(c, err)
	}

	resp := dto.MovementListResponse{
		Items:  make([]*dto.MovementResponse, 0, len(movements)),
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	for _, m := range movements {
		resp.Items = append(resp.Items, movementToDTO(m))
	}
	return c.JSON(resp)
}

// GetStock godoc
// @Summary      Stock actual de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id     path   string  true   "ID del producto"
// @Param        store  query  int     false  "Tienda (1 o 2); vacío = todas"
// @Success      200  {object}  map[string]any
// @Router       /api/inventory/stock/:id [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	productID := c.Params("id")

	if s := c.QueryInt("store"); s != 0 {
		level, err := h.queryUC.CurrentStock(c.Context(), productID, entity.Store(s))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(stockToDTO(level))
	}

	levels, err := h.queryUC.AllStock(c.Context(), productID)
	if err != nil {
		return respondError(c, err)
	}
	stocks := make([]dto.StockLevelDTO, 0, len(levels))
	for _, level := range levels {
		stocks = append(stocks, stockToDTO(level))
	}
	return c.JSON(fiber.Map{"product_id": productID, "stocks": stocks})
}

// GetStockedStores godoc
// @Summary      Tiendas donde figura el producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  map[string]any
// @Router       /api/inventory/stock/:id/stores [get]
func (h *InventoryHandler) GetStockedStores(c *fiber.Ctx) error {
	productID := c.Params("id")
	stores, err := h.queryUC.StockedStores(c.Context(), productID)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]int, 0, len(stores))
	for _, s := range stores {
		out = append(out, int(s))
	}
	return c.JSON(fiber.Map{"product_id": productID, "stores": out})
}

// enqueue serializa la operación a la cola de replay y responde 202. Si la
// cola también falla, se responde el error original.
func (h *InventoryHandler) enqueue(c *fiber.Ctx, kind string, payload any, cause error) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return respondError(c, cause)
	}
	op := inventory.QueuedOperation{
		ID:         uuid.New().String(),
		Kind:       kind,
		Payload:    raw,
		EnqueuedAt: time.Now(),
	}
	if err := h.queue.Append(c.Context(), op); err != nil {
		log.Error().Err(err).Str("kind", kind).Msg("No se pudo encolar la operación de stock")
		return respondError(c, cause)
	}
	log.Warn().Err(cause).Str("op_id", op.ID).Str("kind", kind).Msg("Operación de stock encolada por fallo de infraestructura")
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "queued", "operation_id": op.ID})
}

func movementToDTO(m *entity.Movement) *dto.MovementResponse {
	return &dto.MovementResponse{
		ID:               m.ID,
		ProductID:        m.ProductID,
		Store:            int(m.Store),
		Type:             m.Type,
		PackageChange:    m.PackageChange,
		UnitsLooseChange: m.UnitsLooseChange,
		QuantityChange:   m.QuantityChange,
		PreviousQuantity: m.PreviousQuantity,
		NewQuantity:      m.NewQuantity,
		Reason:           m.Reason,
		Metadata:         m.Metadata,
		UserID:           m.UserID,
		CustomerID:       m.CustomerID,
		SaleID:           m.SaleID,
		CreditAmount:     m.CreditAmount,
		CreditDueDate:    m.CreditDueDate,
		CreatedAt:        m.CreatedAt,
	}
}

func stockToDTO(level *entity.StockLevel) dto.StockLevelDTO {
	return dto.StockLevelDTO{
		Store:      int(level.Store),
		Packages:   level.Packages,
		UnitsLoose: level.UnitsLoose,
	}
}
