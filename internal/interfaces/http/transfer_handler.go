package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/adega-api/internal/application/dto"
	"github.com/jhoicas/adega-api/internal/application/inventory"
	"github.com/jhoicas/adega-api/internal/domain/entity"
)

// TransferHandler traslados de stock entre tiendas (protegido).
type TransferHandler struct {
	uc *inventory.TransferUseCase
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *inventory.TransferUseCase) *TransferHandler {
	return &TransferHandler{uc: uc}
}

// Create godoc
// @Summary      Trasladar stock entre tiendas
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "product_id, from_store, to_store, packages, units_loose"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var req dto.TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	result, err := h.uc.Transfer(c.Context(), inventory.TransferInput{
		ProductID:  req.ProductID,
		FromStore:  entity.Store(req.FromStore),
		ToStore:    entity.Store(req.ToStore),
		Packages:   req.Packages,
		UnitsLoose: req.UnitsLoose,
		UserID:     userID,
		Notes:      req.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(transferToDTO(result.Transfer))
}

// ListByProduct godoc
// @Summary      Historial de traslados de un producto
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.TransferListResponse
// @Router       /api/transfers/product/:id [get]
func (h *TransferHandler) ListByProduct(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()

	transfers, err := h.uc.ListByProduct(c.Context(), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(transferListToDTO(transfers))
}

// ListRecent godoc
// @Summary      Traslados recientes
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.TransferListResponse
// @Router       /api/transfers [get]
func (h *TransferHandler) ListRecent(c *fiber.Ctx) error {
	transfers, err := h.uc.ListRecent(c.Context(), c.QueryInt("limit"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(transferListToDTO(transfers))
}

func transferToDTO(t *entity.StoreTransfer) *dto.TransferResponse {
	return &dto.TransferResponse{
		ID:         t.ID,
		ProductID:  t.ProductID,
		FromStore:  int(t.FromStore),
		ToStore:    int(t.ToStore),
		Packages:   t.Packages,
		UnitsLoose: t.UnitsLoose,
		UserID:     t.UserID,
		Notes:      t.Notes,
		CreatedAt:  t.CreatedAt,
	}
}

func transferListToDTO(transfers []*entity.StoreTransfer) dto.TransferListResponse {
	resp := dto.TransferListResponse{Items: make([]*dto.TransferResponse, 0, len(transfers))}
	for _, t := range transfers {
		resp.Items = append(resp.Items, transferToDTO(t))
	}
	return resp
}
