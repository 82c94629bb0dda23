package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/adega-api/internal/application/dto"
	"github.com/jhoicas/adega-api/internal/application/sales"
)

// SaleHandler registro de ventas (protegido).
type SaleHandler struct {
	uc *sales.CheckoutUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *sales.CheckoutUseCase) *SaleHandler {
	return &SaleHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar una venta
// @Description  Registra cabecera, líneas, débitos de stock y movimientos en
//
//	una sola operación. Pago "fiado" exige cliente y vencimiento.
//
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "items, payment_method, customer_id (fiado)"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var req dto.CreateSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	in := sales.SaleInput{
		Items:          make([]sales.SaleItemInput, 0, len(req.Items)),
		CustomerID:     req.CustomerID,
		UserID:         userID,
		PaymentMethod:  req.PaymentMethod,
		DiscountAmount: req.DiscountAmount,
		CreditDueDate:  req.CreditDueDate,
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, sales.SaleItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			SaleType:  item.SaleType,
		})
	}

	result, err := h.uc.RecordSale(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(saleToDTO(result))
}

func saleToDTO(result *sales.SaleResult) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:             result.Sale.ID,
		CustomerID:     result.Sale.CustomerID,
		UserID:         result.Sale.UserID,
		TotalAmount:    result.Sale.TotalAmount,
		DiscountAmount: result.Sale.DiscountAmount,
		PaymentMethod:  result.Sale.PaymentMethod,
		CreditDueDate:  result.Sale.CreditDueDate,
		Items:          make([]*dto.SaleItemResponse, 0, len(result.Items)),
		Movements:      make([]*dto.MovementResponse, 0, len(result.Movements)),
		CreatedAt:      result.Sale.CreatedAt,
	}
	for _, item := range result.Items {
		resp.Items = append(resp.Items, &dto.SaleItemResponse{
			ID:           item.ID,
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			SaleType:     item.SaleType,
			PackageUnits: item.PackageUnits,
		})
	}
	for _, m := range result.Movements {
		resp.Movements = append(resp.Movements, movementToDTO(m))
	}
	return resp
}
