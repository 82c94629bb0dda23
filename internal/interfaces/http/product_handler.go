package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/adega-api/internal/application/dto"
	"github.com/jhoicas/adega-api/internal/application/usecase"
	"github.com/jhoicas/adega-api/internal/domain/entity"
)

// ProductHandler catálogo y ciclo de vida de productos (protegido).
type ProductHandler struct {
	productUC   *usecase.ProductUseCase
	lifecycleUC *usecase.LifecycleUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(productUC *usecase.ProductUseCase, lifecycleUC *usecase.LifecycleUseCase) *ProductHandler {
	return &ProductHandler{productUC: productUC, lifecycleUC: lifecycleUC}
}

// Create godoc
// @Summary      Crear producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Producto (sin stock: el inicial se carga con un movimiento initial_stock)"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	product, err := h.productUC.Create(c.Context(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(productToDTO(product, nil))
}

// Update godoc
// @Summary      Actualizar producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del producto"
// @Param        body  body  dto.UpdateProductRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.ProductResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/:id [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	product, err := h.productUC.Update(c.Context(), c.Params("id"), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(productToDTO(product, nil))
}

// GetByID godoc
// @Summary      Obtener producto con stock por tienda
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/:id [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	product, levels, err := h.productUC.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(productToDTO(product, levels))
}

// GetByBarcode godoc
// @Summary      Buscar producto por código de barras (unidad o paquete)
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "Código de barras"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/barcode/:code [get]
func (h *ProductHandler) GetByBarcode(c *fiber.Ctx) error {
	product, err := h.productUC.GetByBarcode(c.Context(), c.Params("code"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(productToDTO(product, nil))
}

// List godoc
// @Summary      Listar productos activos de una tienda
// @Description  La tienda 2 (depósito) solo lista productos con algún
//
//	traslado entrante registrado.
//
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        store  query  int  false  "Tienda (1 por defecto)"
// @Success      200  {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()
	store := entity.Store(c.QueryInt("store", int(entity.StorePrimary)))

	products, err := h.productUC.ListActive(c.Context(), store, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(productListToDTO(products, page))
}

// ListDeleted godoc
// @Summary      Listar productos eliminados (papelera)
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ProductListResponse
// @Router       /api/products/deleted [get]
func (h *ProductHandler) ListDeleted(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()
	products, err := h.productUC.ListDeleted(c.Context(), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(productListToDTO(products, page))
}

// SoftDelete godoc
// @Summary      Eliminar producto (borrado lógico)
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/products/:id [delete]
func (h *ProductHandler) SoftDelete(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.lifecycleUC.SoftDelete(c.Context(), c.Params("id"), userID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "producto eliminado"})
}

// Restore godoc
// @Summary      Restaurar producto eliminado
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/products/:id/restore [post]
func (h *ProductHandler) Restore(c *fiber.Ctx) error {
	if err := h.lifecycleUC.Restore(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "producto restaurado"})
}

// GetUsage godoc
// @Summary      Uso histórico del producto (ventas, movimientos, stock)
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductUsageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/:id/usage [get]
func (h *ProductHandler) GetUsage(c *fiber.Ctx) error {
	usage, err := h.lifecycleUC.HistoricalUsage(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(usage)
}

func productToDTO(p *entity.Product, levels []*entity.StockLevel) *dto.ProductResponse {
	resp := &dto.ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		Category:       p.Category,
		Barcode:        p.Barcode,
		PackageBarcode: p.PackageBarcode,
		Price:          p.Price,
		CostPrice:      p.CostPrice,
		MarginPercent:  p.MarginPercent,
		PackageSize:    p.PackageSize,
		PackagePrice:   p.PackagePrice,
		PackageMargin:  p.PackageMargin,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		DeletedAt:      p.DeletedAt,
		DeletedBy:      p.DeletedBy,
	}
	for _, level := range levels {
		resp.Stocks = append(resp.Stocks, stockToDTO(level))
	}
	return resp
}

func productListToDTO(products []*entity.Product, page dto.PageRequest) dto.ProductListResponse {
	resp := dto.ProductListResponse{
		Items:  make([]*dto.ProductResponse, 0, len(products)),
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	for _, p := range products {
		resp.Items = append(resp.Items, productToDTO(p, nil))
	}
	return resp
}
