package handlers

import (
	"github.com/gin-gonic/gin"

	"posledger/internal/domain/catalogs/product"
	"posledger/internal/infrastructure/http/v1/dto"
)

// ProductHandler handles product catalog endpoints.
type ProductHandler struct {
	*BaseHandler
	service *product.Service
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	return &ProductHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}

	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p := req.ToEntity(companyID)
	if err := h.service.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, p.ID.String())
}

// Update handles PUT /products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), companyID, productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	req.ApplyTo(p)

	if err := h.service.Update(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProduct(p))
}

// Delete handles DELETE /products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), companyID, productID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// GetByID handles GET /products/:id
func (h *ProductHandler) GetByID(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), companyID, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProduct(p))
}

// GetBySKU handles GET /products/sku/:sku
func (h *ProductHandler) GetBySKU(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}

	p, err := h.service.GetBySKU(c.Request.Context(), companyID, c.Param("sku"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProduct(p))
}

// GetByBarcode handles GET /products/barcode/:barcode
func (h *ProductHandler) GetByBarcode(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}

	p, err := h.service.GetByBarcode(c.Request.Context(), companyID, c.Param("barcode"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromProduct(p))
}

// List handles GET /products
func (h *ProductHandler) List(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}

	var query dto.CatalogListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	result, err := h.service.List(c.Request.Context(), companyID, query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      dto.FromProducts(result.Items),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}
