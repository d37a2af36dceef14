package handlers

import (
	"github.com/gin-gonic/gin"

	"posledger/internal/core/apperror"
	"posledger/internal/domain/possale"
	"posledger/internal/infrastructure/http/v1/dto"
)

// PosSaleHandler handles POS sale endpoints.
type PosSaleHandler struct {
	*BaseHandler
	service *possale.Service
}

// NewPosSaleHandler creates a new POS sale handler.
func NewPosSaleHandler(base *BaseHandler, service *possale.Service) *PosSaleHandler {
	return &PosSaleHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /sales
func (h *PosSaleHandler) Create(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}

	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sale, err := req.ToEntity(companyID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id in request").WithDetail("error", err.Error()))
		return
	}
	sale.CreatedBy = h.UserID(c)

	created, err := h.service.CreateSale(c.Request.Context(), sale)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.CreatedData(c, dto.FromPosSale(created))
}

// Update handles PUT /sales/:id
func (h *PosSaleHandler) Update(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sale, err := h.service.GetByID(c.Request.Context(), companyID, saleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := req.ApplyTo(sale); err != nil {
		h.Error(c, apperror.NewValidation("invalid id in request").WithDetail("error", err.Error()))
		return
	}
	sale.UpdatedBy = h.UserID(c)

	updated, err := h.service.UpdateSale(c.Request.Context(), companyID, saleID, sale)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPosSale(updated))
}

// Cancel handles POST /sales/:id/cancel
func (h *PosSaleHandler) Cancel(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	cancelled, err := h.service.CancelSale(c.Request.Context(), companyID, saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPosSale(cancelled))
}

// Delete handles DELETE /sales/:id
func (h *PosSaleHandler) Delete(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteSale(c.Request.Context(), companyID, saleID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// GetByID handles GET /sales/:id
func (h *PosSaleHandler) GetByID(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	sale, err := h.service.GetByID(c.Request.Context(), companyID, saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPosSale(sale))
}

// List handles GET /sales
func (h *PosSaleHandler) List(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}

	var query dto.SaleListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	result, err := h.service.List(c.Request.Context(), companyID, query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      dto.FromPosSales(result.Items),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}
