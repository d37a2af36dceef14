package handlers

import (
	"github.com/gin-gonic/gin"

	"posledger/internal/domain/catalogs/location"
	"posledger/internal/infrastructure/http/v1/dto"
)

// LocationHandler handles location catalog endpoints.
type LocationHandler struct {
	*BaseHandler
	service *location.Service
}

// NewLocationHandler creates a new location handler.
func NewLocationHandler(base *BaseHandler, service *location.Service) *LocationHandler {
	return &LocationHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /locations
func (h *LocationHandler) Create(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}

	var req dto.CreateLocationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	l := req.ToEntity(companyID)
	if err := h.service.Create(c.Request.Context(), l); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, l.ID.String())
}

// Update handles PUT /locations/:id
func (h *LocationHandler) Update(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	locationID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateLocationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	l, err := h.service.GetByID(c.Request.Context(), companyID, locationID)
	if err != nil {
		h.Error(c, err)
		return
	}
	req.ApplyTo(l)

	if err := h.service.Update(c.Request.Context(), l); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromLocation(l))
}

// Delete handles DELETE /locations/:id
func (h *LocationHandler) Delete(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	locationID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), companyID, locationID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// GetByID handles GET /locations/:id
func (h *LocationHandler) GetByID(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}
	locationID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	l, err := h.service.GetByID(c.Request.Context(), companyID, locationID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromLocation(l))
}

// GetDefault handles GET /locations/default
func (h *LocationHandler) GetDefault(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}

	l, err := h.service.GetDefault(c.Request.Context(), companyID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromLocation(l))
}

// List handles GET /locations
func (h *LocationHandler) List(c *gin.Context) {
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
		Items:      dto.FromLocations(result.Items),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}
