package handlers

import (
	"github.com/gin-gonic/gin"

	"posledger/internal/core/apperror"
	"posledger/internal/core/id"
	"posledger/internal/domain/inventory"
	"posledger/internal/infrastructure/http/v1/dto"
)

// InventoryHandler handles stock movement and snapshot endpoints.
type InventoryHandler struct {
	*BaseHandler
	service  *inventory.Service
	adjuster *inventory.ReservedAdjuster
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(base *BaseHandler, service *inventory.Service, adjuster *inventory.ReservedAdjuster) *InventoryHandler {
	return &InventoryHandler{
		BaseHandler: base,
		service:     service,
		adjuster:    adjuster,
	}
}

// CreateMovement handles POST /inventory/movements
func (h *InventoryHandler) CreateMovement(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}

	var req dto.CreateMovementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	mv, err := req.ToMovement(companyID, h.UserID(c))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id in request").WithDetail("error", err.Error()))
		return
	}

	entry, err := h.service.CreateMovement(c.Request.Context(), mv)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.CreatedData(c, dto.FromMovementEntry(entry))
}

// ListMovements handles GET /inventory/movements
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}

	var query dto.MovementListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	entries, err := h.service.ListMovements(c.Request.Context(), companyID, query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      dto.FromMovementEntries(entries),
		TotalCount: int64(len(entries)),
		Limit:      query.Limit,
		Offset:     query.Offset,
	})
}

// GetQuantity handles GET /inventory/quantity
func (h *InventoryHandler) GetQuantity(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}

	productID, err := id.Parse(c.Query("productId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId"))
		return
	}
	locationID, err := id.Parse(c.Query("locationId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid locationId"))
		return
	}

	qty, err := h.service.GetQuantity(c.Request.Context(), companyID, productID, locationID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.QuantityResponse{
		ProductID:  productID.String(),
		LocationID: locationID.String(),
		Quantity:   qty,
	})
}

// ListRecords handles GET /inventory/records
func (h *InventoryHandler) ListRecords(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}

	var query dto.RecordListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	records, err := h.service.ListRecords(c.Request.Context(), companyID, query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      dto.FromRecords(records),
		TotalCount: int64(len(records)),
		Limit:      query.Limit,
		Offset:     query.Offset,
	})
}

// SetReserved handles PUT /inventory/reserved
func (h *InventoryHandler) SetReserved(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}

	var req dto.SetReservedRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inputs, err := req.ToInputs()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id in request").WithDetail("error", err.Error()))
		return
	}

	records, err := h.adjuster.SetReservedQuantities(c.Request.Context(), companyID, inputs)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      dto.FromRecords(records),
		TotalCount: int64(len(records)),
	})
}

// GetReserved handles GET /inventory/reserved
func (h *InventoryHandler) GetReserved(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}

	var query dto.RecordListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter := query.ToFilter()
	filter.ReservedGT = true

	records, err := h.adjuster.GetReservedQuantities(c.Request.Context(), companyID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      dto.FromRecords(records),
		TotalCount: int64(len(records)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}
