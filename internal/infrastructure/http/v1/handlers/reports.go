package handlers

import (
	"github.com/gin-gonic/gin"

	"posledger/internal/domain/reports"
	"posledger/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// GetStockBalance handles GET /reports/stock-balance
func (h *ReportsHandler) GetStockBalance(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}

	var query dto.StockBalanceQuery
	if !h.BindQuery(c, &query) {
		return
	}

	report, err := h.service.GetStockBalance(c.Request.Context(), companyID, query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// GetStockTurnover handles GET /reports/stock-turnover
func (h *ReportsHandler) GetStockTurnover(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}

	var query dto.StockTurnoverQuery
	if !h.BindQuery(c, &query) {
		return
	}

	report, err := h.service.GetStockTurnover(c.Request.Context(), companyID, query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// GetReconciliation handles GET /reports/reconciliation
func (h *ReportsHandler) GetReconciliation(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}

	var query dto.ReconciliationQuery
	if !h.BindQuery(c, &query) {
		return
	}

	report, err := h.service.GetReconciliation(c.Request.Context(), companyID, query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// GetSalesSummary handles GET /reports/sales-summary
func (h *ReportsHandler) GetSalesSummary(c *gin.Context) {
	companyID, ok := h.CompanyID(c)
	if !ok {
		return
	}

	var query dto.SalesSummaryQuery
	if !h.BindQuery(c, &query) {
		return
	}

	report, err := h.service.GetSalesSummary(c.Request.Context(), companyID, query.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}
