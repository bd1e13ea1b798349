package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/middleware"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/repository"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportHandler struct {
	exports *services.ExportService
	orders  *OrdersHandler
}

func NewExportHandler(exports *services.ExportService, orders *OrdersHandler) *ExportHandler {
	return &ExportHandler{exports: exports, orders: orders}
}

// ExportProducts streams a product export workbook. Suppliers export
// their own catalog; admins export everything.
// @Summary Export products as XLSX
// @Tags exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} binary
// @Router /exports/products [get]
func (h *ExportHandler) ExportProducts(c *gin.Context) {
	buf, filename, err := h.exports.ExportProducts(middleware.SupplierScope(c))
	if err != nil {
		respondInternalError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ExportOrders streams an order export workbook with a per-item
// commission breakdown sheet.
// @Summary Export orders as XLSX
// @Tags exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param status query string false "Order status filter"
// @Param paymentStatus query string false "Payment status filter"
// @Param dateFrom query string false "Placed-at lower bound (RFC 3339)"
// @Param dateTo query string false "Placed-at upper bound (RFC 3339)"
// @Success 200 {file} binary
// @Router /exports/orders [get]
func (h *ExportHandler) ExportOrders(c *gin.Context) {
	filters := h.orders.filtersFromQuery(c)
	if scope := middleware.SupplierScope(c); scope != nil {
		filters.SupplierID = scope
	}

	buf, filename, err := h.exports.ExportOrders(filters)
	if err != nil {
		respondInternalError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ExportCommission streams the commission ledger workbook. Suppliers
// export their own ledger; admins export across suppliers.
// @Summary Export commission ledger as XLSX
// @Tags exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param supplierId query string false "Supplier filter (admin only)"
// @Param status query string false "Status filter"
// @Param dateFrom query string false "Created-at lower bound (RFC 3339)"
// @Param dateTo query string false "Created-at upper bound (RFC 3339)"
// @Success 200 {file} binary
// @Router /exports/commission [get]
func (h *ExportHandler) ExportCommission(c *gin.Context) {
	filters := repository.CommissionRecordFilters{}
	user := middleware.CurrentUser(c)
	if scope := middleware.SupplierScope(c); scope != nil {
		filters.SupplierID = scope
	} else if user == nil || user.Role != models.RoleAdmin {
		respondError(c, http.StatusForbidden, "FORBIDDEN", "Commission exports require a supplier or admin account")
		return
	} else {
		supplierID, ok := queryUUID(c, "supplierId")
		if !ok {
			return
		}
		filters.SupplierID = supplierID
	}
	if raw := c.Query("status"); raw != "" {
		status := models.CommissionStatus(raw)
		filters.Status = &status
	}
	if raw := c.Query("dateFrom"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filters.DateFrom = &t
		}
	}
	if raw := c.Query("dateTo"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filters.DateTo = &t
		}
	}

	buf, filename, err := h.exports.ExportCommission(filters)
	if err != nil {
		respondInternalError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
