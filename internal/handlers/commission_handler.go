package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/middleware"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/repository"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/services"
)

type CommissionHandler struct {
	commission *services.CommissionService
}

func NewCommissionHandler(commission *services.CommissionService) *CommissionHandler {
	return &CommissionHandler{commission: commission}
}

// CreateSetting creates a commission setting. Admin only.
// @Summary Create a commission setting
// @Description Creates a rate for one of the four scopes: global, category, supplier or supplier plus category
// @Tags commission
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param setting body models.CreateCommissionSettingRequest true "Setting creation request"
// @Success 201 {object} models.CommissionSettingResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /commission/settings [post]
func (h *CommissionHandler) CreateSetting(c *gin.Context) {
	var req models.CreateCommissionSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	setting, err := h.commission.CreateSetting(&req, middleware.CurrentUser(c).Email)
	if err != nil {
		switch err {
		case services.ErrDuplicateSetting:
			respondError(c, http.StatusConflict, "DUPLICATE_SETTING", "An active setting already exists for this scope")
		case services.ErrInvalidRate:
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "rate must be between 0 and 100")
		default:
			respondInternalError(c, err)
		}
		return
	}
	respondData(c, http.StatusCreated, setting)
}

// ListSettings lists commission settings. Admin only.
// @Summary List commission settings
// @Tags commission
// @Produce json
// @Security BearerAuth
// @Param supplierId query string false "Supplier filter"
// @Param categoryId query string false "Category filter"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} models.CommissionSettingListResponse
// @Router /commission/settings [get]
func (h *CommissionHandler) ListSettings(c *gin.Context) {
	supplierID, ok := queryUUID(c, "supplierId")
	if !ok {
		return
	}
	categoryID, ok := queryUUID(c, "categoryId")
	if !ok {
		return
	}
	page, limit := parsePagination(c)

	settings, total, err := h.commission.GetSettings(supplierID, categoryID, page, limit)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	respondList(c, settings, page, limit, total)
}

// UpdateSetting updates a commission setting. Admin only.
// @Summary Update a commission setting
// @Description Changes the rate or active flag. Existing ledger entries keep the rate frozen at checkout.
// @Tags commission
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Setting ID"
// @Param setting body models.UpdateCommissionSettingRequest true "Setting update request"
// @Success 200 {object} models.CommissionSettingResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /commission/settings/{id} [put]
func (h *CommissionHandler) UpdateSetting(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateCommissionSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	setting, err := h.commission.UpdateSetting(id, &req, middleware.CurrentUser(c).Email)
	if err != nil {
		if err == services.ErrInvalidRate {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "rate must be between 0 and 100")
			return
		}
		notFoundOrInternal(c, err, "Commission setting not found")
		return
	}
	respondData(c, http.StatusOK, setting)
}

// DeleteSetting removes a commission setting. Admin only.
// @Summary Delete a commission setting
// @Tags commission
// @Produce json
// @Security BearerAuth
// @Param id path string true "Setting ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /commission/settings/{id} [delete]
func (h *CommissionHandler) DeleteSetting(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.commission.DeleteSetting(id); err != nil {
		notFoundOrInternal(c, err, "Commission setting not found")
		return
	}
	respondData(c, http.StatusOK, gin.H{"deleted": true})
}

// ResolveRate previews the rate that would apply to a supplier and
// category pair. Admin only.
// @Summary Preview commission resolution
// @Description Resolves the most specific active setting: supplier plus category, then supplier, then category, then global
// @Tags commission
// @Produce json
// @Security BearerAuth
// @Param supplierId query string true "Supplier ID"
// @Param categoryId query string true "Category ID"
// @Success 200 {object} models.SuccessResponse
// @Router /commission/resolve [get]
func (h *CommissionHandler) ResolveRate(c *gin.Context) {
	supplierID, ok := queryUUID(c, "supplierId")
	if !ok {
		return
	}
	categoryID, ok := queryUUID(c, "categoryId")
	if !ok {
		return
	}
	if supplierID == nil || categoryID == nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "supplierId and categoryId are required")
		return
	}

	resolved, err := h.commission.Resolve(*supplierID, *categoryID)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	respondData(c, http.StatusOK, resolved)
}

// ListRecords lists commission ledger entries. Suppliers see only their
// own entries.
// @Summary List commission records
// @Tags commission
// @Produce json
// @Security BearerAuth
// @Param orderId query string false "Order filter"
// @Param supplierId query string false "Supplier filter (admin only)"
// @Param status query string false "Status filter"
// @Param dateFrom query string false "Created-at lower bound (RFC 3339)"
// @Param dateTo query string false "Created-at upper bound (RFC 3339)"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} models.CommissionRecordListResponse
// @Router /commission/records [get]
func (h *CommissionHandler) ListRecords(c *gin.Context) {
	page, limit := parsePagination(c)

	filters := repository.CommissionRecordFilters{}
	orderID, ok := queryUUID(c, "orderId")
	if !ok {
		return
	}
	filters.OrderID = orderID

	user := middleware.CurrentUser(c)
	if scope := middleware.SupplierScope(c); scope != nil {
		filters.SupplierID = scope
	} else if user == nil || user.Role != models.RoleAdmin {
		// A non-admin without a supplier scope has no ledger of their own
		respondError(c, http.StatusForbidden, "FORBIDDEN", "Commission records require a supplier or admin account")
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

	records, total, err := h.commission.GetRecords(filters, page, limit)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	respondList(c, records, page, limit, total)
}
