package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/middleware"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/repository"
)

type SuppliersHandler struct {
	suppliers *repository.SuppliersRepository
}

func NewSuppliersHandler(suppliers *repository.SuppliersRepository) *SuppliersHandler {
	return &SuppliersHandler{suppliers: suppliers}
}

// ListSuppliers lists suppliers
// @Summary List suppliers
// @Tags suppliers
// @Produce json
// @Param status query string false "Status filter"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} models.SupplierListResponse
// @Router /suppliers [get]
func (h *SuppliersHandler) ListSuppliers(c *gin.Context) {
	page, limit := parsePagination(c)

	var status *models.SupplierStatus
	if raw := c.Query("status"); raw != "" {
		s := models.SupplierStatus(raw)
		status = &s
	}

	suppliers, total, err := h.suppliers.GetSuppliers(status, page, limit)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	respondList(c, suppliers, page, limit, total)
}

// GetSupplier retrieves a supplier by ID
// @Summary Get supplier by ID
// @Tags suppliers
// @Produce json
// @Param id path string true "Supplier ID"
// @Success 200 {object} models.SupplierResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /suppliers/{id} [get]
func (h *SuppliersHandler) GetSupplier(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	supplier, err := h.suppliers.GetSupplierByID(id)
	if err != nil {
		notFoundOrInternal(c, err, "Supplier not found")
		return
	}
	respondData(c, http.StatusOK, supplier)
}

// GetSupplierBySlug retrieves a supplier by slug
// @Summary Get supplier by slug
// @Tags suppliers
// @Produce json
// @Param slug path string true "Supplier slug"
// @Success 200 {object} models.SupplierResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /suppliers/slug/{slug} [get]
func (h *SuppliersHandler) GetSupplierBySlug(c *gin.Context) {
	supplier, err := h.suppliers.GetSupplierBySlug(c.Param("slug"))
	if err != nil {
		notFoundOrInternal(c, err, "Supplier not found")
		return
	}
	respondData(c, http.StatusOK, supplier)
}

// UpdateSupplier applies a partial supplier profile update. Suppliers may
// only edit their own profile; admins may edit any.
// @Summary Update a supplier profile
// @Tags suppliers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Supplier ID"
// @Param supplier body models.UpdateSupplierRequest true "Supplier update request"
// @Success 200 {object} models.SupplierResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /suppliers/{id} [put]
func (h *SuppliersHandler) UpdateSupplier(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if scope := middleware.SupplierScope(c); scope != nil && *scope != id {
		respondError(c, http.StatusForbidden, "FORBIDDEN", "Cannot edit another supplier's profile")
		return
	}

	var req models.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Website != nil {
		updates["website"] = *req.Website
	}
	if req.LogoURL != nil {
		updates["logo_url"] = *req.LogoURL
	}
	if req.PrimaryContact != nil {
		updates["primary_contact"] = *req.PrimaryContact
	}
	if req.SecondaryContact != nil {
		updates["secondary_contact"] = *req.SecondaryContact
	}
	if req.DeliveryDays != nil {
		updates["delivery_days"] = *req.DeliveryDays
	}
	if len(updates) == 0 {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "no fields to update")
		return
	}

	if err := h.suppliers.UpdateSupplier(id, updates); err != nil {
		notFoundOrInternal(c, err, "Supplier not found")
		return
	}

	supplier, err := h.suppliers.GetSupplierByID(id)
	if err != nil {
		notFoundOrInternal(c, err, "Supplier not found")
		return
	}
	respondData(c, http.StatusOK, supplier)
}

// UpdateStatus transitions a supplier's status. Admin only. Suspending or
// terminating a supplier deactivates its active products.
// @Summary Update supplier status
// @Tags suppliers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Supplier ID"
// @Param status body models.UpdateSupplierStatusRequest true "Status update request"
// @Success 200 {object} models.SupplierResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /suppliers/{id}/status [patch]
func (h *SuppliersHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateSupplierStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	switch req.Status {
	case models.SupplierStatusActive, models.SupplierStatusInactive, models.SupplierStatusSuspended, models.SupplierStatusTerminated, models.SupplierStatusPending:
	default:
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "unknown supplier status")
		return
	}

	if err := h.suppliers.UpdateSupplierStatus(id, req.Status); err != nil {
		notFoundOrInternal(c, err, "Supplier not found")
		return
	}

	supplier, err := h.suppliers.GetSupplierByID(id)
	if err != nil {
		notFoundOrInternal(c, err, "Supplier not found")
		return
	}
	respondData(c, http.StatusOK, supplier)
}

// GetStatusCounts returns suppliers grouped by status. Admin only.
// @Summary Supplier status counts
// @Tags suppliers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.SuccessResponse
// @Router /suppliers/stats [get]
func (h *SuppliersHandler) GetStatusCounts(c *gin.Context) {
	counts, err := h.suppliers.CountByStatus()
	if err != nil {
		respondInternalError(c, err)
		return
	}
	respondData(c, http.StatusOK, counts)
}
