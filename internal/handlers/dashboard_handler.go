package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/middleware"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/services"
)

type DashboardHandler struct {
	dashboard *services.DashboardService
}

func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

func dateWindow(c *gin.Context) (*time.Time, *time.Time) {
	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			from = &t
		}
	}
	if raw := c.Query("to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			to = &t
		}
	}
	return from, to
}

// SupplierDashboard returns sales metrics for the authenticated supplier
// @Summary Supplier dashboard
// @Description Returns the supplier's sales, commission owed, top products, low stock alerts and revenue trend for the window (default trailing 30 days)
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param from query string false "Window start (RFC 3339)"
// @Param to query string false "Window end (RFC 3339)"
// @Success 200 {object} models.SuccessResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /dashboard/supplier [get]
func (h *DashboardHandler) SupplierDashboard(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user.SupplierID == nil {
		respondError(c, http.StatusForbidden, "FORBIDDEN", "Account is not linked to a supplier")
		return
	}

	from, to := dateWindow(c)
	dashboard, err := h.dashboard.SupplierDashboard(*user.SupplierID, from, to)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	respondData(c, http.StatusOK, dashboard)
}

// AdminDashboard returns marketplace-wide metrics. Admin only.
// @Summary Admin dashboard
// @Description Returns marketplace sales, commission totals, order status distribution, top suppliers and revenue trend
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param from query string false "Window start (RFC 3339)"
// @Param to query string false "Window end (RFC 3339)"
// @Success 200 {object} models.SuccessResponse
// @Router /dashboard/admin [get]
func (h *DashboardHandler) AdminDashboard(c *gin.Context) {
	from, to := dateWindow(c)
	dashboard, err := h.dashboard.AdminDashboard(from, to)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	respondData(c, http.StatusOK, dashboard)
}
