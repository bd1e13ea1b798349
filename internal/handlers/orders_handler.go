package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/middleware"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/repository"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/services"
)

type OrdersHandler struct {
	orders   *services.OrderService
	receipts *services.ReceiptService
}

func NewOrdersHandler(orders *services.OrderService, receipts *services.ReceiptService) *OrdersHandler {
	return &OrdersHandler{orders: orders, receipts: receipts}
}

// Checkout converts the open cart into an order
// @Summary Checkout
// @Description Converts the customer's open cart into an order and initiates payment. Repeating a request with the same X-Idempotency-Key returns the already created order.
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Idempotency-Key header string false "Idempotency key"
// @Param checkout body models.CheckoutRequest true "Checkout request"
// @Success 201 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /orders/checkout [post]
func (h *OrdersHandler) Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	req.IdempotencyKey = c.GetHeader("X-Idempotency-Key")

	order, intent, err := h.orders.Checkout(c.Request.Context(), middleware.CurrentUser(c).ID, &req)
	if err != nil {
		switch err {
		case services.ErrEmptyCart:
			respondError(c, http.StatusBadRequest, "EMPTY_CART", "Cart is empty")
		case services.ErrStaleCartItems:
			respondError(c, http.StatusConflict, "STALE_CART_ITEMS", "Cart has stale items that must be refreshed before checkout")
		case services.ErrProductNotAvailable:
			respondError(c, http.StatusConflict, "PRODUCT_NOT_AVAILABLE", "A cart item is no longer available")
		case services.ErrInsufficientStock:
			respondError(c, http.StatusConflict, "INSUFFICIENT_STOCK", "A cart item exceeds available stock")
		default:
			respondInternalError(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
		"payment": intent,
	})
}

// ListOrders lists orders visible to the caller. Customers see their own
// orders, suppliers see orders containing their items, admins see all.
// @Summary List orders
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param status query string false "Order status filter"
// @Param paymentStatus query string false "Payment status filter"
// @Param dateFrom query string false "Placed-at lower bound (RFC 3339)"
// @Param dateTo query string false "Placed-at upper bound (RFC 3339)"
// @Param search query string false "Order number or customer email"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} models.ListResponse
// @Router /orders [get]
func (h *OrdersHandler) ListOrders(c *gin.Context) {
	page, limit := parsePagination(c)
	filters := h.filtersFromQuery(c)

	user := middleware.CurrentUser(c)
	switch user.Role {
	case models.RoleCustomer:
		filters.CustomerID = &user.ID
	case models.RoleSupplier:
		filters.SupplierID = user.SupplierID
	}

	orders, total, err := h.orders.GetOrders(filters, page, limit)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	respondList(c, orders, page, limit, total)
}

func (h *OrdersHandler) filtersFromQuery(c *gin.Context) repository.OrderFilters {
	filters := repository.OrderFilters{Search: c.Query("search")}
	if raw := c.Query("status"); raw != "" {
		status := models.OrderStatus(raw)
		filters.Status = &status
	}
	if raw := c.Query("paymentStatus"); raw != "" {
		status := models.PaymentStatus(raw)
		filters.PaymentStatus = &status
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
	return filters
}

// GetOrder retrieves an order visible to the caller
// @Summary Get order by ID
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} models.OrderResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /orders/{id} [get]
func (h *OrdersHandler) GetOrder(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(id)
	if err != nil {
		notFoundOrInternal(c, err, "Order not found")
		return
	}
	if !h.canViewOrder(c, order) {
		respondNotFound(c, "Order not found")
		return
	}
	respondData(c, http.StatusOK, order)
}

// canViewOrder enforces the same visibility rules as ListOrders
func (h *OrdersHandler) canViewOrder(c *gin.Context, order *models.Order) bool {
	user := middleware.CurrentUser(c)
	switch user.Role {
	case models.RoleAdmin:
		return true
	case models.RoleCustomer:
		return order.CustomerID == user.ID
	case models.RoleSupplier:
		if user.SupplierID == nil {
			return false
		}
		for _, item := range order.Items {
			if item.SupplierID == *user.SupplierID {
				return true
			}
		}
	}
	return false
}

// UpdateStatus transitions an order's status
// @Summary Update order status
// @Description Applies a lifecycle transition. Cancelling restocks items and reverses pending commission; completing settles it.
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param status body models.UpdateOrderStatusRequest true "Status update request"
// @Success 200 {object} models.OrderResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /orders/{id}/status [patch]
func (h *OrdersHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	existing, err := h.orders.GetOrder(id)
	if err != nil {
		notFoundOrInternal(c, err, "Order not found")
		return
	}
	// Suppliers may only transition orders that carry their own items
	if !h.canViewOrder(c, existing) {
		respondNotFound(c, "Order not found")
		return
	}

	order, err := h.orders.UpdateStatus(id, req.Status, req.Notes, middleware.CurrentUser(c).Email)
	if err != nil {
		if repository.IsNotFound(err) {
			respondNotFound(c, "Order not found")
			return
		}
		respondError(c, http.StatusConflict, "INVALID_TRANSITION", err.Error())
		return
	}
	respondData(c, http.StatusOK, order)
}

// CancelOrder cancels the caller's own order while it is still cancellable
// @Summary Cancel own order
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} models.OrderResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /orders/{id}/cancel [post]
func (h *OrdersHandler) CancelOrder(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	user := middleware.CurrentUser(c)
	order, err := h.orders.GetOrder(id)
	if err != nil {
		notFoundOrInternal(c, err, "Order not found")
		return
	}
	// Customers cancel their own orders, suppliers only orders carrying
	// their items.
	if !h.canViewOrder(c, order) {
		respondNotFound(c, "Order not found")
		return
	}

	notes := "Cancelled by customer"
	if user.Role != models.RoleCustomer {
		notes = fmt.Sprintf("Cancelled by %s", strings.ToLower(string(user.Role)))
	}

	updated, err := h.orders.UpdateStatus(id, models.OrderStatusCancelled, notes, user.Email)
	if err != nil {
		respondError(c, http.StatusConflict, "INVALID_TRANSITION", err.Error())
		return
	}
	respondData(c, http.StatusOK, updated)
}

// Refund refunds an order fully or partially. Admin only.
// @Summary Refund an order
// @Description Issues a gateway refund. Omitting the amount refunds the full remaining paid amount; a full refund cancels the order.
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param refund body models.RefundOrderRequest true "Refund request"
// @Success 200 {object} models.OrderResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /orders/{id}/refund [post]
func (h *OrdersHandler) Refund(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req models.RefundOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	order, err := h.orders.Refund(c.Request.Context(), id, &req, middleware.CurrentUser(c).Email)
	if err != nil {
		switch err {
		case services.ErrOrderNotRefund:
			respondError(c, http.StatusConflict, "NOT_REFUNDABLE", "Order payment is not in a refundable state")
		case services.ErrRefundTooLarge:
			respondError(c, http.StatusConflict, "REFUND_TOO_LARGE", "Refund amount exceeds the remaining paid amount")
		default:
			if repository.IsNotFound(err) {
				respondNotFound(c, "Order not found")
				return
			}
			respondInternalError(c, err)
		}
		return
	}
	respondData(c, http.StatusOK, order)
}

// DownloadReceipt generates and streams the order receipt as PDF
// @Summary Download order receipt
// @Tags orders
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {file} binary
// @Failure 404 {object} models.ErrorResponse
// @Router /orders/{id}/receipt [get]
func (h *OrdersHandler) DownloadReceipt(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(id)
	if err != nil {
		notFoundOrInternal(c, err, "Order not found")
		return
	}
	if !h.canViewOrder(c, order) {
		respondNotFound(c, "Order not found")
		return
	}

	pdf, receiptNumber, err := h.receipts.Generate(order)
	if err != nil {
		respondInternalError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", receiptNumber))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
