package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/middleware"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/repository"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/services"
)

type CartHandler struct {
	cart *services.CartService
}

func NewCartHandler(cart *services.CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

// GetCart returns the authenticated customer's open cart
// @Summary Get own cart
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.SuccessResponse
// @Router /cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.cart.GetCart(middleware.CurrentUser(c).ID)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	respondData(c, http.StatusOK, cart)
}

// AddItem adds a product offer to the cart
// @Summary Add a cart item
// @Description Adds a product to the open cart, merging quantities when the product is already present
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param item body models.AddCartItemRequest true "Cart item request"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req models.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	cart, err := h.cart.AddItem(middleware.CurrentUser(c).ID, &req)
	if err != nil {
		h.respondCartError(c, err)
		return
	}
	respondData(c, http.StatusOK, cart)
}

// UpdateItem changes a cart item's quantity
// @Summary Update a cart item
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param itemId path string true "Cart item ID"
// @Param item body models.UpdateCartItemRequest true "Quantity update request"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /cart/items/{itemId} [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	itemID, ok := parseUUIDParam(c, "itemId")
	if !ok {
		return
	}

	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	cart, err := h.cart.UpdateItem(middleware.CurrentUser(c).ID, itemID, &req)
	if err != nil {
		h.respondCartError(c, err)
		return
	}
	respondData(c, http.StatusOK, cart)
}

// RemoveItem removes a cart item
// @Summary Remove a cart item
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Param itemId path string true "Cart item ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /cart/items/{itemId} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	itemID, ok := parseUUIDParam(c, "itemId")
	if !ok {
		return
	}

	cart, err := h.cart.RemoveItem(middleware.CurrentUser(c).ID, itemID)
	if err != nil {
		h.respondCartError(c, err)
		return
	}
	respondData(c, http.StatusOK, cart)
}

// ClearCart removes all items from the cart
// @Summary Clear the cart
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.SuccessResponse
// @Router /cart [delete]
func (h *CartHandler) ClearCart(c *gin.Context) {
	cart, err := h.cart.ClearCart(middleware.CurrentUser(c).ID)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	respondData(c, http.StatusOK, cart)
}

// RefreshStaleItems re-prices items marked stale by product events
// @Summary Refresh stale cart items
// @Description Re-captures current prices for stale items and drops items whose product is no longer purchasable
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.SuccessResponse
// @Router /cart/refresh [post]
func (h *CartHandler) RefreshStaleItems(c *gin.Context) {
	cart, err := h.cart.RefreshStaleItems(middleware.CurrentUser(c).ID)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	respondData(c, http.StatusOK, cart)
}

func (h *CartHandler) respondCartError(c *gin.Context, err error) {
	switch err {
	case services.ErrProductNotAvailable:
		respondError(c, http.StatusConflict, "PRODUCT_NOT_AVAILABLE", "Product is not available for purchase")
	case services.ErrInsufficientStock:
		respondError(c, http.StatusConflict, "INSUFFICIENT_STOCK", "Requested quantity exceeds available stock")
	case services.ErrBelowMinOrderQty:
		respondError(c, http.StatusBadRequest, "BELOW_MIN_ORDER_QTY", "Quantity is below the product's minimum order quantity")
	case services.ErrAboveMaxOrderQty:
		respondError(c, http.StatusBadRequest, "ABOVE_MAX_ORDER_QTY", "Quantity is above the product's maximum order quantity")
	default:
		if repository.IsNotFound(err) {
			respondNotFound(c, "Cart item or product not found")
			return
		}
		respondInternalError(c, err)
	}
}
