package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/middleware"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/repository"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/services"
)

type ProductsHandler struct {
	products *services.ProductService
}

func NewProductsHandler(products *services.ProductService) *ProductsHandler {
	return &ProductsHandler{products: products}
}

// CreateProduct creates a new product offer
// @Summary Create a product
// @Description Creates a product offer owned by the authenticated supplier
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product body models.CreateProductRequest true "Product creation request"
// @Success 201 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /products [post]
func (h *ProductsHandler) CreateProduct(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user.SupplierID == nil {
		respondError(c, http.StatusForbidden, "FORBIDDEN", "Account is not linked to a supplier")
		return
	}

	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	product, err := h.products.CreateProduct(*user.SupplierID, &req, user.Email)
	if err != nil {
		switch err {
		case services.ErrInvalidPrice:
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "price must be a positive decimal")
		case services.ErrSupplierNotActive:
			respondError(c, http.StatusForbidden, "SUPPLIER_NOT_ACTIVE", "Supplier is not approved to sell")
		default:
			if repository.IsNotFound(err) {
				respondNotFound(c, "Category or group not found")
				return
			}
			respondInternalError(c, err)
		}
		return
	}

	respondData(c, http.StatusCreated, product)
}

// GetProduct retrieves a product by ID
// @Summary Get product by ID
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id} [get]
func (h *ProductsHandler) GetProduct(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.products.GetProduct(id)
	if err != nil {
		notFoundOrInternal(c, err, "Product not found")
		return
	}
	respondData(c, http.StatusOK, product)
}

// GetProductBySlug retrieves a product by slug
// @Summary Get product by slug
// @Tags products
// @Produce json
// @Param slug path string true "Product slug"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /products/slug/{slug} [get]
func (h *ProductsHandler) GetProductBySlug(c *gin.Context) {
	product, err := h.products.GetProductBySlug(c.Param("slug"))
	if err != nil {
		notFoundOrInternal(c, err, "Product not found")
		return
	}
	respondData(c, http.StatusOK, product)
}

// ListProducts lists and searches products
// @Summary List products
// @Description Lists products with filters. A query parameter switches to weighted full-text search.
// @Tags products
// @Produce json
// @Param q query string false "Search query"
// @Param categoryId query string false "Category filter"
// @Param supplierId query string false "Supplier filter"
// @Param groupId query string false "Group filter"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} models.ListResponse
// @Router /products [get]
func (h *ProductsHandler) ListProducts(c *gin.Context) {
	req := h.searchRequestFromQuery(c)

	products, total, err := h.products.SearchProducts(req)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	respondList(c, products, req.Page, req.Limit, total)
}

func (h *ProductsHandler) searchRequestFromQuery(c *gin.Context) *models.SearchProductsRequest {
	page, limit := parsePagination(c)
	req := &models.SearchProductsRequest{Page: page, Limit: limit}

	if q := c.Query("q"); q != "" {
		req.Query = &q
	}
	if v := c.Query("categoryId"); v != "" {
		req.CategoryID = &v
	}
	if v := c.Query("supplierId"); v != "" {
		req.SupplierID = &v
	}
	if v := c.Query("groupId"); v != "" {
		req.GroupID = &v
	}
	if v := c.Query("brands"); v != "" {
		req.Brands = strings.Split(v, ",")
	}
	if v := c.Query("status"); v != "" {
		for _, s := range strings.Split(v, ",") {
			req.Status = append(req.Status, models.ProductStatus(s))
		}
	}
	if v := c.Query("inventoryStatus"); v != "" {
		for _, s := range strings.Split(v, ",") {
			req.InventoryStatus = append(req.InventoryStatus, models.InventoryStatus(s))
		}
	}
	if v := c.Query("minPrice"); v != "" {
		req.MinPrice = &v
	}
	if v := c.Query("maxPrice"); v != "" {
		req.MaxPrice = &v
	}
	if v := c.Query("minRating"); v != "" {
		if rating, err := strconv.ParseFloat(v, 64); err == nil {
			req.MinRating = &rating
		}
	}
	if v := c.Query("tags"); v != "" {
		req.Tags = strings.Split(v, ",")
	}
	if v := c.Query("sortBy"); v != "" {
		req.SortBy = &v
	}
	if v := c.Query("sortOrder"); v != "" {
		req.SortOrder = &v
	}
	return req
}

// SearchSuggestions returns autocomplete suggestions
// @Summary Search suggestions
// @Tags products
// @Produce json
// @Param q query string true "Search prefix"
// @Success 200 {object} models.SuccessResponse
// @Router /products/suggestions [get]
func (h *ProductsHandler) SearchSuggestions(c *gin.Context) {
	query := c.Query("q")
	if len(query) < 2 {
		respondData(c, http.StatusOK, []string{})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	suggestions, err := h.products.GetSearchSuggestions(query, limit)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	respondData(c, http.StatusOK, suggestions)
}

// UpdateProduct applies a partial product update
// @Summary Update a product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param product body models.UpdateProductRequest true "Product update request"
// @Success 200 {object} models.SuccessResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id} [put]
func (h *ProductsHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	product, err := h.products.UpdateProduct(id, middleware.SupplierScope(c), &req, user.Email)
	if err != nil {
		h.respondProductError(c, err)
		return
	}
	respondData(c, http.StatusOK, product)
}

// UpdateStatus transitions a product's lifecycle status
// @Summary Update product status
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param status body models.UpdateProductStatusRequest true "Status update request"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id}/status [patch]
func (h *ProductsHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateProductStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	product, err := h.products.UpdateStatus(id, middleware.SupplierScope(c), req.Status)
	if err != nil {
		h.respondProductError(c, err)
		return
	}
	respondData(c, http.StatusOK, product)
}

// BulkUpdateStatus updates several products at once
// @Summary Bulk update product status
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.BulkUpdateRequest true "Bulk update request"
// @Success 200 {object} models.SuccessResponse
// @Router /products/bulk/status [post]
func (h *ProductsHandler) BulkUpdateStatus(c *gin.Context) {
	var req models.BulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	updated, err := h.products.BulkUpdateStatus(middleware.SupplierScope(c), &req)
	if err != nil {
		h.respondProductError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"updated": updated})
}

// DeleteProduct soft-deletes a product
// @Summary Delete a product
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id} [delete]
func (h *ProductsHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.products.DeleteProduct(id, middleware.SupplierScope(c)); err != nil {
		h.respondProductError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"deleted": true})
}

// AdjustStock applies a relative stock adjustment
// @Summary Adjust product stock
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param adjustment body models.InventoryAdjustmentRequest true "Stock adjustment request"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /products/{id}/stock [post]
func (h *ProductsHandler) AdjustStock(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req models.InventoryAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	product, err := h.products.AdjustStock(id, middleware.SupplierScope(c), req.Adjustment, req.Reason)
	if err != nil {
		if errors.Is(err, repository.ErrNegativeStock) {
			respondError(c, http.StatusBadRequest, "INSUFFICIENT_STOCK", "Adjustment would make stock negative")
			return
		}
		h.respondProductError(c, err)
		return
	}
	respondData(c, http.StatusOK, product)
}

// CheckStock verifies availability for a set of products
// @Summary Check stock availability
// @Tags products
// @Accept json
// @Produce json
// @Param request body models.StockCheckRequest true "Stock check request"
// @Success 200 {object} models.StockCheckResponse
// @Router /products/stock/check [post]
func (h *ProductsHandler) CheckStock(c *gin.Context) {
	var req models.StockCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	resp, err := h.products.CheckStock(&req)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetStats returns catalog statistics
// @Summary Product statistics
// @Description Returns status and inventory breakdowns. Suppliers see only their own products.
// @Tags products
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.SuccessResponse
// @Router /products/stats [get]
func (h *ProductsHandler) GetStats(c *gin.Context) {
	stats, err := h.products.GetStats(middleware.SupplierScope(c))
	if err != nil {
		respondInternalError(c, err)
		return
	}
	respondData(c, http.StatusOK, stats)
}

func (h *ProductsHandler) respondProductError(c *gin.Context, err error) {
	switch err {
	case services.ErrNotProductOwner:
		respondError(c, http.StatusForbidden, "FORBIDDEN", "Product belongs to another supplier")
	case services.ErrInvalidPrice:
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "price must be a positive decimal")
	default:
		if repository.IsNotFound(err) {
			respondNotFound(c, "Product not found")
			return
		}
		respondInternalError(c, err)
	}
}
