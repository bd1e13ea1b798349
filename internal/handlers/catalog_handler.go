package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/repository"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/services"
)

// CatalogHandler serves categories, comparison groups and the price
// comparison views built on top of them.
type CatalogHandler struct {
	catalog    *repository.CatalogRepository
	comparison *services.ComparisonService
}

func NewCatalogHandler(catalog *repository.CatalogRepository, comparison *services.ComparisonService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, comparison: comparison}
}

// CreateCategory creates a category
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param category body models.CreateCategoryRequest true "Category creation request"
// @Success 201 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /categories [post]
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	category := &models.Category{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
	if req.Slug != nil {
		category.Slug = *req.Slug
	}
	if req.Position != nil {
		category.Position = *req.Position
	}
	if req.ParentID != nil {
		parentID, err := uuid.Parse(*req.ParentID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "parentId must be a valid UUID")
			return
		}
		category.ParentID = &parentID
	}

	if err := h.catalog.CreateCategory(category); err != nil {
		respondInternalError(c, err)
		return
	}
	respondData(c, http.StatusCreated, category)
}

// GetCategories lists all categories
// @Summary List categories
// @Description Returns all categories ordered by level and position
// @Tags categories
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /categories [get]
func (h *CatalogHandler) GetCategories(c *gin.Context) {
	categories, err := h.catalog.GetCategories()
	if err != nil {
		respondInternalError(c, err)
		return
	}
	respondData(c, http.StatusOK, categories)
}

// GetCategory retrieves a category by ID
// @Summary Get category by ID
// @Tags categories
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /categories/{id} [get]
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	category, err := h.catalog.GetCategoryByID(id)
	if err != nil {
		notFoundOrInternal(c, err, "Category not found")
		return
	}
	respondData(c, http.StatusOK, category)
}

// UpdateCategory applies a partial category update
// @Summary Update a category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Param category body models.UpdateCategoryRequest true "Category update request"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /categories/{id} [put]
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Slug != nil {
		updates["slug"] = *req.Slug
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.Position != nil {
		updates["position"] = *req.Position
	}
	if len(updates) == 0 {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "no fields to update")
		return
	}

	if err := h.catalog.UpdateCategory(id, updates); err != nil {
		notFoundOrInternal(c, err, "Category not found")
		return
	}

	category, err := h.catalog.GetCategoryByID(id)
	if err != nil {
		notFoundOrInternal(c, err, "Category not found")
		return
	}
	respondData(c, http.StatusOK, category)
}

// DeleteCategory removes an empty category
// @Summary Delete a category
// @Description Fails when the category still has products or child categories
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /categories/{id} [delete]
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.catalog.DeleteCategory(id); err != nil {
		if repository.IsNotFound(err) {
			respondNotFound(c, "Category not found")
			return
		}
		respondError(c, http.StatusConflict, "CATEGORY_NOT_EMPTY", err.Error())
		return
	}
	respondData(c, http.StatusOK, gin.H{"deleted": true})
}

// CreateGroup creates a comparison group
// @Summary Create a comparison group
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param group body models.CreateProductGroupRequest true "Group creation request"
// @Success 201 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /groups [post]
func (h *CatalogHandler) CreateGroup(c *gin.Context) {
	var req models.CreateProductGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "categoryId must be a valid UUID")
		return
	}
	if _, err := h.catalog.GetCategoryByID(categoryID); err != nil {
		notFoundOrInternal(c, err, "Category not found")
		return
	}

	group := &models.ProductGroup{
		CategoryID:  categoryID,
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Attributes:  attributesToJSON(req.Attributes),
	}
	if req.Slug != nil {
		group.Slug = *req.Slug
	}

	if err := h.catalog.CreateGroup(group); err != nil {
		respondInternalError(c, err)
		return
	}
	respondData(c, http.StatusCreated, group)
}

// ListGroups lists comparison groups with offer aggregates
// @Summary List comparison groups
// @Description Returns group summaries including offer count, lowest price and best savings
// @Tags groups
// @Produce json
// @Param categoryId query string false "Category filter"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} models.ListResponse
// @Router /groups [get]
func (h *CatalogHandler) ListGroups(c *gin.Context) {
	categoryID, ok := queryUUID(c, "categoryId")
	if !ok {
		return
	}
	page, limit := parsePagination(c)

	summaries, total, err := h.comparison.ListGroupSummaries(categoryID, page, limit)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	respondList(c, summaries, page, limit, total)
}

// GetGroup retrieves a comparison group
// @Summary Get group by ID
// @Tags groups
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /groups/{id} [get]
func (h *CatalogHandler) GetGroup(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	group, err := h.catalog.GetGroupByID(id)
	if err != nil {
		notFoundOrInternal(c, err, "Group not found")
		return
	}
	respondData(c, http.StatusOK, group)
}

// CompareGroup returns the ranked price comparison for a group
// @Summary Compare offers in a group
// @Description Returns all active offers in the group ranked by price, rating or name, with savings against the highest price
// @Tags groups
// @Produce json
// @Param id path string true "Group ID"
// @Param sortBy query string false "Sort key: price, rating or name"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /groups/{id}/compare [get]
func (h *CatalogHandler) CompareGroup(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	comparison, err := h.comparison.CompareGroup(id, c.DefaultQuery("sortBy", "price"))
	if err != nil {
		notFoundOrInternal(c, err, "Group not found")
		return
	}
	respondData(c, http.StatusOK, comparison)
}

// CompareGroupBySlug returns the comparison for a group addressed by slug
// @Summary Compare offers in a group by slug
// @Tags groups
// @Produce json
// @Param slug path string true "Group slug"
// @Param sortBy query string false "Sort key: price, rating or name"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /groups/slug/{slug}/compare [get]
func (h *CatalogHandler) CompareGroupBySlug(c *gin.Context) {
	comparison, err := h.comparison.CompareGroupBySlug(c.Param("slug"), c.DefaultQuery("sortBy", "price"))
	if err != nil {
		notFoundOrInternal(c, err, "Group not found")
		return
	}
	respondData(c, http.StatusOK, comparison)
}

// UpdateGroup applies a partial group update
// @Summary Update a comparison group
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Group ID"
// @Param group body models.UpdateProductGroupRequest true "Group update request"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /groups/{id} [put]
func (h *CatalogHandler) UpdateGroup(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateProductGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Slug != nil {
		updates["slug"] = *req.Slug
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "categoryId must be a valid UUID")
			return
		}
		updates["category_id"] = categoryID
	}
	if len(req.Attributes) > 0 {
		updates["attributes"] = *attributesToJSON(req.Attributes)
	}
	if len(updates) == 0 {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "no fields to update")
		return
	}

	if err := h.catalog.UpdateGroup(id, updates); err != nil {
		notFoundOrInternal(c, err, "Group not found")
		return
	}

	group, err := h.catalog.GetGroupByID(id)
	if err != nil {
		notFoundOrInternal(c, err, "Group not found")
		return
	}
	respondData(c, http.StatusOK, group)
}

// DeleteGroup removes a group and detaches its products
// @Summary Delete a comparison group
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path string true "Group ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /groups/{id} [delete]
func (h *CatalogHandler) DeleteGroup(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.catalog.DeleteGroup(id); err != nil {
		notFoundOrInternal(c, err, "Group not found")
		return
	}
	respondData(c, http.StatusOK, gin.H{"deleted": true})
}

// AssignProduct places a product in a comparison group
// @Summary Assign a product to a group
// @Description The product's category must match the group's category
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path string true "Group ID"
// @Param productId path string true "Product ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /groups/{id}/products/{productId} [put]
func (h *CatalogHandler) AssignProduct(c *gin.Context) {
	groupID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	productID, ok := parseUUIDParam(c, "productId")
	if !ok {
		return
	}

	if err := h.catalog.AssignProductToGroup(productID, groupID); err != nil {
		if repository.IsNotFound(err) {
			respondNotFound(c, "Group or product not found")
			return
		}
		respondError(c, http.StatusConflict, "CATEGORY_MISMATCH", err.Error())
		return
	}
	respondData(c, http.StatusOK, gin.H{"assigned": true})
}

// RemoveProduct detaches a product from its group
// @Summary Remove a product from its group
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param productId path string true "Product ID"
// @Success 200 {object} models.SuccessResponse
// @Router /groups/products/{productId} [delete]
func (h *CatalogHandler) RemoveProduct(c *gin.Context) {
	productID, ok := parseUUIDParam(c, "productId")
	if !ok {
		return
	}

	if err := h.catalog.RemoveProductFromGroup(productID); err != nil {
		notFoundOrInternal(c, err, "Product not found")
		return
	}
	respondData(c, http.StatusOK, gin.H{"removed": true})
}

func attributesToJSON(attrs []models.ProductAttribute) *models.JSON {
	if len(attrs) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(attrs))
	for _, a := range attrs {
		values = append(values, map[string]interface{}{
			"id":    a.ID,
			"name":  a.Name,
			"value": a.Value,
			"type":  a.Type,
		})
	}
	j := models.JSON{"attributes": values}
	return &j
}
