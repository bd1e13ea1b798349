package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/middleware"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/repository"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/services"
)

type ReviewsHandler struct {
	reviews *services.ReviewService
}

func NewReviewsHandler(reviews *services.ReviewService) *ReviewsHandler {
	return &ReviewsHandler{reviews: reviews}
}

// SubmitReview submits a product review
// @Summary Submit a review
// @Description Creates a review in PENDING status until moderated
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param review body models.CreateReviewRequest true "Review submission"
// @Success 201 {object} models.ReviewResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /reviews [post]
func (h *ReviewsHandler) SubmitReview(c *gin.Context) {
	var req models.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	review, err := h.reviews.SubmitReview(middleware.CurrentUser(c).ID, &req)
	if err != nil {
		if err == services.ErrAlreadyReviewed {
			respondError(c, http.StatusConflict, "ALREADY_REVIEWED", "You have already reviewed this product")
			return
		}
		if repository.IsNotFound(err) {
			respondNotFound(c, "Product not found")
			return
		}
		respondInternalError(c, err)
		return
	}
	respondData(c, http.StatusCreated, review)
}

// ListReviews lists reviews
// @Summary List reviews
// @Description Public callers see approved reviews for a product; admins may filter by status
// @Tags reviews
// @Produce json
// @Param productId query string false "Product filter"
// @Param status query string false "Status filter (admin only)"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} models.ListResponse
// @Router /reviews [get]
func (h *ReviewsHandler) ListReviews(c *gin.Context) {
	productID, ok := queryUUID(c, "productId")
	if !ok {
		return
	}
	page, limit := parsePagination(c)

	status := models.ReviewStatusApproved
	user := middleware.CurrentUser(c)
	if user != nil && user.Role == models.RoleAdmin {
		if raw := c.Query("status"); raw != "" {
			status = models.ReviewStatus(raw)
		}
	}

	reviews, total, err := h.reviews.GetReviews(productID, &status, page, limit)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	respondList(c, reviews, page, limit, total)
}

// ModerateReview approves or rejects a pending review. Admin only.
// @Summary Moderate a review
// @Description Approving recomputes the product's and supplier's rating aggregates
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Param moderation body models.ModerateReviewRequest true "Moderation request"
// @Success 200 {object} models.ReviewResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /reviews/{id}/moderate [patch]
func (h *ReviewsHandler) ModerateReview(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req models.ModerateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	review, err := h.reviews.Moderate(id, req.Status)
	if err != nil {
		if repository.IsNotFound(err) {
			respondNotFound(c, "Review not found")
			return
		}
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	respondData(c, http.StatusOK, review)
}
