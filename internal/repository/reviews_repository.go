package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"gorm.io/gorm"
)

type ReviewsRepository struct {
	db *gorm.DB
}

func NewReviewsRepository(db *gorm.DB) *ReviewsRepository {
	return &ReviewsRepository{db: db}
}

// CreateReview stores a review in PENDING moderation status
func (r *ReviewsRepository) CreateReview(review *models.Review) error {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	review.CreatedAt = time.Now()
	review.UpdatedAt = time.Now()
	return r.db.Create(review).Error
}

// GetReviewByID retrieves a single review
func (r *ReviewsRepository) GetReviewByID(reviewID uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.db.Where("id = ?", reviewID).First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// HasCustomerReviewed reports whether the customer already reviewed a product
func (r *ReviewsRepository) HasCustomerReviewed(customerID, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&models.Review{}).
		Where("customer_id = ? AND product_id = ?", customerID, productID).
		Count(&count).Error
	return count > 0, err
}

// GetReviews lists reviews with optional product/status filters
func (r *ReviewsRepository) GetReviews(productID *uuid.UUID, status *models.ReviewStatus, page, limit int) ([]models.Review, int64, error) {
	var reviews []models.Review
	var total int64

	query := r.db.Model(&models.Review{})
	if productID != nil {
		query = query.Where("product_id = ?", *productID)
	}
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

// UpdateReviewStatus applies a moderation decision
func (r *ReviewsRepository) UpdateReviewStatus(reviewID uuid.UUID, status models.ReviewStatus) error {
	return r.db.Model(&models.Review{}).
		Where("id = ?", reviewID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}
