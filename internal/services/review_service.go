package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/repository"
)

var ErrAlreadyReviewed = errors.New("customer already reviewed this product")

// ReviewService handles review submission and moderation. Approving or
// rejecting a review refreshes the product and supplier rating aggregates
// the comparison views rank by.
type ReviewService struct {
	reviews   *repository.ReviewsRepository
	products  *repository.ProductsRepository
	suppliers *repository.SuppliersRepository
	logger    *logrus.Entry
}

func NewReviewService(
	reviews *repository.ReviewsRepository,
	products *repository.ProductsRepository,
	suppliers *repository.SuppliersRepository,
	logger *logrus.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:   reviews,
		products:  products,
		suppliers: suppliers,
		logger:    logger.WithField("service", "reviews"),
	}
}

// SubmitReview stores a review in PENDING moderation status
func (s *ReviewService) SubmitReview(customerID uuid.UUID, req *models.CreateReviewRequest) (*models.Review, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("invalid product id: %w", err)
	}

	product, err := s.products.GetProductByID(productID)
	if err != nil {
		return nil, err
	}

	already, err := s.reviews.HasCustomerReviewed(customerID, productID)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, ErrAlreadyReviewed
	}

	review := &models.Review{
		ProductID:  productID,
		SupplierID: product.SupplierID,
		CustomerID: customerID,
		Rating:     req.Rating,
		Title:      req.Title,
		Comment:    req.Comment,
		Status:     models.ReviewStatusPending,
	}
	if req.OrderID != nil && *req.OrderID != "" {
		orderID, err := uuid.Parse(*req.OrderID)
		if err != nil {
			return nil, fmt.Errorf("invalid order id: %w", err)
		}
		review.OrderID = &orderID
	}

	if err := s.reviews.CreateReview(review); err != nil {
		return nil, err
	}
	return review, nil
}

// GetReviews lists reviews. Public listings only show approved reviews;
// admins pass nil status to see the moderation queue too.
func (s *ReviewService) GetReviews(productID *uuid.UUID, status *models.ReviewStatus, page, limit int) ([]models.Review, int64, error) {
	return s.reviews.GetReviews(productID, status, page, limit)
}

// Moderate applies an approval decision and refreshes rating aggregates
func (s *ReviewService) Moderate(reviewID uuid.UUID, status models.ReviewStatus) (*models.Review, error) {
	if status != models.ReviewStatusApproved && status != models.ReviewStatusRejected {
		return nil, fmt.Errorf("invalid moderation status %q", status)
	}

	review, err := s.reviews.GetReviewByID(reviewID)
	if err != nil {
		return nil, err
	}

	if err := s.reviews.UpdateReviewStatus(reviewID, status); err != nil {
		return nil, err
	}

	if err := s.products.UpdateRatingAggregates(review.ProductID); err != nil {
		s.logger.WithError(err).Warn("Failed to refresh product rating")
	}
	if err := s.suppliers.UpdateRatingAggregates(review.SupplierID); err != nil {
		s.logger.WithError(err).Warn("Failed to refresh supplier rating")
	}

	s.logger.WithFields(logrus.Fields{
		"reviewId": reviewID,
		"status":   status,
	}).Info("Review moderated")

	return s.reviews.GetReviewByID(reviewID)
}
