package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReviewStatus represents moderation state of a review
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "PENDING"
	ReviewStatusApproved ReviewStatus = "APPROVED"
	ReviewStatusRejected ReviewStatus = "REJECTED"
)

// Review is a customer rating for a purchased product. Approved reviews feed
// the product and supplier rating aggregates used by the comparison views.
type Review struct {
	ID         uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProductID  uuid.UUID    `json:"productId" gorm:"type:uuid;not null;index:idx_reviews_product"`
	SupplierID uuid.UUID    `json:"supplierId" gorm:"type:uuid;not null;index:idx_reviews_supplier"`
	CustomerID uuid.UUID    `json:"customerId" gorm:"type:uuid;not null;index"`
	OrderID    *uuid.UUID   `json:"orderId,omitempty" gorm:"type:uuid"`
	Rating     int          `json:"rating" gorm:"not null"`
	Title      *string      `json:"title,omitempty"`
	Comment    string       `json:"comment" gorm:"type:text"`
	Status     ReviewStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING';index"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Review) TableName() string {
	return "reviews"
}

// CreateReviewRequest represents a customer review submission
type CreateReviewRequest struct {
	ProductID string  `json:"productId" binding:"required"`
	OrderID   *string `json:"orderId,omitempty"`
	Rating    int     `json:"rating" binding:"required,min=1,max=5"`
	Title     *string `json:"title,omitempty"`
	Comment   string  `json:"comment"`
}

// ModerateReviewRequest approves or rejects a pending review
type ModerateReviewRequest struct {
	Status ReviewStatus `json:"status" binding:"required"`
	Notes  *string      `json:"notes,omitempty"`
}

type ReviewResponse struct {
	Success bool    `json:"success"`
	Data    *Review `json:"data"`
	Message *string `json:"message,omitempty"`
}

type ReviewListResponse struct {
	Success    bool            `json:"success"`
	Data       []Review        `json:"data"`
	Pagination *PaginationInfo `json:"pagination"`
}
