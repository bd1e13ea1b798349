package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SupplierStatus represents the status of a supplier
type SupplierStatus string

const (
	SupplierStatusPending    SupplierStatus = "PENDING"
	SupplierStatusActive     SupplierStatus = "ACTIVE"
	SupplierStatusInactive   SupplierStatus = "INACTIVE"
	SupplierStatusSuspended  SupplierStatus = "SUSPENDED"
	SupplierStatusTerminated SupplierStatus = "TERMINATED"
)

// Supplier represents a marketplace vendor that lists products and inventory
type Supplier struct {
	ID               uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name             string         `json:"name" gorm:"not null"`
	Slug             string         `json:"slug" gorm:"not null;uniqueIndex:idx_suppliers_slug"`
	Email            string         `json:"email" gorm:"not null;uniqueIndex:idx_suppliers_email"`
	Phone            *string        `json:"phone,omitempty"`
	Status           SupplierStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Description      *string        `json:"description,omitempty"`
	Location         *string        `json:"location,omitempty"`
	Website          *string        `json:"website,omitempty"`
	LogoURL          *string        `json:"logoUrl,omitempty" gorm:"column:logo_url"`
	PrimaryContact   string         `json:"primaryContact" gorm:"not null"`
	SecondaryContact *string        `json:"secondaryContact,omitempty"`

	// Business information collected at registration
	BusinessRegistrationNumber *string `json:"businessRegistrationNumber,omitempty"`
	TaxIdentificationNumber    *string `json:"taxIdentificationNumber,omitempty"`
	BusinessType               *string `json:"businessType,omitempty"`
	FoundedYear                *int    `json:"foundedYear,omitempty"`

	// Rating aggregates maintained from reviews
	Rating      float64 `json:"rating" gorm:"type:decimal(3,2);default:0"`
	RatingCount int     `json:"ratingCount" gorm:"default:0"`

	// DeliveryDays is the default delivery estimate shown in comparisons
	DeliveryDays int `json:"deliveryDays" gorm:"default:5"`

	IsActive  bool            `json:"isActive" gorm:"default:true"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
	CreatedBy *string         `json:"createdBy,omitempty"`
	UpdatedBy *string         `json:"updatedBy,omitempty"`
}

func (Supplier) TableName() string {
	return "suppliers"
}

// RegisterSupplierRequest represents a supplier registration submission.
// The supplier starts in PENDING status until an admin approves it.
type RegisterSupplierRequest struct {
	Name           string  `json:"name" binding:"required"`
	Email          string  `json:"email" binding:"required,email"`
	Password       string  `json:"password" binding:"required,min=8"`
	Phone          *string `json:"phone,omitempty"`
	PrimaryContact string  `json:"primaryContact" binding:"required"`
	Description    *string `json:"description,omitempty"`
	Location       *string `json:"location,omitempty"`
	Website        *string `json:"website,omitempty"`

	BusinessRegistrationNumber *string `json:"businessRegistrationNumber,omitempty"`
	TaxIdentificationNumber    *string `json:"taxIdentificationNumber,omitempty"`
	BusinessType               *string `json:"businessType,omitempty"`
	FoundedYear                *int    `json:"foundedYear,omitempty"`
	DeliveryDays               *int    `json:"deliveryDays,omitempty"`
}

// UpdateSupplierRequest represents a partial supplier update
type UpdateSupplierRequest struct {
	Name             *string `json:"name,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	Description      *string `json:"description,omitempty"`
	Location         *string `json:"location,omitempty"`
	Website          *string `json:"website,omitempty"`
	LogoURL          *string `json:"logoUrl,omitempty"`
	PrimaryContact   *string `json:"primaryContact,omitempty"`
	SecondaryContact *string `json:"secondaryContact,omitempty"`
	DeliveryDays     *int    `json:"deliveryDays,omitempty"`
}

// UpdateSupplierStatusRequest represents an admin status change (approval,
// suspension, termination)
type UpdateSupplierStatusRequest struct {
	Status SupplierStatus `json:"status" binding:"required"`
	Notes  *string        `json:"notes,omitempty"`
}

type SupplierResponse struct {
	Success bool      `json:"success"`
	Data    *Supplier `json:"data"`
	Message *string   `json:"message,omitempty"`
}

type SupplierListResponse struct {
	Success    bool            `json:"success"`
	Data       []Supplier      `json:"data"`
	Pagination *PaginationInfo `json:"pagination"`
}
