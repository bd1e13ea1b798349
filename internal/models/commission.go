package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommissionScope identifies how specific a commission setting is.
// Resolution picks the most specific matching setting:
// supplier+category > supplier > category > global.
type CommissionScope string

const (
	ScopeSupplierCategory CommissionScope = "SUPPLIER_CATEGORY"
	ScopeSupplier         CommissionScope = "SUPPLIER"
	ScopeCategory         CommissionScope = "CATEGORY"
	ScopeGlobal           CommissionScope = "GLOBAL"
)

// CommissionSetting is a rate (%) applied to sales, optionally scoped to a
// supplier and/or category.
type CommissionSetting struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SupplierID *uuid.UUID `json:"supplierId,omitempty" gorm:"type:uuid;index:idx_commission_supplier_category"`
	CategoryID *uuid.UUID `json:"categoryId,omitempty" gorm:"type:uuid;index:idx_commission_supplier_category"`
	// Rate is a percentage in [0,100]
	Rate     float64 `json:"rate" gorm:"type:decimal(5,2);not null"`
	IsActive bool    `json:"isActive" gorm:"default:true;index"`
	Notes    *string `json:"notes,omitempty"`

	// EffectiveFrom/EffectiveUntil bound when the setting applies. Nil means
	// unbounded on that side; EffectiveUntil is exclusive.
	EffectiveFrom  *time.Time `json:"effectiveFrom,omitempty" gorm:"index"`
	EffectiveUntil *time.Time `json:"effectiveUntil,omitempty" gorm:"index"`

	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
	CreatedBy *string         `json:"createdBy,omitempty"`
	UpdatedBy *string         `json:"updatedBy,omitempty"`
}

func (CommissionSetting) TableName() string {
	return "commission_settings"
}

// Scope derives the specificity of the setting from its populated columns
func (s *CommissionSetting) Scope() CommissionScope {
	switch {
	case s.SupplierID != nil && s.CategoryID != nil:
		return ScopeSupplierCategory
	case s.SupplierID != nil:
		return ScopeSupplier
	case s.CategoryID != nil:
		return ScopeCategory
	default:
		return ScopeGlobal
	}
}

// CommissionStatus represents the settlement state of a ledger entry
type CommissionStatus string

const (
	CommissionStatusPending  CommissionStatus = "PENDING"
	CommissionStatusSettled  CommissionStatus = "SETTLED"
	CommissionStatusReversed CommissionStatus = "REVERSED"
)

// CommissionRecord is a ledger entry written at checkout for each order item.
// The rate and scope are captured at resolution time so later setting changes
// never rewrite history.
type CommissionRecord struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderID     uuid.UUID  `json:"orderId" gorm:"type:uuid;not null;index"`
	OrderItemID uuid.UUID  `json:"orderItemId" gorm:"type:uuid;not null;index"`
	SupplierID  uuid.UUID  `json:"supplierId" gorm:"type:uuid;not null;index:idx_commission_records_supplier"`
	CategoryID  uuid.UUID  `json:"categoryId" gorm:"type:uuid;not null;index"`
	SettingID   *uuid.UUID `json:"settingId,omitempty" gorm:"type:uuid"`

	Scope            CommissionScope  `json:"scope" gorm:"type:varchar(20);not null"`
	Rate             float64          `json:"rate" gorm:"type:decimal(5,2);not null"`
	BaseAmount       float64          `json:"baseAmount" gorm:"type:decimal(12,2);not null"`
	CommissionAmount float64          `json:"commissionAmount" gorm:"type:decimal(12,2);not null"`
	Status           CommissionStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING';index"`

	SettledAt  *time.Time `json:"settledAt,omitempty"`
	ReversedAt *time.Time `json:"reversedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt" gorm:"index"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (CommissionRecord) TableName() string {
	return "commission_records"
}

// CreateCommissionSettingRequest represents an admin setting creation
type CreateCommissionSettingRequest struct {
	SupplierID     *string    `json:"supplierId,omitempty"`
	CategoryID     *string    `json:"categoryId,omitempty"`
	Rate           float64    `json:"rate" binding:"required,min=0,max=100"`
	Notes          *string    `json:"notes,omitempty"`
	EffectiveFrom  *time.Time `json:"effectiveFrom,omitempty"`
	EffectiveUntil *time.Time `json:"effectiveUntil,omitempty"`
}

// UpdateCommissionSettingRequest represents an admin setting update
type UpdateCommissionSettingRequest struct {
	Rate           *float64   `json:"rate,omitempty" binding:"omitempty,min=0,max=100"`
	IsActive       *bool      `json:"isActive,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
	EffectiveFrom  *time.Time `json:"effectiveFrom,omitempty"`
	EffectiveUntil *time.Time `json:"effectiveUntil,omitempty"`
}

// ResolvedCommission is the outcome of a commission lookup
type ResolvedCommission struct {
	SettingID *uuid.UUID      `json:"settingId,omitempty"`
	Scope     CommissionScope `json:"scope"`
	Rate      float64         `json:"rate"`
}

type CommissionSettingResponse struct {
	Success bool               `json:"success"`
	Data    *CommissionSetting `json:"data"`
	Message *string            `json:"message,omitempty"`
}

type CommissionSettingListResponse struct {
	Success    bool                `json:"success"`
	Data       []CommissionSetting `json:"data"`
	Pagination *PaginationInfo     `json:"pagination"`
}

type CommissionRecordListResponse struct {
	Success    bool               `json:"success"`
	Data       []CommissionRecord `json:"data"`
	Pagination *PaginationInfo    `json:"pagination"`
}
