package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRole represents the marketplace role of an account
type UserRole string

const (
	RoleCustomer UserRole = "CUSTOMER"
	RoleSupplier UserRole = "SUPPLIER"
	RoleAdmin    UserRole = "ADMIN"
)

// User represents a marketplace account (customer, supplier staff or admin)
type User struct {
	ID           uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email        string          `json:"email" gorm:"not null;uniqueIndex:idx_users_email"`
	PasswordHash string          `json:"-" gorm:"not null"`
	FirstName    string          `json:"firstName" gorm:"not null"`
	LastName     string          `json:"lastName" gorm:"not null"`
	Phone        *string         `json:"phone,omitempty"`
	Role         UserRole        `json:"role" gorm:"type:varchar(20);not null;default:'CUSTOMER';index"`
	// SupplierID is set for supplier accounts and scopes their catalog access
	SupplierID  *uuid.UUID      `json:"supplierId,omitempty" gorm:"type:uuid;index"`
	IsActive    bool            `json:"isActive" gorm:"default:true"`
	LastLoginAt *time.Time      `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	DeletedAt   *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

// RegisterRequest represents a customer self-registration
type RegisterRequest struct {
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=8"`
	FirstName string  `json:"firstName" binding:"required"`
	LastName  string  `json:"lastName" binding:"required"`
	Phone     *string `json:"phone,omitempty"`
}

// LoginRequest represents a credential login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries a signed token plus the authenticated profile
type AuthResponse struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}
