package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusDraft    ProductStatus = "DRAFT"
	ProductStatusPending  ProductStatus = "PENDING"
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusInactive ProductStatus = "INACTIVE"
	ProductStatusArchived ProductStatus = "ARCHIVED"
	ProductStatusRejected ProductStatus = "REJECTED"
)

// InventoryStatus represents the inventory status of a product
type InventoryStatus string

const (
	InventoryStatusInStock      InventoryStatus = "IN_STOCK"
	InventoryStatusLowStock     InventoryStatus = "LOW_STOCK"
	InventoryStatusOutOfStock   InventoryStatus = "OUT_OF_STOCK"
	InventoryStatusDiscontinued InventoryStatus = "DISCONTINUED"
)

// ProductAttribute represents a product attribute
type ProductAttribute struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value"`
	Type  string `json:"type"`
}

// ProductImage represents a product image
type ProductImage struct {
	ID       string  `json:"id"`
	URL      string  `json:"url"`
	AltText  *string `json:"altText,omitempty"`
	Position int     `json:"position"`
}

// Product represents a supplier-owned offer in the catalog.
// Equivalent products from different suppliers share a GroupID and are
// compared against each other in the comparison views.
type Product struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SupplierID uuid.UUID  `json:"supplierId" gorm:"type:uuid;not null;index;index:idx_products_supplier_sku,unique"`
	CategoryID uuid.UUID  `json:"categoryId" gorm:"type:uuid;not null;index"`
	GroupID    *uuid.UUID `json:"groupId,omitempty" gorm:"type:uuid;index"`

	Name        string  `json:"name" gorm:"not null"`
	Slug        *string `json:"slug,omitempty" gorm:"uniqueIndex:idx_products_slug"`
	SKU         string  `json:"sku" gorm:"not null;index:idx_products_supplier_sku,unique"`
	Brand       *string `json:"brand,omitempty" gorm:"index"`
	Description *string `json:"description,omitempty"`

	// Prices are stored as decimal strings; arithmetic goes through
	// shopspring/decimal in the services layer.
	Price        string  `json:"price" gorm:"type:decimal(12,2);not null"`
	ComparePrice *string `json:"comparePrice,omitempty" gorm:"type:decimal(12,2)"`
	CostPrice    *string `json:"costPrice,omitempty" gorm:"type:decimal(12,2)"`
	CurrencyCode *string `json:"currencyCode,omitempty"`

	Status            ProductStatus    `json:"status" gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	InventoryStatus   *InventoryStatus `json:"inventoryStatus,omitempty" gorm:"type:varchar(20);index"`
	Quantity          int              `json:"quantity" gorm:"not null;default:0"`
	MinOrderQty       *int             `json:"minOrderQty,omitempty"`
	MaxOrderQty       *int             `json:"maxOrderQty,omitempty"`
	LowStockThreshold *int             `json:"lowStockThreshold,omitempty"`

	// DeliveryDays overrides the supplier default in comparison views
	DeliveryDays *int `json:"deliveryDays,omitempty"`

	SearchKeywords *string  `json:"searchKeywords,omitempty"`
	AverageRating  *float64 `json:"averageRating,omitempty"`
	ReviewCount    *int     `json:"reviewCount,omitempty"`

	Tags       *JSON      `json:"tags,omitempty" gorm:"type:jsonb"`
	Attributes *JSON      `json:"attributes,omitempty" gorm:"type:jsonb"`
	Images     *JSONArray `json:"images,omitempty" gorm:"type:jsonb"`

	// Denormalized supplier name for comparison/list display
	SupplierName *string `json:"supplierName,omitempty"`

	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
	CreatedBy *string         `json:"createdBy,omitempty"`
	UpdatedBy *string         `json:"updatedBy,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// Category represents a product category
type Category struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string          `json:"name" gorm:"not null"`
	Slug        string          `json:"slug" gorm:"not null;uniqueIndex:idx_categories_slug"`
	Description *string         `json:"description,omitempty"`
	ImageURL    *string         `json:"imageUrl,omitempty" gorm:"column:image_url"`
	ParentID    *uuid.UUID      `json:"parentId,omitempty" gorm:"column:parent_id"`
	Level       int             `json:"level" gorm:"not null;default:0"`
	Position    int             `json:"position" gorm:"not null;default:1"`
	IsActive    *bool           `json:"isActive" gorm:"column:is_active;default:true"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	DeletedAt   *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

func (Category) TableName() string {
	return "categories"
}

// ProductGroup is a set of equivalent products from different suppliers,
// compared by price, rating and features.
type ProductGroup struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CategoryID  uuid.UUID       `json:"categoryId" gorm:"type:uuid;not null;index"`
	Name        string          `json:"name" gorm:"not null"`
	Slug        string          `json:"slug" gorm:"not null;uniqueIndex:idx_product_groups_slug"`
	Description *string         `json:"description,omitempty"`
	// Reference attributes the grouped offers are expected to share
	Attributes *JSON           `json:"attributes,omitempty" gorm:"type:jsonb"`
	ImageURL   *string         `json:"imageUrl,omitempty" gorm:"column:image_url"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
	DeletedAt  *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

func (ProductGroup) TableName() string {
	return "product_groups"
}

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Name              string             `json:"name" binding:"required"`
	Slug              *string            `json:"slug,omitempty"`
	SKU               string             `json:"sku" binding:"required"`
	Brand             *string            `json:"brand,omitempty"`
	Description       *string            `json:"description,omitempty"`
	Price             string             `json:"price" binding:"required"`
	ComparePrice      *string            `json:"comparePrice,omitempty"`
	CostPrice         *string            `json:"costPrice,omitempty"`
	CategoryID        string             `json:"categoryId" binding:"required"`
	GroupID           *string            `json:"groupId,omitempty"`
	Quantity          *int               `json:"quantity,omitempty"`
	MinOrderQty       *int               `json:"minOrderQty,omitempty"`
	MaxOrderQty       *int               `json:"maxOrderQty,omitempty"`
	LowStockThreshold *int               `json:"lowStockThreshold,omitempty"`
	DeliveryDays      *int               `json:"deliveryDays,omitempty"`
	SearchKeywords    *string            `json:"searchKeywords,omitempty"`
	CurrencyCode      *string            `json:"currencyCode,omitempty"`
	Tags              []string           `json:"tags,omitempty"`
	Attributes        []ProductAttribute `json:"attributes,omitempty"`
	Images            []ProductImage     `json:"images,omitempty"`
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	Name              *string            `json:"name,omitempty"`
	Slug              *string            `json:"slug,omitempty"`
	SKU               *string            `json:"sku,omitempty"`
	Brand             *string            `json:"brand,omitempty"`
	Description       *string            `json:"description,omitempty"`
	Price             *string            `json:"price,omitempty"`
	ComparePrice      *string            `json:"comparePrice,omitempty"`
	CostPrice         *string            `json:"costPrice,omitempty"`
	CategoryID        *string            `json:"categoryId,omitempty"`
	GroupID           *string            `json:"groupId,omitempty"`
	Quantity          *int               `json:"quantity,omitempty"`
	MinOrderQty       *int               `json:"minOrderQty,omitempty"`
	MaxOrderQty       *int               `json:"maxOrderQty,omitempty"`
	LowStockThreshold *int               `json:"lowStockThreshold,omitempty"`
	DeliveryDays      *int               `json:"deliveryDays,omitempty"`
	SearchKeywords    *string            `json:"searchKeywords,omitempty"`
	CurrencyCode      *string            `json:"currencyCode,omitempty"`
	Tags              []string           `json:"tags,omitempty"`
	Attributes        []ProductAttribute `json:"attributes,omitempty"`
	Images            []ProductImage     `json:"images,omitempty"`
}

// UpdateProductStatusRequest represents a request to update product status
type UpdateProductStatusRequest struct {
	Status ProductStatus `json:"status" binding:"required"`
	Notes  *string       `json:"notes,omitempty"`
}

// InventoryAdjustmentRequest represents a relative stock adjustment
type InventoryAdjustmentRequest struct {
	Adjustment int     `json:"adjustment" binding:"required"`
	Reason     string  `json:"reason" binding:"required"`
	Notes      *string `json:"notes,omitempty"`
}

// StockCheckItem represents a single product stock check request
type StockCheckItem struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// StockCheckRequest for checking stock availability
type StockCheckRequest struct {
	Items []StockCheckItem `json:"items" binding:"required,dive"`
}

// StockCheckResult represents stock availability for a single product
type StockCheckResult struct {
	ProductID   string `json:"productId"`
	Available   bool   `json:"available"`
	InStock     int    `json:"inStock"`
	Requested   int    `json:"requested"`
	ProductName string `json:"productName,omitempty"`
}

// StockCheckResponse for stock check results
type StockCheckResponse struct {
	Success    bool               `json:"success"`
	AllInStock bool               `json:"allInStock"`
	Results    []StockCheckResult `json:"results"`
	Message    *string            `json:"message,omitempty"`
}

// SearchProductsRequest represents a search/list request
type SearchProductsRequest struct {
	Query           *string           `json:"query,omitempty"`
	CategoryID      *string           `json:"categoryId,omitempty"`
	SupplierID      *string           `json:"supplierId,omitempty"`
	GroupID         *string           `json:"groupId,omitempty"`
	Brands          []string          `json:"brands,omitempty"`
	Status          []ProductStatus   `json:"status,omitempty"`
	InventoryStatus []InventoryStatus `json:"inventoryStatus,omitempty"`
	MinPrice        *string           `json:"minPrice,omitempty"`
	MaxPrice        *string           `json:"maxPrice,omitempty"`
	MinRating       *float64          `json:"minRating,omitempty"`
	Tags            []string          `json:"tags,omitempty"`
	SortBy          *string           `json:"sortBy,omitempty"`
	SortOrder       *string           `json:"sortOrder,omitempty"`
	Page            int               `json:"page"`
	Limit           int               `json:"limit"`
}

// BulkUpdateRequest represents a bulk status update request
type BulkUpdateRequest struct {
	ProductIDs []string      `json:"productIds" binding:"required"`
	Status     ProductStatus `json:"status" binding:"required"`
	Notes      *string       `json:"notes,omitempty"`
}

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name        string  `json:"name" binding:"required"`
	Slug        *string `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`
	ParentID    *string `json:"parentId,omitempty"`
	ImageURL    *string `json:"imageUrl,omitempty"`
	Position    *int    `json:"position,omitempty"`
}

// UpdateCategoryRequest represents a request to update a category
type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty"`
	Slug        *string `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`
	ParentID    *string `json:"parentId,omitempty"`
	ImageURL    *string `json:"imageUrl,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
	Position    *int    `json:"position,omitempty"`
}

// CreateProductGroupRequest represents a request to create a comparison group
type CreateProductGroupRequest struct {
	Name        string             `json:"name" binding:"required"`
	Slug        *string            `json:"slug,omitempty"`
	CategoryID  string             `json:"categoryId" binding:"required"`
	Description *string            `json:"description,omitempty"`
	Attributes  []ProductAttribute `json:"attributes,omitempty"`
	ImageURL    *string            `json:"imageUrl,omitempty"`
}

// UpdateProductGroupRequest represents a partial group update
type UpdateProductGroupRequest struct {
	Name        *string            `json:"name,omitempty"`
	Slug        *string            `json:"slug,omitempty"`
	CategoryID  *string            `json:"categoryId,omitempty"`
	Description *string            `json:"description,omitempty"`
	Attributes  []ProductAttribute `json:"attributes,omitempty"`
	ImageURL    *string            `json:"imageUrl,omitempty"`
}

// Response types

type ProductResponse struct {
	Success bool     `json:"success"`
	Data    *Product `json:"data"`
	Message *string  `json:"message,omitempty"`
}

type ProductListResponse struct {
	Success    bool            `json:"success"`
	Data       []Product       `json:"data"`
	Pagination *PaginationInfo `json:"pagination"`
}

type CategoryResponse struct {
	Success bool      `json:"success"`
	Data    *Category `json:"data"`
	Message *string   `json:"message,omitempty"`
}

type CategoryListResponse struct {
	Success    bool            `json:"success"`
	Data       []Category      `json:"data"`
	Pagination *PaginationInfo `json:"pagination"`
}

type ProductGroupResponse struct {
	Success bool          `json:"success"`
	Data    *ProductGroup `json:"data"`
	Message *string       `json:"message,omitempty"`
}

type ProductGroupListResponse struct {
	Success    bool            `json:"success"`
	Data       []ProductGroup  `json:"data"`
	Pagination *PaginationInfo `json:"pagination"`
}

// ProductsStats summarises a supplier's (or the whole marketplace's) catalog
type ProductsStats struct {
	TotalProducts  int     `json:"totalProducts"`
	ActiveProducts int     `json:"activeProducts"`
	DraftProducts  int     `json:"draftProducts"`
	OutOfStock     int     `json:"outOfStock"`
	LowStock       int     `json:"lowStock"`
	AveragePrice   float64 `json:"averagePrice"`
	TotalInventory int64   `json:"totalInventory"`
}
