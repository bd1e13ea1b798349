package models

import (
	"time"

	"github.com/google/uuid"
)

// PriceStats aggregates the price spread of a product group
type PriceStats struct {
	MinPrice   string `json:"minPrice"`
	MaxPrice   string `json:"maxPrice"`
	AvgPrice   string `json:"avgPrice"`
	OfferCount int    `json:"offerCount"`
}

// GroupOffer is one supplier's offer inside a comparison view
type GroupOffer struct {
	ProductID    uuid.UUID `json:"productId"`
	SupplierID   uuid.UUID `json:"supplierId"`
	SupplierName string    `json:"supplierName"`
	ProductName  string    `json:"productName"`
	SKU          string    `json:"sku"`
	Price        string    `json:"price"`
	CurrencyCode string    `json:"currencyCode"`

	// Savings vs the most expensive offer in the group
	SavingsAmount  string  `json:"savingsAmount"`
	SavingsPercent float64 `json:"savingsPercent"`

	Rating       float64 `json:"rating"`
	ReviewCount  int     `json:"reviewCount"`
	DeliveryDays int     `json:"deliveryDays"`
	InStock      bool    `json:"inStock"`
	Quantity     int     `json:"quantity"`

	// Flags for the comparison view
	Cheapest    bool `json:"cheapest"`
	BestRated   bool `json:"bestRated"`
	Highlighted bool `json:"highlighted"`

	CreatedAt time.Time `json:"createdAt"`
}

// GroupComparison is the full comparison view for a product group
type GroupComparison struct {
	Group  *ProductGroup `json:"group"`
	Stats  PriceStats    `json:"stats"`
	Offers []GroupOffer  `json:"offers"`
}

// ComparisonSort enumerates the supported ranking criteria
const (
	ComparisonSortPrice  = "price"
	ComparisonSortRating = "rating"
	ComparisonSortName   = "name"
)

// GroupSummary is one row of the catalog-wide comparison listing
type GroupSummary struct {
	GroupID       uuid.UUID `json:"groupId"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	CategoryID    uuid.UUID `json:"categoryId"`
	ImageURL      *string   `json:"imageUrl,omitempty"`
	OfferCount    int       `json:"offerCount"`
	MinPrice      string    `json:"minPrice"`
	MaxSavingsPct float64   `json:"maxSavingsPct"`
}

type GroupComparisonResponse struct {
	Success bool             `json:"success"`
	Data    *GroupComparison `json:"data"`
	Message *string          `json:"message,omitempty"`
}

type GroupSummaryListResponse struct {
	Success    bool            `json:"success"`
	Data       []GroupSummary  `json:"data"`
	Pagination *PaginationInfo `json:"pagination"`
}
