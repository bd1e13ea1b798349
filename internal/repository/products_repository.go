package repository

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Cache TTL constants
const (
	ProductCacheTTL     = 5 * time.Minute  // Single product cache
	ProductListCacheTTL = 2 * time.Minute  // Product list cache (shorter due to frequent changes)
	CategoryCacheTTL    = 30 * time.Minute // Categories rarely change
	// GroupSummariesCacheTTL keeps comparison listings fresh against price moves
	GroupSummariesCacheTTL = 60 * time.Second
)

type ProductsRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewProductsRepository(db *gorm.DB, redis *redis.Client) *ProductsRepository {
	return &ProductsRepository{db: db, redis: redis}
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// generateSlug builds a URL-safe slug from a display name
func generateSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugPattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// generateListCacheKey creates a deterministic cache key for list queries
func generateListCacheKey(prefix string, params interface{}) string {
	data, _ := json.Marshal(params)
	hash := md5.Sum(data)
	return fmt.Sprintf("gastro:products:%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// invalidateProductCaches invalidates all caches related to a product
func (r *ProductsRepository) invalidateProductCaches(ctx context.Context, productID uuid.UUID) {
	if r.redis == nil {
		return
	}
	r.redis.Del(ctx, fmt.Sprintf("gastro:products:product:%s", productID.String()))
	r.invalidateListCaches(ctx)
}

// invalidateListCaches drops every cached product list (pattern-based)
func (r *ProductsRepository) invalidateListCaches(ctx context.Context) {
	if r.redis == nil {
		return
	}
	iter := r.redis.Scan(ctx, 0, "gastro:products:list:*", 100).Iterator()
	for iter.Next(ctx) {
		r.redis.Del(ctx, iter.Val())
	}
}

// CreateProduct creates a new product for a supplier
func (r *ProductsRepository) CreateProduct(product *models.Product) error {
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}

	// Generate slug from name if not provided, suffixed with the first ID
	// segment for uniqueness across suppliers.
	if product.Slug == nil || *product.Slug == "" {
		uniqueSlug := fmt.Sprintf("%s-%s", generateSlug(product.Name), product.ID.String()[:8])
		product.Slug = &uniqueSlug
	}

	syncInventoryStatus(product)

	err := r.db.Create(product).Error
	if err == nil {
		r.invalidateListCaches(context.Background())
	}
	return err
}

// syncInventoryStatus derives the inventory status from quantity and threshold
func syncInventoryStatus(product *models.Product) {
	threshold := 0
	if product.LowStockThreshold != nil {
		threshold = *product.LowStockThreshold
	}

	var status models.InventoryStatus
	switch {
	case product.Quantity <= 0:
		status = models.InventoryStatusOutOfStock
	case threshold > 0 && product.Quantity <= threshold:
		status = models.InventoryStatusLowStock
	default:
		status = models.InventoryStatusInStock
	}
	product.InventoryStatus = &status
}

// GetProductByID retrieves a product by ID with caching
func (r *ProductsRepository) GetProductByID(productID uuid.UUID) (*models.Product, error) {
	ctx := context.Background()
	cacheKey := fmt.Sprintf("gastro:products:product:%s", productID.String())

	if r.redis != nil {
		val, err := r.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var product models.Product
			if err := json.Unmarshal([]byte(val), &product); err == nil {
				return &product, nil
			}
		}
	}

	var product models.Product
	if err := r.db.Where("id = ?", productID).First(&product).Error; err != nil {
		return nil, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(product); err == nil {
			r.redis.Set(ctx, cacheKey, data, ProductCacheTTL)
		}
	}

	return &product, nil
}

// GetProductBySlug retrieves a product by slug
func (r *ProductsRepository) GetProductBySlug(slug string) (*models.Product, error) {
	var product models.Product
	if err := r.db.Where("slug = ?", slug).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// BatchGetProductsByIDs retrieves multiple products in a single query
func (r *ProductsRepository) BatchGetProductsByIDs(productIDs []uuid.UUID) ([]*models.Product, error) {
	if len(productIDs) == 0 {
		return []*models.Product{}, nil
	}
	var products []*models.Product
	if err := r.db.Where("id IN ?", productIDs).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// UpdateProduct updates a product and invalidates cache
func (r *ProductsRepository) UpdateProduct(productID uuid.UUID, updates *models.Product) error {
	updates.UpdatedAt = time.Now()
	err := r.db.Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(updates).Error
	if err == nil {
		r.invalidateProductCaches(context.Background(), productID)
	}
	return err
}

// UpdateProductStatus updates product status
func (r *ProductsRepository) UpdateProductStatus(productID uuid.UUID, status models.ProductStatus) error {
	err := r.db.Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
	if err == nil {
		r.invalidateProductCaches(context.Background(), productID)
	}
	return err
}

// BulkUpdateStatus updates the status of many products at once
func (r *ProductsRepository) BulkUpdateStatus(productIDs []uuid.UUID, status models.ProductStatus) (int64, error) {
	result := r.db.Model(&models.Product{}).
		Where("id IN ?", productIDs).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error == nil {
		for _, id := range productIDs {
			r.invalidateProductCaches(context.Background(), id)
		}
	}
	return result.RowsAffected, result.Error
}

// DeleteProduct soft deletes a product
func (r *ProductsRepository) DeleteProduct(productID uuid.UUID) error {
	err := r.db.Where("id = ?", productID).Delete(&models.Product{}).Error
	if err == nil {
		r.invalidateProductCaches(context.Background(), productID)
	}
	return err
}

// AdjustStock applies a relative stock adjustment inside a row lock and keeps
// the inventory status in sync. Negative adjustments may not take quantity
// below zero.
func (r *ProductsRepository) AdjustStock(productID uuid.UUID, adjustment int) (*models.Product, error) {
	var product models.Product
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(lockForUpdate()).Where("id = ?", productID).First(&product).Error; err != nil {
			return err
		}
		newQty := product.Quantity + adjustment
		if newQty < 0 {
			return fmt.Errorf("product %s has %d on hand: %w", productID, product.Quantity, ErrNegativeStock)
		}
		product.Quantity = newQty
		syncInventoryStatus(&product)
		product.UpdatedAt = time.Now()
		return tx.Model(&models.Product{}).Where("id = ?", productID).
			Updates(map[string]interface{}{
				"quantity":         product.Quantity,
				"inventory_status": product.InventoryStatus,
				"updated_at":       product.UpdatedAt,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	r.invalidateProductCaches(context.Background(), productID)
	return &product, nil
}

// GetProducts retrieves products with filters and pagination
func (r *ProductsRepository) GetProducts(req *models.SearchProductsRequest) ([]models.Product, int64, error) {
	ctx := context.Background()
	cacheKey := generateListCacheKey("list", req)

	if r.redis != nil {
		if val, err := r.redis.Get(ctx, cacheKey).Result(); err == nil {
			var cached productListCacheEntry
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return cached.Products, cached.Total, nil
			}
		}
	}

	var products []models.Product
	var total int64

	query := r.db.Model(&models.Product{})
	query = r.applyProductFilters(query, req)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if req.SortBy != nil && *req.SortBy != "" {
		sortOrder := "DESC"
		if req.SortOrder != nil && strings.ToUpper(*req.SortOrder) == "ASC" {
			sortOrder = "ASC"
		}
		query = query.Order(fmt.Sprintf("%s %s", sortColumn(*req.SortBy), sortOrder))
	} else {
		query = query.Order("created_at DESC")
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(productListCacheEntry{Products: products, Total: total}); err == nil {
			r.redis.Set(ctx, cacheKey, data, ProductListCacheTTL)
		}
	}

	return products, total, nil
}

// productListCacheEntry is the cached shape of one list query result
type productListCacheEntry struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
}

// sortColumn whitelists sortable columns to keep ORDER BY injection-safe
func sortColumn(requested string) string {
	switch requested {
	case "name", "price", "created_at", "updated_at", "average_rating", "quantity":
		return requested
	default:
		return "created_at"
	}
}

// SearchProducts performs weighted full-text search on products
func (r *ProductsRepository) SearchProducts(req *models.SearchProductsRequest) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	query := r.db.Model(&models.Product{})

	if req.Query != nil && *req.Query != "" {
		searchQuery := strings.TrimSpace(*req.Query)
		tsQuery := strings.Join(strings.Fields(searchQuery), " & ")

		// Weighted full-text search: A = name, B = description, C = SKU,
		// D = keywords.
		query = query.Where(
			`(
				setweight(to_tsvector('english', COALESCE(name, '')), 'A') ||
				setweight(to_tsvector('english', COALESCE(description, '')), 'B') ||
				setweight(to_tsvector('english', COALESCE(sku, '')), 'C') ||
				setweight(to_tsvector('english', COALESCE(search_keywords, '')), 'D')
			) @@ to_tsquery('english', ?)`,
			tsQuery,
		)

		if req.SortBy == nil || *req.SortBy == "" {
			query = query.Select(`*,
				ts_rank(
					setweight(to_tsvector('english', COALESCE(name, '')), 'A') ||
					setweight(to_tsvector('english', COALESCE(description, '')), 'B') ||
					setweight(to_tsvector('english', COALESCE(sku, '')), 'C') ||
					setweight(to_tsvector('english', COALESCE(search_keywords, '')), 'D'),
					to_tsquery('english', ?)
				) AS rank`, tsQuery)
			query = query.Order("rank DESC, created_at DESC")
		}
	}

	query = r.applyProductFilters(query, req)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if (req.Query == nil || *req.Query == "") && req.SortBy != nil && *req.SortBy != "" {
		sortOrder := "DESC"
		if req.SortOrder != nil && strings.ToUpper(*req.SortOrder) == "ASC" {
			sortOrder = "ASC"
		}
		query = query.Order(fmt.Sprintf("%s %s", sortColumn(*req.SortBy), sortOrder))
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// GetSearchSuggestions returns autocomplete suggestions based on a prefix
func (r *ProductsRepository) GetSearchSuggestions(query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}

	var suggestions []string
	searchTerm := strings.ToLower(strings.TrimSpace(query))

	err := r.db.Model(&models.Product{}).
		Where("status = ?", models.ProductStatusActive).
		Where("LOWER(name) LIKE ?", searchTerm+"%").
		Order("name ASC").
		Limit(limit).
		Pluck("DISTINCT name", &suggestions).Error
	if err != nil {
		return nil, err
	}
	return suggestions, nil
}

// applyProductFilters applies the common filters of a search request
func (r *ProductsRepository) applyProductFilters(query *gorm.DB, req *models.SearchProductsRequest) *gorm.DB {
	if req.CategoryID != nil && *req.CategoryID != "" {
		query = query.Where("category_id = ?", *req.CategoryID)
	}
	if req.SupplierID != nil && *req.SupplierID != "" {
		query = query.Where("supplier_id = ?", *req.SupplierID)
	}
	if req.GroupID != nil && *req.GroupID != "" {
		query = query.Where("group_id = ?", *req.GroupID)
	}
	if len(req.Brands) > 0 {
		query = query.Where("brand IN ?", req.Brands)
	}
	if len(req.Status) > 0 {
		query = query.Where("status IN ?", req.Status)
	}
	if len(req.InventoryStatus) > 0 {
		query = query.Where("inventory_status IN ?", req.InventoryStatus)
	}
	if req.MinPrice != nil && *req.MinPrice != "" {
		query = query.Where("CAST(price AS DECIMAL) >= ?", *req.MinPrice)
	}
	if req.MaxPrice != nil && *req.MaxPrice != "" {
		query = query.Where("CAST(price AS DECIMAL) <= ?", *req.MaxPrice)
	}
	if req.MinRating != nil {
		query = query.Where("average_rating >= ?", *req.MinRating)
	}
	return query
}

// GetActiveOffersByGroup returns the ACTIVE in-stock offers of a product
// group joined with supplier display data. Only active suppliers are
// included.
func (r *ProductsRepository) GetActiveOffersByGroup(groupID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	err := r.db.
		Joins("JOIN suppliers ON suppliers.id = products.supplier_id").
		Where("products.group_id = ?", groupID).
		Where("products.status = ?", models.ProductStatusActive).
		Where("products.quantity > 0").
		Where("suppliers.status = ?", models.SupplierStatusActive).
		Where("suppliers.deleted_at IS NULL").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// GetStats aggregates catalog stats, optionally scoped to one supplier
func (r *ProductsRepository) GetStats(supplierID *uuid.UUID) (*models.ProductsStats, error) {
	query := r.db.Model(&models.Product{})
	if supplierID != nil {
		query = query.Where("supplier_id = ?", *supplierID)
	}

	stats := &models.ProductsStats{}

	type countRow struct {
		Status models.ProductStatus
		Count  int
	}
	var rows []countRow
	if err := query.Session(&gorm.Session{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.TotalProducts += row.Count
		switch row.Status {
		case models.ProductStatusActive:
			stats.ActiveProducts = row.Count
		case models.ProductStatusDraft:
			stats.DraftProducts = row.Count
		}
	}

	var invRows []struct {
		InventoryStatus models.InventoryStatus
		Count           int
	}
	if err := query.Session(&gorm.Session{}).
		Select("inventory_status, COUNT(*) as count").
		Group("inventory_status").
		Scan(&invRows).Error; err != nil {
		return nil, err
	}
	for _, row := range invRows {
		switch row.InventoryStatus {
		case models.InventoryStatusOutOfStock:
			stats.OutOfStock = row.Count
		case models.InventoryStatusLowStock:
			stats.LowStock = row.Count
		}
	}

	var agg struct {
		AveragePrice   float64
		TotalInventory int64
	}
	if err := query.Session(&gorm.Session{}).
		Select("COALESCE(AVG(CAST(price AS DECIMAL)), 0) as average_price, COALESCE(SUM(quantity), 0) as total_inventory").
		Scan(&agg).Error; err != nil {
		return nil, err
	}
	stats.AveragePrice = agg.AveragePrice
	stats.TotalInventory = agg.TotalInventory

	return stats, nil
}

// GetLowStockProducts lists a supplier's products at or below their threshold
func (r *ProductsRepository) GetLowStockProducts(supplierID uuid.UUID, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = 10
	}
	var products []models.Product
	err := r.db.
		Where("supplier_id = ?", supplierID).
		Where("status = ?", models.ProductStatusActive).
		Where("inventory_status IN ?", []models.InventoryStatus{models.InventoryStatusLowStock, models.InventoryStatusOutOfStock}).
		Order("quantity ASC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

// UpdateRatingAggregates refreshes the denormalized rating columns from
// approved reviews.
func (r *ProductsRepository) UpdateRatingAggregates(productID uuid.UUID) error {
	err := r.db.Exec(`
		UPDATE products SET
			average_rating = sub.avg_rating,
			review_count = sub.cnt
		FROM (
			SELECT COALESCE(AVG(rating), 0) AS avg_rating, COUNT(*) AS cnt
			FROM reviews
			WHERE product_id = ? AND status = ? AND deleted_at IS NULL
		) sub
		WHERE products.id = ?`,
		productID, models.ReviewStatusApproved, productID).Error
	if err == nil {
		r.invalidateProductCaches(context.Background(), productID)
	}
	return err
}
