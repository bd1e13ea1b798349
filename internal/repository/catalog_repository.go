package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CatalogRepository manages categories and product groups
type CatalogRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewCatalogRepository(db *gorm.DB, redis *redis.Client) *CatalogRepository {
	return &CatalogRepository{db: db, redis: redis}
}

const categoriesCacheKey = "gastro:catalog:categories"

func (r *CatalogRepository) invalidateCategoryCache(ctx context.Context) {
	if r.redis == nil {
		return
	}
	r.redis.Del(ctx, categoriesCacheKey)
}

// groupSummariesCacheEntry pairs a cached summary page with its total so a
// hit can restore the full listing response.
type groupSummariesCacheEntry struct {
	Summaries []models.GroupSummary `json:"summaries"`
	Total     int64                 `json:"total"`
}

func groupSummariesCacheKey(categoryID *uuid.UUID, page, limit int) string {
	category := "all"
	if categoryID != nil {
		category = categoryID.String()
	}
	return fmt.Sprintf("gastro:compare:groups:%s:%d:%d", category, page, limit)
}

// GetCachedGroupSummaries returns a cached comparison listing page, if any
func (r *CatalogRepository) GetCachedGroupSummaries(categoryID *uuid.UUID, page, limit int) ([]models.GroupSummary, int64, bool) {
	if r.redis == nil {
		return nil, 0, false
	}
	val, err := r.redis.Get(context.Background(), groupSummariesCacheKey(categoryID, page, limit)).Result()
	if err != nil {
		return nil, 0, false
	}
	var entry groupSummariesCacheEntry
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return nil, 0, false
	}
	return entry.Summaries, entry.Total, true
}

// CacheGroupSummaries stores a comparison listing page. The TTL stays short
// because offer prices and stock move under the listing.
func (r *CatalogRepository) CacheGroupSummaries(categoryID *uuid.UUID, page, limit int, summaries []models.GroupSummary, total int64) {
	if r.redis == nil {
		return
	}
	data, err := json.Marshal(groupSummariesCacheEntry{Summaries: summaries, Total: total})
	if err != nil {
		return
	}
	r.redis.Set(context.Background(), groupSummariesCacheKey(categoryID, page, limit), data, GroupSummariesCacheTTL)
}

// CreateCategory creates a new category. Child categories inherit
// level = parent level + 1.
func (r *CatalogRepository) CreateCategory(category *models.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	if category.Slug == "" {
		category.Slug = generateSlug(category.Name)
	}
	if category.ParentID != nil {
		var parent models.Category
		if err := r.db.Where("id = ?", *category.ParentID).First(&parent).Error; err != nil {
			return fmt.Errorf("parent category not found: %w", err)
		}
		category.Level = parent.Level + 1
	}
	category.CreatedAt = time.Now()
	category.UpdatedAt = time.Now()

	err := r.db.Create(category).Error
	if err == nil {
		r.invalidateCategoryCache(context.Background())
	}
	return err
}

// GetCategories returns all categories ordered for tree assembly, cached
func (r *CatalogRepository) GetCategories() ([]models.Category, error) {
	ctx := context.Background()

	if r.redis != nil {
		val, err := r.redis.Get(ctx, categoriesCacheKey).Result()
		if err == nil {
			var categories []models.Category
			if err := json.Unmarshal([]byte(val), &categories); err == nil {
				return categories, nil
			}
		}
	}

	var categories []models.Category
	if err := r.db.Order("level ASC, position ASC, name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(categories); err == nil {
			r.redis.Set(ctx, categoriesCacheKey, data, CategoryCacheTTL)
		}
	}

	return categories, nil
}

// GetCategoryByID retrieves a single category
func (r *CatalogRepository) GetCategoryByID(categoryID uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.Where("id = ?", categoryID).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// GetCategoryBySlug retrieves a category by slug
func (r *CatalogRepository) GetCategoryBySlug(slug string) (*models.Category, error) {
	var category models.Category
	if err := r.db.Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// UpdateCategory applies a partial category update
func (r *CatalogRepository) UpdateCategory(categoryID uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	err := r.db.Model(&models.Category{}).
		Where("id = ?", categoryID).
		Updates(updates).Error
	if err == nil {
		r.invalidateCategoryCache(context.Background())
	}
	return err
}

// DeleteCategory soft deletes a category. Fails when the category still has
// products or child categories.
func (r *CatalogRepository) DeleteCategory(categoryID uuid.UUID) error {
	var productCount int64
	if err := r.db.Model(&models.Product{}).Where("category_id = ?", categoryID).Count(&productCount).Error; err != nil {
		return err
	}
	if productCount > 0 {
		return fmt.Errorf("category has %d products and cannot be deleted", productCount)
	}

	var childCount int64
	if err := r.db.Model(&models.Category{}).Where("parent_id = ?", categoryID).Count(&childCount).Error; err != nil {
		return err
	}
	if childCount > 0 {
		return fmt.Errorf("category has %d child categories and cannot be deleted", childCount)
	}

	err := r.db.Where("id = ?", categoryID).Delete(&models.Category{}).Error
	if err == nil {
		r.invalidateCategoryCache(context.Background())
	}
	return err
}

// CreateGroup creates a comparison group
func (r *CatalogRepository) CreateGroup(group *models.ProductGroup) error {
	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}
	if group.Slug == "" {
		group.Slug = fmt.Sprintf("%s-%s", generateSlug(group.Name), group.ID.String()[:8])
	}
	group.CreatedAt = time.Now()
	group.UpdatedAt = time.Now()
	return r.db.Create(group).Error
}

// GetGroupByID retrieves a comparison group
func (r *CatalogRepository) GetGroupByID(groupID uuid.UUID) (*models.ProductGroup, error) {
	var group models.ProductGroup
	if err := r.db.Where("id = ?", groupID).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// GetGroupBySlug retrieves a comparison group by slug
func (r *CatalogRepository) GetGroupBySlug(slug string) (*models.ProductGroup, error) {
	var group models.ProductGroup
	if err := r.db.Where("slug = ?", slug).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// GetGroups lists comparison groups with optional category filter
func (r *CatalogRepository) GetGroups(categoryID *uuid.UUID, page, limit int) ([]models.ProductGroup, int64, error) {
	var groups []models.ProductGroup
	var total int64

	query := r.db.Model(&models.ProductGroup{})
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("name ASC").Offset(offset).Limit(limit).Find(&groups).Error; err != nil {
		return nil, 0, err
	}

	return groups, total, nil
}

// GroupOfferAggregate carries per-group offer aggregates for listing pages
type GroupOfferAggregate struct {
	GroupID    uuid.UUID
	OfferCount int
	MinPrice   float64
	MaxPrice   float64
}

// GetGroupAggregates computes offer count and price bounds for a set of
// groups in one query.
func (r *CatalogRepository) GetGroupAggregates(groupIDs []uuid.UUID) (map[uuid.UUID]GroupOfferAggregate, error) {
	result := make(map[uuid.UUID]GroupOfferAggregate)
	if len(groupIDs) == 0 {
		return result, nil
	}

	var rows []GroupOfferAggregate
	err := r.db.Model(&models.Product{}).
		Select(`group_id,
			COUNT(*) as offer_count,
			MIN(CAST(price AS DECIMAL)) as min_price,
			MAX(CAST(price AS DECIMAL)) as max_price`).
		Where("group_id IN ?", groupIDs).
		Where("status = ?", models.ProductStatusActive).
		Where("quantity > 0").
		Where("CAST(price AS DECIMAL) > 0").
		Group("group_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.GroupID] = row
	}
	return result, nil
}

// UpdateGroup applies a partial group update
func (r *CatalogRepository) UpdateGroup(groupID uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	return r.db.Model(&models.ProductGroup{}).
		Where("id = ?", groupID).
		Updates(updates).Error
}

// DeleteGroup soft deletes a group and detaches its offers
func (r *CatalogRepository) DeleteGroup(groupID uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).
			Where("group_id = ?", groupID).
			Update("group_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", groupID).Delete(&models.ProductGroup{}).Error
	})
}

// AssignProductToGroup links a product offer to a comparison group. The
// product must belong to the same category as the group.
func (r *CatalogRepository) AssignProductToGroup(productID, groupID uuid.UUID) error {
	var group models.ProductGroup
	if err := r.db.Where("id = ?", groupID).First(&group).Error; err != nil {
		return err
	}
	var product models.Product
	if err := r.db.Where("id = ?", productID).First(&product).Error; err != nil {
		return err
	}
	if product.CategoryID != group.CategoryID {
		return fmt.Errorf("product category does not match group category")
	}
	return r.db.Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"group_id":   groupID,
			"updated_at": time.Now(),
		}).Error
}

// RemoveProductFromGroup detaches a product from its comparison group
func (r *CatalogRepository) RemoveProductFromGroup(productID uuid.UUID) error {
	return r.db.Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"group_id":   nil,
			"updated_at": time.Now(),
		}).Error
}
