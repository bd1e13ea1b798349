package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"gorm.io/gorm"
)

type SuppliersRepository struct {
	db *gorm.DB
}

func NewSuppliersRepository(db *gorm.DB) *SuppliersRepository {
	return &SuppliersRepository{db: db}
}

// CreateSupplier creates a supplier record in PENDING status
func (r *SuppliersRepository) CreateSupplier(supplier *models.Supplier) error {
	if supplier.ID == uuid.Nil {
		supplier.ID = uuid.New()
	}
	if supplier.Slug == "" {
		supplier.Slug = fmt.Sprintf("%s-%s", generateSlug(supplier.Name), supplier.ID.String()[:8])
	}
	supplier.CreatedAt = time.Now()
	supplier.UpdatedAt = time.Now()
	return r.db.Create(supplier).Error
}

// GetSupplierByID retrieves a supplier by ID
func (r *SuppliersRepository) GetSupplierByID(supplierID uuid.UUID) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := r.db.Where("id = ?", supplierID).First(&supplier).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

// GetSupplierBySlug retrieves a supplier by slug
func (r *SuppliersRepository) GetSupplierBySlug(slug string) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := r.db.Where("slug = ?", slug).First(&supplier).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

// GetSuppliers lists suppliers with optional status filter
func (r *SuppliersRepository) GetSuppliers(status *models.SupplierStatus, page, limit int) ([]models.Supplier, int64, error) {
	var suppliers []models.Supplier
	var total int64

	query := r.db.Model(&models.Supplier{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("name ASC").Offset(offset).Limit(limit).Find(&suppliers).Error; err != nil {
		return nil, 0, err
	}

	return suppliers, total, nil
}

// UpdateSupplier applies a partial supplier update
func (r *SuppliersRepository) UpdateSupplier(supplierID uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	return r.db.Model(&models.Supplier{}).
		Where("id = ?", supplierID).
		Updates(updates).Error
}

// UpdateSupplierStatus changes supplier status. Deactivating a supplier also
// deactivates its listed products so they drop out of comparisons.
func (r *SuppliersRepository) UpdateSupplierStatus(supplierID uuid.UUID, status models.SupplierStatus) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Supplier{}).
			Where("id = ?", supplierID).
			Updates(map[string]interface{}{
				"status":     status,
				"is_active":  status == models.SupplierStatusActive,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return err
		}

		if status == models.SupplierStatusSuspended || status == models.SupplierStatusTerminated {
			return tx.Model(&models.Product{}).
				Where("supplier_id = ?", supplierID).
				Where("status = ?", models.ProductStatusActive).
				Updates(map[string]interface{}{
					"status":     models.ProductStatusInactive,
					"updated_at": time.Now(),
				}).Error
		}
		return nil
	})
}

// UpdateRatingAggregates refreshes the denormalized supplier rating from
// approved reviews of its products.
func (r *SuppliersRepository) UpdateRatingAggregates(supplierID uuid.UUID) error {
	return r.db.Exec(`
		UPDATE suppliers SET
			rating = sub.avg_rating,
			rating_count = sub.cnt
		FROM (
			SELECT COALESCE(AVG(r.rating), 0) AS avg_rating, COUNT(*) AS cnt
			FROM reviews r
			WHERE r.supplier_id = ? AND r.status = ? AND r.deleted_at IS NULL
		) sub
		WHERE suppliers.id = ?`,
		supplierID, models.ReviewStatusApproved, supplierID).Error
}

// CountByStatus returns supplier counts grouped by status
func (r *SuppliersRepository) CountByStatus() (map[models.SupplierStatus]int, error) {
	var rows []struct {
		Status models.SupplierStatus
		Count  int
	}
	err := r.db.Model(&models.Supplier{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make(map[models.SupplierStatus]int, len(rows))
	for _, row := range rows {
		result[row.Status] = row.Count
	}
	return result, nil
}
