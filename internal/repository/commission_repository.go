package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"gorm.io/gorm"
)

// CommissionRepository is the persistence boundary for commission settings
// and the resolution ledger. Interface kept narrow so the commission service
// can be tested with in-memory fakes.
type CommissionRepository interface {
	CreateSetting(setting *models.CommissionSetting) error
	GetSettingByID(settingID uuid.UUID) (*models.CommissionSetting, error)
	GetSettings(supplierID, categoryID *uuid.UUID, page, limit int) ([]models.CommissionSetting, int64, error)
	GetActiveSettingsFor(supplierID, categoryID uuid.UUID) ([]models.CommissionSetting, error)
	UpdateSetting(settingID uuid.UUID, updates map[string]interface{}) error
	DeleteSetting(settingID uuid.UUID) error
	FindDuplicateSetting(supplierID, categoryID *uuid.UUID) (*models.CommissionSetting, error)

	CreateRecordTx(tx *gorm.DB, record *models.CommissionRecord) error
	GetRecords(filters CommissionRecordFilters, page, limit int) ([]models.CommissionRecord, int64, error)
	UpdateRecordStatusByOrder(orderID uuid.UUID, status models.CommissionStatus) error
	SumBySupplier(supplierID uuid.UUID, statuses []models.CommissionStatus) (float64, error)
}

// CommissionRecordFilters narrows ledger queries
type CommissionRecordFilters struct {
	OrderID    *uuid.UUID
	SupplierID *uuid.UUID
	Status     *models.CommissionStatus
	DateFrom   *time.Time
	DateTo     *time.Time
}

type commissionRepository struct {
	db *gorm.DB
}

func NewCommissionRepository(db *gorm.DB) CommissionRepository {
	return &commissionRepository{db: db}
}

func (r *commissionRepository) CreateSetting(setting *models.CommissionSetting) error {
	if setting.ID == uuid.Nil {
		setting.ID = uuid.New()
	}
	setting.CreatedAt = time.Now()
	setting.UpdatedAt = time.Now()
	return r.db.Create(setting).Error
}

func (r *commissionRepository) GetSettingByID(settingID uuid.UUID) (*models.CommissionSetting, error) {
	var setting models.CommissionSetting
	if err := r.db.Where("id = ?", settingID).First(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *commissionRepository) GetSettings(supplierID, categoryID *uuid.UUID, page, limit int) ([]models.CommissionSetting, int64, error) {
	var settings []models.CommissionSetting
	var total int64

	query := r.db.Model(&models.CommissionSetting{})
	if supplierID != nil {
		query = query.Where("supplier_id = ?", *supplierID)
	}
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("updated_at DESC").Offset(offset).Limit(limit).Find(&settings).Error
	if err != nil {
		return nil, 0, err
	}

	return settings, total, nil
}

// GetActiveSettingsFor returns every currently effective setting that could
// apply to a supplier/category pair: the exact pair, supplier-wide,
// category-wide and global rows. A setting is effective when it is active
// and the current moment falls inside its effective window. Resolution by
// specificity happens in the service.
func (r *commissionRepository) GetActiveSettingsFor(supplierID, categoryID uuid.UUID) ([]models.CommissionSetting, error) {
	now := time.Now()
	var settings []models.CommissionSetting
	err := r.db.
		Where("is_active = true").
		Where("effective_from IS NULL OR effective_from <= ?", now).
		Where("effective_until IS NULL OR effective_until > ?", now).
		Where(`(supplier_id = ? AND category_id = ?)
			OR (supplier_id = ? AND category_id IS NULL)
			OR (supplier_id IS NULL AND category_id = ?)
			OR (supplier_id IS NULL AND category_id IS NULL)`,
			supplierID, categoryID, supplierID, categoryID).
		Order("updated_at DESC").
		Find(&settings).Error
	return settings, err
}

// FindDuplicateSetting looks for an existing setting with the same scope
func (r *commissionRepository) FindDuplicateSetting(supplierID, categoryID *uuid.UUID) (*models.CommissionSetting, error) {
	query := r.db.Model(&models.CommissionSetting{})
	if supplierID != nil {
		query = query.Where("supplier_id = ?", *supplierID)
	} else {
		query = query.Where("supplier_id IS NULL")
	}
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	} else {
		query = query.Where("category_id IS NULL")
	}

	var setting models.CommissionSetting
	if err := query.First(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *commissionRepository) UpdateSetting(settingID uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	return r.db.Model(&models.CommissionSetting{}).
		Where("id = ?", settingID).
		Updates(updates).Error
}

func (r *commissionRepository) DeleteSetting(settingID uuid.UUID) error {
	return r.db.Where("id = ?", settingID).Delete(&models.CommissionSetting{}).Error
}

func (r *commissionRepository) CreateRecordTx(tx *gorm.DB, record *models.CommissionRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.CreatedAt = time.Now()
	record.UpdatedAt = time.Now()
	return tx.Create(record).Error
}

func (r *commissionRepository) GetRecords(filters CommissionRecordFilters, page, limit int) ([]models.CommissionRecord, int64, error) {
	var records []models.CommissionRecord
	var total int64

	query := r.db.Model(&models.CommissionRecord{})
	if filters.OrderID != nil {
		query = query.Where("order_id = ?", *filters.OrderID)
	}
	if filters.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filters.SupplierID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&records).Error
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// UpdateRecordStatusByOrder moves every ledger entry of an order into a new
// settlement status, used on settlement and refund reversal.
func (r *commissionRepository) UpdateRecordStatusByOrder(orderID uuid.UUID, status models.CommissionStatus) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	now := time.Now()
	switch status {
	case models.CommissionStatusSettled:
		updates["settled_at"] = now
	case models.CommissionStatusReversed:
		updates["reversed_at"] = now
	}
	return r.db.Model(&models.CommissionRecord{}).
		Where("order_id = ?", orderID).
		Updates(updates).Error
}

// SumBySupplier totals a supplier's ledger entries in the given statuses
func (r *commissionRepository) SumBySupplier(supplierID uuid.UUID, statuses []models.CommissionStatus) (float64, error) {
	var total float64
	query := r.db.Model(&models.CommissionRecord{}).
		Where("supplier_id = ?", supplierID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	err := query.Select("COALESCE(SUM(commission_amount), 0)").Scan(&total).Error
	return total, err
}
