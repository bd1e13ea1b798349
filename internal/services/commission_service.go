package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/repository"
)

var (
	ErrDuplicateSetting = errors.New("a commission setting with this scope already exists")
	ErrInvalidRate      = errors.New("commission rate must be between 0 and 100")
	ErrInvalidEffective = errors.New("effectiveUntil must be after effectiveFrom")
)

// CommissionService manages commission settings and resolves the applicable
// rate for a sale. Resolution picks the most specific active setting:
// supplier+category beats supplier, supplier beats category, category beats
// global. Within a scope the most recently updated setting wins.
type CommissionService struct {
	repo        repository.CommissionRepository
	defaultRate float64
	logger      *logrus.Entry
}

func NewCommissionService(repo repository.CommissionRepository, defaultRate float64, logger *logrus.Logger) *CommissionService {
	return &CommissionService{
		repo:        repo,
		defaultRate: defaultRate,
		logger:      logger.WithField("service", "commission"),
	}
}

// CreateSetting validates and stores a new commission setting
func (s *CommissionService) CreateSetting(req *models.CreateCommissionSettingRequest, createdBy string) (*models.CommissionSetting, error) {
	if req.Rate < 0 || req.Rate > 100 {
		return nil, ErrInvalidRate
	}

	var supplierID, categoryID *uuid.UUID
	if req.SupplierID != nil && *req.SupplierID != "" {
		id, err := uuid.Parse(*req.SupplierID)
		if err != nil {
			return nil, fmt.Errorf("invalid supplier id: %w", err)
		}
		supplierID = &id
	}
	if req.CategoryID != nil && *req.CategoryID != "" {
		id, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("invalid category id: %w", err)
		}
		categoryID = &id
	}

	if req.EffectiveFrom != nil && req.EffectiveUntil != nil && !req.EffectiveUntil.After(*req.EffectiveFrom) {
		return nil, ErrInvalidEffective
	}

	if existing, err := s.repo.FindDuplicateSetting(supplierID, categoryID); err == nil && existing != nil {
		return nil, ErrDuplicateSetting
	} else if err != nil && !repository.IsNotFound(err) {
		return nil, err
	}

	setting := &models.CommissionSetting{
		SupplierID:     supplierID,
		CategoryID:     categoryID,
		Rate:           req.Rate,
		IsActive:       true,
		Notes:          req.Notes,
		EffectiveFrom:  req.EffectiveFrom,
		EffectiveUntil: req.EffectiveUntil,
		CreatedBy:      &createdBy,
	}
	if err := s.repo.CreateSetting(setting); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"settingId": setting.ID,
		"scope":     setting.Scope(),
		"rate":      setting.Rate,
	}).Info("Commission setting created")

	return setting, nil
}

// UpdateSetting applies a partial update to a setting
func (s *CommissionService) UpdateSetting(settingID uuid.UUID, req *models.UpdateCommissionSettingRequest, updatedBy string) (*models.CommissionSetting, error) {
	if req.Rate != nil && (*req.Rate < 0 || *req.Rate > 100) {
		return nil, ErrInvalidRate
	}
	if req.EffectiveFrom != nil && req.EffectiveUntil != nil && !req.EffectiveUntil.After(*req.EffectiveFrom) {
		return nil, ErrInvalidEffective
	}

	updates := map[string]interface{}{"updated_by": updatedBy}
	if req.Rate != nil {
		updates["rate"] = *req.Rate
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.EffectiveFrom != nil {
		updates["effective_from"] = *req.EffectiveFrom
	}
	if req.EffectiveUntil != nil {
		updates["effective_until"] = *req.EffectiveUntil
	}

	if err := s.repo.UpdateSetting(settingID, updates); err != nil {
		return nil, err
	}
	return s.repo.GetSettingByID(settingID)
}

// DeleteSetting removes a setting. Ledger entries that referenced it keep
// their frozen rate.
func (s *CommissionService) DeleteSetting(settingID uuid.UUID) error {
	return s.repo.DeleteSetting(settingID)
}

// GetSettings lists settings with optional scope filters
func (s *CommissionService) GetSettings(supplierID, categoryID *uuid.UUID, page, limit int) ([]models.CommissionSetting, int64, error) {
	return s.repo.GetSettings(supplierID, categoryID, page, limit)
}

// Resolve returns the commission applicable to a supplier/category pair.
// When no setting matches, the configured default rate applies with GLOBAL
// scope and no setting reference.
func (s *CommissionService) Resolve(supplierID, categoryID uuid.UUID) (*models.ResolvedCommission, error) {
	settings, err := s.repo.GetActiveSettingsFor(supplierID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("loading commission settings: %w", err)
	}

	best := pickMostSpecific(settings)
	if best == nil {
		return &models.ResolvedCommission{
			Scope: models.ScopeGlobal,
			Rate:  s.defaultRate,
		}, nil
	}

	id := best.ID
	return &models.ResolvedCommission{
		SettingID: &id,
		Scope:     best.Scope(),
		Rate:      best.Rate,
	}, nil
}

// pickMostSpecific selects the winning setting from the candidate rows.
// Candidates arrive ordered by updated_at descending, so the first hit per
// specificity tier is the tie-break winner.
func pickMostSpecific(settings []models.CommissionSetting) *models.CommissionSetting {
	order := []models.CommissionScope{
		models.ScopeSupplierCategory,
		models.ScopeSupplier,
		models.ScopeCategory,
		models.ScopeGlobal,
	}
	for _, scope := range order {
		for i := range settings {
			if settings[i].Scope() == scope {
				return &settings[i]
			}
		}
	}
	return nil
}

// CalculateAmount computes the commission owed on a base amount at a rate.
// The result is rounded to cents half-up.
func CalculateAmount(baseAmount float64, rate float64) float64 {
	base := decimal.NewFromFloat(baseAmount)
	pct := decimal.NewFromFloat(rate).Div(decimal.NewFromInt(100))
	amount, _ := base.Mul(pct).Round(2).Float64()
	return amount
}

// GetRecords lists ledger entries
func (s *CommissionService) GetRecords(filters repository.CommissionRecordFilters, page, limit int) ([]models.CommissionRecord, int64, error) {
	return s.repo.GetRecords(filters, page, limit)
}

// SupplierCommissionOwed totals a supplier's pending commission
func (s *CommissionService) SupplierCommissionOwed(supplierID uuid.UUID) (float64, error) {
	return s.repo.SumBySupplier(supplierID, []models.CommissionStatus{models.CommissionStatusPending})
}
