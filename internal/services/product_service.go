package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/events"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/repository"
)

var (
	ErrInvalidPrice      = errors.New("price must be a positive decimal")
	ErrSupplierNotActive = errors.New("supplier is not active")
	ErrNotProductOwner   = errors.New("product belongs to another supplier")
)

// ProductService handles supplier catalog management. Every mutation is
// scoped to the owning supplier and announced on the event bus so open carts
// can be flagged stale.
type ProductService struct {
	products  *repository.ProductsRepository
	catalog   *repository.CatalogRepository
	suppliers *repository.SuppliersRepository
	publisher *events.Publisher
	logger    *logrus.Entry
}

func NewProductService(
	products *repository.ProductsRepository,
	catalog *repository.CatalogRepository,
	suppliers *repository.SuppliersRepository,
	publisher *events.Publisher,
	logger *logrus.Logger,
) *ProductService {
	return &ProductService{
		products:  products,
		catalog:   catalog,
		suppliers: suppliers,
		publisher: publisher,
		logger:    logger.WithField("service", "products"),
	}
}

// parsePrice validates a decimal price string
func parsePrice(raw string) (string, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil || price.LessThanOrEqual(decimal.Zero) {
		return "", ErrInvalidPrice
	}
	return price.StringFixed(2), nil
}

// CreateProduct creates a product for an active supplier
func (s *ProductService) CreateProduct(supplierID uuid.UUID, req *models.CreateProductRequest, createdBy string) (*models.Product, error) {
	supplier, err := s.suppliers.GetSupplierByID(supplierID)
	if err != nil {
		return nil, err
	}
	if supplier.Status != models.SupplierStatusActive {
		return nil, ErrSupplierNotActive
	}

	price, err := parsePrice(req.Price)
	if err != nil {
		return nil, err
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("invalid category id: %w", err)
	}
	if _, err := s.catalog.GetCategoryByID(categoryID); err != nil {
		return nil, fmt.Errorf("category not found: %w", err)
	}

	product := &models.Product{
		SupplierID:        supplierID,
		CategoryID:        categoryID,
		Name:              req.Name,
		Slug:              req.Slug,
		SKU:               req.SKU,
		Brand:             req.Brand,
		Description:       req.Description,
		Price:             price,
		CurrencyCode:      req.CurrencyCode,
		Status:            models.ProductStatusDraft,
		MinOrderQty:       req.MinOrderQty,
		MaxOrderQty:       req.MaxOrderQty,
		LowStockThreshold: req.LowStockThreshold,
		DeliveryDays:      req.DeliveryDays,
		SearchKeywords:    req.SearchKeywords,
		SupplierName:      &supplier.Name,
		CreatedBy:         &createdBy,
	}
	if req.ComparePrice != nil {
		cp, err := parsePrice(*req.ComparePrice)
		if err != nil {
			return nil, err
		}
		product.ComparePrice = &cp
	}
	if req.CostPrice != nil {
		cp, err := parsePrice(*req.CostPrice)
		if err != nil {
			return nil, err
		}
		product.CostPrice = &cp
	}
	if req.Quantity != nil {
		product.Quantity = *req.Quantity
	}
	if req.GroupID != nil && *req.GroupID != "" {
		groupID, err := uuid.Parse(*req.GroupID)
		if err != nil {
			return nil, fmt.Errorf("invalid group id: %w", err)
		}
		group, err := s.catalog.GetGroupByID(groupID)
		if err != nil {
			return nil, fmt.Errorf("group not found: %w", err)
		}
		if group.CategoryID != categoryID {
			return nil, fmt.Errorf("group belongs to a different category")
		}
		product.GroupID = &groupID
	}
	applyProductCollections(product, req.Tags, req.Attributes, req.Images)

	if err := s.products.CreateProduct(product); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"productId":  product.ID,
		"supplierId": supplierID,
		"sku":        product.SKU,
	}).Info("Product created")

	return product, nil
}

// applyProductCollections converts request slices into jsonb columns
func applyProductCollections(product *models.Product, tags []string, attributes []models.ProductAttribute, images []models.ProductImage) {
	if tags != nil {
		j := models.JSON{"values": tags}
		product.Tags = &j
	}
	if attributes != nil {
		arr := make(models.JSONArray, 0, len(attributes))
		for _, a := range attributes {
			arr = append(arr, map[string]interface{}{
				"id": a.ID, "name": a.Name, "value": a.Value, "type": a.Type,
			})
		}
		j := models.JSON{"attributes": []interface{}(arr)}
		product.Attributes = &j
	}
	if images != nil {
		arr := make(models.JSONArray, 0, len(images))
		for _, img := range images {
			entry := map[string]interface{}{
				"id": img.ID, "url": img.URL, "position": img.Position,
			}
			if img.AltText != nil {
				entry["altText"] = *img.AltText
			}
			arr = append(arr, entry)
		}
		product.Images = &arr
	}
}

// requireOwnership loads a product and checks the acting supplier owns it.
// A nil supplierID means admin access.
func (s *ProductService) requireOwnership(productID uuid.UUID, supplierID *uuid.UUID) (*models.Product, error) {
	product, err := s.products.GetProductByID(productID)
	if err != nil {
		return nil, err
	}
	if supplierID != nil && product.SupplierID != *supplierID {
		return nil, ErrNotProductOwner
	}
	return product, nil
}

// GetProduct fetches a single product
func (s *ProductService) GetProduct(productID uuid.UUID) (*models.Product, error) {
	return s.products.GetProductByID(productID)
}

// GetProductBySlug fetches a single product by slug
func (s *ProductService) GetProductBySlug(slug string) (*models.Product, error) {
	return s.products.GetProductBySlug(slug)
}

// UpdateProduct applies a partial update. Price changes are announced so cart
// items holding the old price get flagged stale.
func (s *ProductService) UpdateProduct(productID uuid.UUID, supplierID *uuid.UUID, req *models.UpdateProductRequest, updatedBy string) (*models.Product, error) {
	existing, err := s.requireOwnership(productID, supplierID)
	if err != nil {
		return nil, err
	}

	updates := &models.Product{UpdatedBy: &updatedBy}
	priceChanged := false
	oldPrice := existing.Price

	if req.Name != nil {
		updates.Name = *req.Name
	}
	if req.Slug != nil {
		updates.Slug = req.Slug
	}
	if req.SKU != nil {
		updates.SKU = *req.SKU
	}
	updates.Brand = req.Brand
	updates.Description = req.Description
	if req.Price != nil {
		price, err := parsePrice(*req.Price)
		if err != nil {
			return nil, err
		}
		updates.Price = price
		priceChanged = price != existing.Price
	}
	if req.ComparePrice != nil {
		cp, err := parsePrice(*req.ComparePrice)
		if err != nil {
			return nil, err
		}
		updates.ComparePrice = &cp
	}
	if req.CostPrice != nil {
		cp, err := parsePrice(*req.CostPrice)
		if err != nil {
			return nil, err
		}
		updates.CostPrice = &cp
	}
	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("invalid category id: %w", err)
		}
		if _, err := s.catalog.GetCategoryByID(categoryID); err != nil {
			return nil, fmt.Errorf("category not found: %w", err)
		}
		updates.CategoryID = categoryID
	}
	if req.Quantity != nil {
		updates.Quantity = *req.Quantity
	}
	updates.MinOrderQty = req.MinOrderQty
	updates.MaxOrderQty = req.MaxOrderQty
	updates.LowStockThreshold = req.LowStockThreshold
	updates.DeliveryDays = req.DeliveryDays
	updates.SearchKeywords = req.SearchKeywords
	updates.CurrencyCode = req.CurrencyCode
	applyProductCollections(updates, req.Tags, req.Attributes, req.Images)

	if err := s.products.UpdateProduct(productID, updates); err != nil {
		return nil, err
	}

	updated, err := s.products.GetProductByID(productID)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if priceChanged {
			s.publisher.PublishProductPriceChanged(events.ProductEvent{
				ProductID: productID.String(),
				Name:      updated.Name,
				Price:     updated.Price,
				OldPrice:  oldPrice,
			})
		} else {
			s.publisher.PublishProductUpdated(events.ProductEvent{
				ProductID: productID.String(),
				Name:      updated.Name,
				Price:     updated.Price,
			})
		}
	}

	return updated, nil
}

// UpdateStatus moves a product through its listing lifecycle. Suppliers may
// only move between DRAFT, ACTIVE, INACTIVE and ARCHIVED; PENDING review
// decisions are admin-only and handled in the handler layer.
func (s *ProductService) UpdateStatus(productID uuid.UUID, supplierID *uuid.UUID, status models.ProductStatus) (*models.Product, error) {
	if _, err := s.requireOwnership(productID, supplierID); err != nil {
		return nil, err
	}
	if err := s.products.UpdateProductStatus(productID, status); err != nil {
		return nil, err
	}
	product, err := s.products.GetProductByID(productID)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil && status != models.ProductStatusActive {
		// A delisted product makes existing cart items stale
		s.publisher.PublishProductUpdated(events.ProductEvent{
			ProductID: productID.String(),
			Status:    string(status),
		})
	}
	return product, nil
}

// DeleteProduct soft deletes a product and announces the removal
func (s *ProductService) DeleteProduct(productID uuid.UUID, supplierID *uuid.UUID) error {
	if _, err := s.requireOwnership(productID, supplierID); err != nil {
		return err
	}
	if err := s.products.DeleteProduct(productID); err != nil {
		return err
	}
	if s.publisher != nil {
		s.publisher.PublishProductDeleted(productID.String())
	}
	return nil
}

// AdjustStock applies a relative inventory adjustment
func (s *ProductService) AdjustStock(productID uuid.UUID, supplierID *uuid.UUID, adjustment int, reason string) (*models.Product, error) {
	if _, err := s.requireOwnership(productID, supplierID); err != nil {
		return nil, err
	}
	product, err := s.products.AdjustStock(productID, adjustment)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"productId":  productID,
		"adjustment": adjustment,
		"reason":     reason,
		"quantity":   product.Quantity,
	}).Info("Stock adjusted")

	if s.publisher != nil {
		s.publisher.PublishProductStockChanged(productID.String(), product.Quantity)
	}
	return product, nil
}

// CheckStock verifies availability for a set of products
func (s *ProductService) CheckStock(req *models.StockCheckRequest) (*models.StockCheckResponse, error) {
	ids := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		id, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid product id %q: %w", item.ProductID, err)
		}
		ids = append(ids, id)
	}

	products, err := s.products.BatchGetProductsByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Product, len(products))
	for _, p := range products {
		byID[p.ID.String()] = p
	}

	resp := &models.StockCheckResponse{Success: true, AllInStock: true}
	for _, item := range req.Items {
		result := models.StockCheckResult{
			ProductID: item.ProductID,
			Requested: item.Quantity,
		}
		if p, ok := byID[item.ProductID]; ok {
			result.ProductName = p.Name
			result.InStock = p.Quantity
			result.Available = p.Status == models.ProductStatusActive && p.Quantity >= item.Quantity
		}
		if !result.Available {
			resp.AllInStock = false
		}
		resp.Results = append(resp.Results, result)
	}
	return resp, nil
}

// SearchProducts runs a full-text or filtered catalog search
func (s *ProductService) SearchProducts(req *models.SearchProductsRequest) ([]models.Product, int64, error) {
	if req.Query != nil && *req.Query != "" {
		return s.products.SearchProducts(req)
	}
	return s.products.GetProducts(req)
}

// GetSearchSuggestions returns autocomplete prefixes
func (s *ProductService) GetSearchSuggestions(query string, limit int) ([]string, error) {
	return s.products.GetSearchSuggestions(query, limit)
}

// BulkUpdateStatus applies a status to many products of one supplier
func (s *ProductService) BulkUpdateStatus(supplierID *uuid.UUID, req *models.BulkUpdateRequest) (int64, error) {
	ids := make([]uuid.UUID, 0, len(req.ProductIDs))
	for _, raw := range req.ProductIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid product id %q: %w", raw, err)
		}
		if supplierID != nil {
			if _, err := s.requireOwnership(id, supplierID); err != nil {
				return 0, err
			}
		}
		ids = append(ids, id)
	}
	return s.products.BulkUpdateStatus(ids, req.Status)
}

// GetStats aggregates catalog stats, optionally per supplier
func (s *ProductService) GetStats(supplierID *uuid.UUID) (*models.ProductsStats, error) {
	return s.products.GetStats(supplierID)
}
