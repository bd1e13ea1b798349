package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/repository"
)

// ComparisonService builds price comparison views for product groups.
// All money math goes through decimals; float64 never touches a price here.
type ComparisonService struct {
	products *repository.ProductsRepository
	catalog  *repository.CatalogRepository
	supplier *repository.SuppliersRepository
	logger   *logrus.Entry
}

func NewComparisonService(
	products *repository.ProductsRepository,
	catalog *repository.CatalogRepository,
	supplier *repository.SuppliersRepository,
	logger *logrus.Logger,
) *ComparisonService {
	return &ComparisonService{
		products: products,
		catalog:  catalog,
		supplier: supplier,
		logger:   logger.WithField("service", "comparison"),
	}
}

// CompareGroup builds the comparison view for a product group. Offers with a
// zero or unparseable price are excluded. sortBy is one of price, rating or
// name; unknown values fall back to price.
func (s *ComparisonService) CompareGroup(groupID uuid.UUID, sortBy string) (*models.GroupComparison, error) {
	group, err := s.catalog.GetGroupByID(groupID)
	if err != nil {
		return nil, err
	}

	offers, err := s.products.GetActiveOffersByGroup(groupID)
	if err != nil {
		return nil, fmt.Errorf("loading group offers: %w", err)
	}

	comparison := &models.GroupComparison{
		Group:  group,
		Offers: []models.GroupOffer{},
	}

	type pricedOffer struct {
		product models.Product
		price   decimal.Decimal
	}
	priced := make([]pricedOffer, 0, len(offers))
	for _, p := range offers {
		price, err := decimal.NewFromString(p.Price)
		if err != nil || price.LessThanOrEqual(decimal.Zero) {
			s.logger.WithFields(logrus.Fields{
				"productId": p.ID,
				"price":     p.Price,
			}).Warn("Excluding offer with invalid price")
			continue
		}
		priced = append(priced, pricedOffer{product: p, price: price})
	}

	if len(priced) == 0 {
		comparison.Stats = models.PriceStats{
			MinPrice: "0.00",
			MaxPrice: "0.00",
			AvgPrice: "0.00",
		}
		return comparison, nil
	}

	min := priced[0].price
	max := priced[0].price
	sum := decimal.Zero
	for _, o := range priced {
		if o.price.LessThan(min) {
			min = o.price
		}
		if o.price.GreaterThan(max) {
			max = o.price
		}
		sum = sum.Add(o.price)
	}
	avg := sum.Div(decimal.NewFromInt(int64(len(priced)))).Round(2)

	comparison.Stats = models.PriceStats{
		MinPrice:   min.StringFixed(2),
		MaxPrice:   max.StringFixed(2),
		AvgPrice:   avg.StringFixed(2),
		OfferCount: len(priced),
	}

	for _, o := range priced {
		offer := models.GroupOffer{
			ProductID:   o.product.ID,
			SupplierID:  o.product.SupplierID,
			ProductName: o.product.Name,
			SKU:         o.product.SKU,
			Price:       o.price.StringFixed(2),
			InStock:     o.product.Quantity > 0,
			Quantity:    o.product.Quantity,
			CreatedAt:   o.product.CreatedAt,
		}
		if o.product.SupplierName != nil {
			offer.SupplierName = *o.product.SupplierName
		}
		if o.product.CurrencyCode != nil {
			offer.CurrencyCode = *o.product.CurrencyCode
		} else {
			offer.CurrencyCode = "EUR"
		}
		if o.product.AverageRating != nil {
			offer.Rating = *o.product.AverageRating
		}
		if o.product.ReviewCount != nil {
			offer.ReviewCount = *o.product.ReviewCount
		}
		offer.DeliveryDays = s.resolveDeliveryDays(&o.product)

		// Savings against the most expensive offer in the group
		savings := max.Sub(o.price)
		offer.SavingsAmount = savings.StringFixed(2)
		if max.GreaterThan(decimal.Zero) {
			pct, _ := savings.Div(max).Mul(decimal.NewFromInt(100)).Round(2).Float64()
			offer.SavingsPercent = pct
		}

		comparison.Offers = append(comparison.Offers, offer)
	}

	s.markFlags(comparison.Offers)
	s.rank(comparison.Offers, sortBy)

	return comparison, nil
}

// CompareGroupBySlug resolves a group slug and builds its comparison view
func (s *ComparisonService) CompareGroupBySlug(slug, sortBy string) (*models.GroupComparison, error) {
	group, err := s.catalog.GetGroupBySlug(slug)
	if err != nil {
		return nil, err
	}
	return s.CompareGroup(group.ID, sortBy)
}

// resolveDeliveryDays prefers the product-level override, then the supplier
// default, then 5.
func (s *ComparisonService) resolveDeliveryDays(product *models.Product) int {
	if product.DeliveryDays != nil && *product.DeliveryDays > 0 {
		return *product.DeliveryDays
	}
	supplier, err := s.supplier.GetSupplierByID(product.SupplierID)
	if err == nil && supplier.DeliveryDays > 0 {
		return supplier.DeliveryDays
	}
	return 5
}

// markFlags sets the cheapest, best-rated and highlighted flags. The
// highlighted offer is the cheapest one; when it is also the best rated, a
// single offer carries all three flags.
func (s *ComparisonService) markFlags(offers []models.GroupOffer) {
	if len(offers) == 0 {
		return
	}

	cheapest := 0
	bestRated := -1
	for i := range offers {
		if comparePriceAsc(offers[i], offers[cheapest]) {
			cheapest = i
		}
		if offers[i].ReviewCount > 0 {
			if bestRated == -1 || offers[i].Rating > offers[bestRated].Rating {
				bestRated = i
			}
		}
	}

	offers[cheapest].Cheapest = true
	offers[cheapest].Highlighted = true
	if bestRated >= 0 {
		offers[bestRated].BestRated = true
	}
}

// comparePriceAsc reports whether a ranks before b on price, with older
// listing winning ties.
func comparePriceAsc(a, b models.GroupOffer) bool {
	pa, _ := decimal.NewFromString(a.Price)
	pb, _ := decimal.NewFromString(b.Price)
	if !pa.Equal(pb) {
		return pa.LessThan(pb)
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

// rank orders offers by the requested criterion. Rating sorts descending
// with price as tie-break; name sorts ascending case-insensitively.
func (s *ComparisonService) rank(offers []models.GroupOffer, sortBy string) {
	switch sortBy {
	case models.ComparisonSortRating:
		sort.SliceStable(offers, func(i, j int) bool {
			if offers[i].Rating != offers[j].Rating {
				return offers[i].Rating > offers[j].Rating
			}
			return comparePriceAsc(offers[i], offers[j])
		})
	case models.ComparisonSortName:
		sort.SliceStable(offers, func(i, j int) bool {
			ni := strings.ToLower(offers[i].ProductName)
			nj := strings.ToLower(offers[j].ProductName)
			if ni != nj {
				return ni < nj
			}
			return comparePriceAsc(offers[i], offers[j])
		})
	default:
		sort.SliceStable(offers, func(i, j int) bool {
			return comparePriceAsc(offers[i], offers[j])
		})
	}
}

// ListGroupSummaries builds the catalog-wide comparison listing with offer
// counts, minimum prices and the best achievable savings per group. Pages
// come back ordered by savings and are served from a short-lived cache.
func (s *ComparisonService) ListGroupSummaries(categoryID *uuid.UUID, page, limit int) ([]models.GroupSummary, int64, error) {
	if cached, total, ok := s.catalog.GetCachedGroupSummaries(categoryID, page, limit); ok {
		return cached, total, nil
	}

	groups, total, err := s.catalog.GetGroups(categoryID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uuid.UUID, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
	}
	aggregates, err := s.catalog.GetGroupAggregates(ids)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]models.GroupSummary, 0, len(groups))
	for _, g := range groups {
		summary := models.GroupSummary{
			GroupID:    g.ID,
			Name:       g.Name,
			Slug:       g.Slug,
			CategoryID: g.CategoryID,
			ImageURL:   g.ImageURL,
			MinPrice:   "0.00",
		}
		if agg, ok := aggregates[g.ID]; ok {
			summary.OfferCount = agg.OfferCount
			minP := decimal.NewFromFloat(agg.MinPrice)
			maxP := decimal.NewFromFloat(agg.MaxPrice)
			summary.MinPrice = minP.StringFixed(2)
			if maxP.GreaterThan(decimal.Zero) {
				pct, _ := maxP.Sub(minP).Div(maxP).Mul(decimal.NewFromInt(100)).Round(2).Float64()
				summary.MaxSavingsPct = pct
			}
		}
		summaries = append(summaries, summary)
	}

	sortSummariesBySavings(summaries)
	s.catalog.CacheGroupSummaries(categoryID, page, limit, summaries, total)

	return summaries, total, nil
}

// sortSummariesBySavings orders groups by best achievable savings, breaking
// ties on offer count and then name.
func sortSummariesBySavings(summaries []models.GroupSummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].MaxSavingsPct != summaries[j].MaxSavingsPct {
			return summaries[i].MaxSavingsPct > summaries[j].MaxSavingsPct
		}
		if summaries[i].OfferCount != summaries[j].OfferCount {
			return summaries[i].OfferCount > summaries[j].OfferCount
		}
		return strings.ToLower(summaries[i].Name) < strings.ToLower(summaries[j].Name)
	})
}
