package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
)

func offersForComparison() []models.GroupOffer {
	base := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	return []models.GroupOffer{
		{ProductName: "Fryer Pro 8L", Price: "899.00", Rating: 4.8, ReviewCount: 31, CreatedAt: base},
		{ProductName: "Fryer Basic 8L", Price: "649.90", Rating: 4.1, ReviewCount: 12, CreatedAt: base.Add(24 * time.Hour)},
		{ProductName: "fryer compact 8L", Price: "720.00", Rating: 0, ReviewCount: 0, CreatedAt: base.Add(48 * time.Hour)},
	}
}

func TestMarkFlags_CheapestIsHighlighted(t *testing.T) {
	service := &ComparisonService{}
	offers := offersForComparison()

	service.markFlags(offers)

	assert.True(t, offers[1].Cheapest)
	assert.True(t, offers[1].Highlighted)
	assert.False(t, offers[0].Cheapest)
	assert.False(t, offers[2].Cheapest)
}

func TestMarkFlags_BestRatedRequiresReviews(t *testing.T) {
	service := &ComparisonService{}
	offers := offersForComparison()

	service.markFlags(offers)

	assert.True(t, offers[0].BestRated)
	assert.False(t, offers[1].BestRated)
	// Unreviewed offers never win best rated even with default rating
	assert.False(t, offers[2].BestRated)
}

func TestMarkFlags_NoReviewedOffers(t *testing.T) {
	service := &ComparisonService{}
	offers := []models.GroupOffer{
		{ProductName: "A", Price: "100.00", ReviewCount: 0},
		{ProductName: "B", Price: "90.00", ReviewCount: 0},
	}

	service.markFlags(offers)

	for _, o := range offers {
		assert.False(t, o.BestRated)
	}
	assert.True(t, offers[1].Cheapest)
}

func TestMarkFlags_PriceTieGoesToOlderListing(t *testing.T) {
	service := &ComparisonService{}
	older := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	offers := []models.GroupOffer{
		{ProductName: "Newer", Price: "500.00", CreatedAt: older.Add(time.Hour)},
		{ProductName: "Older", Price: "500.00", CreatedAt: older},
	}

	service.markFlags(offers)

	assert.True(t, offers[1].Cheapest)
	assert.False(t, offers[0].Cheapest)
}

func TestMarkFlags_EmptyOffers(t *testing.T) {
	service := &ComparisonService{}
	assert.NotPanics(t, func() {
		service.markFlags(nil)
	})
}

func TestRank_ByPrice(t *testing.T) {
	service := &ComparisonService{}
	offers := offersForComparison()

	service.rank(offers, models.ComparisonSortPrice)

	assert.Equal(t, "649.90", offers[0].Price)
	assert.Equal(t, "720.00", offers[1].Price)
	assert.Equal(t, "899.00", offers[2].Price)
}

func TestRank_ByRatingWithPriceTieBreak(t *testing.T) {
	service := &ComparisonService{}
	offers := []models.GroupOffer{
		{ProductName: "Mid", Price: "300.00", Rating: 4.0},
		{ProductName: "TopPricey", Price: "400.00", Rating: 4.9},
		{ProductName: "TopCheap", Price: "350.00", Rating: 4.9},
	}

	service.rank(offers, models.ComparisonSortRating)

	assert.Equal(t, "TopCheap", offers[0].ProductName)
	assert.Equal(t, "TopPricey", offers[1].ProductName)
	assert.Equal(t, "Mid", offers[2].ProductName)
}

func TestRank_ByNameCaseInsensitive(t *testing.T) {
	service := &ComparisonService{}
	offers := offersForComparison()

	service.rank(offers, models.ComparisonSortName)

	assert.Equal(t, "Fryer Basic 8L", offers[0].ProductName)
	assert.Equal(t, "fryer compact 8L", offers[1].ProductName)
	assert.Equal(t, "Fryer Pro 8L", offers[2].ProductName)
}

func TestRank_UnknownSortFallsBackToPrice(t *testing.T) {
	service := &ComparisonService{}
	offers := offersForComparison()

	service.rank(offers, "bogus")

	assert.Equal(t, "649.90", offers[0].Price)
}

func TestSortSummariesBySavings(t *testing.T) {
	summaries := []models.GroupSummary{
		{Name: "Dishwashers", MaxSavingsPct: 5.5, OfferCount: 3},
		{Name: "Combi Ovens", MaxSavingsPct: 22.0, OfferCount: 6},
		{Name: "Fryers", MaxSavingsPct: 12.75, OfferCount: 4},
	}

	sortSummariesBySavings(summaries)

	assert.Equal(t, "Combi Ovens", summaries[0].Name)
	assert.Equal(t, "Fryers", summaries[1].Name)
	assert.Equal(t, "Dishwashers", summaries[2].Name)
}

func TestSortSummariesBySavings_TieBreaks(t *testing.T) {
	summaries := []models.GroupSummary{
		{Name: "b group", MaxSavingsPct: 10, OfferCount: 2},
		{Name: "A group", MaxSavingsPct: 10, OfferCount: 2},
		{Name: "Bigger", MaxSavingsPct: 10, OfferCount: 5},
	}

	sortSummariesBySavings(summaries)

	// Equal savings falls back to offer count, then name
	assert.Equal(t, "Bigger", summaries[0].Name)
	assert.Equal(t, "A group", summaries[1].Name)
	assert.Equal(t, "b group", summaries[2].Name)
}
