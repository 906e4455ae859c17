package market

import (
	"sort"

	"github.com/eunseonJeong/life-planner-sub000/internal/models"
)

// Summarize computes the distributional statistics over a transaction set.
// Pure function: never errs, and an empty input yields the all-zero summary.
func Summarize(transactions []models.Transaction) models.MarketStatistics {
	stats := models.MarketStatistics{Count: len(transactions)}

	var prices []int64
	var areas []float64
	var pricesPerArea []float64
	for _, tx := range transactions {
		if tx.Price > 0 {
			prices = append(prices, tx.Price)
		}
		if tx.Area > 0 {
			areas = append(areas, tx.Area)
		}
		if tx.Price > 0 && tx.Area > 0 {
			pricesPerArea = append(pricesPerArea, float64(tx.Price)/tx.Area)
		}
	}

	if len(prices) > 0 {
		sort.Slice(prices, func(i, j int) bool { return prices[i] < prices[j] })
		var sum int64
		for _, p := range prices {
			sum += p
		}
		stats.AvgPrice = float64(sum) / float64(len(prices))
		// Upper-middle element for even-length sets. This matches the shipped
		// dashboard output; do not replace with an interpolated median.
		stats.MedianPrice = float64(prices[len(prices)/2])
		stats.MinPrice = prices[0]
		stats.MaxPrice = prices[len(prices)-1]
	}

	if len(pricesPerArea) > 0 {
		// summed in ascending order so the result is a function of the
		// multiset, not of the input permutation
		sort.Float64s(pricesPerArea)
		var sum float64
		for _, p := range pricesPerArea {
			sum += p
		}
		stats.AvgPricePerArea = sum / float64(len(pricesPerArea))
	}

	if len(areas) > 0 {
		sort.Float64s(areas)
		var sum float64
		for _, a := range areas {
			sum += a
		}
		stats.TotalArea = sum
		stats.AvgArea = sum / float64(len(areas))
	}

	return stats
}
