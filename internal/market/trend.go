package market

import "github.com/eunseonJeong/life-planner-sub000/internal/models"

// trendThresholdPct is the fixed band (in percent) inside which the market
// counts as stable.
const trendThresholdPct = 2.0

// ChangeRate returns the percentage change of the average price between two
// summaries, or 0 when no previous period is available.
func ChangeRate(current models.MarketStatistics, previous *models.MarketStatistics) float64 {
	if previous == nil || previous.AvgPrice == 0 {
		return 0
	}
	return (current.AvgPrice - previous.AvgPrice) / previous.AvgPrice * 100
}

// ClassifyTrend labels the market by comparing average prices across two
// periods. Without a usable previous period the market reads as stable.
func ClassifyTrend(current models.MarketStatistics, previous *models.MarketStatistics) models.TrendLabel {
	if previous == nil || previous.AvgPrice == 0 {
		return models.TrendStable
	}
	rate := ChangeRate(current, previous)
	switch {
	case rate > trendThresholdPct:
		return models.TrendRising
	case rate < -trendThresholdPct:
		return models.TrendFalling
	default:
		return models.TrendStable
	}
}
