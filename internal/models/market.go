package models

import (
	"fmt"
	"time"
)

// DealType is the transaction category used throughout the market pipeline.
type DealType string

const (
	// DealSale is an outright purchase.
	DealSale DealType = "sale"
	// DealJeonse is a lease paid as a single lump-sum deposit, no monthly rent.
	DealJeonse DealType = "jeonse"
	// DealWolse is a lease with a deposit plus monthly rent.
	DealWolse DealType = "wolse"
)

// ParseDealType validates a user-supplied deal type string.
func ParseDealType(s string) (DealType, error) {
	switch DealType(s) {
	case DealSale, DealJeonse, DealWolse:
		return DealType(s), nil
	}
	return "", fmt.Errorf("unknown deal type: %q", s)
}

// TrendLabel classifies market movement between two periods.
type TrendLabel string

const (
	TrendRising  TrendLabel = "rising"
	TrendFalling TrendLabel = "falling"
	TrendStable  TrendLabel = "stable"
)

// Region is a static administrative-district reference entry. Loaded once at
// startup, never mutated.
type Region struct {
	Code     string `json:"code"`
	Province string `json:"province"`
	District string `json:"district"`
	Name     string `json:"name"`
}

// Transaction is a single normalized real-estate deal record. Built fresh for
// every request and discarded after the response is serialized.
type Transaction struct {
	ID           string    `json:"id"`
	DealType     DealType  `json:"deal_type"`
	PropertyType string    `json:"property_type"`
	DealDate     time.Time `json:"deal_date"`

	// Price is the sale amount in KRW. Zero for lease deals, where Deposit
	// carries the primary economic figure instead.
	Price       int64  `json:"price"`
	Deposit     *int64 `json:"deposit,omitempty"`
	MonthlyRent *int64 `json:"monthly_rent,omitempty"`

	Area      float64 `json:"area"`
	Floor     int     `json:"floor"`
	BuildYear int     `json:"build_year"`

	RegionCode  string `json:"region_code"`
	RegionName  string `json:"region_name"`
	Dong        string `json:"dong"`
	Jibun       string `json:"jibun"`
	ComplexName string `json:"complex_name,omitempty"`

	Source    string `json:"source"`
	DetailURL string `json:"detail_url,omitempty"`

	// Best-effort cross-reference to the Naver listing service. Absent
	// whenever no confident match was found.
	NaverComplexNo string `json:"naver_complex_no,omitempty"`
	NaverURL       string `json:"naver_url,omitempty"`
	NaverURLMobile string `json:"naver_url_mobile,omitempty"`
}

// MarketStatistics is the derived aggregate over one transaction set. All
// fields are zero when the set is empty; that is a normal result, not an
// error state.
type MarketStatistics struct {
	Count           int     `json:"count"`
	AvgPrice        float64 `json:"avg_price"`
	MedianPrice     float64 `json:"median_price"`
	AvgPricePerArea float64 `json:"avg_price_per_area"`
	MinPrice        int64   `json:"min_price"`
	MaxPrice        int64   `json:"max_price"`
	TotalArea       float64 `json:"total_area"`
	AvgArea         float64 `json:"avg_area"`
}

// MarketSummary is the aggregation result handed back to the HTTP layer.
type MarketSummary struct {
	RecentTransactions []Transaction    `json:"recent_transactions"`
	Statistics         MarketStatistics `json:"statistics"`
	Count              int              `json:"count"`
}

// MarketSnapshot is the one persisted artifact of the pipeline: a compact
// summary row recorded after a successful aggregation so the dashboard can
// chart how a watched market moved over time. Raw transactions are never
// stored.
type MarketSnapshot struct {
	ID               uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	RegionCode       string     `gorm:"index;size:10;not null" json:"region_code"`
	RegionName       string     `gorm:"size:100" json:"region_name"`
	DealType         DealType   `gorm:"index;size:10;not null" json:"deal_type"`
	FromPeriod       string     `gorm:"size:7;not null" json:"from_period"`
	ToPeriod         string     `gorm:"size:7;not null" json:"to_period"`
	TransactionCount int        `json:"transaction_count"`
	AvgPrice         float64    `json:"avg_price"`
	MedianPrice      float64    `json:"median_price"`
	AvgPricePerArea  float64    `json:"avg_price_per_area"`
	Trend            TrendLabel `gorm:"size:10" json:"trend"`
	CreatedAt        time.Time  `json:"created_at"`
}

func (MarketSnapshot) TableName() string {
	return "market_snapshots"
}
