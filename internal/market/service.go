package market

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eunseonJeong/life-planner-sub000/config"
	"github.com/eunseonJeong/life-planner-sub000/internal/models"
)

// SnapshotStore records compact aggregation results for history charts.
type SnapshotStore interface {
	SaveSnapshot(snapshot *models.MarketSnapshot) error
}

// Report is the full response payload for one market query.
type Report struct {
	Region             *models.Region          `json:"region,omitempty"`
	RegionCode         string                  `json:"region_code"`
	DealType           models.DealType         `json:"deal_type"`
	FromPeriod         string                  `json:"from_period"`
	ToPeriod           string                  `json:"to_period"`
	RecentTransactions []models.Transaction    `json:"recent_transactions"`
	Statistics         models.MarketStatistics `json:"statistics"`
	Count              int                     `json:"count"`
	Trend              models.TrendLabel       `json:"trend"`
	ChangeRate         float64                 `json:"change_rate"`
}

// Service composes aggregation, trend classification, and snapshot history.
type Service struct {
	aggregator  *Aggregator
	store       SnapshotStore
	logger      *logrus.Logger
	recentLimit int
}

func NewService(aggregator *Aggregator, store SnapshotStore, recentLimit int, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return &Service{
		aggregator:  aggregator,
		store:       store,
		logger:      logger,
		recentLimit: recentLimit,
	}
}

// Report aggregates the requested window, derives the trend against the
// preceding window of equal length, and records a snapshot. The previous
// window fetch and the snapshot write are both best-effort.
func (s *Service) Report(ctx context.Context, regionCode string, from, to YearMonth, dealType models.DealType) (*Report, error) {
	summary, err := s.aggregator.Aggregate(ctx, Query{
		RegionCode:  regionCode,
		From:        from,
		To:          to,
		DealType:    dealType,
		Enrich:      true,
		RecentLimit: s.recentLimit,
	})
	if err != nil {
		return nil, err
	}

	var previous *models.MarketStatistics
	prevFrom, prevTo := PreviousWindow(from, to)
	prevSummary, err := s.aggregator.Aggregate(ctx, Query{
		RegionCode: regionCode,
		From:       prevFrom,
		To:         prevTo,
		DealType:   dealType,
	})
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"region": regionCode,
			"from":   prevFrom.String(),
			"to":     prevTo.String(),
		}).Warn("Previous period unavailable, trend falls back to stable")
	} else if prevSummary.Count > 0 {
		previous = &prevSummary.Statistics
	}

	report := &Report{
		Region:             config.RegionByCode(regionCode),
		RegionCode:         regionCode,
		DealType:           dealType,
		FromPeriod:         from.String(),
		ToPeriod:           to.String(),
		RecentTransactions: summary.RecentTransactions,
		Statistics:         summary.Statistics,
		Count:              summary.Count,
		Trend:              ClassifyTrend(summary.Statistics, previous),
		ChangeRate:         ChangeRate(summary.Statistics, previous),
	}

	s.recordSnapshot(report)
	return report, nil
}

// RefreshRegion aggregates the trailing three-month window for a watched
// region without enrichment and records the snapshot. Used by the scheduled
// refresher.
func (s *Service) RefreshRegion(ctx context.Context, regionCode string, dealType models.DealType) error {
	now := time.Now()
	to := YearMonth{Year: now.Year(), Month: int(now.Month())}
	from := to.prev().prev()

	summary, err := s.aggregator.Aggregate(ctx, Query{
		RegionCode:  regionCode,
		From:        from,
		To:          to,
		DealType:    dealType,
		RecentLimit: s.recentLimit,
	})
	if err != nil {
		return err
	}

	s.recordSnapshot(&Report{
		Region:     config.RegionByCode(regionCode),
		RegionCode: regionCode,
		DealType:   dealType,
		FromPeriod: from.String(),
		ToPeriod:   to.String(),
		Statistics: summary.Statistics,
		Count:      summary.Count,
		Trend:      models.TrendStable,
	})
	return nil
}

func (s *Service) recordSnapshot(report *Report) {
	if s.store == nil {
		return
	}
	snapshot := &models.MarketSnapshot{
		RegionCode:       report.RegionCode,
		RegionName:       config.RegionName(report.RegionCode),
		DealType:         report.DealType,
		FromPeriod:       report.FromPeriod,
		ToPeriod:         report.ToPeriod,
		TransactionCount: report.Count,
		AvgPrice:         report.Statistics.AvgPrice,
		MedianPrice:      report.Statistics.MedianPrice,
		AvgPricePerArea:  report.Statistics.AvgPricePerArea,
		Trend:            report.Trend,
	}
	if err := s.store.SaveSnapshot(snapshot); err != nil {
		s.logger.WithError(err).WithField("region", report.RegionCode).Error("Failed to record market snapshot")
	}
}
