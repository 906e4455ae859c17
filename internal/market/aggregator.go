package market

import (
	"context"
	"errors"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/eunseonJeong/life-planner-sub000/internal/models"
	"github.com/eunseonJeong/life-planner-sub000/internal/molit"
)

// Fetcher retrieves raw transactions for one month.
type Fetcher interface {
	FetchMonth(ctx context.Context, p molit.FetchParams) ([]models.Transaction, error)
}

// Enricher attaches best-effort listing cross-references.
type Enricher interface {
	Enrich(ctx context.Context, transactions []models.Transaction) []models.Transaction
}

// Aggregator drives the fetcher across a month range and assembles the
// market summary.
type Aggregator struct {
	fetcher  Fetcher
	enricher Enricher
	logger   *logrus.Logger
	pageSize int
}

func NewAggregator(fetcher Fetcher, enricher Enricher, pageSize int, logger *logrus.Logger) *Aggregator {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return &Aggregator{
		fetcher:  fetcher,
		enricher: enricher,
		logger:   logger,
		pageSize: pageSize,
	}
}

// Query identifies one aggregation run.
type Query struct {
	RegionCode  string
	From        YearMonth
	To          YearMonth
	DealType    models.DealType
	Enrich      bool
	RecentLimit int
}

// Aggregate fetches every month in the range sequentially, tolerating
// per-month failures, then computes statistics over the full set before any
// display truncation. A missing service key is the only failure that aborts
// the run.
func (a *Aggregator) Aggregate(ctx context.Context, q Query) (*models.MarketSummary, error) {
	property := molit.PropertySale
	if q.DealType != models.DealSale {
		property = molit.PropertyRent
	}

	var collected []models.Transaction
	for it := Months(q.From, q.To); ; {
		ym, ok := it.Next()
		if !ok {
			break
		}
		monthly, err := a.fetchMonthPages(ctx, property, ym, q.RegionCode)
		if err != nil {
			if errors.Is(err, molit.ErrMissingServiceKey) {
				return nil, err
			}
			a.logger.WithError(err).WithFields(logrus.Fields{
				"region": q.RegionCode,
				"period": ym.String(),
			}).Warn("Skipping month after fetch failure")
			continue
		}
		collected = append(collected, filterDealType(monthly, q.DealType)...)
	}

	sort.SliceStable(collected, func(i, j int) bool {
		return collected[i].DealDate.After(collected[j].DealDate)
	})

	stats := Summarize(collected)

	if q.Enrich && a.enricher != nil && len(collected) > 0 {
		collected = a.enricher.Enrich(ctx, collected)
	}

	recent := collected
	if q.RecentLimit > 0 && len(recent) > q.RecentLimit {
		recent = recent[:q.RecentLimit]
	}

	return &models.MarketSummary{
		RecentTransactions: recent,
		Statistics:         stats,
		Count:              stats.Count,
	}, nil
}

// fetchMonthPages drains every page of one month. The upstream paginates at
// the requested row count, so a full page means another fetch; a short page
// ends the month. Any page failure fails the whole month.
func (a *Aggregator) fetchMonthPages(ctx context.Context, property molit.PropertyKind, ym YearMonth, regionCode string) ([]models.Transaction, error) {
	var all []models.Transaction
	for page := 1; ; page++ {
		batch, err := a.fetcher.FetchMonth(ctx, molit.FetchParams{
			Property:   property,
			Year:       ym.Year,
			Month:      ym.Month,
			RegionCode: regionCode,
			Page:       page,
			PageSize:   a.pageSize,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if a.pageSize <= 0 || len(batch) < a.pageSize {
			return all, nil
		}
	}
}

// filterDealType narrows rent-endpoint results to the requested lease kind.
// Sale results pass through untouched since the sale endpoint only carries
// sale records.
func filterDealType(transactions []models.Transaction, dealType models.DealType) []models.Transaction {
	if dealType == models.DealSale {
		return transactions
	}
	filtered := make([]models.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if tx.DealType == dealType {
			filtered = append(filtered, tx)
		}
	}
	return filtered
}
