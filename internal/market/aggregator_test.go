package market

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/eunseonJeong/life-planner-sub000/internal/models"
	"github.com/eunseonJeong/life-planner-sub000/internal/molit"
)

// stubFetcher replays canned per-month results and records every call.
type stubFetcher struct {
	calls   []molit.FetchParams
	results map[string][]models.Transaction
	errs    map[string]error
	err     error
}

func (s *stubFetcher) FetchMonth(_ context.Context, p molit.FetchParams) ([]models.Transaction, error) {
	s.calls = append(s.calls, p)
	if s.err != nil {
		return nil, s.err
	}
	key := YearMonth{p.Year, p.Month}.String()
	if err, ok := s.errs[key]; ok {
		return nil, err
	}
	return s.results[key], nil
}

type stubEnricher struct {
	called bool
}

func (s *stubEnricher) Enrich(_ context.Context, txs []models.Transaction) []models.Transaction {
	s.called = true
	out := make([]models.Transaction, len(txs))
	copy(out, txs)
	for i := range out {
		out[i].NaverComplexNo = "enriched"
	}
	return out
}

func saleTx(id string, price int64, date time.Time) models.Transaction {
	return models.Transaction{ID: id, DealType: models.DealSale, Price: price, DealDate: date}
}

func rentTx(id string, monthly int64) models.Transaction {
	deposit := int64(300000000)
	dealType := models.DealJeonse
	if monthly > 0 {
		dealType = models.DealWolse
	}
	return models.Transaction{ID: id, DealType: dealType, Deposit: &deposit, MonthlyRent: &monthly}
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestAggregate_OneFetchPerMonth(t *testing.T) {
	fetcher := &stubFetcher{results: map[string][]models.Transaction{}}
	agg := NewAggregator(fetcher, nil, 1000, logrus.New())

	_, err := agg.Aggregate(context.Background(), Query{
		RegionCode: "11680",
		From:       YearMonth{2024, 1},
		To:         YearMonth{2024, 3},
		DealType:   models.DealSale,
	})
	assert.NoError(t, err)
	assert.Len(t, fetcher.calls, 3)
	assert.Equal(t, molit.PropertySale, fetcher.calls[0].Property)
	assert.Equal(t, 2024, fetcher.calls[0].Year)
	assert.Equal(t, 1, fetcher.calls[0].Month)
	assert.Equal(t, 3, fetcher.calls[2].Month)
}

func TestAggregate_TolerantOfPartialFailures(t *testing.T) {
	fetcher := &stubFetcher{
		results: map[string][]models.Transaction{
			"2024-01": {saleTx("a", 100, day(5))},
			"2024-03": {saleTx("b", 200, day(20))},
		},
		errs: map[string]error{
			"2024-02": &molit.HTTPError{Status: 500, Snippet: "boom"},
		},
	}
	agg := NewAggregator(fetcher, nil, 1000, logrus.New())

	summary, err := agg.Aggregate(context.Background(), Query{
		RegionCode: "11680",
		From:       YearMonth{2024, 1},
		To:         YearMonth{2024, 3},
		DealType:   models.DealSale,
	})
	assert.NoError(t, err)
	assert.Len(t, fetcher.calls, 3, "a failed month must not stop the loop")
	assert.Equal(t, 2, summary.Count)
}

func TestAggregate_AllMonthsFailIsEmptyResult(t *testing.T) {
	fetcher := &stubFetcher{err: &molit.HTTPError{Status: 503, Snippet: "unavailable"}}
	agg := NewAggregator(fetcher, nil, 1000, logrus.New())

	summary, err := agg.Aggregate(context.Background(), Query{
		RegionCode: "11680",
		From:       YearMonth{2024, 1},
		To:         YearMonth{2024, 3},
		DealType:   models.DealSale,
	})
	assert.NoError(t, err)
	assert.Len(t, fetcher.calls, 3)
	assert.Equal(t, 0, summary.Count)
	assert.Empty(t, summary.RecentTransactions)
	assert.Equal(t, models.MarketStatistics{}, summary.Statistics)
}

func TestAggregate_MissingServiceKeyAborts(t *testing.T) {
	fetcher := &stubFetcher{err: molit.ErrMissingServiceKey}
	agg := NewAggregator(fetcher, nil, 1000, logrus.New())

	_, err := agg.Aggregate(context.Background(), Query{
		RegionCode: "11680",
		From:       YearMonth{2024, 1},
		To:         YearMonth{2024, 3},
		DealType:   models.DealSale,
	})
	assert.ErrorIs(t, err, molit.ErrMissingServiceKey)
	assert.Len(t, fetcher.calls, 1, "configuration errors stop the loop immediately")
}

func TestAggregate_SortsDateDescending(t *testing.T) {
	fetcher := &stubFetcher{
		results: map[string][]models.Transaction{
			"2024-01": {saleTx("old", 100, day(3)), saleTx("new", 100, day(25)), saleTx("mid", 100, day(14))},
		},
	}
	agg := NewAggregator(fetcher, nil, 1000, logrus.New())

	summary, err := agg.Aggregate(context.Background(), Query{
		RegionCode: "11680",
		From:       YearMonth{2024, 1},
		To:         YearMonth{2024, 1},
		DealType:   models.DealSale,
	})
	assert.NoError(t, err)
	ids := []string{}
	for _, tx := range summary.RecentTransactions {
		ids = append(ids, tx.ID)
	}
	assert.Equal(t, []string{"new", "mid", "old"}, ids)
}

func TestAggregate_FiltersLeaseKind(t *testing.T) {
	rentRows := []models.Transaction{
		rentTx("j1", 0),
		rentTx("w1", 500000),
		rentTx("j2", 0),
	}
	fetcher := &stubFetcher{results: map[string][]models.Transaction{"2024-01": rentRows}}
	agg := NewAggregator(fetcher, nil, 1000, logrus.New())

	jeonse, err := agg.Aggregate(context.Background(), Query{
		RegionCode: "11680",
		From:       YearMonth{2024, 1},
		To:         YearMonth{2024, 1},
		DealType:   models.DealJeonse,
	})
	assert.NoError(t, err)
	assert.Equal(t, molit.PropertyRent, fetcher.calls[0].Property)
	assert.Equal(t, 2, jeonse.Count)

	fetcher.calls = nil
	wolse, err := agg.Aggregate(context.Background(), Query{
		RegionCode: "11680",
		From:       YearMonth{2024, 1},
		To:         YearMonth{2024, 1},
		DealType:   models.DealWolse,
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, wolse.Count)
	assert.Equal(t, "w1", wolse.RecentTransactions[0].ID)
}

// pagedFetcher serves a fixed result set one page at a time.
type pagedFetcher struct {
	rows  []models.Transaction
	calls []molit.FetchParams
}

func (p *pagedFetcher) FetchMonth(_ context.Context, params molit.FetchParams) ([]models.Transaction, error) {
	p.calls = append(p.calls, params)
	start := (params.Page - 1) * params.PageSize
	if start >= len(p.rows) {
		return nil, nil
	}
	end := start + params.PageSize
	if end > len(p.rows) {
		end = len(p.rows)
	}
	return p.rows[start:end], nil
}

func TestAggregate_DrainsEveryPage(t *testing.T) {
	var rows []models.Transaction
	for i := 0; i < 5; i++ {
		rows = append(rows, saleTx(fmt.Sprintf("p%d", i), int64(i+1)*100, day(i+1)))
	}
	fetcher := &pagedFetcher{rows: rows}
	agg := NewAggregator(fetcher, nil, 2, logrus.New())

	summary, err := agg.Aggregate(context.Background(), Query{
		RegionCode: "11680",
		From:       YearMonth{2024, 1},
		To:         YearMonth{2024, 1},
		DealType:   models.DealSale,
	})
	assert.NoError(t, err)
	// pages of 2, 2, 1: the short final page ends the month
	assert.Len(t, fetcher.calls, 3)
	assert.Equal(t, 1, fetcher.calls[0].Page)
	assert.Equal(t, 2, fetcher.calls[1].Page)
	assert.Equal(t, 3, fetcher.calls[2].Page)
	assert.Equal(t, 5, summary.Count)
}

func TestAggregate_StatsBeforeTruncation(t *testing.T) {
	var rows []models.Transaction
	for i := 0; i < 20; i++ {
		rows = append(rows, saleTx(string(rune('a'+i)), int64(i+1)*100, day(i+1)))
	}
	fetcher := &stubFetcher{results: map[string][]models.Transaction{"2024-01": rows}}
	enricher := &stubEnricher{}
	agg := NewAggregator(fetcher, enricher, 1000, logrus.New())

	summary, err := agg.Aggregate(context.Background(), Query{
		RegionCode:  "11680",
		From:        YearMonth{2024, 1},
		To:          YearMonth{2024, 1},
		DealType:    models.DealSale,
		Enrich:      true,
		RecentLimit: 5,
	})
	assert.NoError(t, err)
	assert.True(t, enricher.called)
	assert.Len(t, summary.RecentTransactions, 5)
	// statistics cover all 20 rows, not the truncated display list
	assert.Equal(t, 20, summary.Count)
	assert.Equal(t, 20, summary.Statistics.Count)
	assert.Equal(t, int64(100), summary.Statistics.MinPrice)
	assert.Equal(t, int64(2000), summary.Statistics.MaxPrice)
}
