package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/eunseonJeong/life-planner-sub000/internal/market"
	"github.com/eunseonJeong/life-planner-sub000/internal/models"
	"github.com/eunseonJeong/life-planner-sub000/internal/molit"
)

type stubReporter struct {
	report *market.Report
	err    error

	gotRegion   string
	gotFrom     market.YearMonth
	gotTo       market.YearMonth
	gotDealType models.DealType
}

func (s *stubReporter) Report(_ context.Context, regionCode string, from, to market.YearMonth, dealType models.DealType) (*market.Report, error) {
	s.gotRegion = regionCode
	s.gotFrom = from
	s.gotTo = to
	s.gotDealType = dealType
	return s.report, s.err
}

type stubLister struct {
	snapshots []models.MarketSnapshot
	err       error
}

func (s *stubLister) ListSnapshots(regionCode string, dealType string, limit int) ([]models.MarketSnapshot, error) {
	return s.snapshots, s.err
}

func newTestRouter(reporter MarketReporter, lister SnapshotLister) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, NewHandler(reporter, lister, logrus.New()))
	return router
}

func TestGetMarket_OK(t *testing.T) {
	reporter := &stubReporter{report: &market.Report{
		RegionCode: "11680",
		DealType:   models.DealSale,
		FromPeriod: "2024-01",
		ToPeriod:   "2024-03",
		Statistics: models.MarketStatistics{Count: 2, AvgPrice: 150},
		Count:      2,
		Trend:      models.TrendRising,
		ChangeRate: 3.0,
	}}
	router := newTestRouter(reporter, &stubLister{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/market?regionCode=11680&from=2024-01&to=2024-03&dealType=sale", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "11680", reporter.gotRegion)
	assert.Equal(t, market.YearMonth{Year: 2024, Month: 1}, reporter.gotFrom)
	assert.Equal(t, market.YearMonth{Year: 2024, Month: 3}, reporter.gotTo)
	assert.Equal(t, models.DealSale, reporter.gotDealType)

	var got market.Report
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, models.TrendRising, got.Trend)
	assert.Equal(t, 2, got.Count)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestGetMarket_BadParams(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"Missing region", "/api/market?from=2024-01&to=2024-03&dealType=sale"},
		{"Bad from period", "/api/market?regionCode=11680&from=202401&to=2024-03&dealType=sale"},
		{"Bad to period", "/api/market?regionCode=11680&from=2024-01&to=03&dealType=sale"},
		{"Unknown deal type", "/api/market?regionCode=11680&from=2024-01&to=2024-03&dealType=rent2own"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubReporter{}, &stubLister{})
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.url, nil))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestGetMarket_MissingServiceKey(t *testing.T) {
	router := newTestRouter(&stubReporter{err: molit.ErrMissingServiceKey}, &stubLister{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/market?regionCode=11680&from=2024-01&to=2024-03&dealType=sale", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "service key")
}

func TestGetMarketHistory(t *testing.T) {
	lister := &stubLister{snapshots: []models.MarketSnapshot{
		{RegionCode: "11680", DealType: models.DealSale, TransactionCount: 42},
	}}
	router := newTestRouter(&stubReporter{}, lister)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/market/history?regionCode=11680&dealType=sale", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var got []models.MarketSnapshot
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 1)
	assert.Equal(t, 42, got[0].TransactionCount)
}

func TestGetRegions(t *testing.T) {
	router := newTestRouter(&stubReporter{}, &stubLister{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/regions", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var got []models.Region
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.NotEmpty(t, got)
	assert.NotEmpty(t, got[0].Code)
	assert.NotEmpty(t, got[0].Name)
}
