package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/eunseonJeong/life-planner-sub000/config"
	"github.com/eunseonJeong/life-planner-sub000/internal/market"
	"github.com/eunseonJeong/life-planner-sub000/internal/models"
	"github.com/eunseonJeong/life-planner-sub000/internal/molit"
)

// MarketReporter produces the aggregated market report for one query.
type MarketReporter interface {
	Report(ctx context.Context, regionCode string, from, to market.YearMonth, dealType models.DealType) (*market.Report, error)
}

// SnapshotLister reads recorded snapshot history.
type SnapshotLister interface {
	ListSnapshots(regionCode string, dealType string, limit int) ([]models.MarketSnapshot, error)
}

type Handler struct {
	service   MarketReporter
	snapshots SnapshotLister
	logger    *logrus.Logger
}

func NewHandler(service MarketReporter, snapshots SnapshotLister, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Handler{
		service:   service,
		snapshots: snapshots,
		logger:    logger,
	}
}

type marketQuery struct {
	RegionCode string `form:"regionCode" binding:"required"`
	From       string `form:"from" binding:"required"`
	To         string `form:"to" binding:"required"`
	DealType   string `form:"dealType" binding:"required"`
}

// GetMarket handles GET /api/market.
func (h *Handler) GetMarket(c *gin.Context) {
	var q marketQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.logger.WithError(err).Error("Failed to parse market query")
		c.JSON(http.StatusBadRequest, gin.H{"error": "regionCode, from, to and dealType are required"})
		return
	}

	from, err := market.ParsePeriod(q.From)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	to, err := market.ParsePeriod(q.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dealType, err := models.ParseDealType(q.DealType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.service.Report(c.Request.Context(), q.RegionCode, from, to, dealType)
	if err != nil {
		if errors.Is(err, molit.ErrMissingServiceKey) {
			h.logger.Error("Market request rejected: service key not configured")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "government API service key is not configured"})
			return
		}
		h.logger.WithError(err).Error("Failed to build market report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build market report"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetMarketHistory handles GET /api/market/history.
func (h *Handler) GetMarketHistory(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}

	snapshots, err := h.snapshots.ListSnapshots(c.Query("regionCode"), c.Query("dealType"), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list market snapshots")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list market snapshots"})
		return
	}

	c.JSON(http.StatusOK, snapshots)
}

// GetRegions handles GET /api/regions.
func (h *Handler) GetRegions(c *gin.Context) {
	c.JSON(http.StatusOK, config.AllRegions())
}
