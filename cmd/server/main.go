package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/eunseonJeong/life-planner-sub000/config"
	"github.com/eunseonJeong/life-planner-sub000/internal/api"
	"github.com/eunseonJeong/life-planner-sub000/internal/database"
	"github.com/eunseonJeong/life-planner-sub000/internal/market"
	"github.com/eunseonJeong/life-planner-sub000/internal/molit"
	"github.com/eunseonJeong/life-planner-sub000/internal/naver"
	"github.com/eunseonJeong/life-planner-sub000/internal/scheduler"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if cfg.ServiceKey == "" {
		logger.Warn("MOLIT_SERVICE_KEY is not set; market aggregation requests will fail")
	}

	db, err := database.NewDatabase(cfg.DBPath, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	timeout := time.Duration(cfg.UpstreamTimeoutSeconds) * time.Second
	fetcher := molit.NewClient(cfg.ServiceKey, timeout, logger)
	enricher := naver.NewClient(timeout, logger)
	aggregator := market.NewAggregator(fetcher, enricher, cfg.PageSize, logger)
	service := market.NewService(aggregator, db, cfg.RecentLimit, logger)

	refresher := scheduler.NewScheduler(service, cfg.WatchRegions, cfg.SnapshotCron, logger)
	if err := refresher.Start(); err != nil {
		logger.WithError(err).Fatal("Failed to start snapshot scheduler")
	}
	defer refresher.Stop()

	router := gin.Default()
	handler := api.NewHandler(service, db, logger)
	api.SetupRoutes(router, handler)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Infof("Starting server on %s", addr)
	if err := router.Run(addr); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
