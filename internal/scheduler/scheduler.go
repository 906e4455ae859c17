package scheduler

import (
	"context"
	"os"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/eunseonJeong/life-planner-sub000/internal/market"
	"github.com/eunseonJeong/life-planner-sub000/internal/models"
)

var refreshDealTypes = []models.DealType{models.DealSale, models.DealJeonse, models.DealWolse}

// Scheduler periodically re-aggregates watched regions so snapshot history
// accrues without user traffic.
type Scheduler struct {
	cron    *cron.Cron
	service *market.Service
	regions []string
	spec    string
	logger  *logrus.Logger
}

func NewScheduler(service *market.Service, regions []string, spec string, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Scheduler{
		cron:    cron.New(),
		service: service,
		regions: regions,
		spec:    spec,
		logger:  logger,
	}
}

// Start registers the refresh job and begins the cron loop.
func (s *Scheduler) Start() error {
	if len(s.regions) == 0 {
		s.logger.Info("No watched regions configured, snapshot refresh disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(s.spec, s.refreshAll); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.WithFields(logrus.Fields{
		"schedule": s.spec,
		"regions":  len(s.regions),
	}).Info("Snapshot refresh scheduled")
	return nil
}

// refreshAll runs every watched (region, deal type) job sequentially; one
// failed job never blocks the rest.
func (s *Scheduler) refreshAll() {
	ctx := context.Background()
	for _, region := range s.regions {
		for _, dealType := range refreshDealTypes {
			if err := s.service.RefreshRegion(ctx, region, dealType); err != nil {
				s.logger.WithError(err).WithFields(logrus.Fields{
					"region":    region,
					"deal_type": dealType,
				}).Error("Snapshot refresh failed")
				continue
			}
			s.logger.WithFields(logrus.Fields{
				"region":    region,
				"deal_type": dealType,
			}).Info("Snapshot refreshed")
		}
	}
}

// Stop halts the cron loop, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
