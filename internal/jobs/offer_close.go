package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"placement/portal/internal/config"
	"placement/portal/internal/metrics"
)

type OfferCloser interface {
	CloseExpiredOffers(ctx context.Context, now time.Time) (int64, error)
}

const offerCloseTimeout = 10 * time.Second

// CloseExpiredOffers runs one pass of the offer-closing job.
func CloseExpiredOffers(ctx context.Context, offers OfferCloser, now time.Time, log *logrus.Logger) {
	tickCtx, cancel := context.WithTimeout(ctx, offerCloseTimeout)
	defer cancel()
	closed, err := offers.CloseExpiredOffers(tickCtx, now)
	if err != nil {
		log.WithError(err).Error("offer close job failed")
		return
	}
	metrics.RecordOffersClosed(closed)
	if closed > 0 {
		log.WithField("closed", closed).Info("offer close job closed expired offers")
	}
}

// StartOfferCloseJob schedules the offer-closing job and stops it when ctx ends.
func StartOfferCloseJob(ctx context.Context, cfg config.Config, offers OfferCloser, log *logrus.Logger) (*cron.Cron, error) {
	if !cfg.OfferCloseJobEnabled {
		return nil, nil
	}
	schedule := cfg.OfferCloseSchedule
	if schedule == "" {
		schedule = "@every 5m"
	}

	scheduler := cron.New(cron.WithLocation(time.UTC))
	_, err := scheduler.AddFunc(schedule, func() {
		CloseExpiredOffers(ctx, offers, time.Now().UTC(), log)
	})
	if err != nil {
		return nil, fmt.Errorf("schedule offer close job %q: %w", schedule, err)
	}
	scheduler.Start()
	go func() {
		<-ctx.Done()
		<-scheduler.Stop().Done()
	}()
	log.WithField("schedule", schedule).Info("offer close job scheduled")
	return scheduler, nil
}
