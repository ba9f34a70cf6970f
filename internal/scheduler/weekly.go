// Package scheduler runs the weekly summary generation job on a cron schedule.
package scheduler

import (
	"context"
	"errors"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/siyabuilds/carbontrackr-backend/internal/domain"
)

// WeeklyScheduler generates the previous week's summary for every user shortly
// after each week closes. Users whose summary already exists or who logged
// nothing are skipped.
type WeeklyScheduler struct {
	cron     *cron.Cron
	service  *domain.Service
	users    domain.UserRepository
	log      *logrus.Logger
	cronSpec string
}

// NewWeeklyScheduler builds a scheduler around the analytics service.
func NewWeeklyScheduler(service *domain.Service, users domain.UserRepository, log *logrus.Logger, cronSpec string) *WeeklyScheduler {
	return &WeeklyScheduler{
		cron:     cron.New(),
		service:  service,
		users:    users,
		log:      log,
		cronSpec: cronSpec,
	}
}

// Start registers the job and starts the cron loop.
func (s *WeeklyScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cronSpec, s.generateAll); err != nil {
		return err
	}
	s.cron.Start()
	s.log.WithField("spec", s.cronSpec).Info("weekly summary scheduler started")
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *WeeklyScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("weekly summary scheduler stopped")
}

// RunOnce generates summaries for all users immediately, outside the schedule.
func (s *WeeklyScheduler) RunOnce(ctx context.Context) error {
	return s.generate(ctx)
}

func (s *WeeklyScheduler) generateAll() {
	if err := s.generate(context.Background()); err != nil {
		s.log.WithError(err).Error("weekly summary run failed")
	}
}

func (s *WeeklyScheduler) generate(ctx context.Context) error {
	userIDs, err := s.users.ListUserIDs(ctx)
	if err != nil {
		return err
	}

	generated, skipped, failed := 0, 0, 0
	for _, userID := range userIDs {
		_, err := s.service.GeneratePreviousWeekSummary(ctx, userID)
		switch {
		case err == nil:
			generated++
		case errors.Is(err, domain.ErrSummaryExists), errors.Is(err, domain.ErrNoActivities):
			skipped++
			s.log.WithFields(logrus.Fields{"user_id": userID, "reason": err.Error()}).Debug("summary skipped")
		default:
			failed++
			s.log.WithFields(logrus.Fields{"user_id": userID}).WithError(err).Warn("summary generation failed")
		}
	}

	s.log.WithFields(logrus.Fields{
		"users":     len(userIDs),
		"generated": generated,
		"skipped":   skipped,
		"failed":    failed,
	}).Info("weekly summary run complete")
	return nil
}
