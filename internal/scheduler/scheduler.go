package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"land-listing-portal/internal/config"
	"land-listing-portal/internal/moderation"
)

// Scheduler runs the daily stale-pending sweep: listings sitting in the
// review queue past the configured threshold trigger an admin reminder.
type Scheduler struct {
	cron      *cron.Cron
	mod       *moderation.Service
	config    *config.Config
	log       *logrus.Logger
	isRunning bool
}

// NewScheduler creates a new scheduler
func NewScheduler(mod *moderation.Service, cfg *config.Config) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		mod:    mod,
		config: cfg,
		log:    config.GetLogger(),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	if !s.config.Moderation.ReminderEnabled {
		s.log.Info("scheduler: stale-pending reminder is disabled in configuration")
		return nil
	}

	cronSpec := s.parseDailyRunTime(s.config.Moderation.ReminderTime)

	_, err := s.cron.AddFunc(cronSpec, func() {
		if err := s.RunNow(); err != nil {
			s.log.WithError(err).Error("scheduler: stale-pending sweep failed")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	s.log.WithFields(logrus.Fields{
		"time": s.config.Moderation.ReminderTime,
		"cron": cronSpec,
	}).Info("scheduler: started daily stale-pending sweep")

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	if s.isRunning {
		s.cron.Stop()
		s.isRunning = false
		s.log.Info("scheduler: stopped")
	}
}

// RunNow immediately executes the sweep (for manual trigger)
func (s *Scheduler) RunNow() error {
	count, err := s.mod.RemindStalePending(context.Background())
	if err != nil {
		return err
	}
	s.log.WithField("stale_count", count).Info("scheduler: stale-pending sweep completed")
	return nil
}

// parseDailyRunTime converts HH:MM format to cron specification
// Example: "02:00" -> "0 2 * * *" (run at 2:00 AM every day)
func (s *Scheduler) parseDailyRunTime(timeStr string) string {
	var hour, minute int
	n, _ := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute)
	if n == 2 {
		return fmt.Sprintf("%d %d * * *", minute, hour)
	}

	s.log.WithField("time", timeStr).Warn("scheduler: failed to parse time, using default 08:00")
	return "0 8 * * *"
}
