package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// digestTimeout bounds one digest run.
const digestTimeout = 2 * time.Minute

// digestSender delivers the alert digest.
type digestSender interface {
	Send(ctx context.Context) (int, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	digest   digestSender
	schedule string
	logger   *zap.Logger
}

// NewScheduler creates a scheduler that runs the digest on the standard
// 5-field cron schedule, evaluated in loc.
func NewScheduler(schedule string, loc *time.Location, digest digestSender, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		digest:   digest,
		schedule: schedule,
		logger:   logger,
	}
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("digest_schedule", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, s.sendDigest); err != nil {
		return fmt.Errorf("schedule alert digest: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), digestTimeout)
	defer cancel()

	n, err := s.digest.Send(ctx)
	if err != nil {
		s.logger.Error("failed to send alert digest", zap.Error(err))
		return
	}
	s.logger.Info("alert digest job finished", zap.Int("alerts", n))
}
