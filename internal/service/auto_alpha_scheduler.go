package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/siakad-go/siakad-api/pkg/jobs"
)

const autoAlphaJobType = "attendance.auto_alpha"

// AutoAlphaScheduler enqueues the automatic absence job once a day at a
// configured wall-clock time. The HTTP trigger stays synchronous; this
// only covers the unattended nightly run.
type AutoAlphaScheduler struct {
	attendance *AttendanceService
	queue      *jobs.Queue
	hour       int
	minute     int
	logger     *zap.Logger
	cancel     context.CancelFunc
}

// NewAutoAlphaScheduler constructs the scheduler and its backing queue.
func NewAutoAlphaScheduler(attendance *AttendanceService, hour, minute int, logger *zap.Logger) *AutoAlphaScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AutoAlphaScheduler{attendance: attendance, hour: hour, minute: minute, logger: logger}
	s.queue = jobs.NewQueue(autoAlphaJobType, s.handle, jobs.QueueConfig{
		Workers:    1,
		MaxRetries: 3,
		RetryDelay: time.Minute,
		Logger:     logger,
	})
	return s
}

// Start launches the queue workers and the daily ticker.
func (s *AutoAlphaScheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.queue.Start(ctx)
	go s.loop(ctx)
	s.logger.Info("auto alpha scheduler started",
		zap.Int("hour", s.hour), zap.Int("minute", s.minute))
}

// Stop halts the ticker and drains the queue workers.
func (s *AutoAlphaScheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.queue.Stop()
}

func (s *AutoAlphaScheduler) loop(ctx context.Context) {
	for {
		next := nextDailyRun(time.Now(), s.hour, s.minute)
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Until(next)):
		}

		job := jobs.Job{
			ID:      uuid.NewString(),
			Type:    autoAlphaJobType,
			Payload: next.Format("2006-01-02"),
		}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Warn("failed to enqueue auto alpha job", zap.Error(err))
		}
	}
}

func (s *AutoAlphaScheduler) handle(ctx context.Context, job jobs.Job) error {
	date, _ := job.Payload.(string)
	result, err := s.attendance.MarkAbsentForDate(ctx, date)
	if err != nil {
		return err
	}
	s.logger.Info("scheduled auto alpha run finished",
		zap.String("date", result.Date), zap.Int("inserted", result.Inserted))
	return nil
}

func nextDailyRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
