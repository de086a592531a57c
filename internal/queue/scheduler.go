package queue

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"hotel-recommender/internal/logger"
)

// Scheduler runs periodic jobs inside the API process.
type Scheduler struct {
	scheduler *gocron.Scheduler
	cancel    context.CancelFunc
	ctx       context.Context
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := gocron.NewScheduler(time.UTC)
	s.TagsUnique()

	return &Scheduler{
		scheduler: s,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (s *Scheduler) Start() {
	s.scheduler.StartAsync()
}

// Stop stops the scheduler and cancels the context handed to running jobs.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	if s.cancel != nil {
		s.cancel()
	}
}

// ScheduleInterval runs job every duration, starting immediately.
func (s *Scheduler) ScheduleInterval(tag string, duration time.Duration, job func(ctx context.Context) error) error {
	_, err := s.scheduler.Every(duration).Tag(tag).SingletonMode().Do(func() {
		if err := job(s.ctx); err != nil {
			logger.Error("Scheduled job failed", "job", tag, "error", err)
		}
	})
	return err
}

func (s *Scheduler) RemoveJob(tag string) error {
	return s.scheduler.RemoveByTag(tag)
}

func (s *Scheduler) Jobs() []*gocron.Job {
	return s.scheduler.Jobs()
}

// ScheduleImageWarm enqueues an image warm-up task every interval.
func (s *Scheduler) ScheduleImageWarm(client TaskEnqueuer, interval time.Duration) error {
	return s.ScheduleInterval(TaskWarmImages, interval, func(ctx context.Context) error {
		return EnqueueImageWarm(ctx, client, interval)
	})
}
