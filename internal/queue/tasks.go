package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"hotel-recommender/internal/logger"
)

const TaskWarmImages = "images:warm"

// ImageWarmPayload names the hotels to resolve; empty means the whole catalog.
type ImageWarmPayload struct {
	Hotels []string `json:"hotels,omitempty"`
}

func NewImageWarmTask(hotels []string) (*asynq.Task, error) {
	payload, err := json.Marshal(ImageWarmPayload{Hotels: hotels})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskWarmImages,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
		asynq.Queue("low"),
	), nil
}

// TaskEnqueuer is satisfied by *asynq.Client.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// EnqueueImageWarm schedules a full-catalog warm-up. Only one can be pending
// within the uniqueness window.
func EnqueueImageWarm(ctx context.Context, client TaskEnqueuer, window time.Duration) error {
	task, err := NewImageWarmTask(nil)
	if err != nil {
		return err
	}
	info, err := client.EnqueueContext(ctx, task, asynq.Unique(window))
	if err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", TaskWarmImages, err)
	}
	logger.Info("Enqueued image warm-up", "task_id", info.ID, "queue", info.Queue)
	return nil
}

type HotelNamer interface {
	Names(ctx context.Context) ([]string, error)
}

type ImageWarmer interface {
	Warm(ctx context.Context, names []string) int
}

// Task handlers
type TaskProcessor struct {
	catalog HotelNamer
	images  ImageWarmer
}

func NewTaskProcessor(catalog HotelNamer, images ImageWarmer) *TaskProcessor {
	return &TaskProcessor{catalog: catalog, images: images}
}

func (p *TaskProcessor) WarmImages(ctx context.Context, t *asynq.Task) error {
	var payload ImageWarmPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("unmarshal failed: %v: %w", err, asynq.SkipRetry)
		}
	}

	names := payload.Hotels
	if len(names) == 0 {
		var err error
		names, err = p.catalog.Names(ctx)
		if err != nil {
			return fmt.Errorf("failed to list catalog hotels: %w", err)
		}
	}

	start := time.Now()
	resolved := p.images.Warm(ctx, names)
	logger.Info("Image warm-up finished",
		"hotels", len(names),
		"resolved", resolved,
		"duration", time.Since(start).String(),
	)
	return ctx.Err()
}
