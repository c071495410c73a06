package queue

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

func EnqueueDelivery(asynqClient *asynq.Client, payload DeliverPostPayload, delay time.Duration) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeDeliverPost, taskPayload)

	if _, err = asynqClient.Enqueue(task, asynq.ProcessIn(delay)); err != nil {
		return err
	}

	slog.Info("delivery task enqueued", "post_id", payload.PostID, "delay", delay.String())
	return nil
}

// Enqueuer adapts the asynq client to the dispatch.Enqueuer interface.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

func (e *Enqueuer) EnqueueDelivery(postID int64, delay time.Duration) error {
	return EnqueueDelivery(e.client, DeliverPostPayload{PostID: postID}, delay)
}
