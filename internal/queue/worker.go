package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

func (q *Queue) HandleDeliverPostTask(ctx context.Context, task *asynq.Task) error {
	var payload DeliverPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	return q.DeliverPost(ctx, payload.PostID)
}

// DeliverPost claims and dispatches one post. If the claim is lost the post
// was already handled (scanner or a competing task) and the task is done.
func (q *Queue) DeliverPost(ctx context.Context, postID int64) error {
	claimed, err := q.pr.Claim(ctx, postID)
	if err != nil {
		return fmt.Errorf("claiming post %d: %w", postID, err)
	}
	if !claimed {
		slog.Info("post no longer scheduled, delivery task done", "post_id", postID)
		return nil
	}

	post, err := q.pr.GetByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("loading post %d: %w", postID, err)
	}
	if post == nil {
		return fmt.Errorf("post %d not found after claim", postID)
	}

	results := q.d.Dispatch(ctx, post)

	status, err := q.rec.Record(ctx, postID, results)
	if err != nil {
		return err
	}

	slog.Info("post delivered by task", "post_id", postID, "status", status)
	return nil
}
