package queue

import (
	"github.com/brandcast/brandcast/internal/dispatch"
	"github.com/brandcast/brandcast/internal/repository"
)

// Queue handles eager delivery tasks: one task per scheduled post, enqueued
// with a delay matching the scheduled time. The handler uses the same claim
// as the scanner, so the two can never double-publish a post.
type Queue struct {
	pr  repository.PostRepository
	d   *dispatch.Dispatcher
	rec *dispatch.Recorder
}

func NewQueue(pr repository.PostRepository, d *dispatch.Dispatcher, rec *dispatch.Recorder) *Queue {
	return &Queue{
		pr:  pr,
		d:   d,
		rec: rec,
	}
}

const TaskTypeDeliverPost = "deliver:post"

type DeliverPostPayload struct {
	PostID int64 `json:"post_id"`
}
