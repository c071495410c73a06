package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/brandcast/brandcast/internal/models"
	"github.com/brandcast/brandcast/internal/platform"
	"github.com/brandcast/brandcast/internal/repository"
)

// Enqueuer schedules an eager delivery attempt for a persisted post. The
// periodic scanner remains the source of truth; the task just shortens the
// gap between due time and the next poll.
type Enqueuer interface {
	EnqueueDelivery(postID int64, delay time.Duration) error
}

// Router decides at creation time whether a post is published synchronously
// or persisted for later pickup.
type Router struct {
	pr         repository.PostRepository
	dispatcher *Dispatcher
	recorder   *Recorder
	enqueuer   Enqueuer
	now        func() time.Time
}

func NewRouter(pr repository.PostRepository, dispatcher *Dispatcher, recorder *Recorder, enqueuer Enqueuer) *Router {
	return &Router{
		pr:         pr,
		dispatcher: dispatcher,
		recorder:   recorder,
		enqueuer:   enqueuer,
		now:        time.Now,
	}
}

type SubmitOutcome struct {
	PostID    int64
	Scheduled bool
	Status    string
	Results   []platform.PublishResult
}

// Submit persists the post and either dispatches it now or leaves it
// scheduled. A requested time equal to "now" counts as immediate so the post
// never sits due-but-unprocessed until the next poll.
func (r *Router) Submit(ctx context.Context, post *models.Post) (*SubmitOutcome, error) {
	now := r.now()

	if post.ScheduledAt != nil && post.ScheduledAt.After(now) {
		post.Status = models.PostStatusScheduled
		id, err := r.pr.Create(ctx, nil, post)
		if err != nil {
			return nil, fmt.Errorf("persisting scheduled post: %w", err)
		}

		if r.enqueuer != nil {
			if err := r.enqueuer.EnqueueDelivery(id, post.ScheduledAt.Sub(now)); err != nil {
				// Not fatal: the scanner re-discovers the post on its own.
				slog.Info("failed to enqueue delivery task, scanner will pick up the post",
					"post_id", id, "error", err.Error())
			}
		}

		return &SubmitOutcome{PostID: id, Scheduled: true, Status: models.PostStatusScheduled}, nil
	}

	// Immediate path. Persist the post already claimed so an overlapping
	// scan cycle can never select it.
	post.Status = models.PostStatusPublishing
	id, err := r.pr.Create(ctx, nil, post)
	if err != nil {
		return nil, fmt.Errorf("persisting post: %w", err)
	}
	post.ID = id

	results := r.dispatcher.Dispatch(ctx, post)

	status, err := r.recorder.Record(ctx, id, results)
	if err != nil {
		return &SubmitOutcome{PostID: id, Results: results}, err
	}

	return &SubmitOutcome{PostID: id, Status: status, Results: results}, nil
}
