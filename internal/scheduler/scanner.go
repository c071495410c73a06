package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/brandcast/brandcast/internal/dispatch"
	"github.com/brandcast/brandcast/internal/models"
	"github.com/brandcast/brandcast/internal/repository"
)

// Scanner runs one scan cycle per trigger: select due posts oldest first,
// claim each one, dispatch, record. Cycles are safe to overlap because the
// claim is a conditional update; the loser just skips the post.
type Scanner struct {
	pr            repository.PostRepository
	dispatcher    *dispatch.Dispatcher
	recorder      *dispatch.Recorder
	batchLimit    int
	cycleTimeout  time.Duration
	maxConcurrent int
	now           func() time.Time
}

func NewScanner(
	pr repository.PostRepository,
	dispatcher *dispatch.Dispatcher,
	recorder *dispatch.Recorder,
	batchLimit int,
	cycleTimeout time.Duration,
	maxConcurrent int) *Scanner {
	if batchLimit <= 0 {
		batchLimit = 100
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Scanner{
		pr:            pr,
		dispatcher:    dispatcher,
		recorder:      recorder,
		batchLimit:    batchLimit,
		cycleTimeout:  cycleTimeout,
		maxConcurrent: maxConcurrent,
		now:           time.Now,
	}
}

// staleClaimWindow is how long a post may sit in publishing before the
// claim is considered abandoned. It must comfortably exceed the longest
// possible dispatch so an in-flight post is never released.
func (s *Scanner) staleClaimWindow() time.Duration {
	if s.cycleTimeout > 0 {
		return 2 * s.cycleTimeout
	}
	return 10 * time.Minute
}

type CycleSummary struct {
	ProcessedCount int      `json:"processed_count"`
	Errors         []string `json:"errors"`
}

// RunCycle processes all currently due posts and returns a summary. A
// storage failure on the initial read aborts the cycle; per-post failures
// are collected and do not stop the remaining posts.
func (s *Scanner) RunCycle(ctx context.Context) CycleSummary {
	cycleID, _ := gonanoid.New()

	if s.cycleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cycleTimeout)
		defer cancel()
	}

	var summary CycleSummary

	// A claim left in publishing past the stale window means the claimant
	// died before recording; hand the post back to the scheduled pool.
	released, err := s.pr.ReleaseStale(ctx, s.now().Add(-s.staleClaimWindow()))
	if err != nil {
		slog.Error("stale claim sweep failed", "cycle_id", cycleID, "error", err.Error())
		summary.Errors = append(summary.Errors, fmt.Sprintf("releasing stale claims: %v", err))
	} else if released > 0 {
		slog.Info("released stale claims", "cycle_id", cycleID, "count", released)
	}

	due, err := s.pr.ListDue(ctx, s.now(), s.batchLimit)
	if err != nil {
		slog.Error("scan cycle aborted, due-post read failed", "cycle_id", cycleID, "error", err.Error())
		summary.Errors = append(summary.Errors, fmt.Sprintf("reading due posts: %v", err))
		return summary
	}
	if len(due) == 0 {
		return summary
	}

	slog.Info("scan cycle started", "cycle_id", cycleID, "due_count", len(due))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		semaphore = make(chan struct{}, s.maxConcurrent)
	)

	for _, post := range due {
		// Soft deadline: posts not yet attempted stay scheduled and are
		// re-discovered by the next cycle.
		select {
		case <-ctx.Done():
			slog.Info("scan cycle deadline reached, leaving remaining posts scheduled",
				"cycle_id", cycleID)
			wg.Wait()
			return summary
		default:
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(post *models.Post) {
			defer wg.Done()
			defer func() { <-semaphore }()

			processed, err := s.processPost(ctx, post)
			mu.Lock()
			defer mu.Unlock()
			if processed {
				summary.ProcessedCount++
			}
			if err != nil {
				summary.Errors = append(summary.Errors, err.Error())
			}
		}(post)
	}

	wg.Wait()
	slog.Info("scan cycle finished", "cycle_id", cycleID,
		"processed", summary.ProcessedCount, "errors", len(summary.Errors))
	return summary
}

func (s *Scanner) processPost(ctx context.Context, post *models.Post) (bool, error) {
	claimed, err := s.pr.Claim(ctx, post.ID)
	if err != nil {
		return false, fmt.Errorf("claiming post %d: %w", post.ID, err)
	}
	if !claimed {
		// Another cycle (or the eager delivery task) got there first.
		slog.Info("post no longer scheduled, skipping", "post_id", post.ID)
		return false, nil
	}

	results := s.dispatcher.Dispatch(ctx, post)

	status, err := s.recorder.Record(ctx, post.ID, results)
	if err != nil {
		return true, err
	}

	slog.Info("post dispatched", "post_id", post.ID, "status", status)
	return true, nil
}
