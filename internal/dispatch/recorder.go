package dispatch

import (
	"context"
	"fmt"

	"github.com/brandcast/brandcast/internal/models"
	"github.com/brandcast/brandcast/internal/platform"
	"github.com/brandcast/brandcast/internal/repository"
)

// Recorder owns the terminal status write for a dispatched post. It only
// ever writes a complete result set; partial outcomes are never persisted.
type Recorder struct {
	pr repository.PostRepository
}

func NewRecorder(pr repository.PostRepository) *Recorder {
	return &Recorder{pr: pr}
}

// Record persists the aggregated status plus per-platform detail and returns
// the status written. Safe to call again with the same result set; the
// conditional update re-applies the identical state.
func (r *Recorder) Record(ctx context.Context, postID int64, results []platform.PublishResult) (string, error) {
	status := Aggregate(results)

	recorded := make([]models.PlatformResult, len(results))
	for i, res := range results {
		recorded[i] = models.PlatformResult{
			Platform:       res.Platform.String(),
			Success:        res.Success,
			PlatformPostID: res.PlatformPostID,
			ErrorKind:      string(res.FailureKind),
			ErrorMessage:   res.Message,
		}
	}

	ok, err := r.pr.RecordOutcome(ctx, postID, status, recorded)
	if err != nil {
		return "", fmt.Errorf("recording outcome for post %d: %w", postID, err)
	}
	if !ok {
		return "", fmt.Errorf("post %d is not in a recordable state", postID)
	}
	return status, nil
}
