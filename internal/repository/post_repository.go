package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/brandcast/brandcast/internal/models"
)

type PostRepository interface {
	Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	ListByBrandID(ctx context.Context, brandID int64) ([]*models.Post, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Post, error)
	Claim(ctx context.Context, id int64) (bool, error)
	ReleaseStale(ctx context.Context, before time.Time) (int64, error)
	RecordOutcome(ctx context.Context, id int64, status string, results []models.PlatformResult) (bool, error)
	Reschedule(ctx context.Context, id int64, at time.Time) (bool, error)
	CheckByBrandID(ctx context.Context, postID, brandID int64) (bool, error)
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, brand_id, platforms, caption, hashtags, media_urls, scheduled_at, status, results, created_at, updated_at`

func (r *postRepository) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	query := `
		INSERT INTO posts (brand_id, platforms, caption, hashtags, media_urls, scheduled_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	var err error

	args := []interface{}{
		post.BrandID,
		pq.Array(post.Platforms),
		post.Caption,
		pq.Array(post.Hashtags),
		pq.Array(post.MediaURLs),
		post.ScheduledAt,
		post.Status,
	}

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, args...).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, args...).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func scanPost(row interface{ Scan(...interface{}) error }) (*models.Post, error) {
	var post models.Post
	var results []byte
	err := row.Scan(&post.ID, &post.BrandID, pq.Array(&post.Platforms), &post.Caption,
		pq.Array(&post.Hashtags), pq.Array(&post.MediaURLs), &post.ScheduledAt,
		&post.Status, &results, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(results) > 0 {
		if err := json.Unmarshal(results, &post.Results); err != nil {
			return nil, err
		}
	}
	return &post, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *postRepository) ListByBrandID(ctx context.Context, brandID int64) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE brand_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, brandID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// ListDue returns scheduled posts whose time has arrived, oldest first. It
// is a pure read; claiming happens separately per post.
func (r *postRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
		WHERE status = $1 AND scheduled_at <= $2
		ORDER BY scheduled_at ASC
		LIMIT $3`
	rows, err := r.db.QueryContext(ctx, query, models.PostStatusScheduled, now, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// Claim flips a post from scheduled to publishing. At most one caller wins;
// overlapping scan cycles observe false and skip the post.
func (r *postRepository) Claim(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE posts
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`
	result, err := r.db.ExecContext(ctx, query, models.PostStatusPublishing, time.Now(), id, models.PostStatusScheduled)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected == 1, nil
}

// ReleaseStale returns posts stuck in publishing back to scheduled. A claim
// goes stale when the claimant crashed or its outcome write failed; the
// claim timestamp is updated_at, set by Claim.
func (r *postRepository) ReleaseStale(ctx context.Context, before time.Time) (int64, error) {
	// Immediate-path posts are claimed at creation and have no scheduled
	// time; backfill it so the released post is due right away.
	query := `
		UPDATE posts
		SET status = $1, scheduled_at = COALESCE(scheduled_at, updated_at), updated_at = $2
		WHERE status = $3 AND updated_at < $4
	`
	result, err := r.db.ExecContext(ctx, query, models.PostStatusScheduled, time.Now(), models.PostStatusPublishing, before)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return affected, nil
}

// RecordOutcome writes the terminal status and the per-platform detail in a
// single statement. The precondition also matches the target status so a
// retried call with the same result set re-applies cleanly.
func (r *postRepository) RecordOutcome(ctx context.Context, id int64, status string, results []models.PlatformResult) (bool, error) {
	payload, err := json.Marshal(results)
	if err != nil {
		return false, err
	}

	query := `
		UPDATE posts
		SET status = $1, results = $2, updated_at = $3
		WHERE id = $4 AND status IN ($5, $1)
	`
	result, err := r.db.ExecContext(ctx, query, status, payload, time.Now(), id, models.PostStatusPublishing)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected == 1, nil
}

// Reschedule is the manual failed -> scheduled transition. Nothing in the
// dispatch path calls this.
func (r *postRepository) Reschedule(ctx context.Context, id int64, at time.Time) (bool, error) {
	query := `
		UPDATE posts
		SET status = $1, scheduled_at = $2, updated_at = $3
		WHERE id = $4 AND status = $5
	`
	result, err := r.db.ExecContext(ctx, query, models.PostStatusScheduled, at, time.Now(), id, models.PostStatusFailed)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected == 1, nil
}

func (r *postRepository) CheckByBrandID(ctx context.Context, postID, brandID int64) (bool, error) {
	query := `SELECT 1 FROM posts WHERE id = $1 AND brand_id = $2`

	var result int
	err := r.db.QueryRowContext(ctx, query, postID, brandID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}
