package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/brandcast/brandcast/configs"
	"github.com/brandcast/brandcast/internal/dispatch"
	"github.com/brandcast/brandcast/internal/models"
	"github.com/brandcast/brandcast/internal/platform"
	"github.com/brandcast/brandcast/internal/scheduler"
)

type emptyPostRepo struct{}

func (emptyPostRepo) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	return 0, nil
}
func (emptyPostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) { return nil, nil }
func (emptyPostRepo) ListByBrandID(ctx context.Context, brandID int64) ([]*models.Post, error) {
	return nil, nil
}
func (emptyPostRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Post, error) {
	return nil, nil
}
func (emptyPostRepo) Claim(ctx context.Context, id int64) (bool, error) { return false, nil }
func (emptyPostRepo) ReleaseStale(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}
func (emptyPostRepo) RecordOutcome(ctx context.Context, id int64, status string, results []models.PlatformResult) (bool, error) {
	return false, nil
}
func (emptyPostRepo) Reschedule(ctx context.Context, id int64, at time.Time) (bool, error) {
	return false, nil
}
func (emptyPostRepo) CheckByBrandID(ctx context.Context, postID, brandID int64) (bool, error) {
	return false, nil
}

type noCredResolver struct{}

func (noCredResolver) Resolve(ctx context.Context, brandID int64, p platform.Platform) (platform.Credential, error) {
	return platform.Credential{}, dispatch.ErrNotConfigured
}

func newTriggerApp(secret string) *fiber.App {
	repo := emptyPostRepo{}
	dispatcher := dispatch.NewDispatcher(
		platform.NewRegistry(), noCredResolver{}, dispatch.NewPlatformLimiter(0), time.Second, 1)
	scanner := scheduler.NewScanner(repo, dispatcher, dispatch.NewRecorder(repo), 100, time.Minute, 1)
	handler := NewTriggerHandler(config.Config{TriggerSecret: secret}, scanner)

	app := fiber.New()
	app.Post("/internal/scan", handler.TriggerScan)
	return app
}

func TestTriggerScanRejectsBadSecret(t *testing.T) {
	app := newTriggerApp("s3cret")

	req := httptest.NewRequest("POST", "/internal/scan", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestTriggerScanRunsCycle(t *testing.T) {
	app := newTriggerApp("s3cret")

	req := httptest.NewRequest("POST", "/internal/scan", nil)
	req.Header.Set("X-Trigger-Secret", "s3cret")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var summary scheduler.CycleSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	assert.Zero(t, summary.ProcessedCount)
	assert.NotNil(t, summary.Errors)
}

func TestTriggerScanOpenWhenNoSecretConfigured(t *testing.T) {
	app := newTriggerApp("")

	req := httptest.NewRequest("POST", "/internal/scan", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
