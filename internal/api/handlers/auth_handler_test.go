package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/brandcast/brandcast/configs"
	"github.com/brandcast/brandcast/pkg/utils"
)

func newAuthApp(cfg config.Config) *fiber.App {
	app := fiber.New()
	app.Post("/internal/token", NewAuthHandler(cfg).IssueToken)
	return app
}

func TestIssueTokenRejectsBadSecret(t *testing.T) {
	app := newAuthApp(config.Config{SecretKey: "k", TriggerSecret: "s3cret"})

	req := httptest.NewRequest("POST", "/internal/token", strings.NewReader(`{"brand_id":"7"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestIssueTokenRequiresBrandID(t *testing.T) {
	app := newAuthApp(config.Config{SecretKey: "k"})

	req := httptest.NewRequest("POST", "/internal/token", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestIssueTokenReturnsValidatableToken(t *testing.T) {
	app := newAuthApp(config.Config{SecretKey: "k", TriggerSecret: "s3cret", CookieName: "brandcast_session"})

	req := httptest.NewRequest("POST", "/internal/token", strings.NewReader(`{"brand_id":"7"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Trigger-Secret", "s3cret")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	claims, err := utils.ValidateToken("k", body.Token)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.BrandID)
}
