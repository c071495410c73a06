package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	config "github.com/brandcast/brandcast/configs"
	"github.com/brandcast/brandcast/pkg/utils"
)

// AuthHandler mints brand-scoped session tokens for the authoring
// collaborator. Admission uses the same shared secret as the scan trigger,
// so only trusted internal callers can issue tokens.
type AuthHandler struct {
	cfg config.Config
}

func NewAuthHandler(cfg config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

func (h *AuthHandler) IssueToken(c *fiber.Ctx) error {
	if h.cfg.TriggerSecret != "" && c.Get("X-Trigger-Secret") != h.cfg.TriggerSecret {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid trigger secret",
		})
	}

	var req struct {
		BrandID    string `json:"brand_id"`
		TTLMinutes int    `json:"ttl_minutes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}
	if req.BrandID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "brand_id is required",
		})
	}

	ttl := 24 * time.Hour
	if req.TTLMinutes > 0 {
		ttl = time.Duration(req.TTLMinutes) * time.Minute
	}

	token, err := utils.GenerateToken(h.cfg.SecretKey, req.BrandID, ttl)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to issue token",
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "None",
	})

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"token": token,
	})
}
