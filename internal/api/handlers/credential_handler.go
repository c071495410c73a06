package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/brandcast/brandcast/internal/models"
	"github.com/brandcast/brandcast/internal/platform"
	"github.com/brandcast/brandcast/internal/repository"
	"github.com/brandcast/brandcast/pkg/utils"
)

type CredentialHandler struct {
	cr        repository.CredentialRepository
	secretKey []byte
}

func NewCredentialHandler(cr repository.CredentialRepository, secretKey []byte) *CredentialHandler {
	return &CredentialHandler{cr: cr, secretKey: secretKey}
}

// ConnectCredential stores a platform credential for the brand. Tokens
// arrive in plaintext from the OAuth callback flow and are encrypted at
// rest.
func (h *CredentialHandler) ConnectCredential(c *fiber.Ctx) error {
	brandID := GetBrandID(c)

	var req struct {
		Platform     string `json:"platform"`
		AccountID    string `json:"account_id"`
		AccountName  string `json:"account_name"`
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresAt    string `json:"expires_at"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	p, ok := platform.Parse(req.Platform)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown platform: " + req.Platform,
		})
	}
	if req.AccountID == "" || req.AccessToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "account_id and access_token are required",
		})
	}

	expiresAt := time.Now().Add(60 * 24 * time.Hour)
	if req.ExpiresAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid expires_at",
			})
		}
		expiresAt = parsed
	}

	encryptedAccess, err := utils.Encrypt([]byte(req.AccessToken), h.secretKey)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to store credential",
		})
	}
	refreshToken := req.RefreshToken
	if refreshToken == "" {
		refreshToken = req.AccessToken
	}
	encryptedRefresh, err := utils.Encrypt([]byte(refreshToken), h.secretKey)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to store credential",
		})
	}

	id, err := h.cr.Create(c.Context(), nil, &models.BrandCredential{
		BrandID:        brandID,
		Platform:       p.String(),
		AccountID:      req.AccountID,
		AccountName:    req.AccountName,
		AccessToken:    encryptedAccess,
		RefreshToken:   encryptedRefresh,
		TokenExpiresAt: expiresAt,
		Active:         true,
		PostingEnabled: true,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to store credential",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"credential_id": id,
	})
}

func (h *CredentialHandler) ListCredentials(c *fiber.Ctx) error {
	brandID := GetBrandID(c)

	creds, err := h.cr.ListByBrandID(c.Context(), brandID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list credentials",
		})
	}

	return c.Status(fiber.StatusOK).JSON(creds)
}

func (h *CredentialHandler) SetPostingEnabled(c *fiber.Ctx) error {
	brandID := GetBrandID(c)

	var req struct {
		CredentialID int64 `json:"credential_id"`
		Enabled      bool  `json:"enabled"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	if err := h.cr.SetPostingEnabled(c.Context(), req.CredentialID, brandID, req.Enabled); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to update credential",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *CredentialHandler) RemoveCredential(c *fiber.Ctx) error {
	brandID := GetBrandID(c)
	credentialID := c.QueryInt("id", 0)

	if err := h.cr.Remove(c.Context(), int64(credentialID), brandID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to remove credential",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
