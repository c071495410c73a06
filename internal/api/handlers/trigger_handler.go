package handlers

import (
	"github.com/gofiber/fiber/v2"

	config "github.com/brandcast/brandcast/configs"
	"github.com/brandcast/brandcast/internal/scheduler"
)

// TriggerHandler exposes the scan cycle to an external periodic trigger
// (cron service, uptime pinger). The in-process cron calls the scanner
// directly; this endpoint exists for deployments that drive it externally.
type TriggerHandler struct {
	cfg     config.Config
	scanner *scheduler.Scanner
}

func NewTriggerHandler(cfg config.Config, scanner *scheduler.Scanner) *TriggerHandler {
	return &TriggerHandler{cfg: cfg, scanner: scanner}
}

func (h *TriggerHandler) TriggerScan(c *fiber.Ctx) error {
	if h.cfg.TriggerSecret != "" && c.Get("X-Trigger-Secret") != h.cfg.TriggerSecret {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid trigger secret",
		})
	}

	summary := h.scanner.RunCycle(c.Context())
	if summary.Errors == nil {
		summary.Errors = []string{}
	}

	return c.Status(fiber.StatusOK).JSON(summary)
}
