package handlers

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/brandcast/brandcast/internal/dispatch"
	"github.com/brandcast/brandcast/internal/models"
	"github.com/brandcast/brandcast/internal/platform"
	"github.com/brandcast/brandcast/internal/repository"
	"github.com/brandcast/brandcast/internal/transfer"
)

type PublishHandler struct {
	router *dispatch.Router
	pr     repository.PostRepository
}

func NewPublishHandler(router *dispatch.Router, pr repository.PostRepository) *PublishHandler {
	return &PublishHandler{router: router, pr: pr}
}

func (h *PublishHandler) CreatePost(c *fiber.Ctx) error {
	brandID := GetBrandID(c)

	var req transfer.PublishRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	if len(req.Platforms) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No platforms selected",
		})
	}
	for _, name := range req.Platforms {
		if _, ok := platform.Parse(name); !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unknown platform: " + name,
			})
		}
	}
	if req.Content == "" && req.MediaURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Post content cannot be empty",
		})
	}

	var scheduledAt *time.Time
	if req.ScheduledFor != "" {
		t, err := parseScheduledTime(req.ScheduledFor)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid scheduled time format",
			})
		}
		scheduledAt = &t
	}

	var mediaURLs []string
	if req.MediaURL != "" {
		mediaURLs = []string{req.MediaURL}
	}

	post := &models.Post{
		BrandID:     brandID,
		Platforms:   req.Platforms,
		Caption:     req.Content,
		Hashtags:    splitHashtags(req.Hashtags),
		MediaURLs:   mediaURLs,
		ScheduledAt: scheduledAt,
	}

	outcome, err := h.router.Submit(c.Context(), post)
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if outcome.Scheduled {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Post scheduled successfully",
			"post_id": outcome.PostID,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"post_id": outcome.PostID,
		"status":  outcome.Status,
		"results": toOutcomes(outcome.Results),
	})
}

func (h *PublishHandler) ListPosts(c *fiber.Ctx) error {
	brandID := GetBrandID(c)
	postID := c.QueryInt("id", 0)

	if postID != 0 {
		valid, err := h.pr.CheckByBrandID(c.Context(), int64(postID), brandID)
		if err != nil || !valid {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Post doesn't exist",
			})
		}

		post, err := h.pr.GetByID(c.Context(), int64(postID))
		if err != nil || post == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unable to get post",
			})
		}
		return c.Status(fiber.StatusOK).JSON(post)
	}

	posts, err := h.pr.ListByBrandID(c.Context(), brandID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list posts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

// ReschedulePost is the explicit manual failed -> scheduled transition.
func (h *PublishHandler) ReschedulePost(c *fiber.Ctx) error {
	brandID := GetBrandID(c)

	var req transfer.RescheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	valid, err := h.pr.CheckByBrandID(c.Context(), req.PostID, brandID)
	if err != nil || !valid {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Post doesn't exist",
		})
	}

	at, err := parseScheduledTime(req.ScheduledFor)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid scheduled time format",
		})
	}
	if !at.After(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Scheduled time must be in the future",
		})
	}

	ok, err := h.pr.Reschedule(c.Context(), req.PostID, at)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to reschedule post",
		})
	}
	if !ok {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Only failed posts can be rescheduled",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Post rescheduled successfully",
	})
}

func toOutcomes(results []platform.PublishResult) []transfer.PlatformOutcome {
	outcomes := make([]transfer.PlatformOutcome, len(results))
	for i, r := range results {
		outcomes[i] = transfer.PlatformOutcome{
			Platform: r.Platform.String(),
			Success:  r.Success,
			PostID:   r.PlatformPostID,
			Error:    r.Message,
			Kind:     string(r.FailureKind),
		}
	}
	return outcomes
}

func parseScheduledTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04", value, time.Local)
}

func splitHashtags(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})
	tags := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimPrefix(f, "#")
		if f != "" {
			tags = append(tags, f)
		}
	}
	return tags
}
