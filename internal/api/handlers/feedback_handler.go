package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/radassist/backend/internal/metrics"
	"github.com/radassist/backend/internal/storage/models"
	"github.com/radassist/backend/internal/storage/sqlite"
	"github.com/radassist/backend/pkg/logger"
)

type FeedbackHandler struct {
	db *sqlite.Client
}

func NewFeedbackHandler(db *sqlite.Client) *FeedbackHandler {
	return &FeedbackHandler{db: db}
}

func (h *FeedbackHandler) HandleFeedback(c *fiber.Ctx) error {
	var req struct {
		RecommendationID string `json:"recommendation_id"`
		Helpful          bool   `json:"helpful"`
		IssueCategory    string `json:"issue_category"`
		Comment          string `json:"comment"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse feedback body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.RecommendationID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "recommendation_id is required",
		})
	}

	feedback := &models.Feedback{
		RecommendationID: req.RecommendationID,
		Helpful:          req.Helpful,
		IssueCategory:    req.IssueCategory,
		Comment:          req.Comment,
		CreatedAt:        time.Now(),
	}

	if err := h.db.StoreFeedback(feedback); err != nil {
		logger.Error("Failed to store feedback", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store feedback",
		})
	}

	helpful := "false"
	if req.Helpful {
		helpful = "true"
	}
	metrics.UserSatisfaction.WithLabelValues(helpful).Inc()

	return c.JSON(fiber.Map{
		"status": "recorded",
	})
}
