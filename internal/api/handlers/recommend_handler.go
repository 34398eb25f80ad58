package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/radassist/backend/internal/recommend"
	"github.com/radassist/backend/internal/storage/sqlite"
	"github.com/radassist/backend/pkg/logger"
)

type RecommendHandler struct {
	engine *recommend.Engine
	db     *sqlite.Client
}

func NewRecommendHandler(engine *recommend.Engine, db *sqlite.Client) *RecommendHandler {
	return &RecommendHandler{
		engine: engine,
		db:     db,
	}
}

func (h *RecommendHandler) HandleRecommendations(c *fiber.Ctx) error {
	var req struct {
		Query  string `json:"query"`
		UserID string `json:"user_id"`
	}

	if body, ok := c.Locals("sanitized_body").(map[string]interface{}); ok {
		if q, ok := body["query"].(string); ok {
			req.Query = q
		}
		if u, ok := body["user_id"].(string); ok {
			req.UserID = u
		}
	} else if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query is required",
		})
	}

	result := h.engine.GetRecommendations(c.Context(), req.Query, req.UserID)

	return c.JSON(result)
}

func (h *RecommendHandler) GetHistory(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id is required",
		})
	}

	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	history, err := h.db.GetRecommendationHistory(userID, limit)
	if err != nil {
		logger.Error("Failed to load recommendation history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load history",
		})
	}

	return c.JSON(fiber.Map{
		"history": history,
	})
}
