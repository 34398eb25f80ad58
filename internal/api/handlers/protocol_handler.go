package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/radassist/backend/internal/metrics"
	"github.com/radassist/backend/internal/protocol"
	"github.com/radassist/backend/internal/storage/models"
	"github.com/radassist/backend/pkg/logger"
)

type ProtocolHandler struct {
	router *protocol.Router
}

func NewProtocolHandler(router *protocol.Router) *ProtocolHandler {
	return &ProtocolHandler{router: router}
}

func (h *ProtocolHandler) HandleProtocol(c *fiber.Ctx) error {
	var req struct {
		Region        string `json:"region"`
		ScenarioID    int    `json:"scenario_id"`
		ScenarioName  string `json:"scenario_name"`
		ProcedureName string `json:"procedure_name"`
		Contrast      string `json:"contrast"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Region == "" || req.ProcedureName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "region and procedure_name are required",
		})
	}

	selection, err := h.router.SelectProtocol(c.Context(), protocol.Request{
		Region:        models.BodyRegion(req.Region),
		ScenarioID:    req.ScenarioID,
		ScenarioName:  req.ScenarioName,
		ProcedureName: req.ProcedureName,
		Contrast:      models.ContrastUse(req.Contrast),
	})
	if err != nil {
		logger.Error("Protocol selection failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to select protocol",
		})
	}

	if selection == nil || selection.Protocol == nil {
		metrics.ProtocolSelections.WithLabelValues("none", "none").Inc()
		return c.JSON(fiber.Map{
			"matched": false,
			"message": "No suitable protocol found for this procedure. Review manually.",
		})
	}

	metrics.ProtocolSelections.WithLabelValues(req.Region, string(selection.MatchType)).Inc()

	return c.JSON(fiber.Map{
		"matched":                true,
		"protocol":               selection.Protocol,
		"match_type":             selection.MatchType,
		"supplemental_sequences": selection.SupplementalSequences,
	})
}
