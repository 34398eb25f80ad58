package handlers

import (
	"context"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/radassist/backend/internal/recommend"
	search "github.com/radassist/backend/internal/search"
	"github.com/radassist/backend/pkg/logger"
)

// WebSocketHandler serves the live search channel. Clients send partial
// queries as the clinician types and get candidate scenarios back; a final
// "recommend" message runs the full pipeline.
type WebSocketHandler struct {
	lexical recommend.LexicalSearcher
	engine  *recommend.Engine
}

func NewWebSocketHandler(lexical recommend.LexicalSearcher, engine *recommend.Engine) *WebSocketHandler {
	return &WebSocketHandler{
		lexical: lexical,
		engine:  engine,
	}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type    string `json:"type"`
			Content string `json:"content"`
			UserID  string `json:"user_id"`
		}

		if err := c.ReadJSON(&msg); err != nil {
			logger.Debug("WebSocket read ended", zap.Error(err))
			break
		}

		switch msg.Type {
		case "search":
			h.handleLiveSearch(c, msg.Content)
		case "recommend":
			h.handleRecommend(c, msg.Content, msg.UserID)
		default:
			h.sendError(c, "Unknown message type")
		}
	}
}

func (h *WebSocketHandler) handleLiveSearch(c *websocket.Conn, query string) {
	if len(query) < 2 {
		h.send(c, "candidates", []search.Result{})
		return
	}

	results := h.lexical.Search(context.Background(), query, search.Options{Limit: 5, MinScore: 0.05})
	h.send(c, "candidates", results)
}

func (h *WebSocketHandler) handleRecommend(c *websocket.Conn, query, userID string) {
	h.send(c, "status", "Searching clinical scenarios...")

	result := h.engine.GetRecommendations(context.Background(), query, userID)
	h.send(c, "result", result)
}

func (h *WebSocketHandler) send(c *websocket.Conn, msgType string, payload interface{}) {
	msg := map[string]interface{}{
		"type":    msgType,
		"payload": payload,
	}
	if err := c.WriteJSON(msg); err != nil {
		logger.Debug("Failed to write WebSocket message", zap.Error(err))
	}
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, message string) {
	h.send(c, "error", message)
}
