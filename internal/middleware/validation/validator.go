package validation

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var (
	injectionPattern = regexp.MustCompile(`(?i)(union\s+select|insert\s+into|drop\s+table|<script|<iframe|javascript:|onerror=|onload=)`)
)

type Config struct {
	MaxQueryLength int
	Logger         *zap.Logger
}

// Middleware validates the query-bearing endpoints before handlers run.
// Clinical free text legitimately contains words like "drop" and "create",
// so the injection pattern matches full attack phrases, not keywords.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxQueryLength == 0 {
		cfg.MaxQueryLength = 2000
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodPost {
			contentType := c.Get("Content-Type")
			if contentType != "" && !strings.Contains(contentType, "application/json") {
				return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
					"error": "Unsupported content type",
				})
			}
		}

		path := c.Path()
		if strings.Contains(path, "/api/v1/recommendations") || strings.Contains(path, "/api/v1/protocol") {
			if c.Method() != fiber.MethodPost {
				return c.Next()
			}

			var req map[string]interface{}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}

			if query, ok := req["query"].(string); ok {
				if len(query) > cfg.MaxQueryLength {
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
						"error": "Query exceeds maximum length",
					})
				}

				if injectionPattern.MatchString(query) {
					cfg.Logger.Warn("Rejected suspicious query content",
						zap.String("ip", c.IP()),
						zap.String("path", path),
					)
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
						"error": "Invalid query content",
					})
				}

				req["query"] = sanitize(query)
				c.Locals("sanitized_body", req)
			}
		}

		return c.Next()
	}
}

func sanitize(input string) string {
	input = strings.TrimSpace(input)
	return strings.ReplaceAll(input, "\x00", "")
}
