package middleware

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// Field length limits matching database schema constraints.
const (
	MaxQuestionLen = 2000 // questions.question TEXT, bounded at the edge
	MaxVideoURLLen = 512  // videos.url VARCHAR(512)
)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateQuestion checks that question text is present and within limits.
// The text itself is preserved verbatim, no trimming, because cache lookup
// is by exact string.
func ValidateQuestion(q string) string {
	if strings.TrimSpace(q) == "" {
		return "question is required"
	}
	if len(q) > MaxQuestionLen {
		return "question must be at most 2000 characters"
	}
	return ""
}

// ValidateVideoURL checks that a video URL is present and plausible.
func ValidateVideoURL(u string) string {
	if strings.TrimSpace(u) == "" {
		return "videoUrl is required"
	}
	if len(u) > MaxVideoURLLen {
		return "videoUrl must be at most 512 characters"
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return "videoUrl must be an http(s) URL"
	}
	return ""
}

// ParseVideoID parses a numeric video row ID from a path parameter.
func ParseVideoID(raw string) (int64, string) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, "videoId must be a positive integer"
	}
	return id, ""
}
