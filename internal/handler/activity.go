package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/himanshusingh9554/edumateai/internal/middleware"
	"github.com/himanshusingh9554/edumateai/internal/model"
	"github.com/himanshusingh9554/edumateai/internal/service"
)

type ActivityHandler struct {
	svc *service.ActivityService
}

func NewActivityHandler(svc *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{svc: svc}
}

// History handles GET /api/activity: the caller's most recent question per
// distinct video, newest first.
func (h *ActivityHandler) History(c fiber.Ctx) error {
	entries, err := h.svc.RecentByUser(c.Context(), middleware.UserID(c))
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch history")
	}

	if entries == nil {
		entries = []model.ActivityEntry{}
	}
	return c.JSON(entries)
}
