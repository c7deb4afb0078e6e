package handler

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/himanshusingh9554/edumateai/internal/middleware"
	"github.com/himanshusingh9554/edumateai/internal/model"
	"github.com/himanshusingh9554/edumateai/internal/service"
)

type VideoHandler struct {
	svc *service.VideoService
}

func NewVideoHandler(svc *service.VideoService) *VideoHandler {
	return &VideoHandler{svc: svc}
}

// Add handles POST /api/videos. Re-adding a known URL returns the existing
// row with 200 instead of 201.
func (h *VideoHandler) Add(c fiber.Ctx) error {
	var req model.AddVideoRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Request body must be JSON with a url field")
	}

	if msg := middleware.ValidateVideoURL(req.URL); msg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_VIDEO_URL", msg)
	}

	video, created, err := h.svc.Add(c.Context(), req, middleware.UserID(c))
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to add video")
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(video)
}

// List handles GET /api/videos
func (h *VideoHandler) List(c fiber.Ctx) error {
	videos, err := h.svc.List(c.Context())
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list videos")
	}

	if videos == nil {
		videos = []model.Video{}
	}
	return c.JSON(videos)
}

// Search handles GET /api/videos/search/:query with an optional page query
// parameter.
func (h *VideoHandler) Search(c fiber.Ctx) error {
	query, err := url.PathUnescape(c.Params("query"))
	if err != nil || strings.TrimSpace(query) == "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_QUERY", "Search query is required")
	}

	page := 1
	if raw := c.Query("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}

	resp, err := h.svc.Search(c.Context(), query, page)
	if err != nil {
		middleware.Logger.Warn().Err(err).Msg("video search failed")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "SEARCH_FAILED", "YouTube search failed, please try again later")
	}
	return c.JSON(resp)
}
