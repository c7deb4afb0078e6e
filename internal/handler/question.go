package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/himanshusingh9554/edumateai/internal/middleware"
	"github.com/himanshusingh9554/edumateai/internal/model"
	"github.com/himanshusingh9554/edumateai/internal/service"
)

type QuestionHandler struct {
	svc *service.AnswerService
}

func NewQuestionHandler(svc *service.AnswerService) *QuestionHandler {
	return &QuestionHandler{svc: svc}
}

// Ask handles POST /api/questions/ask
func (h *QuestionHandler) Ask(c fiber.Ctx) error {
	var req model.AskRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Request body must be JSON with question and videoUrl")
	}

	if msg := middleware.ValidateQuestion(req.Question); msg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_QUESTION", msg)
	}
	if msg := middleware.ValidateVideoURL(req.VideoURL); msg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_VIDEO_URL", msg)
	}

	resp, err := h.svc.Resolve(c.Context(), req.Question, req.VideoURL, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_REQUEST", "Question and video URL are required")
		}
		middleware.Logger.Error().Err(err).Msg("question resolution failed")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to resolve question")
	}

	return c.JSON(resp)
}

// ByVideo handles GET /api/questions/video/:videoId
func (h *QuestionHandler) ByVideo(c fiber.Ctx) error {
	videoID, msg := middleware.ParseVideoID(c.Params("videoId"))
	if msg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_VIDEO_ID", msg)
	}

	questions, err := h.svc.QuestionsForVideo(c.Context(), videoID)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch questions")
	}

	if questions == nil {
		questions = []model.Question{}
	}
	return c.JSON(questions)
}
