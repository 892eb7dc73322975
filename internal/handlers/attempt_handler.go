package handlers

import (
	"net/http"

	"github.com/JobHunter-2025/skill-assessment-service/internal/services"
	"github.com/JobHunter-2025/skill-assessment-service/internal/session"
	"github.com/JobHunter-2025/skill-assessment-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
}

func NewAttemptHandler(attemptService services.AttemptService, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
	}
}

// AnswerRequest carries one answer value for a question
type AnswerRequest struct {
	Kind   session.AnswerKind `json:"kind" binding:"required"`
	Label  string             `json:"label,omitempty"`
	Labels []string           `json:"labels,omitempty"`
	Text   string             `json:"text,omitempty"`
}

func (r *AnswerRequest) toValue() session.AnswerValue {
	return session.AnswerValue{
		Kind:   r.Kind,
		Label:  r.Label,
		Labels: r.Labels,
		Text:   r.Text,
	}
}

// StartAttempt starts a timed attempt on a quiz
// @Summary Start attempt
// @Description Starts a timed attempt; rejected while an unresolved attempt exists for the same quiz
// @Tags attempts
// @Produce json
// @Param id path uint true "Quiz ID"
// @Success 201 {object} models.Attempt
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /quizzes/{id}/attempts [post]
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}

	holderID, ok := h.requireHolder(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Starting attempt", "quiz_id", quizID)

	attempt, err := h.attemptService.Start(c.Request.Context(), quizID, holderID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, attempt)
}

// SubmitAnswer records one answer on a running attempt
// @Summary Submit answer
// @Description Records or replaces the answer for one question; last write wins
// @Tags attempts
// @Accept json
// @Produce json
// @Param attempt_id path string true "Attempt ID"
// @Param question_id path uint true "Question ID"
// @Param answer body AnswerRequest true "Answer value"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /attempts/{attempt_id}/answers/{question_id} [put]
func (h *AttemptHandler) SubmitAnswer(c *gin.Context) {
	attemptID := c.Param("attempt_id")
	questionID := h.parseIDParam(c, "question_id")
	if questionID == 0 {
		return
	}

	holderID, ok := h.requireHolder(c)
	if !ok {
		return
	}

	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Submitting answer", "attempt_id", attemptID, "question_id", questionID)

	err := h.attemptService.SubmitAnswer(c.Request.Context(), attemptID, holderID, questionID, req.toValue())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Answer recorded",
	})
}

// SubmitAttempt submits the attempt for grading
// @Summary Submit attempt
// @Description Finalizes the attempt and grades it; idempotent rejection once terminal
// @Tags attempts
// @Produce json
// @Param attempt_id path string true "Attempt ID"
// @Success 200 {object} models.Attempt
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /attempts/{attempt_id}/submit [post]
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	attemptID := c.Param("attempt_id")

	holderID, ok := h.requireHolder(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Submitting attempt", "attempt_id", attemptID)

	attempt, err := h.attemptService.Submit(c.Request.Context(), attemptID, holderID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}

// GetAttemptProgress reports answered/total counts for a running attempt
// @Summary Get attempt progress
// @Description Reports how many questions carry a non-empty answer
// @Tags attempts
// @Produce json
// @Param attempt_id path string true "Attempt ID"
// @Success 200 {object} session.Progress
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{attempt_id}/progress [get]
func (h *AttemptHandler) GetAttemptProgress(c *gin.Context) {
	attemptID := c.Param("attempt_id")

	holderID, ok := h.requireHolder(c)
	if !ok {
		return
	}

	progress, err := h.attemptService.GetProgress(c.Request.Context(), attemptID, holderID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// GetAttempt retrieves an attempt
// @Summary Get attempt
// @Description Retrieves an attempt owned by the calling holder
// @Tags attempts
// @Produce json
// @Param attempt_id path string true "Attempt ID"
// @Success 200 {object} models.Attempt
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{attempt_id} [get]
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	attemptID := c.Param("attempt_id")

	holderID, ok := h.requireHolder(c)
	if !ok {
		return
	}

	attempt, err := h.attemptService.GetByID(c.Request.Context(), attemptID, holderID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}

// GetQuizResult retrieves the graded result for the caller's attempt on a quiz
// @Summary Get quiz result
// @Description Retrieves the graded attempt for the calling holder on a quiz
// @Tags attempts
// @Produce json
// @Param id path uint true "Quiz ID"
// @Success 200 {object} models.Attempt
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /quizzes/{id}/result [get]
func (h *AttemptHandler) GetQuizResult(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}

	holderID, ok := h.requireHolder(c)
	if !ok {
		return
	}

	attempt, err := h.attemptService.GetResult(c.Request.Context(), quizID, holderID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}

// DeleteAttempt deletes the caller's attempt on a quiz, enabling a retake
// @Summary Delete attempt
// @Description Removes the stored attempt for the (holder, quiz) pair so a new one can start
// @Tags attempts
// @Produce json
// @Param id path uint true "Quiz ID"
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{id}/attempt [delete]
func (h *AttemptHandler) DeleteAttempt(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}

	holderID, ok := h.requireHolder(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting attempt for retake", "quiz_id", quizID)

	if err := h.attemptService.DeleteAttempt(c.Request.Context(), quizID, holderID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Attempt deleted successfully",
	})
}
