package handlers

import (
	"fmt"
	"net/http"

	"github.com/JobHunter-2025/skill-assessment-service/internal/services"
	"github.com/JobHunter-2025/skill-assessment-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type QuizHandler struct {
	BaseHandler
	quizService   services.QuizService
	exportService services.ExportService
}

func NewQuizHandler(
	quizService services.QuizService,
	exportService services.ExportService,
	logger utils.Logger,
) *QuizHandler {
	return &QuizHandler{
		BaseHandler:   NewBaseHandler(logger),
		quizService:   quizService,
		exportService: exportService,
	}
}

// CreateQuiz creates a new quiz
// @Summary Create quiz
// @Description Creates a quiz referencing an ordered list of questions
// @Tags quizzes
// @Accept json
// @Produce json
// @Param quiz body services.CreateQuizRequest true "Quiz data"
// @Success 201 {object} models.Quiz
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /quizzes [post]
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	h.LogRequest(c, "Creating quiz")

	holderID, ok := h.requireHolder(c)
	if !ok {
		return
	}

	var req services.CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	quiz, err := h.quizService.Create(c.Request.Context(), &req, holderID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, quiz)
}

// GetQuiz retrieves a quiz by ID
// @Summary Get quiz
// @Description Retrieves a quiz with its ordered questions
// @Tags quizzes
// @Produce json
// @Param id path uint true "Quiz ID"
// @Success 200 {object} models.Quiz
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{id} [get]
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Getting quiz", "quiz_id", id)

	quiz, err := h.quizService.GetByIDWithQuestions(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// ListQuizzes lists quizzes
// @Summary List quizzes
// @Description Lists quizzes with pagination
// @Tags quizzes
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} SuccessResponse{data=[]models.Quiz}
// @Failure 500 {object} ErrorResponse
// @Router /quizzes [get]
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	h.LogRequest(c, "Listing quizzes")

	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 10)

	quizzes, total, err := h.quizService.List(c.Request.Context(), size, (page-1)*size)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"quizzes": quizzes,
		"total":   total,
	})
}

// DeleteQuiz deletes a quiz
// @Summary Delete quiz
// @Description Deletes a quiz by ID
// @Tags quizzes
// @Produce json
// @Param id path uint true "Quiz ID"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{id} [delete]
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting quiz", "quiz_id", id)

	if err := h.quizService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Quiz deleted successfully",
	})
}

// ExportQuizResults exports graded results for a quiz
// @Summary Export quiz results
// @Description Exports graded attempt results as xlsx or csv
// @Tags quizzes
// @Produce application/octet-stream
// @Param id path uint true "Quiz ID"
// @Param format query string false "Export format (excel|csv)" default(excel)
// @Success 200 {file} binary
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{id}/results/export [get]
func (h *QuizHandler) ExportQuizResults(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	format := c.DefaultQuery("format", "excel")
	h.LogRequest(c, "Exporting quiz results", "quiz_id", id, "format", format)

	var (
		data        []byte
		contentType string
		fileName    string
		err         error
	)

	switch format {
	case "excel":
		data, err = h.exportService.ExportQuizResultsToExcel(c.Request.Context(), id)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		fileName = fmt.Sprintf("quiz_%d_results.xlsx", id)
	case "csv":
		data, err = h.exportService.ExportQuizResultsToCSV(c.Request.Context(), id)
		contentType = "text/csv"
		fileName = fmt.Sprintf("quiz_%d_results.csv", id)
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unsupported export format",
			Details: format,
		})
		return
	}

	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, contentType, data)
}
