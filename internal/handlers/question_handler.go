package handlers

import (
	"net/http"

	"github.com/JobHunter-2025/skill-assessment-service/internal/models"
	"github.com/JobHunter-2025/skill-assessment-service/internal/repositories"
	"github.com/JobHunter-2025/skill-assessment-service/internal/services"
	"github.com/JobHunter-2025/skill-assessment-service/internal/utils"
	"github.com/JobHunter-2025/skill-assessment-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type QuestionHandler struct {
	BaseHandler
	questionService services.QuestionService
	validator       *validator.Validator
}

func NewQuestionHandler(
	questionService services.QuestionService,
	validator *validator.Validator,
	logger utils.Logger,
) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:     NewBaseHandler(logger),
		questionService: questionService,
		validator:       validator,
	}
}

// ImportTextRequest carries a pasted question dump for parsing
type ImportTextRequest struct {
	Text     string `json:"text" validate:"required"`
	SkillTag string `json:"skill_tag" validate:"required,max=100"`
	Points   int    `json:"points" validate:"omitempty,min=1"`
}

// ImportQuestionsText parses a loosely formatted question dump and stores
// the well-formed questions
// @Summary Import questions from text
// @Description Parses a pasted question dump and stores every well-formed question, reporting rejects per ordinal
// @Tags questions
// @Accept json
// @Produce json
// @Param dump body ImportTextRequest true "Question dump"
// @Success 200 {object} models.ImportReport
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /questions/import/text [post]
func (h *QuestionHandler) ImportQuestionsText(c *gin.Context) {
	h.LogRequest(c, "Importing questions from text")

	holderID, ok := h.requireHolder(c)
	if !ok {
		return
	}

	var req ImportTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	if req.Points == 0 {
		req.Points = 1
	}

	report, err := h.questionService.ImportText(c.Request.Context(), req.Text, req.SkillTag, req.Points, holderID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ImportQuestionsExcel imports questions from an uploaded xlsx file
// @Summary Import questions from Excel
// @Description Imports questions from an uploaded .xlsx workbook
// @Tags questions
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Excel file"
// @Success 200 {object} models.ImportReport
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /questions/import/excel [post]
func (h *QuestionHandler) ImportQuestionsExcel(c *gin.Context) {
	h.LogRequest(c, "Importing questions from excel")

	holderID, ok := h.requireHolder(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Excel file is required",
			Details: err.Error(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Cannot open uploaded file",
			Details: err.Error(),
		})
		return
	}
	defer file.Close()

	report, err := h.questionService.ImportExcel(c.Request.Context(), file, holderID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// CreateQuestion creates a new question
// @Summary Create question
// @Description Creates a new question with the provided details
// @Tags questions
// @Accept json
// @Produce json
// @Param question body services.CreateQuestionRequest true "Question data"
// @Success 201 {object} models.Question
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /questions [post]
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	h.LogRequest(c, "Creating question")

	holderID, ok := h.requireHolder(c)
	if !ok {
		return
	}

	var req services.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	question, err := h.questionService.Create(c.Request.Context(), &req, holderID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// GetQuestion retrieves a question by ID
// @Summary Get question
// @Description Retrieves a question by its ID
// @Tags questions
// @Produce json
// @Param id path uint true "Question ID"
// @Success 200 {object} models.Question
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /questions/{id} [get]
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Getting question", "question_id", id)

	question, err := h.questionService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// ListQuestions lists questions with filters
// @Summary List questions
// @Description Lists questions with optional filtering
// @Tags questions
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Param type query string false "Question type"
// @Param skill_tag query string false "Skill tag"
// @Success 200 {object} SuccessResponse{data=[]models.Question}
// @Failure 500 {object} ErrorResponse
// @Router /questions [get]
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	h.LogRequest(c, "Listing questions")

	filters := h.parseQuestionFilters(c)
	questions, total, err := h.questionService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"questions": questions,
		"total":     total,
	})
}

// GetQuestionsBySkill lists questions carrying a skill tag
// @Summary Get questions by skill
// @Description Lists questions tagged with a specific skill
// @Tags questions
// @Produce json
// @Param skill_tag path string true "Skill tag"
// @Success 200 {object} SuccessResponse{data=[]models.Question}
// @Failure 500 {object} ErrorResponse
// @Router /questions/skill/{skill_tag} [get]
func (h *QuestionHandler) GetQuestionsBySkill(c *gin.Context) {
	skillTag := c.Param("skill_tag")
	if skillTag == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Skill tag is required",
		})
		return
	}

	h.LogRequest(c, "Getting questions by skill", "skill_tag", skillTag)

	filters := h.parseQuestionFilters(c)
	questions, total, err := h.questionService.GetBySkill(c.Request.Context(), skillTag, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"questions": questions,
		"total":     total,
	})
}

// DeleteQuestion deletes a question
// @Summary Delete question
// @Description Deletes a question by ID
// @Tags questions
// @Produce json
// @Param id path uint true "Question ID"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /questions/{id} [delete]
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting question", "question_id", id)

	if err := h.questionService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Question deleted successfully",
	})
}

func (h *QuestionHandler) parseQuestionFilters(c *gin.Context) repositories.QuestionFilters {
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 10)

	filters := repositories.QuestionFilters{
		Limit:  size,
		Offset: (page - 1) * size,
	}

	if questionType := c.Query("type"); questionType != "" {
		qType := models.QuestionType(questionType)
		filters.Type = &qType
	}

	if skillTag := c.Query("skill_tag"); skillTag != "" {
		filters.SkillTag = &skillTag
	}

	return filters
}
