package handlers

import (
	"github.com/JobHunter-2025/skill-assessment-service/internal/services"
	"github.com/JobHunter-2025/skill-assessment-service/internal/utils"
	"github.com/JobHunter-2025/skill-assessment-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	questionHandler *QuestionHandler
	quizHandler     *QuizHandler
	attemptHandler  *AttemptHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		questionHandler: NewQuestionHandler(serviceManager.Question(), validator, logger),
		quizHandler:     NewQuizHandler(serviceManager.Quiz(), serviceManager.Export(), logger),
		attemptHandler:  NewAttemptHandler(serviceManager.Attempt(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Question routes
		questions := v1.Group("/questions")
		{
			questions.POST("", hm.questionHandler.CreateQuestion)
			questions.POST("/import/text", hm.questionHandler.ImportQuestionsText)
			questions.POST("/import/excel", hm.questionHandler.ImportQuestionsExcel)
			questions.GET("", hm.questionHandler.ListQuestions)
			questions.GET("/:id", hm.questionHandler.GetQuestion)
			questions.DELETE("/:id", hm.questionHandler.DeleteQuestion)
			questions.GET("/skill/:skill_tag", hm.questionHandler.GetQuestionsBySkill)
		}

		// Quiz routes
		quizzes := v1.Group("/quizzes")
		{
			quizzes.POST("", hm.quizHandler.CreateQuiz)
			quizzes.GET("", hm.quizHandler.ListQuizzes)
			quizzes.GET("/:id", hm.quizHandler.GetQuiz)
			quizzes.DELETE("/:id", hm.quizHandler.DeleteQuiz)
			quizzes.GET("/:id/results/export", hm.quizHandler.ExportQuizResults)

			// Attempt lifecycle scoped to a quiz
			quizzes.POST("/:id/attempts", hm.attemptHandler.StartAttempt)
			quizzes.GET("/:id/result", hm.attemptHandler.GetQuizResult)
			quizzes.DELETE("/:id/attempt", hm.attemptHandler.DeleteAttempt)
		}

		// Attempt routes
		attempts := v1.Group("/attempts")
		{
			attempts.GET("/:attempt_id", hm.attemptHandler.GetAttempt)
			attempts.GET("/:attempt_id/progress", hm.attemptHandler.GetAttemptProgress)
			attempts.PUT("/:attempt_id/answers/:question_id", hm.attemptHandler.SubmitAnswer)
			attempts.POST("/:attempt_id/submit", hm.attemptHandler.SubmitAttempt)
		}
	}
}
