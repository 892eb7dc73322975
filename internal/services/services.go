package services

import (
	"log/slog"

	"github.com/JobHunter-2025/skill-assessment-service/internal/cache"
	"github.com/JobHunter-2025/skill-assessment-service/internal/events"
	"github.com/JobHunter-2025/skill-assessment-service/internal/repositories"
	"github.com/JobHunter-2025/skill-assessment-service/internal/validator"
)

// ServiceManager bundles the services for handler wiring.
type ServiceManager interface {
	Question() QuestionService
	Quiz() QuizService
	Attempt() AttemptService
	Export() ExportService
}

type serviceManager struct {
	question QuestionService
	quiz     QuizService
	attempt  AttemptService
	export   ExportService
}

func NewServiceManager(
	repo repositories.Repository,
	active cache.ActiveAttemptCache,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
) ServiceManager {
	return &serviceManager{
		question: NewQuestionService(repo, logger, validator),
		quiz:     NewQuizService(repo, logger, validator),
		attempt:  NewAttemptService(repo, active, publisher, logger),
		export:   NewExportService(repo, logger),
	}
}

func (m *serviceManager) Question() QuestionService { return m.question }
func (m *serviceManager) Quiz() QuizService         { return m.quiz }
func (m *serviceManager) Attempt() AttemptService   { return m.attempt }
func (m *serviceManager) Export() ExportService     { return m.export }
