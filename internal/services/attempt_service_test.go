package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/JobHunter-2025/skill-assessment-service/internal/events"
	"github.com/JobHunter-2025/skill-assessment-service/internal/models"
	"github.com/JobHunter-2025/skill-assessment-service/internal/repositories"
	"github.com/JobHunter-2025/skill-assessment-service/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MockAttemptRepository is a mock implementation of AttemptRepository
type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Create(ctx context.Context, attempt *models.Attempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetByID(ctx context.Context, id string) (*models.Attempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) GetByPair(ctx context.Context, holderID string, quizID uint) (*models.Attempt, error) {
	args := m.Called(ctx, holderID, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) HasUnresolved(ctx context.Context, holderID string, quizID uint) (bool, error) {
	args := m.Called(ctx, holderID, quizID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAttemptRepository) Update(ctx context.Context, attempt *models.Attempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) DeleteByPair(ctx context.Context, holderID string, quizID uint) error {
	args := m.Called(ctx, holderID, quizID)
	return args.Error(0)
}

func (m *MockAttemptRepository) ListByHolder(ctx context.Context, holderID string, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	args := m.Called(ctx, holderID, filters)
	return args.Get(0).([]*models.Attempt), args.Get(1).(int64), args.Error(2)
}

func (m *MockAttemptRepository) ListByQuiz(ctx context.Context, quizID uint, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	args := m.Called(ctx, quizID, filters)
	return args.Get(0).([]*models.Attempt), args.Get(1).(int64), args.Error(2)
}

func (m *MockAttemptRepository) GetInProgress(ctx context.Context) ([]*models.Attempt, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Attempt), args.Error(1)
}

// MockQuizRepository is a mock implementation of QuizRepository
type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	args := m.Called(ctx, quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *MockQuizRepository) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *MockQuizRepository) List(ctx context.Context, limit, offset int) ([]*models.Quiz, int64, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Quiz), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuizRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRepository is a mock implementation of the main Repository interface
type MockRepository struct {
	questionRepo *MockQuestionRepository
	quizRepo     *MockQuizRepository
	attemptRepo  *MockAttemptRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		questionRepo: &MockQuestionRepository{},
		quizRepo:     &MockQuizRepository{},
		attemptRepo:  &MockAttemptRepository{},
	}
}

func (m *MockRepository) Question() repositories.QuestionRepository { return m.questionRepo }
func (m *MockRepository) Quiz() repositories.QuizRepository         { return m.quizRepo }
func (m *MockRepository) Attempt() repositories.AttemptRepository   { return m.attemptRepo }
func (m *MockRepository) Ping(ctx context.Context) error            { return nil }
func (m *MockRepository) Close() error                              { return nil }

// MockActiveAttemptCache is a mock implementation of ActiveAttemptCache
type MockActiveAttemptCache struct {
	mock.Mock
}

func (m *MockActiveAttemptCache) MarkActive(ctx context.Context, holderID string, quizID uint, attemptID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, holderID, quizID, attemptID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockActiveAttemptCache) ActiveAttemptID(ctx context.Context, holderID string, quizID uint) (string, error) {
	args := m.Called(ctx, holderID, quizID)
	return args.String(0), args.Error(1)
}

func (m *MockActiveAttemptCache) Clear(ctx context.Context, holderID string, quizID uint) error {
	args := m.Called(ctx, holderID, quizID)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAttemptService(repo *MockRepository, active *MockActiveAttemptCache, publisher events.EventPublisher, now time.Time) *attemptService {
	return &attemptService{
		repo:      repo,
		active:    active,
		publisher: publisher,
		logger:    testLogger(),
		now:       func() time.Time { return now },
	}
}

func singleChoiceQuiz() *models.Quiz {
	return &models.Quiz{
		ID:              1,
		Title:           "Go basics",
		SkillTag:        "golang",
		DurationSeconds: 600,
		Questions: []models.QuizQuestion{
			{
				QuizID:     1,
				QuestionID: 10,
				Position:   0,
				Question: models.Question{
					ID:            10,
					Type:          models.SingleChoice,
					Points:        1,
					CorrectAnswer: datatypes.JSON(`"A"`),
				},
			},
			{
				QuizID:     1,
				QuestionID: 11,
				Position:   1,
				Question: models.Question{
					ID:            11,
					Type:          models.SingleChoice,
					Points:        1,
					CorrectAnswer: datatypes.JSON(`"C"`),
				},
			},
		},
	}
}

func TestAttemptService_Start(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("successful start", func(t *testing.T) {
		repo := newMockRepository()
		active := &MockActiveAttemptCache{}
		publisher := events.NewMockEventPublisher(testLogger())
		svc := newTestAttemptService(repo, active, publisher, start)

		repo.quizRepo.On("GetByIDWithQuestions", mock.Anything, uint(1)).Return(singleChoiceQuiz(), nil)
		repo.attemptRepo.On("HasUnresolved", mock.Anything, "holder-1", uint(1)).Return(false, nil)
		active.On("MarkActive", mock.Anything, "holder-1", uint(1), mock.AnythingOfType("string"), mock.AnythingOfType("time.Duration")).Return(true, nil)
		repo.attemptRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *models.Attempt) bool {
			return a.QuizID == 1 && a.HolderID == "holder-1" && a.Status == models.AttemptStatusInProgress
		})).Return(nil)

		attempt, err := svc.Start(context.Background(), 1, "holder-1")
		require.NoError(t, err)
		assert.NotEmpty(t, attempt.ID)
		assert.Equal(t, start, attempt.StartedAt)
		assert.Equal(t, start.Add(600*time.Second), attempt.Deadline)

		published := publisher.GetPublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventAttemptStarted, published[0].Type)

		repo.attemptRepo.AssertExpectations(t)
		active.AssertExpectations(t)
	})

	t.Run("blocked while an unresolved attempt exists", func(t *testing.T) {
		repo := newMockRepository()
		active := &MockActiveAttemptCache{}
		publisher := events.NewMockEventPublisher(testLogger())
		svc := newTestAttemptService(repo, active, publisher, start)

		repo.quizRepo.On("GetByIDWithQuestions", mock.Anything, uint(1)).Return(singleChoiceQuiz(), nil)
		repo.attemptRepo.On("HasUnresolved", mock.Anything, "holder-1", uint(1)).Return(true, nil)

		_, err := svc.Start(context.Background(), 1, "holder-1")
		assert.ErrorIs(t, err, ErrAttemptAlreadyActive)
		repo.attemptRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Empty(t, publisher.GetPublishedEvents())
	})

	t.Run("blocked by the active-attempt marker", func(t *testing.T) {
		repo := newMockRepository()
		active := &MockActiveAttemptCache{}
		publisher := events.NewMockEventPublisher(testLogger())
		svc := newTestAttemptService(repo, active, publisher, start)

		repo.quizRepo.On("GetByIDWithQuestions", mock.Anything, uint(1)).Return(singleChoiceQuiz(), nil)
		repo.attemptRepo.On("HasUnresolved", mock.Anything, "holder-1", uint(1)).Return(false, nil)
		active.On("MarkActive", mock.Anything, "holder-1", uint(1), mock.AnythingOfType("string"), mock.AnythingOfType("time.Duration")).Return(false, nil)

		_, err := svc.Start(context.Background(), 1, "holder-1")
		assert.ErrorIs(t, err, ErrAttemptAlreadyActive)
		repo.attemptRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("empty quiz is rejected", func(t *testing.T) {
		repo := newMockRepository()
		active := &MockActiveAttemptCache{}
		publisher := events.NewMockEventPublisher(testLogger())
		svc := newTestAttemptService(repo, active, publisher, start)

		repo.quizRepo.On("GetByIDWithQuestions", mock.Anything, uint(2)).Return(&models.Quiz{ID: 2, DurationSeconds: 600}, nil)

		_, err := svc.Start(context.Background(), 2, "holder-1")
		assert.ErrorIs(t, err, ErrQuizEmpty)
	})

	t.Run("unknown quiz", func(t *testing.T) {
		repo := newMockRepository()
		active := &MockActiveAttemptCache{}
		publisher := events.NewMockEventPublisher(testLogger())
		svc := newTestAttemptService(repo, active, publisher, start)

		repo.quizRepo.On("GetByIDWithQuestions", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.Start(context.Background(), 99, "holder-1")
		assert.ErrorIs(t, err, ErrQuizNotFound)
	})
}

func TestAttemptService_DeleteAttempt_EnablesRetake(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	repo := newMockRepository()
	active := &MockActiveAttemptCache{}
	publisher := events.NewMockEventPublisher(testLogger())
	svc := newTestAttemptService(repo, active, publisher, start)

	repo.attemptRepo.On("DeleteByPair", mock.Anything, "holder-1", uint(1)).Return(nil)
	active.On("Clear", mock.Anything, "holder-1", uint(1)).Return(nil)

	require.NoError(t, svc.DeleteAttempt(context.Background(), 1, "holder-1"))

	// With the prior row and marker gone, a new start goes through.
	repo.quizRepo.On("GetByIDWithQuestions", mock.Anything, uint(1)).Return(singleChoiceQuiz(), nil)
	repo.attemptRepo.On("HasUnresolved", mock.Anything, "holder-1", uint(1)).Return(false, nil)
	active.On("MarkActive", mock.Anything, "holder-1", uint(1), mock.AnythingOfType("string"), mock.AnythingOfType("time.Duration")).Return(true, nil)
	repo.attemptRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Attempt")).Return(nil)

	attempt, err := svc.Start(context.Background(), 1, "holder-1")
	require.NoError(t, err)
	assert.Equal(t, models.AttemptStatusInProgress, attempt.Status)

	repo.attemptRepo.AssertExpectations(t)
	active.AssertExpectations(t)
}

func inProgressAttempt(startedAt time.Time, answers string) *models.Attempt {
	return &models.Attempt{
		ID:        "attempt-1",
		QuizID:    1,
		HolderID:  "holder-1",
		Status:    models.AttemptStatusInProgress,
		StartedAt: startedAt,
		Deadline:  startedAt.Add(600 * time.Second),
		Answers:   datatypes.JSON(answers),
	}
}

func TestAttemptService_Submit(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("grades and performs the terminal write", func(t *testing.T) {
		now := start.Add(5 * time.Minute)
		repo := newMockRepository()
		active := &MockActiveAttemptCache{}
		publisher := events.NewMockEventPublisher(testLogger())
		svc := newTestAttemptService(repo, active, publisher, now)

		attempt := inProgressAttempt(start, `{"10":{"kind":"single","label":"A"},"11":{"kind":"single","label":"C"}}`)
		repo.attemptRepo.On("GetByID", mock.Anything, "attempt-1").Return(attempt, nil)
		repo.quizRepo.On("GetByIDWithQuestions", mock.Anything, uint(1)).Return(singleChoiceQuiz(), nil)
		repo.attemptRepo.On("Update", mock.Anything, attempt).Return(nil)
		active.On("Clear", mock.Anything, "holder-1", uint(1)).Return(nil)

		graded, err := svc.Submit(context.Background(), "attempt-1", "holder-1")
		require.NoError(t, err)
		assert.Equal(t, models.AttemptStatusSubmitted, graded.Status)
		require.NotNil(t, graded.Score)
		assert.Equal(t, 10.0, *graded.Score)
		assert.Equal(t, 2, graded.CorrectAnswerCount)
		assert.Equal(t, 2, graded.TotalAutoGradable)
		require.NotNil(t, graded.GradedAt)
		require.NotNil(t, graded.SubmittedAt)

		published := publisher.GetPublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventAttemptGraded, published[0].Type)

		repo.attemptRepo.AssertExpectations(t)
		active.AssertExpectations(t)
	})

	t.Run("submit past the deadline expires instead", func(t *testing.T) {
		now := start.Add(11 * time.Minute)
		repo := newMockRepository()
		active := &MockActiveAttemptCache{}
		publisher := events.NewMockEventPublisher(testLogger())
		svc := newTestAttemptService(repo, active, publisher, now)

		attempt := inProgressAttempt(start, `{"10":{"kind":"single","label":"A"}}`)
		repo.attemptRepo.On("GetByID", mock.Anything, "attempt-1").Return(attempt, nil)
		repo.quizRepo.On("GetByIDWithQuestions", mock.Anything, uint(1)).Return(singleChoiceQuiz(), nil)
		repo.attemptRepo.On("Update", mock.Anything, attempt).Return(nil)
		active.On("Clear", mock.Anything, "holder-1", uint(1)).Return(nil)

		_, err := svc.Submit(context.Background(), "attempt-1", "holder-1")
		assert.ErrorIs(t, err, ErrAttemptTimeExpired)

		// Answers given before the deadline still graded.
		assert.Equal(t, models.AttemptStatusExpired, attempt.Status)
		require.NotNil(t, attempt.Score)
		assert.Equal(t, 5.0, *attempt.Score)
		assert.Nil(t, attempt.SubmittedAt)
	})

	t.Run("terminal attempt rejects a second submit", func(t *testing.T) {
		repo := newMockRepository()
		active := &MockActiveAttemptCache{}
		publisher := events.NewMockEventPublisher(testLogger())
		svc := newTestAttemptService(repo, active, publisher, start)

		attempt := inProgressAttempt(start, `{}`)
		attempt.Status = models.AttemptStatusSubmitted
		repo.attemptRepo.On("GetByID", mock.Anything, "attempt-1").Return(attempt, nil)

		_, err := svc.Submit(context.Background(), "attempt-1", "holder-1")
		assert.ErrorIs(t, err, ErrAttemptAlreadySubmitted)
	})

	t.Run("foreign attempt is not reachable", func(t *testing.T) {
		repo := newMockRepository()
		active := &MockActiveAttemptCache{}
		publisher := events.NewMockEventPublisher(testLogger())
		svc := newTestAttemptService(repo, active, publisher, start)

		repo.attemptRepo.On("GetByID", mock.Anything, "attempt-1").Return(inProgressAttempt(start, `{}`), nil)

		_, err := svc.Submit(context.Background(), "attempt-1", "someone-else")
		assert.ErrorIs(t, err, ErrAttemptNotOwned)
	})
}

func TestAttemptService_SubmitAnswer(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("records and persists the answer", func(t *testing.T) {
		now := start.Add(time.Minute)
		repo := newMockRepository()
		active := &MockActiveAttemptCache{}
		publisher := events.NewMockEventPublisher(testLogger())
		svc := newTestAttemptService(repo, active, publisher, now)

		attempt := inProgressAttempt(start, `{}`)
		repo.attemptRepo.On("GetByID", mock.Anything, "attempt-1").Return(attempt, nil)
		repo.quizRepo.On("GetByIDWithQuestions", mock.Anything, uint(1)).Return(singleChoiceQuiz(), nil)
		repo.attemptRepo.On("Update", mock.Anything, attempt).Return(nil)

		err := svc.SubmitAnswer(context.Background(), "attempt-1", "holder-1", 10, session.SingleLabel("B"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"10":{"kind":"single","label":"B"}}`, string(attempt.Answers))
	})

	t.Run("shape mismatch is rejected without a write", func(t *testing.T) {
		now := start.Add(time.Minute)
		repo := newMockRepository()
		active := &MockActiveAttemptCache{}
		publisher := events.NewMockEventPublisher(testLogger())
		svc := newTestAttemptService(repo, active, publisher, now)

		attempt := inProgressAttempt(start, `{}`)
		repo.attemptRepo.On("GetByID", mock.Anything, "attempt-1").Return(attempt, nil)
		repo.quizRepo.On("GetByIDWithQuestions", mock.Anything, uint(1)).Return(singleChoiceQuiz(), nil)

		err := svc.SubmitAnswer(context.Background(), "attempt-1", "holder-1", 10, session.LabelSet("A", "B"))
		assert.ErrorIs(t, err, ErrInvalidAnswerShape)
		repo.attemptRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("late answer finalizes the attempt", func(t *testing.T) {
		now := start.Add(20 * time.Minute)
		repo := newMockRepository()
		active := &MockActiveAttemptCache{}
		publisher := events.NewMockEventPublisher(testLogger())
		svc := newTestAttemptService(repo, active, publisher, now)

		attempt := inProgressAttempt(start, `{}`)
		repo.attemptRepo.On("GetByID", mock.Anything, "attempt-1").Return(attempt, nil)
		repo.quizRepo.On("GetByIDWithQuestions", mock.Anything, uint(1)).Return(singleChoiceQuiz(), nil)
		repo.attemptRepo.On("Update", mock.Anything, attempt).Return(nil)
		active.On("Clear", mock.Anything, "holder-1", uint(1)).Return(nil)

		err := svc.SubmitAnswer(context.Background(), "attempt-1", "holder-1", 10, session.SingleLabel("A"))
		assert.ErrorIs(t, err, ErrAttemptTimeExpired)
		assert.Equal(t, models.AttemptStatusExpired, attempt.Status)

		// The late value was not recorded.
		assert.JSONEq(t, `{}`, string(attempt.Answers))
	})
}

func TestAttemptService_GetResult(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	repo := newMockRepository()
	active := &MockActiveAttemptCache{}
	publisher := events.NewMockEventPublisher(testLogger())
	svc := newTestAttemptService(repo, active, publisher, start)

	t.Run("ungraded attempt has no result", func(t *testing.T) {
		repo.attemptRepo.On("GetByPair", mock.Anything, "holder-1", uint(1)).Return(inProgressAttempt(start, `{}`), nil).Once()

		_, err := svc.GetResult(context.Background(), 1, "holder-1")
		assert.ErrorIs(t, err, ErrAttemptNotGraded)
	})

	t.Run("graded attempt is returned", func(t *testing.T) {
		score := 7.5
		gradedAt := start.Add(10 * time.Minute)
		graded := inProgressAttempt(start, `{}`)
		graded.Status = models.AttemptStatusSubmitted
		graded.Score = &score
		graded.GradedAt = &gradedAt
		repo.attemptRepo.On("GetByPair", mock.Anything, "holder-1", uint(1)).Return(graded, nil).Once()

		result, err := svc.GetResult(context.Background(), 1, "holder-1")
		require.NoError(t, err)
		assert.Equal(t, 7.5, *result.Score)
	})
}

func TestAttemptService_HandleTimeouts(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	now := start.Add(15 * time.Minute)

	repo := newMockRepository()
	active := &MockActiveAttemptCache{}
	publisher := events.NewMockEventPublisher(testLogger())
	svc := newTestAttemptService(repo, active, publisher, now)

	overdue := inProgressAttempt(start, `{"10":{"kind":"single","label":"A"}}`)
	fresh := inProgressAttempt(start.Add(10*time.Minute), `{}`)
	fresh.ID = "attempt-2"

	repo.attemptRepo.On("GetInProgress", mock.Anything).Return([]*models.Attempt{overdue, fresh}, nil)
	repo.quizRepo.On("GetByIDWithQuestions", mock.Anything, uint(1)).Return(singleChoiceQuiz(), nil)
	repo.attemptRepo.On("Update", mock.Anything, overdue).Return(nil)
	active.On("Clear", mock.Anything, "holder-1", uint(1)).Return(nil)

	expired, err := svc.HandleTimeouts(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	assert.Equal(t, models.AttemptStatusExpired, overdue.Status)
	assert.Equal(t, models.AttemptStatusInProgress, fresh.Status)
	repo.attemptRepo.AssertNotCalled(t, "Update", mock.Anything, fresh)
}
