package services

import (
	"errors"

	apperrors "github.com/JobHunter-2025/skill-assessment-service/internal/errors"
	"github.com/JobHunter-2025/skill-assessment-service/internal/session"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")

	// Question specific errors
	ErrQuestionNotFound    = errors.New("question not found")
	ErrQuestionInvalidType = errors.New("invalid question type")
	ErrQuestionInUse       = errors.New("question cannot be deleted - referenced by quizzes")

	// Quiz specific errors
	ErrQuizNotFound        = errors.New("quiz not found")
	ErrQuizEmpty           = errors.New("quiz must reference at least one question")
	ErrQuizUnknownQuestion = errors.New("quiz references a question that does not exist")

	// Attempt specific errors
	ErrAttemptNotFound      = errors.New("attempt not found")
	ErrAttemptAlreadyActive = errors.New("an unresolved attempt already exists for this quiz")
	ErrAttemptNotActive     = errors.New("attempt is not in progress")
	ErrAttemptTimeExpired   = errors.New("attempt time has expired")
	ErrAttemptNotOwned      = errors.New("attempt belongs to a different holder")
	ErrAttemptNotGraded     = errors.New("attempt has no graded result yet")
)

// Session-level errors surface through the service unchanged so callers can
// match them with errors.Is.
var (
	ErrAttemptAlreadySubmitted = session.ErrAlreadySubmitted
	ErrInvalidAnswerShape      = session.ErrInvalidAnswerShape
)

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrAttemptNotFound)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrAttemptAlreadyActive) ||
		errors.Is(err, ErrAttemptAlreadySubmitted) ||
		errors.Is(err, ErrAttemptNotActive) ||
		errors.Is(err, ErrAttemptNotGraded) ||
		errors.Is(err, ErrQuestionInUse)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrInvalidAnswerShape) ||
		errors.Is(err, ErrQuestionInvalidType) ||
		errors.Is(err, ErrQuizEmpty) ||
		errors.Is(err, ErrQuizUnknownQuestion) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *apperrors.ValidationError
	return errors.As(err, &single)
}
