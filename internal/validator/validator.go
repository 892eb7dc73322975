package validator

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/JobHunter-2025/skill-assessment-service/internal/errors"
	"github.com/JobHunter-2025/skill-assessment-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Use shared validation errors from errors package
type ValidationError = errors.ValidationError
type ValidationErrors = errors.ValidationErrors

// Validator wraps struct-tag validation with the domain's custom rules.
type Validator struct {
	structValidator *validator.Validate
}

// New creates the validator instance with all custom rules registered.
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{structValidator: structValidator}
}

// Validate validates struct tags and converts failures to the shared
// ValidationErrors type.
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if ve := errors.ToValidationErrors(err); len(ve) > 0 {
			return ve
		}
		return err
	}
	return nil
}

var optionLabelRe = regexp.MustCompile(`^[A-Z]$`)

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("option_label", validateOptionLabel)
	validate.RegisterValidation("quiz_duration", validateQuizDuration)

	// Report json field names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateQuestionType(fl validator.FieldLevel) bool {
	validTypes := []models.QuestionType{
		models.SingleChoice,
		models.MultiSelect,
		models.FreeText,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func validateOptionLabel(fl validator.FieldLevel) bool {
	return optionLabelRe.MatchString(fl.Field().String())
}

func validateQuizDuration(fl validator.FieldLevel) bool {
	seconds := fl.Field().Int()
	return seconds >= 30 && seconds <= 14400
}
