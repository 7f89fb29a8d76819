package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/quizdesk/quiz-service/internal/errors"
	"github.com/quizdesk/quiz-service/internal/models"
)

// Validator wraps go-playground struct validation with the custom rules the
// quiz domain needs.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New()

	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("quiz_status", validateQuizStatus)
	validate.RegisterValidation("role_name", validateRoleName)

	// Report json field names instead of Go struct fields
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: validate}
}

// Validate checks struct tags and converts failures to the shared
// ValidationErrors type so handlers can render field-level details.
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		if ve := apperrors.ToValidationErrors(err); len(ve) > 0 {
			return ve
		}
		return err
	}
	return nil
}

func validateQuestionType(fl validator.FieldLevel) bool {
	return fl.Field().String() == string(models.MultipleChoice)
}

func validateQuizStatus(fl validator.FieldLevel) bool {
	switch models.QuizStatus(fl.Field().String()) {
	case models.QuizPublished, models.QuizCompleted, models.QuizReviewed:
		return true
	}
	return false
}

func validateRoleName(fl validator.FieldLevel) bool {
	switch models.RoleName(fl.Field().String()) {
	case models.RoleStudent, models.RoleMentor, models.RoleAdmin:
		return true
	}
	return false
}
