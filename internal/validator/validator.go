package validator

import (
	"reflect"
	"strings"

	apperrors "github.com/gradeworks/evaluation-service/internal/errors"
	"github.com/gradeworks/evaluation-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator combines struct-tag validation with assessment business rules.
type Validator struct {
	structValidator *validator.Validate
}

func New() *Validator {
	v := validator.New()

	v.RegisterValidation("user_role", validateUserRole)

	// Report json tag names in error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{structValidator: v}
}

// ValidateStruct validates struct tags only.
func (v *Validator) ValidateStruct(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if errs := apperrors.ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// ValidateAssessment checks the construction-time rules the pipeline relies
// on: at least one question, positive marks, unique non-empty question ids.
func (v *Validator) ValidateAssessment(a *models.Assessment) apperrors.ValidationErrors {
	var errs apperrors.ValidationErrors

	if len(a.Questions) == 0 {
		errs = append(errs, *apperrors.NewValidationError("questions", "must contain at least one question", nil))
		return errs
	}

	seen := make(map[string]bool, len(a.Questions))
	for i, q := range a.Questions {
		if strings.TrimSpace(q.ID) == "" {
			errs = append(errs, *apperrors.NewValidationError("questions", "question id must be non-empty", i))
			continue
		}
		if seen[q.ID] {
			errs = append(errs, *apperrors.NewValidationError("questions", "duplicate question id", q.ID))
		}
		seen[q.ID] = true
		if q.Marks <= 0 {
			errs = append(errs, *apperrors.NewValidationError("questions", "marks must be positive", q.ID))
		}
		if strings.TrimSpace(q.Text) == "" {
			errs = append(errs, *apperrors.NewValidationError("questions", "question text must be non-empty", q.ID))
		}
	}

	return errs
}

func validateUserRole(fl validator.FieldLevel) bool {
	switch models.UserRole(fl.Field().String()) {
	case models.RoleTeacher, models.RoleStudent:
		return true
	}
	return false
}
