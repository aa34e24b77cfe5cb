package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rakitcita/platform-service/internal/models"
)

// Validator wraps go-playground/validator with the platform's custom rules.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Enum rules share the model types so the lists can't drift apart.
	_ = v.RegisterValidation("course_level", func(fl validator.FieldLevel) bool {
		return models.CourseLevel(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("community_role", func(fl validator.FieldLevel) bool {
		return models.CommunityRole(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("platform_role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).Valid()
	})

	return &Validator{validate: v}
}

// Validate runs struct-tag validation and converts failures into
// ValidationErrors.
func (v *Validator) Validate(s any) error {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidationError describes a single failed field rule.
type ValidationError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// ToValidationErrors converts a go-playground error into ValidationErrors.
func ToValidationErrors(err error) ValidationErrors {
	var out ValidationErrors

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{Field: "", Rule: "struct", Message: err.Error()}}
	}

	for _, fe := range fieldErrors {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: messageFor(fe),
		})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "course_level":
		return fmt.Sprintf("%s must be one of beginner, intermediate, advanced, all", fe.Field())
	case "community_role":
		return fmt.Sprintf("%s must be one of member, moderator, admin", fe.Field())
	case "platform_role":
		return fmt.Sprintf("%s must be one of user, mentor, admin", fe.Field())
	default:
		return fmt.Sprintf("%s failed rule %s", fe.Field(), fe.Tag())
	}
}
