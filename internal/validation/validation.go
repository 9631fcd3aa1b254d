package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"literacytrack/internal/models"
)

var validate = newValidator()

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Errors is every validation failure found on one input
type Errors []ValidationError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "; ")
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).IsValid()
	})
	v.RegisterValidation("readinglevel", func(fl validator.FieldLevel) bool {
		level := models.ReadingLevel(fl.Field().String())
		return level == "" || level == models.ReadingLevelNotAssessed || knownLevel(level)
	})

	return v
}

func knownLevel(level models.ReadingLevel) bool {
	switch level {
	case models.ReadingLevelLowEmerging,
		models.ReadingLevelHighEmerging,
		models.ReadingLevelDeveloping,
		models.ReadingLevelTransitioning,
		models.ReadingLevelAtGradeLevel:
		return true
	}
	return false
}

// Struct checks the validate tags on s and returns Errors when any fail
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{Field: fieldPath(fe), Message: message(fe)})
	}
	return out
}

// IsValidationError reports whether err carries input validation failures
func IsValidationError(err error) bool {
	var errs Errors
	if errors.As(err, &errs) {
		return true
	}
	var single ValidationError
	return errors.As(err, &single)
}

// fieldPath drops the root struct name from the namespace
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "category":
		return fmt.Sprintf("%s is not a known reading category", fe.Field())
	case "readinglevel":
		return fmt.Sprintf("%s is not a known reading level", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
