package relay

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/heapdog/heapdog/internal/domain"
)

// AppValidator adapts go-playground/validator to echo's Validator interface.
// Field names in validation errors use the json tag so the caller sees the
// wire name, not the Go struct field.
type AppValidator struct {
	validator *validator.Validate
}

// NewAppValidator creates a new AppValidator.
func NewAppValidator() *AppValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &AppValidator{validator: v}
}

// Validate checks a struct against its validate tags. Only the first failing
// field is reported; one actionable message per request.
func (v *AppValidator) Validate(i any) error {
	err := v.validator.Struct(i)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	fe := validationErrors[0]
	return &domain.ValidationError{
		Field:   fe.Field(),
		Message: ruleMessage(fe),
	}
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must have at least %s elements", fe.Param())
	default:
		return fmt.Sprintf("does not satisfy the '%s' rule", fe.Tag())
	}
}
