package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validator adapts go-playground/validator to echo.Validator, reporting
// fields by their JSON names.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

func (cv *Validator) Validate(i any) error {
	return cv.v.Struct(i)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", fe.Field())
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", fe.Field())
	case "min", "gte":
		return fmt.Sprintf("The %s field must be at least %s.", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("The %s field must not be greater than %s.", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("The %s field is invalid.", fe.Field())
}

// validationError renders a 422 with per-field messages.
func validationError(err error) *echo.HTTPError {
	fields := map[string][]string{}
	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		for _, fe := range ves {
			fields[fe.Field()] = append(fields[fe.Field()], fieldMessage(fe))
		}
	}
	return echo.NewHTTPError(http.StatusUnprocessableEntity, echo.Map{
		"message": "The given data was invalid.",
		"errors":  fields,
	})
}
