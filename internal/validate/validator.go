package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground/validator and reports failures as Errors
// keyed by the struct's `form` tag.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Struct validates s. The returned error is Errors for field failures.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := Errors{}
	for _, e := range verrs {
		out.Add(e.Field(), friendlyMessage(e))
	}
	return out
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", e.Param())
	case "oneof":
		return "Select a valid choice."
	case "number":
		return "Select a valid choice."
	case "datetime":
		return "Enter a valid date."
	case "email":
		return "Enter a valid email address."
	default:
		return "Enter a valid value."
	}
}
