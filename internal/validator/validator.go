package validator

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/pauljones0/deal-finder/internal/models"
)

// DateLayouts are the accepted encodings of a deal expiry.
var DateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// Validator is a wrapper around the validator library.
type Validator struct {
	validate *validator.Validate
}

// New creates a new Validator instance with the custom tags used by the models.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	mustRegister(v, "notblank", validators.NotBlank)
	mustRegister(v, "datetime_any", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String(), time.UTC)
		return err == nil
	})
	mustRegister(v, "link_target", func(fl validator.FieldLevel) bool {
		return IsLinkTarget(fl.Field().String())
	})
	return &Validator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// ValidateStruct validates a struct based on its tags. Field failures come back
// as a *models.ValidationError.
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validation failed: %w", err)
	}
	ve := &models.ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		ve.Fields[fe.Field()] = message(fe)
	}
	return ve
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "gt":
		return "must be a positive number"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "http_url":
		return "must be a valid URL"
	case "datetime_any":
		return "must be a valid date"
	case "link_target":
		return "must be a valid URL, a site path or '#'"
	default:
		return fmt.Sprintf("failed %s", fe.Tag())
	}
}

// ParseDate parses s with the first matching layout of DateLayouts. Layouts
// without a zone are interpreted in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range DateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// IsLinkTarget accepts an absolute http(s) URL, a site-relative path or the "#" placeholder.
func IsLinkTarget(s string) bool {
	if s == "#" {
		return true
	}
	if strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//") {
		return true
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
