package rest

import (
	"context"
	"errors"
	"fmt"
	"html"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/issuetrack/tracker"
	"github.com/microcosm-cc/bluemonday"
)

type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is rendered as 422 by ErrorHandler.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	fields := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		fields[i] = v.Field
	}
	return "validation failed: " + strings.Join(fields, ", ")
}

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	strict := bluemonday.StrictPolicy()
	mustRegister := func(tag string, fn validator.Func) {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register %s validation: %s", tag, err))
		}
	}
	mustRegister("notblank", validators.NotBlank)
	mustRegister("channel", func(fl validator.FieldLevel) bool {
		return tracker.ChannelType(fl.Field().String()).Valid()
	})
	mustRegister("notification", func(fl validator.FieldLevel) bool {
		return tracker.NotificationType(fl.Field().String()).Valid()
	})
	mustRegister("nohtml", func(fl validator.FieldLevel) bool {
		return !containsMarkup(strict, fl.Field().String())
	})
	return &Validator{validate: validate}
}

// containsMarkup reports whether the policy strips a closed tag from value.
// Entities and a stray "<" left unterminated are plain text.
func containsMarkup(policy *bluemonday.Policy, value string) bool {
	if html.UnescapeString(policy.Sanitize(value)) == html.UnescapeString(value) {
		return false
	}
	lt := strings.IndexByte(value, '<')
	return lt >= 0 && strings.IndexByte(value[lt:], '>') >= 0
}

// Struct returns *ValidationError listing every failed field.
func (v *Validator) Struct(ctx context.Context, s interface{}) error {
	err := v.validate.StructCtx(ctx, s)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return fmt.Errorf("validate: %w", err)
	}

	violations := make([]Violation, len(fieldErrors))
	for i, fe := range fieldErrors {
		violations[i] = Violation{
			Field:   fieldPath(fe.Namespace()),
			Message: violationMessage(fe),
		}
	}
	return &ValidationError{Violations: violations}
}

// "profileRequest.contacts[0].value" -> "contacts[0].value"
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "max":
		return "must be at most " + fe.Param() + " characters long"
	case "channel":
		return fmt.Sprintf("unknown channel type %q", fe.Value())
	case "notification":
		return fmt.Sprintf("unknown notification type %q", fe.Value())
	case "nohtml":
		return "must not contain markup"
	case "unique":
		return "must not repeat " + strings.ToLower(fe.Param())
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}
