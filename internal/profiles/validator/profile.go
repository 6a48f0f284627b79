package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"slotbook/pkg/logger"
	"slotbook/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Fields returns the first message for each field, keyed by JSON name.
func (v ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(v))
	for _, err := range v {
		if _, ok := out[err.Field]; !ok {
			out[err.Field] = err.Message
		}
	}
	return out
}

// fieldMessages are the contact form messages shown under each input.
var fieldMessages = map[string]string{
	"name":  "Name must be at least 2 characters",
	"email": "Please enter a valid email address",
	"phone": "Phone number must be at least 10 digits",
}

type ProfileValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewProfileValidator(log *logger.Logger) *ProfileValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)

	log.Debug("Profile validator initialized successfully")

	return &ProfileValidator{
		validate: v,
		logger:   log,
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

func (v *ProfileValidator) Validate(profile *model.ContactProfile) error {
	if profile == nil {
		return ValidationErrors{{Field: "profile", Message: "profile is required"}}
	}
	if err := v.validate.Struct(profile); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *ProfileValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message, ok := fieldMessages[err.Field()]
		if !ok {
			switch err.Tag() {
			case "required":
				message = fmt.Sprintf("%s is required", err.Field())
			case "min":
				message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
			default:
				message = err.Error()
			}
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
