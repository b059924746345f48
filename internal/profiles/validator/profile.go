package validator

import (
	"errors"
	"fmt"
	"strings"

	"travelpartner/pkg/logger"
	"travelpartner/pkg/model"

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

type ProfileValidator struct {
	validate *validator.Validate
}

func NewProfileValidator(log *logger.Logger) *ProfileValidator {
	v := validator.New()
	v.RegisterStructValidation(validateAccountShape, model.Profile{})

	log.Info("Profile validator initialized successfully")

	return &ProfileValidator{validate: v}
}

// validateAccountShape keeps the profile a proper tagged record: business
// details exist exactly on business accounts.
func validateAccountShape(sl validator.StructLevel) {
	p := sl.Current().Interface().(model.Profile)
	switch p.AccountType {
	case model.AccountBusiness:
		if p.Business == nil {
			sl.ReportError(p.Business, "business", "Business", "business_required", "")
		}
	case model.AccountUser:
		if p.Business != nil {
			sl.ReportError(p.Business, "business", "Business", "business_forbidden", "")
		}
	}
}

func (v *ProfileValidator) Validate(p *model.Profile) error {
	if err := v.validate.Struct(p); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "email":
			message = "email must be a valid address"
		case "e164":
			message = "phone must be a valid international number"
		case "url":
			message = "website must be a valid URL"
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "business_required":
			message = "business accounts must include business details"
		case "business_forbidden":
			message = "business details are only allowed on business accounts"
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Namespace(),
			Message: message,
		})
	}

	return validationErrors
}
