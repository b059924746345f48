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

type CheckoutValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewCheckoutValidator(log *logger.Logger) *CheckoutValidator {
	v := validator.New()

	log.Info("Checkout validator initialized successfully")

	return &CheckoutValidator{
		validate: v,
		logger:   log,
	}
}

// Validate checks the request fields and that it names exactly one passenger
// for every selected seat.
func (v *CheckoutValidator) Validate(req *model.CheckoutRequest, seats []string) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if len(seats) == 0 {
		return ValidationErrors{{
			Field:   "seats",
			Message: "at least one seat must be selected",
		}}
	}

	if len(req.Passengers) != len(seats) {
		return ValidationErrors{{
			Field:   "passengers",
			Message: fmt.Sprintf("passengers count (%d) must equal selected seats (%d)", len(req.Passengers), len(seats)),
		}}
	}

	return nil
}

func (v *CheckoutValidator) ValidateConfirmation(c *model.PaymentConfirmation) error {
	return v.validateStruct(c)
}

func (v *CheckoutValidator) ValidateFailure(f *model.PaymentFailure) error {
	return v.validateStruct(f)
}

func (v *CheckoutValidator) validateStruct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *CheckoutValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "uuid":
			message = fmt.Sprintf("%s must be a valid UUID", err.Field())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "e164":
			message = fmt.Sprintf("%s must be in E.164 format (e.g., +919876543210)", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "hexadecimal":
			message = fmt.Sprintf("%s must be a hex string", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Namespace(),
			Message: message,
		})
	}

	return validationErrors
}
