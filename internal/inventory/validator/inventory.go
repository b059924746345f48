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

type InventoryValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewInventoryValidator(log *logger.Logger) *InventoryValidator {
	v := validator.New()
	v.RegisterStructValidation(validateFareClass, model.FareClass{})
	v.RegisterStructValidation(validateInventoryItem, model.InventoryItem{})

	log.Info("Inventory validator initialized successfully")

	return &InventoryValidator{
		validate: v,
		logger:   log,
	}
}

// validateFareClass rejects duplicate seat numbers within one class.
func validateFareClass(sl validator.StructLevel) {
	fc := sl.Current().Interface().(model.FareClass)
	seen := make(map[string]struct{}, len(fc.Seats))
	for _, s := range fc.Seats {
		if _, dup := seen[s.SeatNumber]; dup {
			sl.ReportError(fc.Seats, "seats", "Seats", "unique_seat_numbers", s.SeatNumber)
			return
		}
		seen[s.SeatNumber] = struct{}{}
	}
}

func validateInventoryItem(sl validator.StructLevel) {
	item := sl.Current().Interface().(model.InventoryItem)
	seen := make(map[string]struct{}, len(item.FareClasses))
	for _, fc := range item.FareClasses {
		if _, dup := seen[fc.ClassType]; dup {
			sl.ReportError(item.FareClasses, "fare_classes", "FareClasses", "unique_class_types", fc.ClassType)
			return
		}
		seen[fc.ClassType] = struct{}{}
	}
	if item.Source.CityKey != "" && item.Source.CityKey == item.Destination.CityKey && item.Source.Code == item.Destination.Code {
		sl.ReportError(item.Destination, "destination", "Destination", "distinct_endpoints", "")
	}
}

func (v *InventoryValidator) Validate(item *model.InventoryItem) error {
	return v.validateStruct(item)
}

func (v *InventoryValidator) ValidateStatus(update *model.InventoryStatusUpdate) error {
	return v.validateStruct(update)
}

func (v *InventoryValidator) validateStruct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *InventoryValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "gtfield":
			message = "arrival_time must be after departure_time"
		case "iso4217":
			message = fmt.Sprintf("%s must be an ISO-4217 currency code", err.Field())
		case "unique_seat_numbers":
			message = fmt.Sprintf("seat number %s appears more than once in a fare class", err.Param())
		case "unique_class_types":
			message = fmt.Sprintf("fare class %s appears more than once", err.Param())
		case "distinct_endpoints":
			message = "source and destination must differ"
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Namespace(),
			Message: message,
		})
	}

	return validationErrors
}
