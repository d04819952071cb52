package handlers

import (
	"github.com/go-playground/validator/v10"

	"github.com/danabekov/techstore/internal/apperrors"
)

var validColors = map[string]struct{}{
	"Black": {}, "White": {}, "Yellow": {}, "Green": {}, "Blue": {},
	"Red": {}, "Silver": {}, "Gold": {}, "Deep Purple": {}, "Lavender": {},
	"Cream": {}, "Space Gray": {}, "Starlight": {}, "Midnight": {},
}

// Validator adapts go-playground/validator to echo's Validator interface and
// turns failures into the per-field details the error body carries.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("productcolor", func(fl validator.FieldLevel) bool {
		_, ok := validColors[fl.Field().String()]
		return ok
	})
	return &Validator{validate: v}
}

func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.Internal(err)
	}

	details := make([]map[string]string, 0, len(ve))
	for _, fe := range ve {
		details = append(details, map[string]string{
			"field": fe.Field(),
			"rule":  fe.Tag(),
		})
	}
	return apperrors.Validation(details)
}
