package equipment

import (
	"errors"
	"strings"

	"gearlog/internal/pkg/validator"
)

var (
	ErrEquipmentNotFound      = errors.New("equipment not found")
	ErrRetailerLinkNotFound   = errors.New("retailer link not found")
	ErrAuthenticationRequired = errors.New("authentication required")
)

// ValidationError carries per-field messages for a rejected payload.
type ValidationError struct {
	Fields validator.FieldErrors
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields.Fields(), ", ")
}

func fieldError(field, msg string) error {
	return &ValidationError{Fields: validator.FieldErrors{field: {msg}}}
}
