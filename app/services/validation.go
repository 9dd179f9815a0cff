package services

import (
	"errors"
	"strings"

	"github.com/Rakhulsr/go-storefront/app/helpers"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/go-playground/validator/v10"
)

func validateStruct(v *validator.Validate, s any) error {
	if err := v.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return &ValidationError{Fields: helpers.FormatValidationErrors(verrs)}
		}
		return err
	}
	return nil
}

// conflictFromDuplicate converts a unique-index violation into a field
// conflict. Keys are matched against fragments of the MySQL index name.
func conflictFromDuplicate(err error, fields map[string]string) (error, bool) {
	if !repositories.IsDuplicateKey(err) {
		return err, false
	}
	var dup *repositories.DuplicateKeyError
	if errors.As(err, &dup) {
		for fragment, field := range fields {
			if strings.Contains(dup.Key, fragment) {
				return NewConflictError(field, "This value is already in use."), true
			}
		}
	}
	return &ConflictError{Fields: map[string]string{"non_field_errors": "A record with these values already exists."}}, true
}
