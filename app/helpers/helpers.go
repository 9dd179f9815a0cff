package helpers

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type contextKey string

const (
	ContextKeyPrincipal contextKey = "principal"
	ContextKeyRequestID contextKey = "requestID"
)

// Principal is the authenticated caller attached to a request context.
type Principal struct {
	ID       uint64
	Email    string
	Username string
	IsStaff  bool
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ContextKeyPrincipal, p)
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(ContextKeyPrincipal).(*Principal)
	return p, ok && p != nil
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyRequestID).(string)
	return id
}

// NewValidator reports fields by their json names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return strings.ToLower(fld.Name)
		}
		return name
	})
	return v
}

func FormatValidationErrors(errs validator.ValidationErrors) map[string]string {
	errorMessages := make(map[string]string)
	for _, err := range errs {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errorMessages[field] = "This field is required."
		case "email":
			errorMessages[field] = "Enter a valid email address."
		case "min":
			if err.Kind() == reflect.String {
				errorMessages[field] = fmt.Sprintf("Ensure this field has at least %s characters.", err.Param())
			} else {
				errorMessages[field] = fmt.Sprintf("Ensure this value is at least %s.", err.Param())
			}
		case "max":
			if err.Kind() == reflect.String {
				errorMessages[field] = fmt.Sprintf("Ensure this field has no more than %s characters.", err.Param())
			} else {
				errorMessages[field] = fmt.Sprintf("Ensure this value is at most %s.", err.Param())
			}
		case "gt", "gte":
			errorMessages[field] = fmt.Sprintf("Ensure this value is greater than %s%s.", orEqual(err.Tag()), err.Param())
		case "eqfield":
			errorMessages[field] = "Password fields didn't match."
		case "oneof":
			errorMessages[field] = fmt.Sprintf("%q is not a valid choice.", fmt.Sprint(err.Value()))
		case "url":
			errorMessages[field] = "Enter a valid URL."
		default:
			errorMessages[field] = fmt.Sprintf("Validation failed on the %s rule.", err.Tag())
		}
	}
	return errorMessages
}

func orEqual(tag string) string {
	if tag == "gte" {
		return "or equal to "
	}
	return ""
}
