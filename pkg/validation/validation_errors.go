package validation

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
)

// Messages for tags whose wording does not depend on the parameter
var tagMessages = map[string]string{
	"required":     "This field is required.",
	"email":        "Enter a valid email address.",
	"valid_mobile": "Enter a valid 10-digit mobile number.",
	"valid_name":   "Enter a valid name. Only letters, spaces and . ' - are allowed.",
	"no_emoji":     "Emoji and special symbols are not allowed.",
	"past_date":    "Date must be in the past.",
	"datetime":     "Enter a valid date.",
	"oneof":        "Select a valid choice.",
}

// FieldErrors converts validator.ValidationErrors into a map keyed by the
// client facing field name. Only the first failure per field is kept.
// Non validation errors come back under the "__all__" key.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"__all__": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, e := range verrs {
		if _, seen := out[e.Field()]; seen {
			continue
		}
		out[e.Field()] = Message(e)
	}
	return out
}

// FormatValidationErrors flattens FieldErrors into "field: message" lines,
// sorted by field name.
func FormatValidationErrors(err error) []string {
	return FormatFields(FieldErrors(err))
}

// FormatFields renders a field error map as sorted "field: message" lines.
func FormatFields(fields map[string]string) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	messages := make([]string, 0, len(keys))
	for _, k := range keys {
		messages = append(messages, fmt.Sprintf("%s: %s", k, fields[k]))
	}
	return messages
}

// Message renders a single validation failure.
func Message(e validator.FieldError) string {
	if msg, ok := tagMessages[e.Tag()]; ok {
		return msg
	}

	switch e.Tag() {
	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("Ensure this value has at least %s characters.", e.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", e.Param())
	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("Ensure this value has at most %s characters.", e.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", e.Param())
	case "eqfield":
		return "The two password fields didn't match."
	default:
		return fmt.Sprintf("Invalid value (%s).", e.Tag())
	}
}
