package validation

import (
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

// Regex patterns
var (
	// Letters, spaces and the punctuation people put in names: . ' -
	nameRegex = regexp.MustCompile(`^[\p{L} .'-]+$`)

	// Exactly ten ASCII digits, no separators or country code
	mobileRegex = regexp.MustCompile(`^[0-9]{10}$`)
)

// New returns a validator with the custom tags registered. Field names in
// errors come from the form or json tag so they match what the client sent.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	RegisterValidators(v)
	return v
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("valid_name", ValidName)
	_ = v.RegisterValidation("valid_mobile", ValidMobile)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
	_ = v.RegisterValidation("past_date", PastDate)
}

// ValidName validates that a string contains only valid name characters.
// Rejects digits and most special symbols.
func ValidName(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true // Optional, use required if needed
	}
	return nameRegex.MatchString(val)
}

// ValidMobile accepts exactly ten digits.
func ValidMobile(fl validator.FieldLevel) bool {
	return mobileRegex.MatchString(fl.Field().String())
}

// NoEmoji validates that a string does not contain emoji characters
func NoEmoji(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		// Supplementary planes are mostly emoji and pictographs
		if r > 0x1F000 {
			return false
		}
		if unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}

// PastDate requires a date strictly before now. It accepts time.Time and
// YYYY-MM-DD strings. Zero times and unparsable strings pass so the tag can be
// combined with omitempty and datetime.
func PastDate(fl validator.FieldLevel) bool {
	var t time.Time
	switch v := fl.Field().Interface().(type) {
	case time.Time:
		t = v
	case string:
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			return true
		}
		t = parsed
	default:
		return false
	}
	if t.IsZero() {
		return true
	}
	return t.Before(time.Now())
}
