package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sinh-x/google-classroom-mcp/internal/models"
)

var validate = newValidator()

// newValidator reports fields by their json argument names
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseToolArgs decodes raw tool arguments into v and validates its struct
// tags. Missing arguments decode as an empty object. Errors wrap
// models.ErrInvalidInput.
func ParseToolArgs(raw json.RawMessage, v interface{}) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		trimmed = []byte("{}")
	}

	if err := json.Unmarshal(trimmed, v); err != nil {
		return fmt.Errorf("%w: failed to parse tool arguments: %v", models.ErrInvalidInput, err)
	}

	if err := validate.Struct(v); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			missing := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				missing = append(missing, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: invalid arguments: %s", models.ErrInvalidInput, strings.Join(missing, ", "))
		}
		return fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	return nil
}

// FormatResult renders a tool result as indented JSON
func FormatResult(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return FormatError(err)
	}
	return string(data)
}

// FormatError renders a failure as the user-facing tool output
func FormatError(err error) string {
	return "Error: " + err.Error()
}

// IsErrorOutput reports whether a rendered tool output is a failure
func IsErrorOutput(output string) bool {
	return strings.HasPrefix(output, "Error: ")
}
