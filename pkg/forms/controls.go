package forms

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dukex/flowstudio/pkg/models"
)

// Control is the editor widget bound to a field.
type Control string

const (
	ControlText     Control = "text"
	ControlTextArea Control = "textarea"
	ControlNumber   Control = "number"
	ControlToggle   Control = "toggle"
	ControlSelect   Control = "select"
	ControlJSON     Control = "json"
)

var multiLineHints = []string{"format", "message", "script"}

// ControlFor maps a property schema to its editor control.
func ControlFor(property models.PropertySchema) Control {
	switch property.Type {
	case models.PropertyTypeNumber, models.PropertyTypeInteger:
		return ControlNumber
	case models.PropertyTypeBoolean:
		return ControlToggle
	case models.PropertyTypeSelect:
		return ControlSelect
	case models.PropertyTypeObject, models.PropertyTypeArray:
		return ControlJSON
	}

	if len(property.Options) > 0 {
		return ControlSelect
	}

	name := strings.ToLower(property.Name)
	for _, hint := range multiLineHints {
		if strings.Contains(name, hint) {
			return ControlTextArea
		}
	}

	return ControlText
}

// IsExpression reports whether a value is a "{{ ... }}" expression string.
func IsExpression(value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}

	s = strings.TrimSpace(s)

	return strings.HasPrefix(s, "{{") && strings.HasSuffix(s, "}}")
}

// ParseInput converts the raw editor text of a field into its config value.
// Expressions are kept verbatim for every control.
func ParseInput(field Field, raw string) (any, error) {
	if IsExpression(raw) {
		return raw, nil
	}

	switch field.Control {
	case ControlNumber:
		if strings.TrimSpace(raw) == "" {
			return nil, nil
		}

		value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s is not a number", ErrInvalidValue, field.Name)
		}

		return value, nil
	case ControlToggle:
		value, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: %s is not a boolean", ErrInvalidValue, field.Name)
		}

		return value, nil
	case ControlJSON:
		if strings.TrimSpace(raw) == "" {
			return nil, nil
		}

		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("%w: %s is not valid JSON: %w", ErrInvalidValue, field.Name, err)
		}

		return value, nil
	default:
		return raw, nil
	}
}
