package forms

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/xeipuuv/gojsonschema"

	"github.com/dukex/flowstudio/pkg/models"
)

const expressionPattern = `^\s*\{\{.*\}\}\s*$`

// FieldError is a validation failure of one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists the invalid fields of a draft in form order.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		messages = append(messages, field.Field+": "+field.Message)
	}

	return "validation failed: " + strings.Join(messages, "; ")
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// JSONSchema derives the JSON Schema of a form. Every non-string field also accepts an expression.
func JSONSchema(form Form) map[string]any {
	properties := map[string]any{}
	required := []string{}

	for _, field := range form.Fields {
		properties[field.Name] = fieldSchema(field)

		if field.Required {
			required = append(required, field.Name)
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}

	if len(required) > 0 {
		schema["required"] = required
	}

	return schema
}

func fieldSchema(field Field) map[string]any {
	var schema map[string]any

	switch field.Type {
	case models.PropertyTypeNumber:
		schema = map[string]any{"type": "number"}
	case models.PropertyTypeInteger:
		schema = map[string]any{"type": "integer"}
	case models.PropertyTypeBoolean:
		schema = map[string]any{"type": "boolean"}
	case models.PropertyTypeObject:
		schema = map[string]any{"type": "object"}
	case models.PropertyTypeArray:
		schema = map[string]any{"type": "array"}
	case models.PropertyTypeSelect:
		if len(field.Options) == 0 {
			return map[string]any{"type": "string"}
		}

		options := make([]any, 0, len(field.Options))
		for _, option := range field.Options {
			options = append(options, option)
		}

		schema = map[string]any{"enum": options}
	default:
		schema = map[string]any{"type": "string"}
		if field.Required {
			schema["minLength"] = 1
		}

		if field.Format == "uri" {
			schema = map[string]any{"anyOf": []any{
				map[string]any{"type": "string", "format": "uri"},
				expressionSchema(),
			}}
		}

		return schema
	}

	return map[string]any{"anyOf": []any{schema, expressionSchema()}}
}

func expressionSchema() map[string]any {
	return map[string]any{"type": "string", "pattern": expressionPattern}
}

// Validate checks the draft configuration against its form.
// It returns a *ValidationError listing every invalid field.
func (d *Draft) Validate() error {
	return ValidateConfig(d.form, d.config)
}

// ValidateConfig checks a configuration against a form.
func ValidateConfig(form Form, config models.VariantConfig) error {
	document := map[string]any(config.Clone())
	if document == nil {
		document = map[string]any{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(JSONSchema(form)),
		gojsonschema.NewGoLoader(document),
	)
	if err != nil {
		return fmt.Errorf("failed to validate form %s: %w", form.NodeID, err)
	}

	messages := map[string]string{}

	for _, resultError := range result.Errors() {
		field := resultError.Field()
		if resultError.Type() == "required" {
			if property, ok := resultError.Details()["property"].(string); ok {
				field = property
			}
		}

		if _, seen := messages[field]; !seen {
			messages[field] = resultError.Description()
		}
	}

	for _, field := range form.Fields {
		if field.Format != "cron" {
			continue
		}

		expression, ok := config[field.Name].(string)
		if !ok || expression == "" || IsExpression(expression) {
			continue
		}

		if _, err := cronParser.Parse(expression); err != nil {
			if _, seen := messages[field.Name]; !seen {
				messages[field.Name] = "invalid cron expression: " + err.Error()
			}
		}
	}

	if len(messages) == 0 {
		return nil
	}

	validationError := &ValidationError{}

	for _, field := range form.Fields {
		if message, ok := messages[field.Name]; ok {
			validationError.Fields = append(validationError.Fields, FieldError{Field: field.Name, Message: message})
			delete(messages, field.Name)
		}
	}

	for field, message := range messages {
		validationError.Fields = append(validationError.Fields, FieldError{Field: field, Message: message})
	}

	return validationError
}
