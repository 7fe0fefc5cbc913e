package forms

import (
	"github.com/dukex/flowstudio/pkg/models"
)

// Input and output value types.
const (
	InputString      = "STRING"
	InputInt         = "INT"
	InputFloat       = "FLOAT"
	InputBoolean     = "BOOLEAN"
	InputDateTime    = "DATETIME"
	InputDate        = "DATE"
	InputTime        = "TIME"
	InputDuration    = "DURATION"
	InputFile        = "FILE"
	InputJSON        = "JSON"
	InputURI         = "URI"
	InputSecret      = "SECRET"
	InputArray       = "ARRAY"
	InputSelect      = "SELECT"
	InputMultiSelect = "MULTISELECT"
	InputYAML        = "YAML"
	InputEmail       = "EMAIL"
)

// InputTypes lists every input type in menu order.
var InputTypes = []string{
	InputString, InputInt, InputFloat, InputBoolean, InputDateTime, InputDate, InputTime, InputDuration,
	InputFile, InputJSON, InputURI, InputSecret, InputArray, InputSelect, InputMultiSelect, InputYAML, InputEmail,
}

func inputType(config models.VariantConfig) string {
	inputType, _ := config[models.ConfigKeyType].(string)
	if inputType == "" {
		return InputString
	}

	return inputType
}

func ioHeader() []Field {
	return []Field{
		{Name: models.ConfigKeyID, Type: models.PropertyTypeString, Control: ControlText, Group: GroupMain, Required: true},
		{
			Name:     models.ConfigKeyType,
			Type:     models.PropertyTypeSelect,
			Control:  ControlSelect,
			Group:    GroupMain,
			Required: true,
			Default:  InputString,
			Options:  InputTypes,
		},
		{Name: "displayName", Type: models.PropertyTypeString, Control: ControlText, Group: GroupMain},
		{Name: "description", Type: models.PropertyTypeString, Control: ControlTextArea, Group: GroupMain},
		{Name: "required", Type: models.PropertyTypeBoolean, Control: ControlToggle, Group: GroupMain, Default: false},
	}
}

func inputFields(inputType string) []Field {
	fields := ioHeader()

	switch inputType {
	case InputString:
		fields = append(fields, Field{
			Name:        "validator",
			Type:        models.PropertyTypeString,
			Control:     ControlText,
			Group:       GroupOptional,
			Placeholder: "^[a-z]+$",
			Description: "Regular expression the value must match",
		})
	case InputInt, InputFloat:
		valueType := models.PropertyTypeNumber
		if inputType == InputInt {
			valueType = models.PropertyTypeInteger
		}

		fields = append(fields,
			Field{Name: "min", Type: valueType, Control: ControlNumber, Group: GroupOptional},
			Field{Name: "max", Type: valueType, Control: ControlNumber, Group: GroupOptional},
		)
	case InputSelect, InputMultiSelect:
		fields = append(fields, Field{
			Name:        "values",
			Type:        models.PropertyTypeArray,
			Control:     ControlJSON,
			Group:       GroupMain,
			Required:    true,
			Description: "Allowed values",
		})
	case InputArray:
		fields = append(fields, Field{
			Name:    "itemType",
			Type:    models.PropertyTypeSelect,
			Control: ControlSelect,
			Group:   GroupMain,
			Default: InputString,
			Options: InputTypes,
		})
	case InputDateTime:
		fields = append(fields,
			Field{Name: "after", Type: models.PropertyTypeString, Control: ControlText, Group: GroupOptional, Format: "date-time"},
			Field{Name: "before", Type: models.PropertyTypeString, Control: ControlText, Group: GroupOptional, Format: "date-time"},
		)
	}

	fields = append(fields, defaultsField(inputType))

	return fields
}

func defaultsField(inputType string) Field {
	field := Field{Name: "defaults", Group: GroupOptional, Description: "Value used when the input is not provided"}

	switch inputType {
	case InputInt:
		field.Type, field.Control = models.PropertyTypeInteger, ControlNumber
	case InputFloat:
		field.Type, field.Control = models.PropertyTypeNumber, ControlNumber
	case InputBoolean:
		field.Type, field.Control = models.PropertyTypeBoolean, ControlToggle
	case InputJSON, InputArray, InputMultiSelect:
		field.Type, field.Control = models.PropertyTypeArray, ControlJSON
		if inputType == InputJSON {
			field.Type = models.PropertyTypeObject
		}
	case InputYAML:
		field.Type, field.Control = models.PropertyTypeString, ControlTextArea
	default:
		field.Type, field.Control = models.PropertyTypeString, ControlText
	}

	return field
}

func outputFields() []Field {
	header := ioHeader()

	fields := make([]Field, 0, len(header)+1)
	fields = append(fields, header[:2]...)
	fields = append(fields, Field{
		Name:        "value",
		Type:        models.PropertyTypeString,
		Control:     ControlText,
		Group:       GroupMain,
		Required:    true,
		Placeholder: "{{ outputs.task_id.body }}",
	})

	return append(fields, header[2:]...)
}
