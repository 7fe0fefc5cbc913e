package forms

import "github.com/dukex/flowstudio/pkg/models"

// LogLevels are the options of the core logLevel property.
var LogLevels = []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR"}

// coreProperties are generic to every task and rendered in the collapsible core group.
var coreProperties = []models.PropertySchema{
	{Name: "description", Type: models.PropertyTypeString, Description: "Description of the task"},
	{Name: "retry", Type: models.PropertyTypeObject, Description: "Retry policy of the task"},
	{Name: "timeout", Type: models.PropertyTypeString, Format: "duration", Placeholder: "PT5M", Description: "Maximum duration of the task"},
	{Name: "runIf", Type: models.PropertyTypeString, Placeholder: "{{ inputs.enabled }}", Description: "Run the task only when the expression is true"},
	{Name: "disabled", Type: models.PropertyTypeBoolean, Default: false, Description: "Skip the task"},
	{Name: "workerGroup", Type: models.PropertyTypeString, Description: "Worker group that runs the task"},
	{Name: "allowFailure", Type: models.PropertyTypeBoolean, Default: false, Description: "Continue the flow when the task fails"},
	{Name: "allowWarning", Type: models.PropertyTypeBoolean, Default: false, Description: "Treat warnings as success"},
	{Name: "logLevel", Type: models.PropertyTypeSelect, Options: LogLevels, Description: "Minimum level of task logs"},
	{Name: "logToFile", Type: models.PropertyTypeBoolean, Default: false, Description: "Store task logs in a file"},
}

func isCore(name string) bool {
	for _, property := range coreProperties {
		if property.Name == name {
			return true
		}
	}

	return false
}
