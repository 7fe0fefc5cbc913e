// Package template builds, extracts and previews the "{{ ... }}" reference tokens used inside node configuration.
package template

import "fmt"

// Expression roots.
const (
	RootOutputs   = "outputs"
	RootInputs    = "inputs"
	RootExecution = "execution"
	RootVars      = "vars"
	RootFlow      = "flow"
	RootTrigger   = "trigger"
)

// ExecutionFields are the execution attributes offered by the inputs panel.
var ExecutionFields = []string{"id", "startDate", "state", "originalId"}

// FlowFields are the flow attributes offered by the inputs panel.
var FlowFields = []string{"id", "namespace", "revision"}

// OutputToken references an output of a task.
func OutputToken(taskID, output string) string {
	return fmt.Sprintf("{{ %s.%s.%s }}", RootOutputs, taskID, output)
}

// InputToken references a flow input.
func InputToken(inputID string) string {
	return fmt.Sprintf("{{ %s.%s }}", RootInputs, inputID)
}

// ExecutionToken references an execution attribute.
func ExecutionToken(field string) string {
	return fmt.Sprintf("{{ %s.%s }}", RootExecution, field)
}

// VarToken references a flow variable.
func VarToken(name string) string {
	return fmt.Sprintf("{{ %s.%s }}", RootVars, name)
}

// FlowToken references a flow attribute.
func FlowToken(field string) string {
	return fmt.Sprintf("{{ %s.%s }}", RootFlow, field)
}
