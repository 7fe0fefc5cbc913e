package template

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"text/template"
	"time"
)

var rootPattern = regexp.MustCompile(`\{\{(-?)\s*(outputs|inputs|execution|vars|flow|trigger)\.`)

// Scope is the data a preview renders against, usually built from playground results.
type Scope struct {
	Outputs   map[string]map[string]any `json:"outputs"`
	Inputs    map[string]any            `json:"inputs"`
	Vars      map[string]any            `json:"vars"`
	Execution map[string]any            `json:"execution"`
	Flow      map[string]any            `json:"flow"`
	Trigger   map[string]any            `json:"trigger"`
}

func (s Scope) data() map[string]any {
	outputs := make(map[string]any, len(s.Outputs))
	for taskID, values := range s.Outputs {
		outputs[taskID] = values
	}

	return map[string]any{
		RootOutputs:   outputs,
		RootInputs:    orEmpty(s.Inputs),
		RootVars:      orEmpty(s.Vars),
		RootExecution: orEmpty(s.Execution),
		RootFlow:      orEmpty(s.Flow),
		RootTrigger:   orEmpty(s.Trigger),
	}
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}

	return m
}

// Preview renders a configuration value containing reference tokens against a scope.
// Tokens are written without the leading dot ("{{ outputs.fetch.body }}").
func Preview(expression string, scope Scope) (any, error) {
	return Render(rootPattern.ReplaceAllString(expression, "{{$1 .$2."), scope.data())
}

// Render executes a text/template and converts JSON, numeric and boolean results to typed values.
func Render(templateStr string, data any) (any, error) {
	tmpl, err := template.
		New("preview").
		Option("missingkey=error").
		Funcs(template.FuncMap{
			"now": func() string {
				return time.Now().UTC().Format(time.RFC3339)
			},
		}).Parse(templateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template '%s': %w", templateStr, err)
	}

	var buf strings.Builder

	err = tmpl.Execute(&buf, data)
	if err != nil {
		return nil, fmt.Errorf("failed to execute template '%s': %w", templateStr, err)
	}

	result := strings.TrimSpace(buf.String())

	if (strings.HasPrefix(result, "{") && strings.HasSuffix(result, "}")) ||
		(strings.HasPrefix(result, "[") && strings.HasSuffix(result, "]")) {
		var jsonResult any

		err := json.Unmarshal([]byte(result), &jsonResult)
		if err == nil {
			return jsonResult, nil
		}

		return nil, fmt.Errorf("failed to parse json '%s': %w", templateStr, err)
	}

	if num, err := strconv.ParseFloat(result, 64); err == nil {
		return num, nil
	}

	if b, err := strconv.ParseBool(result); err == nil {
		return b, nil
	}

	return result, nil
}
