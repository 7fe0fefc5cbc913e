package template

import (
	"regexp"
	"sort"
	"strings"

	"github.com/dukex/flowstudio/pkg/models"
	"github.com/dukex/flowstudio/pkg/registry"
)

var referencePattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)((?:\.[A-Za-z0-9_\-]+)+)\s*\}\}`)

// Reference is one soft reference found in a configuration value.
type Reference struct {
	Root string   `json:"root"`
	Path []string `json:"path"`
	Raw  string   `json:"raw"`
}

// Extract walks a configuration value and returns every reference it contains, in order.
func Extract(value any) []Reference {
	var references []Reference

	walk(value, func(s string) {
		for _, match := range referencePattern.FindAllStringSubmatch(s, -1) {
			references = append(references, Reference{
				Root: match[1],
				Path: strings.Split(strings.TrimPrefix(match[2], "."), "."),
				Raw:  match[0],
			})
		}
	})

	return references
}

func walk(value any, visit func(string)) {
	switch v := value.(type) {
	case string:
		visit(v)
	case models.VariantConfig:
		walk(map[string]any(v), visit)
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}

		sort.Strings(keys)

		for _, key := range keys {
			walk(v[key], visit)
		}
	case []any:
		for _, item := range v {
			walk(item, visit)
		}
	case []string:
		for _, item := range v {
			visit(item)
		}
	}
}

// InputUsages maps every referenced flow input id to the ids of the nodes referencing it.
func InputUsages(nodes []models.Node) map[string][]string {
	usages := map[string][]string{}

	for _, node := range nodes {
		seen := map[string]bool{}

		for _, reference := range Extract(node.Data.Config) {
			if reference.Root != RootInputs || len(reference.Path) == 0 {
				continue
			}

			inputID := reference.Path[0]
			if seen[inputID] {
				continue
			}

			seen[inputID] = true
			usages[inputID] = append(usages[inputID], node.ID)
		}
	}

	return usages
}

// Token is an entry of the inputs panel that can be dragged onto a property field.
type Token struct {
	Group string `json:"group"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// AvailableTokens lists the tokens a node can reference: flow inputs, execution and flow
// attributes, flow variables and the declared outputs of every upstream task.
func AvailableTokens(
	nodeID string,
	nodes []models.Node,
	edges []models.Edge,
	variables map[string]any,
	catalog registry.Catalog,
) []Token {
	tokens := []Token{}

	for _, node := range nodes {
		if node.Variant == models.VariantInput && node.ConfigID() != "" {
			tokens = append(tokens, Token{Group: RootInputs, Label: node.ConfigID(), Value: InputToken(node.ConfigID())})
		}
	}

	for _, field := range ExecutionFields {
		tokens = append(tokens, Token{Group: RootExecution, Label: field, Value: ExecutionToken(field)})
	}

	for _, field := range FlowFields {
		tokens = append(tokens, Token{Group: RootFlow, Label: field, Value: FlowToken(field)})
	}

	names := make([]string, 0, len(variables))
	for name := range variables {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		tokens = append(tokens, Token{Group: RootVars, Label: name, Value: VarToken(name)})
	}

	byID := make(map[string]models.Node, len(nodes))
	for _, node := range nodes {
		byID[node.ID] = node
	}

	for _, upstreamID := range upstream(nodeID, edges) {
		node, ok := byID[upstreamID]
		if !ok || node.ConfigID() == "" || catalog == nil {
			continue
		}

		metadata, ok := catalog.Get(node.PluginType())
		if !ok {
			continue
		}

		for _, output := range metadata.Outputs {
			tokens = append(tokens, Token{
				Group: RootOutputs,
				Label: node.ConfigID() + "." + output.Name,
				Value: OutputToken(node.ConfigID(), output.Name),
			})
		}
	}

	return tokens
}

// upstream returns the ancestors of a node, nearest first.
func upstream(nodeID string, edges []models.Edge) []string {
	visited := map[string]bool{nodeID: true}
	queue := []string{nodeID}

	var ancestors []string

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, edge := range edges {
			if edge.Target != current || visited[edge.Source] {
				continue
			}

			visited[edge.Source] = true
			ancestors = append(ancestors, edge.Source)
			queue = append(queue, edge.Source)
		}
	}

	return ancestors
}
