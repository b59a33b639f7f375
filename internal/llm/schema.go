package llm

import (
	"sort"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// StrictSchema returns a copy of def that satisfies OpenAI strict mode:
// every object lists all of its properties as required and forbids
// additional properties, at every nesting level.
func StrictSchema(def jsonschema.Definition) jsonschema.Definition {
	out := def

	if len(def.Properties) > 0 {
		out.Properties = make(map[string]jsonschema.Definition, len(def.Properties))
		keys := make([]string, 0, len(def.Properties))
		for name, prop := range def.Properties {
			out.Properties[name] = StrictSchema(prop)
			keys = append(keys, name)
		}
		sort.Strings(keys)
		out.Required = keys
	}

	if def.Type == jsonschema.Object {
		out.AdditionalProperties = false
		if out.Required == nil {
			out.Required = []string{}
		}
	}

	if def.Items != nil {
		items := StrictSchema(*def.Items)
		out.Items = &items
	}

	return out
}
