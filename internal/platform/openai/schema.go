package openai

import (
	"encoding/json"
	"sort"

	"github.com/invopop/jsonschema"
)

// SchemaFor reflects T into a strict structured-output schema: every object
// closed to extra properties with all of its properties required.
func SchemaFor[T any]() (map[string]any, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	b, err := reflector.Reflect(v).MarshalJSON()
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	delete(m, "$schema")
	delete(m, "$id")
	makeStrict(m)
	return m, nil
}

func makeStrict(schema map[string]any) {
	props, _ := schema["properties"].(map[string]any)
	if t, ok := schema["type"].(string); ok && t == "object" {
		schema["additionalProperties"] = false
		required := make([]string, 0, len(props))
		for name := range props {
			required = append(required, name)
		}
		sort.Strings(required)
		schema["required"] = required
	}
	for _, p := range props {
		if pm, ok := p.(map[string]any); ok {
			makeStrict(pm)
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		makeStrict(items)
	}
}
