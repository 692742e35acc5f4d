package llmstream

import "sort"

// strippedKeywords are validation keywords strict-mode vendors reject.
// They are removed from every schema node during translation.
var strippedKeywords = map[string]bool{
	"optional":         true,
	"minimum":          true,
	"maximum":          true,
	"exclusiveMinimum": true,
	"exclusiveMaximum": true,
	"multipleOf":       true,
	"minLength":        true,
	"maxLength":        true,
	"pattern":          true,
	"format":           true,
	"default":          true,
	"examples":         true,
	"uniqueItems":      true,
	"minItems":         true,
	"maxItems":         true,
	"minProperties":    true,
	"maxProperties":    true,
	"minContains":      true,
	"maxContains":      true,
}

// TranslateStrictSchema rewrites a tool parameter schema into the form a
// strict-mode vendor accepts. The transform is pure: the input tree is never
// mutated and the result shares no mutable nodes with it.
//
// Recursively, bottom-up over the tree:
//   - strip "optional" markers and rejected validation keywords,
//   - rewrite oneOf into anyOf,
//   - force additionalProperties=false on object nodes and set required to
//     the full sorted list of declared property names (dropped when the node
//     has no properties).
//
// A second, top-level-only pass then recomputes the top-level required list
// from the *original* optionality: a top-level property stays optional when
// its original schema carried "optional": true, or when the original
// top-level required array omitted it. Nested optionality is always forced
// required by the recursive pass; only top-level parameters keep it.
//
// Applying the translator to an already-translated schema is a no-op.
func TranslateStrictSchema(schema map[string]any) map[string]any {
	if schema == nil {
		return nil
	}

	out := translateNode(schema)

	// Top-level fix-up: restore original optionality for the root object.
	props, ok := out["properties"].(map[string]any)
	if !ok || len(props) == 0 {
		return out
	}

	origProps, _ := schema["properties"].(map[string]any)
	origRequired := stringList(schema["required"])

	required := make([]string, 0, len(props))
	for name := range props {
		if isOriginallyRequired(name, origProps, origRequired) {
			required = append(required, name)
		}
	}
	sort.Strings(required)

	// Always emitted, even when empty. Omitting an empty required list would
	// lose the optionality on re-translation: the markers are stripped, so an
	// absent array is the only remaining signal and it reads as "everything
	// required".
	out["required"] = required
	return out
}

// isOriginallyRequired decides top-level optionality from the pre-translation
// tree. An explicit "optional": true marker wins; otherwise membership in the
// original required array decides. When the original had no required array at
// all, unmarked properties count as required (matching the recursive pass, so
// re-translation is stable).
func isOriginallyRequired(name string, origProps map[string]any, origRequired []string) bool {
	if origProps != nil {
		if ps, ok := origProps[name].(map[string]any); ok {
			if opt, ok := ps["optional"].(bool); ok && opt {
				return false
			}
		}
	}
	if origRequired == nil {
		return true
	}
	for _, r := range origRequired {
		if r == name {
			return true
		}
	}
	return false
}

// translateNode rewrites one schema node, recursing into every subschema
// position before fixing up the node itself.
func translateNode(node map[string]any) map[string]any {
	out := make(map[string]any, len(node))

	for key, value := range node {
		if strippedKeywords[key] {
			continue
		}
		switch key {
		case "properties", "$defs", "definitions", "patternProperties":
			out[key] = translateSchemaMap(value)
		case "items", "additionalItems", "contains", "not":
			out[key] = translateSubschema(value)
		case "anyOf", "allOf", "prefixItems":
			out[key] = translateSchemaList(value)
		case "oneOf":
			// Exactly-one-of is normalized to any-of.
			out["anyOf"] = translateSchemaList(value)
		case "additionalProperties":
			// Schema-valued additionalProperties recurses; the boolean
			// form is overwritten below for object nodes anyway.
			out[key] = translateSubschema(value)
		default:
			out[key] = value
		}
	}

	if isObjectNode(out) {
		out["additionalProperties"] = false
		props, _ := out["properties"].(map[string]any)
		if len(props) == 0 {
			delete(out, "required")
		} else {
			required := make([]string, 0, len(props))
			for name := range props {
				required = append(required, name)
			}
			sort.Strings(required)
			out["required"] = required
		}
	}

	return out
}

// isObjectNode reports whether a node is object-shaped: declared type
// "object" or carrying a properties map.
func isObjectNode(node map[string]any) bool {
	if t, ok := node["type"].(string); ok && t == "object" {
		return true
	}
	_, hasProps := node["properties"].(map[string]any)
	return hasProps
}

func translateSubschema(value any) any {
	if m, ok := value.(map[string]any); ok {
		return translateNode(m)
	}
	return value
}

func translateSchemaMap(value any) any {
	m, ok := value.(map[string]any)
	if !ok {
		return value
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = translateSubschema(v)
	}
	return out
}

func translateSchemaList(value any) any {
	list, ok := value.([]any)
	if !ok {
		return value
	}
	out := make([]any, len(list))
	for i, v := range list {
		out[i] = translateSubschema(v)
	}
	return out
}

// stringList coerces a schema "required" value ([]any of strings or
// []string) into a []string; nil when absent or malformed.
func stringList(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
