// Package apispec exports inferred schemas as OpenAPI 3 schema objects, so
// they can be embedded into API specifications.
package apispec

import (
	"github.com/getkin/kin-openapi/openapi3"
)

// OpenAPI has no patternProperties or propertyNames; pseudo array nodes are
// exported as additionalProperties plus extensions carrying the key pattern
// and annotations.
const (
	ExtKeyPattern      = "x-key-pattern"
	ExtPatternComment  = "x-pattern-comment"
	ExtExcludePatterns = "x-exclude-patterns"
)

// FromSchema converts a schema produced by the builder into an OpenAPI
// schema. Unknown keys are dropped rather than rejected.
func FromSchema(doc map[string]any) *openapi3.Schema {
	if doc == nil {
		return nil
	}
	out := &openapi3.Schema{}

	if t, ok := doc["type"].(string); ok {
		if t == "null" {
			out.Nullable = true
		} else {
			out.Type = t
		}
	}
	if f, ok := doc["format"].(string); ok {
		out.Format = f
	}
	if n, ok := uintValue(doc["maxLength"]); ok {
		out.MaxLength = &n
	}
	if n, ok := uintValue(doc["maxProperties"]); ok {
		out.MaxProps = &n
	}

	if props, ok := doc["properties"].(map[string]any); ok {
		out.Properties = make(openapi3.Schemas, len(props))
		for k, v := range props {
			if m, ok := v.(map[string]any); ok {
				out.Properties[k] = FromSchema(m).NewRef()
			}
		}
	}
	out.Required = stringList(doc["required"])

	if pats, ok := doc["patternProperties"].(map[string]any); ok {
		for _, v := range pats {
			if m, ok := v.(map[string]any); ok {
				out.AdditionalProperties = openapi3.AdditionalProperties{
					Schema: FromSchema(m).NewRef(),
				}
			}
		}
		if pn, ok := doc["propertyNames"].(map[string]any); ok {
			if p, ok := pn["pattern"].(string); ok {
				setExtension(out, ExtKeyPattern, p)
			}
		}
	} else if ap, ok := doc["additionalProperties"].(bool); ok && !ap {
		no := false
		out.AdditionalProperties = openapi3.AdditionalProperties{Has: &no}
	}

	if items, ok := doc["items"].(map[string]any); ok {
		out.Items = FromSchema(items).NewRef()
	}

	if vs, ok := doc["oneOf"].([]any); ok {
		for _, v := range vs {
			m, ok := v.(map[string]any)
			if !ok {
				continue
			}
			if t, _ := m["type"].(string); t == "null" && len(m) == 1 {
				out.Nullable = true
				continue
			}
			out.OneOf = append(out.OneOf, FromSchema(m).NewRef())
		}
	}

	if c, ok := doc["patternComment"].(string); ok {
		setExtension(out, ExtPatternComment, c)
	}
	if xs := stringList(doc["excludePatterns"]); len(xs) > 0 {
		setExtension(out, ExtExcludePatterns, xs)
	}

	return out
}

func setExtension(s *openapi3.Schema, key string, v any) {
	if s.Extensions == nil {
		s.Extensions = make(map[string]any)
	}
	s.Extensions[key] = v
}

func uintValue(v any) (uint64, bool) {
	switch n := v.(type) {
	case float64:
		if n >= 0 {
			return uint64(n), true
		}
	case int:
		if n >= 0 {
			return uint64(n), true
		}
	}
	return 0, false
}

func stringList(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		var ss []string
		for _, e := range t {
			if s, ok := e.(string); ok {
				ss = append(ss, s)
			}
		}
		return ss
	}
	return nil
}
