package infer

import (
	"github.com/siegeai/schemasnap/typeinfo"
)

// enhancer stamps collected type and format information onto the structural
// skeleton the converter built. It owns all "type", "format" and string
// length assertions in the output.
type enhancer struct {
	collector *typeinfo.Collector
}

func (e *enhancer) enhance(root map[string]any, path string) {
	e.node(root, path, false)
}

func (e *enhancer) node(n map[string]any, path string, branch bool) {
	if n == nil {
		return
	}

	_, hadCombinator := combinatorKey(n)

	switch {
	case branch:
		// Combinator variants keep whatever type marker they carry; we
		// only refine string variants with format information.
		if containsString(schemaTypeList(n), "string") {
			if info := e.collector.Get(path); info != nil {
				e.applyString(n, info)
			}
		}
	case hadCombinator:
		// The node splits into variants below; typing belongs to them.
	default:
		if info := e.collector.Get(path); info != nil {
			e.applyTypes(n, path, info)
		}
	}

	if props, ok := n["properties"].(map[string]any); ok {
		for k, v := range props {
			if m, ok := v.(map[string]any); ok {
				e.node(m, path+"/"+k, false)
			}
		}
	}
	if pats, ok := n["patternProperties"].(map[string]any); ok {
		for _, v := range pats {
			if m, ok := v.(map[string]any); ok {
				e.node(m, path+"/*", false)
			}
		}
	}
	if items, ok := n["items"].(map[string]any); ok {
		e.node(items, path+"[]", false)
	}

	// Only combinators that predate this pass get variant treatment; a
	// oneOf we just created from a multi-type union is already final.
	if hadCombinator {
		if key, ok := combinatorKey(n); ok {
			if vs, ok := n[key].([]any); ok {
				for _, v := range vs {
					if m, ok := v.(map[string]any); ok {
						e.node(m, path, true)
					}
				}
			}
		}
	}
}

func (e *enhancer) applyTypes(n map[string]any, path string, info *typeinfo.Info) {
	types := info.NormalizedTypes()
	switch len(types) {
	case 0:
	case 1:
		n["type"] = types[0]
		if types[0] == "string" {
			e.applyString(n, info)
		}
	default:
		delete(n, "type")
		variants := make([]any, 0, len(types))
		for _, t := range types {
			v := map[string]any{"type": t}
			if t == "string" {
				e.applyString(v, info)
			}
			variants = append(variants, v)
		}
		n["oneOf"] = variants
	}
}

// applyString narrows a string-typed node with observed formats. A single
// plain string observation anywhere at the path disables formats entirely.
func (e *enhancer) applyString(n map[string]any, info *typeinfo.Info) {
	if info.HasPlain {
		delete(n, "format")
		return
	}

	formats := info.SortedFormats()
	switch {
	case len(formats) == 0 && info.HasEmpty:
		n["maxLength"] = 0
		delete(n, "minLength")
	case len(formats) == 1 && !info.HasEmpty:
		n["format"] = formats[0]
	case len(formats) >= 1:
		variants := make([]any, 0, len(formats)+1)
		for _, f := range formats {
			variants = append(variants, map[string]any{"format": f})
		}
		if info.HasEmpty {
			variants = append(variants, map[string]any{"maxLength": 0})
		}
		delete(n, "format")
		n["oneOf"] = variants
	}
}

func combinatorKey(n map[string]any) (string, bool) {
	for _, key := range []string{"oneOf", "anyOf", "allOf"} {
		if _, ok := n[key].([]any); ok {
			return key, true
		}
	}
	return "", false
}
