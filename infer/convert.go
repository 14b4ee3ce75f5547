package infer

import (
	"sort"
	"strings"

	"github.com/siegeai/schemasnap/keypattern"
)

// maxDepth bounds recursion on pathologically deep inputs; deeper subtrees
// are silently left out of the structural state.
const maxDepth = 1000

// patternSample is one observation of an object node at some path: an empty
// object, a pattern-matching pseudo array (possibly wrapped one level under a
// single named key), or a plain object. Plain samples permanently prevent
// pattern collapse at their path.
type patternSample struct {
	empty   bool
	body    string // anchor-free pattern body, "" for plain samples
	wrapper string
	values  []any            // matched values from a raw object sample
	schemas []map[string]any // matched value schemas from a fragment sample
}

type objectState struct {
	props         map[string]struct{}
	requiredCount map[string]int
	nsamples      int
	samples       []patternSample
	blacklist     map[string]struct{}
}

func newObjectState() *objectState {
	return &objectState{
		props:         make(map[string]struct{}),
		requiredCount: make(map[string]int),
		blacklist:     make(map[string]struct{}),
	}
}

// converter accumulates the structural shape of every ingested value and
// schema fragment, keyed by path, and materializes the structural skeleton
// of the result. Scalar typing and formats are the collector's business; the
// enhancer stamps those on afterwards.
type converter struct {
	objs map[string]*objectState
	arrs map[string]struct{}
	seen map[string]struct{}
}

func newConverter() *converter {
	return &converter{
		objs: make(map[string]*objectState),
		arrs: make(map[string]struct{}),
		seen: make(map[string]struct{}),
	}
}

func (c *converter) obj(path string) *objectState {
	st, ok := c.objs[path]
	if !ok {
		st = newObjectState()
		c.objs[path] = st
	}
	return st
}

// ---------------------------------------------------------------- values --

func (c *converter) addValue(v any, path string, depth int) {
	if depth > maxDepth {
		return
	}
	c.seen[path] = struct{}{}

	switch t := v.(type) {
	case map[string]any:
		c.addValueObject(t, path, depth)
	case []any:
		c.arrs[path] = struct{}{}
		for _, cv := range t {
			c.addValue(cv, path+"[]", depth+1)
		}
	}
}

func (c *converter) addValueObject(obj map[string]any, path string, depth int) {
	st := c.obj(path)
	st.nsamples++

	if len(obj) == 0 {
		st.samples = append(st.samples, patternSample{empty: true})
		return
	}

	var sample patternSample

	// A single named key holding a large object may be a wrapped pseudo
	// array ({"orders": {"0": ..., "1": ..., "2": ...}}).
	if len(obj) == 1 {
		for k, iv := range obj {
			inner, ok := iv.(map[string]any)
			if !ok {
				break
			}
			m, rejects := keypattern.DetectWithRejects(mapKeys(inner), st.blacklist)
			mergeSet(st.blacklist, rejects)
			if m != nil {
				sample = patternSample{body: m.Body, wrapper: k, values: mapValues(inner)}
			}
		}
	}

	if sample.body == "" && len(obj) >= 3 {
		m, rejects := keypattern.DetectWithRejects(mapKeys(obj), st.blacklist)
		mergeSet(st.blacklist, rejects)
		if m != nil {
			sample = patternSample{body: m.Body, values: mapValues(obj)}
		}
	}

	st.samples = append(st.samples, sample)

	for k, cv := range obj {
		st.props[k] = struct{}{}
		st.requiredCount[k]++
		c.addValue(cv, path+"/"+k, depth+1)
	}
}

// --------------------------------------------------------------- schemas --

// addSchema folds an already built fragment into the same per-path state, so
// that merging two independently generated schemas lands where merging the
// raw data would have. branch marks combinator variants, whose bare type
// markers carry no structural weight of their own.
func (c *converter) addSchema(s map[string]any, path string, depth int, branch bool) {
	if depth > maxDepth || s == nil {
		return
	}
	c.seen[path] = struct{}{}

	if xs := stringList(s["excludePatterns"]); len(xs) > 0 {
		st := c.obj(path)
		for _, x := range xs {
			st.blacklist[x] = struct{}{}
		}
	}

	for _, key := range []string{"oneOf", "anyOf", "allOf"} {
		if vs, ok := s[key].([]any); ok {
			for _, v := range vs {
				if m, ok := v.(map[string]any); ok {
					c.addSchema(m, path, depth+1, true)
				}
			}
		}
	}

	types := schemaTypeList(s)
	items, hasItems := s["items"].(map[string]any)
	if hasItems || containsString(types, "array") {
		c.arrs[path] = struct{}{}
	}
	if hasItems {
		c.addSchema(items, path+"[]", depth+1, false)
	}

	props, hasProps := s["properties"].(map[string]any)
	body, isPattern := patternBody(s)

	switch {
	case isPattern:
		st := c.obj(path)
		st.nsamples++
		if _, blacklisted := st.blacklist[body]; blacklisted {
			st.samples = append(st.samples, patternSample{})
		} else {
			st.samples = append(st.samples, patternSample{body: body, schemas: patternValueSchemas(s)})
		}
		for _, vs := range patternValueSchemas(s) {
			c.addSchema(vs, path+"/*", depth+1, false)
		}

	case hasProps:
		st := c.obj(path)
		st.nsamples++
		st.samples = append(st.samples, c.fragmentObjectSample(st, s, props))
		for k, v := range props {
			st.props[k] = struct{}{}
			if m, ok := v.(map[string]any); ok {
				c.addSchema(m, path+"/"+k, depth+1, false)
			}
		}
		for _, k := range stringList(s["required"]) {
			st.requiredCount[k]++
		}

	case maxPropertiesZero(s):
		st := c.obj(path)
		st.nsamples++
		st.samples = append(st.samples, patternSample{empty: true})

	case containsString(types, "object") && !branch:
		// A bare object schema with no properties describes an empty
		// object observation.
		st := c.obj(path)
		st.nsamples++
		st.samples = append(st.samples, patternSample{empty: true})
	}
}

// fragmentObjectSample classifies a properties-carrying fragment node. A
// single property wrapping a pattern node is a wrapped pseudo array; any
// other shape is a plain object sample.
func (c *converter) fragmentObjectSample(st *objectState, s map[string]any, props map[string]any) patternSample {
	if len(props) != 1 {
		return patternSample{}
	}
	var wrapper string
	var inner map[string]any
	for k, v := range props {
		wrapper = k
		inner, _ = v.(map[string]any)
	}
	if inner == nil {
		return patternSample{}
	}

	if xs := stringList(inner["excludePatterns"]); len(xs) > 0 {
		for _, x := range xs {
			st.blacklist[x] = struct{}{}
		}
	}

	body, ok := patternBody(inner)
	if !ok {
		return patternSample{}
	}
	if _, blacklisted := st.blacklist[body]; blacklisted {
		return patternSample{}
	}
	return patternSample{body: body, wrapper: wrapper, schemas: patternValueSchemas(inner)}
}

// ---------------------------------------------------------------- output --

type collapseInfo struct {
	match    *keypattern.Match
	wrapper  string
	hasEmpty bool
	samples  []patternSample
}

// collapse decides pattern eligibility for one path: every sample empty or
// pattern-matching, at least one pattern, a single wrapper shape, and one
// detector compatible with every recorded body. Anything else falls back to
// a conventional properties schema.
func (c *converter) collapse(st *objectState) *collapseInfo {
	if len(st.samples) == 0 {
		return nil
	}

	hasEmpty := false
	var patterns []patternSample
	for _, s := range st.samples {
		if s.empty {
			hasEmpty = true
			continue
		}
		if s.body == "" {
			return nil
		}
		patterns = append(patterns, s)
	}
	if len(patterns) == 0 {
		return nil
	}

	wrapper := patterns[0].wrapper
	for _, s := range patterns[1:] {
		if s.wrapper != wrapper {
			return nil
		}
	}

	var bodies []string
	uniq := make(map[string]struct{})
	for _, s := range patterns {
		if _, in := uniq[s.body]; in {
			continue
		}
		uniq[s.body] = struct{}{}
		bodies = append(bodies, s.body)
	}
	sort.Strings(bodies)

	m := keypattern.BestForBodies(bodies, st.blacklist)
	if m == nil {
		return nil
	}
	return &collapseInfo{match: m, wrapper: wrapper, hasEmpty: hasEmpty, samples: patterns}
}

// build materializes the structural skeleton for path. Type and format
// assertions are stamped on later by the enhancer.
func (c *converter) build(path string) map[string]any {
	node := make(map[string]any)

	if st := c.objs[path]; st != nil {
		if col := c.collapse(st); col != nil {
			return c.buildCollapsed(st, col)
		}

		if len(st.props) > 0 {
			props := make(map[string]any, len(st.props))
			for _, k := range sortedSet(st.props) {
				props[k] = c.build(path + "/" + k)
			}
			node["properties"] = props

			var req []string
			for k, n := range st.requiredCount {
				if n == st.nsamples {
					req = append(req, k)
				}
			}
			if len(req) > 0 {
				sort.Strings(req)
				node["required"] = req
			}
		}
		if len(st.blacklist) > 0 {
			node["excludePatterns"] = sortedSet(st.blacklist)
		}
	}

	if _, ok := c.arrs[path]; ok {
		if _, known := c.seen[path+"[]"]; known {
			node["items"] = c.build(path + "[]")
		}
	}

	return node
}

// buildCollapsed rewrites an eligible path into a patternProperties node.
// The value schema unions every matched value and fragment value schema
// through a fresh builder, regardless of which original key each came from.
func (c *converter) buildCollapsed(st *objectState, col *collapseInfo) map[string]any {
	sub := NewBuilder()
	for _, s := range col.samples {
		for _, v := range s.values {
			sub.AddValue(v)
		}
		for _, vs := range s.schemas {
			sub.AddSchema(vs)
		}
	}
	value := sub.Schema()
	delete(value, "$schema")

	full := "^" + col.match.Body + "$"
	inner := map[string]any{
		"type":                 "object",
		"propertyNames":        map[string]any{"pattern": full},
		"patternProperties":    map[string]any{full: value},
		"additionalProperties": false,
	}
	if col.match.Comment != "" {
		inner["patternComment"] = col.match.Comment
	}
	if len(st.blacklist) > 0 {
		inner["excludePatterns"] = sortedSet(st.blacklist)
	}

	node := inner
	if col.wrapper != "" {
		node = map[string]any{
			"type":                 "object",
			"properties":           map[string]any{col.wrapper: inner},
			"required":             []string{col.wrapper},
			"additionalProperties": false,
		}
	}

	if col.hasEmpty {
		empty := map[string]any{"maxProperties": 0}
		if col.wrapper != "" {
			empty = map[string]any{
				"type":                 "object",
				"properties":           map[string]any{col.wrapper: map[string]any{"maxProperties": 0}},
				"required":             []string{col.wrapper},
				"additionalProperties": false,
			}
		}
		node = map[string]any{"oneOf": []any{node, empty}}
	}

	return node
}

// --------------------------------------------------------------- helpers --

func mapKeys(m map[string]any) []string {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}

func mapValues(m map[string]any) []any {
	vs := make([]any, 0, len(m))
	for _, k := range mapKeys(m) {
		vs = append(vs, m[k])
	}
	return vs
}

func sortedSet(s map[string]struct{}) []string {
	ks := make([]string, 0, len(s))
	for k := range s {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}

func mergeSet(dst, src map[string]struct{}) {
	for k := range src {
		dst[k] = struct{}{}
	}
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

func schemaTypeList(s map[string]any) []string {
	switch t := s["type"].(type) {
	case string:
		return []string{t}
	case []any:
		return stringList(t)
	case []string:
		return t
	}
	return nil
}

func containsString(ss []string, want string) bool {
	for _, s := range ss {
		if s == want {
			return true
		}
	}
	return false
}

func maxPropertiesZero(s map[string]any) bool {
	switch n := s["maxProperties"].(type) {
	case float64:
		return n == 0
	case int:
		return n == 0
	}
	return false
}

// patternBody extracts the anchor-free pattern body of a node that is
// already shaped as a pseudo array (propertyNames.pattern alongside
// patternProperties). Fragments missing either key are treated as ordinary
// structural content.
func patternBody(s map[string]any) (string, bool) {
	pn, ok := s["propertyNames"].(map[string]any)
	if !ok {
		return "", false
	}
	p, ok := pn["pattern"].(string)
	if !ok {
		return "", false
	}
	if _, ok := s["patternProperties"].(map[string]any); !ok {
		return "", false
	}
	if strings.HasPrefix(p, "^") && strings.HasSuffix(p, "$") {
		p = p[1 : len(p)-1]
	}
	return p, true
}

func patternValueSchemas(s map[string]any) []map[string]any {
	pats, ok := s["patternProperties"].(map[string]any)
	if !ok {
		return nil
	}
	var out []map[string]any
	for _, k := range mapKeys(pats) {
		if m, ok := pats[k].(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
