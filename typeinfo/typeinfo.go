// Package typeinfo aggregates per-path type and format observations over any
// number of value trees and schema fragments. Paths address nodes the same
// way the enhancer later looks them up: "#" is the root, "/k" descends into
// an object key, "/i" into one array element, "[]" is the shared bucket for
// all elements of an array, and "/*" the shared bucket for all entries of a
// numeric-keyed object. The shared buckets make sibling entries union into
// one description instead of one per index.
package typeinfo

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/siegeai/schemasnap/format"
)

// Primitive type tags.
const (
	TypeNull    = "null"
	TypeBoolean = "boolean"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeString  = "string"
	TypeObject  = "object"
	TypeArray   = "array"
)

// maxDepth bounds recursion on pathologically deep inputs. Deeper subtrees
// are silently left unanalyzed.
const maxDepth = 1000

var numericKey = regexp.MustCompile(`^[0-9]+$`)

// Info is the aggregated record for one path.
type Info struct {
	Types    map[string]struct{}
	Formats  map[string]struct{}
	HasEmpty bool // an empty string was seen
	HasPlain bool // a non-empty string with no recognized format was seen
}

func newInfo() *Info {
	return &Info{
		Types:   make(map[string]struct{}),
		Formats: make(map[string]struct{}),
	}
}

// NormalizedTypes returns the observed type tags sorted, with "integer"
// absorbed by "number" when both are present.
func (i *Info) NormalizedTypes() []string {
	ts := make([]string, 0, len(i.Types))
	_, hasNum := i.Types[TypeNumber]
	for t := range i.Types {
		if t == TypeInteger && hasNum {
			continue
		}
		ts = append(ts, t)
	}
	sort.Strings(ts)
	return ts
}

// SortedFormats returns the observed formats sorted lexically.
func (i *Info) SortedFormats() []string {
	fs := make([]string, 0, len(i.Formats))
	for f := range i.Formats {
		fs = append(fs, f)
	}
	sort.Strings(fs)
	return fs
}

// Collector owns the path table for one inference session. It is not safe
// for concurrent use; every builder owns its own collector.
type Collector struct {
	paths map[string]*Info
}

func NewCollector() *Collector {
	return &Collector{paths: make(map[string]*Info)}
}

func (c *Collector) info(path string) *Info {
	i, ok := c.paths[path]
	if !ok {
		i = newInfo()
		c.paths[path] = i
	}
	return i
}

// Get returns the info recorded at path. When the exact path is absent it
// falls back to the pattern path with the parent segment collapsed to "*"
// (e.g. "#/orders/3/id" -> "#/orders/*/id"). Returns nil when neither is
// known.
func (c *Collector) Get(path string) *Info {
	if i, ok := c.paths[path]; ok {
		return i
	}
	if alt := patternPath(path); alt != "" {
		if i, ok := c.paths[alt]; ok {
			return i
		}
	}
	return nil
}

func patternPath(path string) string {
	i := strings.LastIndex(path, "/")
	if i <= 0 {
		return ""
	}
	j := strings.LastIndex(path[:i], "/")
	if j < 0 {
		return ""
	}
	return path[:j] + "/*" + path[i:]
}

// Collect walks one value tree rooted at path, unioning observations into
// the table. Ingestion order does not affect the aggregate.
func (c *Collector) Collect(v any, path string) {
	c.collect(v, path, 0)
}

func (c *Collector) collect(v any, path string, depth int) {
	if depth > maxDepth {
		return
	}

	switch t := v.(type) {
	case nil:
		c.info(path).Types[TypeNull] = struct{}{}
	case bool:
		c.info(path).Types[TypeBoolean] = struct{}{}
	case string:
		c.collectString(t, path)
	case float64:
		if math.Trunc(t) == t && !math.IsInf(t, 0) && !math.IsNaN(t) {
			c.info(path).Types[TypeInteger] = struct{}{}
		} else {
			c.info(path).Types[TypeNumber] = struct{}{}
		}
	case int:
		c.info(path).Types[TypeInteger] = struct{}{}
	case int64:
		c.info(path).Types[TypeInteger] = struct{}{}
	case map[string]any:
		c.info(path).Types[TypeObject] = struct{}{}
		pseudo := len(t) > 0
		for k := range t {
			if !numericKey.MatchString(k) {
				pseudo = false
				break
			}
		}
		for k, cv := range t {
			c.collect(cv, path+"/"+k, depth+1)
			if pseudo {
				// Numeric keys are an index set; fold every entry into
				// the shared bucket as well.
				c.collect(cv, path+"/*", depth+1)
			}
		}
	case []any:
		c.info(path).Types[TypeArray] = struct{}{}
		for i, cv := range t {
			c.collect(cv, path+"/"+strconv.Itoa(i), depth+1)
			c.collect(cv, path+"[]", depth+1)
		}
	}
}

func (c *Collector) collectString(s, path string) {
	i := c.info(path)
	i.Types[TypeString] = struct{}{}
	if s == "" {
		i.HasEmpty = true
		return
	}
	if f := format.DetectString(s); f != "" {
		i.Formats[f] = struct{}{}
	} else {
		i.HasPlain = true
	}
}

// CollectSchema raises an already built schema fragment back into the same
// table, so that merging a stored schema with fresh samples aggregates the
// same way merging the raw data would have. Unknown or malformed keys are
// ignored rather than rejected.
func (c *Collector) CollectSchema(s map[string]any, path string) {
	c.collectSchema(s, path, 0)
}

func (c *Collector) collectSchema(s map[string]any, path string, depth int) {
	if depth > maxDepth {
		return
	}

	types := schemaTypes(s)
	for _, t := range types {
		c.info(path).Types[t] = struct{}{}
	}

	_, hasCombinator := combinator(s)
	f, hasFormat := s["format"].(string)
	zeroLen := maxLengthZero(s)

	switch {
	case hasFormat:
		i := c.info(path)
		i.Types[TypeString] = struct{}{}
		i.Formats[f] = struct{}{}
	case zeroLen:
		i := c.info(path)
		i.Types[TypeString] = struct{}{}
		i.HasEmpty = true
	case hasType(types, TypeString) && !hasCombinator:
		// A bare string schema asserts no format, so the path must never
		// emit one again.
		c.info(path).HasPlain = true
	}

	for _, key := range []string{"oneOf", "anyOf", "allOf"} {
		if vs, ok := s[key].([]any); ok {
			for _, v := range vs {
				if m, ok := v.(map[string]any); ok {
					c.collectSchema(m, path, depth+1)
				}
			}
		}
	}

	if props, ok := s["properties"].(map[string]any); ok {
		pseudo := len(props) > 0
		for k := range props {
			if !numericKey.MatchString(k) {
				pseudo = false
				break
			}
		}
		for k, v := range props {
			m, ok := v.(map[string]any)
			if !ok {
				continue
			}
			c.collectSchema(m, path+"/"+k, depth+1)
			if pseudo {
				c.collectSchema(m, path+"/*", depth+1)
			}
		}
	}

	if pats, ok := s["patternProperties"].(map[string]any); ok {
		for _, v := range pats {
			if m, ok := v.(map[string]any); ok {
				c.collectSchema(m, path+"/*", depth+1)
			}
		}
	}

	switch items := s["items"].(type) {
	case map[string]any:
		c.collectSchema(items, path+"[]", depth+1)
	case []any:
		for i, v := range items {
			if m, ok := v.(map[string]any); ok {
				c.collectSchema(m, path+"/"+strconv.Itoa(i), depth+1)
			}
		}
	}
}

func schemaTypes(s map[string]any) []string {
	switch t := s["type"].(type) {
	case string:
		return []string{t}
	case []any:
		var ts []string
		for _, v := range t {
			if str, ok := v.(string); ok {
				ts = append(ts, str)
			}
		}
		return ts
	}
	return nil
}

func hasType(types []string, want string) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}

func maxLengthZero(s map[string]any) bool {
	switch n := s["maxLength"].(type) {
	case float64:
		return n == 0
	case int:
		return n == 0
	}
	return false
}

func combinator(s map[string]any) (string, bool) {
	for _, key := range []string{"oneOf", "anyOf", "allOf"} {
		if _, ok := s[key]; ok {
			return key, true
		}
	}
	return "", false
}
