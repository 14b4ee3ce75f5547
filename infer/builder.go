package infer

import (
	"fmt"

	"github.com/valyala/fastjson"

	"github.com/siegeai/schemasnap/typeinfo"
)

// SchemaURI identifies the dialect of every schema the builder produces.
const SchemaURI = "https://json-schema.org/draft/2020-12/schema"

// FormatMode controls whether string format assertions appear in built
// schemas and how they are declared.
type FormatMode string

const (
	// FormatOn emits format assertions as plain annotations.
	FormatOn FormatMode = "on"
	// FormatOff strips every format assertion from the output.
	FormatOff FormatMode = "off"
	// FormatSafe emits formats together with a $vocabulary declaration
	// marking format assertion as optional.
	FormatSafe FormatMode = "safe"
)

// Builder accumulates sample values and previously built schema fragments
// and produces a single unified JSON schema. The same inputs produce the
// same output regardless of the order they were added in, and feeding a
// built schema back into a fresh builder reproduces it.
type Builder struct {
	mode      FormatMode
	collector *typeinfo.Collector
	conv      *converter
}

// Option configures a Builder.
type Option func(*Builder)

// WithFormatMode selects the format emission mode. The default is FormatOn.
func WithFormatMode(m FormatMode) Option {
	return func(b *Builder) { b.mode = m }
}

func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		mode:      FormatOn,
		collector: typeinfo.NewCollector(),
		conv:      newConverter(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddValue folds one decoded sample value into the builder state. Values
// are plain decoded JSON: map[string]any, []any, string, float64, bool, nil.
func (b *Builder) AddValue(v any) {
	b.collector.Collect(v, "#")
	b.conv.addValue(v, "#", 0)
}

// AddBytes parses raw JSON and folds it in as a sample value.
func (b *Builder) AddBytes(data []byte) error {
	v, err := fastjson.ParseBytes(data)
	if err != nil {
		return fmt.Errorf("parse sample: %w", err)
	}
	dec, err := decodeFastJson(v)
	if err != nil {
		return fmt.Errorf("decode sample: %w", err)
	}
	b.AddValue(dec)
	return nil
}

// AddSchema folds a previously built schema into the builder state, so that
// old observations carry the same weight as fresh samples.
func (b *Builder) AddSchema(s map[string]any) {
	if s == nil {
		return
	}
	b.collector.CollectSchema(s, "#")
	b.conv.addSchema(s, "#", 0, false)
}

// Schema materializes the unified schema for everything added so far. The
// builder state is left intact, so further additions and rebuilds are fine.
func (b *Builder) Schema() map[string]any {
	root := b.conv.build("#")
	e := &enhancer{collector: b.collector}
	e.enhance(root, "#")

	root["$schema"] = SchemaURI

	switch b.mode {
	case FormatOff:
		stripFormats(root)
	case FormatSafe:
		root["$vocabulary"] = map[string]any{
			"https://json-schema.org/draft/2020-12/vocab/core":              true,
			"https://json-schema.org/draft/2020-12/vocab/applicator":        true,
			"https://json-schema.org/draft/2020-12/vocab/format-annotation": true,
			"https://json-schema.org/draft/2020-12/vocab/format-assertion":  false,
		}
	}
	return root
}

// stripFormats removes format assertions in place, collapsing oneOf groups
// that exist only to enumerate formats. It walks structural keys only, so a
// property that happens to be named "format" is left alone. A maxLength 0
// branch inside a format group goes with the group; a standalone maxLength 0
// on a node is a length fact and stays.
func stripFormats(n map[string]any) {
	delete(n, "format")

	if vs, ok := n["oneOf"].([]any); ok && formatOnlyVariants(vs) {
		delete(n, "oneOf")
	}

	for _, key := range []string{"properties", "patternProperties"} {
		if m, ok := n[key].(map[string]any); ok {
			for _, v := range m {
				if child, ok := v.(map[string]any); ok {
					stripFormats(child)
				}
			}
		}
	}
	if items, ok := n["items"].(map[string]any); ok {
		stripFormats(items)
	}
	for _, key := range []string{"oneOf", "anyOf", "allOf"} {
		if vs, ok := n[key].([]any); ok {
			for _, v := range vs {
				if child, ok := v.(map[string]any); ok {
					stripFormats(child)
				}
			}
		}
	}
}

// formatOnlyVariants reports whether a oneOf list carries nothing but
// format alternatives (plus an optional empty-string branch).
func formatOnlyVariants(vs []any) bool {
	sawFormat := false
	for _, v := range vs {
		m, ok := v.(map[string]any)
		if !ok {
			return false
		}
		for k := range m {
			if k != "format" && k != "maxLength" {
				return false
			}
		}
		if _, ok := m["format"]; ok {
			sawFormat = true
		}
	}
	return sawFormat
}
