package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/siegeai/schemasnap/infer"
)

func schemaOf(vs ...any) map[string]any {
	b := infer.NewBuilder()
	for _, v := range vs {
		b.AddValue(v)
	}
	return b.Schema()
}

func TestMergeWithNil(t *testing.T) {
	s := schemaOf(map[string]any{"a": float64(1)})

	assert.Nil(t, Schemas(nil, nil))
	assert.Equal(t, s, Schemas(s, nil))
	assert.Equal(t, s, Schemas(nil, s))
}

func TestMergeUnionsProperties(t *testing.T) {
	a := schemaOf(map[string]any{"a": float64(1)})
	b := schemaOf(map[string]any{"b": "x"})

	m := Schemas(a, b)
	props := m["properties"].(map[string]any)
	assert.Contains(t, props, "a")
	assert.Contains(t, props, "b")
	assert.NotContains(t, m, "required")
}

func TestMergeCommutative(t *testing.T) {
	a := schemaOf(map[string]any{"a": float64(1), "b": "a@b.com"})
	b := schemaOf(map[string]any{"a": 1.5})

	assert.Equal(t, Schemas(a, b), Schemas(b, a))
}

func TestMergeIdempotent(t *testing.T) {
	s := schemaOf(map[string]any{"a": float64(1), "b": "a@b.com"})
	assert.Equal(t, s, Schemas(s, s))
}

func TestMergeAll(t *testing.T) {
	a := schemaOf(map[string]any{"a": float64(1)})
	b := schemaOf(map[string]any{"b": true})

	assert.Nil(t, All())
	assert.Nil(t, All(nil, nil))

	m := All(a, nil, b)
	props := m["properties"].(map[string]any)
	assert.Len(t, props, 2)
}
