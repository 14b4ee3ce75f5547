package apispec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siegeai/schemasnap/infer"
)

func TestFromSchemaNil(t *testing.T) {
	assert.Nil(t, FromSchema(nil))
}

func TestFromSchemaObject(t *testing.T) {
	b := infer.NewBuilder()
	b.AddValue(map[string]any{"name": "alice", "mail": "a@b.com"})

	s := FromSchema(b.Schema())
	assert.Equal(t, "object", s.Type)
	assert.ElementsMatch(t, []string{"name", "mail"}, s.Required)

	name := s.Properties["name"].Value
	assert.Equal(t, "string", name.Type)
	assert.Empty(t, name.Format)

	mail := s.Properties["mail"].Value
	assert.Equal(t, "email", mail.Format)
}

func TestFromSchemaArray(t *testing.T) {
	b := infer.NewBuilder()
	b.AddValue([]any{float64(1), float64(2)})

	s := FromSchema(b.Schema())
	assert.Equal(t, "array", s.Type)
	require.NotNil(t, s.Items)
	assert.Equal(t, "integer", s.Items.Value.Type)
}

func TestFromSchemaPseudoArray(t *testing.T) {
	b := infer.NewBuilder()
	b.AddValue(map[string]any{
		"0": map[string]any{"a": float64(1)},
		"1": map[string]any{"a": float64(2)},
		"2": map[string]any{"a": float64(3)},
	})

	s := FromSchema(b.Schema())
	assert.Equal(t, "object", s.Type)
	require.NotNil(t, s.AdditionalProperties.Schema)
	assert.Equal(t, "object", s.AdditionalProperties.Schema.Value.Type)

	assert.Equal(t, "^[0-9]+$", s.Extensions[ExtKeyPattern])
	assert.Equal(t, "Numeric string keys", s.Extensions[ExtPatternComment])
	assert.NotEmpty(t, s.Extensions[ExtExcludePatterns])
}

func TestFromSchemaNullable(t *testing.T) {
	s := FromSchema(map[string]any{"type": "null"})
	assert.True(t, s.Nullable)
	assert.Empty(t, s.Type)

	s = FromSchema(map[string]any{"oneOf": []any{
		map[string]any{"type": "null"},
		map[string]any{"type": "string"},
	}})
	assert.True(t, s.Nullable)
	require.Len(t, s.OneOf, 1)
	assert.Equal(t, "string", s.OneOf[0].Value.Type)
}

func TestFromSchemaClosedObject(t *testing.T) {
	s := FromSchema(map[string]any{
		"type":                 "object",
		"additionalProperties": false,
	})
	require.NotNil(t, s.AdditionalProperties.Has)
	assert.False(t, *s.AdditionalProperties.Has)
}

func TestFromSchemaMaxLength(t *testing.T) {
	s := FromSchema(map[string]any{"type": "string", "maxLength": 0})
	require.NotNil(t, s.MaxLength)
	assert.Equal(t, uint64(0), *s.MaxLength)
}
