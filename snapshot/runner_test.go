package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	missing, err := store.Load("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	schema := map[string]any{"type": "object"}
	require.NoError(t, store.Save("users", schema))

	loaded, err := store.Load("users")
	require.NoError(t, err)
	assert.Equal(t, "object", loaded["type"])

	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"users"}, names)
}

func TestStoreListIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "raw.json"), []byte("{}"), 0o644))

	store := NewStore(dir)
	require.NoError(t, store.Save("a", map[string]any{"type": "null"}))

	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, names)
}

func TestRunnerCreatesMissingSchema(t *testing.T) {
	store := NewStore(t.TempDir())
	r := NewRunner(store)

	built, err := r.Check("users", map[string]any{"name": "alice"})
	require.NoError(t, err)
	assert.Equal(t, "object", built["type"])
	assert.Equal(t, []string{"users"}, r.Stats().Created)

	stored, err := store.Load("users")
	require.NoError(t, err)
	assert.NotNil(t, stored)
}

func TestRunnerUnchangedSchema(t *testing.T) {
	store := NewStore(t.TempDir())
	r := NewRunner(store)

	_, err := r.Check("users", map[string]any{"name": "alice"})
	require.NoError(t, err)

	r2 := NewRunner(store)
	_, err = r2.Check("users", map[string]any{"name": "bob"})
	require.NoError(t, err)

	st := r2.Stats()
	assert.Empty(t, st.Created)
	assert.Empty(t, st.Updated)
	assert.Empty(t, st.Uncommitted)
}

func TestRunnerReportsUncommittedChange(t *testing.T) {
	store := NewStore(t.TempDir())
	r := NewRunner(store)
	_, err := r.Check("users", map[string]any{"name": "alice"})
	require.NoError(t, err)

	r2 := NewRunner(store)
	_, err = r2.Check("users", map[string]any{"name": "bob", "age": float64(30)})
	require.NoError(t, err)

	st := r2.Stats()
	assert.Equal(t, []string{"users"}, st.Uncommitted)
	assert.NotEmpty(t, st.UncommittedDiffs["users"])

	// The stored copy was left alone.
	stored, err := store.Load("users")
	require.NoError(t, err)
	assert.NotContains(t, stored["properties"], "age")
}

func TestRunnerUpdateCommitsChange(t *testing.T) {
	store := NewStore(t.TempDir())
	r := NewRunner(store)
	_, err := r.Check("users", map[string]any{"name": "alice"})
	require.NoError(t, err)

	r2 := NewRunner(store, WithUpdate(true))
	_, err = r2.Check("users", map[string]any{"name": "bob", "age": float64(30)})
	require.NoError(t, err)

	assert.Equal(t, []string{"users"}, r2.Stats().Updated)

	stored, err := store.Load("users")
	require.NoError(t, err)
	props := stored["properties"].(map[string]any)
	assert.Contains(t, props, "age")
}

func TestRunnerFinishSweepsUntouched(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Save("stale", map[string]any{"type": "object"}))
	require.NoError(t, store.Save("live", map[string]any{"type": "object"}))

	r := NewRunner(store)
	_, err := r.Check("live", map[string]any{})
	require.NoError(t, err)
	require.NoError(t, r.Finish())
	assert.Equal(t, []string{"stale"}, r.Stats().Unused)

	r2 := NewRunner(store, WithUpdate(true))
	_, err = r2.Check("live", map[string]any{})
	require.NoError(t, err)
	require.NoError(t, r2.Finish())
	assert.Equal(t, []string{"stale"}, r2.Stats().Deleted)

	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"live"}, names)
}

func TestRunnerCheckBytes(t *testing.T) {
	store := NewStore(t.TempDir())
	r := NewRunner(store)

	built, err := r.CheckBytes("events", []byte(`{"id": 1}`), []byte(`{"id": 2}`))
	require.NoError(t, err)
	props := built["properties"].(map[string]any)
	assert.Equal(t, "integer", props["id"].(map[string]any)["type"])

	_, err = r.CheckBytes("events", []byte(`{"bad`))
	assert.Error(t, err)
}

func TestEqualIgnoresAnnotations(t *testing.T) {
	a := map[string]any{
		"type":            "object",
		"patternComment":  "Numeric string keys",
		"excludePatterns": []any{`[a-zA-Z]+`},
	}
	b := map[string]any{"type": "object"}

	assert.True(t, Equal(a, b))
	assert.Empty(t, Diff(a, b))
}

func TestEqualNormalizesEncodings(t *testing.T) {
	a := map[string]any{"required": []string{"a"}, "maxLength": 0}
	b := map[string]any{"required": []any{"a"}, "maxLength": float64(0)}

	assert.True(t, Equal(a, b))
}

func TestStatsReport(t *testing.T) {
	st := NewStats()
	assert.Empty(t, st.String())
	assert.False(t, st.HasAnyInfo())

	st.AddCreated("users")
	st.AddUncommitted("events", "+ something")
	st.AddUncommitted("quiet", "   ")
	st.AddUnused("stale")

	assert.True(t, st.HasAnyInfo())
	assert.True(t, st.HasChanges())
	assert.NotContains(t, st.Uncommitted, "quiet")

	out := st.String()
	assert.Contains(t, out, "Created schemas (1):")
	assert.Contains(t, out, "users.schema.json")
	assert.Contains(t, out, "Uncommitted updates (1):")
	assert.Contains(t, out, "+ something")
	assert.Contains(t, out, "Unused schemas (1):")
}
