package snapshot

import (
	"github.com/google/go-cmp/cmp"

	gojson "github.com/goccy/go-json"

	"github.com/siegeai/schemasnap/infer"
)

// Runner reconciles named schemas against fresh samples. Each Check merges
// the stored schema with the samples, compares, and either rewrites the
// stored copy (update mode) or records the pending change. Finish sweeps
// stored schemas that no Check touched.
type Runner struct {
	store  *Store
	update bool
	mode   infer.FormatMode
	stats  *Stats
	seen   map[string]struct{}
}

type RunnerOption func(*Runner)

// WithUpdate makes the runner rewrite changed schemas and delete unused
// ones instead of only reporting them.
func WithUpdate(update bool) RunnerOption {
	return func(r *Runner) { r.update = update }
}

func WithFormatMode(m infer.FormatMode) RunnerOption {
	return func(r *Runner) { r.mode = m }
}

func WithStats(s *Stats) RunnerOption {
	return func(r *Runner) { r.stats = s }
}

func NewRunner(store *Store, opts ...RunnerOption) *Runner {
	r := &Runner{
		store: store,
		mode:  infer.FormatOn,
		stats: NewStats(),
		seen:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) Stats() *Stats {
	return r.stats
}

// Check merges the stored schema for name with the given sample values and
// returns the unified schema. Missing schemas are created; changed ones are
// rewritten only in update mode.
func (r *Runner) Check(name string, samples ...any) (map[string]any, error) {
	r.seen[name] = struct{}{}

	stored, err := r.store.Load(name)
	if err != nil {
		return nil, err
	}

	b := infer.NewBuilder(infer.WithFormatMode(r.mode))
	if stored != nil {
		b.AddSchema(stored)
	}
	for _, v := range samples {
		b.AddValue(v)
	}
	built := b.Schema()

	switch {
	case stored == nil:
		if err := r.store.Save(name, built); err != nil {
			return nil, err
		}
		r.stats.AddCreated(name)
	case Equal(stored, built):
		// Unchanged.
	default:
		diff := Diff(stored, built)
		if r.update {
			if err := r.store.Save(name, built); err != nil {
				return nil, err
			}
			r.stats.AddUpdated(name, diff)
		} else {
			r.stats.AddUncommitted(name, diff)
		}
	}

	return built, nil
}

// CheckBytes is Check for raw JSON samples.
func (r *Runner) CheckBytes(name string, samples ...[]byte) (map[string]any, error) {
	decoded := make([]any, 0, len(samples))
	for _, data := range samples {
		var v any
		if err := gojson.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		decoded = append(decoded, v)
	}
	return r.Check(name, decoded...)
}

// Finish sweeps stored schemas no Check touched this run. In update mode
// they are deleted, otherwise reported as unused.
func (r *Runner) Finish() error {
	names, err := r.store.List()
	if err != nil {
		return err
	}
	for _, name := range names {
		if _, ok := r.seen[name]; ok {
			continue
		}
		if r.update {
			if err := r.store.Delete(name); err != nil {
				return err
			}
			r.stats.AddDeleted(name)
		} else {
			r.stats.AddUnused(name)
		}
	}
	return nil
}

// Equal compares two schemas structurally, ignoring the annotation keys
// patternComment and excludePatterns and any encoding differences.
func Equal(a, b map[string]any) bool {
	return cmp.Equal(normalized(a), normalized(b))
}

// Diff renders a human readable structural diff, ignoring annotations.
func Diff(a, b map[string]any) string {
	return cmp.Diff(normalized(a), normalized(b))
}

func normalized(s map[string]any) map[string]any {
	return canonical(stripAnnotations(s))
}

// canonical round-trips through JSON so that equivalent Go representations
// (int vs float64, []string vs []any) compare equal.
func canonical(s map[string]any) map[string]any {
	data, err := gojson.Marshal(s)
	if err != nil {
		return s
	}
	var out map[string]any
	if err := gojson.Unmarshal(data, &out); err != nil {
		return s
	}
	return out
}

func stripAnnotations(s map[string]any) map[string]any {
	if s == nil {
		return nil
	}
	out := make(map[string]any, len(s))
	for k, v := range s {
		if k == "patternComment" || k == "excludePatterns" {
			continue
		}
		out[k] = stripValue(v)
	}
	return out
}

func stripValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return stripAnnotations(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = stripValue(e)
		}
		return out
	}
	return v
}
