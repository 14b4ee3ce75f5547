// Package merge unifies previously built schemas without access to the
// samples that produced them.
package merge

import "github.com/siegeai/schemasnap/infer"

// Schemas merges two schemas into one describing everything either of them
// described. Merging is commutative and idempotent; merging a schema with
// nil returns it unchanged.
func Schemas(a, b map[string]any) map[string]any {
	if a == nil && b == nil {
		return nil
	}
	if a != nil && b == nil {
		return a
	}
	if a == nil && b != nil {
		return b
	}

	bld := infer.NewBuilder()
	bld.AddSchema(a)
	bld.AddSchema(b)
	return bld.Schema()
}

// All merges any number of schemas, skipping nils.
func All(ss ...map[string]any) map[string]any {
	bld := infer.NewBuilder()
	n := 0
	for _, s := range ss {
		if s == nil {
			continue
		}
		bld.AddSchema(s)
		n++
	}
	if n == 0 {
		return nil
	}
	return bld.Schema()
}
