package infer

import (
	"github.com/valyala/fastjson"
)

// decodeFastJson lowers a fastjson value into the native tree the collector
// and converter walk: map[string]any, []any, string, float64, bool, nil.
func decodeFastJson(v *fastjson.Value) (any, error) {
	switch v.Type() {
	case fastjson.TypeObject:
		o, err := v.Object()
		if err != nil {
			return nil, err
		}
		return decodeFastJsonObject(o)
	case fastjson.TypeArray:
		a, err := v.Array()
		if err != nil {
			return nil, err
		}
		return decodeFastJsonArray(a)
	case fastjson.TypeString:
		b, err := v.StringBytes()
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case fastjson.TypeNumber:
		return v.Float64()
	case fastjson.TypeTrue:
		return true, nil
	case fastjson.TypeFalse:
		return false, nil
	case fastjson.TypeNull:
		return nil, nil
	}

	panic("should be unreachable")
}

func decodeFastJsonObject(o *fastjson.Object) (any, error) {
	m := make(map[string]any)

	var visitErr error
	o.Visit(func(key []byte, v *fastjson.Value) {
		if visitErr != nil {
			return
		}
		child, childErr := decodeFastJson(v)
		if childErr != nil {
			visitErr = childErr
			return
		}
		m[string(key)] = child
	})

	if visitErr != nil {
		return nil, visitErr
	}
	return m, nil
}

func decodeFastJsonArray(vs []*fastjson.Value) (any, error) {
	es := make([]any, len(vs))
	for i, v := range vs {
		e, err := decodeFastJson(v)
		if err != nil {
			return nil, err
		}
		es[i] = e
	}
	return es, nil
}
