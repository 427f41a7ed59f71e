package document

import (
	"reflect"
)

// Kind discriminates the three structural kinds of a document node
type Kind uint8

const (
	// KindScalar is any leaf value
	KindScalar Kind = iota

	// KindMapping is a keyed mapping node
	KindMapping

	// KindSequence is an ordered sequence node
	KindSequence
)

// KindOf reports the structural kind of a value
func KindOf(v interface{}) Kind {
	switch v.(type) {
	case map[string]interface{}:
		return KindMapping
	case []interface{}:
		return KindSequence
	default:
		return KindScalar
	}
}

// Clone returns a deep copy of a document.
//
// Mappings and sequences are copied recursively, scalars by value.
// Callers may freely mutate the copy without affecting the original.
func Clone(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = Clone(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = Clone(item)
		}
		return out
	default:
		return val
	}
}

// Equal reports structural equality of two documents.
//
// Scalar leaves compare type-sensitively: int(1) and float64(1) are
// not equal.
func Equal(a, b interface{}) bool {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return false
	}
	switch ka {
	case KindMapping:
		ma := a.(map[string]interface{})
		mb := b.(map[string]interface{})
		if len(ma) != len(mb) {
			return false
		}
		for k, va := range ma {
			vb, ok := mb[k]
			if !ok || !Equal(va, vb) {
				return false
			}
		}
		return true
	case KindSequence:
		sa := a.([]interface{})
		sb := b.([]interface{})
		if len(sa) != len(sb) {
			return false
		}
		for i := range sa {
			if !Equal(sa[i], sb[i]) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(a, b)
	}
}
