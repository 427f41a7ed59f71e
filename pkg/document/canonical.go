package document

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// Canonical writes a deterministic byte encoding of a document.
//
// The encoding is stable under mapping insertion order: keys are
// visited sorted. Scalars carry a type marker, so values that would
// collide through a lossy encoding (int 1 vs float64 1, "1" vs 1)
// yield distinct streams. This is the input to fingerprinting and the
// basis for size accounting; it is not meant to be decoded.
func Canonical(w io.Writer, v interface{}) error {
	switch val := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if _, err := fmt.Fprintf(w, "m%d:", len(keys)); err != nil {
			return err
		}
		for _, k := range keys {
			if _, err := fmt.Fprintf(w, "k%d:%s", len(k), k); err != nil {
				return err
			}
			if err := Canonical(w, val[k]); err != nil {
				return err
			}
		}
		return nil
	case []interface{}:
		if _, err := fmt.Fprintf(w, "q%d:", len(val)); err != nil {
			return err
		}
		for _, item := range val {
			if err := Canonical(w, item); err != nil {
				return err
			}
		}
		return nil
	case nil:
		_, err := io.WriteString(w, "z;")
		return err
	case string:
		_, err := fmt.Fprintf(w, "s%d:%s", len(val), val)
		return err
	case bool:
		_, err := fmt.Fprintf(w, "b%s;", strconv.FormatBool(val))
		return err
	default:
		_, err := fmt.Fprintf(w, "v%T:%v;", val, val)
		return err
	}
}

// CanonicalBytes yields the canonical encoding of a document as a byte slice
func CanonicalBytes(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := Canonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
