package document

import (
	"strconv"
	"strings"

	"github.com/raybest4u/statemon/pkg/errors"
)

// Paths address nodes in a document as the dot-joined sequence of keys
// from the root. Sequence elements address by decimal index.
//
// Keys containing '.' are not supported: the path grammar has no escape.

// SplitPath breaks a dotted path into its segments
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// JoinPath assembles path segments into a dotted path
func JoinPath(segments ...string) string {
	return strings.Join(segments, ".")
}

// Get resolves a dotted path inside a document.
// The empty path resolves to the document itself.
func Get(doc interface{}, path string) (interface{}, bool) {
	node := doc
	for _, segment := range SplitPath(path) {
		switch val := node.(type) {
		case map[string]interface{}:
			child, ok := val[segment]
			if !ok {
				return nil, false
			}
			node = child
		case []interface{}:
			i, err := strconv.Atoi(segment)
			if err != nil || i < 0 || i >= len(val) {
				return nil, false
			}
			node = val[i]
		default:
			return nil, false
		}
	}
	return node, true
}

// Set writes a value at a dotted path and returns the modified document.
//
// Intermediate containers must exist. On a sequence, an index equal to
// the current length appends. The document is modified in place except
// when a sequence grows, so callers use the returned root.
func Set(doc interface{}, path string, value interface{}) (interface{}, error) {
	segments := SplitPath(path)
	if len(segments) == 0 {
		return value, nil
	}
	return setSegments(doc, segments, value, path)
}

func setSegments(node interface{}, segments []string, value interface{}, full string) (interface{}, error) {
	head := segments[0]
	switch val := node.(type) {
	case map[string]interface{}:
		if len(segments) == 1 {
			val[head] = value
			return val, nil
		}
		child, ok := val[head]
		if !ok {
			return nil, errors.New("no node at path").Wrap(errors.New(full))
		}
		newChild, err := setSegments(child, segments[1:], value, full)
		if err != nil {
			return nil, err
		}
		val[head] = newChild
		return val, nil
	case []interface{}:
		i, err := strconv.Atoi(head)
		if err != nil || i < 0 || i > len(val) {
			return nil, errors.New("invalid sequence index").Wrap(errors.New(full))
		}
		if len(segments) == 1 {
			if i == len(val) {
				return append(val, value), nil
			}
			val[i] = value
			return val, nil
		}
		if i == len(val) {
			return nil, errors.New("no node at path").Wrap(errors.New(full))
		}
		newChild, err2 := setSegments(val[i], segments[1:], value, full)
		if err2 != nil {
			return nil, err2
		}
		val[i] = newChild
		return val, nil
	default:
		return nil, errors.New("cannot descend into scalar").Wrap(errors.New(full))
	}
}

// Delete removes the node at a dotted path and returns the modified document.
// Removing a sequence element shifts later elements left.
func Delete(doc interface{}, path string) (interface{}, error) {
	segments := SplitPath(path)
	if len(segments) == 0 {
		return nil, errors.New("cannot delete the document root")
	}
	return deleteSegments(doc, segments, path)
}

func deleteSegments(node interface{}, segments []string, full string) (interface{}, error) {
	head := segments[0]
	switch val := node.(type) {
	case map[string]interface{}:
		if len(segments) == 1 {
			if _, ok := val[head]; !ok {
				return nil, errors.New("no node at path").Wrap(errors.New(full))
			}
			delete(val, head)
			return val, nil
		}
		child, ok := val[head]
		if !ok {
			return nil, errors.New("no node at path").Wrap(errors.New(full))
		}
		newChild, err := deleteSegments(child, segments[1:], full)
		if err != nil {
			return nil, err
		}
		val[head] = newChild
		return val, nil
	case []interface{}:
		i, err := strconv.Atoi(head)
		if err != nil || i < 0 || i >= len(val) {
			return nil, errors.New("invalid sequence index").Wrap(errors.New(full))
		}
		if len(segments) == 1 {
			return append(val[:i], val[i+1:]...), nil
		}
		newChild, err2 := deleteSegments(val[i], segments[1:], full)
		if err2 != nil {
			return nil, err2
		}
		val[i] = newChild
		return val, nil
	default:
		return nil, errors.New("cannot descend into scalar").Wrap(errors.New(full))
	}
}
