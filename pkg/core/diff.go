package core

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/raybest4u/statemon/pkg/core/status"
	"github.com/raybest4u/statemon/pkg/document"
	"github.com/raybest4u/statemon/pkg/model"
)

// Diff computes the ordered list of field-level changes between two
// documents.
//
// The traversal is deterministic: mapping keys are visited sorted,
// sequence indices ascending, with sequence removals emitted at
// descending indices so the change list stays applicable in order.
// Neither input is mutated.
//
// A change path indexes back into either document: OldValue is the
// node at the path in a, NewValue the node in b.
func Diff(a, b interface{}) []model.Change {
	d := differ{now: time.Now().UTC()}
	d.walk("", a, b)
	return d.changes
}

type differ struct {
	changes []model.Change
	now     time.Time
}

func (d *differ) record(t model.ChangeType, path string, oldValue, newValue interface{}) {
	d.changes = append(d.changes, model.Change{
		Type:      t,
		Path:      path,
		OldValue:  oldValue,
		NewValue:  newValue,
		Timestamp: d.now,
	})
}

func (d *differ) walk(path string, a, b interface{}) {
	ka, kb := document.KindOf(a), document.KindOf(b)
	if ka != kb {
		// a change of structural kind at a path is a modification
		d.record(model.ChangeModify, path, a, b)
		return
	}
	switch ka {
	case document.KindMapping:
		d.walkMapping(path, a.(map[string]interface{}), b.(map[string]interface{}))
	case document.KindSequence:
		d.walkSequence(path, a.([]interface{}), b.([]interface{}))
	default:
		if !document.Equal(a, b) {
			d.record(model.ChangeModify, path, a, b)
		}
	}
}

func (d *differ) walkMapping(path string, a, b map[string]interface{}) {
	keys := make([]string, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
		seen[k] = struct{}{}
	}
	for k := range b {
		if _, ok := seen[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		childPath := k
		if path != "" {
			childPath = document.JoinPath(path, k)
		}
		va, inA := a[k]
		vb, inB := b[k]
		switch {
		case inA && inB:
			d.walk(childPath, va, vb)
		case inA:
			d.record(model.ChangeRemove, childPath, va, nil)
		default:
			d.record(model.ChangeAdd, childPath, nil, vb)
		}
	}
}

func (d *differ) walkSequence(path string, a, b []interface{}) {
	index := func(i int) string {
		if path == "" {
			return strconv.Itoa(i)
		}
		return document.JoinPath(path, strconv.Itoa(i))
	}
	shared := len(a)
	if len(b) < shared {
		shared = len(b)
	}
	for i := 0; i < shared; i++ {
		d.walk(index(i), a[i], b[i])
	}
	// growth appends ascending, shrinkage removes descending
	for i := shared; i < len(b); i++ {
		d.record(model.ChangeAdd, index(i), nil, b[i])
	}
	for i := len(a) - 1; i >= shared; i-- {
		d.record(model.ChangeRemove, index(i), a[i], nil)
	}
}

// ApplyChanges replays a change list onto a document and returns the
// result. The input document is not mutated.
//
// For any documents A and B, ApplyChanges(A, Diff(A, B)) reproduces B.
func ApplyChanges(doc interface{}, changes []model.Change) (interface{}, error) {
	out := document.Clone(doc)
	var err error
	for _, change := range changes {
		switch change.Type {
		case model.ChangeAdd, model.ChangeModify:
			out, err = document.Set(out, change.Path, document.Clone(change.NewValue))
		case model.ChangeRemove:
			out, err = document.Delete(out, change.Path)
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DiffVersions resolves two version payloads and diffs them.
//
// Diffs whose change count exceeds the configured maximum are rejected
// with ErrDiffTooLarge.
func (e *Engine) DiffVersions(ctx context.Context, a, b uint64) (_ []model.Change, err error) {
	defer func(t0 time.Time) {
		if e.MetricsEnabled() {
			e.m.Usage.UsedAll(t0, "DiffVersions")(err)
		}
	}(time.Now())

	docA, err := e.CheckoutVersion(ctx, a)
	if err != nil {
		return nil, err
	}
	docB, err := e.CheckoutVersion(ctx, b)
	if err != nil {
		return nil, err
	}
	changes := Diff(docA, docB)
	if len(changes) > e.maxDiffSize {
		return nil, status.ErrDiffTooLarge
	}
	return changes, nil
}
