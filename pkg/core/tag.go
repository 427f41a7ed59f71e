package core

import (
	"context"
	"time"

	"github.com/raybest4u/statemon/pkg/core/status"
	"github.com/raybest4u/statemon/pkg/model"

	"go.uber.org/zap"
)

// TagOption sets options for tag creation
type TagOption func(*tagSettings)

type tagSettings struct {
	description string
	automated   bool
}

// TagDescription sets the description of the new tag
func TagDescription(description string) TagOption {
	return func(s *tagSettings) {
		s.description = description
	}
}

// TagAutomated marks the tag as system-generated. Automated tags may
// be pruned by age; user tags are not.
func TagAutomated(automated bool) TagOption {
	return func(s *tagSettings) {
		s.automated = automated
	}
}

// CreateTag aliases a name to a version. Pure metadata record: no
// payload copy. Fails with ErrAlreadyExists on a duplicate name and
// ErrNotFound when the version does not exist.
func (e *Engine) CreateTag(_ context.Context, name string, version uint64, opts ...TagOption) (err error) {
	defer func(t0 time.Time) {
		if e.MetricsEnabled() {
			e.m.Usage.UsedAll(t0, "CreateTag")(err)
		}
	}(time.Now())

	if err = model.ValidateTagName(name); err != nil {
		return err
	}

	var settings tagSettings
	for _, apply := range opts {
		apply(&settings)
	}

	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.createTagLocked(name, version, settings.description, settings.automated, e.clock())
}

func (e *Engine) createTagLocked(name string, version uint64, description string, automated bool, now time.Time) error {
	if _, ok := e.tags[name]; ok {
		return status.ErrAlreadyExists
	}
	if _, ok := e.versions[version]; !ok {
		return status.ErrNotFound
	}
	e.tags[name] = *model.NewTagDescriptor(name, version,
		model.TagDescription(description),
		model.TagAutomated(automated),
		model.TagTimestamp(now),
	)
	e.l.Info("created tag",
		zap.String("tag", name),
		zap.Uint64("version", version),
		zap.Bool("automated", automated),
	)
	return nil
}

// DeleteTag removes a tag record. The tagged version is unaffected,
// though it may become eligible for pruning.
func (e *Engine) DeleteTag(_ context.Context, name string) (err error) {
	defer func(t0 time.Time) {
		if e.MetricsEnabled() {
			e.m.Usage.UsedAll(t0, "DeleteTag")(err)
		}
	}(time.Now())

	e.mtx.Lock()
	defer e.mtx.Unlock()

	if _, ok := e.tags[name]; !ok {
		return status.ErrNotFound
	}
	delete(e.tags, name)
	e.l.Info("deleted tag", zap.String("tag", name))
	return nil
}
