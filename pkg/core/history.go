package core

import (
	"context"
	"sort"
	"time"

	"github.com/raybest4u/statemon/pkg/model"
)

// HistoryOption filters and paginates version history queries
type HistoryOption func(*historySettings)

type historySettings struct {
	branch string
	author string
	tag    string
	since  *time.Time
	until  *time.Time
	from   uint64
	to     uint64
	offset int
	limit  int
}

// HistoryBranch restricts history to versions reachable on a branch
func HistoryBranch(name string) HistoryOption {
	return func(s *historySettings) {
		s.branch = name
	}
}

// HistoryAuthor restricts history to versions committed by an author name
func HistoryAuthor(author string) HistoryOption {
	return func(s *historySettings) {
		s.author = author
	}
}

// HistoryTag restricts history to versions carrying a descriptor tag
func HistoryTag(tag string) HistoryOption {
	return func(s *historySettings) {
		s.tag = tag
	}
}

// HistorySince restricts history to versions committed at or after a time
func HistorySince(t time.Time) HistoryOption {
	return func(s *historySettings) {
		s.since = &t
	}
}

// HistoryUntil restricts history to versions committed at or before a time
func HistoryUntil(t time.Time) HistoryOption {
	return func(s *historySettings) {
		s.until = &t
	}
}

// HistoryFrom restricts history to versions numbered at or above from
func HistoryFrom(from uint64) HistoryOption {
	return func(s *historySettings) {
		s.from = from
	}
}

// HistoryTo restricts history to versions numbered at or below to
func HistoryTo(to uint64) HistoryOption {
	return func(s *historySettings) {
		s.to = to
	}
}

// HistoryOffset skips the first entries of the result, after filtering and sorting
func HistoryOffset(offset int) HistoryOption {
	return func(s *historySettings) {
		if offset > 0 {
			s.offset = offset
		}
	}
}

// HistoryLimit caps the number of returned entries
func HistoryLimit(limit int) HistoryOption {
	return func(s *historySettings) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

// VersionHistory lists version descriptors newest-first.
//
// Filters combine conjunctively; pagination applies after filtering
// and sorting. Pure read, no side effects.
func (e *Engine) VersionHistory(_ context.Context, opts ...HistoryOption) model.VersionDescriptors {
	var settings historySettings
	for _, apply := range opts {
		apply(&settings)
	}

	e.mtx.RLock()
	defer e.mtx.RUnlock()

	var onBranch map[uint64]struct{}
	if settings.branch != "" {
		branch, ok := e.branches[settings.branch]
		if !ok {
			return model.VersionDescriptors{}
		}
		onBranch = make(map[uint64]struct{}, len(branch.Versions))
		for _, v := range branch.Versions {
			onBranch[v] = struct{}{}
		}
	}

	out := make(model.VersionDescriptors, 0, len(e.versions))
	for _, desc := range e.versions {
		if !settings.match(desc, onBranch) {
			continue
		}
		out = append(out, desc)
	}
	sort.Sort(out)

	if settings.offset >= len(out) {
		return model.VersionDescriptors{}
	}
	out = out[settings.offset:]
	if settings.limit > 0 && settings.limit < len(out) {
		out = out[:settings.limit]
	}
	return out
}

func (s *historySettings) match(desc model.VersionDescriptor, onBranch map[uint64]struct{}) bool {
	if onBranch != nil {
		if _, ok := onBranch[desc.Version]; !ok {
			return false
		}
	}
	if s.author != "" && desc.Contributor.Name != s.author {
		return false
	}
	if s.tag != "" && !desc.HasTag(s.tag) {
		return false
	}
	if s.since != nil && desc.Timestamp.Before(*s.since) {
		return false
	}
	if s.until != nil && desc.Timestamp.After(*s.until) {
		return false
	}
	if s.from != 0 && desc.Version < s.from {
		return false
	}
	if s.to != 0 && desc.Version > s.to {
		return false
	}
	return true
}
