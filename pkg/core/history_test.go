package core

import (
	"context"
	"testing"
	"time"

	"github.com/raybest4u/statemon/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// historyEngine commits five versions with varying authors, tags and
// timestamps one minute apart, plus a sixth on a side branch
func historyEngine(t *testing.T) *Engine {
	t.Helper()
	ctx := context.Background()

	now := testClockStart
	e := testEngine(t, Clock(func() time.Time { return now }))

	authors := []string{"alice", "bob", "alice", "alice", "bob"}
	for i, author := range authors {
		opts := []CommitOption{
			CommitContributor(model.Contributor{Name: author}),
		}
		if i == 2 {
			opts = append(opts, CommitTags("milestone"))
		}
		mustCommit(t, e, gameState(i+1, 1500, float64(i)), opts...)
		now = now.Add(time.Minute)
	}

	require.NoError(t, e.CreateBranch(ctx, "side"))
	require.NoError(t, e.SwitchBranch("side"))
	mustCommit(t, e, gameState(9, 1500, 9), CommitContributor(model.Contributor{Name: "carol"}))
	require.NoError(t, e.SwitchBranch("main"))
	return e
}

func versionNumbers(descriptors model.VersionDescriptors) []uint64 {
	out := make([]uint64, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, d.Version)
	}
	return out
}

func TestVersionHistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	e := historyEngine(t)

	history := e.VersionHistory(ctx)
	assert.EqualValues(t, []uint64{6, 5, 4, 3, 2, 1}, versionNumbers(history))
}

func TestVersionHistoryFilters(t *testing.T) {
	ctx := context.Background()
	e := historyEngine(t)

	testCases := []struct {
		name     string
		opts     []HistoryOption
		expected []uint64
	}{
		{
			name:     "by author",
			opts:     []HistoryOption{HistoryAuthor("bob")},
			expected: []uint64{5, 2},
		},
		{
			name:     "by branch",
			opts:     []HistoryOption{HistoryBranch("side")},
			expected: []uint64{6, 5},
		},
		{
			name:     "by tag",
			opts:     []HistoryOption{HistoryTag("milestone")},
			expected: []uint64{3},
		},
		{
			name:     "by version range",
			opts:     []HistoryOption{HistoryFrom(2), HistoryTo(4)},
			expected: []uint64{4, 3, 2},
		},
		{
			name: "by time range",
			opts: []HistoryOption{
				HistorySince(testClockStart.Add(time.Minute)),
				HistoryUntil(testClockStart.Add(3 * time.Minute)),
			},
			expected: []uint64{4, 3, 2},
		},
		{
			name:     "conjunction",
			opts:     []HistoryOption{HistoryAuthor("alice"), HistoryFrom(2)},
			expected: []uint64{4, 3},
		},
		{
			name:     "unknown branch",
			opts:     []HistoryOption{HistoryBranch("ghost")},
			expected: []uint64{},
		},
		{
			name:     "unknown author",
			opts:     []HistoryOption{HistoryAuthor("mallory")},
			expected: []uint64{},
		},
	}
	for _, testcase := range testCases {
		t.Run(testcase.name, func(t *testing.T) {
			history := e.VersionHistory(ctx, testcase.opts...)
			assert.EqualValues(t, testcase.expected, versionNumbers(history))
		})
	}
}

func TestVersionHistoryPagination(t *testing.T) {
	ctx := context.Background()
	e := historyEngine(t)

	page := e.VersionHistory(ctx, HistoryLimit(2))
	assert.EqualValues(t, []uint64{6, 5}, versionNumbers(page))

	page = e.VersionHistory(ctx, HistoryOffset(2), HistoryLimit(2))
	assert.EqualValues(t, []uint64{4, 3}, versionNumbers(page))

	page = e.VersionHistory(ctx, HistoryOffset(5))
	assert.EqualValues(t, []uint64{1}, versionNumbers(page))

	page = e.VersionHistory(ctx, HistoryOffset(99))
	assert.Empty(t, page)
}
