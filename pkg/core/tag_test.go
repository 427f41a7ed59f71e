package core

import (
	"context"
	"testing"

	"github.com/raybest4u/statemon/pkg/core/status"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTag(t *testing.T) {
	ctx := context.Background()
	e := testEngine(t)
	v := mustCommit(t, e, gameState(1, 1500, 0))

	require.NoError(t, e.CreateTag(ctx, "v1", v, TagDescription("first release")))

	tags := e.Tags()
	require.Len(t, tags, 1)
	assert.Equal(t, "v1", tags[0].Name)
	assert.EqualValues(t, v, tags[0].Version)
	assert.Equal(t, "first release", tags[0].Description)
	assert.False(t, tags[0].Automated)
	assert.Equal(t, testClockStart, tags[0].Created)
}

func TestCreateTagValidation(t *testing.T) {
	ctx := context.Background()
	e := testEngine(t)
	v := mustCommit(t, e, gameState(1, 1500, 0))
	require.NoError(t, e.CreateTag(ctx, "taken", v))

	testCases := []struct {
		name     string
		tag      string
		version  uint64
		expected error
	}{
		{name: "duplicate", tag: "taken", version: v, expected: status.ErrAlreadyExists},
		{name: "missing version", tag: "dangling", version: 42, expected: status.ErrNotFound},
		{name: "invalid name", tag: "no spaces allowed", version: v},
		{name: "empty name", tag: "", version: v},
	}
	for _, testcase := range testCases {
		t.Run(testcase.name, func(t *testing.T) {
			err := e.CreateTag(ctx, testcase.tag, testcase.version)
			require.Error(t, err)
			if testcase.expected != nil {
				require.ErrorIs(t, err, testcase.expected)
			}
		})
	}
}

func TestDeleteTag(t *testing.T) {
	ctx := context.Background()
	e := testEngine(t)
	v := mustCommit(t, e, gameState(1, 1500, 0))

	require.NoError(t, e.CreateTag(ctx, "v1", v))
	require.NoError(t, e.DeleteTag(ctx, "v1"))
	assert.Empty(t, e.Tags())

	err := e.DeleteTag(ctx, "v1")
	require.Error(t, err)
	require.ErrorIs(t, err, status.ErrNotFound)

	// the tagged version is untouched
	_, err = e.Version(v)
	require.NoError(t, err)
}

func TestTagsSorted(t *testing.T) {
	ctx := context.Background()
	e := testEngine(t)
	v := mustCommit(t, e, gameState(1, 1500, 0))

	require.NoError(t, e.CreateTag(ctx, "zeta", v))
	require.NoError(t, e.CreateTag(ctx, "alpha", v))

	tags := e.Tags()
	require.Len(t, tags, 2)
	assert.Equal(t, "alpha", tags[0].Name)
	assert.Equal(t, "zeta", tags[1].Name)
}
