package core

import (
	"context"
	"testing"

	"github.com/raybest4u/statemon/pkg/core/status"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBranch(t *testing.T) {
	ctx := context.Background()
	e := testEngine(t)
	v1 := mustCommit(t, e, gameState(1, 1500, 0))
	v2 := mustCommit(t, e, gameState(2, 1480, 3))

	require.NoError(t, e.CreateBranch(ctx, "from-head", BranchDescription("forked at head")))
	require.NoError(t, e.CreateBranch(ctx, "from-v1", BranchBase(v1)))

	branches := e.Branches()
	require.Len(t, branches, 3)

	byName := make(map[string]uint64, len(branches))
	for _, b := range branches {
		byName[b.Name] = b.BaseVersion
	}
	assert.EqualValues(t, v2, byName["from-head"])
	assert.EqualValues(t, v1, byName["from-v1"])

	// creating a branch does not switch to it
	assert.Equal(t, "main", e.CurrentBranch().Name)
}

func TestCreateBranchValidation(t *testing.T) {
	ctx := context.Background()
	e := testEngine(t)
	mustCommit(t, e, gameState(1, 1500, 0))

	testCases := []struct {
		name     string
		branch   string
		opts     []BranchOption
		expected error
	}{
		{
			name:     "duplicate name",
			branch:   "main",
			expected: status.ErrAlreadyExists,
		},
		{
			name:     "missing base version",
			branch:   "orphaned",
			opts:     []BranchOption{BranchBase(42)},
			expected: status.ErrNotFound,
		},
		{
			name:   "invalid name",
			branch: "bad/name",
		},
		{
			name:   "empty name",
			branch: "",
		},
	}
	for _, testcase := range testCases {
		t.Run(testcase.name, func(t *testing.T) {
			err := e.CreateBranch(ctx, testcase.branch, testcase.opts...)
			require.Error(t, err)
			if testcase.expected != nil {
				require.ErrorIs(t, err, testcase.expected)
			}
		})
	}
}

func TestCreateBranchLimit(t *testing.T) {
	ctx := context.Background()
	e := testEngine(t, MaxBranches(3))
	mustCommit(t, e, gameState(1, 1500, 0))

	require.NoError(t, e.CreateBranch(ctx, "two"))
	require.NoError(t, e.CreateBranch(ctx, "three"))

	err := e.CreateBranch(ctx, "four")
	require.Error(t, err)
	require.ErrorIs(t, err, status.ErrLimitExceeded)

	// deleting makes room again
	require.NoError(t, e.DeleteBranch(ctx, "three"))
	require.NoError(t, e.CreateBranch(ctx, "four"))
}

func TestSwitchBranch(t *testing.T) {
	ctx := context.Background()
	e := testEngine(t)
	mustCommit(t, e, gameState(1, 1500, 0))
	require.NoError(t, e.CreateBranch(ctx, "experiment"))

	require.NoError(t, e.SwitchBranch("experiment"))
	assert.Equal(t, "experiment", e.CurrentBranch().Name)

	err := e.SwitchBranch("ghost")
	require.Error(t, err)
	require.ErrorIs(t, err, status.ErrNotFound)
	assert.Equal(t, "experiment", e.CurrentBranch().Name)
}

func TestBranchesDivergeIndependently(t *testing.T) {
	ctx := context.Background()
	e := testEngine(t)
	base := mustCommit(t, e, gameState(1, 1500, 0))

	require.NoError(t, e.CreateBranch(ctx, "experiment"))
	require.NoError(t, e.SwitchBranch("experiment"))
	onExperiment := mustCommit(t, e, gameState(2, 1480, 3))

	require.NoError(t, e.SwitchBranch("main"))
	onMain := mustCommit(t, e, gameState(2, 1700, 7))

	branches := e.Branches()
	byName := make(map[string][]uint64, len(branches))
	for _, b := range branches {
		byName[b.Name] = b.Versions
	}
	assert.EqualValues(t, []uint64{base, onMain}, byName["main"])
	assert.EqualValues(t, []uint64{base, onExperiment}, byName["experiment"])
}

func TestDeleteBranch(t *testing.T) {
	ctx := context.Background()
	e := testEngine(t)
	mustCommit(t, e, gameState(1, 1500, 0))

	require.NoError(t, e.CreateBranch(ctx, "doomed"))
	require.NoError(t, e.DeleteBranch(ctx, "doomed"))

	_, _, err := e.Checkout(ctx, "doomed")
	require.Error(t, err)
	require.ErrorIs(t, err, status.ErrNotFound)
}

func TestDeleteBranchRefusals(t *testing.T) {
	ctx := context.Background()
	e := testEngine(t)
	mustCommit(t, e, gameState(1, 1500, 0))

	require.NoError(t, e.CreateBranch(ctx, "armored", BranchProtected(true)))
	require.NoError(t, e.CreateBranch(ctx, "active"))
	require.NoError(t, e.SwitchBranch("active"))

	testCases := []struct {
		name     string
		branch   string
		expected error
	}{
		{name: "unknown branch", branch: "ghost", expected: status.ErrNotFound},
		{name: "active branch", branch: "active", expected: status.ErrBranchProtected},
		{name: "default branch", branch: "main", expected: status.ErrBranchProtected},
		{name: "protected branch", branch: "armored", expected: status.ErrBranchProtected},
	}
	for _, testcase := range testCases {
		t.Run(testcase.name, func(t *testing.T) {
			err := e.DeleteBranch(ctx, testcase.branch)
			require.Error(t, err)
			require.ErrorIs(t, err, testcase.expected)
		})
	}
}

func TestDeleteBranchPrunesOrphans(t *testing.T) {
	ctx := context.Background()
	e := testEngine(t)
	shared := mustCommit(t, e, gameState(1, 1500, 0))

	require.NoError(t, e.CreateBranch(ctx, "doomed"))
	require.NoError(t, e.SwitchBranch("doomed"))
	orphan := mustCommit(t, e, gameState(2, 1480, 3))
	tagged := mustCommit(t, e, gameState(3, 1460, 5), CommitTags("keepsake"))

	require.NoError(t, e.SwitchBranch("main"))
	require.NoError(t, e.DeleteBranch(ctx, "doomed"))

	// the version only reachable from the deleted branch is gone
	_, err := e.Version(orphan)
	require.ErrorIs(t, err, status.ErrNotFound)

	// tagged and shared versions survive
	_, err = e.Version(tagged)
	require.NoError(t, err)
	_, err = e.Version(shared)
	require.NoError(t, err)
}
