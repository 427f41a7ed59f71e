package core

import (
	"context"
	"testing"
	"time"

	"github.com/raybest4u/statemon/pkg/core/status"
	"github.com/raybest4u/statemon/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitSequence(t *testing.T) {
	ctx := context.Background()
	e := testEngine(t)

	v1 := mustCommit(t, e, gameState(1, 1500, 0), CommitMessage("first"))
	assert.EqualValues(t, 1, v1)

	v2 := mustCommit(t, e, gameState(2, 1480, 3),
		CommitMessage("second"),
		CommitContributor(model.Contributor{Name: "alice", Email: "alice@example.com"}),
	)
	assert.EqualValues(t, 2, v2)

	branch := e.CurrentBranch()
	assert.EqualValues(t, v2, branch.CurrentVersion)
	assert.EqualValues(t, []uint64{1, 2}, branch.Versions)

	desc1, err := e.Version(v1)
	require.NoError(t, err)
	assert.Nil(t, desc1.ParentVersion)

	desc2, err := e.Version(v2)
	require.NoError(t, err)
	require.NotNil(t, desc2.ParentVersion)
	assert.EqualValues(t, v1, *desc2.ParentVersion)
	assert.Equal(t, "alice", desc2.Contributor.Name)
	assert.NotEmpty(t, desc2.ID)
	assert.NotEmpty(t, desc2.Checksum)
	assert.NotZero(t, desc2.Size)

	_, err = e.DiffVersions(ctx, v1, v2)
	require.NoError(t, err)
}

func TestCommitIsolatesCaller(t *testing.T) {
	ctx := context.Background()
	e := testEngine(t)

	doc := gameState(1, 1500, 0)
	v := mustCommit(t, e, doc)

	// mutating the committed document must not reach the stored payload
	doc["round"] = float64(99)

	got, err := e.CheckoutVersion(ctx, v)
	require.NoError(t, err)
	m, ok := got.(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 1, m["round"])
}

func TestCommitNormalizesNumbers(t *testing.T) {
	ctx := context.Background()
	e := testEngine(t)

	v := mustCommit(t, e, map[string]interface{}{
		"round": 7,
		"score": int64(1200),
		"ratio": float32(0.5),
	})

	got, err := e.CheckoutVersion(ctx, v)
	require.NoError(t, err)
	m, ok := got.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(7), m["round"])
	assert.Equal(t, float64(1200), m["score"])
	assert.Equal(t, float64(0.5), m["ratio"])
}

func TestCommitTags(t *testing.T) {
	e := testEngine(t)

	v := mustCommit(t, e, gameState(1, 1500, 0), CommitTags("milestone", "milestone"))

	desc, err := e.Version(v)
	require.NoError(t, err)
	assert.True(t, desc.HasTag("milestone"))

	tags := e.Tags()
	require.Len(t, tags, 1)
	assert.Equal(t, "milestone", tags[0].Name)
	assert.EqualValues(t, v, tags[0].Version)
	assert.False(t, tags[0].Automated)
}

func TestCommitTagCollisionDoesNotFail(t *testing.T) {
	e := testEngine(t)

	v1 := mustCommit(t, e, gameState(1, 1500, 0), CommitTags("keep"))
	v2 := mustCommit(t, e, gameState(2, 1480, 3), CommitTags("keep"))
	assert.Greater(t, v2, v1)

	// the tag record still points at the first version
	tags := e.Tags()
	require.Len(t, tags, 1)
	assert.EqualValues(t, v1, tags[0].Version)

	// but both descriptors carry it
	desc2, err := e.Version(v2)
	require.NoError(t, err)
	assert.True(t, desc2.HasTag("keep"))
}

func TestCommitCancelledContext(t *testing.T) {
	e := testEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Commit(ctx, gameState(1, 1500, 0))
	require.Error(t, err)
	require.ErrorIs(t, err, status.ErrCommitFailed)
}

func TestCommitScalarDocument(t *testing.T) {
	ctx := context.Background()
	e := testEngine(t)

	v := mustCommit(t, e, "just a string")
	got, err := e.CheckoutVersion(ctx, v)
	require.NoError(t, err)
	assert.Equal(t, "just a string", got)

	v = mustCommit(t, e, nil)
	got, err = e.CheckoutVersion(ctx, v)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCommitTruncatesBranchHistory(t *testing.T) {
	e := testEngine(t,
		MaxVersionsPerBranch(3),
		WithBranchProtection(false),
	)

	var last uint64
	for i := 1; i <= 5; i++ {
		last = mustCommit(t, e, gameState(i, 1500, float64(i)))
	}

	branch := e.CurrentBranch()
	assert.EqualValues(t, []uint64{3, 4, 5}, branch.Versions)
	assert.EqualValues(t, last, branch.CurrentVersion)

	// truncated versions are orphans and got pruned with them
	_, err := e.Version(1)
	require.ErrorIs(t, err, status.ErrNotFound)

	// the global counter keeps rolling forward
	next := mustCommit(t, e, gameState(6, 1500, 6))
	assert.EqualValues(t, 6, next)
}

func TestProtectedBranchIsNeverTruncated(t *testing.T) {
	e := testEngine(t, MaxVersionsPerBranch(2))

	for i := 1; i <= 4; i++ {
		mustCommit(t, e, gameState(i, 1500, float64(i)))
	}

	branch := e.CurrentBranch()
	assert.EqualValues(t, []uint64{1, 2, 3, 4}, branch.Versions)
}

func TestAutoTagging(t *testing.T) {
	t.Run("round milestone", func(t *testing.T) {
		e := testEngine(t, EnableAutoTagging(true))
		v := mustCommit(t, e, gameState(10, 1500, 0))

		desc, err := e.Version(v)
		require.NoError(t, err)
		assert.True(t, desc.HasTag("round-10"))

		tags := e.Tags()
		require.Len(t, tags, 1)
		assert.True(t, tags[0].Automated)
	})

	t.Run("no milestone off the beat", func(t *testing.T) {
		e := testEngine(t, EnableAutoTagging(true))
		v := mustCommit(t, e, gameState(7, 1500, 0))

		desc, err := e.Version(v)
		require.NoError(t, err)
		assert.Empty(t, desc.Tags)
	})

	t.Run("game end by phase", func(t *testing.T) {
		e := testEngine(t, EnableAutoTagging(true))
		doc := gameState(33, 1500, 0)
		doc["gamePhase"] = "ended"
		v := mustCommit(t, e, doc)

		desc, err := e.Version(v)
		require.NoError(t, err)
		assert.True(t, desc.HasTag("game-end"))
	})

	t.Run("game end by winner", func(t *testing.T) {
		e := testEngine(t, EnableAutoTagging(true))
		doc := gameState(33, 1500, 0)
		doc["winner"] = "alice"
		v := mustCommit(t, e, doc)

		desc, err := e.Version(v)
		require.NoError(t, err)
		assert.True(t, desc.HasTag("game-end"))
	})

	t.Run("bankruptcy", func(t *testing.T) {
		e := testEngine(t, EnableAutoTagging(true))
		v := mustCommit(t, e, gameState(12, -50, 17))

		desc, err := e.Version(v)
		require.NoError(t, err)
		assert.True(t, desc.HasTag("bankruptcy"))
	})

	t.Run("weekend save", func(t *testing.T) {
		saturday := time.Date(2024, 1, 13, 20, 0, 0, 0, time.UTC)
		e := testEngine(t,
			EnableAutoTagging(true),
			Clock(fixedClock(saturday)),
		)
		v := mustCommit(t, e, gameState(3, 1500, 0))

		desc, err := e.Version(v)
		require.NoError(t, err)
		assert.True(t, desc.HasTag("weekend-save"))
	})

	t.Run("explicit tag wins over heuristic", func(t *testing.T) {
		e := testEngine(t, EnableAutoTagging(true))
		v := mustCommit(t, e, gameState(10, 1500, 0), CommitTags("round-10"))

		desc, err := e.Version(v)
		require.NoError(t, err)
		assert.Equal(t, []string{"round-10"}, desc.Tags)

		tags := e.Tags()
		require.Len(t, tags, 1)
		assert.False(t, tags[0].Automated)
	})
}
