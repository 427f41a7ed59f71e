package fingerprint

import (
	"testing"

	"github.com/raybest4u/statemon/pkg/document"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDoc() map[string]interface{} {
	return map[string]interface{}{
		"round": float64(12),
		"players": []interface{}{
			map[string]interface{}{"name": "alice", "money": float64(1500)},
			map[string]interface{}{"name": "bob", "money": float64(940)},
		},
	}
}

func TestProcessDeterministic(t *testing.T) {
	maker := New()

	reference, err := maker.Process(testDoc())
	require.NoError(t, err)
	require.Len(t, reference, 32)

	for i := 0; i < 10; i++ {
		again, err := maker.Process(testDoc())
		require.NoError(t, err)
		require.Equal(t, reference, again)
	}
}

func TestProcessStableAcrossClone(t *testing.T) {
	maker := New()
	doc := testDoc()

	a, err := maker.Process(doc)
	require.NoError(t, err)
	b, err := maker.Process(document.Clone(doc))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestProcessDiscriminates(t *testing.T) {
	maker := New()

	a, err := maker.Process(testDoc())
	require.NoError(t, err)

	changed := testDoc()
	changed["round"] = float64(13)
	b, err := maker.Process(changed)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	// scalar type matters
	retyped := testDoc()
	retyped["round"] = "12"
	c, err := maker.Process(retyped)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestProcessChunked(t *testing.T) {
	// a tiny leaf forces the multi-chunk path
	small := New(LeafSize(8), NumberOfWorkers(2))
	whole := New()

	a, err := small.Process(testDoc())
	require.NoError(t, err)
	b, err := small.Process(testDoc())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// chunking is part of the digest definition
	c, err := whole.Process(testDoc())
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestProcessEmptyAndScalarDocs(t *testing.T) {
	maker := New()

	for _, doc := range []interface{}{nil, "", map[string]interface{}{}, []interface{}{}} {
		digest, err := maker.Process(doc)
		require.NoError(t, err)
		assert.Len(t, digest, 32)
	}

	a, err := maker.Process(nil)
	require.NoError(t, err)
	b, err := maker.Process("")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDigestSizeOption(t *testing.T) {
	maker := New(Size(16))
	digest, err := maker.Process(testDoc())
	require.NoError(t, err)
	assert.Len(t, digest, 16)
}
