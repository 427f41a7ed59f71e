package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchivePaths(t *testing.T) {
	assert.Equal(t, "versions/00000000000000000042/version.yaml", GetArchivePathToVersion(42))
	assert.Equal(t, "payloads/00000000000000000042/payload.json", GetArchivePathToPayload(42))
	assert.Equal(t, "branches/main/branch.yaml", GetArchivePathToBranch("main"))
	assert.Equal(t, "tags/v1.0/tag.yaml", GetArchivePathToTag("v1.0"))
	assert.Equal(t, "state/engine.yaml", GetArchivePathToEngineState())
}

func TestVersionKeysSortInCommitOrder(t *testing.T) {
	assert.Less(t,
		GetArchivePathToVersion(99),
		GetArchivePathToVersion(100),
	)
}

func TestGetArchivePathComponents(t *testing.T) {
	testCases := []struct {
		name      string
		path      string
		expected  ArchivePathComponents
		wantError bool
	}{
		{
			name:     "version descriptor",
			path:     "versions/00000000000000000042/version.yaml",
			expected: ArchivePathComponents{Version: 42, ArchiveFileName: "version.yaml"},
		},
		{
			name:     "payload",
			path:     "payloads/00000000000000000007/payload.json",
			expected: ArchivePathComponents{Version: 7, ArchiveFileName: "payload.json"},
		},
		{
			name:     "branch",
			path:     "branches/main/branch.yaml",
			expected: ArchivePathComponents{BranchName: "main", ArchiveFileName: "branch.yaml"},
		},
		{
			name:     "tag",
			path:     "tags/round-10/tag.yaml",
			expected: ArchivePathComponents{TagName: "round-10", ArchiveFileName: "tag.yaml"},
		},
		{
			name:     "engine state",
			path:     "state/engine.yaml",
			expected: ArchivePathComponents{ArchiveFileName: "engine.yaml", IsEngineState: true},
		},
		{name: "unknown prefix", path: "blobs/123/x.yaml", wantError: true},
		{name: "single element", path: "versions", wantError: true},
		{name: "not a version number", path: "versions/abc/version.yaml", wantError: true},
		{name: "truncated branch path", path: "branches/main", wantError: true},
		{name: "wrong state file", path: "state/other.yaml", wantError: true},
	}
	for _, testcase := range testCases {
		t.Run(testcase.name, func(t *testing.T) {
			got, err := GetArchivePathComponents(testcase.path)
			if testcase.wantError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testcase.expected, got)
		})
	}
}

func TestPathsRoundTrip(t *testing.T) {
	cs, err := GetArchivePathComponents(GetArchivePathToVersion(123456789))
	require.NoError(t, err)
	assert.EqualValues(t, 123456789, cs.Version)
}
