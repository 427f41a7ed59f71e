package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	for _, toPin := range []struct {
		name          string
		cfg           Config
		wantError     bool
		errorContains string
	}{
		{
			name: "localfs archive",
			cfg:  Config{Archive: "/tmp/saves", Backend: backendLocalFS},
		},
		{
			name: "kv archive",
			cfg:  Config{Archive: "/tmp/saves.db", Backend: backendKV},
		},
		{
			name:          "missing archive",
			cfg:           Config{Backend: backendLocalFS},
			wantError:     true,
			errorContains: "archive location is required",
		},
		{
			name:          "unknown backend",
			cfg:           Config{Archive: "/tmp/saves", Backend: "s3"},
			wantError:     true,
			errorContains: "unsupported backend",
		},
	} {
		testcase := toPin
		t.Run(testcase.name, func(t *testing.T) {
			err := testcase.cfg.validate()
			if testcase.wantError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), testcase.errorContains)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestConfigOverrideWithFlags(t *testing.T) {
	cfg := Config{Archive: "/from/file", Backend: backendLocalFS, LogLevel: "warn"}

	var f flagsT
	f.root.archive = "/from/flag"
	f.root.logLevel = "debug"
	cfg.overrideWithFlags(&f)

	assert.Equal(t, "/from/flag", cfg.Archive)
	assert.Equal(t, backendLocalFS, cfg.Backend)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestHistoryOptionsParsing(t *testing.T) {
	defer func() { flags.history = flagsT{}.history }()

	flags.history.branch = "main"
	flags.history.since = "2024-01-10T12:00:00Z"
	flags.history.limit = 5
	opts, err := historyOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 3)

	flags.history.since = "not-a-time"
	_, err = historyOptions()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--since")

	flags.history = flagsT{}.history
	flags.history.until = "also-not-a-time"
	_, err = historyOptions()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--until")
}
