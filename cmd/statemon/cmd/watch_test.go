package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// goroutines started at package init by transitive deps, not by the watcher
func verifyNoLeaks(t *testing.T) {
	goleak.VerifyNone(t,
		// opencensus stats collection goroutine
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
		// glog flush daemon, pulled in via the influxdb client
		goleak.IgnoreTopFunction("github.com/golang/glog.(*fileSink).flushDaemon"),
		goleak.IgnoreTopFunction("github.com/golang/glog.(*loggingT).flushDaemon"))
}

func TestWatchArchiveTerminatesOnCancel(t *testing.T) {
	defer verifyNoLeaks(t)

	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- watchArchive(ctx, dir, 10*time.Millisecond, func() {})
	}()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not terminate on context cancel")
	}
}

func TestWatchArchiveDebouncesBursts(t *testing.T) {
	defer verifyNoLeaks(t)

	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloads := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() {
		done <- watchArchive(ctx, dir, 100*time.Millisecond, func() {
			reloads <- struct{}{}
		})
	}()

	// a burst of writes within the quiet period triggers a single reload
	for i := 0; i < 5; i++ {
		name := filepath.Join(dir, "payload.json")
		require.NoError(t, os.WriteFile(name, []byte(`{"round":1}`), 0600))
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-reloads:
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after changes")
	}

	// quiet period with no further writes: no second reload
	select {
	case <-reloads:
		t.Fatal("burst triggered more than one reload")
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	require.NoError(t, <-done)
}

func TestWatchArchiveMissingDir(t *testing.T) {
	defer verifyNoLeaks(t)

	err := watchArchive(context.Background(), filepath.Join(t.TempDir(), "nope"), time.Millisecond, func() {})
	require.Error(t, err)
}
