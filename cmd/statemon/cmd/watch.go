package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow a live archive",
	Long: `Watch the archive location and reload it whenever it changes.

A session in progress keeps appending versions to its archive. Watch
reloads the archive after each burst of writes (debounced, so one save
producing many files triggers one reload) and prints a one-line summary.
Interrupt with Ctrl-C.`,
	Example: `% statemon watch --archive ./saves --debounce 2s
reloaded archive: 13 versions, 2 branches, head main@13`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := config.validate(); err != nil {
			wrapFatalln("open archive", err)
			return
		}
		summarize := func() {
			stores, closeStores, err := cmdStores()
			if err != nil {
				wrapFatalln("open archive", err)
				return
			}
			defer func() { _ = closeStores() }()

			engine, err := restoreEngine(ctx, stores)
			if err != nil {
				infoLogger.Printf("archive not reloaded: %v", err)
				return
			}
			defer engine.Close()

			head := engine.CurrentBranch()
			infoLogger.Printf("reloaded archive: %d versions, %d branches, head %s@%d",
				len(engine.VersionHistory(ctx)), len(engine.Branches()), head.Name, head.CurrentVersion)
		}

		summarize()
		if err := watchArchive(ctx, config.Archive, flags.watch.debounce, summarize); err != nil {
			wrapFatalln("watch archive", err)
			return
		}
	},
}

// watchArchive reloads on filesystem changes under dir, debounced by the
// given quiet period. It returns when ctx is cancelled.
func watchArchive(ctx context.Context, dir string, debounce time.Duration, reload func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err = watcher.Add(dir); err != nil {
		return err
	}

	// the timer is armed by events and drained before every reset
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		case <-timer.C:
			reload()
		}
	}
}

func init() {
	addDebounceFlag(watchCmd)
	rootCmd.AddCommand(watchCmd)
}
