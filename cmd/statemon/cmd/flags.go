package cmd

import (
	"time"

	"github.com/spf13/cobra"
)

type flagsT struct {
	root struct {
		archive  string
		backend  string
		logLevel string
		metrics  bool
	}
	history struct {
		branch string
		author string
		tag    string
		since  string
		until  string
		from   uint64
		to     uint64
		offset int
		limit  int
	}
	show struct {
		descriptorOnly bool
	}
	watch struct {
		debounce time.Duration
	}
}

var flags flagsT

func addArchiveFlag(cmd *cobra.Command) string {
	const archive = "archive"
	cmd.PersistentFlags().StringVar(&flags.root.archive, archive, "", "Path to the session archive")
	return archive
}

func addBackendFlag(cmd *cobra.Command) string {
	const backend = "backend"
	cmd.PersistentFlags().StringVar(&flags.root.backend, backend, "", "Archive storage backend: localfs or kv")
	return backend
}

func addLogLevelFlag(cmd *cobra.Command) string {
	const loglevel = "loglevel"
	cmd.PersistentFlags().StringVar(&flags.root.logLevel, loglevel, "", "Log level: debug, info, warn or none")
	return loglevel
}

func addMetricsFlag(cmd *cobra.Command) string {
	const metrics = "metrics"
	cmd.PersistentFlags().BoolVar(&flags.root.metrics, metrics, false, "Enable metrics reporting")
	return metrics
}

func addBranchFilterFlag(cmd *cobra.Command) string {
	const branch = "branch"
	cmd.Flags().StringVar(&flags.history.branch, branch, "", "Only versions reachable on this branch")
	return branch
}

func addAuthorFilterFlag(cmd *cobra.Command) string {
	const author = "author"
	cmd.Flags().StringVar(&flags.history.author, author, "", "Only versions committed by this author")
	return author
}

func addTagFilterFlag(cmd *cobra.Command) string {
	const tagFlag = "tag"
	cmd.Flags().StringVar(&flags.history.tag, tagFlag, "", "Only versions carrying this tag")
	return tagFlag
}

func addTimeRangeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flags.history.since, "since", "", "Only versions committed at or after this time (RFC3339)")
	cmd.Flags().StringVar(&flags.history.until, "until", "", "Only versions committed at or before this time (RFC3339)")
}

func addVersionRangeFlags(cmd *cobra.Command) {
	cmd.Flags().Uint64Var(&flags.history.from, "from", 0, "Only versions numbered at or above this")
	cmd.Flags().Uint64Var(&flags.history.to, "to", 0, "Only versions numbered at or below this")
}

func addPaginationFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&flags.history.offset, "offset", 0, "Skip the first entries of the result")
	cmd.Flags().IntVar(&flags.history.limit, "limit", 0, "Cap the number of returned entries")
}

func addDescriptorOnlyFlag(cmd *cobra.Command) string {
	const descriptorOnly = "descriptor-only"
	cmd.Flags().BoolVar(&flags.show.descriptorOnly, descriptorOnly, false, "Print the version descriptor without the snapshot document")
	return descriptorOnly
}

func addDebounceFlag(cmd *cobra.Command) string {
	const debounce = "debounce"
	cmd.Flags().DurationVar(&flags.watch.debounce, debounce, 500*time.Millisecond, "Quiet period before reloading a changed archive")
	return debounce
}
