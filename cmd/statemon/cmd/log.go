package cmd

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/raybest4u/statemon/pkg/core"
	"github.com/raybest4u/statemon/pkg/model"

	units "github.com/docker/go-units"
	"github.com/spf13/cobra"
)

var versionDescriptorTemplate func() *template.Template

func applyVersionTemplate(desc model.VersionDescriptor) error {
	var buf bytes.Buffer
	if err := versionDescriptorTemplate().Execute(&buf, desc); err != nil {
		return fmt.Errorf("executing template: %w", err)
	}
	infoLogger.Println(buf.String())
	return nil
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "List committed versions",
	Long: `List the versions recorded in the archive, newest first.

The listing may be narrowed down by branch, author, tag, commit time or
version number, and paginated with --offset and --limit.`,
	Example: `% statemon log --archive ./saves --branch main --author alice --limit 5
12 , main , alice <alice@example.com> , 2024-01-10T12:05:00Z , 1.2kB , end of round 10 , round-10`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		stores, closeStores, err := cmdStores()
		if err != nil {
			wrapFatalln("open archive", err)
			return
		}
		defer func() { _ = closeStores() }()

		engine, err := restoreEngine(ctx, stores)
		if err != nil {
			wrapFatalln("restore archive", err)
			return
		}
		defer engine.Close()

		opts, err := historyOptions()
		if err != nil {
			wrapFatalln("invalid filter", err)
			return
		}
		for _, desc := range engine.VersionHistory(ctx, opts...) {
			if err = applyVersionTemplate(desc); err != nil {
				wrapFatalln("display version", err)
				return
			}
		}
	},
}

// historyOptions maps the log command flags to history filters
func historyOptions() ([]core.HistoryOption, error) {
	opts := make([]core.HistoryOption, 0, 9)
	if flags.history.branch != "" {
		opts = append(opts, core.HistoryBranch(flags.history.branch))
	}
	if flags.history.author != "" {
		opts = append(opts, core.HistoryAuthor(flags.history.author))
	}
	if flags.history.tag != "" {
		opts = append(opts, core.HistoryTag(flags.history.tag))
	}
	if flags.history.since != "" {
		t, err := time.Parse(time.RFC3339, flags.history.since)
		if err != nil {
			return nil, fmt.Errorf("parsing --since: %w", err)
		}
		opts = append(opts, core.HistorySince(t))
	}
	if flags.history.until != "" {
		t, err := time.Parse(time.RFC3339, flags.history.until)
		if err != nil {
			return nil, fmt.Errorf("parsing --until: %w", err)
		}
		opts = append(opts, core.HistoryUntil(t))
	}
	if flags.history.from > 0 {
		opts = append(opts, core.HistoryFrom(flags.history.from))
	}
	if flags.history.to > 0 {
		opts = append(opts, core.HistoryTo(flags.history.to))
	}
	if flags.history.offset > 0 {
		opts = append(opts, core.HistoryOffset(flags.history.offset))
	}
	if flags.history.limit > 0 {
		opts = append(opts, core.HistoryLimit(flags.history.limit))
	}
	return opts, nil
}

func init() {
	addBranchFilterFlag(logCmd)
	addAuthorFilterFlag(logCmd)
	addTagFilterFlag(logCmd)
	addTimeRangeFlags(logCmd)
	addVersionRangeFlags(logCmd)
	addPaginationFlags(logCmd)
	rootCmd.AddCommand(logCmd)

	versionDescriptorTemplate = func() *template.Template {
		const listLineTemplateString = `{{.Version}} , {{.BranchName}} , {{contributor .}} , {{.Timestamp.Format "2006-01-02T15:04:05Z07:00"}} , {{humanSize .Size}} , {{.Message}}{{if .Tags}} , {{join .Tags ","}}{{end}}`
		return template.Must(template.New("list line").
			Funcs(template.FuncMap{
				"contributor": func(desc model.VersionDescriptor) string { return desc.Contributor.String() },
				"humanSize":   func(size int64) string { return units.HumanSize(float64(size)) },
				"join":        strings.Join,
			}).
			Parse(listLineTemplateString))
	}
}
