package cmd

import (
	"context"
	"fmt"

	"github.com/raybest4u/statemon/pkg/model"

	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff <ref> <ref>",
	Short: "Compare two versions",
	Long: `Compare the snapshot documents of two versions field by field.

Each difference is reported as an added, removed or modified path. The
references may be version numbers, branch names or tag names.`,
	Example: `% statemon diff --archive ./saves round-10 main
modify players.0.money: 1500 -> 1600`,
	Args: cobra.ExactArgs(2),
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

		a, err := engine.Resolve(args[0])
		if err != nil {
			wrapFatalln("resolve reference", err)
			return
		}
		b, err := engine.Resolve(args[1])
		if err != nil {
			wrapFatalln("resolve reference", err)
			return
		}
		changes, err := engine.DiffVersions(ctx, a, b)
		if err != nil {
			wrapFatalln("compute diff", err)
			return
		}
		for _, change := range changes {
			infoLogger.Println(formatChange(change))
		}
	},
}

func formatChange(change model.Change) string {
	path := change.Path
	if path == "" {
		path = "(root)"
	}
	switch change.Type {
	case model.ChangeAdd:
		return fmt.Sprintf("add    %s: %v", path, change.NewValue)
	case model.ChangeRemove:
		return fmt.Sprintf("remove %s: %v", path, change.OldValue)
	default:
		return fmt.Sprintf("modify %s: %v -> %v", path, change.OldValue, change.NewValue)
	}
}

func init() {
	rootCmd.AddCommand(diffCmd)
}
