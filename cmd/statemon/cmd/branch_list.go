package cmd

import (
	"bytes"
	"context"
	"fmt"

	"github.com/raybest4u/statemon/pkg/model"

	"github.com/spf13/cobra"
)

type branchListEntry struct {
	model.BranchDescriptor

	// Active marks the branch new commits would land on
	Active bool
}

func applyBranchTemplate(entry branchListEntry) error {
	var buf bytes.Buffer
	if err := branchDescriptorTemplate().Execute(&buf, entry); err != nil {
		return fmt.Errorf("executing template: %w", err)
	}
	infoLogger.Println(buf.String())
	return nil
}

var branchList = &cobra.Command{
	Use:   "list",
	Short: "List branches",
	Long:  `List the branches of the archive, with the active branch starred.`,
	Example: `% statemon branch list --archive ./saves
* main , head: 12 , base: 1 , 12 versions , protected
  experiment , head: 9 , base: 4 , 3 versions`,
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

		active := engine.CurrentBranch().Name
		for _, branch := range engine.Branches() {
			if err = applyBranchTemplate(branchListEntry{
				BranchDescriptor: branch,
				Active:           branch.Name == active,
			}); err != nil {
				wrapFatalln("display branch", err)
				return
			}
		}
	},
}

func init() {
	branchCmd.AddCommand(branchList)
}
