package cmd

import (
	"bytes"
	"context"
	"fmt"

	"github.com/raybest4u/statemon/pkg/model"

	"github.com/spf13/cobra"
)

func applyTagTemplate(tag model.TagDescriptor) error {
	var buf bytes.Buffer
	if err := tagDescriptorTemplate().Execute(&buf, tag); err != nil {
		return fmt.Errorf("executing template: %w", err)
	}
	infoLogger.Println(buf.String())
	return nil
}

var tagList = &cobra.Command{
	Use:   "list",
	Short: "List tags",
	Long:  `List the tags of the archive, sorted by name.`,
	Example: `% statemon tag list --archive ./saves
game-end , version: 12 , 2024-01-13T17:30:00Z , automated
opening , version: 1 , 2024-01-10T12:00:00Z , first save`,
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

		for _, tag := range engine.Tags() {
			if err = applyTagTemplate(tag); err != nil {
				wrapFatalln("display tag", err)
				return
			}
		}
	},
}

func init() {
	tagCmd.AddCommand(tagList)
}
