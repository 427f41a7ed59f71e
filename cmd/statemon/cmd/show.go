package cmd

import (
	"context"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	yaml "gopkg.in/yaml.v2"
)

var showCmd = &cobra.Command{
	Use:   "show <ref>",
	Short: "Show one version",
	Long: `Show the descriptor and the snapshot document of one version.

The reference may be a version number, a branch name (its head) or a tag
name. The descriptor is printed as yaml, the document as indented json.`,
	Example: `% statemon show --archive ./saves round-10
% statemon show --archive ./saves main --descriptor-only`,
	Args: cobra.ExactArgs(1),
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

		version, err := engine.Resolve(args[0])
		if err != nil {
			wrapFatalln("resolve reference", err)
			return
		}
		desc, err := engine.Version(version)
		if err != nil {
			wrapFatalln("retrieve version", err)
			return
		}
		buf, err := yaml.Marshal(desc)
		if err != nil {
			wrapFatalln("serialize descriptor", err)
			return
		}
		infoLogger.Print(string(buf))

		if flags.show.descriptorOnly {
			return
		}
		doc, err := engine.CheckoutVersion(ctx, version)
		if err != nil {
			wrapFatalln("retrieve snapshot", err)
			return
		}
		body, err := jsoniter.MarshalIndent(doc, "", "  ")
		if err != nil {
			wrapFatalln("serialize snapshot", err)
			return
		}
		infoLogger.Println(string(body))
	},
}

func init() {
	addDescriptorOnlyFlag(showCmd)
	rootCmd.AddCommand(showCmd)
}
