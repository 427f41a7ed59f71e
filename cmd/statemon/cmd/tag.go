package cmd

import (
	"text/template"

	"github.com/spf13/cobra"
)

var tagDescriptorTemplate func() *template.Template

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Commands to inspect tags",
	Long: `Commands to inspect the tags of a session archive.

A tag is a human-readable alias to one specific version, analogous to
tags in git. Some tags (round milestones, game end, weekend saves) are
produced automatically at commit time.`,
}

func init() {
	rootCmd.AddCommand(tagCmd)

	tagDescriptorTemplate = func() *template.Template {
		const listLineTemplateString = `{{.Name}} , version: {{.Version}} , {{.Created.Format "2006-01-02T15:04:05Z07:00"}}{{if .Automated}} , automated{{end}}{{if .Description}} , {{.Description}}{{end}}`
		return template.Must(template.New("list line").Parse(listLineTemplateString))
	}
}
