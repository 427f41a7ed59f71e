package cmd

import (
	"text/template"

	"github.com/spf13/cobra"
)

var branchDescriptorTemplate func() *template.Template

var branchCmd = &cobra.Command{
	Use:   "branch",
	Short: "Commands to inspect branches",
	Long: `Commands to inspect the branches of a session archive.

A branch is a named, independently advancing line of versions, analogous
to branches in git.`,
}

func init() {
	rootCmd.AddCommand(branchCmd)

	branchDescriptorTemplate = func() *template.Template {
		const listLineTemplateString = `{{if .Active}}* {{else}}  {{end}}{{.Name}} , head: {{.CurrentVersion}} , base: {{.BaseVersion}} , {{len .Versions}} versions{{if .Protected}} , protected{{end}}{{if .Description}} , {{.Description}}{{end}}`
		return template.Must(template.New("list line").Parse(listLineTemplateString))
	}
}
