package cli

import (
	"github.com/spf13/cobra"
)

func newImportCmd(_ *options) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Convert an exported .md, .html, .doc or .docx file back into a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := importFile(args[0])
			if err != nil {
				return err
			}
			return writeDocument(cmd.OutOrStdout(), doc, format)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "yaml", "output format: json or yaml")
	return cmd
}
