package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dgallion1/tinywiki/internal/glossary"
	"github.com/dgallion1/tinywiki/internal/render"
)

func newGlossaryCmd(_ *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "glossary <doc|share-url>",
		Short: "List the glossary terms of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _, err := openDocument(args[0])
			if err != nil {
				return err
			}
			g := glossary.Extract(doc.Sections)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(g.Entries())
			}
			return printGlossary(cmd.OutOrStdout(), g)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")
	return cmd
}

func printGlossary(w io.Writer, g glossary.Map) error {
	if g.Len() == 0 {
		_, err := fmt.Fprintln(w, "No glossary terms.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, e := range g.Entries() {
		def := e.Definition
		if def == "" {
			def = render.Placeholder
		}
		fmt.Fprintf(tw, "%s\t%s\n", e.Term, def)
	}
	return tw.Flush()
}
