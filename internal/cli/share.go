package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/tinywiki/internal/share"
	"github.com/dgallion1/tinywiki/internal/wiki"
)

func newShareCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Encode and decode self-contained share links",
	}
	cmd.AddCommand(newShareEncodeCmd(opts), newShareDecodeCmd())
	return cmd
}

func newShareEncodeCmd(opts *options) *cobra.Command {
	var (
		section int
		baseURL string
	)
	cmd := &cobra.Command{
		Use:   "encode <doc>",
		Short: "Print a share URL carrying the whole document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			doc, _, err := openDocument(args[0])
			if err != nil {
				return err
			}
			if baseURL == "" {
				baseURL = cfg.BaseURL
			}
			if section >= doc.SectionCount() {
				return fmt.Errorf("section %d out of range (document has %d)", section, doc.SectionCount())
			}
			limit := cfg.ShareURLLimit
			if limit == 0 {
				limit = share.DefaultLimit
			}
			link, err := share.Encode(doc, section, baseURL, limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), link)
			return nil
		},
	}
	cmd.Flags().IntVarP(&section, "section", "s", -1, "section to deep-link to")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "viewer origin and path (defaults to base_url)")
	return cmd
}

func newShareDecodeCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "decode <url|value>",
		Short: "Print the document carried by a share link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, section, err := decodeShareArg(args[0])
			if err != nil {
				return err
			}
			if section >= 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "deep link: section %d\n", section)
			}
			return writeDocument(cmd.OutOrStdout(), doc, format)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "json", "output format: json or yaml")
	return cmd
}

// decodeShareArg accepts a full share URL or the bare query value.
func decodeShareArg(arg string) (*wiki.Document, int, error) {
	arg = strings.TrimSpace(arg)
	if strings.Contains(arg, share.Param+"=") {
		return share.ParseURL(arg)
	}
	doc, err := share.Decode(arg)
	return doc, -1, err
}
