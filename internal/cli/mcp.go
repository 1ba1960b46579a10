package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/tinywiki/internal/mcpserver"
)

func newMCPCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start an MCP server on stdio",
		Long:  `Starts a Model Context Protocol server on stdio exposing glossary extraction, section formatting, Markdown export and share link tools.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			mcpserver.Version = Version
			fmt.Fprintln(cmd.ErrOrStderr(), "tinywiki MCP server started on stdio")
			srv := mcpserver.NewServer(mcpserver.Options{
				BaseURL:    cfg.BaseURL,
				ShareLimit: cfg.ShareURLLimit,
			})
			return srv.Serve()
		},
	}
}
