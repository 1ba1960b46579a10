// Package cli implements the tinywiki command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/tinywiki/internal/config"
)

// Version is set via ldflags at build time.
var Version = "dev"

type options struct {
	cfgFile string
	verbose bool
}

// NewRootCmd builds the command tree. Each call returns independent flag
// state.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "tinywiki",
		Short: "View, narrate, share and export structured wiki documents",
		Long: `TinyWiki turns a structured document (title, summary, sections, key points,
citations, related topics) into a navigable article with an automatic
glossary, read-aloud, self-contained share links and Markdown, Word and
DOCX exports.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.cfgFile, "config", config.DefaultPath, "config file path")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		newServeCmd(opts),
		newGlossaryCmd(opts),
		newExportCmd(opts),
		newShareCmd(opts),
		newImportCmd(opts),
		newReadCmd(opts),
		newConfigCmd(opts),
		newMCPCmd(opts),
	)
	return root
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	exitOnError(NewRootCmd().Execute())
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (o *options) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// logger returns a text logger on w. --verbose forces debug level.
func (o *options) logger(w io.Writer, level string) *slog.Logger {
	lvl := parseLevel(level)
	if o.verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
