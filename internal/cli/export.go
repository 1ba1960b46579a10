package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/dgallion1/tinywiki/internal/export"
)

func newExportCmd(opts *options) *cobra.Command {
	var (
		format  string
		outDir  string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "export <doc|glob>...",
		Short: "Export documents as Markdown, Word-compatible HTML or DOCX",
		Long: `Exports every matching document to <out>/<slug>.<format>. Arguments may be
files or doublestar patterns such as "docs/**/*.json".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			inputs, err := expandInputs(args)
			if err != nil {
				return err
			}
			if workers <= 0 {
				workers = cfg.ExportWorkers
			}
			log := opts.logger(cmd.ErrOrStderr(), cfg.LogLevel)

			written, err := exportAll(cmd.Context(), inputs, f, outDir, workers, cmd.ErrOrStderr())
			for _, path := range written {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			if err != nil {
				log.Error("export failed", "error", err)
				return err
			}
			log.Debug("export complete", "files", len(written), "format", string(f))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatMarkdown), "export format: md, doc or docx")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel exports (defaults to export_workers)")
	return cmd
}

// exportAll renders inputs concurrently and returns the written paths in
// input order. Each failure is joined into the returned error.
func exportAll(ctx context.Context, inputs []string, f export.Format, outDir string, workers int, progress io.Writer) ([]string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	bar := progressbar.NewOptions(len(inputs),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("Exporting"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	var mu sync.Mutex
	claimed := make(map[string]string)
	outputs := make([]string, len(inputs))

	errs := export.Batch(ctx, inputs, workers, func(ctx context.Context, input string) error {
		defer bar.Add(1)
		doc, err := importFile(input)
		if err != nil {
			return err
		}
		file, err := export.Render(doc, f)
		if err != nil {
			return fmt.Errorf("%s: %w", input, err)
		}
		path := filepath.Join(outDir, file.Name)

		mu.Lock()
		prev, dup := claimed[path]
		if !dup {
			claimed[path] = input
		}
		mu.Unlock()
		if dup {
			return fmt.Errorf("%s: output %s already written for %s", input, path, prev)
		}

		if err := os.WriteFile(path, file.Data, 0o644); err != nil {
			return fmt.Errorf("%s: %w", input, err)
		}
		mu.Lock()
		outputs[indexOf(inputs, input)] = path
		mu.Unlock()
		return nil
	})
	_ = bar.Finish()

	var written []string
	for _, p := range outputs {
		if p != "" {
			written = append(written, p)
		}
	}
	return written, errors.Join(errs...)
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
