package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/tinywiki/internal/importer"
	"github.com/dgallion1/tinywiki/internal/share"
	"github.com/dgallion1/tinywiki/internal/wiki"
)

// openDocument loads a document from a file in any importable format or from
// a share URL. section is the deep-linked section of a share URL, else -1.
func openDocument(arg string) (doc *wiki.Document, section int, err error) {
	if isShareLink(arg) {
		return share.ParseURL(arg)
	}
	doc, err = importFile(arg)
	return doc, -1, err
}

func isShareLink(arg string) bool {
	return strings.Contains(arg, share.Param+"=") &&
		(strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://"))
}

func importFile(path string) (*wiki.Document, error) {
	imp, err := importer.ForFile(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	doc, err := imp.Import(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	return doc, nil
}

// expandInputs resolves each argument as a doublestar pattern and keeps the
// importable matches. A literal path that exists is kept as is.
func expandInputs(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, arg := range args {
		if _, err := os.Stat(arg); err == nil {
			add(arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if importer.IsSupportedExtension(m) {
				add(m)
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no documents match %s", strings.Join(args, " "))
	}
	return out, nil
}

// writeDocument prints doc as YAML or indented JSON.
func writeDocument(w io.Writer, doc *wiki.Document, format string) error {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	default:
		return fmt.Errorf("unknown output format %q (want json or yaml)", format)
	}
}
