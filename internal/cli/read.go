package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/dgallion1/tinywiki/internal/export"
	"github.com/dgallion1/tinywiki/internal/glossary"
	"github.com/dgallion1/tinywiki/internal/markup"
	"github.com/dgallion1/tinywiki/internal/narration"
	"github.com/dgallion1/tinywiki/internal/navigator"
	"github.com/dgallion1/tinywiki/internal/render"
	"github.com/dgallion1/tinywiki/internal/speech"
	"github.com/dgallion1/tinywiki/internal/viewer"
	"github.com/dgallion1/tinywiki/internal/wiki"
)

func newReadCmd(opts *options) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "read <doc|share-url>",
		Short: "Read a document interactively with glossary, read-aloud and sharing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			doc, section, err := openDocument(args[0])
			if err != nil {
				return err
			}
			log := opts.logger(cmd.ErrOrStderr(), "warn")

			var engine speech.Engine
			if e, err := speech.Detect(cfg.SpeechCommand); err == nil {
				engine = e
			} else {
				log.Debug("read-aloud disabled", "error", err)
			}

			r := newReader(cmd.OutOrStdout(), promptuiPrompter{}, newSystemClipboard(), outDir)
			r.open(viewer.Options{
				BaseURL:    cfg.BaseURL,
				ShareLimit: cfg.ShareURLLimit,
				Narration:  narration.Config{SegmentWords: cfg.SegmentWords},
			}, engine, log)
			defer r.v.Close()

			fragment := ""
			if section >= 0 {
				fragment = navigator.Fragment(section)
			}
			if err := r.v.OnDocumentChanged(doc, fragment); err != nil {
				return err
			}
			return r.run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory for exported files")
	return cmd
}

// prompter asks the user to pick one of items.
type prompter interface {
	Select(label string, items []string) (int, error)
}

type promptuiPrompter struct{}

func (promptuiPrompter) Select(label string, items []string) (int, error) {
	p := promptui.Select{Label: label, Items: items, Size: min(len(items), 12)}
	i, _, err := p.Run()
	return i, err
}

// reader is the terminal host shell around a viewer.
type reader struct {
	v      *viewer.Viewer
	out    io.Writer
	ask    prompter
	clip   viewer.Clipboard
	outDir string

	pending  int    // section waiting to be printed, -1 for none
	fragment string // last fragment set by the navigator
	closed   bool
}

func newReader(out io.Writer, ask prompter, clip viewer.Clipboard, outDir string) *reader {
	return &reader{out: out, ask: ask, clip: clip, outDir: outDir, pending: -1}
}

func (r *reader) open(opts viewer.Options, engine speech.Engine, log *slog.Logger) {
	host := viewer.HostFuncs{
		Reset: func() { r.closed = true },
		RelatedTopic: func(topic string) {
			fmt.Fprintf(r.out, "\nRelated topic selected: %s\n", topic)
		},
	}
	notify := viewer.NotifierFunc(func(n viewer.Notice) {
		fmt.Fprintf(r.out, "[%s] %s\n", n.Level, n.Message)
	})
	r.v = viewer.New(opts, host, r, engine, notify, log)
}

// ScrollTo and SetFragment make the reader the navigator's effects: the
// revealed section is printed after the action completes.
func (r *reader) ScrollTo(index int, _ bool) { r.pending = index }
func (r *reader) SetFragment(fragment string) { r.fragment = fragment }

const (
	actionSection  = "Go to section"
	actionCollapse = "Collapse / expand section"
	actionBack     = "Back"
	actionForward  = "Forward"
	actionSpeak    = "Read aloud / pause / resume"
	actionStop     = "Stop reading"
	actionGlossary = "Glossary"
	actionShare    = "Copy share link"
	actionExport   = "Export"
	actionRelated  = "Related topics"
	actionClose    = "Close document"
	actionQuit     = "Quit"
)

func (r *reader) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	doc := r.v.Document()
	r.printHeader(doc)
	if r.pending < 0 {
		r.pending = r.v.Snapshot().Navigation.Active
	}
	r.flush()

	for !r.closed {
		actions := r.actions()
		i, err := r.ask.Select(r.label(), actions)
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if actions[i] == actionQuit {
			return nil
		}
		if err := r.do(ctx, actions[i]); err != nil {
			fmt.Fprintf(r.out, "Error: %v\n", err)
		}
		r.flush()
	}
	return nil
}

func (r *reader) actions() []string {
	items := []string{actionSection, actionCollapse}
	snap := r.v.Snapshot()
	if snap.Navigation.CanBack {
		items = append(items, actionBack)
	}
	if snap.Navigation.CanForward {
		items = append(items, actionForward)
	}
	items = append(items, actionSpeak)
	if snap.Speech.Status != speech.StatusStopped {
		items = append(items, actionStop)
	}
	items = append(items, actionGlossary, actionShare, actionExport)
	if doc := r.v.Document(); doc != nil && len(doc.RelatedTopics) > 0 {
		items = append(items, actionRelated)
	}
	return append(items, actionClose, actionQuit)
}

func (r *reader) label() string {
	snap := r.v.Snapshot()
	label := snap.Title
	if r.fragment != "" {
		label = fmt.Sprintf("%s #%s", label, r.fragment)
	}
	if snap.Speech.Status != speech.StatusStopped {
		label += fmt.Sprintf(" (%s section %d)", snap.Speech.Status, snap.Speech.Active+1)
	}
	return label
}

func (r *reader) do(ctx context.Context, action string) error {
	doc := r.v.Document()
	if doc == nil {
		return viewer.ErrNoDocument
	}
	active := r.v.Snapshot().Navigation.Active

	switch action {
	case actionSection:
		headings := make([]string, len(doc.Sections))
		for i, s := range doc.Sections {
			headings[i] = fmt.Sprintf("%d. %s", i+1, s.Heading)
		}
		i, err := r.ask.Select("Section", headings)
		if err != nil {
			return err
		}
		return r.v.SelectSection(i)
	case actionCollapse:
		if err := r.v.ToggleCollapse(active); err != nil {
			return err
		}
		r.pending = active
	case actionBack:
		r.v.GoBack()
	case actionForward:
		r.v.GoForward()
	case actionSpeak:
		_, err := r.v.ToggleSpeech(active)
		return err
	case actionStop:
		r.v.StopSpeech()
	case actionGlossary:
		fmt.Fprintln(r.out)
		return printGlossary(r.out, r.v.Glossary())
	case actionShare:
		link, err := r.v.CopyShareLink(ctx, r.clip)
		if viewer.IsClipboardError(err) {
			// Print the link so it can be copied by hand.
			if l, lerr := r.v.ShareLink(); lerr == nil {
				fmt.Fprintln(r.out, l)
			}
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, link)
	case actionExport:
		names := make([]string, len(export.Formats))
		for i, f := range export.Formats {
			names[i] = string(f)
		}
		i, err := r.ask.Select("Format", names)
		if err != nil {
			return err
		}
		file, err := r.v.Export(export.Formats[i])
		if err != nil {
			return err
		}
		path := filepath.Join(r.outDir, file.Name)
		if err := os.WriteFile(path, file.Data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Wrote %s\n", path)
	case actionRelated:
		i, err := r.ask.Select("Related topic", doc.RelatedTopics)
		if err != nil {
			return err
		}
		return r.v.SelectRelatedTopic(doc.RelatedTopics[i])
	case actionClose:
		r.v.Reset()
	default:
		return fmt.Errorf("unknown action %q", action)
	}
	return nil
}

func (r *reader) printHeader(doc *wiki.Document) {
	fmt.Fprintf(r.out, "%s\n%s\n", doc.Title, strings.Repeat("=", len([]rune(doc.Title))))
	if doc.Summary != "" {
		fmt.Fprintf(r.out, "%s\n", markup.Strip(doc.Summary))
	}
	fmt.Fprintf(r.out, "%s\n", export.ReadingTimeLine(doc.ReadingTimeMinutes))
}

// flush prints the section revealed by the last action, if any.
func (r *reader) flush() {
	if r.pending < 0 || r.closed {
		return
	}
	i := r.pending
	r.pending = -1
	doc := r.v.Document()
	if doc == nil {
		return
	}
	writeSection(r.out, doc, i, r.v.Glossary(), r.v.Snapshot().Navigation)
}

// writeSection prints section i for a terminal. Terms are bracketed and their
// definitions listed underneath.
func writeSection(w io.Writer, doc *wiki.Document, i int, g glossary.Map, nav navigator.State) {
	sec, ok := doc.Section(i)
	if !ok {
		return
	}
	marker := "v"
	for _, c := range nav.Collapsed {
		if c == i {
			marker = ">"
		}
	}
	fmt.Fprintf(w, "\n%s %d. %s\n", marker, i+1, sec.Heading)
	if marker == ">" {
		return
	}

	var body strings.Builder
	var notes []string
	seen := make(map[string]bool)
	for f := range markup.Format(sec.Content, g) {
		if f.Kind != markup.KindTerm {
			body.WriteString(f.Text)
			continue
		}
		body.WriteString("[" + f.Text + "]")
		key := strings.ToLower(f.Text)
		if seen[key] {
			continue
		}
		seen[key] = true
		def := f.Definition
		if !f.Defined || def == "" {
			def = render.Placeholder
		}
		notes = append(notes, fmt.Sprintf("  %s: %s", f.Text, def))
	}
	fmt.Fprintf(w, "%s\n", body.String())
	for _, n := range notes {
		fmt.Fprintln(w, n)
	}
	writeItems(w, export.KeyPointsHeading, sec.KeyPoints)
	writeItems(w, export.SourcesHeading, sec.Citations)
}

func writeItems(w io.Writer, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", heading)
	for _, it := range items {
		fmt.Fprintf(w, "  - %s\n", markup.Strip(it))
	}
}
