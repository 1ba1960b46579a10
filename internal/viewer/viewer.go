// Package viewer composes the glossary, navigator, speech controller and
// encoders into the stateful core a host shell drives.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/dgallion1/tinywiki/internal/export"
	"github.com/dgallion1/tinywiki/internal/glossary"
	"github.com/dgallion1/tinywiki/internal/markup"
	"github.com/dgallion1/tinywiki/internal/narration"
	"github.com/dgallion1/tinywiki/internal/navigator"
	"github.com/dgallion1/tinywiki/internal/share"
	"github.com/dgallion1/tinywiki/internal/speech"
	"github.com/dgallion1/tinywiki/internal/wiki"
)

// ErrNoDocument is returned by actions that need a loaded document.
var ErrNoDocument = errors.New("no document loaded")

// Host receives the two callbacks the core hands back to its shell.
type Host interface {
	OnReset()
	OnRelatedTopicSelected(topic string)
}

// HostFuncs adapts functions to Host. Nil fields are ignored.
type HostFuncs struct {
	Reset        func()
	RelatedTopic func(topic string)
}

func (h HostFuncs) OnReset() {
	if h.Reset != nil {
		h.Reset()
	}
}

func (h HostFuncs) OnRelatedTopicSelected(topic string) {
	if h.RelatedTopic != nil {
		h.RelatedTopic(topic)
	}
}

// Options configures a Viewer.
type Options struct {
	BaseURL    string // Origin and path share links are built on
	ShareLimit int    // Maximum share URL length, 0 for share.DefaultLimit
	Narration  narration.Config
}

// Snapshot is a consistent view of the viewer state for hosts.
type Snapshot struct {
	Title           string          `json:"title"`
	SectionCount    int             `json:"sectionCount"`
	Navigation      navigator.State `json:"navigation"`
	Speech          speech.State    `json:"speech"`
	SpeechAvailable bool            `json:"speechAvailable"`
	GlossarySize    int             `json:"glossarySize"`
}

// Viewer owns all interaction state for one reader. The document it is given
// is never modified.
//
// Every state transition runs under one lifecycle lock, so a document swap,
// the speech stop and the navigator reset that go with it are never observed
// half done by another action.
type Viewer struct {
	opts   Options
	host   Host
	nav    *navigator.Navigator
	speech *speech.Controller
	notify Notifier
	log    *slog.Logger
	memo   glossary.Memo

	life sync.Mutex // Held for every transition and for Snapshot

	mu           sync.RWMutex // Guards the fields below for lock-free readers
	doc          *wiki.Document
	speechWarned bool
}

// New creates a viewer with no document. engine may be nil when the host has
// no speech synthesis.
func New(opts Options, host Host, effects navigator.Effects, engine speech.Engine, notifier Notifier, log *slog.Logger) *Viewer {
	if log == nil {
		log = slog.Default()
	}
	if host == nil {
		host = HostFuncs{}
	}
	if notifier == nil {
		notifier = NotifierFunc(func(n Notice) {
			log.Info("notice", "level", n.Level, "message", n.Message)
		})
	}
	if opts.ShareLimit <= 0 {
		opts.ShareLimit = share.DefaultLimit
	}
	return &Viewer{
		opts:   opts,
		host:   host,
		nav:    navigator.New(effects),
		speech: speech.NewController(engine, log),
		notify: notifier,
		log:    log,
	}
}

// OnDocumentChanged installs doc. A different document resets navigation,
// collapse state and speech, then applies fragment as a deep link. Passing the
// current document again only applies the fragment.
func (v *Viewer) OnDocumentChanged(doc *wiki.Document, fragment string) error {
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	v.life.Lock()
	defer v.life.Unlock()

	v.mu.Lock()
	changed := v.doc != doc
	v.doc = doc
	v.mu.Unlock()

	if changed {
		v.speech.Stop()
		v.nav.Reset(len(doc.Sections))
		g := v.memo.Get(doc)
		v.log.Debug("document loaded", "title", doc.Title, "sections", len(doc.Sections), "terms", g.Len())
	}
	if fragment != "" {
		v.nav.LoadDeepLink(fragment)
	}
	return nil
}

// OpenShareLink loads the document carried by a share URL, deep-linking to
// its fragment. Corrupted links leave the current state untouched.
func (v *Viewer) OpenShareLink(link string) error {
	doc, section, err := share.ParseURL(link)
	if err != nil {
		v.notify.Notify(Notice{Level: LevelError, Message: msgShareCorrupted})
		return err
	}
	fragment := ""
	if section >= 0 {
		fragment = navigator.Fragment(section)
	}
	return v.OnDocumentChanged(doc, fragment)
}

// Document returns the current document, or nil.
func (v *Viewer) Document() *wiki.Document {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.doc
}

func (v *Viewer) document() (*wiki.Document, error) {
	doc := v.Document()
	if doc == nil {
		return nil, ErrNoDocument
	}
	return doc, nil
}

// Glossary returns the glossary of the current document.
func (v *Viewer) Glossary() glossary.Map {
	doc := v.Document()
	if doc == nil {
		return glossary.Map{}
	}
	return v.memo.Get(doc)
}

// Fragments formats the content of section i against the glossary.
func (v *Viewer) Fragments(i int) ([]markup.Fragment, error) {
	doc, err := v.document()
	if err != nil {
		return nil, err
	}
	sec, ok := doc.Section(i)
	if !ok {
		return nil, fmt.Errorf("%w: %d", navigator.ErrNoSuchSection, i)
	}
	return slices.Collect(markup.Format(sec.Content, v.memo.Get(doc))), nil
}

func (v *Viewer) SelectSection(i int) error {
	v.life.Lock()
	defer v.life.Unlock()
	return v.nav.Select(i)
}

func (v *Viewer) ToggleCollapse(i int) error {
	v.life.Lock()
	defer v.life.Unlock()
	return v.nav.ToggleCollapse(i)
}

func (v *Viewer) GoBack() bool {
	v.life.Lock()
	defer v.life.Unlock()
	return v.nav.Back()
}

func (v *Viewer) GoForward() bool {
	v.life.Lock()
	defer v.life.Unlock()
	return v.nav.Forward()
}

// SpeechAvailable reports whether read-aloud can work at all.
func (v *Viewer) SpeechAvailable() bool { return v.speech.Available() }

// ToggleSpeech plays, pauses or resumes section i. A missing speech engine
// is reported once as a warning notice and is not an error.
func (v *Viewer) ToggleSpeech(i int) (speech.State, error) {
	v.life.Lock()
	defer v.life.Unlock()

	doc, err := v.document()
	if err != nil {
		return v.speech.State(), err
	}
	sec, ok := doc.Section(i)
	if !ok {
		return v.speech.State(), fmt.Errorf("%w: %d", navigator.ErrNoSuchSection, i)
	}

	st, err := v.speech.Request(i, narration.Script(sec, v.opts.Narration))
	switch {
	case errors.Is(err, speech.ErrUnavailable):
		v.mu.Lock()
		warn := !v.speechWarned
		v.speechWarned = true
		v.mu.Unlock()
		if warn {
			v.notify.Notify(Notice{Level: LevelWarning, Message: msgSpeechUnavailable})
		}
		return st, nil
	case err != nil:
		v.log.Warn("speech request failed", "section", i, "error", err)
		v.notify.Notify(Notice{Level: LevelError, Message: msgSpeechFailed})
		return st, err
	}
	return st, nil
}

// StopSpeech stops any playback.
func (v *Viewer) StopSpeech() {
	v.life.Lock()
	defer v.life.Unlock()
	v.speech.Stop()
}

// ShareLink encodes the current document and active section into a URL.
func (v *Viewer) ShareLink() (string, error) {
	v.life.Lock()
	defer v.life.Unlock()

	doc, err := v.document()
	if err != nil {
		return "", err
	}
	link, err := share.Encode(doc, v.nav.Active(), v.opts.BaseURL, v.opts.ShareLimit)
	switch {
	case share.IsTooLarge(err):
		v.notify.Notify(Notice{Level: LevelWarning, Message: msgShareTooLarge})
		return "", err
	case err != nil:
		v.notify.Notify(Notice{Level: LevelError, Message: msgShareFailed})
		return "", err
	}
	return link, nil
}

// CopyShareLink writes the share link to clip.
func (v *Viewer) CopyShareLink(ctx context.Context, clip Clipboard) (string, error) {
	link, err := v.ShareLink()
	if err != nil {
		return "", err
	}
	// Outside the lifecycle lock: the write may block on an external program.
	if err := clip.WriteText(ctx, link); err != nil {
		v.log.Warn("clipboard write failed", "error", err)
		v.notify.Notify(Notice{Level: LevelError, Message: msgCopyFailed})
		return "", &ClipboardError{Err: err}
	}
	v.notify.Notify(Notice{Level: LevelInfo, Message: msgLinkCopied})
	return link, nil
}

func (v *Viewer) ExportMarkdown() (export.File, error) { return v.export(export.FormatMarkdown) }

func (v *Viewer) ExportRichDocument() (export.File, error) { return v.export(export.FormatDoc) }

func (v *Viewer) ExportDOCX() (export.File, error) { return v.export(export.FormatDOCX) }

// Export renders the current document in format f.
func (v *Viewer) Export(f export.Format) (export.File, error) { return v.export(f) }

func (v *Viewer) export(f export.Format) (export.File, error) {
	v.life.Lock()
	defer v.life.Unlock()

	doc, err := v.document()
	if err != nil {
		return export.File{}, err
	}
	file, err := export.Render(doc, f)
	if err != nil {
		v.log.Error("export failed", "format", f, "error", err)
		v.notify.Notify(Notice{Level: LevelError, Message: msgExportFailed})
		return export.File{}, err
	}
	return file, nil
}

// SelectRelatedTopic hands topic to the host.
func (v *Viewer) SelectRelatedTopic(topic string) error {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return fmt.Errorf("related topic is empty")
	}
	v.life.Lock()
	defer v.life.Unlock()
	v.speech.Stop()
	v.host.OnRelatedTopicSelected(topic)
	return nil
}

// Reset cancels speech, drops the document and tells the host.
func (v *Viewer) Reset() {
	v.life.Lock()
	defer v.life.Unlock()

	v.speech.Stop()
	v.mu.Lock()
	v.doc = nil
	v.mu.Unlock()
	v.nav.Reset(0)
	v.host.OnReset()
}

// Close tears the viewer down. Speech is cancelled and cannot restart.
func (v *Viewer) Close() {
	v.speech.Close()
}

// Snapshot returns the current state.
func (v *Viewer) Snapshot() Snapshot {
	v.life.Lock()
	defer v.life.Unlock()

	doc := v.Document()
	s := Snapshot{
		Navigation:      v.nav.State(),
		Speech:          v.speech.State(),
		SpeechAvailable: v.speech.Available(),
	}
	if doc != nil {
		s.Title = doc.Title
		s.SectionCount = len(doc.Sections)
		s.GlossarySize = v.memo.Get(doc).Len()
	}
	return s
}
