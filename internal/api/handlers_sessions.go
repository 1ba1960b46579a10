package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/tinywiki/internal/export"
	"github.com/dgallion1/tinywiki/internal/markup"
	"github.com/dgallion1/tinywiki/internal/navigator"
	"github.com/dgallion1/tinywiki/internal/session"
	"github.com/dgallion1/tinywiki/internal/share"
	"github.com/dgallion1/tinywiki/internal/viewer"
	"github.com/dgallion1/tinywiki/internal/wiki"
)

// documentRequest carries either an inline document or a share link.
type documentRequest struct {
	wiki.Document
	Share    string `json:"share"`
	Fragment string `json:"fragment"`
}

// resolve returns the requested document and deep-link fragment.
func (req *documentRequest) resolve() (*wiki.Document, string, error) {
	if req.Share == "" {
		doc := req.Document
		return &doc, req.Fragment, nil
	}
	// A full URL carries the value as a query parameter; anything else is the
	// bare value.
	if strings.Contains(req.Share, share.Param+"=") {
		doc, section, err := share.ParseURL(req.Share)
		if err != nil {
			return nil, "", err
		}
		fragment := req.Fragment
		if fragment == "" && section >= 0 {
			fragment = navigator.Fragment(section)
		}
		return doc, fragment, nil
	}
	doc, err := share.Decode(req.Share)
	return doc, req.Fragment, err
}

func (s *Server) decodeDocumentRequest(w http.ResponseWriter, r *http.Request) (*wiki.Document, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	var req documentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return nil, "", false
	}
	doc, fragment, err := req.resolve()
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return nil, "", false
	}
	return doc, fragment, true
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	doc, fragment, ok := s.decodeDocumentRequest(w, r)
	if !ok {
		return
	}
	sess, err := s.sessions.Create(doc, fragment)
	if errors.Is(err, session.ErrTooManySessions) {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Location", "/api/sessions/"+sess.ID)
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

// session looks up the session named in the URL, writing 404 if it is gone.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, ok := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if !ok {
		jsonError(w, "session not found", http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

func sectionIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || i < 0 {
		jsonError(w, "section index must be a non-negative integer", http.StatusBadRequest)
		return 0, false
	}
	return i, true
}

// actionError maps viewer errors to HTTP statuses.
func actionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, navigator.ErrNoSuchSection):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, viewer.ErrNoDocument):
		jsonError(w, err.Error(), http.StatusConflict)
	case share.IsTooLarge(err):
		jsonError(w, err.Error(), http.StatusRequestEntityTooLarge)
	default:
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Delete(chi.URLParam(r, "sessionID")) {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReplaceDocument(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	doc, fragment, ok := s.decodeDocumentRequest(w, r)
	if !ok {
		return
	}
	if err := sess.Viewer.OnDocumentChanged(doc, fragment); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// sectionAction runs fn against the session's viewer with the section index
// from the URL and responds with the new snapshot.
func (s *Server) sectionAction(fn func(v *viewer.Viewer, i int) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.session(w, r)
		if !ok {
			return
		}
		i, ok := sectionIndex(w, r)
		if !ok {
			return
		}
		if err := fn(sess.Viewer, i); err != nil {
			actionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess.Snapshot())
	}
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	s.sectionAction(func(v *viewer.Viewer, i int) error { return v.SelectSection(i) })(w, r)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	s.sectionAction(func(v *viewer.Viewer, i int) error { return v.ToggleCollapse(i) })(w, r)
}

func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	s.sectionAction(func(v *viewer.Viewer, i int) error {
		_, err := v.ToggleSpeech(i)
		return err
	})(w, r)
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Viewer.GoBack()
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleForward(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Viewer.GoForward()
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleStopSpeech(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Viewer.StopSpeech()
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleGlossary(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": sess.Viewer.Glossary().Entries()})
}

type fragmentJSON struct {
	Kind       string `json:"kind"`
	Text       string `json:"text"`
	Definition string `json:"definition,omitempty"`
	Defined    bool   `json:"defined,omitempty"`
}

func (s *Server) handleFragments(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	i, ok := sectionIndex(w, r)
	if !ok {
		return
	}
	frags, err := sess.Viewer.Fragments(i)
	if err != nil {
		actionError(w, err)
		return
	}
	out := make([]fragmentJSON, 0, len(frags))
	for _, f := range frags {
		fj := fragmentJSON{Kind: f.Kind.String(), Text: f.Text}
		if f.Kind == markup.KindTerm {
			fj.Definition, fj.Defined = f.Definition, f.Defined
		}
		out = append(out, fj)
	}
	writeJSON(w, http.StatusOK, map[string]any{"section": i, "fragments": out})
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	link, err := sess.Viewer.ShareLink()
	if err != nil {
		actionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": link})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	start := time.Now()
	file, err := sess.Viewer.Export(format)
	if err != nil {
		actionError(w, err)
		return
	}
	s.exports.Record(time.Since(start))
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(file.Data)
}

func (s *Server) handleRelated(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Topic string `json:"topic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := sess.Viewer.SelectRelatedTopic(req.Topic); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Viewer.Reset()
	writeJSON(w, http.StatusOK, sess.Snapshot())
}
