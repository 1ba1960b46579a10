package api

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/tinywiki/internal/glossary"
	"github.com/dgallion1/tinywiki/internal/importer"
	"github.com/dgallion1/tinywiki/internal/render"
	"github.com/dgallion1/tinywiki/internal/share"
)

// handleView renders a shared document as a standalone page.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	value := r.URL.Query().Get(share.Param)
	if value == "" {
		http.Error(w, "missing share parameter", http.StatusBadRequest)
		return
	}
	doc, err := share.Decode(value)
	if err != nil {
		s.log.Warn("corrupted share link", "error", err)
		http.Error(w, "This share link is corrupted or incomplete.", http.StatusBadRequest)
		return
	}

	active := -1
	if v := r.URL.Query().Get("section"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 && i < len(doc.Sections) {
			active = i
		}
	}

	var buf bytes.Buffer
	opts := render.PageOptions{
		Active:   active,
		ShareURL: s.cfg.BaseURL + "?" + share.Param + "=" + url.QueryEscape(value),
	}
	if err := render.Page(&buf, doc, glossary.Extract(doc.Sections), opts); err != nil {
		s.log.Error("render page", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// handleImport turns an uploaded export back into a Document.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	filename := sanitizeFilename(header.Filename)
	imp, err := importer.ForFile(filename)
	if err != nil {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}
	doc, err := imp.Import(file, filename)
	if err != nil {
		jsonError(w, "import failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
