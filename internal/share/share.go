// Package share encodes a whole Document into a URL and back. Links carry the
// document itself, so nothing is stored server-side.
package share

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/dgallion1/tinywiki/internal/navigator"
	"github.com/dgallion1/tinywiki/internal/wiki"
)

// Param is the query parameter holding the encoded document.
const Param = "share"

// DefaultLimit is the longest share URL produced unless configured otherwise.
const DefaultLimit = 8192

// Encode returns base (origin and path, any query or fragment dropped) with the
// document attached as ?share=<base64(json)> and, when active is a section
// index, a #section-<active> fragment. A positive limit caps the URL length.
func Encode(doc *wiki.Document, active int, base string, limit int) (string, error) {
	if err := doc.Validate(); err != nil {
		return "", fmt.Errorf("encode share link: %w", err)
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode share link: %w", err)
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url %q: %w", base, err)
	}
	u.RawQuery = Param + "=" + url.QueryEscape(base64.StdEncoding.EncodeToString(payload))
	u.Fragment, u.RawFragment = "", ""
	if active >= 0 && active < len(doc.Sections) {
		u.Fragment = navigator.Fragment(active)
	}

	link := u.String()
	if limit > 0 && len(link) > limit {
		return "", &PayloadTooLargeError{Size: len(link), Limit: limit}
	}
	return link, nil
}

// Decode turns a share query value back into a Document. Any failure is a
// *CorruptedLinkError; a partially decoded document is never returned.
func Decode(value string) (*wiki.Document, error) {
	raw, err := decodeBase64(value)
	if err != nil {
		return nil, &CorruptedLinkError{Reason: "invalid base64", Err: err}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, &CorruptedLinkError{Reason: "invalid json", Err: err}
	}
	for _, name := range []string{"title", "sections"} {
		if v, ok := fields[name]; !ok || bytes.Equal(v, []byte("null")) {
			return nil, &CorruptedLinkError{Reason: "missing " + name}
		}
	}

	var doc wiki.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &CorruptedLinkError{Reason: "unexpected document shape", Err: err}
	}
	if err := doc.Validate(); err != nil {
		return nil, &CorruptedLinkError{Reason: "invalid document", Err: err}
	}
	return &doc, nil
}

// ParseURL extracts the document and the deep-linked section from a full
// share URL. section is -1 when the URL has no usable fragment.
func ParseURL(link string) (doc *wiki.Document, section int, err error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return nil, -1, &CorruptedLinkError{Reason: "invalid url", Err: err}
	}
	value := u.Query().Get(Param)
	if value == "" {
		return nil, -1, &CorruptedLinkError{Reason: "no " + Param + " parameter"}
	}
	doc, err = Decode(value)
	if err != nil {
		return nil, -1, err
	}
	section = -1
	if i, ok := navigator.ParseFragment(u.Fragment); ok && i < len(doc.Sections) {
		section = i
	}
	return doc, section, nil
}

// decodeBase64 accepts standard or URL-safe alphabets, with or without
// padding, and spaces left behind by form decoding of '+'.
func decodeBase64(value string) ([]byte, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("empty value")
	}
	value = strings.NewReplacer(" ", "+", "-", "+", "_", "/").Replace(value)
	value = strings.TrimRight(value, "=")
	return base64.RawStdEncoding.DecodeString(value)
}
