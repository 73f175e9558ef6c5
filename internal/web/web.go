// Package web serves the browser chat page.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gyanova/gyanova/internal/chat"
)

//go:embed static/index.html
var assets embed.FS

// PageData fills the page template
type PageData struct {
	Title               string
	Subtitle            string
	Greeting            string
	APIPath             string
	FallbackNoAnswer    string
	FallbackServerError string
}

// DefaultPageData returns the stock page text
func DefaultPageData() PageData {
	return PageData{
		Title:               "Gyanova",
		Subtitle:            "Your personal intelligent companion",
		Greeting:            chat.Greeting,
		APIPath:             chat.RelayPath,
		FallbackNoAnswer:    chat.FallbackNoAnswer,
		FallbackServerError: chat.FallbackServerError,
	}
}

// Page renders the chat page once and serves the cached bytes
type Page struct {
	body []byte
}

// NewPage renders the embedded template with data
func NewPage(data PageData) (*Page, error) {
	tmpl, err := template.ParseFS(assets, "static/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}
	return &Page{body: buf.Bytes()}, nil
}

// ServeHTTP serves the page at the root path only
func (p *Page) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		_, _ = w.Write(p.body)
	}
}
