// Package web renders the site pages from embedded templates and serves
// the embedded static assets.
package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"
)

//go:embed templates static
var files embed.FS

// Page names accepted by Render.
const (
	PageHome     = "home"
	PageProjects = "projects"
	PageProject  = "project"
	PageNotFound = "notfound"
)

var pageNames = []string{PageHome, PageProjects, PageProject, PageNotFound}

// ErrUnknownPage is returned by Render for a page without a template.
var ErrUnknownPage = errors.New("unknown page")

// Options configures a Renderer.
type Options struct {
	// BasePath prefixes local asset URLs, for example "/infinai".
	BasePath string
	// ClerkPublishableKey enables the sign-in widgets when set.
	ClerkPublishableKey string
	// ClerkFrontendAPI is the host serving the Clerk browser bundle.
	ClerkFrontendAPI string
}

// Renderer executes page templates.
type Renderer struct {
	pages    map[string]*template.Template
	basePath string
	md       goldmark.Markdown
	opts     Options
}

// New parses every page template.
func New(opts Options) (*Renderer, error) {
	r := &Renderer{
		pages:    make(map[string]*template.Template, len(pageNames)),
		basePath: strings.TrimRight(opts.BasePath, "/"),
		md:       newMarkdown(),
		opts:     opts,
	}

	for _, name := range pageNames {
		t, err := template.New(name).Funcs(r.funcs()).ParseFS(files,
			"templates/layout.html",
			"templates/partials/*.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render writes page to w. The page is buffered first so a template error
// never leaves a half-written response.
func (r *Renderer) Render(w io.Writer, page string, data *PageData) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPage, page)
	}
	if data == nil {
		data = &PageData{}
	}
	data.clerk = clerkSettings{
		PublishableKey: r.opts.ClerkPublishableKey,
		FrontendAPI:    r.ClerkHost(),
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Asset resolves a local asset path under the base path. Absolute URLs
// and fragments pass through unchanged.
func (r *Renderer) Asset(path string) string {
	if path == "" || !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") {
		return path
	}
	return r.basePath + path
}

// BasePath returns the configured prefix without a trailing slash.
func (r *Renderer) BasePath() string {
	return r.basePath
}

// ClerkEnabled reports whether the sign-in widgets are configured.
func (r *Renderer) ClerkEnabled() bool {
	return r.opts.ClerkPublishableKey != "" && r.opts.ClerkFrontendAPI != ""
}

// ClerkHost returns the Clerk frontend API host without a scheme.
func (r *Renderer) ClerkHost() string {
	host := strings.TrimPrefix(r.opts.ClerkFrontendAPI, "https://")
	host = strings.TrimPrefix(host, "http://")
	return strings.TrimRight(host, "/")
}

// StaticHandler serves the embedded static directory. Mount it with the
// "/static/" prefix stripped.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err) // embedded tree is fixed at build time
	}
	return http.FileServer(http.FS(sub))
}
