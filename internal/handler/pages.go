package handler

import (
	"bytes"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/infinai/infinai/internal/auth"
	"github.com/infinai/infinai/internal/content"
	"github.com/infinai/infinai/internal/metrics"
	"github.com/infinai/infinai/internal/particles"
	"github.com/infinai/infinai/internal/splash"
	"github.com/infinai/infinai/internal/web"
)

// Background frame size for GET /background.svg.
const (
	backgroundWidth  = 1280
	backgroundHeight = 800
	backgroundSteps  = 60
)

// PageConfig holds the presentation settings for PageHandler.
type PageConfig struct {
	Timing       splash.Timing
	AlwaysSplash bool
	Particles    particles.Config
	// CookiePath scopes the returning-visitor cookie.
	CookiePath string
}

// PageHandler renders the HTML pages.
type PageHandler struct {
	renderer *web.Renderer
	site     *content.Store
	cfg      PageConfig
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(renderer *web.Renderer, site *content.Store, cfg PageConfig, recorder metrics.Recorder, logger *slog.Logger) *PageHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = "/"
	}
	return &PageHandler{renderer: renderer, site: site, cfg: cfg, metrics: recorder, logger: logger}
}

// Home handles GET /.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, web.PageHome, "", web.HomeView{
		Hero:         h.site.Hero(),
		Event:        h.site.FeaturedEvent(),
		Values:       h.site.Values(),
		Offerings:    h.site.Offerings(),
		Categories:   h.site.Categories(),
		Featured:     h.site.Featured(),
		Testimonials: h.site.Testimonials(),
		Stats:        h.site.HomeStats(),
	})
}

// Projects handles GET /projects?filter=. Unknown filters show everything.
func (h *PageHandler) Projects(w http.ResponseWriter, r *http.Request) {
	filter, err := content.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		filter = content.FilterAll
	}
	view := web.NewProjectsView(filter, h.site.Projects(filter), h.site.Stats())
	h.render(w, r, http.StatusOK, web.PageProjects, "Projects", view)
}

// Project handles GET /projects/{id}.
func (h *PageHandler) Project(w http.ResponseWriter, r *http.Request) {
	p, err := h.site.Project(chi.URLParam(r, "id"))
	if errors.Is(err, content.ErrProjectNotFound) {
		h.NotFound(w, r)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	src := p.FullDescription
	if src == "" {
		src = p.Description
	}
	body, err := h.renderer.Markdown(src)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, web.PageProject, p.Title, web.ProjectView{Project: p, Body: body})
}

// NotFound renders the 404 page, or a JSON error under /api/.
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		APINotFound(w, r)
		return
	}
	h.render(w, r, http.StatusNotFound, web.PageNotFound, "Page not found", nil)
}

// Background handles GET /background.svg, a still frame of the particle
// field for clients without canvas support.
func (h *PageHandler) Background(w http.ResponseWriter, r *http.Request) {
	field := particles.New(h.cfg.Particles, backgroundWidth, backgroundHeight, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
	for range backgroundSteps {
		field.Step()
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=300")
	if err := field.WriteSVG(w); err != nil {
		h.logger.Error("background_render_failed", "error", err)
	}
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, page, title string, view any) {
	visits := splash.NewCookieVisits(w, r, h.cfg.CookiePath)
	sched := splash.Plan(h.cfg.Timing, visits, h.cfg.AlwaysSplash)
	if sched.ShowSplash {
		h.metrics.IncSplash(metrics.SplashShown)
	} else {
		h.metrics.IncSplash(metrics.SplashSkipped)
	}

	data := &web.PageData{
		Title:     title,
		Path:      r.URL.Path,
		Session:   auth.SessionFromContext(r.Context()),
		Auth:      web.AuthModalFromQuery(r.URL.Query()),
		Splash:    sched,
		Particles: h.cfg.Particles,
		View:      view,
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, page, data); err != nil {
		h.fail(w, r, err)
		return
	}

	h.metrics.IncPageView(page)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *PageHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("page_render_failed", "path", r.URL.Path, "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
