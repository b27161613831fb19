package web

import (
	"html/template"
	"net/url"
	"strings"

	"github.com/infinai/infinai/internal/auth"
	"github.com/infinai/infinai/internal/content"
	"github.com/infinai/infinai/internal/model"
	"github.com/infinai/infinai/internal/particles"
	"github.com/infinai/infinai/internal/splash"
)

// AuthView is the panel shown in the auth dialog.
type AuthView string

const (
	AuthSignIn AuthView = "sign-in"
	AuthSignUp AuthView = "sign-up"
)

// ParseAuthView maps a query value to a view. Unknown values fall back to
// sign-in.
func ParseAuthView(s string) AuthView {
	if AuthView(strings.ToLower(strings.TrimSpace(s))) == AuthSignUp {
		return AuthSignUp
	}
	return AuthSignIn
}

// Toggle returns the other view.
func (v AuthView) Toggle() AuthView {
	if v == AuthSignUp {
		return AuthSignIn
	}
	return AuthSignUp
}

// AuthModal is the dialog state for one render.
type AuthModal struct {
	Open bool
	View AuthView
}

// AuthModalFromQuery opens the dialog when the "auth" query parameter is
// present.
func AuthModalFromQuery(q url.Values) AuthModal {
	if !q.Has("auth") {
		return AuthModal{View: AuthSignIn}
	}
	return AuthModal{Open: true, View: ParseAuthView(q.Get("auth"))}
}

// PageData is the root value every template receives.
type PageData struct {
	Title     string
	Path      string
	Session   *auth.Session
	Auth      AuthModal
	Splash    splash.Schedule
	Particles particles.Config
	View      any

	clerk clerkSettings
}

// Clerk returns the browser widget settings.
func (p *PageData) Clerk() clerkSettings { return p.clerk }

type clerkSettings struct {
	PublishableKey string
	FrontendAPI    string
}

// Enabled reports whether the widgets can load.
func (c clerkSettings) Enabled() bool {
	return c.PublishableKey != "" && c.FrontendAPI != ""
}

// SignedIn reports whether a member session is present.
func (p *PageData) SignedIn() bool { return p.Session != nil }

// HomeView feeds the home page.
type HomeView struct {
	Hero         content.Hero
	Event        model.Event
	Values       []string
	Offerings    []model.Offering
	Categories   []model.Category
	Featured     []model.Project
	Testimonials []model.Testimonial
	Stats        []model.Stat
}

// FilterButton is one filter toggle on the projects page.
type FilterButton struct {
	Label  string
	Value  string
	Active bool
}

// ProjectsView feeds the projects page.
type ProjectsView struct {
	Filter   content.Filter
	Buttons  []FilterButton
	Projects []model.Project
	Stats    content.ProjectStats
}

// NewProjectsView builds the filter buttons for the active filter.
func NewProjectsView(active content.Filter, projects []model.Project, stats content.ProjectStats) ProjectsView {
	v := ProjectsView{Filter: active, Projects: projects, Stats: stats}
	for _, f := range content.Filters {
		v.Buttons = append(v.Buttons, FilterButton{Label: f.Label(), Value: string(f), Active: f == active})
	}
	return v
}

// ProjectView feeds the project detail page.
type ProjectView struct {
	Project model.Project
	Body    template.HTML
}
