package web

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/infinai/infinai/internal/auth"
	"github.com/infinai/infinai/internal/content"
	"github.com/infinai/infinai/internal/model"
	"github.com/infinai/infinai/internal/particles"
	"github.com/infinai/infinai/internal/splash"
)

func newRenderer(t *testing.T, opts Options) *Renderer {
	t.Helper()
	r, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r
}

func homeView(t *testing.T) HomeView {
	t.Helper()
	site := content.MustDefault()
	return HomeView{
		Hero:         site.Hero(),
		Event:        site.FeaturedEvent(),
		Values:       site.Values(),
		Offerings:    site.Offerings(),
		Categories:   site.Categories(),
		Featured:     site.Featured(),
		Testimonials: site.Testimonials(),
		Stats:        site.HomeStats(),
	}
}

func render(t *testing.T, r *Renderer, page string, data *PageData) string {
	t.Helper()
	var buf bytes.Buffer
	if err := r.Render(&buf, page, data); err != nil {
		t.Fatalf("Render(%s) error = %v", page, err)
	}
	return buf.String()
}

func assertContains(t *testing.T, body string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(body, w) {
			t.Errorf("body missing %q", w)
		}
	}
}

func assertNotContains(t *testing.T, body string, unwanted ...string) {
	t.Helper()
	for _, w := range unwanted {
		if strings.Contains(body, w) {
			t.Errorf("body unexpectedly contains %q", w)
		}
	}
}

func TestRenderHome_SignedOut(t *testing.T) {
	t.Parallel()

	r := newRenderer(t, Options{})
	body := render(t, r, PageHome, &PageData{
		Particles: particles.DefaultConfig(),
		View:      homeView(t),
	})

	assertContains(t, body,
		"<title>InfinAI - IITM BS AI/ML Club</title>",
		"Official AI/ML club of IIT Madras BS Degree Program",
		"Empowering the Future of",
		"AI &amp; Machine Learning",
		"About InfinAI",
		"What We Offer",
		"Explore InfinAI",
		"Featured Projects",
		"Ready to Dive into AI/ML?",
		"Become a Member",
		"Join Us",
		"250+",
		"Community Members",
		"Get monthly AI insights, event updates, and resources.",
		"InfinAI. All rights reserved.",
		"https://github.com/InfinAI-ML",
	)
	assertNotContains(t, body, "Access Member Area", `id="splash"`, "clerk.browser.js")
}

func TestRenderHome_SignedIn(t *testing.T) {
	t.Parallel()

	r := newRenderer(t, Options{})
	tests := []struct {
		name    string
		session *auth.Session
		want    string
	}{
		{"first name", &auth.Session{UserID: "user_1", FirstName: "Ada"}, "Welcome, Ada!"},
		{"no first name", &auth.Session{UserID: "user_2"}, "Welcome, Member!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			body := render(t, r, PageHome, &PageData{Session: tt.session, View: homeView(t)})
			assertContains(t, body, tt.want, "Access Member Area", "Sign Out")
			assertNotContains(t, body, "Become a Member")
		})
	}
}

func TestRenderHome_Splash(t *testing.T) {
	t.Parallel()

	r := newRenderer(t, Options{})
	sched := splash.Plan(splash.DefaultTiming(), splash.NewMemoryVisits(false), false)
	body := render(t, r, PageHome, &PageData{Splash: sched, View: homeView(t)})

	assertContains(t, body, `id="splash"`, "PROCESSING DATA", "Infin AI", "page--hidden", "showSplash")
}

func TestRenderProjects(t *testing.T) {
	t.Parallel()

	r := newRenderer(t, Options{})
	site := content.MustDefault()

	body := render(t, r, PageProjects, &PageData{
		View: NewProjectsView(content.FilterAll, site.Projects(content.FilterAll), site.Stats()),
	})
	assertContains(t, body,
		"Our Projects &amp; Research",
		"All Projects", "Active Projects", "Future Projects", "Research Initiatives",
		"View Details →",
		"Want to Contribute?",
		"Join a Project Team",
		"Propose a Project",
		"Team Members",
	)
	assertNotContains(t, body, "No projects found in this category.")

	empty := render(t, r, PageProjects, &PageData{
		View: NewProjectsView(content.FilterResearch, nil, site.Stats()),
	})
	assertContains(t, empty, "No projects found in this category.")
}

func TestNewProjectsView_MarksActiveFilter(t *testing.T) {
	t.Parallel()

	v := NewProjectsView(content.FilterFuture, nil, content.ProjectStats{})
	if len(v.Buttons) != len(content.Filters) {
		t.Fatalf("len(Buttons) = %d, want %d", len(v.Buttons), len(content.Filters))
	}
	for _, b := range v.Buttons {
		if want := b.Value == string(content.FilterFuture); b.Active != want {
			t.Errorf("button %q Active = %v, want %v", b.Value, b.Active, want)
		}
	}
}

func TestRenderProject_Markdown(t *testing.T) {
	t.Parallel()

	r := newRenderer(t, Options{})
	body, err := r.Markdown("## Goals\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n~~old~~ <script>alert(1)</script>")
	if err != nil {
		t.Fatalf("Markdown() error = %v", err)
	}

	out := render(t, r, PageProject, &PageData{View: ProjectView{
		Project: model.Project{
			ID:    "p1",
			Title: "Vision Lab",
			Image: "/images/p1.png",
			Team:  []string{"Ada", "Linus"},
			Badge: &model.Badge{Kind: model.BadgeActive, Color: model.ColorGreen},
		},
		Body: body,
	}})

	assertContains(t, out, `<h2 id="goals">Goals</h2>`, "<table>", "<del>old</del>", "Ada, Linus", "ACTIVE", "badge--green")
	assertNotContains(t, out, "<script>alert(1)</script>")
}

func TestRenderNotFound(t *testing.T) {
	t.Parallel()

	r := newRenderer(t, Options{})
	body := render(t, r, PageNotFound, nil)
	assertContains(t, body, "Stay Tuned!", "Oops! Page not found.", "We might be working on it..", "Go Home")
}

func TestRender_UnknownPage(t *testing.T) {
	t.Parallel()

	r := newRenderer(t, Options{})
	err := r.Render(&bytes.Buffer{}, "admin", nil)
	if !errors.Is(err, ErrUnknownPage) {
		t.Fatalf("Render() error = %v, want ErrUnknownPage", err)
	}
}

func TestRender_ClerkEnabled(t *testing.T) {
	t.Parallel()

	r := newRenderer(t, Options{ClerkPublishableKey: "pk_test_abc", ClerkFrontendAPI: "https://clerk.example.dev/"})
	if !r.ClerkEnabled() {
		t.Fatal("ClerkEnabled() = false")
	}
	if got := r.ClerkHost(); got != "clerk.example.dev" {
		t.Errorf("ClerkHost() = %q, want clerk.example.dev", got)
	}
	body := render(t, r, PageNotFound, &PageData{Auth: AuthModal{Open: true, View: AuthSignUp}})
	assertContains(t, body,
		`data-clerk-publishable-key="pk_test_abc"`,
		"https://clerk.example.dev/npm/@clerk/clerk-js@5/dist/clerk.browser.js",
		`data-view="sign-up"`,
	)
	assertNotContains(t, body, "Sign in is currently unavailable.")
}

func TestAsset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		base string
		in   string
		want string
	}{
		{"", "/images/a.png", "/images/a.png"},
		{"/infinai", "/images/a.png", "/infinai/images/a.png"},
		{"/infinai/", "/static/css/site.css", "/infinai/static/css/site.css"},
		{"/infinai", "https://cdn.example.com/a.png", "https://cdn.example.com/a.png"},
		{"/infinai", "//cdn.example.com/a.png", "//cdn.example.com/a.png"},
		{"/infinai", "#top", "#top"},
		{"/infinai", "", ""},
	}

	for _, tt := range tests {
		r := newRenderer(t, Options{BasePath: tt.base})
		if got := r.Asset(tt.in); got != tt.want {
			t.Errorf("Asset(%q) with base %q = %q, want %q", tt.in, tt.base, got, tt.want)
		}
	}
}

func TestRender_BasePathOnAssets(t *testing.T) {
	t.Parallel()

	r := newRenderer(t, Options{BasePath: "/infinai"})
	body := render(t, r, PageNotFound, nil)
	assertContains(t, body, `href="/infinai/static/css/site.css"`, `data-base-path="/infinai"`)
}

func TestAuthView(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want AuthView
	}{
		{"sign-in", AuthSignIn},
		{"sign-up", AuthSignUp},
		{" Sign-Up ", AuthSignUp},
		{"", AuthSignIn},
		{"reset-password", AuthSignIn},
	}
	for _, tt := range tests {
		if got := ParseAuthView(tt.in); got != tt.want {
			t.Errorf("ParseAuthView(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if AuthSignIn.Toggle() != AuthSignUp || AuthSignUp.Toggle() != AuthSignIn {
		t.Error("Toggle() must swap sign-in and sign-up")
	}
}

func TestAuthModalFromQuery(t *testing.T) {
	t.Parallel()

	if m := AuthModalFromQuery(url.Values{}); m.Open || m.View != AuthSignIn {
		t.Errorf("no query: got %+v", m)
	}
	if m := AuthModalFromQuery(url.Values{"auth": {"sign-up"}}); !m.Open || m.View != AuthSignUp {
		t.Errorf("sign-up query: got %+v", m)
	}
	if m := AuthModalFromQuery(url.Values{"auth": {""}}); !m.Open || m.View != AuthSignIn {
		t.Errorf("bare auth query: got %+v", m)
	}
}

func TestGradient(t *testing.T) {
	t.Parallel()

	if got := gradient("#7f1d1d", "#ef4444"); !strings.Contains(string(got), "#7f1d1d, #ef4444") {
		t.Errorf("gradient() = %q", got)
	}
	if got := gradient("red;}body{", "#fff"); got != "" {
		t.Errorf("gradient() accepted a non-hex color: %q", got)
	}
}

func TestStaticHandler(t *testing.T) {
	t.Parallel()

	h := http.StripPrefix("/static", StaticHandler())
	for _, path := range []string{"/static/css/site.css", "/static/js/splash.js", "/static/js/subscribe.js"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, rec.Code)
		}
	}
}
