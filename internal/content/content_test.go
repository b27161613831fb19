package content

import (
	"errors"
	"testing"

	"github.com/infinai/infinai/internal/model"
)

const fixture = `
projects:
  - id: alpha
    title: Alpha
    tags: [Go]
    badge: {text: ACTIVE, color: blue}
    team: [A, B]
    featured_order: 2
  - id: beta
    title: Beta
    badge: {text: RESEARCH, color: yellow}
    team: [C]
  - id: gamma
    title: Gamma
    badge: {text: FUTURE PROJECT, color: green}
    featured_order: 1
  - id: delta
    title: Delta
    team: [D, E, F]
  - id: epsilon
    title: Epsilon
    badge: {text: ACTIVE, color: red}
`

func mustParse(t *testing.T, doc string) *Store {
	t.Helper()
	s, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return s
}

func ids(projects []model.Project) []string {
	out := make([]string, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.ID)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestStore_Projects(t *testing.T) {
	t.Parallel()

	s := mustParse(t, fixture)

	tests := []struct {
		filter Filter
		want   []string
	}{
		{FilterAll, []string{"alpha", "beta", "gamma", "delta", "epsilon"}},
		{FilterActive, []string{"alpha", "epsilon"}},
		{FilterFuture, []string{"gamma"}},
		{FilterResearch, []string{"beta"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			t.Parallel()
			got := ids(s.Projects(tt.filter))
			if !equal(got, tt.want) {
				t.Errorf("Projects(%s) = %v, want %v", tt.filter, got, tt.want)
			}
		})
	}
}

func TestStore_Projects_UnionOfKindsAndUnbadged(t *testing.T) {
	t.Parallel()

	s := mustParse(t, fixture)
	total := len(s.Projects(FilterActive)) + len(s.Projects(FilterFuture)) + len(s.Projects(FilterResearch))

	unbadged := 0
	for _, p := range s.Projects(FilterAll) {
		if p.Badge == nil {
			unbadged++
		}
	}

	if total+unbadged != len(s.Projects(FilterAll)) {
		t.Errorf("filtered sets plus unbadged (%d) should cover all (%d)", total+unbadged, len(s.Projects(FilterAll)))
	}
}

func TestStore_Projects_ReturnsCopy(t *testing.T) {
	t.Parallel()

	s := mustParse(t, fixture)
	got := s.Projects(FilterAll)
	got[0].Title = "mutated"

	if s.Projects(FilterAll)[0].Title != "Alpha" {
		t.Error("Projects() must not expose the backing slice")
	}
}

func TestStore_Featured(t *testing.T) {
	t.Parallel()

	s := mustParse(t, fixture)
	got := ids(s.Featured())
	want := []string{"gamma", "alpha"}
	if !equal(got, want) {
		t.Errorf("Featured() = %v, want %v", got, want)
	}
}

func TestStore_Project(t *testing.T) {
	t.Parallel()

	s := mustParse(t, fixture)

	p, err := s.Project("beta")
	if err != nil {
		t.Fatalf("Project(beta) error = %v", err)
	}
	if p.Title != "Beta" {
		t.Errorf("Title = %s, want Beta", p.Title)
	}

	if _, err := s.Project("missing"); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestStore_Stats(t *testing.T) {
	t.Parallel()

	s := mustParse(t, fixture)
	got := s.Stats()
	want := ProjectStats{Active: 2, Future: 1, Research: 1, TeamMembers: 6}
	if got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}

func TestParseFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Filter
		wantErr bool
	}{
		{"", FilterAll, false},
		{"all", FilterAll, false},
		{"Active", FilterActive, false},
		{" future ", FilterFuture, false},
		{"research", FilterResearch, false},
		{"completed", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseFilter(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFilter(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrUnknownFilter) {
				t.Errorf("expected ErrUnknownFilter, got %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseFilter(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{"unknown badge", "projects:\n  - {id: a, title: A, badge: {text: DONE, color: blue}}\n"},
		{"unknown color", "projects:\n  - {id: a, title: A, badge: {text: ACTIVE, color: orange}}\n"},
		{"duplicate id", "projects:\n  - {id: a, title: A}\n  - {id: a, title: B}\n"},
		{"bad id", "projects:\n  - {id: 'Not An Id', title: A}\n"},
		{"missing title", "projects:\n  - {id: a}\n"},
		{"unknown key", "projects:\n  - {id: a, title: A, owner: x}\n"},
		{"bad gradient", "categories:\n  - {title: T, gradient_from: red, gradient_to: '#000000'}\n"},
		{"bad testimonial color", "testimonials:\n  - {quote: q, name: n, role: r, avatar_color: pink}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Parse([]byte(tt.doc)); !errors.Is(err, ErrInvalidDocument) {
				t.Errorf("expected ErrInvalidDocument, got %v", err)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	t.Parallel()

	s, err := Default()
	if err != nil {
		t.Fatalf("embedded document should parse: %v", err)
	}

	if n := len(s.Projects(FilterAll)); n != 5 {
		t.Errorf("expected 5 projects, got %d", n)
	}
	if n := len(s.Projects(FilterFuture)); n != 5 {
		t.Errorf("expected 5 future projects, got %d", n)
	}
	if n := len(s.Projects(FilterActive)); n != 0 {
		t.Errorf("expected 0 active projects, got %d", n)
	}

	featured := ids(s.Featured())
	want := []string{"predictive-analytics", "ai-tutor", "computer-vision-lab", "data-visualization-toolkit", "reinforcement-learning-platform"}
	if !equal(featured, want) {
		t.Errorf("Featured() = %v, want %v", featured, want)
	}

	if st := s.Stats(); st.TeamMembers != 16 {
		t.Errorf("expected 16 team members, got %d", st.TeamMembers)
	}

	if len(s.Offerings()) != 4 || len(s.Categories()) != 6 || len(s.Testimonials()) != 2 {
		t.Errorf("unexpected section sizes: offerings=%d categories=%d testimonials=%d",
			len(s.Offerings()), len(s.Categories()), len(s.Testimonials()))
	}

	if s.FeaturedEvent().ButtonText != "Register Now" {
		t.Errorf("unexpected event button: %q", s.FeaturedEvent().ButtonText)
	}
}
