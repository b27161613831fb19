// Package content holds the static site descriptors: projects, events,
// offerings, categories and testimonials. The document is embedded and
// parsed once at start-up; a Store is read-only afterwards.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/infinai/infinai/internal/model"
)

//go:embed site.yaml
var siteYAML []byte

var (
	// ErrUnknownFilter indicates a filter name outside all/active/future/research.
	ErrUnknownFilter = errors.New("unknown project filter")
	// ErrProjectNotFound indicates no project has the requested id.
	ErrProjectNotFound = errors.New("project not found")
	// ErrInvalidDocument indicates the content document failed validation.
	ErrInvalidDocument = errors.New("invalid content document")
)

var (
	projectIDPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	hexColorPattern  = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// Filter selects projects on the projects page.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterActive   Filter = "active"
	FilterFuture   Filter = "future"
	FilterResearch Filter = "research"
)

// Filters lists every filter in display order.
var Filters = []Filter{FilterAll, FilterActive, FilterFuture, FilterResearch}

// ParseFilter validates a filter name. The empty string means all.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterActive, FilterFuture, FilterResearch:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFilter, s)
	}
}

// Kind returns the badge kind the filter matches. All maps to BadgeNone.
func (f Filter) Kind() model.BadgeKind {
	switch f {
	case FilterActive:
		return model.BadgeActive
	case FilterFuture:
		return model.BadgeFuture
	case FilterResearch:
		return model.BadgeResearch
	default:
		return model.BadgeNone
	}
}

// Label is the button text for the filter.
func (f Filter) Label() string {
	switch f {
	case FilterActive:
		return "Active Projects"
	case FilterFuture:
		return "Future Projects"
	case FilterResearch:
		return "Research Initiatives"
	default:
		return "All Projects"
	}
}

// Hero is the landing banner copy.
type Hero struct {
	Title     string
	Highlight string
	Subtitle  string
	CTAText   string
	CTALink   string
}

// ProjectStats summarises the project catalogue.
type ProjectStats struct {
	Active      int `json:"active"`
	Future      int `json:"future"`
	Research    int `json:"research"`
	TeamMembers int `json:"teamMembers"`
}

// Store serves the parsed content document.
type Store struct {
	hero         Hero
	event        model.Event
	values       []string
	offerings    []model.Offering
	categories   []model.Category
	projects     []model.Project
	byID         map[string]int
	testimonials []model.Testimonial
	stats        []model.Stat
}

// Default parses the embedded document.
func Default() (*Store, error) {
	return Parse(siteYAML)
}

// MustDefault is Default for package-level wiring; it panics on a bad document.
func MustDefault() *Store {
	s, err := Default()
	if err != nil {
		panic(err)
	}
	return s
}

// Projects returns the projects matching the filter in source order.
// The result is a fresh slice on every call.
func (s *Store) Projects(f Filter) []model.Project {
	out := make([]model.Project, 0, len(s.projects))
	for _, p := range s.projects {
		if f == FilterAll || p.Kind() == f.Kind() {
			out = append(out, p)
		}
	}
	return out
}

// Featured returns projects with a featured order, ascending.
func (s *Store) Featured() []model.Project {
	out := make([]model.Project, 0, len(s.projects))
	for _, p := range s.projects {
		if p.FeaturedOrder != nil {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].FeaturedOrder < *out[j].FeaturedOrder
	})
	return out
}

// Project looks up a project by id.
func (s *Store) Project(id string) (model.Project, error) {
	i, ok := s.byID[id]
	if !ok {
		return model.Project{}, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	return s.projects[i], nil
}

// Stats counts projects per badge kind and sums team sizes.
func (s *Store) Stats() ProjectStats {
	var st ProjectStats
	for _, p := range s.projects {
		switch p.Kind() {
		case model.BadgeActive:
			st.Active++
		case model.BadgeFuture:
			st.Future++
		case model.BadgeResearch:
			st.Research++
		}
		st.TeamMembers += len(p.Team)
	}
	return st
}

func (s *Store) Hero() Hero                        { return s.hero }
func (s *Store) FeaturedEvent() model.Event        { return s.event }
func (s *Store) Values() []string                  { return s.values }
func (s *Store) Offerings() []model.Offering       { return s.offerings }
func (s *Store) Categories() []model.Category      { return s.categories }
func (s *Store) Testimonials() []model.Testimonial { return s.testimonials }
func (s *Store) HomeStats() []model.Stat           { return s.stats }
