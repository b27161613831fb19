// Package model defines domain entities for the application.
package model

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownBadge indicates a badge label outside the closed set.
	ErrUnknownBadge = errors.New("unknown badge label")
	// ErrUnknownColor indicates a color outside the palette.
	ErrUnknownColor = errors.New("unknown badge color")
)

// BadgeKind classifies a project's lifecycle stage.
type BadgeKind int

const (
	BadgeNone BadgeKind = iota
	BadgeActive
	BadgeFuture
	BadgeResearch
)

var badgeLabels = map[BadgeKind]string{
	BadgeActive:   "ACTIVE",
	BadgeFuture:   "FUTURE PROJECT",
	BadgeResearch: "RESEARCH",
}

// Label returns the display text of the badge.
func (k BadgeKind) Label() string {
	return badgeLabels[k]
}

// String implements fmt.Stringer.
func (k BadgeKind) String() string {
	if l, ok := badgeLabels[k]; ok {
		return l
	}
	return "NONE"
}

// MarshalText encodes the kind as its display label.
func (k BadgeKind) MarshalText() ([]byte, error) {
	return []byte(k.Label()), nil
}

// UnmarshalText decodes a display label.
func (k *BadgeKind) UnmarshalText(text []byte) error {
	kind, err := ParseBadgeKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// ParseBadgeKind maps a display label back to its kind.
func ParseBadgeKind(label string) (BadgeKind, error) {
	for kind, l := range badgeLabels {
		if l == label {
			return kind, nil
		}
	}
	return BadgeNone, fmt.Errorf("%w: %q", ErrUnknownBadge, label)
}

// Color is one of the palette names used for badges and accents.
type Color string

const (
	ColorBlue   Color = "blue"
	ColorPurple Color = "purple"
	ColorGreen  Color = "green"
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
)

// IsValid checks if the color is part of the palette.
func (c Color) IsValid() bool {
	switch c {
	case ColorBlue, ColorPurple, ColorGreen, ColorRed, ColorYellow:
		return true
	}
	return false
}

// ParseColor validates a palette color name.
func ParseColor(s string) (Color, error) {
	c := Color(s)
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownColor, s)
	}
	return c, nil
}

// Badge is the label shown on a project card.
type Badge struct {
	Kind  BadgeKind `json:"kind"`
	Color Color     `json:"color"`
}

// Project is a club project shown on the home and projects pages.
type Project struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	FullDescription string   `json:"fullDescription,omitempty"`
	Image           string   `json:"image"`
	Tags            []string `json:"tags"`
	Team            []string `json:"team,omitempty"`
	GitHub          string   `json:"github,omitempty"`
	DemoLink        string   `json:"demoLink,omitempty"`
	Badge           *Badge   `json:"badge,omitempty"`
	Completed       bool     `json:"completed"`
	FeaturedOrder   *int     `json:"featuredOrder,omitempty"`
}

// Kind returns the badge kind, or BadgeNone when the project has no badge.
func (p *Project) Kind() BadgeKind {
	if p.Badge == nil {
		return BadgeNone
	}
	return p.Badge.Kind
}

// Category is an explore-section card linking to a site area.
type Category struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Image          string `json:"image"`
	GradientFrom   string `json:"gradientFrom"`
	GradientTo     string `json:"gradientTo"`
	URL            string `json:"url"`
	AnimeReference string `json:"animeReference,omitempty"`
}

// Offering describes one of the club's program areas.
type Offering struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Items       []string `json:"items"`
	IconPath    string   `json:"iconPath"`
	Color       Color    `json:"color"`
}

// Event is the featured upcoming event.
type Event struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Badge       string `json:"badge"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Image       string `json:"image"`
	ButtonText  string `json:"buttonText"`
	ButtonLink  string `json:"buttonLink"`
}

// Testimonial is a member quote.
type Testimonial struct {
	Quote       string `json:"quote"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	AvatarColor Color  `json:"avatarColor"`
}

// Stat is one figure in the home page stats strip.
type Stat struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
