package content

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/infinai/infinai/internal/model"
)

type document struct {
	Hero struct {
		Title     string `yaml:"title"`
		Highlight string `yaml:"highlight"`
		Subtitle  string `yaml:"subtitle"`
		CTAText   string `yaml:"cta_text"`
		CTALink   string `yaml:"cta_link"`
	} `yaml:"hero"`
	FeaturedEvent struct {
		Title       string `yaml:"title"`
		Description string `yaml:"description"`
		Badge       string `yaml:"badge"`
		Date        string `yaml:"date"`
		Time        string `yaml:"time"`
		Location    string `yaml:"location"`
		Image       string `yaml:"image"`
		ButtonText  string `yaml:"button_text"`
		ButtonLink  string `yaml:"button_link"`
	} `yaml:"featured_event"`
	Values    []string `yaml:"values"`
	Offerings []struct {
		Title       string   `yaml:"title"`
		Description string   `yaml:"description"`
		Items       []string `yaml:"items"`
		IconPath    string   `yaml:"icon_path"`
		Color       string   `yaml:"color"`
	} `yaml:"offerings"`
	Categories []struct {
		Title          string `yaml:"title"`
		Description    string `yaml:"description"`
		Image          string `yaml:"image"`
		URL            string `yaml:"url"`
		AnimeReference string `yaml:"anime_reference"`
		GradientFrom   string `yaml:"gradient_from"`
		GradientTo     string `yaml:"gradient_to"`
	} `yaml:"categories"`
	Projects []struct {
		ID              string   `yaml:"id"`
		Title           string   `yaml:"title"`
		Description     string   `yaml:"description"`
		FullDescription string   `yaml:"full_description"`
		Image           string   `yaml:"image"`
		Tags            []string `yaml:"tags"`
		Badge           *struct {
			Text  string `yaml:"text"`
			Color string `yaml:"color"`
		} `yaml:"badge"`
		Team          []string `yaml:"team"`
		GitHub        string   `yaml:"github"`
		DemoLink      string   `yaml:"demo_link"`
		Completed     bool     `yaml:"completed"`
		FeaturedOrder *int     `yaml:"featured_order"`
	} `yaml:"projects"`
	Testimonials []struct {
		Quote       string `yaml:"quote"`
		Name        string `yaml:"name"`
		Role        string `yaml:"role"`
		AvatarColor string `yaml:"avatar_color"`
	} `yaml:"testimonials"`
	Stats []struct {
		Value string `yaml:"value"`
		Label string `yaml:"label"`
	} `yaml:"stats"`
}

// Parse decodes and validates a content document. Unknown keys, badge
// labels, or colors are rejected.
func Parse(data []byte) (*Store, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidDocument, err)
	}

	s := &Store{
		hero: Hero{
			Title:     doc.Hero.Title,
			Highlight: doc.Hero.Highlight,
			Subtitle:  doc.Hero.Subtitle,
			CTAText:   doc.Hero.CTAText,
			CTALink:   doc.Hero.CTALink,
		},
		event: model.Event{
			Title:       doc.FeaturedEvent.Title,
			Description: doc.FeaturedEvent.Description,
			Badge:       doc.FeaturedEvent.Badge,
			Date:        doc.FeaturedEvent.Date,
			Time:        doc.FeaturedEvent.Time,
			Location:    doc.FeaturedEvent.Location,
			Image:       doc.FeaturedEvent.Image,
			ButtonText:  doc.FeaturedEvent.ButtonText,
			ButtonLink:  doc.FeaturedEvent.ButtonLink,
		},
		values: doc.Values,
		byID:   make(map[string]int, len(doc.Projects)),
	}

	for i, o := range doc.Offerings {
		color, err := model.ParseColor(o.Color)
		if err != nil {
			return nil, fmt.Errorf("%w: offering %d: %v", ErrInvalidDocument, i, err)
		}
		s.offerings = append(s.offerings, model.Offering{
			Title:       o.Title,
			Description: o.Description,
			Items:       o.Items,
			IconPath:    o.IconPath,
			Color:       color,
		})
	}

	for i, c := range doc.Categories {
		if !hexColorPattern.MatchString(c.GradientFrom) || !hexColorPattern.MatchString(c.GradientTo) {
			return nil, fmt.Errorf("%w: category %d: gradient must be #rrggbb", ErrInvalidDocument, i)
		}
		s.categories = append(s.categories, model.Category{
			Title:          c.Title,
			Description:    c.Description,
			Image:          c.Image,
			GradientFrom:   c.GradientFrom,
			GradientTo:     c.GradientTo,
			URL:            c.URL,
			AnimeReference: c.AnimeReference,
		})
	}

	for i, p := range doc.Projects {
		if !projectIDPattern.MatchString(p.ID) {
			return nil, fmt.Errorf("%w: project %d: invalid id %q", ErrInvalidDocument, i, p.ID)
		}
		if _, dup := s.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate project id %q", ErrInvalidDocument, p.ID)
		}
		if strings.TrimSpace(p.Title) == "" {
			return nil, fmt.Errorf("%w: project %q: title is required", ErrInvalidDocument, p.ID)
		}

		project := model.Project{
			ID:              p.ID,
			Title:           p.Title,
			Description:     p.Description,
			FullDescription: p.FullDescription,
			Image:           p.Image,
			Tags:            p.Tags,
			Team:            p.Team,
			GitHub:          p.GitHub,
			DemoLink:        p.DemoLink,
			Completed:       p.Completed,
			FeaturedOrder:   p.FeaturedOrder,
		}
		if p.Badge != nil {
			kind, err := model.ParseBadgeKind(p.Badge.Text)
			if err != nil {
				return nil, fmt.Errorf("%w: project %q: %v", ErrInvalidDocument, p.ID, err)
			}
			color, err := model.ParseColor(p.Badge.Color)
			if err != nil {
				return nil, fmt.Errorf("%w: project %q: %v", ErrInvalidDocument, p.ID, err)
			}
			project.Badge = &model.Badge{Kind: kind, Color: color}
		}

		s.byID[p.ID] = len(s.projects)
		s.projects = append(s.projects, project)
	}

	for i, t := range doc.Testimonials {
		color, err := model.ParseColor(t.AvatarColor)
		if err != nil {
			return nil, fmt.Errorf("%w: testimonial %d: %v", ErrInvalidDocument, i, err)
		}
		s.testimonials = append(s.testimonials, model.Testimonial{
			Quote:       t.Quote,
			Name:        t.Name,
			Role:        t.Role,
			AvatarColor: color,
		})
	}

	for _, st := range doc.Stats {
		s.stats = append(s.stats, model.Stat{Value: st.Value, Label: st.Label})
	}

	return s, nil
}
