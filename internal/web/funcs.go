package web

import (
	"encoding/json"
	"html/template"
	"regexp"
	"strings"
	"time"

	"github.com/infinai/infinai/internal/model"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{3,8}$`)

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"asset":      r.Asset,
		"basePath":   r.BasePath,
		"year":       func() int { return time.Now().Year() },
		"join":       strings.Join,
		"toJSON":     toJSON,
		"gradient":   gradient,
		"badge":      badgeClass,
		"initial":    initial,
		"cycleColor": cycleColor,
	}
}

// toJSON encodes v for a data attribute. Encoding failures yield "{}" so
// the client script falls back to its defaults.
func toJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// gradient builds the explore card overlay. Colors outside hex notation
// are dropped.
func gradient(from, to string) template.CSS {
	if !hexColor.MatchString(from) || !hexColor.MatchString(to) {
		return ""
	}
	return template.CSS("background-image: linear-gradient(to top, " + from + ", " + to + ")")
}

func badgeClass(c model.Color) string {
	if !c.IsValid() {
		return "badge"
	}
	return "badge badge--" + string(c)
}

func initial(name string) string {
	for _, r := range name {
		return strings.ToUpper(string(r))
	}
	return "?"
}

var cycle = [...]model.Color{model.ColorBlue, model.ColorPurple, model.ColorGreen, model.ColorRed}

// cycleColor picks the accent for the i-th item of a strip.
func cycleColor(i int) model.Color {
	return cycle[i%len(cycle)]
}
