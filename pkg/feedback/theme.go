package feedback

import (
	"fmt"
	"html"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// DefaultThemeName names the built-in feedback theme.
const DefaultThemeName = "masterclass"

// DefaultManifest is the built-in theme. Its tokens become CSS custom
// properties on the feedback container.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"primary":    "#2c3e50",
			"accent":     "#e67e22",
			"surface":    "#ffffff",
			"text":       "#333333",
			"insight-bg": "#f8f9fa",
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"surface":    "#1e272e",
					"text":       "#ecf0f1",
					"insight-bg": "#2d3436",
				},
			},
		},
	}
}

// StaticSelector serves selections from a fixed set of manifests.
type StaticSelector struct {
	manifests map[string]*theme.Manifest
}

var _ theme.ThemeSelector = (*StaticSelector)(nil)

// NewStaticSelector indexes manifests by name.
func NewStaticSelector(manifests ...*theme.Manifest) *StaticSelector {
	s := &StaticSelector{manifests: make(map[string]*theme.Manifest, len(manifests))}
	for _, m := range manifests {
		if m != nil {
			s.manifests[m.Name] = m
		}
	}
	return s
}

// Select returns the named manifest. An empty name selects the default theme.
func (s *StaticSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultThemeName
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("feedback: unknown theme %q", name)
	}
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("feedback: theme %q has no variant %q", name, variant)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// CSSVars merges the selection's base and variant tokens into CSS custom
// properties, keyed "--token".
func CSSVars(selection *theme.Selection) map[string]string {
	out := map[string]string{}
	if selection == nil || selection.Manifest == nil {
		return out
	}
	for key, value := range selection.Manifest.Tokens {
		out["--"+key] = value
	}
	if variant, ok := selection.Manifest.Variants[selection.Variant]; ok {
		for key, value := range variant.Tokens {
			out["--"+key] = value
		}
	}
	return out
}

// styleAttr renders vars as an inline style declaration in key order.
func styleAttr(vars map[string]string) string {
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%s: %s;", key, vars[key])
	}
	return html.EscapeString(b.String())
}
