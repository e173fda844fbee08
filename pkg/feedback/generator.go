package feedback

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/flosch/pongo2/v6"
	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-diagnostic/pkg/render/template"
	"github.com/goliatone/go-diagnostic/pkg/render/template/gotemplate"
	"github.com/goliatone/go-diagnostic/pkg/session"
)

// ArtifactFilename is the name the plain-text feedback is offered under.
const ArtifactFilename = "Grammar-MasterClass-Diagnostic-Feedback.txt"

// DateLayout formats the "Generated on" line.
const DateLayout = "1/2/2006"

const (
	htmlTemplate = "feedback.html"
	textTemplate = "feedback.txt"
)

// Document is the generated feedback: the sanitised HTML view and the
// plain-text artifact.
type Document struct {
	Report   Report `json:"report"`
	HTML     string `json:"html"`
	Text     string `json:"text"`
	Filename string `json:"filename"`
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock overrides the clock used for the "Generated on" date.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithTemplates replaces the built-in templates. The FS must provide
// feedback.html.tpl and feedback.txt.tpl.
func WithTemplates(files fs.FS) Option {
	return func(g *Generator) {
		if files != nil {
			g.templates = files
		}
	}
}

// WithRenderer supplies a preconfigured template renderer.
func WithRenderer(renderer template.TemplateRenderer) Option {
	return func(g *Generator) {
		g.renderer = renderer
	}
}

// WithThemeSelector sets where theme tokens come from.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(g *Generator) {
		if selector != nil {
			g.selector = selector
		}
	}
}

// WithTheme picks the theme and variant used for the HTML view.
func WithTheme(name, variant string) Option {
	return func(g *Generator) {
		g.themeName = strings.TrimSpace(name)
		g.themeVariant = strings.TrimSpace(variant)
	}
}

// WithSessionOneStart fills the "Session 1 starts" line of the artifact.
func WithSessionOneStart(date string) Option {
	return func(g *Generator) {
		g.sessionOneStart = strings.TrimSpace(date)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// Generator renders feedback documents from session records.
type Generator struct {
	renderer        template.TemplateRenderer
	templates       fs.FS
	selector        theme.ThemeSelector
	themeName       string
	themeVariant    string
	sessionOneStart string
	now             func() time.Time
	logger          *zap.Logger
}

// NewGenerator builds a Generator over the built-in templates and theme.
func NewGenerator(options ...Option) (*Generator, error) {
	g := &Generator{
		templates: TemplatesFS(),
		selector:  NewStaticSelector(DefaultManifest()),
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(g)
		}
	}

	if g.renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(g.templates),
			gotemplate.WithTemplateFunc(Filters()),
		)
		if err != nil {
			return nil, fmt.Errorf("feedback: template engine: %w", err)
		}
		g.renderer = engine
	}
	return g, nil
}

// Filters binds the lookup tables to template filters: "rating" and "session".
func Filters() map[string]any {
	return map[string]any{
		"rating":  pongo2.FilterFunction(filterRating),
		"session": pongo2.FilterFunction(filterSession),
	}
}

func filterRating(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(RatingText(in.String())), nil
}

func filterSession(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(RelevantSession(in.String())), nil
}

// Generate renders the feedback for rec.
func (g *Generator) Generate(rec session.Record) (*Document, error) {
	if g == nil || g.renderer == nil {
		return nil, errors.New("feedback: generator is not initialised")
	}

	report := NewReport(rec)
	report.GeneratedOn = g.now().Format(DateLayout)
	report.SessionOneStart = g.sessionOneStart

	view, err := g.renderer.RenderTemplate(htmlTemplate, report)
	if err != nil {
		return nil, fmt.Errorf("feedback: render view: %w", err)
	}
	text, err := g.renderer.RenderTemplate(textTemplate, report)
	if err != nil {
		return nil, fmt.Errorf("feedback: render artifact: %w", err)
	}

	doc := &Document{
		Report:   report,
		HTML:     g.wrap(Sanitize(view)),
		Text:     strings.TrimSpace(text) + "\n",
		Filename: ArtifactFilename,
	}
	g.logger.Debug("feedback generated",
		zap.String("topic", report.Topic),
		zap.String("session", report.Session),
		zap.Int("html_bytes", len(doc.HTML)),
	)
	return doc, nil
}

// wrap puts the sanitised view inside a container carrying the theme's CSS
// variables. Theme lookup failures fall back to an unstyled container.
func (g *Generator) wrap(view string) string {
	selection, err := g.selector.Select(g.themeName, g.themeVariant)
	if err != nil {
		g.logger.Warn("feedback theme unavailable", zap.Error(err))
		selection = nil
	}
	vars := CSSVars(selection)
	if len(vars) == 0 {
		return `<div class="diagnostic-feedback">` + view + `</div>`
	}
	return `<div class="diagnostic-feedback" style="` + styleAttr(vars) + `">` + view + `</div>`
}
