package diagnostic

import (
	"io/fs"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-diagnostic/pkg/definition"
	"github.com/goliatone/go-diagnostic/pkg/feedback"
	"github.com/goliatone/go-diagnostic/pkg/model"
	"github.com/goliatone/go-diagnostic/pkg/session"
	"github.com/goliatone/go-diagnostic/pkg/web"
	"github.com/goliatone/go-diagnostic/pkg/wizard"
)

// Controller aliases wizard.Controller for callers that only import the
// top-level module.
type Controller = wizard.Controller

// Result is what a submitted wizard produces.
type Result = wizard.Result

// Record is the answers collected across every step.
type Record = session.Record

// Values are the raw answers for one step.
type Values = session.Values

// FeedbackDocument is the rendered feedback.
type FeedbackDocument = feedback.Document

// NewWizard starts the embedded Session 0 diagnostic. Options configure the
// sink, fallback store and feedback exactly as with wizard.New.
func NewWizard(options ...wizard.Option) (*Controller, error) {
	form, err := definition.Default()
	if err != nil {
		return nil, err
	}
	return wizard.New(form, options...)
}

// LoadDefinition parses a wizard definition file from fsys.
func LoadDefinition(fsys fs.FS, path string, options ...definition.Option) (model.FormModel, error) {
	return definition.LoadFile(fsys, path, options...)
}

// GenerateFeedback renders feedback for rec outside a wizard run, for example
// to regenerate it from a stored backup.
func GenerateFeedback(rec Record, options ...feedback.Option) (*FeedbackDocument, error) {
	gen, err := feedback.NewGenerator(options...)
	if err != nil {
		return nil, err
	}
	return gen.Generate(rec)
}

// WithThemeSelector passes a go-theme selector through to the feedback
// generator so callers can supply their own manifests.
func WithThemeSelector(selector theme.ThemeSelector) feedback.Option {
	return feedback.WithThemeSelector(selector)
}

// EmbeddedTemplates exposes the built-in feedback templates so callers can
// reuse or extend them without importing the feedback package directly.
func EmbeddedTemplates() fs.FS {
	return feedback.TemplatesFS()
}

// WebAssetsFS exposes the stylesheet and script the web front end serves
// under /static/.
//
// Typical mount:
//
//	mux.Handle("/static/",
//	  http.StripPrefix("/static/",
//	    http.FileServerFS(diagnostic.WebAssetsFS()),
//	  ),
//	)
func WebAssetsFS() fs.FS {
	return web.StaticFS()
}
