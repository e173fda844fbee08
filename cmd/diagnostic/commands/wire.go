package commands

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/goliatone/go-diagnostic/pkg/definition"
	"github.com/goliatone/go-diagnostic/pkg/feedback"
	"github.com/goliatone/go-diagnostic/pkg/model"
	"github.com/goliatone/go-diagnostic/pkg/sink"
	"github.com/goliatone/go-diagnostic/pkg/store"
	"github.com/goliatone/go-diagnostic/pkg/wizard"
)

// components are shared by every controller the process creates.
type components struct {
	form     model.FormModel
	sink     sink.Sink
	store    store.Store
	feedback *feedback.Generator
	closer   io.Closer
}

func (c *components) Close() error {
	if c == nil || c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// newController starts a fresh wizard over the shared components.
func (a *app) newController(c *components) (*wizard.Controller, error) {
	opts := []wizard.Option{
		wizard.WithSink(c.sink),
		wizard.WithStore(c.store),
		wizard.WithFeedback(c.feedback),
		wizard.WithLogger(a.logger.Named("wizard")),
	}
	if a.cfg.Sink.Async {
		opts = append(opts, wizard.WithAsyncDelivery())
	}
	return wizard.New(c.form, opts...)
}

// loadForm reads the configured definition, or the embedded one, and points it
// at the configured form service.
func (a *app) loadForm() (model.FormModel, error) {
	target := model.DecoratorFunc(func(form *model.FormModel) error {
		form.Endpoint = a.cfg.Sink.Endpoint
		form.FormName = a.cfg.Sink.FormName
		return nil
	})
	if a.cfg.Definition == "" {
		return definition.Default(definition.WithDecorators(target))
	}
	dir, name := filepath.Split(a.cfg.Definition)
	if dir == "" {
		dir = "."
	}
	return definition.LoadFile(os.DirFS(dir), name, definition.WithDecorators(target))
}

// wire loads the definition and opens the sink, store and feedback generator.
func (a *app) wire(ctx context.Context) (*components, error) {
	form, err := a.loadForm()
	if err != nil {
		return nil, err
	}

	sinkOpts := []sink.Option{
		sink.WithFormName(form.FormName),
		sink.WithTimeout(a.cfg.SinkTimeout()),
		sink.WithLogger(a.logger.Named("sink")),
	}
	if a.cfg.Sink.Contract {
		contract, err := sink.DefaultContract(ctx)
		if err != nil {
			return nil, err
		}
		sinkOpts = append(sinkOpts, sink.WithContract(contract))
	}
	out, err := sink.NewHTTP(form.Endpoint, sinkOpts...)
	if err != nil {
		return nil, err
	}

	backup, closer, err := store.Open(ctx, a.cfg.Store.DSN)
	if err != nil {
		return nil, err
	}

	gen, err := feedback.NewGenerator(
		feedback.WithTheme(a.cfg.Theme.Name, a.cfg.Theme.Variant),
		feedback.WithSessionOneStart(a.cfg.Feedback.SessionOneStart),
		feedback.WithLogger(a.logger.Named("feedback")),
	)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}

	a.logger.Debug("components wired",
		zap.String("form", form.ID),
		zap.String("endpoint", form.Endpoint),
	)
	return &components{form: form, sink: out, store: backup, feedback: gen, closer: closer}, nil
}
