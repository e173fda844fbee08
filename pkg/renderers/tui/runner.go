package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-diagnostic/pkg/model"
	"github.com/goliatone/go-diagnostic/pkg/session"
	"github.com/goliatone/go-diagnostic/pkg/wizard"
)

// Navigation choices offered after each step.
const (
	ActionNext   = "Next"
	ActionBack   = "Back"
	ActionSubmit = "Submit"
)

// Runner walks a wizard controller through terminal prompts.
type Runner struct {
	driver       PromptDriver
	out          io.Writer
	artifactPath string
	theme        Theme
	logger       *zap.Logger
}

// New constructs a runner. Without WithPromptDriver it prompts on the process
// terminal through survey.
func New(options ...Option) (*Runner, error) {
	r := &Runner{
		out:    os.Stdout,
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(r.out)
	}
	return r, nil
}

// Run prompts every step until the controller is submitted and returns the
// submission result. A validation failure shows the alert and re-prompts the
// step with the answers already given.
func (r *Runner) Run(ctx context.Context, c *wizard.Controller) (*wizard.Result, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if c == nil {
		return nil, ErrNoController
	}

	var draft session.Values
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		step := c.CurrentStep()
		if err := r.info(ctx, stepHeader(c, step)); err != nil {
			return nil, err
		}

		prefill := draft
		if prefill == nil {
			prefill = c.StepValues(step.Number)
		}
		values, err := r.promptStep(ctx, step, prefill)
		if err != nil {
			return nil, err
		}

		action, err := r.chooseAction(ctx, c)
		if err != nil {
			return nil, err
		}

		switch action {
		case ActionBack:
			draft = nil
			if err := c.Retreat(); err != nil {
				return nil, err
			}
		case ActionNext:
			err := c.Next(ctx, values)
			if draft, err = r.handleStepError(ctx, values, err); err != nil {
				return nil, err
			}
		case ActionSubmit:
			res, err := c.Submit(ctx, values)
			if draft, err = r.handleStepError(ctx, values, err); err != nil {
				return nil, err
			}
			if res != nil {
				return res, r.finish(ctx, res)
			}
		}
	}
}

// handleStepError returns the draft to re-prompt with when err is a
// validation failure, and passes any other error through.
func (r *Runner) handleStepError(ctx context.Context, values session.Values, err error) (session.Values, error) {
	if err == nil {
		return nil, nil
	}
	var verr *wizard.ValidationError
	if !errors.As(err, &verr) {
		return nil, err
	}
	lines := []string{r.theme.ErrorPrefix + verr.Alert()}
	for _, f := range verr.Fields {
		lines = append(lines, fmt.Sprintf("  - %s: %s", f.Label, f.Message))
	}
	if err := r.driver.Info(ctx, strings.Join(lines, "\n")); err != nil {
		return nil, err
	}
	return values, nil
}

func (r *Runner) chooseAction(ctx context.Context, c *wizard.Controller) (string, error) {
	actions := []string{ActionNext}
	if c.IsFinal() {
		actions = []string{ActionSubmit}
	}
	if c.Current() > 1 {
		actions = append(actions, ActionBack)
	}
	if len(actions) == 1 {
		return actions[0], nil
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      "Continue",
		Options:      actions,
		DefaultIndex: 0,
	})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(actions) {
		return actions[0], nil
	}
	return actions[idx], nil
}

func (r *Runner) finish(ctx context.Context, res *wizard.Result) error {
	if res.Feedback != nil {
		if err := r.info(ctx, res.Feedback.Text); err != nil {
			return err
		}
	}
	if res.Delivery.State == wizard.DeliveryFailed {
		r.logger.Warn("submission kept locally", zap.String("key", res.Delivery.BackupKey))
	}
	if r.artifactPath == "" || res.Feedback == nil {
		return nil
	}
	if err := os.WriteFile(r.artifactPath, []byte(res.Feedback.Text), 0o644); err != nil {
		return fmt.Errorf("tui: write feedback: %w", err)
	}
	return r.info(ctx, "Feedback saved to "+r.artifactPath)
}

// promptStep asks for every field that is visible given the answers collected
// so far in the step.
func (r *Runner) promptStep(ctx context.Context, step model.Step, prefill session.Values) (session.Values, error) {
	values := session.Values{}
	for _, field := range step.Fields {
		if !wizard.Visible(field, values) {
			continue
		}
		answers, err := r.promptField(ctx, field, prefill)
		if err != nil {
			return nil, err
		}
		values.Set(field.Name, answers...)
	}
	return values, nil
}

func (r *Runner) promptField(ctx context.Context, field model.Field, prefill session.Values) ([]string, error) {
	label := displayLabel(field)
	options := field.Options()

	switch {
	case len(options) > 0 && field.Multiple():
		indices, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  label,
			Options:  options,
			Defaults: indicesOf(options, prefill.GetAll(field.Name)),
			Help:     field.Description,
		})
		if err != nil {
			return nil, err
		}
		return defaultsFromIndices(options, indices), nil

	case len(options) > 0:
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      options,
			DefaultIndex: indexOf(options, prefill.Get(field.Name)),
			Help:         field.Description,
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(options) {
			return nil, nil
		}
		return []string{options[idx]}, nil

	case field.Format == model.FormatTextArea:
		text, err := r.driver.TextArea(ctx, TextAreaConfig{
			Message: label,
			Default: prefill.Get(field.Name),
			Help:    field.Description,
		})
		if err != nil {
			return nil, err
		}
		return []string{strings.TrimSpace(text)}, nil

	default:
		text, err := r.driver.Input(ctx, InputConfig{
			Message:     label,
			Default:     prefill.Get(field.Name),
			Help:        field.Description,
			Placeholder: field.Placeholder,
		})
		if err != nil {
			return nil, err
		}
		return []string{strings.TrimSpace(text)}, nil
	}
}

func (r *Runner) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func stepHeader(c *wizard.Controller, step model.Step) string {
	header := fmt.Sprintf("Step %d of %d (%.0f%%)", step.Number, c.StepCount(), c.Progress())
	if step.Title != "" {
		header += ": " + step.Title
	}
	return header
}

func displayLabel(field model.Field) string {
	label := field.DisplayLabel()
	if field.Required {
		return label + " *"
	}
	return label
}
