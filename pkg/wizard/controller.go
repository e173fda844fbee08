package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-diagnostic/pkg/feedback"
	"github.com/goliatone/go-diagnostic/pkg/model"
	"github.com/goliatone/go-diagnostic/pkg/session"
	"github.com/goliatone/go-diagnostic/pkg/sink"
	"github.com/goliatone/go-diagnostic/pkg/store"
)

// Status is the lifecycle state of a Controller.
type Status string

const (
	StatusActive    Status = "active"
	StatusSubmitted Status = "submitted"
)

// FeedbackGenerator renders the results shown after submission.
type FeedbackGenerator interface {
	Generate(rec session.Record) (*feedback.Document, error)
}

// Option configures a Controller.
type Option func(*Controller)

// WithSink sets where submissions are delivered. Defaults to sink.Nop.
func WithSink(s sink.Sink) Option {
	return func(c *Controller) {
		if s != nil {
			c.sink = s
		}
	}
}

// WithStore sets the fallback store for failed deliveries. Defaults to an
// in-memory store.
func WithStore(s store.Store) Option {
	return func(c *Controller) {
		if s != nil {
			c.store = s
		}
	}
}

// WithFeedback sets the feedback generator.
func WithFeedback(gen FeedbackGenerator) Option {
	return func(c *Controller) {
		if gen != nil {
			c.feedback = gen
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithAsyncDelivery makes Submit hand the payload to the sink on a goroutine
// and return without waiting for the outcome. Use Wait to join it.
func WithAsyncDelivery() Option {
	return func(c *Controller) {
		c.async = true
	}
}

// Controller drives one pass through a wizard definition. It owns the active
// step and the session record. A Controller is not safe for concurrent use;
// only the delivery outcome may be read while an async delivery is running.
type Controller struct {
	form     model.FormModel
	step     int
	record   session.Record
	status   Status
	result   *Result
	sink     sink.Sink
	store    store.Store
	feedback FeedbackGenerator
	logger   *zap.Logger
	async    bool

	wg       sync.WaitGroup
	mu       sync.Mutex
	delivery Delivery
}

// New starts a controller on step 1 of form.
func New(form model.FormModel, options ...Option) (*Controller, error) {
	if form.StepCount() == 0 {
		return nil, errors.New("wizard: form has no steps")
	}
	for _, step := range form.Steps {
		if !session.Section(step.Section).Valid() {
			return nil, fmt.Errorf("wizard: step %d has unknown section %q", step.Number, step.Section)
		}
	}

	c := &Controller{
		form:   form,
		step:   1,
		status: StatusActive,
		sink:   sink.Nop{},
		store:  store.NewMemory(),
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	if c.feedback == nil {
		gen, err := feedback.NewGenerator(feedback.WithLogger(c.logger))
		if err != nil {
			return nil, fmt.Errorf("wizard: feedback: %w", err)
		}
		c.feedback = gen
	}
	return c, nil
}

// Form returns the definition the controller runs.
func (c *Controller) Form() model.FormModel {
	return c.form
}

// Current returns the active step number (1-based).
func (c *Controller) Current() int {
	return c.step
}

// CurrentStep returns the active step definition.
func (c *Controller) CurrentStep() model.Step {
	step, _ := c.form.Step(c.step)
	return step
}

// StepCount reports N.
func (c *Controller) StepCount() int {
	return c.form.StepCount()
}

// IsFinal reports whether the active step is the last one.
func (c *Controller) IsFinal() bool {
	return c.step == c.form.StepCount()
}

// Status reports whether the wizard is still collecting input.
func (c *Controller) Status() Status {
	return c.status
}

// Record returns a copy of the accumulated session record.
func (c *Controller) Record() session.Record {
	return c.record.Clone()
}

// StepValues returns what was committed for step n, for prefilling a
// revisited step.
func (c *Controller) StepValues(n int) session.Values {
	step, ok := c.form.Step(n)
	if !ok {
		return session.Values{}
	}
	return c.record.Values(session.Section(step.Section))
}

// Result returns the submission result, or nil before Submit.
func (c *Controller) Result() *Result {
	return c.result
}

// Advance validates values against the active step and, when they pass,
// commits them to the record and moves to target. Target may be any earlier
// step or the next one. On failure nothing changes.
func (c *Controller) Advance(ctx context.Context, target int, values session.Values) error {
	if c.status == StatusSubmitted {
		return ErrSubmitted
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if target < 1 || target > c.form.StepCount() || target > c.step+1 {
		return fmt.Errorf("%w: %d (active %d of %d)", ErrInvalidStep, target, c.step, c.form.StepCount())
	}

	if err := c.commitActive(values); err != nil {
		return err
	}

	from := c.step
	c.step = target
	c.logger.Debug("wizard advanced",
		zap.String("form", c.form.ID),
		zap.Int("from", from),
		zap.Int("to", target),
	)
	return nil
}

// Next is Advance to the following step.
func (c *Controller) Next(ctx context.Context, values session.Values) error {
	return c.Advance(ctx, c.step+1, values)
}

// Retreat moves back one step without validation. It is a no-op on step 1.
func (c *Controller) Retreat() error {
	if c.status == StatusSubmitted {
		return ErrSubmitted
	}
	if c.step > 1 {
		c.step--
	}
	return nil
}

// Progress is the share of the wizard already completed, in percent.
func (c *Controller) Progress() float64 {
	n := c.form.StepCount()
	if n <= 1 {
		if c.status == StatusSubmitted {
			return 100
		}
		return 0
	}
	return float64(c.step-1) / float64(n-1) * 100
}

// Indicator is the progress marker of one step.
type Indicator struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Active bool   `json:"active"`
}

// Steps returns one indicator per step; a step is active once reached.
func (c *Controller) Steps() []Indicator {
	out := make([]Indicator, 0, c.form.StepCount())
	for _, step := range c.form.Steps {
		out = append(out, Indicator{
			Number: step.Number,
			Title:  step.Title,
			Active: step.Number <= c.step,
		})
	}
	return out
}

func (c *Controller) commitActive(values session.Values) error {
	next, err := c.stage(values)
	if err != nil {
		return err
	}
	c.record = next
	return nil
}

// stage validates values against the active step and returns the record with
// the step committed. The controller's own record is left untouched.
func (c *Controller) stage(values session.Values) (session.Record, error) {
	step := c.CurrentStep()
	if err := ValidateStep(step, values); err != nil {
		c.logger.Info("wizard step rejected",
			zap.String("form", c.form.ID),
			zap.Int("step", step.Number),
			zap.Error(err),
		)
		return session.Record{}, err
	}

	next := c.record.Clone()
	if err := next.Commit(session.Section(step.Section), values); err != nil {
		return session.Record{}, fmt.Errorf("wizard: commit step %d: %w", step.Number, err)
	}
	return next, nil
}

// snapshot serialises the record for the fallback store.
func snapshot(rec session.Record) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("wizard: snapshot: %w", err)
	}
	return data, nil
}
