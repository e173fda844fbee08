package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/goliatone/go-diagnostic/pkg/feedback"
	"github.com/goliatone/go-diagnostic/pkg/session"
	"github.com/goliatone/go-diagnostic/pkg/sink"
	"github.com/goliatone/go-diagnostic/pkg/store"
	"github.com/goliatone/go-diagnostic/pkg/testsupport"
)

func newController(t *testing.T, opts ...Option) *Controller {
	t.Helper()
	c, err := New(testsupport.DefaultForm(t), opts...)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return c
}

// walkToFinal advances through every step but the last with valid values.
func walkToFinal(t *testing.T, c *Controller) {
	t.Helper()
	ctx := testsupport.Context()
	for n := 1; n < c.StepCount(); n++ {
		if err := c.Next(ctx, testsupport.StepValues(n)); err != nil {
			t.Fatalf("advance from step %d: %v", n, err)
		}
	}
}

func TestAdvance_MissingRequiredLeavesStateUnchanged(t *testing.T) {
	c := newController(t)
	values := testsupport.StepValues(1)
	delete(values, "classSize")
	values.Set("experience", "   ")

	err := c.Advance(testsupport.Context(), 2, values)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if verr.Step != 1 || !verr.Has("experience") || !verr.Has("classSize") {
		t.Fatalf("unexpected failures: %+v", verr.Fields)
	}
	if verr.Alert() != AlertMessage {
		t.Fatalf("unexpected alert %q", verr.Alert())
	}
	if c.Current() != 1 {
		t.Fatalf("step changed to %d", c.Current())
	}
	if diff := cmp.Diff(session.Record{}, c.Record()); diff != "" {
		t.Fatalf("record mutated (-want +got):\n%s", diff)
	}
}

func TestAdvance_CommitsExactlyTheActiveStep(t *testing.T) {
	c := newController(t)
	values := testsupport.StepValues(1)
	values.Set("confidence", "5")

	if err := c.Advance(testsupport.Context(), 2, values); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if c.Current() != 2 {
		t.Fatalf("want step 2, got %d", c.Current())
	}

	want := session.Record{Profile: testsupport.SampleRecord().Profile}
	if diff := cmp.Diff(want, c.Record()); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestAdvance_Targets(t *testing.T) {
	ctx := testsupport.Context()
	c := newController(t)

	for _, target := range []int{0, 3, 5} {
		if err := c.Advance(ctx, target, testsupport.StepValues(1)); !errors.Is(err, ErrInvalidStep) {
			t.Fatalf("target %d: want ErrInvalidStep, got %v", target, err)
		}
	}
	if c.Current() != 1 {
		t.Fatalf("invalid targets moved the wizard to %d", c.Current())
	}

	walkToFinal(t, c)
	if err := c.Advance(ctx, 2, testsupport.StepValues(4)); err != nil {
		t.Fatalf("jump back with valid values: %v", err)
	}
	if c.Current() != 2 {
		t.Fatalf("want step 2, got %d", c.Current())
	}
}

func TestAdvance_CancelledContext(t *testing.T) {
	c := newController(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Next(ctx, testsupport.StepValues(1)); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if c.Current() != 1 {
		t.Fatalf("step changed")
	}
}

func TestRetreat(t *testing.T) {
	c := newController(t)
	if err := c.Retreat(); err != nil {
		t.Fatalf("retreat: %v", err)
	}
	if c.Current() != 1 {
		t.Fatalf("retreat from step 1 moved to %d", c.Current())
	}

	_ = c.Next(testsupport.Context(), testsupport.StepValues(1))
	if err := c.Retreat(); err != nil || c.Current() != 1 {
		t.Fatalf("retreat: step=%d err=%v", c.Current(), err)
	}
	if diff := cmp.Diff(testsupport.StepValues(1), c.StepValues(1)); diff != "" {
		t.Fatalf("committed values lost on retreat (-want +got):\n%s", diff)
	}
}

func TestProgressAndIndicators(t *testing.T) {
	c := newController(t)
	if c.Progress() != 0 {
		t.Fatalf("want 0%%, got %v", c.Progress())
	}
	_ = c.Next(testsupport.Context(), testsupport.StepValues(1))

	if got := c.Progress(); got < 33.3 || got > 33.4 {
		t.Fatalf("want ~33.3%%, got %v", got)
	}
	var active []bool
	for _, ind := range c.Steps() {
		active = append(active, ind.Active)
	}
	if diff := cmp.Diff([]bool{true, true, false, false}, active); diff != "" {
		t.Fatalf("indicators mismatch (-want +got):\n%s", diff)
	}

	walkToFinal(t, c)
	if c.Progress() != 100 || !c.IsFinal() {
		t.Fatalf("want 100%% on the final step, got %v", c.Progress())
	}
}

func TestSubmit_RequiresFinalStep(t *testing.T) {
	c := newController(t)
	if _, err := c.Submit(testsupport.Context(), testsupport.StepValues(1)); !errors.Is(err, ErrNotFinalStep) {
		t.Fatalf("want ErrNotFinalStep, got %v", err)
	}
	if c.Status() != StatusActive {
		t.Fatalf("status changed")
	}
}

func TestSubmit_ValidatesFinalStep(t *testing.T) {
	c := newController(t)
	walkToFinal(t, c)

	values := testsupport.StepValues(4)
	values.Set("email", "not-an-email")
	_, err := c.Submit(testsupport.Context(), values)
	var verr *ValidationError
	if !errors.As(err, &verr) || !verr.Has("email") {
		t.Fatalf("want email validation error, got %v", err)
	}
	if c.Status() != StatusActive || c.Record().Email != "" {
		t.Fatalf("failed submit mutated state")
	}
}

func TestSubmit_DeliversAndIsTerminal(t *testing.T) {
	var got session.Entries
	c := newController(t, WithSink(sink.Func(func(_ context.Context, entries session.Entries) error {
		got = entries
		return nil
	})))
	walkToFinal(t, c)

	res, err := c.Submit(testsupport.Context(), testsupport.StepValues(4))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Delivery.State != DeliveryDelivered {
		t.Fatalf("unexpected delivery %+v", res.Delivery)
	}
	if diff := cmp.Diff(testsupport.SampleRecord().Flatten(), got); diff != "" {
		t.Fatalf("delivered entries mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(res.Feedback.Text, "5 years") {
		t.Fatalf("feedback missing experience")
	}

	ctx := testsupport.Context()
	if _, err := c.Submit(ctx, testsupport.StepValues(4)); !errors.Is(err, ErrSubmitted) {
		t.Fatalf("second submit: %v", err)
	}
	if err := c.Retreat(); !errors.Is(err, ErrSubmitted) {
		t.Fatalf("retreat after submit: %v", err)
	}
	if err := c.Advance(ctx, 1, nil); !errors.Is(err, ErrSubmitted) {
		t.Fatalf("advance after submit: %v", err)
	}
	if c.Result() != res {
		t.Fatalf("result not retained")
	}
}

func TestSubmit_DeliveryFailureBacksUpRecord(t *testing.T) {
	backup := store.NewMemory()
	failing := sink.Func(func(context.Context, session.Entries) error {
		return errors.New("network unreachable")
	})
	c := newController(t, WithSink(failing), WithStore(backup))
	walkToFinal(t, c)

	res, err := c.Submit(testsupport.Context(), testsupport.StepValues(4))
	if err != nil {
		t.Fatalf("submit must succeed on delivery failure: %v", err)
	}
	if res.Delivery.State != DeliveryFailed || res.Delivery.Err == nil || res.Delivery.BackupErr != nil {
		t.Fatalf("unexpected delivery %+v", res.Delivery)
	}
	if !strings.Contains(res.Feedback.Text, "Session 4 (The LATAM Nightmare)") {
		t.Fatalf("feedback not produced")
	}

	raw, ok, err := backup.Get(testsupport.Context(), store.BackupKey)
	if err != nil || !ok {
		t.Fatalf("backup missing: ok=%v err=%v", ok, err)
	}
	var saved session.Record
	if err := json.Unmarshal(raw, &saved); err != nil {
		t.Fatalf("decode backup: %v", err)
	}
	if diff := cmp.Diff(testsupport.SampleRecord(), saved); diff != "" {
		t.Fatalf("backup mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmit_AsyncDelivery(t *testing.T) {
	defer goleak.VerifyNone(t)

	release := make(chan struct{})
	backup := store.NewMemory()
	blocking := sink.Func(func(context.Context, session.Entries) error {
		<-release
		return errors.New("timeout")
	})
	c := newController(t, WithSink(blocking), WithStore(backup), WithAsyncDelivery())
	walkToFinal(t, c)

	ctx, cancel := context.WithCancel(context.Background())
	res, err := c.Submit(ctx, testsupport.StepValues(4))
	cancel()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Delivery.State != DeliveryPending || res.Feedback == nil {
		t.Fatalf("submit should return pending delivery with feedback: %+v", res.Delivery)
	}

	close(release)
	final := c.Wait()
	if final.State != DeliveryFailed || final.BackupErr != nil {
		t.Fatalf("unexpected final delivery %+v", final)
	}
	if _, ok, _ := backup.Get(context.Background(), store.BackupKey); !ok {
		t.Fatalf("backup not written after async failure")
	}
}

func TestVisibleWhen(t *testing.T) {
	ctx := testsupport.Context()

	c := newController(t)
	values := testsupport.StepValues(1)
	values.Set("context", "Online", session.OtherOption)
	err := c.Next(ctx, values)
	var verr *ValidationError
	if !errors.As(err, &verr) || !verr.Has("otherContext") || len(verr.Fields) != 1 {
		t.Fatalf("want otherContext required when Other is selected, got %v", err)
	}

	values.Set("otherContext", "Community centre")
	if err := c.Next(ctx, values); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if diff := cmp.Diff([]string{"Online", "Community centre"}, c.Record().ContextLabels()); diff != "" {
		t.Fatalf("context labels mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateStep_Rules(t *testing.T) {
	form := testsupport.DefaultForm(t)
	profile, _ := form.Step(1)
	commitment, _ := form.Step(4)

	cases := []struct {
		name  string
		step  int
		mut   func(session.Values)
		field string
	}{
		{"unknown option", 1, func(v session.Values) { v.Set("levels", "B1", "D9") }, "levels"},
		{"too long", 1, func(v session.Values) { v.Set("experience", strings.Repeat("x", 81)) }, "experience"},
		{"bad email", 4, func(v session.Values) { v.Set("email", "a@b") }, "email"},
		{"no commitment", 4, func(v session.Values) { v.Set("commitment") }, "commitment"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			values := testsupport.StepValues(tc.step)
			tc.mut(values)
			step := profile
			if tc.step == 4 {
				step = commitment
			}
			err := ValidateStep(step, values)
			var verr *ValidationError
			if !errors.As(err, &verr) || !verr.Has(tc.field) {
				t.Fatalf("want failure on %s, got %v", tc.field, err)
			}
		})
	}

	if err := ValidateStep(profile, testsupport.StepValues(1)); err != nil {
		t.Fatalf("sample values should pass: %v", err)
	}
}

func TestSubmit_BackupSurvivesExpiredContext(t *testing.T) {
	backup := store.NewMemory()
	waitForDeadline := sink.Func(func(ctx context.Context, _ session.Entries) error {
		<-ctx.Done()
		return ctx.Err()
	})
	c := newController(t, WithSink(waitForDeadline), WithStore(backup))
	walkToFinal(t, c)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	res, err := c.Submit(ctx, testsupport.StepValues(4))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Delivery.State != DeliveryFailed || !errors.Is(res.Delivery.Err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline delivery failure, got %+v", res.Delivery)
	}
	if res.Delivery.BackupErr != nil {
		t.Fatalf("backup should not share the expired context: %v", res.Delivery.BackupErr)
	}

	raw, ok, err := backup.Get(context.Background(), store.BackupKey)
	if err != nil || !ok {
		t.Fatalf("backup missing: ok=%v err=%v", ok, err)
	}
	var saved session.Record
	if err := json.Unmarshal(raw, &saved); err != nil {
		t.Fatalf("decode backup: %v", err)
	}
	if saved.Email != "teacher@example.com" {
		t.Fatalf("unexpected backup %+v", saved)
	}
}

type failingFeedback struct{}

func (failingFeedback) Generate(session.Record) (*feedback.Document, error) {
	return nil, errors.New("boom")
}

func TestSubmit_FeedbackFailureStillDelivers(t *testing.T) {
	var delivered session.Entries
	c := newController(t,
		WithFeedback(failingFeedback{}),
		WithSink(sink.Func(func(_ context.Context, entries session.Entries) error {
			delivered = entries
			return nil
		})),
	)
	walkToFinal(t, c)

	res, err := c.Submit(testsupport.Context(), testsupport.StepValues(4))
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected feedback error, got %v", err)
	}
	if res == nil || res.Feedback != nil {
		t.Fatalf("expected a result without feedback, got %+v", res)
	}
	if res.Delivery.State != DeliveryDelivered || delivered.Get("email") != "teacher@example.com" {
		t.Fatalf("submission not delivered: %+v", res.Delivery)
	}
	if c.Status() != StatusSubmitted {
		t.Fatalf("status should be submitted, got %s", c.Status())
	}
	if _, err := c.Submit(testsupport.Context(), testsupport.StepValues(4)); !errors.Is(err, ErrSubmitted) {
		t.Fatalf("second submit should be rejected, got %v", err)
	}
}

func TestSubmit_InvalidFinalStepLeavesRecordUntouched(t *testing.T) {
	c := newController(t)
	walkToFinal(t, c)
	before := c.Record()

	values := testsupport.StepValues(4)
	values.Set("email", "a@b")
	if _, err := c.Submit(testsupport.Context(), values); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if diff := cmp.Diff(before, c.Record()); diff != "" {
		t.Fatalf("record changed (-want +got):\n%s", diff)
	}
	if c.Status() != StatusActive {
		t.Fatalf("status changed to %s", c.Status())
	}
}
