package wizard

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-diagnostic/pkg/feedback"
	"github.com/goliatone/go-diagnostic/pkg/session"
	"github.com/goliatone/go-diagnostic/pkg/store"
)

// DeliveryState is the outcome of handing a submission to the sink.
type DeliveryState string

const (
	DeliveryPending   DeliveryState = "pending"
	DeliveryDelivered DeliveryState = "delivered"
	DeliveryFailed    DeliveryState = "failed"
)

// BackupTimeout bounds the fallback write after a failed delivery. It runs
// detached from the Submit context.
const BackupTimeout = 5 * time.Second

// Delivery describes what happened to the submission. When delivery failed
// the record snapshot was written to the fallback store under BackupKey,
// unless BackupErr says otherwise.
type Delivery struct {
	State     DeliveryState `json:"state"`
	Err       error         `json:"-"`
	BackupKey string        `json:"backupKey,omitempty"`
	BackupErr error         `json:"-"`
}

// Result is what Submit produces regardless of the delivery outcome. Its
// Delivery is the outcome known when Submit returned.
type Result struct {
	Record   session.Record     `json:"record"`
	Entries  session.Entries    `json:"entries"`
	Feedback *feedback.Document `json:"feedback"`
	Delivery Delivery           `json:"delivery"`
}

// Submit validates and commits the final step, renders the feedback and
// delivers the flattened record. Delivery failures never fail Submit: they are
// logged, the record is backed up and the outcome is reported in
// Result.Delivery. With async delivery the returned result reports
// DeliveryPending; Delivery and Wait expose the final outcome.
//
// Once the final step validates the submission is terminal and is delivered
// even when the feedback cannot be rendered; in that case Submit returns the
// result (without Feedback) together with the rendering error.
func (c *Controller) Submit(ctx context.Context, values session.Values) (*Result, error) {
	if c.status == StatusSubmitted {
		return nil, ErrSubmitted
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !c.IsFinal() {
		return nil, fmt.Errorf("%w: active step %d of %d", ErrNotFinalStep, c.step, c.form.StepCount())
	}
	next, err := c.stage(values)
	if err != nil {
		return nil, err
	}
	c.record = next
	c.status = StatusSubmitted

	rec := next.Clone()
	entries := rec.Flatten()

	// Feedback is rendered before delivery settles so it never waits on it.
	doc, ferr := c.feedback.Generate(rec)
	if ferr != nil {
		c.logger.Error("feedback rendering failed",
			zap.String("form", c.form.ID),
			zap.Error(ferr),
		)
	}
	result := &Result{Record: rec, Entries: entries, Feedback: doc}

	if c.async {
		c.setDelivery(Delivery{State: DeliveryPending})
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.setDelivery(c.deliver(context.WithoutCancel(ctx), rec, entries))
		}()
	} else {
		c.setDelivery(c.deliver(ctx, rec, entries))
	}
	result.Delivery = c.Delivery()
	c.result = result

	c.logger.Info("wizard submitted",
		zap.String("form", c.form.ID),
		zap.String("delivery", string(result.Delivery.State)),
	)
	if ferr != nil {
		return result, fmt.Errorf("wizard: feedback: %w", ferr)
	}
	return result, nil
}

// Delivery reports the latest delivery outcome.
func (c *Controller) Delivery() Delivery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.delivery
}

// Wait blocks until pending async deliveries finish and returns the outcome.
func (c *Controller) Wait() Delivery {
	c.wg.Wait()
	return c.Delivery()
}

func (c *Controller) setDelivery(d Delivery) {
	c.mu.Lock()
	c.delivery = d
	c.mu.Unlock()
}

func (c *Controller) deliver(ctx context.Context, rec session.Record, entries session.Entries) Delivery {
	err := c.sink.Deliver(ctx, entries)
	if err == nil {
		return Delivery{State: DeliveryDelivered}
	}

	c.logger.Error("submission delivery failed",
		zap.String("form", c.form.ID),
		zap.Error(err),
	)
	d := Delivery{State: DeliveryFailed, Err: err, BackupKey: store.BackupKey}
	data, serr := snapshot(rec)
	if serr == nil {
		// The caller's context may be what failed the delivery.
		bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), BackupTimeout)
		serr = c.store.Put(bctx, store.BackupKey, data)
		cancel()
	}
	if serr != nil {
		d.BackupErr = serr
		c.logger.Error("fallback backup failed", zap.String("key", store.BackupKey), zap.Error(serr))
	}
	return d
}
