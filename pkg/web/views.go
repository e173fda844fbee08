package web

import (
	"fmt"

	"github.com/goliatone/go-diagnostic/pkg/model"
	"github.com/goliatone/go-diagnostic/pkg/session"
	"github.com/goliatone/go-diagnostic/pkg/wizard"
)

type optionView struct {
	Value   string `json:"value"`
	Checked bool   `json:"checked"`
}

type fieldView struct {
	Name        string       `json:"name"`
	Label       string       `json:"label"`
	Description string       `json:"description,omitempty"`
	Placeholder string       `json:"placeholder,omitempty"`
	Kind        string       `json:"kind"`
	Required    bool         `json:"required"`
	Options     []optionView `json:"options,omitempty"`
	Value       string       `json:"value,omitempty"`
	Error       string       `json:"error,omitempty"`
	VisibleWhen string       `json:"visibleWhen,omitempty"`
	Hidden      bool         `json:"hidden"`
}

type stepView struct {
	FormTitle       string             `json:"formTitle"`
	FormDescription string             `json:"formDescription,omitempty"`
	Number          int                `json:"number"`
	Count           int                `json:"count"`
	StepTitle       string             `json:"stepTitle"`
	StepDescription string             `json:"stepDescription,omitempty"`
	Progress        string             `json:"progress"`
	Indicators      []wizard.Indicator `json:"indicators"`
	Fields          []fieldView        `json:"fields"`
	Alert           string             `json:"alert,omitempty"`
	CanBack         bool               `json:"canBack"`
	IsFinal         bool               `json:"isFinal"`
}

type feedbackView struct {
	Feedback string `json:"feedback"`
	Filename string `json:"filename"`
}

// newStepView builds the page for the active step, prefilled with values.
// verr, when set, marks the failing fields.
func newStepView(c *wizard.Controller, values session.Values, verr *wizard.ValidationError) stepView {
	form := c.Form()
	step := c.CurrentStep()

	errs := map[string]string{}
	view := stepView{
		FormTitle:       form.Title,
		FormDescription: form.Description,
		Number:          step.Number,
		Count:           c.StepCount(),
		StepTitle:       step.Title,
		StepDescription: step.Description,
		Progress:        fmt.Sprintf("%.0f", c.Progress()),
		Indicators:      c.Steps(),
		CanBack:         c.Current() > 1,
		IsFinal:         c.IsFinal(),
	}
	if verr != nil {
		view.Alert = verr.Alert()
		for _, f := range verr.Fields {
			errs[f.Field] = f.Message
		}
	}
	for _, field := range step.Fields {
		view.Fields = append(view.Fields, newFieldView(field, values, errs[field.Name]))
	}
	return view
}

func newFieldView(field model.Field, values session.Values, errMsg string) fieldView {
	fv := fieldView{
		Name:        field.Name,
		Label:       field.DisplayLabel(),
		Description: field.Description,
		Placeholder: field.Placeholder,
		Required:    field.Required,
		Value:       values.Get(field.Name),
		Error:       errMsg,
		Hidden:      !wizard.Visible(field, values),
	}
	if dep, want, ok := field.VisibleWhen(); ok {
		fv.VisibleWhen = dep + "=" + want
	}

	options := field.Options()
	switch {
	case len(options) > 0 && field.Multiple():
		fv.Kind = "checkbox"
	case len(options) > 0:
		fv.Kind = "select"
	case field.Format == model.FormatTextArea:
		fv.Kind = "textarea"
	case field.Format == model.FormatEmail:
		fv.Kind = "email"
	default:
		fv.Kind = "text"
	}
	for _, option := range options {
		fv.Options = append(fv.Options, optionView{
			Value:   option,
			Checked: values.Contains(field.Name, option),
		})
	}
	return fv
}
