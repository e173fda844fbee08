package model

import (
	"fmt"
	"strings"
)

// FieldType is the simplified enum for wizard field kinds.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeInteger FieldType = "integer"
	FieldTypeArray   FieldType = "array"
)

const (
	ValidationRuleMin       = "min"
	ValidationRuleMax       = "max"
	ValidationRuleMinLength = "minLength"
	ValidationRuleMaxLength = "maxLength"
	ValidationRulePattern   = "pattern"
)

// Formats recognised by the front ends.
const (
	FormatTextArea = "textarea"
	FormatEmail    = "email"
)

// MetadataVisibleWhen holds a "field=value" condition. Fields carrying it are
// only shown, validated and committed when the named field holds the value.
const MetadataVisibleWhen = "visibleWhen"

// ValidationRule represents a single validation constraint applied to a field.
// Numeric bounds and length limits encode their threshold in Params["value"]
// while pattern rules keep the expression in Params["pattern"].
type ValidationRule struct {
	Kind   string            `json:"kind" yaml:"kind"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

// Field models an individual input inside a wizard step.
type Field struct {
	Name        string            `json:"name" yaml:"name"`
	Type        FieldType         `json:"type" yaml:"type"`
	Format      string            `json:"format,omitempty" yaml:"format,omitempty"`
	Required    bool              `json:"required" yaml:"required"`
	Label       string            `json:"label,omitempty" yaml:"label,omitempty"`
	Placeholder string            `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Enum        []any             `json:"enum,omitempty" yaml:"enum,omitempty"`
	Validations []ValidationRule  `json:"validations,omitempty" yaml:"validations,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// DisplayLabel returns the label, falling back to the field name.
func (f Field) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// Options stringifies the enum values in declaration order.
func (f Field) Options() []string {
	out := make([]string, 0, len(f.Enum))
	for _, v := range f.Enum {
		out = append(out, fmt.Sprint(v))
	}
	return out
}

// HasOption reports whether value is one of the enum options.
func (f Field) HasOption(value string) bool {
	for _, option := range f.Options() {
		if option == value {
			return true
		}
	}
	return false
}

// Multiple reports whether the field collects more than one value.
func (f Field) Multiple() bool {
	return f.Type == FieldTypeArray
}

// VisibleWhen splits the visibility condition into field and value. ok is
// false when the field is always visible.
func (f Field) VisibleWhen() (field, value string, ok bool) {
	raw := strings.TrimSpace(f.Metadata[MetadataVisibleWhen])
	if raw == "" {
		return "", "", false
	}
	field, value, found := strings.Cut(raw, "=")
	if !found {
		return "", "", false
	}
	return strings.TrimSpace(field), strings.TrimSpace(value), true
}

// Step is one screen of the wizard. Number is 1-based and assigned by the
// definition loader in document order.
type Step struct {
	Number      int     `json:"number" yaml:"number"`
	ID          string  `json:"id" yaml:"id"`
	Title       string  `json:"title,omitempty" yaml:"title,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Section     string  `json:"section" yaml:"section"`
	Fields      []Field `json:"fields" yaml:"fields"`
}

// Field looks up a field of the step by name.
func (s Step) Field(name string) (Field, bool) {
	for _, field := range s.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// FormModel is the top-level wizard definition.
type FormModel struct {
	ID          string            `json:"id" yaml:"id"`
	FormName    string            `json:"formName" yaml:"formName"`
	Endpoint    string            `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Method      string            `json:"method,omitempty" yaml:"method,omitempty"`
	Title       string            `json:"title,omitempty" yaml:"title,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Steps       []Step            `json:"steps" yaml:"steps"`
	Metadata    map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// StepCount reports the number of steps.
func (f FormModel) StepCount() int {
	return len(f.Steps)
}

// Step returns the 1-based step n.
func (f FormModel) Step(n int) (Step, bool) {
	if n < 1 || n > len(f.Steps) {
		return Step{}, false
	}
	return f.Steps[n-1], true
}
