package wizard

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-diagnostic/pkg/model"
	"github.com/goliatone/go-diagnostic/pkg/session"
)

// Visible reports whether field is shown given the step's current values.
func Visible(field model.Field, values session.Values) bool {
	dep, want, ok := field.VisibleWhen()
	if !ok {
		return true
	}
	return values.Contains(dep, want)
}

// ValidateStep checks values against every visible field of step. It returns
// nil or a *ValidationError listing the failures in field order.
func ValidateStep(step model.Step, values session.Values) error {
	var failures []FieldError
	for _, field := range step.Fields {
		if !Visible(field, values) {
			continue
		}
		if msg := validateField(field, values); msg != "" {
			failures = append(failures, FieldError{
				Field:   field.Name,
				Label:   field.DisplayLabel(),
				Message: msg,
			})
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return &ValidationError{Step: step.Number, Fields: failures}
}

func validateField(field model.Field, values session.Values) string {
	present := values.GetAll(field.Name)
	if len(present) == 0 {
		if field.Required {
			if field.Multiple() {
				return "select at least one option"
			}
			return "this field is required"
		}
		return ""
	}

	if !field.Multiple() {
		present = present[:1]
	}
	for _, value := range present {
		if len(field.Enum) > 0 && !field.HasOption(value) {
			return fmt.Sprintf("%q is not an allowed option", value)
		}
		if field.Type == model.FieldTypeInteger {
			if _, err := strconv.Atoi(strings.TrimSpace(value)); err != nil {
				return "must be a whole number"
			}
		}
		for _, rule := range field.Validations {
			if msg := checkRule(field, rule, value); msg != "" {
				return msg
			}
		}
	}
	return ""
}

func checkRule(field model.Field, rule model.ValidationRule, value string) string {
	switch rule.Kind {
	case model.ValidationRuleMinLength:
		limit, _ := strconv.Atoi(rule.Params["value"])
		if utf8.RuneCountInString(strings.TrimSpace(value)) < limit {
			return fmt.Sprintf("must be at least %d characters", limit)
		}
	case model.ValidationRuleMaxLength:
		limit, _ := strconv.Atoi(rule.Params["value"])
		if utf8.RuneCountInString(value) > limit {
			return fmt.Sprintf("must be at most %d characters", limit)
		}
	case model.ValidationRulePattern:
		re, err := regexp.Compile(rule.Params["pattern"])
		if err != nil || !re.MatchString(strings.TrimSpace(value)) {
			if field.Format == model.FormatEmail {
				return "must be a valid email address"
			}
			return "has an invalid format"
		}
	case model.ValidationRuleMin, model.ValidationRuleMax:
		n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return "must be a number"
		}
		limit, _ := strconv.ParseFloat(rule.Params["value"], 64)
		if rule.Kind == model.ValidationRuleMin && n < limit {
			return fmt.Sprintf("must be at least %s", rule.Params["value"])
		}
		if rule.Kind == model.ValidationRuleMax && n > limit {
			return fmt.Sprintf("must be at most %s", rule.Params["value"])
		}
	}
	return ""
}
