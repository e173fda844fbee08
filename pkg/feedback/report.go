package feedback

import (
	"github.com/goliatone/go-diagnostic/pkg/session"
)

// Report is the view model both feedback templates render. JSON names are the
// template variable names.
type Report struct {
	Experience      string             `json:"experience"`
	Contexts        []string           `json:"contexts"`
	ClassSize       string             `json:"classSize"`
	Levels          []string           `json:"levels"`
	FirstLevel      string             `json:"firstLevel"`
	Audit           session.Audit      `json:"audit"`
	Challenges      session.Challenges `json:"challenges"`
	Topic           string             `json:"topic"`
	Session         string             `json:"session"`
	FocusLabel      string             `json:"focusLabel"`
	FocusArea       string             `json:"focusArea"`
	Commitment      []string           `json:"commitment"`
	Email           string             `json:"email"`
	GeneratedOn     string             `json:"generatedOn"`
	SessionOneStart string             `json:"sessionOneStart,omitempty"`
}

// NewReport derives the view model from a record. Lists are never nil so the
// templates can join them unconditionally.
func NewReport(rec session.Record) Report {
	report := Report{
		Experience: rec.Profile.Experience,
		Contexts:   nonNil(rec.ContextLabels()),
		ClassSize:  rec.Profile.ClassSize,
		Levels:     nonNil(rec.Profile.Levels),
		Audit:      rec.Audit,
		Challenges: rec.Challenges,
		Topic:      rec.Challenges.Topic(),
		FocusLabel: FocusLabel(rec.Audit),
		FocusArea:  FocusArea(rec.Audit),
		Commitment: nonNil(rec.Commitment),
		Email:      rec.Email,
	}
	report.Session = RelevantSession(report.Topic)
	if len(report.Levels) > 0 {
		report.FirstLevel = report.Levels[0]
	}
	return report
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append([]string(nil), in...)
}
