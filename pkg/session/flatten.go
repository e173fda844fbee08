package session

import "strings"

// ListSeparator joins multi-valued fields in the flattened payload.
const ListSeparator = ", "

// Entry is one name/value pair of the flattened submission.
type Entry struct {
	Name  string
	Value string
}

// Entries is the flattened submission in a fixed field order.
type Entries []Entry

// Flatten serialises the record into the flat key/value shape the form sink
// expects: one entry per field, multi-valued fields joined with ", " and
// missing values sent as "".
func (r Record) Flatten() Entries {
	return Entries{
		{Name: "experience", Value: r.Profile.Experience},
		{Name: "context", Value: strings.Join(r.ContextLabels(), ListSeparator)},
		{Name: "classSize", Value: r.Profile.ClassSize},
		{Name: "levels", Value: strings.Join(r.Profile.Levels, ListSeparator)},
		{Name: "confidence", Value: r.Audit.Confidence},
		{Name: "application", Value: r.Audit.Application},
		{Name: "feedback", Value: r.Audit.Feedback},
		{Name: "traditional", Value: r.Audit.Traditional},
		{Name: "understanding", Value: r.Audit.Understanding},
		{Name: "challengeTopic", Value: r.Challenges.Topic()},
		{Name: "challengeReason", Value: r.Challenges.ChallengeReason},
		{Name: "commonError", Value: r.Challenges.CommonError},
		{Name: "studentExample", Value: r.Challenges.StudentExample},
		{Name: "hope", Value: r.Challenges.Hope},
		{Name: "commitment", Value: strings.Join(r.Commitment, ListSeparator)},
		{Name: "email", Value: r.Email},
	}
}

// Get returns the value for name, or "".
func (e Entries) Get(name string) string {
	for _, entry := range e {
		if entry.Name == name {
			return entry.Value
		}
	}
	return ""
}

// Map returns the entries keyed by name.
func (e Entries) Map() map[string]any {
	out := make(map[string]any, len(e))
	for _, entry := range e {
		out[entry.Name] = entry.Value
	}
	return out
}

// Names lists the entry names in order.
func (e Entries) Names() []string {
	out := make([]string, len(e))
	for i, entry := range e {
		out[i] = entry.Name
	}
	return out
}
