package session

import (
	"fmt"
	"strings"
)

// Section names the part of the record a wizard step commits into.
type Section string

const (
	SectionProfile    Section = "profile"
	SectionAudit      Section = "audit"
	SectionChallenges Section = "challenges"
	SectionCommitment Section = "commitment"
)

// OtherOption is the context option that reveals the free-text context field.
const OtherOption = "Other"

// OtherTopic is the challenge topic option that reveals the custom topic field.
const OtherTopic = "other"

// Sections lists the known sections in wizard order.
func Sections() []Section {
	return []Section{SectionProfile, SectionAudit, SectionChallenges, SectionCommitment}
}

// Valid reports whether s is a known section.
func (s Section) Valid() bool {
	switch s {
	case SectionProfile, SectionAudit, SectionChallenges, SectionCommitment:
		return true
	default:
		return false
	}
}

// Profile is collected by the first step.
type Profile struct {
	Experience   string   `json:"experience"`
	Context      []string `json:"context"`
	OtherContext string   `json:"otherContext,omitempty"`
	ClassSize    string   `json:"classSize"`
	Levels       []string `json:"levels"`
}

// Audit holds the 1-5 self-assessment ratings as submitted.
type Audit struct {
	Confidence    string `json:"confidence"`
	Application   string `json:"application"`
	Feedback      string `json:"feedback"`
	Traditional   string `json:"traditional"`
	Understanding string `json:"understanding"`
}

// Challenges describes the teacher's hardest grammar topic.
type Challenges struct {
	ChallengeTopic  string `json:"challengeTopic"`
	CustomTopic     string `json:"customTopic,omitempty"`
	ChallengeReason string `json:"challengeReason"`
	CommonError     string `json:"commonError"`
	StudentExample  string `json:"studentExample"`
	Hope            string `json:"hope"`
}

// Topic resolves the selected topic, preferring the custom topic when the
// "other" option was chosen.
func (c Challenges) Topic() string {
	if c.ChallengeTopic == OtherTopic && strings.TrimSpace(c.CustomTopic) != "" {
		return strings.TrimSpace(c.CustomTopic)
	}
	return c.ChallengeTopic
}

// Record accumulates the wizard input across steps. Its JSON form is the
// fallback snapshot written when delivery fails.
type Record struct {
	Profile    Profile    `json:"profile"`
	Audit      Audit      `json:"audit"`
	Challenges Challenges `json:"challenges"`
	Commitment []string   `json:"commitment"`
	Email      string     `json:"email,omitempty"`
}

// Commit replaces the named section with the values submitted for its step.
// Fields that belong to other sections are ignored.
func (r *Record) Commit(section Section, v Values) error {
	if r == nil {
		return fmt.Errorf("session: record is nil")
	}
	switch section {
	case SectionProfile:
		r.Profile = Profile{
			Experience: v.Get("experience"),
			Context:    v.GetAll("context"),
			ClassSize:  v.Get("classSize"),
			Levels:     v.GetAll("levels"),
		}
		if v.Contains("context", OtherOption) {
			r.Profile.OtherContext = strings.TrimSpace(v.Get("otherContext"))
		}
	case SectionAudit:
		r.Audit = Audit{
			Confidence:    v.Get("confidence"),
			Application:   v.Get("application"),
			Feedback:      v.Get("feedback"),
			Traditional:   v.Get("traditional"),
			Understanding: v.Get("understanding"),
		}
	case SectionChallenges:
		r.Challenges = Challenges{
			ChallengeTopic:  v.Get("challengeTopic"),
			ChallengeReason: v.Get("challengeReason"),
			CommonError:     v.Get("commonError"),
			StudentExample:  v.Get("studentExample"),
			Hope:            v.Get("hope"),
		}
		if r.Challenges.ChallengeTopic == OtherTopic {
			r.Challenges.CustomTopic = strings.TrimSpace(v.Get("customTopic"))
		}
	case SectionCommitment:
		r.Commitment = v.GetAll("commitment")
		r.Email = v.Get("email")
	default:
		return fmt.Errorf("session: unknown section %q", section)
	}
	return nil
}

// Values returns the committed section as step values, so a revisited step
// can be prefilled with what was entered before.
func (r Record) Values(section Section) Values {
	out := Values{}
	switch section {
	case SectionProfile:
		setIf(out, "experience", r.Profile.Experience)
		setAll(out, "context", r.Profile.Context)
		setIf(out, "otherContext", r.Profile.OtherContext)
		setIf(out, "classSize", r.Profile.ClassSize)
		setAll(out, "levels", r.Profile.Levels)
	case SectionAudit:
		setIf(out, "confidence", r.Audit.Confidence)
		setIf(out, "application", r.Audit.Application)
		setIf(out, "feedback", r.Audit.Feedback)
		setIf(out, "traditional", r.Audit.Traditional)
		setIf(out, "understanding", r.Audit.Understanding)
	case SectionChallenges:
		setIf(out, "challengeTopic", r.Challenges.ChallengeTopic)
		setIf(out, "customTopic", r.Challenges.CustomTopic)
		setIf(out, "challengeReason", r.Challenges.ChallengeReason)
		setIf(out, "commonError", r.Challenges.CommonError)
		setIf(out, "studentExample", r.Challenges.StudentExample)
		setIf(out, "hope", r.Challenges.Hope)
	case SectionCommitment:
		setAll(out, "commitment", r.Commitment)
		setIf(out, "email", r.Email)
	}
	return out
}

// ContextLabels returns the teaching contexts with the "Other" option replaced
// by the free-text context when one was given.
func (r Record) ContextLabels() []string {
	out := make([]string, 0, len(r.Profile.Context))
	for _, c := range r.Profile.Context {
		if c == OtherOption && r.Profile.OtherContext != "" {
			out = append(out, r.Profile.OtherContext)
			continue
		}
		out = append(out, c)
	}
	return out
}

// Clone deep copies the record.
func (r Record) Clone() Record {
	out := r
	out.Profile.Context = cloneStrings(r.Profile.Context)
	out.Profile.Levels = cloneStrings(r.Profile.Levels)
	out.Commitment = cloneStrings(r.Commitment)
	return out
}

func setIf(v Values, name, value string) {
	if value != "" {
		v.Set(name, value)
	}
}

func setAll(v Values, name string, values []string) {
	if len(values) > 0 {
		v.Set(name, values...)
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
