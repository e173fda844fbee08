package session

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRecord_CommitProfile(t *testing.T) {
	var rec Record
	err := rec.Commit(SectionProfile, Values{
		"experience":   {"5 years"},
		"context":      {"University", "Other"},
		"otherContext": {" Community centre "},
		"classSize":    {"6-15 students"},
		"levels":       {"B1", "B2"},
		"confidence":   {"4"},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	want := Profile{
		Experience:   "5 years",
		Context:      []string{"University", "Other"},
		OtherContext: "Community centre",
		ClassSize:    "6-15 students",
		Levels:       []string{"B1", "B2"},
	}
	if diff := cmp.Diff(want, rec.Profile); diff != "" {
		t.Fatalf("profile mismatch (-want +got):\n%s", diff)
	}
	if rec.Audit.Confidence != "" {
		t.Fatalf("commit leaked a field from another section: %+v", rec.Audit)
	}
}

func TestRecord_CommitReplacesSection(t *testing.T) {
	var rec Record
	_ = rec.Commit(SectionCommitment, Values{"commitment": {"a", "b"}, "email": {"x@example.com"}})
	_ = rec.Commit(SectionCommitment, Values{"commitment": {"c"}, "email": {"y@example.com"}})

	if diff := cmp.Diff([]string{"c"}, rec.Commitment); diff != "" {
		t.Fatalf("commitment mismatch (-want +got):\n%s", diff)
	}
	if rec.Email != "y@example.com" {
		t.Fatalf("email not replaced: %q", rec.Email)
	}
}

func TestRecord_CommitUnknownSection(t *testing.T) {
	var rec Record
	if err := rec.Commit(Section("bogus"), Values{}); err == nil {
		t.Fatalf("expected error for unknown section")
	}
}

func TestRecord_CommitSkipsBlankLeadingValues(t *testing.T) {
	var rec Record
	err := rec.Commit(SectionAudit, Values{
		"confidence":  {" ", "2"},
		"application": {"", "3"},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if rec.Audit.Confidence != "2" || rec.Audit.Application != "3" {
		t.Fatalf("blank leading values committed: %+v", rec.Audit)
	}
	if got := (Values{"x": {"  "}}).Get("x"); got != "" {
		t.Fatalf("Get on blank values = %q", got)
	}
}

func TestRecord_CustomTopic(t *testing.T) {
	var rec Record
	_ = rec.Commit(SectionChallenges, Values{
		"challengeTopic": {"other"},
		"customTopic":    {"Phrasal verbs"},
	})
	if got := rec.Challenges.Topic(); got != "Phrasal verbs" {
		t.Fatalf("topic: want custom topic, got %q", got)
	}

	_ = rec.Commit(SectionChallenges, Values{
		"challengeTopic": {"Articles"},
		"customTopic":    {"ignored"},
	})
	if rec.Challenges.CustomTopic != "" || rec.Challenges.Topic() != "Articles" {
		t.Fatalf("custom topic should only apply to the other option: %+v", rec.Challenges)
	}
}

func TestRecord_FlattenJoinsLists(t *testing.T) {
	rec := Record{
		Profile: Profile{
			Experience:   "5 years",
			Context:      []string{"University", "Other"},
			OtherContext: "Community centre",
			Levels:       []string{"A2", "B1"},
		},
		Commitment: []string{"Attend all live sessions", "Complete the pre-session tasks"},
		Email:      "teacher@example.com",
	}

	entries := rec.Flatten()
	if len(entries) != 16 {
		t.Fatalf("expected 16 entries, got %d", len(entries))
	}
	checks := map[string]string{
		"experience": "5 years",
		"context":    "University, Community centre",
		"levels":     "A2, B1",
		"commitment": "Attend all live sessions, Complete the pre-session tasks",
		"email":      "teacher@example.com",
		"classSize":  "",
		"hope":       "",
	}
	for name, want := range checks {
		if got := entries.Get(name); got != want {
			t.Errorf("%s: want %q, got %q", name, want, got)
		}
	}
	if entries.Names()[0] != "experience" || entries.Names()[15] != "email" {
		t.Fatalf("unexpected entry order: %v", entries.Names())
	}
}

func TestRecord_SnapshotShape(t *testing.T) {
	rec := Record{
		Profile:    Profile{Experience: "5 years", Context: []string{"Online"}, Levels: []string{"C1"}},
		Audit:      Audit{Confidence: "2"},
		Challenges: Challenges{ChallengeTopic: "Articles"},
		Commitment: []string{"Attend all live sessions"},
		Email:      "t@example.com",
	}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"profile", "audit", "challenges", "commitment", "email"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("snapshot missing %q: %s", key, data)
		}
	}
	profile := decoded["profile"].(map[string]any)
	if _, ok := profile["otherContext"]; ok {
		t.Errorf("empty otherContext should be omitted: %s", data)
	}
}

func TestRecord_ValuesRoundTrip(t *testing.T) {
	in := Values{
		"challengeTopic":  {"other"},
		"customTopic":     {"Reported speech"},
		"challengeReason": {"Backshift"},
		"commonError":     {"He said me"},
		"hope":            {"Clarity"},
	}
	var rec Record
	if err := rec.Commit(SectionChallenges, in); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if diff := cmp.Diff(in, rec.Values(SectionChallenges)); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestRecord_CloneIsDeep(t *testing.T) {
	rec := Record{Profile: Profile{Levels: []string{"A1"}}, Commitment: []string{"x"}}
	clone := rec.Clone()
	clone.Profile.Levels[0] = "C2"
	clone.Commitment[0] = "y"
	if rec.Profile.Levels[0] != "A1" || rec.Commitment[0] != "x" {
		t.Fatalf("clone shares slices with the original")
	}
}

func TestValues_FromURLValues(t *testing.T) {
	form := url.Values{"levels": {"A1", " ", "B2"}}
	v := FromURLValues(form)
	form["levels"][0] = "changed"

	if diff := cmp.Diff([]string{"A1", "B2"}, v.GetAll("levels")); diff != "" {
		t.Fatalf("GetAll mismatch (-want +got):\n%s", diff)
	}
	if !v.Has("levels") || v.Has("missing") {
		t.Fatalf("Has reported wrong presence")
	}
}
