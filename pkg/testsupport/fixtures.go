package testsupport

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/goliatone/go-diagnostic/pkg/definition"
	"github.com/goliatone/go-diagnostic/pkg/model"
	"github.com/goliatone/go-diagnostic/pkg/session"
)

// SampleRecord returns a fully populated record for the embedded Session 0
// definition: five years of experience, confidence "2", Articles as the topic.
func SampleRecord() session.Record {
	return session.Record{
		Profile: session.Profile{
			Experience: "5 years",
			Context:    []string{"Language institute", "Online"},
			ClassSize:  "6-15 students",
			Levels:     []string{"B1", "B2"},
		},
		Audit: session.Audit{
			Confidence:    "2",
			Application:   "4",
			Feedback:      "2",
			Traditional:   "3",
			Understanding: "3",
		},
		Challenges: session.Challenges{
			ChallengeTopic:  "Articles",
			ChallengeReason: "Spanish uses articles differently",
			CommonError:     "I like the music",
			StudentExample:  "The life is beautiful",
			Hope:            "Explain articles with confidence",
		},
		Commitment: []string{"Attend all live sessions", "Apply one new technique each week"},
		Email:      "teacher@example.com",
	}
}

// StepValues returns complete, valid values for step n of the embedded
// definition, taken from SampleRecord.
func StepValues(n int) session.Values {
	sections := session.Sections()
	if n < 1 || n > len(sections) {
		return session.Values{}
	}
	return SampleRecord().Values(sections[n-1])
}

// DefaultForm loads the embedded definition or fails the test.
func DefaultForm(t testing.TB) model.FormModel {
	t.Helper()
	form, err := definition.Default()
	if err != nil {
		t.Fatalf("load default definition: %v", err)
	}
	return form
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
