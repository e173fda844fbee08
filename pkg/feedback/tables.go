package feedback

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-diagnostic/pkg/session"
)

// NotSpecified is the rating text for missing or unknown ratings.
const NotSpecified = "Not specified"

// GenericSession is the session reference for topics without a dedicated one.
const GenericSession = "multiple sessions throughout the MasterClass"

var ratingText = map[string]string{
	"1": "Low (We'll build this)",
	"2": "Developing (We'll strengthen this)",
	"3": "Moderate (We'll refine this)",
	"4": "Strong (We'll leverage this)",
	"5": "Excellent (You'll help others with this)",
}

var relevantSession = map[string]string{
	"Present Perfect": "Session 2 (The Logic of English Tenses)",
	"Tense System":    "Session 2 (The Logic of English Tenses)",
	"Articles":        "Session 4 (The LATAM Nightmare)",
	"Conditionals":    "Session 6 (Logic, Probability, and Real World Use)",
	"Modals":          "Session 3 (Modality: Degrees of Certainty)",
	"Passive Voice":   "Session 7 (Formal Register)",
}

// RatingText describes a 1-5 self-audit rating.
func RatingText(rating string) string {
	if text, ok := ratingText[strings.TrimSpace(rating)]; ok {
		return text
	}
	return NotSpecified
}

// RelevantSession names the MasterClass session that covers topic.
func RelevantSession(topic string) string {
	if ref, ok := relevantSession[strings.TrimSpace(topic)]; ok {
		return ref
	}
	return GenericSession
}

// FocusArea lists the areas a teacher should concentrate on during the
// sessions, derived from the self-audit.
func FocusArea(audit session.Audit) string {
	var areas []string
	if n, ok := rating(audit.Confidence); ok && n < 3 {
		areas = append(areas, "logic-based explanations")
	}
	if n, ok := rating(audit.Application); ok && n > 3 {
		areas = append(areas, "communicative practice design")
	}
	if n, ok := rating(audit.Feedback); ok && n < 3 {
		areas = append(areas, "error correction strategies")
	}
	if len(areas) == 0 {
		return "advanced application techniques"
	}
	return strings.Join(areas, " and ")
}

// FocusLabel is the headline focus for the self-audit insight. Only a
// confidence rating below 4 selects frameworks; a missing or non-numeric
// rating falls through to application activities.
func FocusLabel(audit session.Audit) string {
	if n, ok := rating(audit.Confidence); ok && n < 4 {
		return "Building explanatory frameworks"
	}
	return "Enhancing application activities"
}

func rating(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return n, true
}
