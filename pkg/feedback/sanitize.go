package feedback

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	viewPolicyOnce sync.Once
	viewPolicy     *bluemonday.Policy
)

// Sanitize strips everything from rendered feedback markup except the
// elements the feedback view uses.
func Sanitize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(viewSanitizer().Sanitize(trimmed))
}

func viewSanitizer() *bluemonday.Policy {
	viewPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		elements := []string{"div", "h3", "p", "strong", "em", "ul", "ol", "li", "i"}
		policy.AllowElements(elements...)
		policy.AllowAttrs("class").OnElements(elements...)
		viewPolicy = policy
	})
	return viewPolicy
}
