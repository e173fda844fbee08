package session

import (
	"net/url"
	"strings"
)

// Values is the field set submitted for one step, keyed by field name. It
// mirrors browser FormData: a name may carry several values (checkbox groups).
type Values map[string][]string

// FromURLValues copies url.Values (for example http.Request.PostForm).
func FromURLValues(in url.Values) Values {
	out := make(Values, len(in))
	for key, values := range in {
		out[key] = append([]string(nil), values...)
	}
	return out
}

// Get returns the first non-blank value for name, or "". It agrees with
// GetAll, so a field that passes required validation never commits empty.
func (v Values) Get(name string) string {
	for _, value := range v[name] {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

// GetAll returns all non-blank values for name.
func (v Values) GetAll(name string) []string {
	var out []string
	for _, value := range v[name] {
		if strings.TrimSpace(value) == "" {
			continue
		}
		out = append(out, value)
	}
	return out
}

// Set replaces the values for name.
func (v Values) Set(name string, values ...string) {
	v[name] = append([]string(nil), values...)
}

// Has reports whether name holds at least one non-blank value.
func (v Values) Has(name string) bool {
	return len(v.GetAll(name)) > 0
}

// Contains reports whether any value for name equals target.
func (v Values) Contains(name, target string) bool {
	for _, value := range v[name] {
		if value == target {
			return true
		}
	}
	return false
}

// Clone deep copies the values.
func (v Values) Clone() Values {
	if v == nil {
		return Values{}
	}
	out := make(Values, len(v))
	for key, values := range v {
		out[key] = append([]string(nil), values...)
	}
	return out
}
