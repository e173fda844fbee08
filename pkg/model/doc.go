// Package model defines the typed wizard definition shared by the controller,
// the definition loader and the front ends. A FormModel is an ordered list of
// steps; each step names the SessionRecord section its fields commit into.
// Validation rules use canonical identifiers (minLength/maxLength, pattern,
// min/max) with string parameters so definitions stay stable when serialised
// to JSON or YAML.
package model
