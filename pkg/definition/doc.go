// Package definition loads wizard definitions (JSON or YAML) from an fs.FS and
// normalises them into model.FormModel values. Steps are numbered in document
// order, every step must name a SessionRecord section, and validation rules are
// checked up front so the controller never meets an unknown rule at runtime.
// The Session 0 diagnostic ships embedded and is available through Default.
package definition
