// Package session holds the SessionRecord the wizard accumulates across steps,
// the per-step submitted Values, and the flattening into the key/value shape
// the hosted form backend expects.
package session
