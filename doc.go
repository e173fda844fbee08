// Package diagnostic runs the Grammar MasterClass Session 0 diagnostic: a
// four step wizard whose answers are delivered to an external form service
// and turned into personalised feedback.
//
// The packages under pkg/ hold the pieces: definition loads the wizard,
// wizard drives it, sink and store deliver or keep the submission, feedback
// renders the result and renderers/tui and web are the two front ends. This
// package re-exports the common entry points.
package diagnostic
