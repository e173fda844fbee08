// Package wizard implements the step controller of the diagnostic form.
//
// A Controller holds the active step and the session record. Moving forward
// is guarded by validation of the active step; moving back is not. Submit is
// terminal: it commits the last step, hands the flattened record to a sink
// and renders feedback whatever the delivery outcome. Failed deliveries leave
// a JSON snapshot of the record in the fallback store.
package wizard
