// Package feedback turns a completed session record into personalised
// feedback: an HTML view for the results page and a plain-text artifact for
// download. Ratings and topics are mapped through fixed lookup tables.
package feedback
