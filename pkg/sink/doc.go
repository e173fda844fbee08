// Package sink delivers flattened wizard submissions to the hosted form
// backend. HTTPSink posts multipart/form-data the way the browser form did and
// only looks at the response status. A Contract, loaded from an OpenAPI
// document, checks payloads before they leave the process.
package sink
