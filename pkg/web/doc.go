// Package web serves the diagnostic wizard over HTTP as server-rendered
// pages. Each browser session, identified by a cookie, owns one wizard
// controller.
package web
