// Package template defines the template rendering contract the feedback
// generator and the web front end depend on. The gotemplate subpackage
// implements it on top of pongo2.
package template
