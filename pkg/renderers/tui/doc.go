// Package tui runs the diagnostic wizard in a terminal. Prompts go through a
// PromptDriver; the default driver uses survey.
package tui
