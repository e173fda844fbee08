package tui

import (
	"io"
	"strings"

	"go.uber.org/zap"
)

// Theme captures optional message prefixes the runner applies when printing.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// Option configures the Runner.
type Option func(*Runner)

// WithPromptDriver overrides the prompt driver used by the runner.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Runner) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutput sets where the survey driver prints messages. Ignored when a
// custom driver is supplied.
func WithOutput(out io.Writer) Option {
	return func(r *Runner) {
		if out != nil {
			r.out = out
		}
	}
}

// WithArtifactPath writes the plain-text feedback to path after submission.
func WithArtifactPath(path string) Option {
	return func(r *Runner) {
		r.artifactPath = strings.TrimSpace(path)
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Runner) {
		r.theme = theme
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}
