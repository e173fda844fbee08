package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-diagnostic/pkg/session"
)

// Option configures an HTTPSink.
type Option func(*HTTPSink)

// WithHTTPClient overrides the client used for delivery.
func WithHTTPClient(client *http.Client) Option {
	return func(s *HTTPSink) {
		if client != nil {
			s.client = client
		}
	}
}

// WithTimeout bounds each delivery. Zero leaves the caller's context in charge.
func WithTimeout(timeout time.Duration) Option {
	return func(s *HTTPSink) {
		s.timeout = timeout
	}
}

// WithContract validates payloads before they are sent.
func WithContract(contract *Contract) Option {
	return func(s *HTTPSink) {
		s.contract = contract
	}
}

// WithFormName sets the form-name field sent with every submission.
func WithFormName(name string) Option {
	return func(s *HTTPSink) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			s.formName = trimmed
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *HTTPSink) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// HTTPSink posts submissions as multipart/form-data.
type HTTPSink struct {
	endpoint string
	formName string
	client   *http.Client
	timeout  time.Duration
	contract *Contract
	logger   *zap.Logger
}

var _ Sink = (*HTTPSink)(nil)

// NewHTTP constructs a sink posting to endpoint.
func NewHTTP(endpoint string, options ...Option) (*HTTPSink, error) {
	parsed, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil {
		return nil, fmt.Errorf("sink: parse endpoint: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("sink: endpoint %q must be an http(s) URL", endpoint)
	}

	s := &HTTPSink{
		endpoint: parsed.String(),
		formName: "diagnostic",
		client:   http.DefaultClient,
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Endpoint reports the URL submissions are posted to.
func (s *HTTPSink) Endpoint() string {
	return s.endpoint
}

// Deliver validates and posts the submission. Any non-2xx status is a
// *StatusError; the response body is discarded.
func (s *HTTPSink) Deliver(ctx context.Context, entries session.Entries) error {
	if ctx == nil {
		return errors.New("sink: context is required")
	}
	if err := s.contract.Validate(s.formName, entries); err != nil {
		return err
	}

	body, contentType, err := encodeMultipart(s.formName, entries)
	if err != nil {
		return err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, body)
	if err != nil {
		return fmt.Errorf("sink: request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sink: post %s: %w", s.endpoint, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Endpoint: s.endpoint, StatusCode: resp.StatusCode}
	}

	s.logger.Debug("submission delivered",
		zap.String("endpoint", s.endpoint),
		zap.String("form", s.formName),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func encodeMultipart(formName string, entries session.Entries) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField(FormNameField, formName); err != nil {
		return nil, "", fmt.Errorf("sink: encode %s: %w", FormNameField, err)
	}
	for _, entry := range entries {
		if err := w.WriteField(entry.Name, entry.Value); err != nil {
			return nil, "", fmt.Errorf("sink: encode %s: %w", entry.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("sink: close multipart writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
