package sink

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-diagnostic/pkg/session"
	"github.com/goliatone/go-diagnostic/pkg/testsupport"
)

type capturedRequest struct {
	method      string
	contentType string
	fields      map[string]string
}

func newCaptureServer(t *testing.T, status int) (*httptest.Server, func() []capturedRequest) {
	t.Helper()
	var (
		mu       sync.Mutex
		requests []capturedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fields := make(map[string]string, len(r.MultipartForm.Value))
		for key, values := range r.MultipartForm.Value {
			fields[key] = values[0]
		}
		mu.Lock()
		requests = append(requests, capturedRequest{
			method:      r.Method,
			contentType: r.Header.Get("Content-Type"),
			fields:      fields,
		})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []capturedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedRequest(nil), requests...)
	}
}

func TestHTTPSink_PostsMultipart(t *testing.T) {
	srv, requests := newCaptureServer(t, http.StatusOK)

	s, err := NewHTTP(srv.URL+"/", WithFormName("session0-diagnostic"))
	require.NoError(t, err)

	entries := testsupport.SampleRecord().Flatten()
	require.NoError(t, s.Deliver(context.Background(), entries))

	got := requests()
	require.Len(t, got, 1)
	require.Equal(t, http.MethodPost, got[0].method)
	require.Contains(t, got[0].contentType, "multipart/form-data")
	require.Equal(t, "session0-diagnostic", got[0].fields[FormNameField])
	require.Equal(t, "5 years", got[0].fields["experience"])
	require.Equal(t, "B1, B2", got[0].fields["levels"])
	require.Len(t, got[0].fields, len(entries)+1)
}

func TestHTTPSink_StatusError(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusInternalServerError)

	s, err := NewHTTP(srv.URL)
	require.NoError(t, err)

	err = s.Deliver(context.Background(), testsupport.SampleRecord().Flatten())
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
}

func TestHTTPSink_ContractRejectsBeforeSending(t *testing.T) {
	srv, requests := newCaptureServer(t, http.StatusOK)

	contract, err := DefaultContract(context.Background())
	require.NoError(t, err)

	s, err := NewHTTP(srv.URL, WithContract(contract), WithFormName("session0-diagnostic"))
	require.NoError(t, err)

	rec := testsupport.SampleRecord()
	rec.Email = ""
	err = s.Deliver(context.Background(), rec.Flatten())

	var contractErr *ContractError
	require.ErrorAs(t, err, &contractErr)
	require.Empty(t, requests())
}

func TestHTTPSink_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	s, err := NewHTTP(srv.URL, WithTimeout(20*time.Millisecond))
	require.NoError(t, err)

	err = s.Deliver(context.Background(), testsupport.SampleRecord().Flatten())
	require.Error(t, err)
	require.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestNewHTTP_RejectsBadEndpoint(t *testing.T) {
	for _, endpoint := range []string{"", "ftp://example.com", "://bad"} {
		_, err := NewHTTP(endpoint)
		require.Error(t, err, endpoint)
	}
}

func TestFunc_AndNop(t *testing.T) {
	var called bool
	s := Func(func(context.Context, session.Entries) error {
		called = true
		return nil
	})
	require.NoError(t, s.Deliver(context.Background(), nil))
	require.True(t, called)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, Nop{}.Deliver(ctx, nil), context.Canceled)
}
