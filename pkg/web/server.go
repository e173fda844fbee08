package web

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/goliatone/go-diagnostic/pkg/render/template"
	"github.com/goliatone/go-diagnostic/pkg/render/template/gotemplate"
	"github.com/goliatone/go-diagnostic/pkg/session"
	"github.com/goliatone/go-diagnostic/pkg/wizard"
)

// DefaultCookieName names the session cookie.
const DefaultCookieName = "diagnostic_session"

// ControllerFactory creates the controller for a new browser session.
type ControllerFactory func() (*wizard.Controller, error)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRenderer replaces the page template renderer.
func WithRenderer(renderer template.TemplateRenderer) Option {
	return func(s *Server) {
		s.renderer = renderer
	}
}

// WithCookieName overrides the session cookie name.
func WithCookieName(name string) Option {
	return func(s *Server) {
		if name != "" {
			s.cookieName = name
		}
	}
}

// WithSecureCookie marks the session cookie Secure.
func WithSecureCookie(secure bool) Option {
	return func(s *Server) {
		s.secure = secure
	}
}

// WithSessionTTL drops sessions idle for longer than ttl. Zero keeps them.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.ttl = ttl
	}
}

// Server serves the wizard as server-rendered pages, one controller per
// browser session.
type Server struct {
	factory    ControllerFactory
	renderer   template.TemplateRenderer
	logger     *zap.Logger
	cookieName string
	secure     bool
	ttl        time.Duration
	sessions   *sessionTable
	router     chi.Router

	// pending tracks submitted controllers until their delivery settles,
	// including sessions already dropped by restart or pruning.
	pending sync.WaitGroup
}

// New builds the server and its routes.
func New(factory ControllerFactory, options ...Option) (*Server, error) {
	if factory == nil {
		return nil, errors.New("web: controller factory is required")
	}
	s := &Server{
		factory:    factory,
		logger:     zap.NewNop(),
		cookieName: DefaultCookieName,
		ttl:        2 * time.Hour,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.renderer == nil {
		engine, err := gotemplate.New(gotemplate.WithFS(TemplatesFS()))
		if err != nil {
			return nil, err
		}
		s.renderer = engine
	}
	s.sessions = newSessionTable(s.ttl)
	s.router = s.routes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/", s.handleStep)
	r.Post("/step", s.handleTransition)
	r.Get("/feedback", s.handleFeedback)
	r.Get("/feedback.txt", s.handleArtifact)
	r.Post("/restart", s.handleRestart)
	r.Get("/healthz", handleHealth)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(StaticFS()))))
	return r
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	e, err := s.session(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ctrl.Status() == wizard.StatusSubmitted {
		http.Redirect(w, r, "/feedback", http.StatusSeeOther)
		return
	}
	s.renderStep(w, r, e.ctrl, e.ctrl.StepValues(e.ctrl.Current()), nil, http.StatusOK)
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	e, err := s.session(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	action := r.PostForm.Get("action")
	values := session.FromURLValues(r.PostForm)
	delete(values, "action")

	ctx := r.Context()
	switch action {
	case "back":
		err = e.ctrl.Retreat()
	case "next":
		err = e.ctrl.Next(ctx, values)
	case "submit":
		var res *wizard.Result
		res, err = e.ctrl.Submit(ctx, values)
		if res != nil {
			s.track(e.ctrl)
		}
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	}

	var verr *wizard.ValidationError
	switch {
	case errors.As(err, &verr):
		s.renderStep(w, r, e.ctrl, values, verr, http.StatusUnprocessableEntity)
	case errors.Is(err, wizard.ErrSubmitted):
		http.Redirect(w, r, "/feedback", http.StatusSeeOther)
	case errors.Is(err, wizard.ErrNotFinalStep), errors.Is(err, wizard.ErrInvalidStep):
		http.Error(w, err.Error(), http.StatusConflict)
	case err != nil:
		s.fail(w, r, err)
	case e.ctrl.Status() == wizard.StatusSubmitted:
		http.Redirect(w, r, "/feedback", http.StatusSeeOther)
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	res, ok := s.result(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if res.Feedback == nil {
		http.Error(w, "feedback unavailable", http.StatusInternalServerError)
		return
	}
	out, err := s.renderer.RenderTemplate("feedback", feedbackView{
		Feedback: res.Feedback.HTML,
		Filename: res.Feedback.Filename,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeHTML(w, http.StatusOK, out)
}

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	res, ok := s.result(r)
	if !ok || res.Feedback == nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+res.Feedback.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(res.Feedback.Text))
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(s.cookieName); err == nil {
		s.sessions.remove(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: s.cookieName, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// session returns the caller's session, starting a new one (and setting the
// cookie) when the request carries none or an unknown id.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*entry, error) {
	if cookie, err := r.Cookie(s.cookieName); err == nil {
		if e, ok := s.sessions.get(cookie.Value); ok {
			return e, nil
		}
	}
	ctrl, err := s.factory()
	if err != nil {
		return nil, err
	}
	id := s.sessions.add(ctrl)
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	e, _ := s.sessions.get(id)
	s.logger.Debug("web session started", zap.String("session", id))
	return e, nil
}

func (s *Server) result(r *http.Request) (*wizard.Result, bool) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil {
		return nil, false
	}
	e, ok := s.sessions.get(cookie.Value)
	if !ok {
		return nil, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	res := e.ctrl.Result()
	if res == nil {
		return nil, false
	}
	return res, true
}

// track holds ctrl in the pending set until its delivery settles.
func (s *Server) track(ctrl *wizard.Controller) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctrl.Wait()
	}()
}

// Wait blocks until every submitted session has finished delivering (or
// backing up) its record, or until ctx is done. Call it after the HTTP server
// has stopped accepting requests.
func (s *Server) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) renderStep(w http.ResponseWriter, r *http.Request, c *wizard.Controller, values session.Values, verr *wizard.ValidationError, status int) {
	out, err := s.renderer.RenderTemplate("step", newStepView(c, values, verr))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeHTML(w, status, out)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("web request failed",
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err),
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
