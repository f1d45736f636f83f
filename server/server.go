// Package server exposes the analysis pipeline and the chat service over HTTP with gin.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bububa/purecheck/chat"
	"github.com/bububa/purecheck/pipeline"
	"github.com/bububa/purecheck/schema"
	"github.com/bububa/purecheck/session"
	"github.com/bububa/purecheck/upload"
)

// DefaultCookieName is the session cookie name
const DefaultCookieName = "purecheck_session"

// Analyzer turns a label image into a scored product
type Analyzer interface {
	Analyze(ctx context.Context, img schema.Image) (*pipeline.Result, error)
}

// Answerer answers chat questions
type Answerer interface {
	Ask(ctx context.Context, req chat.Request) (*chat.Answer, error)
}

// Readiness reports whether the guideline index holds any passage
type Readiness interface {
	Ready(ctx context.Context) bool
}

type Server struct {
	analyzer       Analyzer
	chat           Answerer
	sessions       session.Store
	validator      *upload.Validator
	images         upload.Store
	readiness      Readiness
	cookieName     string
	cookieSecure   bool
	cookieMaxAge   time.Duration
	requestTimeout time.Duration
	logger         *slog.Logger
	now            func() time.Time
	engine         *gin.Engine
}

type Option func(*Server)

// WithImageStore keeps every accepted upload in store
func WithImageStore(store upload.Store) Option {
	return func(s *Server) {
		s.images = store
	}
}

func WithValidator(v *upload.Validator) Option {
	return func(s *Server) {
		s.validator = v
	}
}

// WithCookie sets the session cookie name, Secure flag and lifetime
func WithCookie(name string, secure bool, maxAge time.Duration) Option {
	return func(s *Server) {
		s.cookieName = name
		s.cookieSecure = secure
		s.cookieMaxAge = maxAge
	}
}

// WithRequestTimeout bounds every request context, 0 disables it
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.requestTimeout = d
	}
}

// WithReadiness adds the guideline index state to /healthz
func WithReadiness(r Readiness) Option {
	return func(s *Server) {
		s.readiness = r
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

func New(analyzer Analyzer, answerer Answerer, sessions session.Store, opts ...Option) *Server {
	ret := &Server{
		analyzer:     analyzer,
		chat:         answerer,
		sessions:     sessions,
		cookieName:   DefaultCookieName,
		cookieMaxAge: session.DefaultTTL,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.validator == nil {
		ret.validator = upload.NewValidator()
	}
	if ret.logger == nil {
		ret.logger = slog.Default()
	}
	ret.engine = ret.routes()
	return ret
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(requestID(), requestLogger(s.logger), recovery(s.logger))
	if s.requestTimeout > 0 {
		r.Use(timeout(s.requestTimeout))
	}
	r.GET("/healthz", s.healthz)
	r.GET("/session", s.getSession)
	r.POST("/upload", s.upload)
	r.POST("/chat", s.ask)
	r.POST("/clear-session", s.clearSession)
	return r
}

// Handler returns the http.Handler serving every route
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}
