package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/nudgebot/pkg/utils/logging"
)

type Server struct {
	router             *chi.Mux
	webhookUC          WebhookUseCase
	slackSigningSecret string
	scanUC             ScanUseCase
	jobToken           string
}

type Options func(*Server)

// WithSlackWebhook enables /hooks/slack/* verified with signingSecret
func WithSlackWebhook(webhookUC WebhookUseCase, signingSecret string) Options {
	return func(s *Server) {
		s.webhookUC = webhookUC
		s.slackSigningSecret = signingSecret
	}
}

// WithScanJob enables POST /jobs/scan guarded by a bearer token
func WithScanJob(scanUC ScanUseCase, token string) Options {
	return func(s *Server) {
		s.scanUC = scanUC
		s.jobToken = token
	}
}

func New(opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	// No auth required, uses signature verification
	if s.webhookUC != nil && s.slackSigningSecret != "" {
		r.Route("/hooks/slack", func(r chi.Router) {
			r.Use(SlackSignatureMiddleware(s.slackSigningSecret))

			r.Post("/event", NewSlackEventHandler(s.webhookUC).ServeHTTP)
			r.Post("/interaction", NewSlackInteractionHandler(s.webhookUC).ServeHTTP)
		})
	}

	if s.scanUC != nil && s.jobToken != "" {
		r.Route("/jobs", func(r chi.Router) {
			r.Use(bearerTokenMiddleware(s.jobToken))
			r.Post("/scan", scanJobHandler(s.scanUC))
		})
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		logger := logging.From(r.Context()).With("request_id", middleware.GetReqID(r.Context()))
		ctx := logging.With(r.Context(), logger)

		defer func() {
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}
