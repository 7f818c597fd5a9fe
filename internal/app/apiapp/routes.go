package apiapp

import (
	"regexp"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authsvc "github.com/RCDNC/swipedeck/internal/services/auth"
	"github.com/RCDNC/swipedeck/internal/services/sessions"
	"github.com/RCDNC/swipedeck/internal/transport/http/handlers"
)

type Dependencies struct {
	Sessions        *sessions.Registry
	History         handlers.HistoryReader
	Tokens          *authsvc.JWTManager
	DemoUserPattern *regexp.Regexp
	Logger          *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	sessionHandler := handlers.NewSessionHandler(deps.Sessions, deps.Logger)
	historyHandler := handlers.NewHistoryHandler(deps.History, deps.Logger)
	demoAuthHandler := handlers.NewDemoAuthHandler(deps.Tokens, deps.DemoUserPattern)
	authMW := AuthMiddleware(deps.Tokens, deps.Logger)

	r.Get("/healthz", healthHandler.Handle)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/demo", demoAuthHandler.Handle)

		r.Group(func(r chi.Router) {
			r.Use(authMW)
			r.Get("/history", historyHandler.Handle)
			r.Post("/sessions", sessionHandler.Create)
			r.Route("/sessions/{id}", func(r chi.Router) {
				r.Get("/", sessionHandler.Get)
				r.Delete("/", sessionHandler.Delete)
				r.Post("/candidates", sessionHandler.LoadCandidates)
				r.Post("/decisions", sessionHandler.Decide)
				r.Get("/quota", sessionHandler.Quota)
				r.Get("/can_submit", sessionHandler.CanSubmit)
				r.Post("/notice/dismiss", sessionHandler.DismissNotice)
			})
		})
	})
}
