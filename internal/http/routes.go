package httpx

// Package httpx wires the HTTP surface: the edge gatekeeper, the OAuth
// callback, the session API, and the profile API.

import (
	"log/slog"
	"net/http"

	"github.com/mechlink/mechlink-api/internal/service"
)

// RouterServices groups the dependencies for NewRouter.
type RouterServices struct {
	Auth     AuthServiceInterface
	Profiles *service.ProfileService
	Pages    http.Handler // page renderer behind the gatekeeper; optional
	Logger   *slog.Logger
	IsDev    bool
}

// NewRouter creates and configures the HTTP router. Every page route flows
// through the gatekeeper; /api/, /auth/, /static/ and /healthz bypass it.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	if services.Auth != nil {
		authHandlers := &AuthHandlers{Svc: services.Auth, Logger: logger, IsDev: services.IsDev}
		mux.HandleFunc("GET /auth/callback", authHandlers.Callback)
		mux.HandleFunc("POST /api/auth/login", authHandlers.Login)
		mux.HandleFunc("POST /api/auth/logout", authHandlers.Logout)
		mux.HandleFunc("GET /api/auth/status", authHandlers.Status)
	}

	if services.Profiles != nil {
		profileHandlers := &ProfileHandlers{Svc: services.Profiles, Logger: logger, IsDev: services.IsDev}
		mux.HandleFunc("GET /api/profile", profileHandlers.Get)
		mux.HandleFunc("POST /api/profile", profileHandlers.Create)
		mux.HandleFunc("PATCH /api/profile", profileHandlers.Update)
	}

	pages := services.Pages
	if pages == nil {
		pages = http.NotFoundHandler()
	}
	gatekeeper := &Gatekeeper{Refresher: services.Auth, Logger: logger, IsDev: services.IsDev}
	mux.Handle("/", gatekeeper.Middleware(pages))

	var handler http.Handler = mux
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler
}
