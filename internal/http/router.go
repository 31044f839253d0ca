package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/greenhollow/stockade/internal/service"
	"github.com/greenhollow/stockade/internal/store"
	"github.com/greenhollow/stockade/pkg/httpx"
	"github.com/greenhollow/stockade/pkg/jwtx"
	"github.com/greenhollow/stockade/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AccountService *service.AccountService
	AuthService    *service.AuthService
	CatalogService *service.CatalogService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerProducts()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	registerHandler := &RegisterHandler{AccountService: r.AccountService}
	enrollHandler := &EnrollHandler{AccountService: r.AccountService}
	loginHandler := &LoginHandler{AuthService: r.AuthService}
	mfaHandler := &MFAVerifyHandler{AuthService: r.AuthService}
	tokenHandler := &TokenHandler{AuthService: r.AuthService}

	// Credential endpoints get the strict per-IP limit; everything here is a
	// brute-force target.
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("GET /v1/auth/enroll/{username}",
		httpx.Chain(enrollHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/mfa/verify",
		httpx.Chain(mfaHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/token",
		httpx.Chain(tokenHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerProducts() {
	h := &ProductsHandler{CatalogService: r.CatalogService}

	secured := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByIP(httpx.LenientLimit),
		)
	}

	r.Mux.Handle("POST /v1/products", secured(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("GET /v1/products", secured(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("GET /v1/products/{id}", secured(http.HandlerFunc(h.HandleGet)))
	r.Mux.Handle("PUT /v1/products/{id}", secured(http.HandlerFunc(h.HandleUpdate)))
	r.Mux.Handle("DELETE /v1/products/{id}", secured(http.HandlerFunc(h.HandleDelete)))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
