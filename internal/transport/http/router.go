// Package http assembles the chi router. Everything except wallet connect,
// health, and metrics sits behind the wallet gate.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	intakehandler "healthcred/internal/intake/handler"
	offershandler "healthcred/internal/offers/handler"
	scorehandler "healthcred/internal/score/handler"
	wallethandler "healthcred/internal/wallet/handler"
	"healthcred/pkg/platform/middleware/auth"
	"healthcred/pkg/platform/middleware/requestid"
)

// Handlers collects the feature handlers the router mounts.
type Handlers struct {
	Wallet *wallethandler.Handler
	Score  *scorehandler.Handler
	Offers *offershandler.Handler
	Intake *intakehandler.Handler
}

// New assembles the application router.
func New(handlers Handlers, validator auth.TokenValidator, sessions auth.SessionChecker, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestid.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	handlers.Wallet.RegisterPublic(r)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireWallet(validator, sessions, logger))
		handlers.Wallet.Register(r)
		handlers.Score.Register(r)
		handlers.Offers.Register(r)
		handlers.Intake.Register(r)
	})

	return r
}
