package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meridianfi/txlifecycle/pkg/handlers/positions"
	"github.com/meridianfi/txlifecycle/pkg/handlers/stakes"
	"github.com/meridianfi/txlifecycle/pkg/handlers/transfers"
	"github.com/meridianfi/txlifecycle/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the constructed handlers the router mounts.
type Deps struct {
	Transfers *transfers.TransfersHandler
	Stakes    *stakes.StakesHandler
	Positions *positions.PositionsHandler
	Logger    *slog.Logger
}

// NewRouter mounts the coordinator's HTTP surface.
func NewRouter(deps Deps) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestLogger(deps.Logger))

	router.Route("/v1", func(r chi.Router) {
		r.Post("/transfers", deps.Transfers.SendTransfer)
		r.Get("/transactions", deps.Transfers.ListTransactions)
		r.Get("/transactions/{txID}", func(w http.ResponseWriter, req *http.Request) {
			deps.Transfers.GetTransactionById(w, req, chi.URLParam(req, "txID"))
		})

		r.Post("/stakes", deps.Stakes.Stake)
		r.Post("/stakes/{id}/unstake", func(w http.ResponseWriter, req *http.Request) {
			deps.Stakes.Unstake(w, req, chi.URLParam(req, "id"))
		})
		r.Post("/reconcile/refresh", deps.Stakes.Refresh)

		r.Get("/positions", deps.Positions.ListPositions)
		r.Get("/positions/{id}", func(w http.ResponseWriter, req *http.Request) {
			deps.Positions.GetPositionById(w, req, chi.URLParam(req, "id"))
		})
	})

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return router
}
