package http

import (
	"net/http"

	"seminar-results-service/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter mounts the REST API, the websocket feed, health and metrics.
func NewRouter(results *ResultsHandler, ws *WSHandler, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/ws", ws.ServeWS)

	r.Route("/rounds/{id}", func(r chi.Router) {
		r.Get("/results", results.results(domain.KindRound))
		r.Get("/results.xlsx", results.spreadsheet(domain.KindRound))
		r.Get("/state", results.state(domain.KindRound))
		r.Post("/freeze", results.freeze(domain.KindRound))
	})
	r.Route("/periods/{id}", func(r chi.Router) {
		r.Get("/results", results.results(domain.KindPeriod))
		r.Get("/results.xlsx", results.spreadsheet(domain.KindPeriod))
		r.Get("/state", results.state(domain.KindPeriod))
		r.Post("/freeze", results.freeze(domain.KindPeriod))
		r.Get("/participants/{participant}", results.participantRow)
		r.Get("/invitations", results.invitations(false))
		r.Get("/invitations/{participants}/{substitutes}", results.invitations(false))
		r.Get("/school-invitations", results.invitations(true))
		r.Get("/school-invitations/{participants}/{substitutes}", results.invitations(true))
	})
	return r
}
