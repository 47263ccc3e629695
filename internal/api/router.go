package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/rifty/internal/api/handlers"
	"github.com/ramonehamilton/rifty/internal/api/response"
	"github.com/ramonehamilton/rifty/internal/metrics"
	"github.com/ramonehamilton/rifty/internal/version"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.healthCheck)
	s.router.Get("/ws", s.wsHub.ServeWs)

	catalogHandler := handlers.NewCatalogHandler(s.collection)
	collectionHandler := handlers.NewCollectionHandler(s.collection)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", catalogHandler.GetCatalog)
			r.Get("/sets", catalogHandler.GetSets)
		})

		r.Route("/collection", func(r chi.Router) {
			r.Get("/", collectionHandler.GetCollection)
			r.Get("/all", collectionHandler.GetAll)
			r.Get("/sets", collectionHandler.GetSets)

			r.Put("/filter", collectionHandler.UpdateFilter)
			r.Delete("/filter", collectionHandler.ResetFilter)
			r.Put("/sort", collectionHandler.UpdateSort)

			r.Group(func(r chi.Router) {
				r.Use(s.throttle)
				r.Use(s.timed)
				r.Post("/items", collectionHandler.AddCard)
				r.Delete("/items/{instanceID}", collectionHandler.RemoveItem)
				r.Post("/bulk", collectionHandler.AddBulk)
				r.Post("/remove-one", collectionHandler.RemoveOne)
			})
		})
	})
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status          string          `json:"status"`
	Version         string          `json:"version"`
	TotalCount      int             `json:"totalCount"`
	Clients         int             `json:"clients"`
	MutationLatency metrics.Summary `json:"mutationLatency"`
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	response.Success(w, HealthResponse{
		Status:          "ok",
		Version:         version.GetVersion(),
		TotalCount:      s.collection.Snapshot().TotalCount,
		Clients:         s.wsHub.ClientCount(),
		MutationLatency: s.latency.Summary(),
	})
}
