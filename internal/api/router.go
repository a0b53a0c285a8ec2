package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/dagaz/internal/dayservice"
	"github.com/starford/dagaz/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced. broker,
// if non-nil, is mounted at GET /events inside the auth group and
// receives change events from write handlers.
func NewRouter(svc *dayservice.Service, authEnabled bool, token string, broker *sse.Broker) chi.Router {
	h := NewHandler(svc, broker)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/days", h.GetRange)
	r.Get("/days/{date}", h.GetDay)
	r.Get("/days/{date}/document", h.GetDayDocument)
	r.Put("/days/{date}", h.SyncDay)

	r.Post("/notes", h.CreateNote)

	if broker != nil {
		r.Get("/events", broker.ServeHTTP)
	}

	return r
}
