package chores

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter that serves the chore list.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleList) // mounted under /chores
	r.Post("/", h.HandleAdd)
	r.Get("/stream", h.HandleStream)
	r.Post("/{id}/toggle", h.HandleToggle)
	r.Post("/{id}/delete", h.HandleDelete)
	return r
}
