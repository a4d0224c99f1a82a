package calendar

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter that serves the event calendar.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleList) // mounted under /calendar
	r.Post("/", h.HandleAdd)
	r.Get("/stream", h.HandleStream)
	r.Post("/{id}/edit", h.HandleEdit)
	r.Post("/{id}/delete", h.HandleDelete)
	return r
}
