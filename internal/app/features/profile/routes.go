package profile

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter that serves the profile view.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Serve) // mounted under /profile
	r.Post("/theme", h.HandleTheme)
	return r
}
