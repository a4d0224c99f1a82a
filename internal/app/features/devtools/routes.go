package devtools

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter that serves development tools.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/wipe", h.HandleWipe) // mounted under /dev
	return r
}
