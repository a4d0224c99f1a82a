package signup

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter that serves account creation.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleSignup) // mounted under /signup
	return r
}
