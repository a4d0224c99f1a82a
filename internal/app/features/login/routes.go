package login

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter that serves password login.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleLogin) // mounted under /login
	return r
}
