package authgoogle

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter that serves the Google sign-in flow.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeLogin)            // mounted under /auth/google
	r.Get("/callback", h.ServeCallback) // /auth/google/callback
	return r
}
