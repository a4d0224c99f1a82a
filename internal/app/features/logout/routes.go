package logout

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter that serves logout.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleLogout) // mounted under /logout
	return r
}
