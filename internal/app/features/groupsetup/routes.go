package groupsetup

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter that serves group setup.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleCreate)     // mounted under /groups
	r.Post("/join", h.HandleJoin)   // /groups/join
	r.Post("/leave", h.HandleLeave) // /groups/leave
	return r
}
