package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pavelanni/whatif/internal/i18n"
)

// RouterConfig holds the server-level options for NewRouter.
type RouterConfig struct {
	Lang         string
	AuthUser     string
	PasswordHash string // bcrypt; empty disables auth
}

// NewRouter mounts h behind logging, recovery, locale and optional auth middleware.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(i18n.Middleware(cfg.Lang))
	r.Use(BasicAuth(cfg.AuthUser, cfg.PasswordHash))
	h.Routes(r)
	return r
}
