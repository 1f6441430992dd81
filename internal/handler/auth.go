package handler

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

const authRealm = `Basic realm="whatif"`

// BasicAuth returns middleware that requires HTTP basic auth with the given
// user and a password matching the bcrypt hash. An empty hash disables it.
func BasicAuth(user, passwordHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if passwordHash == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, p, ok := r.BasicAuth()
			if !ok {
				unauthorized(w)
				return
			}
			userOK := subtle.ConstantTimeCompare([]byte(u), []byte(user)) == 1
			passErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(p))
			if !userOK || passErr != nil {
				slog.Warn("basic auth failed", "user", u, "remote", r.RemoteAddr)
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", authRealm)
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

// HashPassword returns the bcrypt hash to configure as the API password hash.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
