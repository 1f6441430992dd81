package i18n

import "net/http"

// Middleware injects the localizer for lang into every request context. A
// "lang" query parameter overrides it per request.
func Middleware(lang string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := lang
			if q := r.URL.Query().Get("lang"); q != "" {
				l = q
			}
			next.ServeHTTP(w, r.WithContext(WithLanguage(r.Context(), l)))
		})
	}
}
