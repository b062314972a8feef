package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/quillpress/quill/shared/csrf"
	"github.com/quillpress/quill/shared/logger"
)

type csrfContextKey string

const csrfTokenContextKey csrfContextKey = "csrf_token"

// CSRFConfig holds CSRF middleware configuration
type CSRFConfig struct {
	SecureCookies bool // Use Secure flag on cookies (requires HTTPS)
}

// GenerateCSRFToken issues the double-submit token cookie. The page script
// reads the cookie and echoes it in the X-CSRF-Token header, so the cookie
// is not HttpOnly.
func GenerateCSRFToken(config CSRFConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := csrf.FromCookie(r)
			if token == "" {
				var err error
				token, err = csrf.GenerateToken()
				if err != nil {
					logger.Log.Error("failed to generate CSRF token", "error", err)
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}

				http.SetCookie(w, &http.Cookie{
					Name:     csrf.CookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: false,
					Secure:   config.SecureCookies,
					SameSite: http.SameSiteLaxMode,
					MaxAge:   86400,
				})
			}

			ctx := context.WithValue(r.Context(), csrfTokenContextKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ValidateCSRFToken checks state-changing requests. The token may come in the
// X-CSRF-Token header (fetch) or the csrf_token form field (plain forms).
func ValidateCSRFToken() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPut &&
				r.Method != http.MethodPatch && r.Method != http.MethodDelete {
				next.ServeHTTP(w, r)
				return
			}

			cookieToken := csrf.FromCookie(r)
			if cookieToken == "" {
				logger.Log.Warn("CSRF token cookie missing", "path", r.URL.Path)
				http.Error(w, "CSRF token missing", http.StatusForbidden)
				return
			}

			submitted := r.Header.Get(csrf.HeaderName)
			if submitted == "" {
				if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
					if err := r.ParseMultipartForm(32 << 20); err != nil {
						logger.Log.Error("failed to parse multipart form", "error", err)
						http.Error(w, "Invalid form data", http.StatusBadRequest)
						return
					}
				} else if err := r.ParseForm(); err != nil {
					logger.Log.Error("failed to parse form", "error", err)
					http.Error(w, "Invalid form data", http.StatusBadRequest)
					return
				}
				submitted = r.PostForm.Get(csrf.FormField)
			}

			if !csrf.ValidateToken(cookieToken, submitted) {
				logger.Log.Warn("CSRF token validation failed", "path", r.URL.Path)
				http.Error(w, "CSRF token invalid", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetCSRFTokenFromContext retrieves CSRF token from request context
func GetCSRFTokenFromContext(r *http.Request) string {
	token, _ := r.Context().Value(csrfTokenContextKey).(string)
	return token
}
