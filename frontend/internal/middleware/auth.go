package middleware

import (
	"net/http"

	"github.com/quillpress/quill/frontend/internal/flash"
	"github.com/quillpress/quill/frontend/internal/session"
	mw "github.com/quillpress/quill/shared/middleware"
)

// Auth wraps shared auth middleware with redirect behavior for pages
type Auth struct {
	sharedAuth *mw.Auth
	redirectTo string
}

func NewAuth(sharedAuth *mw.Auth, redirectTo string) *Auth {
	return &Auth{sharedAuth: sharedAuth, redirectTo: redirectTo}
}

// NeedAuth sends anonymous visitors back with a flash instead of a bare 401
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return a.wrapWithRedirect(a.sharedAuth.NeedAuth())
}

func (a *Auth) OptionalAuth() func(http.Handler) http.Handler {
	return a.sharedAuth.OptionalAuth()
}

// authRedirectWriter intercepts 401 errors and redirects with a flash
type authRedirectWriter struct {
	http.ResponseWriter
	request    *http.Request
	redirectTo string
	redirected bool
}

func (w *authRedirectWriter) WriteHeader(statusCode int) {
	if w.redirected {
		return
	}
	if statusCode == http.StatusUnauthorized {
		w.redirected = true
		if sess := session.FromRequest(w.request); sess != nil {
			sess.Flash.Show(flash.Error, "Please log in to continue")
		}
		http.Redirect(w.ResponseWriter, w.request, w.redirectTo, http.StatusSeeOther)
		return
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *authRedirectWriter) Write(data []byte) (int, error) {
	if w.redirected {
		return len(data), nil
	}
	return w.ResponseWriter.Write(data)
}

func (a *Auth) wrapWithRedirect(authMiddleware func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapper := &authRedirectWriter{ResponseWriter: w, request: r, redirectTo: a.redirectTo}
			authMiddleware(next).ServeHTTP(wrapper, r)
		})
	}
}
