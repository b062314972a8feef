package middleware

import (
	"net/http"
)

// DefaultCSP allows the page script and styles from the frontend itself and
// fetch calls back to it.
const DefaultCSP = "default-src 'self'; img-src 'self' data:; style-src 'self'; script-src 'self'; connect-src 'self'; frame-ancestors 'none'; form-action 'self'"

const hstsValue = "max-age=31536000; includeSubDomains"

// securityHeaders is the fixed set every response gets.
var securityHeaders = [][2]string{
	{"X-Frame-Options", "DENY"},
	{"X-Content-Type-Options", "nosniff"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"Cross-Origin-Opener-Policy", "same-origin"},
	{"Permissions-Policy", "camera=(), microphone=(), geolocation=(), payment=()"},
}

// SecurityHeadersWithCSP adds security headers with custom Content-Security-Policy.
// HSTS is only sent when isHTTPS is set; an empty csp sends no policy.
func SecurityHeadersWithCSP(isHTTPS bool, csp string) func(http.Handler) http.Handler {
	set := append([][2]string(nil), securityHeaders...)
	if csp != "" {
		set = append(set, [2]string{"Content-Security-Policy", csp})
	}
	if isHTTPS {
		set = append(set, [2]string{"Strict-Transport-Security", hstsValue})
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers := w.Header()
			for _, h := range set {
				headers.Set(h[0], h[1])
			}
			next.ServeHTTP(w, r)
		})
	}
}
