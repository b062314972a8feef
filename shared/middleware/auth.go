package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/quillpress/quill/shared/domain"
	jwt_internal "github.com/quillpress/quill/shared/jwt"
	"github.com/quillpress/quill/shared/utils"
)

// AccessTokenCookie is the cookie the blog API stores its access token in.
const AccessTokenCookie = "accessToken"

// Key to store the user in the request context
type key int

const UserClaimsKey key = 0

// Auth decodes the blog API's access token to learn who the viewer is.
// The API remains the authority; the frontend only uses the identity to
// shape pages.
type Auth struct {
	jwtService jwt_internal.JwtService
}

func NewAuth(jwtService jwt_internal.JwtService) *Auth {
	return &Auth{jwtService: jwtService}
}

// NeedAuth returns middleware that rejects anonymous requests
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := a.extractUser(r)
			if err != nil {
				if err == errNoToken {
					http.Error(w, "Please sign-in", http.StatusUnauthorized)
					return
				}
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), UserClaimsKey, user)))
		})
	}
}

// OptionalAuth populates the user context if the token is valid, but doesn't require auth
func (a *Auth) OptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, _ := a.extractUser(r)
			if user != nil {
				r = r.WithContext(context.WithValue(r.Context(), UserClaimsKey, user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *Auth) extractUser(r *http.Request) (*domain.User, error) {
	var tokenString string
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		tokenString = cookie.Value
	} else if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found {
		tokenString = token
	}
	if tokenString == "" {
		return nil, errNoToken
	}

	token, err := a.jwtService.DecodeToken(tokenString)
	if err != nil {
		return nil, err
	}
	return a.jwtService.UserFromToken(token)
}

var errNoToken = errorString("no token")

type errorString string

func (e errorString) Error() string { return string(e) }

// GetUserFromContext retrieves the user from the context, nil for anonymous viewers
func GetUserFromContext(r *http.Request) *domain.User {
	user, ok := r.Context().Value(UserClaimsKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}
