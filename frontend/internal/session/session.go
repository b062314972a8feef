// Package session keeps per-browser interaction state: flash messages,
// toggle buttons and feed cursors.
package session

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quillpress/quill/frontend/internal/apiclient"
	"github.com/quillpress/quill/frontend/internal/feed"
	"github.com/quillpress/quill/frontend/internal/flash"
	"github.com/quillpress/quill/frontend/internal/toggle"
	"github.com/quillpress/quill/shared/domain"
	internal_errors "github.com/quillpress/quill/shared/errors"
	"github.com/quillpress/quill/shared/logger"
	"github.com/quillpress/quill/shared/middleware/ratelimiter"
	"github.com/quillpress/quill/shared/utils"
	"github.com/robfig/cron/v3"
)

const CookieName = apiclient.SessionCookie

type Session struct {
	Id       string
	Flash    *flash.Messenger
	Toggles  *toggle.Toggler
	Feeds    *feed.Lists[domain.Post]
	Comments *feed.Lists[domain.Comment]

	lastSeen time.Time
}

type Options struct {
	TTL               time.Duration
	FlashTTL          time.Duration
	ScrollThreshold   int
	OptimisticToggles bool
	SecureCookies     bool
	// CreateLimiter bounds how many sessions one client address may open.
	// Nil leaves creation unbounded.
	CreateLimiter *ratelimiter.Limiter
}

type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	opts     Options
	now      func() time.Time
	cron     *cron.Cron
}

func NewStore(opts Options) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		opts:     opts,
		now:      time.Now,
	}
}

func (s *Store) newSession() *Session {
	return &Session{
		Id:       uuid.NewString(),
		Flash:    flash.New(s.opts.FlashTTL),
		Toggles:  toggle.New(s.opts.OptimisticToggles),
		Feeds:    feed.NewLists[domain.Post](s.opts.ScrollThreshold),
		Comments: feed.NewLists[domain.Comment](s.opts.ScrollThreshold),
		lastSeen: s.now(),
	}
}

// Create registers a fresh session with a random id.
func (s *Store) Create() *Session {
	sess := s.newSession()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Id] = sess
	return sess
}

// Get returns a live session and marks it as seen.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.expired(sess) {
		s.drop(sess)
		return nil, false
	}
	sess.lastSeen = s.now()
	return sess, true
}

func (s *Store) expired(sess *Session) bool {
	return s.opts.TTL > 0 && s.now().Sub(sess.lastSeen) > s.opts.TTL
}

func (s *Store) drop(sess *Session) {
	delete(s.sessions, sess.Id)
	sess.Flash.Close()
}

// Sweep drops sessions idle longer than the TTL and returns how many.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, sess := range s.sessions {
		if s.expired(sess) {
			s.drop(sess)
			n++
		}
	}
	return n
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Start runs Sweep on the cron schedule spec, e.g. "@every 1m".
func (s *Store) Start(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if n := s.Sweep(); n > 0 {
			logger.Log.Info("swept idle sessions", "count", n, "remaining", s.Len())
		}
	}); err != nil {
		return err
	}
	c.Start()

	s.mu.Lock()
	s.cron = c
	s.mu.Unlock()
	return nil
}

// Stop halts the janitor and waits for a running sweep.
func (s *Store) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

type contextKey struct{}

var errSessionExpired = &internal_errors.ErrorWithStatusCode{
	Message:    "Session expired. Reload the page and try again.",
	StatusCode: http.StatusForbidden,
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Middleware attaches the browser's session to the request, issuing a new
// session cookie when the browser has none or its session expired.
//
// Only page loads open sessions. A state-changing request without a live
// session is refused, so dropping the cookie never buys a fresh rate limit
// bucket. A client over the creation limit is served a throwaway session
// that is neither stored nor sent as a cookie.
func (s *Store) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sess *Session
			if cookie, err := r.Cookie(CookieName); err == nil {
				sess, _ = s.Get(cookie.Value)
			}
			switch {
			case sess != nil:
			case !isSafeMethod(r.Method):
				logger.Log.Debug("state-changing request without session", "path", r.URL.Path, "method", r.Method)
				utils.WriteErrorAndStatusCode(w, errSessionExpired)
				return
			case s.opts.CreateLimiter != nil && !s.opts.CreateLimiter.Allow(clientAddr(r)):
				logger.Log.Warn("session creation limited", "client", clientAddr(r))
				sess = s.newSession()
			default:
				sess = s.Create()
				http.SetCookie(w, &http.Cookie{
					Name:     CookieName,
					Value:    sess.Id,
					Path:     "/",
					HttpOnly: true,
					Secure:   s.opts.SecureCookies,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), sess)))
		})
	}
}

func NewContext(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// FromRequest returns the session attached by Middleware, nil outside it.
func FromRequest(r *http.Request) *Session {
	sess, _ := r.Context().Value(contextKey{}).(*Session)
	return sess
}

// Identity keys per-session rate limiting.
func Identity(r *http.Request) (string, error) {
	if sess := FromRequest(r); sess != nil {
		return sess.Id, nil
	}
	return "", errNoSession
}

var errNoSession = errors.New("no session")
