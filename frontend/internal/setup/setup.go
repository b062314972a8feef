package setup

import (
	"fmt"
	"html/template"
	"log"
	"path"
	"time"

	"github.com/quillpress/quill/frontend/internal/apiclient"
	"github.com/quillpress/quill/frontend/internal/cache"
	"github.com/quillpress/quill/frontend/internal/handler"
	"github.com/quillpress/quill/frontend/internal/markdown"
	"github.com/quillpress/quill/frontend/internal/session"
	"github.com/quillpress/quill/shared/config"
	"github.com/quillpress/quill/shared/jwt"
	"github.com/quillpress/quill/shared/logger"
	mw "github.com/quillpress/quill/shared/middleware"
	"github.com/quillpress/quill/shared/middleware/ratelimiter"
)

const (
	apiTimeout = 10 * time.Second
	// buckets of sessions that stopped posting are dropped after this
	limiterIdle = 10 * time.Minute
)

type Dependencies struct {
	Handler        *handler.Handler
	Auth           *mw.Auth
	Sessions       *session.Store
	FormLimiter    *ratelimiter.Limiter // nil when form_rate is 0
	SessionLimiter *ratelimiter.Limiter // nil when session_rate is 0
	Public         config.Public
	StaticPath     string
}

// SetupDependencies wires everything the router needs. webRoot holds the
// templates/ and static/ folders.
func SetupDependencies(cfg *config.Config, webRoot string) (*Dependencies, error) {
	templates := mustLoadTemplates(path.Join(webRoot, "templates"))

	var renderCache markdown.Cache = cache.Noop{}
	if cfg.Public.MemcacheAddr != "" {
		renderCache = cache.NewMemcache(cfg.Public.MemcacheAddr, cfg.Public.RenderCacheTTL)
		logger.Log.Info("render cache enabled", "addr", cfg.Public.MemcacheAddr)
	}
	textProcessor := markdown.New(renderCache)
	apiClient := apiclient.New(cfg.Public.ApiBaseURL, cfg.Public.PageSize, apiTimeout)

	h := handler.New(templates, cfg.Public, textProcessor, apiClient)

	sessionLimiter := newLimiter(cfg.Public.SessionRate, cfg.Public.SessionBurst)
	sessions := session.NewStore(session.Options{
		TTL:               cfg.Public.SessionTTL,
		FlashTTL:          cfg.Public.FlashTTL,
		ScrollThreshold:   cfg.Public.ScrollThreshold,
		OptimisticToggles: cfg.Public.OptimisticToggles,
		SecureCookies:     cfg.Public.SecureCookies,
		CreateLimiter:     sessionLimiter,
	})
	if err := sessions.Start(cfg.Public.SessionSweep); err != nil {
		return nil, fmt.Errorf("failed to start session janitor: %w", err)
	}

	formLimiter := newLimiter(cfg.Public.FormRate, cfg.Public.FormBurst)

	return &Dependencies{
		Handler:        h,
		Auth:           mw.NewAuth(jwt.New(cfg.JwtKey())),
		Sessions:       sessions,
		FormLimiter:    formLimiter,
		SessionLimiter: sessionLimiter,
		Public:         cfg.Public,
		StaticPath:     path.Join(webRoot, "static"),
	}, nil
}

// Close stops background work.
func (d *Dependencies) Close() {
	d.Sessions.Stop()
	for _, l := range []*ratelimiter.Limiter{d.FormLimiter, d.SessionLimiter} {
		if l != nil {
			l.Stop()
		}
	}
}

// newLimiter returns nil for a zero rate.
func newLimiter(rate, burst float64) *ratelimiter.Limiter {
	if rate <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return ratelimiter.New(rate, burst, limiterIdle)
}

func mustLoadTemplates(tmplPath string) map[string]*template.Template {
	templates, err := handler.LoadTemplates(tmplPath)
	if err != nil {
		log.Fatal(err)
	}
	return templates
}
