package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/quillpress/quill/frontend/internal/apiclient"
	"github.com/quillpress/quill/frontend/internal/cache"
	"github.com/quillpress/quill/frontend/internal/markdown"
	"github.com/quillpress/quill/frontend/internal/session"
	"github.com/quillpress/quill/shared/config"
	"github.com/quillpress/quill/shared/csrf"
	"github.com/quillpress/quill/shared/domain"
	mw "github.com/quillpress/quill/shared/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = &domain.User{Id: 7, Login: "alice"}
	bob   = &domain.User{Id: 9, Login: "bob"}
)

func newTestHandler(t *testing.T, api http.Handler) *Handler {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return newTestHandlerWithURL(t, srv.URL)
}

func newTestHandlerWithURL(t *testing.T, apiURL string) *Handler {
	t.Helper()
	templates, err := LoadTemplates("../../templates")
	require.NoError(t, err)

	cfg := config.Public{ScrollThreshold: 500, FlashTTL: 5 * time.Second, PageSize: 20}
	return New(templates, cfg, markdown.New(cache.Noop{}), apiclient.New(apiURL, 20, time.Second))
}

func newTestSession() *session.Session {
	return session.NewStore(session.Options{FlashTTL: time.Minute, ScrollThreshold: 500}).Create()
}

func newRequest(method, target string, form url.Values) *http.Request {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	r := httptest.NewRequest(method, target, body)
	if form != nil {
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	r.AddCookie(&http.Cookie{Name: csrf.CookieName, Value: "tok"})
	return r
}

func withSession(r *http.Request, sess *session.Session) *http.Request {
	return r.WithContext(session.NewContext(r.Context(), sess))
}

func withUser(r *http.Request, user *domain.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), mw.UserClaimsKey, user))
}

func withParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func asFetch(r *http.Request) *http.Request {
	r.Header.Set("X-Requested-With", "fetch")
	return r
}

func postJSON(id int64, title string) string {
	return fmt.Sprintf(`{"id":%d,"title":%q,"content":"Body of **%s**","author":{"id":7,"login":"alice"},
		"created_at":"2024-05-01T10:00:00Z","categories":[{"id":3,"name":"golang"}],"likes_count":3,"comments_count":1}`, id, title, title)
}

func TestHealthHandler(t *testing.T) {
	h := newTestHandlerWithURL(t, "http://127.0.0.1:1")
	w := httptest.NewRecorder()
	h.HealthHandler(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRequireSession(t *testing.T) {
	h := newTestHandlerWithURL(t, "http://127.0.0.1:1")
	w := httptest.NewRecorder()
	h.FlashGetHandler(w, httptest.NewRequest(http.MethodGet, "/flash", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Session unavailable")
}

func TestParseListKey(t *testing.T) {
	tests := []struct {
		key     string
		want    apiclient.ListQuery
		wantErr bool
	}{
		{"home", apiclient.ListQuery{}, false},
		{"following", apiclient.ListQuery{Following: true}, false},
		{"category-3", apiclient.ListQuery{CategoryId: 3}, false},
		{"author-7", apiclient.ListQuery{AuthorId: 7}, false},
		{"category-x", apiclient.ListQuery{}, true},
		{"author-0", apiclient.ListQuery{}, true},
		{"tags-1", apiclient.ListQuery{}, true},
		{"", apiclient.ListQuery{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := parseListKey(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "category-3", categoryList(3))
	assert.Equal(t, "author-7", authorList(7))
}

func TestParseCommentsKey(t *testing.T) {
	tests := []struct {
		key    string
		want   int64
		wantOk bool
	}{
		{"comments-5", 5, true},
		{"comments-0", 0, false},
		{"comments-x", 0, false},
		{"home", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := parseCommentsKey(tt.key)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "comments-5", commentsList(5))
}

func TestBackTo(t *testing.T) {
	tests := []struct {
		name    string
		referer string
		want    string
	}{
		{"no referer", "", "/"},
		{"same host", "http://example.com/posts/1/view?x=1", "/posts/1/view?x=1"},
		{"relative", "/categories/3", "/categories/3"},
		{"other host", "http://evil.test/steal", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "http://example.com/posts/1/favorite", nil)
			if tt.referer != "" {
				r.Header.Set("Referer", tt.referer)
			}
			assert.Equal(t, tt.want, backTo(r, "/"))
		})
	}
}

// recorder collects what the fake blog API saw.
type recorder struct {
	mu    sync.Mutex
	items []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, s)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.items...)
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}
