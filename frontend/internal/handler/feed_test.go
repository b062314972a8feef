package handler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/quillpress/quill/frontend/internal/feed"
	"github.com/quillpress/quill/frontend/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	nearBottom = "?scroll_y=1000&viewport_height=800&document_height=2000"
	farAway    = "?scroll_y=0&viewport_height=800&document_height=3000"
)

func feedRequest(sess *session.Session, list, query string) *http.Request {
	r := newRequest(http.MethodGet, "/feed/"+list+"/next"+query, nil)
	return withParams(withSession(asFetch(r), sess), "list", list)
}

func TestFeedNextHandler(t *testing.T) {
	calls := &recorder{}
	h := newTestHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		calls.add(page)
		switch page {
		case "1":
			_, _ = io.WriteString(w, "["+postJSON(1, "First post")+"]")
		case "2":
			_, _ = io.WriteString(w, "["+postJSON(2, "Second post")+"]")
		default:
			_, _ = io.WriteString(w, "[]")
		}
	}))
	sess := newTestSession()

	// page 1 comes with the full page load
	w := httptest.NewRecorder()
	h.IndexGetHandler(w, withSession(newRequest(http.MethodGet, "/", nil), sess))
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("not near the bottom", func(t *testing.T) {
		calls.reset()
		w := httptest.NewRecorder()
		h.FeedNextHandler(w, feedRequest(sess, homeList, farAway))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "1", w.Header().Get(HeaderFeedPage))
		assert.Empty(t, calls.list())
	})

	t.Run("near the bottom loads the next page", func(t *testing.T) {
		calls.reset()
		w := httptest.NewRecorder()
		h.FeedNextHandler(w, feedRequest(sess, homeList, nearBottom))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get(HeaderFeedPage))
		assert.Contains(t, w.Body.String(), "Second post")
		assert.NotContains(t, w.Body.String(), "<html")
		assert.Equal(t, []string{"2"}, calls.list())
	})

	t.Run("empty page exhausts the list", func(t *testing.T) {
		calls.reset()
		w := httptest.NewRecorder()
		h.FeedNextHandler(w, feedRequest(sess, homeList, nearBottom))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "true", w.Header().Get(HeaderFeedExhausted))
		assert.Equal(t, "2", w.Header().Get(HeaderFeedPage))
		assert.Equal(t, feed.StateExhausted, sess.Feeds.Get(homeList).State())

		w = httptest.NewRecorder()
		h.FeedNextHandler(w, feedRequest(sess, homeList, nearBottom))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "true", w.Header().Get(HeaderFeedExhausted))
		assert.Equal(t, []string{"3"}, calls.list(), "exhausted lists make no further requests")
	})

	t.Run("lists are independent", func(t *testing.T) {
		calls.reset()
		w := httptest.NewRecorder()
		h.FeedNextHandler(w, feedRequest(sess, "category-3", nearBottom))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "1", w.Header().Get(HeaderFeedPage))
		assert.Equal(t, []string{"1"}, calls.list())
	})
}

func TestFeedNextHandler_BadInput(t *testing.T) {
	h := newTestHandlerWithURL(t, "http://127.0.0.1:1")
	sess := newTestSession()

	tests := []struct {
		name   string
		list   string
		query  string
		status int
	}{
		{"unknown list", "tags-1", nearBottom, http.StatusNotFound},
		{"missing geometry", homeList, "?scroll_y=10", http.StatusBadRequest},
		{"negative geometry", homeList, "?scroll_y=-1&viewport_height=800&document_height=2000", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.FeedNextHandler(w, feedRequest(sess, tt.list, tt.query))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestFeedNextHandler_FailureKeepsCursor(t *testing.T) {
	h := newTestHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	sess := newTestSession()

	w := httptest.NewRecorder()
	h.FeedNextHandler(w, feedRequest(sess, homeList, nearBottom))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	loader := sess.Feeds.Get(homeList)
	assert.Equal(t, 0, loader.Page())
	assert.Equal(t, feed.StateIdle, loader.State())
	assert.True(t, loader.HasMore())
}

func TestFeedNextHandler_BusyLoaderIsSkipped(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	calls := &recorder{}
	h := newTestHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.add(r.URL.Query().Get("page"))
		close(started)
		<-release
		_, _ = io.WriteString(w, "["+postJSON(1, "First post")+"]")
	}))
	sess := newTestSession()

	done := make(chan int)
	go func() {
		w := httptest.NewRecorder()
		h.FeedNextHandler(w, feedRequest(sess, homeList, nearBottom))
		done <- w.Code
	}()
	<-started

	w := httptest.NewRecorder()
	h.FeedNextHandler(w, feedRequest(sess, homeList, nearBottom))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get(HeaderFeedExhausted))

	close(release)
	assert.Equal(t, http.StatusOK, <-done)
	assert.Equal(t, []string{"1"}, calls.list())
}

func TestFeedNextHandler_Comments(t *testing.T) {
	calls := &recorder{}
	api := postAPI()
	h := newTestHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/posts/1/comments" {
			calls.add(r.URL.Query().Get("page"))
			if r.URL.Query().Get("page") == "2" {
				_, _ = io.WriteString(w, commentsJSON(12, "Second **page**"))
				return
			}
		}
		api.ServeHTTP(w, r)
	}))
	sess := newTestSession()

	w := httptest.NewRecorder()
	h.PostViewHandler(w, withParams(withSession(newRequest(http.MethodGet, "/posts/1/view", nil), sess), "id", "1"))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.FeedNextHandler(w, feedRequest(sess, "comments-1", nearBottom))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get(HeaderFeedPage))
	assert.Contains(t, w.Body.String(), `id="comment-12"`)
	assert.Contains(t, w.Body.String(), "<strong>page</strong>")
	assert.NotContains(t, w.Body.String(), "<html")

	w = httptest.NewRecorder()
	h.FeedNextHandler(w, feedRequest(sess, "comments-1", nearBottom))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "true", w.Header().Get(HeaderFeedExhausted))
	assert.Equal(t, []string{"1", "2", "3"}, calls.list())

	// the post feed of the same session is untouched
	assert.Equal(t, 0, sess.Feeds.Get(homeList).Page())
}

func TestFeedNextHandler_CommentsFailure(t *testing.T) {
	h := newTestHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	sess := newTestSession()

	w := httptest.NewRecorder()
	h.FeedNextHandler(w, feedRequest(sess, "comments-4", nearBottom))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Could not load more comments")
	assert.True(t, sess.Comments.Get("comments-4").HasMore())
}

func TestFollowingGetHandler(t *testing.T) {
	var path atomic.Value
	h := newTestHandler(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/me/feed" {
			path.Store(r.URL.Path)
			_, _ = io.WriteString(w, "["+postJSON(5, "Friend post")+"]")
			return
		}
		_, _ = io.WriteString(w, `{"is_favorited":false}`)
	}))
	sess := newTestSession()

	w := httptest.NewRecorder()
	h.FollowingGetHandler(w, withUser(withSession(newRequest(http.MethodGet, "/following", nil), sess), bob))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<h1>Following</h1>")
	assert.Contains(t, body, "Friend post")
	assert.Contains(t, body, `data-feed="following"`)
	assert.Equal(t, "/api/me/feed", path.Load())
	assert.Equal(t, 1, sess.Feeds.Get(followingList).Page())
}
