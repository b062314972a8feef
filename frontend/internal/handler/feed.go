package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/quillpress/quill/frontend/internal/apiclient"
	frontend_domain "github.com/quillpress/quill/frontend/internal/domain"
	"github.com/quillpress/quill/frontend/internal/feed"
	"github.com/quillpress/quill/frontend/internal/metrics"
	frontend_mw "github.com/quillpress/quill/frontend/internal/middleware"
	"github.com/quillpress/quill/shared/domain"
	internal_errors "github.com/quillpress/quill/shared/errors"
	"github.com/quillpress/quill/shared/logger"
	"github.com/quillpress/quill/shared/utils"
)

const (
	HeaderFeedPage      = "X-Feed-Page"
	HeaderFeedExhausted = "X-Feed-Exhausted"
)

func parseViewport(q url.Values) (feed.Viewport, error) {
	var vp feed.Viewport
	fields := []struct {
		name string
		dst  *int
	}{
		{"scroll_y", &vp.ScrollY},
		{"viewport_height", &vp.Height},
		{"document_height", &vp.DocumentHeight},
	}
	for _, f := range fields {
		n, err := strconv.Atoi(q.Get(f.name))
		if err != nil || n < 0 {
			return vp, &internal_errors.ErrorWithStatusCode{Message: "Invalid " + f.name, StatusCode: http.StatusBadRequest}
		}
		*f.dst = n
	}
	return vp, nil
}

// FeedNextHandler is called by the page script on scroll. It answers with the
// next page of post cards or comments, or 204 when nothing is to be appended.
func (h *Handler) FeedNextHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	key := chi.URLParam(r, "list")
	postId, isComments := parseCommentsKey(key)
	var query apiclient.ListQuery
	if !isComments {
		var err error
		if query, err = parseListKey(key); err != nil {
			utils.WriteErrorAndStatusCode(w, err)
			return
		}
	}
	vp, err := parseViewport(r.URL.Query())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	creds := apiclient.CredentialsFromRequest(r)

	if isComments {
		serveNext(w, r, sess.Comments.Get(key), vp, h.commentFetcher(creds, postId), "comments", func(comments []domain.Comment) {
			h.renderPartial(w, "comment_items", frontend_domain.CommentsFragmentData{Items: h.commentViews(comments)})
		})
		return
	}
	serveNext(w, r, sess.Feeds.Get(key), vp, h.fetcher(creds, query), "posts", func(posts []domain.Post) {
		h.renderPartial(w, "post_cards", frontend_domain.FeedFragmentData{
			Cards:     h.postCards(r, sess, posts),
			CSRFToken: frontend_mw.GetCSRFTokenFromContext(r),
		})
	})
}

// serveNext runs one scroll step of loader and writes the answer; render is
// called with the items of a loaded page.
func serveNext[T any](w http.ResponseWriter, r *http.Request, loader *feed.Loader[T], vp feed.Viewport, fetcher feed.Fetcher[T], noun string, render func([]T)) {
	res, err := loader.OnScroll(r.Context(), vp, fetcher)
	metrics.FeedRequests.WithLabelValues(res.Status.String()).Inc()
	if err != nil {
		logger.Log.Warn("loading next page", "list", loader.Key, "error", err)
		utils.WriteErrorAndStatusCode(w, &internal_errors.ErrorWithStatusCode{Message: "Could not load more " + noun, StatusCode: http.StatusBadGateway})
		return
	}

	w.Header().Set(HeaderFeedPage, strconv.Itoa(res.Page))
	switch res.Status {
	case feed.Loaded:
		render(res.Items)
	case feed.Exhausted:
		w.Header().Set(HeaderFeedExhausted, "true")
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
