package handler

import (
	"net/http"

	"github.com/quillpress/quill/frontend/internal/apiclient"
	frontend_domain "github.com/quillpress/quill/frontend/internal/domain"
	"github.com/quillpress/quill/frontend/internal/metrics"
	"github.com/quillpress/quill/frontend/internal/session"
	"github.com/quillpress/quill/shared/domain"
	"github.com/quillpress/quill/shared/logger"
)

func (h *Handler) commentViews(comments []domain.Comment) []*frontend_domain.CommentView {
	views := make([]*frontend_domain.CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, &frontend_domain.CommentView{
			Comment: c,
			Author:  c.AuthorLogin(),
			Content: h.TextProcessor.Render(c.Content),
		})
	}
	return views
}

// commentSection restarts the post's comment thread on a full page load and
// renders its first page. A failure leaves the post readable.
func (h *Handler) commentSection(r *http.Request, sess *session.Session, creds apiclient.Credentials, postId domain.PostId, canWrite bool) frontend_domain.CommentSection {
	key := commentsList(postId)
	loader := sess.Comments.Reset(key)
	res, err := loader.Next(r.Context(), h.commentFetcher(creds, postId))
	metrics.FeedRequests.WithLabelValues(res.Status.String()).Inc()

	section := frontend_domain.CommentSection{
		ListKey:  key,
		Page:     loader.Page(),
		HasMore:  loader.HasMore(),
		CanWrite: canWrite,
	}
	if err != nil {
		logger.Log.Warn("loading comments", "post_id", postId, "error", err)
		section.Error = "Could not load comments."
		return section
	}
	section.Items = h.commentViews(res.Items)
	return section
}
