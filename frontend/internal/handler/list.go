package handler

import (
	"fmt"
	"net/http"

	"github.com/quillpress/quill/frontend/internal/apiclient"
	frontend_domain "github.com/quillpress/quill/frontend/internal/domain"
	"github.com/quillpress/quill/frontend/internal/metrics"
	"github.com/quillpress/quill/shared/logger"
	mw "github.com/quillpress/quill/shared/middleware"
	"github.com/quillpress/quill/shared/utils"
)

const listTemplate = "index.html"

func (h *Handler) IndexGetHandler(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, &frontend_domain.ListPageData{Title: "Latest posts", ListKey: homeList})
}

// FollowingGetHandler lists posts by the authors the viewer follows.
func (h *Handler) FollowingGetHandler(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, &frontend_domain.ListPageData{Title: "Following", ListKey: followingList})
}

func (h *Handler) CategoryGetHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseId(r, "id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	data := &frontend_domain.ListPageData{Title: "Category", ListKey: categoryList(id)}
	category, err := h.APIClient.GetCategory(r.Context(), apiclient.CredentialsFromRequest(r), id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	data.Title = category.Name
	h.renderList(w, r, data)
}

func (h *Handler) AuthorGetHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, err := parseId(r, "id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	creds := apiclient.CredentialsFromRequest(r)
	author, err := h.APIClient.GetUser(r.Context(), creds, id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	h.renderList(w, r, &frontend_domain.ListPageData{
		Title:   fmt.Sprintf("Posts by %s", author.DisplayName()),
		ListKey: authorList(id),
		Author:  &author,
		Follow:  h.followButton(r.Context(), creds, sess, mw.GetUserFromContext(r), author),
	})
}

// renderList starts the list over: a full page load resets the session's
// cursor for this list and renders page 1.
func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, data *frontend_domain.ListPageData) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	query, err := parseListKey(data.ListKey)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	loader := sess.Feeds.Reset(data.ListKey)
	res, err := loader.Next(r.Context(), h.fetcher(apiclient.CredentialsFromRequest(r), query))
	metrics.FeedRequests.WithLabelValues(res.Status.String()).Inc()

	data.Page = loader.Page()
	data.HasMore = loader.HasMore()
	if err != nil {
		logger.Log.Error("loading first page", "list", data.ListKey, "error", err)
		h.renderTemplateWithError(w, r, listTemplate, data, "Could not load posts. Please try again.")
		return
	}

	data.Cards = h.postCards(r, sess, res.Items)
	h.renderTemplate(w, r, listTemplate, data)
}
