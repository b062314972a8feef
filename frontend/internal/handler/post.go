package handler

import (
	"fmt"
	"net/http"

	"github.com/quillpress/quill/frontend/internal/apiclient"
	frontend_domain "github.com/quillpress/quill/frontend/internal/domain"
	"github.com/quillpress/quill/shared/domain"
	internal_errors "github.com/quillpress/quill/shared/errors"
	"github.com/quillpress/quill/shared/logger"
	mw "github.com/quillpress/quill/shared/middleware"
	"github.com/quillpress/quill/shared/utils"
)

func canEdit(viewer *domain.User, post domain.Post) bool {
	return viewer != nil && (viewer.Id == post.Author.Id || viewer.Admin)
}

func (h *Handler) PostViewHandler(w http.ResponseWriter, r *http.Request) {
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
	post, err := h.APIClient.GetPost(r.Context(), creds, id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	viewer := mw.GetUserFromContext(r)
	data := frontend_domain.PostPageData{
		Post:     post,
		Content:  h.TextProcessor.Render(post.Content),
		CanEdit:  canEdit(viewer, post),
		Comments: h.commentSection(r, sess, creds, post.Id, viewer != nil),
	}
	if viewer != nil {
		data.Like = h.likeButton(r.Context(), creds, sess, post)
		if viewer.Id != post.Author.Id {
			author, err := h.APIClient.GetUser(r.Context(), creds, post.Author.Id)
			if err != nil {
				logger.Log.Warn("author unavailable", "user_id", post.Author.Id, "error", err)
			} else {
				data.Follow = h.followButton(r.Context(), creds, sess, viewer, author)
			}
		}
	}

	h.renderTemplate(w, r, "post.html", data)
}

// categoryOptions lists every category for the editor, marking the post's.
// Without the list the form still works, just without the picker.
func (h *Handler) categoryOptions(r *http.Request, creds apiclient.Credentials, post *domain.Post) []frontend_domain.CategoryOption {
	categories, err := h.APIClient.ListCategories(r.Context(), creds)
	if err != nil {
		logger.Log.Warn("categories unavailable", "error", err)
		return nil
	}
	selected := make(map[domain.CategoryId]bool)
	if post != nil {
		for _, c := range post.Categories {
			selected[c.Id] = true
		}
	}
	options := make([]frontend_domain.CategoryOption, 0, len(categories))
	for _, c := range categories {
		options = append(options, frontend_domain.CategoryOption{Category: c, Selected: selected[c.Id]})
	}
	return options
}

func (h *Handler) PostNewHandler(w http.ResponseWriter, r *http.Request) {
	h.renderTemplate(w, r, "post_form.html", frontend_domain.PostFormPageData{
		Action:     "/api/posts",
		Method:     http.MethodPost,
		Redirect:   "/",
		Categories: h.categoryOptions(r, apiclient.CredentialsFromRequest(r), nil),
	})
}

func (h *Handler) PostEditHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseId(r, "id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	creds := apiclient.CredentialsFromRequest(r)
	post, err := h.APIClient.GetPost(r.Context(), creds, id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if !canEdit(mw.GetUserFromContext(r), post) {
		utils.WriteErrorAndStatusCode(w, &internal_errors.ErrorWithStatusCode{Message: "Not enough permissions", StatusCode: http.StatusForbidden})
		return
	}

	h.renderTemplate(w, r, "post_form.html", frontend_domain.PostFormPageData{
		Post:       &post,
		Action:     fmt.Sprintf("/api/posts/%d", post.Id),
		Method:     http.MethodPut,
		Redirect:   fmt.Sprintf("/posts/%d/view", post.Id),
		Categories: h.categoryOptions(r, creds, &post),
	})
}
