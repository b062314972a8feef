package handler

import (
	"context"
	"net/url"

	"github.com/quillpress/quill/frontend/internal/apiclient"
	"github.com/quillpress/quill/frontend/internal/feed"
	"github.com/quillpress/quill/frontend/internal/forms"
	"github.com/quillpress/quill/frontend/internal/toggle"
	"github.com/quillpress/quill/shared/domain"
)

// The session components know nothing about HTTP. These adapters bind them to
// the blog API with the credentials of the request being served.

func (h *Handler) fetcher(creds apiclient.Credentials, q apiclient.ListQuery) feed.Fetcher[domain.Post] {
	return feed.FetcherFunc[domain.Post](func(ctx context.Context, page int) ([]domain.Post, error) {
		q.Page = page
		return h.APIClient.ListPosts(ctx, creds, q)
	})
}

func (h *Handler) commentFetcher(creds apiclient.Credentials, postId domain.PostId) feed.Fetcher[domain.Comment] {
	return feed.FetcherFunc[domain.Comment](func(ctx context.Context, page int) ([]domain.Comment, error) {
		return h.APIClient.ListComments(ctx, creds, postId, page)
	})
}

func (h *Handler) requester(creds apiclient.Credentials) toggle.Requester {
	return toggle.RequesterFunc(func(ctx context.Context, target toggle.Target, activate bool) error {
		return h.APIClient.SetRelation(ctx, creds, target.Path(), activate)
	})
}

func (h *Handler) submitter(creds apiclient.Credentials) forms.Submitter {
	return forms.SubmitterFunc(func(ctx context.Context, method, action string, values url.Values) (forms.Response, error) {
		res, err := h.APIClient.SubmitForm(ctx, creds, method, action, values)
		if err != nil {
			return forms.Response{}, err
		}
		return forms.Response{StatusCode: res.StatusCode, Body: res.Body}, nil
	})
}
