package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/quillpress/quill/shared/api"
	"github.com/quillpress/quill/shared/domain"
)

// ListQuery selects one page of a post list. Zero filters are omitted.
// Following selects the viewer's followed-authors feed instead of the public
// list; the filters do not apply to it.
type ListQuery struct {
	Page       int
	CategoryId domain.CategoryId
	AuthorId   domain.UserId
	Following  bool
}

func (q ListQuery) path() string {
	if q.Following {
		return "/api/me/feed"
	}
	return "/api/posts"
}

func (q ListQuery) encode(pageSize int) string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	if pageSize > 0 {
		v.Set("page_size", strconv.Itoa(pageSize))
	}
	if q.Following {
		return v.Encode()
	}
	if q.CategoryId != 0 {
		v.Set("category_id", strconv.FormatInt(q.CategoryId, 10))
	}
	if q.AuthorId != 0 {
		v.Set("author_id", strconv.FormatInt(q.AuthorId, 10))
	}
	return v.Encode()
}

// ListPosts fetches one page of posts. An empty slice means there are no
// more pages.
func (c *APIClient) ListPosts(ctx context.Context, creds Credentials, q ListQuery) ([]domain.Post, error) {
	resp, err := c.do(ctx, http.MethodGet, q.path()+"?"+q.encode(c.PageSize), nil, "", creds)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, errorFromResponse(resp)
	}
	var posts []domain.Post
	if err := decodeResponse(resp, "posts", &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *APIClient) GetPost(ctx context.Context, creds Credentials, id domain.PostId) (domain.Post, error) {
	var post domain.Post
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/posts/%d", id), nil, "", creds)
	if err != nil {
		return post, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return post, errorFromResponse(resp)
	}
	if err := decodeResponse(resp, "post", &post); err != nil {
		return post, err
	}
	return post, nil
}

// FavoriteStatus asks whether the viewer has favorited the post.
func (c *APIClient) FavoriteStatus(ctx context.Context, creds Credentials, id domain.PostId) (bool, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/posts/%d/favorite/status", id), nil, "", creds)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return false, errorFromResponse(resp)
	}
	var status api.FavoriteStatusResponse
	if err := decodeResponse(resp, "favorite status", &status); err != nil {
		return false, err
	}
	return status.IsFavorited, nil
}
