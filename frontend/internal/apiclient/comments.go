package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/quillpress/quill/shared/domain"
)

// ListComments fetches one page of a post's comment thread, oldest first.
// An empty slice means there are no more pages.
func (c *APIClient) ListComments(ctx context.Context, creds Credentials, postId domain.PostId, page int) ([]domain.Comment, error) {
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	if c.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(c.PageSize))
	}

	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/posts/%d/comments?%s", postId, v.Encode()), nil, "", creds)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, errorFromResponse(resp)
	}
	var comments []domain.Comment
	if err := decodeResponse(resp, "comments", &comments); err != nil {
		return nil, err
	}
	return comments, nil
}
