package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/quillpress/quill/shared/domain"
)

func (c *APIClient) GetUser(ctx context.Context, creds Credentials, id domain.UserId) (domain.UserProfile, error) {
	var user domain.UserProfile
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/users/%d", id), nil, "", creds)
	if err != nil {
		return user, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return user, errorFromResponse(resp)
	}
	if err := decodeResponse(resp, "user", &user); err != nil {
		return user, err
	}
	return user, nil
}

// IsFollowing reports whether viewer follows target. The blog API has no
// direct status endpoint, so the viewer's following list is scanned.
func (c *APIClient) IsFollowing(ctx context.Context, creds Credentials, viewer, target domain.UserId) (bool, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/users/%d/following", viewer), nil, "", creds)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return false, errorFromResponse(resp)
	}
	var following []domain.Author
	if err := decodeResponse(resp, "following", &following); err != nil {
		return false, err
	}
	for _, u := range following {
		if u.Id == target {
			return true, nil
		}
	}
	return false, nil
}
