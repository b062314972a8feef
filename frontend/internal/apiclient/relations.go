package apiclient

import (
	"context"
	"io"
	"net/http"
)

// SetRelation creates (POST) or removes (DELETE) a favorite or follow at
// path, e.g. /api/users/7/follow.
func (c *APIClient) SetRelation(ctx context.Context, creds Credentials, path string, activate bool) error {
	method := http.MethodDelete
	if activate {
		method = http.MethodPost
	}

	resp, err := c.do(ctx, method, path, nil, "", creds)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return errorFromResponse(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
