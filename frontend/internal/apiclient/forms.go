package apiclient

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/quillpress/quill/shared/api"
	"github.com/quillpress/quill/shared/logger"
)

type FormResult struct {
	StatusCode int
	Body       api.FormResponse
}

// SubmitForm forwards form values to action. Any status is a result; only
// transport failures are errors. A body that is not JSON reads as empty.
func (c *APIClient) SubmitForm(ctx context.Context, creds Credentials, method, action string, values url.Values) (FormResult, error) {
	resp, err := c.do(ctx, method, action, strings.NewReader(values.Encode()), "application/x-www-form-urlencoded", creds)
	if err != nil {
		return FormResult{}, err
	}
	defer resp.Body.Close()

	result := FormResult{StatusCode: resp.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return result, nil
	}
	if len(raw) > 0 {
		body, ok := decodeFormResponse(raw)
		if !ok {
			logger.Log.Debug("form response is not json", "action", action, "status", resp.StatusCode)
		}
		result.Body = body
	}
	return result, nil
}
