package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/quillpress/quill/shared/api"
	"github.com/quillpress/quill/shared/csrf"
	internal_errors "github.com/quillpress/quill/shared/errors"
	"github.com/quillpress/quill/shared/logger"
	"github.com/quillpress/quill/shared/utils"
)

// ErrUnavailable wraps transport failures talking to the blog API.
var ErrUnavailable = errors.New("backend unavailable")

// SessionCookie is the frontend's own cookie; it is never forwarded.
const SessionCookie = "quill_session"

// APIClient handles all communication with the blog API.
type APIClient struct {
	BaseURL    string
	HttpClient *http.Client
	PageSize   int
}

// New creates a client. timeout 0 leaves requests bounded only by the
// caller's context.
func New(baseURL string, pageSize int, timeout time.Duration) *APIClient {
	return &APIClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HttpClient: &http.Client{Timeout: timeout},
		PageSize:   pageSize,
	}
}

// Credentials are what the browser sent us and the API expects back: its
// cookies (access token included) and the double-submit CSRF token.
type Credentials struct {
	Cookies   []*http.Cookie
	CSRFToken string
}

func CredentialsFromRequest(r *http.Request) Credentials {
	var cookies []*http.Cookie
	for _, c := range r.Cookies() {
		if c.Name == SessionCookie {
			continue
		}
		cookies = append(cookies, c)
	}
	return Credentials{Cookies: cookies, CSRFToken: csrf.FromCookie(r)}
}

// do is the single helper for making API requests.
func (c *APIClient) do(ctx context.Context, method, path string, body io.Reader, contentType string, creds Credentials) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create API request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if creds.CSRFToken != "" && method != http.MethodGet {
		req.Header.Set(csrf.HeaderName, creds.CSRFToken)
	}
	for _, cookie := range creds.Cookies {
		req.AddCookie(cookie)
	}

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return resp, nil
}

// ErrBadResponse is returned when a 2xx body does not decode or lacks
// required fields.
var ErrBadResponse = &internal_errors.ErrorWithStatusCode{Message: "Unexpected response from blog API", StatusCode: http.StatusBadGateway}

// decodeResponse decodes and validates a successful API body into out.
func decodeResponse(resp *http.Response, what string, out any) error {
	if err := utils.DecodeValidate(resp.Body, out); err != nil {
		logger.Log.Warn("rejecting api response", "what", what, "path", resp.Request.URL.Path, "error", err)
		return fmt.Errorf("cannot decode %s response: %w", what, ErrBadResponse)
	}
	return nil
}

func isSuccess(status int) bool {
	return status >= 200 && status <= 299
}

// errorFromResponse turns a non-2xx answer into an ErrorWithStatusCode.
func errorFromResponse(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	message := ""
	if body, ok := decodeFormResponse(raw); ok {
		message = body.Text()
	}
	if message == "" {
		message = fmt.Sprintf("backend returned status %d", resp.StatusCode)
	}
	return &internal_errors.ErrorWithStatusCode{Message: message, StatusCode: resp.StatusCode}
}

// decodeFormResponse reads {message, detail, redirect}. The API reports
// validation errors with detail as a list of {"msg": "..."} objects; the
// first message is kept.
func decodeFormResponse(raw []byte) (api.FormResponse, bool) {
	var body struct {
		Message  string          `json:"message"`
		Detail   json.RawMessage `json:"detail"`
		Redirect string          `json:"redirect"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return api.FormResponse{}, false
	}

	out := api.FormResponse{Message: body.Message, Redirect: body.Redirect}
	var detail string
	var items []struct {
		Msg string `json:"msg"`
	}
	switch {
	case len(body.Detail) == 0:
	case json.Unmarshal(body.Detail, &detail) == nil:
		out.Detail = detail
	case json.Unmarshal(body.Detail, &items) == nil && len(items) > 0:
		out.Detail = items[0].Msg
	}
	return out, true
}
