// Package forms relays data-ajax form submissions to the blog API and turns
// the API's answer into a redirect or a flash message.
package forms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/quillpress/quill/frontend/internal/flash"
	"github.com/quillpress/quill/shared/api"
	"github.com/quillpress/quill/shared/csrf"
	internal_errors "github.com/quillpress/quill/shared/errors"
)

const GenericNetworkError = "Network error. Please try again."

// Control fields understood by the interceptor. They never reach the API.
const (
	FieldAction    = "_action"
	FieldMethod    = "_method"
	FieldConfirm   = "_confirm"
	FieldConfirmed = "_confirmed"
	FieldRedirect  = "_redirect"
	FieldAjax      = "_ajax"
)

var controlFields = []string{FieldAction, FieldMethod, FieldConfirm, FieldConfirmed, FieldRedirect, FieldAjax, csrf.FormField}

type Form struct {
	Action   string // blog API path, e.g. /api/posts/3
	Method   string
	Values   url.Values
	Ajax     bool
	Confirm  string // prompt shown before a destructive submit
	Fallback string // where to go after a success that names no redirect
}

// Response is the blog API's answer to a form submission.
type Response struct {
	StatusCode int
	Body       api.FormResponse
}

type Submitter interface {
	SubmitForm(ctx context.Context, method, action string, values url.Values) (Response, error)
}

type SubmitterFunc func(ctx context.Context, method, action string, values url.Values) (Response, error)

func (f SubmitterFunc) SubmitForm(ctx context.Context, method, action string, values url.Values) (Response, error) {
	return f(ctx, method, action, values)
}

type Flash struct {
	Kind flash.Kind
	Text string
}

type Outcome struct {
	Prevented         bool
	Submitted         bool
	NeedsConfirmation bool
	Prompt            string
	Redirect          string
	Flash             *Flash
	StatusCode        int // upstream status, 0 when nothing was sent or the network failed
}

// Intercept submits form unless it still needs confirmation. The default
// browser submit of an ajax form is prevented whatever happens next.
func Intercept(ctx context.Context, form Form, submitter Submitter, confirmed bool) Outcome {
	out := Outcome{Prevented: form.Ajax}

	if form.Confirm != "" && !confirmed {
		out.NeedsConfirmation = true
		out.Prompt = form.Confirm
		return out
	}

	resp, err := submitter.SubmitForm(ctx, EffectiveMethod(form.Method), form.Action, StripControlFields(form.Values))
	out.Submitted = true
	if err != nil {
		out.Flash = &Flash{Kind: flash.Error, Text: GenericNetworkError}
		return out
	}
	out.StatusCode = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := resp.Body.Text()
		if text == "" {
			text = fmt.Sprintf("Request failed (status %d)", resp.StatusCode)
		}
		out.Flash = &Flash{Kind: flash.Error, Text: text}
		return out
	}

	if redirect, ok := SafeRedirect(resp.Body.Redirect); ok {
		out.Redirect = redirect
	} else if fallback, ok := SafeRedirect(form.Fallback); ok {
		out.Redirect = fallback
	}
	if text := resp.Body.Text(); text != "" {
		out.Flash = &Flash{Kind: flash.Success, Text: text}
	}
	return out
}

// EffectiveMethod applies the _method override; anything unknown is POST.
func EffectiveMethod(method string) string {
	switch m := strings.ToUpper(strings.TrimSpace(method)); m {
	case http.MethodPut, http.MethodPatch, http.MethodDelete:
		return m
	default:
		return http.MethodPost
	}
}

func StripControlFields(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for k, v := range values {
		out[k] = v
	}
	for _, f := range controlFields {
		out.Del(f)
	}
	return out
}

// SafeRedirect accepts only same-origin paths.
func SafeRedirect(target string) (string, bool) {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "", false
	}
	return target, true
}

// maxFormMemory bounds a multipart body kept in memory. Files are never
// relayed.
const maxFormMemory = 1 << 20

var errInvalidForm = &internal_errors.ErrorWithStatusCode{Message: "Invalid form data", StatusCode: http.StatusBadRequest}

// FromRequest reads a relayed form from the frontend request, urlencoded or
// multipart. The action must be a blog API path.
func FromRequest(r *http.Request) (Form, bool, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return Form{}, false, errInvalidForm
		}
	} else if err := r.ParseForm(); err != nil {
		return Form{}, false, errInvalidForm
	}

	action := r.PostForm.Get(FieldAction)
	if !strings.HasPrefix(action, "/api/") || strings.Contains(action, "..") {
		return Form{}, false, &internal_errors.ErrorWithStatusCode{Message: "Invalid form action", StatusCode: http.StatusBadRequest}
	}

	form := Form{
		Action:   action,
		Method:   r.PostForm.Get(FieldMethod),
		Values:   r.PostForm,
		Ajax:     r.PostForm.Get(FieldAjax) == "1" || r.Header.Get("X-Requested-With") == "fetch",
		Confirm:  r.PostForm.Get(FieldConfirm),
		Fallback: r.PostForm.Get(FieldRedirect),
	}
	confirmed := r.PostForm.Get(FieldConfirmed) == "1"
	return form, confirmed, nil
}
