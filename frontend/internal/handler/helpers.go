package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/quillpress/quill/frontend/internal/apiclient"
	"github.com/quillpress/quill/frontend/internal/forms"
	"github.com/quillpress/quill/frontend/internal/session"
	"github.com/quillpress/quill/shared/domain"
	internal_errors "github.com/quillpress/quill/shared/errors"
	"github.com/quillpress/quill/shared/utils"
)

var errNoSession = &internal_errors.ErrorWithStatusCode{Message: "Session unavailable", StatusCode: http.StatusInternalServerError}

func requireSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess := session.FromRequest(r)
	if sess == nil {
		utils.WriteErrorAndStatusCode(w, errNoSession)
		return nil, false
	}
	return sess, true
}

func parseId(r *http.Request, param string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		return 0, &internal_errors.ErrorWithStatusCode{Message: "Invalid id", StatusCode: http.StatusBadRequest}
	}
	return id, nil
}

// backTo returns the same-origin page the request came from, or fallback.
func backTo(r *http.Request, fallback string) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != r.Host) {
		return fallback
	}
	target := ref.Path
	if ref.RawQuery != "" {
		target += "?" + ref.RawQuery
	}
	if safe, ok := forms.SafeRedirect(target); ok {
		return safe
	}
	return fallback
}

// List keys name the independent feeds a session can scroll.
const (
	homeList       = "home"
	followingList  = "following"
	categoryPrefix = "category-"
	authorPrefix   = "author-"
	commentsPrefix = "comments-"
)

func categoryList(id int64) string { return categoryPrefix + strconv.FormatInt(id, 10) }

func authorList(id int64) string { return authorPrefix + strconv.FormatInt(id, 10) }

func commentsList(postId int64) string { return commentsPrefix + strconv.FormatInt(postId, 10) }

// parseCommentsKey reports whether key names a comment thread.
func parseCommentsKey(key string) (domain.PostId, bool) {
	rest, ok := strings.CutPrefix(key, commentsPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

var errUnknownList = &internal_errors.ErrorWithStatusCode{Message: "Unknown list", StatusCode: http.StatusNotFound}

func parseListKey(key string) (apiclient.ListQuery, error) {
	switch key {
	case homeList:
		return apiclient.ListQuery{}, nil
	case followingList:
		return apiclient.ListQuery{Following: true}, nil
	}
	for _, prefix := range []string{categoryPrefix, authorPrefix} {
		rest, ok := strings.CutPrefix(key, prefix)
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil || id <= 0 {
			return apiclient.ListQuery{}, errUnknownList
		}
		if prefix == categoryPrefix {
			return apiclient.ListQuery{CategoryId: id}, nil
		}
		return apiclient.ListQuery{AuthorId: id}, nil
	}
	return apiclient.ListQuery{}, errUnknownList
}
