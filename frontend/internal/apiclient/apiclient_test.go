package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/quillpress/quill/shared/csrf"
	"github.com/quillpress/quill/shared/domain"
	internal_errors "github.com/quillpress/quill/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCreds = Credentials{
	Cookies:   []*http.Cookie{{Name: "accessToken", Value: "jwt"}, {Name: csrf.CookieName, Value: "tok"}},
	CSRFToken: "tok",
}

func newTestClient(t *testing.T, h http.HandlerFunc) *APIClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", 20, 0)
}

func TestCredentialsFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "accessToken", Value: "jwt"})
	r.AddCookie(&http.Cookie{Name: csrf.CookieName, Value: "tok"})
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "sid"})

	creds := CredentialsFromRequest(r)

	assert.Equal(t, "tok", creds.CSRFToken)
	require.Len(t, creds.Cookies, 2)
	for _, c := range creds.Cookies {
		assert.NotEqual(t, SessionCookie, c.Name)
	}
}

func TestListPosts(t *testing.T) {
	var seen *http.Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":1,"title":"First","content":"c","author":{"id":7,"login":"alice"},
			"created_at":"2024-05-01T10:00:00Z","categories":[{"id":3,"name":"go"}],"likes_count":4,"comments_count":2}]`)
	})

	posts, err := client.ListPosts(context.Background(), testCreds, ListQuery{Page: 2, CategoryId: 3})

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "First", posts[0].Title)
	assert.Equal(t, "alice", posts[0].Author.Login)
	assert.Equal(t, []domain.Category{{Id: 3, Name: "go"}}, posts[0].Categories)
	assert.Equal(t, 4, posts[0].LikesCount)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), posts[0].CreatedAt)

	assert.Equal(t, "/api/posts", seen.URL.Path)
	assert.Equal(t, url.Values{"page": {"2"}, "page_size": {"20"}, "category_id": {"3"}}, seen.URL.Query())
	cookie, err := seen.Cookie("accessToken")
	require.NoError(t, err)
	assert.Equal(t, "jwt", cookie.Value)
	assert.Empty(t, seen.Header.Get(csrf.HeaderName), "reads carry no csrf header")
}

func TestListPosts_Errors(t *testing.T) {
	t.Run("api error detail", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"detail":"page must be >= 1"}`)
		})
		_, err := client.ListPosts(context.Background(), testCreds, ListQuery{Page: 0})
		require.Error(t, err)
		assert.Equal(t, "page must be >= 1", err.Error())
		assert.Equal(t, http.StatusBadRequest, internal_errors.StatusCode(err))
	})

	t.Run("validation error list", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = io.WriteString(w, `{"detail":[{"loc":["query","page"],"msg":"value is not a valid integer"}]}`)
		})
		_, err := client.ListPosts(context.Background(), testCreds, ListQuery{Page: 1})
		require.Error(t, err)
		assert.Equal(t, "value is not a valid integer", err.Error())
	})

	t.Run("non json error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "oops", http.StatusInternalServerError)
		})
		_, err := client.ListPosts(context.Background(), testCreds, ListQuery{Page: 1})
		require.Error(t, err)
		assert.Equal(t, "backend returned status 500", err.Error())
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		client := New(srv.URL, 20, 0)
		_, err := client.ListPosts(context.Background(), testCreds, ListQuery{Page: 1})
		require.ErrorIs(t, err, ErrUnavailable)
	})
}

func TestGetPostAndFavoriteStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/posts/5":
			_, _ = io.WriteString(w, `{"id":5,"title":"Five","content":"**bold**","author":{"id":1,"login":"bob"},"created_at":"2024-05-01T10:00:00Z","categories":[],"likes_count":0,"comments_count":0}`)
		case "/api/posts/5/favorite/status":
			_, _ = io.WriteString(w, `{"is_favorited":true}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"detail":"Post not found"}`)
		}
	})

	post, err := client.GetPost(context.Background(), testCreds, 5)
	require.NoError(t, err)
	assert.Equal(t, "Five", post.Title)

	fav, err := client.FavoriteStatus(context.Background(), testCreds, 5)
	require.NoError(t, err)
	assert.True(t, fav)

	_, err = client.GetPost(context.Background(), testCreds, 6)
	require.Error(t, err)
	assert.True(t, internal_errors.IsNotFound(err))
}

func TestSetRelation(t *testing.T) {
	tests := []struct {
		name       string
		activate   bool
		status     int
		body       string
		wantMethod string
		wantErr    string
	}{
		{"follow", true, http.StatusCreated, `{"detail":"User followed successfully"}`, http.MethodPost, ""},
		{"unfollow", false, http.StatusNoContent, ``, http.MethodDelete, ""},
		{"already following", true, http.StatusBadRequest, `{"detail":"Already following this user"}`, http.MethodPost, "Already following this user"},
		{"not following", false, http.StatusNotFound, `{"detail":"Not following this user"}`, http.MethodDelete, "Not following this user"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *http.Request
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				seen = r
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			err := client.SetRelation(context.Background(), testCreds, "/api/users/7/follow", tt.activate)

			assert.Equal(t, tt.wantMethod, seen.Method)
			assert.Equal(t, "/api/users/7/follow", seen.URL.Path)
			assert.Equal(t, "tok", seen.Header.Get(csrf.HeaderName))
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
			assert.Equal(t, tt.status, internal_errors.StatusCode(err))
		})
	}
}

func TestSubmitForm(t *testing.T) {
	t.Run("forwards form and decodes body", func(t *testing.T) {
		var gotForm url.Values
		var gotMethod, gotToken string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			gotForm = r.PostForm
			gotMethod = r.Method
			gotToken = r.Header.Get(csrf.HeaderName)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Post created", "redirect": "/posts/9/view"})
		})

		res, err := client.SubmitForm(context.Background(), testCreds, http.MethodPut, "/api/posts/9", url.Values{"title": {"T"}})

		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, res.StatusCode)
		assert.Equal(t, "Post created", res.Body.Message)
		assert.Equal(t, "/posts/9/view", res.Body.Redirect)
		assert.Equal(t, http.MethodPut, gotMethod)
		assert.Equal(t, "T", gotForm.Get("title"))
		assert.Equal(t, "tok", gotToken)
	})

	t.Run("non json body reads as empty", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "<html>ok</html>")
		})
		res, err := client.SubmitForm(context.Background(), testCreds, http.MethodPost, "/api/posts", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Empty(t, res.Body.Text())
	})

	t.Run("error status is a result", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = io.WriteString(w, `{"detail":"Not enough permissions"}`)
		})
		res, err := client.SubmitForm(context.Background(), testCreds, http.MethodDelete, "/api/posts/1", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, res.StatusCode)
		assert.Equal(t, "Not enough permissions", res.Body.Detail)
	})
}

func TestDecodeResponse_RejectsIncompleteBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
		call func(c *APIClient) error
	}{
		{
			name: "post without title",
			body: `{"id":5,"content":"c","author":{"id":1,"login":"bob"}}`,
			call: func(c *APIClient) error { _, err := c.GetPost(context.Background(), testCreds, 5); return err },
		},
		{
			name: "post without author id",
			body: `{"id":5,"title":"Five","author":{"login":"bob"}}`,
			call: func(c *APIClient) error { _, err := c.GetPost(context.Background(), testCreds, 5); return err },
		},
		{
			name: "list element without id",
			body: `[{"id":1,"title":"a","author":{"id":1}},{"title":"b","author":{"id":1}}]`,
			call: func(c *APIClient) error {
				_, err := c.ListPosts(context.Background(), testCreds, ListQuery{Page: 1})
				return err
			},
		},
		{
			name: "html instead of json",
			body: `<html>maintenance</html>`,
			call: func(c *APIClient) error { _, err := c.GetPost(context.Background(), testCreds, 5); return err },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			})

			err := tt.call(client)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrBadResponse)
			assert.Equal(t, http.StatusBadGateway, internal_errors.StatusCode(err))
		})
	}
}

func TestListPosts_Following(t *testing.T) {
	var seen *http.Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r
		_, _ = io.WriteString(w, `[{"id":3,"title":"From a friend","author":{"id":9,"login":"carol"}}]`)
	})

	posts, err := client.ListPosts(context.Background(), testCreds, ListQuery{Page: 1, Following: true, CategoryId: 4})

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "carol", posts[0].Author.Login)
	assert.Equal(t, "/api/me/feed", seen.URL.Path)
	assert.Equal(t, url.Values{"page": {"1"}, "page_size": {"20"}}, seen.URL.Query())
	cookie, err := seen.Cookie("accessToken")
	require.NoError(t, err)
	assert.Equal(t, "jwt", cookie.Value)
}

func TestListComments(t *testing.T) {
	var seen *http.Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r
		_, _ = io.WriteString(w, `[{"id":11,"post_id":5,"user_id":7,"content":"Nice","created_at":"2024-05-02T08:00:00Z","user":{"id":7,"login":"alice"}},
			{"id":12,"post_id":5,"user_id":8,"content":"Agreed","parent_id":11,"is_edited":true,"created_at":"2024-05-02T09:00:00Z"}]`)
	})

	comments, err := client.ListComments(context.Background(), testCreds, 5, 2)

	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "alice", comments[0].AuthorLogin())
	assert.Equal(t, "user #8", comments[1].AuthorLogin())
	require.NotNil(t, comments[1].ParentId)
	assert.Equal(t, int64(11), *comments[1].ParentId)
	assert.True(t, comments[1].IsEdited)
	assert.Equal(t, "/api/posts/5/comments", seen.URL.Path)
	assert.Equal(t, url.Values{"page": {"2"}, "page_size": {"20"}}, seen.URL.Query())
}

func TestListComments_UnpublishedPost(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"Post not found"}`)
	})

	_, err := client.ListComments(context.Background(), testCreds, 5, 1)
	require.Error(t, err)
	assert.True(t, internal_errors.IsNotFound(err))
}
