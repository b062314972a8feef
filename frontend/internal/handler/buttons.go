package handler

import (
	"context"
	"net/http"
	"sync"

	"github.com/quillpress/quill/frontend/internal/apiclient"
	frontend_domain "github.com/quillpress/quill/frontend/internal/domain"
	"github.com/quillpress/quill/frontend/internal/session"
	"github.com/quillpress/quill/frontend/internal/toggle"
	"github.com/quillpress/quill/shared/domain"
	"github.com/quillpress/quill/shared/logger"
	mw "github.com/quillpress/quill/shared/middleware"
)

const excerptLength = 280

// register records the state the page is about to show. When the API could
// not tell us the state, what this session last knew wins over a guess.
func register(sess *session.Session, target toggle.Target, active bool, known bool, count int) *frontend_domain.ToggleButton {
	if !known {
		if v, ok := sess.Toggles.View(target); ok {
			active = v.Active
		}
	}
	return &frontend_domain.ToggleButton{Target: target, View: sess.Toggles.Register(target, active, count)}
}

func (h *Handler) likeButton(ctx context.Context, creds apiclient.Credentials, sess *session.Session, post domain.Post) *frontend_domain.ToggleButton {
	liked, err := h.APIClient.FavoriteStatus(ctx, creds, post.Id)
	if err != nil {
		logger.Log.Warn("favorite status unavailable", "post_id", post.Id, "error", err)
	}
	return register(sess, toggle.Favorite(post.Id), liked, err == nil, post.LikesCount)
}

func (h *Handler) followButton(ctx context.Context, creds apiclient.Credentials, sess *session.Session, viewer *domain.User, author domain.UserProfile) *frontend_domain.ToggleButton {
	if viewer == nil || viewer.Id == author.Id {
		return nil
	}
	following, err := h.APIClient.IsFollowing(ctx, creds, viewer.Id, author.Id)
	if err != nil {
		logger.Log.Warn("follow status unavailable", "user_id", author.Id, "error", err)
	}
	return register(sess, toggle.Follow(author.Id), following, err == nil, author.FollowersCount)
}

// statusLookups bounds the favorite status requests one page of cards runs
// at once.
const statusLookups = 4

// excerpt prefers the summary, otherwise the content reduced to plain text.
func (h *Handler) excerpt(p domain.Post) string {
	p.Content = h.TextProcessor.Plain(p.Content)
	return p.Excerpt(excerptLength)
}

// postCards builds list cards in the order given. Like buttons are only
// offered to signed-in viewers; anonymous ones see the count.
func (h *Handler) postCards(r *http.Request, sess *session.Session, posts []domain.Post) []*frontend_domain.PostCard {
	viewer := mw.GetUserFromContext(r)
	creds := apiclient.CredentialsFromRequest(r)

	cards := make([]*frontend_domain.PostCard, len(posts))
	for i, p := range posts {
		cards[i] = &frontend_domain.PostCard{Post: p, Excerpt: h.excerpt(p)}
	}
	if viewer == nil {
		return cards
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, statusLookups)
	for _, card := range cards {
		sem <- struct{}{}
		wg.Add(1)
		go func(card *frontend_domain.PostCard) {
			defer func() {
				<-sem
				wg.Done()
			}()
			card.Like = h.likeButton(r.Context(), creds, sess, card.Post)
		}(card)
	}
	wg.Wait()
	return cards
}
