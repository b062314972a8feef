package domain

import (
	"fmt"
	"time"
)

type (
	UserId     = int64
	PostId     = int64
	CategoryId = int64
	Login      = string
)

// User is the viewer identity decoded from the blog API's access token.
type User struct {
	Id    UserId
	Login Login
	Admin bool
}

type Author struct {
	Id    UserId `json:"id" validate:"required"`
	Login Login  `json:"login"`
}

type Category struct {
	Id   CategoryId `json:"id" validate:"required"`
	Name string     `json:"name"`
}

type Post struct {
	Id            PostId     `json:"id" validate:"required"`
	Title         string     `json:"title" validate:"required"`
	Content       string     `json:"content"`
	Summary       *string    `json:"summary,omitempty"`
	Slug          string     `json:"slug,omitempty"`
	Author        Author     `json:"author"`
	Categories    []Category `json:"categories"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	ViewCount     int        `json:"view_count,omitempty"`
	LikesCount    int        `json:"likes_count"`
	CommentsCount int        `json:"comments_count"`
}

// Excerpt returns the summary when present, otherwise the content cut to
// at most limit runes.
func (p Post) Excerpt(limit int) string {
	if p.Summary != nil && *p.Summary != "" {
		return *p.Summary
	}
	runes := []rune(p.Content)
	if len(runes) <= limit {
		return p.Content
	}
	return string(runes[:limit]) + "…"
}

// Comment is one entry of a post's comment thread. ParentId is set on
// replies.
type Comment struct {
	Id        int64      `json:"id" validate:"required"`
	PostId    PostId     `json:"post_id"`
	UserId    UserId     `json:"user_id"`
	Content   string     `json:"content"`
	ParentId  *int64     `json:"parent_id,omitempty"`
	IsEdited  bool       `json:"is_edited"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	User      *Author    `json:"user,omitempty"`
}

// AuthorLogin names the commenter, falling back to the numeric id when the
// API did not embed the user.
func (c Comment) AuthorLogin() string {
	if c.User != nil && c.User.Login != "" {
		return c.User.Login
	}
	return fmt.Sprintf("user #%d", c.UserId)
}

// UserProfile is a public user page as served by the blog API.
type UserProfile struct {
	Id             UserId  `json:"id"`
	Login          Login   `json:"login"`
	FullName       *string `json:"full_name,omitempty"`
	Bio            *string `json:"bio,omitempty"`
	PostsCount     int     `json:"posts_count"`
	FollowersCount int     `json:"followers_count"`
	FollowingCount int     `json:"following_count"`
}

// DisplayName prefers the full name over the login.
func (u UserProfile) DisplayName() string {
	if u.FullName != nil && *u.FullName != "" {
		return *u.FullName
	}
	return u.Login
}
