package frontend_domain

import (
	"html/template"

	"github.com/quillpress/quill/shared/domain"
)

type ListPageData struct {
	Title   string
	ListKey string
	Author  *domain.UserProfile
	Follow  *ToggleButton
	Cards   []*PostCard
	Page    int
	HasMore bool
}

type PostPageData struct {
	Post     domain.Post
	Content  template.HTML
	Like     *ToggleButton
	Follow   *ToggleButton
	CanEdit  bool
	Comments CommentSection
}

// CommentSection is the first page of a post's thread plus what the page
// script needs to scroll further.
type CommentSection struct {
	ListKey  string
	Items    []*CommentView
	Page     int
	HasMore  bool
	Error    string
	CanWrite bool
}

// PostFormPageData backs both the create and the edit form. Action and Method
// address the blog API through the form relay.
type PostFormPageData struct {
	Post       *domain.Post
	Action     string
	Method     string
	Redirect   string
	Categories []CategoryOption
}

type CategoryOption struct {
	Category domain.Category
	Selected bool
}

// CommentsFragmentData is rendered for each further page of comments.
type CommentsFragmentData struct {
	Items []*CommentView
}

// FeedFragmentData is rendered for each infinite scroll page.
type FeedFragmentData struct {
	Cards     []*PostCard
	CSRFToken string
}
