package frontend_domain

import (
	"fmt"
	"html/template"

	"github.com/quillpress/quill/frontend/internal/toggle"
	"github.com/quillpress/quill/shared/domain"
)

// ToggleButton is a like or follow button as rendered into the page.
type ToggleButton struct {
	Target toggle.Target
	View   toggle.View
}

// Action is the frontend route the button posts to.
func (b ToggleButton) Action() string {
	return fmt.Sprintf("/%s/%d/%s", b.Target.Resource, b.Target.Id, b.Target.Relation)
}

// PostCard is one post in a list.
type PostCard struct {
	Post    domain.Post
	Excerpt string
	Like    *ToggleButton // nil for anonymous viewers
}

// CommentView is one comment with its content rendered.
type CommentView struct {
	Comment domain.Comment
	Author  string
	Content template.HTML
}
