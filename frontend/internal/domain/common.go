package frontend_domain

import (
	"github.com/quillpress/quill/frontend/internal/flash"
	"github.com/quillpress/quill/shared/domain"
)

// CommonTemplateData holds fields that are common to all page templates.
// Available in templates as .Common via the TemplateData wrapper.
type CommonTemplateData struct {
	Error     string
	User      *domain.User
	CSRFToken string // double-submit token, also read from the cookie by the page script
	Flash     FlashData
	Client    ClientSettings
}

// FlashData is the server-side flash container as it stands when the page
// is rendered.
type FlashData struct {
	Container bool
	Messages  []flash.Message
}

// ClientSettings are handed to the page script through data attributes.
type ClientSettings struct {
	ScrollThreshold int
	FlashTTLMillis  int64
}
