package api

// Shapes exchanged with the blog API and with the browser.

// FormResponse is the JSON body the blog API answers form submissions with.
type FormResponse struct {
	Message  string `json:"message,omitempty"`
	Detail   string `json:"detail,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// Text returns the human readable part, preferring detail.
func (r FormResponse) Text() string {
	if r.Detail != "" {
		return r.Detail
	}
	return r.Message
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

type FavoriteStatusResponse struct {
	IsFavorited bool `json:"is_favorited"`
}

// Responses of the frontend's own JSON endpoints

type ToggleResponse struct {
	Active  bool   `json:"active"`
	Count   int    `json:"count"`
	Label   string `json:"label"`
	Pending bool   `json:"pending"`
	Error   string `json:"error,omitempty"`
}

type FlashMessage struct {
	Id   uint64 `json:"id"`
	Kind string `json:"kind"`
	Text string `json:"text"`
}

type FlashResponse struct {
	Container bool           `json:"container"`
	Messages  []FlashMessage `json:"messages"`
}

type FormOutcomeResponse struct {
	Prevented         bool          `json:"prevented"`
	Redirect          string        `json:"redirect,omitempty"`
	Flash             *FlashMessage `json:"flash,omitempty"`
	NeedsConfirmation bool          `json:"needs_confirmation,omitempty"`
	Prompt            string        `json:"prompt,omitempty"`
}
