package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/quillpress/quill/frontend/internal/apiclient"
	"github.com/quillpress/quill/frontend/internal/metrics"
	"github.com/quillpress/quill/frontend/internal/toggle"
	"github.com/quillpress/quill/shared/api"
	internal_errors "github.com/quillpress/quill/shared/errors"
	mw "github.com/quillpress/quill/shared/middleware"
	"github.com/quillpress/quill/shared/utils"
)

func (h *Handler) FavoriteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseId(r, "id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	h.toggle(w, r, toggle.Favorite(id))
}

func (h *Handler) FollowHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseId(r, "id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	h.toggle(w, r, toggle.Follow(id))
}

// toggle clicks a like or follow button. Failures change nothing on the page
// and are not flashed; the script only gets the unchanged state back.
func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, target toggle.Target) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	var (
		view toggle.View
		err  = target.CheckViewer(mw.GetUserFromContext(r))
	)
	if err == nil {
		view, err = sess.Toggles.Click(r.Context(), target, h.requester(apiclient.CredentialsFromRequest(r)))
		if errors.Is(err, toggle.ErrUnknownButton) {
			// rendered before this session existed: trust the page's attributes
			active, _ := strconv.ParseBool(r.FormValue("active"))
			count, _ := strconv.Atoi(r.FormValue("count"))
			sess.Toggles.Register(target, active, count)
			view, err = sess.Toggles.Click(r.Context(), target, h.requester(apiclient.CredentialsFromRequest(r)))
		}
	} else if v, known := sess.Toggles.View(target); known {
		view = v
	} else {
		view = toggle.View{Label: toggle.LabelsFor(target.Relation).For(false)}
	}

	status := http.StatusOK
	result := metrics.ToggleOK
	switch {
	case err == nil:
	case errors.Is(err, toggle.ErrInFlight):
		status, result = http.StatusConflict, metrics.ToggleInFlight
	default:
		status, result = internal_errors.StatusCode(err), metrics.ToggleFailed
	}
	metrics.ToggleRequests.WithLabelValues(target.Relation, result).Inc()

	if !utils.WantsJSON(r) {
		http.Redirect(w, r, backTo(r, "/"), http.StatusSeeOther)
		return
	}

	resp := api.ToggleResponse{Active: view.Active, Count: view.Count, Label: view.Label, Pending: view.Pending}
	if err != nil {
		resp.Error = errorText(err)
	}
	utils.WriteJSON(w, status, resp)
}

// errorText is what the page script may log: the API's own message when it
// sent one.
func errorText(err error) string {
	var withStatus *internal_errors.ErrorWithStatusCode
	if errors.As(err, &withStatus) {
		return withStatus.Message
	}
	if errors.Is(err, apiclient.ErrUnavailable) {
		return apiclient.ErrUnavailable.Error()
	}
	return err.Error()
}
