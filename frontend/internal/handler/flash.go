package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/quillpress/quill/frontend/internal/flash"
	"github.com/quillpress/quill/shared/api"
	internal_errors "github.com/quillpress/quill/shared/errors"
	"github.com/quillpress/quill/shared/utils"
)

func flashMessage(m flash.Message) *api.FlashMessage {
	return &api.FlashMessage{Id: m.Id, Kind: string(m.Kind), Text: m.Text}
}

func flashResponse(m *flash.Messenger) api.FlashResponse {
	resp := api.FlashResponse{Container: m.HasContainer(), Messages: []api.FlashMessage{}}
	for _, msg := range m.Messages() {
		resp.Messages = append(resp.Messages, *flashMessage(msg))
	}
	return resp
}

func (h *Handler) FlashGetHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	utils.WriteJSON(w, http.StatusOK, flashResponse(sess.Flash))
}

// FlashDismissHandler removes one message ahead of its timeout.
func (h *Handler) FlashDismissHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, &internal_errors.ErrorWithStatusCode{Message: "Invalid id", StatusCode: http.StatusBadRequest})
		return
	}

	sess.Flash.Remove(id)
	if !utils.WantsJSON(r) {
		http.Redirect(w, r, backTo(r, "/"), http.StatusSeeOther)
		return
	}
	utils.WriteJSON(w, http.StatusOK, flashResponse(sess.Flash))
}
