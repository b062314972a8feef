package handler

import (
	"net/http"

	"github.com/quillpress/quill/frontend/internal/apiclient"
	"github.com/quillpress/quill/frontend/internal/flash"
	"github.com/quillpress/quill/frontend/internal/forms"
	"github.com/quillpress/quill/frontend/internal/metrics"
	"github.com/quillpress/quill/shared/api"
	internal_errors "github.com/quillpress/quill/shared/errors"
	"github.com/quillpress/quill/shared/utils"
)

func formResult(out forms.Outcome) string {
	switch {
	case out.NeedsConfirmation:
		return metrics.FormConfirm
	case out.StatusCode == 0:
		return metrics.FormNetwork
	case out.StatusCode < 200 || out.StatusCode > 299:
		return metrics.FormRejected
	case out.Redirect != "":
		return metrics.FormRedirect
	}
	return metrics.FormSuccess
}

// FormSubmitHandler relays a form to the blog API. Ajax forms get the outcome
// as JSON; plain forms are answered with a redirect. Any flash goes to the
// session so it also survives the navigation.
func (h *Handler) FormSubmitHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	form, confirmed, err := forms.FromRequest(r)
	if err != nil {
		if !utils.WantsJSON(r) {
			utils.WriteErrorAndStatusCode(w, err)
			return
		}
		// the script reads every answer as an outcome
		msg := sess.Flash.Show(flash.Error, err.Error())
		metrics.FlashShown.WithLabelValues(string(msg.Kind)).Inc()
		utils.WriteJSON(w, internal_errors.StatusCode(err), api.FormOutcomeResponse{Prevented: true, Flash: flashMessage(msg)})
		return
	}

	out := forms.Intercept(r.Context(), form, h.submitter(apiclient.CredentialsFromRequest(r)), confirmed)
	metrics.FormSubmissions.WithLabelValues(formResult(out)).Inc()

	var shown *flash.Message
	if out.Flash != nil {
		msg := sess.Flash.Show(out.Flash.Kind, out.Flash.Text)
		metrics.FlashShown.WithLabelValues(string(msg.Kind)).Inc()
		shown = &msg
	}

	if form.Ajax {
		resp := api.FormOutcomeResponse{
			Prevented:         out.Prevented,
			Redirect:          out.Redirect,
			NeedsConfirmation: out.NeedsConfirmation,
			Prompt:            out.Prompt,
		}
		if shown != nil {
			resp.Flash = flashMessage(*shown)
		}
		utils.WriteJSON(w, http.StatusOK, resp)
		return
	}

	if out.NeedsConfirmation {
		// without the script there is no prompt; the page offers a confirm box instead
		msg := sess.Flash.Show(flash.Info, out.Prompt)
		metrics.FlashShown.WithLabelValues(string(msg.Kind)).Inc()
	}
	target := out.Redirect
	if target == "" {
		target = backTo(r, "/")
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
