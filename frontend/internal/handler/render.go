package handler

import (
	"bytes"
	"fmt"
	"net/http"

	frontend_domain "github.com/quillpress/quill/frontend/internal/domain"
	frontend_mw "github.com/quillpress/quill/frontend/internal/middleware"
	"github.com/quillpress/quill/frontend/internal/session"
	"github.com/quillpress/quill/shared/logger"
	mw "github.com/quillpress/quill/shared/middleware"
)

// PartialsTemplate is parsed on its own as well, for fragments served to the
// page script.
const PartialsTemplate = "partials.html"

// TemplateData wraps page-specific data with common template data.
// Templates access page data via .Data and common data via .Common.
type TemplateData struct {
	Data   any
	Common frontend_domain.CommonTemplateData
}

func (h *Handler) initCommonTemplateData(r *http.Request) frontend_domain.CommonTemplateData {
	common := frontend_domain.CommonTemplateData{
		User:      mw.GetUserFromContext(r),
		CSRFToken: frontend_mw.GetCSRFTokenFromContext(r),
		Client: frontend_domain.ClientSettings{
			ScrollThreshold: h.Public.ScrollThreshold,
			FlashTTLMillis:  h.Public.FlashTTL.Milliseconds(),
		},
	}
	if sess := session.FromRequest(r); sess != nil {
		common.Flash = frontend_domain.FlashData{
			Container: sess.Flash.HasContainer(),
			Messages:  sess.Flash.Messages(),
		}
	}
	return common
}

func (h *Handler) renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	h.renderTemplateWithError(w, r, name, data, "")
}

func (h *Handler) renderTemplateWithError(w http.ResponseWriter, r *http.Request, name string, data any, errMsg string) {
	tmpl, ok := h.Templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("Template %s not found", name), http.StatusInternalServerError)
		return
	}

	common := h.initCommonTemplateData(r)
	if errMsg != "" {
		common.Error = errMsg
	}

	wrapped := TemplateData{
		Data:   data,
		Common: common,
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, wrapped); err != nil {
		logger.Log.Error("error executing template", "template", name, "error", err)
		http.Error(w, "Internal Server Error rendering template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// renderPartial executes one named block of the partials file.
func (h *Handler) renderPartial(w http.ResponseWriter, name string, data any) {
	tmpl, ok := h.Templates[PartialsTemplate]
	if !ok {
		http.Error(w, "Partials not loaded", http.StatusInternalServerError)
		return
	}

	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, name, data); err != nil {
		logger.Log.Error("error executing partial", "partial", name, "error", err)
		http.Error(w, "Internal Server Error rendering template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
