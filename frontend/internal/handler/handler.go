package handler

import (
	"html/template"
	"net/http"

	"github.com/quillpress/quill/frontend/internal/apiclient"
	"github.com/quillpress/quill/frontend/internal/markdown"
	"github.com/quillpress/quill/shared/config"
	"github.com/quillpress/quill/shared/utils"
)

type Handler struct {
	Templates     map[string]*template.Template
	Public        config.Public
	TextProcessor *markdown.TextProcessor
	APIClient     *apiclient.APIClient
}

func New(templates map[string]*template.Template, publicCfg config.Public, textProcessor *markdown.TextProcessor, apiClient *apiclient.APIClient) *Handler {
	return &Handler{
		Templates:     templates,
		Public:        publicCfg,
		TextProcessor: textProcessor,
		APIClient:     apiClient,
	}
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
