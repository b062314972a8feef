package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/quillpress/quill/shared/domain"
)

func (c *APIClient) GetCategory(ctx context.Context, creds Credentials, id domain.CategoryId) (domain.Category, error) {
	var category domain.Category
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/categories/%d", id), nil, "", creds)
	if err != nil {
		return category, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return category, errorFromResponse(resp)
	}
	if err := decodeResponse(resp, "category", &category); err != nil {
		return category, err
	}
	return category, nil
}

// ListCategories returns every category, for the post editor's picker.
func (c *APIClient) ListCategories(ctx context.Context, creds Credentials) ([]domain.Category, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/categories?page_size=100", nil, "", creds)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, errorFromResponse(resp)
	}
	var categories []domain.Category
	if err := decodeResponse(resp, "categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}
