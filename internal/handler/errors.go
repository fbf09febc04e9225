package handler

import (
	"net/http"

	"github.com/efreitasn/apife/internal/domain"
)

// errorCategoryResponse is one entry of the error table.
type errorCategoryResponse struct {
	ID         int    `json:"id"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"http_status"`
}

// errorCategoryListResponse is the JSON response for GET /api/v0.1/errors.
type errorCategoryListResponse struct {
	Errors []errorCategoryResponse `json:"errors"`
}

// ListErrorCategories handles GET /api/v0.1/errors, publishing the error
// codes clients may receive.
func ListErrorCategories(w http.ResponseWriter, r *http.Request) {
	categories := domain.Categories()
	resp := make([]errorCategoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = errorCategoryResponse{
			ID:         c.ID(),
			Message:    c.Message(),
			HTTPStatus: c.HTTPStatus(),
		}
	}
	WriteJSON(w, http.StatusOK, errorCategoryListResponse{Errors: resp})
}
