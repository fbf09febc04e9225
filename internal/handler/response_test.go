package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/efreitasn/apife/internal/domain"
)

func decodeErrorResponse(t *testing.T, w *httptest.ResponseRecorder) statusBody {
	t.Helper()
	var resp errorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	return resp.Status
}

func TestWriteJSON(t *testing.T) {
	t.Run("sets content type and status code", func(t *testing.T) {
		w := httptest.NewRecorder()

		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})

		if got := w.Header().Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want %q", got, "application/json")
		}
		if w.Code != http.StatusOK {
			t.Errorf("status code = %d, want %d", w.Code, http.StatusOK)
		}

		var result map[string]string
		if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if result["status"] != "ok" {
			t.Errorf("body status = %q, want %q", result["status"], "ok")
		}
	})

	t.Run("writes raw JSON unchanged", func(t *testing.T) {
		w := httptest.NewRecorder()

		WriteRawJSON(w, http.StatusOK, json.RawMessage(`{"data":[1,2]}`))

		if got := w.Body.String(); got != `{"data":[1,2]}` {
			t.Errorf("body = %q", got)
		}
		if got := w.Header().Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want %q", got, "application/json")
		}
	})
}

func TestWriteAPIError(t *testing.T) {
	for _, c := range domain.Categories() {
		t.Run(c.Message(), func(t *testing.T) {
			w := httptest.NewRecorder()

			WriteAPIError(w, domain.WrapAPIError(c, "detail", errors.New("hidden cause")))

			if w.Code != c.HTTPStatus() {
				t.Errorf("status code = %d, want %d", w.Code, c.HTTPStatus())
			}
			body := w.Body.String()
			if strings.Contains(body, "hidden cause") {
				t.Errorf("response should not expose the cause: %s", body)
			}

			status := decodeErrorResponse(t, w)
			if status.Code != c.ID() {
				t.Errorf("code = %d, want %d", status.Code, c.ID())
			}
			if status.Reason != c.Message() {
				t.Errorf("reason = %q, want %q", status.Reason, c.Message())
			}
			if status.Info != "detail" {
				t.Errorf("info = %q, want %q", status.Info, "detail")
			}
			if status.Status != "FAILURE" {
				t.Errorf("status = %q, want FAILURE", status.Status)
			}
		})
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
		wantReason string
	}{
		{"api error", fmt.Errorf("wrapped: %w", domain.NewAPIError(domain.NoRunningDeployment)), 400, 104, "No Running Deployment"},
		{"validation", &domain.ValidationError{Message: "bad name"}, 400, 400, "validation_error"},
		{"not found", domain.ErrDeploymentNotFound, 404, 404, "deployment_not_found"},
		{"already exists", domain.ErrDeploymentAlreadyExists, 409, 409, "deployment_already_exists"},
		{"too large", &http.MaxBytesError{Limit: 10}, 413, 413, "request_too_large"},
		{"unknown", errors.New("boom"), 500, 500, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			mapError(w, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("status code = %d, want %d", w.Code, tt.wantStatus)
			}
			status := decodeErrorResponse(t, w)
			if status.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", status.Code, tt.wantCode)
			}
			if status.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", status.Reason, tt.wantReason)
			}
		})
	}
}

func TestParseJSON(t *testing.T) {
	t.Run("decodes valid JSON with correct content type", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"test","value":42}`))
		r.Header.Set("Content-Type", "application/json")

		var result struct {
			Name  string `json:"name"`
			Value int    `json:"value"`
		}
		if err := ParseJSON(r, &result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Name != "test" || result.Value != 42 {
			t.Errorf("result = %+v", result)
		}
	})

	t.Run("accepts content type with charset", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"test"}`))
		r.Header.Set("Content-Type", "application/json; charset=utf-8")

		var result struct {
			Name string `json:"name"`
		}
		if err := ParseJSON(r, &result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	invalid := []struct {
		name        string
		body        string
		contentType string
	}{
		{"missing content type", `{"name":"test"}`, ""},
		{"wrong content type", `{"name":"test"}`, "text/plain"},
		{"malformed JSON", `{invalid json}`, "application/json"},
		{"unknown fields", `{"name":"test","unknown_field":"value"}`, "application/json"},
		{"empty body", ``, "application/json"},
		{"trailing document", `{"name":"a"}{"name":"b"}`, "application/json"},
	}
	for _, tt := range invalid {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			if tt.contentType != "" {
				r.Header.Set("Content-Type", tt.contentType)
			}

			var result struct {
				Name string `json:"name"`
			}
			err := ParseJSON(r, &result)
			if !errors.Is(err, domain.InvalidJSON) {
				t.Fatalf("expected InvalidJSON, got %v", err)
			}
		})
	}

	t.Run("reports oversized body", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"`+strings.Repeat("x", 100)+`"}`))
		r.Header.Set("Content-Type", "application/json")
		r.Body = http.MaxBytesReader(w, r.Body, 16)

		var result struct {
			Name string `json:"name"`
		}
		err := ParseJSON(r, &result)
		var maxBytesErr *http.MaxBytesError
		if !errors.As(err, &maxBytesErr) {
			t.Fatalf("expected MaxBytesError, got %v", err)
		}
	})
}
