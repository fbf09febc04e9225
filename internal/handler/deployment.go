package handler

import (
	"net/http"
	"time"

	"github.com/efreitasn/apife/internal/domain"
	"github.com/efreitasn/apife/internal/service"
	"github.com/go-chi/chi/v5"
)

// DeploymentHandler handles HTTP requests for deployment endpoints.
type DeploymentHandler struct {
	deploymentSvc *service.DeploymentService
}

// NewDeploymentHandler creates a new DeploymentHandler.
func NewDeploymentHandler(deploymentSvc *service.DeploymentService) *DeploymentHandler {
	return &DeploymentHandler{deploymentSvc: deploymentSvc}
}

// registerDeploymentRequest is the JSON request body for POST /deployments.
type registerDeploymentRequest struct {
	Name        string `json:"name"`
	EndpointURL string `json:"endpoint_url"`
	LeaseTTL    string `json:"lease_ttl"`
}

// setStatusRequest is the JSON request body for PUT /deployments/{name}/status.
type setStatusRequest struct {
	Status string `json:"status"`
}

// renewLeaseRequest is the JSON request body for PUT /deployments/{name}/lease.
type renewLeaseRequest struct {
	LeaseTTL string `json:"lease_ttl"`
}

// deploymentResponse is a single deployment in a response.
type deploymentResponse struct {
	Name           string  `json:"name"`
	EndpointURL    string  `json:"endpoint_url"`
	Status         string  `json:"status"`
	LeaseExpiresAt *string `json:"lease_expires_at"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

// deploymentListResponse is the JSON response for GET /deployments.
type deploymentListResponse struct {
	Deployments []deploymentResponse `json:"deployments"`
	Total       int                  `json:"total"`
}

// Register handles POST /deployments.
func (h *DeploymentHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerDeploymentRequest
	if err := ParseJSON(r, &req); err != nil {
		mapError(w, err)
		return
	}

	var ttl time.Duration
	if req.LeaseTTL != "" {
		var err error
		ttl, err = parseLeaseTTL(req.LeaseTTL)
		if err != nil {
			mapError(w, err)
			return
		}
	}

	d, err := h.deploymentSvc.Register(service.RegisterDeploymentRequest{
		Name:        req.Name,
		EndpointURL: req.EndpointURL,
		LeaseTTL:    ttl,
	})
	if err != nil {
		mapError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, buildDeploymentResponse(d))
}

// List handles GET /deployments.
func (h *DeploymentHandler) List(w http.ResponseWriter, r *http.Request) {
	deployments := h.deploymentSvc.List()

	resp := make([]deploymentResponse, len(deployments))
	for i, d := range deployments {
		resp[i] = buildDeploymentResponse(d)
	}

	WriteJSON(w, http.StatusOK, deploymentListResponse{
		Deployments: resp,
		Total:       len(resp),
	})
}

// Get handles GET /deployments/{name}.
func (h *DeploymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.deploymentSvc.Get(chi.URLParam(r, "name"))
	if err != nil {
		mapError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildDeploymentResponse(d))
}

// Delete handles DELETE /deployments/{name}.
func (h *DeploymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.deploymentSvc.Delete(chi.URLParam(r, "name")); err != nil {
		mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetStatus handles PUT /deployments/{name}/status.
func (h *DeploymentHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req setStatusRequest
	if err := ParseJSON(r, &req); err != nil {
		mapError(w, err)
		return
	}

	d, err := h.deploymentSvc.SetStatus(chi.URLParam(r, "name"), domain.DeploymentStatus(req.Status))
	if err != nil {
		mapError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildDeploymentResponse(d))
}

// RenewLease handles PUT /deployments/{name}/lease.
func (h *DeploymentHandler) RenewLease(w http.ResponseWriter, r *http.Request) {
	var req renewLeaseRequest
	if err := ParseJSON(r, &req); err != nil {
		mapError(w, err)
		return
	}

	ttl, err := parseLeaseTTL(req.LeaseTTL)
	if err != nil {
		mapError(w, err)
		return
	}

	d, err := h.deploymentSvc.RenewLease(chi.URLParam(r, "name"), ttl)
	if err != nil {
		mapError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildDeploymentResponse(d))
}

func parseLeaseTTL(s string) (time.Duration, error) {
	ttl, err := time.ParseDuration(s)
	if err != nil {
		return 0, &domain.ValidationError{Message: "lease_ttl must be a duration such as 30s or 5m"}
	}
	return ttl, nil
}

// buildDeploymentResponse converts a domain deployment to its response form.
func buildDeploymentResponse(d *domain.Deployment) deploymentResponse {
	resp := deploymentResponse{
		Name:        d.Name,
		EndpointURL: d.EndpointURL,
		Status:      string(d.Status),
		CreatedAt:   d.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   d.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if d.LeaseExpiresAt != nil {
		s := d.LeaseExpiresAt.UTC().Format(time.RFC3339)
		resp.LeaseExpiresAt = &s
	}
	return resp
}
