package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/efreitasn/apife/internal/domain"
	"github.com/efreitasn/apife/internal/store"
	"github.com/google/uuid"
)

// Paths the predictor microservices serve.
const (
	predictionsPath = "/api/v0.1/predictions"
	feedbackPath    = "/api/v0.1/feedback"
)

// maxResponseBytes caps how much of a microservice response is read.
const maxResponseBytes = 16 << 20

// PredictionService forwards prediction and feedback requests to the
// microservice behind a running deployment.
type PredictionService struct {
	deployments *store.DeploymentStore
	client      *http.Client
}

// NewPredictionService creates a new PredictionService whose outbound calls
// time out after timeout.
func NewPredictionService(deployments *store.DeploymentStore, timeout time.Duration) *PredictionService {
	return &PredictionService{
		deployments: deployments,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Predict validates body, stamps meta.puid when absent and forwards it to
// the deployment's predictions endpoint. It returns the microservice's JSON
// response.
func (s *PredictionService) Predict(ctx context.Context, deploymentName string, body []byte) (json.RawMessage, error) {
	msg, err := decodeMessage(body)
	if err != nil {
		return nil, err
	}
	if err := ensurePUID(msg); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, domain.WrapAPIError(domain.InvalidJSON, "request body could not be re-encoded", err)
	}

	d, err := s.runningDeployment(deploymentName)
	if err != nil {
		return nil, err
	}
	return s.forward(ctx, d, predictionsPath, payload)
}

// SendFeedback validates body and forwards it unchanged to the deployment's
// feedback endpoint.
func (s *PredictionService) SendFeedback(ctx context.Context, deploymentName string, body []byte) (json.RawMessage, error) {
	if _, err := decodeMessage(body); err != nil {
		return nil, err
	}

	d, err := s.runningDeployment(deploymentName)
	if err != nil {
		return nil, err
	}
	return s.forward(ctx, d, feedbackPath, body)
}

// decodeMessage requires body to be a single JSON object.
func decodeMessage(body []byte) (map[string]json.RawMessage, error) {
	var msg map[string]json.RawMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, domain.WrapAPIError(domain.InvalidJSON, "request body must be a JSON object", err)
	}
	if msg == nil {
		return nil, domain.WrapAPIError(domain.InvalidJSON, "request body must be a JSON object", nil)
	}
	return msg, nil
}

// ensurePUID sets meta.puid to a fresh UUID unless the caller supplied one.
func ensurePUID(msg map[string]json.RawMessage) error {
	meta := map[string]json.RawMessage{}
	if raw, ok := msg["meta"]; ok {
		if err := json.Unmarshal(raw, &meta); err != nil || meta == nil {
			return domain.WrapAPIError(domain.InvalidJSON, "meta must be a JSON object", err)
		}
	}

	if raw, ok := meta["puid"]; ok {
		var puid string
		if err := json.Unmarshal(raw, &puid); err != nil {
			return domain.WrapAPIError(domain.InvalidJSON, "meta.puid must be a string", err)
		}
		if puid != "" {
			return nil
		}
	}

	puid, _ := json.Marshal(uuid.New().String())
	meta["puid"] = puid
	encoded, err := json.Marshal(meta)
	if err != nil {
		return domain.WrapAPIError(domain.InvalidJSON, "meta could not be re-encoded", err)
	}
	msg["meta"] = encoded
	return nil
}

// runningDeployment resolves name to a deployment that can serve traffic.
func (s *PredictionService) runningDeployment(name string) (*domain.Deployment, error) {
	d, err := s.deployments.Get(name)
	if errors.Is(err, domain.ErrDeploymentNotFound) {
		return nil, domain.WrapAPIError(domain.NoRunningDeployment, fmt.Sprintf("deployment %q not found", name), nil)
	}
	if err != nil {
		return nil, err
	}
	if !d.IsRunning() {
		return nil, domain.WrapAPIError(domain.NoRunningDeployment, fmt.Sprintf("deployment %q is %s", name, d.Status), nil)
	}
	return d, nil
}

// forward POSTs payload to the deployment endpoint joined with path.
func (s *PredictionService) forward(ctx context.Context, d *domain.Deployment, path string, payload []byte) (json.RawMessage, error) {
	target, err := url.JoinPath(d.EndpointURL, path)
	if err != nil {
		return nil, domain.WrapAPIError(domain.InvalidEndpointURL, fmt.Sprintf("deployment %q endpoint cannot be used", d.Name), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return nil, domain.WrapAPIError(domain.InvalidEndpointURL, fmt.Sprintf("deployment %q endpoint cannot be used", d.Name), err)
	}
	req.Header.Set("Content-Type", "application/json")
	if reqID, ok := RequestIDFromContext(ctx); ok {
		req.Header.Set("X-Request-Id", reqID)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, domain.WrapAPIError(domain.MicroserviceError, fmt.Sprintf("deployment %q did not respond", d.Name), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, domain.WrapAPIError(domain.MicroserviceError, fmt.Sprintf("deployment %q response could not be read", d.Name), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.WrapAPIError(domain.MicroserviceError, fmt.Sprintf("deployment %q returned status %d", d.Name, resp.StatusCode), nil)
	}
	if !json.Valid(respBody) {
		return nil, domain.WrapAPIError(domain.MicroserviceError, fmt.Sprintf("deployment %q returned invalid JSON", d.Name), nil)
	}
	return json.RawMessage(respBody), nil
}
