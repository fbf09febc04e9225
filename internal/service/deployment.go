package service

import (
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/efreitasn/apife/internal/domain"
	"github.com/efreitasn/apife/internal/store"
)

var deploymentNameRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// RegisterDeploymentRequest represents the input for deployment registration.
type RegisterDeploymentRequest struct {
	Name        string
	EndpointURL string
	LeaseTTL    time.Duration // zero means no lease
}

// DeploymentService handles deployment registration, lifecycle and leases.
type DeploymentService struct {
	store *store.DeploymentStore
	now   func() time.Time
}

// NewDeploymentService creates a new DeploymentService.
func NewDeploymentService(store *store.DeploymentStore) *DeploymentService {
	return &DeploymentService{
		store: store,
		now:   time.Now,
	}
}

// Register validates the request and stores a running deployment.
func (s *DeploymentService) Register(req RegisterDeploymentRequest) (*domain.Deployment, error) {
	if !deploymentNameRegex.MatchString(req.Name) {
		return nil, &domain.ValidationError{
			Message: "name must match " + deploymentNameRegex.String(),
		}
	}
	if req.LeaseTTL < 0 {
		return nil, &domain.ValidationError{Message: "lease_ttl must be >= 0"}
	}
	if err := ValidateEndpointURL(req.EndpointURL); err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Second)
	d := &domain.Deployment{
		Name:        req.Name,
		EndpointURL: req.EndpointURL,
		Status:      domain.DeploymentStatusRunning,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.LeaseTTL > 0 {
		expires := now.Add(req.LeaseTTL)
		d.LeaseExpiresAt = &expires
	}

	if err := s.store.Create(d); err != nil {
		return nil, err
	}
	return d, nil
}

// Get returns the deployment with the given name.
func (s *DeploymentService) Get(name string) (*domain.Deployment, error) {
	return s.store.Get(name)
}

// List returns all deployments ordered by name.
func (s *DeploymentService) List() []*domain.Deployment {
	return s.store.List()
}

// Delete removes a deployment.
func (s *DeploymentService) Delete(name string) error {
	return s.store.Delete(name)
}

// SetStatus starts or stops a deployment.
func (s *DeploymentService) SetStatus(name string, status domain.DeploymentStatus) (*domain.Deployment, error) {
	if !status.Valid() {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("status must be one of: %s, %s", domain.DeploymentStatusRunning, domain.DeploymentStatusStopped),
		}
	}
	now := s.now().UTC().Truncate(time.Second)
	return s.store.Update(name, func(d *domain.Deployment) {
		if d.Status != status {
			d.Status = status
			d.UpdatedAt = now
		}
	})
}

// RenewLease extends the deployment's lease to now+ttl and marks it running.
func (s *DeploymentService) RenewLease(name string, ttl time.Duration) (*domain.Deployment, error) {
	if ttl <= 0 {
		return nil, &domain.ValidationError{Message: "lease_ttl must be > 0"}
	}
	now := s.now().UTC().Truncate(time.Second)
	return s.store.Update(name, func(d *domain.Deployment) {
		expires := now.Add(ttl)
		d.LeaseExpiresAt = &expires
		d.Status = domain.DeploymentStatusRunning
		d.UpdatedAt = now
	})
}

// ValidateEndpointURL checks that raw is an absolute http(s) URL with a
// host. Failures are InvalidEndpointURL errors.
func ValidateEndpointURL(raw string) error {
	if raw == "" {
		return domain.WrapAPIError(domain.InvalidEndpointURL, "endpoint_url is required", nil)
	}
	if len(raw) > 2048 {
		return domain.WrapAPIError(domain.InvalidEndpointURL, "endpoint_url must be at most 2048 characters", nil)
	}
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return domain.WrapAPIError(domain.InvalidEndpointURL, "endpoint_url must be a valid absolute URL", err)
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return domain.WrapAPIError(domain.InvalidEndpointURL, "endpoint_url must be a valid absolute URL", nil)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return domain.WrapAPIError(domain.InvalidEndpointURL, "endpoint_url must use http or https scheme", nil)
	}
	if parsed.RawQuery != "" || parsed.Fragment != "" {
		return domain.WrapAPIError(domain.InvalidEndpointURL, "endpoint_url must not carry a query or fragment", nil)
	}
	return nil
}
