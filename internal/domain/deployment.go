package domain

import "time"

// DeploymentStatus is the lifecycle state of a deployment.
type DeploymentStatus string

const (
	DeploymentStatusRunning DeploymentStatus = "running"
	DeploymentStatusStopped DeploymentStatus = "stopped"
)

// Valid reports whether s is a known status.
func (s DeploymentStatus) Valid() bool {
	return s == DeploymentStatusRunning || s == DeploymentStatusStopped
}

// Deployment is a predictor microservice the gateway routes requests to.
type Deployment struct {
	Name           string
	EndpointURL    string
	Status         DeploymentStatus
	LeaseExpiresAt *time.Time // nil when the deployment holds no lease
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsRunning reports whether the deployment can serve predictions.
func (d *Deployment) IsRunning() bool {
	return d.Status == DeploymentStatusRunning
}

// LeaseExpired reports whether the deployment's lease ended at or before now.
func (d *Deployment) LeaseExpired(now time.Time) bool {
	return d.LeaseExpiresAt != nil && !d.LeaseExpiresAt.After(now)
}
