package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/efreitasn/apife/internal/domain"
	"github.com/efreitasn/apife/internal/store"
)

// ExpiryManager periodically stops running deployments whose lease has
// ended, so predictions for them fail with NoRunningDeployment until the
// lease is renewed.
type ExpiryManager struct {
	interval    time.Duration
	deployments *store.DeploymentStore
	logger      *slog.Logger
}

// NewExpiryManager creates a new ExpiryManager with the given dependencies.
func NewExpiryManager(interval time.Duration, deployments *store.DeploymentStore, logger *slog.Logger) *ExpiryManager {
	return &ExpiryManager{
		interval:    interval,
		deployments: deployments,
		logger:      logger,
	}
}

// Start launches a background goroutine that ticks at the configured
// interval and expires leases. It stops when ctx is cancelled.
func (e *ExpiryManager) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				e.tick(t)
			}
		}
	}()
}

// tick stops every running deployment whose lease ended at or before now
// and returns the names it stopped.
func (e *ExpiryManager) tick(now time.Time) []string {
	var expired []string
	for _, d := range e.deployments.List() {
		if !d.IsRunning() || !d.LeaseExpired(now) {
			continue
		}

		stopped := false
		_, err := e.deployments.Update(d.Name, func(cur *domain.Deployment) {
			// Re-check under the store lock; the lease may have been renewed.
			if !cur.IsRunning() || !cur.LeaseExpired(now) {
				return
			}
			cur.Status = domain.DeploymentStatusStopped
			cur.UpdatedAt = now.UTC().Truncate(time.Second)
			stopped = true
		})
		if err != nil || !stopped {
			continue
		}

		expired = append(expired, d.Name)
		e.logger.Info("deployment lease expired",
			slog.String("deployment", d.Name),
			slog.Time("lease_expires_at", *d.LeaseExpiresAt),
		)
	}
	return expired
}
