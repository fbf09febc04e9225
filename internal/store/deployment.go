package store

import (
	"sync"

	"github.com/efreitasn/apife/internal/domain"
	"github.com/google/btree"
)

// deploymentLess orders deployments by name ascending.
func deploymentLess(a, b *domain.Deployment) bool {
	return a.Name < b.Name
}

// DeploymentStore is a thread-safe in-memory store for deployments,
// kept in a B-tree ordered by name. Values are copied on the way in and
// out so callers never share a stored record.
type DeploymentStore struct {
	mu    sync.RWMutex
	items *btree.BTreeG[*domain.Deployment]
}

// NewDeploymentStore creates an empty DeploymentStore.
func NewDeploymentStore() *DeploymentStore {
	const degree = 16
	return &DeploymentStore{
		items: btree.NewG[*domain.Deployment](degree, deploymentLess),
	}
}

func key(name string) *domain.Deployment {
	return &domain.Deployment{Name: name}
}

func clone(d *domain.Deployment) *domain.Deployment {
	c := *d
	if d.LeaseExpiresAt != nil {
		t := *d.LeaseExpiresAt
		c.LeaseExpiresAt = &t
	}
	return &c
}

// Create adds a deployment. It returns domain.ErrDeploymentAlreadyExists
// if the name is taken.
func (s *DeploymentStore) Create(d *domain.Deployment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.items.Has(key(d.Name)) {
		return domain.ErrDeploymentAlreadyExists
	}
	s.items.ReplaceOrInsert(clone(d))
	return nil
}

// Get retrieves a deployment by name. It returns
// domain.ErrDeploymentNotFound if the deployment does not exist.
func (s *DeploymentStore) Get(name string) (*domain.Deployment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.items.Get(key(name))
	if !ok {
		return nil, domain.ErrDeploymentNotFound
	}
	return clone(d), nil
}

// Update applies fn to the stored deployment under the write lock and
// returns the updated copy. It returns domain.ErrDeploymentNotFound if the
// deployment does not exist. fn must not change the name.
func (s *DeploymentStore) Update(name string, fn func(d *domain.Deployment)) (*domain.Deployment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.items.Get(key(name))
	if !ok {
		return nil, domain.ErrDeploymentNotFound
	}
	fn(d)
	d.Name = name
	return clone(d), nil
}

// Delete removes a deployment by name. It returns
// domain.ErrDeploymentNotFound if the deployment does not exist.
func (s *DeploymentStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items.Delete(key(name)); !ok {
		return domain.ErrDeploymentNotFound
	}
	return nil
}

// List returns all deployments ordered by name.
func (s *DeploymentStore) List() []*domain.Deployment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Deployment, 0, s.items.Len())
	s.items.Ascend(func(d *domain.Deployment) bool {
		result = append(result, clone(d))
		return true
	})
	return result
}

// Len returns the number of stored deployments.
func (s *DeploymentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items.Len()
}
