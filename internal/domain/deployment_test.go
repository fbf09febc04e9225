package domain

import (
	"testing"
	"time"
)

func TestDeploymentStatus_Valid(t *testing.T) {
	for _, s := range []DeploymentStatus{DeploymentStatusRunning, DeploymentStatusStopped} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if DeploymentStatus("paused").Valid() {
		t.Error("paused should not be valid")
	}
}

func TestDeployment_LeaseExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Second)
	future := now.Add(time.Second)

	tests := []struct {
		name  string
		lease *time.Time
		want  bool
	}{
		{"no lease", nil, false},
		{"past", &past, true},
		{"exactly now", &now, true},
		{"future", &future, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Deployment{LeaseExpiresAt: tt.lease}
			if got := d.LeaseExpired(now); got != tt.want {
				t.Errorf("LeaseExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeployment_IsRunning(t *testing.T) {
	d := &Deployment{Status: DeploymentStatusRunning}
	if !d.IsRunning() {
		t.Error("expected running")
	}
	d.Status = DeploymentStatusStopped
	if d.IsRunning() {
		t.Error("expected not running")
	}
}
