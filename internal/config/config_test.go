package config

import (
	"os"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allEnvKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.MicroserviceTimeout != 10*time.Second {
		t.Errorf("MicroserviceTimeout = %v, want 10s", cfg.MicroserviceTimeout)
	}
	if cfg.LeaseSweepInterval != 1*time.Second {
		t.Errorf("LeaseSweepInterval = %v, want 1s", cfg.LeaseSweepInterval)
	}
	if cfg.MaxBodyBytes != 4<<20 {
		t.Errorf("MaxBodyBytes = %d, want %d", cfg.MaxBodyBytes, 4<<20)
	}
	if cfg.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout != 15*time.Second {
		t.Errorf("WriteTimeout = %v, want 15s", cfg.WriteTimeout)
	}
	if cfg.IdleTimeout != 60*time.Second {
		t.Errorf("IdleTimeout = %v, want 60s", cfg.IdleTimeout)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", cfg.ShutdownTimeout)
	}
	if cfg.DeploymentsFile != "" {
		t.Errorf("DeploymentsFile = %q, want empty", cfg.DeploymentsFile)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MICROSERVICE_TIMEOUT", "3s")
	t.Setenv("LEASE_SWEEP_INTERVAL", "500ms")
	t.Setenv("MAX_BODY_BYTES", "1024")
	t.Setenv("DEPLOYMENTS_FILE", "/etc/apife/deployments.yaml")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.MicroserviceTimeout != 3*time.Second {
		t.Errorf("MicroserviceTimeout = %v, want 3s", cfg.MicroserviceTimeout)
	}
	if cfg.LeaseSweepInterval != 500*time.Millisecond {
		t.Errorf("LeaseSweepInterval = %v, want 500ms", cfg.LeaseSweepInterval)
	}
	if cfg.MaxBodyBytes != 1024 {
		t.Errorf("MaxBodyBytes = %d, want 1024", cfg.MaxBodyBytes)
	}
	if cfg.DeploymentsFile != "/etc/apife/deployments.yaml" {
		t.Errorf("DeploymentsFile = %q", cfg.DeploymentsFile)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	for _, v := range []string{"not-a-number", "0", "70000"} {
		t.Run(v, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("PORT", v)

			if _, err := Load(); err == nil {
				t.Fatalf("expected error for PORT=%q", v)
			}
		})
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "verbose")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid LOG_LEVEL")
	}
}

func TestLoad_InvalidMaxBodyBytes(t *testing.T) {
	for _, v := range []string{"lots", "0", "-1"} {
		t.Run(v, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("MAX_BODY_BYTES", v)

			if _, err := Load(); err == nil {
				t.Fatalf("expected error for MAX_BODY_BYTES=%q", v)
			}
		})
	}
}

func TestLoad_NonPositiveSweepInterval(t *testing.T) {
	clearEnv(t)
	t.Setenv("LEASE_SWEEP_INTERVAL", "0s")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero LEASE_SWEEP_INTERVAL")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	for _, key := range durationEnvKeys {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, "not-a-duration")

			_, err := Load()
			if err == nil {
				t.Fatalf("expected error for invalid %s", key)
			}
		})
	}
}
