package config

import (
	"bytes"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DeploymentsFile is the YAML document listing deployments registered at
// startup.
type DeploymentsFile struct {
	Deployments []DeploymentSeed `yaml:"deployments"`
}

// DeploymentSeed describes one deployment in the seed file.
type DeploymentSeed struct {
	Name        string        `yaml:"name"`
	EndpointURL string        `yaml:"endpoint_url"`
	LeaseTTL    time.Duration `yaml:"lease_ttl"`
	Stopped     bool          `yaml:"stopped"`
}

// LoadDeployments reads and decodes the seed file at path.
func LoadDeployments(path string) (*DeploymentsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read deployments file: %s", path)
	}
	file, err := decodeDeployments(data)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid deployments file: %s", path)
	}
	return file, nil
}

func decodeDeployments(data []byte) (*DeploymentsFile, error) {
	var file DeploymentsFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "failed to parse YAML")
	}

	seen := make(map[string]bool, len(file.Deployments))
	for i, d := range file.Deployments {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			return nil, errors.Errorf("deployments[%d]: name is required", i)
		}
		if seen[name] {
			return nil, errors.Errorf("deployments[%d]: duplicate name %q", i, name)
		}
		if d.LeaseTTL < 0 {
			return nil, errors.Errorf("deployments[%d]: lease_ttl must be >= 0", i)
		}
		seen[name] = true
		file.Deployments[i].Name = name
		file.Deployments[i].EndpointURL = strings.TrimSpace(d.EndpointURL)
	}
	return &file, nil
}
