// Package config loads the patcher's desired state: which StatefulSet to
// manage and the container-level specs to enforce on it.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"sigs.k8s.io/yaml"

	"statefulsetpatch/pkg/core"
)

const defaultResyncPeriod = 10 * time.Minute

// serviceAccountNamespaceFile is where the kubelet mounts the namespace of the
// pod's service account. Overridable in tests.
var serviceAccountNamespaceFile = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"

// Config declares the managed StatefulSet and its desired container specs.
type Config struct {
	// StatefulSet names the target. An empty namespace falls back to the
	// namespace the process runs in.
	StatefulSet core.NamespacedName `json:"statefulSet"`
	// Containers maps container name to the spec enforced on it.
	Containers map[string]core.ContainerSpec `json:"containers"`
	// ResyncPeriodSeconds controls how often the patch is re-applied without a
	// watch event. Minimum 10, default 600.
	ResyncPeriodSeconds *int32 `json:"resyncPeriodSeconds,omitempty"`
}

// Load reads, defaults, and validates a YAML config file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var loadedConfig Config

	if err := yaml.UnmarshalStrict(raw, &loadedConfig); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := loadedConfig.Default(); err != nil {
		return nil, err
	}

	if err := loadedConfig.Validate(); err != nil {
		return nil, err
	}

	return &loadedConfig, nil
}

// Default fills the target namespace from the in-cluster service account when unset.
func (loadedConfig *Config) Default() error {
	if loadedConfig.StatefulSet.Namespace == "" {
		namespace, err := InClusterNamespace()
		if err != nil {
			return fmt.Errorf("statefulSet.namespace is unset and could not be discovered in-cluster: %w", err)
		}

		loadedConfig.StatefulSet.Namespace = namespace
	}

	return nil
}

// Validate enforces basic guardrails over the loaded config.
func (loadedConfig *Config) Validate() error {
	if loadedConfig.StatefulSet.Name == "" {
		return fmt.Errorf("statefulSet.name is required")
	}

	if loadedConfig.ResyncPeriodSeconds != nil && *loadedConfig.ResyncPeriodSeconds < 10 {
		return fmt.Errorf("resyncPeriodSeconds must be >= 10")
	}

	return core.ValidateUpdates(loadedConfig.Containers)
}

// ResyncPeriod returns the effective periodic re-apply interval.
func (loadedConfig *Config) ResyncPeriod() time.Duration {
	if loadedConfig.ResyncPeriodSeconds == nil {
		return defaultResyncPeriod
	}

	return time.Duration(*loadedConfig.ResyncPeriodSeconds) * time.Second
}

// InClusterNamespace reads the namespace the process runs in from the mounted
// service account.
func InClusterNamespace() (string, error) {
	raw, err := os.ReadFile(serviceAccountNamespaceFile)
	if err != nil {
		return "", err
	}

	namespace := strings.TrimSpace(string(raw))
	if namespace == "" {
		return "", fmt.Errorf("namespace file %s is empty", serviceAccountNamespaceFile)
	}

	return namespace, nil
}
