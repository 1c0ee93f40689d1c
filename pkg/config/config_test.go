package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"statefulsetpatch/pkg/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadWellFormedConfig(t *testing.T) {
	path := writeConfig(t, `
statefulSet:
  namespace: model
  name: app
containers:
  workload:
    image: app:1.1
    resources:
      memory: 1Gi
      cpu: 500m
  charm:
    resources:
      memory: 512Mi
resyncPeriodSeconds: 120
`)
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.StatefulSet.Namespace != "model" || loaded.StatefulSet.Name != "app" {
		t.Fatalf("unexpected target: %+v", loaded.StatefulSet)
	}
	if len(loaded.Containers) != 2 || loaded.Containers["workload"].Image != "app:1.1" {
		t.Fatalf("unexpected containers: %+v", loaded.Containers)
	}
	if loaded.ResyncPeriod() != 2*time.Minute {
		t.Fatalf("unexpected resync period: %v", loaded.ResyncPeriod())
	}
}

func TestLoadDefaultsResyncPeriod(t *testing.T) {
	path := writeConfig(t, `
statefulSet:
  namespace: model
  name: app
containers:
  workload:
    image: app:1.1
`)
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.ResyncPeriod() != defaultResyncPeriod {
		t.Fatalf("expected default resync period, got %v", loaded.ResyncPeriod())
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, `
statefulSet:
  namespace: model
  name: app
containers:
  workload:
    image: app:1.1
replicas: 3
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestLoadRejectsInvalidSpec(t *testing.T) {
	path := writeConfig(t, `
statefulSet:
  namespace: model
  name: app
containers:
  workload:
    resources:
      memory: lots
`)
	if _, err := Load(path); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoadRejectsMissingName(t *testing.T) {
	path := writeConfig(t, `
statefulSet:
  namespace: model
containers:
  workload:
    image: app:1.1
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for missing statefulSet.name")
	}
}

func TestLoadRejectsShortResync(t *testing.T) {
	path := writeConfig(t, `
statefulSet:
  namespace: model
  name: app
containers:
  workload:
    image: app:1.1
resyncPeriodSeconds: 5
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for resyncPeriodSeconds below minimum")
	}
}

func TestDefaultFallsBackToInClusterNamespace(t *testing.T) {
	namespaceFile := filepath.Join(t.TempDir(), "namespace")
	if err := os.WriteFile(namespaceFile, []byte("model\n"), 0o600); err != nil {
		t.Fatalf("write namespace file: %v", err)
	}
	original := serviceAccountNamespaceFile
	serviceAccountNamespaceFile = namespaceFile
	defer func() { serviceAccountNamespaceFile = original }()

	loadedConfig := &Config{
		StatefulSet: core.NamespacedName{Name: "app"},
		Containers:  map[string]core.ContainerSpec{"workload": {Image: "app:1.1"}},
	}
	if err := loadedConfig.Default(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loadedConfig.StatefulSet.Namespace != "model" {
		t.Fatalf("expected namespace from service account file, got %q", loadedConfig.StatefulSet.Namespace)
	}
}

func TestDefaultFailsOutsideCluster(t *testing.T) {
	original := serviceAccountNamespaceFile
	serviceAccountNamespaceFile = filepath.Join(t.TempDir(), "missing")
	defer func() { serviceAccountNamespaceFile = original }()

	loadedConfig := &Config{StatefulSet: core.NamespacedName{Name: "app"}}
	if err := loadedConfig.Default(); err == nil {
		t.Fatalf("expected error when namespace cannot be discovered")
	}
}
