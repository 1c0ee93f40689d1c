package core

import "testing"

func TestHashUpdatesDeterministic(t *testing.T) {
	updates := map[string]ContainerSpec{
		"workload": {Image: "app:1.0", Env: []EnvVar{{Name: "MODE", Value: "prod"}}},
		"charm":    {Resources: &ResourceSpec{Memory: "1Gi"}},
	}
	first := HashUpdates(updates)
	second := HashUpdates(updates)
	if first == "" || first != second {
		t.Fatalf("expected stable non-empty hash, got %q and %q", first, second)
	}
}

func TestHashUpdatesChangesWithSpec(t *testing.T) {
	updates := map[string]ContainerSpec{"workload": {Image: "app:1.0"}}
	before := HashUpdates(updates)
	updates["workload"] = ContainerSpec{Image: "app:1.1"}
	after := HashUpdates(updates)
	if before == after {
		t.Fatalf("hash must change with the spec")
	}
}

func TestHashUpdatesChangesWithContainerName(t *testing.T) {
	spec := ContainerSpec{Image: "app:1.0"}
	first := HashUpdates(map[string]ContainerSpec{"workload": spec})
	second := HashUpdates(map[string]ContainerSpec{"sidecar": spec})
	if first == second {
		t.Fatalf("hash must change with the container name")
	}
	if len(first) != 64 || len(second) != 64 {
		t.Fatalf("expected hex sha256 digests, got %q and %q", first, second)
	}
}

func TestHashUpdatesEmpty(t *testing.T) {
	if got := HashUpdates(nil); got != "" {
		t.Fatalf("expected empty hash for no updates, got %q", got)
	}
}
