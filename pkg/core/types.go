package core

// NamespacedName identifies a namespaced Kubernetes resource.
type NamespacedName struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
}

func (n NamespacedName) String() string { return n.Namespace + "/" + n.Name }

// ContainerSpec models the container-level fields the patcher manages.
// Fields left at their zero value are unmanaged and never patched.
type ContainerSpec struct {
	Image        string        `json:"image,omitempty"`
	Resources    *ResourceSpec `json:"resources,omitempty"`
	Env          []EnvVar      `json:"env,omitempty"`
	VolumeMounts []VolumeMount `json:"volumeMounts,omitempty"`
}

// ResourceSpec carries resource quantities as strings (e.g. "500m", "1Gi").
// Memory and CPU are shorthand that populate both limits and requests with the
// same value; Limits and Requests give full control when they differ.
type ResourceSpec struct {
	Memory   string            `json:"memory,omitempty"`
	CPU      string            `json:"cpu,omitempty"`
	Limits   map[string]string `json:"limits,omitempty"`
	Requests map[string]string `json:"requests,omitempty"`
}

// EnvVar is a single environment entry; names are unique per container.
type EnvVar struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// VolumeMount describes where a volume is mounted inside the container.
// Mount paths are unique per container.
type VolumeMount struct {
	Name      string `json:"name"`
	MountPath string `json:"mountPath"`
	SubPath   string `json:"subPath,omitempty"`
	ReadOnly  bool   `json:"readOnly,omitempty"`
}

// FieldChange records a single field-level change applied to a container.
type FieldChange struct {
	Field string `json:"field"`
	From  string `json:"from,omitempty"`
	To    string `json:"to"`
}

// ContainerDiff aggregates the changes computed for one container.
type ContainerDiff struct {
	Container string        `json:"container"`
	Changes   []FieldChange `json:"changes,omitempty"`
}

// Empty reports whether the diff carries no changes.
func (d ContainerDiff) Empty() bool { return len(d.Changes) == 0 }

// Result captures the outcome of one reconciliation.
type Result struct {
	// Outcome is OutcomeUnchanged when no write was issued, OutcomePatched otherwise.
	Outcome string
	// Diffs holds the applied per-container changes for observability. Empty
	// for an unchanged outcome.
	Diffs []ContainerDiff
	// Attempts counts the read-diff-patch cycles executed, including the
	// successful one.
	Attempts int
}

// Unchanged reports whether the reconciliation issued no write.
func (r Result) Unchanged() bool { return r.Outcome == OutcomeUnchanged }

// ChangeCount returns the total number of field changes across all containers.
func (r Result) ChangeCount() int {
	total := 0
	for _, diff := range r.Diffs {
		total += len(diff.Changes)
	}
	return total
}
