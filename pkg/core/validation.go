package core

import (
	"fmt"

	"k8s.io/apimachinery/pkg/api/resource"
)

// ValidateUpdates enforces guardrails over a full set of container updates.
// All failures are wrapped as ErrValidation so callers never retry them.
func ValidateUpdates(updates map[string]ContainerSpec) error {
	if len(updates) == 0 {
		return WrapValidation(fmt.Errorf("at least one container spec is required"))
	}
	for containerName, spec := range updates {
		if containerName == "" {
			return WrapValidation(fmt.Errorf("container name must not be empty"))
		}
		if err := ValidateSpec(&spec); err != nil {
			return fmt.Errorf("container %q: %w", containerName, err)
		}
	}
	return nil
}

// ValidateSpec checks a single container spec for malformed input.
func ValidateSpec(spec *ContainerSpec) error {
	if spec == nil {
		return WrapValidation(fmt.Errorf("spec is required"))
	}

	if spec.Image == "" && spec.Resources == nil && len(spec.Env) == 0 && len(spec.VolumeMounts) == 0 {
		return WrapValidation(fmt.Errorf("spec manages no fields"))
	}

	if spec.Resources != nil {
		if err := validateResources(spec.Resources); err != nil {
			return err
		}
	}

	seenEnvNames := map[string]struct{}{}
	for _, envEntry := range spec.Env {
		if envEntry.Name == "" {
			return WrapValidation(fmt.Errorf("env entry with empty name"))
		}
		if _, duplicate := seenEnvNames[envEntry.Name]; duplicate {
			return WrapValidation(fmt.Errorf("duplicate env name %q", envEntry.Name))
		}
		seenEnvNames[envEntry.Name] = struct{}{}
	}

	seenMountPaths := map[string]struct{}{}
	for _, mount := range spec.VolumeMounts {
		if mount.Name == "" || mount.MountPath == "" {
			return WrapValidation(fmt.Errorf("volume mount requires name and mountPath"))
		}
		if _, duplicate := seenMountPaths[mount.MountPath]; duplicate {
			return WrapValidation(fmt.Errorf("duplicate volume mount path %q", mount.MountPath))
		}
		seenMountPaths[mount.MountPath] = struct{}{}
	}

	return nil
}

func validateResources(resources *ResourceSpec) error {
	for _, quantity := range []string{resources.Memory, resources.CPU} {
		if quantity == "" {
			continue
		}
		if _, err := resource.ParseQuantity(quantity); err != nil {
			return WrapValidation(fmt.Errorf("malformed quantity %q: %v", quantity, err))
		}
	}
	for _, quantities := range []map[string]string{resources.Limits, resources.Requests} {
		for key, quantity := range quantities {
			if _, err := resource.ParseQuantity(quantity); err != nil {
				return WrapValidation(fmt.Errorf("malformed quantity %q for %s: %v", quantity, key, err))
			}
		}
	}
	return nil
}

// DefaultSpec normalizes a container spec in place: the Memory/CPU shorthand
// collapses into both limits and requests, matching how operator constraints
// are usually pinned.
func DefaultSpec(spec *ContainerSpec) {
	if spec == nil || spec.Resources == nil {
		return
	}
	resources := spec.Resources
	if resources.Memory == "" && resources.CPU == "" {
		return
	}
	if resources.Limits == nil {
		resources.Limits = map[string]string{}
	}
	if resources.Requests == nil {
		resources.Requests = map[string]string{}
	}
	if resources.Memory != "" {
		setIfAbsent(resources.Limits, ResourceMemory, resources.Memory)
		setIfAbsent(resources.Requests, ResourceMemory, resources.Memory)
	}
	if resources.CPU != "" {
		setIfAbsent(resources.Limits, ResourceCPU, resources.CPU)
		setIfAbsent(resources.Requests, ResourceCPU, resources.CPU)
	}
	resources.Memory = ""
	resources.CPU = ""
}

func setIfAbsent(quantities map[string]string, key, value string) {
	if _, exists := quantities[key]; !exists {
		quantities[key] = value
	}
}
