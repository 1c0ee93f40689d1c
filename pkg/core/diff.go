package core

import (
	"fmt"
	"sort"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
)

// ApplyUpdates mutates the pod spec so the named containers match their
// desired specs, touching only whitelisted fields. Containers not named in
// updates are left alone. It returns the non-empty per-container diffs; an
// empty result means the pod spec already matched and nothing was modified.
func ApplyUpdates(updates map[string]ContainerSpec, podSpec *corev1.PodSpec) ([]ContainerDiff, error) {
	containerNames := make([]string, 0, len(updates))
	for containerName := range updates {
		containerNames = append(containerNames, containerName)
	}
	sort.Strings(containerNames)

	var diffs []ContainerDiff
	for _, containerName := range containerNames {
		index := findContainer(podSpec.Containers, containerName)
		if index < 0 {
			return nil, fmt.Errorf("%w: %q", ErrContainerNotFound, containerName)
		}
		changes := ApplyToContainer(updates[containerName], &podSpec.Containers[index])
		if len(changes) > 0 {
			diffs = append(diffs, ContainerDiff{Container: containerName, Changes: changes})
		}
	}
	return diffs, nil
}

// ComputeDiff reports what ApplyToContainer would change, without mutating the
// live container.
func ComputeDiff(desired ContainerSpec, live corev1.Container) ContainerDiff {
	clone := live.DeepCopy()
	changes := ApplyToContainer(desired, clone)
	return ContainerDiff{Container: live.Name, Changes: changes}
}

// ApplyToContainer mutates the container toward the desired spec and returns
// the field-level changes it made. Already-matching fields are skipped so the
// resulting merge patch stays minimal. Resource quantities compare
// semantically ("1Gi" equals "1024Mi").
func ApplyToContainer(desired ContainerSpec, container *corev1.Container) []FieldChange {
	var changes []FieldChange
	if desired.Image != "" && desired.Image != container.Image {
		changes = append(changes, FieldChange{Field: FieldImage, From: container.Image, To: desired.Image})
		container.Image = desired.Image
	}
	changes = append(changes, applyResources(desired.Resources, container)...)
	changes = append(changes, applyEnv(desired.Env, container)...)
	changes = append(changes, applyVolumeMounts(desired.VolumeMounts, container)...)
	return changes
}

func applyResources(desired *ResourceSpec, container *corev1.Container) []FieldChange {
	if desired == nil {
		return nil
	}
	var changes []FieldChange
	changes = append(changes, applyQuantities(desired.Limits, &container.Resources.Limits, FieldResources+".limits")...)
	changes = append(changes, applyQuantities(desired.Requests, &container.Resources.Requests, FieldResources+".requests")...)
	return changes
}

func applyQuantities(desired map[string]string, live *corev1.ResourceList, fieldPrefix string) []FieldChange {
	if len(desired) == 0 {
		return nil
	}
	keys := make([]string, 0, len(desired))
	for key := range desired {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var changes []FieldChange
	for _, key := range keys {
		quantity, err := resource.ParseQuantity(desired[key])
		if err != nil {
			// Unreachable after validation; a malformed quantity is never written.
			continue
		}
		resourceName := corev1.ResourceName(key)
		current, exists := (*live)[resourceName]
		if exists && current.Cmp(quantity) == 0 {
			continue
		}
		from := ""
		if exists {
			from = current.String()
		}
		if *live == nil {
			*live = corev1.ResourceList{}
		}
		(*live)[resourceName] = quantity
		changes = append(changes, FieldChange{Field: fieldPrefix + "." + key, From: from, To: quantity.String()})
	}
	return changes
}

func applyEnv(desired []EnvVar, container *corev1.Container) []FieldChange {
	var changes []FieldChange
	for _, envEntry := range desired {
		replacement := corev1.EnvVar{Name: envEntry.Name, Value: envEntry.Value}
		index := findEnv(container.Env, envEntry.Name)
		if index < 0 {
			container.Env = append(container.Env, replacement)
			changes = append(changes, FieldChange{Field: FieldEnv + "." + envEntry.Name, To: envEntry.Value})
			continue
		}
		current := container.Env[index]
		if current.Value == envEntry.Value && current.ValueFrom == nil {
			continue
		}
		container.Env[index] = replacement
		changes = append(changes, FieldChange{Field: FieldEnv + "." + envEntry.Name, From: current.Value, To: envEntry.Value})
	}
	return changes
}

func applyVolumeMounts(desired []VolumeMount, container *corev1.Container) []FieldChange {
	var changes []FieldChange
	for _, mount := range desired {
		replacement := corev1.VolumeMount{
			Name:      mount.Name,
			MountPath: mount.MountPath,
			SubPath:   mount.SubPath,
			ReadOnly:  mount.ReadOnly,
		}
		index := findMount(container.VolumeMounts, mount.MountPath)
		if index < 0 {
			container.VolumeMounts = append(container.VolumeMounts, replacement)
			changes = append(changes, FieldChange{Field: FieldVolumeMounts + "." + mount.MountPath, To: describeMount(replacement)})
			continue
		}
		current := container.VolumeMounts[index]
		if current.Name == replacement.Name && current.SubPath == replacement.SubPath && current.ReadOnly == replacement.ReadOnly {
			continue
		}
		container.VolumeMounts[index] = replacement
		changes = append(changes, FieldChange{
			Field: FieldVolumeMounts + "." + mount.MountPath,
			From:  describeMount(current),
			To:    describeMount(replacement),
		})
	}
	return changes
}

func findContainer(containers []corev1.Container, name string) int {
	for index, container := range containers {
		if container.Name == name {
			return index
		}
	}
	return -1
}

func findEnv(env []corev1.EnvVar, name string) int {
	for index, entry := range env {
		if entry.Name == name {
			return index
		}
	}
	return -1
}

func findMount(mounts []corev1.VolumeMount, mountPath string) int {
	for index, mount := range mounts {
		if mount.MountPath == mountPath {
			return index
		}
	}
	return -1
}

func describeMount(mount corev1.VolumeMount) string {
	description := mount.Name
	if mount.SubPath != "" {
		description += ":" + mount.SubPath
	}
	if mount.ReadOnly {
		description += ":ro"
	}
	return description
}
