package adapters

import (
	"context"

	appsv1 "k8s.io/api/apps/v1"
)

// KubeClient defines the minimal cluster interactions the patcher needs. It is
// always injected explicitly so tests can substitute a fake backend; there is
// no process-wide client singleton.
type KubeClient interface {
	// GetStatefulSet returns a fresh snapshot of the live StatefulSet.
	GetStatefulSet(ctx context.Context, namespace, name string) (*appsv1.StatefulSet, error)
	// PatchStatefulSet submits a merge patch covering the fields that differ
	// between base and modified, conditioned on base's resource version. A
	// stale resource version surfaces as a Conflict API error.
	PatchStatefulSet(ctx context.Context, base, modified *appsv1.StatefulSet) error
	// DeleteStatefulSet removes the StatefulSet. Not-found is not an error.
	DeleteStatefulSet(ctx context.Context, namespace, name string) error
}
