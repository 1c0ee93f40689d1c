package adapters

import (
	"context"

	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

type controllerRuntimeClient struct {
	client client.Client
}

// NewControllerRuntimeClient returns a KubeClient backed by a controller-runtime client.Client.
func NewControllerRuntimeClient(kubeClient client.Client) KubeClient {
	return &controllerRuntimeClient{client: kubeClient}
}

// GetStatefulSet fetches the live StatefulSet for one reconciliation; the
// snapshot is never cached across calls.
func (clientAdapter *controllerRuntimeClient) GetStatefulSet(requestContext context.Context, namespace, name string) (*appsv1.StatefulSet, error) {
	var statefulSet appsv1.StatefulSet

	if err := clientAdapter.client.Get(requestContext, types.NamespacedName{Namespace: namespace, Name: name}, &statefulSet); err != nil {
		return nil, err
	}

	return &statefulSet, nil
}

// PatchStatefulSet writes the delta between base and modified as a merge patch.
// The optimistic lock option puts base's resource version into the patch body,
// so a concurrent writer causes the API server to answer with a Conflict.
func (clientAdapter *controllerRuntimeClient) PatchStatefulSet(requestContext context.Context, base, modified *appsv1.StatefulSet) error {
	patch := client.MergeFromWithOptions(base, client.MergeFromWithOptimisticLock{})

	return clientAdapter.client.Patch(requestContext, modified, patch)
}

// DeleteStatefulSet removes the StatefulSet, ignoring not found errors.
func (clientAdapter *controllerRuntimeClient) DeleteStatefulSet(requestContext context.Context, namespace, name string) error {
	statefulSet := appsv1.StatefulSet{ObjectMeta: metav1.ObjectMeta{Namespace: namespace, Name: name}}

	return client.IgnoreNotFound(clientAdapter.client.Delete(requestContext, &statefulSet))
}
