package statefulsetpatch

import (
	appsv1 "k8s.io/api/apps/v1"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	"statefulsetpatch/pkg/config"
	"statefulsetpatch/pkg/core"
)

// SetupWithManager registers the controller with the provided manager,
// watching only the configured StatefulSet.
func SetupWithManager(manager ctrl.Manager, patchConfig *config.Config) error {
	patchController := NewController(manager, patchConfig)

	return ctrl.NewControllerManagedBy(manager).
		For(&appsv1.StatefulSet{}).
		WithOptions(controller.Options{MaxConcurrentReconciles: 1}).
		WithEventFilter(targetPredicate(patchConfig.StatefulSet)).
		Complete(patchController)
}

// targetPredicate drops events for every StatefulSet except the managed one.
func targetPredicate(target core.NamespacedName) predicate.Predicate {
	return predicate.NewPredicateFuncs(func(obj client.Object) bool {
		return obj.GetNamespace() == target.Namespace && obj.GetName() == target.Name
	})
}
