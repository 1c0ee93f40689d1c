package statefulsetpatch

import (
	"context"
	"errors"
	"time"

	"github.com/go-logr/logr"
	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	"statefulsetpatch/pkg/adapters"
	"statefulsetpatch/pkg/adapters/events"
	"statefulsetpatch/pkg/adapters/metrics"
	"statefulsetpatch/pkg/config"
	"statefulsetpatch/pkg/core"
	"statefulsetpatch/pkg/patcher"
)

// Requeue delays per error class. Conflicts resolve quickly; a missing
// StatefulSet usually means the platform has not created it yet.
const (
	conflictRequeueDelay = 5 * time.Second
	missingRequeueDelay  = 30 * time.Second
)

// StatefulSetPatchController keeps one managed StatefulSet converged on the
// configured container specs. It re-applies the patch whenever the object
// changes and on a periodic resync, mirroring how the patch is re-applied on
// install, config-changed, and status-update events in the hosting runtime.
type StatefulSetPatchController struct {
	client.Client
	logger          logr.Logger
	patcher         *patcher.Patcher
	eventRecorder   *events.Recorder
	metricsRecorder *metrics.Recorder
	target          core.NamespacedName
	updates         map[string]core.ContainerSpec
	specHash        string
	resyncPeriod    time.Duration
}

var _ reconcile.Reconciler = &StatefulSetPatchController{}

// NewController constructs a StatefulSetPatchController wired with the manager's client.
func NewController(manager ctrl.Manager, patchConfig *config.Config) *StatefulSetPatchController {
	logger := ctrl.Log.WithName("controllers").WithName("StatefulSetPatch")
	kubeClient := adapters.NewControllerRuntimeClient(manager.GetClient())

	return &StatefulSetPatchController{
		Client:          manager.GetClient(),
		logger:          logger,
		patcher:         patcher.New(kubeClient, patcher.WithLogger(logger)),
		eventRecorder:   events.NewRecorder(manager.GetEventRecorderFor("statefulset-patcher")),
		metricsRecorder: metrics.Default(),
		target:          patchConfig.StatefulSet,
		updates:         patchConfig.Containers,
		specHash:        core.HashUpdates(patchConfig.Containers),
		resyncPeriod:    patchConfig.ResyncPeriod(),
	}
}

// Reconcile runs one read-diff-patch cycle for the managed StatefulSet and
// translates the outcome into a requeue decision.
func (controller *StatefulSetPatchController) Reconcile(requestContext context.Context, reconcileRequest ctrl.Request) (ctrl.Result, error) {
	if reconcileRequest.Namespace != controller.target.Namespace || reconcileRequest.Name != controller.target.Name {
		return ctrl.Result{}, nil
	}

	requestLogger := controller.logger.WithValues("statefulset", controller.target.String(), "specHash", shortHash(controller.specHash))

	start := time.Now()
	result, err := controller.patcher.Reconcile(requestContext, controller.target, controller.updates)
	duration := time.Since(start)

	controller.metricsRecorder.ObserveReconcile(result, err, duration)

	eventObject := controller.eventObject()
	if err != nil {
		controller.eventRecorder.Error(eventObject, err)

		return requeueFor(err, requestLogger)
	}

	if result.Unchanged() {
		requestLogger.V(1).Info("no patch needed")
	} else {
		requestLogger.Info("applied patch", "changedFields", result.ChangeCount(), "attempts", result.Attempts)
		controller.eventRecorder.Patched(eventObject, result)
	}

	return ctrl.Result{RequeueAfter: controller.resyncPeriod}, nil
}

// eventObject returns a reference skeleton for event attachment; the recorder
// resolves the object reference from the scheme plus this metadata.
func (controller *StatefulSetPatchController) eventObject() *appsv1.StatefulSet {
	return &appsv1.StatefulSet{ObjectMeta: metav1.ObjectMeta{
		Namespace: controller.target.Namespace,
		Name:      controller.target.Name,
	}}
}

// requeueFor maps the typed error taxonomy onto controller requeue behavior.
// Configuration errors wait for operator action instead of spinning.
func requeueFor(err error, logger logr.Logger) (ctrl.Result, error) {
	switch {
	case errors.Is(err, core.ErrConcurrentModification):
		logger.Info("statefulset contended, retrying later", "error", err.Error())

		return ctrl.Result{RequeueAfter: conflictRequeueDelay}, nil
	case errors.Is(err, core.ErrNotFound):
		logger.Info("statefulset not created yet, retrying later")

		return ctrl.Result{RequeueAfter: missingRequeueDelay}, nil
	case errors.Is(err, core.ErrValidation), errors.Is(err, core.ErrContainerNotFound), errors.Is(err, core.ErrPermission):
		logger.Error(err, "configuration error, not requeueing")

		return ctrl.Result{}, nil
	default:
		logger.Error(err, "reconciliation failed")

		return ctrl.Result{}, err
	}
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}

	return hash
}
