// Package patcher reconciles container-level fields of a Kubernetes
// StatefulSet pod template against a caller-declared desired spec. It is a
// single-shot, stateless library: each call fetches a fresh snapshot, computes
// a minimal diff restricted to {image, resources, env, volumeMounts}, and
// submits an optimistic-concurrency merge patch, retrying the whole cycle on
// conflicts up to a bounded number of attempts.
package patcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"statefulsetpatch/pkg/adapters"
	"statefulsetpatch/pkg/core"
)

// Patcher applies desired container specs to a StatefulSet pod template.
// It holds no per-call state and is safe for concurrent use; correctness under
// concurrent writers relies on the API server's resource version check plus
// the bounded retry loop.
type Patcher struct {
	clientAdapter adapters.KubeClient
	backoff       core.BackoffStrategy
	logger        logr.Logger
}

// Option customizes a Patcher.
type Option func(*Patcher)

// WithBackoff overrides the conflict retry strategy.
func WithBackoff(strategy core.BackoffStrategy) Option {
	return func(patcher *Patcher) { patcher.backoff = strategy }
}

// WithLogger attaches a logger; the default discards all output.
func WithLogger(logger logr.Logger) Option {
	return func(patcher *Patcher) { patcher.logger = logger }
}

// New constructs a Patcher around the injected cluster client.
func New(clientAdapter adapters.KubeClient, options ...Option) *Patcher {
	patcher := &Patcher{
		clientAdapter: clientAdapter,
		backoff:       core.DefaultBackoff(),
		logger:        logr.Discard(),
	}
	for _, option := range options {
		option(patcher)
	}
	return patcher
}

// ReconcileContainer reconciles a single named container. Delegates to
// Reconcile with a one-entry update set.
func (patcher *Patcher) ReconcileContainer(requestContext context.Context, target core.NamespacedName, containerName string, spec core.ContainerSpec) (core.Result, error) {
	return patcher.Reconcile(requestContext, target, map[string]core.ContainerSpec{containerName: spec})
}

// Reconcile converges the named containers of the target StatefulSet toward
// their desired specs. When the live state already matches, no write is issued
// and the result reports OutcomeUnchanged. A non-empty diff is submitted as a
// merge patch conditioned on the fetched resource version; conflicts restart
// the read-diff-patch cycle until the retry budget is exhausted.
func (patcher *Patcher) Reconcile(requestContext context.Context, target core.NamespacedName, updates map[string]core.ContainerSpec) (core.Result, error) {
	if target.Namespace == "" || target.Name == "" {
		return core.Result{}, core.WrapValidation(fmt.Errorf("target namespace and name are required"))
	}

	normalizedUpdates, err := normalizeUpdates(updates)
	if err != nil {
		return core.Result{}, err
	}

	var appliedDiffs []core.ContainerDiff

	writeIssued := false

	attempts, err := patcher.backoff.Retry(requestContext, func() error {
		liveStatefulSet, getErr := patcher.clientAdapter.GetStatefulSet(requestContext, target.Namespace, target.Name)
		if getErr != nil {
			return core.ClassifyAPIError(getErr)
		}

		baseStatefulSet := liveStatefulSet.DeepCopy()

		computedDiffs, diffErr := core.ApplyUpdates(normalizedUpdates, &liveStatefulSet.Spec.Template.Spec)
		if diffErr != nil {
			return diffErr
		}

		if len(computedDiffs) == 0 {
			appliedDiffs = nil
			writeIssued = false

			return nil
		}

		if patchErr := patcher.clientAdapter.PatchStatefulSet(requestContext, baseStatefulSet, liveStatefulSet); patchErr != nil {
			return core.ClassifyAPIError(patchErr)
		}

		appliedDiffs = computedDiffs
		writeIssued = true

		return nil
	}, core.IsRetryable)
	if err != nil {
		return core.Result{Attempts: attempts}, patcher.finalizeError(target, attempts, err)
	}

	result := core.Result{Outcome: core.OutcomeUnchanged, Attempts: attempts}
	if writeIssued {
		result.Outcome = core.OutcomePatched
		result.Diffs = appliedDiffs

		patcher.logger.Info("patched statefulset",
			"statefulset", target.String(),
			"changedFields", result.ChangeCount(),
			"attempts", attempts)
	} else {
		patcher.logger.V(1).Info("statefulset already matches desired spec", "statefulset", target.String())
	}

	return result, nil
}

// Remove deletes the managed StatefulSet, tolerating its absence. Used when
// the hosting application is torn down and the platform fails to clean up a
// manually edited StatefulSet.
func (patcher *Patcher) Remove(requestContext context.Context, target core.NamespacedName) error {
	if err := patcher.clientAdapter.DeleteStatefulSet(requestContext, target.Namespace, target.Name); err != nil {
		return core.ClassifyAPIError(err)
	}

	patcher.logger.Info("deleted managed statefulset", "statefulset", target.String())

	return nil
}

// finalizeError maps a retry-loop failure onto the typed error taxonomy.
func (patcher *Patcher) finalizeError(target core.NamespacedName, attempts int, err error) error {
	switch {
	case core.IsConflict(err):
		err = fmt.Errorf("%w: %s after %d attempts: %w", core.ErrConcurrentModification, target, attempts, err)
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		if !errors.Is(err, core.ErrTimeout) {
			err = fmt.Errorf("%w: %w", core.ErrTimeout, err)
		}
	}

	patcher.logger.Error(err, "failed to patch statefulset", "statefulset", target.String(), "attempts", attempts)

	return err
}

// normalizeUpdates deep-copies, defaults, and validates the caller's specs so
// the originals stay untouched for the duration of the reconciliation.
func normalizeUpdates(updates map[string]core.ContainerSpec) (map[string]core.ContainerSpec, error) {
	normalized := make(map[string]core.ContainerSpec, len(updates))

	for containerName, spec := range updates {
		normalized[containerName] = copySpec(spec)
	}

	for containerName := range normalized {
		spec := normalized[containerName]
		core.DefaultSpec(&spec)
		normalized[containerName] = spec
	}

	if err := core.ValidateUpdates(normalized); err != nil {
		return nil, err
	}

	return normalized, nil
}

func copySpec(spec core.ContainerSpec) core.ContainerSpec {
	copied := core.ContainerSpec{Image: spec.Image}

	if spec.Resources != nil {
		copied.Resources = &core.ResourceSpec{
			Memory:   spec.Resources.Memory,
			CPU:      spec.Resources.CPU,
			Limits:   copyStringMap(spec.Resources.Limits),
			Requests: copyStringMap(spec.Resources.Requests),
		}
	}

	if len(spec.Env) > 0 {
		copied.Env = append([]core.EnvVar(nil), spec.Env...)
	}

	if len(spec.VolumeMounts) > 0 {
		copied.VolumeMounts = append([]core.VolumeMount(nil), spec.VolumeMounts...)
	}

	return copied
}

func copyStringMap(source map[string]string) map[string]string {
	if len(source) == 0 {
		return nil
	}

	copied := make(map[string]string, len(source))

	for key, value := range source {
		copied[key] = value
	}

	return copied
}
