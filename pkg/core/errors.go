package core

import (
	"context"
	"errors"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// Sentinel errors returned by reconciliation. Callers match them with
// errors.Is and decide logging/status behavior; nothing is swallowed here.
var (
	// ErrValidation indicates a malformed desired spec. Never retried.
	ErrValidation = errors.New("invalid desired spec")
	// ErrNotFound indicates the target StatefulSet does not exist.
	ErrNotFound = errors.New("statefulset not found")
	// ErrContainerNotFound indicates a named container is absent from the pod template.
	ErrContainerNotFound = errors.New("container not found in pod template")
	// ErrConcurrentModification indicates conflict retries were exhausted.
	ErrConcurrentModification = errors.New("statefulset modified concurrently")
	// ErrPermission indicates the API rejected the call due to insufficient RBAC.
	ErrPermission = errors.New("insufficient permissions")
	// ErrTimeout indicates the caller deadline expired before the patch converged.
	ErrTimeout = errors.New("deadline exceeded")
)

// WrapValidation wraps an error as a validation failure.
func WrapValidation(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// ClassifyAPIError translates a Kubernetes API error into the patcher's error
// taxonomy. Conflicts are left untouched so the retry loop can detect them
// with IsConflict; everything else passes through wrapped or as-is.
func ClassifyAPIError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case apierrors.IsNotFound(err):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case apierrors.IsForbidden(err) || apierrors.IsUnauthorized(err):
		return fmt.Errorf("%w: %w", ErrPermission, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}

// IsConflict reports whether the error chain contains an optimistic-concurrency
// conflict (resource version mismatch).
func IsConflict(err error) bool {
	for current := err; current != nil; current = errors.Unwrap(current) {
		if apierrors.IsConflict(current) {
			return true
		}
	}
	return false
}

// IsRetryable reports whether an error is worth another read-diff-patch cycle.
// Only contention and API throttling qualify; validation, missing objects, and
// RBAC failures surface immediately.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrContainerNotFound) || errors.Is(err, ErrPermission) ||
		errors.Is(err, ErrTimeout) {
		return false
	}
	for current := err; current != nil; current = errors.Unwrap(current) {
		if apierrors.IsConflict(current) || apierrors.IsTooManyRequests(current) ||
			apierrors.IsServerTimeout(current) || apierrors.IsTimeout(current) {
			return true
		}
	}
	return false
}
