package events

import (
	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/tools/record"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"statefulsetpatch/pkg/core"
)

// Recorder wraps a controller-runtime EventRecorder with helper methods
// specific to StatefulSet patch reconciliation.
//
// The helper methods guard against nil receivers so tests can pass a nil
// recorder when event emission is not under test.
type Recorder struct {
	recorder record.EventRecorder
}

// NewRecorder constructs a Recorder from the provided controller-runtime EventRecorder.
func NewRecorder(rec record.EventRecorder) *Recorder {
	return &Recorder{recorder: rec}
}

// Patched records an event indicating the StatefulSet pod template was patched.
func (r *Recorder) Patched(obj client.Object, result core.Result) {
	if r == nil || r.recorder == nil {
		return
	}
	r.recorder.Eventf(obj, corev1.EventTypeNormal, "StatefulSetPatched",
		"patched %d container field(s) across %d container(s) in %d attempt(s)",
		result.ChangeCount(), len(result.Diffs), result.Attempts)
}

// Error records an event indicating reconciliation failed.
func (r *Recorder) Error(obj client.Object, err error) {
	if r == nil || r.recorder == nil || err == nil {
		return
	}
	r.recorder.Eventf(obj, corev1.EventTypeWarning, "PatchError", "reconciliation error: %v", err)
}
