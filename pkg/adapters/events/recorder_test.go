package events

import (
	"fmt"
	"testing"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"

	"statefulsetpatch/pkg/core"
)

type fakeEventRecorder struct {
	events []struct {
		eventType string
		reason    string
		message   string
	}
}

func (f *fakeEventRecorder) Event(object runtime.Object, eventtype, reason, message string) {
	f.events = append(f.events, struct {
		eventType string
		reason    string
		message   string
	}{eventType: eventtype, reason: reason, message: message})
}

func (f *fakeEventRecorder) Eventf(object runtime.Object, eventtype, reason, messageFmt string, args ...interface{}) {
	f.Event(object, eventtype, reason, fmt.Sprintf(messageFmt, args...))
}

func (f *fakeEventRecorder) AnnotatedEventf(object runtime.Object, annotations map[string]string, eventtype, reason, messageFmt string, args ...interface{}) {
}

func TestRecorderHelpers(t *testing.T) {
	fake := &fakeEventRecorder{}
	rec := NewRecorder(fake)
	obj := &appsv1.StatefulSet{ObjectMeta: metav1.ObjectMeta{Namespace: "model", Name: "app"}}

	rec.Patched(obj, core.Result{
		Outcome:  core.OutcomePatched,
		Diffs:    []core.ContainerDiff{{Container: "workload", Changes: []core.FieldChange{{Field: core.FieldImage, To: "app:1.1"}}}},
		Attempts: 1,
	})
	rec.Error(obj, fmt.Errorf("boom"))

	if len(fake.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(fake.events))
	}
	if fake.events[0].reason != "StatefulSetPatched" || fake.events[0].eventType != corev1.EventTypeNormal {
		t.Fatalf("unexpected patched event: %+v", fake.events[0])
	}
	if fake.events[1].eventType != corev1.EventTypeWarning || fake.events[1].reason != "PatchError" {
		t.Fatalf("expected warning error event, got %+v", fake.events[1])
	}
}

func TestRecorderNilGuards(t *testing.T) {
	var rec *Recorder
	obj := &appsv1.StatefulSet{}
	// Must not panic on nil receiver or nil recorder.
	rec.Patched(obj, core.Result{})
	rec.Error(obj, fmt.Errorf("boom"))
	NewRecorder(nil).Patched(obj, core.Result{})
}
