package server

import (
	"context"
	"errors"
	"testing"

	"github.com/chazu/madeup/vm"
)

func TestRunWorker_Interpret(t *testing.T) {
	report, err := testWorker.Interpret(bg(), triangle)
	if err != nil {
		t.Fatalf("Interpret returned error: %v", err)
	}
	if report.Failed() {
		t.Fatalf("Diagnostic = %q, want none", report.Diagnostic)
	}
	if len(report.Snapshot.Meshes) != 1 {
		t.Errorf("len(Meshes) = %d, want 1", len(report.Snapshot.Meshes))
	}
}

func TestRunWorker_OptionsOverrideBase(t *testing.T) {
	report, err := testWorker.Interpret(bg(), triangle, vm.WithRenderMode(vm.Pathify))
	if err != nil {
		t.Fatal(err)
	}
	if report.Snapshot.Mode != "pathify" || len(report.Snapshot.Paths) != 1 {
		t.Errorf("Snapshot = %+v, want one pathified path", report.Snapshot)
	}
}

func TestRunWorker_SeededBase(t *testing.T) {
	source := "print(message = random(max = 1000000))"
	a, err := testWorker.Interpret(bg(), source)
	if err != nil {
		t.Fatal(err)
	}
	b, err := testWorker.Interpret(bg(), source)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Log) != 1 || len(b.Log) != 1 || a.Log[0] != b.Log[0] {
		t.Errorf("seeded runs logged %v and %v, want equal single lines", a.Log, b.Log)
	}
}

func TestRunWorker_RecoversPanics(t *testing.T) {
	w := NewRunWorker()
	defer w.Stop()

	_, err := w.Do(bg(), func() interface{} { panic("boom") })
	if err == nil || err.Error() != "boom" {
		t.Errorf("Do after panic: err = %v, want boom", err)
	}

	v, err := w.Do(bg(), func() interface{} { return 7 })
	if err != nil || v != 7 {
		t.Errorf("Do after recovery = %v, %v, want 7", v, err)
	}
}

func TestRunWorker_Stopped(t *testing.T) {
	w := NewRunWorker()
	w.Stop()
	w.Stop()

	if _, err := w.Do(bg(), func() interface{} { return nil }); !errors.Is(err, ErrWorkerStopped) {
		t.Errorf("Do after Stop: err = %v, want ErrWorkerStopped", err)
	}
}

func TestRunWorker_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(bg())
	cancel()

	ran := false
	if _, err := testWorker.Do(ctx, func() interface{} { ran = true; return nil }); !errors.Is(err, context.Canceled) {
		t.Errorf("Do with canceled context: err = %v, want context.Canceled", err)
	}
	if ran {
		t.Error("work ran despite the canceled context")
	}
}
