package scxml

import (
	"context"
	"testing"
)

type recordingLogger struct {
	label, message string
}

func (l *recordingLogger) Log(ctx context.Context, label, message string) {
	l.label, l.message = label, message
}

func TestDefaultActionExecutorRaise(t *testing.T) {
	var raised []string
	exec := DefaultActionExecutor{}
	err := exec.Execute(context.Background(), RaiseAction{Event: "done"}, func(name string) {
		raised = append(raised, name)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(raised) != 1 || raised[0] != "done" {
		t.Fatalf("raised = %v, want [done]", raised)
	}
}

func TestDefaultActionExecutorLog(t *testing.T) {
	logger := &recordingLogger{}
	exec := DefaultActionExecutor{Logger: logger}
	err := exec.Execute(context.Background(), LogAction{Label: "info", Expr: "hello"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger.label != "info" || logger.message != "hello" {
		t.Fatalf("logger got (%q, %q)", logger.label, logger.message)
	}
}

func TestDefaultActionExecutorNilLoggerIsNoOp(t *testing.T) {
	exec := DefaultActionExecutor{}
	if err := exec.Execute(context.Background(), LogAction{Label: "info", Expr: "x"}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
