package aggregates

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodeOfSurvivesWrapping(t *testing.T) {
	base := Forbidden("task.set_status", "You can only update your own tasks")
	wrapped := fmt.Errorf("ledger: %w", base)
	if got := CodeOf(wrapped); got != CodeForbidden {
		t.Fatalf("CodeOf: want=%s got=%s", CodeForbidden, got)
	}
	if got := MessageOf(wrapped); got != "You can only update your own tasks" {
		t.Fatalf("MessageOf: got=%q", got)
	}
	if !IsCode(wrapped, CodeForbidden) {
		t.Fatalf("IsCode: expected forbidden")
	}
}

func TestCodeOfPlainError(t *testing.T) {
	if got := CodeOf(errors.New("boom")); got != "" {
		t.Fatalf("plain error: want empty code got=%s", got)
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(CodeInternal, "op", nil) != nil {
		t.Fatalf("Wrap(nil) must stay nil")
	}
}

func TestErrorString(t *testing.T) {
	err := NotFound("task.get", "Task not found")
	if got := err.Error(); got != "task.get: Task not found (not_found)" {
		t.Fatalf("Error(): got=%q", got)
	}
	cause := errors.New("driver")
	if !errors.Is(Wrap(CodeInternal, "op", cause), cause) {
		t.Fatalf("Wrap must keep cause reachable")
	}
}
