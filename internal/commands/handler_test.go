package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type testMessage struct{}

func (testMessage) Type() string { return "fieldkit.test.message" }

func (testMessage) Scope() (string, string) { return "post", "es" }

func (testMessage) Validate() error { return nil }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "fieldkit.test.invalid" }

func (invalidMessage) Validate() error {
	return validationError()
}

func validationError() error {
	return errors.New("invalid")
}

func TestHandlerExecuteSuccess(t *testing.T) {
	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !called {
		t.Fatal("expected handler to be invoked")
	}
}

func TestHandlerValidationShortCircuitsExecution(t *testing.T) {
	called := false
	h := NewHandler[invalidMessage](func(ctx context.Context, msg invalidMessage) error {
		called = true
		return nil
	})

	err := h.Execute(context.Background(), invalidMessage{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when validation fails")
	}
}

func TestHandlerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	err := h.Execute(ctx, testMessage{})
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when context is cancelled")
	}
}

func TestHandlerWrapsExecutionError(t *testing.T) {
	execErr := errors.New("boom")
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return execErr
	})

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected wrapped execution error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if !goerrors.HasCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category to propagate, got %v", err)
	}
}

func TestHandlerHonoursTimeoutOption(t *testing.T) {
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(20 * time.Millisecond):
			return nil
		}
	}, WithTimeout[testMessage](10*time.Millisecond))

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category for timeout, got %v", err)
	}
}

func TestHandlerReportsTelemetry(t *testing.T) {
	var infos []TelemetryInfo
	telemetry := func(_ context.Context, _ testMessage, info TelemetryInfo) {
		infos = append(infos, info)
	}
	ok := NewHandler[testMessage](func(context.Context, testMessage) error { return nil },
		WithOperation[testMessage]("documents.present"), WithTelemetry[testMessage](telemetry))
	failing := NewHandler[testMessage](func(context.Context, testMessage) error { return errors.New("boom") },
		WithTelemetry[testMessage](telemetry))

	_ = ok.Execute(context.Background(), testMessage{})
	_ = failing.Execute(context.Background(), testMessage{})

	if len(infos) != 2 {
		t.Fatalf("expected two telemetry entries, got %d", len(infos))
	}
	if infos[0].Status != TelemetryStatusSuccess || infos[0].Operation != "documents.present" || infos[0].Command != "fieldkit.test.message" || infos[0].CType != "post" || infos[0].Language != "es" {
		t.Fatalf("unexpected success telemetry: %#v", infos[0])
	}
	if infos[1].Status != TelemetryStatusFailed || infos[1].Error == nil {
		t.Fatalf("unexpected failure telemetry: %#v", infos[1])
	}
}

func TestHandlerReportsRejectedMessages(t *testing.T) {
	var status TelemetryStatus
	h := NewHandler[invalidMessage](func(context.Context, invalidMessage) error { return nil },
		WithTelemetry[invalidMessage](func(_ context.Context, _ invalidMessage, info TelemetryInfo) {
			status = info.Status
		}))

	if err := h.Execute(context.Background(), invalidMessage{}); err == nil {
		t.Fatal("expected validation error")
	}
	if status != TelemetryStatusRejected {
		t.Fatalf("expected rejected status, got %q", status)
	}
}

func TestHandlerKeepsCategoryOfTaggedErrors(t *testing.T) {
	tagged := goerrors.Wrap(errors.New("systitle: required"), goerrors.CategoryValidation, "document validation failed")
	var status TelemetryStatus
	h := NewHandler[testMessage](func(context.Context, testMessage) error { return tagged },
		WithTelemetry[testMessage](func(_ context.Context, _ testMessage, info TelemetryInfo) {
			status = info.Status
		}))

	err := h.Execute(context.Background(), testMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if status != TelemetryStatusRejected {
		t.Fatalf("expected rejected status, got %q", status)
	}
}
