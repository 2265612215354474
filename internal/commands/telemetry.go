package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-fieldkit/internal/logging"
	"github.com/goliatone/go-fieldkit/pkg/interfaces"
)

// TelemetryStatus is the outcome of one command execution.
type TelemetryStatus string

const (
	TelemetryStatusSuccess TelemetryStatus = "success"
	// TelemetryStatusRejected marks invalid messages and documents that
	// failed field validation.
	TelemetryStatusRejected     TelemetryStatus = "rejected"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo describes a finished command.
type TelemetryInfo struct {
	Command   string
	Operation string
	CType     string
	Language  string
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry is invoked once per execution, after the pipeline pass returns.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry logs one entry per command. Rejected documents are
// logged at warn level since they are caller errors.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	if logger == nil {
		logger = logging.NoOp()
	}
	return func(_ context.Context, _ T, info TelemetryInfo) {
		entry := info.Logger
		if entry == nil {
			entry = logger
		}
		args := []any{"duration_ms", info.Duration.Milliseconds()}
		switch info.Status {
		case TelemetryStatusSuccess:
			entry.Info("command.completed", args...)
		case TelemetryStatusRejected:
			entry.Warn("command.rejected", append(args, "error", info.Error)...)
		case TelemetryStatusContextError:
			entry.Warn("command.aborted", append(args, "error", info.Error)...)
		default:
			entry.Error("command.failed", append(args, "error", info.Error)...)
		}
	}
}
