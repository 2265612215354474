package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-fieldkit/internal/logging"
	"github.com/goliatone/go-fieldkit/pkg/interfaces"
)

// HandlerOption configures a Handler instance.
type HandlerOption[T command.Message] func(*Handler[T])

// Handler runs one kind of document command. It validates the message,
// applies the command deadline and reports each execution to telemetry.
type Handler[T command.Message] struct {
	exec      command.CommandFunc[T]
	logger    interfaces.Logger
	timeout   time.Duration
	operation string
	telemetry Telemetry[T]
}

// NewHandler creates a handler that satisfies go-command's Commander
// interface.
func NewHandler[T command.Message](fn command.CommandFunc[T], opts ...HandlerOption[T]) *Handler[T] {
	if fn == nil {
		panic("commands: handler function cannot be nil")
	}
	h := &Handler[T]{
		exec:    fn,
		logger:  logging.NoOp(),
		timeout: DefaultCommandTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.telemetry == nil {
		h.telemetry = DefaultTelemetry[T](h.logger)
	}
	return h
}

// Execute validates msg, runs it under the handler deadline and reports the
// outcome to the telemetry callback. Failures are tagged with a go-errors
// category.
func (h *Handler[T]) Execute(ctx context.Context, msg T) error {
	ctype, language := scopeOf(msg)
	fields := map[string]any{"command": command.GetMessageType(msg)}
	if h.operation != "" {
		fields["operation"] = h.operation
	}
	if ctype != "" {
		fields["ctype"] = ctype
	}
	if language != "" {
		fields["language"] = language
	}
	logger := logging.WithFields(h.logger, fields)

	info := TelemetryInfo{
		Command:   command.GetMessageType(msg),
		Operation: h.operation,
		CType:     ctype,
		Language:  language,
		Logger:    logger,
	}

	if err := command.ValidateMessage(msg); err != nil {
		info.Error, info.Status = err, TelemetryStatusRejected
		h.telemetry(ctx, msg, info)
		return tag(info.Status, err)
	}

	ctx, cancel := withDeadline(ctx, h.timeout)
	defer cancel()

	started := time.Now()
	err := ctx.Err()
	if err == nil {
		logger.Debug("command.started")
		err = h.exec(ctx, msg)
	}
	if err == nil {
		err = ctx.Err()
	}

	info.Duration = time.Since(started)
	info.Error = err
	info.Status = statusOf(err)
	h.telemetry(ctx, msg, info)
	if info.Status == TelemetryStatusSuccess {
		return nil
	}
	return tag(TelemetryStatusFailed, err)
}

// WithTimeout overrides the default execution timeout.
func WithTimeout[T command.Message](timeout time.Duration) HandlerOption[T] {
	return func(h *Handler[T]) {
		if timeout <= 0 {
			h.timeout = 0
			return
		}
		h.timeout = timeout
	}
}

// WithLogger injects the logger used during execution. Defaults to a no-op logger.
func WithLogger[T command.Message](logger interfaces.Logger) HandlerOption[T] {
	return func(h *Handler[T]) {
		if logger == nil {
			logger = logging.NoOp()
		}
		h.logger = logger
	}
}

// WithOperation sets the operation name emitted with every log entry.
func WithOperation[T command.Message](operation string) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.operation = operation
	}
}

// WithTelemetry replaces the default logging telemetry.
func WithTelemetry[T command.Message](telemetry Telemetry[T]) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.telemetry = telemetry
	}
}
