package logging

import (
	"context"
	"maps"
	"strings"

	"github.com/goliatone/go-fieldkit/pkg/interfaces"
)

const (
	rootModule         = "fieldkit"
	pipelineModule     = "fieldkit.pipeline"
	transformersModule = "fieldkit.transformers"
	processorsModule   = "fieldkit.processors"
	renderModule       = "fieldkit.render"
	storageModule      = "fieldkit.storage"
	commandsModule     = "fieldkit.commands"
)

const (
	fieldContentType = "ctype"
	fieldKey         = "field"
	fieldDirection   = "direction"
)

// ModuleLogger resolves a logger for module from provider. A nil provider,
// or one that returns nil, yields the no-op logger. The module name is
// attached as a structured field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	module = strings.TrimSpace(module)
	if module == "" {
		module = rootModule
	}
	var logger interfaces.Logger = NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}
	return WithFields(logger, map[string]any{"module": module})
}

// PipelineLogger returns the orchestrator logger.
func PipelineLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, pipelineModule)
}

// TransformersLogger returns the logger used by scalar transformers.
func TransformersLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, transformersModule)
}

// ProcessorsLogger returns the logger used by content processors.
func ProcessorsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, processorsModule)
}

// RenderLogger returns the logger used by widgets and render strategies.
func RenderLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, renderModule)
}

// StorageLogger returns the logger used by document store adapters.
func StorageLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storageModule)
}

// CommandsLogger returns the logger used by command handlers.
func CommandsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, commandsModule)
}

// WithFields attaches fields when logger supports FieldsLogger and returns
// logger unchanged otherwise.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	fieldsLogger, ok := logger.(interfaces.FieldsLogger)
	if !ok {
		return logger
	}
	copied := make(map[string]any, len(fields))
	maps.Copy(copied, fields)
	return fieldsLogger.WithFields(copied)
}

// WithFieldContext annotates logger with the content type, field key and pass
// direction. Blank values are skipped.
func WithFieldContext(logger interfaces.Logger, ctype, key, direction string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(ctype); trimmed != "" {
		fields[fieldContentType] = trimmed
	}
	if trimmed := strings.TrimSpace(key); trimmed != "" {
		fields[fieldKey] = trimmed
	}
	if trimmed := strings.TrimSpace(direction); trimmed != "" {
		fields[fieldDirection] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that discards everything.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var (
	_ interfaces.Logger       = noopLogger{}
	_ interfaces.FieldsLogger = noopLogger{}
)

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger { return n }

func (n noopLogger) WithContext(context.Context) interfaces.Logger { return n }
