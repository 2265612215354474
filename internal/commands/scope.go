package commands

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-fieldkit/internal/logging"
	"github.com/goliatone/go-fieldkit/pkg/interfaces"
)

// DefaultCommandTimeout bounds a single pipeline pass run as a command.
const DefaultCommandTimeout = 30 * time.Second

const commandModuleRoot = "fieldkit.commands"

// Scoped is implemented by messages that act on one content type. Handlers
// add the scope to every log entry and telemetry report.
type Scoped interface {
	Scope() (ctype, language string)
}

// CommandLogger returns the logger for a command module, tagged so entries
// can be told apart from pipeline logs.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "documents"
	}
	return logging.WithFields(logging.ModuleLogger(provider, commandModuleRoot+"."+name), map[string]any{
		"component":      "command",
		"command_module": name,
	})
}

func scopeOf(msg any) (ctype, language string) {
	if scoped, ok := msg.(Scoped); ok {
		ctype, language = scoped.Scope()
	}
	return strings.TrimSpace(ctype), strings.TrimSpace(language)
}

func withDeadline(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
