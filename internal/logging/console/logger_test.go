package console_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-fieldkit/internal/logging"
	"github.com/goliatone/go-fieldkit/internal/logging/console"
)

func TestConsoleLoggerWritesSortedFields(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 3, 14, 15, 9, 26, 0, time.UTC)
	minLevel := console.LevelDebug

	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: func() time.Time { return now },
		MinLevel: &minLevel,
	})

	ctx := logging.ContextWithFields(context.Background(), map[string]any{"request_id": "req-1"})
	logger := logging.WithFields(provider.GetLogger("fieldkit.pipeline"), map[string]any{"ctype": "article"}).WithContext(ctx)

	logger.Warn("field.resolve.missing", "field", "hero image", "error", errors.New("not found"))

	got := strings.TrimSpace(buf.String())
	want := `2024-03-14T15:09:26Z WARN field.resolve.missing ctype=article error="not found" field="hero image" logger=fieldkit.pipeline request_id=req-1`
	if got != want {
		t.Fatalf("unexpected entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	minLevel := console.ParseLevel("info")
	provider := console.NewProvider(console.Options{Writer: &buf, MinLevel: &minLevel})

	logger := provider.GetLogger("fieldkit.test")
	logger.Debug("dropped")
	logger.Info("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") || !strings.Contains(out, "kept") {
		t.Fatalf("unexpected output %q", out)
	}
}
