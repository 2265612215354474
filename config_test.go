package fieldkit_test

import (
	"errors"
	"testing"

	fieldkit "github.com/goliatone/go-fieldkit"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := fieldkit.DefaultConfig().Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
}

func TestConfigValidateCacheRequiresBunStorage(t *testing.T) {
	cfg := fieldkit.DefaultConfig()
	cfg.Cache.Enabled = true

	if err := cfg.Validate(); !errors.Is(err, fieldkit.ErrCacheRequiresBunStorage) {
		t.Fatalf("expected ErrCacheRequiresBunStorage, got %v", err)
	}
}

func TestConfigValidateDefaultLanguageMustBeConfigured(t *testing.T) {
	cfg := fieldkit.DefaultConfig()
	cfg.Languages = []string{"de", "fr"}

	if err := cfg.Validate(); !errors.Is(err, fieldkit.ErrDefaultLanguageUnknown) {
		t.Fatalf("expected ErrDefaultLanguageUnknown, got %v", err)
	}
}

func TestConfigValidateLoggingProviderUnknown(t *testing.T) {
	cfg := fieldkit.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "syslog"

	if err := cfg.Validate(); !errors.Is(err, fieldkit.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestConfigValidateHashCostBounds(t *testing.T) {
	cfg := fieldkit.DefaultConfig()
	cfg.Transformers.HashCost = 40

	if err := cfg.Validate(); !errors.Is(err, fieldkit.ErrHashCostInvalid) {
		t.Fatalf("expected ErrHashCostInvalid, got %v", err)
	}
}
