package runtimeconfig

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

var (
	ErrLanguagesRequired       = errors.New("fieldkit config: at least one language is required")
	ErrDefaultLanguageUnknown  = errors.New("fieldkit config: default language must be one of the configured languages")
	ErrUnlimitedLimitInvalid   = errors.New("fieldkit config: relations unlimited limit must be positive")
	ErrMaxDepthInvalid         = errors.New("fieldkit config: relations max depth must be positive")
	ErrStorageProviderUnknown  = errors.New("fieldkit config: storage provider is invalid")
	ErrStorageDialectUnknown   = errors.New("fieldkit config: storage dialect is invalid")
	ErrLoggingProviderRequired = errors.New("fieldkit config: logging provider is required when logging is enabled")
	ErrLoggingProviderUnknown  = errors.New("fieldkit config: logging provider is invalid")
	ErrLoggingLevelInvalid     = errors.New("fieldkit config: logging level is invalid")
	ErrLoggingFormatInvalid    = errors.New("fieldkit config: logging format is invalid")
	ErrHashCostInvalid         = errors.New("fieldkit config: hash cost must be between 4 and 31")
	ErrCacheRequiresBunStorage = errors.New("fieldkit config: repository cache requires the bun storage provider")
)

// DefaultUnlimitedLimit is the query cap used when a relation asks for no limit.
const DefaultUnlimitedLimit = 99999

// Config aggregates everything the pipeline reads at construction time.
type Config struct {
	DefaultLanguage string
	Languages       []string
	Relations       RelationsConfig
	Render          RenderConfig
	Transformers    TransformerConfig
	Storage         StorageConfig
	Cache           CacheConfig
	Logging         LoggingConfig
	Features        Features
}

// RelationsConfig controls relation resolution.
type RelationsConfig struct {
	UnlimitedLimit int
	MaxDepth       int
}

// RenderConfig controls widget rendering.
type RenderConfig struct {
	ContextPrefix     string
	FragmentTemplates map[string]string
	SanitizeFragments bool
}

// TransformerConfig carries ambient options shared by scalar transformers.
type TransformerConfig struct {
	DateFormat string
	Timezone   string
	HashCost   int
	TokenBytes int
}

// StorageConfig selects the document store adapter.
type StorageConfig struct {
	Provider string
	Dialect  string
}

// CacheConfig toggles the repository cache in front of the bun store.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// LoggingConfig selects and configures the logger provider.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// Features toggles optional behaviour.
type Features struct {
	Logger     bool
	Autocreate bool
	Backrefs   bool
}

// DefaultConfig returns a single-language, in-memory configuration.
func DefaultConfig() Config {
	return Config{
		DefaultLanguage: "en",
		Languages:       []string{"en"},
		Relations: RelationsConfig{
			UnlimitedLimit: DefaultUnlimitedLimit,
			MaxDepth:       8,
		},
		Render: RenderConfig{
			ContextPrefix:     "fk",
			SanitizeFragments: true,
		},
		Transformers: TransformerConfig{
			DateFormat: "02.01.2006",
			Timezone:   "UTC",
			HashCost:   10,
			TokenBytes: 32,
		},
		Storage: StorageConfig{
			Provider: "memory",
			Dialect:  "sqlite",
		},
		Cache: CacheConfig{
			DefaultTTL: time.Minute,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Features: Features{
			Autocreate: true,
			Backrefs:   true,
		},
	}
}

// Validate checks the configuration for inconsistencies.
func (cfg Config) Validate() error {
	if len(cfg.Languages) == 0 {
		return ErrLanguagesRequired
	}
	if !slices.Contains(cfg.Languages, cfg.DefaultLanguage) {
		return fmt.Errorf("%w: %q", ErrDefaultLanguageUnknown, cfg.DefaultLanguage)
	}
	if cfg.Relations.UnlimitedLimit <= 0 {
		return ErrUnlimitedLimitInvalid
	}
	if cfg.Relations.MaxDepth <= 0 {
		return ErrMaxDepthInvalid
	}
	if cost := cfg.Transformers.HashCost; cost != 0 && (cost < 4 || cost > 31) {
		return fmt.Errorf("%w: %d", ErrHashCostInvalid, cost)
	}

	provider := normalize(cfg.Storage.Provider)
	switch provider {
	case "", "memory", "bun":
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, cfg.Storage.Provider)
	}
	if provider == "bun" {
		switch normalize(cfg.Storage.Dialect) {
		case "sqlite", "postgres":
		default:
			return fmt.Errorf("%w: %s", ErrStorageDialectUnknown, cfg.Storage.Dialect)
		}
	}
	if cfg.Cache.Enabled && provider != "bun" {
		return ErrCacheRequiresBunStorage
	}

	if cfg.Features.Logger {
		logProvider := normalize(cfg.Logging.Provider)
		if logProvider == "" {
			return ErrLoggingProviderRequired
		}
		if logProvider != "console" && logProvider != "gologger" {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, logProvider)
		}
		if level := normalize(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if logProvider == "gologger" {
			if format := normalize(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedLevel(level string) bool {
	switch level {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	}
	return false
}

func isSupportedFormat(format string) bool {
	switch format {
	case "json", "console", "pretty":
		return true
	}
	return false
}
