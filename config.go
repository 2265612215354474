package fieldkit

import "github.com/goliatone/go-fieldkit/internal/runtimeconfig"

var (
	ErrLanguagesRequired       = runtimeconfig.ErrLanguagesRequired
	ErrDefaultLanguageUnknown  = runtimeconfig.ErrDefaultLanguageUnknown
	ErrUnlimitedLimitInvalid   = runtimeconfig.ErrUnlimitedLimitInvalid
	ErrMaxDepthInvalid         = runtimeconfig.ErrMaxDepthInvalid
	ErrStorageProviderUnknown  = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDialectUnknown   = runtimeconfig.ErrStorageDialectUnknown
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
	ErrHashCostInvalid         = runtimeconfig.ErrHashCostInvalid
	ErrCacheRequiresBunStorage = runtimeconfig.ErrCacheRequiresBunStorage
)

type (
	Config            = runtimeconfig.Config
	RelationsConfig   = runtimeconfig.RelationsConfig
	RenderConfig      = runtimeconfig.RenderConfig
	TransformerConfig = runtimeconfig.TransformerConfig
	StorageConfig     = runtimeconfig.StorageConfig
	CacheConfig       = runtimeconfig.CacheConfig
	LoggingConfig     = runtimeconfig.LoggingConfig
	Features          = runtimeconfig.Features
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
