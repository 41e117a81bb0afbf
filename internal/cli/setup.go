package cli

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/virtualmailroom/mailroom/internal/cache"
	"github.com/virtualmailroom/mailroom/internal/catalog"
	"github.com/virtualmailroom/mailroom/internal/model"
	"github.com/virtualmailroom/mailroom/internal/pagetext"
)

// newLogger builds the structured logger for pipeline internals. The
// CLI's own progress output stays on stderr prints.
func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// loadConfig resolves the effective configuration: defaults, then the
// config file, then MAILROOM_* environment variables
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if viper.ConfigFileUsed() != "" {
		if err := viper.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	cfg.Assist.APIKey = os.Getenv("OPENAI_API_KEY")
	cfg.Output.Verbose = verbose
	return cfg, nil
}

// loadCatalog returns the built-in document types plus any YAML
// override file
func loadCatalog(cfg *model.Config) (*catalog.Catalog, error) {
	cat := catalog.Builtin()
	if cfg.Catalog.Path != "" {
		if err := cat.LoadFile(cfg.Catalog.Path); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", cfg.Catalog.Path, err)
		}
	}
	return cat, nil
}

// newProvider assembles the page-text provider chain: text layer, OCR
// fallback for raw scans, and the layered cache in front of both
func newProvider(cfg *model.Config, logger *zap.Logger) pagetext.Provider {
	var ocr pagetext.Provider
	if cfg.OCR.Enabled {
		ocr = pagetext.NewOCR(pagetext.NewPoppler(0), cfg.OCR, logger)
	}

	var provider pagetext.Provider = pagetext.NewFallback(
		pagetext.NewTextLayer(), ocr, cfg.OCR.SampleMinChars, logger)

	if cfg.Cache.Enabled {
		store := cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		provider = pagetext.NewCached(provider, store, cfg.Cache.DiskTTL, logger)
	}
	return provider
}
