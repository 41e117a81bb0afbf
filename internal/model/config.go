package model

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Config holds all mailroom configuration
type Config struct {
	OCR         OCRConfig         `yaml:"ocr" mapstructure:"ocr"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Detect      DetectConfig      `yaml:"detect" mapstructure:"detect"`
	Assist      AssistConfig      `yaml:"assist" mapstructure:"assist"`
	Catalog     CatalogConfig     `yaml:"catalog" mapstructure:"catalog"`
}

// OCRConfig controls the OCR page-text provider
type OCRConfig struct {
	Enabled        bool     `yaml:"enabled" mapstructure:"enabled"`                   // Allow OCR fallback for scanned batches
	TessdataDir    string   `yaml:"tessdata_dir" mapstructure:"tessdata_dir"`         // Tesseract data directory ("" = system default)
	Languages      []string `yaml:"languages" mapstructure:"languages"`               // OCR languages
	PagesPerSecond float64  `yaml:"pages_per_second" mapstructure:"pages_per_second"` // Rate limit on OCR page recognition
	Burst          int      `yaml:"burst" mapstructure:"burst"`
	SampleMinChars int      `yaml:"sample_min_chars" mapstructure:"sample_min_chars"` // Text-layer chars below which a sampled page counts as empty
}

// CacheConfig controls the page-text cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig controls worker pool sizes
type ConcurrencyConfig struct {
	DocumentWorkers int `yaml:"document_workers" mapstructure:"document_workers"` // Per-document extraction within one batch
	FileWorkers     int `yaml:"file_workers" mapstructure:"file_workers"`         // Parallel batches in `mailroom batch`
}

// OutputConfig controls result placement and reporting
type OutputConfig struct {
	Dir          string `yaml:"dir" mapstructure:"dir"`
	ManifestName string `yaml:"manifest_name" mapstructure:"manifest_name"`
	WriteXLSX    bool   `yaml:"write_xlsx" mapstructure:"write_xlsx"`
	Verbose      bool   `yaml:"verbose" mapstructure:"verbose"`
}

// DetectConfig controls document type auto-detection
type DetectConfig struct {
	MaxPages      int     `yaml:"max_pages" mapstructure:"max_pages"`           // Pages sampled for fingerprints
	MinConfidence float64 `yaml:"min_confidence" mapstructure:"min_confidence"` // Below this the result is low-confidence
}

// AssistConfig controls the optional AI identifier review
type AssistConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Model   string        `yaml:"model" mapstructure:"model"`
	APIKey  string        `yaml:"-" mapstructure:"-"` // Never serialized; comes from OPENAI_API_KEY
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// CatalogConfig points at an optional pattern catalog override file
type CatalogConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // YAML catalog override ("" = built-ins only)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		OCR: OCRConfig{
			Enabled:        true,
			Languages:      []string{"eng"},
			PagesPerSecond: 2.0,
			Burst:          4,
			SampleMinChars: 50,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       defaultCacheDir(),
			MemoryTTL: 1 * time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			DocumentWorkers: runtime.NumCPU(),
			FileWorkers:     2,
		},
		Output: OutputConfig{
			Dir:          "output",
			ManifestName: "manifest.json",
		},
		Detect: DetectConfig{
			MaxPages:      5,
			MinConfidence: 0.35,
		},
		Assist: AssistConfig{
			Model:   "gpt-4o-mini",
			Timeout: 30 * time.Second,
		},
	}
}

// defaultCacheDir places the page-text cache under the user cache
// directory, falling back to a local directory when unavailable
func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return ".mailroom-cache"
	}
	return filepath.Join(base, "mailroom", "pagetext")
}
