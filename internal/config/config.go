package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values, chosen for polite scraping of a small
// public site.
const (
	// DefaultBaseURL is the root of the TAAN member directory.
	DefaultBaseURL = "https://www.taan.org.np"

	// DefaultWorkers is the number of concurrent fetch workers.
	// Ten workers saturate the site's response time without hammering it.
	DefaultWorkers = 10

	// DefaultTimeout bounds each individual HTTP request. The directory is
	// hosted on modest infrastructure; 30 seconds avoids false failures on
	// slow pages while still bounding worst-case per-task latency.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxAttempts is the total number of tries per request,
	// including the first. Transient failures are retried up to this
	// count; permanent failures are never retried.
	DefaultMaxAttempts = 3

	// DefaultBackoffBase is the delay before the first retry. Subsequent
	// retries double the delay: base * 2^(attempt-1), capped at
	// DefaultBackoffCap.
	DefaultBackoffBase = 500 * time.Millisecond

	// DefaultBackoffCap bounds the retry delay regardless of attempt count.
	DefaultBackoffCap = 8 * time.Second

	// DefaultRequestsPerSecond is the shared politeness limit across all
	// workers: one request every half second regardless of worker count.
	DefaultRequestsPerSecond = 2.0

	// DefaultPlaceholder fills any field that could not be extracted.
	// No cell in the output file is ever empty.
	DefaultPlaceholder = "0"

	// DefaultOutputFile is the spreadsheet written at the end of a run.
	DefaultOutputFile = "ScrapedData.xlsx"

	// DefaultUserAgent is sent with every request so the site operator can
	// identify scraper traffic.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// AppName is the application name used for XDG directory paths.
	AppName = "taanscrape"
)

// Output formats supported by the exporter.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// Config holds all settings for a scrape run.
// It is populated from defaults, then the optional config file, then CLI
// flags, and is read-only once the run starts.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., FetchConfig, ExportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without benefit.
type Config struct {
	// BaseURL is the root of the member directory to scrape.
	// Overridable mainly so tests can point at an httptest server.
	BaseURL string `yaml:"base_url"`

	// Workers is the number of concurrent fetch workers.
	Workers int `yaml:"workers"`

	// Timeout is the per-request HTTP timeout.
	Timeout Duration `yaml:"timeout"`

	// MaxAttempts is the total tries per request, including the first.
	MaxAttempts int `yaml:"max_attempts"`

	// BackoffBase is the delay before the first retry; doubled each
	// subsequent attempt and capped at BackoffCap.
	BackoffBase Duration `yaml:"backoff_base"`

	// BackoffCap bounds the retry delay.
	BackoffCap Duration `yaml:"backoff_cap"`

	// RequestsPerSecond is the shared rate limit across workers.
	// Zero or negative disables rate limiting.
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// Placeholder fills fields that could not be extracted.
	Placeholder string `yaml:"placeholder"`

	// OutputFile is the path of the spreadsheet to write.
	OutputFile string `yaml:"output_file"`

	// Format selects the output format: xlsx or csv.
	// Empty means derive from the OutputFile extension, defaulting to xlsx.
	Format string `yaml:"format"`

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string `yaml:"user_agent"`

	// SummaryFile, when set, is where the Markdown run summary is written.
	SummaryFile string `yaml:"summary_file"`

	// HistoryDir is the directory holding the run-history database.
	// Empty means the XDG data directory for taanscrape.
	HistoryDir string `yaml:"history_dir"`

	// SaveHistory controls whether the run is recorded in the history
	// database after a successful export.
	SaveHistory bool `yaml:"save_history"`

	// Verbose enables debug-level logging.
	Verbose bool `yaml:"-"`
}

// NewConfig returns a Config with default values.
//
// Design decision: We use a constructor instead of relying on zero values
// because most defaults are non-zero (timeouts, worker counts). It also
// documents what the defaults are.
func NewConfig() *Config {
	return &Config{
		BaseURL:           DefaultBaseURL,
		Workers:           DefaultWorkers,
		Timeout:           Duration(DefaultTimeout),
		MaxAttempts:       DefaultMaxAttempts,
		BackoffBase:       Duration(DefaultBackoffBase),
		BackoffCap:        Duration(DefaultBackoffCap),
		RequestsPerSecond: DefaultRequestsPerSecond,
		Placeholder:       DefaultPlaceholder,
		OutputFile:        DefaultOutputFile,
		UserAgent:         DefaultUserAgent,
		SaveHistory:       true,
	}
}

// XDGDataDir returns the XDG data directory for taanscrape.
// On Linux: ~/.local/share/taanscrape
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// ResolvedFormat returns the output format, deriving it from the output
// file extension when Format is unset. Unknown extensions default to xlsx.
func (c *Config) ResolvedFormat() string {
	if c.Format != "" {
		return c.Format
	}
	if filepath.Ext(c.OutputFile) == ".csv" {
		return FormatCSV
	}
	return FormatXLSX
}

// Validate checks that the configuration is usable.
// It returns the first problem found; an invalid configuration is a fatal
// startup error and no output file is written.
//
// Design decision: We validate once up front rather than at each point of
// use so a bad flag fails fast with a clear message before any network
// traffic.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidBaseURL
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}
	if c.BackoffBase <= 0 || c.BackoffCap <= 0 || c.BackoffCap < c.BackoffBase {
		return ErrInvalidBackoff
	}
	if c.Placeholder == "" {
		return ErrInvalidPlaceholder
	}
	if c.OutputFile == "" {
		return ErrInvalidOutputPath
	}
	if f := c.ResolvedFormat(); f != FormatXLSX && f != FormatCSV {
		return ErrUnknownFormat
	}
	return nil
}
