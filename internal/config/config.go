package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "wikicrawler"

	// DefaultBaseURL is the wiki searched when none is configured.
	DefaultBaseURL = "https://en.wikipedia.org"

	// DefaultMaxDepth bounds the number of hops a path may have. Most
	// article pairs are connected within six hops.
	DefaultMaxDepth = 6

	// DefaultMaxPagesFetched is the safety ceiling on network fetches per
	// search. Pages served from the link cache do not count.
	DefaultMaxPagesFetched = 5000

	// DefaultRequestDelay is the minimum time between two requests to the
	// wiki, shared by every search of the process.
	DefaultRequestDelay = 100 * time.Millisecond

	// DefaultFetchRetryLimit is how many times a transient failure is
	// retried before the page is given up.
	DefaultFetchRetryLimit = 3

	// DefaultWorkers is how many pages of a layer are fetched at once.
	// The rate limit still applies, so workers mostly hide latency.
	DefaultWorkers = 4

	// DefaultConcurrency is how many searches run at once when several
	// targets are given.
	DefaultConcurrency = 2

	// DefaultTimeout is the timeout of a single HTTP request.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies the crawler. Wikimedia asks automated
	// clients to send a descriptive User-Agent with contact information.
	DefaultUserAgent = "WikiCrawler/1.0 (+https://github.com/Baykugan/Wiki-Crawler)"

	// DefaultIterations is how many rounds of searches run. Each round
	// searches every target from one start page.
	DefaultIterations = 1

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB covers the largest articles while preventing memory exhaustion.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB
)

// Config holds all configuration options for the crawler.
// This struct is populated from CLI flags and the config file and passed
// through the application rather than kept as global state.
//
// Design decision: We use a single flat struct instead of nested structs
// for simplicity. The number of options is manageable, and nesting would
// add complexity without significant benefit.
type Config struct {
	// StartPage is the article the search starts from, as a title or URL.
	StartPage string

	// RandomStart picks a random article as the start page.
	// StartPage must be empty when it is set.
	RandomStart bool

	// Continuous takes start pages from the queue in the database, one
	// round per page, and picks random starts once the queue is empty.
	// StartPage must be empty when it is set.
	Continuous bool

	// Iterations is how many rounds run. Zero runs until the queue is
	// empty or the search is interrupted and is only valid with
	// Continuous. More than one round needs a random or queued start.
	Iterations int

	// QueueStarts are start pages added to the queue before a continuous
	// run, ahead of everything queued automatically.
	QueueStarts []string

	// ShareStarts queues the start pages of earlier searches that have no
	// path to one of the targets yet, so every target is tried from them.
	ShareStarts bool

	// Targets are the articles to find paths to. Each target is searched
	// independently.
	Targets []string

	// BaseURL is the wiki to search, e.g. "https://simple.wikipedia.org".
	BaseURL string

	// MirrorDir reads articles from a directory of saved HTML pages
	// instead of the network when set.
	MirrorDir string

	// ProxyAddress routes requests through a SOCKS5 proxy
	// ("[socks5://][user:pass@]host:port"). Empty connects directly.
	ProxyAddress string

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// Headers are additional HTTP headers sent with every request.
	Headers map[string]string

	// MaxDepth is the maximum number of hops of a path.
	MaxDepth int

	// MaxPagesFetched is the ceiling on network fetches per search.
	// Zero means no ceiling.
	MaxPagesFetched int

	// RequestDelay is the minimum time between two requests.
	// Zero disables rate limiting.
	RequestDelay time.Duration

	// FetchRetryLimit is how many times a transient failure is retried.
	FetchRetryLimit int

	// Workers is how many pages of a layer are fetched concurrently.
	Workers int

	// Concurrency is how many searches run at once for several targets.
	Concurrency int

	// Timeout is the timeout of each HTTP request.
	Timeout time.Duration

	// MaxBodySize is the maximum response body size in bytes to read.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64

	// Canonicalize resolves the start and target through redirects before
	// searching, so "USA" is searched as "United States".
	Canonicalize bool

	// UseCache reads and stores article links in the database, so pages
	// expanded by an earlier search are not fetched again.
	UseCache bool

	// CacheMaxAge is how long cached links stay valid. Zero keeps them
	// forever.
	CacheMaxAge time.Duration

	// SaveHistory records every search in the database.
	SaveHistory bool

	// DBDir is the directory of the SQLite database.
	// Defaults to the XDG data directory (~/.local/share/wikicrawler on Linux).
	DBDir string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// LogJSON writes log records as JSON lines instead of text.
	LogJSON bool

	// JSONReport enables JSON report output instead of the path line.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of the path line.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// MetricsAddr serves Prometheus metrics on this address while the
	// search runs, e.g. ":9090". Empty disables the endpoint.
	MetricsAddr string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .wikicrawler in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// Wiki selects a named wiki profile from the config file.
	Wiki string

	// WikiConfigs holds the profiles loaded from the config file.
	WikiConfigs *File
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., depth, delay).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		BaseURL:         DefaultBaseURL,
		UserAgent:       DefaultUserAgent,
		MaxDepth:        DefaultMaxDepth,
		MaxPagesFetched: DefaultMaxPagesFetched,
		RequestDelay:    DefaultRequestDelay,
		FetchRetryLimit: DefaultFetchRetryLimit,
		Workers:         DefaultWorkers,
		Concurrency:     DefaultConcurrency,
		Iterations:      DefaultIterations,
		Timeout:         DefaultTimeout,
		MaxBodySize:     DefaultMaxBodySize,
		Canonicalize:    true,
		UseCache:        true,
		SaveHistory:     true,
		DBDir:           XDGDataDir(),
	}
}

// ApplyWiki overlays the wiki profile values onto the configuration.
// Only values set in the profile change the configuration; callers apply
// command line flags afterwards so flags win.
func (c *Config) ApplyWiki(w WikiConfig) {
	if w.BaseURL != "" {
		c.BaseURL = w.BaseURL
	}
	if w.UserAgent != "" {
		c.UserAgent = w.UserAgent
	}
	if len(w.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = make(map[string]string, len(w.Headers))
		}
		for k, v := range w.Headers {
			c.Headers[k] = v
		}
	}
	if w.MaxDepth != 0 {
		c.MaxDepth = w.MaxDepth
	}
	if w.MaxPagesFetched != 0 {
		c.MaxPagesFetched = w.MaxPagesFetched
	}
	if w.RequestDelay != 0 {
		c.RequestDelay = w.RequestDelay
	}
	if w.Workers != 0 {
		c.Workers = w.Workers
	}
	if w.Proxy != "" {
		c.ProxyAddress = w.Proxy
	}
}

// XDGDataDir returns the XDG data directory for the crawler, where the
// database lives.
// On Linux: ~/.local/share/wikicrawler
// On macOS: ~/Library/Application Support/wikicrawler
// On Windows: %LOCALAPPDATA%\wikicrawler
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for the crawler.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for the crawler. The
// default mirror directory is "mirror" inside it.
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// DefaultMirrorDir returns the mirror directory used when --mirror is
// given without a path.
func DefaultMirrorDir() string {
	return filepath.Join(XDGCacheDir(), "mirror")
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// We return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.StartPage == "" && !c.RandomStart && !c.Continuous {
		return ErrNoStartPage
	}
	if c.StartPage != "" && (c.RandomStart || c.Continuous) {
		return ErrConflictingStart
	}

	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	if c.Iterations < 0 || (c.Iterations == 0 && !c.Continuous) {
		return ErrInvalidIterations
	}
	// Every round from the same fixed start would find the same paths.
	if c.Iterations > 1 && c.StartPage != "" {
		return ErrRepeatedStart
	}
	if (len(c.QueueStarts) > 0 || c.ShareStarts) && !c.Continuous {
		return ErrQueueNeedsContinuous
	}

	if c.MaxDepth < 1 {
		return ErrInvalidMaxDepth
	}

	if c.MaxPagesFetched < 0 {
		return ErrInvalidMaxPages
	}

	if c.RequestDelay < 0 {
		return ErrInvalidRequestDelay
	}

	if c.FetchRetryLimit < 0 {
		return ErrInvalidRetryLimit
	}

	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.CacheMaxAge < 0 {
		return ErrInvalidCacheMaxAge
	}

	return nil
}
