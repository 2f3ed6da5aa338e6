package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/Baykugan/Wiki-Crawler/internal/config"
	"github.com/Baykugan/Wiki-Crawler/internal/crawler"
	"github.com/Baykugan/Wiki-Crawler/internal/database"
	"github.com/Baykugan/Wiki-Crawler/internal/log"
	"github.com/Baykugan/Wiki-Crawler/internal/model"
	"github.com/Baykugan/Wiki-Crawler/internal/pipeline"
	"github.com/Baykugan/Wiki-Crawler/internal/report"
	"github.com/Baykugan/Wiki-Crawler/internal/wiki"
)

// errSearchFailed is returned when at least one search ended with an error.
// Searches that finish without a path are not failures.
var errSearchFailed = errors.New("search failed")

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [start] <target> [target...]",
		Short: "Find the shortest link path between articles",
		Long: `Search finds the shortest chain of article links from a start page to one or
more target pages.

Pages may be given as titles, /wiki/ paths or full article URLs. Redirects
are followed, so "USA" is searched as "United States". Each target is
searched independently; several targets run concurrently and share one
request rate limit.

Examples:
  # Find a path between two articles
  wikicrawler search "Go (programming language)" "Philosophy"

  # Start from a random article
  wikicrawler search --random Philosophy

  # Several targets from the same start
  wikicrawler search Tea Japan China India

  # Search Simple English Wikipedia using a profile from .wikicrawler
  wikicrawler search --wiki simple Cat Dog

  # Search from 10 random articles, printing each path as it is found
  wikicrawler search --random --iterations 10 Philosophy

  # Work off queued start pages until interrupted
  wikicrawler search --continuous --enqueue Tea --enqueue Cat Philosophy

  # Search an offline mirror of saved pages
  wikicrawler search --mirror ./pages Start Goal

  # Output a Markdown report with a flowchart of the path
  wikicrawler search --markdown -o report.md Tea Japan`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearchCmd,
	}

	// Search limit flags
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum number of links in a path")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPagesFetched,
		"Maximum number of pages fetched per search (0 = no limit)")
	cmd.Flags().DurationP("delay", "D", config.DefaultRequestDelay,
		"Minimum time between two requests")
	cmd.Flags().Int("retries", config.DefaultFetchRetryLimit,
		"Number of retries for failed requests")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of pages fetched concurrently")
	cmd.Flags().IntP("concurrency", "b", config.DefaultConcurrency,
		"Number of targets searched concurrently")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum article size in bytes")

	// Source flags
	cmd.Flags().BoolP("random", "r", false,
		"Start from a random article (all arguments are targets)")
	cmd.Flags().Bool("continuous", false,
		"Take start pages from the queue, then random articles (all arguments are targets)")
	cmd.Flags().IntP("iterations", "n", config.DefaultIterations,
		"Number of rounds with a new start page (0 = until stopped, with --continuous)")
	cmd.Flags().StringArray("enqueue", nil,
		"Queue a start page before a continuous run (repeatable)")
	cmd.Flags().Bool("share-starts", false,
		"Queue earlier start pages that have no path to a target yet (with --continuous)")
	cmd.Flags().String("base-url", config.DefaultBaseURL,
		"Wiki to search")
	cmd.Flags().String("wiki", "",
		"Wiki profile from the configuration file")
	cmd.Flags().String("mirror", "",
		"Read articles from a directory of saved HTML pages")
	cmd.Flags().Lookup("mirror").NoOptDefVal = config.DefaultMirrorDir()
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address ([socks5://][user:pass@]host:port)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent to the wiki")
	cmd.Flags().StringToStringP("header", "H", nil,
		"Extra request header (name=value, repeatable)")
	cmd.Flags().Bool("no-canonicalize", false,
		"Do not resolve redirects of start and target before searching")

	// Storage flags
	cmd.Flags().Bool("no-cache", false,
		"Do not read or store cached article links")
	cmd.Flags().Duration("cache-max-age", 0,
		"Refetch cached articles older than this (0 = never)")
	cmd.Flags().Bool("no-history", false,
		"Do not record the search in the history")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the database")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .wikicrawler in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("log-json", false,
		"Write log records as JSON lines")
	cmd.Flags().String("metrics-addr", "",
		"Serve Prometheus metrics on this address while searching (e.g. :9090)")

	return cmd
}

// runSearchCmd executes the search command.
func runSearchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)
	if cfg.LogJSON {
		logger = log.NewSecureJSONLogger(cmd.ErrOrStderr(), cfg.Verbose)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runSearch(ctx, cfg, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from the configuration file and cobra flags.
// Values from the file apply first; flags the user set explicitly win.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if cfg.Wiki, err = flags.GetString("wiki"); err != nil {
		return nil, err
	}
	if err := cfg.Load(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	cfg.Verbose = getVerboseFlag(cmd)

	if cfg.RandomStart, err = flags.GetBool("random"); err != nil {
		return nil, err
	}
	if cfg.Continuous, err = flags.GetBool("continuous"); err != nil {
		return nil, err
	}
	if cfg.Iterations, err = flags.GetInt("iterations"); err != nil {
		return nil, err
	}
	if cfg.QueueStarts, err = flags.GetStringArray("enqueue"); err != nil {
		return nil, err
	}
	if cfg.ShareStarts, err = flags.GetBool("share-starts"); err != nil {
		return nil, err
	}
	if cfg.RandomStart || cfg.Continuous {
		cfg.Targets = args
	} else {
		cfg.StartPage = args[0]
		cfg.Targets = args[1:]
	}

	// Flags that a profile may also set only override it when given.
	overrides := []struct {
		name  string
		apply func() error
	}{
		{"depth", func() (err error) { cfg.MaxDepth, err = flags.GetInt("depth"); return }},
		{"max-pages", func() (err error) { cfg.MaxPagesFetched, err = flags.GetInt("max-pages"); return }},
		{"delay", func() (err error) { cfg.RequestDelay, err = flags.GetDuration("delay"); return }},
		{"workers", func() (err error) { cfg.Workers, err = flags.GetInt("workers"); return }},
		{"base-url", func() (err error) { cfg.BaseURL, err = flags.GetString("base-url"); return }},
		{"user-agent", func() (err error) { cfg.UserAgent, err = flags.GetString("user-agent"); return }},
		{"proxy", func() (err error) { cfg.ProxyAddress, err = flags.GetString("proxy"); return }},
		{"header", func() error {
			headers, err := flags.GetStringToString("header")
			if err != nil {
				return err
			}
			if cfg.Headers == nil {
				cfg.Headers = make(map[string]string, len(headers))
			}
			for k, v := range headers {
				cfg.Headers[k] = v
			}
			return nil
		}},
	}
	for _, o := range overrides {
		if !flags.Changed(o.name) {
			continue
		}
		if err := o.apply(); err != nil {
			return nil, err
		}
	}

	if cfg.FetchRetryLimit, err = flags.GetInt("retries"); err != nil {
		return nil, err
	}
	if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.MaxBodySize, err = flags.GetInt64("max-body-size"); err != nil {
		return nil, err
	}
	if cfg.MirrorDir, err = flags.GetString("mirror"); err != nil {
		return nil, err
	}

	noCanonicalize, err := flags.GetBool("no-canonicalize")
	if err != nil {
		return nil, err
	}
	cfg.Canonicalize = !noCanonicalize

	noCache, err := flags.GetBool("no-cache")
	if err != nil {
		return nil, err
	}
	cfg.UseCache = !noCache

	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveHistory = !noHistory

	if cfg.CacheMaxAge, err = flags.GetDuration("cache-max-age"); err != nil {
		return nil, err
	}
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.LogJSON, err = flags.GetBool("log-json"); err != nil {
		return nil, err
	}
	if cfg.MetricsAddr, err = flags.GetString("metrics-addr"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// searchEnv holds the collaborators shared by every search of one run.
type searchEnv struct {
	source  wiki.Source
	random  pipeline.RandomSource
	baseURL string
	fetcher *wiki.Fetcher
	db      *database.WikiDB
}

// Close releases the database.
func (e *searchEnv) Close() error {
	if e.db == nil {
		return nil
	}
	return e.db.Close()
}

// newSearchEnv builds the page source, the shared fetcher and the database.
//
// Design decision: One Fetcher, and so one rate limiter, serves every
// target of the run. Concurrent searches therefore never exceed the
// configured request rate together.
func newSearchEnv(cfg *config.Config, logger *slog.Logger) (*searchEnv, error) {
	env := &searchEnv{baseURL: cfg.BaseURL}

	if cfg.MirrorDir != "" {
		mirror, err := wiki.NewMirrorSource(cfg.MirrorDir)
		if err != nil {
			return nil, err
		}
		env.source = mirror
		logger.Info("reading articles from mirror", "dir", mirror.Dir())
	} else {
		clientOpts := []wiki.ClientOption{
			wiki.WithUserAgent(cfg.UserAgent),
			wiki.WithHeaders(cfg.Headers),
		}
		if cfg.ProxyAddress != "" {
			clientOpts = append(clientOpts, wiki.WithProxy(cfg.ProxyAddress))
		}
		client, err := wiki.NewClient(cfg.Timeout, clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}

		httpSource, err := wiki.NewHTTPSource(client.NewHTTPClient(), cfg.BaseURL,
			wiki.WithMaxBodySize(cfg.MaxBodySize))
		if err != nil {
			return nil, err
		}
		env.source = httpSource
		env.baseURL = httpSource.BaseURL()
		logger.Info("searching live wiki",
			"baseURL", env.baseURL,
			"proxy", client.ProxyAddress(),
		)
	}

	env.fetcher = wiki.NewFetcher(env.source,
		wiki.WithRateLimiter(wiki.NewRateLimiter(cfg.RequestDelay)),
		wiki.WithRetryLimit(cfg.FetchRetryLimit),
		wiki.WithAttemptTimeout(cfg.Timeout),
		wiki.WithFetcherLogger(logger),
	)
	// Random picks go through the fetcher to share its rate limit.
	if _, ok := env.source.(wiki.RandomSource); ok {
		env.random = env.fetcher
	}

	if cfg.UseCache || cfg.SaveHistory || cfg.Continuous {
		opts := database.DefaultOptions()
		opts.MaxAge = cfg.CacheMaxAge
		db, err := database.Open(cfg.DBDir, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		env.db = db
		logger.Info("database opened", "path", db.Path())
	}

	return env, nil
}

// newSearcher creates the searcher shared by every job of the run.
func newSearcher(cfg *config.Config, env *searchEnv, observer crawler.Observer, logger *slog.Logger) (*crawler.Searcher, error) {
	parser, err := crawler.NewParser(env.baseURL)
	if err != nil {
		return nil, err
	}

	opts := []crawler.SearcherOption{
		crawler.WithMaxDepth(cfg.MaxDepth),
		crawler.WithMaxPagesFetched(cfg.MaxPagesFetched),
		crawler.WithWorkers(cfg.Workers),
		crawler.WithSearchLogger(logger),
	}
	if cfg.UseCache && env.db != nil {
		opts = append(opts, crawler.WithLinkCache(env.db))
	}
	if observer != nil {
		opts = append(opts, crawler.WithObserver(observer))
	}

	return crawler.NewSearcher(env.fetcher, parser, opts...)
}

// newPipelineConfig fills the pipeline collaborators. Interface fields are
// only set for non-nil values so that a missing collaborator stays nil.
func newPipelineConfig(cfg *config.Config, env *searchEnv, searcher *crawler.Searcher, logger *slog.Logger) pipeline.DefaultPipelineConfig {
	pcfg := pipeline.DefaultPipelineConfig{
		Searcher: searcher,
		BaseURL:  env.baseURL,
		Logger:   logger,
	}
	if cfg.Canonicalize {
		pcfg.Resolver = env.fetcher
	}
	if env.random != nil {
		pcfg.Random = env.random
	}
	if cfg.SaveHistory && env.db != nil {
		pcfg.Store = env.db
	}
	return pcfg
}

// runSearch executes every search of cfg and writes the report.
//
// A single round collects every job and writes one report at the end.
// Several rounds stream each job to the report as soon as it finishes,
// since a continuous run may never end.
func runSearch(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout, stderr io.Writer) error {
	logger.Info("starting search",
		"start", cfg.StartPage,
		"random", cfg.RandomStart,
		"continuous", cfg.Continuous,
		"iterations", cfg.Iterations,
		"targets", cfg.Targets,
		"maxDepth", cfg.MaxDepth,
		"concurrency", cfg.Concurrency,
	)

	if cfg.MetricsAddr != "" {
		_, shutdown, err := startMetricsServer(cfg.MetricsAddr, logger)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	env, err := newSearchEnv(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := env.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	var progress *progressLine
	if isTerminal(stderr) && !cfg.Verbose {
		progress = newProgressLine(stderr)
	}

	var observer crawler.Observer
	if progress != nil {
		observer = progress
	}
	searcher, err := newSearcher(cfg, env, observer, logger)
	if err != nil {
		return err
	}
	pcfg := newPipelineConfig(cfg, env, searcher, logger)

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.DefaultPipeline(pcfg)
		},
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithBatchLogger(logger),
	)

	startTime := time.Now()
	defer func() {
		logger.Info("search finished", "elapsed", time.Since(startTime).Round(time.Millisecond))
	}()

	if cfg.Continuous || cfg.Iterations > 1 {
		return runRounds(ctx, cfg, env, bp, progress, logger, stdout)
	}

	jobs, batchErr := bp.ProcessBatchWithCallback(ctx, cfg.StartPage, cfg.Targets,
		completionNotifier(len(cfg.Targets), progress, nil))
	progress.Clear()

	if err := outputReport(cfg, jobs, stdout); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if batchErr != nil {
		return batchErr
	}
	return failedJobs(jobs)
}

// runRounds runs several rounds of searches and streams every job to the
// report. Interrupting a continuous run is its normal end.
func runRounds(
	ctx context.Context,
	cfg *config.Config,
	env *searchEnv,
	bp *pipeline.BatchProcessor,
	progress *progressLine,
	logger *slog.Logger,
	stdout io.Writer,
) (err error) {
	writer, closeFn, err := openReport(cfg, stdout, true)
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	defer func() { err = closeReport(closeFn, err) }()

	r := &rounds{
		cfg:    cfg,
		bp:     bp,
		db:     env.db,
		random: env.random,
		logger: logger,
	}
	if err := r.prepare(ctx); err != nil {
		return err
	}

	stream := &reportStream{w: writer}
	stats, runErr := r.run(ctx, completionNotifier(len(cfg.Targets), progress, stream.write))
	progress.Clear()

	logger.Info("rounds finished",
		"rounds", stats.Rounds,
		"searches", stats.Searches,
		"failed", stats.Failed,
	)

	if err := stream.Err(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if cfg.Continuous && errors.Is(runErr, context.Canceled) {
		logger.Info("continuous search stopped")
		return nil
	}
	if runErr != nil {
		return runErr
	}
	// Failed starts are expected while working off a queue.
	if stats.Failed > 0 && !cfg.Continuous {
		return fmt.Errorf("%w: %d of %d searches ended with an error", errSearchFailed, stats.Failed, stats.Searches)
	}
	return nil
}

// reportStream writes jobs one at a time from concurrent searches and
// keeps the first write error.
type reportStream struct {
	mu  sync.Mutex
	w   report.Writer
	err error
}

func (s *reportStream) write(job *model.SearchJob) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return
	}
	_, s.err = s.w.Write(job)
}

// Err returns the first write error.
func (s *reportStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// completionNotifier returns the batch callback. It prints "[i/n]" for
// every finished search of a round above the progress line and passes the
// job on to next when next is not nil.
func completionNotifier(total int, progress *progressLine, next func(job *model.SearchJob)) func(*model.SearchJob, int) {
	var (
		mu        sync.Mutex
		completed int
	)
	return func(job *model.SearchJob, _ int) {
		mu.Lock()
		completed++
		n := (completed-1)%total + 1
		mu.Unlock()

		status := "done"
		if job.Error != nil {
			status = "failed"
		}
		progress.Note(fmt.Sprintf("[%d/%d] %s %s", n, total, job.Label(), status))

		if next != nil {
			next(job)
		}
	}
}

// failedJobs returns errSearchFailed when any job ended with an error.
func failedJobs(jobs []*model.SearchJob) error {
	failed := 0
	for _, job := range jobs {
		if job != nil && job.Error != nil {
			failed++
		}
	}
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d of %d searches ended with an error", errSearchFailed, failed, len(jobs))
}

// startMetricsServer serves the Prometheus registry on addr until the
// returned function is called. It returns the address actually bound.
func startMetricsServer(addr string, logger *slog.Logger) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("failed to listen on metrics address %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	bound := listener.Addr().String()
	logger.Info("serving metrics", "addr", bound)

	return bound, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("failed to stop metrics server", "error", err)
		}
	}, nil
}

// outputReport writes the jobs in the requested format.
func outputReport(cfg *config.Config, jobs []*model.SearchJob, stdout io.Writer) (err error) {
	writer, closeFn, err := openReport(cfg, stdout, false)
	if err != nil {
		return err
	}
	defer func() { err = closeReport(closeFn, err) }()

	if len(jobs) == 1 {
		_, err = writer.Write(jobs[0])
		return err
	}
	_, err = writer.WriteAll(jobs)
	return err
}

// openReport creates the report writer and the function that closes its
// output. With a report file, the path line still goes to stdout.
func openReport(cfg *config.Config, stdout io.Writer, stream bool) (report.Writer, func() error, error) {
	if cfg.ReportFile == "" {
		return newReportWriter(cfg, stdout, stream), func() error { return nil }, nil
	}

	// Create directories if they don't exist
	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// #nosec G304 -- the report path is chosen by the user
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}

	writer := report.NewMultiWriter(
		newReportWriter(cfg, f, stream),
		report.NewSimpleWriter(stdout, report.WithHyperlinks(isTerminal(stdout))),
	)
	return writer, f.Close, nil
}

// closeReport closes the report output. The close error is returned when
// writing succeeded, since a failed close can lose the end of the file.
func closeReport(closeFn func() error, err error) error {
	if cerr := closeFn(); cerr != nil && err == nil {
		return fmt.Errorf("failed to close report file: %w", cerr)
	}
	return err
}

// newReportWriter selects the report format. Terminal hyperlinks are only
// used when the report goes to a terminal. Streamed JSON is written as one
// compact object per line.
func newReportWriter(cfg *config.Config, output io.Writer, stream bool) report.Writer {
	switch {
	case cfg.JSONReport && stream:
		return report.NewJSONWriter(output)
	case cfg.JSONReport:
		return report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output,
			report.WithHyperlinks(isTerminal(output)),
			report.WithVerbose(cfg.Verbose),
		)
	}
}
