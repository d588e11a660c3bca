package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/KENnotcode/taanscrape/internal/config"
	"github.com/KENnotcode/taanscrape/internal/database"
	"github.com/KENnotcode/taanscrape/internal/directory"
	"github.com/KENnotcode/taanscrape/internal/export"
	"github.com/KENnotcode/taanscrape/internal/model"
	"github.com/KENnotcode/taanscrape/internal/scrape"
)

// NewScrapeCmd creates the scrape command.
func NewScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape all TAAN members to a spreadsheet",
		Long: `Scrape enumerates every member of the TAAN directory (general, associate
and regional listings), fetches each member's detail page concurrently,
and writes one spreadsheet row per member.

Transient fetch failures are retried with exponential backoff. A member
whose page cannot be fetched still gets a row, with every field set to
the placeholder value. The output file is written once, after all
members are processed, so an interrupted run never leaves partial output.

Examples:
  # Scrape with defaults (10 workers, ScrapedData.xlsx)
  taanscrape scrape

  # Write CSV with 5 workers and a custom placeholder
  taanscrape scrape --output members.csv --workers 5 --placeholder n/a

  # Also write a Markdown data-quality summary
  taanscrape scrape --summary summary.md

Configuration file (.taanscrape) example:
  workers: 5
  timeout: 45s
  placeholder: "n/a"
  output_file: members.xlsx`,
		Args: cobra.NoArgs,
		RunE: runScrapeCmd,
	}

	// Fetch behavior flags
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent fetch workers")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().IntP("retries", "r", config.DefaultMaxAttempts,
		"Total attempts per request, including the first")
	cmd.Flags().Duration("backoff", config.DefaultBackoffBase,
		"Delay before the first retry (doubled each attempt)")
	cmd.Flags().Duration("backoff-cap", config.DefaultBackoffCap,
		"Upper bound on the retry delay")
	cmd.Flags().Float64("rps", config.DefaultRequestsPerSecond,
		"Requests per second shared across all workers (<=0 disables)")
	cmd.Flags().String("base-url", config.DefaultBaseURL,
		"Directory root to scrape")

	// Output flags
	cmd.Flags().StringP("output", "o", config.DefaultOutputFile,
		"Output spreadsheet path")
	cmd.Flags().StringP("format", "f", "",
		"Output format: xlsx or csv (default: from output extension)")
	cmd.Flags().StringP("placeholder", "p", config.DefaultPlaceholder,
		"Value written for fields that could not be extracted")
	cmd.Flags().StringP("summary", "s", "",
		"Write a Markdown data-quality summary to this path")

	// Configuration and history
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .taanscrape in current or home directory)")
	cmd.Flags().Bool("no-history", false,
		"Do not record this run in the history database")

	return cmd
}

// runScrapeCmd executes the scrape command.
func runScrapeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runScrape(ctx, cfg, logger, cmd.OutOrStdout())
}

// buildConfig layers defaults, the optional config file, and CLI flags.
// Flags override file values only when the user changed them, so a file
// setting survives unless explicitly overridden on the command line.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	explicitConfigPath := configPath != ""
	if found := config.FindConfigFile(configPath); found != "" {
		if err := config.LoadConfigFile(found, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", found, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	flags := cmd.Flags()
	if flags.Changed("workers") {
		if cfg.Workers, err = flags.GetInt("workers"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		d, err := flags.GetDuration("timeout")
		if err != nil {
			return nil, err
		}
		cfg.Timeout = config.Duration(d)
	}
	if flags.Changed("retries") {
		if cfg.MaxAttempts, err = flags.GetInt("retries"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("backoff") {
		d, err := flags.GetDuration("backoff")
		if err != nil {
			return nil, err
		}
		cfg.BackoffBase = config.Duration(d)
	}
	if flags.Changed("backoff-cap") {
		d, err := flags.GetDuration("backoff-cap")
		if err != nil {
			return nil, err
		}
		cfg.BackoffCap = config.Duration(d)
	}
	if flags.Changed("rps") {
		if cfg.RequestsPerSecond, err = flags.GetFloat64("rps"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("base-url") {
		if cfg.BaseURL, err = flags.GetString("base-url"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("output") {
		if cfg.OutputFile, err = flags.GetString("output"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("format") {
		if cfg.Format, err = flags.GetString("format"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("placeholder") {
		if cfg.Placeholder, err = flags.GetString("placeholder"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("summary") {
		if cfg.SummaryFile, err = flags.GetString("summary"); err != nil {
			return nil, err
		}
	}
	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	if noHistory {
		cfg.SaveHistory = false
	}

	cfg.Verbose = getVerboseFlag(cmd)
	return cfg, nil
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

// setupLogger creates a structured logger based on verbosity setting.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

// runScrape executes the full pipeline: enumerate, fetch, export.
// Progress and summary text go to out, the command's stdout.
func runScrape(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	logger.Info("starting scrape",
		"baseURL", cfg.BaseURL,
		"workers", cfg.Workers,
		"output", cfg.OutputFile,
		"format", cfg.ResolvedFormat(),
	)

	client := scrape.NewClient(
		&http.Client{Timeout: cfg.Timeout.Std()},
		scrape.WithUserAgent(cfg.UserAgent),
		scrape.WithMaxAttempts(cfg.MaxAttempts),
		scrape.WithBackoff(cfg.BackoffBase.Std(), cfg.BackoffCap.Std()),
		scrape.WithRateLimit(cfg.RequestsPerSecond),
		scrape.WithClientLogger(logger),
	)

	enum, err := directory.NewEnumerator(client, cfg.BaseURL, directory.WithLogger(logger))
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Enumerating members...")
	tasks, err := enum.Enumerate(ctx)
	if err != nil {
		// Nothing discoverable is fatal: no output file is written.
		return fmt.Errorf("enumeration failed: %w", err)
	}
	fmt.Fprintf(out, "Found %d members\n", len(tasks))

	pool := scrape.NewPool(client,
		scrape.WithConcurrency(cfg.Workers),
		scrape.WithPlaceholder(cfg.Placeholder),
		scrape.WithPoolLogger(logger),
	)

	startedAt := time.Now()
	records, err := pool.Run(ctx, tasks)
	if err != nil {
		// Cancelled mid-run: honor the batch-write contract and leave no file.
		return fmt.Errorf("scrape aborted: %w", err)
	}
	elapsed := time.Since(startedAt)

	if err := export.WriteFile(cfg.OutputFile, cfg.ResolvedFormat(), records); err != nil {
		return err
	}

	summary := model.NewRunSummary(records, cfg.Placeholder, elapsed.Seconds())
	printSummary(out, summary, cfg.OutputFile)

	if cfg.SummaryFile != "" {
		if err := writeSummaryFile(cfg.SummaryFile, summary); err != nil {
			logger.Error("failed to write summary", "path", cfg.SummaryFile, "error", err)
		} else {
			fmt.Fprintf(out, "Summary written to %s\n", cfg.SummaryFile)
		}
	}

	if cfg.SaveHistory {
		if err := saveRunHistory(ctx, cfg, startedAt, summary, records, logger); err != nil {
			// History is a convenience; its failure never fails the run.
			logger.Error("failed to save run history", "error", err)
		}
	}

	return nil
}

// printSummary writes the terminal run summary.
func printSummary(out io.Writer, s *model.RunSummary, outputFile string) {
	fmt.Fprintf(out, "\nScrape completed: %d members in %.1fs (%.2f members/sec)\n",
		s.Total, s.ElapsedSeconds, s.MembersPerSecond())
	fmt.Fprintf(out, "Data exported to %s\n", outputFile)
	fmt.Fprintf(out, "Data fill rate: %.1f%%\n", s.FillRate()*100)
	if s.Failed > 0 {
		fmt.Fprintf(out, "Failed members (placeholder rows): %d\n", s.Failed)
	}
}

// writeSummaryFile renders the Markdown summary to the given path.
func writeSummaryFile(path string, s *model.RunSummary) error {
	f, err := os.Create(path) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return err
	}
	defer f.Close()

	return export.NewSummaryWriter(f).Write(s)
}

// saveRunHistory records the run in the history database.
func saveRunHistory(ctx context.Context, cfg *config.Config, startedAt time.Time, summary *model.RunSummary, records []*model.MemberRecord, logger *slog.Logger) error {
	dir := cfg.HistoryDir
	if dir == "" {
		dir = config.XDGDataDir()
	}

	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		return err
	}
	defer db.Close()

	runID, err := db.SaveRun(ctx, startedAt, summary, records, cfg.OutputFile)
	if err != nil {
		return err
	}
	logger.Info("run recorded", "runID", runID, "dir", dir)
	return nil
}
