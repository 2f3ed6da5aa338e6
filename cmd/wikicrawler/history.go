package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Baykugan/Wiki-Crawler/internal/config"
	"github.com/Baykugan/Wiki-Crawler/internal/database"
	"github.com/Baykugan/Wiki-Crawler/internal/model"
)

// historyDateLayout is how saved search times are printed.
const historyDateLayout = "2006-01-02 15:04:05"

// NewHistoryCmd creates the history command.
// This command shows searches and cached data stored in the database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show saved searches and cache statistics",
		Long: `History lists the searches recorded in the database and manages the link cache.

Every search is saved with its outcome and, when a path was found, the path
itself. The articles expanded during searches are cached so later searches
do not fetch them again.

Examples:
  # List the 20 most recent searches
  wikicrawler history

  # Show one saved search with its path
  wikicrawler history --show 12

  # Show how much is cached
  wikicrawler history --stats

  # List titles that turned out not to exist
  wikicrawler history --dead-ends

  # Queue every dead end to be searched from again
  wikicrawler history --recheck-dead-ends

  # List start pages waiting for a continuous search
  wikicrawler history --queue

  # Remove cache entries older than 30 days and compact the database
  wikicrawler history --vacuum --max-age 720h`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 20,
		"Number of searches to list (0 = all)")
	cmd.Flags().Int64P("show", "s", 0,
		"Show the saved search with this ID")
	cmd.Flags().Bool("stats", false,
		"Show database statistics")
	cmd.Flags().Bool("dead-ends", false,
		"List titles recorded as missing")
	cmd.Flags().Bool("recheck-dead-ends", false,
		"Forget recorded dead ends and queue them as start pages")
	cmd.Flags().Bool("queue", false,
		"List queued start pages")
	cmd.Flags().Bool("vacuum", false,
		"Remove expired cache entries and compact the database")
	cmd.Flags().Duration("max-age", 0,
		"Age after which cache entries expire when vacuuming (0 = keep all)")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the database")

	return cmd
}

// historyOptions are the parsed history flags.
type historyOptions struct {
	limit    int
	show     int64
	stats    bool
	deadEnds bool
	recheck  bool
	queue    bool
	vacuum   bool
	json     bool
	dbDir    string
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	opts, err := parseHistoryFlags(cmd)
	if err != nil {
		return err
	}

	dbOpts := database.DefaultOptions()
	dbOpts.MaxAge, err = cmd.Flags().GetDuration("max-age")
	if err != nil {
		return err
	}

	db, err := database.Open(opts.dbDir, dbOpts)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	switch {
	case opts.vacuum:
		return vacuumDatabase(ctx, db, out)
	case opts.stats:
		return showStats(ctx, db, out, opts.json)
	case opts.recheck:
		return recheckDeadEnds(ctx, db, out)
	case opts.queue:
		return listQueue(ctx, db, out, opts.json)
	case opts.deadEnds:
		return listDeadEnds(ctx, db, out, opts.json)
	case opts.show != 0:
		return showPath(ctx, db, out, opts.show, opts.json)
	default:
		return listPaths(ctx, db, out, opts.limit, opts.json)
	}
}

// parseHistoryFlags reads the history flags.
func parseHistoryFlags(cmd *cobra.Command) (*historyOptions, error) {
	var opts historyOptions
	var err error
	flags := cmd.Flags()

	if opts.limit, err = flags.GetInt("limit"); err != nil {
		return nil, err
	}
	if opts.limit < 0 {
		return nil, fmt.Errorf("invalid limit %d: must be non-negative", opts.limit)
	}
	if opts.show, err = flags.GetInt64("show"); err != nil {
		return nil, err
	}
	if opts.show < 0 {
		return nil, fmt.Errorf("invalid search ID %d", opts.show)
	}
	if opts.stats, err = flags.GetBool("stats"); err != nil {
		return nil, err
	}
	if opts.deadEnds, err = flags.GetBool("dead-ends"); err != nil {
		return nil, err
	}
	if opts.recheck, err = flags.GetBool("recheck-dead-ends"); err != nil {
		return nil, err
	}
	if opts.queue, err = flags.GetBool("queue"); err != nil {
		return nil, err
	}
	if opts.vacuum, err = flags.GetBool("vacuum"); err != nil {
		return nil, err
	}
	if opts.json, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if opts.dbDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}
	return &opts, nil
}

// listPaths prints the most recent searches.
func listPaths(ctx context.Context, db *database.WikiDB, out io.Writer, limit int, asJSON bool) error {
	paths, err := db.ListPaths(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list searches: %w", err)
	}

	if asJSON {
		return writeJSON(out, paths)
	}

	if len(paths) == 0 {
		fmt.Fprintln(out, "No searches recorded yet.")
		return nil
	}

	fmt.Fprintf(out, "Search history (%d searches):\n\n", len(paths))
	fmt.Fprintf(out, "  %-6s  %-20s  %-14s  %-5s  %s\n", "ID", "Date", "Outcome", "Hops", "Search")
	for _, p := range paths {
		hops := "-"
		if p.Outcome == model.OutcomeFound {
			hops = strconv.Itoa(p.Depth)
		}
		fmt.Fprintf(out, "  %-6d  %-20s  %-14s  %-5s  %s -> %s\n",
			p.ID,
			p.CreatedAt.Local().Format(historyDateLayout),
			p.Outcome,
			hops,
			p.Start,
			p.Target,
		)
	}
	return nil
}

// showPath prints one saved search with its path.
func showPath(ctx context.Context, db *database.WikiDB, out io.Writer, id int64, asJSON bool) error {
	rec, err := db.GetPath(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load search %d: %w", id, err)
	}
	if rec == nil {
		return fmt.Errorf("no search with ID %d (run 'wikicrawler history' to list IDs)", id)
	}

	if asJSON {
		return writeJSON(out, rec)
	}

	fmt.Fprintf(out, "Search %d: %s -> %s\n", rec.ID, rec.Start, rec.Target)
	fmt.Fprintf(out, "  Date:     %s\n", rec.CreatedAt.Local().Format(historyDateLayout))
	fmt.Fprintf(out, "  Outcome:  %s\n", rec.Outcome)
	fmt.Fprintf(out, "  Depth:    %d\n", rec.Depth)
	fmt.Fprintf(out, "  Fetched:  %d pages\n", rec.PagesFetched)
	fmt.Fprintf(out, "  Duration: %s\n", rec.Duration)

	if len(rec.Steps) > 0 {
		fmt.Fprintf(out, "\n  %s\n", strings.Join(model.TitlesOf(rec.Steps), " -> "))
	}
	return nil
}

// showStats prints how many rows each table holds.
func showStats(ctx context.Context, db *database.WikiDB, out io.Writer, asJSON bool) error {
	stats, err := db.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read statistics: %w", err)
	}

	if asJSON {
		return writeJSON(out, stats)
	}

	fmt.Fprintf(out, "Database: %s\n\n", db.Path())
	fmt.Fprintf(out, "  %-16s  %d\n", "Cached articles", stats.Articles)
	fmt.Fprintf(out, "  %-16s  %d\n", "Cached links", stats.Links)
	fmt.Fprintf(out, "  %-16s  %d\n", "Dead ends", stats.DeadEnds)
	fmt.Fprintf(out, "  %-16s  %d\n", "Saved searches", stats.Paths)
	fmt.Fprintf(out, "  %-16s  %d\n", "Queued starts", stats.Queued)
	return nil
}

// listDeadEnds prints every title recorded as missing.
func listDeadEnds(ctx context.Context, db *database.WikiDB, out io.Writer, asJSON bool) error {
	deadEnds, err := db.ListDeadEnds(ctx)
	if err != nil {
		return fmt.Errorf("failed to list dead ends: %w", err)
	}

	if asJSON {
		return writeJSON(out, deadEnds)
	}

	if len(deadEnds) == 0 {
		fmt.Fprintln(out, "No dead ends recorded.")
		return nil
	}

	fmt.Fprintf(out, "Dead ends (%d):\n\n", len(deadEnds))
	for _, d := range deadEnds {
		fmt.Fprintf(out, "  [-] %s: %s\n", d.ID, d.Reason)
	}
	return nil
}

// recheckDeadEnds moves every dead end into the start queue.
func recheckDeadEnds(ctx context.Context, db *database.WikiDB, out io.Writer) error {
	moved, err := db.RecheckDeadEnds(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Queued %d dead ends for a recheck\n", moved)
	return nil
}

// listQueue prints the queued start pages in the order they are taken.
func listQueue(ctx context.Context, db *database.WikiDB, out io.Writer, asJSON bool) error {
	entries, err := db.ListQueue(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		return writeJSON(out, entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No start pages queued.")
		return nil
	}

	fmt.Fprintf(out, "Queued start pages (%d):\n\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(out, "  %d  %-20s  %s\n",
			e.Priority,
			e.AddedAt.Local().Format(historyDateLayout),
			e.ID,
		)
	}
	return nil
}

// vacuumDatabase removes expired entries and compacts the file.
func vacuumDatabase(ctx context.Context, db *database.WikiDB, out io.Writer) error {
	before, err := db.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read statistics: %w", err)
	}
	if err := db.Vacuum(ctx); err != nil {
		return err
	}
	after, err := db.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read statistics: %w", err)
	}

	fmt.Fprintf(out, "Vacuumed %s\n", db.Path())
	fmt.Fprintf(out, "  Removed %d cached articles and %d dead ends\n",
		before.Articles-after.Articles, before.DeadEnds-after.DeadEnds)
	return nil
}

// writeJSON writes v as indented JSON.
func writeJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
