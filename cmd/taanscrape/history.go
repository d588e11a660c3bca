package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/KENnotcode/taanscrape/internal/config"
	"github.com/KENnotcode/taanscrape/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past scrape runs or diff two runs",
		Long: `History lists the scrape runs recorded in the local history database,
or compares the member sets of two runs.

The member count on the site regularly exceeds the association's published
figure; diffing runs shows exactly which member pages appeared or
disappeared between two scrapes.

Examples:
  # List the last 10 runs
  taanscrape history --limit 10

  # Show members added or removed between run 3 and run 7
  taanscrape history --diff 3 7`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to list")
	cmd.Flags().StringSlice("diff", nil, "Two run IDs to compare (e.g. --diff 3,7)")
	cmd.Flags().String("dir", "", "History database directory (default: XDG data dir)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return err
	}
	if dir == "" {
		dir = config.XDGDataDir()
	}

	// Listing history must not create an empty database.
	db, err := database.Open(dir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no run history yet: %w", err)
	}
	defer db.Close()

	diff, err := cmd.Flags().GetStringSlice("diff")
	if err != nil {
		return err
	}
	if len(diff) > 0 {
		return runHistoryDiff(cmd, db, diff)
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	return runHistoryList(cmd, db, limit)
}

// runHistoryList prints the recorded runs, newest first.
func runHistoryList(cmd *cobra.Command, db *database.HistoryDB, limit int) error {
	runs, err := db.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%-5s %-20s %8s %7s %9s  %s\n",
		"ID", "Started", "Members", "Failed", "Elapsed", "Output")
	for _, r := range runs {
		fmt.Fprintf(cmd.OutOrStdout(), "%-5d %-20s %8d %7d %8.1fs  %s\n",
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Members,
			r.Failed,
			r.ElapsedSeconds,
			r.OutputFile,
		)
	}
	return nil
}

// runHistoryDiff prints the members added and removed between two runs.
func runHistoryDiff(cmd *cobra.Command, db *database.HistoryDB, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("--diff needs exactly two run IDs, got %d", len(args))
	}

	a, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run ID %q: %w", args[0], err)
	}
	b, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run ID %q: %w", args[1], err)
	}

	added, removed, err := db.DiffRuns(cmd.Context(), a, b)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Comparing run %d -> run %d\n\n", a, b)
	fmt.Fprintf(out, "Added (%d):\n", len(added))
	for _, u := range added {
		fmt.Fprintf(out, "  + %s\n", u)
	}
	fmt.Fprintf(out, "Removed (%d):\n", len(removed))
	for _, u := range removed {
		fmt.Fprintf(out, "  - %s\n", u)
	}
	return nil
}
