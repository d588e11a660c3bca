package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/KENnotcode/taanscrape/internal/database"
	"github.com/KENnotcode/taanscrape/internal/model"
)

// TestNewRootCmd tests subcommand registration.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	if cmd.Use != "taanscrape" {
		t.Errorf("unexpected command name: %q", cmd.Use)
	}

	want := map[string]bool{"scrape": false, "history": false, "init": false, "version": false}
	for _, sub := range cmd.Commands() {
		name := strings.Fields(sub.Use)[0]
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

// TestVersionCmd tests version output.
func TestVersionCmd(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cmd := NewVersionCmd()
	cmd.SetOut(&buf)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "taanscrape version") {
		t.Errorf("unexpected version output: %q", out)
	}
	if !strings.Contains(out, "commit:") || !strings.Contains(out, "built:") {
		t.Errorf("version output missing build details: %q", out)
	}
}

// TestInitCmd tests configuration file generation.
func TestInitCmd(t *testing.T) {
	t.Parallel()

	t.Run("creates the config file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".taanscrape")

		var buf bytes.Buffer
		cmd := NewInitCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"-o", path})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("init failed: %v", err)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("config file not created: %v", err)
		}
		for _, key := range []string{"workers:", "timeout:", "placeholder:", "output_file:"} {
			if !strings.Contains(string(content), key) {
				t.Errorf("generated config missing %q", key)
			}
		}
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".taanscrape")
		if err := os.WriteFile(path, []byte("workers: 5\n"), 0600); err != nil {
			t.Fatal(err)
		}

		cmd := NewInitCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"-o", path})
		if err := cmd.Execute(); err == nil {
			t.Error("expected error overwriting without -f")
		}

		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(content) != "workers: 5\n" {
			t.Error("existing file was modified")
		}
	})

	t.Run("overwrites with force", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".taanscrape")
		if err := os.WriteFile(path, []byte("workers: 5\n"), 0600); err != nil {
			t.Fatal(err)
		}

		cmd := NewInitCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"-o", path, "-f"})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("forced init failed: %v", err)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(content) == "workers: 5\n" {
			t.Error("file was not overwritten")
		}
	})
}

// memberSite serves a minimal member directory: one listing with three
// members, one of which 404s, everything else an empty page.
func memberSite() http.Handler {
	listing := `<html><body><ul>
		<li><a href="/members/alpha-treks">Alpha Treks</a></li>
		<li><a href="/members/beta-treks">Beta Treks</a></li>
		<li><a href="/members/gone-treks">Gone Treks</a></li>
	</ul></body></html>`
	detail := `<html><body>
		<h1>%s</h1>
		<ul>
			<li>Address: Thamel, Kathmandu</li>
			<li>Country: Nepal</li>
		</ul>
		<p>Email: <a href="mailto:%s">mail</a></p>
	</body></html>`

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/members":
			if r.URL.Query().Get("l") == "" {
				fmt.Fprint(w, listing)
				return
			}
			fmt.Fprint(w, "<html><body></body></html>")
		case "/associate-members", "/regional-members":
			fmt.Fprint(w, "<html><body></body></html>")
		case "/members/alpha-treks":
			fmt.Fprintf(w, detail, "Alpha Treks", "info@alpha.example")
		case "/members/beta-treks":
			fmt.Fprintf(w, detail, "Beta Treks", "info@beta.example")
		default:
			http.NotFound(w, r)
		}
	})
}

// TestScrapeCmd tests the full pipeline against a local directory.
func TestScrapeCmd(t *testing.T) {
	srv := httptest.NewServer(memberSite())
	defer srv.Close()

	output := filepath.Join(t.TempDir(), "members.csv")

	var stdout bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"scrape",
		"--base-url", srv.URL,
		"--output", output,
		"--retries", "1",
		"--rps", "0",
		"--no-history",
	})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("scrape failed: %v", err)
	}

	// Progress and summary text go through the command's writer.
	if !strings.Contains(stdout.String(), "Found 3 members") ||
		!strings.Contains(stdout.String(), "Scrape completed: 3 members") {
		t.Errorf("unexpected scrape output:\n%s", stdout.String())
	}

	f, err := os.Open(output)
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid csv: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header plus 3 member rows, got %d rows", len(rows))
	}

	if rows[0][0] != "Organization Name" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	// Rows follow listing order.
	if rows[1][0] != "Alpha Treks" || rows[2][0] != "Beta Treks" {
		t.Errorf("unexpected row order: %q, %q", rows[1][0], rows[2][0])
	}
	if rows[1][6] != "info@alpha.example" {
		t.Errorf("unexpected email: %q", rows[1][6])
	}
	// The 404ing member still gets a row, all placeholder.
	for i, cell := range rows[3] {
		if cell != "0" {
			t.Errorf("missing member column %d: expected placeholder, got %q", i, cell)
		}
	}
}

// TestScrapeCmdNoMembers tests that an empty directory is a fatal error
// and produces no output file.
func TestScrapeCmdNoMembers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html><body>nothing here</body></html>")
	}))
	defer srv.Close()

	output := filepath.Join(t.TempDir(), "members.csv")

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"scrape",
		"--base-url", srv.URL,
		"--output", output,
		"--retries", "1",
		"--rps", "0",
		"--no-history",
	})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected enumeration error for an empty directory")
	}

	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Error("no output file may exist after a fatal startup error")
	}
}

// TestHistoryCmd tests listing and diffing recorded runs.
func TestHistoryCmd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	saveRun := func(startedAt time.Time, urls ...string) int64 {
		records := make([]*model.MemberRecord, 0, len(urls))
		for _, u := range urls {
			rec := &model.MemberRecord{OrganizationName: "Org", Category: model.CategoryGeneral, SourceURL: u}
			rec.FillMissing("0")
			records = append(records, rec)
		}
		summary := model.NewRunSummary(records, "0", 1)
		id, err := db.SaveRun(context.Background(), startedAt, summary, records, "out.xlsx")
		if err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
		return id
	}

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	first := saveRun(base, "https://example.test/members/a")
	second := saveRun(base.Add(time.Hour),
		"https://example.test/members/a", "https://example.test/members/b")
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	t.Run("lists runs newest first", func(t *testing.T) {
		var buf bytes.Buffer
		cmd := NewRootCmd()
		cmd.SetOut(&buf)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"history", "--dir", dir})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("history failed: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "out.xlsx") {
			t.Errorf("listing missing output file:\n%s", out)
		}
		if strings.Index(out, fmt.Sprintf("%-5d", second)) > strings.Index(out, fmt.Sprintf("%-5d", first)) {
			t.Errorf("expected newest run first:\n%s", out)
		}
	})

	t.Run("diffs two runs", func(t *testing.T) {
		var buf bytes.Buffer
		cmd := NewRootCmd()
		cmd.SetOut(&buf)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"history", "--dir", dir,
			"--diff", fmt.Sprintf("%d,%d", first, second)})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("history diff failed: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "Added (1):") ||
			!strings.Contains(out, "+ https://example.test/members/b") {
			t.Errorf("unexpected diff output:\n%s", out)
		}
		if !strings.Contains(out, "Removed (0):") {
			t.Errorf("unexpected removed section:\n%s", out)
		}
	})

	t.Run("empty directory has no history", func(t *testing.T) {
		t.Parallel()

		cmd := NewRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"history", "--dir", t.TempDir()})
		if err := cmd.Execute(); err == nil {
			t.Error("expected error when no history database exists")
		}
	})
}

// TestScrapeCmdInvalidFlags tests flag validation failures.
func TestScrapeCmdInvalidFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{name: "zero workers", args: []string{"scrape", "--workers", "0"}},
		{name: "bad format", args: []string{"scrape", "--format", "ods"}},
		{name: "missing config file", args: []string{"scrape", "--config", "/nonexistent/path.yaml"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := NewRootCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(tt.args)
			if err := cmd.Execute(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
