package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/cognicore/newsprep/pkg/newsprep"
	"github.com/cognicore/newsprep/pkg/newsprep/config"
	"github.com/cognicore/newsprep/pkg/newsprep/store/sqlite"
)

// cliFlags holds parsed command-line values. set records which flags were
// given explicitly so they can override the job file.
type cliFlags struct {
	configPath string
	input      string
	output     string
	format     string
	column     string
	columns    string
	chunkSize  int
	workers    int
	listFormat string
	stripHTML  bool
	stoplist   string
	dbPath     string
	stats      bool
	listRuns   int
	set        map[string]bool
}

func parseFlags(args []string) (*cliFlags, error) {
	f := &cliFlags{set: map[string]bool{}}
	fs := flag.NewFlagSet("newsprep", flag.ContinueOnError)
	fs.StringVar(&f.configPath, "config", "", "YAML job file (optional)")
	fs.StringVar(&f.input, "input", "", "Input CSV, TSV or JSONL file")
	fs.StringVar(&f.output, "output", "", "Output CSV file (optional, rows kept in memory otherwise)")
	fs.StringVar(&f.format, "format", "", "Input format: csv, tsv or jsonl (default from extension)")
	fs.StringVar(&f.column, "column", "content", "Text column to normalize")
	fs.StringVar(&f.columns, "columns", "", "Comma-separated header for files without one")
	fs.IntVar(&f.chunkSize, "chunk-size", 0, "Rows per chunk (0 = whole dataset at once)")
	fs.IntVar(&f.workers, "workers", 0, "Parallel workers per stage (0 = GOMAXPROCS)")
	fs.StringVar(&f.listFormat, "list-format", "", "List column format: json or joined")
	fs.BoolVar(&f.stripHTML, "strip-html", false, "Remove HTML markup before extraction")
	fs.StringVar(&f.stoplist, "stoplist", "", "Stoplist file (.yaml or .txt, default English)")
	fs.StringVar(&f.dbPath, "db", "", "Run history database (optional)")
	fs.BoolVar(&f.stats, "stats", false, "Print vocabulary statistics")
	fs.IntVar(&f.listRuns, "list-runs", 0, "List the N most recent runs and exit (requires -db)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f, nil
}

// buildJob loads the job file, if any, and applies explicit flags on top.
func buildJob(f *cliFlags) (*config.Job, error) {
	job := &config.Job{}
	if f.configPath != "" {
		loaded, err := config.LoadJob(f.configPath)
		if err != nil {
			return nil, fmt.Errorf("load job: %w", err)
		}
		job = loaded
	}

	override := func(name string) bool {
		return f.set[name] || f.configPath == ""
	}
	if override("input") {
		job.Input = f.input
	}
	if override("output") {
		job.Output = f.output
	}
	if override("format") {
		job.Format = f.format
	}
	if override("column") || job.Column == "" {
		job.Column = f.column
	}
	if override("columns") && f.columns != "" {
		job.Columns = splitList(f.columns)
	}
	if override("chunk-size") {
		job.ChunkSize = f.chunkSize
	}
	if override("workers") {
		job.Workers = f.workers
	}
	if override("list-format") {
		job.ListFormat = f.listFormat
	}
	if override("strip-html") {
		job.StripHTML = f.stripHTML
	}
	if override("stoplist") {
		job.Stoplist = f.stoplist
	}
	if override("stats") {
		job.Stats = f.stats
	}
	if override("db") {
		job.RunsDB = f.dbPath
	}
	return job, nil
}

// buildEngine opens the run store when a database path is given.
func buildEngine(ctx context.Context, dbPath string) (*newsprep.Engine, func(), error) {
	opts := newsprep.Options{Logger: log.Default()}
	if dbPath != "" {
		st, err := sqlite.OpenSQLite(ctx, dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		opts.Store = st
	}
	eng := newsprep.New(opts)
	cleanup := func() {
		if err := eng.Close(); err != nil {
			log.Printf("close engine: %v", err)
		}
	}
	return eng, cleanup, nil
}

func printRuns(ctx context.Context, eng *newsprep.Engine, n int, w io.Writer) error {
	runs, err := eng.Runs(ctx, n)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tMODE\tROWS\tDURATION\tINPUT\tSTATUS")
	for _, r := range runs {
		status := "ok"
		if r.Failed() {
			status = r.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Mode, r.Rows,
			r.Duration().Round(time.Millisecond), r.Input, status)
	}
	return tw.Flush()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func main() {
	f, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	job, err := buildJob(f)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, cleanup, err := buildEngine(ctx, job.RunsDB)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	if f.listRuns > 0 {
		if err := printRuns(ctx, eng, f.listRuns, os.Stdout); err != nil {
			log.Fatalf("list runs: %v", err)
		}
		return
	}

	report, err := eng.Process(ctx, job)
	if err != nil {
		cleanup()
		log.Fatalf("newsprep: %v", err)
	}

	if job.Output != "" {
		log.Printf("Wrote %d rows to %s", report.Run.Rows, job.Output)
	}
	if job.Stats {
		if report.VocabErr != nil {
			log.Printf("vocabulary statistics: %v", report.VocabErr)
			return
		}
		if err := report.Vocab.Write(os.Stdout); err != nil {
			log.Fatal(err)
		}
	}
}
