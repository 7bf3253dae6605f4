package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"phishscope/pkg/collect"
	"phishscope/pkg/config"
	"phishscope/pkg/features"
	"phishscope/pkg/parse"
	"phishscope/pkg/storage"
	"phishscope/pkg/utils"
)

const version = "0.3.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "collect":
		runCollect(os.Args[2:])
	case "validate":
		runValidate(os.Args[2:])
	case "schema":
		runSchema(os.Args[2:])
	case "version":
		fmt.Printf("phishscope %s\n", version)
	case "-h", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	printUsageTo(os.Stdout)
}

// printUsageTo writes usage information to the provided writer.
func printUsageTo(w io.Writer) {
	fmt.Fprintln(w, `phishscope - Website data collector and feature extractor

Usage:
  phishscope <command> [options]

Commands:
  collect     Collect website data and extract feature vectors
  validate    Validate configuration file
  schema      Print the feature vector layout
  version     Show version info

Run 'phishscope <command> -h' for command-specific help.`)
}

// outputRecord is one JSON line of collect output
type outputRecord struct {
	URL         string     `json:"url"`
	Fingerprint string     `json:"fingerprint,omitempty"`
	StatusCode  int        `json:"status_code,omitempty"`
	Error       string     `json:"error,omitempty"`
	ErrorKind   string     `json:"error_kind,omitempty"`
	Features    []float64  `json:"features,omitempty"`
	CollectedAt *time.Time `json:"collected_at,omitempty"`
}

// runCollect handles the collect subcommand
func runCollect(args []string) {
	fs := flag.NewFlagSet("collect", flag.ExitOnError)
	urlsFile := fs.String("urls", "", "Path to file with one URL per line ('-' for stdin)")
	configFile := fs.String("config", "", "Path to YAML config file (defaults apply when empty)")
	logLevel := fs.String("loglevel", "info", "Log level (debug, info, warn, error, fatal)")
	stateDir := fs.String("state", "", "State directory for the result database (persistence disabled when empty)")
	concurrency := fs.Int("concurrency", 0, "Override max concurrent fetches (0 = use config)")
	outFile := fs.String("out", "", "Output file for JSON lines (stdout when empty)")
	rawOutput := fs.Bool("raw", false, "Emit full collection records instead of feature vectors")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: phishscope collect [options] [url ...]\n\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  phishscope collect https://example.com\n")
		fmt.Fprintf(os.Stderr, "  phishscope collect -urls targets.txt -concurrency 20\n")
		fmt.Fprintf(os.Stderr, "  phishscope collect -urls targets.txt -state ./state -out vectors.jsonl\n")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	log := setupLogger(*logLevel)
	cfg := loadAndValidateConfig(*configFile, log)

	if *concurrency > 0 {
		cfg.MaxConcurrent = *concurrency
		log.Infof("Concurrency overridden via CLI flag: %d", *concurrency)
	}

	// URL list: positional args plus the -urls file, in that order
	urls := fs.Args()
	if *urlsFile != "" {
		fileURLs, err := readURLFile(*urlsFile)
		if err != nil {
			log.Fatalf("Failed to read URL file: %v", err)
		}
		urls = append(urls, fileURLs...)
	}
	if len(urls) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no URLs given (use positional arguments or -urls)")
		fs.Usage()
		os.Exit(1)
	}
	urls = dedupeURLs(urls, log)
	log.Infof("Collecting %d URLs (max concurrent: %d)", len(urls), cfg.MaxConcurrent)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		sig := <-sigChan
		log.Warnf("Received signal %v, cancelling collection...", sig)
		cancel()
	}()

	// --- Storage (optional) ---
	var store storage.Store
	if *stateDir != "" {
		var err error
		store, err = storage.NewBadgerStore(ctx, *stateDir, log.WithField("component", "storage"))
		if err != nil {
			log.Fatalf("Failed to initialize result DB: %v", err)
		}
		defer store.Close()
		go store.RunGC(ctx, 10*time.Minute)
	}

	// --- Output sink ---
	out := os.Stdout
	if *outFile != "" {
		f, err := os.Create(*outFile)
		if err != nil {
			log.Fatalf("Failed to create output file: %v", err)
		}
		defer f.Close()
		out = f
	}
	writer := bufio.NewWriter(out)
	defer writer.Flush()
	enc := json.NewEncoder(writer)

	// --- Run the pipeline ---
	collector := collect.NewCollector(cfg, log)
	extractor := features.NewExtractor(cfg.Lexicon, log)

	items := collector.CollectMany(ctx, urls)

	failed := 0
	for _, item := range items {
		if item.Err != nil {
			failed++
			rec := outputRecord{
				URL:       item.URL,
				Error:     item.Err.Error(),
				ErrorKind: utils.CategorizeError(item.Err),
			}
			if err := enc.Encode(rec); err != nil {
				log.Errorf("Failed to write record for %s: %v", item.URL, err)
			}
			continue
		}

		res := item.Result
		vector := extractor.Extract(res).Vector()

		if store != nil {
			if err := store.SaveResult(res); err != nil {
				log.Errorf("Failed to persist result for %s: %v", res.URL, err)
			}
			if err := store.SaveVector(res.Fingerprint, vector); err != nil {
				log.Errorf("Failed to persist vector for %s: %v", res.URL, err)
			}
		}

		if *rawOutput {
			if err := enc.Encode(res); err != nil {
				log.Errorf("Failed to write record for %s: %v", res.URL, err)
			}
			continue
		}

		collectedAt := res.CollectedAt
		rec := outputRecord{
			URL:         res.URL,
			Fingerprint: res.Fingerprint,
			StatusCode:  res.StatusCode,
			Features:    vector,
			CollectedAt: &collectedAt,
		}
		if err := enc.Encode(rec); err != nil {
			log.Errorf("Failed to write record for %s: %v", res.URL, err)
		}
	}

	if store != nil {
		log.Infof("Result DB now holds %d records", store.ResultCount())
	}
	log.Infof("Done: %d succeeded, %d failed", len(items)-failed, failed)

	if failed == len(items) {
		os.Exit(1)
	}
}

// runValidate handles the validate subcommand
func runValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	configFile := fs.String("config", "config.yaml", "Path to config file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: phishscope validate [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	os.Exit(doValidate(*configFile, os.Stdout, os.Stderr))
}

// doValidate performs validation and writes output to provided writers.
// Returns exit code (0 = success, 1 = error).
func doValidate(configPath string, stdout, stderr io.Writer) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	warnings, err := cfg.Validate()
	for _, w := range warnings {
		fmt.Fprintf(stdout, "WARN: %s\n", w)
	}
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, "Configuration valid.")
	return 0
}

// runSchema handles the schema subcommand: prints each vector position and
// its feature name, for lining model output back up with inputs
func runSchema(args []string) {
	fs := flag.NewFlagSet("schema", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "Emit the layout as a JSON array")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	names := features.FeatureNames()
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(names); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("Feature vector schema v%d (%d positions):\n\n", features.SchemaVersion, len(names))
	for i, name := range names {
		fmt.Printf("  %3d  %s\n", i, name)
	}
}

// setupLogger creates a configured logrus.Logger with the given log level.
func setupLogger(logLevelStr string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})
	log.SetLevel(logrus.InfoLevel)

	level, err := logrus.ParseLevel(logLevelStr)
	if err != nil {
		log.Warnf("Invalid log level '%s', using default 'info'. Error: %v", logLevelStr, err)
	} else {
		log.SetLevel(level)
	}

	return log
}

// loadAndValidateConfig loads the config file (or the defaults when path is
// empty), validates it, and logs warnings.
func loadAndValidateConfig(configFile string, log *logrus.Logger) config.CollectorConfig {
	var cfg config.CollectorConfig
	if configFile == "" {
		cfg = config.DefaultConfig()
	} else {
		log.Infof("Loading configuration from %s", configFile)
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			log.Fatalf("Config error: %v", err)
		}
	}

	warnings, err := cfg.Validate()
	for _, w := range warnings {
		log.Warn(w)
	}
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	return cfg
}

// dedupeURLs drops URLs whose normalized form has already been seen, keeping
// first-occurrence order. Entries that fail to parse pass through untouched so
// they still surface as per-item errors in the batch output.
func dedupeURLs(urls []string, log *logrus.Logger) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		key, _, err := parse.ParseAndNormalize(u)
		if err != nil {
			out = append(out, u)
			continue
		}
		if _, dup := seen[key]; dup {
			log.Debugf("Skipping duplicate URL %s (normalized: %s)", u, key)
			continue
		}
		seen[key] = struct{}{}
		out = append(out, u)
	}
	if dropped := len(urls) - len(out); dropped > 0 {
		log.Infof("Dropped %d duplicate URLs after normalization", dropped)
	}
	return out
}

// readURLFile reads one URL per line, skipping blank lines and '#' comments.
// Path '-' reads stdin.
func readURLFile(path string) ([]string, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return urls, nil
}
