// Command phpanalyze runs the multi-pass static analyzer over a set of
// PHP source files or directories and reports every issue raised
// across all three passes, one per line, to stdout.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/doITmagic/php-analyzer/internal/analysis"
	"github.com/doITmagic/php-analyzer/internal/config"
	"github.com/doITmagic/php-analyzer/internal/issue"
	"github.com/joho/godotenv"
)

// simpleLogger is a minimal leveled logger writing to stderr and,
// optionally, an append-only log file: mirrors the teacher's own
// simpleLogger/initLoggerFromEnv pair in cmd/rag-code-mcp/main.go,
// levels gated by PHPANALYZE_LOG_LEVEL instead of MCP_LOG_LEVEL and
// file path by PHPANALYZE_LOG_FILE instead of MCP_LOG_FILE.
type simpleLogger struct {
	logFile *os.File
}

var logLevels = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

func (l *simpleLogger) shouldLog(level string) bool {
	configured := strings.ToLower(os.Getenv("PHPANALYZE_LOG_LEVEL"))
	if configured == "" {
		configured = "info"
	}
	return logLevels[level] >= logLevels[configured]
}

func (l *simpleLogger) Info(format string, args ...interface{}) { l.write("info", format, args...) }
func (l *simpleLogger) Warn(format string, args ...interface{}) { l.write("warn", format, args...) }

func (l *simpleLogger) write(level, format string, args ...interface{}) {
	if !l.shouldLog(level) {
		return
	}
	line := fmt.Sprintf("[%s] "+format+"\n", append([]interface{}{strings.ToUpper(level)}, args...)...)
	fmt.Fprint(os.Stderr, line)
	if l.logFile != nil {
		fmt.Fprint(l.logFile, line)
	}
}

var logger = &simpleLogger{}

func initLoggerFromEnv() {
	path := os.Getenv("PHPANALYZE_LOG_FILE")
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] failed to open log file %s: %v\n", path, err)
		return
	}
	logger.logFile = f
}

func main() {
	initLoggerFromEnv()
	// Load a .env file if one is present in the working directory, so
	// PHPANALYZE_* overrides can live outside the shell environment;
	// a missing .env is not an error.
	_ = godotenv.Load()

	var (
		configPath = flag.String("config", "config.yaml", "Path to config.yaml to read settings")
		pattern    = flag.String("pattern", "*.php", "Glob pattern (doublestar syntax) a file's basename must match")
		dumpAST    = flag.Bool("dump-ast", false, "Print each file's parsed tree shape instead of running the analysis passes")
	)
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		paths = []string{"."}
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	files, err := collectPHPFiles(paths, *pattern)
	if err != nil {
		log.Fatalf("collect files: %v", err)
	}
	if len(files) == 0 {
		log.Fatalf("no files matching %q under %s", *pattern, strings.Join(paths, ", "))
	}
	logger.Info("discovered %d file(s) matching %q", len(files), *pattern)

	if *dumpAST {
		dumpFiles(cfg, files)
		return
	}

	emit := issue.NewWriterEmitter(os.Stdout)
	results, _, _ := analysis.AnalyzeFiles(cfg, files, emit)

	exitCode := 0
	for _, r := range results {
		if r.ParseErr != nil {
			logger.Warn("%s: %v", r.Filename, r.ParseErr)
			exitCode = 1
		}
	}
	logger.Info("analysis complete across %d file(s)", len(results))
	os.Exit(exitCode)
}

// dumpFiles parses each file and prints its root node's type, the
// --dump-ast debugging path grounded on Analyzer.Dump.
func dumpFiles(cfg *config.PHPAnalyzeConfig, files []string) {
	emit := issue.NewWriterEmitter(os.Stderr)
	for _, filename := range files {
		f, err := os.Open(filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", filename, err)
			continue
		}
		a := analysis.New(cfg, filename, f)
		if err := a.Parse(emit); err != nil {
			f.Close()
			continue
		}
		fmt.Printf("%s: %s\n", filename, a.Dump())
		f.Close()
	}
}

// collectPHPFiles expands paths into a flat, de-duplicated list of
// regular files whose basename matches pattern: a path naming a file
// directly is taken as-is, a directory is walked recursively.
func collectPHPFiles(paths []string, pattern string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string

	add := func(path string) {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		if seen[abs] {
			return
		}
		seen[abs] = true
		out = append(out, path)
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			matched, err := doublestar.PathMatch(pattern, filepath.Base(path))
			if err != nil {
				return err
			}
			if matched {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
