package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yuanying/epubreader/internal/epub"
	"github.com/yuanying/epubreader/internal/progress"
)

const storeEnv = "EPUBREADER_STORE"

// globalOptions holds the flags shared by every subcommand.
type globalOptions struct {
	StoreDir string
	Logger   *slog.Logger
}

var validLogLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "epubreader",
		Short: "Read EPUB books from the command line",
		Long: `epubreader parses EPUB e-books into an ordered list of chapters
and prints book information or chapter content.

Reading position and bookmarks are remembered per book.`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.String("log-level", "warn", "Log level: debug, info, warn, error")
	pf.String("log-format", "text", "Log format: text, json")
	pf.BoolP("verbose", "v", false, "Enable debug logging (overrides --log-level)")
	pf.String("store", "", "Progress database directory (default: $"+storeEnv+" or ~/.epubreader/progress)")

	cmd.AddCommand(newInfoCmd(), newReadCmd(), newBookmarkCmd())
	return cmd
}

// readGlobalOptions validates the persistent flags and builds the logger.
func readGlobalOptions(cmd *cobra.Command) (globalOptions, error) {
	flags := cmd.Flags()
	logLevel, _ := flags.GetString("log-level")
	logFormat, _ := flags.GetString("log-format")
	verbose, _ := flags.GetBool("verbose")
	storeDir, _ := flags.GetString("store")

	logLevel = strings.ToLower(logLevel)
	if _, ok := validLogLevels[logLevel]; !ok {
		return globalOptions{}, fmt.Errorf("--log-level must be one of debug, info, warn, error: %q", logLevel)
	}
	switch strings.ToLower(logFormat) {
	case "text", "json":
	default:
		return globalOptions{}, fmt.Errorf("--log-format must be text or json: %q", logFormat)
	}
	if verbose {
		logLevel = "debug"
	}

	if storeDir == "" {
		storeDir = defaultStoreDir()
	}

	return globalOptions{
		StoreDir: storeDir,
		Logger:   buildLogger(cmd.ErrOrStderr(), logLevel, logFormat),
	}, nil
}

// buildLogger creates a slog.Logger writing to w.
func buildLogger(w io.Writer, level, format string) *slog.Logger {
	lvl, ok := validLogLevels[strings.ToLower(level)]
	if !ok {
		lvl = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func defaultStoreDir() string {
	if dir := os.Getenv(storeEnv); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".epubreader", "progress")
	}
	return filepath.Join(home, ".epubreader", "progress")
}

func openStore(opts globalOptions) (*progress.Store, error) {
	if err := os.MkdirAll(opts.StoreDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return progress.Open(opts.StoreDir, opts.Logger)
}

// bookID returns the progress key of a book: the explicit flag value, the
// package identifier, or the archive file name.
func bookID(flagValue string, doc *epub.Document, path string) string {
	if flagValue != "" {
		return flagValue
	}
	if doc != nil && doc.Identifier != "" {
		return doc.Identifier
	}
	return filepath.Base(path)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
