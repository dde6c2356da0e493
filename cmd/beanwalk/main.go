package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/beanwalk/beanwalk/pkgs/beancheck"
	"github.com/beanwalk/beanwalk/pkgs/config"
	beanerrors "github.com/beanwalk/beanwalk/pkgs/errors"
	"github.com/beanwalk/beanwalk/pkgs/grammar"
	"github.com/beanwalk/beanwalk/pkgs/ledger"
	"github.com/beanwalk/beanwalk/pkgs/loader"
	"github.com/beanwalk/beanwalk/pkgs/parser"
)

func main() {
	var (
		configPath string
		logLevel   string
		treeWalker bool
		verify     bool
		watch      bool
	)

	rootCmd := &cobra.Command{
		Use:   "beanwalk",
		Short: "Parse and check plain-text ledger journals",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	checkCmd := &cobra.Command{
		Use:   "check <journal>",
		Short: "Load a journal and report diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(configPath, logLevel)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("tree-walker") {
				cfg.TreeWalker = treeWalker
			}
			if cmd.Flags().Changed("verify") {
				cfg.Verify = verify
			}
			return runCheck(cmd.Context(), cfg, log, args[0], watch)
		},
	}
	checkCmd.Flags().BoolVar(&treeWalker, "tree-walker", false, "Use the tree-walker pipeline instead of the reference engine output")
	checkCmd.Flags().BoolVar(&verify, "verify", false, "Reconcile tree-walker output against the reference engine")
	checkCmd.Flags().BoolVar(&watch, "watch", false, "Re-run the check when the journal tree changes")

	parseCmd := &cobra.Command{
		Use:   "parse <journal>",
		Short: "Parse a journal with the tree walker and dump its entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, err := setup(configPath, logLevel)
			if err != nil {
				return err
			}
			return runParse(log, args[0])
		},
	}

	rootCmd.AddCommand(checkCmd, parseCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration and wires the process logger.
func setup(configPath, logLevel string) (*config.Config, *slog.Logger, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)
	return cfg, log, nil
}

func newLoader(cfg *config.Config, log *slog.Logger) *loader.Loader {
	engine := beancheck.NewCommand(cfg.Checker.Command, cfg.Checker.Args, log)
	return loader.New(grammar.New(), engine,
		loader.WithTreeWalker(cfg.TreeWalker),
		loader.WithVerify(cfg.Verify),
		loader.WithLogger(log))
}

func runCheck(ctx context.Context, cfg *config.Config, log *slog.Logger, journal string, watch bool) error {
	l := newLoader(cfg, log)

	result, err := l.Open(ctx, journal)
	if err != nil {
		return err
	}
	printDiagnostics(result.Diagnostics)

	if !watch {
		if len(result.Diagnostics) > 0 {
			os.Exit(1)
		}
		return nil
	}
	return watchLoop(ctx, l, log, journal, result)
}

// watchLoop re-runs the check whenever a file in the journal tree
// changes. Watched directories come from the previous run's include
// list, so newly included files are picked up on the next change.
func watchLoop(ctx context.Context, l *loader.Loader, log *slog.Logger, journal string, last *ledger.LoadResult) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return beanerrors.Wrap(beanerrors.ErrWatch, "cannot start file watcher", err)
	}
	defer watcher.Close()

	addDirs := func(result *ledger.LoadResult) {
		dirs := map[string]bool{filepath.Dir(journal): true}
		if result != nil {
			for _, f := range result.Options.Include {
				dirs[filepath.Dir(f)] = true
			}
		}
		for dir := range dirs {
			if err := watcher.Add(dir); err != nil {
				log.Warn("cannot watch directory", "dir", dir, "error", err)
			}
		}
	}
	addDirs(last)

	log.Info("watching for changes", "journal", journal)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			log.Info("journal changed, re-checking", "file", event.Name)
			result, err := l.Save(ctx, journal)
			if err != nil {
				log.Error("check failed", "error", err)
				continue
			}
			printDiagnostics(result.Diagnostics)
			addDirs(result)
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "error", werr)
		}
	}
}

func runParse(log *slog.Logger, journal string) error {
	p := parser.New(grammar.New(), parser.WithLogger(log))
	result, err := p.ParseFile(journal)
	if err != nil {
		return err
	}
	for _, entry := range result.Entries {
		fmt.Printf("%s %s %s\n", entry.Pos(), entry.When().Format("2006-01-02"), entry.Kind())
	}
	printDiagnostics(result.Diagnostics)
	if len(result.Diagnostics) > 0 {
		os.Exit(1)
	}
	return nil
}

func printDiagnostics(diags []ledger.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d.String())
	}
}
