// Package main provides the CLI entrypoint for tango.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tango/internal/config"
	"github.com/verte-zerg/tango/internal/corpus"
	"github.com/verte-zerg/tango/internal/history"
	"github.com/verte-zerg/tango/internal/logging"
	"github.com/verte-zerg/tango/internal/mastery"
	"github.com/verte-zerg/tango/internal/model"
	"github.com/verte-zerg/tango/internal/selector"
	"github.com/verte-zerg/tango/internal/server"
	"github.com/verte-zerg/tango/internal/session"
	"github.com/verte-zerg/tango/internal/stats"
	"github.com/verte-zerg/tango/internal/statsui"
	"github.com/verte-zerg/tango/internal/tui"
)

const (
	defaultAddr        = "127.0.0.1:5000"
	defaultCurveWindow = 5
	defaultTop         = 20
	defaultLogLevel    = "info"
	defaultLogFormat   = "console"
)

var (
	globalCorpusDir   string
	globalOnSaveError string
	globalLogLevel    string
	globalLogFormat   string

	practiceCategory string
	practiceMode     string
	practiceCount    int
	practiceReshow   string

	serveAddr string

	statsPlain       bool
	statsCategory    string
	statsSince       string
	statsTop         int
	statsCurveWindow int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tango",
		Short:         "Japanese vocabulary flashcards",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&globalCorpusDir, "corpus-dir", config.DefaultCorpusDir(), "directory holding the vocabulary JSON files")
	flags.StringVar(&globalOnSaveError, "on-save-error", string(mastery.SaveErrorFail), "what a failed ledger save does (fail or warn)")
	flags.StringVar(&globalLogLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&globalLogFormat, "log-format", defaultLogFormat, "log format (console or json)")

	rootCmd.Flags().StringVar(&practiceCategory, "category", "", "category to practice (verbo, adjetivo, adverbio, jlpt)")
	rootCmd.Flags().StringVar(&practiceMode, "mode", "", "start right away in this mode (normal, all, smart)")
	rootCmd.Flags().IntVar(&practiceCount, "count", selector.DefaultCount, "cards per session")
	rootCmd.Flags().StringVar(&practiceReshow, "reshow", string(session.ReshowOnce), "count re-entered cards again (once or every)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newReconcileCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCategoriesCmd())

	return rootCmd
}

// loadFileConfig reads the config file and folds it into the global flags.
func loadFileConfig(cmd *cobra.Command) (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "corpus-dir", &globalCorpusDir, fileCfg.Corpus.Dir)
	applyStringConfig(cmd, "on-save-error", &globalOnSaveError, fileCfg.Ledger.OnSaveError)
	applyStringConfig(cmd, "log-level", &globalLogLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-format", &globalLogFormat, fileCfg.Log.Format)
	return fileCfg, nil
}

func openStore(logger *slog.Logger) (*mastery.Store, error) {
	policy, err := mastery.ParseSaveErrorPolicy(globalOnSaveError)
	if err != nil {
		return nil, fmt.Errorf("--on-save-error: %w", err)
	}
	return mastery.New(config.LedgerPath(globalCorpusDir), mastery.Options{
		Logger:      logger,
		OnSaveError: policy,
	}), nil
}

func newLogger(out io.Writer) (*slog.Logger, error) {
	logger, err := logging.New(logging.Options{
		Level:  globalLogLevel,
		Format: globalLogFormat,
		Output: out,
	})
	if err != nil {
		return nil, fmt.Errorf("--log-format: %w", err)
	}
	return logger, nil
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "category", &practiceCategory, fileCfg.Practice.Category)
	applyStringConfig(cmd, "mode", &practiceMode, fileCfg.Practice.Mode)
	applyIntConfig(cmd, "count", &practiceCount, fileCfg.Practice.Count)
	applyStringConfig(cmd, "reshow", &practiceReshow, fileCfg.Practice.Reshow)

	cfg, err := buildPracticeConfig()
	if err != nil {
		return err
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	// The alt-screen owns stdout, so logs go to a file.
	logFile, err := logging.OpenFile(config.DefaultLogPath())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := logFile.Close(); cerr != nil {
			logErrf("failed to close log file: %v\n", cerr)
		}
	}()
	logger, err := newLogger(logFile)
	if err != nil {
		return err
	}

	st, err := openStore(logger)
	if err != nil {
		return err
	}
	loaded := st.Load()
	if loaded.Err != nil {
		logErrf("warning: ledger %s is %s (%v); starting with empty stats\n", st.Path(), loaded.Source, loaded.Err)
	}

	hist, err := history.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := hist.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	m := tui.NewModel(cfg, st.Track(loaded.Ledger), hist, selector.New(), logger)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func buildPracticeConfig() (model.Config, error) {
	cfg := model.Config{
		CorpusDir: globalCorpusDir,
		Count:     practiceCount,
		Reshow:    practiceReshow,
	}
	if strings.TrimSpace(practiceCategory) != "" {
		category, err := corpus.ParseCategory(practiceCategory)
		if err != nil {
			return model.Config{}, fmt.Errorf("--category: %w", err)
		}
		cfg.Category = category
	}
	if strings.TrimSpace(practiceMode) != "" {
		mode, err := model.ParseMode(practiceMode)
		if err != nil {
			return model.Config{}, fmt.Errorf("--mode: %w", err)
		}
		cfg.Mode = mode
	}
	return cfg, nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the flashcard HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "addr", &serveAddr, fileCfg.Serve.Addr)
	if strings.TrimSpace(serveAddr) == "" {
		return fmt.Errorf("--addr must not be empty")
	}

	logger, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}
	st, err := openStore(logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting server",
		logging.String("corpus_dir", globalCorpusDir),
		logging.String("ledger", st.Path()))
	srv := server.New(globalCorpusDir, st, selector.New(), logger)
	return srv.ListenAndServe(ctx, serveAddr)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show mastery stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print tables instead of opening the TUI")
	cmd.Flags().StringVar(&statsCategory, "category", "", "category filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsTop, "top", defaultTop, "weakest cards to list with --plain (0 = all)")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	if _, err := loadFileConfig(cmd); err != nil {
		return err
	}
	cfg, err := buildStatsConfig()
	if err != nil {
		return err
	}

	st, err := openStore(logging.NewNop())
	if err != nil {
		return err
	}
	hist, err := history.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := hist.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	cards := loadAllCards(globalCorpusDir)
	if statsPlain {
		return printPlainStats(cmd.OutOrStdout(), hist, st.Snapshot(), cards, cfg)
	}

	m := statsui.NewModel(hist, st.Snapshot, cards, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func buildStatsConfig() (model.StatsConfig, error) {
	if statsCurveWindow < 1 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be >= 1")
	}
	if statsTop < 0 {
		return model.StatsConfig{}, fmt.Errorf("--top must be >= 0")
	}
	cfg := model.StatsConfig{CurveWindow: statsCurveWindow, Top: statsTop}
	if strings.TrimSpace(statsCategory) != "" {
		category, err := corpus.ParseCategory(statsCategory)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("--category: %w", err)
		}
		cfg.Category = category
	}
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		cfg.Since = &parsed
	}
	return cfg, nil
}

func printPlainStats(w io.Writer, hist stats.SessionLister, ledger model.Ledger, cards []model.Card, cfg model.StatsConfig) error {
	report, err := stats.BuildReport(context.Background(), hist, ledger, cards, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	width := stats.TerminalWidth()
	if err := stats.RenderSummary(w, report); err != nil {
		return err
	}
	if err := stats.RenderCurve(w, report, width); err != nil {
		return err
	}
	return stats.RenderCardTable(w, report.Rows, cfg.Top, width)
}

// loadAllCards concatenates every readable corpus. Missing files are skipped.
func loadAllCards(dir string) []model.Card {
	var cards []model.Card
	for _, category := range corpus.Categories() {
		loaded, err := corpus.Load(dir, category)
		if err != nil {
			continue
		}
		cards = append(cards, loaded...)
	}
	return cards
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Zero every mastery counter",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	if _, err := loadFileConfig(cmd); err != nil {
		return err
	}
	logger, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}
	st, err := openStore(logger)
	if err != nil {
		return err
	}
	if err := st.ResetAll(); err != nil {
		return fmt.Errorf("failed to reset ledger: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Reset %s\n", st.Path())
	return err
}

func newReconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Drop ledger entries for removed cards and seed new ones",
		Args:  cobra.NoArgs,
		RunE:  runReconcileCmd,
	}
}

func runReconcileCmd(cmd *cobra.Command, _ []string) error {
	if _, err := loadFileConfig(cmd); err != nil {
		return err
	}
	logger, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}
	ids := corpus.AllIDs(globalCorpusDir)
	if len(ids) == 0 {
		return fmt.Errorf("no cards found in %s; refusing to empty the ledger", globalCorpusDir)
	}
	st, err := openStore(logger)
	if err != nil {
		return err
	}
	res, err := st.ReconcileAll(ids)
	if err != nil {
		return fmt.Errorf("failed to reconcile ledger: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added %d, removed %d (%d cards)\n", res.Added, res.Removed, len(ids))
	return err
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories and their corpus sizes",
		Args:  cobra.NoArgs,
		RunE:  runCategoriesCmd,
	}
}

func runCategoriesCmd(cmd *cobra.Command, _ []string) error {
	if _, err := loadFileConfig(cmd); err != nil {
		return err
	}
	return writeCategories(cmd.OutOrStdout(), globalCorpusDir)
}

func writeCategories(w io.Writer, dir string) error {
	for _, category := range corpus.Categories() {
		size := "missing"
		if cards, err := corpus.Load(dir, category); err == nil {
			size = fmt.Sprintf("%d cards", len(cards))
		}
		if _, err := fmt.Fprintf(w, "%-10s %-10s %s\n", category, corpus.Label(category), size); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tango configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# category = "verbo"      # verbo, adjetivo, adverbio or jlpt
# mode = "smart"          # Start right away: normal, all or smart
# count = %d              # Cards per session
# reshow = %q             # once or every

[corpus]
# dir = %q

[ledger]
# on-save-error = %q      # fail or warn

[serve]
# addr = %q

[log]
# level = %q
# format = %q             # console or json
`,
		selector.DefaultCount,
		session.ReshowOnce,
		config.DefaultCorpusDir(),
		mastery.SaveErrorFail,
		defaultAddr,
		defaultLogLevel,
		defaultLogFormat,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Count < 0 {
		return fmt.Errorf("--count must be >= 0")
	}
	if _, err := session.ParseReshowPolicy(cfg.Reshow); err != nil {
		return fmt.Errorf("--reshow: %w", err)
	}
	if strings.TrimSpace(cfg.CorpusDir) == "" {
		return fmt.Errorf("--corpus-dir must not be empty")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
