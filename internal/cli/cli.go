// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Root command, subcommands and REPL bootstrap.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/tabchat/internal/catalog"
	"github.com/jeranaias/tabchat/internal/cloud"
	"github.com/jeranaias/tabchat/internal/commands"
	"github.com/jeranaias/tabchat/internal/config"
	"github.com/jeranaias/tabchat/internal/conversation"
	"github.com/jeranaias/tabchat/internal/logging"
	"github.com/jeranaias/tabchat/internal/session"
	"github.com/jeranaias/tabchat/internal/storage"
	"github.com/jeranaias/tabchat/internal/ui"
	"github.com/jeranaias/tabchat/internal/ui/styles"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// recentSaves bounds how many journal entries feed /load completion.
const recentSaves = 20

// shutdownGrace bounds the wait for abandoned requests on exit.
const shutdownGrace = 2 * time.Second

// rootOptions holds the global flags.
type rootOptions struct {
	configPath string
	model      string
	saveDir    string
	verbose    bool
}

// Execute runs the tabchat command and returns the process exit code.
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		DisplayError(cmd.ErrOrStderr(), err)
		return GetExitCode(err)
	}
	return ExitSuccess
}

// NewRootCommand builds the tabchat command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "tabchat",
		Short: "Multi-tab chat with Groq-hosted models",
		Long: `tabchat is an interactive terminal chat client for Groq's
OpenAI-compatible API.

Keep several independent conversations open as tabs, switch between them,
save and reload them as JSON, and change the model at any time.

Set GROQ_API_KEY before starting. Type /help inside the REPL for commands.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, opts)
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &UsageError{Reason: err.Error()}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default ~/.tabchat/config.toml)")
	pf.StringVarP(&opts.model, "model", "m", "", "startup model: catalog id or number")
	pf.StringVar(&opts.saveDir, "save-dir", "", "directory for saved conversations")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newModelsCommand(opts), newConfigCommand(opts), newVersionCommand())
	return root
}

// loadConfig reads and validates configuration with the command's flags.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// =============================================================================
// CHAT
// =============================================================================

func runChat(cmd *cobra.Command, opts *rootOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	if err := cfg.RequireCredential(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log, opts.verbose)
	if err != nil {
		return &config.ConfigurationError{Key: "log.file", Message: err.Error()}
	}
	defer func() { _ = logger.Sync() }()

	reg := catalog.Default()
	selected, err := config.ResolveModel(reg, cfg.Model.Default)
	if err != nil {
		return &config.ConfigurationError{Key: "model.default", Message: err.Error()}
	}

	sess := session.NewManager(selected)
	store := storage.NewConversationStore(cfg.Storage.SaveDir)
	journal := openJournal(cfg.Storage.Journal, logger)
	defer journal.Close()

	client := cloud.NewGroqClient(cfg.Provider.APIKey).
		WithBaseURL(cfg.Provider.BaseURL).
		WithTimeout(time.Duration(cfg.Provider.TimeoutSecs) * time.Second).
		WithLogger(logger)
	engine := conversation.NewEngine(sess, client, logger)

	out := cmd.OutOrStdout()
	tty := ui.IsTerminal(os.Stdout)
	theme := styles.Plain()
	width := ui.DefaultWidth
	if tty {
		theme = styles.NewTheme()
		width = ui.TerminalWidth(os.Stdout)
	}
	console := ui.NewConsole(out).
		WithTheme(theme).
		WithMarkdown(cfg.UI.Markdown).
		WithWidth(width)
	spinner := ui.NewSpinner(out, tty).WithStyle(theme.Prompt)

	registry := commands.NewRegistry()
	completer := commands.NewCompleter(registry)
	completer.TabsFn = sess.Tabs
	completer.FilesFn = func() []string {
		return savedFiles(ctx, store, journal, logger)
	}

	input := NewChatCLI(cfg.UI.HistoryFile, completer)
	defer func() {
		if err := input.Close(); err != nil {
			logger.Warn("failed to save input history", zap.Error(err))
		}
	}()

	logger.Info("session started",
		zap.String("version", Version),
		zap.String("model", selected.ID),
		zap.String("base_url", client.BaseURL()),
		zap.String("key", client.KeyFingerprint()))

	chat := &ChatSession{
		Input:    input,
		Console:  console,
		Spinner:  spinner,
		Engine:   engine,
		Commands: registry,
		CmdCtx: &commands.Context{
			Session: sess,
			Catalog: reg,
			Store:   store,
			Journal: journal,
			UI:      console,
			Prompt:  NewLinePrompter(input.Prompt),
			Logger:  logger,
		},
		Logger: logger,
	}
	runErr := chat.Run(ctx)

	waitCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := engine.Wait(waitCtx); err != nil {
		logger.Warn("abandoned requests still running at exit", zap.Error(err))
	}
	return runErr
}

// openJournal opens the save journal. The journal only feeds completion, so
// failures are logged and the REPL runs without it.
func openJournal(path string, logger *zap.Logger) *storage.Journal {
	if path == "" {
		return nil
	}
	j, err := storage.OpenJournal(path)
	if err != nil {
		logger.Warn("save journal unavailable", zap.String("path", path), zap.Error(err))
		return nil
	}
	return j
}

// savedFiles lists /load candidates: recent journal entries first, then
// files in the save directory, without duplicates.
func savedFiles(ctx context.Context, store *storage.ConversationStore, journal *storage.Journal, logger *zap.Logger) []string {
	seen := make(map[string]bool)
	var files []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			files = append(files, name)
		}
	}

	saveDir, _ := filepath.Abs(store.Resolve("."))
	if journal != nil {
		recent, err := journal.Recent(ctx, recentSaves)
		if err != nil {
			logger.Debug("journal lookup failed", zap.Error(err))
		}
		for _, rec := range recent {
			if filepath.Dir(rec.Path) == saveDir {
				add(filepath.Base(rec.Path))
			} else {
				add(rec.Path)
			}
		}
	}

	names, err := store.ListSaved()
	if err != nil {
		logger.Debug("listing saved conversations failed", zap.Error(err))
	}
	for _, name := range names {
		add(name)
	}
	return files
}

// =============================================================================
// MODELS
// =============================================================================

func newModelsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the selectable models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			reg := catalog.Default()
			current, err := config.ResolveModel(reg, cfg.Model.Default)
			if err != nil {
				return err
			}
			ui.NewConsole(cmd.OutOrStdout()).ShowModels(reg.All(), current)
			return nil
		},
	}
}

// =============================================================================
// CONFIG
// =============================================================================

func newConfigCommand(opts *rootOptions) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath(opts)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return &CommandError{Command: "config init", Reason: fmt.Sprintf("%s already exists (use --force to overwrite)", path)}
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return &CommandError{Command: "config init", Reason: "cannot inspect config file", Err: err}
			}
			if err := config.SaveTOML(config.Default(), path); err != nil {
				return &CommandError{Command: "config init", Reason: "cannot write config file", Err: err}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath(opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cfgCmd.AddCommand(initCmd, pathCmd)
	return cfgCmd
}

func configPath(opts *rootOptions) (string, error) {
	if opts.configPath != "" {
		return config.ExpandPath(opts.configPath), nil
	}
	return config.ConfigPathTOML()
}

// =============================================================================
// VERSION
// =============================================================================

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tabchat %s (commit %s, built %s, %s/%s)\n",
				Version, GitCommit, BuildDate, runtime.GOOS, runtime.GOARCH)
		},
	}
}
