// SPDX-License-Identifier: MIT
// Package syncer contains the Cobra command tree for the syncer CLI.
package syncer

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/skaphos/syncer/internal/config"
	"github.com/skaphos/syncer/internal/engine"
	"github.com/skaphos/syncer/internal/gitx"
	"github.com/skaphos/syncer/internal/hosting"
	"github.com/skaphos/syncer/internal/logging"
	"github.com/skaphos/syncer/internal/vcs"
)

var (
	// Global flags
	flagVerbose     int
	flagQuiet       bool
	flagConfig      string
	flagNoColor     bool
	flagFormat      string
	flagConcurrency int
	flagTimeout     int
	flagLogFormat   string
	// colorOutputEnabled is set per command execution based on output format and TTY detection.
	colorOutputEnabled bool
	// exitCode tracks the highest severity observed during a command run.
	exitCode int
	// logger is built from -v/-q and --log-format before each command.
	logger = zap.NewNop()
	// isTerminalFD is overridable in tests.
	isTerminalFD = term.IsTerminal
	// exitFunc is overridable in tests.
	exitFunc = os.Exit
	// newAdapter and newHostingClient are overridable in tests.
	newAdapter       = func(timeout time.Duration) vcs.Adapter { return vcs.NewGitAdapter(&gitx.GitRunner{Timeout: timeout}) }
	newHostingClient = func(cfg *config.Config, timeout time.Duration) hosting.Client {
		return hosting.NewGHClient(&hosting.CLIRunner{Timeout: timeout}, cfg.Host, logger)
	}
)

var rootCmd = &cobra.Command{
	Use:   "syncer",
	Short: "Keep a fleet of local git repositories in step with their remotes",
	Long: "syncer checks every configured repository against its remote, pulls or pushes when that is safe, " +
		"clones what is missing and reports everything else. Running syncer without a subcommand runs sync.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// `NO_COLOR` is a standard opt-out and should behave like --no-color.
		if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
			flagNoColor = true
		}
		if err := validateFormat(flagFormat); err != nil {
			return err
		}
		built, err := logging.New(logging.LevelFor(flagVerbose, flagQuiet), logging.Format(flagLogFormat), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		logger = built
		return nil
	},
	RunE: runSync,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&flagVerbose, "verbose", "v", "increase output verbosity (repeatable)")
	flags.BoolVarP(&flagQuiet, "quiet", "q", false, "suppress non-essential output")
	flags.StringVarP(&flagConfig, "config", "c", "", "configuration name (default: the only one in "+config.EnvConfigDir+" or ~/.config/syncer)")
	flags.BoolVar(&flagNoColor, "no-color", false, "disable colored output")
	flags.StringVar(&flagFormat, "format", formatTable, "output format: table, json, or yaml")
	flags.IntVar(&flagConcurrency, "concurrency", 0, "max concurrent repositories (default: config value)")
	flags.IntVar(&flagTimeout, "timeout", 0, "timeout in seconds per git or gh command (default: config value)")
	flags.StringVar(&flagLogFormat, "log-format", string(logging.FormatConsole), "log encoding: console or json")
	addSyncFlags(rootCmd)
}

// Execute runs the root command.
func Execute() {
	exitFunc(ExecuteWithExitCode())
}

// ExecuteWithExitCode runs the root command and returns a shell-friendly exit code.
func ExecuteWithExitCode() int {
	exitCode = 0
	colorOutputEnabled = false
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err := rootCmd.ExecuteContext(ctx)
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		return 3
	}
	return exitCode
}

func raiseExitCode(code int) {
	// Keep the highest severity: 0 success, 1 issues, 2 operational error, 3 fatal.
	if code > exitCode {
		exitCode = code
	}
}

func infof(cmd *cobra.Command, format string, args ...any) {
	if flagQuiet {
		return
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}

func debugf(cmd *cobra.Command, format string, args ...any) {
	if flagQuiet || flagVerbose <= 0 {
		return
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}

func setColorOutputMode(cmd *cobra.Command, format string) {
	colorOutputEnabled = shouldUseColorOutput(cmd, format)
}

func shouldUseColorOutput(cmd *cobra.Command, format string) bool {
	if flagNoColor || !isTabularFormat(format) {
		return false
	}
	file, ok := cmd.OutOrStdout().(*os.File)
	if !ok {
		return false
	}
	return isTerminalFD(int(file.Fd()))
}

// loadedConfig is a resolved and parsed configuration document.
type loadedConfig struct {
	name string
	path string
	cfg  *config.Config
}

func loadConfig(cmd *cobra.Command) (*loadedConfig, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	name, path, err := config.Resolve(dir, flagConfig)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	debugf(cmd, "using config %s (%s)", name, path)
	return &loadedConfig{name: name, path: path, cfg: cfg}, nil
}

func newEngine(cfg *config.Config) *engine.Engine {
	timeout := cfg.Timeout()
	if flagTimeout > 0 {
		timeout = time.Duration(flagTimeout) * time.Second
	}
	return engine.New(cfg, newAdapter(timeout), newHostingClient(cfg, timeout), logger)
}
