// Package cli implements the larder command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/larder/internal/logger"
	"github.com/mesh-intelligence/larder/internal/paths"
	"github.com/mesh-intelligence/larder/pkg/larder"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

func userError(err error) error { return &ExitError{Code: exitUserError, Err: err} }

func sysError(err error) error { return &ExitError{Code: exitSysError, Err: err} }

// failure classifies a storage error: I/O trouble is a system error,
// everything else was caused by the input.
func failure(err error) error {
	if errors.Is(err, types.ErrIO) || errors.Is(err, types.ErrStoreClosed) {
		return sysError(err)
	}
	return userError(err)
}

// ExitCode maps an error returned by the root command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return exitUserError
}

// app holds the global flag values and the state prepared before each command.
type app struct {
	configDir string
	dataDir   string
	jsonMode  bool

	config *viper.Viper
	log    *slog.Logger
}

// NewRootCmd creates the top-level "larder" command with global flags and all
// subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{log: logger.Discard()}
	root := &cobra.Command{
		Use:   "larder",
		Short: "A typed file-backed record store",
		Long: "Larder stores validated records (books, users, products, product groups\n" +
			"and systems) as files, JSONL or SQLite rows.",
		Version:           larder.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.prepare,
	}

	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "data directory (default: $(CWD)/"+paths.DefaultDataDirName+")")
	root.PersistentFlags().BoolVar(&a.jsonMode, "json", false, "output as JSON")

	root.AddCommand(
		newVersionCmd(),
		a.newInitCmd(),
		a.newSaveCmd(),
		a.newGetCmd(),
		a.newListCmd(),
		a.newDeleteCmd(),
		a.newImportCmd(),
		a.newApplyCmd(),
	)
	return root
}

// Execute runs the root command and exits with the matching code.
func Execute() {
	os.Exit(run(NewRootCmd(), os.Args[1:], os.Stderr))
}

func run(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(stderr, "larder:", err)
	}
	return ExitCode(err)
}

// prepare resolves the config directory, reads config.yaml and sets up logging.
func (a *app) prepare(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}
	configDir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	a.configDir = configDir

	v, err := loadConfig(configDir)
	if err != nil {
		return userError(err)
	}
	a.config = v

	log, err := logger.Setup(cmd.ErrOrStderr(), v.GetString(cfgKeyLogLevel), a.jsonMode)
	if err != nil {
		return userError(fmt.Errorf("config %s: %w", cfgKeyLogLevel, err))
	}
	a.log = log
	return nil
}

// storeConfig builds the store configuration from config.yaml and flags.
func (a *app) storeConfig() (types.Config, error) {
	dataDir, err := paths.ResolveDataDir(a.dataDir, a.config.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	return types.Config{
		Backend: a.config.GetString(cfgKeyBackend),
		DataDir: dataDir,
		Format:  a.config.GetString(cfgKeyFormat),
	}, nil
}

// open opens the configured larder. The caller must Close it.
func (a *app) open() (*larder.Larder, error) {
	cfg, err := a.storeConfig()
	if err != nil {
		return nil, err
	}
	l, err := larder.Open(cfg)
	if err != nil {
		if errors.Is(err, types.ErrIO) {
			return nil, sysError(err)
		}
		return nil, userError(fmt.Errorf("config: %w", err))
	}
	a.log.Debug("store opened",
		slog.String("backend", cfg.Backend),
		slog.String("data_dir", cfg.DataDir),
		slog.String("format", cfg.RecordFormat()))
	return l, nil
}
