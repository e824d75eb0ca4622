package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configuration file and data directory",
		Long: "Init writes a default config.yaml into the config directory unless one\n" +
			"exists, then opens the configured backend once so that its data\n" +
			"directory (and database, for sqlite) is created.",
		Args: cobra.NoArgs,
		RunE: a.runInit,
	}
}

func (a *app) runInit(cmd *cobra.Command, _ []string) error {
	written, err := writeDefaultConfig(a.configDir)
	if err != nil {
		return sysError(err)
	}
	if written {
		// Pick up the file just written.
		v, err := loadConfig(a.configDir)
		if err != nil {
			return sysError(err)
		}
		a.config = v
	}

	l, err := a.open()
	if err != nil {
		return err
	}
	cfg := l.Config()
	if err := l.Close(); err != nil {
		return sysError(fmt.Errorf("close store: %w", err))
	}

	return a.print(cmd, map[string]any{
		"config_dir": a.configDir,
		"data_dir":   cfg.DataDir,
		"backend":    cfg.Backend,
		"format":     cfg.RecordFormat(),
	})
}
