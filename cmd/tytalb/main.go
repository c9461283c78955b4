// Command tytalb scores automatic annotations of audio recordings against a
// manually annotated ground truth.
//
// Usage:
//
//	tytalb [flags] <command> [args]
//
// Commands:
//
//	validate - compare two annotation directories and write confusion matrices and metrics
//	sweep    - validate at several confidence thresholds and rank them
//	relabel  - rewrite the labels of annotation tables through a labels.json file
//	formats  - list the supported table formats
//
// Every flag may also be given in a YAML file passed with --config; flags
// set on the command line win.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Vogelwarte/tytalb/internal/config"
	"github.com/Vogelwarte/tytalb/internal/logging"
)

// Set by the build through -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// app carries the state shared by all commands of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	logFlags   config.Log

	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "tytalb",
		Short:         "Validate bioacoustic annotations against a ground truth",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.closer != nil {
				return a.closer.Close()
			}
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML configuration file")
	pf.StringVar(&a.logFlags.Level, "log-level", "info", "Log level: debug, info, warn or error")
	pf.StringVar(&a.logFlags.Format, "log-format", "text", "Log format: text or json")
	pf.StringVar(&a.logFlags.File, "log-file", "", "Also write logs to this file, rotated by size")

	root.AddCommand(
		newValidateCmd(a),
		newSweepCmd(a),
		newRelabelCmd(a),
		newFormatsCmd(a),
	)
	return root
}

// setup loads the configuration file, applies the logging flags and builds
// the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logFlags.Level
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = a.logFlags.Format
	}
	if flags.Changed("log-file") {
		cfg.Log.File = a.logFlags.File
	}

	logger, closer, err := logging.New(logging.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	}, a.stderr)
	if err != nil {
		return err
	}
	a.cfg, a.logger, a.closer = cfg, logger, closer
	return nil
}
