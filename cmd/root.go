// Package cmd provides the CLI commands for keyline.
//
// Copyright (c) Manav Panchal
//
// Licensed under the SEGV License, Version 1.0
// See LICENSE file for full license text.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/keyline/internal/config"
	"github.com/manav03panchal/keyline/internal/errors"
	"github.com/manav03panchal/keyline/internal/logging"
	"github.com/manav03panchal/keyline/internal/output"
	"github.com/manav03panchal/keyline/internal/runtime"
)

// Version information (set at build time via ldflags).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Global flags.
var (
	flagFormat string
	flagColor  string
	flagDebug  bool
	flagDB     string
	flagConfig string
)

// ctx is the shared runtime context.
var ctx *runtime.Context

// logFile is the open log sink when log.file is configured.
var logFile *os.File

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "keyline",
	Short: "An undo-aware animation clip editor",
	Long: `keyline edits animation clips from the command line: bone and property
curves, frame arrays and events, with a full undo history per session.

Examples:
  keyline new walk --fps 24 --bone hips
  keyline edit walk -s steps.kl
  keyline show walk --scope bone:hips
  keyline play walk --loop
  keyline bake walk -o .`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Completion and help need no store; __complete still does.
		switch cmd.Name() {
		case "completion", "help", "version":
			return nil
		}

		format, ok := output.ParseFormat(flagFormat)
		if !ok {
			return errors.NewUserErrorWithField("format", flagFormat, "unknown output format", "Use cli, json or plain.")
		}
		colorMode, ok := output.ParseColorMode(flagColor)
		if !ok {
			return errors.NewUserErrorWithField("color", flagColor, "unknown color mode", "Use auto, always or never.")
		}

		opts := runtime.DefaultOptions()
		opts.DBPath = flagDB
		opts.ConfigPath = flagConfig
		opts.Format = format
		opts.ColorMode = colorMode
		opts.Debug = flagDebug

		var err error
		ctx, err = runtime.New(opts)
		if err != nil {
			return err
		}
		return initLogging(ctx.Config.Log)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logFile != nil {
			_ = logFile.Close()
			logFile = nil
		}
		if ctx != nil {
			return ctx.Close()
		}
		return nil
	},
	RunE: runStatus,
}

// initLogging points the logger at the configured file, or at stderr.
// --debug raises the level to DEBUG either way.
func initLogging(cfg config.LogConfig) error {
	if cfg.File == "" {
		if flagDebug {
			logging.InitDebug()
			return nil
		}
		logging.Init(logging.Config{Level: logging.ParseLevel(cfg.Level), JSON: cfg.JSON, Output: os.Stderr})
		return nil
	}

	f, err := logging.OpenFile(logging.ResolveLogPath(cfg.File), cfg.MaxSize)
	if err != nil {
		return errors.NewSystemErrorWithOp("open log", "cannot open log file", err)
	}
	logFile = f
	lc := logging.Config{Level: logging.ParseLevel(cfg.Level), JSON: cfg.JSON, Output: f}
	if flagDebug {
		lc.Level = slog.LevelDebug
		lc.AddSource = true
	}
	logging.Init(lc)
	return nil
}

// runStatus shows the active clip.
func runStatus(cmd *cobra.Command, args []string) error {
	doc, err := ctx.Active.GetActiveClip(ctx.Clips)
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		if doc == nil {
			return ctx.Formatter.JSON(struct {
				Active any `json:"active"`
			}{})
		}
		return ctx.JSONFormatter().PrintClip(doc, true)
	}

	cli := ctx.CLIFormatter()
	if doc == nil {
		cli.Muted("No active clip. Create one with 'keyline new NAME' or pick one with 'keyline use NAME'.")
		return nil
	}
	cli.PrintClip(doc, true)
	return nil
}

// Execute runs the root command. Errors are reported through the runtime
// context when one exists; the caller maps the returned error to an exit
// status with runtime.ExitCode.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		report(err)
	}
	return err
}

func report(err error) {
	if ctx != nil {
		ctx.ReportError(err)
		return
	}
	rootCmd.PrintErrln("Error: " + errors.FormatUserError(err))
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "f", "cli",
		"Output format: cli, json, plain")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto",
		"Color output: auto, always, never")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false,
		"Enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "",
		"Clip store directory (KEYLINE_DATABASE overrides)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "",
		"Config file (default $XDG_CONFIG_HOME/keyline/config.yaml)")

	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("keyline %s\n", Version)
		cmd.Printf("  commit: %s\n", Commit)
		cmd.Printf("  built: %s\n", BuildTime)
	},
}
