package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	gojson "github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/siegeai/schemasnap/apispec"
	"github.com/siegeai/schemasnap/infer"
	"github.com/siegeai/schemasnap/snapshot"
)

func main() {
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("SCHEMASNAP")
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "schemasnap",
		Short:         "Infer and maintain JSON schemas from sample payloads",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("log", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-file", "", "log to this file with rotation instead of stderr")
	_ = v.BindPFlag("log", root.PersistentFlags().Lookup("log"))
	_ = v.BindPFlag("log_file", root.PersistentFlags().Lookup("log-file"))

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return setupLogging(v.GetString("log"), v.GetString("log_file"))
	}

	root.AddCommand(inferCmd(), checkCmd(), exportCmd())
	return root
}

func setupLogging(level, file string) error {
	var logLevel slog.Level
	err := logLevel.UnmarshalText([]byte(level))

	var out io.Writer = os.Stderr
	if file != "" {
		out = &lumberjack.Logger{Filename: file, MaxSize: 50, MaxBackups: 3}
	}
	h := slog.NewTextHandler(out, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(h))
	return err
}

func parseFormatMode(s string) (infer.FormatMode, error) {
	switch m := infer.FormatMode(s); m {
	case infer.FormatOn, infer.FormatOff, infer.FormatSafe:
		return m, nil
	}
	return "", fmt.Errorf("unknown format mode %q, want on, off or safe", s)
}

func inferCmd() *cobra.Command {
	var formatMode string
	var schemaFile string

	cmd := &cobra.Command{
		Use:   "infer [samples...]",
		Short: "Build a schema from JSON sample files and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := parseFormatMode(formatMode)
			if err != nil {
				return err
			}

			b := infer.NewBuilder(infer.WithFormatMode(mode))

			if schemaFile != "" {
				stored, err := readSchema(schemaFile)
				if err != nil {
					return err
				}
				b.AddSchema(stored)
			}

			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				if err := b.AddBytes(data); err != nil {
					return err
				}
			}
			for _, name := range args {
				data, err := os.ReadFile(name)
				if err != nil {
					return fmt.Errorf("read sample %s: %w", name, err)
				}
				if err := b.AddBytes(data); err != nil {
					return fmt.Errorf("sample %s: %w", name, err)
				}
				slog.Debug("added sample", "file", name)
			}

			return printJSON(cmd.OutOrStdout(), b.Schema())
		},
	}

	cmd.Flags().StringVar(&formatMode, "format-mode", string(infer.FormatOn), "format emission mode (on, off, safe)")
	cmd.Flags().StringVar(&schemaFile, "schema", "", "merge an existing schema file into the result")
	return cmd
}

func checkCmd() *cobra.Command {
	var dir string
	var update bool
	var sweep bool
	var formatMode string

	cmd := &cobra.Command{
		Use:   "check <name> [samples...]",
		Short: "Reconcile stored schemas with fresh samples",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := parseFormatMode(formatMode)
			if err != nil {
				return err
			}

			store := snapshot.NewStore(dir)
			runner := snapshot.NewRunner(store,
				snapshot.WithUpdate(update),
				snapshot.WithFormatMode(mode))

			samples := make([][]byte, 0, len(args)-1)
			for _, name := range args[1:] {
				data, err := os.ReadFile(name)
				if err != nil {
					return fmt.Errorf("read sample %s: %w", name, err)
				}
				samples = append(samples, data)
			}

			if _, err := runner.CheckBytes(args[0], samples...); err != nil {
				return err
			}
			if sweep {
				if err := runner.Finish(); err != nil {
					return err
				}
			}

			stats := runner.Stats()
			if stats.HasAnyInfo() {
				fmt.Fprintln(cmd.OutOrStdout(), stats)
			}
			if len(stats.Uncommitted) > 0 {
				return fmt.Errorf("%d schema(s) changed, run with --update to commit", len(stats.Uncommitted))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".schemas", "directory holding stored schemas")
	cmd.Flags().BoolVar(&update, "update", false, "rewrite changed schemas and delete unused ones")
	cmd.Flags().BoolVar(&sweep, "sweep", false, "report or delete stored schemas not touched by this run")
	cmd.Flags().StringVar(&formatMode, "format-mode", string(infer.FormatOn), "format emission mode (on, off, safe)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <schema.json>",
		Short: "Convert a stored schema to an OpenAPI schema object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readSchema(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), apispec.FromSchema(doc))
		},
	}
	return cmd
}

func readSchema(name string) (map[string]any, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", name, err)
	}
	var doc map[string]any
	if err := gojson.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode schema %s: %w", name, err)
	}
	return doc, nil
}

func printJSON(w io.Writer, v any) error {
	data, err := gojson.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
