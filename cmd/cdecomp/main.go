// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"golang.org/x/term"

	"cdecomp/grammar"
	"cdecomp/internal/config"
	"cdecomp/internal/errors"
	"cdecomp/internal/export"
	"cdecomp/internal/ir"
	"cdecomp/internal/passes"
	"cdecomp/internal/program"
)

var version = "0.1.0"

// errReported marks failures whose diagnostics were already printed
var errReported = fmt.Errorf("decompilation failed")

var rootCmd = &cobra.Command{
	Use:           "cdecomp <file.ll>",
	Short:         "Decompiles LLVM IR into C-like code",
	Long:          `cdecomp reads the textual LLVM IR clang emits for C and prints the program it describes`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func main() {
	rootCmd.Version = version

	rootCmd.Flags().String("config", "", "configuration file (default: "+config.FileName+" next to the input)")
	rootCmd.Flags().CountP("verbose", "v", "increase log verbosity")
	rootCmd.Flags().String("export", "", "write a MessagePack snapshot of the result")
	rootCmd.Flags().Bool("no-fix-main", false, "keep main's signature as the IR spells it")
	rootCmd.Flags().String("color", "", "colorize output (auto|on|off)")

	if err := rootCmd.Execute(); err != nil {
		if err != errReported {
			fmt.Fprintf(os.Stderr, "%s: %v\n", color.RedString("error"), err)
		}
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	startTime := time.Now()
	path := args[0]

	cfg, err := loadConfig(cmd, path)
	if err != nil {
		return err
	}
	setupColor(cfg.Output.Color)
	commonlog.Configure(cfg.Log.Verbosity, logPath(cfg))

	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	reporter := errors.NewErrorReporter(path, string(source))

	m, err := grammar.ParseString(path, string(source))
	if err != nil {
		return report(reporter, err, startTime)
	}

	p := program.New()
	if err := runPipeline(cfg.PipelineOptions(), m, p, reporter); err != nil {
		return report(reporter, err, startTime)
	}

	fmt.Print(render(p))

	if cfg.Output.Export != "" {
		if err := export.Write(cfg.Output.Export, export.Build(path, p)); err != nil {
			return fmt.Errorf("failed to export %s: %w", cfg.Output.Export, err)
		}
	}

	color.Green("Successfully decompiled %s in %s", path, formatDuration(time.Since(startTime)))
	return nil
}

// loadConfig reads the configuration and applies the command-line overrides
func loadConfig(cmd *cobra.Command, input string) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = filepath.Join(filepath.Dir(input), config.FileName)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	verbose, _ := cmd.Flags().GetCount("verbose")
	cfg.Log.Verbosity += verbose

	if cmd.Flags().Changed("export") {
		cfg.Output.Export, _ = cmd.Flags().GetString("export")
	}
	if cmd.Flags().Changed("color") {
		cfg.Output.Color, _ = cmd.Flags().GetString("color")
	}
	if noFix, _ := cmd.Flags().GetBool("no-fix-main"); noFix {
		cfg.Passes.Skip = append(cfg.Passes.Skip, program.FixMainParameters.String())
	}

	return cfg, cfg.Validate()
}

func logPath(cfg config.Config) *string {
	if cfg.Log.Path == "" {
		return nil
	}
	return &cfg.Log.Path
}

func setupColor(mode string) {
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		color.NoColor = !term.IsTerminal(int(os.Stdout.Fd()))
	}
}

// runPipeline turns invariant violations into a reported failure
func runPipeline(opts passes.Options, m *ir.Module, p *program.Program, reporter *errors.ErrorReporter) (err error) {
	defer func() {
		if r := recover(); r != nil {
			v, ok := r.(*errors.InvariantViolation)
			if !ok {
				panic(r)
			}
			fmt.Fprint(os.Stderr, reporter.FormatViolation(v))
			err = v
		}
	}()
	return passes.NewPipeline(opts).Run(m, p)
}

func report(reporter *errors.ErrorReporter, err error, startTime time.Time) error {
	if te, ok := errors.AsTranslationError(err); ok {
		fmt.Fprint(os.Stderr, reporter.FormatError(te))
	} else if _, ok := err.(*errors.InvariantViolation); !ok {
		fmt.Fprintf(os.Stderr, "%s: %v\n", color.RedString("error"), err)
	}
	color.Red("Decompilation failed after %s", formatDuration(time.Since(startTime)))
	return errReported
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return fmt.Sprintf("%.2fmin", d.Minutes())
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
