package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"valed/internal/config"
	"valed/internal/diag"
	"valed/internal/lint"
	"valed/internal/observ"
	"valed/internal/vale"
)

var lintCmd = &cobra.Command{
	Use:   "lint [flags] [root ...]",
	Short: "Lint every prose document under one or more project roots",
	Long:  `Run vale over all recognized prose documents beneath the given roots (default: the current directory) and print a report`,
	Args:  cobra.ArbitraryArgs,
	RunE:  runLint,
}

func init() {
	lintCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	lintCmd.Flags().Int("jobs", 0, "max parallel vale invocations (0=auto)")
	lintCmd.Flags().Bool("no-cache", false, "disable the per-root result cache")
	lintCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	lintCmd.Flags().String("vale", "", "path to the vale binary (overrides valed.toml)")
}

func runLint(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}
	valeBin, err := cmd.Flags().GetString("vale")
	if err != nil {
		return fmt.Errorf("failed to get vale flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	if err := applyColorMode(colorFlag); err != nil {
		return err
	}

	roots, err := resolveRoots(args)
	if err != nil {
		return err
	}

	cfg, err := config.LoadDir(roots[0])
	if err != nil {
		return err
	}
	if valeBin != "" {
		cfg.ValePath = valeBin
	}

	ws, err := buildWorkspace(cfg, quiet)
	if err != nil {
		return err
	}
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	ws.Jobs = jobs
	if !noCache {
		if cache, cacheErr := lint.OpenCache("valed"); cacheErr != nil {
			fmt.Fprintf(os.Stderr, "warning: result cache disabled: %v\n", cacheErr)
		} else {
			ws.Cache = cache
		}
	}
	var timer *observ.Timer
	if showTimings {
		timer = observ.NewTimer()
		ws.Timer = timer
	}

	summary, err := runBatch(cmd.Context(), roots, ws, mode, format, quiet)
	if err != nil {
		cmd.SilenceUsage = true
		return fmt.Errorf("%s", lint.UserMessage(err))
	}

	switch format {
	case "json":
		if err := renderReportJSON(cmd.OutOrStdout(), summary); err != nil {
			return err
		}
	default:
		renderReport(cmd.OutOrStdout(), summary, quiet)
	}
	if timer != nil {
		fmt.Fprint(os.Stderr, timer.Summary())
	}

	if summary.Errors > 0 {
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("") // Silent error - findings already printed
	}
	return nil
}

func resolveRoots(args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}
	roots := make([]string, 0, len(args))
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %q: %w", arg, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %q: %w", arg, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%q is not a directory", arg)
		}
		roots = append(roots, abs)
	}
	return roots, nil
}

func buildWorkspace(cfg config.Config, quiet bool) (*lint.Workspace, error) {
	minimum := cfg.MinValeVersion
	if minimum == "" {
		minimum = vale.MinVersion
	}
	var logf func(format string, args ...any)
	if !quiet {
		logf = func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}
	}
	runnerFor := func(root string) *vale.Runner {
		return &vale.Runner{Bin: cfg.ResolveValePath(root), Logf: logf}
	}
	gate := vale.NewGate(func(ctx context.Context, dir string, cmdArgs ...string) ([]byte, error) {
		return runnerFor(dir).Run(ctx, dir, cmdArgs...)
	}, minimum)
	return &lint.Workspace{
		Lint: func(ctx context.Context, dir string, paths ...string) (vale.Result, error) {
			return runnerFor(dir).Lint(ctx, dir, paths...)
		},
		Check:      gate.Check,
		Store:      diag.NewMemStore(),
		Extensions: cfg.ExtensionList(),
		Exclude:    cfg.Exclude,
		Logf:       logf,
	}, nil
}

func runBatch(ctx context.Context, roots []string, ws *lint.Workspace, mode uiMode, format string, quiet bool) (*lint.Summary, error) {
	if format == "pretty" && !quiet && shouldUseTUI(mode) {
		return runBatchWithUI(ctx, "valed lint", roots, ws)
	}
	if format == "pretty" && !quiet {
		ws.Progress = lint.ProgressFunc(func(ev lint.Event) {
			if ev.Root != "" && ev.Stage == lint.StageLint && ev.Status == lint.StatusWorking {
				fmt.Fprintf(os.Stderr, "linting %s (%d files)\n", ev.Root, ev.Files)
			}
		})
	}
	return ws.Run(ctx, roots)
}
