package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Alloy/internal/config"
	"github.com/MikeSquared-Agency/Alloy/internal/dataset"
	"github.com/MikeSquared-Agency/Alloy/internal/selection"
)

type rootOptions struct {
	configPath  string
	datasetPath string
	sheet       string
	density     float64
	verbose     bool

	// filled from --config, or the built-in defaults
	bounds      selection.Bounds
	yieldColumn string
	utsColumn   string
	gradeColumn string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "alloyctl",
		Short:         "Rank steel grades against design requirements",
		Long:          "alloyctl loads a steel dataset workbook, admits the grades that satisfy a yield, UTS and factor-of-safety requirement, and ranks them by strength-to-density.",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.applyConfig(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Service config file; supplies selection bounds and dataset settings not given as flags")
	cmd.PersistentFlags().StringVar(&opts.datasetPath, "dataset", "Final_Steel_Selection_Results.xlsx", "Path to the dataset workbook")
	cmd.PersistentFlags().StringVar(&opts.sheet, "sheet", "", "Worksheet to read (default: first sheet)")
	cmd.PersistentFlags().Float64Var(&opts.density, "density", selection.DefaultDensity, "Density in kg/m³ applied to every record")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log dataset warnings to stderr")

	cmd.AddCommand(newEvaluateCmd(opts))
	cmd.AddCommand(newLimitsCmd(opts))
	cmd.AddCommand(newShowCmd(opts))
	return cmd
}

// applyConfig resolves bounds and dataset settings. Explicit flags win over
// the config file.
func (o *rootOptions) applyConfig(cmd *cobra.Command) error {
	o.bounds = selection.DefaultBounds()
	src := dataset.NewExcelSource("", nil)
	o.yieldColumn, o.utsColumn, o.gradeColumn = src.YieldColumn, src.UTSColumn, src.GradeColumn
	if o.configPath == "" {
		return nil
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	o.bounds = cfg.Selection
	o.yieldColumn, o.utsColumn, o.gradeColumn = cfg.Dataset.YieldColumn, cfg.Dataset.UTSColumn, cfg.Dataset.GradeColumn

	flags := cmd.Flags()
	if !flags.Changed("dataset") {
		o.datasetPath = cfg.Dataset.Path
	}
	if !flags.Changed("sheet") {
		o.sheet = cfg.Dataset.Sheet
	}
	if !flags.Changed("density") {
		o.density = cfg.Dataset.Density
	}
	return nil
}

func (o *rootOptions) logger() *slog.Logger {
	if !o.verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func (o *rootOptions) loadCatalog(ctx context.Context) (*dataset.Catalog, error) {
	src := dataset.NewExcelSource(o.datasetPath, o.logger())
	src.Sheet = o.sheet
	src.Density = o.density
	src.YieldColumn, src.UTSColumn, src.GradeColumn = o.yieldColumn, o.utsColumn, o.gradeColumn

	reg := dataset.NewRegistry(src, o.datasetPath, src.Logger)
	if err := reg.Reload(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", o.datasetPath, err)
	}
	return reg.Current(), nil
}

// requirementFlags binds the three design inputs. Unset flags fall back to
// the dataset's default requirement.
type requirementFlags struct {
	yield, uts, fos float64
	clamp           bool
}

func (f *requirementFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.yield, "yield", 0, "Required yield strength in MPa (default: dataset minimum)")
	cmd.Flags().Float64Var(&f.uts, "uts", 0, "Minimum UTS in MPa (default: dataset minimum)")
	cmd.Flags().Float64Var(&f.fos, "fos", 0, "Factor of safety (default: the configured default, 1.7)")
	cmd.Flags().BoolVar(&f.clamp, "clamp", false, "Clamp inputs to the dataset range and factor-of-safety bounds")
}

func (f *requirementFlags) resolve(cmd *cobra.Command, cat *dataset.Catalog, bounds selection.Bounds) selection.Requirement {
	req := bounds.DefaultRequirement(cat.Limits)
	if cmd.Flags().Changed("yield") {
		req.RequiredYield = f.yield
	}
	if cmd.Flags().Changed("uts") {
		req.RequiredUTS = f.uts
	}
	if cmd.Flags().Changed("fos") {
		req.FactorOfSafety = f.fos
	}
	if f.clamp {
		req = bounds.Clamp(req, cat.Limits)
	}
	return req
}
