package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Alloy/internal/report"
	"github.com/MikeSquared-Agency/Alloy/internal/selection"
)

func newEvaluateCmd(root *rootOptions) *cobra.Command {
	var (
		reqFlags requirementFlags
		showAll  bool
		xlsxPath string
		pdfPath  string
		project  string
		author   string
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Admit and rank the grades that satisfy a requirement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := root.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			res, err := cat.Evaluate(reqFlags.resolve(cmd, cat, root.bounds))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printRequirement(out, res)
			if res.Empty() {
				fmt.Fprintln(out, report.NoMatchesMessage)
			} else {
				printRanked(out, res.Admitted)
			}
			if showAll {
				fmt.Fprintln(out)
				printAll(out, res.All)
			}

			if xlsxPath != "" {
				if err := writeFile(xlsxPath, func(w io.Writer) error { return report.WriteXLSX(w, res) }); err != nil {
					return err
				}
				fmt.Fprintf(out, "wrote %s\n", xlsxPath)
			}
			if pdfPath != "" {
				meta := report.Meta{Project: project, Author: author}
				if err := writeFile(pdfPath, func(w io.Writer) error { return report.WritePDF(w, res, meta) }); err != nil {
					return err
				}
				fmt.Fprintf(out, "wrote %s\n", pdfPath)
			}
			return nil
		},
	}

	reqFlags.register(cmd)
	cmd.Flags().BoolVar(&showAll, "all", false, "Also list every record with its admission flags")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Write the result workbook to this path")
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "Write a PDF report to this path")
	cmd.Flags().StringVar(&project, "project", "", "Project name for the PDF report")
	cmd.Flags().StringVar(&author, "author", "", "Author for the PDF report")
	return cmd
}

func newLimitsCmd(root *rootOptions) *cobra.Command {
	var fos float64

	cmd := &cobra.Command{
		Use:   "limits",
		Short: "Print the dataset's strength ranges and the allowable stress range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := root.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("fos") {
				fos = root.bounds.DefaultFactorOfSafety
			}
			min, max, err := cat.Limits.AllowableRange(fos)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Records:\t%d\n", cat.Len())
			fmt.Fprintf(tw, "Yield strength (MPa):\t%s .. %s\n", report.FormatFloat(cat.Limits.MinYield, 1), report.FormatFloat(cat.Limits.MaxYield, 1))
			fmt.Fprintf(tw, "UTS (MPa):\t%s .. %s\n", report.FormatFloat(cat.Limits.MinUTS, 1), report.FormatFloat(cat.Limits.MaxUTS, 1))
			fmt.Fprintf(tw, "Allowable stress at FoS %s (MPa):\t%s .. %s\n", report.FormatFloat(fos, 2), report.FormatFloat(min, 2), report.FormatFloat(max, 2))
			return tw.Flush()
		},
	}

	cmd.Flags().Float64Var(&fos, "fos", 0, "Factor of safety (default: the configured default, 1.7)")
	return cmd
}

func newShowCmd(root *rootOptions) *cobra.Command {
	var (
		reqFlags requirementFlags
		id       int
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show one grade's admission flags and indices by id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := root.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			res, err := cat.Evaluate(reqFlags.resolve(cmd, cat, root.bounds))
			if err != nil {
				return err
			}
			rec, ok := res.Find(id)
			if !ok {
				return fmt.Errorf("grade %d not found", id)
			}
			return printRecord(cmd.OutOrStdout(), rec)
		},
	}

	reqFlags.register(cmd)
	cmd.Flags().IntVar(&id, "id", 0, "Record id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func printRequirement(w io.Writer, res selection.RankedResult) {
	req := res.Requirement
	fmt.Fprintf(w, "Required yield %s MPa, UTS %s MPa, FoS %s -> allowable stress %s MPa\n",
		report.FormatFloat(req.RequiredYield, 1),
		report.FormatFloat(req.RequiredUTS, 1),
		report.FormatFloat(req.FactorOfSafety, 2),
		report.FormatFloat(res.AllowableStress, 2))
	fmt.Fprintf(w, "Admitted %d of %d\n\n", len(res.Admitted), len(res.All))
}

func printRanked(w io.Writer, admitted []selection.EnrichedRecord) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tID\tGRADE\tYIELD\tUTS\tSTRENGTH/DENSITY\tSAFETY\tYIELD/UTS")
	for i, e := range admitted {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1, e.ID, e.Grade,
			report.FormatFloat(e.YieldStrength, 1),
			report.FormatFloat(e.UTS, 1),
			report.FormatFloat(e.AshbyIndex, 5),
			report.FormatFloat(e.SafetyIndex, 3),
			report.FormatFloat(e.YieldToUTSRatio, 3))
	}
	tw.Flush()
}

func printAll(w io.Writer, all []selection.EnrichedRecord) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tGRADE\tYIELD\tUTS\tSTRENGTH\tUTS_OK\tSAFETY\tADMITTED")
	for _, e := range all {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\t%t\t%t\t%t\n",
			e.ID, e.Grade,
			report.FormatFloat(e.YieldStrength, 1),
			report.FormatFloat(e.UTS, 1),
			e.StrengthOK, e.UTSOK, e.SafetyOK, e.Admitted)
	}
	tw.Flush()
}

func printRecord(w io.Writer, e selection.EnrichedRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", e.ID)
	fmt.Fprintf(tw, "Grade:\t%s\n", e.Grade)
	fmt.Fprintf(tw, "Yield strength (MPa):\t%s\n", report.FormatFloat(e.YieldStrength, 1))
	fmt.Fprintf(tw, "UTS (MPa):\t%s\n", report.FormatFloat(e.UTS, 1))
	fmt.Fprintf(tw, "Density (kg/m³):\t%s\n", report.FormatFloat(e.Density, 0))
	fmt.Fprintf(tw, "Strength OK:\t%t\n", e.StrengthOK)
	fmt.Fprintf(tw, "UTS OK:\t%t\n", e.UTSOK)
	fmt.Fprintf(tw, "Safety OK:\t%t\n", e.SafetyOK)
	fmt.Fprintf(tw, "Admitted:\t%t\n", e.Admitted)
	fmt.Fprintf(tw, "Strength/density:\t%s\n", report.FormatFloat(e.AshbyIndex, 5))
	fmt.Fprintf(tw, "Safety index:\t%s\n", report.FormatFloat(e.SafetyIndex, 3))
	fmt.Fprintf(tw, "Yield/UTS:\t%s\n", report.FormatFloat(e.YieldToUTSRatio, 3))
	return tw.Flush()
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
