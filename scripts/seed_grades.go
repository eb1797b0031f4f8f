// seed_grades.go: standalone script to load a steel dataset workbook into the
// steel_grades table.
//
// Usage:
//
//	go run scripts/seed_grades.go -xlsx Final_Steel_Selection_Results.xlsx -db postgres://localhost/alloy
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/MikeSquared-Agency/Alloy/internal/dataset"
	"github.com/MikeSquared-Agency/Alloy/internal/selection"
	"github.com/MikeSquared-Agency/Alloy/internal/store"
)

func main() {
	xlsxPath := flag.String("xlsx", "Final_Steel_Selection_Results.xlsx", "path to the dataset workbook")
	sheet := flag.String("sheet", "", "worksheet to read (default: first sheet)")
	databaseURL := flag.String("db", os.Getenv("ALLOY_DATABASE_URL"), "Postgres connection URL")
	density := flag.Float64("density", selection.DefaultDensity, "density in kg/m³ for every record")
	dryRun := flag.Bool("dry-run", false, "print records without writing")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	src := dataset.NewExcelSource(*xlsxPath, logger)
	src.Sheet = *sheet
	src.Density = *density

	records, err := src.Load(ctx)
	if err != nil {
		log.Fatalf("load %s: %v", *xlsxPath, err)
	}

	if *dryRun {
		for _, r := range records {
			fmt.Printf("%4d  %-20s  yield=%.1f  uts=%.1f\n", r.ID, r.Grade, r.YieldStrength, r.UTS)
		}
		fmt.Printf("%d records\n", len(records))
		return
	}

	if *databaseURL == "" {
		log.Fatal("-db or ALLOY_DATABASE_URL required")
	}
	db, err := store.NewPostgresStore(ctx, *databaseURL, *density)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}
	n, err := seed(ctx, db, records)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	fmt.Printf("seeded %d steel grades from %s\n", n, *xlsxPath)
}

func seed(ctx context.Context, db store.GradeStore, records []selection.Record) (int, error) {
	if err := db.ReplaceGrades(ctx, records); err != nil {
		return 0, err
	}
	return db.CountGrades(ctx)
}
