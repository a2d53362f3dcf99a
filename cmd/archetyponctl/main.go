package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"archetypon/internal/fitness"
	"archetypon/internal/report"
	"archetypon/pkg/archetypon"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "optimize":
		return runOptimize(ctx, args[1:])
	case "report":
		return runReport(ctx, args[1:])
	case "concepts":
		return runConcepts(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(message string) error {
	return fmt.Errorf("%s\nusage: archetyponctl <optimize|report|concepts|runs> [flags]", message)
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()
}

func newClient(ctx context.Context, profile Profile, logger zerolog.Logger, reportsDir string) (*archetypon.Client, error) {
	return archetypon.New(ctx, archetypon.Options{
		StoreKind:  profile.Store.Kind,
		DBPath:     profile.Store.Path,
		ReportsDir: reportsDir,
		Logger:     logger,
	})
}

// runOptimize loads a concept directory, runs the genetic prototype search
// for every concept (structural fitness; embedding fitness requires wiring a
// model through the library API) and writes the updated directory back.
func runOptimize(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("optimize", flag.ContinueOnError)
	conceptsDir := flags.String("concepts", "", "path to the concept directory")
	outDir := flags.String("out", "", "output directory (defaults to -concepts)")
	profilePath := flags.String("profile", "", "YAML run profile")
	verbose := flags.Bool("v", false, "debug logging")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *conceptsDir == "" {
		return usageError("optimize requires -concepts")
	}
	if *outDir == "" {
		*outDir = *conceptsDir
	}

	profile, err := loadProfile(*profilePath)
	if err != nil {
		return err
	}
	logger := newLogger(*verbose)
	client, err := newClient(ctx, profile, logger, "")
	if err != nil {
		return err
	}
	defer client.Close()

	conceptList, err := client.ImportConcepts(ctx, *conceptsDir, profile.Optimize.SortSimilarity)
	if err != nil {
		return err
	}

	started := time.Now()
	updated, err := client.GeneratePrototypes(ctx, conceptList, archetypon.GenerateRequest{
		InitialStrategy:       archetypon.InitialStrategy(profile.Optimize.InitialStrategy),
		InitialPopulationSize: profile.Optimize.InitialPopulationSize,
		ViolationRadius:       profile.Optimize.ViolationRadius,
		Metric:                fitness.Metric(profile.Optimize.Metric),
		NodeCost:              profile.Optimize.NodeCost,
		PopulationSize:        profile.Optimize.PopulationSize,
		Epochs:                profile.Optimize.Epochs,
		EliteCount:            profile.Optimize.EliteCount,
		RefreshFraction:       profile.Optimize.RefreshFraction,
		TournamentSize:        profile.Optimize.TournamentSize,
		Workers:               profile.Optimize.Workers,
		Seed:                  profile.Optimize.Seed,
	})
	if err != nil {
		return err
	}
	if err := client.ExportConcepts(updated, *outDir); err != nil {
		return err
	}

	logger.Info().
		Int("concepts", len(updated)).
		Str("elapsed", humanize.RelTime(started, time.Now(), "", "")).
		Str("out", *outDir).
		Msg("prototypes generated")
	return nil
}

func runReport(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("report", flag.ContinueOnError)
	conceptsDir := flags.String("concepts", "", "path to the concept directory")
	outDir := flags.String("out", "reports", "report output directory")
	profilePath := flags.String("profile", "", "YAML run profile")
	verbose := flags.Bool("v", false, "debug logging")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *conceptsDir == "" {
		return usageError("report requires -concepts")
	}

	profile, err := loadProfile(*profilePath)
	if err != nil {
		return err
	}
	logger := newLogger(*verbose)
	client, err := newClient(ctx, profile, logger, *outDir)
	if err != nil {
		return err
	}
	defer client.Close()

	conceptList, err := client.ImportConcepts(ctx, *conceptsDir, false)
	if err != nil {
		return err
	}
	dir, err := client.WriteReport(conceptList, report.Options{
		Title:       profile.Report.Title,
		MaxExamples: profile.Report.MaxExamples,
		Metric:      fitness.Metric(profile.Report.Metric),
	})
	if err != nil {
		return err
	}
	fmt.Println(dir)
	return nil
}

func runConcepts(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("concepts", flag.ContinueOnError)
	profilePath := flags.String("profile", "", "YAML run profile")
	if err := flags.Parse(args); err != nil {
		return err
	}

	profile, err := loadProfile(*profilePath)
	if err != nil {
		return err
	}
	client, err := newClient(ctx, profile, zerolog.Nop(), "")
	if err != nil {
		return err
	}
	defer client.Close()

	conceptList, err := client.Concepts(ctx)
	if err != nil {
		return err
	}
	for _, concept := range conceptList {
		fmt.Printf("concept=%d channel=%d members=%s prototypes=%d contribution=%.3f\n",
			concept.Index,
			concept.ChannelIndex,
			humanize.Comma(int64(len(concept.Members))),
			len(concept.Prototypes),
			concept.Contribution,
		)
	}
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("runs", flag.ContinueOnError)
	profilePath := flags.String("profile", "", "YAML run profile")
	limit := flags.Int("limit", 0, "maximum rows to print, 0 for all")
	if err := flags.Parse(args); err != nil {
		return err
	}

	profile, err := loadProfile(*profilePath)
	if err != nil {
		return err
	}
	client, err := newClient(ctx, profile, zerolog.Nop(), "")
	if err != nil {
		return err
	}
	defer client.Close()

	records, err := client.Runs(ctx)
	if err != nil {
		return err
	}
	if *limit > 0 && len(records) > *limit {
		records = records[len(records)-*limit:]
	}
	for _, record := range records {
		fmt.Printf("run=%s concept=%d best=%.4f evaluations=%s duration=%s\n",
			record.RunID,
			record.ConceptIndex,
			record.BestFitness,
			humanize.Comma(int64(record.Evaluations)),
			(time.Duration(record.DurationMS) * time.Millisecond).String(),
		)
	}
	return nil
}
