package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Beelzebub2/mod-side-checker/internal/checker"
	"github.com/Beelzebub2/mod-side-checker/internal/config"
	"github.com/Beelzebub2/mod-side-checker/internal/export"
	"github.com/Beelzebub2/mod-side-checker/internal/logging"
	"github.com/Beelzebub2/mod-side-checker/internal/manifest"
	"github.com/Beelzebub2/mod-side-checker/internal/registry"
	"github.com/Beelzebub2/mod-side-checker/internal/state"
	"github.com/Beelzebub2/mod-side-checker/internal/upload"
)

var (
	checkManifest string
	checkOutput   string
	checkFormat   string
	checkSide     string
	checkWorkers  int
	checkDelay    float64
	checkTimeout  int
	checkLogLevel string
	checkConfig   string
	checkInputDir string
	checkKeepTemp bool
	checkUpload   bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Classify the mods of a modpack by required side",
	Long: `Classify every mod in a Modrinth modpack manifest by the side it is required
on, using concurrent registry lookups. Interrupting the run keeps the partial
results.

The manifest source may be a modrinth.index.json file, an .mrpack archive, or
a directory holding either. When no source is given the configured input
folder is searched.

Examples:
  # Classify a modpack archive into a CSV
  modchecker check -m pack.mrpack -o results.csv

  # Classify with more workers and JSON output
  modchecker check -m pack.mrpack -o results.json --format json --workers 6

  # Classify a bare manifest with a gentler request pace
  modchecker check -m modrinth.index.json -o results.csv --delay 1.5

  # Write only the server-side mods
  modchecker check -m pack.mrpack -o server.csv --side server

  # Search the configured input folder
  modchecker check -o results.csv`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, created, err := config.Load(checkConfig)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if created {
		fmt.Printf("Created default configuration at %s\n", checkConfig)
	}

	// Flags take precedence over the configuration file.
	if cmd.Flags().Changed("delay") {
		cfg.API.RequestDelay = checkDelay
	}
	if cmd.Flags().Changed("timeout") {
		cfg.API.TimeoutSeconds = checkTimeout
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = checkLogLevel
	}
	if cmd.Flags().Changed("input-dir") {
		cfg.Folders.Input = checkInputDir
	}
	if cmd.Flags().Changed("upload") {
		cfg.Upload.Enabled = checkUpload
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Reject a bad side filter before it can cost a full run.
	switch checkSide {
	case "all", "client", "server", "both", "separate":
	default:
		return fmt.Errorf("invalid --side %q (want all, client, server, both or separate)", checkSide)
	}

	workers := cfg.Threading.RecommendedMax
	if cmd.Flags().Changed("workers") {
		workers = checkWorkers
	}
	if err := cfg.ValidateWorkerCount(workers); err != nil {
		return err
	}

	logger, logFile := logging.New(cfg.Folders.Output, cfg.Logging.FileName, logging.ParseLevel(cfg.Logging.Level))
	defer logFile.Close()

	source := checkManifest
	if source == "" {
		source = cfg.Folders.Input
	}
	resolved, err := manifest.Resolve(source, cfg.Files.ModIndex, cfg.Folders.Temp)
	if err != nil {
		return err
	}
	if resolved.TempDir != "" && !checkKeepTemp {
		defer manifest.CleanTemp(resolved.TempDir)
	}

	m := resolved.Manifest
	if m.ModCount() == 0 {
		return fmt.Errorf("manifest %s lists no mods", m.Name)
	}
	logger.Info("Loaded manifest.", "name", m.Name, "version", m.VersionID, "mods", m.ModCount())

	stateMgr, err := state.NewManager(cfg.Folders.Output, logger)
	if err != nil {
		return err
	}
	defer stateMgr.Close()

	runState := state.NewRunState(m.Name, workers)
	runState.TotalMods = m.ModCount()
	if err := stateMgr.WriteState(runState); err != nil {
		return err
	}

	client := registry.NewClient(registry.ClientConfig{
		BaseURL:      cfg.API.BaseURL,
		UserAgent:    cfg.API.UserAgent,
		RequestDelay: cfg.RequestDelayDuration(),
		Timeout:      cfg.TimeoutDuration(),
	}, logger)

	// Interrupts arrive as a context cancel; in-flight lookups finish and
	// the partial results are kept.
	coord := checker.NewCoordinator(logger)
	pipeline := checker.NewPipeline(client, coord, workers, logger)

	report := pipeline.Check(cmd.Context(), m.Files)
	registryStats := client.Stats()

	finishRunState(runState, report, registryStats)
	if err := stateMgr.WriteState(runState); err != nil {
		return err
	}

	if err := writeReport(report, filterBySide(report.Results, checkSide), checkOutput, checkFormat); err != nil {
		return err
	}
	if checkSide == "separate" {
		exporter := export.NewExporter(cfg.Folders.Output, cfg.Files, logger)
		paths, err := exporter.SaveSeparately(report.Results)
		if err != nil {
			return err
		}
		for _, path := range paths {
			fmt.Printf("Wrote %s\n", path)
		}
	}

	if cfg.Upload.Enabled {
		if err := uploadArtifacts(cmd.Context(), cfg, runState.RunID, logger); err != nil {
			logger.Error("Artifact upload failed.", "error", err)
		}
	}

	displayCheckStats(report, registryStats, checkOutput)
	return nil
}

// filterBySide narrows the rows written to the output file. The side values
// are validated before the run; "all" and "separate" keep every row.
func filterBySide(results checker.Results, side string) checker.Results {
	switch side {
	case "client":
		return results.BySide(registry.SideClient)
	case "server":
		return results.BySide(registry.SideServer)
	case "both":
		return results.BySide(registry.SideBoth)
	default:
		return results
	}
}

// writeReport writes the given rows in the requested format. JSON formats
// carry the run statistics alongside the rows.
func writeReport(report *checker.Report, rows checker.Results, outputPath, format string) error {
	writer, err := export.NewWriterFactory().CreateWriter(outputPath, format)
	if err != nil {
		return err
	}

	if sw, ok := writer.(interface{ SetStats(*checker.RunStats) }); ok {
		sw.SetStats(&report.Stats)
	}
	if err := writer.WriteBatch(rows.Sorted()); err != nil {
		writer.Close()
		return err
	}
	return writer.Close()
}

func uploadArtifacts(ctx context.Context, cfg *config.Config, runID string, logger *slog.Logger) error {
	client, err := upload.NewAWSS3Client(ctx, cfg.Upload.Region, cfg.Upload.Bucket)
	if err != nil {
		return err
	}
	uploader := upload.NewUploader(client, cfg.Upload.Prefix, logger)
	keys, err := uploader.UploadArtifacts(ctx, cfg.Folders.Output, runID)
	if err != nil {
		return err
	}
	fmt.Printf("Uploaded %d artifacts to s3://%s\n", len(keys), cfg.Upload.Bucket)
	return nil
}

func displayCheckStats(report *checker.Report, registryStats registry.Stats, outputPath string) {
	fmt.Println("\n=== Classification Summary ===")
	fmt.Printf("Total mods: %d\n", report.Stats.TotalMods)
	fmt.Printf("Processed: %d\n", report.Stats.Processed)
	fmt.Printf("Classified: %d\n", report.Stats.Classified)
	fmt.Printf("Unknown: %d\n", report.Stats.Unknown)
	fmt.Printf("Duration: %s\n", report.Stats.Duration.Round(time.Millisecond))
	fmt.Printf("Registry: %d calls, avg %.0fms, p99 %dms, %d failed\n",
		registryStats.Calls, registryStats.MeanMs, registryStats.P99Ms, registryStats.Failures)

	fmt.Println("\nSide distribution:")
	for _, line := range sideCountLines(report.Results) {
		fmt.Println(line)
	}

	if report.Stats.Interrupted {
		fmt.Println("\nRun was interrupted; the output holds partial results.")
	}
	fmt.Printf("\nResults written to: %s\n", outputPath)
}

func init() {
	checkCmd.Flags().StringVarP(&checkManifest, "manifest", "m", "", "Manifest source: index file, .mrpack archive, or directory")
	checkCmd.Flags().StringVarP(&checkOutput, "output", "o", "", "Output file path (required)")
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "csv", "Output format (json, jsonl, csv, txt)")
	checkCmd.Flags().StringVar(&checkSide, "side", "all", "Which sides to write (all, client, server, both, separate)")

	checkCmd.Flags().IntVarP(&checkWorkers, "workers", "w", 0, "Number of classification workers (default: recommended max from config)")
	checkCmd.Flags().Float64Var(&checkDelay, "delay", 0.5, "Courtesy delay between registry requests in seconds")
	checkCmd.Flags().IntVar(&checkTimeout, "timeout", 30, "Registry request timeout in seconds")

	checkCmd.Flags().StringVar(&checkLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	checkCmd.Flags().StringVar(&checkConfig, "config", config.DefaultFileName, "Configuration file path")
	checkCmd.Flags().StringVar(&checkInputDir, "input-dir", "", "Input folder searched when no manifest is given")
	checkCmd.Flags().BoolVar(&checkKeepTemp, "keep-temp", false, "Keep the extracted archive contents")
	checkCmd.Flags().BoolVar(&checkUpload, "upload", false, "Upload artifacts to the configured S3 bucket")

	checkCmd.MarkFlagRequired("output")
}
