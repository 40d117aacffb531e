package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Beelzebub2/mod-side-checker/internal/checker"
	"github.com/Beelzebub2/mod-side-checker/internal/config"
	"github.com/Beelzebub2/mod-side-checker/internal/export"
	"github.com/Beelzebub2/mod-side-checker/internal/logging"
	"github.com/Beelzebub2/mod-side-checker/internal/manifest"
	"github.com/Beelzebub2/mod-side-checker/internal/packer"
	"github.com/Beelzebub2/mod-side-checker/internal/registry"
	"github.com/Beelzebub2/mod-side-checker/internal/state"
)

var (
	packManifest  string
	packResults   string
	packTypeFlag  string
	packWorkers   int
	packDelay     float64
	packTimeout   int
	packModsDir   string
	packOutputDir string
	packLogLevel  string
	packConfig    string
	packKeepTemp  bool
)

var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Build side-specific modpack archives",
	Long: `Build server or client modpack archives. By default the modpack is resolved
from the manifest source (or the configured input folder), classified against
the registry, and packed in one go. With --results the classification of an
earlier 'check --format json' run is reused instead and no lookups happen.

The server archive drops client-only mods, the client archive drops
server-only mods, and everything else is kept in both. Jars missing from the
mods directory are listed inside the archive for manual download.

Examples:
  # Classify a modpack archive and build the server pack
  modchecker pack -m pack.mrpack --type server

  # Build both archives with more workers
  modchecker pack -m pack.mrpack --type both --workers 6

  # Reuse an earlier check run, no registry lookups
  modchecker pack --results results.json --type server

  # Build into a different output directory
  modchecker pack -m pack.mrpack --type client --output-dir dist/`,
	RunE: runPack,
}

func runPack(cmd *cobra.Command, args []string) error {
	cfg, _, err := config.Load(packConfig)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Flags take precedence over the configuration file.
	if cmd.Flags().Changed("delay") {
		cfg.API.RequestDelay = packDelay
	}
	if cmd.Flags().Changed("timeout") {
		cfg.API.TimeoutSeconds = packTimeout
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = packLogLevel
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	outputDir := cfg.Folders.Output
	if cmd.Flags().Changed("output-dir") {
		outputDir = packOutputDir
	}

	var types []packer.PackType
	switch packTypeFlag {
	case "server":
		types = []packer.PackType{packer.PackServer}
	case "client":
		types = []packer.PackType{packer.PackClient}
	case "both":
		types = []packer.PackType{packer.PackServer, packer.PackClient}
	default:
		return fmt.Errorf("type must be one of: server, client, both")
	}

	logger, logFile := logging.New(outputDir, cfg.Logging.FileName, logging.ParseLevel(cfg.Logging.Level))
	defer logFile.Close()

	modsDir := packModsDir
	var results checker.Results

	if cmd.Flags().Changed("results") {
		results, err = export.LoadResults(packResults)
		if err != nil {
			return err
		}
	} else {
		results, modsDir, err = classifyForPack(cmd, cfg, outputDir, logger)
		if err != nil {
			return err
		}
		if packModsDir != "" {
			modsDir = packModsDir
		}
	}

	p := packer.NewPacker(outputDir, cfg.Files, logger)
	for _, packType := range types {
		summary, err := p.Create(packType, results, modsDir)
		if err != nil {
			return fmt.Errorf("failed to build %s pack: %w", packType, err)
		}
		displayPackSummary(summary)
	}

	return nil
}

// classifyForPack resolves the manifest and runs a full classification, the
// same way check does, and reports the extracted mods directory so bundled
// jars end up in the archives.
func classifyForPack(cmd *cobra.Command, cfg *config.Config, outputDir string, logger *slog.Logger) (checker.Results, string, error) {
	workers := cfg.Threading.RecommendedMax
	if cmd.Flags().Changed("workers") {
		workers = packWorkers
	}
	if err := cfg.ValidateWorkerCount(workers); err != nil {
		return nil, "", err
	}

	source := packManifest
	if source == "" {
		source = cfg.Folders.Input
	}
	resolved, err := manifest.Resolve(source, cfg.Files.ModIndex, cfg.Folders.Temp)
	if err != nil {
		return nil, "", err
	}
	if resolved.TempDir != "" && !packKeepTemp {
		defer manifest.CleanTemp(resolved.TempDir)
	}

	m := resolved.Manifest
	if m.ModCount() == 0 {
		return nil, "", fmt.Errorf("manifest %s lists no mods", m.Name)
	}
	logger.Info("Loaded manifest.", "name", m.Name, "version", m.VersionID, "mods", m.ModCount())

	stateMgr, err := state.NewManager(outputDir, logger)
	if err != nil {
		return nil, "", err
	}
	defer stateMgr.Close()

	runState := state.NewRunState(m.Name, workers)
	runState.TotalMods = m.ModCount()
	if err := stateMgr.WriteState(runState); err != nil {
		return nil, "", err
	}

	client := registry.NewClient(registry.ClientConfig{
		BaseURL:      cfg.API.BaseURL,
		UserAgent:    cfg.API.UserAgent,
		RequestDelay: cfg.RequestDelayDuration(),
		Timeout:      cfg.TimeoutDuration(),
	}, logger)

	coord := checker.NewCoordinator(logger)
	pipeline := checker.NewPipeline(client, coord, workers, logger)

	report := pipeline.Check(cmd.Context(), m.Files)

	finishRunState(runState, report, client.Stats())
	if err := stateMgr.WriteState(runState); err != nil {
		return nil, "", err
	}

	if len(report.Results) == 0 {
		return nil, "", fmt.Errorf("no classification results to pack")
	}
	if report.Stats.Interrupted {
		fmt.Println("Run was interrupted; packing the partial results.")
	}

	return report.Results, resolved.ModsDir, nil
}

func displayPackSummary(summary *packer.Summary) {
	fmt.Printf("\n=== %s pack ===\n", summary.Type)
	fmt.Printf("Archive: %s\n", summary.Path)
	fmt.Printf("Mods included: %d (%d bundled)\n", summary.Included, summary.Bundled)
	if summary.Missing > 0 {
		fmt.Printf("Missing jars: %d (listed in the archive)\n", summary.Missing)
	}
	if summary.Extras > 0 {
		fmt.Printf("Unlisted jars left out: %d\n", summary.Extras)
	}
}

func init() {
	packCmd.Flags().StringVarP(&packManifest, "manifest", "m", "", "Manifest source: index file, .mrpack archive, or directory")
	packCmd.Flags().StringVarP(&packResults, "results", "r", "", "JSON results file from an earlier check run (skips classification)")
	packCmd.Flags().StringVarP(&packTypeFlag, "type", "t", "both", "Pack type to build (server, client, both)")

	packCmd.Flags().IntVarP(&packWorkers, "workers", "w", 0, "Number of classification workers (default: recommended max from config)")
	packCmd.Flags().Float64Var(&packDelay, "delay", 0.5, "Courtesy delay between registry requests in seconds")
	packCmd.Flags().IntVar(&packTimeout, "timeout", 30, "Registry request timeout in seconds")

	packCmd.Flags().StringVar(&packModsDir, "mods-dir", "", "Directory holding the mod jars to bundle")
	packCmd.Flags().StringVar(&packOutputDir, "output-dir", "", "Directory for the built archives (default: configured output folder)")
	packCmd.Flags().StringVar(&packLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	packCmd.Flags().StringVar(&packConfig, "config", config.DefaultFileName, "Configuration file path")
	packCmd.Flags().BoolVar(&packKeepTemp, "keep-temp", false, "Keep the extracted archive contents")
}
