package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Beelzebub2/mod-side-checker/internal/config"
	"github.com/Beelzebub2/mod-side-checker/internal/manifest"
	"github.com/Beelzebub2/mod-side-checker/internal/state"
)

var (
	infoDir       string
	infoRecursive bool
	infoConfig    string
)

var infoCmd = &cobra.Command{
	Use:   "info [source...]",
	Short: "Display information about modpack sources or the last run",
	Long: `Display information about modpack archives and manifest files without
classifying anything. Archives are inspected in place, nothing is extracted.

With no sources the command reports the effective configuration and the
last run recorded in the output folder instead.

Examples:
  modchecker info pack.mrpack
  modchecker info pack1.mrpack pack2.mrpack modrinth.index.json
  modchecker info -d input/
  modchecker info -d input/ -r
  modchecker info`,
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	var sources []string
	var err error

	if infoDir != "" {
		sources, err = scanDirectoryForModpacks(infoDir, infoRecursive)
		if err != nil {
			return fmt.Errorf("failed to scan directory: %w", err)
		}
		if len(sources) == 0 {
			return fmt.Errorf("no modpack sources found in directory: %s", infoDir)
		}
	} else if len(args) > 0 {
		sources = args
	} else {
		return runInfoStatus()
	}

	fmt.Printf("Modpack Information\n")
	fmt.Printf("===================\n\n")

	totalSources := len(sources)
	totalMods := 0
	successful := 0

	for i, source := range sources {
		fmt.Printf("Source %d/%d: %s\n", i+1, totalSources, source)

		m, err := loadManifestInfo(source)
		if err != nil {
			fmt.Printf("  ❌ Error: %v\n\n", err)
			continue
		}

		fmt.Printf("  📦 %s", m.Name)
		if m.VersionID != "" {
			fmt.Printf(" (%s)", m.VersionID)
		}
		fmt.Println()
		fmt.Printf("  📊 Mods: %d\n", m.ModCount())

		if stat, err := os.Stat(source); err == nil {
			fmt.Printf("  💾 File size: %s\n", formatBytes(stat.Size()))
		}
		for _, dep := range dependencyLines(m) {
			fmt.Printf("  🔧 %s\n", dep)
		}

		// Each worker spends roughly 750ms per mod with the default pacing.
		estimatedSeconds := float64(m.ModCount()) / 6.0 * 0.75
		fmt.Printf("  ⏱️  Estimated check time: %s\n", formatDuration(estimatedSeconds))

		totalMods += m.ModCount()
		successful++
		fmt.Println()
	}

	if successful > 1 {
		fmt.Printf("Summary\n")
		fmt.Printf("=======\n")
		fmt.Printf("Sources read: %d/%d\n", successful, totalSources)
		fmt.Printf("Total mods: %s\n", formatNumber(int64(totalMods)))
		fmt.Printf("Average per pack: %s\n", formatNumber(int64(totalMods/successful)))
		totalEstimated := float64(totalMods) / 6.0 * 0.75
		fmt.Printf("Total estimated check time: %s\n", formatDuration(totalEstimated))
	}

	return nil
}

// runInfoStatus reports the effective configuration and the last recorded
// run. Reading the state does not take the run lock, so this works while a
// classification is in progress.
func runInfoStatus() error {
	cfg, created, err := config.Load(infoConfig)
	if err != nil {
		return err
	}
	if created {
		fmt.Printf("Created default configuration at %s\n\n", infoConfig)
	}

	fmt.Printf("Configuration\n")
	fmt.Printf("=============\n")
	fmt.Printf("Input folder:  %s\n", cfg.Folders.Input)
	fmt.Printf("Output folder: %s\n", cfg.Folders.Output)
	fmt.Printf("Temp folder:   %s\n", cfg.Folders.Temp)
	fmt.Printf("Registry:      %s\n", cfg.API.BaseURL)
	fmt.Printf("Request delay: %.1fs\n", cfg.API.RequestDelay)
	fmt.Printf("Workers:       max %d, recommended %d\n", cfg.Threading.MaxThreads, cfg.Threading.RecommendedMax)
	if cfg.Upload.Enabled {
		fmt.Printf("Upload:        s3://%s/%s\n", cfg.Upload.Bucket, cfg.Upload.Prefix)
	} else {
		fmt.Printf("Upload:        disabled\n")
	}

	rs, err := state.Read(cfg.Folders.Output)
	if err != nil {
		return err
	}
	if rs == nil {
		fmt.Printf("\nNo recorded runs in %s.\n", cfg.Folders.Output)
		return nil
	}

	fmt.Printf("\nLast Run\n")
	fmt.Printf("========\n")
	fmt.Printf("Run ID:      %s\n", rs.RunID)
	if rs.ManifestName != "" {
		fmt.Printf("Manifest:    %s\n", rs.ManifestName)
	}
	fmt.Printf("Workers:     %d\n", rs.Workers)
	fmt.Printf("Processed:   %d/%d\n", rs.Processed, rs.TotalMods)
	fmt.Printf("Interrupted: %v\n", rs.Interrupted)
	fmt.Printf("Started:     %s\n", rs.StartedAt.Format(time.RFC3339))
	if !rs.FinishedAt.IsZero() {
		fmt.Printf("Finished:    %s\n", rs.FinishedAt.Format(time.RFC3339))
	}
	if len(rs.Counts) > 0 {
		fmt.Printf("Sides:\n")
		sides := make([]string, 0, len(rs.Counts))
		for side := range rs.Counts {
			sides = append(sides, side)
		}
		sort.Strings(sides)
		for _, side := range sides {
			fmt.Printf("  %s: %d\n", side, rs.Counts[side])
		}
	}
	if rs.Registry != nil {
		fmt.Printf("Registry:    %d calls, avg %.0fms, p99 %dms, %d failed\n",
			rs.Registry.Calls, rs.Registry.MeanMs, rs.Registry.P99Ms, rs.Registry.Failures)
	}

	return nil
}

// loadManifestInfo reads a manifest without extracting archive contents.
func loadManifestInfo(source string) (*manifest.Manifest, error) {
	lower := strings.ToLower(source)
	if strings.HasSuffix(lower, ".mrpack") || strings.HasSuffix(lower, ".zip") {
		return manifest.ReadFromArchive(source)
	}
	return manifest.Load(source)
}

func dependencyLines(m *manifest.Manifest) []string {
	lines := make([]string, 0, len(m.Dependencies))
	for name, version := range m.Dependencies {
		lines = append(lines, fmt.Sprintf("%s %s", name, version))
	}
	sort.Strings(lines)
	return lines
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func formatNumber(num int64) string {
	if num < 1000 {
		return fmt.Sprintf("%d", num)
	} else if num < 1000000 {
		return fmt.Sprintf("%.1fK", float64(num)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(num)/1000000)
}

func formatDuration(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%.1fs", seconds)
	} else if seconds < 3600 {
		return fmt.Sprintf("%.1fm", seconds/60)
	}
	return fmt.Sprintf("%.1fh", seconds/3600)
}

func init() {
	infoCmd.Flags().StringVarP(&infoDir, "input-dir", "d", "", "Directory holding modpack archives or manifests")
	infoCmd.Flags().BoolVarP(&infoRecursive, "recursive", "r", false, "Scan directories recursively")
	infoCmd.Flags().StringVar(&infoConfig, "config", config.DefaultFileName, "Configuration file path")
}
