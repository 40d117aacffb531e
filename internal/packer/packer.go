package packer

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Beelzebub2/mod-side-checker/internal/checker"
	"github.com/Beelzebub2/mod-side-checker/internal/config"
	"github.com/Beelzebub2/mod-side-checker/internal/registry"
)

// PackType selects which side-specific archive to build.
type PackType string

const (
	PackServer PackType = "server"
	PackClient PackType = "client"
)

const (
	missingListName = "missing_mods.txt"
	reportName      = "pack_report.txt"
)

// Summary describes one created archive.
type Summary struct {
	Path     string
	Type     PackType
	Included int
	Bundled  int
	Missing  int
	Extras   int
}

// Packer assembles side-specific modpack archives in the output directory.
type Packer struct {
	outputDir string
	files     config.FilesConfig
	logger    *slog.Logger
}

// NewPacker creates a packer rooted at outputDir. A nil logger falls back
// to the default logger.
func NewPacker(outputDir string, files config.FilesConfig, logger *slog.Logger) *Packer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Packer{
		outputDir: outputDir,
		files:     files,
		logger:    logger.With("component", "packer"),
	}
}

// Create builds the archive for packType from the classified results,
// bundling every jar it can locate under modsDir. Mods without a jar are
// listed in an info record inside the archive instead. The archive lands
// atomically: a half-written pack never appears under the final name.
func (p *Packer) Create(packType PackType, results checker.Results, modsDir string) (*Summary, error) {
	archiveName, err := p.archiveName(packType)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no classification results to pack")
	}

	jars, err := ScanJarFiles(modsDir, p.logger)
	if err != nil {
		// An info-only pack is still useful when the jars are gone.
		p.logger.Warn("No mod jars available, building an info-only pack.", "error", err)
		jars = make(map[string]string)
	}

	included := p.filterForPack(results, packType)
	p.logger.Info("Building pack.",
		"type", string(packType), "included", len(included), "excluded", len(results)-len(included))

	if err := os.MkdirAll(p.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", p.outputDir, err)
	}

	tempFile, err := os.CreateTemp(p.outputDir, "pack-*.zip.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp archive: %w", err)
	}
	defer os.Remove(tempFile.Name())

	summary := &Summary{Type: packType, Included: len(included)}

	zw := zip.NewWriter(tempFile)
	var missing checker.Results
	bundled := make(map[string]bool)

	for _, result := range included.Sorted() {
		src, ok := jars[result.Name]
		if !ok {
			missing = append(missing, result)
			continue
		}
		if err := addFileToZip(zw, src, path.Join("mods", result.Name)); err != nil {
			zw.Close()
			tempFile.Close()
			return nil, fmt.Errorf("failed to bundle %s: %w", result.Name, err)
		}
		bundled[result.Name] = true
		summary.Bundled++
	}
	summary.Missing = len(missing)

	extras := p.extraJars(jars, results)
	summary.Extras = len(extras)

	if len(missing) > 0 {
		if err := writeZipText(zw, missingListName, renderMissingList(missing)); err != nil {
			zw.Close()
			tempFile.Close()
			return nil, err
		}
	}
	if err := writeZipText(zw, reportName, renderReport(packType, included, summary, extras)); err != nil {
		zw.Close()
		tempFile.Close()
		return nil, err
	}

	if err := zw.Close(); err != nil {
		tempFile.Close()
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temp archive: %w", err)
	}

	finalPath := filepath.Join(p.outputDir, archiveName)
	if err := os.Rename(tempFile.Name(), finalPath); err != nil {
		return nil, fmt.Errorf("failed to move archive into place: %w", err)
	}

	summary.Path = finalPath
	p.logger.Info("Pack created.",
		"path", finalPath, "bundled", summary.Bundled, "missing", summary.Missing)
	return summary, nil
}

// archiveName maps a pack type to its configured file name.
func (p *Packer) archiveName(packType PackType) (string, error) {
	switch packType {
	case PackServer:
		return p.files.ServerPack, nil
	case PackClient:
		return p.files.ClientPack, nil
	default:
		return "", fmt.Errorf("unsupported pack type: %s", packType)
	}
}

// filterForPack drops the results whose side rules them out of this pack.
// Optional, Unknown and raw-pair sides stay in both packs; only the
// opposite strict side is excluded.
func (p *Packer) filterForPack(results checker.Results, packType PackType) checker.Results {
	excluded := registry.SideServer
	if packType == PackServer {
		excluded = registry.SideClient
	}

	var kept checker.Results
	for _, r := range results {
		if r.Side == excluded {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// extraJars lists jar files on disk that no classification result claims.
func (p *Packer) extraJars(jars map[string]string, results checker.Results) []string {
	claimed := make(map[string]bool, len(results))
	for _, r := range results {
		claimed[r.Name] = true
	}

	var extras []string
	for _, name := range sortedNames(jars) {
		if !claimed[name] {
			extras = append(extras, name)
		}
	}
	return extras
}

// addFileToZip copies a file from disk into the archive under entryName.
func addFileToZip(zw *zip.Writer, src, entryName string) error {
	file, err := os.Open(src)
	if err != nil {
		return err
	}
	defer file.Close()

	entry, err := zw.Create(entryName)
	if err != nil {
		return err
	}
	_, err = io.Copy(entry, file)
	return err
}

// writeZipText adds a text file entry to the archive.
func writeZipText(zw *zip.Writer, entryName, content string) error {
	entry, err := zw.Create(entryName)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", entryName, err)
	}
	if _, err := entry.Write([]byte(content)); err != nil {
		return fmt.Errorf("failed to write %s: %w", entryName, err)
	}
	return nil
}

// renderMissingList formats the info records for mods without a jar.
func renderMissingList(missing checker.Results) string {
	var b strings.Builder
	b.WriteString("The following mods belong in this pack but no jar file was found.\n")
	b.WriteString("Download them manually:\n\n")
	for _, r := range missing.Sorted() {
		if r.DownloadURL != "" {
			fmt.Fprintf(&b, "%s (%s): %s\n", r.Name, r.Side, r.DownloadURL)
		} else {
			fmt.Fprintf(&b, "%s (%s): no download reference\n", r.Name, r.Side)
		}
	}
	return b.String()
}

// renderReport formats the human readable pack summary.
func renderReport(packType PackType, included checker.Results, summary *Summary, extras []string) string {
	var b strings.Builder
	b.WriteString("Modpack report\n")
	b.WriteString("==============\n")
	fmt.Fprintf(&b, "Pack type:   %s\n", packType)
	fmt.Fprintf(&b, "Generated:   %s\n", time.Now().UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Included:    %d\n", summary.Included)
	fmt.Fprintf(&b, "Bundled:     %d\n", summary.Bundled)
	fmt.Fprintf(&b, "Missing:     %d\n", summary.Missing)
	fmt.Fprintf(&b, "Extra jars:  %d\n", summary.Extras)

	b.WriteString("\nSide counts:\n")
	counts := included.Counts()
	sides := make([]string, 0, len(counts))
	for side := range counts {
		sides = append(sides, string(side))
	}
	sort.Strings(sides)
	for _, side := range sides {
		fmt.Fprintf(&b, "  %s: %d\n", side, counts[registry.Side(side)])
	}

	if len(extras) > 0 {
		b.WriteString("\nJars on disk not listed in the manifest (not bundled):\n")
		for _, name := range extras {
			fmt.Fprintf(&b, "  %s\n", name)
		}
	}

	return b.String()
}
