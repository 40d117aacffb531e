package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Beelzebub2/mod-side-checker/internal/checker"
	"github.com/Beelzebub2/mod-side-checker/internal/config"
	"github.com/Beelzebub2/mod-side-checker/internal/registry"
)

// Exporter writes classification results to the configured CSV files in
// the output directory. Rows are sorted by mod name so repeated runs over
// the same modpack produce identical files.
type Exporter struct {
	outputDir string
	files     config.FilesConfig
	logger    *slog.Logger
}

// NewExporter creates an exporter rooted at outputDir. A nil logger falls
// back to the default logger.
func NewExporter(outputDir string, files config.FilesConfig, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		outputDir: outputDir,
		files:     files,
		logger:    logger.With("component", "export"),
	}
}

// SaveAll writes every result, whatever its side, to the combined CSV.
func (e *Exporter) SaveAll(results checker.Results) (string, error) {
	return e.writeCSV(e.files.CSVAll, results)
}

// SaveSide writes only the results whose side matches exactly. Optional
// and Unknown mods have no configured file and are rejected.
func (e *Exporter) SaveSide(results checker.Results, side registry.Side) (string, error) {
	name, err := e.fileForSide(side)
	if err != nil {
		return "", err
	}
	return e.writeCSV(name, results.BySide(side))
}

// SaveSeparately writes the client, server and both files in one pass and
// returns the written paths.
func (e *Exporter) SaveSeparately(results checker.Results) ([]string, error) {
	paths := make([]string, 0, 3)
	for _, side := range []registry.Side{registry.SideClient, registry.SideServer, registry.SideBoth} {
		path, err := e.SaveSide(results, side)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// fileForSide maps a side to its configured CSV file name.
func (e *Exporter) fileForSide(side registry.Side) (string, error) {
	switch side {
	case registry.SideClient:
		return e.files.CSVClient, nil
	case registry.SideServer:
		return e.files.CSVServer, nil
	case registry.SideBoth:
		return e.files.CSVBoth, nil
	default:
		return "", fmt.Errorf("no export file configured for side %s", side)
	}
}

// writeCSV writes rows to fileName inside the output directory. An empty
// result set still produces a file with the header row.
func (e *Exporter) writeCSV(fileName string, results checker.Results) (string, error) {
	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", e.outputDir, err)
	}

	path := filepath.Join(e.outputDir, fileName)
	writer, err := NewCSVWriter(path)
	if err != nil {
		return "", err
	}

	if err := writer.WriteHeader(); err != nil {
		writer.Close()
		return "", err
	}
	if err := writer.WriteBatch(results.Sorted()); err != nil {
		writer.Close()
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	e.logger.Info("Wrote results file.", "path", path, "rows", len(results))
	return path, nil
}

// LoadResults reads back a JSON results document written by JSONWriter.
// The packer uses this to rebuild archives from an earlier run without
// re-querying the registry.
func LoadResults(path string) (checker.Results, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results file %s: %w", path, err)
	}

	var doc resultDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode results file %s: %w", path, err)
	}
	if len(doc.Results) == 0 {
		return nil, fmt.Errorf("results file %s holds no results", path)
	}

	return doc.Results, nil
}
