// Package export writes classification results to files: the per-side CSV
// sets the interactive menus offer, plus JSON, JSONL and text formats for
// scripted runs.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/Beelzebub2/mod-side-checker/internal/checker"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// OutputWriter writes classified mods to a destination.
type OutputWriter interface {
	WriteResult(result checker.Result) error
	WriteBatch(results checker.Results) error
	Close() error
}

// WriterFactory creates output writers based on format.
type WriterFactory struct{}

// NewWriterFactory creates a new WriterFactory.
func NewWriterFactory() *WriterFactory {
	return &WriterFactory{}
}

// CreateWriter creates an appropriate output writer based on the format and
// output path.
func (wf *WriterFactory) CreateWriter(outputPath, format string) (OutputWriter, error) {
	if err := wf.validateOutputPath(outputPath); err != nil {
		return nil, err
	}

	switch strings.ToLower(format) {
	case "json":
		return NewJSONWriter(outputPath)
	case "jsonl":
		return NewJSONLineWriter(outputPath)
	case "csv":
		return NewCSVWriter(outputPath)
	case "txt", "text":
		return NewTextWriter(outputPath)
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// validateOutputPath validates the output path and creates its directory.
func (wf *WriterFactory) validateOutputPath(outputPath string) error {
	if strings.TrimSpace(outputPath) == "" {
		return fmt.Errorf("output path cannot be empty")
	}

	dir := filepath.Dir(outputPath)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	return nil
}

// resultDocument is the JSON document shape shared by JSONWriter and
// LoadResults.
type resultDocument struct {
	Results checker.Results   `json:"results"`
	Stats   *checker.RunStats `json:"stats,omitempty"`
}

// JSONWriter buffers results and writes a single document on Close.
type JSONWriter struct {
	outputPath string
	file       *os.File
	results    checker.Results
	stats      *checker.RunStats
}

// NewJSONWriter creates a new JSON output writer.
func NewJSONWriter(outputPath string) (*JSONWriter, error) {
	file, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create JSON output file %s: %w", outputPath, err)
	}

	return &JSONWriter{
		outputPath: outputPath,
		file:       file,
		results:    make(checker.Results, 0),
	}, nil
}

// WriteResult adds a result to the buffer (written on Close).
func (jw *JSONWriter) WriteResult(result checker.Result) error {
	if err := result.Validate(); err != nil {
		return fmt.Errorf("invalid result: %w", err)
	}
	jw.results = append(jw.results, result)
	return nil
}

// WriteBatch adds multiple results to the buffer.
func (jw *JSONWriter) WriteBatch(results checker.Results) error {
	for _, result := range results {
		if err := jw.WriteResult(result); err != nil {
			return err
		}
	}
	return nil
}

// SetStats attaches run statistics to the output document.
func (jw *JSONWriter) SetStats(stats *checker.RunStats) {
	jw.stats = stats
}

// Close writes all buffered results to the JSON file and closes it.
func (jw *JSONWriter) Close() error {
	if jw.file == nil {
		return nil // Already closed
	}

	output := resultDocument{
		Results: jw.results,
		Stats:   jw.stats,
	}

	encoder := json.NewEncoder(jw.file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(output); err != nil {
		jw.file.Close()
		return fmt.Errorf("failed to write JSON output: %w", err)
	}

	err := jw.file.Close()
	jw.file = nil
	return err
}

// JSONLWriter writes one JSON object per line, with the run statistics as
// a final line.
type JSONLWriter struct {
	outputPath string
	file       *os.File
	encoder    *jsoniter.Encoder
	stats      *checker.RunStats
}

// NewJSONLineWriter creates a new JSONL output writer.
func NewJSONLineWriter(outputPath string) (*JSONLWriter, error) {
	file, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create JSONL output file %s: %w", outputPath, err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetEscapeHTML(false)

	return &JSONLWriter{
		outputPath: outputPath,
		file:       file,
		encoder:    encoder,
	}, nil
}

// WriteResult writes a single result as one line.
func (jlw *JSONLWriter) WriteResult(result checker.Result) error {
	if err := result.Validate(); err != nil {
		return fmt.Errorf("invalid result: %w", err)
	}
	if err := jlw.encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to write JSONL record: %w", err)
	}
	return nil
}

// WriteBatch writes multiple results, one line each.
func (jlw *JSONLWriter) WriteBatch(results checker.Results) error {
	for _, result := range results {
		if err := jlw.WriteResult(result); err != nil {
			return err
		}
	}
	return nil
}

// SetStats attaches run statistics, written as the final line.
func (jlw *JSONLWriter) SetStats(stats *checker.RunStats) {
	jlw.stats = stats
}

// Close writes the stats line and closes the file.
func (jlw *JSONLWriter) Close() error {
	if jlw.file == nil {
		return nil // Already closed
	}

	if jlw.stats != nil {
		if err := jlw.encoder.Encode(jlw.stats); err != nil {
			jlw.file.Close()
			return fmt.Errorf("failed to write JSONL stats: %w", err)
		}
	}

	err := jlw.file.Close()
	jlw.file = nil
	return err
}

// CSVWriter writes results as CSV rows under a Name,Side,Download URL
// header.
type CSVWriter struct {
	outputPath    string
	file          *os.File
	writer        *csv.Writer
	headerWritten bool
}

// NewCSVWriter creates a new CSV output writer.
func NewCSVWriter(outputPath string) (*CSVWriter, error) {
	file, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV output file %s: %w", outputPath, err)
	}

	return &CSVWriter{
		outputPath: outputPath,
		file:       file,
		writer:     csv.NewWriter(file),
	}, nil
}

// WriteHeader writes the CSV header if not already written. Exports call
// this up front so a filtered file with zero rows still carries a header.
func (cw *CSVWriter) WriteHeader() error {
	if cw.headerWritten {
		return nil
	}

	header := []string{"Name", "Side", "Download URL"}
	if err := cw.writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	cw.headerWritten = true
	return nil
}

// WriteResult writes a single result as a CSV row.
func (cw *CSVWriter) WriteResult(result checker.Result) error {
	if err := result.Validate(); err != nil {
		return fmt.Errorf("invalid result: %w", err)
	}

	if err := cw.WriteHeader(); err != nil {
		return err
	}

	record := []string{
		result.Name,
		result.Side.String(),
		result.DownloadURL,
	}
	if err := cw.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write CSV record: %w", err)
	}

	return nil
}

// WriteBatch writes multiple results as CSV rows.
func (cw *CSVWriter) WriteBatch(results checker.Results) error {
	for _, result := range results {
		if err := cw.WriteResult(result); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes and closes the CSV file.
func (cw *CSVWriter) Close() error {
	if cw.file == nil {
		return nil // Already closed
	}

	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		cw.file.Close()
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}

	err := cw.file.Close()
	cw.file = nil
	return err
}

// TextWriter writes results as human readable lines.
type TextWriter struct {
	outputPath string
	file       *os.File
}

// NewTextWriter creates a new text output writer.
func NewTextWriter(outputPath string) (*TextWriter, error) {
	file, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create text output file %s: %w", outputPath, err)
	}

	return &TextWriter{
		outputPath: outputPath,
		file:       file,
	}, nil
}

// WriteResult writes a single result as one line.
func (tw *TextWriter) WriteResult(result checker.Result) error {
	if err := result.Validate(); err != nil {
		return fmt.Errorf("invalid result: %w", err)
	}

	line := fmt.Sprintf("%s -> %s\n", result.Name, result.Side)
	if _, err := tw.file.WriteString(line); err != nil {
		return fmt.Errorf("failed to write text record: %w", err)
	}

	return nil
}

// WriteBatch writes multiple results, one line each.
func (tw *TextWriter) WriteBatch(results checker.Results) error {
	for _, result := range results {
		if err := tw.WriteResult(result); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the text file.
func (tw *TextWriter) Close() error {
	if tw.file == nil {
		return nil // Already closed
	}

	err := tw.file.Close()
	tw.file = nil
	return err
}
