package upload

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// defaultConcurrency bounds parallel uploads.
const defaultConcurrency = 4

// artifactContentTypes maps artifact extensions to their content type.
// Extensions not listed here are not artifacts and stay local.
var artifactContentTypes = map[string]string{
	".csv":  "text/csv",
	".zip":  "application/zip",
	".json": "application/json",
	".txt":  "text/plain",
}

// Uploader pushes the artifacts of a run to an object store.
type Uploader struct {
	store       S3Client
	prefix      string
	concurrency int
	logger      *slog.Logger
}

// NewUploader creates an uploader that writes keys under prefix. A nil
// logger falls back to the default logger.
func NewUploader(store S3Client, prefix string, logger *slog.Logger) *Uploader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Uploader{
		store:       store,
		prefix:      prefix,
		concurrency: defaultConcurrency,
		logger:      logger.With("component", "upload"),
	}
}

// UploadArtifacts uploads every artifact file in outputDir and returns the
// keys written, sorted. Keys are laid out as prefix/runID/filename so runs
// never overwrite each other. Log, lock and temp files stay local.
func (u *Uploader) UploadArtifacts(ctx context.Context, outputDir, runID string) ([]string, error) {
	files, err := u.discoverArtifacts(outputDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		u.logger.Info("No artifacts to upload.", "dir", outputDir)
		return nil, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.concurrency)

	keys := make([]string, len(files))
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			key := u.keyFor(runID, filepath.Base(file))
			if err := u.uploadOne(gctx, file, key); err != nil {
				return err
			}
			keys[i] = key
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(keys)
	u.logger.Info("Uploaded artifacts.", "count", len(keys), "prefix", u.prefix)
	return keys, nil
}

// discoverArtifacts lists the files in outputDir with an artifact
// extension, sorted for deterministic upload order.
func (u *Uploader) discoverArtifacts(outputDir string) ([]string, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read output directory %s: %w", outputDir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := artifactContentTypes[ext]; !ok {
			continue
		}
		files = append(files, filepath.Join(outputDir, entry.Name()))
	}

	sort.Strings(files)
	return files, nil
}

// keyFor builds the object key for one artifact.
func (u *Uploader) keyFor(runID, fileName string) string {
	if runID == "" {
		return path.Join(u.prefix, fileName)
	}
	return path.Join(u.prefix, runID, fileName)
}

// uploadOne streams a single file to the store.
func (u *Uploader) uploadOne(ctx context.Context, filePath, key string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open artifact %s: %w", filePath, err)
	}
	defer file.Close()

	contentType := artifactContentTypes[strings.ToLower(filepath.Ext(filePath))]
	if err := u.store.PutObject(ctx, key, file, contentType); err != nil {
		return err
	}

	u.logger.Debug("Uploaded artifact.", "key", key)
	return nil
}
