package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Beelzebub2/mod-side-checker/internal/config"
	"github.com/Beelzebub2/mod-side-checker/internal/logging"
	"github.com/Beelzebub2/mod-side-checker/internal/upload"
)

var (
	uploadBucket string
	uploadPrefix string
	uploadRegion string
	uploadRunID  string
	uploadDir    string
	uploadConfig string
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload run artifacts to AWS S3",
	Long: `Upload the artifacts of a run (result files, pack archives, reports) from the
output directory to an S3 bucket. Log and lock files stay local.

Credentials come from the standard AWS chain: environment variables, shared
config, or an instance role.

Examples:
  # Upload everything from the configured output folder
  modchecker upload --bucket my-artifacts

  # Group artifacts under a run ID
  modchecker upload --bucket my-artifacts --run-id 4f9d2c

  # Use a specific region and prefix
  modchecker upload --bucket my-artifacts --region eu-west-1 --prefix modpacks/survival`,
	RunE: runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
	cfg, _, err := config.Load(uploadConfig)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Flags take precedence over the configuration file.
	bucket := cfg.Upload.Bucket
	if cmd.Flags().Changed("bucket") {
		bucket = uploadBucket
	}
	prefix := cfg.Upload.Prefix
	if cmd.Flags().Changed("prefix") {
		prefix = uploadPrefix
	}
	region := cfg.Upload.Region
	if cmd.Flags().Changed("region") {
		region = uploadRegion
	}
	dir := cfg.Folders.Output
	if cmd.Flags().Changed("dir") {
		dir = uploadDir
	}

	if bucket == "" {
		return fmt.Errorf("S3 bucket is required (flag --bucket or upload.bucket in the configuration)")
	}

	logger, logFile := logging.New(dir, cfg.Logging.FileName, logging.ParseLevel(cfg.Logging.Level))
	defer logFile.Close()

	client, err := upload.NewAWSS3Client(cmd.Context(), region, bucket)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	uploader := upload.NewUploader(client, prefix, logger)
	keys, err := uploader.UploadArtifacts(cmd.Context(), dir, uploadRunID)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	fmt.Printf("Uploaded %d artifacts to s3://%s\n", len(keys), bucket)
	for _, key := range keys {
		fmt.Printf("  %s\n", key)
	}
	return nil
}

func init() {
	uploadCmd.Flags().StringVar(&uploadBucket, "bucket", "", "S3 bucket name")
	uploadCmd.Flags().StringVar(&uploadPrefix, "prefix", "", "Key prefix for uploaded artifacts")
	uploadCmd.Flags().StringVar(&uploadRegion, "region", "", "AWS region")
	uploadCmd.Flags().StringVar(&uploadRunID, "run-id", "", "Run ID to group artifacts under")
	uploadCmd.Flags().StringVar(&uploadDir, "dir", "", "Directory holding the artifacts (default: configured output folder)")
	uploadCmd.Flags().StringVar(&uploadConfig, "config", config.DefaultFileName, "Configuration file path")
}
