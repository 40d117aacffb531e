package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Long:  `Display detailed version information including build details and runtime information.`,
	Run:   runVersion,
}

func runVersion(cmd *cobra.Command, args []string) {
	fmt.Printf("Mod Side Checker\n")
	fmt.Printf("================\n\n")

	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", commit)
	fmt.Printf("Build Date: %s\n", date)
	fmt.Printf("Go Version: %s\n", runtime.Version())
	fmt.Printf("Platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)

	fmt.Printf("\nFeatures:\n")
	fmt.Printf("  ✓ Modrinth registry side classification\n")
	fmt.Printf("  ✓ Concurrent lookups with a bounded worker pool\n")
	fmt.Printf("  ✓ Multiple output formats (JSON, JSONL, CSV, text)\n")
	fmt.Printf("  ✓ Graceful interrupts with partial results\n")
	fmt.Printf("  ✓ Server and client pack archives\n")
	fmt.Printf("  ✓ Resumable run state with file locking\n")
	fmt.Printf("  ✓ Artifact uploads to AWS S3\n")
}
