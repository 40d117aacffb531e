package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	version = "1.0.0"
	commit  = "dev"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "modchecker",
	Short: "Minecraft mod side checker",
	Long: `Mod Side Checker (modchecker) classifies every mod in a Modrinth modpack by the
side it is required on (client, server or both) and builds side-specific packs.

Features:
  - Classify complete modpacks against the Modrinth registry
  - Concurrent lookups with a configurable worker pool
  - Multiple output formats (JSON, JSONL, CSV, text)
  - Graceful interrupts with partial results
  - Side-filtered server and client pack archives
  - Artifact uploads to AWS S3

Examples:
  modchecker check -m pack.mrpack -o results.csv
  modchecker check -m input/ -o results.json --format json --workers 6
  modchecker pack --results results.json --type server
  modchecker info pack.mrpack
  modchecker config init`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Mod Side Checker v%s\n", version)
		fmt.Println("Use 'modchecker --help' for available commands")
		fmt.Println("Use 'modchecker check --help' for classification options")
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(packCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
