package main

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/Beelzebub2/mod-side-checker/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	configPath  string
	configForce bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	Long: `Manage the modchecker configuration file. The configuration controls folders,
worker limits, registry pacing, export file names and S3 uploads. Environment
variables prefixed MODCHECKER_ override file values.

Examples:
  modchecker config init
  modchecker config show
  modchecker config validate`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configPath); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
		}

		if err := config.Default().Save(configPath); err != nil {
			return err
		}
		fmt.Printf("Wrote default configuration to %s\n", configPath)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long:  `Print the effective configuration after applying file values and environment overrides.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, created, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if created {
			fmt.Printf("Created default configuration at %s\n\n", configPath)
		}

		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to render configuration: %w", err)
		}
		fmt.Println(string(data))
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
		fmt.Printf("Configuration %s is valid\n", configPath)
		return nil
	},
}

func init() {
	configCmd.PersistentFlags().StringVar(&configPath, "file", config.DefaultFileName, "Configuration file path")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing configuration file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}
