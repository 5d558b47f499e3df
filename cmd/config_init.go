package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/voltcert/certsync/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and scaffold configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config.yaml with default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")

		if _, err := os.Stat(path); err == nil {
			return eris.Errorf("%s already exists", path)
		}

		defaults := config.Config{
			Store: config.StoreConfig{
				Driver:      "sqlite",
				DatabaseURL: "certsync.db",
			},
			Server: config.ServerConfig{
				Port:           8080,
				AllowedOrigins: []string{"*"},
				RateLimitRPS:   20,
				RateLimitBurst: 40,
			},
			Import: config.ImportConfig{MaxConcurrent: 5},
			Log:    config.LogConfig{Level: "info", Format: "json"},
		}

		data, err := yaml.Marshal(defaults)
		if err != nil {
			return eris.Wrap(err, "config init: marshal")
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return eris.Wrap(err, "config init: write")
		}

		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return eris.Wrap(err, "config show: marshal")
		}
		fmt.Print(string(data))
		return nil
	},
}

func init() {
	configInitCmd.Flags().String("file", "config.yaml", "output path")

	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}
