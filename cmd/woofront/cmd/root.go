// Package cmd provides the CLI commands for woofront.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Singh-Rishabh/WooFrontEnd/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "woofront",
	Short: "woofront - multi-tenant storefront gateway",
	Long: `woofront serves one storefront for every store of a WooCommerce multisite
network. Each browser session selects a store, and its GraphQL queries are
sent to that store's endpoint.

Quick start:
  1. Optionally create a config file: woofront.yaml
  2. Run: woofront start

Configuration:
  Config is loaded from woofront.yaml in the current directory,
  $HOME/.woofront/, or /etc/woofront/.

  Environment variables can override config values with the WOOFRONT_ prefix.
  Example: WOOFRONT_SERVER_HTTP_ADDR=:8080

Commands:
  start       Start the gateway
  stop        Stop the running gateway
  stores      List the stores of the directory
  slug        Derive store slugs from site URLs
  resolve     Show which endpoint a page render would bind
  reset       Remove durable session storage
  config      Print the effective configuration
  version     Print version information`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./woofront.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
