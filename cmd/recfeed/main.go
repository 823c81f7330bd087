// Package main is the recfeed entry point: the HTTP API server plus
// operator commands for refresh, cleanup and fixture ingestion.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/recfeed/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "recfeed",
	Short: "Content recommendation engine",
	Long: `recfeed turns per-user interest profiles and a pool of recently ingested
content into a bounded, ranked feed of unread recommendations.`,
	SilenceUsage: true,
}

var envFlag string

func init() {
	rootCmd.PersistentFlags().StringVar(&envFlag, "env", "", "Config environment (local, dev, docker, prod); defaults to $ENV")
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func currentEnv() string {
	if envFlag != "" {
		return envFlag
	}
	return config.GetEnv()
}
