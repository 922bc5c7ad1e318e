package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"qrlink/internal/config"
)

// Cfg holds the loaded configuration, available to every subcommand.
var Cfg *config.Config

// RootCmd is the base command. Subcommands (run-server, create, stats,
// migrate) register themselves via their own init() functions to avoid
// import cycles.
var RootCmd = &cobra.Command{
	Use:   "qrlink",
	Short: "A QR short-link service",
	Long: `A QR short-link service: create static or dynamic QR codes,
serve their redirects, and aggregate visit analytics per code.`,
}

// Execute is the entry point called from main.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	var err error
	Cfg, err = config.LoadConfig()
	if err != nil {
		logrus.Warnf("Problem loading configuration: %v. Using default values.", err)
	}
}
