package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fulfillment",
	Short: "Order fulfillment orchestration service",
	Long:  `Routes customer orders through the factory's fulfillment scenarios and tracks every downstream order to completion`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
