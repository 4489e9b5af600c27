package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "btca-cli",
	Short: "btca-cli is a CLI tool for btca",
	Long:  `A command-line interface for managing btca resources/config and asking one-shot questions.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(resourceCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(askCmd)
}
