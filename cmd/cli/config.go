package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"github.com/sevigo/btca/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and manage btca configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active configuration as JSON",
	RunE: func(_ *cobra.Command, _ []string) error {
		deps, err := newCLIDeps()
		if err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}

		snap := deps.Config.Snapshot()
		data, err := json.Marshal(struct {
			Provider             string                     `json:"provider"`
			Model                string                     `json:"model"`
			ResourcesDirectory   string                     `json:"resourcesDirectory"`
			CollectionsDirectory string                     `json:"collectionsDirectory"`
			Resources            []config.ResourceDefinition `json:"resources"`
		}{snap.Provider, snap.Model, snap.ResourcesDir, snap.CollectionsDir, snap.Resources})
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}

		fmt.Println(string(pretty.Color(pretty.Pretty(data), nil)))
		return nil
	},
}

var (
	setModelProvider string
	setModelName     string
)

var configSetModelCmd = &cobra.Command{
	Use:   "set-model",
	Short: "Update the active provider/model",
	RunE: func(_ *cobra.Command, _ []string) error {
		deps, err := newCLIDeps()
		if err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}

		if err := deps.Config.UpdateModel(setModelProvider, setModelName); err != nil {
			return fmt.Errorf("failed to update model: %w", err)
		}

		successColor.Printf("Active model set to %s/%s.\n", setModelProvider, setModelName)
		return nil
	},
}

func init() {
	configSetModelCmd.Flags().StringVar(&setModelProvider, "provider", "", "provider id")
	configSetModelCmd.Flags().StringVar(&setModelName, "model", "", "model name")
	_ = configSetModelCmd.MarkFlagRequired("provider")
	_ = configSetModelCmd.MarkFlagRequired("model")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetModelCmd)
}
