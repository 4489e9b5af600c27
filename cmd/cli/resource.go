package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sevigo/btca/internal/config"
)

var resourceCmd = &cobra.Command{
	Use:   "resource",
	Short: "Manage configured documentation resources",
}

var resourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured resources",
	RunE: func(_ *cobra.Command, _ []string) error {
		deps, err := newCLIDeps()
		if err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}

		snap := deps.Config.Snapshot()
		if len(snap.Resources) == 0 {
			infoColor.Println("No resources configured.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "NAME\tTYPE\tURL\tBRANCH\tSEARCH PATH")
		for _, r := range snap.Resources {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Name, r.Type, r.URL, r.Branch, r.SearchPath)
		}
		return w.Flush()
	},
}

var (
	addName       string
	addType       string
	addURL        string
	addBranch     string
	addSearchPath string
	addNotes      string
)

var resourceAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new git resource",
	RunE: func(_ *cobra.Command, _ []string) error {
		deps, err := newCLIDeps()
		if err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}

		def := config.ResourceDefinition{
			Name:         addName,
			Type:         addType,
			URL:          addURL,
			Branch:       addBranch,
			SearchPath:   addSearchPath,
			SpecialNotes: addNotes,
		}
		if err := deps.Config.AddResource(def); err != nil {
			return fmt.Errorf("failed to add resource: %w", err)
		}

		successColor.Printf("Resource %q added.\n", addName)
		return nil
	},
}

var resourceRemoveCmd = &cobra.Command{
	Use:   "remove [name]",
	Short: "Remove a configured resource",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		deps, err := newCLIDeps()
		if err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}

		removed, err := deps.Config.RemoveResource(args[0])
		if err != nil {
			return fmt.Errorf("failed to remove resource: %w", err)
		}
		if !removed {
			warnColor.Printf("No resource named %q was configured.\n", args[0])
			return nil
		}

		successColor.Printf("Resource %q removed.\n", args[0])
		return nil
	},
}

func init() {
	resourceAddCmd.Flags().StringVar(&addName, "name", "", "resource name")
	resourceAddCmd.Flags().StringVar(&addType, "type", "git", "resource type (only \"git\" is supported)")
	resourceAddCmd.Flags().StringVar(&addURL, "url", "", "HTTPS git remote URL")
	resourceAddCmd.Flags().StringVar(&addBranch, "branch", "main", "branch to track")
	resourceAddCmd.Flags().StringVar(&addSearchPath, "search-path", "", "subdirectory to scope the search to")
	resourceAddCmd.Flags().StringVar(&addNotes, "notes", "", "special notes folded into the agent's instructions")
	_ = resourceAddCmd.MarkFlagRequired("name")
	_ = resourceAddCmd.MarkFlagRequired("url")

	resourceCmd.AddCommand(resourceListCmd)
	resourceCmd.AddCommand(resourceAddCmd)
	resourceCmd.AddCommand(resourceRemoveCmd)
}
