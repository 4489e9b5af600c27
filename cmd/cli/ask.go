package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/sevigo/btca/internal/agent"
)

var (
	askResources []string
	askVerbose   bool
	askQuiet     bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a one-shot question against a collection, no HTTP hop",
	Long: `Ask drives the Agent Loop directly against the local resource cache and
collection assembler, the same components the server uses, without going
through the HTTP request pipeline.

Examples:
  btca-cli ask "how do I configure retries?"
  btca-cli ask --resource docs --resource sdk "what's the auth flow?"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringSliceVarP(&askResources, "resource", "r", nil, "resource name to include (repeatable); defaults to every configured resource")
	askCmd.Flags().BoolVarP(&askVerbose, "verbose", "v", false, "print step timing")
	askCmd.Flags().BoolVarP(&askQuiet, "quiet", "q", false, "suppress resource clone/update log lines")
}

func runAsk(_ *cobra.Command, args []string) error {
	question := args[0]
	timer := newStepTimer(3, askVerbose)

	titleColor.Println("btca ask")
	dimColor.Printf("   %s\n\n", question)

	timer.step("Loading configuration")
	deps, err := newCLIDeps()
	if err != nil {
		return fmt.Errorf("failed to initialize: %w\n\nTip: check that btca.config.jsonc exists and is valid", err)
	}
	snap := deps.Config.Snapshot()
	names := askResources
	if len(names) == 0 {
		for _, r := range snap.Resources {
			names = append(names, r.Name)
		}
	}
	timer.done(fmt.Sprintf("resources: %s", strings.Join(names, ", ")))

	timer.step("Assembling collection")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	col, err := deps.Collection.Load(ctx, names, askQuiet)
	if err != nil {
		return fmt.Errorf("failed to assemble collection: %w", err)
	}
	timer.done(fmt.Sprintf("collection key: %s", col.Key))

	timer.step("Running agent")
	result, err := deps.Agent.Run(ctx, agent.Options{
		ProviderID:        snap.Provider,
		ModelID:           snap.Model,
		CollectionPath:    col.Path,
		AgentInstructions: col.AgentInstructions,
		Question:          question,
	})
	if err != nil {
		return fmt.Errorf("agent run failed: %w", err)
	}
	if len(result.Events) > 0 {
		if last := result.Events[len(result.Events)-1]; last.Type == agent.EventError && last.Err != nil {
			errorColor.Printf("\nError: %s\n", last.Err.Message)
			if last.Err.Hint != "" {
				dimColor.Printf("Hint: %s\n", last.Err.Hint)
			}
			return fmt.Errorf("agent returned an error event")
		}
	}
	timer.done()

	fmt.Println()
	fmt.Print(renderAnswer(result.Answer))
	return nil
}

// renderAnswer renders the agent's cited markdown answer for a terminal,
// falling back to the raw text if glamour has no renderer available for
// this terminal (e.g. output redirected to a file).
func renderAnswer(answer string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return answer + "\n"
	}
	out, err := renderer.Render(answer)
	if err != nil {
		return answer + "\n"
	}
	return out
}
