package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	slog.Info("btca terminal starting up")

	serverFlag := flag.String("server", "", "btca server base URL (default: $BTCA_SERVER or http://localhost:8080)")
	themeFlag := flag.String("theme", "", "UI theme (cyan, matrix, amber, cyberpunk, ice, dracula, fire)")
	listThemes := flag.Bool("list-themes", false, "List all available themes")
	flag.Parse()

	if *listThemes {
		fmt.Println("Available themes:")
		for _, theme := range ListThemes() {
			fmt.Printf("  - %s\n", theme)
		}
		os.Exit(0)
	}

	serverURL := *serverFlag
	if serverURL == "" {
		serverURL = os.Getenv("BTCA_SERVER")
	}
	if serverURL == "" {
		serverURL = "http://localhost:8080"
	}

	selectedTheme := *themeFlag
	if selectedTheme == "" {
		selectedTheme = os.Getenv("BTCA_THEME")
	}
	if selectedTheme == "" {
		selectedTheme = "cyan"
	}

	theme := ThemeName(selectedTheme)
	validTheme := false
	for _, t := range ListThemes() {
		if t == theme {
			validTheme = true
			break
		}
	}
	if !validTheme {
		fmt.Printf("Invalid theme '%s'. Use --list-themes to see available options.\n", theme)
		os.Exit(1)
	}

	client := newSSEClient(serverURL)

	p := tea.NewProgram(initialModel(theme, client), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("error running program", "error", err)
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
	slog.Info("btca terminal shut down successfully")
}
