package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// loadConfigCmd fetches GET /config and GET /resources from the server
// so the banner/status line has something to show before the first
// question is asked.
func loadConfigCmd(client *sseClient) tea.Cmd {
	return func() tea.Msg {
		provider, model, resources, err := client.fetchConfig(context.Background())
		return configLoadedMsg{provider: provider, model: model, resources: resources, err: err}
	}
}

// startQuestionCmd opens the SSE stream for one question and hands the
// frame channel back to the Update loop.
func startQuestionCmd(client *sseClient, question string, resources []string) tea.Cmd {
	return func() tea.Msg {
		frames, err := client.streamQuestion(context.Background(), question, resources)
		return streamStartedMsg{frames: frames, err: err}
	}
}

// readNextFrameCmd drains exactly one streamEvent off frames. The model
// re-issues this after every nextFrameMsg to keep pumping the channel
// until it closes.
func readNextFrameCmd(frames <-chan streamEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-frames
		if !ok {
			return nextFrameMsg{event: streamEvent{kind: "closed"}, frames: nil}
		}
		return nextFrameMsg{event: event, frames: frames}
	}
}
