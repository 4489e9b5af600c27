package main

// configLoadedMsg reports the result of fetching GET /config at startup.
type configLoadedMsg struct {
	provider  string
	model     string
	resources []string
	err       error
}

// streamStartedMsg carries the channel the Update loop pumps frames from
// for one in-flight question.
type streamStartedMsg struct {
	frames <-chan streamEvent
	err    error
}

// streamEvent is one decoded SSE frame surfaced to the bubbletea loop.
type streamEvent struct {
	kind string // "meta" | "delta" | "tool" | "done" | "error" | "closed"
	text string
	tool string
	err  error
}

// nextFrameMsg wraps one streamEvent read off the channel, plus the
// channel itself so Update can keep draining it.
type nextFrameMsg struct {
	event  streamEvent
	frames <-chan streamEvent
}
