package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// sseClient is a minimal client for btca's HTTP surface, used instead of
// pulling in internal/server/internal/sse so the terminal binary only
// depends on the wire contract, not the server's internals.
type sseClient struct {
	baseURL string
	http    *http.Client
}

func newSSEClient(baseURL string) *sseClient {
	return &sseClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 0},
	}
}

// fetchConfig reads GET /config for the provider/model banner, and
// GET /resources for the default resource set.
func (c *sseClient) fetchConfig(ctx context.Context) (provider, model string, resources []string, err error) {
	var cfg struct {
		Provider string `json:"provider"`
		Model    string `json:"model"`
	}
	if err := c.getJSON(ctx, "/config", &cfg); err != nil {
		return "", "", nil, err
	}

	var res struct {
		Resources []struct {
			Name string `json:"name"`
		} `json:"resources"`
	}
	if err := c.getJSON(ctx, "/resources", &res); err != nil {
		return "", "", nil, err
	}
	names := make([]string, len(res.Resources))
	for i, r := range res.Resources {
		names[i] = r.Name
	}
	return cfg.Provider, cfg.Model, names, nil
}

func (c *sseClient) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

type questionBody struct {
	Question  string   `json:"question"`
	Resources []string `json:"resources,omitempty"`
}

// streamQuestion opens POST /question/stream and returns a channel the
// caller drains until it closes (the stream's done/error frame, or the
// connection failing, or ctx being cancelled).
func (c *sseClient) streamQuestion(ctx context.Context, question string, resources []string) (<-chan streamEvent, error) {
	body, err := json.Marshal(questionBody{Question: question, Resources: resources})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/question/stream", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("stream request returned %d: %s", resp.StatusCode, string(body))
	}

	out := make(chan streamEvent)
	go func() {
		defer close(out)
		defer resp.Body.Close()
		decodeSSE(resp.Body, out)
	}()
	return out, nil
}

// decodeSSE splits r into "event: X\ndata: Y\n\n" frames and translates
// each into a streamEvent, matching internal/sse's wire shape.
func decodeSSE(r io.Reader, out chan<- streamEvent) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var event, data string
	flush := func() {
		if event == "" {
			return
		}
		ev, ok := translateFrame(event, data)
		if ok {
			out <- ev
		}
		event, data = "", ""
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
	flush()
	if err := scanner.Err(); err != nil {
		out <- streamEvent{kind: "error", err: err}
	}
}

func translateFrame(event, data string) (streamEvent, bool) {
	switch event {
	case "text.delta":
		var payload struct {
			Delta string `json:"delta"`
		}
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			return streamEvent{}, false
		}
		return streamEvent{kind: "delta", text: payload.Delta}, true
	case "tool.updated":
		var payload struct {
			Tool  string `json:"tool"`
			State struct {
				Status string `json:"status"`
			} `json:"state"`
		}
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			return streamEvent{}, false
		}
		return streamEvent{kind: "tool", tool: fmt.Sprintf("%s (%s)", payload.Tool, payload.State.Status)}, true
	case "done":
		var payload struct {
			Text string `json:"text"`
		}
		_ = json.Unmarshal([]byte(data), &payload)
		return streamEvent{kind: "done", text: payload.Text}, true
	case "error":
		var payload struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal([]byte(data), &payload)
		return streamEvent{kind: "error", err: fmt.Errorf("%s", payload.Message)}, true
	case "meta":
		return streamEvent{kind: "meta"}, true
	default:
		return streamEvent{}, false
	}
}
