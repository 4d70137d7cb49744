package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	var (
		jsonOutput bool
		count      int
	)

	cmd := &cobra.Command{
		Use:   "events <code>",
		Short: "Stream live events from a room",
		Long: `Connect to the room's event stream and print events as they happen.

The first event is always a snapshot of the room. After that:
  - player_joined: A player joined or rejoined
  - game_started: Roles were dealt and the first round began
  - turn_passed: The speaker finished their clue
  - round_finished: Everyone has spoken
  - new_round: The group chose another round of clues
  - voting_opened: The group chose to vote
  - vote_cast: A ballot was recorded
  - voting_resolved: Every ballot is in and the vote was counted
  - game_continued: The next round started after the results
  - game_over: A side has won
  - game_restarted: A new game was dealt to the same table

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]
			if _, err := actAs(code); err != nil {
				return err
			}
			return streamEvents(cmd, code, jsonOutput, count)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")
	cmd.Flags().IntVar(&count, "count", 0, "Disconnect after this many events (0 streams until interrupted)")

	return cmd
}

// SSEEvent represents a parsed SSE event
type SSEEvent struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
	Data  string    `json:"data"`
}

func streamEvents(cmd *cobra.Command, code string, jsonOutput bool, count int) error {
	out := cmd.OutOrStdout()
	endpoint := client.baseURL + "/api/v1/rooms/" + url.PathEscape(code) + "/events"

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if client.playerID != "" {
		req.Header.Set(PlayerHeader, client.playerID)
	}

	// No timeout for SSE
	httpClient := &http.Client{}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if !jsonOutput {
		_, _ = fmt.Fprintf(out, "Connected to room %s\n", code)
	}

	seen, err := readEvents(ctx, resp.Body, func(event, data string) {
		printEvent(out, event, data, jsonOutput)
	}, count)
	if err != nil {
		return err
	}

	if !jsonOutput {
		_, _ = fmt.Fprintf(out, "Disconnected after %d events\n", seen)
	}
	return nil
}

// readEvents parses an SSE stream, calling handle for each event until the
// stream ends, ctx is cancelled, or limit events have been seen.
func readEvents(ctx context.Context, r io.Reader, handle func(event, data string), limit int) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		currentEvent string
		dataLines    []string
		seen         int
	)

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, ":"):
			// keepalive comment
		case strings.HasPrefix(line, "event: "):
			currentEvent = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "":
			if currentEvent != "" {
				seen++
				handle(currentEvent, strings.Join(dataLines, "\n"))
				if limit > 0 && seen >= limit {
					return seen, nil
				}
			}
			currentEvent = ""
			dataLines = nil
		}
	}

	if err := scanner.Err(); err != nil {
		// Context cancellation is expected
		if ctx.Err() != nil {
			return seen, nil
		}
		return seen, fmt.Errorf("stream error: %w", err)
	}
	return seen, nil
}

func printEvent(w io.Writer, event, data string, jsonOutput bool) {
	now := time.Now()

	if jsonOutput {
		evt := SSEEvent{
			Time:  now,
			Event: event,
			Data:  data,
		}
		jsonData, _ := json.Marshal(evt)
		_, _ = fmt.Fprintln(w, string(jsonData))
		return
	}

	timestamp := now.Format("2006-01-02 15:04:05")
	displayData := strings.ReplaceAll(data, "\n", " ")
	if len(displayData) > 100 {
		displayData = displayData[:100] + "..."
	}
	_, _ = fmt.Fprintf(w, "[%s] %s: %s\n", timestamp, event, displayData)
}
