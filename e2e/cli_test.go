package e2e_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/impostorgame/internal/api"
	"github.com/mcoot/impostorgame/internal/api/response"
	"github.com/mcoot/impostorgame/internal/cli"
	"github.com/mcoot/impostorgame/internal/factory"
	"github.com/mcoot/impostorgame/internal/testutil"
)

// cliRunner runs CLI commands in-process as one player
type cliRunner struct {
	serverURL string
	stateDir  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()
	return &cliRunner{
		serverURL: serverURL,
		stateDir:  filepath.Join(t.TempDir(), "state"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--state-dir", r.stateDir,
		"--output", "json",
	}, args...)

	var out bytes.Buffer
	cmd := cli.NewRootCmd()
	cmd.SetArgs(fullArgs)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func runJSON[T any](t *testing.T, r *cliRunner, args ...string) T {
	t.Helper()
	output, err := r.run(args...)
	require.NoError(t, err, "output: %s", output)

	var v T
	require.NoError(t, json.Unmarshal([]byte(output), &v), "output: %s", output)
	return v
}

// testServer serves the API over a real listener
type testServer struct {
	app *factory.TestApp
	url string
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()
	t.Setenv("IMPOSTOR_PLAYER", "")

	app := factory.NewTestApp()
	require.NoError(t, app.LoadTestWords(t.Context()))

	server := httptest.NewServer(api.NewRouter(api.RouterConfig{
		Logger:         testutil.NopLogger(),
		RoomController: app.RoomController,
		HubManager:     app.HubManager,
		Clock:          app.Clock,
		HealthCheck:    app.HealthCheck,
	}))
	t.Cleanup(func() {
		app.HubManager.Close()
		server.Close()
		_ = app.Close()
	})

	return &testServer{app: app, url: server.URL}
}

type healthResponse struct {
	Status string `json:"status"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	cli := newCLIRunner(t, ts.url)

	resp := runJSON[healthResponse](t, cli, "health")
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_ThemeList(t *testing.T) {
	ts := startTestServer(t)
	cli := newCLIRunner(t, ts.url)

	resp := runJSON[response.ThemesResponse](t, cli, "theme", "list")
	assert.Equal(t, []string{"Comidas", "Lugares"}, resp.Themes)
}

func TestCLI_RoomCommands(t *testing.T) {
	ts := startTestServer(t)
	host := newCLIRunner(t, ts.url)

	ts.app.MockRandom.QueueString("ROOM")
	created := runJSON[response.CreateRoomResponse](t, host, "room", "create", "--theme", "comidas", "--impostors", "1")
	assert.Equal(t, "ROOM", created.Code)
	assert.Equal(t, "WAITING", created.Room.Status)
	assert.Nil(t, created.Room.SecretWord)

	joined := runJSON[response.JoinResponse](t, host, "room", "join", "room", "Ana")
	assert.Equal(t, "Ana", joined.Name)
	assert.True(t, joined.IsHost)

	// The saved player id is used for later commands
	room := runJSON[response.Room](t, host, "room", "get", "ROOM")
	require.NotNil(t, room.Me)
	assert.Equal(t, joined.PlayerID, room.Me.PlayerID)
	require.Len(t, room.Players, 1)

	// Rejoining under the same name returns the same player
	again := runJSON[response.JoinResponse](t, host, "room", "join", "ROOM", "Ana")
	assert.Equal(t, joined.PlayerID, again.PlayerID)
}

func TestCLI_Errors(t *testing.T) {
	ts := startTestServer(t)
	cli := newCLIRunner(t, ts.url)

	output, err := cli.run("room", "get", "NOPE")
	require.Error(t, err)
	assert.Contains(t, output, "ROOM_NOT_FOUND")

	output, err = cli.run("room", "create", "--theme", "Deportes")
	require.Error(t, err)
	assert.Contains(t, output, "NO_WORDS_AVAILABLE")

	ts.app.MockRandom.QueueString("SOLO")
	runJSON[response.CreateRoomResponse](t, cli, "room", "create", "--theme", "Lugares")
	runJSON[response.JoinResponse](t, cli, "room", "join", "SOLO", "Ana")

	output, err = cli.run("game", "start", "SOLO")
	require.Error(t, err)
	assert.Contains(t, output, "INSUFFICIENT_PLAYERS")

	output, err = cli.run("game", "vote", "SOLO")
	require.Error(t, err)
	assert.Contains(t, output, "--skip")
}

func TestCLI_EventsSnapshot(t *testing.T) {
	ts := startTestServer(t)
	cli := newCLIRunner(t, ts.url)

	ts.app.MockRandom.QueueString("FEED")
	runJSON[response.CreateRoomResponse](t, cli, "room", "create", "--theme", "Comidas")

	output, err := cli.run("events", "FEED", "--json", "--count", "1")
	require.NoError(t, err, "output: %s", output)

	var event struct {
		Event string `json:"event"`
		Data  string `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(output)), &event))
	assert.Equal(t, "snapshot", event.Event)
	assert.Contains(t, event.Data, `"code":"FEED"`)
}

func TestCLI_FullGameFlow(t *testing.T) {
	ts := startTestServer(t)

	names := []string{"Ana", "Beto", "Caro", "Dani"}
	players := make([]*cliRunner, len(names))
	ids := make([]string, len(names))

	// Each player has their own state dir, like separate machines
	ts.app.MockRandom.QueueString("PLAY")
	players[0] = newCLIRunner(t, ts.url)
	runJSON[response.CreateRoomResponse](t, players[0], "room", "create", "--theme", "Comidas", "--impostors", "1")

	for i, name := range names {
		if players[i] == nil {
			players[i] = newCLIRunner(t, ts.url)
		}
		joined := runJSON[response.JoinResponse](t, players[i], "room", "join", "PLAY", name)
		ids[i] = joined.PlayerID
	}

	// With no queued randomness the first player is the impostor
	started := runJSON[response.Room](t, players[0], "game", "start", "PLAY")
	assert.Equal(t, "PLAYING", started.Status)
	require.NotNil(t, started.Me)
	assert.True(t, started.Me.IsImpostor)
	assert.Nil(t, started.SecretWord)

	betoView := runJSON[response.Room](t, players[1], "room", "get", "PLAY")
	require.NotNil(t, betoView.SecretWord)
	assert.Equal(t, "Empanadas", *betoView.SecretWord)
	assert.False(t, betoView.Me.IsImpostor)

	// Everyone passes in turn; a stale pass is rejected
	for i := range players {
		runJSON[response.Room](t, players[i], "game", "pass", "PLAY", "--expect", strconv.Itoa(i))
	}
	output, err := players[0].run("game", "pass", "PLAY", "--expect", "0")
	require.Error(t, err)
	assert.Contains(t, output, "INVALID_STATE")

	voting := runJSON[response.Room](t, players[2], "game", "decide", "PLAY", "vote")
	assert.Equal(t, "VOTING", voting.Status)
	require.NotNil(t, voting.Voting)
	assert.Equal(t, 4, voting.Voting.AliveCount)

	// Ana skips and the rest vote her out
	vote := runJSON[response.VoteResponse](t, players[0], "game", "vote", "PLAY", "--skip")
	assert.False(t, vote.Resolved)
	for i := 1; i < len(players); i++ {
		vote = runJSON[response.VoteResponse](t, players[i], "game", "vote", "PLAY", ids[0])
	}
	assert.True(t, vote.Resolved)
	require.NotNil(t, vote.EliminatedID)
	assert.Equal(t, ids[0], *vote.EliminatedID)
	require.NotNil(t, vote.Winner)
	assert.Equal(t, "VILLAGERS", *vote.Winner)
	assert.Equal(t, "GAME_OVER", vote.Status)

	// Everything is revealed at the end
	final := runJSON[response.Room](t, players[3], "room", "get", "PLAY")
	require.NotNil(t, final.SecretWord)
	assert.Equal(t, "Empanadas", *final.SecretWord)
	require.NotNil(t, final.Players[0].IsImpostor)
	assert.True(t, *final.Players[0].IsImpostor)

	restarted := runJSON[response.Room](t, players[0], "game", "restart", "PLAY")
	assert.Equal(t, "PLAYING", restarted.Status)
	assert.Nil(t, restarted.Winner)
}
