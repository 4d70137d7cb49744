package feed

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/impostorgame/internal/testutil"
)

type RedisBusSuite struct {
	suite.Suite
	server  *miniredis.Miniredis
	client  *redis.Client
	hubs    *HubManager
	bus     *RedisBus
	cancel  context.CancelFunc
	stopped chan error
}

func TestRedisBusSuite(t *testing.T) {
	suite.Run(t, new(RedisBusSuite))
}

func (s *RedisBusSuite) SetupTest() {
	s.server = miniredis.RunT(s.T())
	s.client = redis.NewClient(&redis.Options{Addr: s.server.Addr()})
	s.hubs = NewHubManager(testutil.NopLogger())
	s.bus = NewRedisBus(s.client, NewBroadcaster(s.hubs, testutil.NopLogger()), testutil.NopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.stopped = make(chan error, 1)
	go func() { s.stopped <- s.bus.Run(ctx) }()

	select {
	case <-s.bus.Ready():
	case err := <-s.stopped:
		s.T().Fatalf("bus stopped before subscribing: %v", err)
	case <-time.After(2 * time.Second):
		s.T().Fatal("bus did not subscribe")
	}
}

func (s *RedisBusSuite) TearDownTest() {
	s.cancel()
	select {
	case err := <-s.stopped:
		s.NoError(err)
	case <-time.After(2 * time.Second):
		s.T().Error("bus did not stop")
	}
	s.hubs.Close()
	_ = s.client.Close()
}

func (s *RedisBusSuite) TestChannel() {
	s.Equal("impostor:events:ABCD", s.bus.Channel("ABCD"))
}

func (s *RedisBusSuite) TestPublishReachesLocalSubscribers() {
	hub, client := s.hubs.Subscribe("ABCD", "p1", "websocket")
	waitForClients(s.T(), hub, 1)

	s.bus.Publish(context.Background(), votingEvent())

	msg := receive(s.T(), client)
	s.Equal("vote_cast", msg.Event)
	s.Contains(string(msg.Data), `"status":"VOTING"`)
}

func (s *RedisBusSuite) TestEventsFromAnotherNodeAreDelivered() {
	hub, client := s.hubs.Subscribe("ABCD", "", "sse")
	waitForClients(s.T(), hub, 1)

	payload, err := EncodeEvent(votingEvent())
	s.Require().NoError(err)
	s.server.Publish("impostor:events:ABCD", string(payload))

	msg := receive(s.T(), client)
	s.Equal("vote_cast", msg.Event)
	s.JSONEq(string(payload), string(msg.Data))
}

func (s *RedisBusSuite) TestMalformedMessagesAreDropped() {
	hub, client := s.hubs.Subscribe("ABCD", "", "sse")
	waitForClients(s.T(), hub, 1)

	s.server.Publish("impostor:events:ABCD", "not json")
	s.server.Publish("impostor:events:ABCD", `{"room_code":"ABCD"}`)

	payload, err := EncodeEvent(votingEvent())
	s.Require().NoError(err)
	s.server.Publish("impostor:events:ABCD", string(payload))

	msg := receive(s.T(), client)
	s.Equal("vote_cast", msg.Event, "malformed messages must be skipped")
}

func TestRedisBus_PublishFallsBackToLocalDelivery(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr(), MaxRetries: -1})
	defer client.Close()
	hubs := NewHubManager(testutil.NopLogger())
	defer hubs.Close()
	bus := NewRedisBus(client, NewBroadcaster(hubs, testutil.NopLogger()), testutil.NopLogger())

	hub, sub := hubs.Subscribe("ABCD", "p1", "sse")
	waitForClients(t, hub, 1)
	server.Close()

	bus.Publish(context.Background(), votingEvent())

	msg := receive(t, sub)
	assert.Equal(t, "vote_cast", msg.Event)
}

func TestRedisBus_DeliversLocallyWhenNotSubscribed(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()
	hubs := NewHubManager(testutil.NopLogger())
	defer hubs.Close()
	bus := NewRedisBus(client, NewBroadcaster(hubs, testutil.NopLogger()), testutil.NopLogger())

	hub, sub := hubs.Subscribe("ABCD", "p1", "sse")
	waitForClients(t, hub, 1)

	// Redis is healthy but no node is listening
	require.False(t, bus.Listening())
	bus.Publish(context.Background(), votingEvent())

	msg := receive(t, sub)
	assert.Equal(t, "vote_cast", msg.Event)
}

func TestRedisBus_DeliversLocallyAfterRunStops(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()
	hubs := NewHubManager(testutil.NopLogger())
	defer hubs.Close()
	bus := NewRedisBus(client, NewBroadcaster(hubs, testutil.NopLogger()), testutil.NopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error, 1)
	go func() { stopped <- bus.Run(ctx) }()
	select {
	case <-bus.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("bus did not subscribe")
	}
	assert.True(t, bus.Listening())

	cancel()
	require.NoError(t, <-stopped)
	assert.False(t, bus.Listening())

	hub, sub := hubs.Subscribe("ABCD", "p1", "sse")
	waitForClients(t, hub, 1)
	bus.Publish(context.Background(), votingEvent())

	msg := receive(t, sub)
	assert.Equal(t, "vote_cast", msg.Event)
}

func TestRedisBus_RunFailsWhenServerDown(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr(), MaxRetries: -1})
	defer client.Close()
	server.Close()

	bus := NewRedisBus(client, NewBroadcaster(NewHubManager(testutil.NopLogger()), testutil.NopLogger()), testutil.NopLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.Error(t, bus.Run(ctx))
}
