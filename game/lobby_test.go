package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type lobbyFixture struct {
	l          *lobby
	ticker     chan time.Time
	pingTicker chan time.Time
}

func startLobby(t *testing.T, newRoom RoomFactory) lobbyFixture {
	t.Helper()
	ticker := make(chan time.Time)
	pingTicker := make(chan time.Time)

	creator := &MockPeriodicTickerChannelCreator{}
	creator.On("Create", time.Second).Return(ticker).Once()
	creator.On("Create", time.Second*30).Return(pingTicker).Once()

	l := NewLobby(creator, newRoom)
	started := make(chan struct{})
	go l.LobbyActor(started)
	<-started

	return lobbyFixture{l: l, ticker: ticker, pingTicker: pingTicker}
}

func newLobbyMockRoom(desc RoomDescription) *MockRoom {
	r := &MockRoom{}
	r.On("SetParentLobby", mock.Anything).Return().Once()
	r.On("Description").Return(desc).Once()
	r.On("GameLoop").Return().Once()
	return r
}

func TestLobby_CreatesRoomOnFirstJoinOnly(t *testing.T) {
	t.Parallel()
	room := newLobbyMockRoom(RoomDescription{Id: "a", MaxPlayers: 2, DisplayPot: 10})
	joins := make(chan roomJoinRequest, 2)
	room.On("RequestJoin", mock.Anything).Run(func(args mock.Arguments) {
		joins <- args.Get(0).(roomJoinRequest)
	}).Return().Twice()

	factoryCalls := 0
	fx := startLobby(t, func(id string) Room {
		factoryCalls++
		assert.Equal(t, "a", id)
		return room
	})

	alice := newScriptedPlayer("alice")
	bob := newScriptedPlayer("bob")
	fx.l.ForwardPlayerJoinRequestToRoom(context.Background(), NewRoomJoinRequest("a", alice))
	fx.l.ForwardPlayerJoinRequestToRoom(context.Background(), NewRoomJoinRequest("a", bob))

	first := <-joins
	second := <-joins
	assert.Equal(t, "a", first.roomId)
	assert.Equal(t, "a", second.roomId)

	assert.Equal(t, 1, factoryCalls)
	room.AssertExpectations(t)
}

func TestLobby_RemoveRoomClosesIt(t *testing.T) {
	t.Parallel()
	room := newLobbyMockRoom(RoomDescription{Id: "a"})
	joined := make(chan struct{})
	room.On("RequestJoin", mock.Anything).Run(func(mock.Arguments) {
		close(joined)
	}).Return().Once()
	closed := make(chan struct{})
	room.On("CloseAndRelease").Run(func(mock.Arguments) {
		close(closed)
	}).Return().Once()

	fx := startLobby(t, func(id string) Room { return room })
	fx.l.ForwardPlayerJoinRequestToRoom(context.Background(), NewRoomJoinRequest("a", newScriptedPlayer("alice")))
	<-joined

	fx.l.RemoveRoom("a")
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("room was never closed")
	}

	assert.Empty(t, fx.l.GetPublicGames(context.Background()))
	room.AssertExpectations(t)
}

func TestLobby_RemovingUnknownRoomIsANoop(t *testing.T) {
	t.Parallel()
	fx := startLobby(t, func(id string) Room {
		t.Fatal("factory must not run")
		return nil
	})

	fx.l.RemoveRoom("ghost")

	// the actor survives and still answers queries
	assert.Empty(t, fx.l.GetPublicGames(context.Background()))
}

func TestLobby_TicksAndPingsFanOutToEveryRoom(t *testing.T) {
	t.Parallel()
	room := newLobbyMockRoom(RoomDescription{Id: "a"})
	joined := make(chan struct{})
	room.On("RequestJoin", mock.Anything).Run(func(mock.Arguments) {
		close(joined)
	}).Return().Once()

	now := time.Now()
	ticked := make(chan struct{})
	room.On("Tick", now).Run(func(mock.Arguments) {
		close(ticked)
	}).Return().Once()
	pinged := make(chan struct{})
	room.On("PingPlayers").Run(func(mock.Arguments) {
		close(pinged)
	}).Return().Once()

	fx := startLobby(t, func(id string) Room { return room })
	fx.l.ForwardPlayerJoinRequestToRoom(context.Background(), NewRoomJoinRequest("a", newScriptedPlayer("alice")))
	<-joined

	fx.ticker <- now
	fx.pingTicker <- time.Now()

	select {
	case <-ticked:
	case <-time.After(time.Second):
		t.Fatal("room never ticked")
	}
	select {
	case <-pinged:
	case <-time.After(time.Second):
		t.Fatal("room never pinged")
	}
	room.AssertExpectations(t)
}

func TestLobby_DescriptionUpdatesAreServed(t *testing.T) {
	t.Parallel()
	initial := RoomDescription{Id: "a", PlayersCount: 1, MaxPlayers: 2, DisplayPot: 10}
	room := newLobbyMockRoom(initial)
	joined := make(chan struct{})
	room.On("RequestJoin", mock.Anything).Run(func(mock.Arguments) {
		close(joined)
	}).Return().Once()

	fx := startLobby(t, func(id string) Room { return room })
	fx.l.ForwardPlayerJoinRequestToRoom(context.Background(), NewRoomJoinRequest("a", newScriptedPlayer("alice")))
	<-joined

	require.Equal(t, []RoomDescription{initial}, fx.l.GetPublicGames(context.Background()))

	updated := RoomDescription{Id: "a", PlayersCount: 2, MaxPlayers: 2, Started: true, DisplayPot: 20}
	fx.l.RequestUpdateDescription(updated)

	require.Eventually(t, func() bool {
		games := fx.l.GetPublicGames(context.Background())
		return len(games) == 1 && games[0] == updated
	}, time.Second, time.Millisecond*5)
}

func TestLobby_StaleDescriptionForRemovedRoomIsDropped(t *testing.T) {
	t.Parallel()
	room := newLobbyMockRoom(RoomDescription{Id: "a"})
	joined := make(chan struct{})
	room.On("RequestJoin", mock.Anything).Run(func(mock.Arguments) {
		close(joined)
	}).Return().Once()
	closed := make(chan struct{})
	room.On("CloseAndRelease").Run(func(mock.Arguments) {
		close(closed)
	}).Return().Once()

	fx := startLobby(t, func(id string) Room { return room })
	fx.l.ForwardPlayerJoinRequestToRoom(context.Background(), NewRoomJoinRequest("a", newScriptedPlayer("alice")))
	<-joined

	fx.l.RemoveRoom("a")
	<-closed

	// a description the room queued before dying must not resurrect it
	fx.l.RequestUpdateDescription(RoomDescription{Id: "a", PlayersCount: 1})
	assert.Empty(t, fx.l.GetPublicGames(context.Background()))

	require.Eventually(t, func() bool {
		return len(fx.l.GetPublicGames(context.Background())) == 0
	}, time.Second, time.Millisecond*5)

	room.AssertExpectations(t)
}

func TestLobby_GetPublicGamesHonorsContext(t *testing.T) {
	t.Parallel()
	// no actor running, the request channel is never drained once full
	l := NewLobby(&MockPeriodicTickerChannelCreator{}, func(id string) Room { return nil })
	for i := 0; i < cap(l.pubGamesReq); i++ {
		l.pubGamesReq <- make(chan []RoomDescription)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Nil(t, l.GetPublicGames(ctx))
}
