package game

import (
	"api/logger"
	"context"
	"time"
)

// RoomFactory builds a fresh match for a never-before-seen room id.
// Injected so tests can substitute mock rooms.
type RoomFactory func(id string) Room

type lobby struct {
	rooms                map[string]Room
	pubRoomsDescriptions map[string]RoomDescription

	removeRoomChan chan string
	pubGamesReq    chan chan []RoomDescription
	roomDescUpdate chan RoomDescription
	roomJoinReqs   chan roomJoinRequest

	tickerCreator PeriodicTickerChannelCreator
	newRoom       RoomFactory
}

func NewLobby(tickerCreator PeriodicTickerChannelCreator, newRoom RoomFactory) *lobby {
	return &lobby{
		rooms:                map[string]Room{},
		pubRoomsDescriptions: map[string]RoomDescription{},
		removeRoomChan:       make(chan string, 32),
		pubGamesReq:          make(chan chan []RoomDescription, 256),
		roomDescUpdate:       make(chan RoomDescription, 256),
		roomJoinReqs:         make(chan roomJoinRequest, 256),
		tickerCreator:        tickerCreator,
		newRoom:              newRoom,
	}
}

func (l *lobby) RequestUpdateDescription(desc RoomDescription) {
	select {
	case l.roomDescUpdate <- desc:
	default:
	}
}

func (l *lobby) ForwardPlayerJoinRequestToRoom(ctx context.Context, jreq roomJoinRequest) {
	select {
	case <-ctx.Done():
	case l.roomJoinReqs <- jreq:
	}
}

func (l *lobby) RemoveRoom(roomId string) {
	l.removeRoomChan <- roomId
}

func (l *lobby) GetPublicGames(ctx context.Context) []RoomDescription {
	respChan := make(chan []RoomDescription, 1)
	select {
	case l.pubGamesReq <- respChan:
		select {
		case resp := <-respChan:
			return resp
		case <-ctx.Done():
			return nil
		}
	case <-ctx.Done():
		return nil
	}
}

func (l *lobby) LobbyActor(started chan struct{}) {
	ticker := l.tickerCreator.Create(time.Second)
	pingTicker := l.tickerCreator.Create(time.Second * 30)

	close(started)

	for {
		select {
		case now := <-ticker:
			for _, r := range l.rooms {
				r.Tick(now)
			}
		case <-pingTicker:
			for _, r := range l.rooms {
				r.PingPlayers()
			}

		case roomId := <-l.removeRoomChan:
			l.handleRemoveRoom(roomId)

		case desc := <-l.roomDescUpdate:
			if _, ok := l.rooms[desc.Id]; ok {
				l.pubRoomsDescriptions[desc.Id] = desc
			}

		case pubGamesReq := <-l.pubGamesReq:
			l.handleGetPublicRoomsDescription(pubGamesReq)

		case joinReq := <-l.roomJoinReqs:
			l.handleJoinReq(joinReq)
		}
	}
}

// handleJoinReq resolves the target room, creating it on first join.
// Creation happens inside the lobby goroutine, so concurrent joins to
// a fresh id always land in a single match.
func (l *lobby) handleJoinReq(joinReq roomJoinRequest) {
	room, ok := l.rooms[joinReq.roomId]
	if !ok {
		room = l.newRoom(joinReq.roomId)
		room.SetParentLobby(l)
		l.rooms[joinReq.roomId] = room
		l.pubRoomsDescriptions[joinReq.roomId] = room.Description()
		go room.GameLoop()
		logger.Infof("[Lobby] Created room %s on first join", joinReq.roomId)
	}
	room.RequestJoin(joinReq)
}

func (l *lobby) handleRemoveRoom(toRemoveId string) {
	room, ok := l.rooms[toRemoveId]
	if !ok {
		return
	}
	delete(l.rooms, toRemoveId)
	delete(l.pubRoomsDescriptions, toRemoveId)
	room.CloseAndRelease()
	logger.Infof("[Lobby] Removed room %s", toRemoveId)
}

func (l *lobby) handleGetPublicRoomsDescription(req chan []RoomDescription) {
	descs := make([]RoomDescription, 0, len(l.pubRoomsDescriptions))
	for _, description := range l.pubRoomsDescriptions {
		descs = append(descs, description)
	}

	req <- descs
}
