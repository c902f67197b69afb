package game

import (
	"api/domain"
	"context"
	"time"
)

type NetworkSession interface {
	Close(errCode string)
	Write(data []byte) error
	Read() ([]byte, error)
	Ping() error
}

type UserGetter interface {
	GetUserById(ctx context.Context, id string) (domain.User, error)
}

// Settler is the coin-ledger trust boundary. Implementations apply all
// deltas atomically or not at all.
type Settler interface {
	Settle(ctx context.Context, entries []domain.SettlementEntry) error
}

// ReportPolicy decides whether client self-reports (attack line counts,
// game-over claims) are believed. The default policy trusts them; an
// authoritative validator can be swapped in without touching the match.
type ReportPolicy interface {
	AllowAttack(lines int) bool
	AllowGameOver() bool
}

type PeriodicTickerChannelCreator interface {
	Create(duration time.Duration) <-chan time.Time
}

type Player interface {
	Send(data []byte) error
	Ping() error
	SetRoom(r Room)
	CancelAndRelease()
	Id() string
	UserId() string
	Username() string
}

type Room interface {
	PingPlayers()
	Send(ctx context.Context, e ClientPacketEnvelope)
	RemoveMe(ctx context.Context, p Player)
	RequestJoin(jreq roomJoinRequest)
	Tick(now time.Time)
	GameLoop()
	CloseAndRelease()
	Description() RoomDescription
	SetParentLobby(l Lobby)
}

type Lobby interface {
	RequestUpdateDescription(desc RoomDescription)
	RemoveRoom(roomId string)
	ForwardPlayerJoinRequestToRoom(ctx context.Context, jreq roomJoinRequest)
	GetPublicGames(ctx context.Context) []RoomDescription
}
