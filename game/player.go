package game

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

var ErrSendBufferFull = errors.New("player send buffer full")

type wsPlayer struct {
	userId      string
	connId      string
	username    string
	rateLimiter *rate.Limiter
	inbox       chan []byte
	pingChan    chan struct{}
	room        Room
	ctx         context.Context
	cancelCtx   context.CancelFunc
}

func NewPlayer(userId, username string) *wsPlayer {
	ctx, cancel := context.WithCancel(context.Background())
	return &wsPlayer{
		userId:      userId,
		connId:      uuid.NewString(),
		username:    username,
		rateLimiter: rate.NewLimiter(2, 8),
		inbox:       make(chan []byte, 256),
		pingChan:    make(chan struct{}, 1),
		ctx:         ctx,
		cancelCtx:   cancel,
	}
}

func (p *wsPlayer) Id() string       { return p.connId }
func (p *wsPlayer) UserId() string   { return p.userId }
func (p *wsPlayer) Username() string { return p.username }

func (p *wsPlayer) SetRoom(r Room) { p.room = r }

func (p *wsPlayer) CancelAndRelease() {
	p.cancelCtx()
}

func (p *wsPlayer) Send(data []byte) error {
	select {
	case p.inbox <- data:
		return nil
	case <-p.ctx.Done():
		return p.ctx.Err()
	default:
		// slow consumer, drop the frame rather than stall the room
		return ErrSendBufferFull
	}
}

func (p *wsPlayer) Ping() error {
	select {
	case p.pingChan <- struct{}{}:
	default:
	}
	return nil
}

// rateLimited marks the packet types a hostile client could spam for
// social effect. Gameplay traffic (attacks, game over) is exempt.
func rateLimited(packetType string) bool {
	switch packetType {
	case CLIENT_CHAT, CLIENT_PROPOSE_BET, CLIENT_RESPOND_PROPOSAL:
		return true
	}
	return false
}

func (p *wsPlayer) ReadPump(socket NetworkSession) {
	defer socket.Close("")

	for {
		select {
		case <-p.ctx.Done():
			return
		default:
		}

		data, err := socket.Read()
		if err != nil {
			if p.room != nil {
				p.room.RemoveMe(p.ctx, p)
			}
			return
		}

		packet := &ClientPacket{}
		if err := json.Unmarshal(data, packet); err != nil {
			continue
		}

		if rateLimited(packet.Type) && !p.rateLimiter.Allow() {
			continue
		}

		if p.room == nil {
			continue
		}
		p.room.Send(p.ctx, NewClientPacketEnvelope(packet, p))
	}
}

func (p *wsPlayer) WritePump(socket NetworkSession) {
	defer socket.Close("")

	for {
		select {
		case data, ok := <-p.inbox:
			if !ok {
				return
			}
			if err := socket.Write(data); err != nil {
				if p.room != nil {
					p.room.RemoveMe(p.ctx, p)
				}
				return
			}
		case _, ok := <-p.pingChan:
			if !ok {
				return
			}
			if err := socket.Ping(); err != nil {
				if p.room != nil {
					p.room.RemoveMe(p.ctx, p)
				}
				return
			}
		case <-p.ctx.Done():
			return
		}
	}
}
