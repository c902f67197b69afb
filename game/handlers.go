package game

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var roomIdPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,32}$`)

type GameHandler struct {
	lobby      Lobby
	userGetter UserGetter
	upgrader   websocket.Upgrader
}

func NewGameHandler(lobby Lobby, userGetter UserGetter, checkOrigin func(r *http.Request) bool) *GameHandler {
	return &GameHandler{
		lobby:      lobby,
		userGetter: userGetter,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// JoinGameHandler upgrades the connection and forwards the join to the
// lobby, which creates the room on first use of the id.
func (h *GameHandler) JoinGameHandler(ctx *gin.Context) {
	id := ctx.GetString("id")
	if id == "" {
		slog.Error("JoinGame: id not found. What is the middleware doing?",
			"ip", ctx.ClientIP(),
			"user_agent", ctx.Request.UserAgent(),
		)
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
		return
	}

	roomId := ctx.Param("roomid")
	if !roomIdPattern.MatchString(roomId) {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid-room-id"})
		return
	}

	user, err := h.userGetter.GetUserById(ctx.Request.Context(), id)
	if err != nil {
		slog.Error("JoinGame: failed to resolve user", "error", err.Error(), "user_id", id)
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
		return
	}

	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		slog.Error("JoinGame: WS upgrade failed", "error", err.Error(), "ip", ctx.ClientIP())
		return
	}
	socketConn := NewWebsocketConnection(conn)

	player := NewPlayer(id, user.Username)
	jreq := NewRoomJoinRequest(roomId, player)
	h.lobby.ForwardPlayerJoinRequestToRoom(ctx.Request.Context(), jreq)

	select {
	case joinErr := <-jreq.errChan:
		if joinErr != nil {
			rejectJoin(&socketConn, joinErr.Error())
			return
		}
	case <-time.After(5 * time.Second):
		rejectJoin(&socketConn, ErrRoomNotFound.Error())
		return
	}

	go player.ReadPump(&socketConn)
	go player.WritePump(&socketConn)
}

// rejectJoin tells the client why before the close frame, since close
// reasons are awkward to surface in browser websocket APIs.
func rejectJoin(socket NetworkSession, code string) {
	if data, err := json.Marshal(MakePacketError(code)); err == nil {
		socket.Write(data)
	}
	socket.Close(code)
}

func (h *GameHandler) GetPublicRoomsHandler(ctx *gin.Context) {
	rooms := h.lobby.GetPublicGames(ctx.Request.Context())
	if rooms == nil {
		rooms = []RoomDescription{}
	}
	ctx.JSON(http.StatusOK, gin.H{"rooms": rooms})
}
