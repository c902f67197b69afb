package game

// JSON wire protocol. Every frame is a single envelope with a "type"
// discriminator; server payloads live under "payload" so clients can
// switch on type before decoding the rest.

const (
	CLIENT_TOGGLE_READY     = "toggleReady"
	CLIENT_ATTACK           = "attack"
	CLIENT_CHAT             = "chat"
	CLIENT_GAME_OVER        = "gameOver"
	CLIENT_PROPOSE_BET      = "proposeBet"
	CLIENT_RESPOND_PROPOSAL = "respondProposal"
)

const (
	SERVER_ROOM_UPDATE         = "roomUpdate"
	SERVER_START_COUNTDOWN     = "startCountdown"
	SERVER_COUNTDOWN_UPDATE    = "countdownUpdate"
	SERVER_GAME_START          = "gameStart"
	SERVER_GARBAGE             = "garbage"
	SERVER_CHAT_MESSAGE        = "chatMessage"
	SERVER_ROUND_RESULT        = "roundResult"
	SERVER_ASK_FOR_PROPOSAL    = "askForProposal"
	SERVER_PROPOSAL_RECEIVED   = "proposalReceived"
	SERVER_MATCH_FINISHED      = "matchFinished"
	SERVER_MATCH_RESULT        = "matchResult"
	SERVER_PLAYER_DISCONNECTED = "playerDisconnected"
	SERVER_ERROR               = "error"
)

type ClientPacket struct {
	Type    string `json:"type"`
	Lines   int    `json:"lines,omitempty"`
	Message string `json:"message,omitempty"`
	Amount  int64  `json:"amount,omitempty"`
	Accept  bool   `json:"accept,omitempty"`
}

type ServerPacket struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type ParticipantView struct {
	Id      string `json:"id"`
	Name    string `json:"name"`
	Ready   bool   `json:"ready"`
	Holding int64  `json:"holding"`
	Wins    int    `json:"wins"`
}

type StakeView struct {
	TotalPot   int64 `json:"totalPot"`
	CurrentBet int64 `json:"currentBet"`
	DisplayPot int64 `json:"displayPot"`
}

type RoomSnapshot struct {
	Id           string            `json:"id"`
	Status       string            `json:"status"`
	CurrentRound int               `json:"currentRound"`
	Stake        StakeView         `json:"stake"`
	Players      []ParticipantView `json:"players"`
	Scores       map[string]int    `json:"scores"`
}

type CountdownUpdate struct {
	Count int `json:"count"`
}

type GarbageUpdate struct {
	Lines int `json:"lines"`
}

type ChatMessage struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type RoundResult struct {
	WinnerId    string         `json:"winnerId"`
	LoserId     string         `json:"loserId"`
	Scores      map[string]int `json:"scores"`
	IsMatchOver bool           `json:"isMatchOver"`
}

type AskForProposal struct {
	CurrentBet int64 `json:"currentBet"`
}

type ProposalUpdate struct {
	Proposer string `json:"proposer"`
	Amount   int64  `json:"amount"`
	Status   string `json:"status"`
}

type MatchFinished struct {
	Reason string `json:"reason"`
}

type MatchResult struct {
	WinnerId    string         `json:"winnerId"`
	Prize       int64          `json:"prize"`
	FinalScores map[string]int `json:"finalScores"`
}

type ErrorNotice struct {
	Code string `json:"code"`
}

func MakePacketRoomUpdate(snapshot RoomSnapshot) *ServerPacket {
	return &ServerPacket{Type: SERVER_ROOM_UPDATE, Payload: snapshot}
}

func MakePacketStartCountdown(count int) *ServerPacket {
	return &ServerPacket{Type: SERVER_START_COUNTDOWN, Payload: CountdownUpdate{Count: count}}
}

func MakePacketCountdownUpdate(count int) *ServerPacket {
	return &ServerPacket{Type: SERVER_COUNTDOWN_UPDATE, Payload: CountdownUpdate{Count: count}}
}

func MakePacketGameStart() *ServerPacket {
	return &ServerPacket{Type: SERVER_GAME_START}
}

func MakePacketGarbage(lines int) *ServerPacket {
	return &ServerPacket{Type: SERVER_GARBAGE, Payload: GarbageUpdate{Lines: lines}}
}

func MakePacketChatMessage(name, message string) *ServerPacket {
	return &ServerPacket{Type: SERVER_CHAT_MESSAGE, Payload: ChatMessage{Name: name, Message: message}}
}

func MakePacketRoundResult(winnerId, loserId string, scores map[string]int, isMatchOver bool) *ServerPacket {
	return &ServerPacket{Type: SERVER_ROUND_RESULT, Payload: RoundResult{
		WinnerId:    winnerId,
		LoserId:     loserId,
		Scores:      scores,
		IsMatchOver: isMatchOver,
	}}
}

func MakePacketAskForProposal(currentBet int64) *ServerPacket {
	return &ServerPacket{Type: SERVER_ASK_FOR_PROPOSAL, Payload: AskForProposal{CurrentBet: currentBet}}
}

func MakePacketProposalReceived(proposer string, amount int64, status string) *ServerPacket {
	return &ServerPacket{Type: SERVER_PROPOSAL_RECEIVED, Payload: ProposalUpdate{
		Proposer: proposer,
		Amount:   amount,
		Status:   status,
	}}
}

func MakePacketMatchFinished(reason string) *ServerPacket {
	return &ServerPacket{Type: SERVER_MATCH_FINISHED, Payload: MatchFinished{Reason: reason}}
}

func MakePacketMatchResult(winnerId string, prize int64, finalScores map[string]int) *ServerPacket {
	return &ServerPacket{Type: SERVER_MATCH_RESULT, Payload: MatchResult{
		WinnerId:    winnerId,
		Prize:       prize,
		FinalScores: finalScores,
	}}
}

func MakePacketPlayerDisconnected() *ServerPacket {
	return &ServerPacket{Type: SERVER_PLAYER_DISCONNECTED}
}

func MakePacketError(code string) *ServerPacket {
	return &ServerPacket{Type: SERVER_ERROR, Payload: ErrorNotice{Code: code}}
}
