package game

import (
	"api/domain"
	"api/logger"
	"context"
	"encoding/json"
	"time"
)

type matchStatus int

const (
	STATUS_WAITING matchStatus = iota
	STATUS_COUNTDOWN
	STATUS_PLAYING
	STATUS_PROPOSING
	STATUS_WAITING_ACCEPT
	STATUS_FINISHED
)

func (s matchStatus) String() string {
	switch s {
	case STATUS_COUNTDOWN:
		return "countdown"
	case STATUS_PLAYING:
		return "playing"
	case STATUS_PROPOSING:
		return "proposing"
	case STATUS_WAITING_ACCEPT:
		return "waiting_accept"
	case STATUS_FINISHED:
		return "finished"
	default:
		return "waiting"
	}
}

const MAX_PLAYERS = 2
const ROUNDS_TARGET = 3
const INITIAL_BET = 10
const MIN_BET = 5
const MAX_BET = 100
const COUNTDOWN_START = 5
const COUNTDOWN_INTERVAL = time.Second
const PROPOSAL_WINDOW = time.Minute
const ACCEPT_DEADLINE = time.Second * 30
const FINISHED_CLEANUP_GRACE = time.Second * 5

type ClientPacketEnvelope struct {
	clientPacket *ClientPacket
	from         Player
}

func NewClientPacketEnvelope(packet *ClientPacket, from Player) ClientPacketEnvelope {
	return ClientPacketEnvelope{clientPacket: packet, from: from}
}

type roomJoinRequest struct {
	roomId  string
	player  Player
	errChan chan error
}

func NewRoomJoinRequest(roomId string, player Player) roomJoinRequest {
	return roomJoinRequest{roomId: roomId, player: player, errChan: make(chan error, 1)}
}

type RoomDescription struct {
	Id           string `json:"id"`
	PlayersCount int    `json:"playersCount"`
	MaxPlayers   int    `json:"maxPlayers"`
	Started      bool   `json:"started"`
	DisplayPot   int64  `json:"displayPot"`
}

type participantState struct {
	player  Player
	ready   bool
	holding int64
	wins    int
}

type roundRecord struct {
	round    int
	winnerId string
	loserId  string
}

type dataSendTask struct {
	to   Player
	data []byte
}

type pingSendTask struct {
	to Player
}

type match struct {
	id          string
	parentLobby Lobby

	status        matchStatus
	currentRound  int
	countdownLeft int
	started       bool
	winsTarget    int

	ledger         stakeLedger
	activeProposal *proposal
	roundHistory   []roundRecord
	timers         timerSet
	lastWinnerId   string
	lastLoserId    string

	participants []*participantState

	settler Settler
	reports ReportPolicy
	nowFn   func() time.Time

	dataSendTasks []dataSendTask
	pingSendTasks []pingSendTask

	inbox       chan ClientPacketEnvelope
	ticks       chan time.Time
	pingPlayers chan struct{}
	joinReqs    chan roomJoinRequest
	removeMe    chan Player
	done        chan struct{}
}

func NewMatch(id string, settler Settler, reports ReportPolicy, roundsTarget int) *match {
	return &match{
		id:           id,
		status:       STATUS_WAITING,
		currentRound: 1,
		winsTarget:   (roundsTarget + 1) / 2,
		ledger:       newStakeLedger(INITIAL_BET),
		timers:       newTimerSet(),
		participants: make([]*participantState, 0, MAX_PLAYERS),
		settler:      settler,
		reports:      reports,
		nowFn:        time.Now,
		inbox:        make(chan ClientPacketEnvelope, 1024),
		ticks:        make(chan time.Time, 24),
		pingPlayers:  make(chan struct{}, 8),
		joinReqs:     make(chan roomJoinRequest),
		removeMe:     make(chan Player, 64),
		done:         make(chan struct{}),
	}
}

// --- Channel API (called from other goroutines) ---

func (m *match) Send(ctx context.Context, e ClientPacketEnvelope) {
	select {
	case m.inbox <- e:
	case <-m.done:
	case <-ctx.Done():
	}
}

func (m *match) RemoveMe(ctx context.Context, p Player) {
	select {
	case m.removeMe <- p:
	case <-m.done:
	case <-ctx.Done():
	}
}

func (m *match) RequestJoin(jreq roomJoinRequest) {
	select {
	case m.joinReqs <- jreq:
	case <-m.done:
	}
}

func (m *match) Tick(now time.Time) {
	select {
	case m.ticks <- now:
	default:
	}
}

func (m *match) PingPlayers() {
	select {
	case m.pingPlayers <- struct{}{}:
	default:
	}
}

func (m *match) SetParentLobby(l Lobby) {
	m.parentLobby = l
}

func (m *match) Description() RoomDescription {
	return RoomDescription{
		Id:           m.id,
		PlayersCount: len(m.participants),
		MaxPlayers:   MAX_PLAYERS,
		Started:      m.started,
		DisplayPot:   m.ledger.displayPot(len(m.participants)),
	}
}

// CloseAndRelease stops the actor. The inbound channels are left open
// on purpose: a player pump can still be mid-delivery when the lobby
// tears the room down, so every channel-API method selects on done
// instead of racing a close.
func (m *match) CloseAndRelease() {
	for _, ps := range m.participants {
		ps.player.CancelAndRelease()
	}
	close(m.done)
}

// --- Actor loop ---

func (m *match) GameLoop() {
	for {
		select {
		case <-m.done:
			return
		case e := <-m.inbox:
			m.dispatchEnvelope(e)
		case now := <-m.ticks:
			m.handleTick(now)
		case <-m.pingPlayers:
			m.queuePings()
		case jreq := <-m.joinReqs:
			m.handleJoinRequest(jreq)
		case p := <-m.removeMe:
			m.handleRemovePlayer(p)
		}
		m.flushSendTasks()
	}
}

func (m *match) flushSendTasks() {
	for _, task := range m.dataSendTasks {
		// a failed write surfaces through the player's pumps as a RemoveMe
		task.to.Send(task.data)
	}
	for _, task := range m.pingSendTasks {
		task.to.Ping()
	}
	m.dataSendTasks = m.dataSendTasks[:0]
	m.pingSendTasks = m.pingSendTasks[:0]
}

func (m *match) dispatchEnvelope(e ClientPacketEnvelope) {
	if e.clientPacket == nil || e.from == nil {
		return
	}
	senderId := e.from.Id()
	switch e.clientPacket.Type {
	case CLIENT_TOGGLE_READY:
		m.handleToggleReady(senderId)
	case CLIENT_ATTACK:
		m.handleAttack(e.clientPacket.Lines, senderId)
	case CLIENT_CHAT:
		m.handleChat(e.clientPacket.Message, senderId)
	case CLIENT_GAME_OVER:
		m.handleGameOver(senderId)
	case CLIENT_PROPOSE_BET:
		m.handleProposeBet(e.clientPacket.Amount, senderId)
	case CLIENT_RESPOND_PROPOSAL:
		m.handleRespondProposal(e.clientPacket.Accept, senderId)
	}
}

// --- Event handlers (single-goroutine, mutate freely) ---

func (m *match) handleJoinRequest(jreq roomJoinRequest) {
	// started stays true through the between-round waiting states, so a
	// seat vacated mid-series can never be filled by a newcomer whose
	// holding and score would not add up.
	if m.status != STATUS_WAITING || m.started {
		jreq.errChan <- ErrMatchInProgress
		close(jreq.errChan)
		return
	}
	if len(m.participants) >= MAX_PLAYERS {
		jreq.errChan <- ErrRoomFull
		close(jreq.errChan)
		return
	}

	p := jreq.player
	m.participants = append(m.participants, &participantState{
		player:  p,
		holding: m.ledger.currentBet,
	})
	p.SetRoom(m)
	jreq.errChan <- nil
	close(jreq.errChan)

	logger.Infof("[Match %s] %s joined (%d/%d)", m.id, p.Username(), len(m.participants), MAX_PLAYERS)
	m.queueBroadcast(MakePacketRoomUpdate(m.snapshot()))
	m.parentLobby.RequestUpdateDescription(m.Description())
}

func (m *match) handleToggleReady(senderId string) {
	if m.status != STATUS_WAITING {
		return
	}
	ps, ok := m.participantById(senderId)
	if !ok {
		return
	}
	ps.ready = !ps.ready

	if len(m.participants) == MAX_PLAYERS && m.allReady() {
		m.status = STATUS_COUNTDOWN
		m.countdownLeft = COUNTDOWN_START
		m.timers.Arm(TIMER_COUNTDOWN, m.nowFn().Add(COUNTDOWN_INTERVAL))
		m.queueBroadcast(MakePacketStartCountdown(COUNTDOWN_START))
	}
	m.queueBroadcast(MakePacketRoomUpdate(m.snapshot()))
}

func (m *match) handleAttack(lines int, senderId string) {
	if m.status != STATUS_PLAYING || lines <= 0 || !m.reports.AllowAttack(lines) {
		return
	}
	opponent, ok := m.opponentOf(senderId)
	if !ok {
		return
	}
	m.queueSend(opponent.player, MakePacketGarbage(lines))
}

func (m *match) handleChat(message string, senderId string) {
	sender, ok := m.participantById(senderId)
	if !ok || message == "" {
		return
	}
	// sender included, so every client sees the same transcript order
	m.queueBroadcast(MakePacketChatMessage(sender.player.Username(), message))
}

func (m *match) handleGameOver(senderId string) {
	if m.status != STATUS_PLAYING || !m.reports.AllowGameOver() {
		return
	}
	loser, ok := m.participantById(senderId)
	if !ok {
		return
	}
	winner, ok := m.opponentOf(senderId)
	if !ok {
		return
	}

	winner.wins++
	m.lastWinnerId = winner.player.Id()
	m.lastLoserId = loser.player.Id()
	m.roundHistory = append(m.roundHistory, roundRecord{
		round:    m.currentRound,
		winnerId: m.lastWinnerId,
		loserId:  m.lastLoserId,
	})

	isMatchOver := winner.wins >= m.winsTarget
	m.queueBroadcast(MakePacketRoundResult(m.lastWinnerId, m.lastLoserId, m.scoresView(), isMatchOver))

	if isMatchOver {
		m.finishMatch("decisive")
		return
	}

	m.status = STATUS_PROPOSING
	m.timers.Arm(TIMER_PROPOSAL_WAIT, m.nowFn().Add(PROPOSAL_WINDOW))
	m.queueSend(winner.player, MakePacketAskForProposal(m.ledger.currentBet))
}

func (m *match) handleProposeBet(amount int64, senderId string) {
	if m.status != STATUS_PROPOSING || senderId != m.lastWinnerId {
		return
	}
	if amount < MIN_BET || amount > MAX_BET {
		return
	}

	m.activeProposal = newProposal(senderId, amount, m.nowFn().Add(ACCEPT_DEADLINE))
	m.timers.Disarm(TIMER_PROPOSAL_WAIT)
	m.status = STATUS_WAITING_ACCEPT
	m.queueBroadcast(MakePacketProposalReceived(senderId, amount, PROPOSAL_PENDING.String()))
}

func (m *match) handleRespondProposal(accept bool, senderId string) {
	if m.status != STATUS_WAITING_ACCEPT || senderId != m.lastLoserId || m.activeProposal == nil {
		return
	}

	if !accept {
		m.activeProposal.reject()
		m.queueBroadcast(MakePacketProposalReceived(m.activeProposal.proposerId, m.activeProposal.amount, PROPOSAL_REJECTED.String()))
		m.finishMatch("proposal-rejected")
		return
	}

	if !m.activeProposal.accept() {
		return
	}

	amount := m.activeProposal.amount
	m.ledger.raise(amount, len(m.participants))
	for _, ps := range m.participants {
		ps.holding += amount
		ps.ready = false
	}
	m.currentRound++
	m.status = STATUS_WAITING
	m.queueBroadcast(MakePacketProposalReceived(m.activeProposal.proposerId, amount, PROPOSAL_ACCEPTED.String()))
	m.activeProposal = nil
	m.queueBroadcast(MakePacketRoomUpdate(m.snapshot()))
}

func (m *match) handleTick(now time.Time) {
	if m.status == STATUS_COUNTDOWN && m.timers.Due(TIMER_COUNTDOWN, now) {
		m.countdownLeft--
		if m.countdownLeft > 0 {
			m.timers.Arm(TIMER_COUNTDOWN, now.Add(COUNTDOWN_INTERVAL))
			m.queueBroadcast(MakePacketCountdownUpdate(m.countdownLeft))
		} else {
			m.timers.Disarm(TIMER_COUNTDOWN)
			m.status = STATUS_PLAYING
			m.started = true
			m.queueBroadcast(MakePacketCountdownUpdate(0))
			m.queueBroadcast(MakePacketGameStart())
			m.parentLobby.RequestUpdateDescription(m.Description())
		}
	}

	if m.status == STATUS_PROPOSING && m.timers.Due(TIMER_PROPOSAL_WAIT, now) {
		// the winner never made an offer; the match resumes at the old bet
		m.timers.Disarm(TIMER_PROPOSAL_WAIT)
		for _, ps := range m.participants {
			ps.ready = false
		}
		m.status = STATUS_WAITING
		logger.Infof("[Match %s] Proposal window expired, back to waiting", m.id)
		m.queueBroadcast(MakePacketRoomUpdate(m.snapshot()))
	}

	if m.status == STATUS_WAITING_ACCEPT && m.activeProposal != nil && m.activeProposal.expired(now) {
		m.activeProposal.reject()
		m.queueBroadcast(MakePacketProposalReceived(m.activeProposal.proposerId, m.activeProposal.amount, PROPOSAL_REJECTED.String()))
		logger.Infof("[Match %s] Accept deadline expired, treating as rejection", m.id)
		m.finishMatch("proposal-timeout")
	}

	if m.status == STATUS_FINISHED && m.timers.Due(TIMER_CLEANUP, now) {
		m.timers.Disarm(TIMER_CLEANUP)
		m.parentLobby.RemoveRoom(m.id)
	}
}

func (m *match) handleRemovePlayer(p Player) {
	idx := -1
	for i, ps := range m.participants {
		if ps.player == p {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}

	m.participants = append(m.participants[:idx], m.participants[idx+1:]...)
	p.CancelAndRelease()
	logger.Infof("[Match %s] %s left (%d remaining)", m.id, p.Username(), len(m.participants))

	if len(m.participants) == 0 {
		m.timers.DisarmAll()
		m.parentLobby.RemoveRoom(m.id)
		return
	}

	if m.status == STATUS_COUNTDOWN {
		m.timers.Disarm(TIMER_COUNTDOWN)
		m.status = STATUS_WAITING
		for _, ps := range m.participants {
			ps.ready = false
		}
	}

	if m.started {
		m.queueBroadcast(MakePacketPlayerDisconnected())
	}
	m.queueBroadcast(MakePacketRoomUpdate(m.snapshot()))
	m.parentLobby.RequestUpdateDescription(m.Description())
}

// finishMatch settles the pot and parks the room until cleanup. The
// wins leader is credited the loser's holding; with level scores both
// sides keep their own coins.
func (m *match) finishMatch(reason string) {
	m.timers.DisarmAll()
	m.status = STATUS_FINISHED
	m.activeProposal = nil

	var winner, loser *participantState
	if len(m.participants) == MAX_PLAYERS {
		a, b := m.participants[0], m.participants[1]
		switch {
		case a.wins > b.wins:
			winner, loser = a, b
		case b.wins > a.wins:
			winner, loser = b, a
		}
	}

	winnerId := ""
	var prize int64
	if winner != nil && loser != nil && loser.holding > 0 {
		winnerId = winner.player.Id()
		prize = loser.holding
		err := m.settler.Settle(context.Background(), []domain.SettlementEntry{
			{UserId: winner.player.UserId(), Delta: loser.holding},
			{UserId: loser.player.UserId(), Delta: -loser.holding},
		})
		if err != nil {
			logger.Criticalf("[Match %s] Settlement failed: %v", m.id, err)
		}
	}

	logger.Infof("[Match %s] Finished (%s), winner=%q prize=%d", m.id, reason, winnerId, prize)
	m.queueBroadcast(MakePacketMatchFinished(reason))
	m.queueBroadcast(MakePacketMatchResult(winnerId, prize, m.scoresView()))
	m.timers.Arm(TIMER_CLEANUP, m.nowFn().Add(FINISHED_CLEANUP_GRACE))
	m.parentLobby.RequestUpdateDescription(m.Description())
}

// --- Views and helpers ---

func (m *match) participantById(id string) (*participantState, bool) {
	for _, ps := range m.participants {
		if ps.player.Id() == id {
			return ps, true
		}
	}
	return nil, false
}

func (m *match) opponentOf(id string) (*participantState, bool) {
	if _, ok := m.participantById(id); !ok {
		return nil, false
	}
	for _, ps := range m.participants {
		if ps.player.Id() != id {
			return ps, true
		}
	}
	return nil, false
}

func (m *match) allReady() bool {
	for _, ps := range m.participants {
		if !ps.ready {
			return false
		}
	}
	return true
}

func (m *match) scoresView() map[string]int {
	scores := make(map[string]int, len(m.participants))
	for _, ps := range m.participants {
		scores[ps.player.Id()] = ps.wins
	}
	return scores
}

func (m *match) snapshot() RoomSnapshot {
	players := make([]ParticipantView, 0, len(m.participants))
	for _, ps := range m.participants {
		players = append(players, ParticipantView{
			Id:      ps.player.Id(),
			Name:    ps.player.Username(),
			Ready:   ps.ready,
			Holding: ps.holding,
			Wins:    ps.wins,
		})
	}
	return RoomSnapshot{
		Id:           m.id,
		Status:       m.status.String(),
		CurrentRound: m.currentRound,
		Stake: StakeView{
			TotalPot:   m.ledger.totalPot,
			CurrentBet: m.ledger.currentBet,
			DisplayPot: m.ledger.displayPot(len(m.participants)),
		},
		Players: players,
		Scores:  m.scoresView(),
	}
}

func (m *match) queueSend(to Player, packet *ServerPacket) {
	data, err := json.Marshal(packet)
	if err != nil {
		logger.Criticalf("[Match %s] Failed to marshal %s packet: %v", m.id, packet.Type, err)
		return
	}
	m.dataSendTasks = append(m.dataSendTasks, dataSendTask{to: to, data: data})
}

func (m *match) queueBroadcast(packet *ServerPacket) {
	data, err := json.Marshal(packet)
	if err != nil {
		logger.Criticalf("[Match %s] Failed to marshal %s packet: %v", m.id, packet.Type, err)
		return
	}
	for _, ps := range m.participants {
		m.dataSendTasks = append(m.dataSendTasks, dataSendTask{to: ps.player, data: data})
	}
}

func (m *match) queuePings() {
	for _, ps := range m.participants {
		m.pingSendTasks = append(m.pingSendTasks, pingSendTask{to: ps.player})
	}
}
