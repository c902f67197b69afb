package game

// stakeLedger tracks the merged pot and the bet in play for the current
// round. Per-player holdings live on the participant states; the ledger
// invariant sum(holding) == totalPot + currentBet*playerCount is what
// keeps the two views consistent.
type stakeLedger struct {
	totalPot   int64
	currentBet int64
}

func newStakeLedger(initialBet int64) stakeLedger {
	return stakeLedger{currentBet: initialBet}
}

// displayPot is what clients see: the merged pot plus the bets that are
// committed for the round in play but not merged yet.
func (l *stakeLedger) displayPot(playerCount int) int64 {
	return l.totalPot + l.currentBet*int64(playerCount)
}

// raise merges the outstanding bets into the pot and installs the newly
// agreed bet for the next round.
func (l *stakeLedger) raise(amount int64, playerCount int) {
	l.totalPot += l.currentBet * int64(playerCount)
	l.currentBet = amount
}

func (l *stakeLedger) consistent(holdings []int64) bool {
	var sum int64
	for _, h := range holdings {
		sum += h
	}
	return sum == l.totalPot+l.currentBet*int64(len(holdings))
}
