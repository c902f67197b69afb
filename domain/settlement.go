package domain

// SettlementEntry is one coin movement produced by a finished match.
// Positive deltas credit the user, negative deltas debit them.
type SettlementEntry struct {
	UserId string
	Delta  int64
}
