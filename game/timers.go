package game

import "time"

type timerCategory int

const (
	TIMER_COUNTDOWN timerCategory = iota
	TIMER_PROPOSAL_WAIT
	TIMER_CLEANUP
)

// timerSet holds one deadline per category, owned by a single match and
// checked against injected tick times. Arming a category overwrites its
// previous deadline, so a stale callback can never fire into a state it
// no longer applies to.
type timerSet struct {
	deadlines map[timerCategory]time.Time
}

func newTimerSet() timerSet {
	return timerSet{deadlines: make(map[timerCategory]time.Time)}
}

func (ts *timerSet) Arm(cat timerCategory, at time.Time) {
	ts.deadlines[cat] = at
}

func (ts *timerSet) Disarm(cat timerCategory) {
	delete(ts.deadlines, cat)
}

func (ts *timerSet) DisarmAll() {
	clear(ts.deadlines)
}

func (ts *timerSet) Armed(cat timerCategory) bool {
	_, ok := ts.deadlines[cat]
	return ok
}

// Due reports whether the category is armed and its deadline has passed.
// A due timer stays armed until the caller disarms or re-arms it.
func (ts *timerSet) Due(cat timerCategory, now time.Time) bool {
	deadline, ok := ts.deadlines[cat]
	return ok && !deadline.After(now)
}
