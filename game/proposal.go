package game

import "time"

type proposalStatus int

const (
	PROPOSAL_PENDING proposalStatus = iota
	PROPOSAL_ACCEPTED
	PROPOSAL_REJECTED
)

func (s proposalStatus) String() string {
	switch s {
	case PROPOSAL_ACCEPTED:
		return "accepted"
	case PROPOSAL_REJECTED:
		return "rejected"
	default:
		return "pending"
	}
}

// proposal is the single in-flight stake-change offer of a match. Only
// the round winner creates one, only while the proposal window is open,
// so the match never holds more than one non-terminal proposal.
type proposal struct {
	proposerId string
	amount     int64
	status     proposalStatus
	deadline   time.Time
}

func newProposal(proposerId string, amount int64, deadline time.Time) *proposal {
	return &proposal{
		proposerId: proposerId,
		amount:     amount,
		status:     PROPOSAL_PENDING,
		deadline:   deadline,
	}
}

func (p *proposal) accept() bool {
	if p.status != PROPOSAL_PENDING {
		return false
	}
	p.status = PROPOSAL_ACCEPTED
	return true
}

func (p *proposal) reject() bool {
	if p.status != PROPOSAL_PENDING {
		return false
	}
	p.status = PROPOSAL_REJECTED
	return true
}

func (p *proposal) expired(now time.Time) bool {
	return p.status == PROPOSAL_PENDING && !p.deadline.After(now)
}
