package game

// TrustedReports believes every client self-report, mirroring the trust
// boundary with the peers' own game engines. MAX_REPORTED_LINES only
// caps obviously absurd values so a hostile client cannot spam huge
// garbage counts.
type TrustedReports struct{}

const MAX_REPORTED_LINES = 20

func (TrustedReports) AllowAttack(lines int) bool {
	return lines > 0 && lines <= MAX_REPORTED_LINES
}

func (TrustedReports) AllowGameOver() bool {
	return true
}
