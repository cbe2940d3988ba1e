package squad

import "errors"

var (
	ErrEmptySquad      = errors.New("squad needs at least one player")
	ErrDuplicateMember = errors.New("player listed more than once in squad")
)

// Member is a player taking part on one side, with the rating they have now.
type Member struct {
	PlayerID int64
	Rating   int
}

// Candidate is a squad sharing at least one player with a requested set.
// MemberCount is the squad's total size, MatchedCount how many of its members
// are inside the requested set.
type Candidate struct {
	SquadID      int64
	Rating       int
	MemberCount  int
	MatchedCount int
}

// Resolution is the squad a player set resolved to.
type Resolution struct {
	SquadID int64
	Rating  int
	Created bool
}
