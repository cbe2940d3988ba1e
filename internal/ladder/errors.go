package ladder

import "errors"

var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrTeamsRequired    = errors.New("every player must belong to exactly one team")
	ErrGameCompleted    = errors.New("game already has a winner")
	ErrInvalidLineup    = errors.New("invalid lineup")
	ErrInvalidSide      = errors.New("side must be home or away")
	ErrReservedTeamName = errors.New("team name is reserved")
	ErrTeamNameRequired = errors.New("team name is required")
)

var ErrInvalidKind = errors.New("kind must be player, squad or team")

var (
	ErrUnknownTribe      = errors.New("unknown tribe")
	ErrTribeNameRequired = errors.New("tribe name is required")
)
