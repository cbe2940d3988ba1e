package game

import "context"

// Roster supplies the external team labels of a member, such as chat groups or
// roles. Labels are matched against the guild's registered team names.
type Roster interface {
	TeamLabels(ctx context.Context, externalID string) ([]string, error)
}
