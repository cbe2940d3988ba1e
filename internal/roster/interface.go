package roster

import "context"

// Directory looks up community members and the team labels attached to them.
type Directory interface {
	// Resolve turns a mention or raw id into a member.
	Resolve(ctx context.Context, handle string) (Member, error)
	// TeamLabels returns the names of every group the member belongs to.
	TeamLabels(ctx context.Context, externalID string) ([]string, error)
}
