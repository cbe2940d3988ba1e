package squad

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/squad-ladder/internal/rating"
)

// Matches reports whether a candidate has exactly the n requested players:
// same size and every member inside the set.
func Matches(c Candidate, n int) bool {
	return c.MemberCount == n && c.MatchedCount == n
}

// Normalize sorts members by player id and rejects empty or repeated sets.
func Normalize(members []Member) ([]Member, error) {
	if len(members) == 0 {
		return nil, ErrEmptySquad
	}
	sorted := make([]Member, len(members))
	copy(sorted, members)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PlayerID < sorted[j].PlayerID })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].PlayerID == sorted[i-1].PlayerID {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateMember, sorted[i].PlayerID)
		}
	}
	return sorted, nil
}

// Resolve finds the squad whose membership is exactly the given players, or
// creates one rated at the rounded average of the members' current ratings.
// An existing squad is reused as is; its rating is not refreshed.
func Resolve(ctx context.Context, store Store, members []Member) (Resolution, error) {
	sorted, err := Normalize(members)
	if err != nil {
		return Resolution{}, err
	}

	ids := make([]int64, len(sorted))
	ratings := make([]int, len(sorted))
	for i, m := range sorted {
		ids[i] = m.PlayerID
		ratings[i] = m.Rating
	}

	candidates, err := store.SquadsWithAnyMember(ctx, ids)
	if err != nil {
		return Resolution{}, fmt.Errorf("failed to look up squads: %w", err)
	}

	var match *Candidate
	for i := range candidates {
		c := candidates[i]
		if !Matches(c, len(ids)) {
			continue
		}
		if match != nil {
			log.Warn("Multiple squads share the same members", "squadID", c.SquadID, "keeping", min(match.SquadID, c.SquadID))
			if c.SquadID > match.SquadID {
				continue
			}
		}
		match = &c
	}
	if match != nil {
		log.Debug("Reusing squad", "squadID", match.SquadID, "players", ids)
		return Resolution{SquadID: match.SquadID, Rating: match.Rating}, nil
	}

	r := rating.Average(ratings)
	id, err := store.CreateSquad(ctx, r, ids)
	if err != nil {
		return Resolution{}, fmt.Errorf("failed to create squad: %w", err)
	}
	log.Info("Created squad", "squadID", id, "players", ids, "rating", r)
	return Resolution{SquadID: id, Rating: r, Created: true}, nil
}
