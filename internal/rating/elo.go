package rating

import "math"

// K returns the K-factor for an entity currently rated r.
func (p Policy) K(r int) int {
	for _, s := range p.Steps {
		if r < s.Below {
			return s.K
		}
	}
	return p.Otherwise
}

// PolicyFor returns the K-factor table used for the given entity kind.
func PolicyFor(kind Kind) Policy {
	switch kind {
	case KindTeam:
		return TeamPolicy
	case KindSquad:
		return SquadPolicy
	default:
		return PlayerPolicy
	}
}

// ExpectedScore returns the chance of self beating opponent in thousandths,
// rounded half-up to three decimals.
func ExpectedScore(self, opponent int) int {
	e := 1.0 / (1.0 + math.Pow(10, float64(opponent-self)/400.0))
	return int(math.Floor(e*1000 + 0.5))
}

// ComputeDelta returns the signed rating change for self after a game against
// opponent. The new rating is rounded half-up first and the delta is taken from
// it, so the result is always new-old and never a rounded change.
func ComputeDelta(self, opponent int, isWinner bool, k int) int {
	outcome := 0
	if isWinner {
		outcome = 1000
	}
	change := k * (outcome - ExpectedScore(self, opponent))
	newRating := floorDiv(self*1000+change+500, 1000)
	return newRating - self
}

// Adjust is ComputeDelta with the K-factor the kind's policy assigns at self.
func Adjust(kind Kind, self, opponent int, isWinner bool) int {
	return ComputeDelta(self, opponent, isWinner, PolicyFor(kind).K(self))
}

// Average returns the half-up rounded mean of ratings, or Default for none.
func Average(ratings []int) int {
	if len(ratings) == 0 {
		return Default
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	n := len(ratings)
	return floorDiv(2*sum+n, 2*n)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
