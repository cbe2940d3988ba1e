package rating

// Kind identifies which kind of entity a rating belongs to.
type Kind string

const (
	KindPlayer Kind = "player"
	KindSquad  Kind = "squad"
	KindTeam   Kind = "team"
)

func (k Kind) Valid() bool {
	return k == KindPlayer || k == KindSquad || k == KindTeam
}

// Default is the rating every entity starts with.
const Default = 1000

// Step is one band of a K-factor table: ratings strictly below Below use K.
type Step struct {
	Below int
	K     int
}

// Policy is a step function from current rating to K-factor.
// Steps are evaluated in order; Otherwise applies when no step matches.
type Policy struct {
	Steps     []Step
	Otherwise int
}

var (
	PlayerPolicy = Policy{Steps: []Step{{Below: 1100, K: 75}, {Below: 1350, K: 50}}, Otherwise: 32}
	TeamPolicy   = Policy{Steps: []Step{{Below: 1350, K: 50}}, Otherwise: 32}
	SquadPolicy  = Policy{Otherwise: 75}
)
