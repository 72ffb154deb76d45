package domain

import "time"

// PredicateKind tags the variant held by a Predicate.
type PredicateKind int

const (
	// PredicateExcludeIDs removes the listed user IDs.
	PredicateExcludeIDs PredicateKind = iota
	// PredicateGenderContains matches if gender contains any token.
	PredicateGenderContains
	// PredicateBirthDateWithin matches date_of_birth in [From, To], both inclusive.
	PredicateBirthDateWithin
	// PredicateInterestsContain matches if the interest blob contains any token.
	PredicateInterestsContain
)

func (k PredicateKind) String() string {
	switch k {
	case PredicateExcludeIDs:
		return "exclude_ids"
	case PredicateGenderContains:
		return "gender_contains"
	case PredicateBirthDateWithin:
		return "birth_date_within"
	case PredicateInterestsContain:
		return "interests_contain"
	default:
		return "unknown"
	}
}

// Predicate is a single candidate condition. Only the fields relevant to
// Kind are set.
type Predicate struct {
	Kind   PredicateKind
	IDs    []int64
	Tokens []string
	From   time.Time
	To     time.Time
}

// PredicateSet is an ordered conjunction of predicates. The store layer
// renders it into a query; nothing here knows about SQL.
type PredicateSet struct {
	Predicates []Predicate
}

// Find returns the first predicate of the given kind.
func (s PredicateSet) Find(kind PredicateKind) (Predicate, bool) {
	for _, p := range s.Predicates {
		if p.Kind == kind {
			return p, true
		}
	}
	return Predicate{}, false
}
