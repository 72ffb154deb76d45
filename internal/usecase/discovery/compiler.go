package discovery

import (
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/gdugdh24/geomatch-backend/internal/domain"
)

// Compile builds the predicate set for one discovery request. It is pure:
// the store renders the result into a query.
//
// The exclusion predicate is always first and always contains the
// requester. Attribute predicates follow only when their filter is set.
func Compile(requesterID int64, excludeIDs []int64, filters Filters, ref time.Time) domain.PredicateSet {
	ids := lo.Uniq(append(slices.Clone(excludeIDs), requesterID))
	slices.Sort(ids)

	set := domain.PredicateSet{
		Predicates: []domain.Predicate{{Kind: domain.PredicateExcludeIDs, IDs: ids}},
	}

	if genders := lo.Uniq(filters.Genders); len(genders) > 0 {
		set.Predicates = append(set.Predicates, domain.Predicate{
			Kind:   domain.PredicateGenderContains,
			Tokens: genders,
		})
	}

	if filters.Age != nil {
		from, to := BirthDateWindow(*filters.Age, ref)
		set.Predicates = append(set.Predicates, domain.Predicate{
			Kind: domain.PredicateBirthDateWithin,
			From: from,
			To:   to,
		})
	}

	if interests := lo.Uniq(filters.Interests); len(interests) > 0 {
		set.Predicates = append(set.Predicates, domain.Predicate{
			Kind:   domain.PredicateInterestsContain,
			Tokens: interests,
		})
	}

	return set
}

// BirthDateWindow maps an inclusive age range to the inclusive date-of-birth
// window [ref - Max years, ref - Min years]. Time of day is dropped.
func BirthDateWindow(age AgeRange, ref time.Time) (time.Time, time.Time) {
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(-age.Max, 0, 0), day.AddDate(-age.Min, 0, 0)
}
