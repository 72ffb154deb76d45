package postgres

import (
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/gdugdh24/geomatch-backend/internal/domain"
)

func TestBuildCandidateQuery_ExclusionOnly(t *testing.T) {
	query, args := buildCandidateQuery(domain.PredicateSet{Predicates: []domain.Predicate{
		{Kind: domain.PredicateExcludeIDs, IDs: []int64{1, 4}},
	}})

	assert.Contains(t, query, "FROM users WHERE status = $1 AND id <> ALL($2) ORDER BY id ASC")
	assert.Equal(t, []interface{}{"ACTIVE", pq.Array([]int64{1, 4})}, args)
}

func TestBuildCandidateQuery_AllPredicates(t *testing.T) {
	set := domain.PredicateSet{Predicates: []domain.Predicate{
		{Kind: domain.PredicateExcludeIDs, IDs: []int64{7}},
		{Kind: domain.PredicateGenderContains, Tokens: []string{"male", "female"}},
		{
			Kind: domain.PredicateBirthDateWithin,
			From: time.Date(1999, 6, 15, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2006, 6, 15, 0, 0, 0, 0, time.UTC),
		},
		{Kind: domain.PredicateInterestsContain, Tokens: []string{"chess"}},
	}}

	query, args := buildCandidateQuery(set)

	assert.Contains(t, query,
		"WHERE status = $1 AND id <> ALL($2)"+
			" AND (strpos(gender, $3) > 0 OR strpos(gender, $4) > 0)"+
			" AND date_of_birth BETWEEN $5::date AND $6::date"+
			" AND (strpos(interests, $7) > 0)"+
			" ORDER BY id ASC")
	assert.Equal(t, []interface{}{
		"ACTIVE", pq.Array([]int64{7}), "male", "female", "1999-06-15", "2006-06-15", "chess",
	}, args)
}

func TestBuildCandidateQuery_ValuesNeverInlined(t *testing.T) {
	evil := "x') OR 1=1 --"
	query, args := buildCandidateQuery(domain.PredicateSet{Predicates: []domain.Predicate{
		{Kind: domain.PredicateExcludeIDs, IDs: []int64{1}},
		{Kind: domain.PredicateInterestsContain, Tokens: []string{evil}},
	}})

	assert.NotContains(t, query, evil)
	assert.Contains(t, args, evil)
}
