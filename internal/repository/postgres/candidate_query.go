package postgres

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/gdugdh24/geomatch-backend/internal/domain"
)

const userColumns = `id, contact, password_hash, name, gender, date_of_birth, interests, bio,
	latitude, longitude, status, is_subscribed, subscription_expires_at, created_at, updated_at`

// buildCandidateQuery renders a predicate set into a parameterized query.
// Values only ever travel as arguments.
func buildCandidateQuery(set domain.PredicateSet) (string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	where = append(where, "status = "+arg(string(domain.UserStatusActive)))

	for _, p := range set.Predicates {
		switch p.Kind {
		case domain.PredicateExcludeIDs:
			if len(p.IDs) > 0 {
				where = append(where, "id <> ALL("+arg(pq.Array(p.IDs))+")")
			}
		case domain.PredicateGenderContains:
			if clause := anyContains("gender", p.Tokens, arg); clause != "" {
				where = append(where, clause)
			}
		case domain.PredicateBirthDateWithin:
			from := arg(p.From.Format("2006-01-02"))
			to := arg(p.To.Format("2006-01-02"))
			where = append(where, fmt.Sprintf("date_of_birth BETWEEN %s::date AND %s::date", from, to))
		case domain.PredicateInterestsContain:
			if clause := anyContains("interests", p.Tokens, arg); clause != "" {
				where = append(where, clause)
			}
		}
	}

	query := "SELECT " + userColumns + " FROM users WHERE " + strings.Join(where, " AND ") + " ORDER BY id ASC"
	return query, args
}

func anyContains(column string, tokens []string, arg func(interface{}) string) string {
	if len(tokens) == 0 {
		return ""
	}
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		parts = append(parts, fmt.Sprintf("strpos(%s, %s) > 0", column, arg(t)))
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}
