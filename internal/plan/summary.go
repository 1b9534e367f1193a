package plan

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"coachfit/server/internal/catalog"
	"coachfit/server/internal/domain"
)

// GroupSets is one row of the series summary: total prescribed sets for a
// muscle group.
type GroupSets struct {
	Group string `json:"group"`
	Sets  int    `json:"sets"`
}

// Summary is the series-per-muscle-group breakdown of a template or day.
type Summary struct {
	Rows  []GroupSets `json:"rows"`
	Total int         `json:"total"`
}

// SeriesByGroup totals the prescribed sets of every entry across all days,
// grouped by muscle group. Entries without a group count under
// catalog.GroupOther. The rows come back sorted by group name with Italian
// collation; the grand total is the sum over all rows.
//
// The function is deterministic and has no side effects, so it can be
// re-run on every edit with identical output for identical input. How the
// same entries are distributed across days does not change the result.
func SeriesByGroup(t domain.Template) Summary {
	return summarize(t.Days)
}

// SeriesByGroupForDay is SeriesByGroup restricted to a single day.
func SeriesByGroupForDay(d domain.Day) Summary {
	return summarize([]domain.Day{d})
}

func summarize(days []domain.Day) Summary {
	totals := make(map[string]int)
	for _, day := range days {
		for _, e := range day.Entries {
			g := e.MuscleGroup
			if g == "" {
				g = catalog.GroupOther
			}
			sets := e.TargetSets
			if sets < 0 {
				sets = 0
			}
			totals[g] += sets
		}
	}

	rows := make([]GroupSets, 0, len(totals))
	for g, n := range totals {
		rows = append(rows, GroupSets{Group: g, Sets: n})
	}

	c := collate.New(language.Italian)
	c.Sort(byGroup(rows))

	total := 0
	for _, r := range rows {
		total += r.Sets
	}
	return Summary{Rows: rows, Total: total}
}

// byGroup adapts []GroupSets to the collate.Lister interface.
type byGroup []GroupSets

func (s byGroup) Len() int           { return len(s) }
func (s byGroup) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
func (s byGroup) Bytes(i int) []byte { return []byte(s[i].Group) }
