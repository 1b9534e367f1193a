// Package classify infers a muscle group from a free-text exercise name.
package classify

import (
	"regexp"
	"strings"

	"coachfit/server/internal/catalog"
)

type rule struct {
	re    *regexp.Regexp
	group string
}

// rules are evaluated in order; the first match wins. The order is load
// bearing for ambiguous names (e.g. "Panca Piana" matches the Petto rule
// before anything else can see it), so keep it stable.
var rules = []rule{
	{regexp.MustCompile(`panca|chest|petto`), "Petto"},
	{regexp.MustCompile(`lat machine|rematore|pull.?down|trazioni|row|pullover|schiena`), "Schiena"},
	{regexp.MustCompile(`squat|affondi|pressa|stacchi|leg|quad|hamstring|calf|polpacci|glute`), "Gambe"},
	{regexp.MustCompile(`spalle|shoulder|lateral|military|arnold|overhead`), "Spalle"},
	{regexp.MustCompile(`bicipit|curl|hammer`), "Bicipiti"},
	{regexp.MustCompile(`tricipit|french|pushdown|dips`), "Tricipiti"},
	{regexp.MustCompile(`addom|core|crunch|plank|obliqu`), "Core"},
}

// DetectGroup returns the most likely muscle group for an exercise name.
// Keyword rules are tried first in priority order; if none match, the name
// is looked up in the catalog; if still unresolved the result is
// catalog.GroupOther. The function is total: it always returns a group.
func DetectGroup(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return catalog.GroupOther
	}
	for _, r := range rules {
		if r.re.MatchString(n) {
			return r.group
		}
	}
	if e := catalog.FindByName(n); e != nil && e.MuscleGroup != "" {
		return e.MuscleGroup
	}
	return catalog.GroupOther
}
