// Package catalog holds the static exercise reference data: a fixed list of
// exercises with muscle group, equipment and modality. It is loaded once at
// startup and never mutated at runtime; template entries copy fields out of
// it at insertion time instead of referencing it live.
package catalog

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MuscleGroups are the coarse classification tags used to aggregate
// training volume. GroupOther is the fallback for anything unclassified.
var MuscleGroups = []string{
	"Petto", "Schiena", "Gambe", "Spalle", "Bicipiti", "Tricipiti", "Core", GroupOther,
}

// GroupOther is the sentinel group for entries without a muscle group.
const GroupOther = "Altro"

// Entry is one exercise in the library.
type Entry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MuscleGroup string `json:"muscleGroup"`
	Equipment   string `json:"equipment"`
	Modality    string `json:"modality"`
}

// Slug derives a stable identifier from an exercise name: lowercase,
// accents stripped, non-alphanumeric runs collapsed to a single dash.
func Slug(name string) string {
	lower := strings.ToLower(name)
	stripped, _, err := transform.String(transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	), lower)
	if err != nil {
		stripped = lower
	}

	var b strings.Builder
	dash := false
	for _, r := range stripped {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
		} else if !dash && b.Len() > 0 {
			b.WriteRune('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func entry(name, muscle, equipment, modality string) Entry {
	return Entry{ID: Slug(name), Name: name, MuscleGroup: muscle, Equipment: equipment, Modality: modality}
}

// Exercises is the full library, grouped roughly by muscle.
var Exercises = []Entry{
	// Petto
	entry("Panca Piana", "Petto", "Bilanciere", "Spinta"),
	entry("Panca Inclinata Manubri", "Petto", "Manubri", "Spinta"),
	entry("Chest Press", "Petto", "Macchina", "Spinta"),
	entry("Croci ai Cavi", "Petto", "Cavi", "Spinta"),

	// Schiena
	entry("Lat Machine", "Schiena", "Macchina", "Trazione"),
	entry("Rematore Manubrio", "Schiena", "Manubri", "Trazione"),
	entry("Trazioni alla Sbarra", "Schiena", "Corpo libero", "Trazione"),
	entry("Pulldown ai Cavi", "Schiena", "Cavi", "Trazione"),

	// Gambe
	entry("Squat", "Gambe", "Bilanciere", "Gambe"),
	entry("Affondi Manubri", "Gambe", "Manubri", "Gambe"),
	entry("Leg Press", "Gambe", "Macchina", "Gambe"),
	entry("Stacchi Rumeni", "Gambe", "Bilanciere", "Gambe"),
	entry("Polpacci in Piedi", "Gambe", "Macchina", "Gambe"),

	// Spalle
	entry("Lento Avanti Bilanciere", "Spalle", "Bilanciere", "Spalle"),
	entry("Arnold Press", "Spalle", "Manubri", "Spalle"),
	entry("Alzate Laterali", "Spalle", "Manubri", "Spalle"),

	// Braccia
	entry("Curl Manubri", "Bicipiti", "Manubri", "Braccia"),
	entry("Curl Bilanciere", "Bicipiti", "Bilanciere", "Braccia"),
	entry("Pushdown ai Cavi", "Tricipiti", "Cavi", "Braccia"),
	entry("French Press", "Tricipiti", "Bilanciere", "Braccia"),

	// Core
	entry("Plank", "Core", "Corpo libero", "Core"),
	entry("Crunch su Panca", "Core", "Panca", "Core"),

	// Extra
	entry("Panca Decline", "Petto", "Bilanciere", "Spinta"),
	entry("Pullover Manubrio", "Schiena", "Manubri", "Trazione"),
	entry("Rematore Bilanciere", "Schiena", "Bilanciere", "Trazione"),
	entry("Leg Curl", "Gambe", "Macchina", "Gambe"),
	entry("Leg Extension", "Gambe", "Macchina", "Gambe"),
	entry("Alzate Frontali", "Spalle", "Manubri", "Spalle"),
	entry("Hammer Curl", "Bicipiti", "Manubri", "Braccia"),
	entry("Dip alle Parallele", "Tricipiti", "Corpo libero", "Braccia"),
}

// Equipments lists the distinct equipment values, sorted.
func Equipments() []string {
	return distinct(func(e Entry) string { return e.Equipment })
}

// Modalities lists the distinct modality values, sorted.
func Modalities() []string {
	return distinct(func(e Entry) string { return e.Modality })
}

func distinct(f func(Entry) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range Exercises {
		v := f(e)
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// FindByName returns the catalog entry with the given name, matched
// case-insensitively, or nil.
func FindByName(name string) *Entry {
	lower := strings.ToLower(strings.TrimSpace(name))
	for i := range Exercises {
		if strings.ToLower(Exercises[i].Name) == lower {
			return &Exercises[i]
		}
	}
	return nil
}

// FindByID returns the catalog entry with the given slug id, or nil.
func FindByID(id string) *Entry {
	for i := range Exercises {
		if Exercises[i].ID == id {
			return &Exercises[i]
		}
	}
	return nil
}

// Search filters the library by muscle group and equipment, then ranks by
// query: names starting with the query come before names merely containing
// it. An empty query returns the filtered library in catalog order.
func Search(query, muscleGroup, equipment string) []Entry {
	var base []Entry
	for _, e := range Exercises {
		if muscleGroup != "" && e.MuscleGroup != muscleGroup {
			continue
		}
		if equipment != "" && e.Equipment != equipment {
			continue
		}
		base = append(base, e)
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return base
	}

	var starts, includes []Entry
	for _, e := range base {
		n := strings.ToLower(e.Name)
		if strings.HasPrefix(n, q) {
			starts = append(starts, e)
		} else if strings.Contains(n, q) {
			includes = append(includes, e)
		}
	}
	return append(starts, includes...)
}
