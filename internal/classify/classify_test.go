package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"coachfit/server/internal/catalog"
)

func TestDetectGroupKeywordRules(t *testing.T) {
	cases := map[string]string{
		"Barbell Squat":       "Gambe",
		"Panca Piana":         "Petto",
		"Chest Press":         "Petto",
		"Lat Machine":         "Schiena",
		"Rematore Bilanciere": "Schiena",
		"Military Press":      "Spalle",
		"Hammer Curl":         "Bicipiti",
		"French Press":        "Tricipiti",
		"Crunch su Panca":     "Petto", // "panca" outranks "crunch": rule order is the contract
		"Plank":               "Core",
		"Polpacci in Piedi":   "Gambe",
	}
	for name, want := range cases {
		assert.Equal(t, want, DetectGroup(name), "name %q", name)
	}
}

func TestDetectGroupPriorityPins(t *testing.T) {
	// Each name matches two rules; the earlier rule must win.
	assert.Equal(t, "Petto", DetectGroup("Panca Squat"), "Petto rule precedes Gambe")
	assert.Equal(t, "Gambe", DetectGroup("Leg Curl"), "Gambe rule precedes Bicipiti")
	assert.Equal(t, "Gambe", DetectGroup("Leg Extension"))
	assert.Equal(t, "Schiena", DetectGroup("Pullover Crunch"), "Schiena rule precedes Core")
}

func TestDetectGroupCatalogFallback(t *testing.T) {
	// No keyword rule matches, but the name is in the catalog.
	assert.Equal(t, "Tricipiti", DetectGroup("Dip alle Parallele"))
	assert.Equal(t, "Tricipiti", DetectGroup("dip ALLE parallele"), "lookup is case-insensitive")
}

func TestDetectGroupFallsBackToOther(t *testing.T) {
	assert.Equal(t, catalog.GroupOther, DetectGroup("Unknown Movement 123"))
	assert.Equal(t, catalog.GroupOther, DetectGroup(""))
	assert.Equal(t, catalog.GroupOther, DetectGroup("   "))
}

func TestDetectGroupDeterministic(t *testing.T) {
	names := []string{"Barbell Squat", "Hammer Curl", "Unknown Movement 123", "Dip alle Parallele"}
	for _, n := range names {
		assert.Equal(t, DetectGroup(n), DetectGroup(n))
	}
}
