package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinTable(t *testing.T) {
	table := Builtin()

	expected := []string{
		"swing_basic", "ballad", "bossa", "tresillo_strict", "comp_offbeat", "walking_bass",
	}
	assert.Equal(t, expected, table.Names())

	for _, name := range expected {
		pattern, ok := table.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, name, pattern.Name)
		if pattern.Kind != KindBass {
			assert.NotEmpty(t, pattern.CompHits, name)
		}
		if pattern.Kind != KindComp {
			assert.NotEmpty(t, pattern.BassHits, name)
		}
	}

	_, ok := table.Lookup("nope")
	assert.False(t, ok)
}

func TestBuiltinHitsAreInRange(t *testing.T) {
	table := Builtin()
	for _, name := range table.Names() {
		pattern, _ := table.Lookup(name)
		for _, hit := range append(append([]Hit{}, pattern.CompHits...), pattern.BassHits...) {
			assert.GreaterOrEqual(t, hit.Beat, 0.0, name)
			assert.Less(t, hit.Beat, 4.0, name)
			assert.Positive(t, hit.Duration, name)
			assert.GreaterOrEqual(t, hit.Velocity, 1, name)
			assert.LessOrEqual(t, hit.Velocity, 127, name)
		}
	}
}

func TestStrictClaveHitsSitOnGrid(t *testing.T) {
	table := Builtin()
	pattern, ok := table.Lookup("tresillo_strict")
	require.True(t, ok)
	require.True(t, pattern.StrictClave)
	require.NotEmpty(t, pattern.Clave)

	onGrid := func(beat float64) bool {
		for _, allowed := range pattern.Clave {
			if allowed == beat {
				return true
			}
		}
		return false
	}
	for _, hit := range pattern.CompHits {
		assert.True(t, onGrid(hit.Beat), "comp hit at %v off grid", hit.Beat)
	}
	for _, hit := range pattern.BassHits {
		assert.True(t, onGrid(hit.Beat), "bass hit at %v off grid", hit.Beat)
	}
}

func TestNamesIsACopy(t *testing.T) {
	table := Builtin()
	names := table.Names()
	names[0] = "mutated"
	assert.NotEqual(t, names[0], table.Names()[0])
}
