// Package style holds the accompaniment pattern templates. The table of
// patterns is explicit and immutable: it is built once and handed to the
// generation engine, never consulted through package-level state.
package style

// Kind selects which parts a pattern emits.
type Kind int

const (
	KindBoth Kind = iota
	KindComp
	KindBass
)

// Hit is one templated note within a bar: a beat offset from the bar start,
// a duration in beats, and an absolute velocity.
type Hit struct {
	Beat     float64 `json:"beat"`
	Duration float64 `json:"duration"`
	Velocity int     `json:"velocity"`
}

// Pattern is a named style template instantiated once per bar per chord.
type Pattern struct {
	Name     string `json:"name"`
	Kind     Kind   `json:"kind"`
	CompHits []Hit  `json:"comp_hits"`
	BassHits []Hit  `json:"bass_pattern"`

	// Clave, when non-empty, lists the allowed beat offsets within a bar.
	// With StrictClave set, every hit must land exactly on one of them.
	Clave       []float64 `json:"clave,omitempty"`
	StrictClave bool      `json:"strict_clave,omitempty"`
}

// Table is an immutable name -> pattern lookup.
type Table struct {
	patterns map[string]Pattern
	names    []string
}

// NewTable builds a table from the given patterns. Later duplicates win,
// matching map-literal semantics.
func NewTable(patterns ...Pattern) *Table {
	t := &Table{patterns: make(map[string]Pattern, len(patterns))}
	for _, p := range patterns {
		if _, exists := t.patterns[p.Name]; !exists {
			t.names = append(t.names, p.Name)
		}
		t.patterns[p.Name] = p
	}
	return t
}

// Lookup returns the pattern registered under name.
func (t *Table) Lookup(name string) (Pattern, bool) {
	p, ok := t.patterns[name]
	return p, ok
}

// Names returns the registered pattern names in registration order.
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}
