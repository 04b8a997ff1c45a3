package booking

import (
	"sort"

	"github.com/menfistoo/purobeach/internal/model"
)

// NoState is the display state of a reservation with no active state.
const NoState = ""

// Palette is an immutable snapshot of the state configuration taken at
// the start of an operation.  It is never shared between operations so
// an admin edit is visible to the very next call.
type Palette struct {
	byName map[string]model.StateDefinition
	defs   []model.StateDefinition
}

// NewPalette indexes defs by name.  Definitions are kept in display
// order for listing.
func NewPalette(defs []model.StateDefinition) Palette {
	sorted := make([]model.StateDefinition, len(defs))
	copy(sorted, defs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].DisplayOrder < sorted[j].DisplayOrder })
	p := Palette{byName: make(map[string]model.StateDefinition, len(defs)), defs: sorted}
	for _, d := range sorted {
		p.byName[d.Name] = d
	}
	return p
}

// Lookup returns the definition of name.
func (p Palette) Lookup(name string) (model.StateDefinition, bool) {
	d, ok := p.byName[name]
	return d, ok
}

// Releasing reports whether name frees furniture.  Unknown names and
// the empty sentinel never release.
func (p Palette) Releasing(name string) bool {
	d, ok := p.byName[name]
	return ok && d.ReleasesAvailability
}

// Default returns the active state attached to new reservations.
func (p Palette) Default() (model.StateDefinition, bool) {
	for _, d := range p.defs {
		if d.IsDefault && d.Active {
			return d, true
		}
	}
	return model.StateDefinition{}, false
}

// Definitions returns the configuration in display order.
func (p Palette) Definitions() []model.StateDefinition {
	out := make([]model.StateDefinition, len(p.defs))
	copy(out, p.defs)
	return out
}

// CurrentDisplayState picks the single state shown for a set of active
// states.  A settled override wins first, then the highest priority
// releasing state, then the highest priority state overall.  Ties go to
// the state added first.  The result depends only on the arguments.
func CurrentDisplayState(active []string, p Palette) string {
	if s := highest(active, p, func(d model.StateDefinition) bool { return d.IsSettledOverride }); s != NoState {
		return s
	}
	if s := highest(active, p, func(d model.StateDefinition) bool { return d.ReleasesAvailability }); s != NoState {
		return s
	}
	return highest(active, p, func(model.StateDefinition) bool { return true })
}

func highest(active []string, p Palette, keep func(model.StateDefinition) bool) string {
	best := NoState
	bestPriority := 0
	found := false
	for _, name := range active {
		d, ok := p.byName[name]
		if !ok {
			d = model.StateDefinition{Name: name}
		}
		if !keep(d) {
			continue
		}
		if !found || d.Priority > bestPriority {
			best, bestPriority, found = name, d.Priority, true
		}
	}
	return best
}

// withState appends name to the ordered set.  The bool is false when
// name was already present.
func withState(states []string, name string) ([]string, bool) {
	for _, s := range states {
		if s == name {
			return states, false
		}
	}
	out := make([]string, 0, len(states)+1)
	out = append(out, states...)
	return append(out, name), true
}

// withoutState removes name from the ordered set.  The bool is false
// when name was not present.
func withoutState(states []string, name string) ([]string, bool) {
	out := make([]string, 0, len(states))
	removed := false
	for _, s := range states {
		if s == name {
			removed = true
			continue
		}
		out = append(out, s)
	}
	return out, removed
}
