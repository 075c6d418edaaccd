package schedule

import "github.com/jjsantos01/cineteca-schedule-grid/model"

// ToggleResult reports what a selection toggle did.
type ToggleResult struct {
	Changed  bool
	Selected bool
}

// ToggleSelection selects or deselects one (showtime, start time) pair.
// Selection is disabled while any filter is active: the user must see the
// unfiltered grid to reason about conflicts. Deselection is always allowed;
// insertion is rejected when the new [start,end) interval overlaps any
// already-selected one, keeping the selected set pairwise non-overlapping by
// construction.
func (s *State) ToggleSelection(showtime model.Showtime, horario string) ToggleResult {
	if s.HasActiveFilters() {
		return ToggleResult{}
	}

	candidate := showtime.Materialize(horario)

	for i, selected := range s.Selected {
		if selected.UniqueID == candidate.UniqueID {
			s.Selected = append(s.Selected[:i], s.Selected[i+1:]...)
			return ToggleResult{Changed: true, Selected: false}
		}
	}

	for _, selected := range s.Selected {
		if selected.Overlaps(candidate) {
			return ToggleResult{}
		}
	}

	s.Selected = append(s.Selected, candidate)
	return ToggleResult{Changed: true, Selected: true}
}

// ClearSelection drops every selected showtime.
func (s *State) ClearSelection() {
	s.Selected = nil
}

// IsSelected reports whether the pair identified by uniqueID is selected.
func (s *State) IsSelected(uniqueID string) bool {
	for _, selected := range s.Selected {
		if selected.UniqueID == uniqueID {
			return true
		}
	}
	return false
}

// InstanceFlags are the derived visual flags of one rendered instance.
type InstanceFlags struct {
	Selected bool
	// Blocked marks unselected instances that overlap the current selection
	// and therefore cannot be added.
	Blocked bool
	Visible bool
}

// FlagsFor recomputes the visual flags of one instance from the selection and
// filter state.
func (s *State) FlagsFor(showtime model.Showtime, horario string) InstanceFlags {
	flags := InstanceFlags{Visible: s.Visible(showtime, horario)}
	candidate := showtime.Materialize(horario)
	for _, selected := range s.Selected {
		if selected.UniqueID == candidate.UniqueID {
			flags.Selected = true
			return flags
		}
	}
	if len(s.Selected) > 0 && !s.HasActiveFilters() {
		for _, selected := range s.Selected {
			if selected.Overlaps(candidate) {
				flags.Blocked = true
				break
			}
		}
	}
	return flags
}
