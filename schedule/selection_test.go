package schedule

import (
	"reflect"
	"testing"

	"github.com/jjsantos01/cineteca-schedule-grid/model"
)

func TestToggleSelection_RejectsOverlap(t *testing.T) {
	s := newTestState()
	first := sampleShowtime("UNO", "003", "14:00") // 90 min: 14:00–15:30
	second := sampleShowtime("DOS", "002", "15:00")

	if result := s.ToggleSelection(first, "14:00"); !result.Changed || !result.Selected {
		t.Fatalf("first selection must succeed, got %+v", result)
	}
	if result := s.ToggleSelection(second, "15:00"); result.Changed {
		t.Fatalf("overlapping selection must be rejected, got %+v", result)
	}
	if len(s.Selected) != 1 {
		t.Fatalf("expected 1 selected, got %d", len(s.Selected))
	}

	// Pairwise non-overlap invariant over the whole set.
	for i, a := range s.Selected {
		for j, b := range s.Selected {
			if i != j && a.Overlaps(b) {
				t.Fatalf("selected set contains overlap: %+v / %+v", a, b)
			}
		}
	}
}

func TestToggleSelection_BackToBackIsNotOverlap(t *testing.T) {
	s := newTestState()
	first := sampleShowtime("UNO", "003", "14:00") // ends 15:30
	second := sampleShowtime("DOS", "002", "15:30")

	s.ToggleSelection(first, "14:00")
	if result := s.ToggleSelection(second, "15:30"); !result.Changed {
		t.Fatal("half-open intervals: a showtime starting exactly at the previous end must be selectable")
	}
}

func TestToggleSelection_Idempotent(t *testing.T) {
	s := newTestState()
	showtime := sampleShowtime("UNO", "003", "14:00")

	before := append([]model.SelectedShowtime(nil), s.Selected...)
	s.ToggleSelection(showtime, "14:00")
	result := s.ToggleSelection(showtime, "14:00")
	if !result.Changed || result.Selected {
		t.Fatalf("second toggle must deselect, got %+v", result)
	}
	if len(s.Selected) != len(before) {
		t.Fatalf("select+deselect must restore the prior set, got %+v", s.Selected)
	}
}

func TestToggleSelection_DeselectionAllowedAroundOverlaps(t *testing.T) {
	s := newTestState()
	first := sampleShowtime("UNO", "003", "14:00")
	s.ToggleSelection(first, "14:00")

	// Deselection is never blocked, even though re-inserting would conflict
	// with nothing here; the point is the removal path short-circuits before
	// any overlap test.
	if result := s.ToggleSelection(first, "14:00"); !result.Changed || result.Selected {
		t.Fatalf("deselection must always be allowed, got %+v", result)
	}
}

func TestToggleSelection_NoOpUnderActiveFilters(t *testing.T) {
	s := newTestState()
	showtime := sampleShowtime("UNO", "003", "14:00")

	s.SetTextFilter("uno")
	if result := s.ToggleSelection(showtime, "14:00"); result.Changed {
		t.Fatalf("selection must be disabled under filtering, got %+v", result)
	}
	if len(s.Selected) != 0 {
		t.Fatal("nothing may be selected while filters are active")
	}
}

func TestToggleSelection_ThreeMutuallyCompatibleSlots(t *testing.T) {
	s := newTestState()
	showtime := model.Showtime{
		Titulo:   "PELÍCULA X",
		Sala:     "1",
		Horarios: []string{"13:00", "15:30", "18:00"},
		Duracion: 105,
		SedeID:   "003",
		Sede:     "XOCO",
	}

	for _, horario := range showtime.Horarios {
		if result := s.ToggleSelection(showtime, horario); !result.Selected {
			t.Fatalf("slot %s must be selectable, got %+v", horario, result)
		}
	}
	if len(s.Selected) != 3 {
		t.Fatalf("13:00+105 ends 14:45, 15:30+105 ends 17:15: all three slots are compatible, got %d", len(s.Selected))
	}
}

func TestFlagsFor(t *testing.T) {
	s := newTestState()
	selected := sampleShowtime("UNO", "003", "14:00")
	overlapping := sampleShowtime("DOS", "002", "15:00")
	free := sampleShowtime("TRES", "002", "19:00")

	s.ToggleSelection(selected, "14:00")

	if flags := s.FlagsFor(selected, "14:00"); !flags.Selected || flags.Blocked {
		t.Fatalf("unexpected flags for selected instance: %+v", flags)
	}
	if flags := s.FlagsFor(overlapping, "15:00"); !flags.Blocked || flags.Selected {
		t.Fatalf("unexpected flags for overlapping instance: %+v", flags)
	}
	if flags := s.FlagsFor(free, "19:00"); flags.Blocked || flags.Selected || !flags.Visible {
		t.Fatalf("unexpected flags for free instance: %+v", flags)
	}
}

func TestInstances_SortedByStartTime(t *testing.T) {
	s := newTestState()
	s.SetSedeActive("002", true)
	s.MovieData["003"] = []model.Showtime{sampleShowtime("TARDE", "003", "19:00", "13:30")}
	s.MovieData["002"] = []model.Showtime{sampleShowtime("TEMPRANO", "002", "12:00")}

	instances := s.Instances()
	var horarios []string
	for _, instance := range instances {
		horarios = append(horarios, instance.Horario)
	}
	want := []string{"12:00", "13:30", "19:00"}
	if !reflect.DeepEqual(horarios, want) {
		t.Fatalf("expected %v, got %v", want, horarios)
	}
}
