// Package schedule owns the application state of the cartelera grid: the
// selected date, active sedes, loaded showtimes, filters, the conflict-free
// selection and the per-(date, sede) cache. All invariants live here; the TUI
// only reads derived view data and calls the narrow mutators.
package schedule

import (
	"sort"
	"time"

	"github.com/jjsantos01/cineteca-schedule-grid/model"
)

// DateWindowDays is how far ahead of today the cartelera can be browsed.
const DateWindowDays = 7

// State is the single mutable snapshot of the application. It is not safe
// for concurrent use; the bubbletea update loop serializes all mutations.
type State struct {
	today       time.Time
	currentDate time.Time

	ActiveSedes map[string]bool
	MovieData   map[string][]model.Showtime
	Cache       *Cache

	TextFilter      string // lower-cased
	TimeFilterStart string // "HH:MM" or ""
	TimeFilterEnd   string
	carouselTitle   string
	filterLock      Lock

	Selected []model.SelectedShowtime

	loading    bool
	inFlight   map[string]bool
	SedeErrors map[string]string
}

// NewState creates the startup state: today's date, the default sede active,
// an empty cache.
func NewState(now time.Time) *State {
	return &State{
		today:       truncateDate(now),
		currentDate: truncateDate(now),
		ActiveSedes: map[string]bool{model.DefaultSedeID: true},
		MovieData:   map[string][]model.Showtime{},
		Cache:       NewCache(),
		inFlight:    map[string]bool{},
		SedeErrors:  map[string]string{},
	}
}

// Today returns the lower bound of the browsable date window.
func (s *State) Today() time.Time { return s.today }

// MaxDate returns the upper bound of the browsable date window.
func (s *State) MaxDate() time.Time { return s.today.AddDate(0, 0, DateWindowDays) }

// CurrentDate returns the date being displayed.
func (s *State) CurrentDate() time.Time { return s.currentDate }

// DateKey returns the canonical key of the displayed date.
func (s *State) DateKey() string { return model.DateKey(s.currentDate) }

// InDateWindow reports whether date falls inside [today, today+7].
func (s *State) InDateWindow(date time.Time) bool {
	d := truncateDate(date)
	return !d.Before(s.today) && !d.After(s.MaxDate())
}

// SetDate moves the displayed date. Dates outside the window are rejected.
// A date change invalidates the selection: its time-of-day validity is
// date-relative and must not silently persist across days.
func (s *State) SetDate(date time.Time) bool {
	d := truncateDate(date)
	if !s.InDateWindow(d) {
		return false
	}
	if d.Equal(s.currentDate) {
		return true
	}
	s.currentDate = d
	s.Selected = nil
	s.SedeErrors = map[string]string{}
	return true
}

// NavigateDays moves the date by delta days within the window.
func (s *State) NavigateDays(delta int) bool {
	return s.SetDate(s.currentDate.AddDate(0, 0, delta))
}

// SetSedeActive toggles one sede on or off. The showtime data itself stays in
// MovieData/cache; CurrentMovieData filters by active set.
func (s *State) SetSedeActive(sedeID string, active bool) bool {
	if !model.IsValidSedeID(sedeID) {
		return false
	}
	if active {
		s.ActiveSedes[sedeID] = true
	} else {
		delete(s.ActiveSedes, sedeID)
	}
	return true
}

// ActiveSedeIDs returns the active sede ids in display order.
func (s *State) ActiveSedeIDs() []string {
	ids := make([]string, 0, len(s.ActiveSedes))
	for id := range s.ActiveSedes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CurrentMovieData returns the loaded showtimes of the active sedes only.
func (s *State) CurrentMovieData() map[string][]model.Showtime {
	current := map[string][]model.Showtime{}
	for sedeID := range s.ActiveSedes {
		if movies, ok := s.MovieData[sedeID]; ok {
			current[sedeID] = movies
		}
	}
	return current
}

// HasAnyData reports whether any active sede has at least one showtime,
// deciding between the full-screen and the incremental loading state.
func (s *State) HasAnyData() bool {
	for sedeID := range s.ActiveSedes {
		if len(s.MovieData[sedeID]) > 0 {
			return true
		}
	}
	return false
}

// Instance is one rendered (showtime, start time) pair.
type Instance struct {
	Showtime model.Showtime
	Horario  string
}

// Instances flattens the active sedes' showtimes into start-time order, the
// navigation sequence of the grid cursor.
func (s *State) Instances() []Instance {
	var instances []Instance
	for _, sedeID := range s.ActiveSedeIDs() {
		for _, showtime := range s.MovieData[sedeID] {
			for _, horario := range showtime.Horarios {
				instances = append(instances, Instance{Showtime: showtime, Horario: horario})
			}
		}
	}
	sort.SliceStable(instances, func(i, j int) bool {
		return model.TimeToMinutes(instances[i].Horario) < model.TimeToMinutes(instances[j].Horario)
	})
	return instances
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
