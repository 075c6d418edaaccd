package schedule

import (
	"strings"

	"github.com/jjsantos01/cineteca-schedule-grid/model"
)

// Lock arbitrates between the two independent filter-setting surfaces: the
// manual text/time inputs and the poster-carousel quick filter. Whichever
// surface holds a non-empty filter owns the lock; changes from the other
// surface are silent no-ops until it is cleared.
type Lock int

const (
	LockNone Lock = iota
	LockCarousel
	LockInputs
)

// FilterLock returns the current lock owner.
func (s *State) FilterLock() Lock { return s.filterLock }

// CarouselTitle returns the title selected in the carousel, "" if none.
func (s *State) CarouselTitle() string { return s.carouselTitle }

// SetTextFilter applies a manual text filter. Ignored while the carousel
// owns the lock.
func (s *State) SetTextFilter(text string) bool {
	if s.filterLock == LockCarousel {
		return false
	}
	s.TextFilter = strings.ToLower(text)
	s.updateFilterLock()
	return true
}

// SetTimeFilter applies the manual time range. Ignored while the carousel
// owns the lock. Empty bounds mean open-ended.
func (s *State) SetTimeFilter(start string, end string) bool {
	if s.filterLock == LockCarousel {
		return false
	}
	s.TimeFilterStart = start
	s.TimeFilterEnd = end
	s.updateFilterLock()
	return true
}

// ClearTimeFilter drops the manual time range.
func (s *State) ClearTimeFilter() bool {
	return s.SetTimeFilter("", "")
}

// SetCarouselFilter applies the quick filter for one film title. Ignored
// while the manual inputs own the lock. Selecting the already-active title
// clears the filter instead.
func (s *State) SetCarouselFilter(title string) bool {
	if s.filterLock == LockInputs {
		return false
	}
	if strings.EqualFold(title, s.carouselTitle) {
		return s.ClearCarouselFilter()
	}
	s.carouselTitle = title
	s.TextFilter = strings.ToLower(title)
	s.updateFilterLock()
	return true
}

// ClearCarouselFilter releases the carousel filter and its lock.
func (s *State) ClearCarouselFilter() bool {
	if s.carouselTitle == "" {
		return false
	}
	s.carouselTitle = ""
	s.TextFilter = ""
	s.updateFilterLock()
	return true
}

// updateFilterLock derives the lock from which surface holds a filter.
func (s *State) updateFilterLock() {
	switch {
	case s.carouselTitle != "":
		s.filterLock = LockCarousel
	case s.TextFilter != "" || s.TimeFilterStart != "" || s.TimeFilterEnd != "":
		s.filterLock = LockInputs
	default:
		s.filterLock = LockNone
	}
}

// HasActiveFilters reports whether any filter is set. Selection toggling is
// disabled while true.
func (s *State) HasActiveFilters() bool {
	return s.TextFilter != "" || s.TimeFilterStart != "" || s.TimeFilterEnd != ""
}

// Visible evaluates the filter predicate for one (showtime, start) instance.
func (s *State) Visible(showtime model.Showtime, horario string) bool {
	return s.passesTextFilter(showtime) && s.passesTimeFilter(horario)
}

func (s *State) passesTextFilter(showtime model.Showtime) bool {
	return s.TextFilter == "" || strings.Contains(strings.ToLower(showtime.Titulo), s.TextFilter)
}

func (s *State) passesTimeFilter(horario string) bool {
	if s.TimeFilterStart == "" && s.TimeFilterEnd == "" {
		return true
	}
	start := 0
	if s.TimeFilterStart != "" {
		start = model.TimeToMinutes(s.TimeFilterStart)
	}
	end := 24 * 60
	if s.TimeFilterEnd != "" {
		end = model.TimeToMinutes(s.TimeFilterEnd)
	}
	minutes := model.TimeToMinutes(horario)
	return minutes >= start && minutes <= end
}

// MatchCounts recomputes the per-surface match counters shown next to the
// filter inputs: instances passing the text filter and instances inside the
// time range, counted over everything currently rendered.
func (s *State) MatchCounts() (textMatches int, timeMatches int) {
	for _, instance := range s.Instances() {
		if !s.Visible(instance.Showtime, instance.Horario) {
			continue
		}
		if s.TextFilter != "" {
			textMatches++
		}
		if s.TimeFilterStart != "" || s.TimeFilterEnd != "" {
			timeMatches++
		}
	}
	return textMatches, timeMatches
}
