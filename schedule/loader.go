package schedule

import (
	"github.com/jjsantos01/cineteca-schedule-grid/model"
)

// FetchRequest names one cartelera fetch the caller must perform. DateKey is
// the date the request was issued for; completions carrying a stale DateKey
// are discarded so a slow fetch cannot overwrite a newer date's state.
type FetchRequest struct {
	DateKey string
	SedeID  string
}

// BeginLoad starts a full load of the active sedes for the current date.
// It is a drop-if-busy guard: while a load is running, further calls return
// busy=false and change nothing. Cached sedes are applied immediately so
// they render before network-bound ones; the returned requests are the
// sedes that actually need fetching.
func (s *State) BeginLoad() (requests []FetchRequest, ok bool) {
	if s.loading {
		return nil, false
	}
	s.loading = true
	s.MovieData = map[string][]model.Showtime{}
	s.SedeErrors = map[string]string{}

	dateKey := s.DateKey()
	for _, sedeID := range s.ActiveSedeIDs() {
		if cached, hit := s.Cache.Get(dateKey, sedeID); hit {
			s.MovieData[sedeID] = cached
			continue
		}
		if s.inFlight[sedeID] {
			continue
		}
		s.inFlight[sedeID] = true
		requests = append(requests, FetchRequest{DateKey: dateKey, SedeID: sedeID})
	}
	if len(requests) == 0 {
		s.loading = false
	}
	return requests, true
}

// BeginSedeLoad starts a load for a single just-activated sede. Cache hits
// are applied immediately with no request; a sede already in flight yields
// no request either.
func (s *State) BeginSedeLoad(sedeID string) (FetchRequest, bool) {
	dateKey := s.DateKey()
	if cached, hit := s.Cache.Get(dateKey, sedeID); hit {
		s.MovieData[sedeID] = cached
		return FetchRequest{}, false
	}
	if s.inFlight[sedeID] {
		return FetchRequest{}, false
	}
	s.inFlight[sedeID] = true
	return FetchRequest{DateKey: dateKey, SedeID: sedeID}, true
}

// CompleteLoad applies one fetch result. Results are applied in completion
// order, independently of request order. Failures stay isolated to their
// sede: the error is recorded for a per-sede banner and sibling loads keep
// going. Stale results (request dateKey no longer current) are dropped.
func (s *State) CompleteLoad(req FetchRequest, showtimes []model.Showtime, err error) {
	delete(s.inFlight, req.SedeID)
	if len(s.inFlight) == 0 {
		s.loading = false
	}

	if req.DateKey != s.DateKey() {
		// Stale completion from before a date change. Still cache successful
		// data; it is keyed by its own date and stays valid there.
		if err == nil {
			s.Cache.Put(req.DateKey, req.SedeID, showtimes)
		}
		return
	}

	if err != nil {
		if sede, ok := model.Sedes[req.SedeID]; ok {
			s.SedeErrors[req.SedeID] = "Error al cargar datos de " + sede.Nombre
		} else {
			s.SedeErrors[req.SedeID] = "Error al cargar datos de " + req.SedeID
		}
		return
	}

	s.MovieData[req.SedeID] = showtimes
	s.Cache.Put(req.DateKey, req.SedeID, showtimes)
	delete(s.SedeErrors, req.SedeID)
}

// Loading reports whether a full load is in progress.
func (s *State) Loading() bool { return s.loading }

// LoadingSedes returns the sedes currently in flight, in display order.
func (s *State) LoadingSedes() []string {
	var names []string
	for _, sedeID := range model.ValidSedeIDs {
		if s.inFlight[sedeID] {
			names = append(names, model.Sedes[sedeID].Nombre)
		}
	}
	return names
}

// InFlight reports whether sedeID has an outstanding fetch.
func (s *State) InFlight(sedeID string) bool { return s.inFlight[sedeID] }

// AnyInFlight reports whether any sede has an outstanding fetch. Single-sede
// loads keep this true without raising the full-load flag.
func (s *State) AnyInFlight() bool { return len(s.inFlight) > 0 }
