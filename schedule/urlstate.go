package schedule

import (
	"net/url"
	"strings"
	"time"

	"github.com/jjsantos01/cineteca-schedule-grid/model"
)

// ChangeFlags reports which parts of the state a decode actually changed, so
// the caller can reset dependent state (a date change already cascades into
// a selection clear inside SetDate).
type ChangeFlags struct {
	DateChanged       bool
	SedesChanged      bool
	TextFilterChanged bool
	TimeFilterChanged bool
}

// EncodeQuery renders the shareable form of the state as URL query
// parameters. Empty filters are omitted.
func (s *State) EncodeQuery() url.Values {
	params := url.Values{}
	params.Set("date", s.DateKey())
	params.Set("sedes", strings.Join(s.ActiveSedeIDs(), ","))
	if s.TextFilter != "" {
		params.Set("filter", s.TextFilter)
	}
	if s.TimeFilterStart != "" {
		params.Set("timeStart", s.TimeFilterStart)
	}
	if s.TimeFilterEnd != "" {
		params.Set("timeEnd", s.TimeFilterEnd)
	}
	return params
}

// ShareQuery is EncodeQuery flattened to a copyable string.
func (s *State) ShareQuery() string {
	return s.EncodeQuery().Encode()
}

// DecodeQuery applies shareable query parameters to the state. Invalid or
// out-of-window dates and unknown sede ids are ignored silently, falling
// back to the current state. When no recognized parameter is present the
// default sede set is restored.
func (s *State) DecodeQuery(params url.Values) ChangeFlags {
	var flags ChangeFlags

	if raw := params.Get("date"); raw != "" {
		if date, err := time.ParseInLocation(time.DateOnly, raw, s.today.Location()); err == nil {
			if s.InDateWindow(date) && !truncateDate(date).Equal(s.currentDate) {
				s.SetDate(date)
				flags.DateChanged = true
			}
		}
	}

	if raw := params.Get("sedes"); raw != "" {
		var valid []string
		for _, id := range strings.Split(raw, ",") {
			id = strings.TrimSpace(id)
			if model.IsValidSedeID(id) {
				valid = append(valid, id)
			}
		}
		if len(valid) > 0 {
			previous := strings.Join(s.ActiveSedeIDs(), ",")
			s.ActiveSedes = map[string]bool{}
			for _, id := range valid {
				s.ActiveSedes[id] = true
			}
			flags.SedesChanged = previous != strings.Join(s.ActiveSedeIDs(), ",")
		}
	}

	textFilter := strings.ToLower(params.Get("filter"))
	if textFilter != s.TextFilter {
		s.TextFilter = textFilter
		flags.TextFilterChanged = true
	}

	timeStart := params.Get("timeStart")
	timeEnd := params.Get("timeEnd")
	if timeStart != s.TimeFilterStart || timeEnd != s.TimeFilterEnd {
		s.TimeFilterStart = timeStart
		s.TimeFilterEnd = timeEnd
		flags.TimeFilterChanged = true
	}
	s.updateFilterLock()

	if params.Get("date") == "" && params.Get("sedes") == "" &&
		params.Get("filter") == "" && timeStart == "" && timeEnd == "" {
		s.ActiveSedes = map[string]bool{model.DefaultSedeID: true}
	}

	return flags
}
