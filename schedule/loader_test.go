package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/jjsantos01/cineteca-schedule-grid/model"
)

var testNow = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

func newTestState() *State {
	return NewState(testNow)
}

func sampleShowtime(titulo string, sedeID string, horarios ...string) model.Showtime {
	return model.Showtime{
		Titulo:   titulo,
		Sala:     "1",
		Horarios: horarios,
		Duracion: 90,
		SedeID:   sedeID,
		Sede:     model.Sedes[sedeID].Nombre,
	}
}

func TestBeginLoad_DropIfBusy(t *testing.T) {
	s := newTestState()
	s.SetSedeActive("002", true)

	requests, ok := s.BeginLoad()
	if !ok {
		t.Fatal("first load must start")
	}
	if len(requests) != 2 {
		t.Fatalf("expected 2 fetch requests, got %d", len(requests))
	}

	if _, ok := s.BeginLoad(); ok {
		t.Fatal("concurrent load must be a no-op while busy")
	}
}

func TestBeginLoad_CacheHitsApplyImmediately(t *testing.T) {
	s := newTestState()
	s.SetSedeActive("002", true)
	cached := []model.Showtime{sampleShowtime("ROMA", "002", "16:00")}
	s.Cache.Put(s.DateKey(), "002", cached)

	requests, ok := s.BeginLoad()
	if !ok {
		t.Fatal("load must start")
	}
	if len(requests) != 1 || requests[0].SedeID != "003" {
		t.Fatalf("only the uncached sede should be fetched, got %+v", requests)
	}
	if len(s.MovieData["002"]) != 1 {
		t.Fatal("cached sede must populate working data before fetches resolve")
	}
}

func TestCompleteLoad_CompletionOrderIsApplied(t *testing.T) {
	s := newTestState()
	s.SetSedeActive("002", true)
	requests, _ := s.BeginLoad()
	if len(requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(requests))
	}

	// Venue B (003) resolves before venue A (002).
	var reqA, reqB FetchRequest
	for _, req := range requests {
		if req.SedeID == "002" {
			reqA = req
		} else {
			reqB = req
		}
	}

	s.CompleteLoad(reqB, []model.Showtime{sampleShowtime("UNO", "003", "14:00")}, nil)
	if len(s.MovieData["003"]) != 1 {
		t.Fatal("B's entries must be present before A resolves")
	}
	if len(s.MovieData["002"]) != 0 {
		t.Fatal("A must not have data yet")
	}
	if !s.Loading() {
		t.Fatal("load must remain in progress while A is in flight")
	}

	s.CompleteLoad(reqA, []model.Showtime{sampleShowtime("DOS", "002", "18:00")}, nil)
	if s.Loading() {
		t.Fatal("load must finish when the last sede completes")
	}
	if len(s.MovieData["002"]) != 1 {
		t.Fatal("A's entries must be applied on completion")
	}
}

func TestCompleteLoad_FailureIsIsolated(t *testing.T) {
	s := newTestState()
	s.SetSedeActive("002", true)
	requests, _ := s.BeginLoad()

	s.CompleteLoad(requests[0], nil, errors.New("network down"))
	s.CompleteLoad(requests[1], []model.Showtime{sampleShowtime("UNO", requests[1].SedeID, "14:00")}, nil)

	if len(s.SedeErrors) != 1 {
		t.Fatalf("expected one per-sede error, got %+v", s.SedeErrors)
	}
	if _, ok := s.SedeErrors[requests[0].SedeID]; !ok {
		t.Fatalf("error must be recorded for the failing sede, got %+v", s.SedeErrors)
	}
	if len(s.MovieData[requests[1].SedeID]) != 1 {
		t.Fatal("sibling fetch must still be applied")
	}
	if _, hit := s.Cache.Get(s.DateKey(), requests[0].SedeID); hit {
		t.Fatal("failed fetch must not be cached")
	}
}

func TestCompleteLoad_StaleDateKeyDiscarded(t *testing.T) {
	s := newTestState()
	requests, _ := s.BeginLoad()
	staleReq := requests[0]

	if !s.SetDate(testNow.AddDate(0, 0, 1)) {
		t.Fatal("date change within window must succeed")
	}

	stale := []model.Showtime{sampleShowtime("VIEJA", "003", "20:00")}
	s.CompleteLoad(staleReq, stale, nil)

	if len(s.MovieData["003"]) != 0 {
		t.Fatal("stale completion must not overwrite newer state")
	}
	if _, hit := s.Cache.Get(staleReq.DateKey, "003"); !hit {
		t.Fatal("stale data is still valid under its own date key")
	}
	if _, hit := s.Cache.Get(s.DateKey(), "003"); hit {
		t.Fatal("stale data must not leak into the new date's cache entry")
	}
}

func TestBeginSedeLoad_InFlightGuard(t *testing.T) {
	s := newTestState()
	req, ok := s.BeginSedeLoad("002")
	if !ok {
		t.Fatal("expected a fetch request for an uncached sede")
	}
	if req.SedeID != "002" || req.DateKey != s.DateKey() {
		t.Fatalf("unexpected request: %+v", req)
	}
	if _, ok := s.BeginSedeLoad("002"); ok {
		t.Fatal("a sede may not have two in-flight loads")
	}

	s.CompleteLoad(req, nil, nil)
	s.Cache.Put(s.DateKey(), "002", []model.Showtime{sampleShowtime("ROMA", "002", "16:00")})
	if _, ok := s.BeginSedeLoad("002"); ok {
		t.Fatal("cache hit must not produce a fetch request")
	}
	if len(s.MovieData["002"]) != 1 {
		t.Fatal("cache hit must populate working data")
	}
}

func TestSetDate_WindowAndCascade(t *testing.T) {
	s := newTestState()
	s.MovieData["003"] = []model.Showtime{sampleShowtime("ROMA", "003", "16:00")}
	s.Selected = []model.SelectedShowtime{s.MovieData["003"][0].Materialize("16:00")}

	if s.SetDate(testNow.AddDate(0, 0, -1)) {
		t.Fatal("dates before today must be rejected")
	}
	if s.SetDate(testNow.AddDate(0, 0, DateWindowDays+1)) {
		t.Fatal("dates past the window must be rejected")
	}
	if len(s.Selected) != 1 {
		t.Fatal("rejected date changes must not touch the selection")
	}

	if !s.SetDate(testNow.AddDate(0, 0, 3)) {
		t.Fatal("date inside the window must be accepted")
	}
	if len(s.Selected) != 0 {
		t.Fatal("a date change must clear the selection")
	}
}
