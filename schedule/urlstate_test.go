package schedule

import (
	"net/url"
	"testing"
)

func TestEncodeDecode_DateRoundTrip(t *testing.T) {
	for days := 0; days <= DateWindowDays; days++ {
		s := newTestState()
		s.SetDate(testNow.AddDate(0, 0, days))
		want := s.DateKey()

		decoded := newTestState()
		decoded.DecodeQuery(s.EncodeQuery())
		if got := decoded.DateKey(); got != want {
			t.Fatalf("day +%d: expected %s, got %s", days, want, got)
		}
	}
}

func TestDecodeQuery_RejectsOutOfWindowDates(t *testing.T) {
	s := newTestState()
	original := s.DateKey()

	for _, raw := range []string{"2020-01-01", "2030-01-01", "not-a-date", "2026-9-1"} {
		params := url.Values{}
		params.Set("date", raw)
		flags := s.DecodeQuery(params)
		if flags.DateChanged {
			t.Fatalf("date %q must be ignored", raw)
		}
		if s.DateKey() != original {
			t.Fatalf("date %q must not change state", raw)
		}
	}
}

func TestDecodeQuery_DropsUnknownSedes(t *testing.T) {
	s := newTestState()
	params := url.Values{}
	params.Set("sedes", "002, 999,003")

	flags := s.DecodeQuery(params)
	if !flags.SedesChanged {
		t.Fatal("expected sede set change")
	}
	ids := s.ActiveSedeIDs()
	if len(ids) != 2 || ids[0] != "002" || ids[1] != "003" {
		t.Fatalf("unexpected sedes: %v", ids)
	}
}

func TestDecodeQuery_AllUnknownSedesKeepsCurrent(t *testing.T) {
	s := newTestState()
	params := url.Values{}
	params.Set("sedes", "998,999")
	params.Set("filter", "x") // keeps the decode from falling back to defaults

	flags := s.DecodeQuery(params)
	if flags.SedesChanged {
		t.Fatal("an all-invalid sede list must leave the set unchanged")
	}
	ids := s.ActiveSedeIDs()
	if len(ids) != 1 || ids[0] != "003" {
		t.Fatalf("unexpected sedes: %v", ids)
	}
}

func TestDecodeQuery_EmptyParamsRestoreDefaults(t *testing.T) {
	s := newTestState()
	s.SetSedeActive("001", true)
	s.SetSedeActive("002", true)

	s.DecodeQuery(url.Values{})
	ids := s.ActiveSedeIDs()
	if len(ids) != 1 || ids[0] != "003" {
		t.Fatalf("expected default sede set, got %v", ids)
	}
}

func TestDecodeQuery_FilterChangeFlagsAndLock(t *testing.T) {
	s := newTestState()
	params := url.Values{}
	params.Set("filter", "ROMA")
	params.Set("timeStart", "15:00")
	params.Set("timeEnd", "20:00")

	flags := s.DecodeQuery(params)
	if !flags.TextFilterChanged || !flags.TimeFilterChanged {
		t.Fatalf("expected filter change flags, got %+v", flags)
	}
	if s.TextFilter != "roma" {
		t.Fatalf("text filter must be lower-cased, got %q", s.TextFilter)
	}
	if s.FilterLock() != LockInputs {
		t.Fatalf("decoded manual filters must take the inputs lock, got %v", s.FilterLock())
	}

	// Decoding the same values again reports no change.
	flags = s.DecodeQuery(params)
	if flags.TextFilterChanged || flags.TimeFilterChanged {
		t.Fatalf("unchanged filters must not flag, got %+v", flags)
	}
}

func TestEncodeQuery_OmitsEmptyFilters(t *testing.T) {
	s := newTestState()
	params := s.EncodeQuery()
	if _, ok := params["filter"]; ok {
		t.Fatal("empty filter must be omitted")
	}
	if _, ok := params["timeStart"]; ok {
		t.Fatal("empty timeStart must be omitted")
	}
	if params.Get("date") == "" || params.Get("sedes") == "" {
		t.Fatalf("date and sedes are always encoded, got %v", params)
	}
}

func TestDecodeQuery_DateChangeClearsSelection(t *testing.T) {
	s := newTestState()
	showtime := sampleShowtime("UNO", "003", "14:00")
	s.ToggleSelection(showtime, "14:00")

	params := url.Values{}
	params.Set("date", testNow.AddDate(0, 0, 2).Format("2006-01-02"))
	flags := s.DecodeQuery(params)
	if !flags.DateChanged {
		t.Fatal("expected date change")
	}
	if len(s.Selected) != 0 {
		t.Fatal("selection must not persist across a decoded date change")
	}
}
