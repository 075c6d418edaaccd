package schedule

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jjsantos01/cineteca-schedule-grid/model"
)

func TestCalendarLink(t *testing.T) {
	showtime := model.Showtime{
		Titulo:       "ROMA",
		Sala:         "2",
		SalaCompleta: "SALA 2 XOCO",
		Duracion:     135,
		Sede:         "XOCO",
		SedeID:       "003",
	}
	date := time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC)

	link := CalendarLink(showtime, "19:00", date)
	parsed, err := url.Parse(link)
	if err != nil {
		t.Fatalf("expected parseable URL, got %v", err)
	}
	if parsed.Host != "calendar.google.com" {
		t.Fatalf("unexpected host: %s", parsed.Host)
	}

	params := parsed.Query()
	// 19:00 UTC-6 is 01:00Z next day; 135 minutes later is 03:15Z.
	if got := params.Get("dates"); got != "20260905T010000Z/20260905T031500Z" {
		t.Fatalf("unexpected dates: %s", got)
	}
	if !strings.Contains(params.Get("text"), "ROMA") {
		t.Fatalf("unexpected text: %s", params.Get("text"))
	}
	if !strings.Contains(params.Get("details"), "SALA 2 XOCO") {
		t.Fatalf("unexpected details: %s", params.Get("details"))
	}
	if params.Get("location") != "Cineteca Nacional - XOCO" {
		t.Fatalf("unexpected location: %s", params.Get("location"))
	}
}

func TestBuildSearchLinks(t *testing.T) {
	links := BuildSearchLinks("La Dolce Vita", "1960")

	if !strings.Contains(links.IMDB, "release_date=1960-01-01%2C1960-12-31") {
		t.Fatalf("IMDB link must narrow by year: %s", links.IMDB)
	}
	if links.Letterboxd != "https://letterboxd.com/search/films/La+Dolce+Vita+1960/" {
		t.Fatalf("unexpected letterboxd link: %s", links.Letterboxd)
	}
	parsed, err := url.Parse(links.YouTube)
	if err != nil {
		t.Fatalf("expected parseable URL, got %v", err)
	}
	if got := parsed.Query().Get("search_query"); got != "La Dolce Vita 1960 trailer" {
		t.Fatalf("unexpected youtube query: %q", got)
	}
}

func TestBuildSearchLinks_NoYear(t *testing.T) {
	links := BuildSearchLinks("Roma", "")
	if strings.Contains(links.IMDB, "release_date") {
		t.Fatalf("IMDB link must not carry a release window: %s", links.IMDB)
	}
	if links.Letterboxd != "https://letterboxd.com/search/films/Roma/" {
		t.Fatalf("unexpected letterboxd link: %s", links.Letterboxd)
	}
}
