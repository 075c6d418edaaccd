package schedule

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jjsantos01/cineteca-schedule-grid/model"
)

// Showtimes are announced in Mexico City local time. Mexico abolished DST in
// 2022, so a fixed offset is exact and avoids a tzdata dependency.
var mexicoCity = time.FixedZone("America/Mexico_City", -6*60*60)

const calendarTimestamp = "20060102T150405Z"

// CalendarLink builds a Google Calendar event URL for one showtime on the
// given date, with UTC-formatted start and end timestamps.
func CalendarLink(showtime model.Showtime, horario string, date time.Time) string {
	start := time.Date(date.Year(), date.Month(), date.Day(),
		model.TimeToMinutes(horario)/60, model.TimeToMinutes(horario)%60, 0, 0, mexicoCity)
	end := start.Add(time.Duration(showtime.Duracion) * time.Minute)

	title := strings.TrimSpace("Cineteca: " + showtime.DisplayTitle())
	description := fmt.Sprintf("Película en Cineteca Nacional\nSala: %s\nDuración: %d minutos",
		showtime.SalaCompleta, showtime.Duracion)
	location := "Cineteca Nacional - " + showtime.Sede

	params := url.Values{}
	params.Set("action", "TEMPLATE")
	params.Set("text", title)
	params.Set("dates", start.UTC().Format(calendarTimestamp)+"/"+end.UTC().Format(calendarTimestamp))
	params.Set("details", description)
	params.Set("location", location)
	return "https://calendar.google.com/calendar/render?" + params.Encode()
}

// SearchLinks are the external lookup targets for one film.
type SearchLinks struct {
	IMDB       string
	Letterboxd string
	YouTube    string
}

// BuildSearchLinks builds search URLs for a title, narrowed by year when one
// is known.
func BuildSearchLinks(title string, year string) SearchLinks {
	var links SearchLinks

	imdb := url.Values{}
	imdb.Set("title", title)
	imdb.Set("title_type", "feature,short")
	if year != "" {
		imdb.Set("release_date", year+"-01-01,"+year+"-12-31")
	}
	links.IMDB = "https://www.imdb.com/es/search/title/?" + imdb.Encode()

	slug := strings.ReplaceAll(strings.TrimSpace(title), " ", "+")
	if year != "" {
		slug += "+" + year
	}
	links.Letterboxd = "https://letterboxd.com/search/films/" + slug + "/"

	query := title + " trailer"
	if year != "" {
		query = title + " " + year + " trailer"
	}
	yt := url.Values{}
	yt.Set("search_query", query)
	links.YouTube = "https://www.youtube.com/results?" + yt.Encode()

	return links
}
