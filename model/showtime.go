package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ForoSala is the room label used for open-air screenings. It is not a
// numbered hall and sorts after every numeric sala.
const ForoSala = "FORO AL AIRE LIBRE"

// Showtime is one title+sala+duration listing with one or more start times,
// parsed from a single scraped cartelera block.
type Showtime struct {
	Titulo       string   `json:"titulo"`
	TipoVersion  string   `json:"tipoVersion"` // "", "DOB" or "SUB"
	Sala         string   `json:"sala"`        // numeric label or ForoSala
	SalaCompleta string   `json:"salaCompleta"`
	Horarios     []string `json:"horarios"` // unique "HH:MM" strings
	Duracion     int      `json:"duracion"` // minutes
	Sede         string   `json:"sede"`
	SedeID       string   `json:"sedeId"`
	SedeCodigo   string   `json:"sedeCodigo"`
	FilmID       string   `json:"filmId,omitempty"` // opaque detail lookup ref
}

// DisplayTitle renders the title with its version tag, if any.
func (s Showtime) DisplayTitle() string {
	if s.TipoVersion == "" {
		return s.Titulo
	}
	return s.Titulo + " " + s.TipoVersion
}

// UniqueID is the stable identity for one (showtime, start time) pair. It is
// used for selection membership and visited tracking.
func (s Showtime) UniqueID(horario string) string {
	return s.SedeID + "-" + s.Sala + "-" + horario + "-" + s.Titulo
}

// SalaSortKey orders numeric salas ascending with the outdoor forum last.
func (s Showtime) SalaSortKey() int {
	if n, err := strconv.Atoi(s.Sala); err == nil {
		return n
	}
	return 1 << 20
}

// SelectedShowtime is a Showtime materialized at one specific start time.
type SelectedShowtime struct {
	Titulo       string `json:"titulo"`
	TipoVersion  string `json:"tipoVersion"`
	Horario      string `json:"horario"`
	Duracion     int    `json:"duracion"`
	Sala         string `json:"sala"`
	Sede         string `json:"sede"`
	SedeID       string `json:"sedeId"`
	StartMinutes int    `json:"startMinutes"`
	EndMinutes   int    `json:"endMinutes"`
	UniqueID     string `json:"uniqueId"`
}

// Materialize binds the showtime to one start time, computing its interval.
func (s Showtime) Materialize(horario string) SelectedShowtime {
	start := TimeToMinutes(horario)
	return SelectedShowtime{
		Titulo:       s.Titulo,
		TipoVersion:  s.TipoVersion,
		Horario:      horario,
		Duracion:     s.Duracion,
		Sala:         s.Sala,
		Sede:         s.Sede,
		SedeID:       s.SedeID,
		StartMinutes: start,
		EndMinutes:   start + s.Duracion,
		UniqueID:     s.UniqueID(horario),
	}
}

// Overlaps reports whether the [start,end) intervals of two selections
// intersect.
func (s SelectedShowtime) Overlaps(other SelectedShowtime) bool {
	return s.StartMinutes < other.EndMinutes && other.StartMinutes < s.EndMinutes
}

// TimeToMinutes converts "HH:MM" to minutes since midnight. Malformed input
// yields 0; callers validate time tokens before storing them.
func TimeToMinutes(horario string) int {
	parts := strings.SplitN(horario, ":", 2)
	if len(parts) != 2 {
		return 0
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	return hours*60 + minutes
}

// MinutesToTime is the inverse of TimeToMinutes for in-day values.
func MinutesToTime(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// DateKey is the canonical YYYY-MM-DD form used for cache and query keys.
func DateKey(date time.Time) string {
	return date.Format(time.DateOnly)
}

var spanishDays = []string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}

var spanishMonths = []string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// FormatDateSpanish renders a date the way the cartelera displays it, e.g.
// "viernes 4 de septiembre de 2026".
func FormatDateSpanish(date time.Time) string {
	return fmt.Sprintf("%s %d de %s de %d",
		spanishDays[int(date.Weekday())], date.Day(), spanishMonths[int(date.Month())-1], date.Year())
}

// SpanishMonthIndex returns the 1-based month number for a lowercase Spanish
// month name, or 0 if unknown.
func SpanishMonthIndex(name string) int {
	for i, month := range spanishMonths {
		if month == name {
			return i + 1
		}
	}
	return 0
}
