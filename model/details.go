package model

// MovieDetails is the extended information looked up through a showtime's
// FilmID: descriptive paragraphs plus an optional multi-day showtimes blob.
type MovieDetails struct {
	Info          []string `json:"info"`
	ShowtimesText string   `json:"showtimes"`
}

// DetailShowtime is one entry of the parsed multi-day all-showtimes blob.
type DetailShowtime struct {
	Date    string `json:"date"` // Spanish long form, as scraped
	Sede    string `json:"sede"`
	Sala    string `json:"sala"`
	Horario string `json:"horario"`
}

// MovieMetadata is the year/original-title pair extracted from the first
// detail paragraph.
type MovieMetadata struct {
	Year          string
	OriginalTitle string
}
