package parser

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jjsantos01/cineteca-schedule-grid/model"
)

var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&aacute;", "á",
	"&eacute;", "é",
	"&iacute;", "í",
	"&oacute;", "ó",
	"&uacute;", "ú",
	"&ntilde;", "ñ",
	"&Aacute;", "Á",
	"&Eacute;", "É",
	"&Iacute;", "Í",
	"&Oacute;", "Ó",
	"&Uacute;", "Ú",
	"&Ntilde;", "Ñ",
)

// DecodeHTMLEntities replaces the Spanish-accent HTML entities that appear in
// scraped detail paragraphs with literal UTF-8 characters.
func DecodeHTMLEntities(text string) string {
	return entityReplacer.Replace(text)
}

var (
	parenRe = regexp.MustCompile(`\(([^)]+)\)`)
	yearRe  = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
)

// ExtractMovieMetadata pulls the production year and original title out of
// the first detail paragraph. Titles containing commas shift the split point
// of the parenthesized "original title, country, year" run, so the heuristic
// keeps as many comma-separated parts as the display title itself has.
func ExtractMovieMetadata(firstParagraph string, movieTitle string) model.MovieMetadata {
	var meta model.MovieMetadata
	if firstParagraph == "" {
		return meta
	}

	parenMatch := parenRe.FindStringSubmatch(firstParagraph)
	if parenMatch == nil {
		meta.Year = yearRe.FindString(firstParagraph)
		return meta
	}

	content := parenMatch[1]
	titleCommas := strings.Count(movieTitle, ",")
	parts := strings.Split(content, ",")
	if len(parts) > titleCommas {
		meta.OriginalTitle = strings.TrimSpace(strings.Join(parts[:titleCommas+1], ","))
	} else {
		meta.OriginalTitle = strings.TrimSpace(parts[0])
	}
	meta.Year = yearRe.FindString(content)
	return meta
}

var (
	dayHeaderRe = regexp.MustCompile(`(?i)(lunes|martes|miércoles|jueves|viernes|sábado|domingo)\s+(\d+)\s+de\s+(enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|octubre|noviembre|diciembre)\s+de\s+(\d{4})`)
	salaTimesRe = regexp.MustCompile(`(?i)SALA\s+(\d+)\s+(\S+):\s*((?:\d{1,2}:\d{2}\s*)+)`)
	anyTimeRe   = regexp.MustCompile(`\d{1,2}:\d{2}`)
)

// ParseAllShowtimes splits the multi-day all-showtimes blob from a detail
// lookup into flat entries, sorted by date, sede, sala and start time.
func ParseAllShowtimes(showtimesText string) []model.DetailShowtime {
	if showtimesText == "" {
		return nil
	}

	headers := dayHeaderRe.FindAllStringSubmatchIndex(showtimesText, -1)
	var showtimes []model.DetailShowtime

	for i, header := range headers {
		end := len(showtimesText)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		dateStr := showtimesText[header[0]:header[1]]
		content := showtimesText[header[1]:end]

		for _, salaMatch := range salaTimesRe.FindAllStringSubmatch(content, -1) {
			sede := model.SedeNameFromCodigo(strings.ToUpper(salaMatch[2]))
			for _, horario := range anyTimeRe.FindAllString(salaMatch[3], -1) {
				showtimes = append(showtimes, model.DetailShowtime{
					Date:    dateStr,
					Sede:    sede,
					Sala:    salaMatch[1],
					Horario: horario,
				})
			}
		}
	}

	sort.SliceStable(showtimes, func(i, j int) bool {
		left, right := showtimes[i], showtimes[j]
		if lo, ro := detailDateOrdinal(left.Date), detailDateOrdinal(right.Date); lo != ro {
			return lo < ro
		}
		if left.Sede != right.Sede {
			return left.Sede < right.Sede
		}
		if left.Sala != right.Sala {
			ls, _ := strconv.Atoi(left.Sala)
			rs, _ := strconv.Atoi(right.Sala)
			return ls < rs
		}
		return model.TimeToMinutes(left.Horario) < model.TimeToMinutes(right.Horario)
	})
	return showtimes
}

// detailDateOrdinal converts a Spanish day header to a sortable ordinal.
func detailDateOrdinal(dateStr string) int {
	match := dayHeaderRe.FindStringSubmatch(dateStr)
	if match == nil {
		return 0
	}
	day, _ := strconv.Atoi(match[2])
	month := model.SpanishMonthIndex(strings.ToLower(match[3]))
	year, _ := strconv.Atoi(match[4])
	return year*10000 + month*100 + day
}
