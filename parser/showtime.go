// Package parser turns loosely structured scraped cartelera text into typed
// showtime records. The source format is irregular HTML-derived text, so
// every extraction is best-effort: a block that does not match degrades to an
// error the caller logs and skips, never a panic.
package parser

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/jjsantos01/cineteca-schedule-grid/model"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)

	// "TITLE DOB (..." or "TITLE (DOB) (...": everything up to the opening
	// parenthesis, with an optional trailing version tag in either form.
	titleRe = regexp.MustCompile(`^(.+?)(?:\s+\(?(DOB|SUB)\)?)?\s*\(`)

	// "(Dur.: 120 mins.)"; singular "min." also appears.
	durationRe = regexp.MustCompile(`(?i)Dur\.\s*:\s*(\d+)\s*mins?\.\)`)

	// "SALA 3 CNA: 14:00 ..." or the open-air forum variant.
	salaRe = regexp.MustCompile(`(?i)(?:SALA\s+(\d+)\s+(\S+)|(FORO\s+AL\s+AIRE\s+LIBRE))\s*:\s*(.+)$`)

	timeTokenRe = regexp.MustCompile(`^\d{1,2}:\d{2}$`)
)

// ParseShowtime parses one raw cartelera block into a Showtime. filmID is the
// opaque detail reference scraped alongside the block, empty when absent.
func ParseShowtime(raw string, sedeID string, filmID string) (model.Showtime, error) {
	clean := strings.TrimSpace(whitespaceRe.ReplaceAllString(raw, " "))

	titleMatch := titleRe.FindStringSubmatch(clean)
	durationMatch := durationRe.FindStringSubmatch(clean)
	salaMatch := salaRe.FindStringSubmatch(clean)
	if titleMatch == nil || durationMatch == nil || salaMatch == nil {
		return model.Showtime{}, fmt.Errorf("unparseable cartelera block: %q", clean)
	}

	duracion, err := strconv.Atoi(durationMatch[1])
	if err != nil || duracion <= 0 {
		return model.Showtime{}, fmt.Errorf("invalid duration in block: %q", clean)
	}

	sala := salaMatch[1]
	codigo := strings.ToUpper(salaMatch[2])
	if salaMatch[3] != "" {
		sala = model.ForoSala
		codigo = ""
	}

	horarios := parseHorarios(salaMatch[4])
	if len(horarios) == 0 {
		return model.Showtime{}, fmt.Errorf("no time tokens in block: %q", clean)
	}

	sede := model.SedeNameFromCodigo(codigo)
	salaCompleta := strings.TrimSpace(fmt.Sprintf("SALA %s %s", sala, codigo))
	if sala == model.ForoSala {
		salaCompleta = model.ForoSala
		if s, ok := model.Sedes[sedeID]; ok {
			sede = s.Nombre
		}
	}

	return model.Showtime{
		Titulo:       strings.TrimSpace(titleMatch[1]),
		TipoVersion:  titleMatch[2],
		Sala:         sala,
		SalaCompleta: salaCompleta,
		Horarios:     horarios,
		Duracion:     duracion,
		Sede:         sede,
		SedeID:       sedeID,
		SedeCodigo:   codigo,
		FilmID:       filmID,
	}, nil
}

// parseHorarios tokenizes trailing schedule text, keeping unique H(H):MM
// tokens in order and dropping everything else.
func parseHorarios(text string) []string {
	var horarios []string
	seen := map[string]bool{}
	for _, token := range strings.Fields(text) {
		if !timeTokenRe.MatchString(token) || seen[token] {
			continue
		}
		seen[token] = true
		horarios = append(horarios, token)
	}
	return horarios
}

// Debug controls whether skipped blocks are reported on stderr.
var Debug = os.Getenv("CINETECA_DEBUG") != ""

// ParseCartelera parses a batch of raw blocks, skipping the ones that fail.
func ParseCartelera(blocks []RawBlock, sedeID string) []model.Showtime {
	showtimes := make([]model.Showtime, 0, len(blocks))
	for _, block := range blocks {
		showtime, err := ParseShowtime(block.Text, sedeID, block.FilmID)
		if err != nil {
			if Debug {
				fmt.Fprintf(os.Stderr, "[parser] %v\n", err)
			}
			continue
		}
		showtimes = append(showtimes, showtime)
	}
	return showtimes
}

// RawBlock is one scraped cartelera entry before parsing.
type RawBlock struct {
	Text   string
	FilmID string
}
