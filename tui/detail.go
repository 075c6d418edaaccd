package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/jjsantos01/cineteca-schedule-grid/model"
	"github.com/jjsantos01/cineteca-schedule-grid/parser"
)

func detailMetadata(details model.MovieDetails, title string) model.MovieMetadata {
	if len(details.Info) == 0 {
		return model.MovieMetadata{}
	}
	return parser.ExtractMovieMetadata(details.Info[0], title)
}

func (m appModel) detailView() string {
	width := m.width - 4
	if width < 40 {
		width = 76
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.detailShowtime.DisplayTitle()) + "\n")

	var meta []string
	if m.detailMeta.OriginalTitle != "" && m.detailMeta.OriginalTitle != m.detailShowtime.Titulo {
		meta = append(meta, "Título original: "+m.detailMeta.OriginalTitle)
	}
	if m.detailMeta.Year != "" {
		meta = append(meta, m.detailMeta.Year)
	}
	if m.detailShowtime.Duracion > 0 {
		meta = append(meta, fmt.Sprintf("%d min", m.detailShowtime.Duracion))
	}
	if len(meta) > 0 {
		b.WriteString(hint(strings.Join(meta, " • ")) + "\n")
	}
	b.WriteString("\n")

	for _, paragraph := range m.detail.Info {
		b.WriteString(wordwrap.String(paragraph, width) + "\n\n")
	}

	if len(m.allShowtimes) > 0 {
		b.WriteString(titleStyle.Render("Todas las funciones") + "\n")
		lastDate := ""
		for _, entry := range m.allShowtimes {
			if entry.Date != lastDate {
				b.WriteString(hint(entry.Date) + "\n")
				lastDate = entry.Date
			}
			b.WriteString(fmt.Sprintf("  %s  SALA %s %s\n", entry.Horario, entry.Sala, entry.Sede))
		}
		b.WriteString("\n")
	}

	if m.posterURL != "" {
		b.WriteString(hint("Póster: "+m.posterURL) + "\n")
	}
	return b.String()
}
