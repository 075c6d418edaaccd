package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jjsantos01/cineteca-schedule-grid/model"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

func (m appModel) View() string {
	header := m.headerView()
	switch m.state {
	case stateLoading:
		return header + "\n\n" + m.loadingView("Cargando cartelera")
	case stateLoadingDetail:
		return header + "\n\n" + m.loadingView("Cargando ficha")
	case stateSelectDate:
		return header + "\n\n" + m.dateList.View()
	case stateQuickFilter:
		return header + "\n\n" + m.titleList.View()
	case stateEditTextFilter:
		return header + "\n\n" + "Filtro de texto: " + m.filterInput.View() +
			"\n\n" + hint("enter aplicar • esc cancelar • vacío limpia el filtro")
	case stateEditTimeFilter:
		return header + "\n\n" + "Rango de horario: " + m.timeInput.View() +
			"\n\n" + hint("enter aplicar • esc cancelar • vacío limpia el filtro • ej. 16:00-21:30")
	case stateDetail:
		return header + "\n\n" + m.detailView()
	case stateError:
		return header + "\n\n" + errorStyle.Render(m.err.Error()) +
			"\n\n" + hint("esc volver • ctrl+c salir")
	default:
		return header + "\n\n" + m.gridView()
	}
}

func (m appModel) headerView() string {
	title := titleStyle.Render("Cineteca Nacional")
	date := model.FormatDateSpanish(m.sched.CurrentDate())

	var sedes []string
	for _, id := range model.ValidSedeIDs {
		sede := model.Sedes[id]
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(sede.Color))
		if !m.sched.ActiveSedes[id] {
			style = lipgloss.NewStyle().Faint(true)
		}
		sedes = append(sedes, style.Render(sede.Nombre))
	}

	meta := date + " • " + strings.Join(sedes, " ")
	if loading := m.sched.LoadingSedes(); len(loading) > 0 {
		meta += " • " + m.spinner.View() + " " + strings.Join(loading, ", ")
	}

	lines := []string{title, hint(meta)}
	if filters := m.filterSummary(); filters != "" {
		lines = append(lines, hint(filters))
	}
	if count := len(m.sched.Selected); count > 0 {
		lines = append(lines, hint(fmt.Sprintf("Plan del día: %d funciones", count)))
	}
	if m.status != "" {
		lines = append(lines, statusStyle.Render(m.status))
	}
	lines = append(lines, hint(m.keyHints()))
	return strings.Join(lines, "\n")
}

func (m appModel) filterSummary() string {
	var parts []string
	if title := m.sched.CarouselTitle(); title != "" {
		parts = append(parts, "Película: "+title)
	} else {
		if m.sched.TextFilter != "" {
			parts = append(parts, "Texto: "+m.sched.TextFilter)
		}
		if m.sched.TimeFilterStart != "" || m.sched.TimeFilterEnd != "" {
			start := m.sched.TimeFilterStart
			if start == "" {
				start = "00:00"
			}
			end := m.sched.TimeFilterEnd
			if end == "" {
				end = "24:00"
			}
			parts = append(parts, "Horario: "+start+"-"+end)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	text, timeMatches := m.sched.MatchCounts()
	parts = append(parts, fmt.Sprintf("%d coinciden con el texto • %d en el horario", text, timeMatches))
	return strings.Join(parts, " • ")
}

func (m appModel) keyHints() string {
	switch m.state {
	case stateGrid:
		return "←/→ día • g fecha • 1/2/3 sedes • ↑/↓ mover • enter elegir • d ficha • c agenda • / texto • t horario • f película • v vista • y compartir • esc limpiar • q salir"
	case stateSelectDate, stateQuickFilter:
		return "↑/↓ mover • enter elegir • esc volver"
	case stateDetail:
		return "t tráiler • p póster • i IMDB • l Letterboxd • y YouTube • esc volver"
	default:
		return "ctrl+c salir"
	}
}

func (m appModel) loadingView(title string) string {
	return fmt.Sprintf("%s %s\n\n%s", m.spinner.View(), title, hint("Consultando la cartelera..."))
}
