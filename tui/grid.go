package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/charmbracelet/bubbles/list"

	"github.com/jjsantos01/cineteca-schedule-grid/model"
	"github.com/jjsantos01/cineteca-schedule-grid/schedule"
)

var (
	sedeHeaderStyle = lipgloss.NewStyle().Bold(true)
	salaLabelStyle  = lipgloss.NewStyle().Faint(true).Width(22)
	selectedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	blockedStyle    = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	hiddenStyle     = lipgloss.NewStyle().Faint(true)
	visitedMark     = lipgloss.NewStyle().Faint(true).Render("·")
)

func (m appModel) gridView() string {
	var b strings.Builder

	instances := m.sched.Instances()
	cursorID := ""
	if inst, ok := m.currentInstance(); ok {
		cursorID = inst.Showtime.UniqueID(inst.Horario)
	}

	for _, sedeID := range model.ValidSedeIDs {
		if !m.sched.ActiveSedes[sedeID] {
			continue
		}
		sede := model.Sedes[sedeID]
		header := sedeHeaderStyle.Foreground(lipgloss.Color(sede.Color)).
			Render(fmt.Sprintf("%s (%s)", sede.Nombre, sede.Codigo))
		b.WriteString(header + "\n")

		if errText := m.sched.SedeErrors[sedeID]; errText != "" {
			b.WriteString("  " + errorStyle.Render(errText) + "\n\n")
			continue
		}
		if m.sched.InFlight(sedeID) {
			b.WriteString("  " + hint("cargando...") + "\n\n")
			continue
		}
		showtimes := m.sched.MovieData[sedeID]
		if len(showtimes) == 0 {
			b.WriteString("  " + hint("Sin funciones programadas") + "\n\n")
			continue
		}

		for _, row := range salaRows(showtimes) {
			b.WriteString(salaLabelStyle.Render(row.label))
			chips := make([]string, 0, len(row.instances))
			for _, inst := range row.instances {
				chips = append(chips, m.renderChip(inst, cursorID))
			}
			b.WriteString(strings.Join(chips, "  ") + "\n")
		}
		b.WriteString("\n")
	}

	if len(instances) == 0 && !m.sched.Loading() {
		b.WriteString(hint("No hay funciones para esta fecha") + "\n")
	}

	if panel := m.selectionPanel(); panel != "" {
		b.WriteString(panel)
	}
	return b.String()
}

type salaRow struct {
	label     string
	sortKey   int
	instances []schedule.Instance
}

// salaRows groups one sede's showtimes by sala, numeric salas first and the
// outdoor forum last, chips in start-time order.
func salaRows(showtimes []model.Showtime) []salaRow {
	byLabel := map[string]*salaRow{}
	var order []string
	for _, showtime := range showtimes {
		label := showtime.SalaCompleta
		if label == "" {
			label = showtime.Sala
		}
		row, ok := byLabel[label]
		if !ok {
			row = &salaRow{label: label, sortKey: showtime.SalaSortKey()}
			byLabel[label] = row
			order = append(order, label)
		}
		for _, horario := range showtime.Horarios {
			row.instances = append(row.instances, schedule.Instance{Showtime: showtime, Horario: horario})
		}
	}

	rows := make([]salaRow, 0, len(order))
	for _, label := range order {
		row := byLabel[label]
		sort.SliceStable(row.instances, func(i, j int) bool {
			return model.TimeToMinutes(row.instances[i].Horario) < model.TimeToMinutes(row.instances[j].Horario)
		})
		rows = append(rows, *row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].sortKey != rows[j].sortKey {
			return rows[i].sortKey < rows[j].sortKey
		}
		return rows[i].label < rows[j].label
	})
	return rows
}

func (m appModel) renderChip(inst schedule.Instance, cursorID string) string {
	id := inst.Showtime.UniqueID(inst.Horario)
	flags := m.sched.FlagsFor(inst.Showtime, inst.Horario)
	label := inst.Horario + " " + inst.Showtime.DisplayTitle()

	style := lipgloss.NewStyle()
	switch {
	case !flags.Visible:
		style = hiddenStyle
	case flags.Selected:
		style = selectedStyle
		label = "✔ " + label
	case flags.Blocked:
		style = blockedStyle
	}
	if flags.Visible && id == cursorID {
		style = style.Reverse(true)
	}

	chip := style.Render(label)
	if m.visited[id] {
		chip += visitedMark
	}
	return chip
}

func (m appModel) selectionPanel() string {
	if len(m.sched.Selected) == 0 {
		return ""
	}
	selected := append([]model.SelectedShowtime{}, m.sched.Selected...)
	sort.Slice(selected, func(i, j int) bool {
		return selected[i].StartMinutes < selected[j].StartMinutes
	})

	lines := []string{titleStyle.Render("Plan del día")}
	for _, entry := range selected {
		title := entry.Titulo
		if entry.TipoVersion != "" {
			title += " " + entry.TipoVersion
		}
		lines = append(lines, fmt.Sprintf("  %s–%s  %s (Sala %s, %s)",
			entry.Horario, model.MinutesToTime(entry.EndMinutes), title, entry.Sala, entry.Sede))
	}
	lines = append(lines, hint("  c agrega la función bajo el cursor a Google Calendar"))
	return strings.Join(lines, "\n") + "\n"
}

// buildTitleItems lists each film once with its function count. Items carry
// the plain Titulo, never the DOB/SUB display tag, so a picked title matches
// the text predicate and version variants stay grouped under one entry.
func buildTitleItems(sched *schedule.State) []list.Item {
	counts := map[string]int{}
	var order []string
	for _, inst := range sched.Instances() {
		title := inst.Showtime.Titulo
		if _, ok := counts[title]; !ok {
			order = append(order, title)
		}
		counts[title]++
	}
	sort.Strings(order)

	items := make([]list.Item, 0, len(order))
	for _, title := range order {
		items = append(items, titleItem{title: title, count: counts[title]})
	}
	return items
}
