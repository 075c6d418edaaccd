// Package tui renders the cartelera as an interactive schedule grid: pick
// dates and sedes, filter functions, build a non-overlapping plan for the
// day and export it.
package tui

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jjsantos01/cineteca-schedule-grid/model"
	"github.com/jjsantos01/cineteca-schedule-grid/parser"
	"github.com/jjsantos01/cineteca-schedule-grid/schedule"
	"github.com/jjsantos01/cineteca-schedule-grid/service"
	"github.com/jjsantos01/cineteca-schedule-grid/store"
)

type appState int

const (
	stateLoading appState = iota
	stateGrid
	stateEditTextFilter
	stateEditTimeFilter
	stateSelectDate
	stateQuickFilter
	stateLoadingDetail
	stateDetail
	stateError
)

type appModel struct {
	client *service.Client
	sched  *schedule.State

	state     appState
	lastState appState
	err       error

	width  int
	height int

	cursor  int
	visited map[string]bool

	spinner     spinner.Model
	dateList    list.Model
	titleList   list.Model
	filterInput textinput.Model
	timeInput   textinput.Model

	detailShowtime model.Showtime
	detail         model.MovieDetails
	detailMeta     model.MovieMetadata
	posterURL      string
	allShowtimes   []model.DetailShowtime

	status string
}

type errMsg struct {
	err error
}

type carteleraMsg struct {
	req       schedule.FetchRequest
	showtimes []model.Showtime
	err       error
}

type detailMsg struct {
	showtime model.Showtime
	details  model.MovieDetails
	poster   string
	err      error
}

type trailerMsg struct {
	url string
	err error
}

type statusMsg struct {
	text string
}

func New() tea.Model {
	return NewWithShare("")
}

// NewWithShare builds the startup model, optionally restoring a shared
// filter string (the value produced by the share action).
func NewWithShare(share string) tea.Model {
	client := service.NewClient(nil)
	sched := schedule.NewState(time.Now())

	if saved, err := store.LoadActiveSedes(); err == nil && len(saved) > 0 {
		for _, id := range model.ValidSedeIDs {
			sched.SetSedeActive(id, false)
		}
		for _, id := range saved {
			sched.SetSedeActive(id, true)
		}
	}
	applyEnvConfig(sched)
	if share != "" {
		if params, err := url.ParseQuery(strings.TrimPrefix(share, "?")); err == nil {
			sched.DecodeQuery(params)
		}
	}

	visited, err := store.LoadVisited()
	if err != nil {
		visited = map[string]bool{}
	}

	m := appModel{
		client:  client,
		sched:   sched,
		state:   stateLoading,
		visited: visited,
	}

	m.dateList = newList("Elegir fecha")
	m.titleList = newList("Filtrar por película")

	filterInput := textinput.New()
	filterInput.Placeholder = "título de la película"
	filterInput.CharLimit = 60
	m.filterInput = filterInput

	timeInput := textinput.New()
	timeInput.Placeholder = "16:00-21:30"
	timeInput.CharLimit = 13
	m.timeInput = timeInput

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	m.spinner = sp

	return m
}

func applyEnvConfig(sched *schedule.State) {
	if raw := strings.TrimSpace(os.Getenv("CINETECA_SEDES")); raw != "" {
		var valid []string
		for _, id := range strings.Split(raw, ",") {
			if model.IsValidSedeID(strings.TrimSpace(id)) {
				valid = append(valid, strings.TrimSpace(id))
			}
		}
		if len(valid) > 0 {
			for _, id := range model.ValidSedeIDs {
				sched.SetSedeActive(id, false)
			}
			for _, id := range valid {
				sched.SetSedeActive(id, true)
			}
		}
	}
	if raw := strings.TrimSpace(os.Getenv("CINETECA_DATE")); raw != "" {
		if date, err := time.ParseInLocation(time.DateOnly, raw, time.Local); err == nil {
			sched.SetDate(date)
		}
	}
}

func (m appModel) Init() tea.Cmd {
	requests, ok := m.sched.BeginLoad()
	if !ok || len(requests) == 0 {
		return m.spinner.Tick
	}
	return tea.Batch(append(m.fetchCmds(requests), m.spinner.Tick)...)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeComponents()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.sched.AnyInFlight() || m.state == stateLoading || m.state == stateLoadingDetail {
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case carteleraMsg:
		m.sched.CompleteLoad(msg.req, msg.showtimes, msg.err)
		if m.state == stateLoading && !m.sched.Loading() {
			m.state = stateGrid
		}
		m.clampCursor()
		return m, nil

	case detailMsg:
		if m.state != stateLoadingDetail {
			return m, nil
		}
		if msg.err != nil {
			m.status = "No se pudo cargar la ficha: " + msg.err.Error()
			m.state = stateGrid
			return m, nil
		}
		m.detailShowtime = msg.showtime
		m.detail = msg.details
		m.posterURL = msg.poster
		m.detailMeta = detailMetadata(msg.details, msg.showtime.Titulo)
		m.allShowtimes = parser.ParseAllShowtimes(msg.details.ShowtimesText)
		m.state = stateDetail
		return m, nil

	case trailerMsg:
		if msg.err != nil {
			m.status = "No se pudo obtener el tráiler: " + msg.err.Error()
			return m, nil
		}
		if msg.url == "" {
			m.status = "Esta película no tiene tráiler registrado"
			return m, nil
		}
		return m, openURLCmd(msg.url)

	case statusMsg:
		m.status = msg.text
		return m, nil

	case errMsg:
		m.err = msg.err
		m.lastState = m.state
		m.state = stateError
		return m, nil
	}

	var cmd tea.Cmd
	switch m.state {
	case stateSelectDate:
		m.dateList, cmd = m.dateList.Update(msg)
	case stateQuickFilter:
		m.titleList, cmd = m.titleList.Update(msg)
	case stateEditTextFilter:
		m.filterInput, cmd = m.filterInput.Update(msg)
	case stateEditTimeFilter:
		m.timeInput, cmd = m.timeInput.Update(msg)
	}
	return m, cmd
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.state {
	case stateEditTextFilter:
		return m.handleTextFilterKey(msg)
	case stateEditTimeFilter:
		return m.handleTimeFilterKey(msg)
	case stateSelectDate:
		return m.handleDatePickerKey(msg)
	case stateQuickFilter:
		return m.handleQuickFilterKey(msg)
	case stateDetail:
		return m.handleDetailKey(msg)
	case stateError:
		if msg.String() == "esc" || msg.Type == tea.KeyEnter {
			m.state = m.lastState
			m.err = nil
		}
		return m, nil
	case stateLoading, stateLoadingDetail:
		if msg.String() == "q" {
			return m, tea.Quit
		}
		if msg.String() == "esc" && m.state == stateLoadingDetail {
			m.state = stateGrid
		}
		return m, nil
	default:
		return m.handleGridKey(msg)
	}
}

func (m appModel) handleGridKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "left", "h":
		return m.navigateDays(-1)
	case "right", "l":
		return m.navigateDays(1)

	case "g":
		m.dateList.SetItems(buildDateItems(m.sched))
		m.state = stateSelectDate
		return m, nil

	case "1", "2", "3":
		return m.toggleSede("00" + msg.String())

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(m.visibleInstances())-1 {
			m.cursor++
		}
		return m, nil

	case "enter", " ":
		return m.toggleSelectionAtCursor()

	case "esc":
		if m.sched.HasActiveFilters() {
			m.clearFilters()
			m.status = "Filtros limpiados"
		} else if len(m.sched.Selected) > 0 {
			m.sched.ClearSelection()
			m.status = "Selección limpiada"
		}
		m.clampCursor()
		return m, nil

	case "/":
		if m.sched.FilterLock() == schedule.LockCarousel {
			m.status = "El filtro rápido está activo; quítalo antes de usar los filtros manuales"
			return m, nil
		}
		m.filterInput.SetValue(m.sched.TextFilter)
		m.filterInput.Focus()
		m.state = stateEditTextFilter
		return m, textinput.Blink

	case "t":
		if m.sched.FilterLock() == schedule.LockCarousel {
			m.status = "El filtro rápido está activo; quítalo antes de usar los filtros manuales"
			return m, nil
		}
		if m.sched.TimeFilterStart != "" || m.sched.TimeFilterEnd != "" {
			m.timeInput.SetValue(m.sched.TimeFilterStart + "-" + m.sched.TimeFilterEnd)
		} else {
			m.timeInput.SetValue("")
		}
		m.timeInput.Focus()
		m.state = stateEditTimeFilter
		return m, textinput.Blink

	case "f":
		if m.sched.FilterLock() == schedule.LockInputs {
			m.status = "Hay filtros manuales activos; límpialos antes de usar el filtro rápido"
			return m, nil
		}
		items := buildTitleItems(m.sched)
		if len(items) == 0 {
			m.status = "No hay funciones para filtrar"
			return m, nil
		}
		m.titleList.SetItems(items)
		m.state = stateQuickFilter
		return m, nil

	case "d":
		return m.openDetailAtCursor()

	case "c":
		inst, ok := m.currentInstance()
		if !ok {
			return m, nil
		}
		link := schedule.CalendarLink(inst.Showtime, inst.Horario, m.sched.CurrentDate())
		return m, openURLCmd(link)

	case "v":
		return m.toggleVisitedAtCursor()

	case "y":
		return m, copyShareCmd(m.sched.ShareQuery())

	case "r":
		requests, ok := m.sched.BeginLoad()
		if !ok {
			m.status = "Ya hay una carga en curso"
			return m, nil
		}
		if len(requests) == 0 {
			return m, nil
		}
		return m, tea.Batch(append(m.fetchCmds(requests), m.spinner.Tick)...)
	}

	return m, nil
}

func (m appModel) handleTextFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filterInput.Blur()
		m.state = stateGrid
		return m, nil
	case "enter":
		m.filterInput.Blur()
		m.state = stateGrid
		if !m.sched.SetTextFilter(m.filterInput.Value()) {
			m.status = "El filtro rápido está activo; no se aplicó el texto"
		}
		m.clampCursor()
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

func (m appModel) handleTimeFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.timeInput.Blur()
		m.state = stateGrid
		return m, nil
	case "enter":
		start, end, ok := parseTimeRange(m.timeInput.Value())
		m.timeInput.Blur()
		m.state = stateGrid
		if !ok {
			m.status = "Rango inválido; usa HH:MM-HH:MM (cualquier lado puede quedar vacío)"
			return m, nil
		}
		if !m.sched.SetTimeFilter(start, end) {
			m.status = "El filtro rápido está activo; no se aplicó el horario"
		}
		m.clampCursor()
		return m, nil
	}
	var cmd tea.Cmd
	m.timeInput, cmd = m.timeInput.Update(msg)
	return m, cmd
}

func (m appModel) handleDatePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = stateGrid
		return m, nil
	case "enter":
		item, ok := m.dateList.SelectedItem().(dateItem)
		if !ok {
			return m, nil
		}
		m.state = stateGrid
		if !item.date.Equal(m.sched.CurrentDate()) {
			return m.applyDateChange(item.date)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.dateList, cmd = m.dateList.Update(msg)
	return m, cmd
}

func (m appModel) handleQuickFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = stateGrid
		return m, nil
	case "enter":
		item, ok := m.titleList.SelectedItem().(titleItem)
		if !ok {
			return m, nil
		}
		m.state = stateGrid
		if !m.sched.SetCarouselFilter(item.title) {
			m.status = "Hay filtros manuales activos; no se aplicó el filtro rápido"
		}
		m.clampCursor()
		return m, nil
	}
	var cmd tea.Cmd
	m.titleList, cmd = m.titleList.Update(msg)
	return m, cmd
}

func (m appModel) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	links := schedule.BuildSearchLinks(m.detailShowtime.Titulo, m.detailMeta.Year)
	switch msg.String() {
	case "esc", "q":
		m.state = stateGrid
		return m, nil
	case "t":
		if m.detailShowtime.FilmID == "" {
			return m, nil
		}
		return m, m.fetchTrailerCmd(m.detailShowtime.FilmID)
	case "i":
		return m, openURLCmd(links.IMDB)
	case "l":
		return m, openURLCmd(links.Letterboxd)
	case "y":
		return m, openURLCmd(links.YouTube)
	case "p":
		if m.posterURL == "" {
			m.status = "Esta película no tiene póster registrado"
			return m, nil
		}
		return m, openURLCmd(m.posterURL)
	}
	return m, nil
}

func (m appModel) navigateDays(delta int) (tea.Model, tea.Cmd) {
	target := m.sched.CurrentDate().AddDate(0, 0, delta)
	if !m.sched.InDateWindow(target) {
		if delta > 0 {
			m.status = fmt.Sprintf("Solo se puede consultar hasta el %s", model.FormatDateSpanish(m.sched.MaxDate()))
		} else {
			m.status = "No se pueden consultar fechas pasadas"
		}
		return m, nil
	}
	return m.applyDateChange(target)
}

func (m appModel) applyDateChange(date time.Time) (tea.Model, tea.Cmd) {
	if !m.sched.SetDate(date) {
		return m, nil
	}
	m.client.ClearDetailCaches()
	m.cursor = 0

	requests, ok := m.sched.BeginLoad()
	if !ok {
		return m, nil
	}
	if m.sched.Loading() && !m.sched.HasAnyData() {
		m.state = stateLoading
	}
	if len(requests) == 0 {
		return m, nil
	}
	return m, tea.Batch(append(m.fetchCmds(requests), m.spinner.Tick)...)
}

func (m appModel) toggleSede(sedeID string) (tea.Model, tea.Cmd) {
	active := m.sched.ActiveSedes[sedeID]
	if active && len(m.sched.ActiveSedeIDs()) == 1 {
		m.status = "Debe quedar al menos una sede activa"
		return m, nil
	}
	if !m.sched.SetSedeActive(sedeID, !active) {
		return m, nil
	}
	_ = store.SaveActiveSedes(m.sched.ActiveSedeIDs())
	m.clampCursor()

	if active {
		return m, nil
	}
	req, ok := m.sched.BeginSedeLoad(sedeID)
	if !ok {
		return m, nil
	}
	return m, tea.Batch(m.fetchCarteleraCmd(req), m.spinner.Tick)
}

func (m appModel) toggleSelectionAtCursor() (tea.Model, tea.Cmd) {
	inst, ok := m.currentInstance()
	if !ok {
		return m, nil
	}
	result := m.sched.ToggleSelection(inst.Showtime, inst.Horario)
	switch {
	case result.Changed && result.Selected:
		m.status = fmt.Sprintf("Agregada: %s %s", inst.Horario, inst.Showtime.DisplayTitle())
	case result.Changed:
		m.status = fmt.Sprintf("Quitada: %s %s", inst.Horario, inst.Showtime.DisplayTitle())
	case m.sched.HasActiveFilters():
		m.status = "Limpia los filtros para modificar la selección"
	default:
		m.status = "Se empalma con otra función seleccionada"
	}
	return m, nil
}

func (m appModel) openDetailAtCursor() (tea.Model, tea.Cmd) {
	inst, ok := m.currentInstance()
	if !ok {
		return m, nil
	}
	if inst.Showtime.FilmID == "" {
		m.status = "Esta función no tiene ficha disponible"
		return m, nil
	}
	id := inst.Showtime.UniqueID(inst.Horario)
	if !m.visited[id] {
		m.visited[id] = true
		_ = store.MarkVisited(id)
	}
	m.state = stateLoadingDetail
	return m, tea.Batch(m.fetchDetailCmd(inst.Showtime), m.spinner.Tick)
}

func (m appModel) toggleVisitedAtCursor() (tea.Model, tea.Cmd) {
	inst, ok := m.currentInstance()
	if !ok {
		return m, nil
	}
	id := inst.Showtime.UniqueID(inst.Horario)
	if m.visited[id] {
		delete(m.visited, id)
		_ = store.UnmarkVisited(id)
		m.status = "Función desmarcada"
	} else {
		m.visited[id] = true
		_ = store.MarkVisited(id)
		m.status = "Función marcada como vista"
	}
	return m, nil
}

func (m *appModel) clearFilters() {
	m.sched.ClearCarouselFilter()
	m.sched.SetTextFilter("")
	m.sched.ClearTimeFilter()
	m.filterInput.SetValue("")
	m.timeInput.SetValue("")
}

func (m *appModel) clampCursor() {
	count := len(m.visibleInstances())
	if count == 0 {
		m.cursor = 0
		return
	}
	if m.cursor >= count {
		m.cursor = count - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m appModel) currentInstance() (schedule.Instance, bool) {
	instances := m.visibleInstances()
	if len(instances) == 0 || m.cursor < 0 || m.cursor >= len(instances) {
		return schedule.Instance{}, false
	}
	return instances[m.cursor], true
}

func (m appModel) visibleInstances() []schedule.Instance {
	var visible []schedule.Instance
	for _, inst := range m.sched.Instances() {
		if m.sched.Visible(inst.Showtime, inst.Horario) {
			visible = append(visible, inst)
		}
	}
	return visible
}

var timeBoundRe = regexp.MustCompile(`^\d{1,2}:\d{2}$`)

// parseTimeRange splits "HH:MM-HH:MM" into its bounds. Either side may be
// empty for an open range; an empty value clears the filter.
func parseTimeRange(value string) (start string, end string, ok bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", "", true
	}
	parts := strings.SplitN(trimmed, "-", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	start = strings.TrimSpace(parts[0])
	end = strings.TrimSpace(parts[1])
	if start != "" && !timeBoundRe.MatchString(start) {
		return "", "", false
	}
	if end != "" && !timeBoundRe.MatchString(end) {
		return "", "", false
	}
	if start != "" && end != "" && model.TimeToMinutes(start) > model.TimeToMinutes(end) {
		return "", "", false
	}
	return start, end, true
}

func (m appModel) fetchCmds(requests []schedule.FetchRequest) []tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(requests))
	for _, req := range requests {
		cmds = append(cmds, m.fetchCarteleraCmd(req))
	}
	return cmds
}

func (m appModel) fetchCarteleraCmd(req schedule.FetchRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		date, err := time.Parse(time.DateOnly, req.DateKey)
		if err != nil {
			return carteleraMsg{req: req, err: err}
		}
		blocks, err := m.client.FetchCartelera(ctx, req.SedeID, date)
		if err != nil {
			return carteleraMsg{req: req, err: err}
		}
		return carteleraMsg{req: req, showtimes: parser.ParseCartelera(blocks, req.SedeID)}
	}
}

func (m appModel) fetchDetailCmd(showtime model.Showtime) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		details, err := m.client.FetchMovieDetails(ctx, showtime.FilmID)
		if err != nil {
			return detailMsg{showtime: showtime, err: err}
		}
		// Poster failures degrade to a detail view without one.
		poster, _ := m.client.FetchMoviePoster(ctx, showtime.FilmID)
		return detailMsg{showtime: showtime, details: details, poster: poster}
	}
}

func (m appModel) fetchTrailerCmd(filmID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		trailer, err := m.client.FetchMovieTrailer(ctx, filmID)
		return trailerMsg{url: trailer, err: err}
	}
}

func copyShareCmd(share string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(share); err != nil {
			return statusMsg{text: "No se pudo copiar; comparte esto: " + share}
		}
		return statusMsg{text: "Filtros copiados al portapapeles"}
	}
}

func openURLCmd(target string) tea.Cmd {
	return func() tea.Msg {
		if err := openURL(target); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func openURL(target string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", target).Start()
	case "linux":
		return exec.Command("xdg-open", target).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", target).Start()
	default:
		return fmt.Errorf("unsupported OS for opening browser: %s", runtime.GOOS)
	}
}

func (m *appModel) resizeComponents() {
	if m.width == 0 || m.height == 0 {
		return
	}
	h := m.height - 6
	if h < 6 {
		h = 6
	}
	m.dateList.SetSize(m.width, h)
	m.titleList.SetSize(m.width, h)
	m.filterInput.Width = min(m.width-10, 60)
	m.timeInput.Width = min(m.width-10, 20)
}

func newList(title string) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = title
	l.SetFilteringEnabled(true)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	return l
}

func hint(text string) string {
	return lipgloss.NewStyle().Faint(true).Render(text)
}

type dateItem struct {
	date  time.Time
	today bool
}

func (d dateItem) Title() string {
	label := model.FormatDateSpanish(d.date)
	if d.today {
		return label + " (hoy)"
	}
	return label
}

func (d dateItem) Description() string {
	return model.DateKey(d.date)
}

func (d dateItem) FilterValue() string {
	return d.Title()
}

func buildDateItems(sched *schedule.State) []list.Item {
	items := make([]list.Item, 0, schedule.DateWindowDays+1)
	for i := 0; i <= schedule.DateWindowDays; i++ {
		date := sched.Today().AddDate(0, 0, i)
		items = append(items, dateItem{date: date, today: i == 0})
	}
	return items
}

type titleItem struct {
	title string
	count int
}

func (t titleItem) Title() string {
	return t.title
}

func (t titleItem) Description() string {
	if t.count == 1 {
		return "1 función"
	}
	return fmt.Sprintf("%d funciones", t.count)
}

func (t titleItem) FilterValue() string {
	return strings.ToLower(t.title)
}
