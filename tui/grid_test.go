package tui

import (
	"strings"
	"testing"

	"github.com/jjsantos01/cineteca-schedule-grid/model"
)

func TestSalaRowsOrdering(t *testing.T) {
	foro := testShowtime("AL AIRE LIBRE", "003", model.ForoSala, "20:00")
	foro.SalaCompleta = model.ForoSala

	rows := salaRows([]model.Showtime{
		foro,
		testShowtime("PELÍCULA B", "003", "4", "16:00"),
		testShowtime("PELÍCULA A", "003", "1", "18:00", "12:00"),
	})

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].label != "SALA 1 XOCO" || rows[1].label != "SALA 4 XOCO" {
		t.Fatalf("expected numeric salas first, got %q, %q", rows[0].label, rows[1].label)
	}
	if rows[2].label != model.ForoSala {
		t.Fatalf("expected forum last, got %q", rows[2].label)
	}
	if rows[0].instances[0].Horario != "12:00" || rows[0].instances[1].Horario != "18:00" {
		t.Fatalf("expected chips in start-time order, got %+v", rows[0].instances)
	}
}

func TestGridViewShowsSedeError(t *testing.T) {
	m := newTestModel(t)
	m.sched.SedeErrors["003"] = "Error al cargar datos de XOCO"

	view := m.gridView()
	if !strings.Contains(view, "Error al cargar datos de XOCO") {
		t.Fatalf("expected sede error in grid view, got:\n%s", view)
	}
}

func TestGridViewSelectionPanel(t *testing.T) {
	m := newTestModel(t)
	late := testShowtime("TARDE", "003", "2", "19:00")
	early := testShowtime("TEMPRANO", "003", "1", "13:00")
	seed(&m, late, early)

	m.sched.ToggleSelection(late, "19:00")
	m.sched.ToggleSelection(early, "13:00")

	view := m.gridView()
	if !strings.Contains(view, "Plan del día") {
		t.Fatalf("expected selection panel, got:\n%s", view)
	}
	if strings.Index(view, "TEMPRANO (Sala") > strings.Index(view, "TARDE (Sala") {
		t.Fatal("expected panel entries in start-time order")
	}
}

func TestBuildTitleItems(t *testing.T) {
	m := newTestModel(t)
	seed(&m,
		testShowtime("ZORRO", "003", "1", "14:00", "18:00"),
		testShowtime("ÁNGEL", "003", "2", "16:00"),
	)

	items := buildTitleItems(m.sched)
	if len(items) != 2 {
		t.Fatalf("expected 2 titles, got %d", len(items))
	}
	first := items[0].(titleItem)
	if first.title != "ZORRO" && first.title != "ÁNGEL" {
		t.Fatalf("unexpected first title %q", first.title)
	}
	for _, item := range items {
		entry := item.(titleItem)
		if entry.title == "ZORRO" && entry.count != 2 {
			t.Fatalf("expected 2 funciones for ZORRO, got %d", entry.count)
		}
	}
}

func TestQuickFilterKeepsTaggedVersionsVisible(t *testing.T) {
	m := newTestModel(t)
	sub := testShowtime("PELÍCULA X", "003", "1", "14:00", "18:00")
	sub.TipoVersion = "SUB"
	seed(&m, sub)

	items := buildTitleItems(m.sched)
	if len(items) != 1 {
		t.Fatalf("expected 1 title, got %d", len(items))
	}
	entry := items[0].(titleItem)
	if entry.title != "PELÍCULA X" {
		t.Fatalf("expected plain title without version tag, got %q", entry.title)
	}

	if !m.sched.SetCarouselFilter(entry.title) {
		t.Fatal("expected quick filter to apply")
	}
	if got := len(m.visibleInstances()); got != 2 {
		t.Fatalf("expected 2 visible instances under quick filter, got %d", got)
	}
}
