package calendar

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/vitrine/internal/models"
)

// Wednesday
var fixedToday = time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)

func newTestModel() Model {
	m := New(func() time.Time { return fixedToday }, 140, 30)
	m.SetCards([]models.ContentCard{
		{ID: "a", DateISO: "2024-03-06", Titulo: "Reels da semana", Tipo: "Reels", Status: "A Fazer"},
		{ID: "b", DateISO: "2024-03-06", Titulo: "Story", Tipo: "Story", TimeOpcional: "09:00"},
		{ID: "c", DateISO: "2024-03-06", Titulo: "Ideia", IsBacklog: true},
		{ID: "d", DateISO: "2024-03-20", Titulo: "Live"},
	})
	return m
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m
}

func TestDayCardsExcludeBacklog(t *testing.T) {
	m := newTestModel()
	day := m.DayCards()
	if len(day) != 2 {
		t.Fatalf("got %d cards on the day, want 2", len(day))
	}
	if card, ok := m.SelectedCard(); !ok || card.ID != "a" {
		t.Errorf("selected = %+v, %v; want a", card, ok)
	}

	m = press(m, "j")
	if card, _ := m.SelectedCard(); card.ID != "b" {
		t.Errorf("after down selected = %q, want b", card.ID)
	}
	m = press(m, "j")
	if card, _ := m.SelectedCard(); card.ID != "b" {
		t.Errorf("down past the end selected = %q, want b", card.ID)
	}
}

func TestWeekNavigation(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want string
	}{
		{"next day", []string{"l"}, "2024-03-07"},
		{"previous day", []string{"left"}, "2024-03-05"},
		{"next week", []string{"]"}, "2024-03-13"},
		{"previous week", []string{"["}, "2024-02-28"},
		{"today", []string{"]", "]", "t"}, "2024-03-06"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := press(newTestModel(), tt.keys...)
			if got := m.Date(); got != tt.want {
				t.Errorf("date = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMonthNavigation(t *testing.T) {
	m := newTestModel()
	m.Mode = ModeMonth

	m = press(m, "j", "j")
	if got := m.Date(); got != "2024-03-20" {
		t.Errorf("two rows down = %s, want 2024-03-20", got)
	}
	if card, ok := m.SelectedCard(); !ok || card.ID != "d" {
		t.Errorf("selected = %+v, %v; want d", card, ok)
	}

	m = press(m, "]")
	if got := m.Date(); got != "2024-04-01" {
		t.Errorf("next month = %s, want 2024-04-01", got)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter on the month grid should open the day")
	}
	msg, ok := cmd().(OpenDayMsg)
	if !ok || msg.Date != "2024-04-01" {
		t.Errorf("open msg = %+v, want 2024-04-01", msg)
	}
}

func TestEnterInWeekModeDoesNothing(t *testing.T) {
	m := newTestModel()
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("enter in week mode should be left to the parent")
	}
}

func TestSetDate(t *testing.T) {
	m := newTestModel()
	m = press(m, "j")
	m.SetDate("2024-03-20")
	if got := m.Date(); got != "2024-03-20" {
		t.Errorf("date = %s", got)
	}
	if card, _ := m.SelectedCard(); card.ID != "d" {
		t.Errorf("card cursor not reset, selected %q", card.ID)
	}

	m.SetDate("not-a-date")
	if got := m.Date(); got != "2024-03-20" {
		t.Errorf("invalid date moved the cursor to %s", got)
	}
}

func TestViews(t *testing.T) {
	m := newTestModel()

	week := m.View()
	for _, want := range []string{"Seg 04", "Dom 10", "Reels da semana", "09:00"} {
		if !strings.Contains(week, want) {
			t.Errorf("week view missing %q", want)
		}
	}
	if strings.Contains(week, "Ideia") {
		t.Error("week view shows a backlog card")
	}
	if got := m.Title(); !strings.Contains(got, "Março 2024") || !strings.Contains(got, "2024-03-04") {
		t.Errorf("week title = %q", got)
	}

	m.Mode = ModeMonth
	month := m.View()
	for _, want := range []string{"Seg", "•2", "Reels da semana [A Fazer]"} {
		if !strings.Contains(month, want) {
			t.Errorf("month view missing %q", want)
		}
	}
	if got := m.Title(); got != "Março 2024" {
		t.Errorf("month title = %q", got)
	}
}

func TestSetCardsClampsCursor(t *testing.T) {
	m := press(newTestModel(), "j")
	m.SetCards([]models.ContentCard{{ID: "a", DateISO: "2024-03-06", Titulo: "Só um"}})
	if card, ok := m.SelectedCard(); !ok || card.ID != "a" {
		t.Errorf("selected = %+v, %v; want a", card, ok)
	}
}
