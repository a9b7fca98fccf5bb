// Package calendar renders the week and month views of a client's cards and
// tracks the selected day and card.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/vitrine/internal/constants"
	"github.com/julianstephens/vitrine/internal/models"
	"github.com/julianstephens/vitrine/internal/store"
	"github.com/julianstephens/vitrine/internal/utils"
)

type Mode int

const (
	ModeWeek Mode = iota
	ModeMonth
)

// OpenDayMsg asks the parent to show the week of Date.
type OpenDayMsg struct {
	Date string
}

type KeyMap struct {
	Left  key.Binding
	Right key.Binding
	Up    key.Binding
	Down  key.Binding
	Prev  key.Binding
	Next  key.Binding
	Today key.Binding
	Open  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous day"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next day"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Prev: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "previous period"),
		),
		Next: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next period"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "today"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open week"),
		),
	}
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	todayStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	selectedStyle  = lipgloss.NewStyle().Reverse(true)
	dayBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238"))
	activeBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("205"))
)

// StatusStyle colors a card by workflow status. Unknown statuses use the
// default style.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case constants.StatusInProgress:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	case constants.StatusCheck:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	}
}

func icon(kind string) string {
	if i, ok := constants.TypeIcons[kind]; ok {
		return i
	}
	return constants.DefaultTypeIcon
}

type Model struct {
	Mode   Mode
	keys   KeyMap
	cursor time.Time // selected day, midnight
	card   int       // selected card within the day
	today  func() time.Time
	cards  []models.ContentCard
	width  int
	height int
}

// New starts on today. today is called each time "today" is needed so a
// session left open past midnight stays correct.
func New(today func() time.Time, width, height int) Model {
	return Model{
		keys:   DefaultKeyMap(),
		cursor: utils.StartOfDay(today()),
		today:  today,
		width:  width,
		height: height,
	}
}

func (m *Model) SetCards(cards []models.ContentCard) {
	m.cards = cards
	m.clampCard()
}

func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
}

// SetDate moves the cursor to an ISO date. Invalid dates are ignored.
func (m *Model) SetDate(iso string) {
	if t, err := utils.ParseDateInLocation(iso, m.cursor.Location()); err == nil {
		m.cursor = t
		m.card = 0
	}
}

// Date returns the selected day as YYYY-MM-DD.
func (m Model) Date() string {
	return utils.ToISO(m.cursor)
}

// DayCards returns the calendar cards of the selected day.
func (m Model) DayCards() []models.ContentCard {
	return store.CardsOn(m.cards, m.Date())
}

// SelectedCard returns the highlighted card of the selected day.
func (m Model) SelectedCard() (models.ContentCard, bool) {
	day := m.DayCards()
	if m.card < 0 || m.card >= len(day) {
		return models.ContentCard{}, false
	}
	return day[m.card], true
}

// Title is the period heading: the month name and year.
func (m Model) Title() string {
	if m.Mode == ModeWeek {
		days := utils.WeekDays(m.cursor)
		return fmt.Sprintf("%s · semana de %s", utils.MonthLabel(m.cursor), utils.ToISO(days[0]))
	}
	return utils.MonthLabel(m.cursor)
}

func (m *Model) clampCard() {
	n := len(m.DayCards())
	if m.card >= n {
		m.card = n - 1
	}
	if m.card < 0 {
		m.card = 0
	}
}

func (m *Model) move(days int) {
	m.cursor = m.cursor.AddDate(0, 0, days)
	m.card = 0
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Left):
		m.move(-1)
	case key.Matches(keyMsg, m.keys.Right):
		m.move(1)
	case key.Matches(keyMsg, m.keys.Up):
		if m.Mode == ModeMonth {
			m.move(-7)
		} else if m.card > 0 {
			m.card--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.Mode == ModeMonth {
			m.move(7)
		} else if m.card < len(m.DayCards())-1 {
			m.card++
		}
	case key.Matches(keyMsg, m.keys.Prev):
		m.shift(-1)
	case key.Matches(keyMsg, m.keys.Next):
		m.shift(1)
	case key.Matches(keyMsg, m.keys.Today):
		m.cursor = utils.StartOfDay(m.today())
		m.card = 0
	case key.Matches(keyMsg, m.keys.Open):
		if m.Mode == ModeMonth {
			date := m.Date()
			return m, func() tea.Msg { return OpenDayMsg{Date: date} }
		}
	}
	return m, nil
}

func (m *Model) shift(n int) {
	if m.Mode == ModeMonth {
		m.cursor = utils.ShiftMonths(m.cursor, n)
	} else {
		m.cursor = utils.ShiftWeeks(m.cursor, n)
	}
	m.card = 0
}

func (m Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Left, m.keys.Right, m.keys.Prev, m.keys.Next, m.keys.Today}
}

func (m Model) View() string {
	if m.Mode == ModeMonth {
		return m.viewMonth()
	}
	return m.viewWeek()
}

func truncate(s string, width int) string {
	if width <= 1 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

func (m Model) columnWidth() int {
	w := m.width/7 - 2 // border
	if w < 8 {
		w = 8
	}
	return w
}

func (m Model) viewWeek() string {
	colWidth := m.columnWidth()
	today := utils.ToISO(m.today())
	selected := m.Date()

	cols := make([]string, 0, 7)
	for _, day := range utils.WeekDays(m.cursor) {
		iso := utils.ToISO(day)
		header := fmt.Sprintf("%s %02d", utils.WeekdayLabel(day), day.Day())
		switch {
		case iso == today:
			header = todayStyle.Render(header)
		default:
			header = headerStyle.Render(header)
		}

		lines := []string{header, ""}
		for i, card := range store.CardsOn(m.cards, iso) {
			line := truncate(icon(card.Tipo)+" "+card.Titulo, colWidth)
			style := StatusStyle(card.Status)
			if iso == selected && i == m.card {
				style = style.Inherit(selectedStyle)
			}
			lines = append(lines, style.Render(line))
			if card.TimeOpcional != "" || card.IsFavorite {
				meta := card.TimeOpcional
				if card.IsFavorite {
					meta = strings.TrimSpace(meta + " ★")
				}
				lines = append(lines, dimStyle.Render(meta))
			}
		}

		box := dayBoxStyle
		if iso == selected {
			box = activeBoxStyle
		}
		height := m.height - 4
		if height < 6 {
			height = 6
		}
		cols = append(cols, box.Width(colWidth).Height(height).Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m Model) viewMonth() string {
	colWidth := m.columnWidth()
	today := utils.ToISO(m.today())
	selected := m.Date()

	var b strings.Builder
	header := make([]string, 0, 7)
	for _, name := range constants.WeekdayNames {
		header = append(header, headerStyle.Width(colWidth+2).Render(name))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, header...))
	b.WriteString("\n")

	grid := utils.MonthGrid(m.cursor)
	for row := 0; row < utils.MonthGridCells/7; row++ {
		cells := make([]string, 0, 7)
		for _, cell := range grid[row*7 : row*7+7] {
			iso := utils.ToISO(cell.Date)
			label := fmt.Sprintf("%2d", cell.Date.Day())
			if n := len(store.CardsOn(m.cards, iso)); n > 0 {
				label += fmt.Sprintf(" •%d", n)
			}
			style := lipgloss.NewStyle()
			switch {
			case !cell.Current:
				style = dimStyle
			case iso == today:
				style = todayStyle
			}
			if iso == selected {
				style = style.Inherit(selectedStyle)
			}
			cells = append(cells, lipgloss.NewStyle().Width(colWidth+2).Render(style.Render(label)))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s %s", utils.WeekdayLabel(m.cursor), selected)))
	b.WriteString("\n")
	day := m.DayCards()
	if len(day) == 0 {
		b.WriteString(dimStyle.Render("  Nenhum post neste dia"))
	}
	for _, card := range day {
		b.WriteString("  " + StatusStyle(card.Status).Render(icon(card.Tipo)+" "+card.Titulo+" ["+card.Status+"]") + "\n")
	}
	return b.String()
}
