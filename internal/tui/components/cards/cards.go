// Package cards lists undated cards: the backlog and the favorites.
package cards

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/vitrine/internal/constants"
	"github.com/julianstephens/vitrine/internal/models"
	"github.com/julianstephens/vitrine/internal/tui/components/clients"
)

type Item struct {
	Card models.ContentCard
}

func (i Item) Title() string {
	icon, ok := constants.TypeIcons[i.Card.Tipo]
	if !ok {
		icon = constants.DefaultTypeIcon
	}
	title := icon + " " + i.Card.Titulo
	if i.Card.IsFavorite {
		title += " ★"
	}
	return title
}

func (i Item) Description() string {
	parts := []string{i.Card.Status, i.Card.Pilar}
	if i.Card.DateISO != "" {
		when := i.Card.DateISO
		if i.Card.TimeOpcional != "" {
			when += " " + i.Card.TimeOpcional
		}
		parts = append(parts, when)
	}
	if total := len(i.Card.Checklist); total > 0 {
		done := 0
		for _, item := range i.Card.Checklist {
			if item.Done {
				done++
			}
		}
		parts = append(parts, fmt.Sprintf("%d/%d", done, total))
	}
	if len(i.Card.Tags) > 0 {
		parts = append(parts, "#"+strings.Join(i.Card.Tags, " #"))
	}
	return strings.Join(parts, " · ")
}

func (i Item) FilterValue() string {
	return i.Card.Titulo + " " + strings.Join(i.Card.Tags, " ")
}

type Model struct {
	list list.Model
}

func New(title string, width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = title
	l.SetShowHelp(false)
	l.Filter = clients.SubstringFilter
	l.SetStatusBarItemName("post", "posts")
	return Model{list: l}
}

func (m *Model) SetCards(cards []models.ContentCard) tea.Cmd {
	items := make([]list.Item, len(cards))
	for i, c := range cards {
		items[i] = Item{Card: c}
	}
	return m.list.SetItems(items)
}

func (m Model) SelectedCard() (models.ContentCard, bool) {
	item, ok := m.list.SelectedItem().(Item)
	return item.Card, ok
}

func (m Model) Len() int {
	return len(m.list.Items())
}

// Filtering reports whether the search box has focus.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Filtered reports whether a filter is being typed or applied.
func (m Model) Filtered() bool {
	return m.list.FilterState() != list.Unfiltered
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
