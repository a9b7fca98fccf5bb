package clients

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/vitrine/internal/models"
)

type SelectClientMsg struct {
	ID string
}

type AddClientMsg struct{}

type EditClientMsg struct {
	ID string
}

type DeleteClientMsg struct {
	ID string
}

type Item struct {
	Client models.Client
	Cards  int
}

func (i Item) Title() string {
	title := i.Client.Nome
	if i.Client.Instagram != "" {
		title += "  " + i.Client.Instagram
	}
	return title
}

func (i Item) Description() string {
	parts := []string{fmt.Sprintf("%d posts", i.Cards)}
	if i.Client.Nicho != "" {
		parts = append(parts, i.Client.Nicho)
	}
	if i.Client.TomDeVoz != "" {
		parts = append(parts, i.Client.TomDeVoz)
	}
	return strings.Join(parts, " · ")
}

// FilterValue is what the search box matches against: name and handle.
func (i Item) FilterValue() string { return i.Client.Nome + " " + i.Client.Instagram }

// SubstringFilter keeps the targets containing term, ignoring case, in their
// original order.
func SubstringFilter(term string, targets []string) []list.Rank {
	term = strings.ToLower(strings.TrimSpace(term))
	ranks := []list.Rank{}
	for i, target := range targets {
		lower := strings.ToLower(target)
		idx := strings.Index(lower, term)
		if idx < 0 {
			continue
		}
		start := utf8.RuneCountInString(lower[:idx])
		n := utf8.RuneCountInString(term)
		matched := make([]int, n)
		for j := range matched {
			matched[j] = start + j
		}
		ranks = append(ranks, list.Rank{Index: i, MatchedIndexes: matched})
	}
	return ranks
}

type KeyMap struct {
	Select key.Binding
	Add    key.Binding
	Edit   key.Binding
	Delete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Clientes"
	l.SetShowHelp(false)
	l.Filter = SubstringFilter
	l.SetStatusBarItemName("cliente", "clientes")

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Select, keys.Add, keys.Edit, keys.Delete}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Select, keys.Add, keys.Edit, keys.Delete}
	}

	return Model{
		list: l,
		keys: keys,
	}
}

// SetClients replaces the listed clients, keeping the filter.
func (m *Model) SetClients(clients []models.Client, counts map[string]int) tea.Cmd {
	items := make([]list.Item, len(clients))
	for i, c := range clients {
		items[i] = Item{Client: c, Cards: counts[c.ID]}
	}
	return m.list.SetItems(items)
}

// Selected returns the highlighted client.
func (m Model) Selected() (models.Client, bool) {
	item, ok := m.list.SelectedItem().(Item)
	return item.Client, ok
}

// Filtering reports whether the search box has focus.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Don't match if we're filtering
		if m.Filtering() {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddClientMsg{} }
		case key.Matches(msg, m.keys.Select, m.keys.Edit, m.keys.Delete):
			item, ok := m.list.SelectedItem().(Item)
			if !ok {
				return m, nil
			}
			id := item.Client.ID
			switch {
			case key.Matches(msg, m.keys.Select):
				return m, func() tea.Msg { return SelectClientMsg{ID: id} }
			case key.Matches(msg, m.keys.Edit):
				return m, func() tea.Msg { return EditClientMsg{ID: id} }
			default:
				return m, func() tea.Msg { return DeleteClientMsg{ID: id} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
