package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/vitrine/internal/caption"
	"github.com/julianstephens/vitrine/internal/constants"
	"github.com/julianstephens/vitrine/internal/models"
	"github.com/julianstephens/vitrine/internal/store"
	"github.com/julianstephens/vitrine/internal/tui/components/calendar"
	"github.com/julianstephens/vitrine/internal/tui/components/cards"
	"github.com/julianstephens/vitrine/internal/tui/components/clients"
	"github.com/julianstephens/vitrine/internal/utils"
	"github.com/julianstephens/vitrine/internal/validation"
)

// storeChangedMsg is sent after the store committed a change the model
// watches.
type storeChangedMsg struct{}

// loadDoneMsg reports the result of loading the remote copy.
type loadDoneMsg struct {
	ok bool
}

// captionMsg carries a generated caption for a card.
type captionMsg struct {
	cardID string
	text   string
}

// deleteTarget is the entity waiting for delete confirmation.
type deleteTarget struct {
	clientID string // set when deleting a client
	cardID   string // set when deleting a card
	label    string
	cascade  int
}

// cardScope is the input of the client cards memo.
type cardScope struct {
	cards    []models.ContentCard
	clientID string
}

type Model struct {
	ctx      context.Context
	cancel   context.CancelFunc
	store    *store.Store
	captions *caption.Service
	loc      *time.Location

	state         constants.SessionState
	previousState constants.SessionState
	tab           constants.WorkspaceTab
	keys          KeyMap
	clientKeys    clients.KeyMap
	help          help.Model
	spinner       spinner.Model

	clientList clients.Model
	calendar   calendar.Model
	backlog    cards.Model
	favorites  cards.Model

	form       *huh.Form
	clientForm *ClientFormModel
	cardForm   *CardFormModel
	editingID  string // id of the client or card in the open form, empty when adding
	pending    *deleteTarget
	captioning string // id of the card waiting for a caption

	changes     chan struct{}
	clientsB    *store.Binding[[]models.Client]
	cardsB      *store.Binding[[]models.ContentCard]
	currentB    *store.Binding[string]
	loadingB    *store.Binding[bool]
	clientCards func(cardScope) []models.ContentCard

	conflicts int // integrity errors in the snapshot

	status   string
	quitting bool
	width    int
	height   int
}

// NewModel binds a model to s. Close must be called once the program exits.
func NewModel(ctx context.Context, s *store.Store, captions *caption.Service, loc *time.Location) Model {
	if loc == nil {
		loc = time.Local
	}
	ctx, cancel := context.WithCancel(ctx)
	changes := make(chan struct{}, 1)
	signal := func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:        ctx,
		cancel:     cancel,
		store:      s,
		captions:   captions,
		loc:        loc,
		state:      constants.StateClients,
		keys:       DefaultKeyMap(),
		clientKeys: clients.DefaultKeyMap(),
		help:       help.New(),
		spinner:    sp,
		clientList: clients.New(0, 0),
		calendar:   calendar.New(func() time.Time { return utils.Today(loc) }, 0, 0),
		backlog:    cards.New("Backlog", 0, 0),
		favorites:  cards.New("Favoritos", 0, 0),
		changes:    changes,
	}

	m.clientCards = store.Memo(
		func(a, b cardScope) bool { return a.clientID == b.clientID && store.SameSlice(a.cards, b.cards) },
		func(in cardScope) []models.ContentCard { return store.ClientCards(in.cards, in.clientID) },
	)

	m.clientsB = store.SelectFunc(s, func(v store.View) []models.Client { return v.Clients },
		store.SameSlice[models.Client], func([]models.Client) { signal() })
	m.cardsB = store.SelectFunc(s, func(v store.View) []models.ContentCard { return v.Cards },
		store.SameSlice[models.ContentCard], func([]models.ContentCard) { signal() })
	m.currentB = store.Select(s, func(v store.View) string { return v.CurrentClientID },
		func(string) { signal() })
	m.loadingB = store.Select(s, func(v store.View) bool { return v.IsLoading },
		func(bool) { signal() })

	if _, ok := s.State().CurrentClient(); ok {
		m.state = constants.StateWorkspace
	}
	m.refresh()
	return m
}

// Close stops the store bindings and any pending command waiting on them.
func (m Model) Close() {
	m.clientsB.Close()
	m.cardsB.Close()
	m.currentB.Close()
	m.loadingB.Close()
	m.cancel()
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForChange(), m.spinner.Tick, m.loadRemote())
}

func (m Model) waitForChange() tea.Cmd {
	ctx, changes := m.ctx, m.changes
	return func() tea.Msg {
		select {
		case <-changes:
			return storeChangedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m Model) loadRemote() tea.Cmd {
	if !m.store.Remote() {
		return nil
	}
	ctx, s := m.ctx, m.store
	return func() tea.Msg {
		return loadDoneMsg{ok: s.LoadInitialData(ctx)}
	}
}

// currentClient returns the selected client, if it still exists.
func (m Model) currentClient() (models.Client, bool) {
	id := m.currentB.Value()
	if id == "" {
		return models.Client{}, false
	}
	for _, c := range m.clientsB.Value() {
		if c.ID == id {
			return c, true
		}
	}
	return models.Client{}, false
}

// refresh pushes the bound store values into the components.
func (m *Model) refresh() tea.Cmd {
	all := m.cardsB.Value()
	current := m.currentB.Value()
	clientsList := m.clientsB.Value()

	cmds := []tea.Cmd{m.clientList.SetClients(clientsList, store.CountByClient(all))}

	result := validation.New().ValidateSnapshot(models.AppState{Clients: clientsList, Cards: all})
	m.conflicts = len(result.Errors())

	if _, ok := m.currentClient(); !ok && m.state == constants.StateWorkspace {
		m.state = constants.StateClients
	}

	scoped := m.clientCards(cardScope{cards: all, clientID: current})
	m.calendar.SetCards(scoped)
	cmds = append(cmds, m.backlog.SetCards(store.Backlog(scoped)), m.favorites.SetCards(store.Favorites(scoped)))
	return tea.Batch(cmds...)
}

// selectedCard returns the card highlighted in the active tab.
func (m Model) selectedCard() (models.ContentCard, bool) {
	switch m.tab {
	case constants.TabBacklog:
		return m.backlog.SelectedCard()
	case constants.TabFavorites:
		return m.favorites.SelectedCard()
	default:
		return m.calendar.SelectedCard()
	}
}

// listOwnsKey reports whether the active list tab takes msg as is: while a
// filter is typed, or esc clearing an applied one.
func (m Model) listOwnsKey(msg tea.KeyMsg) bool {
	var l cards.Model
	switch m.tab {
	case constants.TabBacklog:
		l = m.backlog
	case constants.TabFavorites:
		l = m.favorites
	default:
		return false
	}
	return l.Filtering() || (l.Filtered() && msg.Type == tea.KeyEsc)
}

func (m Model) ShortHelp() []key.Binding {
	switch m.state {
	case constants.StateClients:
		return []key.Binding{m.clientKeys.Select, m.clientKeys.Add, m.clientKeys.Edit, m.clientKeys.Delete, m.keys.Quit, m.keys.Help}
	case constants.StateConfirmDelete:
		return []key.Binding{m.keys.Confirm, m.keys.Cancel}
	}
	return []key.Binding{m.keys.Tab, m.keys.Add, m.keys.Edit, m.keys.Status, m.keys.Back, m.keys.Quit, m.keys.Help}
}

func (m Model) FullHelp() [][]key.Binding {
	switch m.state {
	case constants.StateClients, constants.StateConfirmDelete:
		return [][]key.Binding{m.ShortHelp()}
	}
	actions := []key.Binding{m.keys.Add, m.keys.Edit, m.keys.Delete, m.keys.Status, m.keys.Favorite, m.keys.Duplicate, m.keys.Caption}
	if m.store.Remote() {
		actions = append(actions, m.keys.Sync)
	}
	return [][]key.Binding{
		{m.keys.Tab, m.keys.ShiftTab, m.keys.Back, m.keys.Quit, m.keys.Help},
		m.calendar.ShortHelp(),
		actions,
	}
}
