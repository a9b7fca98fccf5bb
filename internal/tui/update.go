package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/vitrine/internal/constants"
	"github.com/julianstephens/vitrine/internal/logger"
	"github.com/julianstephens/vitrine/internal/models"
	"github.com/julianstephens/vitrine/internal/store"
	"github.com/julianstephens/vitrine/internal/tui/components/calendar"
	"github.com/julianstephens/vitrine/internal/tui/components/clients"
)

// chromeHeight is the space taken by the tabs, status line and help.
const chromeHeight = 6

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		w, h := msg.Width-4, msg.Height-chromeHeight
		m.clientList.SetSize(w, h)
		m.calendar.SetSize(w, h)
		m.backlog.SetSize(w, h)
		m.favorites.SetSize(w, h)
		m.help.Width = msg.Width
		if m.form != nil {
			m.form = m.form.WithWidth(w)
		}
		return m, nil

	case storeChangedMsg:
		return m, tea.Batch(m.refresh(), m.waitForChange())

	case loadDoneMsg:
		if msg.ok {
			m.status = "Dados sincronizados"
		} else {
			m.status = "Falha ao carregar o remoto, usando dados locais"
		}
		return m, nil

	case captionMsg:
		m.captioning = ""
		if _, ok := m.store.State().FindCard(msg.cardID); !ok {
			return m, nil
		}
		m.store.UpdateCard(m.ctx, msg.cardID, models.CardPatch{Legenda: &msg.text})
		m.status = "Legenda gerada"
		return m, m.refresh()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case calendar.OpenDayMsg:
		m.tab = constants.TabWeek
		m.calendar.Mode = calendar.ModeWeek
		m.calendar.SetDate(msg.Date)
		return m, nil

	case clients.SelectClientMsg:
		m.store.SetCurrentClientID(m.ctx, msg.ID)
		m.state = constants.StateWorkspace
		return m, m.refresh()

	case clients.AddClientMsg:
		return m, m.openClientForm(nil)

	case clients.EditClientMsg:
		c, ok := m.store.State().FindClient(msg.ID)
		if !ok {
			return m, nil
		}
		return m, m.openClientForm(&c)

	case clients.DeleteClientMsg:
		c, ok := m.store.State().FindClient(msg.ID)
		if !ok {
			return m, nil
		}
		m.confirmDelete(&deleteTarget{
			clientID: c.ID,
			label:    c.Nome,
			cascade:  len(store.ClientCards(m.store.State().Cards, c.ID)),
		})
		return m, nil
	}

	switch m.state {
	case constants.StateClientForm, constants.StateCardForm:
		return m.updateForm(msg)
	case constants.StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	case constants.StateWorkspace:
		return m.updateWorkspace(msg)
	default:
		return m.updateClients(msg)
	}
}

func (m Model) updateClients(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && !m.clientList.Filtering() {
		m.status = ""
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.clientList, cmd = m.clientList.Update(msg)
	return m, cmd
}

func (m Model) updateWorkspace(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.listOwnsKey(keyMsg) {
		return m.forwardToTab(msg)
	}
	m.status = ""

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(keyMsg, m.keys.Back):
		m.store.SetCurrentClientID(m.ctx, "")
		m.state = constants.StateClients
		return m, m.refresh()
	case key.Matches(keyMsg, m.keys.Tab):
		m.setTab((m.tab + 1) % constants.WorkspaceTab(len(constants.WorkspaceTabTitles)))
		return m, nil
	case key.Matches(keyMsg, m.keys.ShiftTab):
		n := constants.WorkspaceTab(len(constants.WorkspaceTabTitles))
		m.setTab((m.tab + n - 1) % n)
		return m, nil
	case key.Matches(keyMsg, m.keys.Add):
		switch m.tab {
		case constants.TabBacklog:
			return m, m.openCardForm(nil, "", false)
		case constants.TabFavorites:
			return m, m.openCardForm(nil, "", true)
		default:
			return m, m.openCardForm(nil, m.calendar.Date(), false)
		}
	case key.Matches(keyMsg, m.keys.Sync):
		if !m.store.Remote() {
			m.status = "Remoto não configurado"
			return m, nil
		}
		return m, m.loadRemote()
	}

	// Enter opens the week from the month grid
	if m.tab == constants.TabMonth && keyMsg.String() == "enter" {
		return m.forwardToTab(msg)
	}

	if matched, cmd := m.cardAction(keyMsg); matched {
		return m, cmd
	}
	return m.forwardToTab(msg)
}

// cardAction runs the card key bindings against the selected card.
func (m *Model) cardAction(msg tea.KeyMsg) (bool, tea.Cmd) {
	if !key.Matches(msg, m.keys.Edit, m.keys.Delete, m.keys.Status, m.keys.Favorite, m.keys.Duplicate, m.keys.Caption) {
		return false, nil
	}
	card, ok := m.selectedCard()
	if !ok {
		m.status = "Nenhum post selecionado"
		return true, nil
	}

	switch {
	case key.Matches(msg, m.keys.Edit):
		return true, m.openCardForm(&card, "", false)
	case key.Matches(msg, m.keys.Delete):
		m.confirmDelete(&deleteTarget{cardID: card.ID, label: card.Titulo})
		return true, nil
	case key.Matches(msg, m.keys.Status):
		next := constants.NextStatus(card.Status)
		m.store.UpdateCard(m.ctx, card.ID, models.CardPatch{Status: &next})
	case key.Matches(msg, m.keys.Favorite):
		fav := !card.IsFavorite
		m.store.UpdateCard(m.ctx, card.ID, models.CardPatch{IsFavorite: &fav})
	case key.Matches(msg, m.keys.Duplicate):
		if dup, ok := m.store.DuplicateCard(m.ctx, card.ID); ok {
			m.status = fmt.Sprintf("Duplicado: %s", dup.Titulo)
		}
	case key.Matches(msg, m.keys.Caption):
		return true, m.generateCaption(card)
	}
	return true, m.refresh()
}

func (m *Model) setTab(tab constants.WorkspaceTab) {
	m.tab = tab
	switch tab {
	case constants.TabWeek:
		m.calendar.Mode = calendar.ModeWeek
	case constants.TabMonth:
		m.calendar.Mode = calendar.ModeMonth
	}
}

func (m Model) forwardToTab(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.tab {
	case constants.TabBacklog:
		m.backlog, cmd = m.backlog.Update(msg)
	case constants.TabFavorites:
		m.favorites, cmd = m.favorites.Update(msg)
	default:
		m.calendar, cmd = m.calendar.Update(msg)
	}
	return m, cmd
}

// generateCaption asks the caption service for the card legend. Cards
// without format or pillar are described as a generic post.
func (m *Model) generateCaption(card models.ContentCard) tea.Cmd {
	client, ok := m.currentClient()
	if !ok {
		m.status = "Selecione um cliente primeiro"
		return nil
	}
	if !m.captions.Available() {
		m.status = fmt.Sprintf("Configure %s para gerar legendas", constants.EnvCaptionKey)
		return nil
	}
	if m.captioning != "" {
		m.status = "Já existe uma legenda sendo gerada"
		return nil
	}

	kind, pillar := card.Tipo, card.Pilar
	if kind == "" {
		kind = constants.DefaultCardType
	}
	if pillar == "" {
		pillar = constants.DefaultCardPillar
	}

	m.captioning = card.ID
	ctx, svc := m.ctx, m.captions
	return func() tea.Msg {
		text := svc.GenerateCaption(ctx, card.Titulo, kind, pillar, client.Nicho, client.TomDeVoz)
		return captionMsg{cardID: card.ID, text: text}
	}
}

func (m *Model) openClientForm(c *models.Client) tea.Cmd {
	if c == nil {
		m.clientForm = &ClientFormModel{}
		m.editingID = ""
	} else {
		m.clientForm = clientFormFrom(*c)
		m.editingID = c.ID
	}
	m.form = NewClientForm(m.clientForm)
	if m.width > 0 {
		m.form = m.form.WithWidth(m.width - 4)
	}
	m.previousState = m.state
	m.state = constants.StateClientForm
	return m.form.Init()
}

// openCardForm edits card, or adds a card on date when card is nil.
func (m *Model) openCardForm(card *models.ContentCard, date string, favorite bool) tea.Cmd {
	if card == nil {
		m.cardForm = newCardForm(date)
		m.cardForm.IsFavorite = favorite
		m.editingID = ""
	} else {
		m.cardForm = cardFormFrom(*card)
		m.editingID = card.ID
	}
	m.form = NewCardForm(m.cardForm)
	if m.width > 0 {
		m.form = m.form.WithWidth(m.width - 4)
	}
	m.previousState = m.state
	m.state = constants.StateCardForm
	return m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = m.previousState
		m.form = nil
		return m, nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		m.submitForm()
		m.state = m.previousState
		m.form = nil
		cmds = append(cmds, m.refresh())
	case huh.StateAborted:
		m.state = m.previousState
		m.form = nil
	}
	return m, tea.Batch(cmds...)
}

// submitForm applies the completed form to the store.
func (m *Model) submitForm() {
	st := m.store.State()

	if m.state == constants.StateClientForm {
		if m.editingID == "" {
			c := m.store.AddClient(m.ctx, m.clientForm.Input())
			m.status = fmt.Sprintf("Cliente criado: %s", c.Nome)
			return
		}
		orig, ok := st.FindClient(m.editingID)
		if !ok {
			logger.Warn("client disappeared while editing", "id", m.editingID)
			return
		}
		if p := m.clientForm.Patch(orig); !p.IsEmpty() {
			m.store.UpdateClient(m.ctx, orig.ID, p)
			m.status = "Cliente atualizado"
		}
		return
	}

	if m.editingID == "" {
		client, ok := m.currentClient()
		if !ok {
			m.status = "Selecione um cliente primeiro"
			return
		}
		c := m.store.AddCard(m.ctx, m.cardForm.Draft(client.ID))
		m.status = fmt.Sprintf("Post criado: %s", c.Titulo)
		if c.DateISO != "" && !c.IsBacklog {
			m.calendar.SetDate(c.DateISO)
		}
		return
	}
	orig, ok := st.FindCard(m.editingID)
	if !ok {
		logger.Warn("card disappeared while editing", "id", m.editingID)
		return
	}
	if p := m.cardForm.Patch(orig); !p.IsEmpty() {
		m.store.UpdateCard(m.ctx, orig.ID, p)
		m.status = "Post atualizado"
	}
}

func (m *Model) confirmDelete(target *deleteTarget) {
	m.pending = target
	m.previousState = m.state
	m.state = constants.StateConfirmDelete
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		target := m.pending
		m.pending = nil
		m.state = m.previousState
		if target.clientID != "" {
			m.store.DeleteClient(m.ctx, target.clientID)
			m.status = fmt.Sprintf("Cliente excluído: %s", target.label)
		} else {
			m.store.DeleteCard(m.ctx, target.cardID)
			m.status = fmt.Sprintf("Post excluído: %s", target.label)
		}
		return m, m.refresh()
	case key.Matches(keyMsg, m.keys.Cancel):
		m.pending = nil
		m.state = m.previousState
	}
	return m, nil
}
