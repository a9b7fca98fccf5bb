package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/vitrine/internal/constants"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string

	switch m.state {
	case constants.StateClients:
		content = docStyle.Render(m.clientList.View())
	case constants.StateWorkspace:
		content = m.viewWorkspace()
	case constants.StateClientForm, constants.StateCardForm:
		content = docStyle.Render(m.form.View())
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		m.viewConflictBanner(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewHeader() string {
	parts := []string{titleStyle.Render(constants.AppName)}
	if c, ok := m.currentClient(); ok && m.state != constants.StateClients {
		parts = append(parts, inactiveTabStyle.Render(c.Nome))
		if m.state == constants.StateWorkspace {
			parts = append(parts, m.viewTabs())
		}
	}
	if m.loadingB.Value() {
		parts = append(parts, warningStyle.Render(m.spinner.View()+" sincronizando"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range constants.WorkspaceTabTitles {
		if m.tab == constants.WorkspaceTab(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewWorkspace() string {
	switch m.tab {
	case constants.TabBacklog:
		return docStyle.Render(m.backlog.View())
	case constants.TabFavorites:
		return docStyle.Render(m.favorites.View())
	default:
		return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render(m.calendar.Title()),
			m.calendar.View(),
		))
	}
}

func (m Model) viewStatus() string {
	if m.captioning != "" {
		return warningStyle.Render(m.spinner.View() + " gerando legenda...")
	}
	if m.status == "" {
		return ""
	}
	return statusStyle.Render(m.status)
}

func (m Model) viewConfirmDelete() string {
	if m.pending == nil {
		return ""
	}
	question := fmt.Sprintf("Excluir o post %q?", m.pending.label)
	if m.pending.clientID != "" {
		question = fmt.Sprintf("Excluir o cliente %q e seus %d posts?", m.pending.label, m.pending.cascade)
	}
	return lipgloss.Place(m.width, m.height-chromeHeight,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(question),
			"",
			"[y] Sim",
			"[n] Não",
		),
	)
}

func (m Model) viewConflictBanner() string {
	if m.conflicts == 0 {
		return ""
	}

	var bannerStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("214")).
		Bold(true).
		Padding(0, 1)

	return bannerStyle.Render(fmt.Sprintf("⚠ %d CONFLICT(S) DETECTED · run '%s validate'", m.conflicts, constants.AppName))
}
