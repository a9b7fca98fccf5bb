package system

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/vitrine/internal/cli"
	"github.com/julianstephens/vitrine/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	// Perform automatic backup on TUI startup
	ctx.PerformAutomaticBackup()

	m := tui.NewModel(ctx.Ctx, ctx.Store, ctx.Captions, ctx.Config.Location())
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx.Ctx))
	_, err := p.Run()
	return err
}
