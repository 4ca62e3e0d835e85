package system

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitchain/internal/cli"
	"github.com/julianstephens/habitchain/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	a, err := ctx.Core()
	if err != nil {
		return err
	}

	ctx.PerformAutomaticBackup()

	p := tea.NewProgram(tui.NewModel(a), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
