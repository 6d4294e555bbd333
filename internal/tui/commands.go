package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/tirereq/internal/config"
	"github.com/kingrea/tirereq/internal/review"
)

// submitDoneMsg carries the gateway outcome of a submission.
type submitDoneMsg struct {
	op  review.SubmitOp
	err error
}

// itemDoneMsg carries the gateway outcome of a row update or delete.
type itemDoneMsg struct {
	op  review.ItemOp
	err error
}

// ConfigReloadedMsg is sent by the config watcher after config.yaml changes.
type ConfigReloadedMsg struct {
	Project config.ProjectConfig
	Err     error
}

func (a *App) submitCmd(op review.SubmitOp) tea.Cmd {
	gw, ctx := a.gateway, a.ctx
	return func() tea.Msg {
		return submitDoneMsg{op: op, err: gw.Submit(ctx, op.Draft)}
	}
}

func (a *App) itemCmd(op review.ItemOp) tea.Cmd {
	gw, ctx := a.gateway, a.ctx
	return func() tea.Msg {
		var err error
		switch op.Action {
		case review.ActionUpdate:
			err = gw.Update(ctx, op.ItemID, op.Request)
		case review.ActionDelete:
			err = gw.Delete(ctx, op.ItemID)
		}
		return itemDoneMsg{op: op, err: err}
	}
}
