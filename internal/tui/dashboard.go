package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/kingrea/tirereq/internal/approval"
)

// dashboardView is the reviewer's board. It acts on cards at one stage: the
// manager on pending cards, the TTO on manager-approved cards.
type dashboardView struct {
	app    *App
	stage  approval.Stage
	cursor int

	reject        *huh.Form
	rejectID      int64
	rejectComment string
	rejectConfirm bool
}

func newDashboardView(app *App, stage approval.Stage) *dashboardView {
	return &dashboardView{app: app, stage: stage}
}

func (d *dashboardView) title() string {
	if d.stage == approval.StageManagerApproved {
		return "TTO DASHBOARD"
	}
	return "MANAGER DASHBOARD"
}

// cards lists the cards awaiting this reviewer. Decided cards drop off.
func (d *dashboardView) cards() []approval.Card {
	return d.app.board.InStage(d.stage)
}

func (d *dashboardView) selected() (approval.Card, bool) {
	cards := d.cards()
	d.clamp(len(cards))
	if d.cursor >= len(cards) {
		return approval.Card{}, false
	}
	return cards[d.cursor], true
}

func (d *dashboardView) clamp(n int) {
	if d.cursor >= n {
		d.cursor = n - 1
	}
	if d.cursor < 0 {
		d.cursor = 0
	}
}

func (d *dashboardView) Update(msg tea.Msg) tea.Cmd {
	if d.reject != nil {
		return d.updateReject(msg)
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	keys := d.app.keys
	switch {
	case key.Matches(keyMsg, keys.Up):
		if d.cursor > 0 {
			d.cursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if d.cursor < len(d.cards())-1 {
			d.cursor++
		}
	case key.Matches(keyMsg, keys.Approve):
		d.approveSelected()
	case key.Matches(keyMsg, keys.Reject):
		return d.askReject()
	case key.Matches(keyMsg, keys.Review):
		d.app.showReview()
	}
	return nil
}

func (d *dashboardView) approveSelected() {
	card, ok := d.selected()
	if !ok {
		return
	}
	var (
		tr  approval.Transition
		err error
	)
	if d.stage == approval.StageManagerApproved {
		tr, err = d.app.board.TTOApprove(card.ID, d.app.approver)
	} else {
		tr, err = d.app.board.ManagerApprove(card.ID, d.app.approver)
	}
	if err != nil {
		d.app.statusMsg = err.Error()
		d.app.logWarn("Approve #%d refused: %v", card.ID, err)
		return
	}
	d.app.statusMsg = tr.Message()
	d.app.logInfo("%s", tr.Message())
	d.app.logger.Info("status changed", "id", card.ID, "from", tr.From, "to", tr.To, "approver", d.app.approver)
}

func (d *dashboardView) askReject() tea.Cmd {
	card, ok := d.selected()
	if !ok {
		return nil
	}
	if card.Stage.Final() {
		d.app.statusMsg = fmt.Sprintf("Request #%d is already %s", card.ID, card.Stage)
		return nil
	}
	d.rejectID = card.ID
	d.rejectComment = ""
	d.rejectConfirm = false
	d.reject = huh.NewForm(huh.NewGroup(
		huh.NewText().
			Title(fmt.Sprintf("Reason for rejecting request #%d", card.ID)).
			CharLimit(500).
			Value(&d.rejectComment),
		huh.NewConfirm().
			Title("Reject this request?").
			Affirmative("Reject").
			Negative("Cancel").
			Value(&d.rejectConfirm),
	)).WithShowHelp(false)
	return d.reject.Init()
}

func (d *dashboardView) updateReject(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, d.app.keys.Back) {
		d.reject = nil
		return nil
	}
	model, cmd := d.reject.Update(msg)
	if form, ok := model.(*huh.Form); ok {
		d.reject = form
	}
	switch d.reject.State {
	case huh.StateCompleted:
		d.reject = nil
		d.resolveReject(d.rejectConfirm, d.rejectComment)
		return nil
	case huh.StateAborted:
		d.reject = nil
		return nil
	}
	return cmd
}

func (d *dashboardView) resolveReject(confirmed bool, comment string) {
	if !confirmed {
		d.app.statusMsg = fmt.Sprintf("Request #%d left unchanged", d.rejectID)
		return
	}
	tr, err := d.app.board.Reject(d.rejectID, d.app.approver, comment)
	if err != nil {
		d.app.statusMsg = err.Error()
		d.app.logWarn("Reject #%d refused: %v", d.rejectID, err)
		return
	}
	d.app.statusMsg = tr.Message()
	d.app.logInfo("%s", tr.Message())
	d.app.logger.Info("status changed", "id", d.rejectID, "from", tr.From, "to", tr.To, "approver", d.app.approver)
}

func (d *dashboardView) bindings() bindingSet {
	k := d.app.keys
	return bindingSet{k.Up, k.Down, k.Approve, k.Reject, k.Review, k.Quit}
}

func (d *dashboardView) View() string {
	cards := d.cards()
	d.clamp(len(cards))
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", mutedStyle.Render("Approver: "+d.app.approver))
	if len(cards) == 0 {
		b.WriteString(mutedStyle.Render("No requests awaiting review."))
	}
	for i, card := range cards {
		marker, style := "  ", labelStyle
		if i == d.cursor {
			marker, style = "› ", selectedStyle
		}
		stage := busyStyle.Render(string(card.Stage))
		fmt.Fprintf(&b, "%s%s  %s\n", marker, style.Render(fmt.Sprintf("#%d %s", card.ID, card.Requester)), stage)
		details := fmt.Sprintf("Tire Size: %s", card.TireSize)
		if card.VehicleNo != "" {
			details += fmt.Sprintf(" · Vehicle: %s", card.VehicleNo)
		}
		fmt.Fprintf(&b, "    %s\n", mutedStyle.Render(details))
		if card.Comments != "" {
			fmt.Fprintf(&b, "    %s\n", mutedStyle.Render(card.Comments))
		}
	}
	if d.reject != nil {
		b.WriteString("\n" + d.reject.View())
	}
	return b.String()
}
