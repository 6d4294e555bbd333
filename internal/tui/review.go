package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/kingrea/tirereq/internal/request"
	"github.com/kingrea/tirereq/internal/review"
)

// editFields are the inputs offered when editing a submitted request.
var editFields = append(append([]request.Field(nil), request.TextFields...), request.FieldComments)

// reviewView lists submitted requests and hosts the edit panel and the delete
// confirmation.
type reviewView struct {
	app   *App
	table table.Model
	ids   []int64

	editor  *editPanel
	confirm *huh.Form
	// listFocused routes keys to the table while the editor stays open.
	listFocused bool

	confirmID     int64
	confirmDelete bool
}

// editPanel edits the store's session draft one field at a time.
type editPanel struct {
	itemID int64
	inputs []textinput.Model
	focus  int // len(inputs) and len(inputs)+1 are the two option rows
}

func newReviewView(app *App) *reviewView {
	columns := []table.Column{
		{Title: "ID", Width: 14},
		{Title: "Vehicle", Width: 11},
		{Title: "Type", Width: 10},
		{Title: "Tire Size", Width: 11},
		{Title: "Tires", Width: 5},
		{Title: "Present KM", Width: 10},
		{Title: "Images", Width: 9},
		{Title: "Status", Width: 20},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(8),
	)
	v := &reviewView{app: app, table: t}
	v.refresh()
	return v
}

func (v *reviewView) resize(width, height int) {
	if height > 20 {
		v.table.SetHeight(min(20, height-16))
	}
}

// refresh rebuilds the table rows from the store.
func (v *reviewView) refresh() {
	items := v.app.store.Items()
	rows := make([]table.Row, 0, len(items))
	v.ids = v.ids[:0]
	for _, item := range items {
		rows = append(rows, table.Row{
			strconv.FormatInt(item.ID, 10),
			item.VehicleNo,
			item.VehicleType,
			item.TireSize,
			item.NoOfTires,
			item.PresentKm,
			item.ImageSummary(),
			v.status(item.ID),
		})
		v.ids = append(v.ids, item.ID)
	}
	v.table.SetRows(rows)
	if cursor := v.table.Cursor(); cursor >= len(rows) && len(rows) > 0 {
		v.table.SetCursor(len(rows) - 1)
	}
}

func (v *reviewView) status(id int64) string {
	if action, ok := v.app.store.InFlight(id); ok {
		if action == review.ActionDelete {
			return "Deleting…"
		}
		return "Saving…"
	}
	if session, ok := v.app.store.Editing(); ok && session.ItemID == id {
		return "Editing"
	}
	if card, ok := v.app.board.Get(id); ok {
		return string(card.Stage)
	}
	return "Submitted"
}

func (v *reviewView) selectedID() (int64, bool) {
	cursor := v.table.Cursor()
	if cursor < 0 || cursor >= len(v.ids) {
		return 0, false
	}
	return v.ids[cursor], true
}

func (v *reviewView) Update(msg tea.Msg) tea.Cmd {
	if v.confirm != nil {
		return v.updateConfirm(msg)
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if v.editor != nil && !v.listFocused {
		return v.updateEditor(keyMsg)
	}

	keys := v.app.keys
	switch {
	case v.editor != nil && (key.Matches(keyMsg, keys.Pane) || key.Matches(keyMsg, keys.Back)):
		v.focusList(false)
		return nil
	case key.Matches(keyMsg, keys.Back):
		v.app.showHome()
		return nil
	case key.Matches(keyMsg, keys.Edit):
		if id, ok := v.selectedID(); ok {
			v.beginEdit(id)
		}
		return nil
	case key.Matches(keyMsg, keys.Delete):
		if id, ok := v.selectedID(); ok {
			return v.askDelete(id)
		}
		return nil
	}
	var cmd tea.Cmd
	v.table, cmd = v.table.Update(keyMsg)
	return cmd
}

func (v *reviewView) beginEdit(id int64) {
	if err := v.app.store.BeginEdit(id); err != nil {
		v.app.statusMsg = describeGuard(err)
		return
	}
	session, _ := v.app.store.Editing()
	v.editor = newEditPanel(session)
	v.focusList(false)
	v.app.statusMsg = fmt.Sprintf("Editing request #%d", id)
	v.refresh()
}

// focusList moves key input between the table and the open editor.
func (v *reviewView) focusList(list bool) {
	v.listFocused = list && v.editor != nil
	if v.editor == nil || v.listFocused {
		v.table.Focus()
		if v.editor != nil {
			v.editor.blur()
		}
		return
	}
	v.table.Blur()
	v.editor.setFocus(v.editor.focus)
}

func (v *reviewView) closeEditor() {
	if _, editing := v.app.store.Editing(); editing {
		return
	}
	v.editor = nil
	v.focusList(false)
}

func (v *reviewView) updateEditor(keyMsg tea.KeyMsg) tea.Cmd {
	keys := v.app.keys
	e := v.editor
	switch {
	case key.Matches(keyMsg, keys.Save):
		return v.save()
	case key.Matches(keyMsg, keys.Back):
		v.app.store.Cancel()
		v.editor = nil
		v.focusList(false)
		v.app.statusMsg = "Edit cancelled"
		v.refresh()
		return nil
	case key.Matches(keyMsg, keys.Pane):
		v.focusList(true)
		return nil
	case key.Matches(keyMsg, keys.Discard):
		return v.askDelete(e.itemID)
	case key.Matches(keyMsg, keys.Next):
		e.setFocus(e.focus + 1)
		return nil
	case key.Matches(keyMsg, keys.Prev):
		e.setFocus(e.focus - 1)
		return nil
	}

	if e.focus >= len(e.inputs) {
		if key.Matches(keyMsg, keys.Toggle) {
			v.cycleEditOption(e.focus == len(e.inputs), keyMsg.String() == "left")
		}
		return nil
	}
	e.inputs[e.focus], _ = e.inputs[e.focus].Update(keyMsg)
	if err := v.app.store.EditField(editFields[e.focus], e.inputs[e.focus].Value()); err != nil {
		v.app.statusMsg = describeGuard(err)
	}
	return nil
}

func (v *reviewView) cycleEditOption(indicator, backwards bool) {
	session, ok := v.app.store.Editing()
	if !ok {
		return
	}
	step := 1
	if backwards {
		step = -1
	}
	if indicator {
		next := request.WearIndicators[cycleIndex(indexOfIndicator(session.Draft.WearIndicator), step, len(request.WearIndicators))]
		_ = v.app.store.EditField(request.FieldWearIndicator, string(next))
		return
	}
	next := request.WearPatterns[cycleIndex(indexOfPattern(session.Draft.WearPattern), step, len(request.WearPatterns))]
	_ = v.app.store.EditField(request.FieldWearPattern, string(next))
}

func (v *reviewView) save() tea.Cmd {
	wasBusy := v.app.busy()
	op, err := v.app.store.Save()
	if err != nil {
		var verrs request.ValidationErrors
		if errors.As(err, &verrs) {
			v.app.statusMsg = fmt.Sprintf("Please correct %d field(s) before saving", len(verrs))
		} else {
			v.app.statusMsg = describeGuard(err)
		}
		return nil
	}
	v.app.statusMsg = fmt.Sprintf("Saving request #%d…", op.ItemID)
	v.app.logInfo("Update · request #%d", op.ItemID)
	v.refresh()
	return tea.Batch(v.app.itemCmd(op), v.app.startSpinner(wasBusy))
}

// askDelete opens the confirmation dialog for a row.
func (v *reviewView) askDelete(id int64) tea.Cmd {
	if _, busy := v.app.store.InFlight(id); busy {
		v.app.statusMsg = fmt.Sprintf("Request #%d has an action in progress", id)
		return nil
	}
	v.confirmID = id
	v.confirmDelete = false
	v.confirm = huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Delete request #%d?", id)).
			Description("This removes it from the review list.").
			Affirmative("Delete").
			Negative("Keep").
			Value(&v.confirmDelete),
	)).WithShowHelp(false)
	return v.confirm.Init()
}

func (v *reviewView) updateConfirm(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, v.app.keys.Back) {
		v.confirm = nil
		return nil
	}
	model, cmd := v.confirm.Update(msg)
	if form, ok := model.(*huh.Form); ok {
		v.confirm = form
	}
	switch v.confirm.State {
	case huh.StateCompleted:
		v.confirm = nil
		return v.resolveDelete(v.confirmDelete)
	case huh.StateAborted:
		v.confirm = nil
		return nil
	}
	return cmd
}

// resolveDelete dispatches the delete once the user has answered the dialog.
func (v *reviewView) resolveDelete(confirmed bool) tea.Cmd {
	id := v.confirmID
	if !confirmed {
		v.app.statusMsg = fmt.Sprintf("Kept request #%d", id)
		return nil
	}
	wasBusy := v.app.busy()
	op, err := v.app.store.Delete(id)
	if err != nil {
		v.app.statusMsg = describeGuard(err)
		return nil
	}
	v.app.statusMsg = fmt.Sprintf("Deleting request #%d…", id)
	v.app.logInfo("Delete · request #%d", id)
	v.refresh()
	return tea.Batch(v.app.itemCmd(op), v.app.startSpinner(wasBusy))
}

func (v *reviewView) bindings() bindingSet {
	k := v.app.keys
	switch {
	case v.editor != nil && v.listFocused:
		return bindingSet{k.Up, k.Down, k.Edit, k.Delete, k.Pane, k.Quit}
	case v.editor != nil:
		return bindingSet{k.Next, k.Prev, k.Toggle, k.Save, k.Discard, k.Pane, k.Back}
	}
	return bindingSet{k.Up, k.Down, k.Edit, k.Delete, k.Back, k.Quit}
}

func (v *reviewView) View() string {
	var b strings.Builder
	if err := v.app.store.ItemError(); err != nil {
		b.WriteString(bannerStyle.Render(err.Error()))
		b.WriteString("\n\n")
	}
	if len(v.ids) == 0 {
		b.WriteString(mutedStyle.Render("No requests submitted yet."))
	} else {
		b.WriteString(v.table.View())
	}
	if v.app.busy() {
		b.WriteString("\n" + busyStyle.Render(v.app.spinner.View()+" waiting for backend"))
	}
	if v.confirm != nil {
		b.WriteString("\n\n" + v.confirm.View())
	}
	if v.editor != nil {
		b.WriteString("\n\n" + v.editorView())
	}
	return b.String()
}

func (v *reviewView) editorView() string {
	session, ok := v.app.store.Editing()
	if !ok {
		return ""
	}
	e := v.editor
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", focusStyle.Render(fmt.Sprintf("Edit request #%d", session.ItemID)))
	row := func(idx int, label, value string) {
		marker, style := "  ", labelStyle
		if idx == e.focus && !v.listFocused {
			marker, style = "› ", focusStyle
		}
		fmt.Fprintf(&b, "%s%s %s\n", marker, style.Render(fmt.Sprintf("%-24s", label+":")), value)
	}
	for i, field := range editFields {
		row(i, field.Label(), e.inputs[i].View())
		if msg, ok := session.Errors[field]; ok {
			fmt.Fprintf(&b, "    %s\n", errorStyle.Render(msg))
		}
	}
	row(len(e.inputs), request.FieldWearIndicator.Label(), string(session.Draft.WearIndicator))
	row(len(e.inputs)+1, request.FieldWearPattern.Label(), string(session.Draft.WearPattern))
	if _, saving := v.app.store.InFlight(session.ItemID); saving {
		b.WriteString(busyStyle.Render(v.app.spinner.View() + " Saving…"))
	}
	return b.String()
}

func newEditPanel(session review.Editing) *editPanel {
	e := &editPanel{itemID: session.ItemID}
	draft := session.Draft
	for _, field := range editFields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 0
		ti.SetValue(draft.Get(field))
		e.inputs = append(e.inputs, ti)
	}
	e.setFocus(0)
	return e
}

func (e *editPanel) blur() {
	for i := range e.inputs {
		e.inputs[i].Blur()
	}
}

func (e *editPanel) setFocus(idx int) {
	n := len(e.inputs) + 2
	idx = ((idx % n) + n) % n
	for i := range e.inputs {
		e.inputs[i].Blur()
	}
	e.focus = idx
	if idx < len(e.inputs) {
		e.inputs[idx].Focus()
	}
}

// describeGuard turns a refused store operation into a status line.
func describeGuard(err error) string {
	switch {
	case errors.Is(err, review.ErrActionInFlight):
		return "Another action is still in progress for this request"
	case errors.Is(err, review.ErrItemNotFound):
		return "That request no longer exists"
	case errors.Is(err, review.ErrNotEditing):
		return "No request is being edited"
	}
	return err.Error()
}
