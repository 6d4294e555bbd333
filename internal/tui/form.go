package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/tirereq/internal/request"
)

type entryKind int

const (
	entryText entryKind = iota
	entryOption
	entryComments
	entryImage
)

// formEntry is one focusable control in form order.
type formEntry struct {
	kind  entryKind
	field request.Field
	index int // textinput index for text entries, slot for images
}

// formView renders the request form and keeps the draft in sync with its inputs.
type formView struct {
	app      *App
	draft    request.Draft
	entries  []formEntry
	text     []textinput.Model
	comments textarea.Model
	images   [request.MaxImages]textinput.Model
	notices  map[request.Field]string
	focus    int
}

func newFormView(app *App) *formView {
	f := &formView{
		app:     app,
		draft:   request.NewDraft(),
		notices: map[request.Field]string{},
	}
	for i, field := range request.TextFields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = field.Label()
		// Unlimited: length rules belong to the validator, not the input.
		ti.CharLimit = 0
		f.text = append(f.text, ti)
		if field == request.FieldOfficerServiceNo {
			f.entries = append(f.entries,
				formEntry{kind: entryOption, field: request.FieldWearIndicator},
				formEntry{kind: entryOption, field: request.FieldWearPattern},
			)
		}
		f.entries = append(f.entries, formEntry{kind: entryText, field: field, index: i})
	}

	f.comments = textarea.New()
	f.comments.Placeholder = "Additional comments"
	f.comments.ShowLineNumbers = false
	f.comments.SetHeight(3)
	f.comments.CharLimit = 0
	f.entries = append(f.entries, formEntry{kind: entryComments, field: request.FieldComments})

	for i := range f.images {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = "path to image file"
		f.images[i] = ti
		f.entries = append(f.entries, formEntry{kind: entryImage, field: request.ImageField(i), index: i})
	}
	f.setFocus(0)
	return f
}

// load replaces the draft and every input value.
func (f *formView) load(d request.Draft) {
	f.draft = d.Clone()
	for i, field := range request.TextFields {
		f.text[i].SetValue(f.draft.Get(field))
	}
	f.comments.SetValue(f.draft.Comments)
	for i := range f.images {
		if att := f.draft.Images[i]; att != nil {
			f.images[i].SetValue(att.Path)
		} else {
			f.images[i].SetValue("")
		}
	}
	f.notices = map[request.Field]string{}
}

func (f *formView) reset() {
	f.load(request.NewDraft())
	f.setFocus(0)
}

func (f *formView) current() formEntry {
	return f.entries[f.focus]
}

func (f *formView) setFocus(idx int) {
	if len(f.entries) == 0 {
		return
	}
	idx = (idx%len(f.entries) + len(f.entries)) % len(f.entries)
	for i := range f.text {
		f.text[i].Blur()
	}
	for i := range f.images {
		f.images[i].Blur()
	}
	f.comments.Blur()

	f.focus = idx
	entry := f.entries[idx]
	switch entry.kind {
	case entryText:
		f.text[entry.index].Focus()
	case entryComments:
		f.comments.Focus()
	case entryImage:
		f.images[entry.index].Focus()
	}
}

// moveFocus leaves the current control, attaching its image if it is an image slot.
func (f *formView) moveFocus(delta int) {
	if entry := f.current(); entry.kind == entryImage {
		f.attachImage(entry.index)
	}
	f.setFocus(f.focus + delta)
}

func (f *formView) focusFirstError(errs request.ValidationErrors) {
	fields := errs.Fields()
	if len(fields) == 0 {
		return
	}
	for i, entry := range f.entries {
		if entry.field == fields[0] {
			f.setFocus(i)
			return
		}
	}
}

// attachImage loads the file named in the image slot. An empty path clears it.
func (f *formView) attachImage(slot int) {
	field := request.ImageField(slot)
	delete(f.notices, field)
	path := strings.TrimSpace(f.images[slot].Value())
	if path == "" {
		_ = f.draft.SetImage(slot, nil)
		return
	}
	if att := f.draft.Images[slot]; att != nil && att.Path == path {
		return
	}
	att, err := request.LoadAttachment(path)
	if err != nil {
		_ = f.draft.SetImage(slot, nil)
		f.notices[field] = err.Error()
		f.app.logger.Warn("attach image failed", "slot", slot, "err", err)
		return
	}
	_ = f.draft.SetImage(slot, att)
}

func (f *formView) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	keys := f.app.keys
	switch {
	case key.Matches(keyMsg, keys.Submit):
		if entry := f.current(); entry.kind == entryImage {
			f.attachImage(entry.index)
		}
		return f.app.submit()
	case key.Matches(keyMsg, keys.Review):
		f.app.showReview()
		return nil
	case key.Matches(keyMsg, keys.Next):
		f.moveFocus(1)
		return nil
	case key.Matches(keyMsg, keys.Prev):
		f.moveFocus(-1)
		return nil
	}

	entry := f.current()
	switch entry.kind {
	case entryOption:
		if key.Matches(keyMsg, keys.Toggle) {
			f.cycleOption(entry.field, keyMsg.String() == "left")
		}
	case entryText:
		// Cursor blink commands are dropped; inputs render a static cursor.
		f.text[entry.index], _ = f.text[entry.index].Update(keyMsg)
		_ = f.draft.Set(entry.field, f.text[entry.index].Value())
	case entryComments:
		f.comments, _ = f.comments.Update(keyMsg)
		f.draft.Comments = f.comments.Value()
	case entryImage:
		if keyMsg.String() == "enter" {
			f.attachImage(entry.index)
			return nil
		}
		f.images[entry.index], _ = f.images[entry.index].Update(keyMsg)
	}
	return nil
}

func (f *formView) cycleOption(field request.Field, backwards bool) {
	step := 1
	if backwards {
		step = -1
	}
	switch field {
	case request.FieldWearIndicator:
		f.draft.WearIndicator = request.WearIndicators[cycleIndex(indexOfIndicator(f.draft.WearIndicator), step, len(request.WearIndicators))]
	case request.FieldWearPattern:
		f.draft.WearPattern = request.WearPatterns[cycleIndex(indexOfPattern(f.draft.WearPattern), step, len(request.WearPatterns))]
	}
}

func cycleIndex(current, step, n int) int {
	return ((current+step)%n + n) % n
}

func indexOfIndicator(v request.WearIndicator) int {
	for i, candidate := range request.WearIndicators {
		if candidate == v {
			return i
		}
	}
	return 0
}

func indexOfPattern(v request.WearPattern) int {
	for i, candidate := range request.WearPatterns {
		if candidate == v {
			return i
		}
	}
	return 0
}

func (f *formView) bindings() bindingSet {
	k := f.app.keys
	return bindingSet{k.Next, k.Prev, k.Toggle, k.Submit, k.Review, k.Quit}
}

func (f *formView) View() string {
	errs := f.app.store.FieldErrors()
	var b strings.Builder

	if err := f.app.store.SubmitError(); err != nil {
		b.WriteString(bannerStyle.Render(err.Error()))
		b.WriteString("\n\n")
	}

	for i, entry := range f.entries {
		focused := i == f.focus
		label := entry.field.Label()
		if entry.kind == entryImage {
			label = fmt.Sprintf("Image %d", entry.index+1)
		}
		style := labelStyle
		marker := "  "
		if focused {
			style = focusStyle
			marker = "› "
		}

		var value string
		switch entry.kind {
		case entryText:
			value = f.text[entry.index].View()
		case entryOption:
			value = f.optionView(entry.field, focused)
		case entryComments:
			value = "\n" + f.comments.View()
		case entryImage:
			value = f.images[entry.index].View()
			if att := f.draft.Images[entry.index]; att != nil {
				value += mutedStyle.Render(fmt.Sprintf("  [%s, %d bytes]", att.ContentType, att.Size))
			}
		}
		fmt.Fprintf(&b, "%s%s %s\n", marker, style.Render(fmt.Sprintf("%-24s", label+":")), value)

		if msg, ok := errs[entry.field]; ok {
			fmt.Fprintf(&b, "    %s\n", errorStyle.Render(msg))
		} else if notice, ok := f.notices[entry.field]; ok {
			fmt.Fprintf(&b, "    %s\n", errorStyle.Render(notice))
		}
	}

	b.WriteString("\n")
	if f.app.store.Submitting() {
		b.WriteString(busyStyle.Render(f.app.spinner.View() + " Sending…"))
	} else {
		b.WriteString(okStyle.Render("[ Submit Request ]"))
	}
	return b.String()
}

func (f *formView) optionView(field request.Field, focused bool) string {
	var options, current []string
	switch field {
	case request.FieldWearIndicator:
		for _, v := range request.WearIndicators {
			options = append(options, string(v))
		}
		current = []string{string(f.draft.WearIndicator)}
	case request.FieldWearPattern:
		for _, v := range request.WearPatterns {
			options = append(options, string(v))
		}
		current = []string{string(f.draft.WearPattern)}
	}
	parts := make([]string, len(options))
	for i, opt := range options {
		if opt == current[0] {
			if focused {
				parts[i] = selectedStyle.Render("(•) " + opt)
			} else {
				parts[i] = "(•) " + opt
			}
		} else {
			parts[i] = mutedStyle.Render("( ) " + opt)
		}
	}
	return strings.Join(parts, "  ")
}
