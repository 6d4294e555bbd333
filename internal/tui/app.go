// internal/tui/app.go
//
// This is the main TUI (Terminal User Interface) for tirereq.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// Gateway calls run as tea.Cmds. Their outcomes come back as messages and are
// applied to the review store inside Update, so all state changes happen on the
// program goroutine.

package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/kingrea/tirereq/internal/approval"
	"github.com/kingrea/tirereq/internal/config"
	"github.com/kingrea/tirereq/internal/gateway"
	"github.com/kingrea/tirereq/internal/logbook"
	"github.com/kingrea/tirereq/internal/logging"
	"github.com/kingrea/tirereq/internal/request"
	"github.com/kingrea/tirereq/internal/review"
)

// appState represents which "screen" we're on
type appState int

const (
	stateForm      appState = iota // Request form (user role)
	stateReview                    // Submitted requests with edit/delete
	stateDashboard                 // Manager or TTO approval board
)

// Role selects which screens the program opens with.
type Role string

const (
	RoleUser    Role = "user"
	RoleManager Role = "manager"
	RoleTTO     Role = "tto"
)

// ParseRole validates a role name.
func ParseRole(value string) (Role, error) {
	switch role := Role(strings.ToLower(strings.TrimSpace(value))); role {
	case RoleUser, RoleManager, RoleTTO:
		return role, nil
	case "":
		return RoleUser, nil
	}
	return "", fmt.Errorf("tui: unknown role %q (want user, manager or tto)", value)
}

const logPanelLines = 6

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")).MarginBottom(1)
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	bannerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#B23A48")).Padding(0, 1)
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	busyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	focusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	logLineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
)

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithGateway replaces the simulated backend.
func WithGateway(gw gateway.Gateway) AppOption {
	return func(a *App) {
		if gw != nil {
			a.gateway = gw
		}
	}
}

// WithStore injects the review store.
func WithStore(store *review.Store) AppOption {
	return func(a *App) {
		if store != nil {
			a.store = store
		}
	}
}

// WithBoard injects the approval board.
func WithBoard(board *approval.Board) AppOption {
	return func(a *App) {
		if board != nil {
			a.board = board
		}
	}
}

// WithLogger attaches the structured logger.
func WithLogger(logger *log.Logger) AppOption {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithLogbook attaches the activity journal shown in the log panel.
func WithLogbook(lb *logbook.Logbook) AppOption {
	return func(a *App) {
		if lb != nil {
			a.logbook = lb
		}
	}
}

// WithRole selects the opening screen.
func WithRole(role Role) AppOption {
	return func(a *App) {
		if role != "" {
			a.role = role
		}
	}
}

// WithApprover sets the employee id recorded on approval decisions.
func WithApprover(id string) AppOption {
	return func(a *App) {
		a.approver = strings.TrimSpace(id)
	}
}

// WithDraft prefills the request form.
func WithDraft(d request.Draft) AppOption {
	return func(a *App) {
		draft := d.Clone()
		a.initialDraft = &draft
	}
}

// WithContext bounds gateway calls; cancel it on shutdown.
func WithContext(ctx context.Context) AppOption {
	return func(a *App) {
		if ctx != nil {
			a.ctx = ctx
		}
	}
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	state  appState
	role   Role
	ctx    context.Context
	config *config.Config

	gateway gateway.Gateway
	store   *review.Store
	board   *approval.Board
	logger  *log.Logger
	logbook *logbook.Logbook

	approver     string
	initialDraft *request.Draft

	form      *formView
	review    *reviewView
	dashboard *dashboardView

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	statusMsg string
	width     int
	height    int
}

// NewApp creates a new App instance. cfg may be nil, in which case defaults are
// used and no journal is written.
func NewApp(cfg *config.Config, opts ...AppOption) (*App, error) {
	app := &App{
		role:   RoleUser,
		ctx:    context.Background(),
		config: cfg,
		keys:   defaultKeyMap(),
		help:   help.New(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}

	if app.logger == nil {
		app.logger = logging.Discard().Logger
	}
	if app.gateway == nil {
		app.gateway = gateway.NewSimulated(gateway.SettingsFromConfig(cfg), gateway.WithLogger(app.logger))
	}
	if app.store == nil {
		app.store = review.NewStore(review.WithPolicy(policyFromConfig(cfg)), review.WithLogger(app.logger))
	}
	if app.board == nil {
		switch app.role {
		case RoleManager:
			app.board = approval.NewBoard(nil, approval.ManagerSeed()...)
		case RoleTTO:
			app.board = approval.NewBoard(nil, approval.TTOSeed()...)
		default:
			app.board = approval.NewBoard(nil)
		}
	}
	if app.logbook == nil && cfg != nil {
		lb, err := logbook.New(cfg.JournalPath())
		if err != nil {
			return nil, fmt.Errorf("tui: open journal: %w", err)
		}
		app.logbook = lb
	}
	if app.approver == "" {
		app.approver = defaultApprover(app.role)
	}

	app.spinner = spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(busyStyle))
	app.form = newFormView(app)
	if app.initialDraft != nil {
		app.form.load(*app.initialDraft)
	}
	app.review = newReviewView(app)

	switch app.role {
	case RoleManager:
		app.state = stateDashboard
		app.dashboard = newDashboardView(app, approval.StagePending)
	case RoleTTO:
		app.state = stateDashboard
		app.dashboard = newDashboardView(app, approval.StageManagerApproved)
	default:
		app.state = stateForm
	}
	app.logInfo("Session opened · role: %s", app.role)
	return app, nil
}

func policyFromConfig(cfg *config.Config) review.Policy {
	if cfg == nil {
		return review.Policy{}
	}
	return review.Policy{
		ClearOnSubmit:    cfg.Project.Form.ClearOnSubmit,
		RevalidateOnSave: cfg.Project.Form.RevalidateOnSave,
	}
}

func defaultApprover(role Role) string {
	switch role {
	case RoleManager:
		return "MGR-001"
	case RoleTTO:
		return "TTO-001"
	}
	return ""
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Warn(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Error(format, args...)
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return nil
}

// busy reports whether any gateway call is outstanding.
func (a *App) busy() bool {
	if a.store.Submitting() {
		return true
	}
	for _, item := range a.store.Items() {
		if _, ok := a.store.InFlight(item.ID); ok {
			return true
		}
	}
	return false
}

// startSpinner begins ticking unless a tick loop is already running.
func (a *App) startSpinner(wasBusy bool) tea.Cmd {
	if wasBusy {
		return nil
	}
	return a.spinner.Tick
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.review.resize(msg.Width, msg.Height)
		return a, nil

	case spinner.TickMsg:
		if !a.busy() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case submitDoneMsg:
		return a, a.handleSubmitDone(msg)

	case itemDoneMsg:
		return a, a.handleItemDone(msg)

	case ConfigReloadedMsg:
		a.applyConfig(msg)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
	}

	switch a.state {
	case stateForm:
		return a, a.form.Update(msg)
	case stateReview:
		return a, a.review.Update(msg)
	case stateDashboard:
		if a.dashboard != nil {
			return a, a.dashboard.Update(msg)
		}
	}
	return a, nil
}

// submit validates the form and dispatches it to the gateway.
func (a *App) submit() tea.Cmd {
	wasBusy := a.busy()
	op, err := a.store.Submit(a.form.draft.Clone())
	if err != nil {
		var verrs request.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			a.statusMsg = fmt.Sprintf("Please correct %d field(s) before submitting", len(verrs))
			a.form.focusFirstError(verrs)
		case errors.Is(err, review.ErrSubmitInProgress):
			a.statusMsg = "Sending…"
		default:
			a.statusMsg = err.Error()
		}
		return nil
	}
	a.statusMsg = "Sending…"
	a.logInfo("Submit · vehicle %s", op.Draft.VehicleNo)
	return tea.Batch(a.submitCmd(op), a.startSpinner(wasBusy))
}

func (a *App) handleSubmitDone(msg submitDoneMsg) tea.Cmd {
	entry, err := a.store.FinishSubmit(msg.op, msg.err)
	if err != nil {
		var subErr *review.SubmissionError
		if errors.As(err, &subErr) {
			a.statusMsg = subErr.Error()
			a.logWarn("Submit failed: %v", subErr.Cause)
		} else {
			a.logger.Debug("ignored submit completion", "op", msg.op.ID, "err", err)
		}
		return nil
	}

	a.statusMsg = fmt.Sprintf("Request #%d submitted", entry.ID)
	a.logInfo("Request #%d submitted (%s)", entry.ID, entry.ImageSummary())
	if a.role == RoleUser {
		if err := a.board.Add(approval.CardFromRequest(entry)); err != nil {
			a.logger.Warn("mirror to board failed", "id", entry.ID, "err", err)
		}
	}
	if a.store.Policy().ClearOnSubmit {
		a.form.reset()
	}
	a.review.refresh()
	return nil
}

func (a *App) handleItemDone(msg itemDoneMsg) tea.Cmd {
	var err error
	switch msg.op.Action {
	case review.ActionUpdate:
		err = a.store.FinishSave(msg.op, msg.err)
	case review.ActionDelete:
		err = a.store.FinishDelete(msg.op, msg.err)
	}

	var itemErr *review.ItemError
	switch {
	case errors.As(err, &itemErr):
		a.statusMsg = itemErr.Error()
		a.logWarn("%s", itemErr.Error())
	case err != nil:
		a.logger.Debug("ignored item completion", "op", msg.op.ID, "err", err)
	case msg.op.Action == review.ActionUpdate:
		a.statusMsg = fmt.Sprintf("Request #%d updated", msg.op.ItemID)
		a.logInfo("Request #%d updated", msg.op.ItemID)
		if updated, ok := a.store.Item(msg.op.ItemID); ok {
			if err := a.board.Refresh(updated); err != nil {
				a.logger.Debug("board refresh skipped", "id", msg.op.ItemID, "err", err)
			}
		}
		a.review.closeEditor()
	case msg.op.Action == review.ActionDelete:
		a.statusMsg = fmt.Sprintf("Request #%d deleted", msg.op.ItemID)
		a.logInfo("Request #%d deleted", msg.op.ItemID)
		if err := a.board.Withdraw(msg.op.ItemID); err != nil {
			a.logger.Debug("board withdraw skipped", "id", msg.op.ItemID, "err", err)
		}
		if _, editing := a.store.Editing(); !editing {
			a.review.closeEditor()
		}
	}
	a.review.refresh()
	return nil
}

func (a *App) applyConfig(msg ConfigReloadedMsg) {
	if msg.Err != nil {
		a.statusMsg = fmt.Sprintf("Config reload failed: %v", msg.Err)
		a.logError("Config reload failed: %v", msg.Err)
		return
	}
	a.store.SetPolicy(review.Policy{
		ClearOnSubmit:    msg.Project.Form.ClearOnSubmit,
		RevalidateOnSave: msg.Project.Form.RevalidateOnSave,
	})
	if tunable, ok := a.gateway.(interface{ Configure(gateway.Settings) }); ok {
		tunable.Configure(gateway.SettingsFromProject(msg.Project))
	}
	a.logger.SetLevel(logging.ParseLevel(logging.LevelFromEnv(msg.Project.Logging.Level)))
	if a.config != nil {
		a.config.Project = msg.Project
	}
	a.statusMsg = "Config reloaded"
	a.logInfo("Config reloaded")
}

// showHome returns to the role's opening screen.
func (a *App) showHome() {
	a.state = stateForm
	if a.dashboard != nil {
		a.state = stateDashboard
	}
	a.statusMsg = ""
}

func (a *App) showReview() {
	a.state = stateReview
	a.review.refresh()
	a.statusMsg = ""
}

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}

	var title, content string
	var bindings bindingSet
	switch a.state {
	case stateForm:
		title = "TIRE REQUEST FORM"
		content = a.form.View()
		bindings = a.form.bindings()
	case stateReview:
		title = "SUBMITTED REQUESTS"
		content = a.review.View()
		bindings = a.review.bindings()
	case stateDashboard:
		if a.dashboard != nil {
			title = a.dashboard.title()
			content = a.dashboard.View()
			bindings = a.dashboard.bindings()
		}
	}

	header := headerStyle.Render(fmt.Sprintf("⬡ TIREREQ · %s", title))
	body := panelStyle.Width(max(20, width-4)).Render(content)
	sections := []string{header, body}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	sections = append(sections, a.help.View(bindings))
	if a.statusMsg != "" {
		sections = append(sections, mutedStyle.Render(a.statusMsg))
	}
	return strings.Join(sections, "\n")
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	entries, total := a.logbook.Tail(logPanelLines)
	if len(entries) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s (%d entries)", fileName, total))
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		switch entry.Level {
		case logbook.LevelError:
			lines = append(lines, errorStyle.Render(entry.String()))
		case logbook.LevelWarn:
			lines = append(lines, focusStyle.Render(entry.String()))
		default:
			lines = append(lines, logLineStyle.Render(entry.String()))
		}
	}
	return panelStyle.Render(fmt.Sprintf("%s\n%s", head, strings.Join(lines, "\n")))
}
