package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/catalogctl/internal/formatter"
	"github.com/desertthunder/catalogctl/internal/models"
	"github.com/desertthunder/catalogctl/internal/services"
	"github.com/desertthunder/catalogctl/internal/session"
	"github.com/desertthunder/catalogctl/internal/store"
	"github.com/desertthunder/catalogctl/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	TypeListView ViewState = iota
	EntityListView
	ConfirmView
	SubmittingView
	ResultView
)

// promptConfirmer answers the coordinator's delete confirmation from the confirm view.
type promptConfirmer struct {
	answers chan bool
}

func (p *promptConfirmer) Confirm(ctx context.Context, m tasks.Mutation) (bool, error) {
	select {
	case ok := <-p.answers:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (p *promptConfirmer) answer(ok bool) {
	select {
	case p.answers <- ok:
	default:
	}
}

// Options configures a [Model].
type Options struct {
	TagLimit int
	Logger   *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx         context.Context
	view        ViewState
	store       *store.Store
	coordinator *tasks.Coordinator
	confirm     *promptConfirmer
	logger      *log.Logger
	tagLimit    int
	width       int
	height      int
	typeList    list.Model
	entityList  list.Model
	selected    models.EntityType
	pending     *tasks.Mutation
	progressCh  chan tasks.ProgressUpdate
	doneCh      chan tasks.Outcome
	progress    tasks.ProgressUpdate
	outcome     *tasks.Outcome
	status      string
	statusLevel tasks.Level
	help        help.Model
	keys        keyMap
}

// NewModel creates a new TUI model. Deletes go through a coordinator whose confirmation is the confirm view.
func NewModel(ctx context.Context, client services.Catalog, st *store.Store, sess *session.Context, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.TagLimit <= 0 {
		opts.TagLimit = formatter.DefaultTagLimit
	}

	m := &Model{
		ctx:      ctx,
		view:     TypeListView,
		store:    st,
		confirm:  &promptConfirmer{answers: make(chan bool, 1)},
		logger:   opts.Logger,
		tagLimit: opts.TagLimit,
		help:     help.New(),
		keys:     newKeyMap(),
	}
	m.coordinator = tasks.NewCoordinator(client, st, sess,
		tasks.WithConfirmer(m.confirm),
		tasks.WithLogger(opts.Logger),
		tasks.WithNotifier(tasks.NotifyFunc(func(level tasks.Level, msg string) {
			opts.Logger.Info("notification", "level", level, "message", msg)
		})),
	)

	m.typeList = list.New(m.typeItems(), list.NewDefaultDelegate(), 0, 0)
	m.typeList.Title = "Catalog"
	m.entityList = list.New(nil, list.NewDefaultDelegate(), 0, 0)
	return m
}

// Init loads every collection so the type list can show counts.
func (m *Model) Init() tea.Cmd {
	return m.loadAll()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.typeList.SetSize(msg.Width-4, msg.Height-6)
		m.entityList.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case TypeListView:
			return m.handleTypeListKeys(msg)
		case EntityListView:
			return m.handleEntityListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		case SubmittingView:
			if key.Matches(msg, m.keys.quit) && msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgCatalogLoaded:
		if err, _ := msg.data.(error); err != nil {
			m.setStatus(tasks.LevelError, services.Describe(err, "Failed to load catalog"))
		}
		return m, m.typeList.SetItems(m.typeItems())

	case MsgEntitiesLoaded:
		data := msg.data.(entitiesLoaded)
		if data.err != nil {
			m.setStatus(tasks.LevelError, fmt.Sprintf("Failed to load %s", data.entityType))
		}
		cmds := []tea.Cmd{m.typeList.SetItems(m.typeItems())}
		if data.entityType == m.selected {
			cmds = append(cmds, m.entityList.SetItems(entityItems(m.store.Entities(data.entityType), m.tagLimit)))
		}
		return m, tea.Batch(cmds...)

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, waitForProgress(m.progressCh, m.doneCh)

	case MsgMutationComplete:
		o := msg.data.(tasks.Outcome)
		m.progressCh, m.doneCh = nil, nil
		m.pending = nil

		cmds := []tea.Cmd{
			m.typeList.SetItems(m.typeItems()),
			m.entityList.SetItems(entityItems(m.store.Entities(m.selected), m.tagLimit)),
		}
		if o.State == tasks.Idle {
			m.outcome = nil
			m.view = EntityListView
			if o.Message != "" {
				m.setStatus(tasks.LevelInfo, o.Message)
			}
			return m, tea.Batch(cmds...)
		}

		m.outcome = &o
		m.view = ResultView
		return m, tea.Batch(cmds...)
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case TypeListView:
		return m.renderList(m.typeList, m.keys.enter, m.keys.refresh, m.keys.quit)
	case EntityListView:
		return m.renderList(m.entityList, m.keys.del, m.keys.refresh, m.keys.back, m.keys.quit)
	case ConfirmView:
		return m.renderConfirm()
	case SubmittingView:
		return m.renderSubmitting()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleTypeListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.typeList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.refresh):
		return m, m.loadAll()
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.typeList.SelectedItem().(typeItem); ok {
			return m, m.openType(item.entityType)
		}
		return m, nil
	}
	return m.updateLists(msg)
}

func (m *Model) handleEntityListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.entityList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		if m.entityList.FilterState() == list.FilterApplied {
			return m.updateLists(msg)
		}
		m.view = TypeListView
		m.status = ""
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		m.store.Invalidate(m.selected)
		return m, m.loadEntities(m.selected)
	case key.Matches(msg, m.keys.del):
		item, ok := m.entityList.SelectedItem().(entityItem)
		if !ok {
			return m, nil
		}
		return m, m.startDelete(tasks.Mutation{
			Type:  m.selected,
			Kind:  tasks.Delete,
			ID:    item.entity.EntityID(),
			Label: item.entity.DisplayName(),
		})
	}
	return m.updateLists(msg)
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.confirm.answer(true)
		m.view = SubmittingView
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.quit):
		m.confirm.answer(false)
		m.view = EntityListView
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter), key.Matches(msg, m.keys.back):
		m.view = EntityListView
		m.outcome = nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case TypeListView:
		m.typeList, cmd = m.typeList.Update(msg)
	case EntityListView:
		m.entityList, cmd = m.entityList.Update(msg)
	}
	return m, cmd
}

func (m *Model) setStatus(level tasks.Level, msg string) {
	m.status = msg
	m.statusLevel = level
}

func (m *Model) typeItems() []list.Item {
	items := make([]list.Item, len(models.AllEntityTypes))
	for i, t := range models.AllEntityTypes {
		items[i] = typeItem{entityType: t, count: len(m.store.Entities(t)), loaded: m.store.Loaded(t)}
	}
	return items
}

func (m *Model) openType(t models.EntityType) tea.Cmd {
	m.selected = t
	m.view = EntityListView
	m.status = ""
	m.entityList.Title = t.Title() + "s"
	m.entityList.ResetFilter()
	setItems := m.entityList.SetItems(entityItems(m.store.Entities(t), m.tagLimit))
	return tea.Batch(setItems, m.loadEntities(t))
}

func (m *Model) loadAll() tea.Cmd {
	return func() tea.Msg {
		return catalogLoadedMsg(m.store.LoadAll(m.ctx, models.AllEntityTypes...))
	}
}

func (m *Model) loadEntities(t models.EntityType) tea.Cmd {
	return func() tea.Msg {
		items, err := m.store.Load(m.ctx, t)
		return entitiesLoadedMsg(t, items, err)
	}
}

func (m *Model) startDelete(mut tasks.Mutation) tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan tasks.Outcome, 1)
	m.pending = &mut
	m.progressCh, m.doneCh = progress, done
	m.view = ConfirmView

	go func() {
		o := m.coordinator.Delete(m.ctx, mut, progress)
		done <- o
		close(progress)
	}()

	return waitForProgress(progress, done)
}

func waitForProgress(progress <-chan tasks.ProgressUpdate, done <-chan tasks.Outcome) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-progress
		if !ok {
			return mutationCompleteMsg(<-done)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderList(l list.Model, bindings ...key.Binding) string {
	var b strings.Builder
	b.WriteString(l.View())
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(styles.Notice(m.statusLevel, m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.ShortHelpView(bindings))
	return b.String()
}

func (m *Model) renderConfirm() string {
	if m.pending == nil {
		return ""
	}
	title := styles.title.Render(fmt.Sprintf("Delete %s '%s'?", m.pending.Type.Singular(), m.pending.Label))

	info := fmt.Sprintf("ID: %d", m.pending.ID)
	if e, ok := m.store.Find(m.pending.Type, m.pending.ID); ok {
		if s := formatter.Summary(e, m.tagLimit); s != "" {
			info += "\n" + s
		}
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n%s\n\n%s", title, styles.box.Render(info), helpView)
}

func (m *Model) renderSubmitting() string {
	title := styles.title.Render("Working")

	var phase string
	switch m.progress.Phase {
	case tasks.Submit:
		phase = "Submitting..."
	case tasks.Reload:
		phase = fmt.Sprintf("Reloading %s...", m.selected)
	default:
		phase = "Processing..."
	}
	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, styles.help.Render(m.progress.Message))
}

func (m *Model) renderResult() string {
	if m.outcome == nil {
		return styles.err.Render("No result available\n\nPress esc to go back, q to quit")
	}

	level := tasks.LevelSuccess
	if m.outcome.State == tasks.Failed {
		level = tasks.LevelError
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", styles.Notice(level, m.outcome.Message), helpView)
}
