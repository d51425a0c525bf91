// Package tui is the interactive terminal front end: an assistant chat with
// slash commands and a today dashboard.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"momentum/internal/model"
	"momentum/internal/service"
	"momentum/internal/storage"
)

type View string

const (
	ViewChat  View = "Chat"
	ViewToday View = "Today"
)

type StatusBar struct {
	Text    string
	IsError bool
}

// Deps are the services the TUI drives.
type Deps struct {
	Lists  *service.Lists
	Tasks  *service.Tasks
	Notes  *service.Notes
	Habits *service.Habits
	Stats  *service.Stats
	Chat   *service.Chat
}

type TodayState struct {
	Overdue  []model.Task
	DueToday []model.Task
	Habits   []habitRow
	Stats    model.UserStats
}

type habitRow struct {
	Habit  model.Habit
	Logged bool
}

type Model struct {
	deps Deps
	view View

	input   textinput.Model
	spin    spinner.Model
	waiting bool

	sessionID  string
	transcript []model.ChatMessage

	today  TodayState
	status StatusBar

	width    int
	quitting bool
}

func NewModel(deps Deps) Model {
	input := textinput.New()
	input.Placeholder = "Message the assistant, or /help for commands"
	input.Focus()
	input.CharLimit = 500

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return Model{
		deps:  deps,
		view:  ViewChat,
		input: input,
		spin:  spin,
	}
}

type sessionReadyMsg struct {
	session model.ChatSession
	err     error
}

type chatReplyMsg struct {
	session model.ChatSession
	err     error
}

type todayLoadedMsg struct {
	state TodayState
	err   error
}

type commandResultMsg struct {
	message string
	err     error
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.openSessionCmd(), m.loadTodayCmd(), m.spin.Tick)
}

func (m Model) openSessionCmd() tea.Cmd {
	return func() tea.Msg {
		session, err := m.deps.Chat.NewSession(context.Background(), "")
		return sessionReadyMsg{session: session, err: err}
	}
}

func (m Model) loadTodayCmd() tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		ctx := context.Background()
		now := time.Now()
		var state TodayState

		tasks, err := deps.Tasks.List(ctx, storage.TaskFilter{})
		if err != nil {
			return todayLoadedMsg{err: err}
		}
		for _, t := range tasks {
			switch {
			case t.Overdue(now):
				state.Overdue = append(state.Overdue, t)
			case !t.IsDone() && t.DueToday(now):
				state.DueToday = append(state.DueToday, t)
			}
		}

		habits, err := deps.Habits.List(ctx, false)
		if err != nil {
			return todayLoadedMsg{err: err}
		}
		today := now.Format(model.DateLayout)
		for _, h := range habits {
			logs, err := deps.Habits.History(ctx, h.ID)
			if err != nil {
				return todayLoadedMsg{err: err}
			}
			logged := false
			for _, l := range logs {
				if l.Date == today {
					logged = true
					break
				}
			}
			state.Habits = append(state.Habits, habitRow{Habit: h, Logged: logged})
		}

		stats, err := deps.Stats.Get(ctx)
		if err != nil {
			return todayLoadedMsg{err: err}
		}
		state.Stats = stats
		return todayLoadedMsg{state: state}
	}
}

func (m Model) sendCmd(text string) tea.Cmd {
	deps, sessionID := m.deps, m.sessionID
	return func() tea.Msg {
		session, err := deps.Chat.Send(context.Background(), sessionID, text)
		return chatReplyMsg{session: session, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		return m, nil

	case sessionReadyMsg:
		if typed.err != nil {
			m.status = StatusBar{Text: "error: " + typed.err.Error(), IsError: true}
			return m, nil
		}
		m.sessionID = typed.session.ID
		return m, nil

	case chatReplyMsg:
		m.waiting = false
		if typed.err != nil {
			m.status = StatusBar{Text: "error: " + typed.err.Error(), IsError: true}
			return m, nil
		}
		m.transcript = typed.session.Messages
		m.status = StatusBar{}
		return m, m.loadTodayCmd()

	case todayLoadedMsg:
		if typed.err != nil {
			m.status = StatusBar{Text: "error: " + typed.err.Error(), IsError: true}
			return m, nil
		}
		m.today = typed.state
		return m, nil

	case commandResultMsg:
		if typed.err != nil {
			m.status = StatusBar{Text: "error: " + typed.err.Error(), IsError: true}
			return m, nil
		}
		m.status = StatusBar{Text: typed.message}
		return m, m.loadTodayCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(typed)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "tab":
		if m.view == ViewChat {
			m.view = ViewToday
			return m, m.loadTodayCmd()
		}
		m.view = ViewChat
		return m, nil
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" || m.waiting {
			return m, nil
		}
		m.input.SetValue("")
		if IsCommand(text) {
			return m.runCommand(text)
		}
		if m.sessionID == "" {
			m.status = StatusBar{Text: "error: chat session not ready", IsError: true}
			return m, nil
		}
		m.waiting = true
		m.transcript = append(m.transcript, model.ChatMessage{Role: model.RoleUser, Text: text})
		m.status = StatusBar{Text: "thinking…"}
		return m, tea.Batch(m.sendCmd(text), m.spin.Tick)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	return m, cmd
}

func (m Model) runCommand(text string) (tea.Model, tea.Cmd) {
	cmd, err := Parse(text)
	if err != nil {
		m.status = StatusBar{Text: "error: " + err.Error(), IsError: true}
		return m, nil
	}

	switch cmd.Type {
	case CommandToday:
		m.view = ViewToday
		return m, m.loadTodayCmd()
	case CommandChat:
		m.view = ViewChat
		return m, nil
	case CommandHelp:
		m.status = StatusBar{Text: "/task <title>  /note <title>  /done <title>  /habit <name>  /today  /chat  /stats"}
		return m, nil
	case CommandStatus:
		m.view = ViewToday
		return m, m.loadTodayCmd()
	}

	deps := m.deps
	run := func() tea.Msg {
		res, err := Execute(cmd, Handlers{
			Task:  func(args TaskArgs) (Result, error) { return createTaskHandler(deps, args) },
			Note:  func(args NoteArgs) (Result, error) { return createNoteHandler(deps, args) },
			Done:  func(args DoneArgs) (Result, error) { return completeTaskHandler(deps, args) },
			Habit: func(args HabitArgs) (Result, error) { return logHabitHandler(deps, args) },
		})
		return commandResultMsg{message: res.Message, err: err}
	}
	return m, run
}

func createTaskHandler(deps Deps, args TaskArgs) (Result, error) {
	ctx := context.Background()
	listID, err := firstListID(ctx, deps, model.ListTypeTask)
	if err != nil {
		return Result{}, err
	}
	task, err := deps.Tasks.Create(ctx, service.TaskInput{ListID: listID, Title: args.Title})
	if err != nil {
		return Result{}, err
	}
	return Result{Message: fmt.Sprintf("task added: %s", task.Title)}, nil
}

func createNoteHandler(deps Deps, args NoteArgs) (Result, error) {
	note, err := deps.Notes.Create(context.Background(), service.NoteInput{Title: args.Title})
	if err != nil {
		return Result{}, err
	}
	return Result{Message: fmt.Sprintf("note added: %s", note.Title)}, nil
}

// completeTaskHandler completes the first open task whose title starts with
// the query, case-insensitive.
func completeTaskHandler(deps Deps, args DoneArgs) (Result, error) {
	ctx := context.Background()
	tasks, err := deps.Tasks.List(ctx, storage.TaskFilter{})
	if err != nil {
		return Result{}, err
	}
	query := strings.ToLower(args.Query)
	for _, t := range tasks {
		if t.IsDone() {
			continue
		}
		if strings.HasPrefix(strings.ToLower(t.Title), query) {
			if _, err := deps.Tasks.Complete(ctx, t.ID); err != nil {
				return Result{}, err
			}
			return Result{Message: fmt.Sprintf("completed: %s", t.Title)}, nil
		}
	}
	return Result{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("no open task matching %q", args.Query)}
}

// logHabitHandler logs today's completion for the named habit, creating the
// habit when it does not exist yet.
func logHabitHandler(deps Deps, args HabitArgs) (Result, error) {
	ctx := context.Background()
	habits, err := deps.Habits.List(ctx, false)
	if err != nil {
		return Result{}, err
	}
	name := strings.ToLower(args.Name)
	for _, h := range habits {
		if strings.ToLower(h.Name) == name {
			if _, err := deps.Habits.Log(ctx, h.ID, "", 1); err != nil {
				return Result{}, err
			}
			return Result{Message: fmt.Sprintf("habit logged: %s", h.Name)}, nil
		}
	}
	habit, err := deps.Habits.Create(ctx, service.HabitInput{Name: args.Name})
	if err != nil {
		return Result{}, err
	}
	if _, err := deps.Habits.Log(ctx, habit.ID, "", 1); err != nil {
		return Result{}, err
	}
	return Result{Message: fmt.Sprintf("habit created and logged: %s", habit.Name)}, nil
}

func firstListID(ctx context.Context, deps Deps, typ model.ListType) (string, error) {
	lists, err := deps.Lists.List(ctx)
	if err != nil {
		return "", err
	}
	for _, l := range lists {
		if l.Type == typ {
			return l.ID, nil
		}
	}
	list, err := deps.Lists.Create(ctx, service.ListInput{Name: "Inbox", Type: typ})
	if err != nil {
		return "", err
	}
	return list.ID, nil
}

// Run starts the program.
func Run(deps Deps) error {
	_, err := tea.NewProgram(NewModel(deps), tea.WithAltScreen()).Run()
	return err
}
