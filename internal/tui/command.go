package tui

import (
	"fmt"
	"strings"
)

// Slash commands understood by the chat input. Anything not starting with
// "/" goes to the assistant as a plain message.

type CommandType string

const (
	CommandTask   CommandType = "task"
	CommandNote   CommandType = "note"
	CommandDone   CommandType = "done"
	CommandHabit  CommandType = "habit"
	CommandToday  CommandType = "today"
	CommandChat   CommandType = "chat"
	CommandHelp   CommandType = "help"
	CommandStatus CommandType = "stats"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type TaskArgs struct {
	Title string
}

type NoteArgs struct {
	Title string
}

type DoneArgs struct {
	// Query matches a task by title prefix, case-insensitive.
	Query string
}

type HabitArgs struct {
	Name string
}

type Command struct {
	Type  CommandType
	Raw   string
	Task  *TaskArgs
	Note  *NoteArgs
	Done  *DoneArgs
	Habit *HabitArgs
}

// IsCommand reports whether the input should be parsed instead of chatted.
func IsCommand(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), "/")
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	head, rest, _ := strings.Cut(raw, " ")
	rest = strings.TrimSpace(rest)

	switch CommandType(strings.ToLower(head)) {
	case CommandTask:
		if rest == "" {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "usage: /task <title>"}
		}
		return Command{Type: CommandTask, Raw: raw, Task: &TaskArgs{Title: rest}}, nil
	case CommandNote:
		if rest == "" {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "usage: /note <title>"}
		}
		return Command{Type: CommandNote, Raw: raw, Note: &NoteArgs{Title: rest}}, nil
	case CommandDone:
		if rest == "" {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "usage: /done <task title>"}
		}
		return Command{Type: CommandDone, Raw: raw, Done: &DoneArgs{Query: rest}}, nil
	case CommandHabit:
		if rest == "" {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "usage: /habit <name>"}
		}
		return Command{Type: CommandHabit, Raw: raw, Habit: &HabitArgs{Name: rest}}, nil
	case CommandToday:
		return Command{Type: CommandToday, Raw: raw}, nil
	case CommandChat:
		return Command{Type: CommandChat, Raw: raw}, nil
	case CommandStatus:
		return Command{Type: CommandStatus, Raw: raw}, nil
	case CommandHelp:
		return Command{Type: CommandHelp, Raw: raw}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command: %s", head)}
	}
}

type Result struct {
	Message string
}

type Handlers struct {
	Task  func(TaskArgs) (Result, error)
	Note  func(NoteArgs) (Result, error)
	Done  func(DoneArgs) (Result, error)
	Habit func(HabitArgs) (Result, error)
}

// Execute dispatches a parsed data command. View-switching commands (today,
// chat, help, stats) are handled by the model, not here.
func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case CommandTask:
		if handlers.Task == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "task handler not configured"}
		}
		return handlers.Task(*cmd.Task)
	case CommandNote:
		if handlers.Note == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "note handler not configured"}
		}
		return handlers.Note(*cmd.Note)
	case CommandDone:
		if handlers.Done == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "done handler not configured"}
		}
		return handlers.Done(*cmd.Done)
	case CommandHabit:
		if handlers.Habit == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "habit handler not configured"}
		}
		return handlers.Habit(*cmd.Habit)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
