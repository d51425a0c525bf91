package tui

import (
	"errors"
	"testing"
)

func TestParseCommands(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    CommandType
		wantErr ErrorCode
	}{
		{name: "task", input: "/task Buy milk", want: CommandTask},
		{name: "note", input: "/note Meeting minutes", want: CommandNote},
		{name: "done", input: "/done buy", want: CommandDone},
		{name: "habit", input: "/habit Meditate", want: CommandHabit},
		{name: "today view", input: "/today", want: CommandToday},
		{name: "stats view", input: "/stats", want: CommandStatus},
		{name: "case insensitive", input: "/TASK shout", want: CommandTask},
		{name: "empty", input: "   ", wantErr: ErrCodeEmptyInput},
		{name: "bare slash", input: "/", wantErr: ErrCodeEmptyInput},
		{name: "unknown", input: "/frobnicate", wantErr: ErrCodeUnknownCommand},
		{name: "task without title", input: "/task", wantErr: ErrCodeInvalidArgument},
		{name: "done without query", input: "/done   ", wantErr: ErrCodeInvalidArgument},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd, err := Parse(tc.input)
			if tc.wantErr != "" {
				var cmdErr *CommandError
				if !errors.As(err, &cmdErr) {
					t.Fatalf("expected CommandError, got %v", err)
				}
				if cmdErr.Code != tc.wantErr {
					t.Fatalf("expected code %s, got %s", tc.wantErr, cmdErr.Code)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cmd.Type != tc.want {
				t.Fatalf("expected type %s, got %s", tc.want, cmd.Type)
			}
		})
	}
}

func TestParseTaskArguments(t *testing.T) {
	cmd, err := Parse("/task Write the quarterly report")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Task == nil || cmd.Task.Title != "Write the quarterly report" {
		t.Fatalf("unexpected args: %+v", cmd.Task)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	cmd, err := Parse("/task x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = Execute(cmd, Handlers{})
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) || cmdErr.Code != ErrCodeHandlerMissing {
		t.Fatalf("expected handler_missing, got %v", err)
	}
}

func TestExecuteDispatches(t *testing.T) {
	cmd, err := Parse("/done report")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res, err := Execute(cmd, Handlers{
		Done: func(args DoneArgs) (Result, error) {
			if args.Query != "report" {
				t.Fatalf("unexpected query %q", args.Query)
			}
			return Result{Message: "completed"}, nil
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Message != "completed" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestIsCommand(t *testing.T) {
	if !IsCommand("  /task x") {
		t.Fatal("leading whitespace should not hide a command")
	}
	if IsCommand("add milk to the list") {
		t.Fatal("plain text is not a command")
	}
}
