package commands

import (
	"fmt"
	"strconv"
	"strings"
)

type Type string

const (
	TypeToggle  Type = "toggle"
	TypeCadence Type = "cadence"
	TypeShow    Type = "show"
	TypeReload  Type = "reload"
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

type ToggleArgs struct {
	Section string
	Item    string
}

type CadenceArgs struct {
	Section string
	Item    string
	Cadence string
	Count   int
}

type ShowArgs struct {
	Subject string
}

type Command struct {
	Type    Type
	Raw     string
	Toggle  *ToggleArgs
	Cadence *CadenceArgs
	Show    *ShowArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeToggle:
		return parseToggle(input, args)
	case TypeCadence:
		return parseCadence(input, args)
	case TypeShow:
		return parseShow(input, args)
	case TypeReload:
		if len(args) > 0 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "reload takes no arguments"}
		}
		return Command{Type: TypeReload, Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseToggle(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "toggle requires section and item"}
	}
	return Command{Type: TypeToggle, Raw: raw, Toggle: &ToggleArgs{
		Section: strings.ToLower(args[0]),
		Item:    strings.ToLower(args[1]),
	}}, nil
}

func parseCadence(raw string, args []string) (Command, error) {
	if len(args) < 3 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "cadence requires section, item and cadence type"}
	}
	out := CadenceArgs{
		Section: strings.ToLower(args[0]),
		Item:    strings.ToLower(args[1]),
		Cadence: strings.ToLower(args[2]),
	}
	switch out.Cadence {
	case "daily", "weekly", "monthly", "custom":
	default:
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown cadence: %s", out.Cadence)}
	}
	if len(args) > 3 {
		count, err := strconv.Atoi(args[3])
		if err != nil || count < 1 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid count: %s", args[3])}
		}
		out.Count = count
	}
	return Command{Type: TypeCadence, Raw: raw, Cadence: &out}, nil
}

func parseShow(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "show requires a subject"}
	}
	subject := strings.ToLower(args[0])
	switch subject {
	case "all", "due", "done", "stats":
	default:
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown subject: %s", subject)}
	}
	return Command{Type: TypeShow, Raw: raw, Show: &ShowArgs{Subject: subject}}, nil
}
