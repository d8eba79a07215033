package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Toggle  func(ToggleArgs) (Result, error)
	Cadence func(CadenceArgs) (Result, error)
	Show    func(ShowArgs) (Result, error)
	Reload  func() (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeToggle:
		if handlers.Toggle == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "toggle handler not configured"}
		}
		return handlers.Toggle(*cmd.Toggle)
	case TypeCadence:
		if handlers.Cadence == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "cadence handler not configured"}
		}
		return handlers.Cadence(*cmd.Cadence)
	case TypeShow:
		if handlers.Show == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "show handler not configured"}
		}
		return handlers.Show(*cmd.Show)
	case TypeReload:
		if handlers.Reload == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "reload handler not configured"}
		}
		return handlers.Reload()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
