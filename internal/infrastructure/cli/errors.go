package cli

import (
	"errors"
	"fmt"

	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/internal/infrastructure/config"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/application"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/session"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/domain/workflow"
	"github.com/buildingsystemsai-drafty/AssemblyDrawingTool/pkg/parse"
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	var transErr *workflow.TransitionError
	if errors.As(err, &transErr) {
		hint := fmt.Sprintf("Sheet is '%s'; sheets move one step at a time, see 'drafty status %s'", transErr.From, transErr.SheetID)
		if transErr.From.IsFinal() {
			hint = "Approved sheets cannot move further"
		}
		return NewCLIError(transErr.Error(), hint, err)
	}

	var parseErr *parse.Error
	if errors.As(err, &parseErr) {
		return NewCLIError("parsing service rejected the upload",
			"Check that the parser is running and 'parse.url' in .drafty/config.yaml points at it", err)
	}

	switch {
	case errors.Is(err, application.ErrNoData):
		return NewCLIError("no drawing data loaded", "Run 'drafty submit' or 'drafty session restore' first", err)
	case errors.Is(err, application.ErrNoSelection):
		return NewCLIError("no files selected", "Run 'drafty add drawing <files...>' first", err)
	case errors.Is(err, application.ErrSubmitInFlight):
		return NewCLIError("a submit is already running", "Wait for it to finish and retry", err)
	case errors.Is(err, application.ErrSheetNotFound):
		return NewCLIError("sheet not found", "Run 'drafty show' to list sheets", err)
	case errors.Is(err, application.ErrAmbiguousSheet):
		return NewCLIError("sheet reference is ambiguous", "Use the sheet id from 'drafty status'", err)
	case errors.Is(err, session.ErrSessionExpired):
		return NewCLIError("saved session expired", "Run 'drafty submit' to parse the drawings again", err)
	case errors.Is(err, session.ErrNoSession):
		return NewCLIError("no saved session", "Run 'drafty submit' to parse the selected drawings", err)
	case errors.Is(err, session.ErrIndexOutOfRange):
		return NewCLIError("no file at that position", "Run 'drafty files' to list the selection", err)
	case errors.Is(err, config.ErrInvalidConfig):
		return NewCLIError("invalid configuration", "Fix .drafty/config.yaml or the DRAFTY_* environment variables", err)
	case errors.Is(err, workflow.ErrInvalidStatus):
		return NewCLIError("unknown status", "Use one of detected, reviewing, verified, approved", err)
	}

	return err
}
