package application

import "errors"

var (
	// ErrNoData indicates no parse result is loaded.
	ErrNoData = errors.New("no drawing data loaded")

	// ErrSubmitInFlight indicates an upload is already running.
	ErrSubmitInFlight = errors.New("a submit is already in progress")

	// ErrSheetNotFound indicates the sheet reference matches nothing in the
	// loaded data.
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrAmbiguousSheet indicates the sheet reference matches more than one
	// sheet.
	ErrAmbiguousSheet = errors.New("sheet reference is ambiguous")

	// ErrNoSelection indicates submit was called with no files chosen.
	ErrNoSelection = errors.New("no files selected")
)
