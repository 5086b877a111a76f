package sdk

import (
	"errors"
	"fmt"
)

// ErrNoContent is returned when a tool result contains no content items.
var ErrNoContent = errors.New("drafty: empty tool result")

// ToolError is returned when a tool call returns an error result. Message
// is the text the server reported, such as "No sheet matches 'A9'.".
type ToolError struct {
	Tool    string
	Message string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("drafty: tool %s: %s", e.Tool, e.Message)
}
