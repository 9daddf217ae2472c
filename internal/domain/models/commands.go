package models

import "strings"

// CommandType enumerates supported operator command categories.
type CommandType string

const (
	CommandBatch    CommandType = "batch"
	CommandMachine  CommandType = "machine"
	CommandBaseline CommandType = "baseline"
	CommandReport   CommandType = "report"
	CommandUnknown  CommandType = "unknown"
)

// Command represents a parsed operator instruction extracted from WhatsApp text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command instance from free-form text messages.
// Only the command word is case-insensitive; arguments keep their case.
func ParseCommand(message string) Command {
	tokens := strings.Fields(strings.TrimSpace(message))
	cmd := Command{Raw: message}

	if len(tokens) == 0 {
		cmd.Type = CommandUnknown
		return cmd
	}

	head := strings.TrimPrefix(strings.ToLower(tokens[0]), "/")
	switch head {
	case string(CommandBatch):
		cmd.Type = CommandBatch
	case string(CommandMachine):
		cmd.Type = CommandMachine
	case string(CommandBaseline):
		cmd.Type = CommandBaseline
	case string(CommandReport):
		cmd.Type = CommandReport
	default:
		cmd.Type = CommandUnknown
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
