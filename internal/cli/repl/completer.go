package repl

import "strings"

// Completer suggests command names for a prefix.
type Completer struct {
	commands []string
}

// NewCompleter creates a completer over the given command names.
func NewCompleter(commands []string) *Completer {
	return &Completer{commands: commands}
}

// Complete returns the commands starting with prefix, in the order given
// to NewCompleter.
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}
