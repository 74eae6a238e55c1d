package command

import (
	"strings"
	"unicode"
)

// ParseResult holds the parsed command word and argument text from a line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining words after the command.
	Args []string
	// RawArgs is the trimmed text after the command with inner spacing
	// intact; object names are matched against it.
	RawArgs string
}

// Parse splits a text line at its first run of whitespace.
//
// Postcondition: Returns a ParseResult. If line is blank, Command is empty.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}
	}

	idx := strings.IndexFunc(line, unicode.IsSpace)
	if idx < 0 {
		return ParseResult{Command: strings.ToLower(line)}
	}

	rest := strings.TrimSpace(line[idx:])
	var args []string
	if rest != "" {
		args = strings.Fields(rest)
	}
	return ParseResult{
		Command: strings.ToLower(line[:idx]),
		Args:    args,
		RawArgs: rest,
	}
}
