package shell

import "strings"

// Kind tags a parsed command.
type Kind int

// Command kinds. Run is the fallback branch: a bare catalog token that
// triggers an execution.
const (
	KindNone Kind = iota
	KindHelp
	KindExit
	KindList
	KindShowJargon
	KindCreateJargon
	KindDeleteJargon
	KindShowAlias
	KindCreateAlias
	KindDeleteAlias
	KindHistory
	KindUsage
	KindRun
)

// Command is one parsed input line.
type Command struct {
	Kind Kind
	// Args holds the command's arguments: the list prefix, the alias or
	// language name, or (for create alias) the new name and its target.
	Args []string
}

// ParseCommand classifies one input line into exactly one command.
// Input is case-normalized and trimmed; an empty line parses to KindNone.
// Anything that is not a recognized command is a bare token for the
// execution fallback branch.
func ParseCommand(line string) Command {
	line = strings.ToLower(strings.TrimSpace(line))
	if line == "" {
		return Command{Kind: KindNone}
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "help":
		if len(fields) == 1 {
			return Command{Kind: KindHelp}
		}
	case "exit", "quit":
		if len(fields) == 1 {
			return Command{Kind: KindExit}
		}
	case "list":
		if len(fields) == 1 {
			return Command{Kind: KindList}
		}
		if len(fields) == 2 {
			return Command{Kind: KindList, Args: fields[1:]}
		}
	case "history":
		if len(fields) <= 2 {
			return Command{Kind: KindHistory, Args: fields[1:]}
		}
	case "jargon":
		if len(fields) == 2 {
			return Command{Kind: KindShowJargon, Args: fields[1:]}
		}
		return Command{Kind: KindUsage, Args: []string{"jargon <language>"}}
	case "alias":
		if len(fields) == 2 {
			return Command{Kind: KindShowAlias, Args: fields[1:]}
		}
		return Command{Kind: KindUsage, Args: []string{"alias <alias>"}}
	case "create":
		if len(fields) >= 2 && fields[1] == "jargon" {
			if len(fields) == 3 {
				return Command{Kind: KindCreateJargon, Args: fields[2:]}
			}
			return Command{Kind: KindUsage, Args: []string{"create jargon <language>"}}
		}
		if len(fields) >= 2 && fields[1] == "alias" {
			if len(fields) == 4 {
				return Command{Kind: KindCreateAlias, Args: fields[2:]}
			}
			return Command{Kind: KindUsage, Args: []string{"create alias <new alias> <language>"}}
		}
	case "delete":
		if len(fields) >= 2 && fields[1] == "jargon" {
			if len(fields) == 3 {
				return Command{Kind: KindDeleteJargon, Args: fields[2:]}
			}
			return Command{Kind: KindUsage, Args: []string{"delete jargon <language>"}}
		}
		if len(fields) >= 2 && fields[1] == "alias" {
			if len(fields) == 3 {
				return Command{Kind: KindDeleteAlias, Args: fields[2:]}
			}
			return Command{Kind: KindUsage, Args: []string{"delete alias <alias>"}}
		}
	}

	return Command{Kind: KindRun, Args: []string{line}}
}
