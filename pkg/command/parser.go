package command

import (
	"errors"
	"fmt"
	"strings"
)

type Kind int

const (
	Add Kind = iota + 1
	Del
	FindName
	FindPhone
	List
	Stat
	Save
	Help
	Exit
)

var names = map[string]Kind{
	"ADD":        Add,
	"DEL":        Del,
	"FIND_NAME":  FindName,
	"FIND_PHONE": FindPhone,
	"LIST":       List,
	"STAT":       Stat,
	"SAVE":       Save,
	"HELP":       Help,
	"EXIT":       Exit,
}

var usage = map[Kind]string{
	Add:       "ADD <name> <phone> [remark]",
	Del:       "DEL <name|phone>",
	FindName:  "FIND_NAME <name prefix>",
	FindPhone: "FIND_PHONE <phone prefix>",
}

var (
	ErrEmpty   = errors.New("empty command")
	ErrUnknown = errors.New("unknown command")
	ErrUsage   = errors.New("wrong number of arguments")
)

// Command is one parsed line. Key carries the DEL key or the FIND prefix.
type Command struct {
	Kind   Kind
	Name   string
	Phone  string
	Remark string
	Key    string
}

// Parse reads one line of the command language:
// "ADD <name> <phone> [remark...]"
// "DEL <name|phone>"
// "FIND_NAME <prefix>" / "FIND_PHONE <prefix>"
// "LIST" / "STAT" / "SAVE" / "HELP" / "EXIT"
// Command words are case-insensitive; the remark is the rest of the line.
func Parse(line string) (*Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, ErrEmpty
	}

	verb := strings.ToUpper(fields[0])
	kind, ok := names[verb]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, fields[0])
	}
	args := fields[1:]

	cmd := &Command{Kind: kind}
	switch kind {
	case Add:
		if len(args) < 2 {
			return nil, usageError(kind)
		}
		cmd.Name = args[0]
		cmd.Phone = args[1]
		cmd.Remark = strings.Join(args[2:], " ")
	case Del, FindName, FindPhone:
		if len(args) != 1 {
			return nil, usageError(kind)
		}
		cmd.Key = args[0]
	}
	return cmd, nil
}

// Usage returns the syntax line for k, or "" for commands without arguments.
func Usage(k Kind) string {
	return usage[k]
}

func usageError(k Kind) error {
	return fmt.Errorf("%w, usage: %s", ErrUsage, usage[k])
}

func (k Kind) String() string {
	for name, v := range names {
		if v == k {
			return name
		}
	}
	return "UNKNOWN"
}
