package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"contactdb/pkg/client"
	"contactdb/pkg/command"
	"contactdb/pkg/common"
	"contactdb/pkg/core"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

const prompt = ">>> "

var shellAddr string

func init() {
	cmd := newShellCmd()
	cmd.Flags().StringVar(&shellAddr, "addr", "", "Talk to a running server (host:port) instead of opening local storage")
	rootCmd.AddCommand(cmd)
}

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive contact shell",
		Long: `The shell command reads ADD/DEL/FIND_NAME/FIND_PHONE/LIST/STAT/SAVE
commands line by line. By default it opens the local storage directory;
with --addr it drives a running server over TCP.

Example:
  contactdb shell
  contactdb shell --addr localhost:9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()
			return runShell(sess, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// session is what the shell needs from either a local store or a server.
type session interface {
	Add(name, phone, remark string) error
	Delete(key string) (int, error)
	FindByName(prefix string) ([]common.Contact, error)
	FindByPhone(prefix string) ([]common.Contact, error)
	List() ([]common.Contact, error)
	Stats() (core.Stats, error)
	Save() (int, error)
	Close() error
}

func openSession() (session, error) {
	if shellAddr != "" {
		return client.Dial(shellAddr)
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := core.Open(cfg)
	if err != nil {
		return nil, err
	}
	return localSession{store}, nil
}

type localSession struct {
	store *core.Store
}

func (l localSession) Add(name, phone, remark string) error {
	_, err := l.store.Add(name, phone, remark)
	return err
}

func (l localSession) Delete(key string) (int, error) { return l.store.Delete(key) }

func (l localSession) FindByName(prefix string) ([]common.Contact, error) {
	return l.store.FindByNamePrefix(prefix), nil
}

func (l localSession) FindByPhone(prefix string) ([]common.Contact, error) {
	return l.store.FindByPhonePrefix(prefix), nil
}

func (l localSession) List() ([]common.Contact, error) { return l.store.List(), nil }

func (l localSession) Stats() (core.Stats, error) { return l.store.Stats(), nil }

func (l localSession) Save() (int, error) { return l.store.Save() }

func (l localSession) Close() error { return l.store.Close() }

func runShell(sess session, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "contactdb %s. Type HELP for commands, EXIT to quit.\n", version)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		cmd, err := command.Parse(scanner.Text())
		if errors.Is(err, command.ErrEmpty) {
			continue
		}
		if err != nil {
			fmt.Fprintf(out, "✗ %v\n", err)
			continue
		}
		if cmd.Kind == command.Exit {
			fmt.Fprintln(out, "Bye!")
			return nil
		}
		if err := execCommand(sess, cmd, out); err != nil {
			fmt.Fprintf(out, "✗ %v\n", err)
		}
	}
}

func execCommand(sess session, cmd *command.Command, out io.Writer) error {
	switch cmd.Kind {
	case command.Add:
		if err := sess.Add(cmd.Name, cmd.Phone, cmd.Remark); err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Added %s (%s)\n", cmd.Name, cmd.Phone)

	case command.Del:
		n, err := sess.Delete(cmd.Key)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Deleted %d contact(s)\n", n)

	case command.FindName, command.FindPhone:
		find, what := sess.FindByName, "name"
		if cmd.Kind == command.FindPhone {
			find, what = sess.FindByPhone, "phone"
		}
		res, err := find(cmd.Key)
		if err != nil {
			return err
		}
		if len(res) == 0 {
			return fmt.Errorf("no contact with %s prefix %q", what, cmd.Key)
		}
		fmt.Fprintf(out, "Found %d contact(s):\n", len(res))
		printContacts(out, res)

	case command.List:
		res, err := sess.List()
		if err != nil {
			return err
		}
		if len(res) == 0 {
			return errors.New("directory is empty")
		}
		fmt.Fprintf(out, "%d contact(s):\n", len(res))
		printContacts(out, res)

	case command.Stat:
		st, err := sess.Stats()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Total contacts:  %s\n", humanize.Comma(int64(st.TotalContacts)))
		fmt.Fprintf(out, "Unique names:    %s\n", humanize.Comma(int64(st.UniqueNames)))
		fmt.Fprintf(out, "Name index:      %s\n", treeInfo(st.NameIndexEnabled, st.NameTreeNodes))
		fmt.Fprintf(out, "Phone index:     %s\n", treeInfo(st.PhoneIndexEnabled, st.PhoneTreeNodes))

	case command.Save:
		n, err := sess.Save()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Saved %d contact(s)\n", n)

	case command.Help:
		printHelp(out)
	}
	return nil
}

func treeInfo(enabled bool, nodes int) string {
	if enabled {
		return fmt.Sprintf("on (prefix tree, %s nodes)", humanize.Comma(int64(nodes)))
	}
	return "off (linear scan)"
}

func printHelp(out io.Writer) {
	rows := [][2]string{
		{command.Usage(command.Add), "add a contact"},
		{command.Usage(command.Del), "delete by phone, or every contact with that name"},
		{command.Usage(command.FindName), "search by name prefix"},
		{command.Usage(command.FindPhone), "search by phone prefix"},
		{"LIST", "list all contacts in insertion order"},
		{"STAT", "show directory statistics"},
		{"SAVE", "write a snapshot to storage"},
		{"HELP", "show this help"},
		{"EXIT", "leave the shell"},
	}
	fmt.Fprintln(out, "Commands:")
	for _, r := range rows {
		fmt.Fprintf(out, "  %-28s %s\n", r[0], r[1])
	}
}
