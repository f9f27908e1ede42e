package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

type Options struct {
	// Args is argv without the program name.
	Args []string

	// In, Out and Err default to the process streams when nil.
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Context is passed to a command handler. Flag values are read through the pointers bound when the command was built.
type Context struct {
	context.Context

	Command *Command
	Args    []string

	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Changed reports whether the named flag visible to the running command was set on the command line.
func (c *Context) Changed(name string) bool {
	f, ok := c.Command.resolver().byName[name]
	return ok && f.changed
}

var errHelp = errors.New("help requested")

// Run executes the command tree and returns a process exit code.
//
// Exit codes: 0 success, 2 usage error, ExitCoder.ExitCode() when the handler returns one, 1 otherwise.
func Run(ctx context.Context, root *Command, opts Options) int {
	if root == nil || root.Name == "" {
		panic("cli: Run needs a named root command")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	in, out, errOut := opts.In, opts.Out, opts.Err
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}

	cmd, args, err := parse(root, opts.Args)
	if errors.Is(err, errHelp) {
		writeHelp(out, cmd)
		return 0
	}
	if err == nil && cmd.Run == nil {
		if len(args) == 0 {
			err = Usagef("missing subcommand")
		} else {
			err = Usagef("unknown command: %s", args[0])
		}
	}
	if err == nil && cmd.Args != nil {
		err = cmd.Args(args)
	}
	if err == nil {
		err = cmd.Run(&Context{Context: ctx, Command: cmd, Args: args, In: in, Out: out, Err: errOut})
	}
	return report(errOut, cmd, err)
}

func report(w io.Writer, cmd *Command, err error) int {
	if err == nil {
		return 0
	}
	var usage UsageError
	if errors.As(err, &usage) {
		fmt.Fprintf(w, "%s: %s\n\n", cmd.fullName(), usage.Message)
		writeUsageLine(w, cmd)
		fmt.Fprintf(w, "Run '%s --help' for details.\n", cmd.fullName())
		return usage.ExitCode()
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintf(w, "%s: %s\n", cmd.fullName(), msg)
	}
	var coder ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 1
}

// parse selects the command and splits argv into flags and positional args. Flags may appear anywhere after the command tokens that
// precede them; everything after "--" is positional.
func parse(root *Command, argv []string) (*Command, []string, error) {
	cmd := root
	var args []string
	selecting := true

	for i := 0; i < len(argv); i++ {
		token := argv[i]
		switch {
		case token == "--":
			return cmd, append(args, argv[i+1:]...), nil
		case token == "-h" || token == "--help":
			return cmd, nil, errHelp
		case len(token) > 1 && token[0] == '-':
			n, err := cmd.resolver().parse(argv, i)
			if err != nil {
				return cmd, nil, err
			}
			i += n
		default:
			if selecting {
				if next := cmd.child(token); next != nil {
					cmd = next
					continue
				}
				selecting = false
			}
			args = append(args, token)
		}
	}
	return cmd, args, nil
}

func writeUsageLine(w io.Writer, cmd *Command) {
	line := cmd.fullName()
	if len(cmd.children) > 0 && cmd.Run == nil {
		line += " <command>"
	}
	if len(cmd.resolver().byName) > 0 {
		line += " [flags]"
	}
	if cmd.Usage != "" {
		line += " " + cmd.Usage
	}
	fmt.Fprintf(w, "Usage:\n  %s\n", line)
}

func writeHelp(w io.Writer, cmd *Command) {
	if text := strings.TrimSpace(cmd.Long); text != "" {
		fmt.Fprintf(w, "%s\n\n", text)
	} else if cmd.Short != "" {
		fmt.Fprintf(w, "%s\n\n", cmd.Short)
	}
	writeUsageLine(w, cmd)

	if len(cmd.children) > 0 {
		fmt.Fprintf(w, "\nCommands:\n")
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, ch := range cmd.children {
			fmt.Fprintf(tw, "  %s\t%s\n", ch.Name, ch.Short)
		}
		tw.Flush()
	}

	flags := cmd.resolver().sorted()
	if len(flags) > 0 {
		fmt.Fprintf(w, "\nFlags:\n")
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, f := range flags {
			spec := "    --" + f.name
			if f.shorthand != 0 {
				spec = fmt.Sprintf("-%c, --%s", f.shorthand, f.name)
			}
			if t := f.value.Type(); t != "bool" {
				spec += " " + t
			}
			usage := f.usage
			if def := f.value.String(); def != "" && def != "false" && def != "0" {
				usage += fmt.Sprintf(" (default %s)", def)
			}
			fmt.Fprintf(tw, "  %s\t%s\n", spec, usage)
		}
		tw.Flush()
	}
}
