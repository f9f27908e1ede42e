package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"

	qcli "github.com/codalotl/panediff/internal/q/cli"
)

// Version is the panediff version. Build tooling may override it with -ldflags "-X .../internal/cli.Version=...".
var Version = "0.3.0"

// RunOptions override standard I/O. Nil fields use the process streams.
type RunOptions struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Run runs the CLI with args (typically os.Args) and returns the exit code along with an error carrying the message already printed to stderr:
//   - 0: success, or inputs are the same
//   - 1: inputs differ, merge has conflicts, or the command failed
//   - 2: usage error
func Run(ctx context.Context, args []string, opts *RunOptions) (int, error) {
	argv := args
	if len(argv) > 0 {
		argv = argv[1:]
	}

	var in io.Reader = os.Stdin
	var out io.Writer = os.Stdout
	var errW io.Writer = os.Stderr
	if opts != nil {
		if opts.In != nil {
			in = opts.In
		}
		if opts.Out != nil {
			out = opts.Out
		}
		if opts.Err != nil {
			errW = opts.Err
		}
	}

	var stderrBuf bytes.Buffer
	code := qcli.Run(ctx, newRootCommand(), qcli.Options{
		Args: argv,
		In:   in,
		Out:  out,
		Err:  io.MultiWriter(errW, &stderrBuf),
	})
	if code == 0 {
		return 0, nil
	}
	msg := strings.TrimSpace(stderrBuf.String())
	if msg == "" {
		// "differ" exits print nothing on stderr.
		return code, nil
	}
	return code, errors.New(msg)
}
