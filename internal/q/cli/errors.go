package cli

import "fmt"

// ExitCoder is an error that carries a process exit code.
type ExitCoder interface {
	error
	ExitCode() int
}

// UsageError is a user mistake on the command line. It exits with code 2 and prints help.
type UsageError struct {
	Message string
}

func (e UsageError) Error() string { return e.Message }
func (e UsageError) ExitCode() int { return 2 }

// Usagef returns a UsageError with a formatted message.
func Usagef(format string, args ...any) UsageError {
	return UsageError{Message: fmt.Sprintf(format, args...)}
}

// ExitError exits with Code. A nil Err exits silently.
type ExitError struct {
	Code int
	Err  error
}

func (e ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e ExitError) Unwrap() error { return e.Err }
func (e ExitError) ExitCode() int { return e.Code }

// Exit returns an ExitError with no message.
func Exit(code int) ExitError { return ExitError{Code: code} }

// NoArgs rejects positional args.
func NoArgs(args []string) error {
	if len(args) > 0 {
		return Usagef("expected no args, got %d", len(args))
	}
	return nil
}

// ExactArgs requires exactly n positional args.
func ExactArgs(n int) ArgsFunc {
	return RangeArgs(n, n)
}

// RangeArgs requires between lo and hi positional args, inclusive.
func RangeArgs(lo, hi int) ArgsFunc {
	return func(args []string) error {
		if len(args) >= lo && len(args) <= hi {
			return nil
		}
		if lo == hi {
			return Usagef("expected %s, got %d", plural(lo), len(args))
		}
		return Usagef("expected %d to %s, got %d", lo, plural(hi), len(args))
	}
}

func plural(n int) string {
	if n == 1 {
		return "1 arg"
	}
	return fmt.Sprintf("%d args", n)
}
