package filters

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/codalotl/panediff/internal/simplelogger"
)

// Kind selects the pattern syntax of a Filter.
type Kind int

const (
	Shell Kind = iota // whitespace separated shell globs, matched against file names
	Regex             // multi-line regular expression, applied to file contents
)

func (k Kind) String() string {
	switch k {
	case Shell:
		return "shell"
	case Regex:
		return "regex"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ErrEmptyPattern is reported by Err for a shell filter without any tokens: it would hide every file.
var ErrEmptyPattern = errors.New("empty shell pattern")

// Source is the user facing description of one filter, as found in preferences.
type Source struct {
	Name    string `json:"name"`
	Active  bool   `json:"active"`
	Pattern string `json:"pattern"`
}

// Filter is a compiled filter. The zero value is an inactive filter that matches nothing.
type Filter struct {
	Label  string
	Active bool // user-requested state; a filter that failed to compile is forced inactive
	Source string
	Kind   Kind

	re  *regexp.Regexp
	err error
}

// Compile compiles source as a filter of the given kind. It never fails: if source does not compile, the returned filter is inactive and Err
// returns the reason.
func Compile(label, source string, kind Kind, active bool) *Filter {
	f := &Filter{Label: label, Active: active, Source: source, Kind: kind}

	var expr string
	switch kind {
	case Shell:
		tokens := strings.Fields(source)
		if len(tokens) == 0 {
			f.err = ErrEmptyPattern
		} else {
			parts := make([]string, len(tokens))
			for i, tok := range tokens {
				parts[i] = translateShell(tok)
			}
			expr = "^(?:" + strings.Join(parts, "|") + ")$"
		}
	case Regex:
		expr = "(?m)" + source
	default:
		f.err = fmt.Errorf("unknown filter kind %d", int(kind))
	}

	if f.err == nil {
		re, err := regexp.Compile(expr)
		if err != nil {
			f.err = err
		}
		f.re = re
	}

	if f.err != nil {
		f.re = nil
		f.Active = false
		simplelogger.Log("filters: %q (%s) deactivated: %v", label, kind, f.err)
	}
	return f
}

// Err returns the compilation error, or nil if the filter compiled.
func (f *Filter) Err() error {
	return f.err
}

// Valid reports whether the filter compiled.
func (f *Filter) Valid() bool {
	return f.err == nil && f.re != nil
}

// Enabled reports whether the filter is active and usable.
func (f *Filter) Enabled() bool {
	return f != nil && f.Active && f.re != nil
}

// MatchName reports whether an active shell filter matches the whole of name. Inactive filters never match.
func (f *Filter) MatchName(name string) bool {
	if !f.Enabled() {
		return false
	}
	return f.re.MatchString(name)
}

// MatchAny reports whether any active filter matches name.
func MatchAny(filters []*Filter, name string) bool {
	for _, f := range filters {
		if f.MatchName(name) {
			return true
		}
	}
	return false
}

// FromSources compiles every source with the given kind, preserving order.
func FromSources(kind Kind, sources []Source) []*Filter {
	out := make([]*Filter, 0, len(sources))
	for _, s := range sources {
		out = append(out, Compile(s.Name, s.Pattern, kind, s.Active))
	}
	return out
}

// Active returns the enabled subset of filters.
func Active(filters []*Filter) []*Filter {
	var out []*Filter
	for _, f := range filters {
		if f.Enabled() {
			out = append(out, f)
		}
	}
	return out
}

// Identity returns a stable string describing the enabled filters (kind and source, in order). Two filter lists with the same identity filter
// identically.
func Identity(filters []*Filter) string {
	var b strings.Builder
	for _, f := range filters {
		if !f.Enabled() {
			continue
		}
		fmt.Fprintf(&b, "%s:%d:%s\x00", f.Kind, len(f.Source), f.Source)
	}
	return b.String()
}

// Errors returns the error of every filter that failed to compile, keyed by label.
func Errors(filters []*Filter) map[string]error {
	out := map[string]error{}
	for _, f := range filters {
		if f.err != nil {
			out[f.Label] = f.err
		}
	}
	return out
}

// Labels returns the keys of m, sorted.
func Labels(m map[string]error) []string {
	labels := make([]string, 0, len(m))
	for l := range m {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}
