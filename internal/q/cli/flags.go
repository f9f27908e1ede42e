package cli

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// Value is the storage behind a flag.
type Value interface {
	Set(raw string) error
	String() string
	Type() string // shown in help; "bool" marks flags that take no value
}

type boolValue struct{ p *bool }

func (v boolValue) Set(raw string) error {
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return err
	}
	*v.p = b
	return nil
}
func (v boolValue) String() string { return strconv.FormatBool(*v.p) }
func (v boolValue) Type() string   { return "bool" }

type stringValue struct{ p *string }

func (v stringValue) Set(raw string) error { *v.p = raw; return nil }
func (v stringValue) String() string       { return *v.p }
func (v stringValue) Type() string         { return "string" }

type intValue struct{ p *int }

func (v intValue) Set(raw string) error {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return err
	}
	*v.p = n
	return nil
}
func (v intValue) String() string { return strconv.Itoa(*v.p) }
func (v intValue) Type() string   { return "int" }

// sliceValue appends on every Set. The default is replaced by the first Set.
type sliceValue struct {
	p       *[]string
	changed bool
}

func (v *sliceValue) Set(raw string) error {
	if !v.changed {
		*v.p = nil
		v.changed = true
	}
	*v.p = append(*v.p, raw)
	return nil
}
func (v *sliceValue) String() string { return strings.Join(*v.p, ",") }
func (v *sliceValue) Type() string   { return "strings" }

type enumValue struct {
	p       *string
	choices []string
}

func (v enumValue) Set(raw string) error {
	if !slices.Contains(v.choices, raw) {
		return fmt.Errorf("must be one of %s", strings.Join(v.choices, "|"))
	}
	*v.p = raw
	return nil
}
func (v enumValue) String() string { return *v.p }
func (v enumValue) Type() string   { return strings.Join(v.choices, "|") }

type flag struct {
	name      string
	shorthand rune
	usage     string
	value     Value
	changed   bool
}

// FlagSet is a command's flag registry.
type FlagSet struct {
	byName  map[string]*flag
	byShort map[rune]*flag
}

func newFlagSet() *FlagSet {
	return &FlagSet{byName: map[string]*flag{}, byShort: map[rune]*flag{}}
}

// Var registers a flag backed by v. shorthand is 0 for none.
func (fs *FlagSet) Var(v Value, name string, shorthand rune, usage string) {
	if name == "" {
		panic("cli: empty flag name")
	}
	if _, dup := fs.byName[name]; dup {
		panic("cli: duplicate flag --" + name)
	}
	f := &flag{name: name, shorthand: shorthand, usage: usage, value: v}
	fs.byName[name] = f
	if shorthand != 0 {
		if _, dup := fs.byShort[shorthand]; dup {
			panic(fmt.Sprintf("cli: duplicate flag -%c", shorthand))
		}
		fs.byShort[shorthand] = f
	}
}

func (fs *FlagSet) Bool(name string, shorthand rune, def bool, usage string) *bool {
	p := &def
	fs.Var(boolValue{p}, name, shorthand, usage)
	return p
}

func (fs *FlagSet) String(name string, shorthand rune, def string, usage string) *string {
	p := &def
	fs.Var(stringValue{p}, name, shorthand, usage)
	return p
}

func (fs *FlagSet) Int(name string, shorthand rune, def int, usage string) *int {
	p := &def
	fs.Var(intValue{p}, name, shorthand, usage)
	return p
}

// StringSlice registers a repeatable flag; each occurrence appends one value.
func (fs *FlagSet) StringSlice(name string, shorthand rune, def []string, usage string) *[]string {
	p := &def
	fs.Var(&sliceValue{p: p}, name, shorthand, usage)
	return p
}

// Enum registers a string flag restricted to choices. def need not be a choice.
func (fs *FlagSet) Enum(name string, shorthand rune, def string, choices []string, usage string) *string {
	p := &def
	fs.Var(enumValue{p: p, choices: choices}, name, shorthand, usage)
	return p
}

// Changed reports whether the flag was given on the command line.
func (fs *FlagSet) Changed(name string) bool {
	f, ok := fs.byName[name]
	return ok && f.changed
}

// resolver is the merged view of every flag visible to one command.
type resolver struct {
	byName  map[string]*flag
	byShort map[rune]*flag
}

func (c *Command) resolver() resolver {
	r := resolver{byName: map[string]*flag{}, byShort: map[rune]*flag{}}
	add := func(fs *FlagSet) {
		if fs == nil {
			return
		}
		for name, f := range fs.byName {
			if prev, ok := r.byName[name]; ok && prev != f {
				panic("cli: flag --" + name + " defined twice on one command path")
			}
			r.byName[name] = f
			if f.shorthand != 0 {
				r.byShort[f.shorthand] = f
			}
		}
	}
	for _, cmd := range c.path() {
		add(cmd.persistent)
	}
	add(c.local)
	return r
}

func (r resolver) sorted() []*flag {
	out := make([]*flag, 0, len(r.byName))
	for _, f := range r.byName {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// parse handles the flag token argv[i] and returns how many extra tokens it consumed.
func (r resolver) parse(argv []string, i int) (int, error) {
	token := argv[i]
	var f *flag
	var value string
	hasValue := false

	if body, ok := strings.CutPrefix(token, "--"); ok {
		name, v, eq := strings.Cut(body, "=")
		f, value, hasValue = r.byName[name], v, eq
	} else {
		body := token[1:]
		name, v, eq := strings.Cut(body, "=")
		if n := []rune(name); len(n) == 1 {
			f = r.byShort[n[0]]
		} else {
			f = r.byName[name]
		}
		value, hasValue = v, eq
	}
	if f == nil {
		return 0, Usagef("unknown flag: %s", token)
	}

	consumed := 0
	if !hasValue {
		switch {
		case f.value.Type() == "bool":
			value = "true"
			if i+1 < len(argv) {
				if _, err := strconv.ParseBool(argv[i+1]); err == nil {
					value, consumed = argv[i+1], 1
				}
			}
		case i+1 < len(argv) && argv[i+1] != "--":
			value, consumed = argv[i+1], 1
		default:
			return 0, Usagef("flag needs a value: %s", token)
		}
	}

	if err := f.value.Set(value); err != nil {
		return 0, Usagef("invalid value %q for %s: %v", value, f.display(), err)
	}
	f.changed = true
	return consumed, nil
}

func (f *flag) display() string {
	if f.shorthand != 0 {
		return fmt.Sprintf("-%c/--%s", f.shorthand, f.name)
	}
	return "--" + f.name
}
