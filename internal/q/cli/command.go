package cli

// RunFunc is a command handler.
type RunFunc func(c *Context) error

// ArgsFunc validates positional args. Usage mistakes should be reported as UsageError.
type ArgsFunc func(args []string) error

// Command is one node of a command tree.
type Command struct {
	Name    string // token that selects the command, e.g. "diff"
	Aliases []string
	Short   string // one line, shown in the parent's command list
	Long    string
	Usage   string // positional args for the usage line, e.g. "<a> <b>"

	Args ArgsFunc // optional
	Run  RunFunc  // nil for pure command groups

	parent     *Command
	children   []*Command
	local      *FlagSet
	persistent *FlagSet
}

// AddCommand attaches children to c. It panics on nil, unnamed, or already attached children.
func (c *Command) AddCommand(children ...*Command) {
	for _, child := range children {
		switch {
		case child == nil:
			panic("cli: AddCommand with nil child")
		case child.Name == "":
			panic("cli: AddCommand with unnamed child")
		case child.parent != nil:
			panic("cli: AddCommand with child " + child.Name + " already attached")
		}
		child.parent = c
		c.children = append(c.children, child)
	}
}

// Commands returns a copy of c's children.
func (c *Command) Commands() []*Command {
	return append([]*Command(nil), c.children...)
}

// Flags returns the flags that apply to c only.
func (c *Command) Flags() *FlagSet {
	if c.local == nil {
		c.local = newFlagSet()
	}
	return c.local
}

// PersistentFlags returns the flags that apply to c and every descendant.
func (c *Command) PersistentFlags() *FlagSet {
	if c.persistent == nil {
		c.persistent = newFlagSet()
	}
	return c.persistent
}

func (c *Command) child(token string) *Command {
	for _, ch := range c.children {
		if ch.Name == token {
			return ch
		}
		for _, a := range ch.Aliases {
			if a == token {
				return ch
			}
		}
	}
	return nil
}

// path returns the commands from the root down to c.
func (c *Command) path() []*Command {
	var out []*Command
	for cur := c; cur != nil; cur = cur.parent {
		out = append([]*Command{cur}, out...)
	}
	return out
}

// fullName is the space separated path, e.g. "panediff diff".
func (c *Command) fullName() string {
	name := ""
	for i, cmd := range c.path() {
		if i > 0 {
			name += " "
		}
		name += cmd.Name
	}
	return name
}
