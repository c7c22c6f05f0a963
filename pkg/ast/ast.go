// Package ast defines the intermediate representation for build scripts.
//
// A script is a tree of Statements. Leaves are Actions that wrap a Command,
// branches are Sequences, Folds and Ifs. Trees are plain values: nodes are
// never mutated after construction and may be shared or copied freely.
package ast

// Statement is a script level node.
type Statement interface {
	statementNode()
}

// Sequence runs its statements in order.
type Sequence struct {
	Statements []Statement
}

// Fold groups the output of Body under a collapsible marker. It has no
// effect on control flow.
type Fold struct {
	Name string
	Body Statement
}

// Action runs a single command.
type Action struct {
	Command Command
	Options []CommandOption
}

// If runs Then when Cond holds and Else otherwise.
type If struct {
	Cond Condition
	Then Statement
	Else Statement
}

// NoopStatement does nothing. Use the Noop value.
type NoopStatement struct{}

// Noop is the identity element for sequencing.
var Noop Statement = NoopStatement{}

func (Sequence) statementNode()      {}
func (Fold) statementNode()          {}
func (Action) statementNode()        {}
func (If) statementNode()            {}
func (NoopStatement) statementNode() {}

// IsNoop reports whether s does nothing. A nil Statement counts as a Noop.
func IsNoop(s Statement) bool {
	switch s.(type) {
	case nil, NoopStatement:
		return true
	default:
		return false
	}
}

// CommandOption changes how the runtime dispatches an Action.
type CommandOption interface {
	commandOption()
}

// EchoOption prints the command before running it.
type EchoOption struct{}

// AssertOption fails the script if the command didn't succeed.
type AssertOption struct{}

// DisplayOption is the text to print instead of the command. Only makes
// sense together with EchoOption; by default the runtime prints
// `$ the-command`.
type DisplayOption struct {
	Text string
}

func (EchoOption) commandOption()    {}
func (AssertOption) commandOption()  {}
func (DisplayOption) commandOption() {}

// HasEcho reports whether opts contains an EchoOption.
func HasEcho(opts []CommandOption) bool {
	for _, o := range opts {
		if _, ok := o.(EchoOption); ok {
			return true
		}
	}

	return false
}

// HasAssert reports whether opts contains an AssertOption.
func HasAssert(opts []CommandOption) bool {
	for _, o := range opts {
		if _, ok := o.(AssertOption); ok {
			return true
		}
	}

	return false
}

// Display returns the text of the first DisplayOption in opts.
func Display(opts []CommandOption) (string, bool) {
	for _, o := range opts {
		if d, ok := o.(DisplayOption); ok {
			return d.Text, true
		}
	}

	return "", false
}

// Command is a single runnable step.
type Command interface {
	commandNode()
}

// Raw is shell text passed through verbatim.
type Raw struct {
	Text string
}

// Echo prints Text.
type Echo struct {
	Text string
}

// Newline prints an empty line.
type Newline struct{}

// SetEnv exports an environment variable.
type SetEnv struct {
	Key   string
	Value string
}

// ChangeDir changes the working directory.
type ChangeDir struct {
	Path string
}

// WriteFile writes Data to Path, replacing any existing file.
type WriteFile struct {
	Path string
	Data []byte
}

// MakeDir creates Path and any missing parents.
type MakeDir struct {
	Path string
}

// CopyFile recursively copies From to To.
type CopyFile struct {
	From string
	To   string
}

// MoveFile moves From to To.
type MoveFile struct {
	From string
	To   string
}

// RemoveFile recursively removes Path.
type RemoveFile struct {
	Path string
}

func (Raw) commandNode()        {}
func (Echo) commandNode()       {}
func (Newline) commandNode()    {}
func (SetEnv) commandNode()     {}
func (ChangeDir) commandNode()  {}
func (WriteFile) commandNode()  {}
func (MakeDir) commandNode()    {}
func (CopyFile) commandNode()   {}
func (MoveFile) commandNode()   {}
func (RemoveFile) commandNode() {}

// Condition is a test evaluated by an If.
type Condition interface {
	conditionNode()
}

// PathExists holds when Path is a file or directory.
type PathExists struct {
	Path string
}

// IsDirectory holds when Path is a directory.
type IsDirectory struct {
	Path string
}

// IsFile holds when Path is a regular file.
type IsFile struct {
	Path string
}

// CommandSucceeds holds when Command exits with status zero.
type CommandSucceeds struct {
	Command Command
}

// And holds when both A and B hold.
type And struct {
	A, B Condition
}

// Or holds when A or B holds.
type Or struct {
	A, B Condition
}

// Not inverts Cond. Nested Nots are kept as written.
type Not struct {
	Cond Condition
}

func (PathExists) conditionNode()      {}
func (IsDirectory) conditionNode()     {}
func (IsFile) conditionNode()          {}
func (CommandSucceeds) conditionNode() {}
func (And) conditionNode()             {}
func (Or) conditionNode()              {}
func (Not) conditionNode()             {}
